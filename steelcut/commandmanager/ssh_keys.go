package commandmanager

import (
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
)

// SSHKeyManager yields the signers used for public key authentication.
type SSHKeyManager interface {
	ReadPrivateKeys(keyPassphrase string) ([]ssh.Signer, error)
}

// FileSSHKeyManager reads id_* private keys from Dir, ~/.ssh by default.
type FileSSHKeyManager struct {
	Dir string
}

// AgentSSHKeyManager asks the agent listening on $SSH_AUTH_SOCK.
type AgentSSHKeyManager struct{}

func (km AgentSSHKeyManager) ReadPrivateKeys(_ string) ([]ssh.Signer, error) {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil, errors.NotFoundf("SSH_AUTH_SOCK")
	}

	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil, errors.Annotate(err, "connecting to ssh agent")
	}
	defer conn.Close()

	signers, err := agent.NewClient(conn).Signers()
	if err != nil {
		return nil, errors.Annotate(err, "listing ssh agent signers")
	}
	return signers, nil
}

func (km FileSSHKeyManager) ReadPrivateKeys(keyPassphrase string) ([]ssh.Signer, error) {
	dir := km.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Trace(err)
		}
		dir = filepath.Join(home, ".ssh")
	}

	files, err := filepath.Glob(filepath.Join(dir, "id_*"))
	if err != nil {
		return nil, errors.Trace(err)
	}

	var signers []ssh.Signer
	for _, file := range files {
		if strings.HasSuffix(file, ".pub") {
			continue
		}
		keyBytes, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Annotatef(err, "reading key %s", file)
		}

		var signer ssh.Signer
		if keyPassphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(keyBytes, []byte(keyPassphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(keyBytes)
		}
		if err != nil {
			// wrong passphrase or unsupported format, try the next key
			continue
		}
		signers = append(signers, signer)
	}

	if len(signers) == 0 {
		return nil, errors.NotFoundf("usable private key in %s", dir)
	}
	return signers, nil
}
