package commandmanager

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocmd "github.com/go-cmd/cmd"
	"github.com/juju/errors"
	"github.com/kballard/go-shellquote"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/steelcutops/snapstate/common"
	"github.com/steelcutops/snapstate/logger"
)

const defaultDialTimeout = 15 * time.Minute

type SSHDialer interface {
	Dial(network, addr string, config *ssh.ClientConfig, timeout time.Duration) (*ssh.Client, error)
}

// RealSSHClient dials with golang.org/x/crypto/ssh.
type RealSSHClient struct{}

func (RealSSHClient) Dial(network, addr string, config *ssh.ClientConfig, timeout time.Duration) (*ssh.Client, error) {
	config.Timeout = timeout
	return ssh.Dial(network, addr, config)
}

type UnixCommandManager struct {
	Hostname  string
	SSHClient SSHDialer
	common.Credentials

	// HostKeyCallback verifies remote host keys. Nil means ~/.ssh/known_hosts.
	HostKeyCallback ssh.HostKeyCallback
	Logger          logger.Logger
}

func (u *UnixCommandManager) log() logger.Logger {
	if u.Logger == nil {
		return logger.Nop()
	}
	return u.Logger
}

func (u *UnixCommandManager) RunLocal(ctx context.Context, config CommandConfig) (CommandResult, error) {
	argv := commandLine(config)
	start := time.Now()

	c := gocmd.NewCmdOptions(gocmd.Options{Buffered: true}, argv[0], argv[1:]...)
	var statusCh <-chan gocmd.Status
	if config.Sudo {
		statusCh = c.StartWithStdin(strings.NewReader(u.SudoPassword + "\n"))
	} else {
		statusCh = c.Start()
	}

	select {
	case status := <-statusCh:
		result := CommandResult{
			Command:   strings.Join(argv, " "),
			STDOUT:    joinLines(status.Stdout),
			STDERR:    joinLines(status.Stderr),
			ExitCode:  status.Exit,
			Duration:  time.Since(start),
			Timestamp: start,
		}
		if status.Error != nil {
			return result, errors.Annotatef(status.Error, "running %s", config.Command)
		}
		return result, checkSudo(result)
	case <-ctx.Done():
		_ = c.Stop()
		return CommandResult{Command: strings.Join(argv, " "), ExitCode: -1, Timestamp: start}, ctx.Err()
	}
}

func (u *UnixCommandManager) getSSHConfig() (*ssh.ClientConfig, error) {
	var authMethod ssh.AuthMethod

	if u.Password != "" {
		u.log().Debug("Using password authentication", "hostname", u.Hostname)
		authMethod = ssh.Password(u.Password)
	} else {
		u.log().Debug("Using public key authentication", "hostname", u.Hostname)
		var keyManager SSHKeyManager
		if u.KeyPassphrase != "" {
			keyManager = FileSSHKeyManager{}
		} else {
			keyManager = AgentSSHKeyManager{}
		}

		keys, err := keyManager.ReadPrivateKeys(u.KeyPassphrase)
		if err != nil {
			return nil, err
		}
		authMethod = ssh.PublicKeys(keys...)
	}

	hostKeyCallback := u.HostKeyCallback
	if hostKeyCallback == nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Trace(err)
		}
		hostKeyCallback, err = knownhosts.New(filepath.Join(home, ".ssh", "known_hosts"))
		if err != nil {
			return nil, errors.Annotate(err, "loading known_hosts")
		}
	}

	return &ssh.ClientConfig{
		User:            u.User,
		Auth:            []ssh.AuthMethod{authMethod},
		HostKeyCallback: hostKeyCallback,
	}, nil
}

func (u *UnixCommandManager) RunRemote(ctx context.Context, config CommandConfig) (CommandResult, error) {
	u.log().Debug("Executing remote command", "hostname", u.Hostname, "command", config.Command)

	if u.SSHClient == nil {
		return CommandResult{}, errors.New("SSHClient is not initialized")
	}

	sshConfig, err := u.getSSHConfig()
	if err != nil {
		return CommandResult{}, err
	}
	dialTimeout := defaultDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		dialTimeout = time.Until(deadline)
	}

	client, err := u.SSHClient.Dial("tcp", u.Hostname+":22", sshConfig, dialTimeout)
	if err != nil {
		return CommandResult{}, err
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return CommandResult{}, errors.Annotate(err, "opening ssh session")
	}
	defer session.Close()

	cmdStr := shellquote.Join(commandLine(config)...)
	if config.Sudo {
		session.Stdin = strings.NewReader(u.SudoPassword + "\n")
	}

	var stdout, stderr strings.Builder
	session.Stdout = &stdout
	session.Stderr = &stderr

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- session.Run(cmdStr)
	}()

	select {
	case runErr := <-done:
		result := CommandResult{
			Command:   cmdStr,
			STDOUT:    stdout.String(),
			STDERR:    stderr.String(),
			Duration:  time.Since(start),
			Timestamp: start,
		}
		var exitErr *ssh.ExitError
		switch {
		case runErr == nil:
		case errors.As(runErr, &exitErr):
			result.ExitCode = exitErr.ExitStatus()
		default:
			result.ExitCode = -1
			u.log().Error("Failed to execute command over SSH", "command", cmdStr, "error", runErr)
			return result, errors.Annotatef(runErr, "running %s on %s", config.Command, u.Hostname)
		}
		return result, checkSudo(result)
	case <-ctx.Done():
		u.log().Error("Command over SSH cancelled", "command", cmdStr, "hostname", u.Hostname)
		_ = session.Signal(ssh.SIGKILL)
		return CommandResult{Command: cmdStr, ExitCode: -1, Timestamp: start}, ctx.Err()
	}
}

func (u *UnixCommandManager) Run(ctx context.Context, config CommandConfig) (CommandResult, error) {
	if u.isLocal() {
		return u.RunLocal(ctx, config)
	}
	return u.RunRemote(ctx, config)
}

func (u *UnixCommandManager) FileExists(ctx context.Context, path string) (bool, error) {
	if u.isLocal() {
		_, err := os.Stat(path)
		if err == nil {
			return true, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Trace(err)
	}

	result, err := u.RunRemote(ctx, CommandConfig{Command: "test", Args: []string{"-e", path}})
	if err != nil {
		return false, err
	}
	return result.Success(), nil
}

func (u *UnixCommandManager) isLocal() bool {
	return u.Hostname == "" || u.Hostname == "localhost" || u.Hostname == "127.0.0.1"
}

func checkSudo(result CommandResult) error {
	if strings.Contains(result.STDERR, "incorrect password") {
		return errors.New("sudo: incorrect password provided")
	}
	if strings.Contains(result.STDERR, "is not in the sudoers file") {
		return errors.New("sudo: user is not in the sudoers file")
	}
	return nil
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
