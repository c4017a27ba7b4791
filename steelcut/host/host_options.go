package host

import (
	"golang.org/x/crypto/ssh"

	"github.com/steelcutops/snapstate/logger"
	"github.com/steelcutops/snapstate/steelcut/commandmanager"
	"github.com/steelcutops/snapstate/steelcut/packagemanager"
)

type HostOption func(*Host)

// WithUser returns a HostOption that sets the SSH user for a Host.
func WithUser(user string) HostOption {
	return func(host *Host) {
		host.User = user
	}
}

// WithPassword returns a HostOption that sets the SSH password for a Host.
func WithPassword(password string) HostOption {
	return func(host *Host) {
		host.Password = password
	}
}

// WithKeyPassphrase returns a HostOption that sets the key passphrase for a Host.
func WithKeyPassphrase(keyPassphrase string) HostOption {
	return func(host *Host) {
		host.KeyPassphrase = keyPassphrase
	}
}

// WithSudoPassword returns a HostOption that sets the sudo password for a Host.
func WithSudoPassword(password string) HostOption {
	return func(host *Host) {
		host.SudoPassword = password
	}
}

// WithSudo runs corrective snap commands through sudo.
func WithSudo(sudo bool) HostOption {
	return func(host *Host) {
		host.Sudo = sudo
	}
}

func WithSSHClient(client commandmanager.SSHDialer) HostOption {
	return func(host *Host) {
		host.SSHClient = client
	}
}

func WithHostKeyCallback(callback ssh.HostKeyCallback) HostOption {
	return func(host *Host) {
		host.HostKeyCallback = callback
	}
}

// WithSnapPath overrides packagemanager.DefaultSnapPath.
func WithSnapPath(path string) HostOption {
	return func(host *Host) {
		host.SnapPath = path
	}
}

func WithLogger(l logger.Logger) HostOption {
	return func(host *Host) {
		host.Logger = l
	}
}

// WithCommandManager replaces the default SSH/local command manager.
func WithCommandManager(manager commandmanager.CommandManager) HostOption {
	return func(host *Host) {
		host.CommandManager = manager
	}
}

// WithPackageManager replaces the default snap package manager.
func WithPackageManager(manager packagemanager.PackageManager) HostOption {
	return func(host *Host) {
		host.PackageManager = manager
	}
}
