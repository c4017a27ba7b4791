package host

import (
	"github.com/juju/errors"
	"golang.org/x/crypto/ssh"

	"github.com/steelcutops/snapstate/common"
	"github.com/steelcutops/snapstate/logger"
	"github.com/steelcutops/snapstate/steelcut/commandmanager"
	"github.com/steelcutops/snapstate/steelcut/packagemanager"
	"github.com/steelcutops/snapstate/steelcut/reconciler"
)

// Host is a machine whose snap packages are reconciled.
type Host struct {
	Hostname string
	common.Credentials

	SSHClient       commandmanager.SSHDialer
	HostKeyCallback ssh.HostKeyCallback
	SnapPath        string
	Sudo            bool
	Logger          logger.Logger

	CommandManager commandmanager.CommandManager
	PackageManager packagemanager.PackageManager
}

// NewHost applies options and wires the host's command and package
// managers. Options that set CommandManager or PackageManager win over the
// defaults.
func NewHost(hostname string, options ...HostOption) (*Host, error) {
	if hostname == "" {
		return nil, errors.NotValidf("empty hostname")
	}

	h := &Host{Hostname: hostname}
	for _, option := range options {
		option(h)
	}
	if h.Logger == nil {
		h.Logger = logger.Nop()
	}
	h.Logger = h.Logger.With("host", hostname)

	if h.CommandManager == nil {
		h.CommandManager = &commandmanager.UnixCommandManager{
			Hostname:        hostname,
			SSHClient:       h.SSHClient,
			Credentials:     h.Credentials,
			HostKeyCallback: h.HostKeyCallback,
			Logger:          h.Logger,
		}
	}
	if h.PackageManager == nil {
		h.PackageManager = &packagemanager.SnapPackageManager{
			CommandManager: h.CommandManager,
			SnapPath:       h.SnapPath,
			Sudo:           h.Sudo,
			Logger:         h.Logger,
		}
	}
	return h, nil
}

// Reconciler returns a reconciler bound to this host's package manager.
func (h *Host) Reconciler() *reconciler.Reconciler {
	return reconciler.New(h.PackageManager, h.Logger)
}
