package packagemanager

import (
	"context"

	"github.com/steelcutops/snapstate/logger"
	cm "github.com/steelcutops/snapstate/steelcut/commandmanager"
)

// DefaultSnapPath is where snapd installs its client.
const DefaultSnapPath = "/usr/bin/snap"

type SnapPackageManager struct {
	CommandManager cm.CommandManager
	// SnapPath overrides DefaultSnapPath.
	SnapPath string
	// Sudo runs the corrective commands through sudo. Queries never need it.
	Sudo   bool
	Logger logger.Logger
}

func (spm *SnapPackageManager) Path() string {
	if spm.SnapPath == "" {
		return DefaultSnapPath
	}
	return spm.SnapPath
}

func (spm *SnapPackageManager) log() logger.Logger {
	if spm.Logger == nil {
		return logger.Nop()
	}
	return spm.Logger
}

func (spm *SnapPackageManager) Available(ctx context.Context) (bool, error) {
	return spm.CommandManager.FileExists(ctx, spm.Path())
}

func (spm *SnapPackageManager) list(ctx context.Context, pkg string) (cm.CommandResult, bool) {
	result, err := spm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: spm.Path(),
		Args:    []string{"list", pkg},
	})
	if err != nil {
		spm.log().Warn("snap list failed to run, assuming not installed", "package", pkg, "error", err)
		return result, false
	}
	return result, true
}

// IsInstalled reports whether `snap list PKG` exits zero. Any failure,
// including a broken snapd, reads as "not installed".
func (spm *SnapPackageManager) IsInstalled(ctx context.Context, pkg string) bool {
	result, ok := spm.list(ctx, pkg)
	installed := ok && result.Success()
	spm.log().Debug("Queried package", "package", pkg, "installed", installed, "exit", result.ExitCode)
	return installed
}

// IsLatest reports whether no refresh is pending for pkg. See UpdatePending.
func (spm *SnapPackageManager) IsLatest(ctx context.Context, pkg string) bool {
	result, _ := spm.list(ctx, pkg)
	latest := !UpdatePending(result.STDOUT, pkg)
	spm.log().Debug("Queried package revision", "package", pkg, "latest", latest)
	return latest
}

// Install installs pkg. On an installed package snap treats this as a
// request for the newest revision, so the same command serves upgrades.
func (spm *SnapPackageManager) Install(ctx context.Context, pkg string) (cm.CommandResult, error) {
	return spm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: spm.Path(),
		Args:    []string{"install", pkg},
		Sudo:    spm.Sudo,
	})
}

func (spm *SnapPackageManager) Remove(ctx context.Context, pkg string) (cm.CommandResult, error) {
	return spm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: spm.Path(),
		Args:    []string{"remove", pkg},
		Sudo:    spm.Sudo,
	})
}

func (spm *SnapPackageManager) RefreshAll(ctx context.Context) (cm.CommandResult, error) {
	return spm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: spm.Path(),
		Args:    []string{"refresh"},
		Sudo:    spm.Sudo,
	})
}

func (spm *SnapPackageManager) PendingRefreshes(ctx context.Context) (cm.CommandResult, error) {
	return spm.CommandManager.Run(ctx, cm.CommandConfig{
		Command: spm.Path(),
		Args:    []string{"refresh", "--list"},
	})
}
