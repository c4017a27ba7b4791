package packagemanager

import (
	"context"

	cm "github.com/steelcutops/snapstate/steelcut/commandmanager"
)

// PackageManager is the query and corrective surface the reconciler drives.
//
// The queries fail open: a query that cannot be answered reports
// "not installed" or "latest" rather than an error. The corrective methods
// return the command result as-is; classifying a non-zero exit is up to the
// caller.
type PackageManager interface {
	// Path is the location of the package manager binary.
	Path() string
	Available(ctx context.Context) (bool, error)

	IsInstalled(ctx context.Context, pkg string) bool
	IsLatest(ctx context.Context, pkg string) bool

	Install(ctx context.Context, pkg string) (cm.CommandResult, error)
	Remove(ctx context.Context, pkg string) (cm.CommandResult, error)
	RefreshAll(ctx context.Context) (cm.CommandResult, error)

	// PendingRefreshes lists available refreshes without applying them.
	PendingRefreshes(ctx context.Context) (cm.CommandResult, error)
}
