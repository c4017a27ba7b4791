package reconciler

import (
	"fmt"

	"github.com/juju/errors"

	cm "github.com/steelcutops/snapstate/steelcut/commandmanager"
)

// FailureKind names which corrective command failed.
type FailureKind string

const (
	InstallFailure FailureKind = "install"
	RemoveFailure  FailureKind = "remove"
	UpgradeFailure FailureKind = "upgrade"
)

// ActionError is returned when a corrective command exits non-zero or
// cannot be run at all. Result carries the failing command's output for
// diagnostics; Err is set when the runner itself failed.
type ActionError struct {
	Kind    FailureKind
	Package string
	Result  cm.CommandResult
	Err     error
}

func (e *ActionError) Error() string {
	if e.Kind == UpgradeFailure {
		return "failed to upgrade packages"
	}
	return fmt.Sprintf("failed to %s %s", e.Kind, e.Package)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// environmentError reports a missing package manager binary. It satisfies
// errors.Is(err, errors.NotFound).
func environmentError(path string) error {
	return errors.NewNotFound(nil, fmt.Sprintf("cannot find snap, looking for %s", path))
}

// configurationError reports an unusable request. It satisfies
// errors.Is(err, errors.NotValid).
func configurationError(msg string) error {
	return errors.NewNotValid(nil, msg)
}

// IsEnvironmentError reports whether err means the package manager is missing.
func IsEnvironmentError(err error) bool {
	return errors.Is(err, errors.NotFound)
}

// IsConfigurationError reports whether err means the request was rejected.
func IsConfigurationError(err error) bool {
	return errors.Is(err, errors.NotValid)
}
