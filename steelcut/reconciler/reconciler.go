package reconciler

import (
	"context"
	"fmt"

	"github.com/juju/errors"

	"github.com/steelcutops/snapstate/logger"
	cm "github.com/steelcutops/snapstate/steelcut/commandmanager"
	pm "github.com/steelcutops/snapstate/steelcut/packagemanager"
	"github.com/steelcutops/snapstate/steelcut/report"
)

// Reconciler converges one package on one host to its desired state,
// running at most one corrective command.
type Reconciler struct {
	PackageManager pm.PackageManager
	Logger         logger.Logger
}

func New(packageManager pm.PackageManager, log logger.Logger) *Reconciler {
	if log == nil {
		log = logger.Nop()
	}
	return &Reconciler{PackageManager: packageManager, Logger: log}
}

// Run reconciles req. It returns the outcome to report on success; on
// failure the outcome is empty and err is one of the configuration,
// environment or *ActionError failures.
func (r *Reconciler) Run(ctx context.Context, req Request) (report.Outcome, error) {
	if err := req.Validate(); err != nil {
		return report.Outcome{}, err
	}
	desired, err := ParseState(req.State)
	if err != nil {
		return report.Outcome{}, err
	}

	path := r.PackageManager.Path()
	found, err := r.PackageManager.Available(ctx)
	if err != nil {
		return report.Outcome{}, errors.Annotatef(err, "looking for %s", path)
	}
	if !found {
		return report.Outcome{}, environmentError(path)
	}

	if req.Upgrade {
		if req.Name != "" {
			r.Logger.Debug("Upgrade requested, ignoring package state", "package", req.Name, "state", desired)
		}
		return r.refreshAll(ctx, req.CheckMode)
	}

	installed := r.PackageManager.IsInstalled(ctx, req.Name)
	latest := true
	if desired == Latest && installed {
		latest = r.PackageManager.IsLatest(ctx, req.Name)
	}

	action := Decide(desired, installed, latest)
	r.Logger.Debug("Decided action", "package", req.Name, "state", desired,
		"installed", installed, "latest", latest, "action", action)

	outcome := report.Outcome{Action: string(action), CheckMode: req.CheckMode}
	switch action {
	case ActionInstall:
		return r.apply(ctx, outcome, InstallFailure, req.Name, r.PackageManager.Install)
	case ActionRemove:
		return r.apply(ctx, outcome, RemoveFailure, req.Name, r.PackageManager.Remove)
	}

	if desired == Absent {
		outcome.Msg = "package already removed"
	} else {
		outcome.Msg = "package already installed"
	}
	return outcome, nil
}

type correctiveFunc func(ctx context.Context, pkg string) (cm.CommandResult, error)

func (r *Reconciler) apply(ctx context.Context, outcome report.Outcome, kind FailureKind, pkg string, run correctiveFunc) (report.Outcome, error) {
	verb := "installed"
	if kind == RemoveFailure {
		verb = "removed"
	}

	outcome.Changed = true
	if outcome.CheckMode {
		outcome.Msg = fmt.Sprintf("would %s %s package", kind, pkg)
		return outcome, nil
	}

	r.Logger.Info("Applying corrective action", "action", outcome.Action, "package", pkg)
	result, err := run(ctx, pkg)
	if err != nil || !result.Success() {
		return report.Outcome{}, r.failure(kind, pkg, result, err)
	}
	outcome.Msg = fmt.Sprintf("%s %s package", verb, pkg)
	return outcome, nil
}

func (r *Reconciler) refreshAll(ctx context.Context, checkMode bool) (report.Outcome, error) {
	outcome := report.Outcome{Action: string(ActionRefreshAll), CheckMode: checkMode}

	if checkMode {
		result, err := r.PackageManager.PendingRefreshes(ctx)
		if err != nil || !result.Success() {
			return report.Outcome{}, r.failure(UpgradeFailure, "", result, err)
		}
		if pm.NoPendingRefreshes(result.STDOUT) {
			outcome.Msg = "packages already upgraded"
			return outcome, nil
		}
		outcome.Changed = true
		outcome.Msg = "would upgrade packages"
		return outcome, nil
	}

	r.Logger.Info("Refreshing all packages")
	result, err := r.PackageManager.RefreshAll(ctx)
	if err != nil || !result.Success() {
		return report.Outcome{}, r.failure(UpgradeFailure, "", result, err)
	}
	if pm.RefreshUpToDate(result.STDOUT) {
		outcome.Msg = "packages already upgraded"
		return outcome, nil
	}
	outcome.Changed = true
	outcome.Msg = "upgraded packages"
	return outcome, nil
}

func (r *Reconciler) failure(kind FailureKind, pkg string, result cm.CommandResult, err error) error {
	r.Logger.Error("Corrective action failed", "kind", kind, "package", pkg,
		"exit", result.ExitCode, "stderr", result.STDERR, "error", err)
	return &ActionError{Kind: kind, Package: pkg, Result: result, Err: err}
}
