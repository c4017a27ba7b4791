package reconciler

import (
	"github.com/juju/errors"
)

// DesiredState is the condition the caller wants a package in.
type DesiredState string

const (
	Present DesiredState = "present"
	Absent  DesiredState = "absent"
	Latest  DesiredState = "latest"
)

// ParseState normalizes the accepted spellings: "installed" is "present",
// "removed" is "absent" and the empty string defaults to "present".
func ParseState(s string) (DesiredState, error) {
	switch s {
	case "", "present", "installed":
		return Present, nil
	case "absent", "removed":
		return Absent, nil
	case "latest":
		return Latest, nil
	default:
		return "", errors.NewNotValid(nil, "value of state must be one of: present, installed, absent, removed, latest, got: "+s)
	}
}

// Action is the corrective step chosen for a reconciliation.
type Action string

const (
	ActionNone       Action = "none"
	ActionInstall    Action = "install"
	ActionRemove     Action = "remove"
	ActionRefreshAll Action = "refresh-all"
)

// Decide maps a desired state and the observed installed state to the one
// action that converges them. latest is only consulted for Latest on an
// installed package.
func Decide(desired DesiredState, installed, latest bool) Action {
	switch desired {
	case Present:
		if installed {
			return ActionNone
		}
		return ActionInstall
	case Latest:
		if installed && latest {
			return ActionNone
		}
		return ActionInstall
	case Absent:
		if installed {
			return ActionRemove
		}
		return ActionNone
	}
	return ActionNone
}
