package commandmanager

import (
	"context"
	"time"
)

// CommandConfig describes a single command to run on a host.
type CommandConfig struct {
	Command string
	Args    []string
	// Env holds extra KEY=VALUE pairs. The C locale is always added.
	Env  []string
	Sudo bool
}

// CommandResult encapsulates the results from a command execution.
type CommandResult struct {
	Command   string
	STDOUT    string
	STDERR    string
	ExitCode  int
	Duration  time.Duration
	Timestamp time.Time
}

// Success reports whether the command exited zero.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// CommandManager runs commands on a host, either locally or over SSH.
//
// A command that ran and exited non-zero is not an error: the status is in
// CommandResult.ExitCode. The error return is reserved for commands that
// could not be started, lost their transport, or were cancelled.
type CommandManager interface {
	Run(ctx context.Context, config CommandConfig) (CommandResult, error)

	// FileExists reports whether path exists on the host.
	FileExists(ctx context.Context, path string) (bool, error)
}
