package reconciler

import (
	"context"
	"fmt"
	"strings"

	cm "github.com/steelcutops/snapstate/steelcut/commandmanager"
	pm "github.com/steelcutops/snapstate/steelcut/packagemanager"
)

// fakeSnapd answers snap commands from an in-memory package table and
// records every command it is asked to run.
type fakeSnapd struct {
	binary    bool
	installed map[string]bool
	pending   map[string]bool
	// exit forces a non-zero exit for a snap verb.
	exit map[string]int
	// runErr makes Run fail outright for a snap verb.
	runErr map[string]error

	calls       []cm.CommandConfig
	existsCalls int
}

func newFakeSnapd(installed ...string) *fakeSnapd {
	f := &fakeSnapd{
		binary:    true,
		installed: map[string]bool{},
		pending:   map[string]bool{},
		exit:      map[string]int{},
		runErr:    map[string]error{},
	}
	for _, name := range installed {
		f.installed[name] = true
	}
	return f
}

func (f *fakeSnapd) FileExists(ctx context.Context, path string) (bool, error) {
	f.existsCalls++
	return f.binary && path == pm.DefaultSnapPath, nil
}

func (f *fakeSnapd) Run(ctx context.Context, config cm.CommandConfig) (cm.CommandResult, error) {
	f.calls = append(f.calls, config)
	verb := config.Args[0]
	if err, ok := f.runErr[verb]; ok {
		return cm.CommandResult{ExitCode: -1}, err
	}
	if code, ok := f.exit[verb]; ok {
		return cm.CommandResult{ExitCode: code, STDERR: "error: " + verb + " failed\n"}, nil
	}

	switch verb {
	case "list":
		name := config.Args[1]
		if !f.installed[name] {
			return cm.CommandResult{ExitCode: 1, STDERR: "error: no matching snaps installed\n"}, nil
		}
		marker := "="
		if f.pending[name] {
			marker = "<"
		}
		return cm.CommandResult{STDOUT: fmt.Sprintf("%s-1.0-1   %s   1.0-2  \n", name, marker)}, nil
	case "install":
		name := config.Args[1]
		f.installed[name] = true
		delete(f.pending, name)
		return cm.CommandResult{STDOUT: name + " 1.0 installed\n"}, nil
	case "remove":
		delete(f.installed, config.Args[1])
		return cm.CommandResult{STDOUT: config.Args[1] + " removed\n"}, nil
	case "refresh":
		if len(config.Args) > 1 && config.Args[1] == "--list" {
			if len(f.pending) == 0 {
				return cm.CommandResult{STDOUT: "All snaps up to date.\n"}, nil
			}
			var b strings.Builder
			b.WriteString("Name  Version  Rev  Publisher  Notes\n")
			for name := range f.pending {
				fmt.Fprintf(&b, "%s  1.1  2  canonical  -\n", name)
			}
			return cm.CommandResult{STDOUT: b.String()}, nil
		}
		if len(f.pending) == 0 {
			return cm.CommandResult{STDOUT: "OK\n"}, nil
		}
		f.pending = map[string]bool{}
		return cm.CommandResult{STDOUT: "refreshed\n"}, nil
	}
	return cm.CommandResult{ExitCode: 64}, nil
}

// mutations returns the verbs of every state changing command run so far.
func (f *fakeSnapd) mutations() []string {
	var verbs []string
	for _, c := range f.calls {
		switch {
		case c.Args[0] == "install", c.Args[0] == "remove":
			verbs = append(verbs, c.Args[0]+" "+c.Args[1])
		case c.Args[0] == "refresh" && len(c.Args) == 1:
			verbs = append(verbs, "refresh")
		}
	}
	return verbs
}

func (f *fakeSnapd) reconciler() *Reconciler {
	return New(&pm.SnapPackageManager{CommandManager: f}, nil)
}
