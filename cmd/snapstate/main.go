package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/juju/errors"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh"
	"golang.org/x/term"

	"github.com/steelcutops/snapstate/logger"
	"github.com/steelcutops/snapstate/steelcut/commandmanager"
	"github.com/steelcutops/snapstate/steelcut/host"
	"github.com/steelcutops/snapstate/steelcut/packagemanager"
	"github.com/steelcutops/snapstate/steelcut/reconciler"
	"github.com/steelcutops/snapstate/steelcut/report"
)

type flags struct {
	Check                 bool
	Concurrency           int
	Debug                 bool
	Hostnames             []string
	IniFilePath           string
	InsecureIgnoreHostKey bool
	KeyPassPrompt         bool
	Name                  string
	Output                string
	PasswordPrompt        bool
	SnapPath              string
	State                 string
	Sudo                  bool
	SudoPasswordPrompt    bool
	Timeout               time.Duration
	Upgrade               bool
	Username              string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:   "snapstate [NAME]",
		Short: "Converge a snap package to a desired state",
		Long: "snapstate makes sure a snap package is present, absent or at its latest revision,\n" +
			"or refreshes every installed snap. It changes nothing that is already in the desired state.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.Name, "name", "n", "", "Package name (alternative to the positional argument)")
	fl.StringVarP(&f.State, "state", "s", "present", "Desired state: present, installed, absent, removed or latest")
	fl.BoolVarP(&f.Upgrade, "upgrade", "u", false, "Refresh all packages; takes precedence over name and state")
	fl.BoolVarP(&f.Check, "check", "C", false, "Report what would change without changing anything")
	fl.StringVar(&f.SnapPath, "snap-path", packagemanager.DefaultSnapPath, "Path to the snap binary")
	fl.StringSliceVarP(&f.Hostnames, "hostname", "H", nil, "Host to reconcile, repeatable (default localhost)")
	fl.StringVar(&f.IniFilePath, "ini", "", "Path to INI file with host groups")
	fl.StringVar(&f.Username, "username", "", "Username to use for SSH connection")
	fl.BoolVar(&f.PasswordPrompt, "password", false, "Prompt for the SSH password")
	fl.BoolVar(&f.KeyPassPrompt, "keypass", false, "Prompt for the passphrase decrypting SSH keys")
	fl.BoolVar(&f.InsecureIgnoreHostKey, "insecure-ignore-host-key", false, "Skip known_hosts verification")
	fl.BoolVar(&f.Sudo, "sudo", false, "Run install, remove and refresh through sudo")
	fl.BoolVar(&f.SudoPasswordPrompt, "sudo-password", false, "Prompt for the sudo password")
	fl.StringVarP(&f.Output, "output", "o", string(report.JSON), "Output format: json, yaml or text")
	fl.IntVar(&f.Concurrency, "concurrency", 10, "Maximum number of hosts processed at once")
	fl.DurationVar(&f.Timeout, "timeout", 0, "Per-host timeout, 0 disables")
	fl.BoolVar(&f.Debug, "debug", false, "Enable debug log level")

	return cmd
}

func run(cmd *cobra.Command, f *flags, args []string) error {
	log := logger.New(cmd.ErrOrStderr(), f.Debug).With("run", ulid.Make().String())

	format, err := report.ParseFormat(f.Output)
	if err != nil {
		return err
	}
	req, err := requestFromFlags(f, args)
	if err != nil {
		return err
	}

	options, err := buildHostOptions(f, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	options = append(options, host.WithLogger(log))

	hostGroup, err := initializeHosts(log, f, options)
	if err != nil {
		return err
	}

	reporter := report.New(cmd.OutOrStdout(), format)
	return hostGroup.Apply(cmd.Context(), f.Concurrency, func(ctx context.Context, h *host.Host) error {
		if f.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, f.Timeout)
			defer cancel()
		}

		outcome, err := h.Reconciler().Run(ctx, req)
		if err != nil {
			h.Logger.Error("Reconciliation failed", "error", err)
			if reportErr := reporter.Fail(h.Hostname, err); reportErr != nil {
				h.Logger.Error("Failed to write report", "error", reportErr)
			}
			return err
		}
		outcome.Host = h.Hostname
		h.Logger.Info("Reconciled", "changed", outcome.Changed, "msg", outcome.Msg)
		return reporter.Succeed(outcome)
	})
}

func requestFromFlags(f *flags, args []string) (reconciler.Request, error) {
	name := f.Name
	if len(args) == 1 {
		if name != "" && name != args[0] {
			return reconciler.Request{}, errors.NotValidf("package name given twice (%q and %q)", name, args[0])
		}
		name = args[0]
	}
	return reconciler.Request{
		Name:      name,
		State:     f.State,
		Upgrade:   f.Upgrade,
		CheckMode: f.Check,
	}, nil
}

func buildHostOptions(f *flags, prompt io.Writer) ([]host.HostOption, error) {
	options := []host.HostOption{
		host.WithSnapPath(f.SnapPath),
		host.WithSudo(f.Sudo || f.SudoPasswordPrompt),
		host.WithSSHClient(commandmanager.RealSSHClient{}),
	}
	if f.Username != "" {
		options = append(options, host.WithUser(f.Username))
	}
	if f.InsecureIgnoreHostKey {
		options = append(options, host.WithHostKeyCallback(ssh.InsecureIgnoreHostKey()))
	}

	if f.PasswordPrompt {
		password, err := readSecret(prompt, "Enter the password: ")
		if err != nil {
			return nil, errors.Annotate(err, "reading password")
		}
		options = append(options, host.WithPassword(password))
	}
	if f.KeyPassPrompt {
		keyPass, err := readSecret(prompt, "Enter the key passphrase: ")
		if err != nil {
			return nil, errors.Annotate(err, "reading key passphrase")
		}
		options = append(options, host.WithKeyPassphrase(keyPass))
	}
	if f.SudoPasswordPrompt {
		sudoPassword, err := readSecret(prompt, "Enter the sudo password: ")
		if err != nil {
			return nil, errors.Annotate(err, "reading sudo password")
		}
		options = append(options, host.WithSudoPassword(sudoPassword))
	}
	return options, nil
}

func readSecret(prompt io.Writer, label string) (string, error) {
	fmt.Fprint(prompt, label)
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(prompt)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}
