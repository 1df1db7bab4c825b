// Package cli holds the setup shared by every oi-bootstrap command: logging
// flags, the version subcommand, and mapping errors to exit statuses.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/coreos/pkg/capnslog"
	"github.com/spf13/cobra"

	"github.com/openinterpreter/oi-bootstrap/internal/pkg/cmdrun"
	"github.com/openinterpreter/oi-bootstrap/internal/pkg/pathenv"
	"github.com/openinterpreter/oi-bootstrap/internal/pkg/version"
)

// Exit status used when a command could not be found, as in sh.
const ExitNotFound = 127

var (
	logDebug   bool
	logVerbose bool
	logLevel   = capnslog.NOTICE

	plog = capnslog.NewPackageLogger("github.com/openinterpreter/oi-bootstrap", "cli")
)

// Execute sets up common features of all commands, runs main, and exits
// with the resulting status. It does not return.
func Execute(main *cobra.Command) {
	os.Exit(Run(main, os.Stderr))
}

// Run is Execute without the exit; errors are reported to stderr.
func Run(main *cobra.Command, stderr io.Writer) int {
	Setup(main)
	main.SilenceErrors = true
	main.SilenceUsage = true

	err := main.Execute()
	code := ExitCode(err)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return code
}

// Setup adds the version command and logging flags to main.
func Setup(main *cobra.Command) {
	main.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number and exit.",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("%s version %s\n", cmd.Root().Name(), version.Version)
		},
	})

	main.PersistentFlags().Var(&logLevel, "log-level",
		"Set global log level.")
	main.PersistentFlags().BoolVarP(&logVerbose, "verbose", "v", false,
		"Alias for --log-level=INFO")
	main.PersistentFlags().BoolVarP(&logDebug, "debug", "d", false,
		"Alias for --log-level=DEBUG")

	WrapPreRun(main, func(cmd *cobra.Command, args []string) error {
		startLogging(cmd)
		return nil
	})
}

// ExitCode maps err to a process exit status: the child's own status when
// a tool failed, 127 when a tool was missing, 1 for anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if code, ok := cmdrun.ExitStatus(err); ok {
		return code
	}
	if pathenv.IsNotFound(err) {
		return ExitNotFound
	}
	return 1
}

func startLogging(cmd *cobra.Command) {
	switch {
	case logDebug:
		logLevel = capnslog.DEBUG
	case logVerbose:
		logLevel = capnslog.INFO
	}

	capnslog.SetFormatter(capnslog.NewStringFormatter(cmd.ErrOrStderr()))
	capnslog.SetGlobalLogLevel(logLevel)

	plog.Infof("Started logging at level %s", logLevel)
}

type PreRunEFunc func(cmd *cobra.Command, args []string) error

// WrapPreRun runs f before root's own persistent pre-run hook.
func WrapPreRun(root *cobra.Command, f PreRunEFunc) {
	preRun, preRunE := root.PersistentPreRun, root.PersistentPreRunE
	root.PersistentPreRun, root.PersistentPreRunE = nil, nil

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := f(cmd, args); err != nil {
			return err
		}
		if preRun != nil {
			preRun(cmd, args)
		} else if preRunE != nil {
			return preRunE(cmd, args)
		}
		return nil
	}
}
