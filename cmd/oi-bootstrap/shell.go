package main

import (
	"github.com/spf13/cobra"

	"github.com/openinterpreter/oi-bootstrap/internal/pkg/shellrc"
)

var (
	shellYes bool

	cmdShellIntegration = &cobra.Command{
		Use:   "shell-integration",
		Short: "Route unknown shell commands to the interpreter",
		Long: `Install a zsh or bash hook that records a transcript of commands and
their output in ~/.shell_history_with_output, and passes that transcript to
the interpreter whenever a command is not found.`,
		Args: cobra.NoArgs,
		RunE: runShellIntegration,
	}
)

func init() {
	cmdShellIntegration.Flags().BoolVarP(&shellYes, "yes", "y", false,
		"Reinstall without asking if the integration is already present")
}

func runShellIntegration(c *cobra.Command, args []string) error {
	inst, err := shellrc.NewInstaller(shellYes)
	if err != nil {
		return err
	}
	inst.Out = c.OutOrStdout()
	return inst.Install()
}
