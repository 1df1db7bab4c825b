// oi-bootstrap makes sure the uv package manager is available and then uses
// it to install Open Interpreter from a pinned branch for a pinned Python.
package main

import (
	"github.com/spf13/cobra"

	"github.com/openinterpreter/oi-bootstrap/internal/pkg/cli"
)

var root = &cobra.Command{
	Use:   "oi-bootstrap",
	Short: "Install Open Interpreter, bootstrapping uv if needed",
	Long: `Install Open Interpreter system-wide from a pinned git branch for a
pinned Python version. If uv is not on PATH it is installed first with its
upstream install script, fetched with curl or, failing that, wget.`,
	Args: cobra.NoArgs,
	RunE: runInstall,
}

func init() {
	addInstallFlags(root)
	root.AddCommand(cmdInstall, cmdShellIntegration)
}

func main() {
	cli.Execute(root)
}
