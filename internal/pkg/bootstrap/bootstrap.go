// Package bootstrap implements the install procedure: make sure the package
// manager is on PATH, installing it from its upstream script if needed, then
// use it to install the pinned package system-wide.
//
// The steps run strictly in order and the first failure aborts the rest.
// There is no retry, rollback, or cleanup; the failing tool's own output and
// exit status are what the caller sees.
package bootstrap

import (
	"context"
	"fmt"
	"io"

	"github.com/coreos/pkg/capnslog"
	"github.com/pkg/errors"

	"github.com/openinterpreter/oi-bootstrap/internal/pkg/cmdrun"
	"github.com/openinterpreter/oi-bootstrap/internal/pkg/config"
	"github.com/openinterpreter/oi-bootstrap/internal/pkg/fetch"
	"github.com/openinterpreter/oi-bootstrap/internal/pkg/pathenv"
)

var plog = capnslog.NewPackageLogger("github.com/openinterpreter/oi-bootstrap", "bootstrap")

// Procedure binds a configuration to the environment it runs in.
type Procedure struct {
	Config *config.Config
	Runner cmdrun.Runner
	Env    pathenv.Env
	Out    io.Writer
}

// Result records what a run did, up to the point it stopped.
type Result struct {
	// Path of the tool when it was already present.
	Detected string
	// Bootstrapped is set once the installer script ran successfully.
	Bootstrapped bool
	// FetchTool is the name of the tool used to download the installer.
	FetchTool string
	// PathDir is the directory prepended to PATH after bootstrap.
	PathDir string
	// Installed is set once the package installation succeeded.
	Installed bool
}

// New returns a Procedure for cfg using real processes and the process
// environment.
func New(cfg *config.Config, out io.Writer) *Procedure {
	return &Procedure{
		Config: cfg,
		Runner: cmdrun.NewExec(),
		Env:    pathenv.OS{},
		Out:    out,
	}
}

// Run executes the procedure. The returned Result is never nil.
func (p *Procedure) Run(ctx context.Context) (*Result, error) {
	res := &Result{}
	cfg := p.Config

	path, err := p.Env.LookPath(cfg.Tool)
	switch {
	case err == nil:
		plog.Infof("%s found at %s, skipping bootstrap", cfg.Tool, path)
		res.Detected = path
	case pathenv.IsNotFound(err):
		fmt.Fprintf(p.Out, "%s not found, installing it...\n", cfg.Tool)
		if err := p.bootstrap(ctx, res); err != nil {
			return res, err
		}
	default:
		return res, errors.Wrapf(err, "looking up %s", cfg.Tool)
	}

	if err := p.Runner.Run(ctx, cfg.InstallArgs()); err != nil {
		return res, errors.Wrapf(err, "installing %s", cfg.PackageSpec())
	}
	res.Installed = true

	fmt.Fprintln(p.Out, cfg.Message)
	return res, nil
}

func (p *Procedure) bootstrap(ctx context.Context, res *Result) error {
	cfg := p.Config

	tool, err := fetch.Select(p.Env, cfg.FetchTools)
	if err != nil {
		return err
	}
	res.FetchTool = tool.Name

	if err := p.Runner.Pipe(ctx, cfg.FetchCommand(tool), []string{cfg.Interpreter}); err != nil {
		return errors.Wrapf(err, "bootstrapping %s", cfg.Tool)
	}
	res.Bootstrapped = true

	dir, err := cfg.ExpandInstallDir()
	if err != nil {
		return err
	}
	if err := pathenv.Prepend(p.Env, dir); err != nil {
		return errors.Wrap(err, "updating PATH")
	}
	res.PathDir = dir
	plog.Infof("prepended %s to PATH", dir)
	return nil
}

// Step is one entry of a Plan.
type Step struct {
	Name    string
	Command string
}

// Plan describes the steps Run would take in the current environment
// without executing anything.
func (p *Procedure) Plan() ([]Step, error) {
	cfg := p.Config
	steps := []Step{{Name: "detect", Command: "command -v " + cfg.Tool}}

	_, err := p.Env.LookPath(cfg.Tool)
	if err != nil && !pathenv.IsNotFound(err) {
		return nil, errors.Wrapf(err, "looking up %s", cfg.Tool)
	}
	if err != nil {
		tool, ferr := fetch.Select(p.Env, cfg.FetchTools)
		if ferr != nil {
			return nil, ferr
		}
		dir, derr := cfg.ExpandInstallDir()
		if derr != nil {
			return nil, derr
		}
		steps = append(steps,
			Step{Name: "bootstrap", Command: cmdrun.String(cfg.FetchCommand(tool)...) + " | " + cmdrun.String(cfg.Interpreter)},
			Step{Name: "path", Command: "export PATH=" + cmdrun.String(dir) + ":$PATH"},
		)
	}
	steps = append(steps,
		Step{Name: "install", Command: cmdrun.String(cfg.InstallArgs()...)},
		Step{Name: "notice", Command: "echo " + cmdrun.String(cfg.Message)},
	)
	return steps, nil
}
