package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/openinterpreter/oi-bootstrap/internal/pkg/bootstrap"
	"github.com/openinterpreter/oi-bootstrap/internal/pkg/config"
)

type InstallOptions struct {
	configPath string
	dryRun     bool
	remote     string
	branch     string
	runtime    string
}

var (
	installOpts InstallOptions

	cmdInstall = &cobra.Command{
		Use:   "install",
		Short: "Install Open Interpreter (the default command)",
		Args:  cobra.NoArgs,
		RunE:  runInstall,
	}
)

func init() {
	addInstallFlags(cmdInstall)
}

func addInstallFlags(c *cobra.Command) {
	c.Flags().StringVar(&installOpts.configPath, "config", "",
		"YAML file overriding the built-in configuration")
	c.Flags().BoolVarP(&installOpts.dryRun, "dry-run", "n", false,
		"Print the steps that would run and exit")
	c.Flags().StringVar(&installOpts.remote, "remote", "",
		"Git remote to install from")
	c.Flags().StringVar(&installOpts.branch, "branch", "",
		"Git branch to install from")
	c.Flags().StringVar(&installOpts.runtime, "runtime", "",
		"Python version to install for")
}

// loadConfig layers defaults, the config file, the environment and flags,
// in increasing precedence.
func loadConfig(opts InstallOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if opts.remote != "" {
		cfg.Remote = opts.remote
	}
	if opts.branch != "" {
		cfg.Branch = opts.branch
	}
	if opts.runtime != "" {
		cfg.Runtime = opts.runtime
	}
	if err := config.ApplySchemaEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return nil, errors.Errorf("configuration has %d error(s)", len(errs))
	}
	return cfg, nil
}

func runInstall(c *cobra.Command, args []string) error {
	cfg, err := loadConfig(installOpts)
	if err != nil {
		return err
	}
	proc := bootstrap.New(cfg, c.OutOrStdout())

	if installOpts.dryRun {
		steps, err := proc.Plan()
		if err != nil {
			return err
		}
		for i, s := range steps {
			fmt.Fprintf(c.OutOrStdout(), "%d. %-9s %s\n", i+1, s.Name, s.Command)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	_, err = proc.Run(ctx)
	return err
}
