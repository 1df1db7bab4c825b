// Package config holds the pinned constants that drive the bootstrap, and
// the optional YAML file and environment overrides layered on top of them.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/kballard/go-shellquote"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var plog = capnslog.NewPackageLogger("github.com/openinterpreter/oi-bootstrap", "config")

// Placeholder substituted with the installer URL in fetch tool arguments.
const URLPlaceholder = "{url}"

const (
	DefaultTool         = "uv"
	DefaultInstallerURL = "https://astral.sh/uv/install.sh"
	DefaultInterpreter  = "sh"
	DefaultInstallDir   = "~/.local/bin"
	DefaultRemote       = "https://github.com/OpenInterpreter/open-interpreter.git"
	DefaultBranch       = "development"
	DefaultRuntime      = "3.11"
	DefaultMessage      = "Open Interpreter has been installed."
)

// Environment variables consulted by ApplyEnv.
const (
	EnvRemote    = "OI_BOOTSTRAP_REMOTE"
	EnvBranch    = "OI_BOOTSTRAP_BRANCH"
	EnvRuntime   = "OI_BOOTSTRAP_RUNTIME"
	EnvExtraArgs = "OI_BOOTSTRAP_EXTRA_ARGS"
)

// FetchTool is a command that writes the content of a URL to stdout.
type FetchTool struct {
	Name string   `yaml:"name" json:"name"`
	Args []string `yaml:"args" json:"args"`
}

// Config describes one bootstrap-and-install run.
type Config struct {
	Tool         string      `yaml:"tool" json:"tool"`
	InstallerURL string      `yaml:"installer_url" json:"installer_url"`
	FetchTools   []FetchTool `yaml:"fetch_tools" json:"fetch_tools"`
	Interpreter  string      `yaml:"interpreter" json:"interpreter"`
	InstallDir   string      `yaml:"install_dir" json:"install_dir"`
	Remote       string      `yaml:"remote" json:"remote"`
	Branch       string      `yaml:"branch" json:"branch"`
	Runtime      string      `yaml:"runtime" json:"runtime"`
	ExtraArgs    []string    `yaml:"extra_args,omitempty" json:"extra_args,omitempty"`
	Message      string      `yaml:"message" json:"message"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Tool:         DefaultTool,
		InstallerURL: DefaultInstallerURL,
		FetchTools: []FetchTool{
			{Name: "curl", Args: []string{"-LsSf", URLPlaceholder}},
			{Name: "wget", Args: []string{"-qO-", URLPlaceholder}},
		},
		Interpreter: DefaultInterpreter,
		InstallDir:  DefaultInstallDir,
		Remote:      DefaultRemote,
		Branch:      DefaultBranch,
		Runtime:     DefaultRuntime,
		Message:     DefaultMessage,
	}
}

// Load reads the YAML file at path over the defaults. An empty path
// yields the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	plog.Debugf("loaded config from %s", path)
	return cfg, nil
}

// ApplyEnv overrides fields from the OI_BOOTSTRAP_* environment variables.
// lookup has the signature of os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvRemote); ok && v != "" {
		c.Remote = v
	}
	if v, ok := lookup(EnvBranch); ok && v != "" {
		c.Branch = v
	}
	if v, ok := lookup(EnvRuntime); ok && v != "" {
		c.Runtime = v
	}
	if v, ok := lookup(EnvExtraArgs); ok && v != "" {
		args, err := shellquote.Split(v)
		if err != nil {
			return errors.Wrapf(err, "parsing %s", EnvExtraArgs)
		}
		c.ExtraArgs = args
	}
	return nil
}

// PackageSpec is the VCS requirement passed to the package installer.
func (c *Config) PackageSpec() string {
	return fmt.Sprintf("git+%s@%s", c.Remote, c.Branch)
}

// InstallArgs is the full argv of the installation step, tool first.
func (c *Config) InstallArgs() []string {
	args := []string{c.Tool, "pip", "install", "--system", "--python", c.Runtime}
	args = append(args, c.ExtraArgs...)
	return append(args, c.PackageSpec())
}

// ExpandInstallDir resolves a leading ~ in InstallDir.
func (c *Config) ExpandInstallDir() (string, error) {
	dir, err := homedir.Expand(c.InstallDir)
	if err != nil {
		return "", errors.Wrapf(err, "expanding %s", c.InstallDir)
	}
	return dir, nil
}

// FetchCommand renders the argv of a fetch tool for the installer URL.
func (c *Config) FetchCommand(t FetchTool) []string {
	argv := []string{t.Name}
	for _, a := range t.Args {
		argv = append(argv, strings.ReplaceAll(a, URLPlaceholder, c.InstallerURL))
	}
	return argv
}
