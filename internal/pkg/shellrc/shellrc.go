// Package shellrc installs the interpreter's shell integration into the
// user's zsh or bash startup file.
//
// The integration keeps a transcript of commands and their output in
// ~/.shell_history_with_output and hands that transcript to the
// interpreter whenever a command is not found. It lives between two marker
// lines so it can be replaced on reinstall without touching the rest of the
// file.
package shellrc

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

var plog = capnslog.NewPackageLogger("github.com/openinterpreter/oi-bootstrap", "shellrc")

const (
	StartMarker = "### <openinterpreter> ###"
	EndMarker   = "### </openinterpreter> ###"

	HistoryFile = ".shell_history_with_output"

	manualHint = "Please visit docs.openinterpreter.com/shell for manual installation instructions."
)

var blockRe = regexp.MustCompile("(?s)" + regexp.QuoteMeta(StartMarker) + ".*?" + regexp.QuoteMeta(EndMarker))

const baseScript = `# Create the transcript file if it is missing
touch ~/.shell_history_with_output

# Record a command and everything it prints
function capture_output() {
    local cmd=$1
    echo "user: $cmd" >> ~/.shell_history_with_output
    echo "computer:" >> ~/.shell_history_with_output
    eval "$cmd" >> ~/.shell_history_with_output 2>&1
}

# Unknown commands go to the interpreter along with the transcript
command_not_found_handler() {
    cat ~/.shell_history_with_output | interpreter
    return 0
}

# Hook into preexec`

// Shell is a supported shell and the startup file the integration goes in.
type Shell struct {
	Name   string
	RCFile string
}

// Detect picks the startup file for the shell named by shellEnv (the value
// of $SHELL). zsh always uses ~/.zshrc; bash uses whichever of ~/.bashrc and
// ~/.bash_profile exists, in that order. ok is false when nothing fits.
func Detect(shellEnv, home string) (shell Shell, ok bool) {
	s := strings.ToLower(shellEnv)
	switch {
	case strings.Contains(s, "zsh"):
		return Shell{Name: "zsh", RCFile: filepath.Join(home, ".zshrc")}, true
	case strings.Contains(s, "bash"):
		for _, name := range []string{".bashrc", ".bash_profile"} {
			p := filepath.Join(home, name)
			if _, err := os.Stat(p); err == nil {
				return Shell{Name: "bash", RCFile: p}, true
			}
		}
	}
	return Shell{}, false
}

// Script returns the integration snippet for the named shell.
func Script(shell string) (string, error) {
	switch shell {
	case "zsh":
		return baseScript + "\npreexec() {\n    capture_output \"$1\"\n}\n", nil
	case "bash":
		return baseScript + "\ntrap 'capture_output \"$(HISTTIMEFORMAT= history 1 | sed \"s/^[ ]*[0-9]*[ ]*//\")\" ' DEBUG\n", nil
	}
	return "", fmt.Errorf("unsupported shell %q", shell)
}

// HasBlock reports whether content already carries an integration block.
func HasBlock(content string) bool {
	return strings.Contains(content, StartMarker)
}

// Render drops any existing integration block from content and appends a
// fresh one for shell.
func Render(content, shell string) (string, error) {
	script, err := Script(shell)
	if err != nil {
		return "", err
	}
	content = blockRe.ReplaceAllString(content, "")
	return fmt.Sprintf("%s\n\n%s\n%s\n%s\n", strings.TrimRight(content, " \t\r\n"), StartMarker, script, EndMarker), nil
}

// Installer writes the integration for the current user.
type Installer struct {
	Home  string
	Shell string
	In    io.Reader
	Out   io.Writer
	// Interactive is false when In cannot answer a prompt.
	Interactive bool
	// Yes answers the reinstall prompt in advance.
	Yes bool
}

// NewInstaller returns an Installer for the invoking user.
func NewInstaller(yes bool) (*Installer, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, errors.Wrap(err, "locating home directory")
	}
	return &Installer{
		Home:        home,
		Shell:       os.Getenv("SHELL"),
		In:          os.Stdin,
		Out:         os.Stdout,
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
		Yes:         yes,
	}, nil
}

// Install detects the shell, resets the transcript and writes the block.
// An undetectable shell or a declined reinstall is reported to Out and is
// not an error.
func (i *Installer) Install() error {
	fmt.Fprintln(i.Out, "Starting installation...")
	shell, ok := Detect(i.Shell, i.Home)
	if !ok {
		fmt.Fprintln(i.Out, "Could not determine your shell configuration.")
		fmt.Fprintln(i.Out, manualHint)
		return nil
	}
	plog.Infof("using %s startup file %s", shell.Name, shell.RCFile)

	if err := i.resetHistory(); err != nil {
		return err
	}

	data, err := os.ReadFile(shell.RCFile)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "reading %s", shell.RCFile)
	}
	content := string(data)

	if HasBlock(content) {
		reinstall, err := i.confirm("Open Interpreter shell integration appears to be already installed. Would you like to reinstall? (y/n): ")
		if err != nil {
			return err
		}
		if !reinstall {
			fmt.Fprintln(i.Out, "Installation cancelled.")
			return nil
		}
	}

	rendered, err := Render(content, shell.Name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(shell.RCFile, []byte(rendered), 0644); err != nil {
		fmt.Fprintf(i.Out, "Error writing to %s: %v\n", shell.RCFile, err)
		fmt.Fprintln(i.Out, manualHint)
		return errors.Wrapf(err, "writing %s", shell.RCFile)
	}
	fmt.Fprintf(i.Out, "Successfully installed Open Interpreter shell integration to %s\n", shell.RCFile)
	fmt.Fprintf(i.Out, "Please restart your shell or run 'source %s' to apply changes.\n", shell.RCFile)
	return nil
}

func (i *Installer) resetHistory() error {
	p := filepath.Join(i.Home, HistoryFile)
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "removing %s", p)
	}
	if err := os.WriteFile(p, nil, 0644); err != nil {
		return errors.Wrapf(err, "creating %s", p)
	}
	return nil
}

func (i *Installer) confirm(prompt string) (bool, error) {
	if i.Yes {
		return true, nil
	}
	if !i.Interactive {
		plog.Notice("stdin is not a terminal; pass --yes to reinstall")
		return false, nil
	}
	fmt.Fprint(i.Out, prompt)
	line, err := bufio.NewReader(i.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, errors.Wrap(err, "reading answer")
	}
	return strings.ToLower(strings.TrimSpace(line)) == "y", nil
}
