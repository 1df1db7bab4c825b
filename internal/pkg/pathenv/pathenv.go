// Package pathenv wraps the parts of the process environment the bootstrap
// reads and mutates: command resolution and the PATH variable.
package pathenv

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by LookPath when a command is not on PATH.
var ErrNotFound = exec.ErrNotFound

// Env resolves commands and reads/writes environment variables.
type Env interface {
	LookPath(name string) (string, error)
	Getenv(key string) string
	Setenv(key, value string) error
}

// OS is the Env of the running process.
type OS struct{}

// LookPath resolves name like command -v does, so a match found through a
// relative PATH entry such as "." counts.
func (OS) LookPath(name string) (string, error) {
	p, err := exec.LookPath(name)
	if errors.Is(err, exec.ErrDot) {
		return p, nil
	}
	return p, err
}

func (OS) Getenv(key string) string       { return os.Getenv(key) }
func (OS) Setenv(key, value string) error { return os.Setenv(key, value) }

// IsNotFound reports true if err came from a failed command lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Prepend puts dir at the front of PATH. An existing entry for dir is
// moved rather than duplicated. Empty entries mean the current directory
// and are kept.
func Prepend(env Env, dir string) error {
	dir = filepath.Clean(dir)
	entries := []string{dir}
	path := env.Getenv("PATH")
	if path == "" {
		return env.Setenv("PATH", dir)
	}
	for _, p := range strings.Split(path, string(os.PathListSeparator)) {
		if p != "" && filepath.Clean(p) == dir {
			continue
		}
		entries = append(entries, p)
	}
	return env.Setenv("PATH", strings.Join(entries, string(os.PathListSeparator)))
}
