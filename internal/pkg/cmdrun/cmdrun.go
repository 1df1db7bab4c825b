// Package cmdrun runs the external tools the bootstrap delegates to.
//
// Every command is synchronous, inherits the caller's stdio, and on Linux is
// bound to the caller's lifetime with prctl(PR_SET_PDEATHSIG). Failures are
// wrapped with the command line, but the underlying *exec.ExitError stays
// reachable with errors.As so the exit status can be propagated.
package cmdrun

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/coreos/pkg/capnslog"
	"github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
)

var plog = capnslog.NewPackageLogger("github.com/openinterpreter/oi-bootstrap", "cmdrun")

// Runner executes commands given as argv slices.
type Runner interface {
	// Run executes argv to completion.
	Run(ctx context.Context, argv []string) error
	// Pipe executes producer | consumer and fails if either side fails.
	Pipe(ctx context.Context, producer, consumer []string) error
}

// Exec is the Runner backed by real processes.
type Exec struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExec returns an Exec wired to the process stdio.
func NewExec() *Exec {
	return &Exec{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// String renders argv the way a shell would need it typed.
func String(argv ...string) string {
	return shellquote.Join(argv...)
}

func (e *Exec) command(ctx context.Context, argv []string) (*exec.Cmd, error) {
	if len(argv) == 0 {
		return nil, errors.New("empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	// Run what a shell would run, even if it resolved through ".".
	if errors.Is(cmd.Err, exec.ErrDot) {
		cmd.Err = nil
	}
	setSysProcAttr(cmd)
	cmd.Stderr = e.Stderr
	return cmd, nil
}

// Run synchronously invokes argv, logging the command line to stdout.
func (e *Exec) Run(ctx context.Context, argv []string) error {
	cmd, err := e.command(ctx, argv)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.Stdout, "Running: %s\n", String(argv...))
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "error running %s", String(argv...))
	}
	return nil
}

// Pipe runs producer with its stdout connected to consumer's stdin.
// Both run concurrently. As with pipefail, the consumer's failure is
// reported first; the producer's failure is reported only when the consumer
// succeeded, so a failed download still fails the pipe.
func (e *Exec) Pipe(ctx context.Context, producer, consumer []string) error {
	src, err := e.command(ctx, producer)
	if err != nil {
		return err
	}
	dst, err := e.command(ctx, consumer)
	if err != nil {
		return err
	}
	line := String(producer...) + " | " + String(consumer...)
	fmt.Fprintf(e.Stdout, "Running: %s\n", line)

	pr, pw, err := os.Pipe()
	if err != nil {
		return errors.Wrap(err, "creating pipe")
	}
	src.Stdout = pw
	dst.Stdin = pr
	dst.Stdout = e.Stdout

	if err := src.Start(); err != nil {
		pr.Close()
		pw.Close()
		return errors.Wrapf(err, "error running %s", String(producer...))
	}
	if err := dst.Start(); err != nil {
		pr.Close()
		pw.Close()
		src.Process.Kill()
		src.Wait()
		return errors.Wrapf(err, "error running %s", String(consumer...))
	}
	// The children hold their own copies now.
	pr.Close()
	pw.Close()

	srcErr := src.Wait()
	dstErr := dst.Wait()
	plog.Debugf("%s: producer=%v consumer=%v", line, srcErr, dstErr)
	if dstErr != nil {
		return errors.Wrapf(dstErr, "error running %s", String(consumer...))
	}
	if srcErr != nil {
		return errors.Wrapf(srcErr, "error running %s", String(producer...))
	}
	return nil
}

// ExitStatus extracts the exit code of a failed child from err. A child
// killed by a signal reports 128+signal, as a shell would.
func ExitStatus(err error) (int, bool) {
	var eerr *exec.ExitError
	if !errors.As(err, &eerr) {
		return 0, false
	}
	if status, ok := eerr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal()), true
	}
	return eerr.ExitCode(), true
}
