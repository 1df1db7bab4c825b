package cmdrun

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestExec() (*Exec, *bytes.Buffer) {
	var out bytes.Buffer
	return &Exec{Stdin: strings.NewReader(""), Stdout: &out, Stderr: &out}, &out
}

func TestRun(t *testing.T) {
	e, out := newTestExec()
	ctx := context.Background()
	if err := e.Run(ctx, []string{"true"}); err != nil {
		t.Fatalf("true failed: %v", err)
	}
	if !strings.Contains(out.String(), "Running: true") {
		t.Errorf("command line not logged: %q", out.String())
	}

	err := e.Run(ctx, []string{"sh", "-c", "exit 3"})
	if err == nil {
		t.Fatal("expected error")
	}
	if code, ok := ExitStatus(err); !ok || code != 3 {
		t.Errorf("ExitStatus = %d, %v; want 3, true", code, ok)
	}

	if err := e.Run(ctx, nil); err == nil {
		t.Error("empty argv should fail")
	}
}

func TestRunQuotesArgs(t *testing.T) {
	e, out := newTestExec()
	if err := e.Run(context.Background(), []string{"echo", "two words"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Running: echo 'two words'") {
		t.Errorf("argv not shell quoted: %q", out.String())
	}
	if !strings.Contains(out.String(), "two words\n") {
		t.Errorf("child stdout not passed through: %q", out.String())
	}
}

func TestPipe(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		producer []string
		consumer []string
		code     int
		ok       bool
	}{
		{"success", []string{"printf", "echo piped\n"}, []string{"sh"}, 0, true},
		{"consumer fails", []string{"printf", "exit 4\n"}, []string{"sh"}, 4, false},
		{"producer fails", []string{"sh", "-c", "echo true; exit 7"}, []string{"sh"}, 7, false},
		{"both fail", []string{"sh", "-c", "exit 5"}, []string{"sh", "-c", "cat >/dev/null; exit 6"}, 6, false},
		{"consumer exits first", []string{"yes", "exit 9"}, []string{"sh"}, 9, false},
	}
	for _, tt := range tests {
		e, out := newTestExec()
		err := e.Pipe(ctx, tt.producer, tt.consumer)
		if tt.ok {
			if err != nil {
				t.Errorf("%s: unexpected error %v", tt.name, err)
			}
			if !strings.Contains(out.String(), "piped") {
				t.Errorf("%s: consumer output missing: %q", tt.name, out.String())
			}
			continue
		}
		code, ok := ExitStatus(err)
		if !ok || code != tt.code {
			t.Errorf("%s: ExitStatus = %d, %v; want %d (err %v)", tt.name, code, ok, tt.code, err)
		}
	}
}

func TestPipeMissingCommand(t *testing.T) {
	e, _ := newTestExec()
	err := e.Pipe(context.Background(), []string{"oi-bootstrap-no-such-tool"}, []string{"sh"})
	if err == nil {
		t.Fatal("expected error for missing producer")
	}
	if _, ok := ExitStatus(err); ok {
		t.Errorf("a missing binary is not an exit status: %v", err)
	}
}

func TestRunThroughDotPath(t *testing.T) {
	dir := t.TempDir()
	script := "#!/bin/sh\necho from dot\n"
	if err := os.WriteFile(filepath.Join(dir, "oi-dot-tool"), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("PATH", "."+string(os.PathListSeparator)+os.Getenv("PATH"))

	e, out := newTestExec()
	if err := e.Run(context.Background(), []string{"oi-dot-tool"}); err != nil {
		t.Fatalf("tool on . should run: %v", err)
	}
	if !strings.Contains(out.String(), "from dot") {
		t.Errorf("unexpected output %q", out.String())
	}
}
