package syncer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"garmindash/internal/paths"
)

func newTestRunner(t *testing.T, command string) *Runner {
	t.Helper()
	home := t.TempDir()
	p, err := paths.New(home)
	if err != nil {
		t.Fatalf("paths.New: %v", err)
	}
	return &Runner{
		command: command,
		home:    home,
		logPath: p.UpdateLogPath(),
		timeout: 5 * time.Second,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "garmindb_stub.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("writing stub script: %v", err)
	}
	return path
}

// TestRunSuccess checks that a clean exit is reported as ok and that the
// run is appended to the update log.
func TestRunSuccess(t *testing.T) {
	stub := writeScript(t, `echo "downloaded 3 activities"`)
	r := newTestRunner(t, stub)

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.OK {
		t.Errorf("OK = false, want true")
	}
	if res.Returncode != 0 {
		t.Errorf("Returncode = %d, want 0", res.Returncode)
	}
	if !strings.Contains(res.Stdout, "downloaded 3 activities") {
		t.Errorf("Stdout = %q, want it to contain the script output", res.Stdout)
	}
	if res.TimedOut {
		t.Errorf("TimedOut = true, want false")
	}
	if !strings.HasSuffix(res.StartedAt, "Z") || !strings.HasSuffix(res.EndedAt, "Z") {
		t.Errorf("timestamps %q / %q should be UTC with a Z suffix", res.StartedAt, res.EndedAt)
	}
	if res.Log != r.logPath {
		t.Errorf("Log = %q, want %q", res.Log, r.logPath)
	}

	data, err := os.ReadFile(r.logPath)
	if err != nil {
		t.Fatalf("reading update log: %v", err)
	}
	if !strings.Contains(string(data), "$ "+stub) {
		t.Errorf("update log missing command line, got %q", data)
	}
	if !strings.Contains(string(data), "exit=0") {
		t.Errorf("update log missing exit status, got %q", data)
	}
}

// TestRunFailure checks that a non-zero exit is a normal result, not an
// error, and that stderr and the exit status are captured.
func TestRunFailure(t *testing.T) {
	stub := writeScript(t, "echo boom >&2\nexit 7")
	r := newTestRunner(t, stub)

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.OK {
		t.Errorf("OK = true, want false")
	}
	if res.Returncode != 7 {
		t.Errorf("Returncode = %d, want 7", res.Returncode)
	}
	if !strings.Contains(res.Stderr, "boom") {
		t.Errorf("Stderr = %q, want it to contain %q", res.Stderr, "boom")
	}

	data, err := os.ReadFile(r.logPath)
	if err != nil {
		t.Fatalf("reading update log: %v", err)
	}
	if !strings.Contains(string(data), "exit=7") {
		t.Errorf("update log missing exit status, got %q", data)
	}
}

// TestRunMissingCommand checks that an unresolvable command is a launch
// error and leaves no trace in the update log.
func TestRunMissingCommand(t *testing.T) {
	r := newTestRunner(t, "garmindash-no-such-tool")

	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("Run should fail for a command that is not on PATH")
	}
	if _, err := os.Stat(r.logPath); !os.IsNotExist(err) {
		t.Errorf("update log should not exist after a launch failure")
	}
}

func TestRunCommandNotExecutable(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	r := newTestRunner(t, missing)

	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("Run should fail for a missing absolute path")
	}
	if _, err := os.Stat(r.logPath); !os.IsNotExist(err) {
		t.Errorf("update log should not exist after a launch failure")
	}
}

// TestRunTimeout checks that a run past the deadline is killed and
// reported as timed out rather than as an error.
func TestRunTimeout(t *testing.T) {
	stub := writeScript(t, "sleep 5")
	r := newTestRunner(t, stub)
	r.timeout = 200 * time.Millisecond

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.TimedOut {
		t.Errorf("TimedOut = false, want true")
	}
	if res.OK {
		t.Errorf("OK = true, want false")
	}
}

func TestRunForcesHome(t *testing.T) {
	stub := writeScript(t, `echo "home is $HOME"`)
	r := newTestRunner(t, stub)

	res, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(res.Stdout, "home is "+r.home) {
		t.Errorf("Stdout = %q, want HOME forced to %q", res.Stdout, r.home)
	}
}

func TestEnvWithHome(t *testing.T) {
	env := []string{"PATH=/bin", "HOME=/old", "TERM=xterm"}
	got := envWithHome(env, "/new/home")

	for _, e := range got {
		if e == "HOME=/old" {
			t.Errorf("old HOME entry survived: %v", got)
		}
	}
	if got[len(got)-1] != "HOME=/new/home" {
		t.Errorf("last entry = %q, want HOME=/new/home", got[len(got)-1])
	}
}

func TestIsoUTC(t *testing.T) {
	ts := time.Date(2024, 3, 9, 8, 5, 3, 123456789, time.UTC)
	if got, want := isoUTC(ts), "2024-03-09T08:05:03.123456Z"; got != want {
		t.Errorf("isoUTC = %q, want %q", got, want)
	}
}
