// Package syncer runs the external GarminDB command line tool that downloads
// data from Garmin Connect and imports it into the SQLite databases. The
// tool owns the download/import pipeline; this package only launches it,
// captures its output, and records the outcome.
package syncer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"garmindash/internal/config"
	"garmindash/internal/metrics"
	"garmindash/internal/paths"
)

// syncArgs selects activities, monitoring and sleep, downloads only the
// latest data, and runs the download, import and analyze phases.
var syncArgs = []string{"-a", "-m", "-s", "--download", "--import", "--analyze", "-l"}

// Result describes one completed sync run. Timestamps are UTC in ISO-8601
// form with a trailing Z.
type Result struct {
	StartedAt       string  `json:"started_at"`
	EndedAt         string  `json:"ended_at"`
	DurationSeconds float64 `json:"duration_seconds"`
	Returncode      int     `json:"returncode"`
	OK              bool    `json:"ok"`
	Log             string  `json:"log"`
	Stdout          string  `json:"stdout"`
	Stderr          string  `json:"stderr"`
	TimedOut        bool    `json:"timed_out,omitempty"`
}

// Runner launches the sync tool. Callers serialize runs themselves; the
// HTTP layer holds its write lock for the duration of a run.
type Runner struct {
	command string
	home    string
	logPath string
	timeout time.Duration
	log     *slog.Logger
}

func New(cfg config.SyncConfig, p paths.Paths, log *slog.Logger) *Runner {
	return &Runner{
		command: cfg.Command,
		home:    p.Home,
		logPath: p.UpdateLogPath(),
		timeout: cfg.Timeout(),
		log:     log,
	}
}

// Run executes one blocking sync and reports the outcome. A non-zero exit
// or a timeout is a normal outcome recorded in the Result; the returned
// error is reserved for failing to launch the process at all, in which
// case nothing is appended to the update log.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	command := r.command
	if !filepath.IsAbs(command) {
		resolved, err := exec.LookPath(command)
		if err != nil {
			metrics.SyncRunsTotal.WithLabelValues(metrics.SyncResultError).Inc()
			return nil, fmt.Errorf("resolving sync command: %w", err)
		}
		command = resolved
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, command, syncArgs...)
	// The tool resolves ~/HealthData and ~/.GarminDb from HOME, so point it
	// at our configured home rather than the server's.
	cmd.Env = envWithHome(os.Environ(), r.home)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now().UTC()
	r.log.Info("sync started", "command", command, "timeout", r.timeout)

	runErr := cmd.Run()
	ended := time.Now().UTC()

	if runErr != nil && cmd.ProcessState == nil {
		metrics.SyncRunsTotal.WithLabelValues(metrics.SyncResultError).Inc()
		return nil, fmt.Errorf("starting sync command: %w", runErr)
	}

	res := &Result{
		StartedAt:       isoUTC(started),
		EndedAt:         isoUTC(ended),
		DurationSeconds: ended.Sub(started).Seconds(),
		Returncode:      cmd.ProcessState.ExitCode(),
		Log:             r.logPath,
		Stdout:          stdout.String(),
		Stderr:          stderr.String(),
	}
	res.OK = res.Returncode == 0
	if ctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.OK = false
	}

	if err := r.appendLog(command, res); err != nil {
		r.log.Error("appending update log", "error", err)
	}

	outcome := metrics.SyncResultOK
	switch {
	case res.TimedOut:
		outcome = metrics.SyncResultTimeout
	case !res.OK:
		outcome = metrics.SyncResultFailed
	}
	metrics.SyncRunsTotal.WithLabelValues(outcome).Inc()
	metrics.SyncDuration.Observe(res.DurationSeconds)

	r.log.Info("sync finished",
		"returncode", res.Returncode,
		"ok", res.OK,
		"timed_out", res.TimedOut,
		"duration_seconds", res.DurationSeconds)
	return res, nil
}

// appendLog records the run in the update log in the same shape the tool's
// own wrapper scripts use: the command line, its combined output, and the
// exit status.
func (r *Runner) appendLog(command string, res *Result) error {
	if err := os.MkdirAll(filepath.Dir(r.logPath), 0o750); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(r.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening update log: %w", err)
	}
	defer f.Close()

	line := strings.Join(append([]string{command}, syncArgs...), " ")
	if _, err := fmt.Fprintf(f, "\n$ %s\n%s%s\nexit=%d\n", line, res.Stdout, res.Stderr, res.Returncode); err != nil {
		return fmt.Errorf("writing update log: %w", err)
	}
	return nil
}

func isoUTC(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000Z07:00")
}

// envWithHome returns env with any HOME entry replaced by home.
func envWithHome(env []string, home string) []string {
	out := make([]string, 0, len(env)+1)
	for _, e := range env {
		if !strings.HasPrefix(e, "HOME=") {
			out = append(out, e)
		}
	}
	return append(out, "HOME="+home)
}
