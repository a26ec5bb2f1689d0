package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"garmindash/internal/config"
	"garmindash/internal/paths"
	"garmindash/internal/settings"
	"garmindash/internal/storage"
	"garmindash/internal/syncer"
)

// newTestServer builds a Server rooted in a fresh temp home. syncCommand
// replaces the real sync tool; tests that never sync pass /bin/true.
func newTestServer(t *testing.T, syncCommand string) (*Server, paths.Paths) {
	t.Helper()
	p, err := paths.New(t.TempDir())
	if err != nil {
		t.Fatalf("paths.New: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := settings.NewStore(p)
	run := syncer.New(config.SyncConfig{Command: syncCommand, TimeoutMinutes: 1}, p, log)
	return New(p, st, run, log), p
}

// seedDB provisions the layout and executes schema/data statements against
// the database file the handlers will read.
func seedDB(t *testing.T, p paths.Paths, stmts ...string) {
	t.Helper()
	if _, err := p.EnsureTree(); err != nil {
		t.Fatalf("EnsureTree: %v", err)
	}
	conn, err := sql.Open("sqlite", p.DBPath())
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	defer conn.Close()
	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}

func doRequest(s *Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

// TestRootBanner verifies the root endpoint points clients at the API.
func TestRootBanner(t *testing.T) {
	s, _ := newTestServer(t, "/bin/true")
	rec := doRequest(s, http.MethodGet, "/", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["ok"] != true {
		t.Errorf("ok = %v, want true", body["ok"])
	}
	if msg, _ := body["msg"].(string); !strings.Contains(msg, "/api/daily-summary") {
		t.Errorf("msg = %q, want it to mention /api/daily-summary", msg)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t, "/bin/true")
	rec := doRequest(s, http.MethodGet, "/health", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "ok" {
		t.Errorf("body = %q, want %q", got, "ok")
	}
}

// TestReadersRequireDatabase verifies every reader endpoint reports 503
// with the resolved path while the sync tool has not yet produced a
// database.
func TestReadersRequireDatabase(t *testing.T) {
	s, p := newTestServer(t, "/bin/true")
	endpoints := []string{
		"/api/daily-summary",
		"/api/sleep",
		"/api/steps",
		"/api/stress",
		"/api/exercise",
	}
	for _, ep := range endpoints {
		rec := doRequest(s, http.MethodGet, ep, nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s status = %d, want 503", ep, rec.Code)
			continue
		}
		var body map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("GET %s decode error: %v", ep, err)
		}
		if !strings.Contains(body["error"], p.DBPath()) {
			t.Errorf("GET %s error = %q, want it to contain %q", ep, body["error"], p.DBPath())
		}
	}
}

// TestDailySummaryEndpoint verifies the joined read path end to end
// against a real database file.
func TestDailySummaryEndpoint(t *testing.T) {
	s, p := newTestServer(t, "/bin/true")
	seedDB(t, p,
		`CREATE TABLE daily_summary (day DATE, steps INTEGER, rhr INTEGER)`,
		`CREATE TABLE sleep_summary (day DATE, sleep_seconds INTEGER)`,
		`INSERT INTO daily_summary VALUES ('2024-03-09', 9214, 52)`,
		`INSERT INTO sleep_summary VALUES ('2024-03-09', 27000)`,
	)

	rec := doRequest(s, http.MethodGet, "/api/daily-summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var rows []storage.DailySummaryRow
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	row := rows[0]
	if row.Date != "2024-03-09" {
		t.Errorf("date = %q, want 2024-03-09", row.Date)
	}
	if row.Steps == nil || *row.Steps != 9214 {
		t.Errorf("steps = %v, want 9214", row.Steps)
	}
	if row.SleepSeconds == nil || *row.SleepSeconds != 27000 {
		t.Errorf("sleepSeconds = %v, want 27000", row.SleepSeconds)
	}
}

// TestDaysParam verifies the days window is honored and clamped.
func TestDaysParam(t *testing.T) {
	s, p := newTestServer(t, "/bin/true")
	stmts := []string{`CREATE TABLE daily_summary (day DATE, steps INTEGER, step_goal INTEGER)`}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		day := base.AddDate(0, 0, i).Format("2006-01-02")
		stmts = append(stmts, fmt.Sprintf(`INSERT INTO daily_summary VALUES ('%s', %d, 10000)`, day, 1000+i))
	}
	seedDB(t, p, stmts...)

	tests := []struct {
		query string
		want  int
	}{
		{"", 30},          // default window
		{"?days=5", 5},    // explicit
		{"?days=400", 40}, // clamped to 365, only 40 rows exist
		{"?days=bogus", 30},
	}
	for _, tt := range tests {
		rec := doRequest(s, http.MethodGet, "/api/steps"+tt.query, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET /api/steps%s status = %d", tt.query, rec.Code)
		}
		var rows []storage.StepsRow
		if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
			t.Fatalf("decode error: %v", err)
		}
		if len(rows) != tt.want {
			t.Errorf("GET /api/steps%s returned %d rows, want %d", tt.query, len(rows), tt.want)
		}
	}
}

// TestEmptyTableGivesEmptyArray verifies a present but empty table encodes
// as [] rather than null.
func TestEmptyTableGivesEmptyArray(t *testing.T) {
	s, p := newTestServer(t, "/bin/true")
	seedDB(t, p, `CREATE TABLE daily_summary (day DATE, steps INTEGER, stress_avg REAL, rhr INTEGER)`)

	rec := doRequest(s, http.MethodGet, "/api/stress", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

// TestReaderFailureSurfacesDiagnostic verifies a schema mismatch comes back
// as a 500 naming the missing column.
func TestReaderFailureSurfacesDiagnostic(t *testing.T) {
	s, p := newTestServer(t, "/bin/true")
	seedDB(t, p, `CREATE TABLE daily_summary (day DATE, steps INTEGER)`)

	rec := doRequest(s, http.MethodGet, "/api/stress", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if !strings.Contains(body["error"], "stress_avg") {
		t.Errorf("error = %q, want it to name stress_avg", body["error"])
	}
}

func TestDBInfoEndpoint(t *testing.T) {
	s, p := newTestServer(t, "/bin/true")

	rec := doRequest(s, http.MethodGet, "/api/db-info", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var info map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info["path"] != p.DBPath() {
		t.Errorf("path = %v, want %q", info["path"], p.DBPath())
	}
	if info["exists"] != false {
		t.Errorf("exists = %v, want false", info["exists"])
	}
	if info["size_bytes"] != float64(0) {
		t.Errorf("size_bytes = %v, want 0", info["size_bytes"])
	}

	seedDB(t, p, `CREATE TABLE daily_summary (day DATE, steps INTEGER, rhr INTEGER)`)
	rec = doRequest(s, http.MethodGet, "/api/db-info", nil)
	info = map[string]any{}
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info["exists"] != true {
		t.Errorf("exists = %v, want true after seeding", info["exists"])
	}
	if size, _ := info["size_bytes"].(float64); size <= 0 {
		t.Errorf("size_bytes = %v, want > 0 after seeding", info["size_bytes"])
	}
}

func TestUpdateLogEndpoint(t *testing.T) {
	s, p := newTestServer(t, "/bin/true")

	rec := doRequest(s, http.MethodGet, "/api/update/log", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 before first sync", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body["error"] != "No log yet" {
		t.Errorf("error = %q, want %q", body["error"], "No log yet")
	}

	if err := os.MkdirAll(p.ConfigDir(), 0o750); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(p.UpdateLogPath(), []byte("$ garmindb_cli.py\nexit=0\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rec = doRequest(s, http.MethodGet, "/api/update/log", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
	if !strings.Contains(rec.Body.String(), "exit=0") {
		t.Errorf("body = %q, want the log text", rec.Body.String())
	}
}
