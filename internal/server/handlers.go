package server

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strconv"

	"garmindash/internal/storage"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":  true,
		"msg": "Backend running. Try /api/daily-summary",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (s *Server) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	db, ok := s.openDB(w)
	if !ok {
		return
	}
	defer db.Close()

	rows, err := db.DailySummaries(r.Context(), daysParam(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleSleep(w http.ResponseWriter, r *http.Request) {
	db, ok := s.openDB(w)
	if !ok {
		return
	}
	defer db.Close()

	rows, err := db.SleepNights(r.Context(), daysParam(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	db, ok := s.openDB(w)
	if !ok {
		return
	}
	defer db.Close()

	rows, err := db.StepsDays(r.Context(), daysParam(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleStress(w http.ResponseWriter, r *http.Request) {
	db, ok := s.openDB(w)
	if !ok {
		return
	}
	defer db.Close()

	rows, err := db.StressDays(r.Context(), daysParam(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleExercise(w http.ResponseWriter, r *http.Request) {
	db, ok := s.openDB(w)
	if !ok {
		return
	}
	defer db.Close()

	rows, err := db.ExerciseDays(r.Context(), daysParam(r))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleDBInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"path":       s.paths.DBPath(),
		"exists":     false,
		"size_bytes": int64(0),
	}
	if st, err := os.Stat(s.paths.DBPath()); err == nil {
		info["exists"] = true
		info["size_bytes"] = st.Size()
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleUpdateLog(w http.ResponseWriter, r *http.Request) {
	f, err := os.Open(s.paths.UpdateLogPath())
	if err != nil {
		if os.IsNotExist(err) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "No log yet"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.Copy(w, f)
}

// openDB verifies the data store exists and opens it for one request. A
// missing file is reported as 503 so clients can tell "not synced yet"
// from a genuine failure.
func (s *Server) openDB(w http.ResponseWriter) (*storage.DB, bool) {
	path := s.paths.DBPath()
	if _, err := os.Stat(path); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Database not found at " + path})
		return nil, false
	}
	db, err := storage.Open(path)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return nil, false
	}
	return db, true
}

// daysParam reads the optional days window; the storage layer clamps it.
func daysParam(r *http.Request) int {
	v := r.URL.Query().Get("days")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
