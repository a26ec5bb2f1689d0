package server

import (
	"context"
	"net/http"
	"os"

	"garmindash/internal/settings"
	"garmindash/internal/storage"
)

// handleUpdate applies an optional settings payload, then runs one blocking
// sync. The full Result is returned either way; the status code reflects
// whether the run succeeded.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !s.writeMu.TryLock() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "another sync or erase is in progress"})
		return
	}
	defer s.writeMu.Unlock()

	u, err := settings.DecodeUpdate(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid settings payload: " + err.Error()})
		return
	}
	if !u.IsZero() {
		// New credentials mean the cached session may belong to the wrong
		// account; drop it before writing so the next login starts clean.
		if err := s.settings.InvalidateSession(); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if err := s.settings.Apply(u); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}

	// Once issued, the run is not cancelable: a client disconnect must not
	// kill the tool mid-import. Only the runner's own timeout bounds it.
	res, err := s.syncer.Run(context.WithoutCancel(r.Context()))
	if err != nil {
		s.log.Error("sync launch failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	status := http.StatusOK
	if !res.OK {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	doc, err := s.settings.Read()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handlePostConfig(w http.ResponseWriter, r *http.Request) {
	u, err := settings.DecodeUpdate(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid settings payload: " + err.Error()})
		return
	}
	if err := s.settings.InvalidateSession(); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if err := s.settings.Apply(u); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleEnsureFolders(w http.ResponseWriter, r *http.Request) {
	created, err := s.paths.EnsureTree()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	wroteDefault, err := s.settings.WriteDefault()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":                   true,
		"data_root":            s.paths.DataRoot(),
		"created_paths":        created,
		"config_path":          s.settings.Path(),
		"wrote_default_config": wroteDefault,
	})
}

// handleErase destroys synced data. scope=all clears everything under the
// data root; scope=db keeps the files and empties the database tables.
// Both drop the cached session.
func (s *Server) handleErase(w http.ResponseWriter, r *http.Request) {
	if !s.writeMu.TryLock() {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "another sync or erase is in progress"})
		return
	}
	defer s.writeMu.Unlock()

	scope := r.URL.Query().Get("scope")
	switch scope {
	case "", "all":
		s.eraseAll(w, r)
	case "db":
		s.eraseDB(w, r)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "scope must be all or db"})
	}
}

func (s *Server) eraseAll(w http.ResponseWriter, r *http.Request) {
	root := s.paths.DataRoot()
	if _, err := os.Stat(root); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "No HealthData folder found at " + root})
		return
	}
	if r.URL.Query().Get("confirm") != "true" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "You must pass ?confirm=true to erase all data"})
		return
	}

	removed, err := s.paths.EraseDataRoot()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if err := s.settings.InvalidateSession(); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.log.Info("erased data root", "path", root, "removed", len(removed))
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "erased_all_contents",
		"path_cleared": root,
		"removed":      removed,
	})
}

func (s *Server) eraseDB(w http.ResponseWriter, r *http.Request) {
	path := s.paths.DBPath()
	if _, err := os.Stat(path); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "Database not found at " + path})
		return
	}
	if r.URL.Query().Get("confirm") != "true" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "You must pass ?confirm=true to erase all data"})
		return
	}

	db, err := storage.Open(path)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	defer db.Close()

	// Like a sync, an issued erase runs to completion regardless of the
	// requesting client.
	cleared, err := db.ClearAllTables(context.WithoutCancel(r.Context()))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if err := s.settings.InvalidateSession(); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.log.Info("cleared database tables", "path", path, "tables", len(cleared))
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "erased",
		"tables_cleared": cleared,
	})
}
