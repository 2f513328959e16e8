package server

import (
	"encoding/json"
	"net/http"

	"github.com/contextsuite/catalogd/internal/model"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health and
// GET /metrics) must include a valid Authorization: Bearer <token> header.
func (s *CatalogServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/events", s.handleListEvents)
	mux.HandleFunc("GET /v1/events/{id}", s.handleGetEvent)
	mux.HandleFunc("GET /v1/events/slug/{slug}", s.handleGetEventBySlug)
	mux.HandleFunc("GET /v1/events/category/{category}", s.handleGetEventsByCategory)
	mux.HandleFunc("GET /v1/filters", s.handleGetFilters)
	mux.HandleFunc("POST /v1/sync/refresh", s.handleRefresh)
	mux.HandleFunc("POST /v1/sync/reload", s.handleReload)
	mux.HandleFunc("GET /v1/sync/last", s.handleLastSync)
	mux.HandleFunc("GET /v1/cache/status", s.handleCacheStatus)
	mux.HandleFunc("GET /v1/snapshot", s.handleSnapshotInfo)
	mux.HandleFunc("DELETE /v1/snapshot", s.handleClearSnapshot)
	mux.HandleFunc("GET /v1/snapshot/backups", s.handleListBackups)
	mux.HandleFunc("POST /v1/snapshot/backups/{filename}/restore", s.handleRestoreBackup)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	return AuthMiddleware(authToken, mux)
}

// handleListEvents handles GET /v1/events.
func (s *CatalogServer) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.svc.GetAllEvents(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

// handleGetEvent handles GET /v1/events/{id}.
func (s *CatalogServer) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.svc.GetEventByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if ev == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// handleGetEventBySlug handles GET /v1/events/slug/{slug}.
func (s *CatalogServer) handleGetEventBySlug(w http.ResponseWriter, r *http.Request) {
	ev, err := s.svc.GetEventBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if ev == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// handleGetEventsByCategory handles GET /v1/events/category/{category}.
func (s *CatalogServer) handleGetEventsByCategory(w http.ResponseWriter, r *http.Request) {
	events, err := s.svc.GetEventsByCategory(r.Context(), r.PathValue("category"))
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

// handleGetFilters handles GET /v1/filters.
func (s *CatalogServer) handleGetFilters(w http.ResponseWriter, r *http.Request) {
	filters, err := s.svc.GetFilterOptions(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, filters)
}

// handleRefresh handles POST /v1/sync/refresh. With ?remote=true the local
// snapshot is bypassed.
func (s *CatalogServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var result *model.SyncResult
	if r.URL.Query().Get("remote") == "true" {
		result = s.svc.ForceRemoteReload(r.Context())
	} else {
		result = s.svc.ForceRefresh(r.Context())
	}
	s.metrics.Observe(result)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, result)
}

// handleReload handles POST /v1/sync/reload: discard the cache and re-prime
// from the remote source.
func (s *CatalogServer) handleReload(w http.ResponseWriter, r *http.Request) {
	result := s.svc.ForceRemoteReload(r.Context())
	s.metrics.Observe(result)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, result)
}

// handleLastSync handles GET /v1/sync/last.
func (s *CatalogServer) handleLastSync(w http.ResponseWriter, _ *http.Request) {
	result := s.svc.LastResult()
	if result == nil {
		writeError(w, http.StatusNotFound, "no sync has run")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCacheStatus handles GET /v1/cache/status.
func (s *CatalogServer) handleCacheStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.CacheStatus())
}

// handleSnapshotInfo handles GET /v1/snapshot.
func (s *CatalogServer) handleSnapshotInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.SnapshotInfo())
}

// handleClearSnapshot handles DELETE /v1/snapshot.
func (s *CatalogServer) handleClearSnapshot(w http.ResponseWriter, _ *http.Request) {
	if err := s.svc.ClearSnapshot(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// handleListBackups handles GET /v1/snapshot/backups.
func (s *CatalogServer) handleListBackups(w http.ResponseWriter, _ *http.Request) {
	backups, err := s.svc.Backups()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"backups": backups, "count": len(backups)})
}

// handleRestoreBackup handles POST /v1/snapshot/backups/{filename}/restore.
func (s *CatalogServer) handleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.RestoreBackup(r.Context(), r.PathValue("filename"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.metrics.Observe(result)
	writeJSON(w, http.StatusOK, result)
}

// handleHealth handles GET /v1/health.
func (s *CatalogServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
