package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/jobboard/internal/catalog"
	"github.com/JonMunkholm/jobboard/internal/logging"
	"github.com/JonMunkholm/jobboard/internal/query"
	"github.com/JonMunkholm/jobboard/internal/web/templates"
)

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// currentSnapshot returns the published snapshot, or the reason there is none.
func (s *Server) currentSnapshot() (*catalog.Snapshot, error) {
	if snap := s.catalog.Snapshot(); snap != nil {
		return snap, nil
	}
	if err := s.catalog.LastError(); err != nil {
		return nil, err
	}
	return nil, catalog.ErrNotLoaded
}

// queryPage reads filters and page from r and runs them against one snapshot.
func (s *Server) queryPage(r *http.Request) (*catalog.Snapshot, catalog.Page, error) {
	snap, err := s.currentSnapshot()
	if err != nil {
		return nil, catalog.Page{}, err
	}
	f := query.FromValues(r.URL.Query())
	page := parseIntParam(r, "page", 1)
	return snap, snap.Query(f, page, s.opts.PageSize, s.now()), nil
}

// handleBoard renders the board page, or just the results for htmx.
func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	snap, res, err := s.queryPage(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	data := templates.BoardData{
		Jobs:     res.Jobs,
		Total:    res.Total,
		Page:     res.Page,
		HasMore:  res.HasMore,
		Filters:  res.Filters,
		Facets:   snap.Facets,
		Source:   snap.Source,
		LoadedAt: snap.LoadedAt,
		Now:      s.now(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("HX-Replace-Url", templates.PageURL(res.Filters, res.Page))

	component := templates.Board(data)
	if isHTMX(r) {
		component = templates.Results(data)
	}
	if err := component.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render board", "error", err)
	}
}

// handleJobs returns one page of query results as JSON.
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	_, res, err := s.queryPage(r)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	w.Header().Set("HX-Replace-Url", templates.PageURL(res.Filters, res.Page))
	writeJSON(w, res)
}

// handleFacets returns facet counts over the full collection.
func (s *Server) handleFacets(w http.ResponseWriter, r *http.Request) {
	snap, err := s.currentSnapshot()
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, snap.Facets)
}

// handleExport streams the full filtered and sorted result as a workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.currentSnapshot()
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	f := query.FromValues(r.URL.Query())
	jobs := query.Apply(snap.Jobs, f, s.now())

	filename := fmt.Sprintf("jobs-%s.xlsx", s.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := s.exporter.WriteXLSX(w, jobs); err != nil {
		// Headers are already sent.
		logging.FromContext(r.Context()).Error("export failed", "error", err, "rows", len(jobs))
	}
}

// handleReload schedules a debounced reload and returns immediately.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	s.reloads.Trigger()
	logging.FromContext(r.Context()).Info("reload requested", "debounce", s.opts.ReloadDebounce.String())

	writeJSONStatus(w, http.StatusAccepted, map[string]string{
		"status":   "scheduled",
		"debounce": s.opts.ReloadDebounce.String(),
	})
}

// handleReloadNow reloads synchronously (the retry action of the failure
// page) and redirects back to the board.
func (s *Server) handleReloadNow(w http.ResponseWriter, r *http.Request) {
	if _, err := s.catalog.Reload(r.Context()); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	catalog.Status
	ReloadPending bool      `json:"reload_pending"`
	Now           time.Time `json:"now"`
}

// handleStatus reports the last load summary and the most recent failure.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, StatusResponse{
		Status:        s.catalog.Status(),
		ReloadPending: s.reloads.Pending(),
		Now:           s.now().UTC(),
	})
}

// handleHealth reports ready once a snapshot is available.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.catalog.Snapshot() == nil {
		writeJSONStatus(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}
