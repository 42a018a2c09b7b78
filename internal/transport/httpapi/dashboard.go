package httpapi

import (
	"net/http"
	"strings"

	"zhujian/internal/usecase/analytics"
)

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	projectID, err := s.resolveProjectID(r)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	summary, err := s.analytics.Summary(r.Context(), projectID, queryInt(r, "limit", 10))
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDashboardFocus(w http.ResponseWriter, r *http.Request) {
	projectID, err := s.resolveProjectID(r)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	var building *string
	if b := strings.TrimSpace(r.URL.Query().Get("building")); b != "" {
		building = &b
	}
	pack, err := s.analytics.BuildFocusPack(r.Context(), analytics.FocusInput{
		ProjectID:   projectID,
		Days:        queryInt(r, "time_range_days", 0),
		Building:    building,
		RunBackfill: queryBool(r, "do_backfill", true),
	})
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, pack)
}
