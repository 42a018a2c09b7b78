package httpapi

import (
	"net/http"
	"strings"
)

const projectListLimit = 200

type ensureProjectRequest struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.records.ListProjects(r.Context(), projectListLimit)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, toProjectView(p))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleEnsureProject(w http.ResponseWriter, r *http.Request) {
	var req ensureProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	var address *string
	if req.Address != nil && strings.TrimSpace(*req.Address) != "" {
		trimmed := strings.TrimSpace(*req.Address)
		address = &trimmed
	}
	project, err := s.records.UpsertProject(r.Context(), req.Name, address)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": project.ProjectID, "name": project.Name})
}
