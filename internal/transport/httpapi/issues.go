package httpapi

import (
	"net/http"
	"strings"
	"time"

	"zhujian/internal/ports"
	"zhujian/internal/usecase/records"
)

type issueCreateRequest struct {
	ProjectID   uint64 `json:"project_id"`
	ProjectName string `json:"project_name"`

	RegionCode *string `json:"region_code"`
	RegionText string  `json:"region_text"`

	Division    *string `json:"division"`
	Subdivision *string `json:"subdivision"`
	Item        *string `json:"item"`
	Indicator   *string `json:"indicator"`

	Description       string  `json:"description"`
	Severity          *string `json:"severity"`
	DeadlineDays      *int    `json:"deadline_days"`
	ResponsibleUnit   *string `json:"responsible_unit"`
	ResponsiblePerson *string `json:"responsible_person"`

	Status    string  `json:"status"`
	PhotoPath *string `json:"photo_path"`
	AIJSON    *string `json:"ai_json"`

	ClientCreatedAt *time.Time `json:"client_created_at"`
	Source          *string    `json:"source"`
	ClientRecordID  *string    `json:"client_record_id"`
}

func (s *Server) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	var req issueCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	issue, err := s.records.CreateIssue(r.Context(), records.CreateIssueInput{
		ProjectID:   req.ProjectID,
		ProjectName: req.ProjectName,
		RegionCode:  req.RegionCode,
		RegionText:  req.RegionText,
		Taxonomy: ports.Taxonomy{
			Division:    req.Division,
			Subdivision: req.Subdivision,
			Item:        req.Item,
			Indicator:   req.Indicator,
		},
		Description:       req.Description,
		Severity:          req.Severity,
		DeadlineDays:      req.DeadlineDays,
		ResponsibleUnit:   req.ResponsibleUnit,
		ResponsiblePerson: req.ResponsiblePerson,
		Status:            req.Status,
		PhotoPath:         req.PhotoPath,
		AIJSON:            req.AIJSON,
		ClientCreatedAt:   req.ClientCreatedAt,
		Source:            req.Source,
		ClientRecordID:    req.ClientRecordID,
	})
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"id": issue.IssueID})
}

func (s *Server) handleListIssues(w http.ResponseWriter, r *http.Request) {
	projectID, err := s.resolveProjectID(r)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	var responsibleUnit *string
	if unit := strings.TrimSpace(r.URL.Query().Get("responsible_unit")); unit != "" {
		responsibleUnit = &unit
	}
	rows, err := s.records.ListIssues(r.Context(), records.ListIssuesInput{
		ProjectID:       projectID,
		Status:          strings.TrimSpace(r.URL.Query().Get("status")),
		ResponsibleUnit: responsibleUnit,
		Limit:           queryInt(r, "limit", 100),
	})
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	views := make([]issueView, 0, len(rows))
	for _, issue := range rows {
		views = append(views, toIssueView(issue))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	issueID, ok := pathID(r, "issueID")
	if !ok {
		writeError(w, http.StatusNotFound, "issue report not found")
		return
	}
	issue, err := s.records.GetIssue(r.Context(), issueID)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toIssueView(issue))
}

func (s *Server) handleListIssueActions(w http.ResponseWriter, r *http.Request) {
	issueID, ok := pathID(r, "issueID")
	if !ok {
		writeError(w, http.StatusNotFound, "issue report not found")
		return
	}
	if _, err := s.records.GetIssue(r.Context(), issueID); err != nil {
		writeServiceError(r, w, err)
		return
	}
	actions, err := s.records.ListActions(r.Context(), ports.TargetIssue, issueID)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionViews(actions))
}

func (s *Server) handleAddIssueAction(w http.ResponseWriter, r *http.Request) {
	issueID, ok := pathID(r, "issueID")
	if !ok {
		writeError(w, http.StatusNotFound, "issue report not found")
		return
	}
	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	action, err := s.records.AppendAction(r.Context(), ports.TargetIssue, issueID, req.toInput())
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"id": action.ActionID})
}

func (s *Server) handleCloseIssue(w http.ResponseWriter, r *http.Request) {
	issueID, ok := pathID(r, "issueID")
	if !ok {
		writeError(w, http.StatusNotFound, "issue report not found")
		return
	}
	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	issue, action, err := s.records.CloseIssue(r.Context(), issueID, req.toInput())
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        issue.IssueID,
		"status":    issue.Status,
		"action_id": action.ActionID,
	})
}
