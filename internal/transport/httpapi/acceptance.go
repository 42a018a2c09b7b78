package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"zhujian/internal/ports"
	"zhujian/internal/usecase/records"
)

type acceptanceCreateRequest struct {
	ProjectID   uint64 `json:"project_id"`
	ProjectName string `json:"project_name"`

	RegionCode *string `json:"region_code"`
	RegionText string  `json:"region_text"`

	Division      *string `json:"division"`
	Subdivision   *string `json:"subdivision"`
	Item          *string `json:"item"`
	ItemCode      *string `json:"item_code"`
	Indicator     *string `json:"indicator"`
	IndicatorCode *string `json:"indicator_code"`

	Result    string  `json:"result"`
	PhotoPath *string `json:"photo_path"`
	Remark    *string `json:"remark"`
	AIJSON    *string `json:"ai_json"`

	ClientCreatedAt *time.Time `json:"client_created_at"`
	Source          *string    `json:"source"`
	ClientRecordID  *string    `json:"client_record_id"`
}

type verifyRequest struct {
	Result    string   `json:"result"`
	Remark    *string  `json:"remark"`
	PhotoURLs []string `json:"photo_urls"`
	ActorRole string   `json:"actor_role"`
	ActorName string   `json:"actor_name"`
}

type actionRequest struct {
	ActionType string   `json:"action_type"`
	Content    string   `json:"content"`
	PhotoURLs  []string `json:"photo_urls"`
	ActorRole  string   `json:"actor_role"`
	ActorName  string   `json:"actor_name"`
}

func (req actionRequest) toInput() records.ActionInput {
	return records.ActionInput{
		ActionType: req.ActionType,
		Content:    req.Content,
		PhotoURLs:  req.PhotoURLs,
		ActorRole:  req.ActorRole,
		ActorName:  req.ActorName,
	}
}

func pathID(r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) handleCreateAcceptance(w http.ResponseWriter, r *http.Request) {
	var req acceptanceCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	rec, err := s.records.CreateAcceptance(r.Context(), records.CreateAcceptanceInput{
		ProjectID:   req.ProjectID,
		ProjectName: req.ProjectName,
		RegionCode:  req.RegionCode,
		RegionText:  req.RegionText,
		Taxonomy: ports.Taxonomy{
			Division:      req.Division,
			Subdivision:   req.Subdivision,
			Item:          req.Item,
			ItemCode:      req.ItemCode,
			Indicator:     req.Indicator,
			IndicatorCode: req.IndicatorCode,
		},
		Result:          req.Result,
		PhotoPath:       req.PhotoPath,
		Remark:          req.Remark,
		AIJSON:          req.AIJSON,
		ClientCreatedAt: req.ClientCreatedAt,
		Source:          req.Source,
		ClientRecordID:  req.ClientRecordID,
	})
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"id": rec.RecordID})
}

func (s *Server) handleListAcceptance(w http.ResponseWriter, r *http.Request) {
	projectID, err := s.resolveProjectID(r)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	rows, err := s.records.ListAcceptance(r.Context(), projectID, queryInt(r, "limit", 100))
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	views := make([]acceptanceView, 0, len(rows))
	for _, rec := range rows {
		views = append(views, toAcceptanceView(rec))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetAcceptance(w http.ResponseWriter, r *http.Request) {
	recordID, ok := pathID(r, "recordID")
	if !ok {
		writeError(w, http.StatusNotFound, "acceptance record not found")
		return
	}
	rec, err := s.records.GetAcceptance(r.Context(), recordID)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAcceptanceView(rec))
}

func (s *Server) handleListAcceptanceActions(w http.ResponseWriter, r *http.Request) {
	recordID, ok := pathID(r, "recordID")
	if !ok {
		writeError(w, http.StatusNotFound, "acceptance record not found")
		return
	}
	if _, err := s.records.GetAcceptance(r.Context(), recordID); err != nil {
		writeServiceError(r, w, err)
		return
	}
	actions, err := s.records.ListActions(r.Context(), ports.TargetAcceptance, recordID)
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActionViews(actions))
}

func (s *Server) handleAddAcceptanceAction(w http.ResponseWriter, r *http.Request) {
	recordID, ok := pathID(r, "recordID")
	if !ok {
		writeError(w, http.StatusNotFound, "acceptance record not found")
		return
	}
	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	action, err := s.records.AppendAction(r.Context(), ports.TargetAcceptance, recordID, req.toInput())
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"id": action.ActionID})
}

func (s *Server) handleVerifyAcceptance(w http.ResponseWriter, r *http.Request) {
	recordID, ok := pathID(r, "recordID")
	if !ok {
		writeError(w, http.StatusNotFound, "acceptance record not found")
		return
	}
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	rec, err := s.records.VerifyAcceptance(r.Context(), recordID, records.VerifyAcceptanceInput{
		Result:    req.Result,
		Remark:    req.Remark,
		PhotoURLs: req.PhotoURLs,
		ActorRole: req.ActorRole,
		ActorName: req.ActorName,
	})
	if err != nil {
		writeServiceError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": rec.RecordID, "result": rec.Result})
}
