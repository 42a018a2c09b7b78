package httpapi

import (
	"time"

	"zhujian/internal/ports"
)

type projectView struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

func toProjectView(p ports.Project) projectView {
	return projectView{ID: p.ProjectID, Name: p.Name, Address: p.Address, CreatedAt: p.CreatedAt}
}

type acceptanceView struct {
	ID         uint64  `json:"id"`
	ProjectID  uint64  `json:"project_id"`
	RegionCode *string `json:"region_code"`
	RegionText string  `json:"region_text"`
	BuildingNo *string `json:"building_no"`
	FloorNo    *int    `json:"floor_no"`
	Zone       *string `json:"zone"`

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
	CreatedAt       time.Time  `json:"created_at"`

	Source         *string `json:"source"`
	ClientRecordID *string `json:"client_record_id"`
}

func toAcceptanceView(rec ports.AcceptanceRecord) acceptanceView {
	return acceptanceView{
		ID:              rec.RecordID,
		ProjectID:       rec.ProjectID,
		RegionCode:      rec.RegionCode,
		RegionText:      rec.RegionText,
		BuildingNo:      rec.BuildingNo,
		FloorNo:         rec.FloorNo,
		Zone:            rec.Zone,
		Division:        rec.Division,
		Subdivision:     rec.Subdivision,
		Item:            rec.Item,
		ItemCode:        rec.ItemCode,
		Indicator:       rec.Indicator,
		IndicatorCode:   rec.IndicatorCode,
		Result:          rec.Result,
		PhotoPath:       rec.PhotoPath,
		Remark:          rec.Remark,
		AIJSON:          rec.AIJSON,
		ClientCreatedAt: rec.ClientCreatedAt,
		CreatedAt:       rec.CreatedAt,
		Source:          rec.Source,
		ClientRecordID:  rec.ClientRecordID,
	}
}

type issueView struct {
	ID         uint64  `json:"id"`
	ProjectID  uint64  `json:"project_id"`
	RegionCode *string `json:"region_code"`
	RegionText string  `json:"region_text"`
	BuildingNo *string `json:"building_no"`
	FloorNo    *int    `json:"floor_no"`
	Zone       *string `json:"zone"`

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
	CreatedAt       time.Time  `json:"created_at"`

	Source         *string `json:"source"`
	ClientRecordID *string `json:"client_record_id"`
}

func toIssueView(issue ports.IssueReport) issueView {
	return issueView{
		ID:                issue.IssueID,
		ProjectID:         issue.ProjectID,
		RegionCode:        issue.RegionCode,
		RegionText:        issue.RegionText,
		BuildingNo:        issue.BuildingNo,
		FloorNo:           issue.FloorNo,
		Zone:              issue.Zone,
		Division:          issue.Division,
		Subdivision:       issue.Subdivision,
		Item:              issue.Item,
		Indicator:         issue.Indicator,
		Description:       issue.Description,
		Severity:          issue.Severity,
		DeadlineDays:      issue.DeadlineDays,
		ResponsibleUnit:   issue.ResponsibleUnit,
		ResponsiblePerson: issue.ResponsiblePerson,
		Status:            issue.Status,
		PhotoPath:         issue.PhotoPath,
		AIJSON:            issue.AIJSON,
		ClientCreatedAt:   issue.ClientCreatedAt,
		CreatedAt:         issue.CreatedAt,
		Source:            issue.Source,
		ClientRecordID:    issue.ClientRecordID,
	}
}

type actionView struct {
	ID         uint64    `json:"id"`
	ProjectID  uint64    `json:"project_id"`
	TargetType string    `json:"target_type"`
	TargetID   uint64    `json:"target_id"`
	ActionType string    `json:"action_type"`
	Content    *string   `json:"content"`
	PhotoURLs  []string  `json:"photo_urls"`
	ActorRole  *string   `json:"actor_role"`
	ActorName  *string   `json:"actor_name"`
	CreatedAt  time.Time `json:"created_at"`
}

func toActionView(action ports.RectificationAction) actionView {
	return actionView{
		ID:         action.ActionID,
		ProjectID:  action.ProjectID,
		TargetType: action.TargetType,
		TargetID:   action.TargetID,
		ActionType: action.ActionType,
		Content:    action.Content,
		PhotoURLs:  action.PhotoURLs,
		ActorRole:  action.ActorRole,
		ActorName:  action.ActorName,
		CreatedAt:  action.CreatedAt,
	}
}

func toActionViews(actions []ports.RectificationAction) []actionView {
	out := make([]actionView, 0, len(actions))
	for _, action := range actions {
		out = append(out, toActionView(action))
	}
	return out
}
