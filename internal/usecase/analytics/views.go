package analytics

import (
	"time"

	"zhujian/internal/ports"
)

type UnitCount struct {
	ResponsibleUnit string `json:"responsible_unit"`
	Count           int    `json:"count"`
}

// AcceptanceView is the read-side shape of an acceptance record used in
// summary payloads and fact documents.
type AcceptanceView struct {
	RecordID   uint64  `json:"record_id"`
	RegionText string  `json:"region_text"`
	BuildingNo *string `json:"building_no"`
	FloorNo    *int    `json:"floor_no"`
	Zone       *string `json:"zone"`
	Item       *string `json:"item"`
	Indicator  *string `json:"indicator"`
	Result     string  `json:"result"`
	Remark     *string `json:"remark"`
	CreatedAt  string  `json:"created_at"`
}

type IssueView struct {
	IssueID         uint64  `json:"issue_id"`
	RegionText      string  `json:"region_text"`
	BuildingNo      *string `json:"building_no"`
	FloorNo         *int    `json:"floor_no"`
	Description     string  `json:"description"`
	Severity        *string `json:"severity"`
	ResponsibleUnit *string `json:"responsible_unit"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at"`
}

func acceptanceView(rec ports.AcceptanceRecord) AcceptanceView {
	return AcceptanceView{
		RecordID:   rec.RecordID,
		RegionText: rec.RegionText,
		BuildingNo: rec.BuildingNo,
		FloorNo:    rec.FloorNo,
		Zone:       rec.Zone,
		Item:       rec.Item,
		Indicator:  rec.Indicator,
		Result:     rec.Result,
		Remark:     rec.Remark,
		CreatedAt:  rec.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func issueView(issue ports.IssueReport) IssueView {
	return IssueView{
		IssueID:         issue.IssueID,
		RegionText:      issue.RegionText,
		BuildingNo:      issue.BuildingNo,
		FloorNo:         issue.FloorNo,
		Description:     issue.Description,
		Severity:        issue.Severity,
		ResponsibleUnit: issue.ResponsibleUnit,
		Status:          issue.Status,
		CreatedAt:       issue.CreatedAt.UTC().Format(time.RFC3339),
	}
}
