package repository

import (
	"encoding/json"
	"time"

	"zhujian/internal/infrastructure/persistence/sqlite/model"
	"zhujian/internal/ports"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

func mapProject(row model.Project) ports.Project {
	return ports.Project{
		ProjectID: row.ProjectID,
		Name:      row.Name,
		Address:   row.Address,
		CreatedAt: row.CreatedAt,
	}
}

func toAcceptanceModel(rec ports.AcceptanceRecord) model.AcceptanceRecord {
	return model.AcceptanceRecord{
		RecordID:        rec.RecordID,
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

func mapAcceptance(row model.AcceptanceRecord) ports.AcceptanceRecord {
	return ports.AcceptanceRecord{
		RecordID:   row.RecordID,
		ProjectID:  row.ProjectID,
		RegionCode: row.RegionCode,
		RegionText: row.RegionText,
		Location: ports.Location{
			BuildingNo: row.BuildingNo,
			FloorNo:    row.FloorNo,
			Zone:       row.Zone,
		},
		Taxonomy: ports.Taxonomy{
			Division:      row.Division,
			Subdivision:   row.Subdivision,
			Item:          row.Item,
			ItemCode:      row.ItemCode,
			Indicator:     row.Indicator,
			IndicatorCode: row.IndicatorCode,
		},
		Result:          row.Result,
		PhotoPath:       row.PhotoPath,
		Remark:          row.Remark,
		AIJSON:          row.AIJSON,
		ClientCreatedAt: row.ClientCreatedAt,
		CreatedAt:       row.CreatedAt,
		Source:          row.Source,
		ClientRecordID:  row.ClientRecordID,
	}
}

func toIssueModel(issue ports.IssueReport) model.IssueReport {
	return model.IssueReport{
		IssueID:           issue.IssueID,
		ProjectID:         issue.ProjectID,
		RegionCode:        issue.RegionCode,
		RegionText:        issue.RegionText,
		BuildingNo:        issue.BuildingNo,
		FloorNo:           issue.FloorNo,
		Zone:              issue.Zone,
		Division:          issue.Division,
		Subdivision:       issue.Subdivision,
		Item:              issue.Item,
		ItemCode:          issue.ItemCode,
		Indicator:         issue.Indicator,
		IndicatorCode:     issue.IndicatorCode,
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

func mapIssue(row model.IssueReport) ports.IssueReport {
	return ports.IssueReport{
		IssueID:    row.IssueID,
		ProjectID:  row.ProjectID,
		RegionCode: row.RegionCode,
		RegionText: row.RegionText,
		Location: ports.Location{
			BuildingNo: row.BuildingNo,
			FloorNo:    row.FloorNo,
			Zone:       row.Zone,
		},
		Taxonomy: ports.Taxonomy{
			Division:      row.Division,
			Subdivision:   row.Subdivision,
			Item:          row.Item,
			ItemCode:      row.ItemCode,
			Indicator:     row.Indicator,
			IndicatorCode: row.IndicatorCode,
		},
		Description:       row.Description,
		Severity:          row.Severity,
		DeadlineDays:      row.DeadlineDays,
		ResponsibleUnit:   row.ResponsibleUnit,
		ResponsiblePerson: row.ResponsiblePerson,
		Status:            row.Status,
		PhotoPath:         row.PhotoPath,
		AIJSON:            row.AIJSON,
		ClientCreatedAt:   row.ClientCreatedAt,
		CreatedAt:         row.CreatedAt,
		Source:            row.Source,
		ClientRecordID:    row.ClientRecordID,
	}
}

func encodePhotoURLs(urls []string) *string {
	if len(urls) == 0 {
		return nil
	}
	raw, err := json.Marshal(urls)
	if err != nil {
		return nil
	}
	encoded := string(raw)
	return &encoded
}

func decodePhotoURLs(raw *string) []string {
	if raw == nil || *raw == "" {
		return nil
	}
	var urls []string
	if err := json.Unmarshal([]byte(*raw), &urls); err != nil {
		return nil
	}
	return urls
}

func mapAction(row model.RectificationAction) ports.RectificationAction {
	return ports.RectificationAction{
		ActionID:   row.ActionID,
		ProjectID:  row.ProjectID,
		TargetType: row.TargetType,
		TargetID:   row.TargetID,
		ActionType: row.ActionType,
		Content:    row.Content,
		PhotoURLs:  decodePhotoURLs(row.PhotoURLs),
		ActorRole:  row.ActorRole,
		ActorName:  row.ActorName,
		CreatedAt:  row.CreatedAt,
	}
}
