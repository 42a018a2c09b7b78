package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"zhujian/internal/errs"
	"zhujian/internal/infrastructure/persistence/sqlite/model"
	"zhujian/internal/ports"
)

func (r *InspectionRepository) CreateIssue(ctx context.Context, issue ports.IssueReport) (ports.IssueReport, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.IssueReport{}, err
	}

	row := toIssueModel(issue)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = nowUTC()
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.IssueReport{}, errs.Wrap(err, "insert issue report")
	}
	return mapIssue(row), nil
}

func (r *InspectionRepository) UpdateIssue(ctx context.Context, issue ports.IssueReport) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	if issue.IssueID == 0 {
		return errors.New("issue id is required")
	}

	row := toIssueModel(issue)
	result := db.Model(&model.IssueReport{}).
		Where("issue_id = ?", issue.IssueID).
		Select("*").
		Omit("issue_id", "project_id", "created_at").
		Updates(&row)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update issue report")
	}
	if result.RowsAffected == 0 {
		return ports.ErrRecordNotFound
	}
	return nil
}

func (r *InspectionRepository) GetIssue(ctx context.Context, issueID uint64) (ports.IssueReport, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.IssueReport{}, err
	}

	var row model.IssueReport
	if err := db.Where("issue_id = ?", issueID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IssueReport{}, ports.ErrRecordNotFound
		}
		return ports.IssueReport{}, errs.Wrap(err, "query issue report")
	}
	return mapIssue(row), nil
}

func (r *InspectionRepository) FindIssueByClientKey(ctx context.Context, projectID uint64, clientRecordID string) (ports.IssueReport, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.IssueReport{}, err
	}

	var row model.IssueReport
	if err := db.
		Where("project_id = ? AND client_record_id = ?", projectID, clientRecordID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.IssueReport{}, ports.ErrRecordNotFound
		}
		return ports.IssueReport{}, errs.Wrap(err, "query issue by client key")
	}
	return mapIssue(row), nil
}

func (r *InspectionRepository) ListIssues(ctx context.Context, filter ports.IssueFilter) ([]ports.IssueReport, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.IssueReport{}).Where("project_id = ?", filter.ProjectID)
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.ResponsibleUnit != nil {
		query = query.Where("responsible_unit = ?", *filter.ResponsibleUnit)
	}
	if filter.BuildingNo != nil {
		query = query.Where("building_no = ?", *filter.BuildingNo)
	}
	if filter.FloorNo != nil {
		query = query.Where("floor_no = ?", *filter.FloorNo)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	query = query.Order("created_at desc, issue_id desc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []model.IssueReport
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query issue reports")
	}

	items := make([]ports.IssueReport, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapIssue(row))
	}
	return items, nil
}

func (r *InspectionRepository) ListIssuesMissingLocation(ctx context.Context, projectID uint64, limit int) ([]ports.IssueReport, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.IssueReport{}).
		Where("project_id = ?", projectID).
		Where("building_no IS NULL OR floor_no IS NULL OR zone IS NULL").
		Order("created_at desc, issue_id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.IssueReport
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query issues missing location")
	}

	items := make([]ports.IssueReport, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapIssue(row))
	}
	return items, nil
}

func (r *InspectionRepository) UpdateIssueLocation(ctx context.Context, issueID uint64, loc ports.Location) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.IssueReport{}).
		Where("issue_id = ?", issueID).
		Updates(map[string]any{
			"building_no": loc.BuildingNo,
			"floor_no":    loc.FloorNo,
			"zone":        loc.Zone,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update issue location")
	}
	if result.RowsAffected == 0 {
		return ports.ErrRecordNotFound
	}
	return nil
}

func (r *InspectionRepository) CountIssuesMissingBuilding(ctx context.Context, projectID uint64) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.IssueReport{}).
		Where("project_id = ? AND building_no IS NULL", projectID).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count issues missing building")
	}
	return count, nil
}
