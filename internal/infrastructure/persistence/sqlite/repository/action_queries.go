package repository

import (
	"context"
	"time"

	"zhujian/internal/errs"
	"zhujian/internal/infrastructure/persistence/sqlite/model"
	"zhujian/internal/ports"
)

func (r *InspectionRepository) AppendAction(ctx context.Context, action ports.RectificationAction) (ports.RectificationAction, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.RectificationAction{}, err
	}

	row := model.RectificationAction{
		ProjectID:  action.ProjectID,
		TargetType: action.TargetType,
		TargetID:   action.TargetID,
		ActionType: action.ActionType,
		Content:    action.Content,
		PhotoURLs:  encodePhotoURLs(action.PhotoURLs),
		ActorRole:  action.ActorRole,
		ActorName:  action.ActorName,
		CreatedAt:  action.CreatedAt,
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = nowUTC()
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.RectificationAction{}, errs.Wrap(err, "insert rectification action")
	}
	return mapAction(row), nil
}

func (r *InspectionRepository) ListActions(ctx context.Context, projectID uint64, targetType string, targetID uint64, limit int) ([]ports.RectificationAction, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.RectificationAction{}).
		Where("project_id = ? AND target_type = ? AND target_id = ?", projectID, targetType, targetID).
		Order("created_at asc, action_id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.RectificationAction
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query rectification actions")
	}

	items := make([]ports.RectificationAction, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapAction(row))
	}
	return items, nil
}

func (r *InspectionRepository) ListProjectActions(ctx context.Context, projectID uint64, limit int) ([]ports.RectificationAction, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.RectificationAction{}).
		Where("project_id = ?", projectID).
		Order("action_id asc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.RectificationAction
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query project actions")
	}

	items := make([]ports.RectificationAction, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapAction(row))
	}
	return items, nil
}

func (r *InspectionRepository) UpdateActionPhotoURLs(ctx context.Context, actionID uint64, urls []string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.RectificationAction{}).
		Where("action_id = ?", actionID).
		Update("photo_urls", encodePhotoURLs(urls))
	if result.Error != nil {
		return errs.Wrap(result.Error, "update action photo urls")
	}
	if result.RowsAffected == 0 {
		return ports.ErrRecordNotFound
	}
	return nil
}

func (r *InspectionRepository) ListEarliestActionTimes(ctx context.Context, projectID uint64, targetType, actionType string, since time.Time) ([]ports.TargetTime, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	// The sqlite driver hands MIN(created_at) back as raw text, not
	// time.Time, so the earliest row per target is picked here instead.
	var rows []model.RectificationAction
	if err := db.Model(&model.RectificationAction{}).
		Select("target_id, created_at").
		Where("project_id = ? AND target_type = ? AND action_type = ?", projectID, targetType, actionType).
		Where("created_at >= ?", since).
		Order("created_at asc, action_id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query earliest action times")
	}

	seen := make(map[uint64]struct{}, len(rows))
	times := make([]ports.TargetTime, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.TargetID]; ok {
			continue
		}
		seen[row.TargetID] = struct{}{}
		times = append(times, ports.TargetTime{TargetID: row.TargetID, CreatedAt: row.CreatedAt})
	}
	return times, nil
}

func (r *InspectionRepository) ListTargetIDsWithAction(ctx context.Context, projectID uint64, targetType, actionType string, targetIDs []uint64) ([]uint64, error) {
	if len(targetIDs) == 0 {
		return nil, nil
	}

	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var ids []uint64
	if err := db.Model(&model.RectificationAction{}).
		Distinct("target_id").
		Where("project_id = ? AND target_type = ? AND action_type = ?", projectID, targetType, actionType).
		Where("target_id IN ?", targetIDs).
		Pluck("target_id", &ids).Error; err != nil {
		return nil, errs.Wrap(err, "query targets with action")
	}
	return ids, nil
}
