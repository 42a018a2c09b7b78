package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"zhujian/internal/errs"
	"zhujian/internal/infrastructure/persistence/sqlite/model"
	"zhujian/internal/ports"
)

// InspectionRepository implements ports.InspectionRepository with gorm.
type InspectionRepository struct {
	db *gorm.DB
}

func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

func (r *InspectionRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *InspectionRepository) CreateProject(ctx context.Context, name string, address *string) (ports.Project, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Project{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return ports.Project{}, errors.New("project name is required")
	}

	row := model.Project{Name: name, Address: address, CreatedAt: nowUTC()}
	if err := db.Create(&row).Error; err != nil {
		return ports.Project{}, errs.Wrap(err, "insert project")
	}
	return mapProject(row), nil
}

func (r *InspectionRepository) GetProjectByName(ctx context.Context, name string) (ports.Project, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Project{}, err
	}

	var row model.Project
	if err := db.Where("name = ?", strings.TrimSpace(name)).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Project{}, ports.ErrProjectNotFound
		}
		return ports.Project{}, errs.Wrap(err, "query project by name")
	}
	return mapProject(row), nil
}

func (r *InspectionRepository) GetProject(ctx context.Context, projectID uint64) (ports.Project, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Project{}, err
	}

	var row model.Project
	if err := db.Where("project_id = ?", projectID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Project{}, ports.ErrProjectNotFound
		}
		return ports.Project{}, errs.Wrap(err, "query project")
	}
	return mapProject(row), nil
}

func (r *InspectionRepository) UpdateProjectAddress(ctx context.Context, projectID uint64, address string) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.Project{}).
		Where("project_id = ?", projectID).
		Update("address", address)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update project address")
	}
	if result.RowsAffected == 0 {
		return ports.ErrProjectNotFound
	}
	return nil
}

func (r *InspectionRepository) ListProjects(ctx context.Context, limit int) ([]ports.Project, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Project{}).Order("project_id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.Project
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query projects")
	}

	items := make([]ports.Project, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapProject(row))
	}
	return items, nil
}

func (r *InspectionRepository) CreateAcceptance(ctx context.Context, rec ports.AcceptanceRecord) (ports.AcceptanceRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.AcceptanceRecord{}, err
	}

	row := toAcceptanceModel(rec)
	if row.CreatedAt.IsZero() {
		row.CreatedAt = nowUTC()
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.AcceptanceRecord{}, errs.Wrap(err, "insert acceptance record")
	}
	return mapAcceptance(row), nil
}

func (r *InspectionRepository) UpdateAcceptance(ctx context.Context, rec ports.AcceptanceRecord) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}
	if rec.RecordID == 0 {
		return errors.New("record id is required")
	}

	row := toAcceptanceModel(rec)
	result := db.Model(&model.AcceptanceRecord{}).
		Where("record_id = ?", rec.RecordID).
		Select("*").
		Omit("record_id", "project_id", "created_at").
		Updates(&row)
	if result.Error != nil {
		return errs.Wrap(result.Error, "update acceptance record")
	}
	if result.RowsAffected == 0 {
		return ports.ErrRecordNotFound
	}
	return nil
}

func (r *InspectionRepository) GetAcceptance(ctx context.Context, recordID uint64) (ports.AcceptanceRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.AcceptanceRecord{}, err
	}

	var row model.AcceptanceRecord
	if err := db.Where("record_id = ?", recordID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.AcceptanceRecord{}, ports.ErrRecordNotFound
		}
		return ports.AcceptanceRecord{}, errs.Wrap(err, "query acceptance record")
	}
	return mapAcceptance(row), nil
}

func (r *InspectionRepository) FindAcceptanceByClientKey(ctx context.Context, projectID uint64, clientRecordID string) (ports.AcceptanceRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.AcceptanceRecord{}, err
	}

	var row model.AcceptanceRecord
	if err := db.
		Where("project_id = ? AND client_record_id = ?", projectID, clientRecordID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.AcceptanceRecord{}, ports.ErrRecordNotFound
		}
		return ports.AcceptanceRecord{}, errs.Wrap(err, "query acceptance by client key")
	}
	return mapAcceptance(row), nil
}

func (r *InspectionRepository) ListAcceptance(ctx context.Context, filter ports.AcceptanceFilter) ([]ports.AcceptanceRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.AcceptanceRecord{}).Where("project_id = ?", filter.ProjectID)
	if len(filter.Results) > 0 {
		query = query.Where("result IN ?", filter.Results)
	}
	if filter.BuildingNo != nil {
		query = query.Where("building_no = ?", *filter.BuildingNo)
	}
	if filter.FloorNo != nil {
		query = query.Where("floor_no = ?", *filter.FloorNo)
	}
	if filter.RequireFloor {
		query = query.Where("floor_no IS NOT NULL")
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	query = query.Order("created_at desc, record_id desc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var rows []model.AcceptanceRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query acceptance records")
	}

	items := make([]ports.AcceptanceRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapAcceptance(row))
	}
	return items, nil
}

func (r *InspectionRepository) ListAcceptanceMissingLocation(ctx context.Context, projectID uint64, limit int) ([]ports.AcceptanceRecord, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.AcceptanceRecord{}).
		Where("project_id = ?", projectID).
		Where("building_no IS NULL OR floor_no IS NULL OR zone IS NULL").
		Order("created_at desc, record_id desc")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []model.AcceptanceRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, errs.Wrap(err, "query acceptance missing location")
	}

	items := make([]ports.AcceptanceRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapAcceptance(row))
	}
	return items, nil
}

func (r *InspectionRepository) UpdateAcceptanceLocation(ctx context.Context, recordID uint64, loc ports.Location) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	result := db.Model(&model.AcceptanceRecord{}).
		Where("record_id = ?", recordID).
		Updates(map[string]any{
			"building_no": loc.BuildingNo,
			"floor_no":    loc.FloorNo,
			"zone":        loc.Zone,
		})
	if result.Error != nil {
		return errs.Wrap(result.Error, "update acceptance location")
	}
	if result.RowsAffected == 0 {
		return ports.ErrRecordNotFound
	}
	return nil
}

func (r *InspectionRepository) CountAcceptanceMissingBuilding(ctx context.Context, projectID uint64) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.AcceptanceRecord{}).
		Where("project_id = ? AND building_no IS NULL", projectID).
		Count(&count).Error; err != nil {
		return 0, errs.Wrap(err, "count acceptance missing building")
	}
	return count, nil
}
