package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"zhujian/internal/infrastructure/persistence/sqlite/model"
	"zhujian/internal/ports"
)

func setupInspectionRepository(t *testing.T) *InspectionRepository {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "inspection.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.Project{}, &model.AcceptanceRecord{}, &model.IssueReport{}, &model.RectificationAction{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewInspectionRepository(db)
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestProjectRoundTrip(t *testing.T) {
	repo := setupInspectionRepository(t)
	ctx := context.Background()

	created, err := repo.CreateProject(ctx, "示范项目", nil)
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if created.ProjectID == 0 {
		t.Fatal("CreateProject() returned zero id")
	}

	byName, err := repo.GetProjectByName(ctx, "示范项目")
	if err != nil {
		t.Fatalf("GetProjectByName() error = %v", err)
	}
	if byName.ProjectID != created.ProjectID {
		t.Fatalf("GetProjectByName() id = %d, want %d", byName.ProjectID, created.ProjectID)
	}

	if _, err := repo.GetProjectByName(ctx, "不存在"); err != ports.ErrProjectNotFound {
		t.Fatalf("GetProjectByName(missing) error = %v, want ErrProjectNotFound", err)
	}

	if err := repo.UpdateProjectAddress(ctx, created.ProjectID, "某市某区"); err != nil {
		t.Fatalf("UpdateProjectAddress() error = %v", err)
	}
	got, err := repo.GetProject(ctx, created.ProjectID)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if got.Address == nil || *got.Address != "某市某区" {
		t.Fatalf("GetProject() address = %v", got.Address)
	}
}

func TestFindAcceptanceByClientKey(t *testing.T) {
	repo := setupInspectionRepository(t)
	ctx := context.Background()

	project, err := repo.CreateProject(ctx, "p", nil)
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	rec, err := repo.CreateAcceptance(ctx, ports.AcceptanceRecord{
		ProjectID:      project.ProjectID,
		RegionText:     "1栋10层",
		Result:         ports.ResultQualified,
		ClientRecordID: strPtr("c-1"),
	})
	if err != nil {
		t.Fatalf("CreateAcceptance() error = %v", err)
	}

	found, err := repo.FindAcceptanceByClientKey(ctx, project.ProjectID, "c-1")
	if err != nil {
		t.Fatalf("FindAcceptanceByClientKey() error = %v", err)
	}
	if found.RecordID != rec.RecordID {
		t.Fatalf("FindAcceptanceByClientKey() id = %d, want %d", found.RecordID, rec.RecordID)
	}

	if _, err := repo.FindAcceptanceByClientKey(ctx, project.ProjectID, "c-2"); err != ports.ErrRecordNotFound {
		t.Fatalf("FindAcceptanceByClientKey(missing) error = %v, want ErrRecordNotFound", err)
	}
}

func TestListAcceptanceMissingLocation(t *testing.T) {
	repo := setupInspectionRepository(t)
	ctx := context.Background()

	project, err := repo.CreateProject(ctx, "p", nil)
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	full := ports.AcceptanceRecord{
		ProjectID:  project.ProjectID,
		RegionText: "1栋2层",
		Location: ports.Location{
			BuildingNo: strPtr("1栋"),
			FloorNo:    intPtr(2),
			Zone:       strPtr("201"),
		},
		Result: ports.ResultQualified,
	}
	if _, err := repo.CreateAcceptance(ctx, full); err != nil {
		t.Fatalf("CreateAcceptance() error = %v", err)
	}

	partial := ports.AcceptanceRecord{
		ProjectID:  project.ProjectID,
		RegionText: "3栋5层",
		Result:     ports.ResultPending,
	}
	created, err := repo.CreateAcceptance(ctx, partial)
	if err != nil {
		t.Fatalf("CreateAcceptance() error = %v", err)
	}

	missing, err := repo.ListAcceptanceMissingLocation(ctx, project.ProjectID, 10)
	if err != nil {
		t.Fatalf("ListAcceptanceMissingLocation() error = %v", err)
	}
	if len(missing) != 1 || missing[0].RecordID != created.RecordID {
		t.Fatalf("ListAcceptanceMissingLocation() = %d rows", len(missing))
	}

	count, err := repo.CountAcceptanceMissingBuilding(ctx, project.ProjectID)
	if err != nil {
		t.Fatalf("CountAcceptanceMissingBuilding() error = %v", err)
	}
	if count != 1 {
		t.Fatalf("CountAcceptanceMissingBuilding() = %d, want 1", count)
	}
}

func TestListEarliestActionTimes(t *testing.T) {
	repo := setupInspectionRepository(t)
	ctx := context.Background()

	project, err := repo.CreateProject(ctx, "p", nil)
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	now := time.Now().UTC()
	for _, offset := range []time.Duration{-2 * time.Hour, -1 * time.Hour} {
		if _, err := repo.AppendAction(ctx, ports.RectificationAction{
			ProjectID:  project.ProjectID,
			TargetType: ports.TargetIssue,
			TargetID:   7,
			ActionType: ports.ActionClose,
			CreatedAt:  now.Add(offset),
		}); err != nil {
			t.Fatalf("AppendAction() error = %v", err)
		}
	}
	// Outside the window.
	if _, err := repo.AppendAction(ctx, ports.RectificationAction{
		ProjectID:  project.ProjectID,
		TargetType: ports.TargetIssue,
		TargetID:   8,
		ActionType: ports.ActionClose,
		CreatedAt:  now.Add(-72 * time.Hour),
	}); err != nil {
		t.Fatalf("AppendAction() error = %v", err)
	}

	times, err := repo.ListEarliestActionTimes(ctx, project.ProjectID, ports.TargetIssue, ports.ActionClose, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("ListEarliestActionTimes() error = %v", err)
	}
	if len(times) != 1 {
		t.Fatalf("ListEarliestActionTimes() = %d entries, want 1", len(times))
	}
	if times[0].TargetID != 7 {
		t.Fatalf("ListEarliestActionTimes() target = %d, want 7", times[0].TargetID)
	}
	if diff := times[0].CreatedAt.Sub(now.Add(-2 * time.Hour)); diff < -time.Second || diff > time.Second {
		t.Fatalf("ListEarliestActionTimes() created_at = %v, want earliest action time", times[0].CreatedAt)
	}
}

func TestListTargetIDsWithAction(t *testing.T) {
	repo := setupInspectionRepository(t)
	ctx := context.Background()

	project, err := repo.CreateProject(ctx, "p", nil)
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	if _, err := repo.AppendAction(ctx, ports.RectificationAction{
		ProjectID:  project.ProjectID,
		TargetType: ports.TargetIssue,
		TargetID:   1,
		ActionType: ports.ActionClose,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		t.Fatalf("AppendAction() error = %v", err)
	}

	ids, err := repo.ListTargetIDsWithAction(ctx, project.ProjectID, ports.TargetIssue, ports.ActionClose, []uint64{1, 2, 3})
	if err != nil {
		t.Fatalf("ListTargetIDsWithAction() error = %v", err)
	}
	if len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("ListTargetIDsWithAction() = %v, want [1]", ids)
	}

	ids, err = repo.ListTargetIDsWithAction(ctx, project.ProjectID, ports.TargetIssue, ports.ActionClose, nil)
	if err != nil {
		t.Fatalf("ListTargetIDsWithAction(empty) error = %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("ListTargetIDsWithAction(empty) = %v, want none", ids)
	}
}

func TestActionPhotoURLsRoundTrip(t *testing.T) {
	repo := setupInspectionRepository(t)
	ctx := context.Background()

	project, err := repo.CreateProject(ctx, "p", nil)
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	created, err := repo.AppendAction(ctx, ports.RectificationAction{
		ProjectID:  project.ProjectID,
		TargetType: ports.TargetAcceptance,
		TargetID:   1,
		ActionType: ports.ActionVerify,
		PhotoURLs:  []string{"/uploads/a.jpg", "/uploads/b.png"},
	})
	if err != nil {
		t.Fatalf("AppendAction() error = %v", err)
	}

	actions, err := repo.ListActions(ctx, project.ProjectID, ports.TargetAcceptance, 1, 10)
	if err != nil {
		t.Fatalf("ListActions() error = %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("ListActions() = %d actions, want 1", len(actions))
	}
	if len(actions[0].PhotoURLs) != 2 || actions[0].PhotoURLs[0] != "/uploads/a.jpg" {
		t.Fatalf("ListActions() photos = %v", actions[0].PhotoURLs)
	}

	if err := repo.UpdateActionPhotoURLs(ctx, created.ActionID, []string{"/uploads/c.jpg"}); err != nil {
		t.Fatalf("UpdateActionPhotoURLs() error = %v", err)
	}
	actions, err = repo.ListActions(ctx, project.ProjectID, ports.TargetAcceptance, 1, 10)
	if err != nil {
		t.Fatalf("ListActions() error = %v", err)
	}
	if len(actions[0].PhotoURLs) != 1 || actions[0].PhotoURLs[0] != "/uploads/c.jpg" {
		t.Fatalf("ListActions() photos after update = %v", actions[0].PhotoURLs)
	}
}
