package backfill

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"zhujian/internal/infrastructure/persistence/sqlite/model"
	"zhujian/internal/infrastructure/persistence/sqlite/repository"
	"zhujian/internal/infrastructure/persistence/sqlite/uow"
	"zhujian/internal/ports"
)

func setupBackfill(t *testing.T) (*Service, *repository.InspectionRepository) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "backfill.sqlite")
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

	repo := repository.NewInspectionRepository(db)
	return NewService(repo, uow.NewUnitOfWork(db)), repo
}

func strPtr(s string) *string { return &s }

func TestRun_FillsOnlyMissingFields(t *testing.T) {
	svc, repo := setupBackfill(t)
	ctx := context.Background()

	project, err := repo.CreateProject(ctx, "p", nil)
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}

	// Missing everything; region text parseable.
	bare, err := repo.CreateAcceptance(ctx, ports.AcceptanceRecord{
		ProjectID:  project.ProjectID,
		RegionText: "2# / 3层 / 304",
		Result:     ports.ResultQualified,
	})
	if err != nil {
		t.Fatalf("CreateAcceptance() error = %v", err)
	}

	// Building already derived by hand; must not be overwritten.
	partial, err := repo.CreateAcceptance(ctx, ports.AcceptanceRecord{
		ProjectID:  project.ProjectID,
		RegionText: "5栋8层",
		Location:   ports.Location{BuildingNo: strPtr("9栋")},
		Result:     ports.ResultPending,
	})
	if err != nil {
		t.Fatalf("CreateAcceptance() error = %v", err)
	}

	issue, err := repo.CreateIssue(ctx, ports.IssueReport{
		ProjectID:   project.ProjectID,
		RegionText:  "十一栋六层",
		Description: "裂缝",
		Status:      ports.IssueStatusOpen,
	})
	if err != nil {
		t.Fatalf("CreateIssue() error = %v", err)
	}

	res, err := svc.Run(ctx, project.ProjectID, DefaultLimit)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.UpdatedAcceptance != 2 || res.UpdatedIssues != 1 {
		t.Fatalf("Run() = %+v, want 2 acceptance and 1 issue", res)
	}

	got, err := repo.GetAcceptance(ctx, bare.RecordID)
	if err != nil {
		t.Fatalf("GetAcceptance() error = %v", err)
	}
	if got.BuildingNo == nil || *got.BuildingNo != "2栋" {
		t.Fatalf("backfilled building = %v, want 2栋", got.BuildingNo)
	}
	if got.FloorNo == nil || *got.FloorNo != 3 {
		t.Fatalf("backfilled floor = %v, want 3", got.FloorNo)
	}
	if got.Zone == nil || *got.Zone != "304" {
		t.Fatalf("backfilled zone = %v, want 304", got.Zone)
	}

	got, err = repo.GetAcceptance(ctx, partial.RecordID)
	if err != nil {
		t.Fatalf("GetAcceptance() error = %v", err)
	}
	if got.BuildingNo == nil || *got.BuildingNo != "9栋" {
		t.Fatalf("existing building = %v, must stay 9栋", got.BuildingNo)
	}
	if got.FloorNo == nil || *got.FloorNo != 8 {
		t.Fatalf("backfilled floor = %v, want 8", got.FloorNo)
	}

	gotIssue, err := repo.GetIssue(ctx, issue.IssueID)
	if err != nil {
		t.Fatalf("GetIssue() error = %v", err)
	}
	if gotIssue.BuildingNo == nil || *gotIssue.BuildingNo != "11栋" {
		t.Fatalf("issue building = %v, want 11栋", gotIssue.BuildingNo)
	}
	if gotIssue.FloorNo == nil || *gotIssue.FloorNo != 6 {
		t.Fatalf("issue floor = %v, want 6", gotIssue.FloorNo)
	}
}

func TestRun_Idempotent(t *testing.T) {
	svc, repo := setupBackfill(t)
	ctx := context.Background()

	project, err := repo.CreateProject(ctx, "p", nil)
	if err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	if _, err := repo.CreateAcceptance(ctx, ports.AcceptanceRecord{
		ProjectID:  project.ProjectID,
		RegionText: "1栋10层",
		Result:     ports.ResultQualified,
	}); err != nil {
		t.Fatalf("CreateAcceptance() error = %v", err)
	}

	first, err := svc.Run(ctx, project.ProjectID, DefaultLimit)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if first.UpdatedAcceptance != 1 {
		t.Fatalf("first Run() = %+v, want 1 acceptance update", first)
	}

	second, err := svc.Run(ctx, project.ProjectID, DefaultLimit)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if second.UpdatedAcceptance != 0 || second.UpdatedIssues != 0 {
		t.Fatalf("second Run() = %+v, want zero updates", second)
	}
}

func TestRun_ZeroLimitIsNoop(t *testing.T) {
	svc, _ := setupBackfill(t)

	res, err := svc.Run(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.UpdatedAcceptance != 0 || res.UpdatedIssues != 0 {
		t.Fatalf("Run(limit=0) = %+v, want noop", res)
	}
}
