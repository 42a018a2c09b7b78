package records

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"zhujian/internal/infrastructure/events"
	"zhujian/internal/infrastructure/persistence/sqlite/model"
	"zhujian/internal/infrastructure/persistence/sqlite/repository"
	"zhujian/internal/infrastructure/persistence/sqlite/uow"
	"zhujian/internal/ports"
)

func setupService(t *testing.T) *Service {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "records.sqlite")
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
	return NewService(repo, uow.NewUnitOfWork(db), events.NopPublisher{})
}

func strPtr(s string) *string { return &s }

func TestEnsureProject(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	first, err := svc.EnsureProject(ctx, "示范项目")
	if err != nil {
		t.Fatalf("EnsureProject() error = %v", err)
	}
	second, err := svc.EnsureProject(ctx, " 示范项目 ")
	if err != nil {
		t.Fatalf("EnsureProject() error = %v", err)
	}
	if first.ProjectID != second.ProjectID {
		t.Fatalf("EnsureProject() ids = %d, %d, want equal", first.ProjectID, second.ProjectID)
	}

	if _, err := svc.EnsureProject(ctx, "   "); err != ErrProjectNameEmpty {
		t.Fatalf("EnsureProject(blank) error = %v, want ErrProjectNameEmpty", err)
	}
}

func TestCreateAcceptance_ParsesRegion(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	rec, err := svc.CreateAcceptance(ctx, CreateAcceptanceInput{
		ProjectName: "p",
		RegionText:  "2# / 3层 / 304",
		Result:      "qualified",
	})
	if err != nil {
		t.Fatalf("CreateAcceptance() error = %v", err)
	}
	if rec.BuildingNo == nil || *rec.BuildingNo != "2栋" {
		t.Fatalf("CreateAcceptance() building = %v, want 2栋", rec.BuildingNo)
	}
	if rec.FloorNo == nil || *rec.FloorNo != 3 {
		t.Fatalf("CreateAcceptance() floor = %v, want 3", rec.FloorNo)
	}
	if rec.Zone == nil || *rec.Zone != "304" {
		t.Fatalf("CreateAcceptance() zone = %v, want 304", rec.Zone)
	}
}

func TestCreateAcceptance_IdempotentUpsert(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	first, err := svc.CreateAcceptance(ctx, CreateAcceptanceInput{
		ProjectName:    "p",
		RegionText:     "1栋2层",
		Result:         "pending",
		ClientRecordID: strPtr("client-1"),
	})
	if err != nil {
		t.Fatalf("CreateAcceptance() error = %v", err)
	}

	second, err := svc.CreateAcceptance(ctx, CreateAcceptanceInput{
		ProjectName:    "p",
		RegionText:     "1栋2层",
		Result:         "unqualified",
		Remark:         strPtr("复检发现裂缝"),
		ClientRecordID: strPtr("client-1"),
	})
	if err != nil {
		t.Fatalf("CreateAcceptance() second error = %v", err)
	}
	if second.RecordID != first.RecordID {
		t.Fatalf("upsert ids = %d, %d, want equal", first.RecordID, second.RecordID)
	}

	rows, err := svc.ListAcceptance(ctx, first.ProjectID, 10)
	if err != nil {
		t.Fatalf("ListAcceptance() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("ListAcceptance() = %d rows, want 1", len(rows))
	}
	if rows[0].Result != "unqualified" {
		t.Fatalf("stored result = %q, want the second submission's value", rows[0].Result)
	}
	if rows[0].Remark == nil || *rows[0].Remark != "复检发现裂缝" {
		t.Fatalf("stored remark = %v", rows[0].Remark)
	}
}

func TestCreateAcceptance_InvalidResult(t *testing.T) {
	svc := setupService(t)

	_, err := svc.CreateAcceptance(context.Background(), CreateAcceptanceInput{
		ProjectName: "p",
		RegionText:  "1栋",
		Result:      "maybe",
	})
	if err != ErrInvalidResult {
		t.Fatalf("CreateAcceptance(invalid result) error = %v, want ErrInvalidResult", err)
	}
}

func TestVerifyAcceptance(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	rec, err := svc.CreateAcceptance(ctx, CreateAcceptanceInput{
		ProjectName: "p",
		RegionText:  "1栋2层",
		Result:      "pending",
	})
	if err != nil {
		t.Fatalf("CreateAcceptance() error = %v", err)
	}

	verified, err := svc.VerifyAcceptance(ctx, rec.RecordID, VerifyAcceptanceInput{
		Result:    "qualified",
		ActorName: "王工",
	})
	if err != nil {
		t.Fatalf("VerifyAcceptance() error = %v", err)
	}
	if verified.Result != "qualified" {
		t.Fatalf("VerifyAcceptance() result = %q, want qualified", verified.Result)
	}

	actions, err := svc.ListActions(ctx, ports.TargetAcceptance, rec.RecordID)
	if err != nil {
		t.Fatalf("ListActions() error = %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("ListActions() = %d actions, want 1", len(actions))
	}
	if actions[0].ActionType != ports.ActionVerify {
		t.Fatalf("action type = %q, want verify", actions[0].ActionType)
	}
	if actions[0].Content == nil || *actions[0].Content != "复验结果：qualified" {
		t.Fatalf("action content = %v", actions[0].Content)
	}
}

func TestCreateIssue_RequiresDescription(t *testing.T) {
	svc := setupService(t)

	_, err := svc.CreateIssue(context.Background(), CreateIssueInput{
		ProjectName: "p",
		RegionText:  "1栋",
	})
	if err != ErrEmptyDescription {
		t.Fatalf("CreateIssue(no description) error = %v, want ErrEmptyDescription", err)
	}
}

func TestCloseIssue(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	issue, err := svc.CreateIssue(ctx, CreateIssueInput{
		ProjectName: "p",
		RegionText:  "1栋3层",
		Description: "墙面空鼓",
		Severity:    strPtr("严重"),
	})
	if err != nil {
		t.Fatalf("CreateIssue() error = %v", err)
	}
	if issue.Status != ports.IssueStatusOpen {
		t.Fatalf("CreateIssue() status = %q, want open", issue.Status)
	}

	closed, action, err := svc.CloseIssue(ctx, issue.IssueID, ActionInput{
		ActionType: "comment", // forced to close
		Content:    "整改完成",
	})
	if err != nil {
		t.Fatalf("CloseIssue() error = %v", err)
	}
	if closed.Status != ports.IssueStatusClosed {
		t.Fatalf("CloseIssue() status = %q, want closed", closed.Status)
	}
	if action.ActionType != ports.ActionClose {
		t.Fatalf("CloseIssue() action type = %q, want close", action.ActionType)
	}
}

func TestAppendAction_Validation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	issue, err := svc.CreateIssue(ctx, CreateIssueInput{
		ProjectName: "p",
		RegionText:  "1栋",
		Description: "渗水",
	})
	if err != nil {
		t.Fatalf("CreateIssue() error = %v", err)
	}

	if _, err := svc.AppendAction(ctx, "building", issue.IssueID, ActionInput{ActionType: "rectify"}); err != ErrInvalidTarget {
		t.Fatalf("AppendAction(bad target) error = %v, want ErrInvalidTarget", err)
	}
	if _, err := svc.AppendAction(ctx, ports.TargetIssue, issue.IssueID, ActionInput{ActionType: "escalate"}); err != ErrInvalidAction {
		t.Fatalf("AppendAction(bad action) error = %v, want ErrInvalidAction", err)
	}
	if _, err := svc.AppendAction(ctx, ports.TargetIssue, 9999, ActionInput{ActionType: "rectify"}); err != ports.ErrRecordNotFound {
		t.Fatalf("AppendAction(missing target) error = %v, want ErrRecordNotFound", err)
	}

	action, err := svc.AppendAction(ctx, ports.TargetIssue, issue.IssueID, ActionInput{
		ActionType: "Rectify",
		Content:    "  已安排整改  ",
		PhotoURLs:  []string{"http://10.0.0.8/uploads/p.jpg"},
	})
	if err != nil {
		t.Fatalf("AppendAction() error = %v", err)
	}
	if action.ActionType != ports.ActionRectify {
		t.Fatalf("AppendAction() type = %q", action.ActionType)
	}
	if action.Content == nil || *action.Content != "已安排整改" {
		t.Fatalf("AppendAction() content = %v", action.Content)
	}
	if len(action.PhotoURLs) != 1 || action.PhotoURLs[0] != "/uploads/p.jpg" {
		t.Fatalf("AppendAction() photos = %v", action.PhotoURLs)
	}
}
