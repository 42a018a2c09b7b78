package ports

import (
	"context"
	"errors"
	"time"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrRecordNotFound  = errors.New("record not found")
)

// Result values for acceptance records.
const (
	ResultQualified   = "qualified"
	ResultUnqualified = "unqualified"
	ResultPending     = "pending"
)

// Status values for issue reports.
const (
	IssueStatusOpen   = "open"
	IssueStatusClosed = "closed"
)

// Target and action types for rectification actions.
const (
	TargetIssue      = "issue"
	TargetAcceptance = "acceptance"

	ActionRectify = "rectify"
	ActionVerify  = "verify"
	ActionClose   = "close"
	ActionComment = "comment"
)

type Project struct {
	ProjectID uint64
	Name      string
	Address   *string
	CreatedAt time.Time
}

// Location carries the structured fields derived from region text.
type Location struct {
	BuildingNo *string
	FloorNo    *int
	Zone       *string
}

// Taxonomy is the WBS classification of what was inspected.
type Taxonomy struct {
	Division      *string
	Subdivision   *string
	Item          *string
	ItemCode      *string
	Indicator     *string
	IndicatorCode *string
}

type AcceptanceRecord struct {
	RecordID   uint64
	ProjectID  uint64
	RegionCode *string
	RegionText string
	Location
	Taxonomy
	Result          string
	PhotoPath       *string
	Remark          *string
	AIJSON          *string
	ClientCreatedAt *time.Time
	CreatedAt       time.Time
	Source          *string
	ClientRecordID  *string
}

type IssueReport struct {
	IssueID    uint64
	ProjectID  uint64
	RegionCode *string
	RegionText string
	Location
	Taxonomy
	Description       string
	Severity          *string
	DeadlineDays      *int
	ResponsibleUnit   *string
	ResponsiblePerson *string
	Status            string
	PhotoPath         *string
	AIJSON            *string
	ClientCreatedAt   *time.Time
	CreatedAt         time.Time
	Source            *string
	ClientRecordID    *string
}

type RectificationAction struct {
	ActionID   uint64
	ProjectID  uint64
	TargetType string
	TargetID   uint64
	ActionType string
	Content    *string
	PhotoURLs  []string
	ActorRole  *string
	ActorName  *string
	CreatedAt  time.Time
}

type AcceptanceFilter struct {
	ProjectID    uint64
	Results      []string
	BuildingNo   *string
	FloorNo      *int
	RequireFloor bool
	CreatedAfter *time.Time
	Limit        int
}

type IssueFilter struct {
	ProjectID       uint64
	Status          string
	ResponsibleUnit *string
	BuildingNo      *string
	FloorNo         *int
	CreatedAfter    *time.Time
	Limit           int
}

// TargetTime pairs an action target with the earliest matching action time.
type TargetTime struct {
	TargetID  uint64
	CreatedAt time.Time
}

type InspectionRepository interface {
	// Projects.
	CreateProject(ctx context.Context, name string, address *string) (Project, error)
	GetProjectByName(ctx context.Context, name string) (Project, error)
	GetProject(ctx context.Context, projectID uint64) (Project, error)
	UpdateProjectAddress(ctx context.Context, projectID uint64, address string) error
	ListProjects(ctx context.Context, limit int) ([]Project, error)

	// Acceptance records.
	CreateAcceptance(ctx context.Context, rec AcceptanceRecord) (AcceptanceRecord, error)
	UpdateAcceptance(ctx context.Context, rec AcceptanceRecord) error
	GetAcceptance(ctx context.Context, recordID uint64) (AcceptanceRecord, error)
	FindAcceptanceByClientKey(ctx context.Context, projectID uint64, clientRecordID string) (AcceptanceRecord, error)
	ListAcceptance(ctx context.Context, filter AcceptanceFilter) ([]AcceptanceRecord, error)
	ListAcceptanceMissingLocation(ctx context.Context, projectID uint64, limit int) ([]AcceptanceRecord, error)
	UpdateAcceptanceLocation(ctx context.Context, recordID uint64, loc Location) error
	CountAcceptanceMissingBuilding(ctx context.Context, projectID uint64) (int64, error)

	// Issue reports.
	CreateIssue(ctx context.Context, issue IssueReport) (IssueReport, error)
	UpdateIssue(ctx context.Context, issue IssueReport) error
	GetIssue(ctx context.Context, issueID uint64) (IssueReport, error)
	FindIssueByClientKey(ctx context.Context, projectID uint64, clientRecordID string) (IssueReport, error)
	ListIssues(ctx context.Context, filter IssueFilter) ([]IssueReport, error)
	ListIssuesMissingLocation(ctx context.Context, projectID uint64, limit int) ([]IssueReport, error)
	UpdateIssueLocation(ctx context.Context, issueID uint64, loc Location) error
	CountIssuesMissingBuilding(ctx context.Context, projectID uint64) (int64, error)

	// Rectification actions.
	AppendAction(ctx context.Context, action RectificationAction) (RectificationAction, error)
	ListActions(ctx context.Context, projectID uint64, targetType string, targetID uint64, limit int) ([]RectificationAction, error)
	ListProjectActions(ctx context.Context, projectID uint64, limit int) ([]RectificationAction, error)
	UpdateActionPhotoURLs(ctx context.Context, actionID uint64, urls []string) error
	ListEarliestActionTimes(ctx context.Context, projectID uint64, targetType, actionType string, since time.Time) ([]TargetTime, error)
	ListTargetIDsWithAction(ctx context.Context, projectID uint64, targetType, actionType string, targetIDs []uint64) ([]uint64, error)
}
