package records

import (
	"context"
	"strings"
	"time"

	"zhujian/internal/domain/region"
	"zhujian/internal/errs"
	"zhujian/internal/ports"
)

var validStatuses = map[string]struct{}{
	ports.IssueStatusOpen:   {},
	ports.IssueStatusClosed: {},
}

type CreateIssueInput struct {
	ProjectID   uint64
	ProjectName string

	RegionCode *string
	RegionText string
	Taxonomy   ports.Taxonomy

	Description       string
	Severity          *string
	DeadlineDays      *int
	ResponsibleUnit   *string
	ResponsiblePerson *string
	Status            string
	PhotoPath         *string
	AIJSON            *string
	ClientCreatedAt   *time.Time
	Source            *string
	ClientRecordID    *string
}

// CreateIssue inserts an issue report with the same client-key upsert
// semantics as acceptance records.
func (s *Service) CreateIssue(ctx context.Context, input CreateIssueInput) (ports.IssueReport, error) {
	if strings.TrimSpace(input.Description) == "" {
		return ports.IssueReport{}, ErrEmptyDescription
	}

	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status == "" {
		status = ports.IssueStatusOpen
	}
	if _, ok := validStatuses[status]; !ok {
		return ports.IssueReport{}, ErrInvalidStatus
	}

	var out ports.IssueReport
	var created bool
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		projectID, err := s.ResolveProjectID(ctx, input.ProjectID, input.ProjectName)
		if err != nil {
			return err
		}

		loc := region.Parse(input.RegionText)
		issue := ports.IssueReport{
			ProjectID:  projectID,
			RegionCode: input.RegionCode,
			RegionText: input.RegionText,
			Location: ports.Location{
				BuildingNo: loc.BuildingNo,
				FloorNo:    loc.FloorNo,
				Zone:       loc.Zone,
			},
			Taxonomy:          input.Taxonomy,
			Description:       input.Description,
			Severity:          input.Severity,
			DeadlineDays:      input.DeadlineDays,
			ResponsibleUnit:   input.ResponsibleUnit,
			ResponsiblePerson: input.ResponsiblePerson,
			Status:            status,
			PhotoPath:         normalizePhotoPath(input.PhotoPath),
			AIJSON:            input.AIJSON,
			ClientCreatedAt:   input.ClientCreatedAt,
			Source:            input.Source,
			ClientRecordID:    trimPtr(input.ClientRecordID),
		}

		if issue.ClientRecordID != nil {
			existing, err := s.repo.FindIssueByClientKey(ctx, projectID, *issue.ClientRecordID)
			if err == nil {
				issue.IssueID = existing.IssueID
				issue.CreatedAt = existing.CreatedAt
				if err := s.repo.UpdateIssue(ctx, issue); err != nil {
					return errs.Wrap(err, "upsert issue")
				}
				out = issue
				return nil
			}
			if !errorsIsNotFound(err) {
				return errs.Wrap(err, "lookup issue by client key")
			}
		}

		out, err = s.repo.CreateIssue(ctx, issue)
		if err != nil {
			return errs.Wrap(err, "create issue")
		}
		created = true
		return nil
	})
	if err != nil {
		return ports.IssueReport{}, err
	}

	if created {
		s.publish(ctx, ports.SubjectIssueCreated, map[string]any{
			"project_id": out.ProjectID,
			"issue_id":   out.IssueID,
			"severity":   out.Severity,
		})
	}
	return out, nil
}

func (s *Service) GetIssue(ctx context.Context, issueID uint64) (ports.IssueReport, error) {
	return s.repo.GetIssue(ctx, issueID)
}

type ListIssuesInput struct {
	ProjectID       uint64
	Status          string
	ResponsibleUnit *string
	Limit           int
}

func (s *Service) ListIssues(ctx context.Context, input ListIssuesInput) ([]ports.IssueReport, error) {
	if input.Limit <= 0 {
		input.Limit = 100
	}
	return s.repo.ListIssues(ctx, ports.IssueFilter{
		ProjectID:       input.ProjectID,
		Status:          input.Status,
		ResponsibleUnit: input.ResponsibleUnit,
		Limit:           input.Limit,
	})
}

// CloseIssue transitions an issue to closed and appends the close action
// that anchors closure-duration metrics.
func (s *Service) CloseIssue(ctx context.Context, issueID uint64, input ActionInput) (ports.IssueReport, ports.RectificationAction, error) {
	var issue ports.IssueReport
	var action ports.RectificationAction
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		var err error
		issue, err = s.repo.GetIssue(ctx, issueID)
		if err != nil {
			return err
		}

		issue.Status = ports.IssueStatusClosed
		if err := s.repo.UpdateIssue(ctx, issue); err != nil {
			return errs.Wrap(err, "close issue")
		}

		// The action type is forced regardless of what the caller sent.
		input.ActionType = ports.ActionClose
		action, err = s.appendActionTx(ctx, issue.ProjectID, ports.TargetIssue, issueID, input)
		return err
	})
	if err != nil {
		return ports.IssueReport{}, ports.RectificationAction{}, err
	}

	s.publish(ctx, ports.SubjectIssueClosed, map[string]any{
		"project_id": issue.ProjectID,
		"issue_id":   issue.IssueID,
		"action_id":  action.ActionID,
	})
	return issue, action, nil
}
