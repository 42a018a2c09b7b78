package records

import (
	"context"
	"strings"

	"zhujian/internal/errs"
	"zhujian/internal/ports"
)

var validActionTypes = map[string]struct{}{
	ports.ActionRectify: {},
	ports.ActionVerify:  {},
	ports.ActionClose:   {},
	ports.ActionComment: {},
}

var validTargetTypes = map[string]struct{}{
	ports.TargetIssue:      {},
	ports.TargetAcceptance: {},
}

type ActionInput struct {
	ActionType string
	Content    string
	PhotoURLs  []string
	ActorRole  string
	ActorName  string
}

// AppendAction validates the target record exists and appends an audit
// action to its timeline.
func (s *Service) AppendAction(ctx context.Context, targetType string, targetID uint64, input ActionInput) (ports.RectificationAction, error) {
	targetType = strings.ToLower(strings.TrimSpace(targetType))
	if _, ok := validTargetTypes[targetType]; !ok {
		return ports.RectificationAction{}, ErrInvalidTarget
	}

	var projectID uint64
	switch targetType {
	case ports.TargetIssue:
		issue, err := s.repo.GetIssue(ctx, targetID)
		if err != nil {
			return ports.RectificationAction{}, err
		}
		projectID = issue.ProjectID
	case ports.TargetAcceptance:
		rec, err := s.repo.GetAcceptance(ctx, targetID)
		if err != nil {
			return ports.RectificationAction{}, err
		}
		projectID = rec.ProjectID
	}

	return s.appendActionTx(ctx, projectID, targetType, targetID, input)
}

func (s *Service) appendActionTx(ctx context.Context, projectID uint64, targetType string, targetID uint64, input ActionInput) (ports.RectificationAction, error) {
	actionType := strings.ToLower(strings.TrimSpace(input.ActionType))
	if _, ok := validActionTypes[actionType]; !ok {
		return ports.RectificationAction{}, ErrInvalidAction
	}

	action := ports.RectificationAction{
		ProjectID:  projectID,
		TargetType: targetType,
		TargetID:   targetID,
		ActionType: actionType,
		Content:    trimPtr(&input.Content),
		PhotoURLs:  normalizePhotoList(input.PhotoURLs),
		ActorRole:  trimPtr(&input.ActorRole),
		ActorName:  trimPtr(&input.ActorName),
	}

	created, err := s.repo.AppendAction(ctx, action)
	if err != nil {
		return ports.RectificationAction{}, errs.Wrap(err, "append action")
	}
	return created, nil
}

func (s *Service) ListActions(ctx context.Context, targetType string, targetID uint64) ([]ports.RectificationAction, error) {
	targetType = strings.ToLower(strings.TrimSpace(targetType))
	if _, ok := validTargetTypes[targetType]; !ok {
		return nil, ErrInvalidTarget
	}

	var projectID uint64
	switch targetType {
	case ports.TargetIssue:
		issue, err := s.repo.GetIssue(ctx, targetID)
		if err != nil {
			return nil, err
		}
		projectID = issue.ProjectID
	case ports.TargetAcceptance:
		rec, err := s.repo.GetAcceptance(ctx, targetID)
		if err != nil {
			return nil, err
		}
		projectID = rec.ProjectID
	}

	return s.repo.ListActions(ctx, projectID, targetType, targetID, 200)
}
