package records

import (
	"context"
	"log/slog"

	"zhujian/internal/bootstrap/logging"
	"zhujian/internal/errs"
	"zhujian/internal/ports"
)

const normalizeScanCap = 5000

type NormalizeResult struct {
	UpdatedAcceptance int
	UpdatedIssues     int
	UpdatedActions    int
}

// NormalizePhotoRefs rewrites stored photo references on every project's
// acceptance records, issues, and action photo lists to the stable
// "/uploads/<name>" form. Safe to re-run; rows already normalized are
// left untouched.
func (s *Service) NormalizePhotoRefs(ctx context.Context) (NormalizeResult, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "records.normalize"))

	projects, err := s.repo.ListProjects(ctx, 0)
	if err != nil {
		return NormalizeResult{}, errs.Wrap(err, "list projects")
	}

	var total NormalizeResult
	for _, project := range projects {
		res, err := s.normalizeProjectPhotoRefs(ctx, project.ProjectID)
		if err != nil {
			return total, errs.Wrapf(err, "normalize project %d", project.ProjectID)
		}
		total.UpdatedAcceptance += res.UpdatedAcceptance
		total.UpdatedIssues += res.UpdatedIssues
		total.UpdatedActions += res.UpdatedActions
	}

	logging.Info(logCtx, "photo refs normalized",
		slog.Int("acceptance", total.UpdatedAcceptance),
		slog.Int("issues", total.UpdatedIssues),
		slog.Int("actions", total.UpdatedActions),
	)
	return total, nil
}

func (s *Service) normalizeProjectPhotoRefs(ctx context.Context, projectID uint64) (NormalizeResult, error) {
	var res NormalizeResult

	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		recs, err := s.repo.ListAcceptance(ctx, ports.AcceptanceFilter{ProjectID: projectID, Limit: normalizeScanCap})
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if rec.PhotoPath == nil {
				continue
			}
			after := NormalizeUploadRef(*rec.PhotoPath)
			if after == *rec.PhotoPath {
				continue
			}
			rec.PhotoPath = strOrNil(after)
			if err := s.repo.UpdateAcceptance(ctx, rec); err != nil {
				return err
			}
			res.UpdatedAcceptance++
		}

		issues, err := s.repo.ListIssues(ctx, ports.IssueFilter{ProjectID: projectID, Limit: normalizeScanCap})
		if err != nil {
			return err
		}
		for _, issue := range issues {
			if issue.PhotoPath == nil {
				continue
			}
			after := NormalizeUploadRef(*issue.PhotoPath)
			if after == *issue.PhotoPath {
				continue
			}
			issue.PhotoPath = strOrNil(after)
			if err := s.repo.UpdateIssue(ctx, issue); err != nil {
				return err
			}
			res.UpdatedIssues++
		}

		actions, err := s.repo.ListProjectActions(ctx, projectID, normalizeScanCap)
		if err != nil {
			return err
		}
		for _, action := range actions {
			if len(action.PhotoURLs) == 0 {
				continue
			}
			normalized := normalizePhotoList(action.PhotoURLs)
			if equalStrings(normalized, action.PhotoURLs) {
				continue
			}
			if err := s.repo.UpdateActionPhotoURLs(ctx, action.ActionID, normalized); err != nil {
				return err
			}
			res.UpdatedActions++
		}

		return nil
	})
	if err != nil {
		return NormalizeResult{}, err
	}
	return res, nil
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
