package backfill

import (
	"context"
	"log/slog"

	"zhujian/internal/bootstrap/logging"
	"zhujian/internal/domain/region"
	"zhujian/internal/errs"
	"zhujian/internal/ports"
)

const DefaultLimit = 200

type Result struct {
	UpdatedAcceptance int
	UpdatedIssues     int
}

// Service re-parses region text on historical rows whose structured
// location fields are missing. Best-effort and safe: only null fields are
// filled, derived values never overwrite existing ones, one commit per run.
type Service struct {
	repo ports.InspectionRepository
	uow  ports.UnitOfWork
}

func NewService(repo ports.InspectionRepository, uow ports.UnitOfWork) *Service {
	return &Service{repo: repo, uow: uow}
}

func (s *Service) Run(ctx context.Context, projectID uint64, limit int) (Result, error) {
	if limit <= 0 {
		return Result{}, nil
	}

	var res Result
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		recs, err := s.repo.ListAcceptanceMissingLocation(ctx, projectID, limit)
		if err != nil {
			return errs.Wrap(err, "list acceptance missing location")
		}
		for _, rec := range recs {
			merged, changed := mergeLocation(rec.Location, region.Parse(rec.RegionText))
			if !changed {
				continue
			}
			if err := s.repo.UpdateAcceptanceLocation(ctx, rec.RecordID, merged); err != nil {
				return errs.Wrap(err, "backfill acceptance location")
			}
			res.UpdatedAcceptance++
		}

		issues, err := s.repo.ListIssuesMissingLocation(ctx, projectID, limit)
		if err != nil {
			return errs.Wrap(err, "list issues missing location")
		}
		for _, issue := range issues {
			merged, changed := mergeLocation(issue.Location, region.Parse(issue.RegionText))
			if !changed {
				continue
			}
			if err := s.repo.UpdateIssueLocation(ctx, issue.IssueID, merged); err != nil {
				return errs.Wrap(err, "backfill issue location")
			}
			res.UpdatedIssues++
		}

		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if res.UpdatedAcceptance > 0 || res.UpdatedIssues > 0 {
		logging.Info(
			logging.WithAttrs(ctx, slog.String("component", "backfill")),
			"region backfill applied",
			slog.Uint64("project_id", projectID),
			slog.Int("acceptance", res.UpdatedAcceptance),
			slog.Int("issues", res.UpdatedIssues),
		)
	}
	return res, nil
}

// mergeLocation fills only the missing fields of current from parsed.
func mergeLocation(current ports.Location, parsed region.Location) (ports.Location, bool) {
	changed := false
	if current.BuildingNo == nil && parsed.BuildingNo != nil {
		current.BuildingNo = parsed.BuildingNo
		changed = true
	}
	if current.FloorNo == nil && parsed.FloorNo != nil {
		current.FloorNo = parsed.FloorNo
		changed = true
	}
	if current.Zone == nil && parsed.Zone != nil {
		current.Zone = parsed.Zone
		changed = true
	}
	return current, changed
}
