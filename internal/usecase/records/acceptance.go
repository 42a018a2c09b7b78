package records

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"zhujian/internal/domain/region"
	"zhujian/internal/errs"
	"zhujian/internal/ports"
)

var validResults = map[string]struct{}{
	ports.ResultQualified:   {},
	ports.ResultUnqualified: {},
	ports.ResultPending:     {},
}

type CreateAcceptanceInput struct {
	ProjectID   uint64
	ProjectName string

	RegionCode *string
	RegionText string
	Taxonomy   ports.Taxonomy

	Result          string
	PhotoPath       *string
	Remark          *string
	AIJSON          *string
	ClientCreatedAt *time.Time
	Source          *string
	ClientRecordID  *string
}

// CreateAcceptance inserts a quality-check record, or upserts in place when
// the same (project, client_record_id) was seen before. The stored row always
// reflects the latest submission.
func (s *Service) CreateAcceptance(ctx context.Context, input CreateAcceptanceInput) (ports.AcceptanceRecord, error) {
	result := strings.ToLower(strings.TrimSpace(input.Result))
	if result == "" {
		result = ports.ResultQualified
	}
	if _, ok := validResults[result]; !ok {
		return ports.AcceptanceRecord{}, ErrInvalidResult
	}

	var out ports.AcceptanceRecord
	var created bool
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		projectID, err := s.ResolveProjectID(ctx, input.ProjectID, input.ProjectName)
		if err != nil {
			return err
		}

		loc := region.Parse(input.RegionText)
		rec := ports.AcceptanceRecord{
			ProjectID:  projectID,
			RegionCode: input.RegionCode,
			RegionText: input.RegionText,
			Location: ports.Location{
				BuildingNo: loc.BuildingNo,
				FloorNo:    loc.FloorNo,
				Zone:       loc.Zone,
			},
			Taxonomy:        input.Taxonomy,
			Result:          result,
			PhotoPath:       normalizePhotoPath(input.PhotoPath),
			Remark:          input.Remark,
			AIJSON:          input.AIJSON,
			ClientCreatedAt: input.ClientCreatedAt,
			Source:          input.Source,
			ClientRecordID:  trimPtr(input.ClientRecordID),
		}

		if rec.ClientRecordID != nil {
			existing, err := s.repo.FindAcceptanceByClientKey(ctx, projectID, *rec.ClientRecordID)
			if err == nil {
				rec.RecordID = existing.RecordID
				rec.CreatedAt = existing.CreatedAt
				if err := s.repo.UpdateAcceptance(ctx, rec); err != nil {
					return errs.Wrap(err, "upsert acceptance")
				}
				out = rec
				return nil
			}
			if !errorsIsNotFound(err) {
				return errs.Wrap(err, "lookup acceptance by client key")
			}
		}

		out, err = s.repo.CreateAcceptance(ctx, rec)
		if err != nil {
			return errs.Wrap(err, "create acceptance")
		}
		created = true
		return nil
	})
	if err != nil {
		return ports.AcceptanceRecord{}, err
	}

	if created {
		s.publish(ctx, ports.SubjectAcceptanceCreated, map[string]any{
			"project_id": out.ProjectID,
			"record_id":  out.RecordID,
			"result":     out.Result,
		})
	}
	return out, nil
}

func (s *Service) GetAcceptance(ctx context.Context, recordID uint64) (ports.AcceptanceRecord, error) {
	return s.repo.GetAcceptance(ctx, recordID)
}

func (s *Service) ListAcceptance(ctx context.Context, projectID uint64, limit int) ([]ports.AcceptanceRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repo.ListAcceptance(ctx, ports.AcceptanceFilter{ProjectID: projectID, Limit: limit})
}

type VerifyAcceptanceInput struct {
	Result    string
	Remark    *string
	PhotoURLs []string
	ActorRole string
	ActorName string
}

// VerifyAcceptance records a re-check: updates the result (and remark when
// given) and appends a verify action for the audit trail.
func (s *Service) VerifyAcceptance(ctx context.Context, recordID uint64, input VerifyAcceptanceInput) (ports.AcceptanceRecord, error) {
	result := strings.ToLower(strings.TrimSpace(input.Result))
	if _, ok := validResults[result]; !ok {
		return ports.AcceptanceRecord{}, ErrInvalidResult
	}

	var out ports.AcceptanceRecord
	err := s.uow.WithTx(ctx, func(ctx context.Context) error {
		rec, err := s.repo.GetAcceptance(ctx, recordID)
		if err != nil {
			return err
		}

		rec.Result = result
		if input.Remark != nil {
			rec.Remark = input.Remark
		}
		if err := s.repo.UpdateAcceptance(ctx, rec); err != nil {
			return errs.Wrap(err, "update acceptance result")
		}

		content := ""
		if input.Remark != nil {
			content = strings.TrimSpace(*input.Remark)
		}
		if content == "" {
			content = fmt.Sprintf("复验结果：%s", result)
		}

		if _, err := s.appendActionTx(ctx, rec.ProjectID, ports.TargetAcceptance, recordID, ActionInput{
			ActionType: ports.ActionVerify,
			Content:    content,
			PhotoURLs:  input.PhotoURLs,
			ActorRole:  input.ActorRole,
			ActorName:  input.ActorName,
		}); err != nil {
			return err
		}

		out = rec
		return nil
	})
	if err != nil {
		return ports.AcceptanceRecord{}, err
	}
	return out, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func errorsIsNotFound(err error) bool {
	return errors.Is(err, ports.ErrRecordNotFound)
}
