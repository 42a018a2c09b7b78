package analytics

import (
	"context"

	"zhujian/internal/domain/quality"
	"zhujian/internal/errs"
	"zhujian/internal/ports"
)

// itemCountDefinition tells the answer model how acceptance counts were
// derived so it does not restate raw row counts as item counts.
const itemCountDefinition = "验收分项口径：按 item/item_code 去重并按最差结果归类（不合格>甩项>合格）"

// Scope narrows fact documents to a building, floor, or responsible unit.
type Scope struct {
	Building        *string
	Floor           *int
	ResponsibleUnit *string
}

func (sc Scope) Empty() bool {
	return sc.Building == nil && sc.Floor == nil && sc.ResponsibleUnit == nil
}

type ScopeSelector struct {
	Building        *string `json:"building,omitempty"`
	Floor           *int    `json:"floor,omitempty"`
	ResponsibleUnit *string `json:"responsible_unit,omitempty"`
}

type ScopedAcceptance struct {
	Total       int    `json:"acceptance_total"`
	Qualified   int    `json:"acceptance_qualified"`
	Unqualified int    `json:"acceptance_unqualified"`
	Pending     int    `json:"acceptance_pending"`
	Definition  string `json:"definition"`
}

type ScopedIssues struct {
	Total  int `json:"issues_total"`
	Open   int `json:"issues_open"`
	Closed int `json:"issues_closed"`
}

// PlanFacts is the deterministic fact document handed to the answer model:
// the project summary flattened at the top level, a per-building breakdown,
// and scope-filtered counts when the question targets a building, floor, or
// responsible unit.
type PlanFacts struct {
	Summary
	ByBuilding      []BuildingFacts   `json:"by_building"`
	Scope           *ScopeSelector    `json:"scope,omitempty"`
	ScopeAcceptance *ScopedAcceptance `json:"scope_acceptance,omitempty"`
	ScopeIssues     *ScopedIssues     `json:"scope_issues,omitempty"`
	ByFloor         []FloorFacts      `json:"by_floor,omitempty"`
}

func (s *Service) FactsForPlan(ctx context.Context, projectID uint64, scope Scope) (PlanFacts, error) {
	// Fact documents carry more recent rows than the dashboard summary.
	summary, err := s.Summary(ctx, projectID, 10)
	if err != nil {
		return PlanFacts{}, err
	}
	byBuilding, err := s.BuildingProgressFacts(ctx, projectID)
	if err != nil {
		return PlanFacts{}, err
	}

	facts := PlanFacts{Summary: summary, ByBuilding: byBuilding}
	if scope.Empty() {
		return facts, nil
	}

	facts.Scope = &ScopeSelector{
		Building:        scope.Building,
		Floor:           scope.Floor,
		ResponsibleUnit: scope.ResponsibleUnit,
	}

	acceptance, err := s.scopedAcceptance(ctx, projectID, scope)
	if err != nil {
		return PlanFacts{}, err
	}
	facts.ScopeAcceptance = acceptance

	issues, err := s.scopedIssues(ctx, projectID, scope)
	if err != nil {
		return PlanFacts{}, err
	}
	facts.ScopeIssues = issues

	if scope.Building != nil {
		byFloor, err := s.ByFloorFacts(ctx, projectID, *scope.Building)
		if err != nil {
			return PlanFacts{}, err
		}
		facts.ByFloor = byFloor
	}

	return facts, nil
}

func (s *Service) scopedAcceptance(ctx context.Context, projectID uint64, scope Scope) (*ScopedAcceptance, error) {
	records, err := s.repo.ListAcceptance(ctx, ports.AcceptanceFilter{
		ProjectID:  projectID,
		BuildingNo: scope.Building,
		FloorNo:    scope.Floor,
		Limit:      scanCap,
	})
	if err != nil {
		return nil, errs.Wrap(err, "list scoped acceptance")
	}
	counts := quality.CountResults(quality.ClassifyItems(records,
		func(r ports.AcceptanceRecord) string { return quality.ItemKey(r.Taxonomy) },
		func(r ports.AcceptanceRecord) string { return r.Result },
	))
	return &ScopedAcceptance{
		Total:       counts.Total(),
		Qualified:   counts.Qualified,
		Unqualified: counts.Unqualified,
		Pending:     counts.Pending,
		Definition:  itemCountDefinition,
	}, nil
}

func (s *Service) scopedIssues(ctx context.Context, projectID uint64, scope Scope) (*ScopedIssues, error) {
	issues, err := s.repo.ListIssues(ctx, ports.IssueFilter{
		ProjectID:       projectID,
		BuildingNo:      scope.Building,
		FloorNo:         scope.Floor,
		ResponsibleUnit: scope.ResponsibleUnit,
		Limit:           scanCap,
	})
	if err != nil {
		return nil, errs.Wrap(err, "list scoped issues")
	}
	out := &ScopedIssues{Total: len(issues)}
	for _, issue := range issues {
		if issue.Status == ports.IssueStatusClosed {
			out.Closed++
		} else {
			out.Open++
		}
	}
	return out, nil
}
