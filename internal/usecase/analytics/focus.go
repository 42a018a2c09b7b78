package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"zhujian/internal/domain/quality"
	"zhujian/internal/errs"
	"zhujian/internal/ports"
)

// Risk score weights. Severe open issues dominate, then overdue issues,
// then unqualified items; an unresolved building adds a flat penalty for
// the location blind spot.
const (
	riskWeightSevere      = 12
	riskWeightOverdue     = 8
	riskWeightUnqualified = 6
	riskWeightOpen        = 4
	riskWeightPending     = 2
	riskUnresolvedPenalty = 10

	maxTopFocus = 5
)

type FocusInput struct {
	ProjectID   uint64
	Days        int
	Building    *string
	RunBackfill bool
}

type FocusWindow struct {
	TimeRangeDays int    `json:"time_range_days"`
	Start         string `json:"start"`
	End           string `json:"end"`
}

type FocusBackfill struct {
	UpdatedAcceptance int `json:"updated_acceptance"`
	UpdatedIssues     int `json:"updated_issues"`
}

type FocusScope struct {
	Building string `json:"building"`
}

type FocusMeta struct {
	ProjectID   uint64         `json:"project_id"`
	GeneratedAt string         `json:"generated_at"`
	Window      FocusWindow    `json:"window"`
	Backfill    *FocusBackfill `json:"backfill,omitempty"`
	Scope       *FocusScope    `json:"scope,omitempty"`
}

type FocusMetrics struct {
	AcceptanceUnqualifiedItems int `json:"acceptance_unqualified_items"`
	AcceptancePendingItems     int `json:"acceptance_pending_items"`
	IssuesOpen                 int `json:"issues_open"`
	IssuesOpenSevere           int `json:"issues_open_severe"`
	IssuesOpenOverdue          int `json:"issues_open_overdue"`
}

type FocusClosure struct {
	IssueCloseCount            int      `json:"issue_close_count"`
	IssueCloseDaysAvg          *float64 `json:"issue_close_days_avg"`
	IssueCloseDaysMedian       *float64 `json:"issue_close_days_median"`
	AcceptanceVerifyCount      int      `json:"acceptance_verify_count"`
	AcceptanceVerifyDaysAvg    *float64 `json:"acceptance_verify_days_avg"`
	AcceptanceVerifyDaysMedian *float64 `json:"acceptance_verify_days_median"`
}

type FocusDataQuality struct {
	AcceptanceMissingBuilding      int64 `json:"acceptance_missing_building"`
	IssuesMissingBuilding          int64 `json:"issues_missing_building"`
	ClosedIssuesWithoutCloseAction int   `json:"closed_issues_without_close_action"`
	AcceptanceWithoutVerifyAction  int   `json:"acceptance_without_verify_action"`
}

type BuildingRisk struct {
	Building                   string `json:"building"`
	AcceptanceItems            int    `json:"acceptance_items"`
	AcceptanceUnqualifiedItems int    `json:"acceptance_unqualified_items"`
	AcceptancePendingItems     int    `json:"acceptance_pending_items"`
	IssuesOpen                 int    `json:"issues_open"`
	IssuesOpenSevere           int    `json:"issues_open_severe"`
	IssuesOpenOverdue          int    `json:"issues_open_overdue"`
	RiskScore                  int    `json:"risk_score"`
}

type FocusEvidence struct {
	IssuesOpen                 int `json:"issues_open"`
	IssuesOpenSevere           int `json:"issues_open_severe"`
	IssuesOpenOverdue          int `json:"issues_open_overdue"`
	AcceptanceUnqualifiedItems int `json:"acceptance_unqualified_items"`
	AcceptancePendingItems     int `json:"acceptance_pending_items"`
}

type FocusItem struct {
	Building string        `json:"building"`
	Title    string        `json:"title"`
	Score    int           `json:"risk_score"`
	Evidence FocusEvidence `json:"evidence"`
}

// FocusPack is the evidence-backed priority digest: per-building risk
// scores over a recent window, closure speed, and data-quality gaps.
type FocusPack struct {
	Meta        FocusMeta        `json:"meta"`
	Metrics     FocusMetrics     `json:"metrics"`
	Closure     FocusClosure     `json:"closure"`
	DataQuality FocusDataQuality `json:"data_quality"`
	ByBuilding  []BuildingRisk   `json:"by_building"`
	TopFocus    []FocusItem      `json:"top_focus"`
}

func (s *Service) BuildFocusPack(ctx context.Context, input FocusInput) (FocusPack, error) {
	days := input.Days
	if days <= 0 {
		days = s.windowDays
	}
	now := time.Now().UTC()
	windowStart := now.AddDate(0, 0, -days)

	var backfillResult *FocusBackfill
	if input.RunBackfill && s.backfill != nil {
		res, err := s.backfill.Run(ctx, input.ProjectID, s.backfillLimit)
		if err != nil {
			return FocusPack{}, errs.Wrap(err, "backfill before focus pack")
		}
		backfillResult = &FocusBackfill{
			UpdatedAcceptance: res.UpdatedAcceptance,
			UpdatedIssues:     res.UpdatedIssues,
		}
	}

	records, err := s.repo.ListAcceptance(ctx, ports.AcceptanceFilter{
		ProjectID:    input.ProjectID,
		CreatedAfter: &windowStart,
		Limit:        scanCap,
	})
	if err != nil {
		return FocusPack{}, errs.Wrap(err, "list windowed acceptance")
	}
	openIssues, err := s.repo.ListIssues(ctx, ports.IssueFilter{
		ProjectID: input.ProjectID,
		Status:    ports.IssueStatusOpen,
		Limit:     scanCap,
	})
	if err != nil {
		return FocusPack{}, errs.Wrap(err, "list open issues")
	}

	// The scope is matched against the normalized label so an explicit
	// "未解析" scope selects the unresolved bucket.
	scoped := func(label string) bool {
		return input.Building == nil || label == *input.Building
	}

	risks := make(map[string]*BuildingRisk)
	risk := func(label string) *BuildingRisk {
		r := risks[label]
		if r == nil {
			r = &BuildingRisk{Building: label}
			risks[label] = r
		}
		return r
	}

	recordsByBuilding := make(map[string][]ports.AcceptanceRecord)
	for _, rec := range records {
		label := buildingLabel(rec.BuildingNo)
		if !scoped(label) {
			continue
		}
		recordsByBuilding[label] = append(recordsByBuilding[label], rec)
	}
	for label, rows := range recordsByBuilding {
		counts := quality.CountResults(quality.ClassifyItems(rows,
			func(r ports.AcceptanceRecord) string { return quality.ItemKey(r.Taxonomy) },
			func(r ports.AcceptanceRecord) string { return r.Result },
		))
		r := risk(label)
		r.AcceptanceItems = counts.Total()
		r.AcceptanceUnqualifiedItems = counts.Unqualified
		r.AcceptancePendingItems = counts.Pending
	}

	for _, issue := range openIssues {
		label := buildingLabel(issue.BuildingNo)
		if !scoped(label) {
			continue
		}
		r := risk(label)
		r.IssuesOpen++
		if quality.NormalizeSeverity(issue.Severity) == quality.SeveritySevere {
			r.IssuesOpenSevere++
		}
		if issue.DeadlineDays != nil && quality.DaysBetween(issue.CreatedAt, now) > float64(*issue.DeadlineDays) {
			r.IssuesOpenOverdue++
		}
	}

	var metrics FocusMetrics
	for label, r := range risks {
		r.RiskScore = riskScore(label, r)
		metrics.AcceptanceUnqualifiedItems += r.AcceptanceUnqualifiedItems
		metrics.AcceptancePendingItems += r.AcceptancePendingItems
		metrics.IssuesOpen += r.IssuesOpen
		metrics.IssuesOpenSevere += r.IssuesOpenSevere
		metrics.IssuesOpenOverdue += r.IssuesOpenOverdue
	}

	closure, err := s.closureMetrics(ctx, input.ProjectID, input.Building, windowStart)
	if err != nil {
		return FocusPack{}, err
	}
	dataQuality, err := s.dataQuality(ctx, input.ProjectID)
	if err != nil {
		return FocusPack{}, err
	}

	labels := make([]string, 0, len(risks))
	for label := range risks {
		labels = append(labels, label)
	}
	sortBuildings(labels)
	byBuilding := make([]BuildingRisk, 0, len(labels))
	for _, label := range labels {
		byBuilding = append(byBuilding, *risks[label])
	}
	sort.SliceStable(byBuilding, func(i, j int) bool {
		return byBuilding[i].RiskScore > byBuilding[j].RiskScore
	})

	topFocus := make([]FocusItem, 0, maxTopFocus)
	for _, r := range byBuilding {
		if r.RiskScore <= 0 {
			continue
		}
		topFocus = append(topFocus, FocusItem{
			Building: r.Building,
			Title:    fmt.Sprintf("%s 优先闭环风险", r.Building),
			Score:    r.RiskScore,
			Evidence: FocusEvidence{
				IssuesOpen:                 r.IssuesOpen,
				IssuesOpenSevere:           r.IssuesOpenSevere,
				IssuesOpenOverdue:          r.IssuesOpenOverdue,
				AcceptanceUnqualifiedItems: r.AcceptanceUnqualifiedItems,
				AcceptancePendingItems:     r.AcceptancePendingItems,
			},
		})
		if len(topFocus) == maxTopFocus {
			break
		}
	}

	meta := FocusMeta{
		ProjectID:   input.ProjectID,
		GeneratedAt: now.Format(time.RFC3339),
		Window: FocusWindow{
			TimeRangeDays: days,
			Start:         windowStart.Format("2006-01-02"),
			End:           now.Format("2006-01-02"),
		},
		Backfill: backfillResult,
	}
	if input.Building != nil {
		meta.Scope = &FocusScope{Building: *input.Building}
	}

	return FocusPack{
		Meta:        meta,
		Metrics:     metrics,
		Closure:     closure,
		DataQuality: dataQuality,
		ByBuilding:  byBuilding,
		TopFocus:    topFocus,
	}, nil
}

func riskScore(label string, r *BuildingRisk) int {
	score := r.IssuesOpenSevere*riskWeightSevere +
		r.IssuesOpen*riskWeightOpen +
		r.IssuesOpenOverdue*riskWeightOverdue +
		r.AcceptanceUnqualifiedItems*riskWeightUnqualified +
		r.AcceptancePendingItems*riskWeightPending
	if label == UnresolvedBuilding {
		score += riskUnresolvedPenalty
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// closureMetrics measures how fast targets get their first close or verify
// action. Only actions inside the window count; negative spans, which can
// come from backdated client timestamps, are discarded. A non-nil building
// keeps only targets resolved to that building.
func (s *Service) closureMetrics(ctx context.Context, projectID uint64, building *string, windowStart time.Time) (FocusClosure, error) {
	var closure FocusClosure
	scoped := func(label string) bool {
		return building == nil || label == *building
	}

	closeTimes, err := s.repo.ListEarliestActionTimes(ctx, projectID, ports.TargetIssue, ports.ActionClose, windowStart)
	if err != nil {
		return FocusClosure{}, errs.Wrap(err, "list earliest close actions")
	}
	var closeDays []float64
	for _, tt := range closeTimes {
		issue, err := s.repo.GetIssue(ctx, tt.TargetID)
		if err != nil {
			if errors.Is(err, ports.ErrRecordNotFound) {
				continue
			}
			return FocusClosure{}, errs.Wrap(err, "load closed issue")
		}
		if !scoped(buildingLabel(issue.BuildingNo)) {
			continue
		}
		days := quality.DaysBetween(issue.CreatedAt, tt.CreatedAt)
		if days < 0 {
			continue
		}
		closeDays = append(closeDays, days)
	}
	closure.IssueCloseCount = len(closeDays)
	closure.IssueCloseDaysAvg = round2Ptr(quality.Mean(closeDays))
	closure.IssueCloseDaysMedian = round2Ptr(quality.Median(closeDays))

	verifyTimes, err := s.repo.ListEarliestActionTimes(ctx, projectID, ports.TargetAcceptance, ports.ActionVerify, windowStart)
	if err != nil {
		return FocusClosure{}, errs.Wrap(err, "list earliest verify actions")
	}
	var verifyDays []float64
	for _, tt := range verifyTimes {
		rec, err := s.repo.GetAcceptance(ctx, tt.TargetID)
		if err != nil {
			if errors.Is(err, ports.ErrRecordNotFound) {
				continue
			}
			return FocusClosure{}, errs.Wrap(err, "load verified acceptance")
		}
		if !scoped(buildingLabel(rec.BuildingNo)) {
			continue
		}
		days := quality.DaysBetween(rec.CreatedAt, tt.CreatedAt)
		if days < 0 {
			continue
		}
		verifyDays = append(verifyDays, days)
	}
	closure.AcceptanceVerifyCount = len(verifyDays)
	closure.AcceptanceVerifyDaysAvg = round2Ptr(quality.Mean(verifyDays))
	closure.AcceptanceVerifyDaysMedian = round2Ptr(quality.Median(verifyDays))

	return closure, nil
}

func (s *Service) dataQuality(ctx context.Context, projectID uint64) (FocusDataQuality, error) {
	var dq FocusDataQuality

	missingAcceptance, err := s.repo.CountAcceptanceMissingBuilding(ctx, projectID)
	if err != nil {
		return FocusDataQuality{}, errs.Wrap(err, "count acceptance missing building")
	}
	missingIssues, err := s.repo.CountIssuesMissingBuilding(ctx, projectID)
	if err != nil {
		return FocusDataQuality{}, errs.Wrap(err, "count issues missing building")
	}
	dq.AcceptanceMissingBuilding = missingAcceptance
	dq.IssuesMissingBuilding = missingIssues

	closed, err := s.repo.ListIssues(ctx, ports.IssueFilter{
		ProjectID: projectID,
		Status:    ports.IssueStatusClosed,
		Limit:     scanCap,
	})
	if err != nil {
		return FocusDataQuality{}, errs.Wrap(err, "list closed issues")
	}
	closedIDs := make([]uint64, 0, len(closed))
	for _, issue := range closed {
		closedIDs = append(closedIDs, issue.IssueID)
	}
	withClose, err := s.repo.ListTargetIDsWithAction(ctx, projectID, ports.TargetIssue, ports.ActionClose, closedIDs)
	if err != nil {
		return FocusDataQuality{}, errs.Wrap(err, "list issues with close action")
	}
	dq.ClosedIssuesWithoutCloseAction = countMissing(closedIDs, withClose)

	finalized, err := s.repo.ListAcceptance(ctx, ports.AcceptanceFilter{
		ProjectID: projectID,
		Results:   []string{ports.ResultQualified, ports.ResultUnqualified},
		Limit:     scanCap,
	})
	if err != nil {
		return FocusDataQuality{}, errs.Wrap(err, "list finalized acceptance")
	}
	finalizedIDs := make([]uint64, 0, len(finalized))
	for _, rec := range finalized {
		finalizedIDs = append(finalizedIDs, rec.RecordID)
	}
	withVerify, err := s.repo.ListTargetIDsWithAction(ctx, projectID, ports.TargetAcceptance, ports.ActionVerify, finalizedIDs)
	if err != nil {
		return FocusDataQuality{}, errs.Wrap(err, "list acceptance with verify action")
	}
	dq.AcceptanceWithoutVerifyAction = countMissing(finalizedIDs, withVerify)

	return dq, nil
}

func countMissing(all, present []uint64) int {
	seen := make(map[uint64]struct{}, len(present))
	for _, id := range present {
		seen[id] = struct{}{}
	}
	missing := 0
	for _, id := range all {
		if _, ok := seen[id]; !ok {
			missing++
		}
	}
	return missing
}
