package analytics

import (
	"context"
	"sort"
	"strings"

	"zhujian/internal/domain/quality"
	"zhujian/internal/errs"
	"zhujian/internal/ports"
)

// MissingValueLabel buckets rows with a blank severity or responsible unit.
const MissingValueLabel = "未填写"

const topUnitLimit = 10

// Summary is the project-wide dashboard payload. Acceptance counts are
// item-level: raw check rows sharing an item key collapse into one item
// classified by the worst observed result.
type Summary struct {
	AcceptanceTotal       int              `json:"acceptance_total"`
	AcceptanceQualified   int              `json:"acceptance_qualified"`
	AcceptanceUnqualified int              `json:"acceptance_unqualified"`
	AcceptancePending     int              `json:"acceptance_pending"`
	IssuesTotal           int              `json:"issues_total"`
	IssuesOpen            int              `json:"issues_open"`
	IssuesClosed          int              `json:"issues_closed"`
	IssuesBySeverity      map[string]int   `json:"issues_by_severity"`
	TopResponsibleUnits   []UnitCount      `json:"top_responsible_units"`
	RecentUnqualified     []AcceptanceView `json:"recent_unqualified_acceptance"`
	RecentOpenIssues      []IssueView      `json:"recent_open_issues"`
}

func (s *Service) Summary(ctx context.Context, projectID uint64, recentLimit int) (Summary, error) {
	if recentLimit <= 0 {
		recentLimit = 5
	}

	records, err := s.repo.ListAcceptance(ctx, ports.AcceptanceFilter{ProjectID: projectID, Limit: scanCap})
	if err != nil {
		return Summary{}, errs.Wrap(err, "list acceptance for summary")
	}
	issues, err := s.repo.ListIssues(ctx, ports.IssueFilter{ProjectID: projectID, Limit: scanCap})
	if err != nil {
		return Summary{}, errs.Wrap(err, "list issues for summary")
	}

	items := quality.ClassifyItems(records,
		func(r ports.AcceptanceRecord) string { return quality.ItemKey(r.Taxonomy) },
		func(r ports.AcceptanceRecord) string { return r.Result },
	)
	counts := quality.CountResults(items)

	out := Summary{
		AcceptanceTotal:       counts.Total(),
		AcceptanceQualified:   counts.Qualified,
		AcceptanceUnqualified: counts.Unqualified,
		AcceptancePending:     counts.Pending,
		IssuesTotal:           len(issues),
		IssuesBySeverity:      make(map[string]int),
	}

	unitCounts := make(map[string]int)
	var unitOrder []string
	for _, issue := range issues {
		switch issue.Status {
		case ports.IssueStatusClosed:
			out.IssuesClosed++
		default:
			out.IssuesOpen++
		}

		sev := MissingValueLabel
		if issue.Severity != nil {
			if v := strings.TrimSpace(*issue.Severity); v != "" {
				sev = v
			}
		}
		out.IssuesBySeverity[sev]++

		if issue.Status != ports.IssueStatusClosed {
			unit := MissingValueLabel
			if issue.ResponsibleUnit != nil {
				if v := strings.TrimSpace(*issue.ResponsibleUnit); v != "" {
					unit = v
				}
			}
			if _, seen := unitCounts[unit]; !seen {
				unitOrder = append(unitOrder, unit)
			}
			unitCounts[unit]++
		}
	}

	units := make([]UnitCount, 0, len(unitOrder))
	for _, unit := range unitOrder {
		units = append(units, UnitCount{ResponsibleUnit: unit, Count: unitCounts[unit]})
	}
	sort.SliceStable(units, func(i, j int) bool { return units[i].Count > units[j].Count })
	if len(units) > topUnitLimit {
		units = units[:topUnitLimit]
	}
	out.TopResponsibleUnits = units

	// List queries return newest first, so the first matches are the recents.
	out.RecentUnqualified = make([]AcceptanceView, 0, recentLimit)
	for _, rec := range records {
		if rec.Result != ports.ResultUnqualified {
			continue
		}
		out.RecentUnqualified = append(out.RecentUnqualified, acceptanceView(rec))
		if len(out.RecentUnqualified) == recentLimit {
			break
		}
	}
	out.RecentOpenIssues = make([]IssueView, 0, recentLimit)
	for _, issue := range issues {
		if issue.Status == ports.IssueStatusClosed {
			continue
		}
		out.RecentOpenIssues = append(out.RecentOpenIssues, issueView(issue))
		if len(out.RecentOpenIssues) == recentLimit {
			break
		}
	}

	return out, nil
}
