package analytics

import (
	"context"
	"sort"
	"strings"

	"zhujian/internal/domain/quality"
	"zhujian/internal/errs"
	"zhujian/internal/ports"
)

// GenericCategory buckets issues whose taxonomy gives no readable name.
const GenericCategory = "其他问题"

const (
	defaultTopCategories  = 5
	defaultSamplesPerCat  = 2
	categorySampleDescLen = 26
)

type CategorySample struct {
	Where    string `json:"where"`
	Desc     string `json:"desc"`
	Status   string `json:"status"`
	Severity string `json:"severity"`
}

type IssueCategory struct {
	Category string           `json:"category"`
	Total    int              `json:"total"`
	Open     int              `json:"open"`
	Severe   int              `json:"severe"`
	Samples  []CategorySample `json:"samples"`
}

// CategoryQuery narrows and sizes a category ranking.
type CategoryQuery struct {
	Building        *string
	Floor           *int
	ResponsibleUnit *string
	TopN            int
	SamplesPer      int
}

// TopIssueCategories buckets issues by the most readable taxonomy value and
// ranks buckets by open count, then total, then severe count.
func (s *Service) TopIssueCategories(ctx context.Context, projectID uint64, query CategoryQuery) ([]IssueCategory, error) {
	topN := query.TopN
	if topN <= 0 {
		topN = defaultTopCategories
	}
	samplesPer := query.SamplesPer
	if samplesPer <= 0 {
		samplesPer = defaultSamplesPerCat
	}

	issues, err := s.repo.ListIssues(ctx, ports.IssueFilter{
		ProjectID:       projectID,
		BuildingNo:      query.Building,
		FloorNo:         query.Floor,
		ResponsibleUnit: query.ResponsibleUnit,
		Limit:           scanCap,
	})
	if err != nil {
		return nil, errs.Wrap(err, "list issues for categories")
	}

	buckets := make(map[string]*IssueCategory)
	var order []string
	for _, issue := range issues {
		category := quality.CategoryKey(issue.Taxonomy)
		if category == "" {
			category = GenericCategory
		}
		bucket := buckets[category]
		if bucket == nil {
			bucket = &IssueCategory{Category: category}
			buckets[category] = bucket
			order = append(order, category)
		}
		bucket.Total++
		if issue.Status != ports.IssueStatusClosed {
			bucket.Open++
		}
		if quality.NormalizeSeverity(issue.Severity) == quality.SeveritySevere {
			bucket.Severe++
		}
		if len(bucket.Samples) < samplesPer {
			bucket.Samples = append(bucket.Samples, categorySample(issue))
		}
	}

	out := make([]IssueCategory, 0, len(order))
	for _, category := range order {
		out = append(out, *buckets[category])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Open != out[j].Open {
			return out[i].Open > out[j].Open
		}
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Severe > out[j].Severe
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out, nil
}

func categorySample(issue ports.IssueReport) CategorySample {
	where := strings.TrimSpace(issue.RegionText)
	if where == "" && issue.BuildingNo != nil {
		where = strings.TrimSpace(*issue.BuildingNo)
	}
	if where == "" {
		where = "-"
	}
	status := issue.Status
	if status == "" {
		status = ports.IssueStatusOpen
	}
	severity := "-"
	if issue.Severity != nil && strings.TrimSpace(*issue.Severity) != "" {
		severity = strings.TrimSpace(*issue.Severity)
	}
	return CategorySample{
		Where:    where,
		Desc:     quality.ShortText(issue.Description, categorySampleDescLen),
		Status:   status,
		Severity: severity,
	}
}
