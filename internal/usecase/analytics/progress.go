package analytics

import (
	"context"
	"sort"

	"zhujian/internal/domain/quality"
	"zhujian/internal/errs"
	"zhujian/internal/ports"
)

const (
	// UnnamedProcess labels acceptance rows carrying no taxonomy at all.
	UnnamedProcess = "未命名工序"
	// codedProcess labels rows whose only taxonomy values look like codes.
	codedProcess = "工序（未命名）"

	maxProcessesPerBuilding = 6
	maxProgressBuildings    = 10
)

type ProcessProgress struct {
	Process     string `json:"process"`
	MaxFloor    int    `json:"max_floor"`
	RecordCount int    `json:"record_count"`
	Status      string `json:"status"`
}

type BuildingProgress struct {
	Building  string            `json:"building"`
	Processes []ProcessProgress `json:"processes"`
}

// ProgressByBuilding renders the highest reached floor per process per
// building, using only rows that carry a parsed floor. A non-nil building
// narrows the result to that building.
func (s *Service) ProgressByBuilding(ctx context.Context, projectID uint64, building *string) ([]BuildingProgress, error) {
	records, err := s.repo.ListAcceptance(ctx, ports.AcceptanceFilter{
		ProjectID:    projectID,
		BuildingNo:   building,
		RequireFloor: true,
		Limit:        scanCap,
	})
	if err != nil {
		return nil, errs.Wrap(err, "list acceptance for progress")
	}

	type processAgg struct {
		maxFloor       int
		count          int
		hasUnqualified bool
		hasPending     bool
	}
	byBuilding := make(map[string]map[string]*processAgg)
	for _, rec := range records {
		if rec.FloorNo == nil {
			continue
		}
		building := buildingLabel(rec.BuildingNo)
		// Aggregate on the raw key so distinct code-only processes keep
		// separate floor counts; the label is rewritten at render time.
		process := quality.DisplayKey(rec.Taxonomy)
		if process == "" {
			process = UnnamedProcess
		}

		processes := byBuilding[building]
		if processes == nil {
			processes = make(map[string]*processAgg)
			byBuilding[building] = processes
		}
		agg := processes[process]
		if agg == nil {
			agg = &processAgg{}
			processes[process] = agg
		}
		if *rec.FloorNo > agg.maxFloor {
			agg.maxFloor = *rec.FloorNo
		}
		agg.count++
		switch rec.Result {
		case ports.ResultUnqualified:
			agg.hasUnqualified = true
		case ports.ResultPending:
			agg.hasPending = true
		}
	}

	buildings := make([]string, 0, len(byBuilding))
	for b := range byBuilding {
		buildings = append(buildings, b)
	}
	sortBuildings(buildings)
	if len(buildings) > maxProgressBuildings {
		buildings = buildings[:maxProgressBuildings]
	}

	out := make([]BuildingProgress, 0, len(buildings))
	for _, b := range buildings {
		processes := make([]ProcessProgress, 0, len(byBuilding[b]))
		for name, agg := range byBuilding[b] {
			if agg.maxFloor <= 0 {
				continue
			}
			status := "合格"
			if agg.hasUnqualified {
				status = "含不合格"
			} else if agg.hasPending {
				status = "含甩项"
			}
			if quality.LooksLikeCode(name) {
				name = codedProcess
			}
			processes = append(processes, ProcessProgress{
				Process:     name,
				MaxFloor:    agg.maxFloor,
				RecordCount: agg.count,
				Status:      status,
			})
		}
		sort.Slice(processes, func(i, j int) bool {
			if processes[i].MaxFloor != processes[j].MaxFloor {
				return processes[i].MaxFloor > processes[j].MaxFloor
			}
			if processes[i].RecordCount != processes[j].RecordCount {
				return processes[i].RecordCount > processes[j].RecordCount
			}
			return processes[i].Process < processes[j].Process
		})
		if len(processes) > maxProcessesPerBuilding {
			processes = processes[:maxProcessesPerBuilding]
		}
		if len(processes) == 0 {
			continue
		}
		out = append(out, BuildingProgress{Building: b, Processes: processes})
	}
	return out, nil
}

// BuildingFacts summarizes one building for fact documents: item-level
// acceptance counts plus raw issue counts.
type BuildingFacts struct {
	Building              string `json:"building"`
	AcceptanceTotal       int    `json:"acceptance_total"`
	AcceptanceQualified   int    `json:"acceptance_qualified"`
	AcceptanceUnqualified int    `json:"acceptance_unqualified"`
	AcceptancePending     int    `json:"acceptance_pending"`
	IssuesTotal           int    `json:"issues_total"`
	IssuesOpen            int    `json:"issues_open"`
	IssuesClosed          int    `json:"issues_closed"`
}

func (s *Service) BuildingProgressFacts(ctx context.Context, projectID uint64) ([]BuildingFacts, error) {
	records, err := s.repo.ListAcceptance(ctx, ports.AcceptanceFilter{ProjectID: projectID, Limit: scanCap})
	if err != nil {
		return nil, errs.Wrap(err, "list acceptance for building facts")
	}
	issues, err := s.repo.ListIssues(ctx, ports.IssueFilter{ProjectID: projectID, Limit: scanCap})
	if err != nil {
		return nil, errs.Wrap(err, "list issues for building facts")
	}

	recordsByBuilding := make(map[string][]ports.AcceptanceRecord)
	for _, rec := range records {
		b := buildingLabel(rec.BuildingNo)
		recordsByBuilding[b] = append(recordsByBuilding[b], rec)
	}
	facts := make(map[string]*BuildingFacts)
	for b, rows := range recordsByBuilding {
		counts := quality.CountResults(quality.ClassifyItems(rows,
			func(r ports.AcceptanceRecord) string { return quality.ItemKey(r.Taxonomy) },
			func(r ports.AcceptanceRecord) string { return r.Result },
		))
		facts[b] = &BuildingFacts{
			Building:              b,
			AcceptanceTotal:       counts.Total(),
			AcceptanceQualified:   counts.Qualified,
			AcceptanceUnqualified: counts.Unqualified,
			AcceptancePending:     counts.Pending,
		}
	}
	for _, issue := range issues {
		b := buildingLabel(issue.BuildingNo)
		f := facts[b]
		if f == nil {
			f = &BuildingFacts{Building: b}
			facts[b] = f
		}
		f.IssuesTotal++
		if issue.Status == ports.IssueStatusClosed {
			f.IssuesClosed++
		} else {
			f.IssuesOpen++
		}
	}

	buildings := make([]string, 0, len(facts))
	for b := range facts {
		buildings = append(buildings, b)
	}
	sortBuildings(buildings)

	out := make([]BuildingFacts, 0, len(buildings))
	for _, b := range buildings {
		out = append(out, *facts[b])
	}
	return out, nil
}

// FloorFacts summarizes one floor within a building scope.
type FloorFacts struct {
	Floor                 int `json:"floor"`
	AcceptanceTotal       int `json:"acceptance_total"`
	AcceptanceQualified   int `json:"acceptance_qualified"`
	AcceptanceUnqualified int `json:"acceptance_unqualified"`
	AcceptancePending     int `json:"acceptance_pending"`
	IssuesTotal           int `json:"issues_total"`
	IssuesOpen            int `json:"issues_open"`
	IssuesClosed          int `json:"issues_closed"`
}

func (s *Service) ByFloorFacts(ctx context.Context, projectID uint64, building string) ([]FloorFacts, error) {
	records, err := s.repo.ListAcceptance(ctx, ports.AcceptanceFilter{
		ProjectID:  projectID,
		BuildingNo: &building,
		Limit:      scanCap,
	})
	if err != nil {
		return nil, errs.Wrap(err, "list acceptance for floor facts")
	}
	issues, err := s.repo.ListIssues(ctx, ports.IssueFilter{
		ProjectID:  projectID,
		BuildingNo: &building,
		Limit:      scanCap,
	})
	if err != nil {
		return nil, errs.Wrap(err, "list issues for floor facts")
	}

	recordsByFloor := make(map[int][]ports.AcceptanceRecord)
	for _, rec := range records {
		if rec.FloorNo == nil {
			continue
		}
		recordsByFloor[*rec.FloorNo] = append(recordsByFloor[*rec.FloorNo], rec)
	}
	facts := make(map[int]*FloorFacts)
	for floor, rows := range recordsByFloor {
		counts := quality.CountResults(quality.ClassifyItems(rows,
			func(r ports.AcceptanceRecord) string { return quality.ItemKey(r.Taxonomy) },
			func(r ports.AcceptanceRecord) string { return r.Result },
		))
		facts[floor] = &FloorFacts{
			Floor:                 floor,
			AcceptanceTotal:       counts.Total(),
			AcceptanceQualified:   counts.Qualified,
			AcceptanceUnqualified: counts.Unqualified,
			AcceptancePending:     counts.Pending,
		}
	}
	for _, issue := range issues {
		if issue.FloorNo == nil {
			continue
		}
		f := facts[*issue.FloorNo]
		if f == nil {
			f = &FloorFacts{Floor: *issue.FloorNo}
			facts[*issue.FloorNo] = f
		}
		f.IssuesTotal++
		if issue.Status == ports.IssueStatusClosed {
			f.IssuesClosed++
		} else {
			f.IssuesOpen++
		}
	}

	floors := make([]int, 0, len(facts))
	for floor := range facts {
		floors = append(floors, floor)
	}
	sort.Ints(floors)

	out := make([]FloorFacts, 0, len(floors))
	for _, floor := range floors {
		out = append(out, *facts[floor])
	}
	return out, nil
}
