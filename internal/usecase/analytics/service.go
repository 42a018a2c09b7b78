package analytics

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"zhujian/internal/bootstrap/config"
	"zhujian/internal/ports"
	"zhujian/internal/usecase/backfill"
)

// UnresolvedBuilding buckets rows whose building could not be parsed.
const UnresolvedBuilding = "未解析"

// scanCap bounds worst-case latency of the in-memory aggregations on large
// projects; completeness is traded for predictable response time.
const scanCap = 5000

// Service computes the deterministic aggregates: dashboard summary,
// progress, issue categories, and the focus pack.
type Service struct {
	repo          ports.InspectionRepository
	backfill      *backfill.Service
	windowDays    int
	backfillLimit int
}

func NewService(repo ports.InspectionRepository, backfillSvc *backfill.Service, cfg config.Config) *Service {
	windowDays := cfg.Focus.WindowDays
	if windowDays <= 0 {
		windowDays = 14
	}
	backfillLimit := cfg.Focus.BackfillLimit
	if backfillLimit <= 0 {
		backfillLimit = backfill.DefaultLimit
	}
	return &Service{
		repo:          repo,
		backfill:      backfillSvc,
		windowDays:    windowDays,
		backfillLimit: backfillLimit,
	}
}

func buildingLabel(b *string) string {
	if b == nil {
		return UnresolvedBuilding
	}
	if v := strings.TrimSpace(*b); v != "" {
		return v
	}
	return UnresolvedBuilding
}

var leadingNumber = regexp.MustCompile(`(\d+)`)

// sortBuildings orders labels by leading numeral first, then lexically.
func sortBuildings(labels []string) {
	sort.Slice(labels, func(i, j int) bool {
		ni, iOK := buildingNumber(labels[i])
		nj, jOK := buildingNumber(labels[j])
		if iOK && jOK {
			if ni != nj {
				return ni < nj
			}
			return labels[i] < labels[j]
		}
		if iOK != jOK {
			return iOK
		}
		return labels[i] < labels[j]
	})
}

func buildingNumber(label string) (int, bool) {
	m := leadingNumber.FindStringSubmatch(label)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round2(*v)
	return &r
}
