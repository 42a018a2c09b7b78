package quality

import (
	"strings"

	"zhujian/internal/ports"
)

var resultRank = map[string]int{
	ports.ResultQualified:   0,
	ports.ResultPending:     1,
	ports.ResultUnqualified: 2,
}

// WorseResult picks the higher-priority result: unqualified > pending > qualified.
func WorseResult(a, b string) string {
	if resultRank[b] > resultRank[a] {
		return b
	}
	return a
}

// ClassifyItems collapses raw check rows into logical items. Rows sharing
// the same key form one item whose classification is the worst observed
// result across them. Rows with no key share the empty-key item.
func ClassifyItems[T any](rows []T, keyFn func(T) string, resultFn func(T) string) map[string]string {
	items := make(map[string]string, len(rows))
	for _, row := range rows {
		key := keyFn(row)
		result := resultFn(row)
		if current, ok := items[key]; ok {
			items[key] = WorseResult(current, result)
		} else {
			items[key] = result
		}
	}
	return items
}

type ResultCounts struct {
	Qualified   int
	Unqualified int
	Pending     int
}

func (c ResultCounts) Total() int {
	return c.Qualified + c.Unqualified + c.Pending
}

func CountResults(items map[string]string) ResultCounts {
	var counts ResultCounts
	for _, result := range items {
		switch result {
		case ports.ResultUnqualified:
			counts.Unqualified++
		case ports.ResultPending:
			counts.Pending++
		default:
			counts.Qualified++
		}
	}
	return counts
}

// ItemKey is the stable grouping key for acceptance dedup: codes first.
func ItemKey(t ports.Taxonomy) string {
	return firstNonEmpty(t.ItemCode, t.Item, t.IndicatorCode, t.Indicator)
}

// DisplayKey prefers human-readable names for progress rendering.
func DisplayKey(t ports.Taxonomy) string {
	return firstNonEmpty(t.Item, t.Indicator, t.Subdivision, t.Division, t.ItemCode, t.IndicatorCode)
}

// CategoryKey picks a readable issue category, skipping code-looking values.
// Empty result means the caller should use the generic bucket.
func CategoryKey(t ports.Taxonomy) string {
	for _, candidate := range []*string{t.Indicator, t.Item, t.Subdivision, t.Division} {
		if candidate == nil {
			continue
		}
		v := strings.TrimSpace(*candidate)
		if v == "" || LooksLikeCode(v) {
			continue
		}
		return v
	}
	return ""
}

func firstNonEmpty(candidates ...*string) string {
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if v := strings.TrimSpace(*c); v != "" {
			return v
		}
	}
	return ""
}
