package quality

import (
	"sort"
	"time"
)

// Median of values: nil for an empty slice, the middle element for odd n,
// the average of the two middle elements for even n.
func Median(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}

	xs := make([]float64, len(values))
	copy(xs, values)
	sort.Float64s(xs)

	n := len(xs)
	mid := n / 2
	if n%2 == 1 {
		v := xs[mid]
		return &v
	}
	v := (xs[mid-1] + xs[mid]) / 2.0
	return &v
}

func Mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	v := sum / float64(len(values))
	return &v
}

// DaysBetween returns end-start in fractional days.
func DaysBetween(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24.0
}
