package dataset

import (
	"encoding/json"
	"math"
	"sort"
)

// NumericStats summarizes the non-null numeric cells of a column.
type NumericStats struct {
	Count int

	// Integral is true when every counted value was an integer type.
	Integral bool

	Median float64
}

// Stats computes NumericStats for a column over all rows.
func (d *Dataset) Stats(column string) NumericStats {
	stats := NumericStats{Integral: true}
	values := make([]float64, 0, len(d.rows))
	for _, row := range d.rows {
		v := row[column]
		f, ok := ToFloat(v)
		if !ok {
			continue
		}
		if !isIntegerType(v) {
			stats.Integral = false
		}
		values = append(values, f)
	}
	stats.Count = len(values)
	stats.Median = Median(values)
	return stats
}

// Median returns the median of values, averaging the middle pair for even
// lengths. It returns NaN for an empty slice. The input is not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// ToFloat converts a numeric cell to float64. NaN counts as null.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), !math.IsNaN(float64(n))
	case float64:
		return n, !math.IsNaN(n)
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func isIntegerType(v any) bool {
	switch n := v.(type) {
	case int, int32, int64:
		return true
	case json.Number:
		_, err := n.Int64()
		return err == nil
	default:
		return false
	}
}
