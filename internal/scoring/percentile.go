package scoring

import "sort"

// Percentiles converts a cohort's raw metric values into rank-based scores
// in (0,1], preserving input order. With lowerIsBetter the order reverses so
// the smallest value ranks highest.
//
// Ranking is positional: values are ordered with a stable sort over indices,
// so duplicate values receive distinct consecutive ranks deterministically
// instead of collapsing onto the first occurrence.
func Percentiles(values []float64, lowerIsBetter bool) []float64 {
	n := len(values)
	if n == 0 {
		return nil
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		if lowerIsBetter {
			return values[order[a]] > values[order[b]]
		}
		return values[order[a]] < values[order[b]]
	})

	out := make([]float64, n)
	for pos, idx := range order {
		out[idx] = float64(pos+1) / float64(n)
	}
	return out
}
