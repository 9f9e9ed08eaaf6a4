package usecase

import (
	"cmp"
	"math"
	"slices"

	"github.com/dermalens/backend/internal/domain"
)

// presentValues drops absent entries, keeping order
func presentValues(values []*float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil && !math.IsNaN(*v) {
			out = append(out, *v)
		}
	}
	return out
}

// describe computes count, mean, sample standard deviation, min, quartiles and max.
// Quartiles interpolate linearly between closest ranks.
func describe(column string, values []float64) domain.ColumnStats {
	stats := domain.ColumnStats{Column: column, Count: len(values)}
	if len(values) == 0 {
		return stats
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	mean := meanOf(sorted)
	stats.Mean = &mean
	stats.Min = ptr(sorted[0])
	stats.Max = ptr(sorted[len(sorted)-1])
	stats.Q25 = ptr(quantile(sorted, 0.25))
	stats.Median = ptr(quantile(sorted, 0.50))
	stats.Q75 = ptr(quantile(sorted, 0.75))

	if len(sorted) > 1 {
		var sumSq float64
		for _, v := range sorted {
			d := v - mean
			sumSq += d * d
		}
		std := math.Sqrt(sumSq / float64(len(sorted)-1))
		stats.Std = &std
	}

	return stats
}

// quantile expects sorted to be non-empty and ascending
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

func meanOf(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// buildHistogram splits [min, max] into equal-width bins. Every bin is half-open
// except the last, which also holds max. When all values are equal the range is
// widened to value±0.5 so the bins still have width.
func buildHistogram(values []float64, bins int) domain.Histogram {
	h := domain.Histogram{Count: len(values), Bins: []domain.HistogramBin{}}
	if len(values) == 0 || bins <= 0 {
		return h
	}

	lo, hi := slices.Min(values), slices.Max(values)
	mean := meanOf(values)
	h.Min, h.Max, h.Mean = ptr(lo), ptr(hi), &mean

	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	width := (hi - lo) / float64(bins)

	h.Bins = make([]domain.HistogramBin, bins)
	for i := range h.Bins {
		h.Bins[i].Lower = lo + float64(i)*width
		h.Bins[i].Upper = lo + float64(i+1)*width
	}
	h.Bins[bins-1].Upper = hi

	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		h.Bins[idx].Count++
	}

	return h
}

// topCounts tallies keys, ignoring blanks, and returns the k most frequent.
// Equal counts keep the order in which keys were first seen.
func topCounts(keys []string, k int) []domain.CountEntry {
	counts := make(map[string]int)
	var order []string
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	}

	entries := make([]domain.CountEntry, 0, len(order))
	for _, key := range order {
		entries = append(entries, domain.CountEntry{Key: key, Count: counts[key]})
	}
	slices.SortStableFunc(entries, func(a, b domain.CountEntry) int {
		return cmp.Compare(b.Count, a.Count)
	})

	if k > 0 && len(entries) > k {
		entries = entries[:k]
	}
	return entries
}

// groupMean averages the present values per key, ignoring blank keys and absent
// values. Groups with nothing to average are omitted. Groups are returned in
// first-seen order.
func groupMean(keys []string, values []*float64) []domain.MeanEntry {
	type acc struct {
		sum   float64
		count int
	}

	groups := make(map[string]*acc)
	var order []string
	for i, key := range keys {
		if key == "" || values[i] == nil || math.IsNaN(*values[i]) {
			continue
		}
		g, ok := groups[key]
		if !ok {
			g = &acc{}
			groups[key] = g
			order = append(order, key)
		}
		g.sum += *values[i]
		g.count++
	}

	entries := make([]domain.MeanEntry, 0, len(order))
	for _, key := range order {
		g := groups[key]
		entries = append(entries, domain.MeanEntry{
			Key:   key,
			Mean:  ptr(g.sum / float64(g.count)),
			Count: g.count,
		})
	}
	return entries
}

func ptr(v float64) *float64 {
	return &v
}
