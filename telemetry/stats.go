package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// FrameTimeStats summarizes a set of frame durations in milliseconds.
type FrameTimeStats struct {
	Count      int     `csv:"frames"`
	MeanMS     float64 `csv:"mean_ms"`
	StdMS      float64 `csv:"std_ms"`
	P50MS      float64 `csv:"p50_ms"`
	P95MS      float64 `csv:"p95_ms"`
	P99MS      float64 `csv:"p99_ms"`
	MaxMS      float64 `csv:"max_ms"`
	OverBudget int     `csv:"over_budget"`
}

// Percentile returns the empirical p-th quantile of sorted values: the
// smallest value with at least a p fraction of the data at or below it.
// p is clamped to [0, 1]. Returns 0 for an empty slice.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeFrameTimes summarizes durations. Frames longer than budget are
// counted in OverBudget; a zero budget disables the count.
func ComputeFrameTimes(durations []time.Duration, budget time.Duration) FrameTimeStats {
	n := len(durations)
	if n == 0 {
		return FrameTimeStats{}
	}

	ms := make([]float64, n)
	over := 0
	for i, d := range durations {
		ms[i] = float64(d) / float64(time.Millisecond)
		if budget > 0 && d > budget {
			over++
		}
	}
	sort.Float64s(ms)

	mean, std := stat.PopMeanStdDev(ms, nil)
	return FrameTimeStats{
		Count:      n,
		MeanMS:     mean,
		StdMS:      std,
		P50MS:      Percentile(ms, 0.50),
		P95MS:      Percentile(ms, 0.95),
		P99MS:      Percentile(ms, 0.99),
		MaxMS:      ms[n-1],
		OverBudget: over,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s FrameTimeStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frames", s.Count),
		slog.Float64("mean_ms", s.MeanMS),
		slog.Float64("std_ms", s.StdMS),
		slog.Float64("p50_ms", s.P50MS),
		slog.Float64("p95_ms", s.P95MS),
		slog.Float64("p99_ms", s.P99MS),
		slog.Float64("max_ms", s.MaxMS),
		slog.Int("over_budget", s.OverBudget),
	)
}
