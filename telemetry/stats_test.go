package telemetry

import (
	"math"
	"testing"
	"time"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.0},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.0},
		{"p95 of 100", seq(100), 0.95, 95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func seq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func TestComputeFrameTimes(t *testing.T) {
	var durations []time.Duration
	for i := 1; i <= 20; i++ {
		durations = append(durations, time.Duration(i)*time.Millisecond)
	}
	// Unsorted input is fine.
	durations[0], durations[19] = durations[19], durations[0]

	s := ComputeFrameTimes(durations, 16*time.Millisecond)

	if s.Count != 20 {
		t.Errorf("count = %d, want 20", s.Count)
	}
	if math.Abs(s.MeanMS-10.5) > 1e-9 {
		t.Errorf("mean = %v, want 10.5", s.MeanMS)
	}
	if s.MaxMS != 20 {
		t.Errorf("max = %v, want 20", s.MaxMS)
	}
	if s.P50MS != 10 || s.P95MS != 19 {
		t.Errorf("p50/p95 = %v/%v, want 10/19", s.P50MS, s.P95MS)
	}
	if s.OverBudget != 4 {
		t.Errorf("over budget = %d, want 4 (17..20 ms)", s.OverBudget)
	}
	// population std of 1..20
	if math.Abs(s.StdMS-math.Sqrt(33.25)) > 1e-9 {
		t.Errorf("std = %v, want %v", s.StdMS, math.Sqrt(33.25))
	}
}

func TestComputeFrameTimesEmptyAndNoBudget(t *testing.T) {
	if s := ComputeFrameTimes(nil, time.Millisecond); s != (FrameTimeStats{}) {
		t.Errorf("empty = %+v, want zero", s)
	}
	s := ComputeFrameTimes([]time.Duration{time.Hour}, 0)
	if s.OverBudget != 0 {
		t.Errorf("zero budget counted %d frames", s.OverBudget)
	}
}
