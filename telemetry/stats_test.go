package telemetry

import (
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/flap/game"
)

func TestSummarize(t *testing.T) {
	ep := game.Episode{
		Fitness: []float64{7, 2, 4, 5, 4, 9, 4, 5},
		Score:   3,
		Ticks:   412,
		Outcome: game.OutcomeExtinct,
	}
	s := Summarize(4, ep, 1500*time.Millisecond)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"best", s.Best, 9},
		{"worst", s.Worst, 2},
		{"mean", s.Mean, 5},
		{"std", s.Std, math.Sqrt(32.0 / 7.0)}, // sample standard deviation
		{"p50", s.P50, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 1e-9 {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if s.Generation != 4 || s.Population != 8 || s.Score != 3 || s.Ticks != 412 {
		t.Errorf("episode fields = %+v", s)
	}
	if s.Outcome != "extinct" {
		t.Errorf("outcome = %q, want extinct", s.Outcome)
	}
	if s.ElapsedMs != 1500 {
		t.Errorf("elapsed = %d, want 1500", s.ElapsedMs)
	}
	if s.P10 > s.P50 || s.P50 > s.P90 {
		t.Errorf("percentiles out of order: %v %v %v", s.P10, s.P50, s.P90)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(0, game.Episode{Fitness: []float64{}}, 0)
	if s.Population != 0 || s.Best != 0 || s.Mean != 0 {
		t.Errorf("empty summary = %+v", s)
	}
}

func TestSummarizeSingle(t *testing.T) {
	s := Summarize(0, game.Episode{Fitness: []float64{3.6}}, 0)
	if s.Mean != 3.6 || s.Std != 0 || s.Best != 3.6 || s.P50 != 3.6 {
		t.Errorf("single summary = %+v", s)
	}
}
