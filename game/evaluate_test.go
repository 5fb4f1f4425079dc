package game

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/flap/config"
)

func TestEvaluateScenarios(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *config.Config
		controllers []Controller
		want        []float64
		score       int
		ticks       int
		outcome     Outcome
	}{
		{
			name:        "never jumps",
			cfg:         testConfig(nil),
			controllers: []Controller{never()},
			want:        []float64{0.2*23 - 1},
			ticks:       23,
			outcome:     OutcomeExtinct,
		},
		{
			name: "hover clears first obstacle",
			cfg: testConfig(func(c *config.Config) {
				fixedGap(250)(c)
				c.Episode.MaxTicks = 120
			}),
			controllers: []Controller{hover(3)},
			want:        []float64{0.2*120 + 6},
			score:       1,
			ticks:       120,
			outcome:     OutcomeBudget,
		},
		{
			name:        "no controllers",
			cfg:         testConfig(nil),
			controllers: nil,
			want:        []float64{},
			outcome:     OutcomeExtinct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := NewEvaluator(tt.cfg, 1)
			ep, err := ev.Run(context.Background(), tt.controllers)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}

			if ep.Fitness == nil || len(ep.Fitness) != len(tt.want) {
				t.Fatalf("fitness = %v, want %v", ep.Fitness, tt.want)
			}
			for i := range tt.want {
				if math.Abs(ep.Fitness[i]-tt.want[i]) > eps {
					t.Errorf("fitness[%d] = %v, want %v", i, ep.Fitness[i], tt.want[i])
				}
			}
			if ep.Score != tt.score {
				t.Errorf("score = %d, want %d", ep.Score, tt.score)
			}
			if ep.Ticks != tt.ticks {
				t.Errorf("ticks = %d, want %d", ep.Ticks, tt.ticks)
			}
			if ep.Outcome != tt.outcome {
				t.Errorf("outcome = %v, want %v", ep.Outcome, tt.outcome)
			}
		})
	}
}

// gapTracker jumps when it is closer to the gap bottom than to the top,
// which makes its trajectory depend on every gap drawn.
func gapTracker() Controller {
	return ControllerFunc(func(in []float64) ([]float64, error) {
		if in[2] < in[1]+40 {
			return []float64{1}, nil
		}
		return []float64{-1}, nil
	})
}

func TestEvaluateDeterministic(t *testing.T) {
	cfg := testConfig(func(c *config.Config) { c.Episode.MaxTicks = 3000 })
	population := func() []Controller {
		return []Controller{gapTracker(), gapTracker(), never(), hover(4)}
	}

	a, err := NewEvaluator(cfg, 42).Run(context.Background(), population())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	b, err := NewEvaluator(cfg, 42).Run(context.Background(), population())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if a.Ticks != b.Ticks || a.Score != b.Score || a.Outcome != b.Outcome {
		t.Fatalf("episodes differ: %d/%d/%v vs %d/%d/%v", a.Ticks, a.Score, a.Outcome, b.Ticks, b.Score, b.Outcome)
	}
	for i := range a.Fitness {
		if a.Fitness[i] != b.Fitness[i] {
			t.Errorf("fitness[%d]: %v vs %v", i, a.Fitness[i], b.Fitness[i])
		}
	}
	for i := range a.Trajectory {
		if a.Trajectory[i] != b.Trajectory[i] {
			t.Fatalf("trajectory diverges at %d: %+v vs %+v", i, a.Trajectory[i], b.Trajectory[i])
		}
	}
}

func TestEvaluateNextSeed(t *testing.T) {
	cfg := testConfig(nil)
	calls := 0
	ev := &Evaluator{Config: cfg, NextSeed: func() int64 {
		calls++
		return int64(calls)
	}}

	for i := 0; i < 3; i++ {
		if _, err := ev.Evaluate(context.Background(), []Controller{never()}); err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
	}
	if calls != 3 {
		t.Errorf("NextSeed called %d times, want 3", calls)
	}
}

func TestEvaluateControllerFailures(t *testing.T) {
	tests := []struct {
		name string
		c    Controller
	}{
		{"error", ControllerFunc(func([]float64) ([]float64, error) { return nil, errors.New("boom") })},
		{"empty output", ControllerFunc(func([]float64) ([]float64, error) { return []float64{}, nil })},
		{"NaN", ControllerFunc(func([]float64) ([]float64, error) { return []float64{math.NaN()}, nil })},
		{"Inf", ControllerFunc(func([]float64) ([]float64, error) { return []float64{1, math.Inf(-1)}, nil })},
		{"panic", ControllerFunc(func([]float64) ([]float64, error) { panic("controller bug") })},
		{"nil controller", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := NewEvaluator(testConfig(nil), 1)
			ep, err := ev.Run(context.Background(), []Controller{tt.c, never()})
			if err != nil {
				t.Fatalf("Run: %v", err)
			}

			// Removed on the first tick with only the survival reward.
			if math.Abs(ep.Fitness[0]-0.2) > eps {
				t.Errorf("failing fitness = %v, want 0.2", ep.Fitness[0])
			}
			// The healthy agent is unaffected.
			if math.Abs(ep.Fitness[1]-3.6) > eps {
				t.Errorf("healthy fitness = %v, want 3.6", ep.Fitness[1])
			}
			if ep.Trajectory[0].Alive != 1 {
				t.Errorf("alive after first tick = %d, want 1", ep.Trajectory[0].Alive)
			}
		})
	}
}

func TestEvaluateInvalidConfig(t *testing.T) {
	calls := 0
	counting := ControllerFunc(func([]float64) ([]float64, error) {
		calls++
		return []float64{0}, nil
	})

	tests := []struct {
		name string
		mod  func(c *config.Config)
	}{
		{"zero gap height", func(c *config.Config) { c.Obstacle.GapHeight = 0 }},
		{"negative velocity", func(c *config.Config) { c.Obstacle.Velocity = -5 }},
		{"floor above ceiling", func(c *config.Config) { c.World.FloorY = -20 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := NewEvaluator(testConfig(tt.mod), 1)
			fit, err := ev.Evaluate(context.Background(), []Controller{counting})
			if !errors.Is(err, config.ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
			if fit != nil {
				t.Errorf("fitness = %v, want nil", fit)
			}
		})
	}
	if calls != 0 {
		t.Errorf("controller called %d times before configuration was rejected", calls)
	}

	if _, err := NewEvaluator(nil, 1).Evaluate(context.Background(), nil); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("nil config: err = %v, want ErrInvalid", err)
	}
}

func TestEvaluateCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ep, err := NewEvaluator(testConfig(nil), 1).Run(ctx, []Controller{never(), never()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ep.Outcome != OutcomeAborted || ep.Ticks != 0 {
		t.Errorf("outcome %v after %d ticks, want aborted after 0", ep.Outcome, ep.Ticks)
	}
	if len(ep.Fitness) != 2 || ep.Fitness[0] != 0 || ep.Fitness[1] != 0 {
		t.Errorf("fitness = %v, want [0 0]", ep.Fitness)
	}
}

// cancelAt cancels the episode once a snapshot reaches tick.
type cancelAt struct {
	tick   int
	cancel context.CancelFunc
	frames []Snapshot
}

func (r *cancelAt) Render(s Snapshot) {
	r.frames = append(r.frames, s)
	if s.Tick >= r.tick {
		r.cancel()
	}
}

func TestEvaluateCancelledMidEpisode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &cancelAt{tick: 10, cancel: cancel}
	ev := NewEvaluator(testConfig(fixedGap(250)), 1)
	ev.Renderer = r

	ep, err := ev.Run(ctx, []Controller{hover(3)})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ep.Outcome != OutcomeAborted || ep.Ticks != 10 {
		t.Fatalf("outcome %v after %d ticks, want aborted after 10", ep.Outcome, ep.Ticks)
	}
	if math.Abs(ep.Fitness[0]-2.0) > eps {
		t.Errorf("partial fitness = %v, want 2", ep.Fitness[0])
	}

	// One frame before the first tick, then one per tick
	if len(r.frames) != 11 {
		t.Fatalf("rendered %d frames, want 11", len(r.frames))
	}
	for i, f := range r.frames {
		if f.Tick != i {
			t.Errorf("frame %d has tick %d", i, f.Tick)
		}
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	w := newTestWorld(t, testConfig(nil), never())
	s := w.Snapshot()

	s.Agents[0].Y = -1000
	s.Obstacles[0].X = -1000
	s.Fitness[0] = 99

	again := w.Snapshot()
	if again.Agents[0].Y != 350 || again.Obstacles[0].X == -1000 || again.Fitness[0] != 0 {
		t.Error("mutating a snapshot changed the world")
	}
}

func TestPerfStatsRecorded(t *testing.T) {
	perf := NewPerfStats(50)
	ev := NewEvaluator(testConfig(nil), 1)
	ev.Perf = perf

	if _, err := ev.Evaluate(context.Background(), []Controller{never()}); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	names := perf.SortedNames()
	if len(names) != 5 {
		t.Fatalf("phases = %v, want 5", names)
	}
	for _, n := range []string{PhaseDecide, PhaseObstacles, PhaseCollide, PhaseBounds, PhaseCompact} {
		if len(perf.samples[n]) != 23 {
			t.Errorf("phase %s has %d samples, want 23", n, len(perf.samples[n]))
		}
	}
}
