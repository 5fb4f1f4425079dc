package game

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/flap/config"
)

// Renderer receives a snapshot after every tick.
type Renderer interface {
	Render(s Snapshot)
}

// Episode is the result of one evaluation.
type Episode struct {
	Fitness    []float64 // one per controller, in input order
	Score      int
	Ticks      int
	Outcome    Outcome
	Trajectory []TrajectoryPoint
}

// Evaluator runs independent episodes for populations of controllers.
// It keeps no state between calls.
type Evaluator struct {
	Config *config.Config

	// Seed feeds the obstacle gap source of each episode.
	// NextSeed, when set, is called once per episode instead.
	Seed     int64
	NextSeed func() int64

	Logger   *slog.Logger // nil uses slog.Default()
	Renderer Renderer     // nil runs headless
	Perf     *PerfStats   // nil disables phase timing
}

// NewEvaluator creates an evaluator for cfg with a fixed seed.
func NewEvaluator(cfg *config.Config, seed int64) *Evaluator {
	return &Evaluator{Config: cfg, Seed: seed}
}

// Evaluate runs one episode and returns the fitness of each controller in input order.
func (e *Evaluator) Evaluate(ctx context.Context, controllers []Controller) ([]float64, error) {
	ep, err := e.Run(ctx, controllers)
	if err != nil {
		return nil, err
	}
	return ep.Fitness, nil
}

// Run plays one episode to termination. Configuration errors are returned
// before any state is created. Cancelling ctx stops the episode at the next
// tick boundary with OutcomeAborted; the fitness accumulated so far is
// returned with a nil error.
func (e *Evaluator) Run(ctx context.Context, controllers []Controller) (Episode, error) {
	seed := e.Seed
	if e.NextSeed != nil {
		seed = e.NextSeed()
	}

	w, err := NewWorld(e.Config, controllers, rand.New(rand.NewSource(seed)), e.Logger)
	if err != nil {
		return Episode{}, err
	}
	w.SetPerf(e.Perf)

	if e.Renderer != nil {
		e.Renderer.Render(w.Snapshot())
	}

	for w.State() == Running {
		if ctx.Err() != nil {
			w.Abort()
			break
		}
		w.Step()
		if e.Renderer != nil {
			e.Renderer.Render(w.Snapshot())
		}
	}

	return Episode{
		Fitness:    w.Fitness(),
		Score:      w.Score(),
		Ticks:      w.Tick(),
		Outcome:    w.Outcome(),
		Trajectory: w.Trajectory(),
	}, nil
}
