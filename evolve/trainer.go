package evolve

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/flap/config"
	"github.com/pthm-cable/flap/game"
	"github.com/pthm-cable/flap/telemetry"
)

// Options configures a training run.
type Options struct {
	Seed     int64
	LogStats bool                               // log generation stats and phase timings via slog
	Output   *telemetry.OutputManager           // nil disables file output
	Renderer game.Renderer                      // nil trains headless
	OnRanked func(generation int, best float64) // called after each generation is ranked
	Logger   *slog.Logger
}

// Trainer evolves a population generation by generation.
type Trainer struct {
	cfg  *config.Config
	opts Options

	pop       *Population
	evaluator *game.Evaluator
	hof       *telemetry.HallOfFame
	perf      *game.PerfStats
	logger    *slog.Logger
}

// NewTrainer validates cfg and creates a random initial population.
func NewTrainer(cfg *config.Config, opts Options) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Evolution.Population <= 0 {
		return nil, fmt.Errorf("%w: evolution.population must be positive, got %d", config.ErrInvalid, cfg.Evolution.Population)
	}
	if cfg.Neural.Hidden <= 0 {
		return nil, fmt.Errorf("%w: neural.hidden must be positive, got %d", config.ErrInvalid, cfg.Neural.Hidden)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	t := &Trainer{
		cfg:    cfg,
		opts:   opts,
		pop:    New(rng, cfg),
		hof:    telemetry.NewHallOfFame(cfg.Telemetry.HallOfFameSize),
		logger: logger,
	}

	// Each generation flies a different obstacle course.
	courses := rand.New(rand.NewSource(opts.Seed + 1))
	t.evaluator = &game.Evaluator{
		Config:   cfg,
		NextSeed: courses.Int63,
		Logger:   logger,
		Renderer: opts.Renderer,
	}
	if opts.LogStats {
		t.perf = game.NewPerfStats(0)
		t.evaluator.Perf = t.perf
	}
	return t, nil
}

// HallOfFame returns the best brains found so far.
func (t *Trainer) HallOfFame() *telemetry.HallOfFame {
	return t.hof
}

// Population returns the current generation.
func (t *Trainer) Population() *Population {
	return t.pop
}

// Run trains for cfg.Evolution.Generations generations or until ctx is
// cancelled. It returns the stats of every completed generation.
func (t *Trainer) Run(ctx context.Context) ([]telemetry.GenerationStats, error) {
	if err := t.opts.Output.WriteConfig(t.cfg); err != nil {
		return nil, err
	}

	var history []telemetry.GenerationStats
	for gen := 0; gen < t.cfg.Evolution.Generations; gen++ {
		if ctx.Err() != nil {
			break
		}

		stats, err := t.step(ctx, gen)
		if err != nil {
			return history, err
		}
		history = append(history, stats)

		if stats.Outcome == game.OutcomeAborted.String() {
			break
		}
	}

	if err := t.opts.Output.WriteHallOfFame(t.hof); err != nil {
		return history, err
	}
	return history, nil
}

// step evaluates and replaces one generation.
func (t *Trainer) step(ctx context.Context, gen int) (telemetry.GenerationStats, error) {
	start := time.Now()
	ep, err := t.evaluator.Run(ctx, t.pop.Controllers())
	if err != nil {
		return telemetry.GenerationStats{}, fmt.Errorf("generation %d: %w", gen, err)
	}
	stats := telemetry.Summarize(gen, ep, time.Since(start))

	res, err := t.pop.Next(ep.Fitness)
	if err != nil {
		return stats, fmt.Errorf("generation %d: %w", gen, err)
	}
	stats.MutationDelta = res.AvgMutation

	t.hof.Consider(res.Champion, res.BestFitness, gen, ep.Score)

	if t.opts.OnRanked != nil {
		t.opts.OnRanked(gen, res.BestFitness)
	}
	if t.opts.LogStats {
		stats.LogStats()
		t.perf.Log(t.logger, "step phases")
	}
	if err := t.opts.Output.WriteGeneration(stats); err != nil {
		return stats, err
	}
	if err := t.opts.Output.WriteChampion(t.hof); err != nil {
		return stats, err
	}
	return stats, nil
}
