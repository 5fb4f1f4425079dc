package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/flap/config"
	"github.com/pthm-cable/flap/evolve"
	"github.com/pthm-cable/flap/game"
	"github.com/pthm-cable/flap/renderer"
	"github.com/pthm-cable/flap/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	generations := flag.Int("generations", 0, "Number of generations (0 = use config)")
	population := flag.Int("population", 0, "Population size (0 = use config)")
	maxTicks := flag.Int("max-ticks", 0, "Tick budget per episode (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config snapshot and champion brain")
	logStats := flag.Bool("log-stats", false, "Output generation stats and step timings via slog")
	replay := flag.String("replay", "", "Fly a saved brain (champion.json) instead of training")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *generations > 0 {
		cfg.Evolution.Generations = *generations
	}
	if *population > 0 {
		cfg.Evolution.Population = *population
	}
	if *maxTicks > 0 {
		cfg.Episode.MaxTicks = *maxTicks
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var window *renderer.Window
	if !*headless {
		window = renderer.NewWindow(cfg, "Flap", cancel)
		defer window.Close()
	}

	var err error
	if *replay != "" {
		err = runReplay(ctx, cfg, *replay, rngSeed, window)
	} else {
		err = runTraining(ctx, cfg, rngSeed, *outputDir, *logStats, window)
	}
	if err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// runTraining evolves a population and writes results to outputDir.
func runTraining(ctx context.Context, cfg *config.Config, seed int64, outputDir string, logStats bool, window *renderer.Window) error {
	out, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	defer out.Close()

	opts := evolve.Options{
		Seed:     seed,
		LogStats: logStats,
		Output:   out,
	}
	if window != nil {
		opts.Renderer = window
		opts.OnRanked = window.SetGeneration
	}

	tr, err := evolve.NewTrainer(cfg, opts)
	if err != nil {
		return err
	}

	slog.Info("starting training",
		"seed", seed,
		"population", cfg.Evolution.Population,
		"generations", cfg.Evolution.Generations,
		"max_ticks", cfg.Episode.MaxTicks,
		"headless", window == nil,
	)

	history, err := tr.Run(ctx)
	if err != nil {
		return err
	}

	if best, ok := tr.HallOfFame().Best(); ok {
		slog.Info("training finished",
			"generations", len(history),
			"best_fitness", best.Fitness,
			"best_generation", best.Generation,
			"best_score", best.Score,
			"output_dir", out.Dir(),
		)
	}
	return nil
}

// runReplay flies a single saved brain through one episode.
func runReplay(ctx context.Context, cfg *config.Config, path string, seed int64, window *renderer.Window) error {
	brain, err := telemetry.LoadBrain(path)
	if err != nil {
		return err
	}

	ev := game.NewEvaluator(cfg, seed)
	if window != nil {
		ev.Renderer = window
	}

	ep, err := ev.Run(ctx, []game.Controller{brain})
	if err != nil {
		return err
	}

	slog.Info("replay finished",
		"seed", seed,
		"fitness", ep.Fitness[0],
		"score", ep.Score,
		"ticks", ep.Ticks,
		"outcome", ep.Outcome.String(),
	)
	return nil
}
