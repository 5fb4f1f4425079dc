// Package main searches a single controller's weights with CMA-ES, scoring
// each candidate by its mean episode fitness over a fixed set of courses.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/flap/config"
	"github.com/pthm-cable/flap/neural"
)

// evalRecord is one row of optimize_log.csv.
type evalRecord struct {
	Eval      int     `csv:"eval"`
	Fitness   float64 `csv:"fitness"`
	MeanScore float64 `csv:"mean_score"`
	Best      float64 `csv:"best"`
	ElapsedMS int64   `csv:"elapsed_ms"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxTicks := flag.Int("max-ticks", 0, "Tick budget per episode (0 = use config)")
	seeds := flag.Int("seeds", 3, "Number of courses per evaluation")
	maxEvals := flag.Int("max-evals", 500, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	initSeed := flag.Int64("init-seed", 1, "RNG seed for the starting weights")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if *seeds <= 0 {
		log.Fatal("--seeds must be positive")
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg := config.Cfg()
	if *maxTicks > 0 {
		cfg.Episode.MaxTicks = *maxTicks
	}
	if cfg.Neural.Hidden <= 0 {
		log.Fatalf("neural.hidden must be positive, got %d", cfg.Neural.Hidden)
	}

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(cfg, evalSeeds)

	// Start from a freshly initialized brain so the search begins at a
	// sensible weight scale.
	initX := neural.NewFFNN(rand.New(rand.NewSource(*initSeed)), &cfg.Neural).Weights()
	dim := len(initX)

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}

	method := &optimize.CmaEsChol{
		InitStepSize: 0.5,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // seeds already run in parallel inside Evaluate
	}

	logPath := filepath.Join(*outputDir, "optimize_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 1e9
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			fitness := evaluator.Evaluate(x)
			evalCount++
			if fitness < bestFitness {
				bestFitness = fitness
			}

			elapsed := time.Since(startTime)
			rec := []evalRecord{{
				Eval:      evalCount,
				Fitness:   fitness,
				MeanScore: evaluator.LastScore(),
				Best:      bestFitness,
				ElapsedMS: elapsed.Milliseconds(),
			}}
			var werr error
			if evalCount == 1 {
				werr = gocsv.Marshal(rec, logFile)
			} else {
				werr = gocsv.MarshalWithoutHeaders(rec, logFile)
			}
			if werr != nil {
				log.Printf("failed to write log row: %v", werr)
			}

			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval
			fmt.Printf("Eval %d/%d: fitness=%.1f score=%.1f (best=%.1f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, -fitness, evaluator.LastScore(), -bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES over %d weights (hidden=%d), population=%d, max_evals=%d\n",
		dim, cfg.Neural.Hidden, popSize, *maxEvals)
	fmt.Printf("Courses per evaluation: %d, ticks per episode: %d\n", *seeds, cfg.Episode.MaxTicks)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	// Keep the best vector seen in any evaluation, not just the final mean.
	best, bestWeights, ok := evaluator.Best()
	if !ok {
		if result == nil {
			log.Fatal("no evaluation succeeded")
		}
		bestWeights = result.X
		best = result.F
	}

	totalTime := time.Since(startTime)
	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evalCount, formatDuration(totalTime))
	fmt.Printf("Best mean fitness: %.2f\n", -best)

	brain, err := neural.FromWeights(cfg.Neural.Hidden, cfg.Neural.InputScale, bestWeights)
	if err != nil {
		log.Fatalf("failed to build best brain: %v", err)
	}

	brainPath := filepath.Join(*outputDir, "best_brain.json")
	data, err := json.MarshalIndent(brain.MarshalWeights(), "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal best brain: %v", err)
	}
	if err := os.WriteFile(brainPath, data, 0644); err != nil {
		log.Fatalf("failed to write best brain: %v", err)
	}
	fmt.Printf("Best brain saved to: %s\n", brainPath)

	configOutPath := filepath.Join(*outputDir, "config.yaml")
	if err := cfg.WriteYAML(configOutPath); err != nil {
		log.Printf("failed to write config: %v", err)
	}
}
