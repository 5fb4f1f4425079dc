// Package telemetry records per-generation statistics and the best brains
// found during training.
package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/flap/game"
)

// GenerationStats summarizes one evaluated generation.
type GenerationStats struct {
	Generation int     `csv:"generation"`
	Population int     `csv:"population"`
	Best       float64 `csv:"best"`
	Mean       float64 `csv:"mean"`
	Std        float64 `csv:"std"`
	P10        float64 `csv:"p10"`
	P50        float64 `csv:"p50"`
	P90        float64 `csv:"p90"`
	Worst      float64 `csv:"worst"`

	// Episode outcome
	Score   int    `csv:"score"`
	Ticks   int    `csv:"ticks"`
	Outcome string `csv:"outcome"`

	MutationDelta float64 `csv:"mutation_delta"` // mean absolute weight change producing the next generation
	ElapsedMs     int64   `csv:"elapsed_ms"`
}

// Summarize computes the fitness distribution of an episode.
func Summarize(generation int, ep game.Episode, elapsed time.Duration) GenerationStats {
	s := GenerationStats{
		Generation: generation,
		Population: len(ep.Fitness),
		Score:      ep.Score,
		Ticks:      ep.Ticks,
		Outcome:    ep.Outcome.String(),
		ElapsedMs:  elapsed.Milliseconds(),
	}
	if len(ep.Fitness) == 0 {
		return s
	}

	sorted := make([]float64, len(ep.Fitness))
	copy(sorted, ep.Fitness)
	sort.Float64s(sorted)

	s.Worst = sorted[0]
	s.Best = sorted[len(sorted)-1]
	if len(sorted) > 1 {
		s.Mean, s.Std = stat.MeanStdDev(sorted, nil)
	} else {
		s.Mean = sorted[0]
	}
	s.P10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	s.P50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Int("population", s.Population),
		slog.Float64("best", s.Best),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("p50", s.P50),
		slog.Int("score", s.Score),
		slog.Int("ticks", s.Ticks),
		slog.String("outcome", s.Outcome),
		slog.Float64("mutation_delta", s.MutationDelta),
		slog.Int64("elapsed_ms", s.ElapsedMs),
	)
}

// LogStats logs the generation summary using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation", "stats", s)
}
