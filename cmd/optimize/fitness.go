package main

import (
	"context"
	"math"
	"sync"

	"github.com/pthm-cable/flap/config"
	"github.com/pthm-cable/flap/game"
	"github.com/pthm-cable/flap/neural"
)

// FitnessEvaluator flies one weight vector over a fixed set of courses.
type FitnessEvaluator struct {
	cfg   *config.Config
	seeds []int64

	mu          sync.Mutex
	bestFitness float64
	bestWeights []float64
	lastScore   float64 // mean score from the most recent Evaluate call
}

// NewFitnessEvaluator creates an evaluator that averages over seeds.
func NewFitnessEvaluator(cfg *config.Config, seeds []int64) *FitnessEvaluator {
	return &FitnessEvaluator{
		cfg:         cfg,
		seeds:       seeds,
		bestFitness: math.Inf(1),
	}
}

// seedResult holds the result from one course.
type seedResult struct {
	fitness float64
	score   int
	err     error
}

// Evaluate returns the negated mean episode fitness of x (lower = better).
// A vector that cannot form a brain scores +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runEpisode(x, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalScore float64
	for _, r := range results {
		if r.err != nil {
			return math.Inf(1)
		}
		totalFitness += r.fitness
		totalScore += float64(r.score)
	}

	n := float64(len(fe.seeds))
	fitness := -totalFitness / n

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestWeights = append(fe.bestWeights[:0], x...)
	}
	fe.lastScore = totalScore / n
	fe.mu.Unlock()

	return fitness
}

// runEpisode builds a brain from x and flies it alone on the course for seed.
func (fe *FitnessEvaluator) runEpisode(x []float64, seed int64) seedResult {
	brain, err := neural.FromWeights(fe.cfg.Neural.Hidden, fe.cfg.Neural.InputScale, x)
	if err != nil {
		return seedResult{err: err}
	}

	ev := game.NewEvaluator(fe.cfg, seed)
	ep, err := ev.Run(context.Background(), []game.Controller{brain})
	if err != nil {
		return seedResult{err: err}
	}
	return seedResult{fitness: ep.Fitness[0], score: ep.Score}
}

// Best returns the lowest fitness seen and the vector that produced it.
// ok is false until a vector has been evaluated successfully.
func (fe *FitnessEvaluator) Best() (fitness float64, weights []float64, ok bool) {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	if fe.bestWeights == nil {
		return fe.bestFitness, nil, false
	}
	w := make([]float64, len(fe.bestWeights))
	copy(w, fe.bestWeights)
	return fe.bestFitness, w, true
}

// LastScore returns the mean score from the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastScore
}
