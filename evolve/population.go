// Package evolve trains a population of neural controllers by elitism,
// tournament selection and sparse mutation.
package evolve

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/flap/config"
	"github.com/pthm-cable/flap/game"
	"github.com/pthm-cable/flap/neural"
)

// Population is one generation of brains.
type Population struct {
	Brains     []*neural.FFNN
	Generation int

	cfg *config.EvolutionConfig
	rng *rand.Rand
}

// Result describes how one generation was ranked and replaced.
type Result struct {
	Best        int          // index of the best brain in the ranked generation
	BestFitness float64      // fitness of that brain
	Champion    *neural.FFNN // clone of the best brain
	AvgMutation float64      // mean absolute weight change across mutated children
}

// New creates a population of randomly initialized brains.
func New(rng *rand.Rand, cfg *config.Config) *Population {
	n := cfg.Evolution.Population
	p := &Population{
		Brains: make([]*neural.FFNN, n),
		cfg:    &cfg.Evolution,
		rng:    rng,
	}
	for i := range p.Brains {
		p.Brains[i] = neural.NewFFNN(rng, &cfg.Neural)
	}
	return p
}

// Seeded creates a population descended from parent: the parent itself plus
// mutated clones.
func Seeded(rng *rand.Rand, cfg *config.Config, parent *neural.FFNN) *Population {
	p := &Population{
		Brains: make([]*neural.FFNN, cfg.Evolution.Population),
		cfg:    &cfg.Evolution,
		rng:    rng,
	}
	for i := range p.Brains {
		child := parent.Clone()
		if i > 0 {
			p.mutate(child)
		}
		p.Brains[i] = child
	}
	return p
}

// Controllers returns the brains as controllers, in population order.
func (p *Population) Controllers() []game.Controller {
	out := make([]game.Controller, len(p.Brains))
	for i, b := range p.Brains {
		out[i] = b
	}
	return out
}

// Next ranks the current generation by fitness and replaces it with the
// next one. fitness must hold one value per brain, in population order.
func (p *Population) Next(fitness []float64) (Result, error) {
	n := len(p.Brains)
	if len(fitness) != n {
		return Result{}, fmt.Errorf("got %d fitness values for %d brains", len(fitness), n)
	}
	if n == 0 {
		return Result{}, fmt.Errorf("empty population")
	}

	// Argsort sorts ascending in place, so work on a copy.
	sorted := make([]float64, n)
	copy(sorted, fitness)
	order := make([]int, n)
	floats.Argsort(sorted, order)

	best := order[n-1]
	res := Result{
		Best:        best,
		BestFitness: fitness[best],
		Champion:    p.Brains[best].Clone(),
	}

	next := make([]*neural.FFNN, 0, n)
	elite := min(p.cfg.Elite, n)
	for i := 0; i < elite; i++ {
		next = append(next, p.Brains[order[n-1-i]].Clone())
	}

	var totalDelta float64
	var mutated int
	for len(next) < n {
		child := p.Brains[p.tournament(fitness)].Clone()
		totalDelta += p.mutate(child)
		mutated++
		next = append(next, child)
	}
	if mutated > 0 {
		res.AvgMutation = totalDelta / float64(mutated)
	}

	p.Brains = next
	p.Generation++
	return res, nil
}

// tournament returns the fittest of TournamentSize random picks.
func (p *Population) tournament(fitness []float64) int {
	k := max(p.cfg.TournamentSize, 1)
	best := p.rng.Intn(len(fitness))
	for i := 1; i < k; i++ {
		c := p.rng.Intn(len(fitness))
		if fitness[c] > fitness[best] {
			best = c
		}
	}
	return best
}

func (p *Population) mutate(b *neural.FFNN) float64 {
	return b.MutateSparse(p.rng, p.cfg.MutationRate, p.cfg.MutationSigma, p.cfg.BigRate, p.cfg.BigSigma)
}
