// Package game runs evaluation episodes: a population of controlled agents
// flying through scrolling obstacles until none survive or the tick budget runs out.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/flap/components"
	"github.com/pthm-cable/flap/config"
	"github.com/pthm-cable/flap/systems"
)

// State is the episode state machine.
type State int

const (
	Running State = iota
	Terminated
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "terminated"
}

// Outcome records why an episode terminated.
type Outcome int

const (
	OutcomeNone    Outcome = iota // still running
	OutcomeExtinct                // no live agents remain
	OutcomeBudget                 // tick budget exhausted
	OutcomeAborted                // cancelled at a tick boundary
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExtinct:
		return "extinct"
	case OutcomeBudget:
		return "budget"
	case OutcomeAborted:
		return "aborted"
	default:
		return "none"
	}
}

// member binds a live agent entity to its controller and fitness slot.
// Removing a member drops all three together.
type member struct {
	entity     ecs.Entity
	controller Controller
	slot       int
}

// World holds the state of one episode.
type World struct {
	cfg    *config.Config
	rng    *rand.Rand
	logger *slog.Logger
	perf   *PerfStats

	ecs    *ecs.World
	agents *ecs.Map4[components.Position, components.Motion, components.Tilt, components.Seat]

	members []member
	fitness []float64 // indexed by slot, i.e. controller input order
	marked  []bool    // per member, reset each tick

	kin         systems.Kinematics
	body        components.Body
	agentMask   *systems.Mask
	barrierMask *systems.Mask

	obstacleParams systems.ObstacleParams
	obstacles      []*systems.Obstacle
	nextObstacleID uint32
	ground         *systems.Ground

	tick       int
	score      int
	state      State
	outcome    Outcome
	trajectory []TrajectoryPoint
}

// NewWorld validates cfg and seeds an episode with one agent per controller
// and a single obstacle. rng is the only source of randomness in the episode.
// A nil logger uses slog.Default().
func NewWorld(cfg *config.Config, controllers []Controller, rng *rand.Rand, logger *slog.Logger) (*World, error) {
	if cfg == nil {
		return nil, fmt.Errorf("new world: %w: nil config", config.ErrInvalid)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new world: %w", err)
	}
	if rng == nil {
		return nil, fmt.Errorf("new world: nil random source")
	}
	if logger == nil {
		logger = slog.Default()
	}

	world := ecs.NewWorld()
	w := &World{
		cfg:            cfg,
		rng:            rng,
		logger:         logger,
		ecs:            world,
		agents:         ecs.NewMap4[components.Position, components.Motion, components.Tilt, components.Seat](world),
		members:        make([]member, 0, len(controllers)),
		fitness:        make([]float64, len(controllers)),
		kin:            systems.KinematicsFromConfig(&cfg.Agent),
		body:           components.BodyFromConfig(&cfg.Agent),
		obstacleParams: systems.ObstacleParamsFromConfig(&cfg.Obstacle),
		ground:         systems.NewGround(cfg.Ground.TileWidth, cfg.Ground.Velocity),
	}
	w.agentMask = systems.EllipseMask(w.body.Width, w.body.Height)
	w.barrierMask = systems.RectMask(cfg.Obstacle.Width, cfg.Obstacle.BarrierHeight)

	w.spawnObstacle(cfg.Obstacle.SeedX)
	for slot, c := range controllers {
		w.spawnAgent(slot, c)
	}

	if len(w.members) == 0 {
		w.terminate(OutcomeExtinct)
	}
	return w, nil
}

// spawnAgent creates an agent at the configured start position.
func (w *World) spawnAgent(slot int, c Controller) {
	a := &w.cfg.Agent
	pos := components.Position{X: a.StartX, Y: a.StartY}
	motion := components.Motion{JumpY: a.StartY}
	tilt := components.Tilt{}
	seat := components.Seat{Slot: slot}

	e := w.agents.NewEntity(&pos, &motion, &tilt, &seat)
	w.members = append(w.members, member{entity: e, controller: c, slot: slot})
}

// spawnObstacle appends an obstacle at x with a freshly drawn gap.
func (w *World) spawnObstacle(x float64) {
	o := systems.NewObstacle(w.nextObstacleID, x, &w.obstacleParams, w.rng)
	w.nextObstacleID++
	w.obstacles = append(w.obstacles, o)
}

// SetPerf enables per-phase timing. A nil p disables it.
func (w *World) SetPerf(p *PerfStats) {
	w.perf = p
}

// Tick returns the number of completed ticks.
func (w *World) Tick() int { return w.tick }

// Score returns the number of obstacles passed so far.
func (w *World) Score() int { return w.score }

// State returns the current episode state.
func (w *World) State() State { return w.state }

// Outcome returns why the episode terminated, or OutcomeNone while running.
func (w *World) Outcome() Outcome { return w.outcome }

// Alive returns the number of live agents.
func (w *World) Alive() int { return len(w.members) }

// Fitness returns a copy of the fitness accumulators in controller order.
func (w *World) Fitness() []float64 {
	out := make([]float64, len(w.fitness))
	copy(out, w.fitness)
	return out
}

// Trajectory returns the per-tick history recorded so far.
func (w *World) Trajectory() []TrajectoryPoint {
	out := make([]TrajectoryPoint, len(w.trajectory))
	copy(out, w.trajectory)
	return out
}

// Abort terminates a running episode. Accumulated fitness is kept.
func (w *World) Abort() {
	if w.state == Running {
		w.terminate(OutcomeAborted)
	}
}

func (w *World) terminate(outcome Outcome) {
	w.state = Terminated
	w.outcome = outcome
	w.logger.Debug("episode terminated",
		"tick", w.tick,
		"score", w.score,
		"outcome", outcome.String(),
		"agents", len(w.fitness),
	)
}
