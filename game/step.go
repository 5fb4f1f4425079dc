package game

import (
	"math"
	"slices"

	"github.com/pthm-cable/flap/systems"
)

// Step advances the episode by one tick. It does nothing once terminated.
//
// Order within a tick:
//  1. every live agent earns the survival reward, consults its controller and moves
//  2. obstacles scroll
//  3. collisions are penalized and newly passed obstacles detected
//  4. a pass scores once, rewards survivors and spawns one obstacle
//  5. offscreen obstacles are dropped
//  6. agents outside the playfield are penalized
//  7. marked agents are removed
//  8. the episode terminates when no agent is left or the budget is spent
func (w *World) Step() {
	if w.state != Running {
		return
	}
	w.tick++
	t := w.perf.start()

	w.resetMarks()
	w.updateAgents()
	t.mark(PhaseDecide)

	w.advanceObstacles()
	t.mark(PhaseObstacles)

	if w.detectCollisionsAndPasses() {
		w.score++
		for i, m := range w.members {
			if !w.marked[i] {
				w.fitness[m.slot] += w.cfg.Fitness.PassBonus
			}
		}
		w.spawnObstacle(w.cfg.Obstacle.SpawnX)
	}
	w.dropOffscreen()
	t.mark(PhaseCollide)

	w.checkBounds()
	t.mark(PhaseBounds)

	w.removeMarked()
	t.mark(PhaseCompact)

	w.record()

	switch {
	case len(w.members) == 0:
		w.terminate(OutcomeExtinct)
	case w.tick >= w.cfg.Episode.MaxTicks:
		w.terminate(OutcomeBudget)
	}
}

func (w *World) resetMarks() {
	if cap(w.marked) < len(w.members) {
		w.marked = make([]bool, len(w.members))
	}
	w.marked = w.marked[:len(w.members)]
	clear(w.marked)
}

// updateAgents runs step 1 for every live agent in insertion order.
func (w *World) updateAgents() {
	threshold := w.cfg.Controller.DecisionThreshold

	for i, m := range w.members {
		pos, motion, tilt, _ := w.agents.Get(m.entity)

		w.fitness[m.slot] += w.cfg.Fitness.Survive

		out, err := safeDecide(m.controller, w.observe(pos.X, pos.Y))
		if err != nil {
			w.logger.Warn("controller failed, removing agent",
				"slot", m.slot,
				"tick", w.tick,
				"error", err,
			)
			w.marked[i] = true
			continue
		}

		if out[0] > threshold {
			w.kin.Jump(motion, pos.Y)
		}
		d := w.kin.Advance(motion, pos)
		w.kin.UpdateTilt(tilt, d, pos.Y, motion.JumpY)
	}
}

// observe builds the controller inputs for an agent at (x, y).
// Without an obstacle the distances read as zero.
func (w *World) observe(x, y float64) []float64 {
	o, ok := systems.NearestAhead(w.obstacles, x)
	if !ok {
		return []float64{y, 0, 0}
	}
	return []float64{y, math.Abs(y - o.GapCenter), math.Abs(y - o.Bottom)}
}

func (w *World) advanceObstacles() {
	for _, o := range w.obstacles {
		o.Advance()
	}
	w.ground.Advance()
}

// detectCollisionsAndPasses penalizes and marks colliding agents, then flags
// obstacles that fell behind a surviving agent. It reports whether any
// obstacle was passed this tick.
func (w *World) detectCollisionsAndPasses() bool {
	passed := false
	for _, o := range w.obstacles {
		for i, m := range w.members {
			if w.marked[i] {
				continue
			}
			pos, _, _, _ := w.agents.Get(m.entity)
			if systems.Collides(w.agentMask, pos.X, pos.Y, o, w.barrierMask) {
				w.fitness[m.slot] -= w.cfg.Fitness.CollisionPenalty
				w.marked[i] = true
			}
		}

		if !o.Passed && w.anyAgentBeyond(o.X) {
			o.Passed = true
			passed = true
		}
	}
	return passed
}

// anyAgentBeyond reports whether an unmarked live agent is right of x.
func (w *World) anyAgentBeyond(x float64) bool {
	for i, m := range w.members {
		if w.marked[i] {
			continue
		}
		pos, _, _, _ := w.agents.Get(m.entity)
		if pos.X > x {
			return true
		}
	}
	return false
}

func (w *World) dropOffscreen() {
	kept := w.obstacles[:0]
	for _, o := range w.obstacles {
		if !o.Offscreen() {
			kept = append(kept, o)
		}
	}
	clear(w.obstacles[len(kept):])
	w.obstacles = kept
}

func (w *World) checkBounds() {
	floor, ceiling := w.cfg.World.FloorY, w.cfg.World.CeilingY
	for i, m := range w.members {
		if w.marked[i] {
			continue
		}
		pos, _, _, _ := w.agents.Get(m.entity)
		if systems.OutOfBounds(pos.Y, w.body.Height, floor, ceiling) {
			w.fitness[m.slot] -= w.cfg.Fitness.OutOfBoundsPenalty
			w.marked[i] = true
		}
	}
}

// removeMarked compacts the live set, highest index first, and releases
// the removed entities. Fitness stays in its slot.
func (w *World) removeMarked() {
	for i := len(w.members) - 1; i >= 0; i-- {
		if !w.marked[i] {
			continue
		}
		w.ecs.RemoveEntity(w.members[i].entity)
		w.members = slices.Delete(w.members, i, i+1)
	}
}

func (w *World) record() {
	var sum float64
	for _, f := range w.fitness {
		sum += f
	}
	w.trajectory = append(w.trajectory, TrajectoryPoint{
		Tick:       w.tick,
		Score:      w.score,
		Alive:      len(w.members),
		FitnessSum: sum,
	})
}
