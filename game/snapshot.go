package game

// AgentView is a read-only copy of one live agent.
type AgentView struct {
	Slot   int
	X, Y   float64
	Tilt   float64
	Width  int
	Height int
}

// ObstacleView is a read-only copy of one obstacle.
type ObstacleView struct {
	ID            uint32
	X             float64
	Width         int
	GapCenter     float64
	Top           float64
	Bottom        float64
	BarrierHeight int
	Passed        bool
}

// Snapshot is the world state after a tick, detached from the live world.
type Snapshot struct {
	Tick         int
	Score        int
	State        State
	Outcome      Outcome
	Agents       []AgentView
	Obstacles    []ObstacleView
	GroundOffset float64
	Fitness      []float64
}

// TrajectoryPoint summarizes the world at the end of one tick.
type TrajectoryPoint struct {
	Tick       int
	Score      int
	Alive      int
	FitnessSum float64
}

// Snapshot copies the current state for rendering or inspection.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Tick:         w.tick,
		Score:        w.score,
		State:        w.state,
		Outcome:      w.outcome,
		Agents:       make([]AgentView, 0, len(w.members)),
		Obstacles:    make([]ObstacleView, 0, len(w.obstacles)),
		GroundOffset: w.ground.Offset(),
		Fitness:      w.Fitness(),
	}

	for _, m := range w.members {
		pos, _, tilt, seat := w.agents.Get(m.entity)
		s.Agents = append(s.Agents, AgentView{
			Slot:   seat.Slot,
			X:      pos.X,
			Y:      pos.Y,
			Tilt:   tilt.Angle,
			Width:  w.body.Width,
			Height: w.body.Height,
		})
	}

	for _, o := range w.obstacles {
		s.Obstacles = append(s.Obstacles, ObstacleView{
			ID:            o.ID,
			X:             o.X,
			Width:         w.obstacleParams.Width,
			GapCenter:     o.GapCenter,
			Top:           o.Top,
			Bottom:        o.Bottom,
			BarrierHeight: w.obstacleParams.BarrierHeight,
			Passed:        o.Passed,
		})
	}

	return s
}
