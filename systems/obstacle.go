package systems

import (
	"math/rand"

	"github.com/pthm-cable/flap/config"
)

// ObstacleParams holds the geometry shared by every obstacle in an episode.
type ObstacleParams struct {
	Width         int
	BarrierHeight int
	GapHeight     float64
	Velocity      float64
	GapMin        int // inclusive
	GapMax        int // exclusive
}

// ObstacleParamsFromConfig extracts obstacle geometry from cfg.
func ObstacleParamsFromConfig(cfg *config.ObstacleConfig) ObstacleParams {
	return ObstacleParams{
		Width:         cfg.Width,
		BarrierHeight: cfg.BarrierHeight,
		GapHeight:     cfg.GapHeight,
		Velocity:      cfg.Velocity,
		GapMin:        cfg.GapMin,
		GapMax:        cfg.GapMax,
	}
}

// Obstacle is a pair of barriers with a passage between them.
// The upper barrier occupies [Top, GapCenter) and the lower one starts at Bottom.
type Obstacle struct {
	ID        uint32
	X         float64
	GapCenter float64
	Top       float64
	Bottom    float64
	Passed    bool

	params *ObstacleParams
}

// NewObstacle creates an obstacle at x with a gap drawn from rng.
func NewObstacle(id uint32, x float64, params *ObstacleParams, rng *rand.Rand) *Obstacle {
	o := &Obstacle{ID: id, X: x, params: params}
	o.Spawn(rng)
	return o
}

// Spawn draws a new gap position uniformly from [GapMin, GapMax) and
// recomputes both barrier bounds.
func (o *Obstacle) Spawn(rng *rand.Rand) {
	o.SetGap(float64(o.params.GapMin + rng.Intn(o.params.GapMax-o.params.GapMin)))
}

// SetGap places the gap explicitly.
func (o *Obstacle) SetGap(gapCenter float64) {
	o.GapCenter = gapCenter
	o.Top = gapCenter - float64(o.params.BarrierHeight)
	o.Bottom = gapCenter + o.params.GapHeight
}

// Advance scrolls the obstacle one tick to the left.
func (o *Obstacle) Advance() {
	o.X -= o.params.Velocity
}

// Right returns the x of the obstacle's right edge.
func (o *Obstacle) Right() float64 {
	return o.X + float64(o.params.Width)
}

// Offscreen reports whether the right edge has scrolled past the left boundary.
func (o *Obstacle) Offscreen() bool {
	return o.Right() < 0
}

// NearestAhead returns the first obstacle, in order, whose right edge an agent
// at agentX has not yet passed. If the agent is past all of them the last one
// is returned. ok is false only when obstacles is empty.
func NearestAhead(obstacles []*Obstacle, agentX float64) (o *Obstacle, ok bool) {
	if len(obstacles) == 0 {
		return nil, false
	}
	for _, o := range obstacles {
		if agentX <= o.Right() {
			return o, true
		}
	}
	return obstacles[len(obstacles)-1], true
}
