package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flap/game"
)

// barrierRects returns the screen rectangles of an obstacle's upper and lower barriers.
func barrierRects(o game.ObstacleView) (upper, lower rl.Rectangle) {
	w := float32(o.Width)
	h := float32(o.BarrierHeight)
	upper = rl.Rectangle{X: float32(o.X), Y: float32(o.Top), Width: w, Height: h}
	lower = rl.Rectangle{X: float32(o.X), Y: float32(o.Bottom), Width: w, Height: h}
	return upper, lower
}

// groundTiles returns the x of both ground tiles for the given scroll offset.
func groundTiles(offset, tileWidth float64) (float32, float32) {
	return float32(offset), float32(offset + tileWidth)
}

// drawBackground fills the sky.
func drawBackground(width, height int32) {
	p := Colors()
	rl.DrawRectangleGradientV(0, 0, width, height, p.SkyTop, p.SkyBottom)
}

// drawObstacles draws both barriers of every obstacle.
func drawObstacles(obstacles []game.ObstacleView) {
	p := Colors()
	for _, o := range obstacles {
		fill := p.Barrier
		if o.Passed {
			fill = p.Passed
		}
		upper, lower := barrierRects(o)
		for _, r := range []rl.Rectangle{upper, lower} {
			rl.DrawRectangleRec(r, fill)
			rl.DrawRectangleLinesEx(r, 3, p.BarrierRim)
		}
	}
}

// drawGround draws the scrolling strip from floorY to the bottom of the screen.
func drawGround(offset, tileWidth float64, floorY float32, width, height int32) {
	p := Colors()
	h := float32(height) - floorY
	x1, x2 := groundTiles(offset, tileWidth)
	for _, x := range []float32{x1, x2} {
		rl.DrawRectangleRec(rl.Rectangle{X: x, Y: floorY, Width: float32(tileWidth), Height: h}, p.Ground)
		// Stripes make the scroll visible
		for sx := x; sx < x+float32(tileWidth); sx += 24 {
			rl.DrawRectangleRec(rl.Rectangle{X: sx, Y: floorY + 4, Width: 12, Height: 10}, p.GroundEdge)
		}
	}
	rl.DrawLineEx(rl.Vector2{X: 0, Y: floorY}, rl.Vector2{X: float32(width), Y: floorY}, 3, p.GroundEdge)
}

// drawAgents draws each agent as a tilted body. Tilt is in degrees, nose up positive.
func drawAgents(agents []game.AgentView) {
	p := Colors()
	for _, a := range agents {
		w := float32(a.Width)
		h := float32(a.Height)
		center := rl.Vector2{X: float32(a.X) + w/2, Y: float32(a.Y) + h/2}
		body := rl.Rectangle{X: center.X, Y: center.Y, Width: w, Height: h}
		// Screen y points down, so nose up is a negative rotation
		rl.DrawRectanglePro(body, rl.Vector2{X: w / 2, Y: h / 2}, float32(-a.Tilt), p.AgentColor(a.Slot))
	}
}
