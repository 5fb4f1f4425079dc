package systems

// Ground is the scrolling floor strip drawn under the playfield.
// Two tiles leapfrog each other so the strip never shows a seam.
type Ground struct {
	X1, X2    float64
	TileWidth float64
	Velocity  float64
}

// NewGround places two tiles side by side starting at the left edge.
func NewGround(tileWidth, velocity float64) *Ground {
	return &Ground{X1: 0, X2: tileWidth, TileWidth: tileWidth, Velocity: velocity}
}

// Advance scrolls both tiles and recycles whichever left the screen.
func (g *Ground) Advance() {
	g.X1 -= g.Velocity
	g.X2 -= g.Velocity

	if g.X1+g.TileWidth < 0 {
		g.X1 = g.X2 + g.TileWidth
	}
	if g.X2+g.TileWidth < 0 {
		g.X2 = g.X1 + g.TileWidth
	}
}

// Offset returns the left edge of the leftmost tile.
func (g *Ground) Offset() float64 {
	return min(g.X1, g.X2)
}
