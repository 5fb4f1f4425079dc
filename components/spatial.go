package components

// Position represents an agent's world position.
// X is fixed for the lifetime of the agent; the world scrolls past it.
type Position struct {
	X, Y float64
}

// Motion holds the vertical kinematic state of an agent.
type Motion struct {
	Velocity float64 // velocity at the last jump (v0)
	Ticks    int     // ticks since the last jump
	JumpY    float64 // y at the last jump
}

// Tilt represents the presentational nose angle of an agent in degrees.
type Tilt struct {
	Angle float64
}
