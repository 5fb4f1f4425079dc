// Package systems contains the per-tick rules of the simulation: agent
// kinematics, obstacle motion, collision masks and the scrolling ground.
package systems

import (
	"github.com/pthm-cable/flap/components"
	"github.com/pthm-cable/flap/config"
)

// Kinematics holds the constants of the vertical motion model.
type Kinematics struct {
	JumpImpulse float64
	Gravity     float64
	MaxFall     float64
	RiseBoost   float64

	MaxTilt  float64
	MinTilt  float64
	TiltRate float64
	TiltHold float64
}

// KinematicsFromConfig extracts the motion constants from the agent config.
func KinematicsFromConfig(cfg *config.AgentConfig) Kinematics {
	return Kinematics{
		JumpImpulse: cfg.JumpImpulse,
		Gravity:     cfg.Gravity,
		MaxFall:     cfg.MaxFall,
		RiseBoost:   cfg.RiseBoost,
		MaxTilt:     cfg.MaxTilt,
		MinTilt:     cfg.MinTilt,
		TiltRate:    cfg.TiltRate,
		TiltHold:    cfg.TiltHold,
	}
}

// Displacement returns the vertical movement for the tick-th tick after a jump
// with initial velocity v0: v0*t + a*t²/2, clamped to MaxFall when falling and
// pushed up by RiseBoost when rising.
func (k Kinematics) Displacement(v0 float64, ticks int) float64 {
	t := float64(ticks)
	d := v0*t + 0.5*k.Gravity*t*t

	if d >= k.MaxFall {
		d = k.MaxFall
	}
	if d < 0 {
		d -= k.RiseBoost
	}
	return d
}

// Jump starts a new arc from height y.
func (k Kinematics) Jump(m *components.Motion, y float64) {
	m.Velocity = -k.JumpImpulse
	m.Ticks = 0
	m.JumpY = y
}

// Advance moves pos one tick along the current arc and returns the displacement applied.
func (k Kinematics) Advance(m *components.Motion, pos *components.Position) float64 {
	m.Ticks++
	d := k.Displacement(m.Velocity, m.Ticks)
	pos.Y += d
	return d
}

// UpdateTilt turns the nose up while rising or just after a jump, otherwise
// lets it drop by TiltRate per tick down to MinTilt.
func (k Kinematics) UpdateTilt(tilt *components.Tilt, d, y, jumpY float64) {
	if d < 0 || y < jumpY+k.TiltHold {
		if tilt.Angle < k.MaxTilt {
			tilt.Angle = k.MaxTilt
		}
		return
	}
	if tilt.Angle > k.MinTilt {
		tilt.Angle -= k.TiltRate
		if tilt.Angle < k.MinTilt {
			tilt.Angle = k.MinTilt
		}
	}
}

// OutOfBounds reports whether a body whose top edge is at y has left the
// playfield: its bottom edge touches the floor or its top edge is above the ceiling.
func OutOfBounds(y float64, height int, floorY, ceilingY float64) bool {
	return y+float64(height) >= floorY || y < ceilingY
}
