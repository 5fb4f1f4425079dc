package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/flap/components"
	"github.com/pthm-cable/flap/config"
)

func testKinematics() Kinematics {
	return KinematicsFromConfig(&config.Default().Agent)
}

func TestDisplacement(t *testing.T) {
	k := testKinematics()

	tests := []struct {
		name  string
		v0    float64
		ticks int
		want  float64
	}{
		{"at rest first tick", 0, 1, 1.5},
		{"at rest second tick", 0, 2, 6},
		{"at rest third tick", 0, 3, 13.5},
		{"at rest clamped", 0, 4, 16},
		{"jump first tick gets rise boost", -10.5, 1, -10},
		{"jump second tick", -10.5, 2, -16},
		{"jump apex", -10.5, 7, 0},
		{"jump falling", -10.5, 8, 12},
		{"jump falling clamped", -10.5, 9, 16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := k.Displacement(tt.v0, tt.ticks)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Displacement(%v, %d) = %v, want %v", tt.v0, tt.ticks, got, tt.want)
			}
		})
	}
}

func TestDisplacementClampedAndMonotone(t *testing.T) {
	k := testKinematics()

	for _, v0 := range []float64{-20, -10.5, -3, 0, 4, 12} {
		// Zero crossing of v0*t + a*t²/2
		crossing := -2 * v0 / k.Gravity

		prev := math.Inf(-1)
		for tick := 0; tick <= 200; tick++ {
			d := k.Displacement(v0, tick)
			if d > k.MaxFall {
				t.Fatalf("v0=%v t=%d: d=%v exceeds max fall %v", v0, tick, d, k.MaxFall)
			}
			if float64(tick) > crossing {
				if d < prev {
					t.Fatalf("v0=%v t=%d: d=%v decreased from %v after zero crossing", v0, tick, d, prev)
				}
				prev = d
			}
		}
	}
}

func TestJumpResetsArc(t *testing.T) {
	k := testKinematics()
	m := components.Motion{Velocity: 0, Ticks: 12}
	pos := components.Position{X: 230, Y: 400}

	k.Jump(&m, pos.Y)
	if m.Velocity != -10.5 || m.Ticks != 0 || m.JumpY != 400 {
		t.Fatalf("after jump motion = %+v", m)
	}

	d := k.Advance(&m, &pos)
	if m.Ticks != 1 {
		t.Errorf("ticks = %d, want 1", m.Ticks)
	}
	if d != -10 || pos.Y != 390 {
		t.Errorf("d = %v, y = %v; want -10, 390", d, pos.Y)
	}
}

func TestUpdateTilt(t *testing.T) {
	k := testKinematics()

	tilt := components.Tilt{Angle: 0}
	k.UpdateTilt(&tilt, -10, 300, 310)
	if tilt.Angle != k.MaxTilt {
		t.Fatalf("rising tilt = %v, want %v", tilt.Angle, k.MaxTilt)
	}

	// Still within the hold band below the jump height
	k.UpdateTilt(&tilt, 5, 340, 300)
	if tilt.Angle != k.MaxTilt {
		t.Fatalf("hold tilt = %v, want %v", tilt.Angle, k.MaxTilt)
	}

	for i := 0; i < 10; i++ {
		k.UpdateTilt(&tilt, 16, 500, 300)
	}
	if tilt.Angle != k.MinTilt {
		t.Errorf("diving tilt = %v, want floor %v", tilt.Angle, k.MinTilt)
	}
}

func TestOutOfBoundsFloorBoundary(t *testing.T) {
	const (
		floor   = 730.0
		ceiling = -10.0
		height  = 48
	)

	tests := []struct {
		name string
		y    float64
		want bool
	}{
		{"bottom edge on floor", floor - height, true},
		{"one unit above floor", floor - height - 1, false},
		{"below floor", floor, true},
		{"mid air", 350, false},
		{"on ceiling", ceiling, false},
		{"above ceiling", ceiling - 0.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutOfBounds(tt.y, height, floor, ceiling); got != tt.want {
				t.Errorf("OutOfBounds(%v) = %v, want %v", tt.y, got, tt.want)
			}
		})
	}
}
