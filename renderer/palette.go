// Package renderer draws episode snapshots with raylib. The simulation core
// never depends on it.
package renderer

import (
	"sync"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Palette holds the colors and text metrics shared by every frame.
type Palette struct {
	SkyTop     rl.Color
	SkyBottom  rl.Color
	Barrier    rl.Color
	BarrierRim rl.Color
	Passed     rl.Color
	Ground     rl.Color
	GroundEdge rl.Color
	Agents     []rl.Color // cycled by slot
	Text       rl.Color
	TextShadow rl.Color
	PanelBg    rl.Color

	FontSize      int32
	ScoreFontSize int32
	Padding       int32
}

var (
	palette     Palette
	paletteOnce sync.Once
)

// Colors returns the process-wide palette, building it on first use.
// The returned value must be treated as read-only.
func Colors() *Palette {
	paletteOnce.Do(func() {
		palette = Palette{
			SkyTop:     rl.Color{R: 78, G: 192, B: 202, A: 255},
			SkyBottom:  rl.Color{R: 220, G: 245, B: 240, A: 255},
			Barrier:    rl.Color{R: 115, G: 191, B: 46, A: 255},
			BarrierRim: rl.Color{R: 84, G: 56, B: 71, A: 255},
			Passed:     rl.Color{R: 90, G: 150, B: 40, A: 255},
			Ground:     rl.Color{R: 222, G: 216, B: 149, A: 255},
			GroundEdge: rl.Color{R: 84, G: 56, B: 71, A: 255},
			Agents: []rl.Color{
				{R: 250, G: 200, B: 40, A: 220},
				{R: 230, G: 90, B: 70, A: 220},
				{R: 80, G: 140, B: 230, A: 220},
				{R: 240, G: 240, B: 240, A: 220},
			},
			Text:          rl.White,
			TextShadow:    rl.Color{R: 0, G: 0, B: 0, A: 160},
			PanelBg:       rl.Color{R: 20, G: 25, B: 30, A: 200},
			FontSize:      16,
			ScoreFontSize: 40,
			Padding:       10,
		}
	})
	return &palette
}

// AgentColor returns the color for an agent slot.
func (p *Palette) AgentColor(slot int) rl.Color {
	return p.Agents[slot%len(p.Agents)]
}
