package renderer

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the heads-up display.
type HUDData struct {
	Score       int
	Tick        int
	Alive       int
	Population  int
	Generation  int
	BestFitness float64
	FPS         int32
	Paused      bool
	FrameSkip   int
}

// HUDControls reports the operator's input for one frame.
type HUDControls struct {
	TogglePause bool
	FrameSkip   int
}

// drawHUD renders the score, the status lines and the raygui controls.
func drawHUD(data HUDData, screenWidth int32) HUDControls {
	p := Colors()

	// Score, centered at the top
	score := fmt.Sprintf("%d", data.Score)
	sw := rl.MeasureText(score, p.ScoreFontSize)
	x := (screenWidth - sw) / 2
	rl.DrawText(score, x+2, 42, p.ScoreFontSize, p.TextShadow)
	rl.DrawText(score, x, 40, p.ScoreFontSize, p.Text)

	// Status panel
	rl.DrawRectangle(p.Padding-4, p.Padding-4, 200, 88, p.PanelBg)
	y := p.Padding
	rl.DrawText(fmt.Sprintf("Gen: %d", data.Generation), p.Padding, y, p.FontSize, p.Text)
	y += p.FontSize + 2
	rl.DrawText(fmt.Sprintf("Alive: %d/%d", data.Alive, data.Population), p.Padding, y, p.FontSize, p.Text)
	y += p.FontSize + 2
	rl.DrawText(fmt.Sprintf("Tick: %d | FPS: %d", data.Tick, data.FPS), p.Padding, y, p.FontSize, p.Text)
	y += p.FontSize + 2
	rl.DrawText(fmt.Sprintf("Best: %.1f", data.BestFitness), p.Padding, y, p.FontSize, p.Text)

	// Controls, top right
	ctrl := HUDControls{FrameSkip: data.FrameSkip}
	bx := float32(screenWidth) - 130
	label := "Pause"
	if data.Paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: bx, Y: float32(p.Padding), Width: 120, Height: 26}, label) {
		ctrl.TogglePause = true
	}

	skip := gui.SliderBar(
		rl.Rectangle{X: bx + 20, Y: float32(p.Padding) + 34, Width: 80, Height: 16},
		"1", "60",
		float32(data.FrameSkip), 1, 60,
	)
	ctrl.FrameSkip = clampSkip(int(skip + 0.5))

	return ctrl
}

func clampSkip(n int) int {
	return min(max(n, 1), 60)
}
