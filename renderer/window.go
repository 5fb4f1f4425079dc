package renderer

import (
	"context"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/flap/config"
	"github.com/pthm-cable/flap/game"
)

// Window renders snapshots into a raylib window. It implements game.Renderer.
// Closing the window cancels the episode through the supplied cancel function.
type Window struct {
	cfg    *config.Config
	cancel context.CancelFunc

	width, height int32

	paused    bool
	frameSkip int
	closed    bool

	generation  int
	bestFitness float64
}

// NewWindow opens a window sized from cfg.Screen. Call Close when done.
func NewWindow(cfg *config.Config, title string, cancel context.CancelFunc) *Window {
	w := &Window{
		cfg:       cfg,
		cancel:    cancel,
		width:     int32(cfg.Screen.Width),
		height:    int32(cfg.Screen.Height),
		frameSkip: 1,
	}
	rl.InitWindow(w.width, w.height, title)
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))
	Colors()
	return w
}

// SetGeneration updates the training info shown in the HUD.
func (w *Window) SetGeneration(generation int, bestFitness float64) {
	w.generation = generation
	w.bestFitness = bestFitness
}

// Closed reports whether the operator closed the window.
func (w *Window) Closed() bool {
	return w.closed
}

// Render draws s. Only every FrameSkip-th tick is drawn unless the episode has ended.
// While paused it keeps redrawing the same frame until resumed or closed.
func (w *Window) Render(s game.Snapshot) {
	if w.closed {
		return
	}
	if s.State == game.Running && s.Tick%w.frameSkip != 0 {
		return
	}

	for {
		w.drawFrame(s)
		if rl.WindowShouldClose() {
			w.closed = true
			if w.cancel != nil {
				w.cancel()
			}
			return
		}
		if !w.paused {
			return
		}
	}
}

func (w *Window) drawFrame(s game.Snapshot) {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	drawBackground(w.width, w.height)
	drawObstacles(s.Obstacles)
	drawGround(s.GroundOffset, w.cfg.Ground.TileWidth, float32(w.cfg.World.FloorY), w.width, w.height)
	drawAgents(s.Agents)

	ctrl := drawHUD(HUDData{
		Score:       s.Score,
		Tick:        s.Tick,
		Alive:       len(s.Agents),
		Population:  len(s.Fitness),
		Generation:  w.generation,
		BestFitness: w.bestFitness,
		FPS:         rl.GetFPS(),
		Paused:      w.paused,
		FrameSkip:   w.frameSkip,
	}, w.width)

	if ctrl.TogglePause || rl.IsKeyPressed(rl.KeySpace) {
		w.paused = !w.paused
	}
	w.frameSkip = ctrl.FrameSkip
}

// Close closes the raylib window.
func (w *Window) Close() {
	rl.CloseWindow()
}
