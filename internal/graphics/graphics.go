package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Window describes the window to open.
type Window struct {
	Width  int
	Height int
	Title  string
	FPS    int
}

// Run opens a resizable window and runs the main loop until it is closed. Each frame it calls
// resize when the framebuffer size changed, then update with the frame time, then clears the
// screen and calls draw.
func Run(w Window, resize func(width, height int), update func(dt float64), draw func()) {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(w.Width), int32(w.Height), w.Title)
	defer rl.CloseWindow()

	rl.SetExitKey(rl.KeyNull) // Escape leaves detail view; close via the window button
	if w.FPS > 0 {
		rl.SetTargetFPS(int32(w.FPS))
	}

	width, height := w.Width, w.Height
	for !rl.WindowShouldClose() {
		if cw, ch := int(rl.GetScreenWidth()), int(rl.GetScreenHeight()); cw != width || ch != height {
			width, height = cw, ch
			if resize != nil {
				resize(width, height)
			}
		}
		update(float64(rl.GetFrameTime()))

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		draw()
		rl.EndDrawing()
	}
}
