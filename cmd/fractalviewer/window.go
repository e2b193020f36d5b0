package main

import (
	"fractalviewer/internal/config"
	"fractalviewer/internal/utils"
	"fractalviewer/internal/viewer"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Window owns the raylib window and its GLES context. Every method must be
// called from the thread that opened it.
type Window struct {
	width  int32
	height int32
}

var _ viewer.Display = (*Window)(nil)

// OpenWindow creates the window. A zero width or height opens a fullscreen
// window at the monitor size.
func OpenWindow(cfg config.Window) *Window {
	rl.SetTraceLogLevel(rl.LogAll)
	rl.SetTraceLogCallback(utils.RaylibLogCallback)

	width, height := int32(cfg.Width), int32(cfg.Height)
	if width == 0 || height == 0 {
		rl.SetConfigFlags(rl.FlagFullscreenMode | rl.FlagVsyncHint)
	} else {
		rl.SetConfigFlags(rl.FlagVsyncHint)
	}

	rl.InitWindow(width, height, cfg.Title)
	rl.SetExitKey(rl.KeyEscape)
	if cfg.TargetFPS > 0 {
		rl.SetTargetFPS(int32(cfg.TargetFPS))
	}

	window := &Window{
		width:  int32(rl.GetScreenWidth()),
		height: int32(rl.GetScreenHeight()),
	}
	utils.Info("Window: Opened %dx%d", window.width, window.height)
	return window
}

func (window *Window) Ready() bool { return rl.IsWindowReady() }

func (window *Window) Size() (int32, int32) {
	return window.width, window.height
}

func (window *Window) BeginFrame() { rl.BeginDrawing() }

// EndFrame flushes raylib's batch and swaps buffers.
func (window *Window) EndFrame() { rl.EndDrawing() }

func (window *Window) ShouldClose() bool { return rl.WindowShouldClose() }

func (window *Window) Close() {
	rl.CloseWindow()
	utils.Debug("Window: Closed")
}
