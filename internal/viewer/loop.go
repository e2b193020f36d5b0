// Package viewer runs the frame loop: prerender the Mandelbrot layer once,
// then redraw the Julia layer each frame at the pointer position until the
// user clicks or the window closes.
package viewer

import (
	"context"
	"errors"
	"fmt"

	"fractalviewer/internal/pointer"
	"fractalviewer/internal/render"
	"fractalviewer/internal/utils"
)

// Display is the window the renderer draws into. EndFrame presents the
// frame.
type Display interface {
	Size() (width, height int32)
	BeginFrame()
	EndFrame()
	ShouldClose() bool
}

// FrameInfo describes a frame that was just drawn.
type FrameInfo struct {
	Frame         int
	Position      pointer.Position
	Width, Height int32
}

// Overlay draws on top of a finished frame before it is presented.
type Overlay interface {
	DrawOverlay(info FrameInfo)
}

type Loop struct {
	display  Display
	renderer *render.Renderer
	source   pointer.Source
	start    pointer.Position
	overlay  Overlay

	state  *render.State
	pos    pointer.Position
	frames int
}

func New(display Display, renderer *render.Renderer, source pointer.Source, start pointer.Position) *Loop {
	return &Loop{
		display:  display,
		renderer: renderer,
		source:   source,
		start:    start,
	}
}

func (l *Loop) SetOverlay(o Overlay) { l.overlay = o }

func (l *Loop) State() *render.State       { return l.state }
func (l *Loop) Position() pointer.Position { return l.pos }
func (l *Loop) Frames() int                { return l.frames }

// Run sets up the renderer, prerenders, and draws frames until the pointer
// terminates, the display closes or ctx is done. Renderer failures end the
// loop with an error; losing pointer sync only skips that update.
func (l *Loop) Run(ctx context.Context) error {
	width, height := l.display.Size()
	l.state = render.NewState(width, height)

	if err := l.renderer.Setup(l.state); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	if err := l.renderer.Prerender(l.state); err != nil {
		return fmt.Errorf("prerender: %w", err)
	}

	l.pos = l.start
	pointer.NewDecoder(int(width), int(height)).Clamp(&l.pos)
	utils.Info("Viewer: Running at %dx%d, pointer at %d,%d", width, height, l.pos.X, l.pos.Y)

	for {
		if err := ctx.Err(); err != nil {
			utils.Debug("Viewer: Stopping: %v", err)
			break
		}
		if l.display.ShouldClose() {
			utils.Debug("Viewer: Display closed")
			break
		}

		terminate, err := l.source.Poll(&l.pos)
		if err != nil {
			var desync *pointer.DesyncError
			if !errors.As(err, &desync) {
				return fmt.Errorf("pointer: %w", err)
			}
			utils.Warn("Viewer: %v", err)
		}
		if terminate {
			utils.Info("Viewer: Pointer button pressed, exiting")
			break
		}

		l.display.BeginFrame()
		err = l.renderer.DrawJulia(l.state, l.pos.X, l.pos.Y)
		if err == nil && l.overlay != nil {
			l.overlay.DrawOverlay(FrameInfo{Frame: l.frames, Position: l.pos, Width: width, Height: height})
		}
		l.display.EndFrame()
		if err != nil {
			return fmt.Errorf("frame %d: %w", l.frames, err)
		}
		l.frames++
	}

	utils.Debug("Viewer: Drew %d frames", l.frames)
	return nil
}
