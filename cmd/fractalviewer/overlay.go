package main

import (
	"math"

	"fractalviewer/internal/debug"
	"fractalviewer/internal/viewer"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Overlay draws the performance panel in the top left corner. F3 toggles it.
type Overlay struct {
	Visible bool

	perf       *debug.Performance
	fontHeight int32
	lineHeight int32
	width      int32
}

var _ viewer.Overlay = (*Overlay)(nil)

func NewOverlay(perf *debug.Performance, screenHeight int32) *Overlay {
	scale := math.Max(1.0, float64(screenHeight)/1080.0)
	return &Overlay{
		Visible:    true,
		perf:       perf,
		fontHeight: int32(16 * scale),
		lineHeight: int32(22 * scale),
		width:      int32(300 * scale),
	}
}

func (o *Overlay) DrawOverlay(info viewer.FrameInfo) {
	o.perf.Update(info)
	if rl.IsKeyPressed(rl.KeyF3) {
		o.Visible = !o.Visible
	}
	if !o.Visible {
		return
	}

	lines := o.perf.Lines()
	const margin = 10
	height := int32(len(lines))*o.lineHeight + 2*margin
	rl.DrawRectangle(0, 0, o.width, height, rl.NewColor(0, 0, 0, 160))

	y := int32(margin)
	for _, line := range lines {
		if line != "" {
			rl.DrawText(line, margin, y, o.fontHeight, rl.White)
		}
		y += o.lineHeight
	}
}
