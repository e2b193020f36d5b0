// Package debug collects the numbers shown by the performance overlay.
package debug

import (
	"fmt"
	"runtime"
	"time"

	"fractalviewer/internal/viewer"
)

// Performance samples frame rate and memory once per second.
type Performance struct {
	Profile   string
	GLVersion string

	lastUpdateTime time.Time
	lastFrameTime  time.Time
	frameCount     int
	fps            float64
	frameTime      time.Duration
	memStats       runtime.MemStats
	info           viewer.FrameInfo

	now func() time.Time
}

func NewPerformance(profile, glVersion string) *Performance {
	p := &Performance{
		Profile:   profile,
		GLVersion: glVersion,
		now:       time.Now,
	}
	p.lastUpdateTime = p.now()
	p.lastFrameTime = p.lastUpdateTime
	runtime.ReadMemStats(&p.memStats)
	return p
}

// Update records one drawn frame.
func (p *Performance) Update(info viewer.FrameInfo) {
	p.info = info
	p.frameCount++

	now := p.now()
	p.frameTime = now.Sub(p.lastFrameTime)
	p.lastFrameTime = now

	if elapsed := now.Sub(p.lastUpdateTime); elapsed >= time.Second {
		p.fps = float64(p.frameCount) / elapsed.Seconds()
		p.frameCount = 0
		p.lastUpdateTime = now
		runtime.ReadMemStats(&p.memStats)
	}
}

func (p *Performance) FPS() float64 { return p.fps }

func (p *Performance) FrameTime() time.Duration { return p.frameTime }

// Lines is the overlay text, one entry per row. Empty entries separate
// groups.
func (p *Performance) Lines() []string {
	const mb = 1024 * 1024
	lines := []string{
		"Timing:",
		fmt.Sprintf("  FPS: %.1f", p.fps),
		fmt.Sprintf("  Frame Time: %.2f ms", float64(p.frameTime.Microseconds())/1000),
		fmt.Sprintf("  Frame: %d", p.info.Frame),
		"",
		"Pointer:",
		fmt.Sprintf("  Offset: %d, %d", p.info.Position.X, p.info.Position.Y),
		fmt.Sprintf("  Screen: %dx%d", p.info.Width, p.info.Height),
		"",
		"Memory Usage:",
		fmt.Sprintf("  Allocated: %.2f MB", float64(p.memStats.Alloc)/mb),
		fmt.Sprintf("  Process Total: %.2f MB", float64(p.memStats.Sys)/mb),
		"",
		"Graphics:",
		fmt.Sprintf("  Profile: %s", p.Profile),
	}
	if p.GLVersion != "" {
		lines = append(lines, fmt.Sprintf("  Version: %s", p.GLVersion))
	}
	return lines
}
