// Command fractalviewer draws a Julia set over a prerendered Mandelbrot set
// and pans the Julia constant with the mouse. A mouse click exits.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"fractalviewer/internal/config"
	"fractalviewer/internal/debug"
	"fractalviewer/internal/gles"
	"fractalviewer/internal/gles/gogl"
	"fractalviewer/internal/pointer"
	"fractalviewer/internal/render"
	"fractalviewer/internal/utils"
	"fractalviewer/internal/viewer"

	"github.com/spf13/cobra"
)

func init() {
	// GL calls must stay on the thread that owns the context.
	runtime.LockOSThread()
}

type flags struct {
	configPath string
	cfg        config.Config
}

func mainCmd() *cobra.Command {
	f := &flags{cfg: config.Default()}

	cmd := &cobra.Command{
		Use:   "fractalviewer",
		Short: "Pan a Julia set over a prerendered Mandelbrot set with the mouse",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.configPath, "config", "c", "", "TOML config file")
	fs.StringVar(&f.cfg.Pointer.Source, "pointer", f.cfg.Pointer.Source, "pointer source: device or x11")
	fs.StringVar(&f.cfg.Pointer.Device, "device", f.cfg.Pointer.Device, "pointer device node")
	fs.StringVar(&f.cfg.Render.Profile, "profile", f.cfg.Render.Profile, "GPU profile: vc4 or vc6")
	fs.IntVar(&f.cfg.Render.Iterations, "iterations", f.cfg.Render.Iterations, "Mandelbrot iterations (0 uses the profile)")
	fs.Float32Var(&f.cfg.Render.Scale, "scale", f.cfg.Render.Scale, "complex plane units per pixel")
	fs.StringVar(&f.cfg.Render.ShaderDir, "shader-dir", f.cfg.Render.ShaderDir, "directory with shader overrides")
	fs.BoolVar(&f.cfg.Render.StrictShaders, "strict", f.cfg.Render.StrictShaders, "fail on shader compile or link errors")
	fs.BoolVarP(&f.cfg.Render.Verbose, "verbose", "v", f.cfg.Render.Verbose, "log shader info logs")
	fs.IntVar(&f.cfg.Window.Width, "width", f.cfg.Window.Width, "window width (0 for fullscreen)")
	fs.IntVar(&f.cfg.Window.Height, "height", f.cfg.Window.Height, "window height (0 for fullscreen)")
	fs.BoolVar(&f.cfg.Window.Overlay, "overlay", f.cfg.Window.Overlay, "show the performance overlay (F3 toggles)")
	fs.StringVar(&f.cfg.Log.Level, "log-level", f.cfg.Log.Level, "debug, info, warn or error")
	fs.BoolVar(&f.cfg.Log.Debug, "debug", f.cfg.Log.Debug, "enable debug logging")

	return cmd
}

// resolveConfig loads the config file and re-applies the flags the user set
// on top of it.
func resolveConfig(cmd *cobra.Command, f *flags) (config.Config, error) {
	if f.configPath == "" {
		return f.cfg, f.cfg.Validate()
	}

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, err
	}

	fs := cmd.Flags()
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("pointer", func() { cfg.Pointer.Source = f.cfg.Pointer.Source })
	set("device", func() { cfg.Pointer.Device = f.cfg.Pointer.Device })
	set("profile", func() { cfg.Render.Profile = f.cfg.Render.Profile })
	set("iterations", func() { cfg.Render.Iterations = f.cfg.Render.Iterations })
	set("scale", func() { cfg.Render.Scale = f.cfg.Render.Scale })
	set("shader-dir", func() { cfg.Render.ShaderDir = f.cfg.Render.ShaderDir })
	set("strict", func() { cfg.Render.StrictShaders = f.cfg.Render.StrictShaders })
	set("verbose", func() { cfg.Render.Verbose = f.cfg.Render.Verbose })
	set("width", func() { cfg.Window.Width = f.cfg.Window.Width })
	set("height", func() { cfg.Window.Height = f.cfg.Window.Height })
	set("overlay", func() { cfg.Window.Overlay = f.cfg.Window.Overlay })
	set("log-level", func() { cfg.Log.Level = f.cfg.Log.Level })
	set("debug", func() { cfg.Log.Debug = f.cfg.Log.Debug })

	return cfg, cfg.Validate()
}

func openSource(cfg config.Config, width, height int) (pointer.Source, error) {
	if cfg.Pointer.Source == config.SourceX11 {
		src, err := pointer.NewX11Source(width, height)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	decoder := pointer.NewDecoder(width, height)
	decoder.ResyncLimit = cfg.Pointer.ResyncLimit
	return pointer.NewDeviceSource(cfg.Pointer.Device, decoder, cfg.Backoff()), nil
}

func run(cmd *cobra.Command, f *flags) error {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return err
	}
	// At this point usage information has already been printed if obviously incorrect.
	cmd.SilenceUsage = true

	if err := cfg.ApplyLogging(); err != nil {
		return err
	}

	utils.Info("--- fractalviewer (%s profile) ---", cfg.Profile())

	window := OpenWindow(cfg.Window)
	defer window.Close()
	if !window.Ready() {
		return errors.New("window: no display available")
	}

	api, err := gogl.New()
	if err != nil {
		return fmt.Errorf("gles: %w", err)
	}
	glVersion := api.Version()
	utils.Debug("GLES: %s", glVersion)

	width, height := window.Size()
	source, err := openSource(cfg, int(width), int(height))
	if err != nil {
		return fmt.Errorf("pointer: %w", err)
	}
	defer source.Close()

	sources := render.DefaultSources(cfg.Profile(), cfg.Render.Iterations).WithOverrides(cfg.Render.ShaderDir)
	renderer := render.New(api, sources, render.Options{
		Scale:   cfg.Render.Scale,
		Strict:  cfg.Render.StrictShaders,
		Verbose: cfg.Render.Verbose,
	})

	start := pointer.Position{X: cfg.Pointer.StartX, Y: cfg.Pointer.StartY}
	loop := viewer.New(window, renderer, source, start)
	if cfg.Window.Overlay {
		loop.SetOverlay(NewOverlay(debug.NewPerformance(string(cfg.Profile()), glVersion), height))
	}
	if err := loop.Run(cmd.Context()); err != nil {
		var rerr *render.Error
		if errors.As(err, &rerr) && rerr.Kind == render.RuntimeError {
			utils.Error("See %s", gles.ErrorReferenceURL)
		}
		return err
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := mainCmd().ExecuteContext(ctx)
	if err != nil {
		stop()
		// At this point the error has already been printed; no need to print again.
		os.Exit(1)
	}
}
