// Package config holds the viewer settings: built-in defaults, an optional
// TOML file and the command line flags layered on top.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"fractalviewer/internal/pointer"
	"fractalviewer/internal/render"
	"fractalviewer/internal/utils"

	"github.com/pelletier/go-toml/v2"
)

const (
	SourceDevice = "device"
	SourceX11    = "x11"
)

// Window sizes of 0 take the display size.
type Window struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	// TargetFPS of 0 leaves the frame rate to the display.
	TargetFPS int  `toml:"target_fps"`
	Overlay   bool `toml:"overlay"`
}

type Render struct {
	Profile string `toml:"profile"`
	// Iterations overrides the profile's Mandelbrot budget when positive.
	Iterations    int     `toml:"iterations"`
	Scale         float32 `toml:"scale"`
	ShaderDir     string  `toml:"shader_dir"`
	StrictShaders bool    `toml:"strict_shaders"`
	Verbose       bool    `toml:"verbose"`
}

type Pointer struct {
	Source           string `toml:"source"`
	Device           string `toml:"device"`
	StartX           int    `toml:"start_x"`
	StartY           int    `toml:"start_y"`
	ResyncLimit      int    `toml:"resync_limit"`
	BackoffInitialMS int    `toml:"backoff_initial_ms"`
	BackoffMaxMS     int    `toml:"backoff_max_ms"`
}

type Log struct {
	Level string `toml:"level"`
	Debug bool   `toml:"debug"`
}

type Config struct {
	Window  Window  `toml:"window"`
	Render  Render  `toml:"render"`
	Pointer Pointer `toml:"pointer"`
	Log     Log     `toml:"log"`
}

// Default starts the pointer at (800, 400) on the first mouse device.
func Default() Config {
	return Config{
		Window: Window{
			Title:     "fractalviewer",
			TargetFPS: 60,
		},
		Render: Render{
			Profile: string(render.ProfileVC4),
			Scale:   render.DefaultScale,
		},
		Pointer: Pointer{
			Source:           SourceDevice,
			Device:           pointer.DefaultDevicePath,
			StartX:           800,
			StartY:           400,
			ResyncLimit:      pointer.DefaultResyncLimit,
			BackoffInitialMS: int(pointer.DefaultBackoff.Initial / time.Millisecond),
			BackoffMaxMS:     int(pointer.DefaultBackoff.Max / time.Millisecond),
		},
		Log: Log{
			Level: "warn",
		},
	}
}

// Load reads path over the defaults. Keys missing from the file keep their
// default; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	utils.Debug("Config: Loaded %s", path)
	return cfg, nil
}

func Decode(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("%s", strict.String())
		}
		var decErr *toml.DecodeError
		if errors.As(err, &decErr) {
			row, col := decErr.Position()
			return fmt.Errorf("line %d column %d: %w", row, col, err)
		}
		return err
	}
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Window.Width < 0 || c.Window.Height < 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d is negative", c.Window.Width, c.Window.Height))
	}
	if c.Window.TargetFPS < 0 {
		errs = append(errs, fmt.Errorf("target_fps %d is negative", c.Window.TargetFPS))
	}
	if _, err := render.ParseProfile(c.Render.Profile); err != nil {
		errs = append(errs, err)
	}
	if c.Render.Iterations < 0 {
		errs = append(errs, fmt.Errorf("iterations %d is negative", c.Render.Iterations))
	}
	if c.Render.Scale <= 0 {
		errs = append(errs, fmt.Errorf("scale %g must be positive", c.Render.Scale))
	}
	switch c.Pointer.Source {
	case SourceDevice:
		if c.Pointer.Device == "" {
			errs = append(errs, errors.New("pointer device path is empty"))
		}
	case SourceX11:
	default:
		errs = append(errs, fmt.Errorf("unknown pointer source %q (want %s or %s)", c.Pointer.Source, SourceDevice, SourceX11))
	}
	if c.Pointer.ResyncLimit < 0 {
		errs = append(errs, fmt.Errorf("resync_limit %d is negative", c.Pointer.ResyncLimit))
	}
	if c.Pointer.BackoffInitialMS < 0 || c.Pointer.BackoffMaxMS < 0 {
		errs = append(errs, errors.New("pointer backoff must not be negative"))
	}
	if _, err := utils.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c Config) Profile() render.Profile {
	p, err := render.ParseProfile(c.Render.Profile)
	if err != nil {
		return render.ProfileVC4
	}
	return p
}

func (c Config) Backoff() pointer.Backoff {
	return pointer.Backoff{
		Initial: time.Duration(c.Pointer.BackoffInitialMS) * time.Millisecond,
		Max:     time.Duration(c.Pointer.BackoffMaxMS) * time.Millisecond,
	}
}

// ApplyLogging pushes the [log] section into the global logger.
func (c Config) ApplyLogging() error {
	level, err := utils.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	utils.CurrentLevel = level
	utils.DebugMode = c.Log.Debug
	return nil
}
