// Package config loads the edgecam YAML configuration.
//
// Load starts from Default and overlays whatever the file sets, so a file
// only needs the keys it changes. A missing file yields the defaults.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/edgecam/internal/capture"
	"github.com/ironsheep/edgecam/internal/orientation"
	"github.com/ironsheep/edgecam/internal/render"
	"github.com/ironsheep/edgecam/internal/server"
	"github.com/ironsheep/edgecam/internal/settings"
)

// Config is the complete edgecam configuration.
type Config struct {
	Server      server.Config     `yaml:"server"`
	Capture     capture.Config    `yaml:"capture"`
	Processing  ProcessingConfig  `yaml:"processing"`
	Render      RenderConfig      `yaml:"render"`
	Orientation OrientationConfig `yaml:"orientation"`
	Log         LogConfig         `yaml:"log"`
}

// ProcessingConfig tunes the governor, worker and detector.
type ProcessingConfig struct {
	TargetFPS     float64 `yaml:"target_fps"`
	JPEGQuality   int     `yaml:"jpeg_quality"`
	BlurRadius    float64 `yaml:"blur_radius"` // Gaussian pre-blur, 0 disables
	LowThreshold  int     `yaml:"low_threshold"`
	HighThreshold int     `yaml:"high_threshold"`
	EdgesEnabled  bool    `yaml:"edges_enabled"`
}

// RenderConfig sizes the presentation surface.
type RenderConfig struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	FPS           float64 `yaml:"fps"`
	ScaleMode     string  `yaml:"scale_mode"` // fill or fit
	ShowProcessed bool    `yaml:"show_processed"`
	Overlay       bool    `yaml:"overlay"`
	ClearColor    string  `yaml:"clear_color"`
	TextColor     string  `yaml:"text_color"`
}

// OrientationConfig describes how the sensor is mounted.
type OrientationConfig struct {
	SensorOrientation int    `yaml:"sensor_orientation"` // multiple of 90 degrees
	LensFacing        string `yaml:"lens_facing"`        // front, back, external
	DisplayRotation   int    `yaml:"display_rotation"`   // 0, 90, 180, 270
}

// LogConfig selects the logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: server.Config{
			Addr:           server.DefaultAddr,
			PreviewQuality: server.DefaultJPEGQuality,
			StreamInterval: server.DefaultStreamInterval,
		},
		Capture: capture.Config{
			Source: capture.KindPattern,
			Device: "/dev/video0",
			Width:  640,
			Height: 480,
			FPS:    30,
		},
		Processing: ProcessingConfig{
			TargetFPS:     15,
			JPEGQuality:   70,
			BlurRadius:    1.4,
			LowThreshold:  settings.DefaultLowThreshold,
			HighThreshold: settings.DefaultHighThreshold,
			EdgesEnabled:  true,
		},
		Render: RenderConfig{
			Width:         640,
			Height:        480,
			FPS:           render.DefaultFPS,
			ScaleMode:     "fill",
			ShowProcessed: true,
			Overlay:       true,
			ClearColor:    "#000000",
			TextColor:     "#ffffff",
		},
		Orientation: OrientationConfig{
			LensFacing: "external",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path on top of the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Server.Addr != "", "server.listen must be set")
	check(c.Server.PreviewQuality >= 1 && c.Server.PreviewQuality <= 100,
		"server.preview_quality %d outside [1,100]", c.Server.PreviewQuality)
	check(c.Server.StreamInterval >= time.Millisecond,
		"server.stream_interval %v below 1ms", c.Server.StreamInterval)

	check(c.Capture.Width > 0 && c.Capture.Height > 0,
		"capture size %dx%d must be positive", c.Capture.Width, c.Capture.Height)
	check(c.Capture.FPS > 0, "capture.fps must be positive")

	check(c.Processing.TargetFPS > 0 && c.Processing.TargetFPS <= 1000,
		"processing.target_fps %v outside (0,1000]", c.Processing.TargetFPS)
	check(c.Processing.JPEGQuality >= 1 && c.Processing.JPEGQuality <= 100,
		"processing.jpeg_quality %d outside [1,100]", c.Processing.JPEGQuality)
	check(c.Processing.BlurRadius >= 0, "processing.blur_radius must not be negative")
	if err := c.InitialSettings().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("processing: %w", err))
	}

	check(c.Render.Width > 0 && c.Render.Height > 0,
		"render size %dx%d must be positive", c.Render.Width, c.Render.Height)
	check(c.Render.FPS > 0, "render.fps must be positive")
	if _, err := render.ParseScaleMode(c.Render.ScaleMode); err != nil {
		errs = append(errs, fmt.Errorf("render.scale_mode: %w", err))
	}
	if _, err := ParseColor(c.Render.ClearColor); err != nil {
		errs = append(errs, fmt.Errorf("render.clear_color: %w", err))
	}
	if _, err := ParseColor(c.Render.TextColor); err != nil {
		errs = append(errs, fmt.Errorf("render.text_color: %w", err))
	}

	check(c.Orientation.SensorOrientation%90 == 0,
		"orientation.sensor_orientation %d is not a multiple of 90", c.Orientation.SensorOrientation)
	if _, err := orientation.ParseLensFacing(c.Orientation.LensFacing); err != nil {
		errs = append(errs, fmt.Errorf("orientation.lens_facing: %w", err))
	}
	if _, err := orientation.DisplayRotationFromDegrees(c.Orientation.DisplayRotation); err != nil {
		errs = append(errs, fmt.Errorf("orientation.display_rotation: %w", err))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}

	return errors.Join(errs...)
}

// InitialSettings returns the detector settings the process starts with.
func (c *Config) InitialSettings() settings.Settings {
	return settings.Settings{
		LowThreshold:  c.Processing.LowThreshold,
		HighThreshold: c.Processing.HighThreshold,
		EdgesEnabled:  c.Processing.EdgesEnabled,
	}
}

// Transform resolves the configured mounting into a draw transform.
// The configuration must have been validated.
func (c *Config) Transform() orientation.Transform {
	facing, _ := orientation.ParseLensFacing(c.Orientation.LensFacing)
	display, _ := orientation.DisplayRotationFromDegrees(c.Orientation.DisplayRotation)
	return orientation.Resolve(c.Orientation.SensorOrientation, facing, display)
}

// ParseColor parses a hex color such as "#1e1e1e" into an opaque RGBA.
func ParseColor(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, err
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}
