// Package config defines process configuration and how it is loaded.
package config

import (
	"fmt"
	"strings"
)

// Gaze sources.
const (
	SensorHTTP   = "http"
	SensorCamera = "camera"
)

// Scroll sinks.
const (
	RendererStream  = "stream"
	RendererBrowser = "browser"
)

const maxScrollZoneFraction = 0.5

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// ScrollZoneFraction is the height of each trigger band as a fraction of the viewport.
	ScrollZoneFraction float64 `koanf:"scroll_zone_fraction"`

	// MaxScrollSpeed caps |deltaY| in pixels per frame.
	MaxScrollSpeed float64 `koanf:"max_scroll_speed"`

	// SmoothingFactor weights each new target; 1 means no smoothing.
	SmoothingFactor float64 `koanf:"smoothing_factor"`

	// ScrollSpeed is the initial user multiplier on MaxScrollSpeed.
	ScrollSpeed float64 `koanf:"scroll_speed"`

	// QueueSize bounds the gaze samples waiting for the worker.
	QueueSize int `koanf:"queue_size"`

	// Sensor selects the gaze source: http or camera.
	Sensor string `koanf:"sensor"`

	// CameraDevice, ModelPath, DetectConfidence and FrameIntervalMS configure
	// the camera source.
	CameraDevice     int     `koanf:"camera_device"`
	ModelPath        string  `koanf:"model_path"`
	DetectConfidence float64 `koanf:"detect_confidence"`
	FrameIntervalMS  int     `koanf:"frame_interval_ms"`

	// Renderer selects the scroll sink: stream or browser.
	Renderer string `koanf:"renderer"`

	// PageURL, Headless and the viewport configure the browser renderer.
	PageURL        string `koanf:"page_url"`
	Headless       bool   `koanf:"headless"`
	ViewportWidth  int    `koanf:"viewport_width"`
	ViewportHeight int    `koanf:"viewport_height"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9090",
		ScrollZoneFraction: 0.15,
		MaxScrollSpeed:     30,
		SmoothingFactor:    0.2,
		ScrollSpeed:        1.0,
		QueueSize:          1,
		Sensor:             SensorHTTP,
		CameraDevice:       0,
		ModelPath:          "models/face_detection_yunet.onnx",
		DetectConfidence:   0.5,
		FrameIntervalMS:    33,
		Renderer:           RendererStream,
		ViewportWidth:      1280,
		ViewportHeight:     720,
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.ScrollZoneFraction <= 0 || c.ScrollZoneFraction > maxScrollZoneFraction:
		return fmt.Errorf("%w: scroll_zone_fraction must be in (0, %v], got %v",
			ErrInvalidConfig, maxScrollZoneFraction, c.ScrollZoneFraction)
	case c.SmoothingFactor < 0 || c.SmoothingFactor > 1:
		return fmt.Errorf("%w: smoothing_factor must be in [0, 1], got %v", ErrInvalidConfig, c.SmoothingFactor)
	case c.MaxScrollSpeed <= 0:
		return fmt.Errorf("%w: max_scroll_speed must be positive, got %v", ErrInvalidConfig, c.MaxScrollSpeed)
	case c.ScrollSpeed <= 0:
		return fmt.Errorf("%w: scroll_speed must be positive, got %v", ErrInvalidConfig, c.ScrollSpeed)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	}

	switch c.Sensor {
	case SensorHTTP, SensorCamera:
	default:
		return fmt.Errorf("%w: unknown sensor %q", ErrInvalidConfig, c.Sensor)
	}

	switch c.Renderer {
	case RendererStream:
	case RendererBrowser:
		if strings.TrimSpace(c.PageURL) == "" {
			return fmt.Errorf("%w: renderer browser needs page_url", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown renderer %q", ErrInvalidConfig, c.Renderer)
	}
	return nil
}
