package config_test

import (
	"errors"
	"testing"

	"github.com/okian/eyeflow/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.ScrollZoneFraction, convey.ShouldEqual, 0.15)
			convey.So(cfg.MaxScrollSpeed, convey.ShouldEqual, 30)
			convey.So(cfg.SmoothingFactor, convey.ShouldEqual, 0.2)
			convey.So(cfg.ScrollSpeed, convey.ShouldEqual, 1.0)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1)
			convey.So(cfg.Sensor, convey.ShouldEqual, config.SensorHTTP)
			convey.So(cfg.Renderer, convey.ShouldEqual, config.RendererStream)
			convey.So(cfg.ViewportWidth, convey.ShouldEqual, 1280)
			convey.So(cfg.ViewportHeight, convey.ShouldEqual, 720)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		cases := []struct {
			name   string
			mutate func(c *config.Config)
			reason string
		}{
			{"empty addr", func(c *config.Config) { c.Addr = " " }, "addr must not be empty"},
			{"zero zone", func(c *config.Config) { c.ScrollZoneFraction = 0 }, "scroll_zone_fraction"},
			{"overlapping zones", func(c *config.Config) { c.ScrollZoneFraction = 0.6 }, "scroll_zone_fraction"},
			{"smoothing above one", func(c *config.Config) { c.SmoothingFactor = 1.1 }, "smoothing_factor"},
			{"negative max speed", func(c *config.Config) { c.MaxScrollSpeed = -1 }, "max_scroll_speed"},
			{"zero scroll speed", func(c *config.Config) { c.ScrollSpeed = 0 }, "scroll_speed"},
			{"zero queue", func(c *config.Config) { c.QueueSize = 0 }, "queue_size"},
			{"unknown sensor", func(c *config.Config) { c.Sensor = "eeg" }, "unknown sensor"},
			{"unknown renderer", func(c *config.Config) { c.Renderer = "vr" }, "unknown renderer"},
			{"browser without url", func(c *config.Config) { c.Renderer = config.RendererBrowser }, "page_url"},
		}

		for _, tc := range cases {
			convey.Convey("When the config has "+tc.name, func() {
				tc.mutate(cfg)
				err := cfg.Validate()

				convey.Convey("Then validation fails with ErrInvalidConfig", func() {
					convey.So(err, convey.ShouldNotBeNil)
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
					convey.So(err.Error(), convey.ShouldContainSubstring, tc.reason)
				})
			})
		}

		convey.Convey("When the browser renderer has a page url", func() {
			cfg.Renderer = config.RendererBrowser
			cfg.PageURL = "https://example.com/paper.pdf"

			convey.Convey("Then validation passes", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})
	})
}
