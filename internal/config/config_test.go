package config_test

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"wordtreasure/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.BackendURL, convey.ShouldEqual, "http://localhost:9090")
			convey.So(cfg.PollInterval, convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.PollLimit, convey.ShouldEqual, 10)
			convey.So(cfg.TransitionDelay, convey.ShouldEqual, 1500*time.Millisecond)
			convey.So(cfg.RateLimitRPS, convey.ShouldEqual, 5)
			convey.So(cfg.CookieMaxAge, convey.ShouldEqual, 24*time.Hour)
		})
	})
}

func TestConfig_Load(t *testing.T) {
	convey.Convey("Given WT_-prefixed environment overrides", t, func() {
		t.Setenv("WT_ADDR", ":7070")
		t.Setenv("WT_BACKEND_URL", "https://api.example.test")
		t.Setenv("WT_POLL_LIMIT", "25")

		cfg, err := config.Load()

		convey.Convey("Then the overrides win over defaults", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			convey.So(cfg.BackendURL, convey.ShouldEqual, "https://api.example.test")
			convey.So(cfg.PollLimit, convey.ShouldEqual, 25)
			// Untouched keys keep their defaults.
			convey.So(cfg.PollInterval, convey.ShouldEqual, 5*time.Second)
		})
	})
}

func TestConfig_LoadValidation(t *testing.T) {
	convey.Convey("Given an invalid backend URL", t, func() {
		t.Setenv("WT_BACKEND_URL", "not-a-url")

		_, err := config.Load()

		convey.Convey("Then Load rejects it", func() {
			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given a sub-second poll interval", t, func() {
		t.Setenv("WT_BACKEND_URL", "http://localhost:9090")
		t.Setenv("WT_POLL_INTERVAL", "100ms")

		_, err := config.Load()

		convey.Convey("Then Load rejects it", func() {
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
