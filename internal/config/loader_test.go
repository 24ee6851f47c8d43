package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/horus/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("HORUS_ADDR", ":8080")
			_ = os.Setenv("HORUS_SELECTION_QUEUE_SIZE", "64")
			_ = os.Setenv("HORUS_SELECTION_WORKERS", "16")
			_ = os.Setenv("HORUS_SELECTION_TIMEOUT_MS", "500")
			_ = os.Setenv("HORUS_SEED", "42")
			_ = os.Setenv("HORUS_RADAR_SIZE", "6")
			_ = os.Setenv("HORUS_HEXRADAR_REFRESH_MS", "750")
			_ = os.Setenv("HORUS_WAVEFORM_CAP", "30")
			_ = os.Setenv("HORUS_LOG_FORMAT", "json")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.SelectionQueueSize, convey.ShouldEqual, 64)
				convey.So(cfg.SelectionWorkers, convey.ShouldEqual, 16)
				convey.So(cfg.SelectTimeout(), convey.ShouldEqual, 500*time.Millisecond)
				convey.So(cfg.Seed, convey.ShouldEqual, 42)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.WaveformCap, convey.ShouldEqual, 30)
			})

			convey.Convey("Then nested widget keys keep their other defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Radar.Size, convey.ShouldEqual, 6)
				convey.So(cfg.Radar.RefreshMS, convey.ShouldEqual, 1200)
				convey.So(cfg.HexRadar.RefreshMS, convey.ShouldEqual, 750)
				convey.So(cfg.HexRadar.Size, convey.ShouldEqual, 9)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
max_sessions: 50
session_idle_timeout_ms: 30000
waveform:
  size: 4
  refresh_ms: 300
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("HORUS_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 50)
				convey.So(cfg.SessionIdleTimeoutMS, convey.ShouldEqual, 30000)
				convey.So(cfg.Waveform.Size, convey.ShouldEqual, 4)
				convey.So(cfg.Waveform.RefreshMS, convey.ShouldEqual, 300)
				convey.So(cfg.Waveform.NarrateMS, convey.ShouldEqual, 2100)
			})

			convey.Convey("Then env vars take precedence over the file", func() {
				_ = os.Setenv("HORUS_ADDR", ":7070")
				_ = os.Setenv("HORUS_WAVEFORM_SIZE", "3")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.Waveform.Size, convey.ShouldEqual, 3)
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("HORUS_CONFIG", "/non/existent/file.yaml")
			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value has the wrong type", func() {
			_ = os.Setenv("HORUS_SELECTION_WORKERS", "not_a_number")
			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a value is out of range", func() {
			_ = os.Setenv("HORUS_SELECTION_QUEUE_SIZE", "0")
			cfg, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

var configEnvVars = []string{
	"HORUS_CONFIG",
	"HORUS_ADDR",
	"HORUS_LOG_FORMAT",
	"HORUS_SEED",
	"HORUS_SELECTION_QUEUE_SIZE",
	"HORUS_SELECTION_WORKERS",
	"HORUS_SELECTION_TIMEOUT_MS",
	"HORUS_RADAR_SIZE",
	"HORUS_HEXRADAR_REFRESH_MS",
	"HORUS_WAVEFORM_SIZE",
	"HORUS_WAVEFORM_CAP",
}

func clearConfigEnvVars() {
	for _, envVar := range configEnvVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "horus-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
