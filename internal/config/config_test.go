package config_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/okian/horus/internal/config"
	"github.com/okian/horus/internal/domain/model"
	"github.com/okian/horus/internal/domain/refresher"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.SelectionQueueSize, convey.ShouldEqual, 1024)
			convey.So(cfg.SelectionWorkers, convey.ShouldEqual, 4)
			convey.So(cfg.SelectTimeout(), convey.ShouldEqual, 2*time.Second)
			convey.So(cfg.IdleTimeout(), convey.ShouldEqual, 2*time.Minute)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the widget settings match the stock profiles", func() {
			convey.So(cfg.Radar, convey.ShouldResemble, config.WidgetConfig{Size: 8, RefreshMS: 1200, NarrateMS: 2200})
			convey.So(cfg.HexRadar, convey.ShouldResemble, config.WidgetConfig{Size: 9, RefreshMS: 1000, NarrateMS: 2100})
			convey.So(cfg.Waveform, convey.ShouldResemble, config.WidgetConfig{Size: 7, RefreshMS: 220, NarrateMS: 2100})
			convey.So(cfg.WaveformCap, convey.ShouldEqual, 12)
		})
	})
}

func TestConfig_Profiles(t *testing.T) {
	convey.Convey("Given a config with widget overrides", t, func() {
		cfg := config.New()
		cfg.Radar.Size = 5
		cfg.HexRadar.RefreshMS = 500
		cfg.WaveformCap = 20

		convey.Convey("Then the profiles carry them", func() {
			p := cfg.Profiles()
			convey.So(p[model.KindRadar].Size, convey.ShouldEqual, 5)
			convey.So(p[model.KindHexRadar].RefreshEvery, convey.ShouldEqual, 500*time.Millisecond)
			convey.So(p[model.KindWaveform].Stream.Cap, convey.ShouldEqual, 20)
			convey.So(p[model.KindWaveform].Stream.Step, convey.ShouldEqual, refresher.DefaultStreamConfig().Step)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid configurations", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":        func(c *config.Config) { c.Addr = " " },
			"log format":        func(c *config.Config) { c.LogFormat = "xml" },
			"negative sessions": func(c *config.Config) { c.MaxSessions = -1 },
			"queue size":        func(c *config.Config) { c.SelectionQueueSize = 0 },
			"workers":           func(c *config.Config) { c.SelectionWorkers = 0 },
			"select timeout":    func(c *config.Config) { c.SelectionTimeoutMS = 0 },
			"subscriber buffer": func(c *config.Config) { c.SubscriberBuffer = 0 },
			"keep alive":        func(c *config.Config) { c.StreamKeepAliveMS = 0 },
			"widget size":       func(c *config.Config) { c.Radar.Size = 0 },
			"widget period":     func(c *config.Config) { c.Waveform.NarrateMS = 0 },
			"waveform cap":      func(c *config.Config) { c.WaveformCap = 0 },
		}

		for name, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()
			convey.So(err, convey.ShouldNotBeNil)
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("%s: want ErrInvalidConfig, got %v", name, err)
			}
			widgetCase := strings.HasPrefix(name, "widget") || name == "waveform cap"
			if errors.Is(err, config.ErrInvalidWidget) != widgetCase {
				t.Errorf("%s: ErrInvalidWidget match should be %v, got %v", name, widgetCase, err)
			}
		}
	})
}
