package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/okian/horus/internal/config"
	"github.com/okian/horus/internal/domain/types"
	"github.com/okian/horus/pkg/logger"
	"github.com/okian/horus/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("HORUS_ADDR", ":8080")
			_ = os.Setenv("HORUS_SELECTION_QUEUE_SIZE", "1000")
			_ = os.Setenv("HORUS_SELECTION_WORKERS", "4")
			defer func() {
				_ = os.Unsetenv("HORUS_ADDR")
				_ = os.Unsetenv("HORUS_SELECTION_QUEUE_SIZE")
				_ = os.Unsetenv("HORUS_SELECTION_WORKERS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.SelectionQueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.SelectionWorkers, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing metrics updates", func() {
			convey.Convey("Then they should run without panicking", func() {
				svc := newService(config.New(), logger.Discard())
				convey.So(updateSystemMetrics, convey.ShouldNotPanic)
				convey.So(primeMetrics, convey.ShouldNotPanic)
				convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When the metrics updaters are cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			svc := newService(config.New(), logger.Discard())
			done := make(chan struct{}, 2)
			go func() { startSystemMetricsUpdater(ctx); done <- struct{}{} }()
			go func() { startServiceMetricsUpdater(ctx, svc); done <- struct{}{} }()
			cancel()

			convey.Convey("Then they return", func() {
				for i := 0; i < 2; i++ {
					select {
					case <-done:
					case <-time.After(time.Second):
						convey.So("updater did not stop", convey.ShouldBeEmpty)
					}
				}
			})
		})
	})
}

// streamSubscribers reads the open subscription gauge from the registry.
func streamSubscribers() float64 {
	families, err := metrics.GetRegistry().Gather()
	convey.So(err, convey.ShouldBeNil)
	for _, mf := range families {
		if strings.HasSuffix(mf.GetName(), "stream_subscribers") && len(mf.GetMetric()) > 0 {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	return 0
}

func TestMainIntegration(t *testing.T) {
	convey.Convey("Given the full application wired on a test server", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cfg := config.New()
		cfg.Seed = 1
		svc := newService(cfg, logger.Discard())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		srv := httptest.NewServer(newMux(ctx, cfg, svc, logger.Discard()))
		convey.Reset(func() {
			svc.Stop()
			srv.Close()
			cancel()
		})

		convey.Convey("When the landing page is requested", func() {
			resp, err := http.Get(srv.URL + "/")
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then it is served with every widget slot", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				body, err := io.ReadAll(resp.Body)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(body), convey.ShouldContainSubstring, `data-kind="waveform"`)
			})
		})

		convey.Convey("When a widget is mounted and a marker selected", func() {
			resp, err := http.Post(srv.URL+"/widgets", "application/json", strings.NewReader(`{"kind":"radar"}`))
			convey.So(err, convey.ShouldBeNil)
			var snap types.Snapshot
			convey.So(json.NewDecoder(resp.Body).Decode(&snap), convey.ShouldBeNil)
			_ = resp.Body.Close()
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)

			body := `{"event_id":"e-1","marker_id":"` + snap.Markers[0].ID + `"}`
			sel, err := http.Post(srv.URL+"/widgets/"+snap.WidgetID+"/select", "application/json", strings.NewReader(body))
			convey.So(err, convey.ShouldBeNil)
			_ = sel.Body.Close()

			convey.Convey("Then the selection is accepted and shows up in stats", func() {
				convey.So(sel.StatusCode, convey.ShouldEqual, http.StatusAccepted)
				deadline := time.Now().Add(3 * time.Second)
				for svc.GetStats().SelectionsTotal == 0 && time.Now().Before(deadline) {
					time.Sleep(10 * time.Millisecond)
				}
				convey.So(svc.GetStats().SelectionsTotal, convey.ShouldEqual, 1)
				convey.So(svc.GetStats().ActiveSessions, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When one client opens a widget stream", func() {
			before := streamSubscribers()
			resp, err := http.Post(srv.URL+"/widgets", "application/json", strings.NewReader(`{"kind":"radar"}`))
			convey.So(err, convey.ShouldBeNil)
			var snap types.Snapshot
			convey.So(json.NewDecoder(resp.Body).Decode(&snap), convey.ShouldBeNil)
			_ = resp.Body.Close()

			sctx, scancel := context.WithCancel(ctx)
			defer scancel()
			req, err := http.NewRequestWithContext(sctx, http.MethodGet, srv.URL+"/widgets/"+snap.WidgetID+"/stream", nil)
			convey.So(err, convey.ShouldBeNil)
			stream, err := http.DefaultClient.Do(req)
			convey.So(err, convey.ShouldBeNil)
			reader := bufio.NewReader(stream.Body)
			for {
				line, err := reader.ReadString('\n')
				convey.So(err, convey.ShouldBeNil)
				if strings.HasPrefix(line, "data:") {
					break
				}
			}
			open := streamSubscribers()
			scancel()
			_ = stream.Body.Close()

			deadline := time.Now().Add(3 * time.Second)
			for streamSubscribers() != before && time.Now().Before(deadline) {
				time.Sleep(10 * time.Millisecond)
			}

			convey.Convey("Then the subscriber gauge moves by exactly one and back", func() {
				convey.So(open-before, convey.ShouldEqual, 1)
				convey.So(streamSubscribers(), convey.ShouldEqual, before)
			})
		})

		convey.Convey("When the docs are requested", func() {
			resp, err := http.Get(srv.URL + "/openapi.yaml")
			convey.So(err, convey.ShouldBeNil)
			_ = resp.Body.Close()

			convey.Convey("Then they are served", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			})
		})
	})
}
