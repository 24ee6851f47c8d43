package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	service "github.com/okian/horus/internal/app"
	"github.com/okian/horus/internal/domain/model"
	"github.com/okian/horus/internal/domain/types"
	"github.com/okian/horus/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func waitFor(ch <-chan types.Snapshot, cond func(types.Snapshot) bool) (types.Snapshot, bool) {
	deadline := time.After(3 * time.Second)
	for {
		select {
		case s, ok := <-ch:
			if !ok {
				return types.Snapshot{}, false
			}
			if cond(s) {
				return s, true
			}
		case <-deadline:
			return types.Snapshot{}, false
		}
	}
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service with full integration", t, func() {
		svc, clock := newTestService(
			service.WithQueueSize(64),
			service.WithDedupeSize(500),
		)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		Reset(func() { svc.Stop() })

		snap, err := svc.Mount(ctx, model.KindRadar)
		So(err, ShouldBeNil)
		ch, unsubscribe, err := svc.Subscribe(ctx, snap.WidgetID)
		So(err, ShouldBeNil)
		defer unsubscribe()
		So(next(ch).Seq, ShouldEqual, snap.Seq)

		Convey("When a selection is enqueued", func() {
			target := snap.Markers[3]
			sel := model.Selection{EventID: "ev-1", WidgetID: snap.WidgetID, MarkerID: target.ID, TS: clock.Now()}
			So(svc.SeenAndRecord(ctx, sel.EventID), ShouldBeFalse)
			So(svc.Enqueue(ctx, sel), ShouldBeTrue)

			Convey("Then a worker applies it and subscribers see the label", func() {
				got, ok := waitFor(ch, func(s types.Snapshot) bool { return s.Selected == target.ID })
				So(ok, ShouldBeTrue)
				So(got.Status, ShouldEqual, target.Label)
				So(svc.GetStats().SelectionsTotal, ShouldEqual, 1)
			})

			Convey("Then a replay is flagged as a duplicate", func() {
				So(svc.SeenAndRecord(ctx, sel.EventID), ShouldBeTrue)
			})
		})

		Convey("When a selection points at a replaced marker", func() {
			sel := model.Selection{EventID: "ev-stale", WidgetID: snap.WidgetID, MarkerID: "gone", TS: clock.Now()}
			So(svc.Enqueue(ctx, sel), ShouldBeTrue)
			follow := snap.Markers[0]
			So(svc.Enqueue(ctx, model.Selection{EventID: "ev-2", WidgetID: snap.WidgetID, MarkerID: follow.ID}), ShouldBeTrue)

			Convey("Then it is dropped and later selections still apply", func() {
				got, ok := waitFor(ch, func(s types.Snapshot) bool { return s.Selected == follow.ID })
				So(ok, ShouldBeTrue)
				So(got.Status, ShouldEqual, follow.Label)
			})
		})

		Convey("When refresh ticks race with concurrent selections", func() {
			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				for i := 0; i < 20; i++ {
					clock.Fire(1200 * time.Millisecond)
				}
			}()
			go func() {
				defer wg.Done()
				for i := 0; i < 20; i++ {
					cur, err := svc.Snapshot(ctx, snap.WidgetID)
					if err != nil || len(cur.Markers) == 0 {
						continue
					}
					svc.Enqueue(ctx, model.Selection{
						EventID:  fmt.Sprintf("race-%d", i),
						WidgetID: snap.WidgetID,
						MarkerID: cur.Markers[i%len(cur.Markers)].ID,
					})
				}
			}()
			wg.Wait()

			Convey("Then the widget keeps its size and a monotonic sequence", func() {
				cur, err := svc.Snapshot(ctx, snap.WidgetID)
				So(err, ShouldBeNil)
				So(len(cur.Markers), ShouldEqual, 8)
				So(cur.Seq, ShouldBeGreaterThanOrEqualTo, snap.Seq+19)
			})
		})
	})

	Convey("Given a service that is stopped while selections are queued", t, func() {
		svc, _ := newTestService(service.WithWorkerCount(1), service.WithLogger(logger.Discard()))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		snap, err := svc.Mount(ctx, model.KindWaveform)
		So(err, ShouldBeNil)
		for i := 0; i < 10; i++ {
			svc.Enqueue(ctx, model.Selection{EventID: fmt.Sprint(i), WidgetID: snap.WidgetID, MarkerID: snap.Markers[0].ID})
		}

		Convey("When stopping", func() {
			done := make(chan struct{})
			go func() {
				svc.Stop()
				close(done)
			}()

			Convey("Then shutdown completes", func() {
				select {
				case <-done:
				case <-time.After(10 * time.Second):
					So("stop did not return", ShouldBeEmpty)
				}
				So(svc.Enqueue(ctx, model.Selection{EventID: "late", WidgetID: snap.WidgetID}), ShouldBeFalse)
			})
		})
	})
}
