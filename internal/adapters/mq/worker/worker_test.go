package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	queue "github.com/okian/horus/internal/adapters/mq/queue"
	worker "github.com/okian/horus/internal/adapters/mq/worker"
	model "github.com/okian/horus/internal/domain/model"
	"github.com/okian/horus/internal/domain/types"
	"github.com/okian/horus/internal/widget"
	logging "github.com/okian/horus/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	ch chan queue.Selection
}

func newMockQueue() *mockQueue {
	return &mockQueue{ch: make(chan queue.Selection, 10)}
}

func (mq *mockQueue) Dequeue(ctx context.Context) <-chan queue.Selection { return mq.ch }

func (mq *mockQueue) Close() error {
	close(mq.ch)
	return nil
}

type call struct{ widgetID, markerID string }

type mockSelector struct {
	mu    sync.Mutex
	calls []call
	errs  map[string]error // by marker id
	done  chan call
}

func newMockSelector() *mockSelector {
	return &mockSelector{errs: map[string]error{}, done: make(chan call, 10)}
}

func (m *mockSelector) Select(ctx context.Context, widgetID, markerID string) (types.Snapshot, error) {
	m.mu.Lock()
	c := call{widgetID, markerID}
	m.calls = append(m.calls, c)
	err := m.errs[markerID]
	m.mu.Unlock()
	if markerID == "slow" {
		<-ctx.Done()
		err = ctx.Err()
	}
	m.done <- c
	if err != nil {
		return types.Snapshot{}, err
	}
	return types.Snapshot{WidgetID: widgetID, Seq: 1}, nil
}

func (m *mockSelector) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func waitCall(ch <-chan call) call {
	select {
	case c := <-ch:
		return c
	case <-time.After(2 * time.Second):
		convey.So("timed out waiting for selector", convey.ShouldBeEmpty)
		return call{}
	}
}

func selection(marker string) model.Selection {
	return model.Selection{EventID: "ev-" + marker, WidgetID: "w-1", MarkerID: marker, TS: time.Now()}
}

func TestInMemoryWorker(t *testing.T) {
	if err := logging.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}

	convey.Convey("Given a worker reading from a queue", t, func() {
		q := newMockQueue()
		sel := newMockSelector()
		w := worker.NewInMemoryWorker(q, sel, worker.WithName("test-worker"), worker.WithLogger(logging.Discard()))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a selection arrives", func() {
			q.ch <- selection("m-1")
			c := waitCall(sel.done)

			convey.Convey("Then the selector receives the widget and marker", func() {
				convey.So(c, convey.ShouldResemble, call{"w-1", "m-1"})
			})
		})

		convey.Convey("When selections are stale or fail", func() {
			sel.errs["gone"] = fmt.Errorf("wrapped: %w", widget.ErrMarkerNotFound)
			sel.errs["boom"] = errors.New("boom")
			q.ch <- selection("gone")
			q.ch <- selection("boom")
			q.ch <- selection("ok")
			waitCall(sel.done)
			waitCall(sel.done)
			waitCall(sel.done)

			convey.Convey("Then the worker keeps going without retrying", func() {
				convey.So(sel.count(), convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When a selection outlives the select timeout", func() {
			sq := newMockQueue()
			slow := worker.NewInMemoryWorker(sq, sel, worker.WithSelectTimeout(20*time.Millisecond), worker.WithLogger(logging.Discard()))
			go slow.Run(ctx)
			sq.ch <- selection("slow")
			sq.ch <- selection("after")
			first := waitCall(sel.done)
			second := waitCall(sel.done)

			convey.Convey("Then it is abandoned and later selections still apply", func() {
				convey.So(first.markerID, convey.ShouldEqual, "slow")
				convey.So(second.markerID, convey.ShouldEqual, "after")
			})
		})

		convey.Convey("When shut down", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			err := w.Shutdown(sctx)

			convey.Convey("Then it stops cleanly", func() {
				convey.So(err, convey.ShouldBeNil)
			})

			convey.Convey("Then shutting down again does not panic", func() {
				convey.So(func() { _ = w.Shutdown(sctx) }, convey.ShouldNotPanic)
				convey.So(w.Shutdown(sctx), convey.ShouldBeNil)
			})
		})
	})
}

func TestStale(t *testing.T) {
	convey.Convey("Given selection errors", t, func() {
		convey.So(worker.Stale(fmt.Errorf("x: %w", widget.ErrMarkerNotFound)), convey.ShouldBeTrue)
		convey.So(worker.Stale(widget.ErrStopped), convey.ShouldBeTrue)
		convey.So(worker.Stale(fmt.Errorf("session: %w", model.ErrSessionNotFound)), convey.ShouldBeTrue)
		convey.So(worker.Stale(context.DeadlineExceeded), convey.ShouldBeFalse)
		convey.So(worker.Stale(nil), convey.ShouldBeFalse)
	})
}

func TestPool(t *testing.T) {
	if err := logging.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}

	convey.Convey("Given a pool of three workers", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(32))
		sel := newMockSelector()
		sel.done = make(chan call, 32)
		p := worker.NewPool(3, q, sel, worker.WithLogger(logging.Discard()))
		convey.So(p.Size(), convey.ShouldEqual, 3)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		p.Start(ctx)

		convey.Convey("When selections are queued and the pool shuts down", func() {
			for i := 0; i < 20; i++ {
				convey.So(q.Enqueue(ctx, selection(fmt.Sprint(i))), convey.ShouldBeTrue)
			}
			for i := 0; i < 20; i++ {
				waitCall(sel.done)
			}
			err := p.Shutdown(context.Background())

			convey.Convey("Then every selection was applied once", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(sel.count(), convey.ShouldEqual, 20)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When shut down twice", func() {
			first := p.Shutdown(context.Background())

			convey.Convey("Then the second call is a no-op", func() {
				convey.So(first, convey.ShouldBeNil)
				convey.So(func() { _ = p.Shutdown(context.Background()) }, convey.ShouldNotPanic)
				convey.So(q.Enqueue(ctx, selection("late")), convey.ShouldBeFalse)
				convey.So(sel.count(), convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When a worker is still busy past the shutdown deadline", func() {
			convey.So(q.Enqueue(ctx, selection("slow")), convey.ShouldBeTrue)
			deadline := time.Now().Add(time.Second)
			for sel.count() == 0 && time.Now().Before(deadline) {
				time.Sleep(time.Millisecond)
			}
			sctx, scancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer scancel()
			err := p.Shutdown(sctx)

			convey.Convey("Then it reports the timeout and can be retried without panicking", func() {
				convey.So(errors.Is(err, context.DeadlineExceeded), convey.ShouldBeTrue)
				cancel()
				convey.So(func() { _ = p.Shutdown(context.Background()) }, convey.ShouldNotPanic)
			})
		})
	})

	convey.Convey("Given a pool built with no worker count", t, func() {
		p := worker.NewPool(0, newMockQueue(), newMockSelector(), worker.WithLogger(logging.Discard()))

		convey.Convey("Then it sizes itself to the CPUs", func() {
			convey.So(p.Size(), convey.ShouldBeGreaterThan, 0)
		})
	})
}
