// Package worker applies queued marker selections to mounted widgets.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/horus/internal/adapters/mq/queue"
	"github.com/okian/horus/internal/domain/model"
	"github.com/okian/horus/internal/domain/types"
	"github.com/okian/horus/internal/widget"
	"github.com/okian/horus/pkg/logger"
	"github.com/okian/horus/pkg/metrics"
)

const (
	poolShutdownTimeout = 30 * time.Second
	selectTimeout         = 2 * time.Second
)

// Selector applies one selection to a widget session.
type Selector interface {
	Select(ctx context.Context, widgetID, markerID string) (types.Snapshot, error)
}

// Queue defines how workers receive selections.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Selection
}

// Worker processes selections until stopped.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	selector Selector
	name     string
	timeout  time.Duration

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, selector Selector, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		selector: selector,
		name:     "worker",
		timeout:  selectTimeout,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get()
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	selections := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case s, ok := <-selections:
			if !ok {
				return
			}
			if err := w.process(ctx, s); err != nil {
				w.logger.Error(ctx, "selection failed", logger.String("event_id", s.EventID), logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker. Safe to call more than once.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.signal()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) signal() {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
}

// Stale reports whether err means the selection pointed at something that no
// longer exists. Stale selections are dropped, never retried.
func Stale(err error) bool {
	return errors.Is(err, widget.ErrMarkerNotFound) ||
		errors.Is(err, widget.ErrStopped) ||
		errors.Is(err, model.ErrSessionNotFound)
}

func (w *InMemoryWorker) process(ctx context.Context, s queue.Selection) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	sctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	snap, err := w.selector.Select(sctx, s.WidgetID, s.MarkerID)
	switch {
	case err == nil:
		w.logger.Debug(ctx, "selection applied",
			logger.String("event_id", s.EventID),
			logger.String("widget_id", s.WidgetID),
			logger.Uint64("seq", snap.Seq),
		)
		return nil
	case Stale(err):
		metrics.RecordSelectionStale()
		w.logger.Debug(ctx, "stale selection dropped",
			logger.String("event_id", s.EventID),
			logger.String("widget_id", s.WidgetID),
			logger.String("marker_id", s.MarkerID),
			logger.Error(err),
		)
		return nil
	default:
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "select_error")
		metrics.RecordErrorByType("select_error", "medium")
		return fmt.Errorf("apply selection %s: %w", s.EventID, err)
	}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates workerCount workers reading from q. A count below one
// means one worker per CPU.
func NewPool(workerCount int, q Queue, selector Selector, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Named("worker-pool"),
	}

	for i := range pool.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, selector, wopts...)
	}
	metrics.UpdateWorkerActiveCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue first so workers drain what is left, then waits.
// Workers still busy when the deadline passes are told to stop. Safe to call
// more than once.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	defer metrics.UpdateWorkerActiveCount(0)
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			for _, rest := range p.workers {
				rest.signal()
			}
			return fmt.Errorf("worker %d: %w", i, shutdownCtx.Err())
		}
	}
	for _, w := range p.workers {
		w.signal()
	}
	return nil
}
