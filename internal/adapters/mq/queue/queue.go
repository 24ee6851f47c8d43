// Package queue buffers marker selections between the HTTP layer and the
// workers that apply them.
//
// Enqueue never blocks: a full or closed queue rejects the selection and
// the caller answers with backpressure.
package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/horus/internal/domain/model"
	"github.com/okian/horus/pkg/metrics"
)

const defaultQueueCapacity = 1024

// Selection is the payload flowing through the queue.
type Selection = model.Selection

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue returns false if the selection was not accepted.
	Enqueue(ctx context.Context, s Selection) bool

	// Dequeue returns a channel that receives selections until the queue is
	// closed or ctx ends.
	Dequeue(ctx context.Context) <-chan Selection

	Len(ctx context.Context) int
	Cap() int

	// Close stops intake; queued selections can still be drained.
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan Selection
	capacity int

	mu     sync.RWMutex
	closed bool

	onDrop  func(Selection)
	dropped atomic.Int64
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan Selection, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	q.observe()
	return q
}

func (q *InMemoryQueue) Enqueue(ctx context.Context, s Selection) bool {
	start := time.Now()
	defer func() {
		metrics.RecordQueueProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.reject("closed")
		return false
	}
	if err := ctx.Err(); err != nil {
		q.reject("context_cancelled")
		return false
	}

	select {
	case q.items <- s:
		metrics.RecordQueueEnqueue()
		q.observe()
		return true
	default:
		q.reject("queue_full")
		return false
	}
}

func (q *InMemoryQueue) reject(reason string) {
	metrics.RecordQueueEnqueueError()
	metrics.RecordErrorByComponent("queue", reason)
}

// drop accounts for a selection taken off the queue that no reader received.
func (q *InMemoryQueue) drop(s Selection) {
	q.dropped.Add(1)
	metrics.RecordQueueDropped()
	metrics.RecordErrorByComponent("queue", "dequeue_cancelled")
	if q.onDrop != nil {
		q.onDrop(s)
	}
}

// Dropped returns how many selections were lost after leaving the queue.
func (q *InMemoryQueue) Dropped() int64 { return q.dropped.Load() }

// observe refreshes the size and utilization gauges.
func (q *InMemoryQueue) observe() int {
	n := len(q.items)
	metrics.UpdateQueueSize(n)
	metrics.UpdateQueueUtilization(float64(n) / float64(q.capacity))
	return n
}

func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Selection {
	out := make(chan Selection)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-q.items:
				if !ok {
					return
				}
				select {
				case out <- s:
					metrics.RecordQueueDequeue()
					q.observe()
				case <-ctx.Done():
					q.drop(s)
					return
				}
			}
		}
	}()
	return out
}

// Len returns the current number of queued selections.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return q.observe()
}

// Cap returns the queue capacity.
func (q *InMemoryQueue) Cap() int { return q.capacity }

func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
