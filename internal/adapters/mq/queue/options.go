package queue

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets how many selections may wait at once.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithDropHandler is called with every selection that left the queue but
// was never handed to a reader because its context ended first.
func WithDropHandler(fn func(Selection)) Option {
	return func(q *InMemoryQueue) {
		q.onDrop = fn
	}
}
