package widget

import (
	"sync"
	"time"
)

// Clock creates the tickers that drive a widget.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is the part of *time.Ticker a widget uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realClock struct{}

// RealClock returns a Clock backed by the time package.
func RealClock() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTicker(d time.Duration) Ticker { return realTicker{time.NewTicker(d)} }

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// ManualClock fires tickers only when told to.
type ManualClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*manualTicker
}

// NewManualClock returns a clock frozen at now.
func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (m *ManualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualClock) NewTicker(d time.Duration) Ticker {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &manualTicker{period: d, c: make(chan time.Time), stopped: make(chan struct{})}
	m.tickers = append(m.tickers, t)
	return t
}

// Fire advances the clock by d and delivers one tick to every live ticker
// whose period is d. It blocks until each tick is received and returns how
// many were delivered. Stopped tickers are skipped.
func (m *ManualClock) Fire(d time.Duration) int {
	m.mu.Lock()
	m.now = m.now.Add(d)
	now := m.now
	var due []*manualTicker
	for _, t := range m.tickers {
		if t.period == d {
			due = append(due, t)
		}
	}
	m.mu.Unlock()

	delivered := 0
	for _, t := range due {
		select {
		case t.c <- now:
			delivered++
		case <-t.stopped:
		}
	}
	return delivered
}

type manualTicker struct {
	period  time.Duration
	c       chan time.Time
	once    sync.Once
	stopped chan struct{}
}

func (t *manualTicker) C() <-chan time.Time { return t.c }

func (t *manualTicker) Stop() { t.once.Do(func() { close(t.stopped) }) }
