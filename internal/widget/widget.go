// Package widget runs one mounted visualization.
//
// A Widget owns a marker refresher and a status narrator. A single goroutine
// drives both from two independent tickers, applies marker selections and
// publishes an immutable snapshot after every change. Readers never touch
// the refresher or narrator; they read the last snapshot or subscribe to new
// ones. Stop tears the loop down once, after which nothing changes.
package widget

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/okian/horus/internal/domain/generator"
	"github.com/okian/horus/internal/domain/narrator"
	"github.com/okian/horus/internal/domain/refresher"
	"github.com/okian/horus/internal/domain/types"
	"github.com/okian/horus/pkg/logger"
	"github.com/okian/horus/pkg/metrics"
)

const defaultSubscriberBuffer = 8

type lifecycle uint8

const (
	idle lifecycle = iota
	running
	stopped
)

type selectRequest struct {
	markerID string
	reply    chan selectResult
}

type selectResult struct {
	snap types.Snapshot
	err  error
}

// Widget is one mounted visualization instance.
type Widget struct {
	id      string
	profile Profile
	kind    string

	src    generator.Source
	clock  Clock
	logger logger.Logger

	// owned by the loop goroutine once started
	ref      refresher.Refresher
	nar      *narrator.Narrator
	seq      uint64
	selected string

	snap    atomic.Pointer[types.Snapshot]
	selects chan selectRequest

	subMu     sync.Mutex
	subs      map[uint64]chan types.Snapshot
	nextSub   uint64
	subClosed bool
	subBuffer int

	lifeMu   sync.Mutex
	state    lifecycle
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// New builds a widget from profile and publishes its initial snapshot. The
// widget does not change until Start is called.
func New(id string, profile Profile, opts ...Option) (*Widget, error) {
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("widget %s: %w", id, err)
	}
	w := &Widget{
		id:        id,
		profile:   profile,
		kind:      string(profile.Kind),
		src:       generator.DefaultSource(),
		clock:     RealClock(),
		selects:   make(chan selectRequest),
		subs:      make(map[uint64]chan types.Snapshot),
		subBuffer: defaultSubscriberBuffer,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Named("widget")
	}
	w.logger = w.logger.With(logger.String("widget_id", id), logger.String("kind", w.kind))

	gen, err := generator.ForKind(profile.Kind, generator.WithSource(w.src))
	if err != nil {
		return nil, fmt.Errorf("widget %s: %w", id, err)
	}
	if profile.Streams() {
		w.ref, err = refresher.NewStream(gen, w.src, profile.Size, refresher.WithStreamConfig(profile.Stream))
	} else {
		w.ref, err = refresher.NewFixed(gen, w.src, profile.Size)
	}
	if err != nil {
		return nil, fmt.Errorf("widget %s: %w", id, err)
	}
	w.nar = narrator.New(narrator.ScriptFor(profile.Kind))
	w.publish()
	return w, nil
}

// ID returns the session id of the widget.
func (w *Widget) ID() string { return w.id }

// Profile returns the profile the widget was built from.
func (w *Widget) Profile() Profile { return w.profile }

// Start launches the loop. It returns ErrStopped after Stop and is a no-op
// when already running.
func (w *Widget) Start(ctx context.Context) error {
	w.lifeMu.Lock()
	defer w.lifeMu.Unlock()

	switch w.state {
	case running:
		return nil
	case stopped:
		return ErrStopped
	}
	w.state = running

	refresh := w.clock.NewTicker(w.profile.RefreshEvery)
	narrate := w.clock.NewTicker(w.profile.NarrateEvery)
	go w.loop(ctx, refresh, narrate)

	w.logger.Debug(ctx, "widget started",
		logger.Duration("refresh_every", w.profile.RefreshEvery),
		logger.Duration("narrate_every", w.profile.NarrateEvery),
	)
	return nil
}

func (w *Widget) loop(ctx context.Context, refresh, narrate Ticker) {
	defer close(w.done)
	defer w.closeSubscribers()
	defer w.exited()
	defer narrate.Stop()
	defer refresh.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-refresh.C():
			w.onRefresh()
		case <-narrate.C():
			w.onNarrate()
		case req := <-w.selects:
			snap, err := w.apply(req.markerID)
			req.reply <- selectResult{snap: snap, err: err}
		}
	}
}

// exited marks the widget stopped when the loop ends on its own, so a later
// Start reports ErrStopped instead of pretending to run.
func (w *Widget) exited() {
	w.lifeMu.Lock()
	w.state = stopped
	w.lifeMu.Unlock()
}

func (w *Widget) onRefresh() {
	ch := w.ref.Tick()
	metrics.RecordWidgetTick(w.kind, "refresh")
	if ch.Replaced >= 0 {
		metrics.RecordMarkersReplaced(w.kind, 1)
	}
	metrics.RecordMarkersAppended(w.kind, ch.Appended)
	metrics.RecordMarkersDropped(w.kind, ch.Dropped+ch.Trimmed)
	w.publish()
}

func (w *Widget) onNarrate() {
	phase := w.nar.Advance()
	w.selected = ""
	metrics.RecordWidgetTick(w.kind, "narrate")
	metrics.RecordNarratorAdvance(w.kind, phase.String())
	w.publish()
}

func (w *Widget) apply(markerID string) (types.Snapshot, error) {
	for _, m := range w.ref.Markers() {
		if m.ID == markerID {
			w.nar.Select(m.Label)
			w.selected = m.ID
			metrics.RecordSelectionApplied(w.kind)
			return w.publish().Clone(), nil
		}
	}
	return types.Snapshot{}, fmt.Errorf("widget %s marker %s: %w", w.id, markerID, ErrMarkerNotFound)
}

// publish stores a new snapshot and offers a copy to every subscriber.
func (w *Widget) publish() *types.Snapshot {
	w.seq++
	snap := &types.Snapshot{
		WidgetID:  w.id,
		Kind:      w.profile.Kind,
		Seq:       w.seq,
		Markers:   w.ref.Markers(),
		Status:    w.nar.Status(),
		Phase:     w.nar.Phase().String(),
		Selected:  w.selected,
		UpdatedAt: w.clock.Now(),
	}

	w.subMu.Lock()
	defer w.subMu.Unlock()
	w.snap.Store(snap)
	for _, ch := range w.subs {
		select {
		case ch <- snap.Clone():
		default:
			metrics.RecordSnapshotDropped()
		}
	}
	return snap
}

// Snapshot returns a copy of the last published state.
func (w *Widget) Snapshot() types.Snapshot {
	return w.snap.Load().Clone()
}

// Select shows the label of markerID in the status line. It returns
// ErrMarkerNotFound when the marker is no longer in the collection.
func (w *Widget) Select(ctx context.Context, markerID string) (types.Snapshot, error) {
	w.lifeMu.Lock()
	state := w.state
	w.lifeMu.Unlock()
	switch state {
	case idle:
		return types.Snapshot{}, ErrNotStarted
	case stopped:
		return types.Snapshot{}, ErrStopped
	}

	req := selectRequest{markerID: markerID, reply: make(chan selectResult, 1)}
	select {
	case w.selects <- req:
	case <-w.done:
		return types.Snapshot{}, ErrStopped
	case <-ctx.Done():
		return types.Snapshot{}, ctx.Err()
	}
	res := <-req.reply
	return res.snap, res.err
}

// Subscribe returns a channel that receives the current snapshot followed by
// every later one, and a func that cancels the subscription. A subscriber
// that falls behind misses snapshots rather than blocking the widget. The
// channel is closed on cancel or teardown.
func (w *Widget) Subscribe() (<-chan types.Snapshot, func()) {
	ch := make(chan types.Snapshot, w.subBuffer)

	w.subMu.Lock()
	defer w.subMu.Unlock()
	if w.subClosed {
		close(ch)
		return ch, func() {}
	}
	ch <- w.snap.Load().Clone()
	id := w.nextSub
	w.nextSub++
	w.subs[id] = ch
	metrics.AddStreamSubscribers(1)

	return ch, func() {
		w.subMu.Lock()
		defer w.subMu.Unlock()
		if c, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(c)
			metrics.AddStreamSubscribers(-1)
		}
	}
}

// Subscribers returns the number of open subscriptions.
func (w *Widget) Subscribers() int {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	return len(w.subs)
}

func (w *Widget) closeSubscribers() {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	if w.subClosed {
		return
	}
	w.subClosed = true
	open := len(w.subs)
	for id, ch := range w.subs {
		close(ch)
		delete(w.subs, id)
	}
	metrics.AddStreamSubscribers(-open)
}

// Stop tears the widget down and waits for the loop to exit. Both tickers
// are stopped and subscriber channels closed. Safe to call more than once.
func (w *Widget) Stop() {
	w.stopOnce.Do(func() {
		w.lifeMu.Lock()
		prev := w.state
		w.state = stopped
		w.lifeMu.Unlock()

		switch {
		case prev == idle:
			w.closeSubscribers()
			close(w.done)
		default:
			close(w.stop)
			<-w.done
		}
		w.logger.Debug(context.Background(), "widget stopped")
	})
}

// Done is closed once the widget can no longer change.
func (w *Widget) Done() <-chan struct{} { return w.done }
