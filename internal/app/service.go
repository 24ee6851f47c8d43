// Package service keeps the registry of mounted widget sessions and
// implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	eventqueue "github.com/okian/horus/internal/adapters/mq/queue"
	workerpool "github.com/okian/horus/internal/adapters/mq/worker"
	"github.com/okian/horus/internal/domain/dedupe"
	"github.com/okian/horus/internal/domain/generator"
	"github.com/okian/horus/internal/domain/model"
	"github.com/okian/horus/internal/domain/types"
	"github.com/okian/horus/internal/widget"
	"github.com/okian/horus/pkg/logger"
	"github.com/okian/horus/pkg/metrics"
)

// Unmount reasons reported to metrics.
const (
	reasonClient   = "client"
	reasonIdle     = "idle"
	reasonShutdown = "shutdown"
	reasonExited   = "exited"
)

type session struct {
	w        *widget.Widget
	lastSeen atomic.Int64 // unix nanos
}

func (s *session) touch(now time.Time) { s.lastSeen.Store(now.UnixNano()) }

func (s *session) idleSince() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// Service owns every mounted widget.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*session

	deduper    dedupe.Deduper
	queue      *eventqueue.InMemoryQueue
	workerPool *workerpool.Pool

	// Configuration
	profiles         map[model.Kind]widget.Profile
	workerCount      int
	queueSize        int
	dedupeSize       int
	maxSessions      int
	subscriberBuffer int
	idleTimeout      time.Duration
	selectTimeout    time.Duration
	reapInterval     time.Duration
	seed             int64
	clock            widget.Clock
	newID            func() string

	// State
	started    bool
	startedAt  time.Time
	runCtx     context.Context
	cancel     context.CancelFunc
	reaperDone chan struct{}
	mounts     atomic.Int64
	selections atomic.Uint64

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:         make(map[string]*session),
		profiles:         widget.DefaultProfiles(),
		workerCount:      4,
		queueSize:        1024,
		dedupeSize:       10000,
		maxSessions:      1000,
		subscriberBuffer: 8,
		idleTimeout:      2 * time.Minute,
		clock:            widget.RealClock(),
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reapInterval <= 0 {
		s.reapInterval = s.idleTimeout / 2
	}
	return s
}

// Start initializes the queue, the worker pool and the idle reaper. Widgets
// mounted afterwards live until Stop, Unmount, idle reaping or the end of ctx.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting widget service...")

	s.runCtx, s.cancel = context.WithCancel(ctx)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithDropHandler(s.dropped),
	)
	wopts := []workerpool.Option{workerpool.WithLogger(s.logger)}
	if s.selectTimeout > 0 {
		wopts = append(wopts, workerpool.WithSelectTimeout(s.selectTimeout))
	}
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s, wopts...)
	s.workerPool.Start(s.runCtx)

	s.reaperDone = make(chan struct{})
	go s.reap(s.runCtx)

	s.started = true
	s.startedAt = s.clock.Now()
	s.logger.Info(ctx, "widget service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("maxSessions", s.maxSessions),
		logger.Duration("idleTimeout", s.idleTimeout),
	)
	return nil
}

// Stop unmounts every widget and shuts the workers down.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	sessions := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	ctx := context.Background()
	s.logger.Info(ctx, "stopping widget service...", logger.Int("sessions", len(sessions)))

	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	s.cancel()
	<-s.reaperDone

	for _, sess := range sessions {
		sess.w.Stop()
		metrics.RecordWidgetUnmounted(string(sess.w.Profile().Kind), reasonShutdown)
	}
	s.logger.Info(ctx, "widget service stopped")
}

// Mount creates a widget session of kind and starts it.
func (s *Service) Mount(ctx context.Context, kind model.Kind) (types.Snapshot, error) {
	profile, ok := s.profiles[kind]
	if !ok {
		return types.Snapshot{}, fmt.Errorf("mount %q: %w", kind, ErrUnknownKind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return types.Snapshot{}, ErrNotStarted
	}
	if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
		return types.Snapshot{}, fmt.Errorf("mount %s: %w", kind, ErrTooManySessions)
	}

	id := s.newID()
	w, err := widget.New(id, profile,
		widget.WithSource(s.sourceFor()),
		widget.WithClock(s.clock),
		widget.WithLogger(s.logger.Named("widget")),
		widget.WithSubscriberBuffer(s.subscriberBuffer),
	)
	if err != nil {
		return types.Snapshot{}, fmt.Errorf("mount %s: %w", kind, err)
	}
	if err := w.Start(s.runCtx); err != nil {
		return types.Snapshot{}, fmt.Errorf("mount %s: %w", kind, err)
	}

	sess := &session{w: w}
	sess.touch(s.clock.Now())
	s.sessions[id] = sess
	metrics.RecordWidgetMounted(string(kind))
	s.logger.Info(ctx, "widget mounted", logger.String("widget_id", id), logger.String("kind", string(kind)))
	return w.Snapshot(), nil
}

// sourceFor returns the randomness for the next widget. With a seed every
// widget gets its own deterministic stream; must be called with s.mu held.
func (s *Service) sourceFor() generator.Source {
	n := s.mounts.Add(1)
	if s.seed == 0 {
		return generator.DefaultSource()
	}
	return rand.New(rand.NewSource(s.seed + n))
}

// Unmount tears a session down.
func (s *Service) Unmount(ctx context.Context, id string) error {
	sess, err := s.remove(id)
	if err != nil {
		return err
	}
	sess.w.Stop()
	metrics.RecordWidgetUnmounted(string(sess.w.Profile().Kind), reasonClient)
	s.logger.Info(ctx, "widget unmounted", logger.String("widget_id", id))
	return nil
}

func (s *Service) remove(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	delete(s.sessions, id)
	return sess, nil
}

func (s *Service) lookup(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	sess.touch(s.clock.Now())
	return sess, nil
}

// Snapshot returns the current state of a session.
func (s *Service) Snapshot(_ context.Context, id string) (types.Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return types.Snapshot{}, err
	}
	return sess.w.Snapshot(), nil
}

// Subscribe streams the snapshots of a session. The channel closes when the
// session is unmounted; cancel must be called when the caller is done.
func (s *Service) Subscribe(_ context.Context, id string) (<-chan types.Snapshot, func(), error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := sess.w.Subscribe()
	return ch, func() {
		cancel()
		sess.touch(s.clock.Now())
	}, nil
}

// Select applies a marker selection to a session synchronously.
func (s *Service) Select(ctx context.Context, id, markerID string) (types.Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return types.Snapshot{}, err
	}
	snap, err := sess.w.Select(ctx, markerID)
	if err != nil {
		return types.Snapshot{}, err
	}
	s.selections.Add(1)
	return snap, nil
}

// SeenAndRecord atomically checks if a selection event id was seen and
// records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordSelectionDuplicate()
	}
	return seen
}

// Unrecord forgets a selection event id so it can be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of remembered selection event ids.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a model.Selection for asynchronous application. It
// returns false on backpressure or for any other payload.
func (s *Service) Enqueue(ctx context.Context, e any) bool {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return false
	}
	sel, ok := e.(model.Selection)
	if !ok {
		s.logger.Warn(ctx, "unsupported payload", logger.String("type", fmt.Sprintf("%T", e)))
		return false
	}
	if !s.queue.Enqueue(ctx, sel) {
		s.logger.Debug(ctx, "selection rejected by queue", logger.String("event_id", sel.EventID))
		return false
	}
	return true
}

// dropped forgets the event id of a selection the queue lost during
// shutdown so a client retry is not taken for a duplicate.
func (s *Service) dropped(sel model.Selection) {
	s.deduper.Unrecord(context.Background(), sel.EventID)
	s.logger.Warn(context.Background(), "selection dropped before a worker took it",
		logger.String("event_id", sel.EventID),
		logger.String("widget_id", sel.WidgetID),
	)
}

// Kinds describes every kind that can be mounted, in display order.
func (s *Service) Kinds() []types.WidgetInfo {
	out := make([]types.WidgetInfo, 0, len(s.profiles))
	for _, k := range model.Kinds {
		if p, ok := s.profiles[k]; ok {
			out = append(out, p.Info())
		}
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		ActiveSessions:  len(s.sessions),
		SessionsByKind:  make(map[model.Kind]int, len(model.Kinds)),
		QueueCapacity:   s.queueSize,
		SelectionsTotal: s.selections.Load(),
	}
	for _, sess := range s.sessions {
		stats.SessionsByKind[sess.w.Profile().Kind]++
		stats.Subscribers += sess.w.Subscribers()
	}
	if s.started {
		stats.QueueSize = s.queue.Len(context.Background())
		stats.DedupeSize = s.deduper.Size()
		stats.Workers = s.workerPool.Size()
		stats.UptimeSeconds = s.clock.Now().Sub(s.startedAt).Seconds()
	}
	return stats
}

// reap unmounts sessions that nobody watches or touches.
func (s *Service) reap(ctx context.Context) {
	defer close(s.reaperDone)
	if s.idleTimeout <= 0 {
		<-ctx.Done()
		return
	}
	ticker := time.NewTicker(s.reapInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reapOnce(ctx)
		}
	}
}

func (s *Service) reapOnce(ctx context.Context) {
	now := s.clock.Now()
	var victims []*session
	var reasons []string

	s.mu.Lock()
	for id, sess := range s.sessions {
		select {
		case <-sess.w.Done():
			delete(s.sessions, id)
			victims = append(victims, sess)
			reasons = append(reasons, reasonExited)
			continue
		default:
		}
		if sess.w.Subscribers() == 0 && now.Sub(sess.idleSince()) >= s.idleTimeout {
			delete(s.sessions, id)
			victims = append(victims, sess)
			reasons = append(reasons, reasonIdle)
		}
	}
	s.mu.Unlock()

	for i, sess := range victims {
		sess.w.Stop()
		metrics.RecordWidgetUnmounted(string(sess.w.Profile().Kind), reasons[i])
		s.logger.Info(ctx, "widget reaped",
			logger.String("widget_id", sess.w.ID()),
			logger.String("reason", reasons[i]),
		)
	}
}
