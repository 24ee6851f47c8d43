package preview

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/okian/horus/internal/domain/types"
	"github.com/okian/horus/pkg/logger"
)

const unmountTimeout = 5 * time.Second

// Run mounts the configured widget, draws it on the terminal until the user
// quits or ctx ends, then unmounts it.
func Run(ctx context.Context, cfg Config) (Stats, error) {
	if err := cfg.Validate(); err != nil {
		return Stats{}, err
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		return Stats{}, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return Stats{}, fmt.Errorf("failed to init screen: %w", err)
	}
	defer screen.Fini()

	stats, err := NewSession(cfg, NewHTTPClient(cfg.BaseURL, cfg.Timeout), screen).Run(ctx)
	displayFinalStats(stats)
	return stats, err
}

// Session is one mounted widget shown on one screen.
type Session struct {
	cfg    Config
	client *HTTPClient
	screen tcell.Screen
	rnd    *rand.Rand
	logger logger.Logger

	current types.Snapshot
	note    string
	stats   Stats
}

// NewSession creates a session on an initialized screen.
func NewSession(cfg Config, client *HTTPClient, screen tcell.Screen) *Session {
	return &Session{
		cfg:    cfg,
		client: client,
		screen: screen,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: logger.Get().Named("preview"),
	}
}

// Run drives the session until quit, ctx cancellation or the server ending
// the stream. The widget is unmounted on the way out unless the server
// already did.
func (s *Session) Run(ctx context.Context) (stats Stats, err error) {
	s.stats.StartTime = time.Now()
	defer func() { stats.Duration = time.Since(s.stats.StartTime) }()

	var lanes []string
	infos, err := s.client.Kinds(ctx)
	if err != nil {
		s.logger.Warn(ctx, "failed to list widget kinds", logger.Error(err))
	}
	for _, info := range infos {
		if info.Kind == s.cfg.Kind {
			lanes = info.Lanes
		}
	}

	snap, err := s.client.Mount(ctx, s.cfg.Kind)
	if err != nil {
		return s.stats, fmt.Errorf("mount failed: %w", err)
	}
	s.logger.Info(ctx, "widget mounted", logger.String("widget", snap.WidgetID), logger.String("kind", string(snap.Kind)))
	s.current = snap
	r := NewRenderer(s.screen, lanes)
	r.Draw(s.current, s.note)

	streamCtx, cancelStream := context.WithCancel(ctx)
	defer cancelStream()
	snaps := make(chan types.Snapshot, 16)
	streamErr := make(chan error, 1)
	go func() {
		streamErr <- s.client.Stream(streamCtx, snap.WidgetID, func(sn types.Snapshot) {
			select {
			case snaps <- sn:
			case <-streamCtx.Done():
			}
		})
	}()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-streamCtx.Done():
				return
			}
		}
	}()

	var tick <-chan time.Time
	if s.cfg.Interval > 0 {
		t := time.NewTicker(s.cfg.Interval)
		defer t.Stop()
		tick = t.C
	}

	mounted := true
	defer func() {
		if mounted {
			s.unmount(snap.WidgetID)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return s.stats, nil
		case sn := <-snaps:
			s.stats.Snapshots++
			if sn.Seq >= s.current.Seq {
				s.current = sn
			}
		case err := <-streamErr:
			if errors.Is(err, ErrStreamEnded) {
				mounted = false
				s.logger.Info(ctx, "widget unmounted by server", logger.String("widget", snap.WidgetID))
				return s.stats, nil
			}
			if ctx.Err() != nil {
				return s.stats, nil
			}
			return s.stats, fmt.Errorf("stream failed: %w", err)
		case ev := <-events:
			if !s.handleEvent(ctx, ev) {
				return s.stats, nil
			}
		case <-tick:
			s.selectRandom(ctx)
		}
		r.Draw(s.current, s.note)
	}
}

// handleEvent applies one terminal event and reports whether to keep going.
func (s *Session) handleEvent(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() != tcell.KeyRune:
		case ev.Rune() == 'q':
			return false
		case ev.Rune() == ' ':
			s.selectRandom(ctx)
		case ev.Rune() >= '1' && ev.Rune() <= '9':
			s.selectIndex(ctx, int(ev.Rune()-'1'))
		}
	case *tcell.EventResize:
		s.screen.Sync()
	}
	return true
}

func (s *Session) selectRandom(ctx context.Context) {
	if len(s.current.Markers) == 0 {
		return
	}
	s.selectIndex(ctx, s.rnd.Intn(len(s.current.Markers)))
}

func (s *Session) selectIndex(ctx context.Context, i int) {
	if i < 0 || i >= len(s.current.Markers) {
		return
	}
	m := s.current.Markers[i]
	ack, err := s.client.Select(ctx, s.current.WidgetID, m.ID)
	s.stats.Selections++
	switch {
	case err != nil:
		s.stats.Failed++
		s.note = "select failed"
		s.logger.Warn(ctx, "selection failed", logger.String("marker", m.ID), logger.Error(err))
	case ack.Duplicate:
		s.stats.Duplicates++
		s.note = fmt.Sprintf("%d: duplicate", i+1)
	default:
		s.note = fmt.Sprintf("%d: %s", i+1, m.Label)
		s.logger.Debug(ctx, "selection accepted", logger.String("marker", m.ID), logger.String("event", ack.EventID))
	}
}

func (s *Session) unmount(widgetID string) {
	ctx, cancel := context.WithTimeout(context.Background(), unmountTimeout)
	defer cancel()
	if err := s.client.Unmount(ctx, widgetID); err != nil {
		s.logger.Warn(ctx, "failed to unmount widget", logger.String("widget", widgetID), logger.Error(err))
	}
}

// displayFinalStats logs the counters of a finished run.
func displayFinalStats(stats Stats) {
	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("snapshots", stats.Snapshots),
		logger.Int("selections", stats.Selections),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("failed", stats.Failed),
		logger.Duration("duration", stats.Duration))
}
