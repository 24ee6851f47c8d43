// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/okian/horus/internal/domain/dedupe"
	"github.com/okian/horus/internal/domain/model"
	"github.com/okian/horus/internal/domain/types"
	"github.com/okian/horus/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a selection for async processing. Returns false on backpressure.
	Enqueue(ctx context.Context, e any) bool

	// Session lifecycle.
	Kinds() []types.WidgetInfo
	Mount(ctx context.Context, kind model.Kind) (types.Snapshot, error)
	Unmount(ctx context.Context, id string) error
	Snapshot(ctx context.Context, id string) (types.Snapshot, error)
	Subscribe(ctx context.Context, id string) (<-chan types.Snapshot, func(), error)
}

// Server wires HTTP routes for the widget API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	widgetsHandler   *WidgetsHandler
	selectionHandler *SelectionHandler
	streamHandler    *StreamHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	o := options{keepAlive: defaultKeepAlive}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Named("api")
	}
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		widgetsHandler:   NewWidgetsHandler(deps),
		selectionHandler: NewSelectionHandler(deps),
		streamHandler:    NewStreamHandler(deps, o.logger, o.keepAlive),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /widgets", MetricsMiddleware(s.widgetsHandler.HandleList, "widgets"))
	mux.HandleFunc("POST /widgets", MetricsMiddleware(s.widgetsHandler.HandleMount, "widgets"))
	mux.HandleFunc("GET /widgets/{id}", MetricsMiddleware(s.widgetsHandler.HandleGet, "widget"))
	mux.HandleFunc("DELETE /widgets/{id}", MetricsMiddleware(s.widgetsHandler.HandleUnmount, "widget"))
	mux.HandleFunc("POST /widgets/{id}/select", MetricsMiddleware(s.selectionHandler.HandleSelect, "select"))
	mux.HandleFunc("GET /widgets/{id}/stream", MetricsMiddleware(s.streamHandler.HandleStream, "stream"))
}
