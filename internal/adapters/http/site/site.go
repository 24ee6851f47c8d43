// Package site serves the landing page and the browser code that drives the
// live widgets.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/horus/internal/domain/types"
)

// Error constants
var (
	ErrRender = errors.New("landing page render failed")
)

// KindLister reports the widget kinds shown on the page.
type KindLister interface {
	Kinds() []types.WidgetInfo
}

// Register attaches the landing page and its static assets to mux.
func Register(_ context.Context, mux *http.ServeMux, kinds KindLister) {
	if mux == nil {
		panic("mux is nil")
	}
	h := NewRootHandler(kinds)
	mux.HandleFunc("GET /{$}", h.HandleRoot)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(FS())))
}

// RootHandler renders the landing page.
type RootHandler struct {
	kinds KindLister
}

// NewRootHandler creates a new root handler.
func NewRootHandler(kinds KindLister) *RootHandler {
	return &RootHandler{kinds: kinds}
}

// HandleRoot handles GET / requests.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	var infos []types.WidgetInfo
	if h.kinds != nil {
		infos = h.kinds.Kinds()
	}
	var buf bytes.Buffer
	if err := Page(infos).Render(&buf); err != nil {
		http.Error(w, fmt.Errorf("%w: %w", ErrRender, err).Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
