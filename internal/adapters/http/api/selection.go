package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/horus/internal/domain/model"
)

// SelectionHandler accepts marker selections for asynchronous application.
type SelectionHandler struct {
	deps Dependencies
	now  func() time.Time
}

// NewSelectionHandler creates a new selection handler.
func NewSelectionHandler(deps Dependencies) *SelectionHandler {
	return &SelectionHandler{deps: deps, now: time.Now}
}

// selectRequest mirrors the OpenAPI schema for POST /widgets/{id}/select.
// A missing event_id gets a fresh one, so the request is never deduplicated.
type selectRequest struct {
	EventID  string `json:"event_id"`
	MarkerID string `json:"marker_id"`
}

func (s selectRequest) validate() error {
	if strings.TrimSpace(s.MarkerID) == "" {
		return errors.New("missing marker_id")
	}
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id"`
	Duplicate bool   `json:"duplicate"`
}

// HandleSelect handles POST /widgets/{id}/select requests.
func (h *SelectionHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	const op = "api.select_marker"
	widgetID := r.PathValue("id")

	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.EventID) == "" {
		req.EventID = uuid.NewString()
	}
	if _, err := h.deps.Snapshot(r.Context(), widgetID); err != nil {
		writeError(w, classify(op, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.EventID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", EventID: req.EventID, Duplicate: true})
		return
	}

	sel := model.Selection{EventID: req.EventID, WidgetID: widgetID, MarkerID: req.MarkerID, TS: h.now()}
	if ok := h.deps.Enqueue(r.Context(), sel); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.EventID)
		writeError(w, NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", EventID: req.EventID})
}
