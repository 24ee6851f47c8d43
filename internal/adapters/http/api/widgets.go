package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/horus/internal/domain/model"
)

// WidgetsHandler mounts, inspects and tears down widget sessions.
type WidgetsHandler struct {
	deps Dependencies
}

// NewWidgetsHandler creates a new widgets handler.
func NewWidgetsHandler(deps Dependencies) *WidgetsHandler {
	return &WidgetsHandler{deps: deps}
}

// mountRequest mirrors the OpenAPI schema for POST /widgets.
type mountRequest struct {
	Kind string `json:"kind"`
}

func (m mountRequest) validate() (model.Kind, error) {
	if strings.TrimSpace(m.Kind) == "" {
		return "", errors.New("missing kind")
	}
	return model.ParseKind(m.Kind)
}

// HandleList handles GET /widgets requests.
func (h *WidgetsHandler) HandleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Kinds())
}

// HandleMount handles POST /widgets requests.
func (h *WidgetsHandler) HandleMount(w http.ResponseWriter, r *http.Request) {
	const op = "api.mount_widget"
	var req mountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	kind, err := req.validate()
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	snap, err := h.deps.Mount(r.Context(), kind)
	if err != nil {
		writeError(w, classify(op, err))
		return
	}
	w.Header().Set("Location", "/widgets/"+snap.WidgetID)
	writeJSON(w, http.StatusCreated, snap)
}

// HandleGet handles GET /widgets/{id} requests.
func (h *WidgetsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_widget"
	snap, err := h.deps.Snapshot(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, classify(op, err))
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleUnmount handles DELETE /widgets/{id} requests.
func (h *WidgetsHandler) HandleUnmount(w http.ResponseWriter, r *http.Request) {
	const op = "api.unmount_widget"
	if err := h.deps.Unmount(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, classify(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
