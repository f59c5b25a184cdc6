package api

import (
	"net/http"

	"github.com/starford/laguz/internal/noteservice"
	"github.com/starford/laguz/internal/sse"
	"github.com/starford/laguz/internal/tabs"
)

// WorkspaceHandler exposes the tab and selection state machine. Every
// mutation persists the new state and announces it on the SSE broker.
type WorkspaceHandler struct {
	svc    *noteservice.Service
	ws     *tabs.Workspace
	broker *sse.Broker
}

// NewWorkspaceHandler creates the handler. broker may be nil.
func NewWorkspaceHandler(svc *noteservice.Service, ws *tabs.Workspace, broker *sse.Broker) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc, ws: ws, broker: broker}
}

func (h *WorkspaceHandler) announce() {
	if h.broker != nil {
		h.broker.PublishWorkspace()
	}
}

// Get handles GET /api/workspace.
func (h *WorkspaceHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.ws.Snapshot())
}

// Select handles POST /api/workspace/selection/{id}: a single click. The
// note replaces the active tab slot rather than opening a new one.
func (h *WorkspaceHandler) Select(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil || !h.svc.HasNote(id) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	state := h.ws.Select(id)
	h.announce()
	writeJSON(w, http.StatusOK, state)
}

// Open handles POST /api/workspace/tabs/{id}: a pinned open. The oldest tab
// is evicted once the workspace is full.
func (h *WorkspaceHandler) Open(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil || !h.svc.HasNote(id) {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	state := h.ws.Open(id)
	h.announce()
	writeJSON(w, http.StatusOK, state)
}

// Switch handles POST /api/workspace/tabs/{id}/activate.
func (h *WorkspaceHandler) Switch(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	state := h.ws.Switch(id)
	h.announce()
	writeJSON(w, http.StatusOK, state)
}

// Close handles DELETE /api/workspace/tabs/{id}.
func (h *WorkspaceHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	state := h.ws.Close(id)
	h.announce()
	writeJSON(w, http.StatusOK, state)
}

// CloseAll handles DELETE /api/workspace/tabs.
func (h *WorkspaceHandler) CloseAll(w http.ResponseWriter, r *http.Request) {
	state := h.ws.CloseAll()
	h.announce()
	writeJSON(w, http.StatusOK, state)
}
