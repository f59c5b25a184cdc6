package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/noteservice"
	"github.com/starford/laguz/internal/tabs"
	"github.com/starford/laguz/internal/tasks"
	"github.com/starford/laguz/internal/views"
)

var errBadFilter = errors.New("api: unknown filter kind")

// Handler holds the note, folder, tag, and task route handlers.
type Handler struct {
	svc *noteservice.Service
	ws  *tabs.Workspace
}

// NewHandler creates a new Handler. ws may be nil.
func NewHandler(svc *noteservice.Service, ws *tabs.Workspace) *Handler {
	return &Handler{svc: svc, ws: ws}
}

// forgetTab drops a note from the workspace after it leaves the visible set.
func (h *Handler) forgetTab(id int64) {
	if h.ws != nil {
		h.ws.Forget(id)
	}
}

// noteID extracts the {id} chi parameter.
func noteID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// ListNotes handles GET /api/notes. The visible list is derived per request
// from the filter, sort, and search query parameters.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, sort, query, err := listQuery(q.Get)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid query parameters"))
		return
	}

	visible := views.Visible(h.svc.Notes(), filter, sort, query)
	if visible == nil {
		visible = []models.Note{}
	}
	writeJSON(w, http.StatusOK, noteListResponse{Notes: visible, Total: len(visible)})
}

// GetNote handles GET /api/notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	note, err := h.svc.NoteByID(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes. The body is optional and may carry a
// target folder id.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
			return
		}
	}
	note, err := h.svc.CreateNote(r.Context(), req.FolderID)
	if err != nil {
		slog.Error("create note failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PATCH /api/notes/{id}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	id, err := noteID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}

	var req updateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid folderId"))
		return
	}

	note, err := h.svc.UpdateNote(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("update note failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}: a soft delete into the trash.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	if err := h.svc.SoftDeleteNote(r.Context(), id); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	h.forgetTab(id)
	w.WriteHeader(http.StatusNoContent)
}

// RestoreNote handles POST /api/notes/{id}/restore.
func (h *Handler) RestoreNote(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	if err := h.svc.RestoreNote(r.Context(), id); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	note, err := h.svc.NoteByID(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// PermanentDeleteNote handles DELETE /api/notes/{id}/permanent.
func (h *Handler) PermanentDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	if err := h.svc.HardDeleteNote(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("permanent delete failed", slog.Int64("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.forgetTab(id)
	w.WriteHeader(http.StatusNoContent)
}

// EmptyTrash handles DELETE /api/trash.
func (h *Handler) EmptyTrash(w http.ResponseWriter, r *http.Request) {
	removed, err := h.svc.EmptyTrash(r.Context())
	if err != nil {
		slog.Error("empty trash failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// TogglePin handles POST /api/notes/{id}/pin.
func (h *Handler) TogglePin(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	note, err := h.svc.TogglePin(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// ToggleTask handles POST /api/notes/{id}/tasks/{line}/toggle.
func (h *Handler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid note id"))
		return
	}
	line, err := strconv.Atoi(chi.URLParam(r, "line"))
	if err != nil || line < 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid line number"))
		return
	}
	note, err := h.svc.ToggleTaskAtLine(r.Context(), id, line)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// ListTasks handles GET /api/tasks: the task dashboard derived from all
// non-trashed notes.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := tasks.ViewOptions{
		Tag:           q.Get("tag"),
		Sort:          tasks.SortSource,
		HideCompleted: q.Get("hideCompleted") == "true",
	}
	if raw := q.Get("sort"); raw != "" {
		opts.Sort = tasks.Sort(raw)
	}

	list := tasks.View(h.svc.Notes(), opts)
	if list == nil {
		list = []models.Task{}
	}
	writeJSON(w, http.StatusOK, taskListResponse{Tasks: list})
}

// ListFolders handles GET /api/folders.
func (h *Handler) ListFolders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"folders": h.svc.Folders()})
}

// CreateFolder handles POST /api/folders.
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	folder, err := h.svc.CreateFolder(r.Context(), req.Name, req.ParentID)
	if err != nil {
		slog.Error("create folder failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, folder)
}

// DeleteFolder handles DELETE /api/folders/{id}. Folders with subfolders or
// non-trashed notes are refused.
func (h *Handler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid folder id"))
		return
	}
	switch err := h.svc.DeleteFolder(r.Context(), id); {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, apperr.ErrHasChildren):
		writeJSON(w, http.StatusConflict, errorBody("folder has subfolders"))
	case errors.Is(err, apperr.ErrNotEmpty):
		writeJSON(w, http.StatusConflict, errorBody("folder contains notes"))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	default:
		slog.Error("delete folder failed", slog.Int64("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListTags handles GET /api/tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tags": h.svc.Tags()})
}

// CreateTag handles POST /api/tags.
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	tag, err := h.svc.CreateTag(r.Context(), req.Name, req.ParentID)
	if err != nil {
		slog.Error("create tag failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// DeleteTag handles DELETE /api/tags/{id}. Tags with subtags are refused;
// note labels are left in place.
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := noteID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid tag id"))
		return
	}
	switch err := h.svc.DeleteTag(r.Context(), id); {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, apperr.ErrHasChildren):
		writeJSON(w, http.StatusConflict, errorBody("tag has subtags"))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	default:
		slog.Error("delete tag failed", slog.Int64("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
