package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/cloud"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/noteservice"
	"github.com/starford/laguz/internal/snapshot"
)

// BackupHandler covers snapshot export/import, the Markdown archive, and
// the cloud backup endpoints.
type BackupHandler struct {
	svc      *noteservice.Service
	provider cloud.Provider
}

// NewBackupHandler creates the handler. provider may be nil when no cloud
// backend is configured.
func NewBackupHandler(svc *noteservice.Service, provider cloud.Provider) *BackupHandler {
	return &BackupHandler{svc: svc, provider: provider}
}

// Export handles GET /api/export: the full snapshot document as a download.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.Export(r.Context())
	if err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	name := cloud.BackupName(time.Now())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(data)
}

// Import handles POST /api/import. The response lists unresolved conflicts;
// the client settles each one through Resolve.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 50<<20)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}

	result, err := h.svc.Import(r.Context(), data)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidSnapshot) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid backup document"))
		} else {
			slog.Error("import failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type resolveRequest struct {
	Note   models.Note         `json:"note"`
	Choice snapshot.Resolution `json:"choice"`
}

// Resolve handles POST /api/import/resolve: one conflict decision.
func (h *BackupHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if !req.Choice.Valid() {
		writeJSON(w, http.StatusBadRequest, errorBody("unknown resolution choice"))
		return
	}
	if err := h.svc.ResolveConflict(r.Context(), req.Note, req.Choice); err != nil {
		slog.Error("resolve conflict failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportArchive handles GET /api/export/archive: a zip of Markdown files
// bucketed by folder.
func (h *BackupHandler) ExportArchive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="notes.zip"`)
	if err := h.svc.ExportArchive(w); err != nil {
		slog.Error("archive export failed", slog.String("error", err.Error()))
	}
}

// ImportArchive handles POST /api/import/archive with a zip body.
func (h *BackupHandler) ImportArchive(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 50<<20)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	notes, err := h.svc.ImportArchive(r.Context(), data)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid archive"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"imported": len(notes)})
}

// cloudReady filters cloud requests when no provider is configured.
func (h *BackupHandler) cloudReady(w http.ResponseWriter) bool {
	if h.provider == nil {
		writeJSON(w, http.StatusNotImplemented, errorBody("no cloud provider configured"))
		return false
	}
	return true
}

func (h *BackupHandler) cloudError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotConnected):
		writeJSON(w, http.StatusBadRequest, errorBody("not connected"))
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody("token expired"))
	default:
		slog.Error("cloud "+action+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("cloud provider error"))
	}
}

// CloudStatus handles GET /api/cloud/status.
func (h *BackupHandler) CloudStatus(w http.ResponseWriter, r *http.Request) {
	if !h.cloudReady(w) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"provider":  h.provider.Name(),
		"connected": h.provider.Connected(r.Context()),
	})
}

// CloudAuthURL handles GET /api/cloud/auth-url.
func (h *BackupHandler) CloudAuthURL(w http.ResponseWriter, r *http.Request) {
	if !h.cloudReady(w) {
		return
	}
	state := r.URL.Query().Get("state")
	writeJSON(w, http.StatusOK, map[string]string{"url": h.provider.AuthURL(state)})
}

// CloudConnect handles POST /api/cloud/connect with the token from the
// grant redirect.
func (h *BackupHandler) CloudConnect(w http.ResponseWriter, r *http.Request) {
	if !h.cloudReady(w) {
		return
	}
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("token is required"))
		return
	}
	if err := h.provider.Connect(r.Context(), req.Token); err != nil {
		h.cloudError(w, "connect", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CloudLogout handles POST /api/cloud/logout.
func (h *BackupHandler) CloudLogout(w http.ResponseWriter, r *http.Request) {
	if !h.cloudReady(w) {
		return
	}
	if err := h.provider.Logout(r.Context()); err != nil {
		h.cloudError(w, "logout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CloudBackup handles POST /api/cloud/backup: export and upload in one step.
func (h *BackupHandler) CloudBackup(w http.ResponseWriter, r *http.Request) {
	if !h.cloudReady(w) {
		return
	}
	data, err := h.svc.Export(r.Context())
	if err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	name := cloud.BackupName(time.Now())
	path, err := h.provider.Upload(r.Context(), name, data)
	if err != nil {
		h.cloudError(w, "backup", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": name, "path": path})
}

// CloudBackups handles GET /api/cloud/backups.
func (h *BackupHandler) CloudBackups(w http.ResponseWriter, r *http.Request) {
	if !h.cloudReady(w) {
		return
	}
	backups, err := h.provider.List(r.Context())
	if err != nil {
		h.cloudError(w, "list", err)
		return
	}
	if backups == nil {
		backups = []cloud.Backup{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"backups": backups})
}

// CloudRestore handles POST /api/cloud/restore: download one backup and run
// it through the import pipeline.
func (h *BackupHandler) CloudRestore(w http.ResponseWriter, r *http.Request) {
	if !h.cloudReady(w) {
		return
	}
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}

	data, err := h.provider.Download(r.Context(), req.Path)
	if err != nil {
		h.cloudError(w, "restore", err)
		return
	}
	result, err := h.svc.Import(r.Context(), data)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidSnapshot) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid backup document"))
		} else {
			slog.Error("restore import failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}
