package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/idgen"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/store"
)

const maxImageBytes = 10 << 20 // 10 MB

// ImageHandler stores and serves note images. Images live in the database
// as blobs; notes reference them weakly via ![alt](/images/<id>) Markdown.
type ImageHandler struct {
	st  store.Store
	ids *idgen.Generator
}

// NewImageHandler creates the handler.
func NewImageHandler(st store.Store, ids *idgen.Generator) *ImageHandler {
	return &ImageHandler{st: st, ids: ids}
}

// Upload handles POST /api/images (multipart/form-data, field "file").
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	img := models.Image{
		ID:        h.ids.NextImageID(),
		Data:      data,
		MimeType:  mimeType,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := h.st.PutImage(img); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to store image"))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       img.ID,
		"mimeType": img.MimeType,
		"url":      "/images/" + img.ID,
	})
}

// Serve handles GET /images/{id}.
func (h *ImageHandler) Serve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	img, err := h.st.GetImage(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			http.NotFound(w, r)
		} else {
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	w.Header().Set("Content-Type", img.MimeType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	_, _ = w.Write(img.Data)
}

// Delete handles DELETE /api/images/{id}.
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.st.DeleteImage(chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
