// Package snapshot implements the portable backup document: serializing the
// full entity model, parsing external documents, and detecting per-note
// conflicts for the import pipeline.
package snapshot

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/models"
)

// Version is the current export document version.
const Version = 1

// Document is the portable backup format. All three entity arrays must be
// present for a document to be importable.
type Document struct {
	Version   int             `json:"version"`
	Timestamp int64           `json:"timestamp"`
	Notes     []models.Note   `json:"notes"`
	Folders   []models.Folder `json:"folders"`
	Tags      []models.Tag    `json:"tags"`
}

// Conflict pairs a local note with an imported note sharing its id but
// differing in title or content. Each conflict must be resolved explicitly.
type Conflict struct {
	Local    models.Note `json:"local"`
	Imported models.Note `json:"imported"`
}

// Resolution is the caller-selected policy for one conflict.
type Resolution string

const (
	// KeepLocal discards the imported version.
	KeepLocal Resolution = "keep_local"
	// KeepImported overwrites the local note at the same id.
	KeepImported Resolution = "keep_imported"
	// KeepBoth inserts the imported note under a fresh id with the title
	// suffixed " (Imported)", leaving the local note untouched.
	KeepBoth Resolution = "keep_both"
)

// Valid reports whether r names a known policy.
func (r Resolution) Valid() bool {
	switch r {
	case KeepLocal, KeepImported, KeepBoth:
		return true
	}
	return false
}

// Export serializes the entity model into a backup document.
func Export(notes []models.Note, folders []models.Folder, tags []models.Tag) ([]byte, error) {
	doc := Document{
		Version:   Version,
		Timestamp: time.Now().UnixMilli(),
		Notes:     notes,
		Folders:   folders,
		Tags:      tags,
	}
	if doc.Notes == nil {
		doc.Notes = []models.Note{}
	}
	if doc.Folders == nil {
		doc.Folders = []models.Folder{}
	}
	if doc.Tags == nil {
		doc.Tags = []models.Tag{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return data, nil
}

// Parse decodes a backup document, rejecting it wholesale when any of the
// notes/folders/tags arrays is absent.
func Parse(data []byte) (*Document, error) {
	// Presence is checked on the raw object: a missing array and an empty
	// one are different documents.
	var probe struct {
		Notes   json.RawMessage `json:"notes"`
		Folders json.RawMessage `json:"folders"`
		Tags    json.RawMessage `json:"tags"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("snapshot: %w: %v", apperr.ErrInvalidSnapshot, err)
	}
	if probe.Notes == nil || probe.Folders == nil || probe.Tags == nil {
		return nil, fmt.Errorf("snapshot: %w: missing notes, folders, or tags", apperr.ErrInvalidSnapshot)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("snapshot: %w: %v", apperr.ErrInvalidSnapshot, err)
	}
	return &doc, nil
}

// Diff classifies imported notes against local ones: notes with unseen ids
// are staged for insertion, identical notes are skipped, and same-id notes
// differing in title or content become conflicts.
func Diff(local, imported []models.Note) (insertions []models.Note, conflicts []Conflict) {
	byID := make(map[int64]models.Note, len(local))
	for _, n := range local {
		byID[n.ID] = n
	}

	for _, imp := range imported {
		existing, ok := byID[imp.ID]
		if !ok {
			insertions = append(insertions, imp)
			continue
		}
		if existing.Title != imp.Title || existing.Content != imp.Content {
			conflicts = append(conflicts, Conflict{Local: existing, Imported: imp})
		}
	}
	return insertions, conflicts
}
