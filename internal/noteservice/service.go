// Package noteservice implements the entity model: CRUD over notes, folders,
// and tags with invariant enforcement, backed by the store.
//
// The service keeps the full entity model in memory and writes through to
// the store before mutating the in-memory copy, so a failed persist surfaces
// as an error instead of silently diverging state.
package noteservice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/idgen"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/store"
	"github.com/starford/laguz/internal/tasks"
)

// EventFunc is called after each successful note mutation. kind is one of
// "created", "updated", "deleted".
type EventFunc func(kind string, noteID int64)

// Service coordinates the in-memory entity model and the store.
type Service struct {
	st  store.Store
	ids *idgen.Generator

	mu      sync.RWMutex
	notes   []models.Note
	folders []models.Folder
	tags    []models.Tag

	notify EventFunc
}

// NewService creates a service over the given store. notify may be nil.
func NewService(st store.Store, ids *idgen.Generator, notify EventFunc) *Service {
	if notify == nil {
		notify = func(string, int64) {}
	}
	return &Service{st: st, ids: ids, notify: notify}
}

// Load reads the full entity model from the store into memory. Notes arrive
// newest first (creation order is the id).
func (s *Service) Load(_ context.Context) error {
	notes, err := s.st.AllNotes()
	if err != nil {
		return fmt.Errorf("noteservice: load notes: %w", err)
	}
	folders, err := s.st.AllFolders()
	if err != nil {
		return fmt.Errorf("noteservice: load folders: %w", err)
	}
	tags, err := s.st.AllTags()
	if err != nil {
		return fmt.Errorf("noteservice: load tags: %w", err)
	}

	s.mu.Lock()
	s.notes, s.folders, s.tags = notes, folders, tags
	s.mu.Unlock()
	return nil
}

// Notes returns a copy of the in-memory note list.
func (s *Service) Notes() []models.Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Note(nil), s.notes...)
}

// Folders returns a copy of the in-memory folder list.
func (s *Service) Folders() []models.Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Folder(nil), s.folders...)
}

// Tags returns a copy of the in-memory tag list.
func (s *Service) Tags() []models.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Tag(nil), s.tags...)
}

// NoteByID returns the note with the given id.
func (s *Service) NoteByID(id int64) (*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notes {
		if n.ID == id {
			found := n
			return &found, nil
		}
	}
	return nil, apperr.ErrNotFound
}

// HasNote reports whether a note with the given id exists.
func (s *Service) HasNote(id int64) bool {
	_, err := s.NoteByID(id)
	return err == nil
}

// CreateNote creates a note with the defaults a fresh editor expects: empty
// content, placeholder preview, and a short display date. folderID may be nil.
func (s *Service) CreateNote(_ context.Context, folderID *int64) (*models.Note, error) {
	n := models.Note{
		ID:       s.ids.Next(),
		Title:    "New Note",
		Content:  "",
		Preview:  "No additional text",
		Date:     time.Now().Format("Jan 2"),
		Tags:     []string{},
		FolderID: folderID,
	}
	return s.insertNote(n)
}

// CreateNoteFromFile creates a note from imported Markdown content.
func (s *Service) CreateNoteFromFile(_ context.Context, title, content string, folderID *int64) (*models.Note, error) {
	n := models.Note{
		ID:       s.ids.Next(),
		Title:    title,
		Content:  content,
		Preview:  models.RenderPreview(content),
		Date:     time.Now().Format("Jan 2"),
		Tags:     []string{},
		FolderID: folderID,
	}
	return s.insertNote(n)
}

func (s *Service) insertNote(n models.Note) (*models.Note, error) {
	if err := s.st.PutNote(n); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.notes = append([]models.Note{n}, s.notes...)
	s.mu.Unlock()

	s.notify("created", n.ID)
	return &n, nil
}

// UpdateNote applies a partial update. The preview cache is recomputed iff
// the content field is among the changed fields; everything else passes
// through unchanged. The full resulting note is persisted.
func (s *Service) UpdateNote(_ context.Context, id int64, patch NotePatch) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return nil, apperr.ErrNotFound
	}

	updated := patch.applyTo(s.notes[i])
	if err := s.st.PutNote(updated); err != nil {
		return nil, err
	}
	s.notes[i] = updated

	s.notify("updated", id)
	return &updated, nil
}

// SoftDeleteNote moves a note to the trash.
func (s *Service) SoftDeleteNote(ctx context.Context, id int64) error {
	trashed := true
	_, err := s.UpdateNote(ctx, id, NotePatch{Trashed: &trashed})
	return err
}

// RestoreNote brings a note back from the trash.
func (s *Service) RestoreNote(ctx context.Context, id int64) error {
	trashed := false
	_, err := s.UpdateNote(ctx, id, NotePatch{Trashed: &trashed})
	return err
}

// HardDeleteNote permanently removes a note.
func (s *Service) HardDeleteNote(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(id)
	if i < 0 {
		return apperr.ErrNotFound
	}
	if err := s.st.DeleteNote(id); err != nil {
		return err
	}
	s.notes = append(s.notes[:i], s.notes[i+1:]...)

	s.notify("deleted", id)
	return nil
}

// EmptyTrash permanently removes every trashed note and reports how many.
func (s *Service) EmptyTrash(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]models.Note, 0, len(s.notes))
	removed := 0
	for _, n := range s.notes {
		if !n.IsTrashed {
			kept = append(kept, n)
			continue
		}
		if err := s.st.DeleteNote(n.ID); err != nil {
			// Keep what is left of the trash; the next call retries it.
			kept = append(kept, n)
			continue
		}
		removed++
		s.notify("deleted", n.ID)
	}
	s.notes = kept
	return removed, nil
}

// TogglePin flips the pinned flag.
func (s *Service) TogglePin(ctx context.Context, id int64) (*models.Note, error) {
	n, err := s.NoteByID(id)
	if err != nil {
		return nil, err
	}
	pinned := !n.IsPinned
	return s.UpdateNote(ctx, id, NotePatch{Pinned: &pinned})
}

// ToggleTaskAtLine flips the checkbox on one line of the note's content and
// persists the whole note. When the addressed line no longer matches a
// checkbox pattern the operation is a silent no-op.
func (s *Service) ToggleTaskAtLine(ctx context.Context, id int64, line int) (*models.Note, error) {
	n, err := s.NoteByID(id)
	if err != nil {
		return nil, err
	}

	content, ok := tasks.ToggleLine(n.Content, line)
	if !ok {
		return n, nil
	}
	return s.UpdateNote(ctx, id, NotePatch{Content: &content})
}

// CreateFolder creates a folder. parentID may be nil.
func (s *Service) CreateFolder(_ context.Context, name string, parentID *int64) (*models.Folder, error) {
	f := models.Folder{ID: s.ids.Next(), Name: name, ParentID: parentID}
	if err := s.st.PutFolder(f); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.folders = append(s.folders, f)
	s.mu.Unlock()
	return &f, nil
}

// DeleteFolder removes a folder. The operation is rejected when the folder
// has child folders or non-trashed notes assigned; nothing is partially
// applied.
func (s *Service) DeleteFolder(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := -1
	for idx, f := range s.folders {
		if f.ID == id {
			i = idx
		}
		if f.ParentID != nil && *f.ParentID == id {
			return fmt.Errorf("noteservice: folder %d: %w", id, apperr.ErrHasChildren)
		}
	}
	if i < 0 {
		return apperr.ErrNotFound
	}
	for _, n := range s.notes {
		if !n.IsTrashed && n.FolderID != nil && *n.FolderID == id {
			return fmt.Errorf("noteservice: folder %d: %w", id, apperr.ErrNotEmpty)
		}
	}

	if err := s.st.DeleteFolder(id); err != nil {
		return err
	}
	s.folders = append(s.folders[:i], s.folders[i+1:]...)
	return nil
}

// FolderByName returns the folder with the given name, if any.
func (s *Service) FolderByName(name string) (*models.Folder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.folders {
		if f.Name == name {
			found := f
			return &found, true
		}
	}
	return nil, false
}

// CreateTag creates a tag entity. parentID may be nil. Note tag labels are
// independent of tag entities; creating one never touches notes.
func (s *Service) CreateTag(_ context.Context, name string, parentID *int64) (*models.Tag, error) {
	t := models.Tag{ID: s.ids.Next(), Name: name, ParentID: parentID}
	if err := s.st.PutTag(t); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.tags = append(s.tags, t)
	s.mu.Unlock()
	return &t, nil
}

// DeleteTag removes a tag entity. Rejected when the tag has child tags.
// Notes keep their label strings; only the sidebar entry disappears.
func (s *Service) DeleteTag(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := -1
	for idx, t := range s.tags {
		if t.ID == id {
			i = idx
		}
		if t.ParentID != nil && *t.ParentID == id {
			return fmt.Errorf("noteservice: tag %d: %w", id, apperr.ErrHasChildren)
		}
	}
	if i < 0 {
		return apperr.ErrNotFound
	}

	if err := s.st.DeleteTag(id); err != nil {
		return err
	}
	s.tags = append(s.tags[:i], s.tags[i+1:]...)
	return nil
}

// indexOfLocked returns the position of the note with the given id, or -1.
func (s *Service) indexOfLocked(id int64) int {
	for i, n := range s.notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}
