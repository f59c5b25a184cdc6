package noteservice

import (
	"context"
	"fmt"
	"io"

	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/snapshot"
)

// ImportResult is returned by Import. An empty Conflicts list signals a
// clean import; otherwise each conflict must be resolved through
// ResolveConflict before the corresponding note is finalized.
type ImportResult struct {
	Imported  int                 `json:"imported"`
	Skipped   int                 `json:"skipped"`
	Conflicts []snapshot.Conflict `json:"conflicts"`
}

// Export serializes the full entity model into a backup document.
func (s *Service) Export(_ context.Context) ([]byte, error) {
	return snapshot.Export(s.Notes(), s.Folders(), s.Tags())
}

// Import runs the reconciliation pipeline over a backup document:
//
//  1. Parse; reject without side effects when the document is invalid.
//  2. Upsert every imported folder and tag unconditionally (last writer wins).
//  3. Classify imported notes: unseen ids are inserted, identical notes are
//     skipped, and same-id notes differing in title or content are recorded
//     as conflicts without writing anything.
//  4. Reload the entity model from the store.
func (s *Service) Import(ctx context.Context, data []byte) (*ImportResult, error) {
	doc, err := snapshot.Parse(data)
	if err != nil {
		return nil, err
	}

	for _, f := range doc.Folders {
		if err := s.st.PutFolder(f); err != nil {
			return nil, fmt.Errorf("noteservice: import folder %d: %w", f.ID, err)
		}
	}
	for _, t := range doc.Tags {
		if err := s.st.PutTag(t); err != nil {
			return nil, fmt.Errorf("noteservice: import tag %d: %w", t.ID, err)
		}
	}

	insertions, conflicts := snapshot.Diff(s.Notes(), doc.Notes)
	for _, n := range insertions {
		if err := s.st.PutNote(n); err != nil {
			return nil, fmt.Errorf("noteservice: import note %d: %w", n.ID, err)
		}
	}

	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	for _, n := range insertions {
		s.notify("created", n.ID)
	}

	if conflicts == nil {
		conflicts = []snapshot.Conflict{}
	}
	return &ImportResult{
		Imported:  len(insertions),
		Skipped:   len(doc.Notes) - len(insertions) - len(conflicts),
		Conflicts: conflicts,
	}, nil
}

// ResolveConflict applies the chosen policy to one conflict: keep_local
// writes nothing, keep_imported overwrites the local note, keep_both inserts
// the imported note under a fresh id with the title suffixed " (Imported)".
// The entity model is reloaded after each resolution.
func (s *Service) ResolveConflict(ctx context.Context, imported models.Note, choice snapshot.Resolution) error {
	if !choice.Valid() {
		return fmt.Errorf("noteservice: unknown resolution %q", choice)
	}

	switch choice {
	case snapshot.KeepImported:
		if err := s.st.PutNote(imported); err != nil {
			return fmt.Errorf("noteservice: resolve keep_imported: %w", err)
		}
		s.notify("updated", imported.ID)
	case snapshot.KeepBoth:
		duplicate := imported
		duplicate.ID = s.ids.Next()
		duplicate.Title = imported.Title + " (Imported)"
		if err := s.st.PutNote(duplicate); err != nil {
			return fmt.Errorf("noteservice: resolve keep_both: %w", err)
		}
		s.notify("created", duplicate.ID)
	case snapshot.KeepLocal:
		// Discarding the imported version is a no-op.
	}

	return s.Load(ctx)
}

// ImportMarkdownFiles creates one note per Markdown file and returns the new
// notes. folderID applies to all of them and may be nil.
func (s *Service) ImportMarkdownFiles(ctx context.Context, files map[string][]byte, folderID *int64) ([]models.Note, error) {
	var out []models.Note
	for name, content := range files {
		nf := snapshot.FromMarkdown(name, content)
		n, err := s.CreateNoteFromFile(ctx, nf.Title, nf.Content, folderID)
		if err != nil {
			return out, err
		}
		out = append(out, *n)
	}
	return out, nil
}

// ImportArchive creates notes from a zip bundle of Markdown files. Entries
// whose leading path segment names an existing folder land in that folder;
// everything else stays unfiled.
func (s *Service) ImportArchive(ctx context.Context, data []byte) ([]models.Note, error) {
	files, err := snapshot.ImportArchive(data)
	if err != nil {
		return nil, err
	}

	var out []models.Note
	for _, nf := range files {
		var folderID *int64
		if nf.FolderName != "" {
			if f, ok := s.FolderByName(nf.FolderName); ok {
				folderID = &f.ID
			}
		}
		n, err := s.CreateNoteFromFile(ctx, nf.Title, nf.Content, folderID)
		if err != nil {
			return out, err
		}
		out = append(out, *n)
	}
	return out, nil
}

// ExportArchive writes the zip bundle of all non-trashed notes to w.
func (s *Service) ExportArchive(w io.Writer) error {
	return snapshot.ExportArchive(w, s.Notes(), s.Folders())
}
