package noteservice

import "github.com/starford/laguz/internal/models"

// NotePatch is a partial note update. Nil fields are left unchanged. Folder
// carries its own presence flag because "move to no folder" and "don't touch
// the folder" are different updates.
type NotePatch struct {
	Title   *string
	Content *string
	Tags    *[]string
	Folder  *FolderChange
	Pinned  *bool
	Trashed *bool
	Date    *string
}

// FolderChange moves a note into the folder with the given id, or out of any
// folder when ID is nil.
type FolderChange struct {
	ID *int64
}

// applyTo merges the patch into a copy of n, recomputing the preview cache
// when (and only when) the content changes.
func (p NotePatch) applyTo(n models.Note) models.Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
		n.Preview = models.RenderPreview(*p.Content)
	}
	if p.Tags != nil {
		n.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.Folder != nil {
		n.FolderID = p.Folder.ID
	}
	if p.Pinned != nil {
		n.IsPinned = *p.Pinned
	}
	if p.Trashed != nil {
		n.IsTrashed = *p.Trashed
	}
	if p.Date != nil {
		n.Date = *p.Date
	}
	return n
}
