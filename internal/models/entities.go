// Package models defines the domain types for Laguz.
package models

// Note is the primary entity: a titled Markdown document.
//
// ID is the creation time in milliseconds and doubles as the creation-order
// key; there is no separate last-modified field, so edits never change a
// note's sort position. Preview is a derived cache of Content and must only
// be written through RenderPreview. Tags holds denormalized tag labels (by
// name, not Tag id); the Tag entity lifecycle does not cascade into notes.
type Note struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Preview   string   `json:"preview"`
	Date      string   `json:"date"`
	Tags      []string `json:"tags"`
	FolderID  *int64   `json:"folderId"`
	IsPinned  bool     `json:"isPinned"`
	IsTrashed bool     `json:"isTrashed"`
}

// Folder is an exclusive organizational entity (one per note). ParentID
// forms a tree; a note's FolderID is a weak reference and may dangle.
type Folder struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
}

// Tag is the sidebar tag entity. Notes reference tags by name, never by id.
type Tag struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
}

// Image is a binary attachment referenced from note content via
// ![alt](img-id) Markdown syntax. The reference is weak.
type Image struct {
	ID        string `json:"id"`
	Data      []byte `json:"-"`
	MimeType  string `json:"mimeType"`
	CreatedAt int64  `json:"createdAt"`
}

// Task is a checklist line derived from note content on read. It is never
// persisted; Index is the source line number and serves as the mutation
// address for toggling.
type Task struct {
	ID        string   `json:"id"`
	NoteID    int64    `json:"noteId"`
	NoteTitle string   `json:"noteTitle"`
	Text      string   `json:"text"`
	DueDate   string   `json:"dueDate,omitempty"`
	Tags      []string `json:"tags"`
	Checked   bool     `json:"checked"`
	Index     int      `json:"index"`
}

const previewLimit = 100

// RenderPreview derives the preview cache for the given content: the first
// 100 characters, with an ellipsis when truncated.
func RenderPreview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLimit {
		return content
	}
	return string(runes[:previewLimit]) + "..."
}
