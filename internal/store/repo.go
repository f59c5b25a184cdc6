package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/laguz/internal/apperr"
	"github.com/starford/laguz/internal/models"
)

// AllNotes returns every note in the collection, newest first.
func (db *DB) AllNotes() ([]models.Note, error) {
	rows, err := db.conn.Query(`
		SELECT id, title, content, preview, date, tags, folder_id, is_pinned, is_trashed
		FROM notes
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("store: all notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		var n models.Note
		var tagsJSON string
		var folderID sql.NullInt64
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &n.Preview, &n.Date,
			&tagsJSON, &folderID, &n.IsPinned, &n.IsTrashed); err != nil {
			return nil, fmt.Errorf("store: scan note: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil {
			n.Tags = []string{}
		}
		if folderID.Valid {
			id := folderID.Int64
			n.FolderID = &id
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// PutNote inserts or replaces a note by id.
func (db *DB) PutNote(n models.Note) error {
	tagsJSON, _ := json.Marshal(nonNilTags(n.Tags))
	var folderID any
	if n.FolderID != nil {
		folderID = *n.FolderID
	}
	_, err := db.conn.Exec(`
		INSERT INTO notes (id, title, content, preview, date, tags, folder_id, is_pinned, is_trashed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title      = excluded.title,
			content    = excluded.content,
			preview    = excluded.preview,
			date       = excluded.date,
			tags       = excluded.tags,
			folder_id  = excluded.folder_id,
			is_pinned  = excluded.is_pinned,
			is_trashed = excluded.is_trashed
	`, n.ID, n.Title, n.Content, n.Preview, n.Date, string(tagsJSON), folderID, n.IsPinned, n.IsTrashed)
	if err != nil {
		return fmt.Errorf("store: put note: %w", err)
	}
	return nil
}

// DeleteNote removes a note by id. Deleting a missing note is not an error.
func (db *DB) DeleteNote(id int64) error {
	if _, err := db.conn.Exec(`DELETE FROM notes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete note: %w", err)
	}
	return nil
}

// AllFolders returns every folder.
func (db *DB) AllFolders() ([]models.Folder, error) {
	rows, err := db.conn.Query(`SELECT id, name, parent_id FROM folders ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: all folders: %w", err)
	}
	defer rows.Close()

	var out []models.Folder
	for rows.Next() {
		var f models.Folder
		var parentID sql.NullInt64
		if err := rows.Scan(&f.ID, &f.Name, &parentID); err != nil {
			return nil, fmt.Errorf("store: scan folder: %w", err)
		}
		if parentID.Valid {
			id := parentID.Int64
			f.ParentID = &id
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// PutFolder inserts or replaces a folder by id.
func (db *DB) PutFolder(f models.Folder) error {
	var parentID any
	if f.ParentID != nil {
		parentID = *f.ParentID
	}
	_, err := db.conn.Exec(`
		INSERT INTO folders (id, name, parent_id) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, parent_id = excluded.parent_id
	`, f.ID, f.Name, parentID)
	if err != nil {
		return fmt.Errorf("store: put folder: %w", err)
	}
	return nil
}

// DeleteFolder removes a folder by id.
func (db *DB) DeleteFolder(id int64) error {
	if _, err := db.conn.Exec(`DELETE FROM folders WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete folder: %w", err)
	}
	return nil
}

// AllTags returns every tag entity.
func (db *DB) AllTags() ([]models.Tag, error) {
	rows, err := db.conn.Query(`SELECT id, name, parent_id FROM tags ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: all tags: %w", err)
	}
	defer rows.Close()

	var out []models.Tag
	for rows.Next() {
		var t models.Tag
		var parentID sql.NullInt64
		if err := rows.Scan(&t.ID, &t.Name, &parentID); err != nil {
			return nil, fmt.Errorf("store: scan tag: %w", err)
		}
		if parentID.Valid {
			id := parentID.Int64
			t.ParentID = &id
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// PutTag inserts or replaces a tag entity by id.
func (db *DB) PutTag(t models.Tag) error {
	var parentID any
	if t.ParentID != nil {
		parentID = *t.ParentID
	}
	_, err := db.conn.Exec(`
		INSERT INTO tags (id, name, parent_id) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, parent_id = excluded.parent_id
	`, t.ID, t.Name, parentID)
	if err != nil {
		return fmt.Errorf("store: put tag: %w", err)
	}
	return nil
}

// DeleteTag removes a tag entity by id.
func (db *DB) DeleteTag(id int64) error {
	if _, err := db.conn.Exec(`DELETE FROM tags WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete tag: %w", err)
	}
	return nil
}

// PutImage inserts or replaces an image blob.
func (db *DB) PutImage(img models.Image) error {
	_, err := db.conn.Exec(`
		INSERT INTO images (id, data, mime_type, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, mime_type = excluded.mime_type
	`, img.ID, img.Data, img.MimeType, img.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: put image: %w", err)
	}
	return nil
}

// GetImage returns the image with the given id, or apperr.ErrNotFound.
func (db *DB) GetImage(id string) (*models.Image, error) {
	var img models.Image
	err := db.conn.QueryRow(`SELECT id, data, mime_type, created_at FROM images WHERE id = ?`, id).
		Scan(&img.ID, &img.Data, &img.MimeType, &img.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get image: %w", err)
	}
	return &img, nil
}

// DeleteImage removes an image by id.
func (db *DB) DeleteImage(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM images WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete image: %w", err)
	}
	return nil
}

// GetState reads a workspace key. A missing key returns an empty string.
func (db *DB) GetState(key string) (string, error) {
	var value string
	err := db.conn.QueryRow(`SELECT value FROM workspace WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: get state %s: %w", key, err)
	}
	return value, nil
}

// PutState writes a workspace key.
func (db *DB) PutState(key, value string) error {
	_, err := db.conn.Exec(`
		INSERT INTO workspace (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("store: put state %s: %w", key, err)
	}
	return nil
}

// DeleteState removes a workspace key.
func (db *DB) DeleteState(key string) error {
	if _, err := db.conn.Exec(`DELETE FROM workspace WHERE key = ?`, key); err != nil {
		return fmt.Errorf("store: delete state %s: %w", key, err)
	}
	return nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
