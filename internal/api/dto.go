package api

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/noteservice"
	"github.com/starford/laguz/internal/views"
)

// createNoteRequest is the optional body for creating a note.
type createNoteRequest struct {
	FolderID *int64 `json:"folderId"`
}

// updateNoteRequest carries a partial note update. Absent fields are left
// untouched; folderId distinguishes absent from an explicit null, which
// moves the note out of its folder.
type updateNoteRequest struct {
	Title    *string         `json:"title"`
	Content  *string         `json:"content"`
	Tags     *[]string       `json:"tags"`
	FolderID json.RawMessage `json:"folderId"`
	Pinned   *bool           `json:"isPinned"`
	Trashed  *bool           `json:"isTrashed"`
	Date     *string         `json:"date"`
}

func (req updateNoteRequest) toPatch() (noteservice.NotePatch, error) {
	p := noteservice.NotePatch{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
		Pinned:  req.Pinned,
		Trashed: req.Trashed,
		Date:    req.Date,
	}
	if len(req.FolderID) > 0 {
		if string(req.FolderID) == "null" {
			p.Folder = &noteservice.FolderChange{}
		} else {
			id, err := strconv.ParseInt(string(req.FolderID), 10, 64)
			if err != nil {
				return p, err
			}
			p.Folder = &noteservice.FolderChange{ID: &id}
		}
	}
	return p, nil
}

// createFolderRequest is shared by folder and tag creation.
type createFolderRequest struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parentId"`
}

// noteListResponse wraps the derived visible list.
type noteListResponse struct {
	Notes []models.Note `json:"notes"`
	Total int           `json:"total"`
}

type taskListResponse struct {
	Tasks []models.Task `json:"tasks"`
}

// listQuery translates the view query parameters of GET /api/notes.
func listQuery(get func(string) string) (views.Filter, views.Sort, string, error) {
	f := views.Filter{Kind: views.FilterAll}
	if kind := get("filter"); kind != "" {
		f.Kind = views.FilterKind(kind)
	}
	switch f.Kind {
	case views.FilterAll, views.FilterPinned, views.FilterFolder,
		views.FilterTag, views.FilterDate, views.FilterTrash:
	default:
		return f, "", "", errBadFilter
	}

	if raw := get("folderId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, "", "", err
		}
		f.FolderID = id
	}
	f.Tag = get("tag")
	if raw := get("day"); raw != "" {
		// Calendar-day filtering is local-time, like the sidebar calendar.
		day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return f, "", "", err
		}
		f.Day = day
	}

	s := views.SortDateDesc
	if raw := get("sort"); raw != "" {
		s = views.Sort(raw)
	}
	return f, s, get("q"), nil
}
