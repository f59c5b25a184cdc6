// Package views computes the visible note list: a pure function of the
// entity model plus transient UI state (filter, sort, search query).
package views

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/laguz/internal/models"
)

// FilterKind selects which subset of notes is visible.
type FilterKind string

const (
	FilterAll    FilterKind = "all"
	FilterPinned FilterKind = "pinned"
	FilterFolder FilterKind = "folder"
	FilterTag    FilterKind = "tag"
	FilterDate   FilterKind = "date"
	FilterTrash  FilterKind = "trash"
)

// Filter is the active sidebar selection. FolderID, Tag, and Day are only
// consulted for their corresponding kinds.
type Filter struct {
	Kind     FilterKind
	FolderID int64
	Tag      string
	Day      time.Time
}

// Sort selects the ordering of the visible list.
type Sort string

const (
	SortDateDesc  Sort = "dateDesc"
	SortDateAsc   Sort = "dateAsc"
	SortTitleAsc  Sort = "titleAsc"
	SortTitleDesc Sort = "titleDesc"
)

// Visible returns the filtered, searched, and sorted note list. Pinned notes
// float to the top of any sort except within the trash filter. Date sorts use
// the id (creation order); there is no last-modified field, so edits never
// move a note.
func Visible(notes []models.Note, f Filter, s Sort, query string) []models.Note {
	var result []models.Note
	for _, n := range notes {
		if matchesFilter(n, f) {
			result = append(result, n)
		}
	}

	if query != "" {
		q := strings.ToLower(query)
		filtered := result[:0]
		for _, n := range result {
			if matchesQuery(n, q) {
				filtered = append(filtered, n)
			}
		}
		result = filtered
	}

	var titles *collate.Collator
	if s == SortTitleAsc || s == SortTitleDesc {
		titles = collate.New(language.Und, collate.Loose)
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if f.Kind != FilterTrash {
			if a.IsPinned != b.IsPinned {
				return a.IsPinned
			}
		}
		switch s {
		case SortDateAsc:
			return a.ID < b.ID
		case SortTitleAsc:
			return titles.CompareString(a.Title, b.Title) < 0
		case SortTitleDesc:
			return titles.CompareString(b.Title, a.Title) < 0
		default: // dateDesc
			return a.ID > b.ID
		}
	})

	return result
}

func matchesFilter(n models.Note, f Filter) bool {
	switch f.Kind {
	case FilterTrash:
		return n.IsTrashed
	case FilterPinned:
		return n.IsPinned && !n.IsTrashed
	case FilterFolder:
		return !n.IsTrashed && n.FolderID != nil && *n.FolderID == f.FolderID
	case FilterTag:
		if n.IsTrashed {
			return false
		}
		for _, label := range n.Tags {
			if label == f.Tag {
				return true
			}
		}
		return false
	case FilterDate:
		if n.IsTrashed {
			return false
		}
		// The id is the creation timestamp; match on the calendar day.
		created := time.UnixMilli(n.ID).In(f.Day.Location())
		y1, m1, d1 := created.Date()
		y2, m2, d2 := f.Day.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	default:
		return !n.IsTrashed
	}
}

// matchesQuery does a case-insensitive substring match against title,
// content, and tag labels. q must already be lowercased.
func matchesQuery(n models.Note, q string) bool {
	if strings.Contains(strings.ToLower(n.Title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(n.Content), q) {
		return true
	}
	for _, label := range n.Tags {
		if strings.Contains(strings.ToLower(label), q) {
			return true
		}
	}
	return false
}
