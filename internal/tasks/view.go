package tasks

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/laguz/internal/models"
)

// Sort selects the ordering of the task dashboard.
type Sort string

const (
	// SortSource orders by note creation order, then line number.
	SortSource Sort = "source"
	// SortNewest orders newest note first, then line number.
	SortNewest Sort = "dateDesc"
	// SortAlpha and SortAlphaDesc order by task text, locale-aware.
	SortAlpha     Sort = "alpha"
	SortAlphaDesc Sort = "alphaDesc"
	// SortDue and SortDueDesc order by due date. Tasks without a due date
	// sort last in either direction.
	SortDue     Sort = "due"
	SortDueDesc Sort = "dueDesc"
)

// ViewOptions are the transient dashboard controls. They are re-derived on
// each request and never persisted.
type ViewOptions struct {
	Tag           string
	Sort          Sort
	HideCompleted bool
}

// View flattens the tasks of every non-trashed note into one sequence and
// applies the dashboard filter, sort, and hide-completed toggle.
func View(notes []models.Note, opts ViewOptions) []models.Task {
	var out []models.Task
	for _, n := range notes {
		if n.IsTrashed {
			continue
		}
		out = append(out, Extract(n)...)
	}

	if opts.Tag != "" {
		filtered := out[:0]
		for _, t := range out {
			for _, label := range t.Tags {
				if label == opts.Tag {
					filtered = append(filtered, t)
					break
				}
			}
		}
		out = filtered
	}

	if opts.HideCompleted {
		filtered := out[:0]
		for _, t := range out {
			if !t.Checked {
				filtered = append(filtered, t)
			}
		}
		out = filtered
	}

	switch opts.Sort {
	case SortAlpha, SortAlphaDesc:
		texts := collate.New(language.Und, collate.Loose)
		desc := opts.Sort == SortAlphaDesc
		sort.SliceStable(out, func(i, j int) bool {
			if desc {
				i, j = j, i
			}
			return texts.CompareString(out[i].Text, out[j].Text) < 0
		})
	case SortDue, SortDueDesc:
		desc := opts.Sort == SortDueDesc
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DueDate, out[j].DueDate
			if a == "" {
				return false
			}
			if b == "" {
				return true
			}
			if desc {
				return a > b
			}
			return a < b
		})
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].NoteID != out[j].NoteID {
				return out[i].NoteID > out[j].NoteID
			}
			return out[i].Index < out[j].Index
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].NoteID != out[j].NoteID {
				return out[i].NoteID < out[j].NoteID
			}
			return out[i].Index < out[j].Index
		})
	}

	return out
}
