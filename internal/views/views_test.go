package views

import (
	"testing"
	"time"

	"github.com/starford/laguz/internal/models"
)

func ids(notes []models.Note) []int64 {
	out := make([]int64, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func equalIDs(a []int64, b ...int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestVisible_Filters(t *testing.T) {
	folder := int64(7)
	notes := []models.Note{
		{ID: 1, Title: "plain"},
		{ID: 2, Title: "pinned", IsPinned: true},
		{ID: 3, Title: "in folder", FolderID: &folder},
		{ID: 4, Title: "tagged", Tags: []string{"work"}},
		{ID: 5, Title: "trashed", IsTrashed: true},
	}

	tests := []struct {
		name   string
		filter Filter
		want   []int64
	}{
		{"all excludes trash", Filter{Kind: FilterAll}, []int64{2, 4, 3, 1}},
		{"pinned", Filter{Kind: FilterPinned}, []int64{2}},
		{"folder", Filter{Kind: FilterFolder, FolderID: 7}, []int64{3}},
		{"tag", Filter{Kind: FilterTag, Tag: "work"}, []int64{4}},
		{"trash", Filter{Kind: FilterTrash}, []int64{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Visible(notes, tt.filter, SortDateDesc, ""))
			if !equalIDs(got, tt.want...) {
				t.Errorf("ids = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisible_DateFilter(t *testing.T) {
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
	onDay := time.Date(2026, 3, 14, 15, 30, 0, 0, time.Local).UnixMilli()
	offDay := time.Date(2026, 3, 15, 0, 0, 1, 0, time.Local).UnixMilli()

	notes := []models.Note{
		{ID: onDay, Title: "same day"},
		{ID: offDay, Title: "next day"},
	}

	got := Visible(notes, Filter{Kind: FilterDate, Day: day}, SortDateDesc, "")
	if len(got) != 1 || got[0].ID != onDay {
		t.Errorf("date filter matched %v", ids(got))
	}
}

func TestVisible_SearchAfterFilter(t *testing.T) {
	notes := []models.Note{
		{ID: 1, Title: "Meeting notes", Content: "roadmap"},
		{ID: 2, Title: "Groceries", Content: "Milk and ROADMAP stickers"},
		{ID: 3, Title: "Trashed roadmap", IsTrashed: true},
		{ID: 4, Title: "Tagged", Tags: []string{"roadmap-q4"}},
	}

	got := Visible(notes, Filter{Kind: FilterAll}, SortDateAsc, "roadmap")
	if !equalIDs(ids(got), 1, 2, 4) {
		t.Errorf("search ids = %v, want [1 2 4]", ids(got))
	}
}

func TestVisible_TitleSortLocaleAware(t *testing.T) {
	notes := []models.Note{
		{ID: 1, Title: "banana"},
		{ID: 2, Title: "Apple"},
		{ID: 3, Title: "cherry"},
	}

	asc := Visible(notes, Filter{Kind: FilterAll}, SortTitleAsc, "")
	if asc[0].Title != "Apple" || asc[1].Title != "banana" || asc[2].Title != "cherry" {
		t.Errorf("titleAsc = %v", []string{asc[0].Title, asc[1].Title, asc[2].Title})
	}

	desc := Visible(notes, Filter{Kind: FilterAll}, SortTitleDesc, "")
	if desc[0].Title != "cherry" || desc[2].Title != "Apple" {
		t.Errorf("titleDesc = %v", []string{desc[0].Title, desc[1].Title, desc[2].Title})
	}
}

func TestVisible_PinnedFloat(t *testing.T) {
	notes := []models.Note{
		{ID: 3, Title: "c"},
		{ID: 2, Title: "b", IsPinned: true},
		{ID: 1, Title: "a"},
	}

	got := ids(Visible(notes, Filter{Kind: FilterAll}, SortDateDesc, ""))
	if !equalIDs(got, 2, 3, 1) {
		t.Errorf("pinned did not float: %v", got)
	}

	// Pins do not float inside the trash filter.
	trashed := []models.Note{
		{ID: 3, Title: "c", IsTrashed: true},
		{ID: 2, Title: "b", IsTrashed: true, IsPinned: true},
	}
	got = ids(Visible(trashed, Filter{Kind: FilterTrash}, SortDateDesc, ""))
	if !equalIDs(got, 3, 2) {
		t.Errorf("trash order = %v, want [3 2]", got)
	}
}
