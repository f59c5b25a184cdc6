package tasks

import (
	"reflect"
	"testing"

	"github.com/starford/laguz/internal/models"
)

func TestExtract_Basic(t *testing.T) {
	n := models.Note{
		ID:    1700000000000,
		Title: "Sprint",
		Content: "# Sprint\n" +
			"- [ ] ship release @2026-09-15 #work\n" +
			"plain text line\n" +
			"* [x] review PR #work #urgent\n" +
			"[ ] bare checkbox\n",
	}

	got := Extract(n)
	if len(got) != 3 {
		t.Fatalf("len(tasks) = %d, want 3", len(got))
	}

	first := got[0]
	if first.ID != "1700000000000-1" || first.Index != 1 {
		t.Errorf("first task id/index = %s/%d", first.ID, first.Index)
	}
	if first.Text != "ship release @2026-09-15 #work" {
		t.Errorf("text = %q", first.Text)
	}
	if first.DueDate != "2026-09-15" {
		t.Errorf("dueDate = %q", first.DueDate)
	}
	if !reflect.DeepEqual(first.Tags, []string{"work"}) {
		t.Errorf("tags = %v", first.Tags)
	}
	if first.Checked {
		t.Errorf("first task should be unchecked")
	}

	second := got[1]
	if !second.Checked || !reflect.DeepEqual(second.Tags, []string{"work", "urgent"}) {
		t.Errorf("second task = %+v", second)
	}

	if got[2].Index != 4 || got[2].Text != "bare checkbox" {
		t.Errorf("third task = %+v", got[2])
	}
}

func TestExtract_Idempotent(t *testing.T) {
	n := models.Note{ID: 5, Content: "- [ ] a @2026-01-01\n- [x] b #x\n"}
	a := Extract(n)
	b := Extract(n)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated extraction differs:\n%+v\n%+v", a, b)
	}
}

func TestExtract_EmptyContent(t *testing.T) {
	if got := Extract(models.Note{ID: 1}); got != nil {
		t.Errorf("tasks from empty content = %v", got)
	}
}

func TestToggleLine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		index   int
		want    string
		ok      bool
	}{
		{
			name:    "check with dash marker",
			content: "- [ ] task",
			index:   0,
			want:    "- [x] task",
			ok:      true,
		},
		{
			name:    "uncheck uppercase",
			content: "* [X] done",
			index:   0,
			want:    "* [ ] done",
			ok:      true,
		},
		{
			name:    "preserves indentation",
			content: "-  [ ] indented",
			index:   0,
			want:    "-  [x] indented",
			ok:      true,
		},
		{
			name:    "non-checkbox line is silent noop",
			content: "just text",
			index:   0,
			want:    "just text",
			ok:      false,
		},
		{
			name:    "out of range is silent noop",
			content: "- [ ] task",
			index:   3,
			want:    "- [ ] task",
			ok:      false,
		},
		{
			name:    "only addressed line changes",
			content: "- [ ] one\n- [ ] two",
			index:   1,
			want:    "- [ ] one\n- [x] two",
			ok:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToggleLine(tt.content, tt.index)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ToggleLine = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestToggleLine_SelfInverse(t *testing.T) {
	content := "# Plan\n- [ ] one\n* [x] two\n[ ] three"
	for index := 1; index <= 3; index++ {
		once, ok := ToggleLine(content, index)
		if !ok {
			t.Fatalf("line %d did not toggle", index)
		}
		twice, _ := ToggleLine(once, index)
		if twice != content {
			t.Errorf("double toggle of line %d changed content:\n%q\n%q", index, content, twice)
		}
	}
}

func TestView_FilterSortHide(t *testing.T) {
	notes := []models.Note{
		{ID: 2, Title: "B", Content: "- [ ] bravo @2026-02-01 #work\n- [x] done #work"},
		{ID: 1, Title: "A", Content: "- [ ] alpha\n- [ ] zulu @2026-01-01"},
		{ID: 3, Title: "T", IsTrashed: true, Content: "- [ ] hidden"},
	}

	all := View(notes, ViewOptions{})
	if len(all) != 4 {
		t.Fatalf("len = %d, want 4 (trashed excluded)", len(all))
	}
	// Source order: note 1 lines, then note 2 lines.
	if all[0].Text != "alpha" || all[2].NoteID != 2 {
		t.Errorf("source order wrong: %+v", all)
	}

	work := View(notes, ViewOptions{Tag: "work"})
	if len(work) != 2 {
		t.Errorf("tag filter: len = %d, want 2", len(work))
	}

	open := View(notes, ViewOptions{Tag: "work", HideCompleted: true})
	if len(open) != 1 || open[0].Text != "bravo @2026-02-01 #work" {
		t.Errorf("hide completed: %+v", open)
	}

	alpha := View(notes, ViewOptions{Sort: SortAlpha})
	if alpha[0].Text != "alpha" || alpha[1].Text != "bravo @2026-02-01 #work" {
		t.Errorf("alpha order: %+v", alpha)
	}

	due := View(notes, ViewOptions{Sort: SortDue})
	if due[0].Text != "zulu @2026-01-01" {
		t.Errorf("due order first = %q", due[0].Text)
	}
	// Tasks without due dates sort last.
	for _, task := range due[len(due)-2:] {
		if task.DueDate != "" {
			t.Errorf("dated task %q after undated ones", task.Text)
		}
	}
}

func TestView_DescendingSorts(t *testing.T) {
	notes := []models.Note{
		{ID: 1, Title: "A", Content: "- [ ] alpha\n- [ ] zulu @2026-01-01"},
		{ID: 2, Title: "B", Content: "- [ ] bravo @2026-02-01\n- [x] mike"},
	}

	newest := View(notes, ViewOptions{Sort: SortNewest})
	if newest[0].NoteID != 2 || newest[0].Index != 0 {
		t.Errorf("newest first = note %d line %d", newest[0].NoteID, newest[0].Index)
	}
	// Lines within a note keep source order even when notes are reversed.
	if newest[1].Text != "mike" || newest[2].NoteID != 1 {
		t.Errorf("newest order: %+v", newest)
	}

	alpha := View(notes, ViewOptions{Sort: SortAlphaDesc})
	if alpha[0].Text != "zulu @2026-01-01" || alpha[len(alpha)-1].Text != "alpha" {
		t.Errorf("alphaDesc order: %+v", alpha)
	}

	due := View(notes, ViewOptions{Sort: SortDueDesc})
	if due[0].DueDate != "2026-02-01" || due[1].DueDate != "2026-01-01" {
		t.Errorf("dueDesc order: %+v", due)
	}
	// Undated tasks stay last regardless of direction.
	for _, task := range due[2:] {
		if task.DueDate != "" {
			t.Errorf("dated task %q after undated ones", task.Text)
		}
	}
}
