package tasks

import (
	"reflect"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/starford/laguz/internal/models"
)

// genContent builds note content mixing checkbox lines and plain lines.
func genContent(t *rapid.T) string {
	lineCount := rapid.IntRange(1, 12).Draw(t, "lines")
	lines := make([]string, 0, lineCount)
	for i := 0; i < lineCount; i++ {
		text := rapid.StringMatching(`[a-z #@0-9_-]{0,30}`).Draw(t, "text")
		switch rapid.IntRange(0, 3).Draw(t, "kind") {
		case 0:
			lines = append(lines, "- [ ] "+text)
		case 1:
			lines = append(lines, "* [x] "+text)
		case 2:
			lines = append(lines, "[ ] "+text)
		default:
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

func TestToggleLine_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		content := genContent(t)
		index := rapid.IntRange(0, strings.Count(content, "\n")).Draw(t, "index")

		toggled, ok := ToggleLine(content, index)
		if !ok {
			if toggled != content {
				t.Fatalf("failed toggle mutated content")
			}
			return
		}

		// Toggling twice restores the original content.
		back, ok2 := ToggleLine(toggled, index)
		if !ok2 || back != content {
			t.Fatalf("toggle not self-inverse:\norig:   %q\ntwice:  %q", content, back)
		}

		// Only the checked flag of the addressed task changes.
		before := Extract(models.Note{ID: 1, Content: content})
		after := Extract(models.Note{ID: 1, Content: toggled})
		if len(before) != len(after) {
			t.Fatalf("task count changed: %d -> %d", len(before), len(after))
		}
		for i := range before {
			a, b := before[i], after[i]
			if a.Index == index {
				if a.Checked == b.Checked {
					t.Fatalf("addressed task %d did not flip", index)
				}
				a.Checked = b.Checked
			}
			if !reflect.DeepEqual(a, b) {
				t.Fatalf("unrelated task changed: %+v -> %+v", before[i], after[i])
			}
		}
	})
}
