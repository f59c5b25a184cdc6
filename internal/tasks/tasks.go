// Package tasks extracts checklist tasks from note content and computes the
// task dashboard view. Tasks are derived on read and never persisted; the
// source line index is the mutation address for toggling.
package tasks

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/laguz/internal/models"
)

var (
	// checkboxRe matches "- [ ] text", "* [x] text", or a bare "[ ] text".
	checkboxRe = regexp.MustCompile(`^([-*]?\s*)\[([ xX])\]\s*(.*)$`)
	dueRe      = regexp.MustCompile(`@(\d{4}-\d{2}-\d{2})`)
	tagRe      = regexp.MustCompile(`#([A-Za-z0-9_-]+)`)
)

// Extract returns the tasks derived from the note's content, in line order.
// Re-parsing unmodified content always yields the same list.
func Extract(n models.Note) []models.Task {
	if n.Content == "" {
		return nil
	}

	var out []models.Task
	for i, line := range strings.Split(n.Content, "\n") {
		m := checkboxRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := m[3]

		var due string
		if dm := dueRe.FindStringSubmatch(text); dm != nil {
			due = dm[1]
		}

		var labels []string
		for _, tm := range tagRe.FindAllStringSubmatch(text, -1) {
			labels = append(labels, tm[1])
		}

		out = append(out, models.Task{
			ID:        fmt.Sprintf("%d-%d", n.ID, i),
			NoteID:    n.ID,
			NoteTitle: n.Title,
			Text:      text,
			DueDate:   due,
			Tags:      labels,
			Checked:   strings.EqualFold(m[2], "x"),
			Index:     i,
		})
	}
	return out
}

// ToggleLine flips the checkbox on the given line of content, preserving any
// list marker and indentation. It reports whether a toggle happened; when the
// addressed line no longer matches a checkbox pattern the content is returned
// unchanged.
func ToggleLine(content string, index int) (string, bool) {
	lines := strings.Split(content, "\n")
	if index < 0 || index >= len(lines) {
		return content, false
	}

	m := checkboxRe.FindStringSubmatch(lines[index])
	if m == nil {
		return content, false
	}

	marker := "x"
	if strings.EqualFold(m[2], "x") {
		marker = " "
	}
	lines[index] = m[1] + "[" + marker + "]" + lines[index][len(m[1])+3:]
	return strings.Join(lines, "\n"), true
}
