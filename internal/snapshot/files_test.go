package snapshot

import (
	"bytes"
	"testing"

	"github.com/starford/laguz/internal/models"
)

func TestFromMarkdown_H1Title(t *testing.T) {
	nf := FromMarkdown("meeting.md", []byte("# Q4 Planning\n\nAgenda items here."))
	if nf.Title != "Q4 Planning" {
		t.Errorf("title = %q", nf.Title)
	}
	if nf.Content != "Agenda items here." {
		t.Errorf("content = %q", nf.Content)
	}
}

func TestFromMarkdown_FilenameFallback(t *testing.T) {
	nf := FromMarkdown("notes/grocery-list.md", []byte("Milk\nEggs"))
	if nf.Title != "grocery-list" {
		t.Errorf("title = %q", nf.Title)
	}
	if nf.Content != "Milk\nEggs" {
		t.Errorf("content = %q", nf.Content)
	}
}

func TestFromMarkdown_H1NotOnFirstLine(t *testing.T) {
	body := "Intro line\n# Not A Title\ntext"
	nf := FromMarkdown("doc.md", []byte(body))
	if nf.Title != "doc" || nf.Content != body {
		t.Errorf("nf = %+v", nf)
	}
}

func TestToMarkdown(t *testing.T) {
	got := ToMarkdown(models.Note{Title: "Hello", Content: "World"})
	if string(got) != "# Hello\n\nWorld" {
		t.Errorf("markdown = %q", got)
	}
}

func TestMarkdownRoundTrip(t *testing.T) {
	n := models.Note{Title: "Plan", Content: "- [ ] task one\n- [x] task two"}
	nf := FromMarkdown("plan.md", ToMarkdown(n))
	if nf.Title != n.Title || nf.Content != n.Content {
		t.Errorf("round-trip: %+v", nf)
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	folderID := int64(10)
	notes := []models.Note{
		{ID: 1, Title: "In Work", Content: "body one", FolderID: &folderID},
		{ID: 2, Title: "Loose note", Content: "body two"},
		{ID: 3, Title: "Trashed", Content: "gone", IsTrashed: true},
	}
	folders := []models.Folder{{ID: 10, Name: "Work Stuff"}}

	var buf bytes.Buffer
	if err := ExportArchive(&buf, notes, folders); err != nil {
		t.Fatalf("ExportArchive: %v", err)
	}

	files, err := ImportArchive(buf.Bytes())
	if err != nil {
		t.Fatalf("ImportArchive: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2 (trashed skipped)", len(files))
	}

	byTitle := make(map[string]NoteFile)
	for _, f := range files {
		byTitle[f.Title] = f
	}

	inWork, ok := byTitle["In Work"]
	if !ok {
		t.Fatalf("missing In Work entry: %+v", files)
	}
	if inWork.FolderName != "Work_Stuff" {
		t.Errorf("folderName = %q, want sanitized folder", inWork.FolderName)
	}
	if inWork.Content != "body one" {
		t.Errorf("content = %q", inWork.Content)
	}

	loose, ok := byTitle["Loose note"]
	if !ok {
		t.Fatalf("missing Loose note entry")
	}
	if loose.FolderName != unfiledBucket {
		t.Errorf("folderName = %q, want %q", loose.FolderName, unfiledBucket)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"a/b\\c:d", "a-b-c-d"},
		{"what? 100%*", "what-_100--"},
		{"spaced  out\tname", "spaced_out_name"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	long := SanitizeFilename(string(bytes.Repeat([]byte("x"), 500)))
	if len(long) != 200 {
		t.Errorf("len = %d, want 200", len(long))
	}
}
