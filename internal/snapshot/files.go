package snapshot

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/starford/laguz/internal/models"
)

// NoteFile is one Markdown file parsed out of a file or archive import.
// FolderName is the leading path segment inside an archive, empty otherwise.
type NoteFile struct {
	Title      string
	Content    string
	FolderName string
}

const unfiledBucket = "Unfiled"

var (
	h1Re         = regexp.MustCompile(`^#\s+(.+)$`)
	h1StripRe    = regexp.MustCompile(`^#\s+.+\n\n?`)
	unsafeCharRe = regexp.MustCompile(`[/\\?%*:|"<>]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// FromMarkdown parses a single .md file into a NoteFile. When the first line
// is an H1 heading it becomes the title and is stripped from the body;
// otherwise the filename minus its extension is the title.
func FromMarkdown(filename string, content []byte) NoteFile {
	body := string(content)
	title := strings.TrimSuffix(path.Base(filename), ".md")

	firstLine := body
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		firstLine = body[:i]
	}
	if m := h1Re.FindStringSubmatch(firstLine); m != nil {
		title = m[1]
		body = h1StripRe.ReplaceAllString(body, "")
	}

	return NoteFile{Title: title, Content: body}
}

// ToMarkdown renders a note as a standalone Markdown file with its title as
// an H1 heading.
func ToMarkdown(n models.Note) []byte {
	return []byte(fmt.Sprintf("# %s\n\n%s", n.Title, n.Content))
}

// ExportArchive writes every non-trashed note as a Markdown file into a zip
// bundle, grouped by folder name with untitled folders going to the
// "Unfiled" bucket.
func ExportArchive(w io.Writer, notes []models.Note, folders []models.Folder) error {
	folderNames := make(map[int64]string, len(folders))
	for _, f := range folders {
		folderNames[f.ID] = f.Name
	}

	zw := zip.NewWriter(w)
	for _, n := range notes {
		if n.IsTrashed {
			continue
		}
		bucket := unfiledBucket
		if n.FolderID != nil {
			if name, ok := folderNames[*n.FolderID]; ok {
				bucket = SanitizeFilename(name)
			}
		}
		entry, err := zw.Create(bucket + "/" + SanitizeFilename(n.Title) + ".md")
		if err != nil {
			return fmt.Errorf("snapshot: archive entry: %w", err)
		}
		if _, err := entry.Write(ToMarkdown(n)); err != nil {
			return fmt.Errorf("snapshot: archive write: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("snapshot: close archive: %w", err)
	}
	return nil
}

// ImportArchive reads every .md entry out of a zip bundle. The leading path
// segment, when present, is reported as the folder name for the caller to
// resolve against existing folders.
func ImportArchive(data []byte) ([]NoteFile, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("snapshot: open archive: %w", err)
	}

	var out []NoteFile
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() || !strings.HasSuffix(entry.Name, ".md") {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("snapshot: open entry %s: %w", entry.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("snapshot: read entry %s: %w", entry.Name, err)
		}

		nf := FromMarkdown(entry.Name, content)
		if parts := strings.Split(entry.Name, "/"); len(parts) > 1 {
			nf.FolderName = parts[0]
		}
		out = append(out, nf)
	}
	return out, nil
}

// SanitizeFilename replaces filesystem-unsafe characters with dashes,
// collapses whitespace to underscores, and truncates to 200 characters.
func SanitizeFilename(name string) string {
	s := unsafeCharRe.ReplaceAllString(name, "-")
	s = whitespaceRe.ReplaceAllString(s, "_")
	runes := []rune(s)
	if len(runes) > 200 {
		s = string(runes[:200])
	}
	return s
}
