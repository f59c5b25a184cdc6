package noteservice

import (
	"bytes"
	"context"
	"testing"

	"github.com/starford/laguz/internal/idgen"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/snapshot"
	"github.com/starford/laguz/internal/testutil"
)

func TestImport_CleanMerge(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	local, _ := svc.CreateNote(ctx, nil)
	content := "already here"
	local, _ = svc.UpdateNote(ctx, local.ID, NotePatch{Content: &content})

	incoming := models.Note{ID: local.ID + 1, Title: "Fresh", Content: "from elsewhere"}
	data, err := snapshot.Export([]models.Note{*local, incoming}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	res, err := svc.Import(ctx, data)
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 1 || res.Skipped != 1 || len(res.Conflicts) != 0 {
		t.Errorf("result = %+v", res)
	}

	got, _ := svc.NoteByID(local.ID)
	if got.Content != "already here" {
		t.Errorf("identical import altered local note: %q", got.Content)
	}
	if !svc.HasNote(incoming.ID) {
		t.Errorf("new note not imported")
	}
}

func TestImport_Conflict(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	local, _ := svc.CreateNote(ctx, nil)
	x := "x"
	local, _ = svc.UpdateNote(ctx, local.ID, NotePatch{Content: &x})

	imported := *local
	imported.Content = "y"
	data, err := snapshot.Export([]models.Note{imported}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	res, err := svc.Import(ctx, data)
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 0 || len(res.Conflicts) != 1 {
		t.Fatalf("result = %+v", res)
	}
	c := res.Conflicts[0]
	if c.Local.Content != "x" || c.Imported.Content != "y" {
		t.Errorf("conflict = %+v", c)
	}

	// Until resolved, the local copy wins by default.
	got, _ := svc.NoteByID(local.ID)
	if got.Content != "x" {
		t.Errorf("unresolved conflict mutated local note: %q", got.Content)
	}
}

func TestResolveConflict_KeepImported(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	local, _ := svc.CreateNote(ctx, nil)
	x := "x"
	local, _ = svc.UpdateNote(ctx, local.ID, NotePatch{Content: &x})

	imported := *local
	imported.Content = "y"
	if err := svc.ResolveConflict(ctx, imported, snapshot.KeepImported); err != nil {
		t.Fatal(err)
	}

	got, _ := svc.NoteByID(local.ID)
	if got.Content != "y" {
		t.Errorf("content = %q, want imported version", got.Content)
	}
	if len(svc.Notes()) != 1 {
		t.Errorf("keep_imported duplicated the note")
	}
}

func TestResolveConflict_KeepLocal(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	local, _ := svc.CreateNote(ctx, nil)
	x := "x"
	local, _ = svc.UpdateNote(ctx, local.ID, NotePatch{Content: &x})

	imported := *local
	imported.Content = "y"
	if err := svc.ResolveConflict(ctx, imported, snapshot.KeepLocal); err != nil {
		t.Fatal(err)
	}

	got, _ := svc.NoteByID(local.ID)
	if got.Content != "x" {
		t.Errorf("content = %q, want local version", got.Content)
	}
}

func TestResolveConflict_KeepBoth(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	local, _ := svc.CreateNote(ctx, nil)
	title, x := "Meeting", "x"
	local, _ = svc.UpdateNote(ctx, local.ID, NotePatch{Title: &title, Content: &x})

	imported := *local
	imported.Content = "y"
	if err := svc.ResolveConflict(ctx, imported, snapshot.KeepBoth); err != nil {
		t.Fatal(err)
	}

	notes := svc.Notes()
	if len(notes) != 2 {
		t.Fatalf("notes = %d, want 2", len(notes))
	}

	got, _ := svc.NoteByID(local.ID)
	if got.Content != "x" || got.Title != "Meeting" {
		t.Errorf("local copy changed: %+v", got)
	}

	var copied *models.Note
	for i := range notes {
		if notes[i].ID != local.ID {
			copied = &notes[i]
		}
	}
	if copied == nil {
		t.Fatal("imported copy missing")
	}
	if copied.Title != "Meeting (Imported)" || copied.Content != "y" {
		t.Errorf("copy = %+v", copied)
	}
}

func TestResolveConflict_BadChoice(t *testing.T) {
	svc := testService(t)
	if err := svc.ResolveConflict(context.Background(), models.Note{ID: 1}, snapshot.Resolution("discard")); err == nil {
		t.Error("expected error for unknown resolution")
	}
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := testService(t)
	ctx := context.Background()

	folder, _ := src.CreateFolder(ctx, "Work", nil)
	_, _ = src.CreateTag(ctx, "planning", nil)
	n, _ := src.CreateNote(ctx, &folder.ID)
	title, content := "Roadmap", "Q3 milestones"
	tags := []string{"planning"}
	_, _ = src.UpdateNote(ctx, n.ID, NotePatch{Title: &title, Content: &content, Tags: &tags})

	data, err := src.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}

	dst := NewService(testutil.TestStore(t), idgen.New(), nil)
	if err := dst.Load(ctx); err != nil {
		t.Fatal(err)
	}
	res, err := dst.Import(ctx, data)
	if err != nil {
		t.Fatal(err)
	}
	if res.Imported != 1 || len(res.Conflicts) != 0 {
		t.Errorf("result = %+v", res)
	}

	got, err := dst.NoteByID(n.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Roadmap" || got.Content != "Q3 milestones" {
		t.Errorf("note = %+v", got)
	}
	if got.FolderID == nil || *got.FolderID != folder.ID {
		t.Errorf("folder id = %v", got.FolderID)
	}
	if len(dst.Folders()) != 1 || len(dst.Tags()) != 1 {
		t.Errorf("metadata: %d folders, %d tags", len(dst.Folders()), len(dst.Tags()))
	}
}

func TestImport_RejectsMalformed(t *testing.T) {
	svc := testService(t)
	if _, err := svc.Import(context.Background(), []byte(`{"version":1,"notes":[]}`)); err == nil {
		t.Error("expected error for snapshot missing arrays")
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	src := testService(t)
	ctx := context.Background()

	folder, _ := src.CreateFolder(ctx, "Work", nil)
	n, _ := src.CreateNote(ctx, &folder.ID)
	title, content := "Standup", "notes from today"
	_, _ = src.UpdateNote(ctx, n.ID, NotePatch{Title: &title, Content: &content})

	var buf bytes.Buffer
	if err := src.ExportArchive(&buf); err != nil {
		t.Fatal(err)
	}

	dst := testService(t)
	dstFolder, _ := dst.CreateFolder(ctx, "Work", nil)
	notes, err := dst.ImportArchive(ctx, buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 {
		t.Fatalf("imported %d notes", len(notes))
	}
	if notes[0].Title != "Standup" || notes[0].Content != "notes from today" {
		t.Errorf("note = %+v", notes[0])
	}

	// The entry's leading path segment matched the existing folder by name.
	if notes[0].FolderID == nil || *notes[0].FolderID != dstFolder.ID {
		t.Errorf("folder id = %v, want %d", notes[0].FolderID, dstFolder.ID)
	}
}

func TestImportArchive_UnknownFolderStaysUnfiled(t *testing.T) {
	src := testService(t)
	ctx := context.Background()

	folder, _ := src.CreateFolder(ctx, "Private", nil)
	n, _ := src.CreateNote(ctx, &folder.ID)
	title := "Journal"
	_, _ = src.UpdateNote(ctx, n.ID, NotePatch{Title: &title})

	var buf bytes.Buffer
	if err := src.ExportArchive(&buf); err != nil {
		t.Fatal(err)
	}

	dst := testService(t)
	notes, err := dst.ImportArchive(ctx, buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].FolderID != nil {
		t.Errorf("notes = %+v", notes)
	}
}
