package inbox

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/laguz/internal/models"
)

type captureImporter struct {
	mu    sync.Mutex
	files map[string]string
}

func (c *captureImporter) ImportMarkdownFiles(_ context.Context, files map[string][]byte, _ *int64) ([]models.Note, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for name, data := range files {
		c.files[name] = string(data)
	}
	return nil, nil
}

func (c *captureImporter) get(name string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.files[name]
	return data, ok
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestWatch_ImportsDroppedFile(t *testing.T) {
	dir := t.TempDir()
	imp := &captureImporter{files: make(map[string]string)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, dir, imp, testLogger())

	// Give the watcher time to register before dropping the file.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "meeting.md")
	if err := os.WriteFile(path, []byte("# Meeting\n\nagenda"), 0o644); err != nil {
		t.Fatal(err)
	}

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		_, ok := imp.get("meeting.md")
		return ok
	}, "dropped file never imported")

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		_, err := os.Stat(path)
		return os.IsNotExist(err)
	}, "imported file not removed")

	if data, _ := imp.get("meeting.md"); data != "# Meeting\n\nagenda" {
		t.Errorf("imported content = %q", data)
	}
}

func TestWatch_SweepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.md")
	if err := os.WriteFile(path, []byte("left over"), 0o644); err != nil {
		t.Fatal(err)
	}

	imp := &captureImporter{files: make(map[string]string)}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, dir, imp, testLogger())

	eventually(t, 3*time.Second, 50*time.Millisecond, func() bool {
		_, ok := imp.get("old.md")
		return ok
	}, "pre-existing file never imported")
}

func TestWatch_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	imp := &captureImporter{files: make(map[string]string)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, dir, imp, testLogger())

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "photo.png"), []byte{0x89}, 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(500 * time.Millisecond)
	if _, ok := imp.get("photo.png"); ok {
		t.Error("non-markdown file imported")
	}
}
