// Package inbox watches a drop directory and turns Markdown files placed
// there into notes. Imported files are removed from the directory.
package inbox

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/laguz/internal/models"
)

// Importer consumes dropped Markdown files. It is implemented by the note
// service.
type Importer interface {
	ImportMarkdownFiles(ctx context.Context, files map[string][]byte, folderID *int64) ([]models.Note, error)
}

// settle is how long a file must stay quiet before it is imported, so a
// slow copy is not read half-written.
const settle = 200 * time.Millisecond

// Watch starts an fsnotify watcher on dir and processes dropped .md files
// until ctx is cancelled. Files already present at startup are imported
// first.
func Watch(ctx context.Context, dir string, imp Importer, logger *slog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("inbox: started", slog.String("dir", dir))

	sweep(ctx, dir, imp, logger)

	// pending holds files seen but not yet quiet for the settle window.
	pending := make(map[string]time.Time)
	ticker := time.NewTicker(settle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("inbox: stopped")
			return nil

		case <-ticker.C:
			now := time.Now()
			for path, last := range pending {
				if now.Sub(last) < settle {
					continue
				}
				delete(pending, path)
				importFile(ctx, path, imp, logger)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".md") {
				continue
			}
			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				pending[ev.Name] = time.Now()
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				delete(pending, ev.Name)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("inbox: error", slog.String("error", watchErr.Error()))
		}
	}
}

// sweep imports .md files already sitting in the drop directory.
func sweep(ctx context.Context, dir string, imp Importer, logger *slog.Logger) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("inbox: sweep failed", slog.String("error", err.Error()))
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		importFile(ctx, filepath.Join(dir, e.Name()), imp, logger)
	}
}

// importFile reads one dropped file, creates a note from it and removes the
// source. A file that vanished before the read is skipped silently.
func importFile(ctx context.Context, path string, imp Importer, logger *slog.Logger) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("inbox: read failed", slog.String("path", path), slog.String("error", err.Error()))
		}
		return
	}

	name := filepath.Base(path)
	if _, err := imp.ImportMarkdownFiles(ctx, map[string][]byte{name: data}, nil); err != nil {
		logger.Warn("inbox: import failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}

	if err := os.Remove(path); err != nil {
		logger.Warn("inbox: remove failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	logger.Info("inbox: imported", slog.String("file", name))
}
