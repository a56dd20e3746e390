package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"redditsave/pkg/logger"
	"redditsave/pkg/models"
	"redditsave/pkg/storage"
)

// Writer renders pages and writes them into an archive location
type Writer struct {
	store    *storage.Manager
	renderer PageRenderer
	logger   logger.Logger
}

// NewWriter creates a page writer
func NewWriter(store *storage.Manager, renderer PageRenderer, log logger.Logger) *Writer {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Writer{store: store, renderer: renderer, logger: log}
}

// Write emits every page of posts and comments for mode plus the unpaged
// canonical page, and returns the number of numbered pages. Numbered pages
// left over from a larger earlier corpus are removed; with pageSize <= 0
// existing numbered pages are left untouched.
func (w *Writer) Write(mode models.Mode, posts, comments []string, pageSize int) (int, error) {
	base := mode.BaseFilename()
	pages := Paginate(posts, comments, pageSize)

	for _, page := range pages {
		name := PageFileName(base, page.Number)
		content := w.renderer.ListingPage(mode, page.Posts, page.Comments, page.Number, page.HasNext)
		if err := w.store.WritePage(name, content); err != nil {
			return 0, fmt.Errorf("failed to write page %s: %w", name, err)
		}
		w.logger.DebugWithFields("Page written", map[string]interface{}{
			"page":     name,
			"posts":    len(page.Posts),
			"comments": len(page.Comments),
		})
	}

	all := UnpagedPage(posts, comments)
	content := w.renderer.ListingPage(mode, all.Posts, all.Comments, Unpaged, false)
	if err := w.store.WritePage(base, content); err != nil {
		return 0, fmt.Errorf("failed to write page %s: %w", base, err)
	}

	if pageSize > 0 {
		if err := w.removeStale(base, len(pages)); err != nil {
			return 0, err
		}
	}

	return len(pages), nil
}

func (w *Writer) removeStale(base string, count int) error {
	pattern := pagePattern(base)

	entries, err := os.ReadDir(w.store.Root())
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}

	for _, entry := range entries {
		m := pattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < count {
			continue
		}
		if err := os.Remove(filepath.Join(w.store.Root(), entry.Name())); err != nil {
			return fmt.Errorf("failed to remove stale page %s: %w", entry.Name(), err)
		}
		w.logger.InfoWithFields("Removed stale page", map[string]interface{}{"page": entry.Name()})
	}
	return nil
}
