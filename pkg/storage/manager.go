package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	errs "redditsave/pkg/errors"
)

const (
	// MediaDir holds downloaded media files
	MediaDir = "media"
	// PostsDir holds one standalone page per archived post
	PostsDir = "posts"
)

// leftover suffixes written by interrupted downloads
var partialSuffixes = []string{".part", ".ytdl", ".tmp"}

// Manager owns the on-disk layout of one archive location
type Manager struct {
	root string
}

// NewManager validates that root is an existing directory and makes sure the
// media and posts subdirectories exist
func NewManager(root string) (*Manager, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeFilesystem, fmt.Sprintf("location %s is not accessible", root), err)
	}
	if !info.IsDir() {
		return nil, errs.New(errs.ErrorTypeFilesystem, fmt.Sprintf("location %s is not a directory", root))
	}

	for _, dir := range []string{MediaDir, PostsDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			return nil, errs.Wrap(errs.ErrorTypeFilesystem, fmt.Sprintf("failed to create %s directory", dir), err)
		}
	}

	return &Manager{root: root}, nil
}

// Root returns the archive location
func (m *Manager) Root() string {
	return m.root
}

// MediaDir returns the absolute-or-relative path of the media directory
func (m *Manager) MediaDir() string {
	return filepath.Join(m.root, MediaDir)
}

// PostsDir returns the path of the standalone post page directory
func (m *Manager) PostsDir() string {
	return filepath.Join(m.root, PostsDir)
}

// Path joins name onto the archive location
func (m *Manager) Path(name string) string {
	return filepath.Join(m.root, name)
}

// WritePage atomically writes an output page at the archive root
func (m *Manager) WritePage(name string, content string) error {
	return WriteFile(m.Path(name), []byte(content))
}

// WritePostPage atomically writes posts/{id}.html
func (m *Manager) WritePostPage(postID string, content string) error {
	return WriteFile(filepath.Join(m.PostsDir(), postID+".html"), []byte(content))
}

// SaveMedia atomically streams r into media/name
func (m *Manager) SaveMedia(r io.Reader, name string) (string, error) {
	path := filepath.Join(m.MediaDir(), name)
	if err := Save(r, path); err != nil {
		return "", err
	}
	return path, nil
}

// FindMedia returns the media files whose name starts with prefix, skipping
// partial downloads
func (m *Manager) FindMedia(prefix string) ([]string, error) {
	return FindByPrefix(m.MediaDir(), prefix)
}

// Save streams r into path through a temporary file in the same directory
// and renames it into place
func Save(r io.Reader, path string) error {
	dir := filepath.Dir(path)
	out, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errs.Wrap(errs.ErrorTypeFilesystem, "failed to create temporary file", err)
	}
	tempFile := out.Name()

	_, err = io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		return errs.Wrap(errs.ErrorTypeFilesystem, "failed to write data", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return errs.Wrap(errs.ErrorTypeFilesystem, "failed to close file", closeErr)
	}

	if err := os.Chmod(tempFile, 0644); err != nil {
		os.Remove(tempFile)
		return errs.Wrap(errs.ErrorTypeFilesystem, "failed to set file mode", err)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return errs.Wrap(errs.ErrorTypeFilesystem, "failed to rename temporary file", err)
	}

	return nil
}

// WriteFile atomically replaces path with data
func WriteFile(path string, data []byte) error {
	return Save(bytes.NewReader(data), path)
}

// FindByPrefix lists regular files in dir whose name starts with prefix,
// sorted by name, ignoring partial download leftovers
func FindByPrefix(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeFilesystem, "failed to read directory", err)
	}

	var matches []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || isPartial(name) {
			continue
		}
		matches = append(matches, filepath.Join(dir, name))
	}
	sort.Strings(matches)

	return matches, nil
}

func isPartial(name string) bool {
	for _, suffix := range partialSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
