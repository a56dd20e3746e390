package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "redditsave/pkg/errors"
)

func TestNewManagerCreatesLayout(t *testing.T) {
	root := t.TempDir()

	manager, err := NewManager(root)
	require.NoError(t, err)

	for _, dir := range []string{manager.MediaDir(), manager.PostsDir()} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.Equal(t, filepath.Join(root, "saved.html"), manager.Path("saved.html"))
}

func TestNewManagerRejectsBadLocation(t *testing.T) {
	root := t.TempDir()

	_, err := NewManager(filepath.Join(root, "missing"))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrorTypeFilesystem))

	file := filepath.Join(root, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = NewManager(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestSaveMediaIsAtomic(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	data := []byte("test image data")
	path, err := manager.SaveMedia(bytes.NewReader(data), "cat_abc.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(manager.MediaDir(), "cat_abc.jpg"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, content)

	entries, err := os.ReadDir(manager.MediaDir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files should remain")
}

func TestSaveFailureLeavesExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.html")
	require.NoError(t, WriteFile(path, []byte("old")))

	err := Save(failingReader{}, path)
	require.Error(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWritePages(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, manager.WritePage("saved.0.html", "<html>0</html>"))
	require.NoError(t, manager.WritePostPage("abc", "<html>post</html>"))

	content, err := os.ReadFile(manager.Path("saved.0.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>0</html>", string(content))

	content, err = os.ReadFile(filepath.Join(manager.PostsDir(), "abc.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>post</html>", string(content))
}

func TestFindByPrefix(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"clip_abc.mp4",
		"clip_abc.f137.mp4.part",
		"clip_abc.mp4.ytdl",
		"clip_abd.mp4",
		"other_abc.mp4",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "clip_abc_dir"), 0755))

	matches, err := FindByPrefix(dir, "clip_abc")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "clip_abc.mp4")}, matches)

	matches, err = FindByPrefix(dir, "missing")
	require.NoError(t, err)
	assert.Empty(t, matches)

	_, err = FindByPrefix(filepath.Join(dir, "nope"), "x")
	assert.Error(t, err)
}

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, &os.PathError{Op: "read", Path: strings.Repeat("x", 1), Err: os.ErrClosed}
}
