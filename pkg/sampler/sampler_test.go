package sampler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redditsave/pkg/logger"
)

func writePage(t *testing.T, path, title string, ids ...string) {
	t.Helper()
	var posts []string
	for _, id := range ids {
		posts = append(posts, fmt.Sprintf(
			`<div class="post" id="%s"><h2>%s</h2><img src="media/%s.png"/><video><source src="https://cdn.example/%s.mp4"/></video><!--postend--></div>`,
			id, id, id, id))
	}
	content := "<html><head><title>" + title + "</title><style>.post{}</style></head><body>" +
		strings.Join(posts, "\n") + "</body></html>"
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestSampleAcrossPages(t *testing.T) {
	root := t.TempDir()
	saved := filepath.Join(root, "_save", "saved.html")
	upvoted := filepath.Join(root, "_updoot", "upvoted.html")
	writePage(t, saved, "Saved", "s1", "s2", "s3", "s4")
	writePage(t, upvoted, "Upvoted", "u1", "u2")

	log := logger.NewTestLogger()
	output := filepath.Join(root, DefaultOutput)

	n, err := New(log).Sample(Options{
		Pages:  []string{saved, upvoted},
		Size:   3,
		Output: output,
		Seed:   42,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "<title>Saved</title>")
	assert.NotContains(t, content, "<title>Upvoted</title>")
	assert.Equal(t, 5, strings.Count(content, `class="post"`))
	assert.Equal(t, 2, strings.Count(content, `src="_updoot/media/`))
	assert.Equal(t, 3, strings.Count(content, `src="_save/media/`))
	assert.Contains(t, content, `src="https://cdn.example/`)
	assert.True(t, log.HasMessage("Sample written"))
}

func TestSampleIsReproducibleWithSeed(t *testing.T) {
	root := t.TempDir()
	page := filepath.Join(root, "saved.html")
	writePage(t, page, "Saved", "a", "b", "c", "d", "e", "f")

	run := func(output string) string {
		_, err := New(nil).Sample(Options{Pages: []string{page}, Size: 3, Output: output, Seed: 7})
		require.NoError(t, err)
		data, err := os.ReadFile(output)
		require.NoError(t, err)
		return string(data)
	}

	first := run(filepath.Join(root, "one.html"))
	second := run(filepath.Join(root, "two.html"))
	assert.Equal(t, first, second)
	assert.Contains(t, first, `src="media/`)
}

func TestSampleDefaultOutput(t *testing.T) {
	root := t.TempDir()
	page := filepath.Join(root, "saved.html")
	writePage(t, page, "Saved", "a")

	n, err := New(nil).Sample(Options{Pages: []string{page}, Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, filepath.Join(root, DefaultOutput))
}

func TestSampleErrors(t *testing.T) {
	_, err := New(nil).Sample(Options{Size: 1})
	assert.Error(t, err)

	_, err = New(nil).Sample(Options{Pages: []string{"x.html"}})
	assert.Error(t, err)

	_, err = New(nil).Sample(Options{Pages: []string{filepath.Join(t.TempDir(), "missing.html")}, Size: 1})
	assert.Error(t, err)
}
