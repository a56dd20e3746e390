package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlacklistCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lists", "blacklist.txt")

	b, err := LoadBlacklist(path)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Len())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestBlacklistRoundTripSorted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blacklist.txt")
	require.NoError(t, os.WriteFile(path, []byte("zz9\n\n  abc \nm12\n"), 0644))

	b, err := LoadBlacklist(path)
	require.NoError(t, err)
	assert.Equal(t, 3, b.Len())
	assert.True(t, b.Contains("abc"))
	assert.False(t, b.Contains("  abc "))

	assert.True(t, b.Add("b00"))
	assert.False(t, b.Add("abc"))
	assert.Equal(t, 1, b.Added())

	require.NoError(t, b.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc\nb00\nm12\nzz9\n", string(data))
}

func TestBlacklistInMemory(t *testing.T) {
	b, err := LoadBlacklist("")
	require.NoError(t, err)

	b.Add("x")
	assert.True(t, b.Contains("x"))
	assert.Equal(t, []string{"x"}, b.IDs())
	assert.NoError(t, b.Save())
	assert.Empty(t, b.Path())
}
