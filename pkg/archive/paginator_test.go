package archive

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		posts     int
		comments  int
		pageSize  int
		wantPages int
	}{
		{"no page size", 5, 5, 0, 0},
		{"negative page size", 5, 5, -1, 0},
		{"empty corpus", 0, 0, 3, 0},
		{"exact fit", 6, 0, 3, 2},
		{"remainder", 7, 0, 3, 3},
		{"comments longer than posts", 2, 5, 2, 3},
		{"single page", 1, 1, 10, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts := items("p", tt.posts)
			comments := items("c", tt.comments)

			pages := Paginate(posts, comments, tt.pageSize)
			require.Len(t, pages, tt.wantPages)

			var gotPosts, gotComments []string
			for i, page := range pages {
				assert.Equal(t, i, page.Number)
				assert.Equal(t, i > 0, page.HasPrevious, "page %d previous", i)
				assert.Equal(t, i < len(pages)-1, page.HasNext, "page %d next", i)
				assert.LessOrEqual(t, len(page.Posts), tt.pageSize)
				assert.LessOrEqual(t, len(page.Comments), tt.pageSize)
				gotPosts = append(gotPosts, page.Posts...)
				gotComments = append(gotComments, page.Comments...)
			}

			if tt.wantPages > 0 {
				assert.Equal(t, posts, emptyIfNil(gotPosts))
				assert.Equal(t, comments, emptyIfNil(gotComments))
			}
		})
	}
}

func emptyIfNil(s []string) []string {
	if len(s) == 0 {
		return []string{}
	}
	return s
}

func TestPaginateSlicesKindsIndependently(t *testing.T) {
	pages := Paginate(items("p", 1), items("c", 4), 2)
	require.Len(t, pages, 2)

	assert.Equal(t, []string{"p0"}, pages[0].Posts)
	assert.Equal(t, []string{"c0", "c1"}, pages[0].Comments)
	assert.Empty(t, pages[1].Posts)
	assert.Equal(t, []string{"c2", "c3"}, pages[1].Comments)
}

func TestPageFileName(t *testing.T) {
	assert.Equal(t, "saved.html", PageFileName("saved.html", Unpaged))
	assert.Equal(t, "saved.0.html", PageFileName("saved.html", 0))
	assert.Equal(t, "spez.12.html", PageFileName("spez.html", 12))
	assert.Equal(t, "noext.3", PageFileName("noext", 3))
}

func TestUnpagedPage(t *testing.T) {
	page := UnpagedPage(items("p", 2), nil)
	assert.Equal(t, Unpaged, page.Number)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrevious)
	assert.Len(t, page.Posts, 2)
}
