package archive

import (
	"fmt"
	"strings"
)

// Unpaged is the page number of the canonical page holding everything
const Unpaged = -1

// Page is one output page of the archive
type Page struct {
	Number      int
	Posts       []string
	Comments    []string
	HasPrevious bool
	HasNext     bool
}

// Paginate splits posts and comments into pages of pageSize items each.
// Posts and comments are sliced independently, so a page may hold one kind
// only. pageSize <= 0 yields no pages.
func Paginate(posts, comments []string, pageSize int) []Page {
	if pageSize <= 0 {
		return nil
	}

	longest := max(len(posts), len(comments))
	count := (longest + pageSize - 1) / pageSize

	pages := make([]Page, 0, count)
	for i := 0; i < count; i++ {
		pages = append(pages, Page{
			Number:      i,
			Posts:       window(posts, i, pageSize),
			Comments:    window(comments, i, pageSize),
			HasPrevious: i > 0,
			HasNext:     i < count-1,
		})
	}
	return pages
}

// UnpagedPage holds the full corpus
func UnpagedPage(posts, comments []string) Page {
	return Page{Number: Unpaged, Posts: posts, Comments: comments}
}

func window(items []string, page, size int) []string {
	start := page * size
	if start >= len(items) {
		return nil
	}
	end := min(start+size, len(items))
	return items[start:end]
}

// PageFileName returns the file name of page number for base, e.g.
// "saved.html" and 2 give "saved.2.html"
func PageFileName(base string, number int) string {
	if number == Unpaged {
		return base
	}
	name, ext := splitBase(base)
	return fmt.Sprintf("%s.%d%s", name, number, ext)
}

func splitBase(base string) (string, string) {
	if i := strings.LastIndex(base, "."); i > 0 {
		return base[:i], base[i:]
	}
	return base, ""
}
