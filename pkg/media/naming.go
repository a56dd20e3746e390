package media

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// Slug is the readable part of a media file name: the last non-empty segment
// of the post's permalink
func Slug(permalink string) string {
	segments := strings.Split(permalink, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i]
		}
	}
	return "post"
}

// StripQuery drops the query string and fragment from rawURL
func StripQuery(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

// Domain returns the last two labels of rawURL's host, lowercased
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	labels := strings.Split(strings.ToLower(u.Hostname()), ".")
	if len(labels) > 2 {
		labels = labels[len(labels)-2:]
	}
	return strings.Join(labels, ".")
}

// Extension returns the lowercased extension of rawURL's path without the dot
func Extension(rawURL string) string {
	u, err := url.Parse(StripQuery(rawURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
}

// FileName is the media file name for a single-file post
func FileName(slug, postID, ext string) string {
	return fmt.Sprintf("%s_%s.%s", slug, postID, ext)
}

// GalleryFileName is the media file name of the index-th (1-based) gallery item
func GalleryFileName(slug, postID string, index int, ext string) string {
	return fmt.Sprintf("%s_%s_%d.%s", slug, postID, index, ext)
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
