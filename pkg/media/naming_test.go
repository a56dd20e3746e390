package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		permalink string
		want      string
	}{
		{"/r/pics/comments/abc123/a_cat_in_a_box/", "a_cat_in_a_box"},
		{"/r/pics/comments/abc123/a_cat_in_a_box", "a_cat_in_a_box"},
		{"/r/golang/comments/xyz/", "xyz"},
		{"", "post"},
		{"///", "post"},
	}

	for _, tt := range tests {
		t.Run(tt.permalink, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.permalink))
		})
	}
}

func TestDomainAndExtension(t *testing.T) {
	tests := []struct {
		url    string
		domain string
		ext    string
	}{
		{"https://i.redd.it/abc.png", "redd.it", "png"},
		{"HTTPS://I.IMGUR.COM/ABC.GIFV", "imgur.com", "gifv"},
		{"https://imgur.com/abc", "imgur.com", ""},
		{"https://www.reddit.com/gallery/xyz", "reddit.com", ""},
		{"https://i.reddituploads.com/abc.jpg?fit=max&h=1536", "reddituploads.com", "jpg"},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "youtube.com", ""},
		{"https://example.com:8443/video.MP4#t=10", "example.com", "mp4"},
		{"::not a url", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.domain, Domain(tt.url))
			assert.Equal(t, tt.ext, Extension(tt.url))
		})
	}
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "a_cat_abc.png", FileName("a_cat", "abc", "png"))
	assert.Equal(t, "a_cat_abc_3.jpg", GalleryFileName("a_cat", "abc", 3, "jpg"))
	assert.Equal(t, "https://a.b/c", StripQuery("https://a.b/c?x=1#y"))
}
