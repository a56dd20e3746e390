package media

import (
	"context"
	"fmt"
	"html"
	"strings"

	errs "redditsave/pkg/errors"
)

type redditVideo struct {
	FallbackURL string `json:"fallback_url"`
}

type siblingMedia struct {
	RedditVideo *redditVideo `json:"reddit_video"`
}

// siblingPost is the subset of a post's JSON document used for media lookups
type siblingPost struct {
	SecureMedia *siblingMedia `json:"secure_media"`
	Media       *siblingMedia `json:"media"`
	Preview     *struct {
		Images []struct {
			Source struct {
				URL string `json:"url"`
			} `json:"source"`
		} `json:"images"`
	} `json:"preview"`
}

func (p *siblingPost) fallbackURL() string {
	for _, m := range []*siblingMedia{p.SecureMedia, p.Media} {
		if m != nil && m.RedditVideo != nil && m.RedditVideo.FallbackURL != "" {
			return m.RedditVideo.FallbackURL
		}
	}
	return ""
}

func (p *siblingPost) previewURL() string {
	if p.Preview == nil || len(p.Preview.Images) == 0 {
		return ""
	}
	return p.Preview.Images[0].Source.URL
}

// fetchSibling loads https://www.reddit.com{permalink}.json
func (d *Dispatcher) fetchSibling(ctx context.Context, permalink string) (*siblingPost, error) {
	if permalink == "" {
		return nil, errs.New(errs.ErrorTypeParsing, "post has no permalink")
	}

	url := RedditBaseURL + strings.TrimSuffix(permalink, "/") + ".json"
	body, err := d.client.GetBody(ctx, url)
	if err != nil {
		return nil, err
	}

	var post siblingPost
	if err := decodeFirstPost(body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// handleResolve follows a v.redd.it link to its fallback video rendition
func (d *Dispatcher) handleResolve(ctx context.Context, t Target) Result {
	post, err := d.fetchSibling(ctx, t.Post.Permalink)
	if err != nil {
		return failed(fmt.Errorf("failed to resolve %s: %w", t.URL, err))
	}

	videoURL := post.fallbackURL()
	if videoURL == "" {
		return failed(errs.New(errs.ErrorTypeNotFound, fmt.Sprintf("no video rendition for %s", t.URL)))
	}

	ext := Extension(videoURL)
	if ext == "" {
		ext = "mp4"
	}
	return d.directFetch(ctx, t, html.UnescapeString(videoURL), ext)
}

// handleUploadPreview downloads the preview image of a reddituploads post
func (d *Dispatcher) handleUploadPreview(ctx context.Context, t Target) Result {
	previewURL := t.Post.PreviewURL
	if previewURL == "" {
		post, err := d.fetchSibling(ctx, t.Post.Permalink)
		if err != nil {
			return failed(fmt.Errorf("failed to load preview for %s: %w", t.URL, err))
		}
		previewURL = post.previewURL()
	}
	if previewURL == "" {
		return failed(errs.New(errs.ErrorTypeNotFound, fmt.Sprintf("no preview for %s", t.URL)))
	}

	previewURL = html.UnescapeString(previewURL)
	return d.directFetch(ctx, t, previewURL, Extension(previewURL))
}
