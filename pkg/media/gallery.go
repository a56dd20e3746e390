package media

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"redditsave/internal/downloader"
	errs "redditsave/pkg/errors"
	"redditsave/pkg/logger"
	"redditsave/pkg/retry"
)

// listing is the envelope reddit wraps around a post's JSON document
type listing []struct {
	Data struct {
		Children []struct {
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type galleryPost struct {
	MediaMetadata map[string]galleryMedia `json:"media_metadata"`
	GalleryData   *struct {
		Items []struct {
			MediaID string `json:"media_id"`
		} `json:"items"`
	} `json:"gallery_data"`
}

type galleryMedia struct {
	Status string `json:"status"`
	M      string `json:"m"`
	S      struct {
		U   string `json:"u"`
		GIF string `json:"gif"`
	} `json:"s"`
}

// galleryItem is one downloadable image of a gallery
type galleryItem struct {
	// Index is the 1-based position within the gallery
	Index int
	URL   string
	Ext   string
}

// decodeFirstPost extracts the first post object from a reddit listing document
func decodeFirstPost(body []byte, target interface{}) error {
	var doc listing
	if err := json.Unmarshal(body, &doc); err != nil {
		return errs.Wrap(errs.ErrorTypeParsing, "failed to parse listing", err)
	}
	if len(doc) == 0 || len(doc[0].Data.Children) == 0 {
		return errs.New(errs.ErrorTypeParsing, "listing has no post")
	}
	if err := json.Unmarshal(doc[0].Data.Children[0].Data, target); err != nil {
		return errs.Wrap(errs.ErrorTypeParsing, "failed to parse post data", err)
	}
	return nil
}

// parseGallery returns the gallery's resolvable items in display order
func parseGallery(body []byte) ([]galleryItem, error) {
	var post galleryPost
	if err := decodeFirstPost(body, &post); err != nil {
		return nil, err
	}
	if len(post.MediaMetadata) == 0 {
		return nil, nil
	}

	var order []string
	if post.GalleryData != nil && len(post.GalleryData.Items) > 0 {
		for _, item := range post.GalleryData.Items {
			order = append(order, item.MediaID)
		}
	} else {
		for id := range post.MediaMetadata {
			order = append(order, id)
		}
		sort.Strings(order)
	}

	var items []galleryItem
	for i, id := range order {
		meta, ok := post.MediaMetadata[id]
		if !ok || meta.M == "" {
			continue
		}

		url := meta.S.U
		if url == "" {
			url = meta.S.GIF
		}
		if url == "" {
			continue
		}

		mime := strings.Split(meta.M, "/")
		items = append(items, galleryItem{
			Index: i + 1,
			URL:   html.UnescapeString(url),
			Ext:   mime[len(mime)-1],
		})
	}

	return items, nil
}

// handleGallery downloads every image of a reddit gallery. Any item failure
// fails the whole gallery.
func (d *Dispatcher) handleGallery(ctx context.Context, t Target) Result {
	jsonURL := strings.TrimSuffix(t.Stripped, "/") + ".json"

	cfg := &retry.Config{
		MaxAttempts: d.opts.GalleryMaxAttempts,
		Backoff:     retry.Doubling(d.opts.GalleryBackoffBase),
		RetryIf:     retry.RateLimitedOnly,
		Logger:      d.logger,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			logger.LogRateLimit(d.logger, jsonURL, attempt, delay)
		},
	}

	body, err := retry.DoWithResult(ctx, func(ctx context.Context) ([]byte, error) {
		return d.client.GetBody(ctx, jsonURL)
	}, cfg)
	if err != nil {
		return failed(fmt.Errorf("failed to fetch gallery metadata: %w", err))
	}

	items, err := parseGallery(body)
	if err != nil {
		return failed(err)
	}
	if len(items) == 0 {
		return noMedia()
	}

	files := make([]string, 0, len(items))
	jobs := make([]downloader.Job, 0, len(items))
	for _, item := range items {
		name := GalleryFileName(t.Slug, t.Post.ID, item.Index, item.Ext)
		jobs = append(jobs, downloader.Job{Index: item.Index, URL: item.URL, Name: name})
		files = append(files, name)
	}

	pool := downloader.NewWorkerPool(d.opts.GalleryWorkers, func(ctx context.Context, url, name string) error {
		return d.download(ctx, url, name, false)
	}, d.logger)
	if err := pool.Run(ctx, jobs); err != nil {
		return failed(fmt.Errorf("gallery %w", err))
	}

	return fetched(files...)
}
