package media

import (
	"context"
	"fmt"
	"strings"

	errs "redditsave/pkg/errors"
)

// handleDirect downloads a URL whose extension already names a media file.
// Imgur gifv pages are fetched as their mp4 rendition.
func (d *Dispatcher) handleDirect(ctx context.Context, t Target) Result {
	url, ext := t.URL, t.Ext
	if t.Domain == "imgur.com" && ext == "gifv" {
		url = strings.TrimSuffix(t.Stripped, "."+ext) + ".mp4"
		ext = "mp4"
	}
	return d.directFetch(ctx, t, url, ext)
}

// handleProbe tries every image extension against i.imgur.com until one
// answers 2xx
func (d *Dispatcher) handleProbe(ctx context.Context, t Target) Result {
	base, err := imgurBase(t.Stripped)
	if err != nil {
		return failed(err)
	}

	var lastErr error
	for _, ext := range d.opts.ImageExtensions {
		if err := ctx.Err(); err != nil {
			return failed(err)
		}

		name := FileName(t.Slug, t.Post.ID, ext)
		if err := d.download(ctx, base+"."+ext, name, false); err != nil {
			lastErr = err
			d.logger.DebugWithFields("imgur probe missed", map[string]interface{}{
				"post_id":   t.Post.ID,
				"extension": ext,
				"error":     err.Error(),
			})
			continue
		}
		return fetched(name)
	}

	return failed(fmt.Errorf("no image extension matched %s: %w", base, lastErr))
}

// imgurBase maps any imgur page URL onto https://i.imgur.com/{id}
func imgurBase(stripped string) (string, error) {
	rest := stripped
	if i := strings.Index(rest, "//"); i >= 0 {
		rest = rest[i+2:]
	}
	slash := strings.Index(rest, "/")
	if slash < 0 || slash == len(rest)-1 {
		return "", errs.New(errs.ErrorTypeParsing, fmt.Sprintf("imgur URL %s has no image id", stripped))
	}

	id := strings.Trim(rest[slash+1:], "/")
	if dot := strings.LastIndex(id, "."); dot > strings.LastIndex(id, "/") {
		id = id[:dot]
	}
	return ImgurDirectURL + "/" + id, nil
}
