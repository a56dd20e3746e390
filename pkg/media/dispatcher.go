package media

import (
	"context"
	"fmt"
	"strings"
	"time"

	"redditsave/pkg/config"
	errs "redditsave/pkg/errors"
	"redditsave/pkg/logger"
	"redditsave/pkg/models"
	"redditsave/pkg/storage"
)

const (
	// RedditBaseURL is prefixed to permalinks to reach a post's JSON document
	RedditBaseURL = "https://www.reddit.com"
	// ImgurDirectURL serves imgur images by id plus extension
	ImgurDirectURL = "https://i.imgur.com"
)

// Options tunes routing and strategy behaviour
type Options struct {
	ImageExtensions    []string
	VideoExtensions    []string
	Platforms          []string
	DeadHosts          []string
	GalleryBackoffBase time.Duration
	GalleryMaxAttempts int
	GalleryWorkers     int
}

// OptionsFromConfig copies the media section of the configuration
func OptionsFromConfig(cfg config.MediaConfig) Options {
	return Options{
		ImageExtensions:    cfg.ImageExtensions,
		VideoExtensions:    cfg.VideoExtensions,
		Platforms:          cfg.Platforms,
		DeadHosts:          cfg.DeadHosts,
		GalleryBackoffBase: cfg.GalleryBackoffBase,
		GalleryMaxAttempts: cfg.GalleryMaxAttempts,
		GalleryWorkers:     cfg.GalleryWorkers,
	}
}

// Target is a post prepared for routing
type Target struct {
	Post *models.Post
	// URL is the post's external link as given
	URL string
	// Stripped is URL without query string
	Stripped string
	// Domain is the last two host labels, lowercased
	Domain string
	// Ext is the lowercased path extension without the dot
	Ext string
	// Slug is the readable file name stem taken from the permalink
	Slug string
}

// NewTarget derives the routing keys for post
func NewTarget(post *models.Post) Target {
	return Target{
		Post:     post,
		URL:      post.URL,
		Stripped: StripQuery(post.URL),
		Domain:   Domain(post.URL),
		Ext:      Extension(post.URL),
		Slug:     Slug(post.Permalink),
	}
}

// Strategy is one entry of the routing table
type Strategy struct {
	Name   string
	Match  func(t Target) bool
	Handle func(ctx context.Context, t Target) Result
}

// Dispatcher routes posts to the first matching strategy and runs it
type Dispatcher struct {
	client     *Client
	store      *storage.Manager
	extractor  Extractor
	opts       Options
	logger     logger.Logger
	strategies []Strategy
}

// NewDispatcher builds the routing table over the given collaborators
func NewDispatcher(client *Client, store *storage.Manager, extractor Extractor, opts Options, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if opts.GalleryMaxAttempts <= 0 {
		opts.GalleryMaxAttempts = 1
	}

	d := &Dispatcher{
		client:    client,
		store:     store,
		extractor: extractor,
		opts:      opts,
		logger:    log,
	}
	d.strategies = d.defaultStrategies()
	return d
}

// defaultStrategies returns the routing table, evaluated top to bottom
func (d *Dispatcher) defaultStrategies() []Strategy {
	return []Strategy{
		{
			Name: "self-post",
			Match: func(t Target) bool {
				return t.URL == "" || (t.Post.Permalink != "" && strings.HasSuffix(t.URL, t.Post.Permalink))
			},
			Handle: func(ctx context.Context, t Target) Result { return noMedia() },
		},
		{
			Name:  "dead-host",
			Match: func(t Target) bool { return contains(d.opts.DeadHosts, t.Domain) },
			Handle: func(ctx context.Context, t Target) Result {
				return failed(errs.New(errs.ErrorTypeNotFound, fmt.Sprintf("%s no longer serves media", t.Domain)))
			},
		},
		{
			Name: "imgur-gallery",
			Match: func(t Target) bool {
				return t.Domain == "imgur.com" && strings.Contains(t.URL, "gallery")
			},
			Handle: func(ctx context.Context, t Target) Result {
				return failed(errs.New(errs.ErrorTypeContentType, "imgur galleries are not supported"))
			},
		},
		{
			Name: "direct",
			Match: func(t Target) bool {
				return contains(d.opts.ImageExtensions, t.Ext) || contains(d.opts.VideoExtensions, t.Ext)
			},
			Handle: d.handleDirect,
		},
		{
			Name: "gallery",
			Match: func(t Target) bool {
				return t.Domain == "reddit.com" && strings.Contains(t.URL, "gallery")
			},
			Handle: d.handleGallery,
		},
		{
			Name:   "short-link",
			Match:  func(t Target) bool { return t.Domain == "redd.it" },
			Handle: d.handleResolve,
		},
		{
			Name:   "probe",
			Match:  func(t Target) bool { return t.Domain == "imgur.com" && t.Ext != "gifv" },
			Handle: d.handleProbe,
		},
		{
			Name:   "extractor",
			Match:  func(t Target) bool { return contains(d.opts.Platforms, t.Domain) },
			Handle: d.handleExtractor,
		},
		{
			Name:   "upload-preview",
			Match:  func(t Target) bool { return t.Domain == "reddituploads.com" },
			Handle: d.handleUploadPreview,
		},
	}
}

// Strategies returns the routing table in evaluation order
func (d *Dispatcher) Strategies() []Strategy {
	return d.strategies
}

// Register appends a strategy; it is consulted after every existing entry
func (d *Dispatcher) Register(s Strategy) {
	d.strategies = append(d.strategies, s)
}

// Route returns the first strategy matching post
func (d *Dispatcher) Route(post *models.Post) (Strategy, Target, bool) {
	t := NewTarget(post)
	for _, s := range d.strategies {
		if s.Match(t) {
			return s, t, true
		}
	}
	return Strategy{}, t, false
}

// Fetch routes post and runs the selected strategy. A panicking strategy
// yields FetchFailed.
func (d *Dispatcher) Fetch(ctx context.Context, post *models.Post) (result Result) {
	s, t, ok := d.Route(post)
	if !ok {
		return Result{Kind: NoMedia, Strategy: "none"}
	}

	defer func() {
		if r := recover(); r != nil {
			result = failed(fmt.Errorf("strategy %s panicked: %v", s.Name, r))
			result.Strategy = s.Name
			logger.LogFetch(d.logger, post.ID, s.Name, result.Kind.String(), 0, result.Err)
		}
	}()

	result = s.Handle(ctx, t)
	result.Strategy = s.Name
	logger.LogFetch(d.logger, post.ID, s.Name, result.Kind.String(), len(result.Files), result.Err)
	return result
}

// download streams url into the media directory as name
func (d *Dispatcher) download(ctx context.Context, url, name string, requireMedia bool) error {
	body, err := d.client.Download(ctx, url, requireMedia)
	if err != nil {
		return err
	}
	defer body.Close()

	if _, err := d.store.SaveMedia(body, name); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	return nil
}

// directFetch downloads url with direct semantics as {slug}_{id}.{ext}
func (d *Dispatcher) directFetch(ctx context.Context, t Target, url, ext string) Result {
	name := FileName(t.Slug, t.Post.ID, ext)
	if err := d.download(ctx, url, name, true); err != nil {
		return failed(err)
	}
	return fetched(name)
}
