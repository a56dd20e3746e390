package reddit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"golang.org/x/time/rate"

	"redditsave/pkg/config"
	errs "redditsave/pkg/errors"
	"redditsave/pkg/logger"
	"redditsave/pkg/models"
	"redditsave/pkg/ratelimit"
	"redditsave/pkg/retry"
)

// maxPages bounds listing pagination; reddit stops listings near 1000 items
const maxPages = 50

// Client reads saved, upvoted and user listings through the Reddit API
type Client struct {
	api       *reddit.Client
	limiter   *rate.Limiter
	pageLimit int
	retry     *retry.Config
	logger    logger.Logger

	savedMu sync.Mutex
	saved   *savedListing
}

// savedListing is the saved listing split by kind
type savedListing struct {
	posts    []*reddit.Post
	comments []*reddit.Comment
}

// savedEntry is one item of the mixed saved listing
type savedEntry struct {
	post    *reddit.Post
	comment *reddit.Comment
}

// NewClient creates an authenticated client from the reddit config section
func NewClient(cfg config.RedditConfig, log logger.Logger, opts ...reddit.Opt) (*Client, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	creds := reddit.Credentials{
		ID:       cfg.ClientID,
		Secret:   cfg.Secret,
		Username: cfg.Username,
		Password: cfg.Password,
	}
	opts = append([]reddit.Opt{reddit.WithUserAgent(cfg.UserAgent)}, opts...)

	api, err := reddit.NewClient(creds, opts...)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeConfig, "cannot create reddit client", err)
	}

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = 4
	retryCfg.Backoff = retry.Doubling(2 * time.Second)
	retryCfg.Logger = log

	pageLimit := cfg.PageLimit
	if pageLimit <= 0 || pageLimit > 100 {
		pageLimit = 100
	}

	return &Client{
		api:       api,
		limiter:   ratelimit.PerMinute(cfg.RequestsPerMinute),
		pageLimit: pageLimit,
		retry:     retryCfg,
		logger:    log,
	}, nil
}

// Posts lists every post of the mode's listing
func (c *Client) Posts(ctx context.Context, mode models.Mode) ([]models.Post, error) {
	var (
		raw []*reddit.Post
		err error
	)

	switch mode.Kind {
	case models.ModeSaved:
		var saved *savedListing
		if saved, err = c.savedItems(ctx); err == nil {
			raw = saved.posts
		}
	case models.ModeUpvoted:
		raw, err = collect(ctx, c, "posts", c.api.User.Upvoted)
	case models.ModeUser:
		raw, err = collect(ctx, c, "posts", func(ctx context.Context, opts *reddit.ListUserOverviewOptions) ([]*reddit.Post, *reddit.Response, error) {
			return c.api.User.PostsOf(ctx, mode.Username, opts)
		})
	default:
		return nil, fmt.Errorf("unsupported mode %q", mode)
	}
	if err != nil {
		return nil, err
	}

	posts := make([]models.Post, 0, len(raw))
	for _, p := range raw {
		post, err := convertPost(p)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// Comments lists every comment of the mode's listing. Upvoted listings carry
// no comments.
func (c *Client) Comments(ctx context.Context, mode models.Mode) ([]models.Comment, error) {
	var (
		raw []*reddit.Comment
		err error
	)

	switch mode.Kind {
	case models.ModeSaved:
		var saved *savedListing
		if saved, err = c.savedItems(ctx); err == nil {
			raw = saved.comments
		}
	case models.ModeUser:
		raw, err = collect(ctx, c, "comments", func(ctx context.Context, opts *reddit.ListUserOverviewOptions) ([]*reddit.Comment, *reddit.Response, error) {
			return c.api.User.CommentsOf(ctx, mode.Username, opts)
		})
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return convertComments(raw, 1)
}

// savedItems pages through the saved listing once per client. Posts and
// comments share one cursor, so a page is empty only when it holds neither.
func (c *Client) savedItems(ctx context.Context) (*savedListing, error) {
	c.savedMu.Lock()
	defer c.savedMu.Unlock()

	if c.saved != nil {
		return c.saved, nil
	}

	entries, err := collect(ctx, c, "saved", func(ctx context.Context, opts *reddit.ListUserOverviewOptions) ([]savedEntry, *reddit.Response, error) {
		posts, comments, resp, err := c.api.User.Saved(ctx, opts)
		if err != nil {
			return nil, resp, err
		}
		page := make([]savedEntry, 0, len(posts)+len(comments))
		for _, p := range posts {
			page = append(page, savedEntry{post: p})
		}
		for _, cm := range comments {
			page = append(page, savedEntry{comment: cm})
		}
		return page, resp, nil
	})
	if err != nil {
		return nil, err
	}

	saved := &savedListing{}
	for _, e := range entries {
		switch {
		case e.post != nil:
			saved.posts = append(saved.posts, e.post)
		case e.comment != nil:
			saved.comments = append(saved.comments, e.comment)
		}
	}

	c.logger.DebugWithFields("Saved listing split", map[string]interface{}{
		"posts":    len(saved.posts),
		"comments": len(saved.comments),
	})

	c.saved = saved
	return saved, nil
}

// PostComments returns the top-level comments of a post with one level of
// replies each
func (c *Client) PostComments(ctx context.Context, postID string) ([]models.Comment, error) {
	var thread *reddit.PostAndComments
	err := c.call(ctx, "comments:"+postID, func(ctx context.Context) error {
		var err error
		thread, _, err = c.api.Post.Get(ctx, postID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get comments of post %s: %w", postID, err)
	}
	if thread == nil {
		return nil, nil
	}
	return convertComments(thread.Comments, 1)
}

// call paces and retries one API request
func (c *Client) call(ctx context.Context, what string, op retry.Operation) error {
	return retry.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		start := time.Now()
		err := classify(op(ctx))
		c.logger.DebugWithFields("Reddit API request", map[string]interface{}{
			"request":     what,
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000,
			"error":       err != nil,
		})
		return err
	}, c.retry)
}

// classify turns go-reddit errors into typed errors so that retry can tell
// rate limiting and server failures from permanent ones
func classify(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *reddit.RateLimitError
	if errors.As(err, &rateErr) {
		return errs.Wrap(errs.ErrorTypeRateLimit, "reddit rate limit reached", err)
	}

	var respErr *reddit.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		code := respErr.Response.StatusCode
		path := ""
		if req := respErr.Response.Request; req != nil && req.URL != nil {
			path = req.URL.Path
		}
		typed := errs.FromStatus(code, path)
		if code == http.StatusUnauthorized || code == http.StatusForbidden {
			typed.Type = errs.ErrorTypeConfig
			typed.Message = "reddit rejected the credentials"
		}
		typed.Err = err
		return typed
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errs.Wrap(errs.ErrorTypeNetwork, "reddit request failed", err)
}
