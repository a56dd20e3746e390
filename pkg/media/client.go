package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	errs "redditsave/pkg/errors"
	"redditsave/pkg/logger"
	"redditsave/pkg/ratelimit"
)

// maximum JSON document accepted from reddit.com
const maxJSONBody = 16 << 20

// ClientConfig configures the media HTTP client
type ClientConfig struct {
	Timeout           time.Duration
	UserAgent         string
	RequestsPerMinute int
	// Transport overrides the default round tripper when set
	Transport http.RoundTripper
}

// Client performs paced, logged HTTP requests against media hosts
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	limiter    *ratelimit.HostLimiter
	logger     logger.Logger
}

// NewClient creates a new media HTTP client
func NewClient(cfg ClientConfig, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNopLogger()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "reddit-save"
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		headers: map[string]string{
			"User-Agent":      userAgent,
			"Accept":          "*/*",
			"Accept-Language": "en-US,en;q=0.9",
		},
		limiter: ratelimit.NewHostLimiter(cfg.RequestsPerMinute),
		logger:  log,
	}
}

// Get performs a GET request to url once the host's pacing allows it. The
// caller owns the response body.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, "failed to create request", err)
	}

	if err := c.limiter.Wait(ctx, url); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, "request pacing interrupted", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.Wrap(errs.ErrorTypeNetwork, fmt.Sprintf("GET %s", url), err)
	}

	logger.LogRequest(c.logger, req.Method, url, resp.StatusCode, float64(duration.Milliseconds()))

	return resp, nil
}

// Download GETs url and returns its body when the response is 2xx. With
// requireMedia the Content-Type must also start with image or video.
func (c *Client) Download(ctx context.Context, url string, requireMedia bool) (io.ReadCloser, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	if err := checkResponseStatus(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}

	if requireMedia {
		contentType := resp.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image") && !strings.HasPrefix(contentType, "video") {
			resp.Body.Close()
			return nil, &errs.Error{
				Type:    errs.ErrorTypeContentType,
				Message: fmt.Sprintf("unexpected content type %q for %s", contentType, url),
				Code:    resp.StatusCode,
			}
		}
	}

	return resp.Body, nil
}

// GetBody GETs url and returns the full body of a 2xx response
func (c *Client) GetBody(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResponseStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONBody))
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: "failed to read response body",
			Code:    resp.StatusCode,
			Err:     err,
		}
	}

	return body, nil
}

// checkResponseStatus maps a non-2xx response onto a typed error
func checkResponseStatus(resp *http.Response) error {
	if resp.StatusCode/100 == 2 {
		return nil
	}
	return errs.FromStatus(resp.StatusCode, resp.Request.URL.String())
}
