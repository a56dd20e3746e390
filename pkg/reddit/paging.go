package reddit

import (
	"context"
	"fmt"

	"github.com/loganintech/go-reddit/v2/reddit"
)

// pageFunc fetches one listing page
type pageFunc[T any] func(ctx context.Context, opts *reddit.ListUserOverviewOptions) ([]T, *reddit.Response, error)

// collect follows a listing's after cursor until it is exhausted. Each page
// must return every item reddit sent for it; an empty page ends the listing.
func collect[T any](ctx context.Context, c *Client, what string, page pageFunc[T]) ([]T, error) {
	var (
		all   []T
		after string
	)

	for i := 0; i < maxPages; i++ {
		opts := &reddit.ListUserOverviewOptions{
			ListOptions: reddit.ListOptions{Limit: c.pageLimit, After: after},
		}

		var (
			items []T
			resp  *reddit.Response
		)
		err := c.call(ctx, what, func(ctx context.Context) error {
			var err error
			items, resp, err = page(ctx, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", what, err)
		}

		all = append(all, items...)
		c.logger.DebugWithFields("Listing page fetched", map[string]interface{}{
			"listing": what,
			"page":    i,
			"items":   len(items),
			"total":   len(all),
		})

		if resp == nil || resp.After == "" || len(items) == 0 {
			break
		}
		after = resp.After
	}

	return all, nil
}
