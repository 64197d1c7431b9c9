package readwise

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"ReadwiseDigest/internal/domain"
)

// highlightPageSize is the maximum the highlights endpoint allows.
const highlightPageSize = 1000

// ListRecent walks the page-number-paginated highlights endpoint and returns
// every highlight created after the given instant, in fetch order. The date
// filter is pushed entirely to the server; no client-side filtering happens
// here.
func (c *Client) ListRecent(ctx context.Context, since time.Time) ([]domain.Highlight, error) {
	endpoint := c.baseURL + "highlights/"
	sinceParam := since.UTC().Format(time.RFC3339)

	var all []domain.Highlight
	page := 1
	for {
		query := url.Values{}
		query.Set("highlighted_at__gt", sinceParam)
		query.Set("page_size", strconv.Itoa(highlightPageSize))
		query.Set("page", strconv.Itoa(page))

		var resp highlightListResponse
		if err := c.getJSON(ctx, endpoint, query, &resp); err != nil {
			return nil, fmt.Errorf("list recent highlights: %w", err)
		}

		if len(resp.Results) == 0 {
			break
		}

		for _, payload := range resp.Results {
			highlight, err := payload.toDomain()
			if err != nil {
				c.warn("skipping malformed highlight", "book_id", payload.BookID, "error", err)
				continue
			}
			all = append(all, highlight)
		}
		c.debug("highlights page", "page", page, "returned", len(resp.Results))

		if resp.Next == "" {
			break
		}
		page++
	}

	c.debug("highlights fetched", "total", len(all))
	return all, nil
}
