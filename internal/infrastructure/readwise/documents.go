package readwise

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"ReadwiseDigest/internal/domain"
)

const archiveLocation = "archive"

// ListArchived walks the cursor-paginated Reader list endpoint and returns
// every document genuinely moved into the archive since the given instant,
// in page order then in-page order. The server-side updatedAfter bound is a
// superset; the dual-timestamp check below narrows it, because the endpoint
// reports location as of request time but timestamps the transition
// inconsistently.
func (c *Client) ListArchived(ctx context.Context, since time.Time) ([]domain.Document, error) {
	endpoint := c.readerBaseURL + "list/"
	sinceParam := since.UTC().Format(time.RFC3339)

	var all []domain.Document
	cursor := ""
	for {
		query := url.Values{}
		query.Set("location", archiveLocation)
		query.Set("updatedAfter", sinceParam)
		if cursor != "" {
			query.Set("pageCursor", cursor)
		}

		var page documentListResponse
		if err := c.getJSON(ctx, endpoint, query, &page); err != nil {
			return nil, fmt.Errorf("list archived documents: %w", err)
		}

		kept := 0
		for _, payload := range page.Results {
			doc, err := payload.toDomain()
			if err != nil {
				c.warn("skipping malformed document", "title", payload.Title, "error", err)
				continue
			}
			if !archivedSince(doc, since) {
				continue
			}
			all = append(all, doc)
			kept++
		}
		c.debug("archived documents page", "kept", kept, "returned", len(page.Results))

		cursor = page.NextPageCursor
		if cursor == "" {
			break
		}
	}

	c.debug("archived documents fetched", "total", len(all))
	return all, nil
}

// archivedSince keeps documents that are in the archive now and whose last
// transition falls inside the window. last_moved_at is authoritative when
// present; updated_at is the fallback; a record with neither is dropped.
func archivedSince(doc domain.Document, since time.Time) bool {
	if doc.Location != archiveLocation {
		return false
	}
	if doc.LastMovedAt != nil {
		return !doc.LastMovedAt.Before(since)
	}
	if doc.UpdatedAt != nil {
		return !doc.UpdatedAt.Before(since)
	}
	return false
}
