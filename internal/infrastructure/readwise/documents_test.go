package readwise

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReadwiseDigest/internal/config"
)

func testConfig(server *httptest.Server) config.ReadwiseConfig {
	return config.ReadwiseConfig{
		AccessToken:   "test-token",
		ReaderBaseURL: server.URL + "/v3/",
		BaseURL:       server.URL + "/v2/",
	}
}

func docJSON(title, location, lastMoved, updated string, words int) map[string]any {
	doc := map[string]any{
		"title":      title,
		"location":   location,
		"word_count": words,
	}
	if lastMoved != "" {
		doc["last_moved_at"] = lastMoved
	}
	if updated != "" {
		doc["updated_at"] = updated
	}
	return doc
}

func TestListArchivedWalksAllCursorPages(t *testing.T) {
	since := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	fetches := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		require.Equal(t, "/v3/list/", r.URL.Path)
		assert.Equal(t, "archive", r.URL.Query().Get("location"))
		assert.Equal(t, "2023-01-01T00:00:00Z", r.URL.Query().Get("updatedAfter"))

		page := documentListResponse{}
		switch r.URL.Query().Get("pageCursor") {
		case "":
			page.NextPageCursor = "cursor-2"
			page.Results = []documentPayload{
				{Title: "first", Location: "archive", LastMovedAt: "2023-01-02T00:00:00Z"},
			}
		case "cursor-2":
			page.NextPageCursor = "cursor-3"
			page.Results = []documentPayload{
				{Title: "second", Location: "archive", LastMovedAt: "2023-01-03T00:00:00Z"},
			}
		case "cursor-3":
			page.Results = []documentPayload{
				{Title: "third", Location: "archive", LastMovedAt: "2023-01-04T00:00:00Z"},
			}
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("pageCursor"))
		}
		require.NoError(t, json.NewEncoder(w).Encode(page))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	docs, err := client.ListArchived(context.Background(), since)

	require.NoError(t, err)
	assert.Equal(t, 3, fetches)
	require.Len(t, docs, 3)
	assert.Equal(t, "first", docs[0].Title)
	assert.Equal(t, "second", docs[1].Title)
	assert.Equal(t, "third", docs[2].Title)
}

func TestListArchivedFiltersByLocationAndTimestamps(t *testing.T) {
	since := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"results": %s}`, mustJSON(t, []map[string]any{
			docJSON("kept by last_moved", "archive", "2023-01-02T00:00:00Z", "", 100),
			docJSON("kept by updated", "archive", "", "2023-01-03T00:00:00Z", 200),
			docJSON("moved too early", "archive", "2022-12-25T00:00:00Z", "", 300),
			docJSON("not archived", "later", "2023-01-02T00:00:00Z", "", 400),
			docJSON("no timestamps", "archive", "", "", 500),
		}))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	docs, err := client.ListArchived(context.Background(), since)

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "kept by last_moved", docs[0].Title)
	assert.Equal(t, "kept by updated", docs[1].Title)
}

func TestListArchivedSkipsMalformedTimestamps(t *testing.T) {
	since := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"results": %s}`, mustJSON(t, []map[string]any{
			docJSON("bad timestamp", "archive", "not-a-date", "", 100),
			docJSON("good", "archive", "2023-01-02T00:00:00Z", "", 200),
		}))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	docs, err := client.ListArchived(context.Background(), since)

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "good", docs[0].Title)
}

func TestListArchivedPropagatesFetchFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.ListArchived(context.Background(), time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list archived documents")
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return string(raw)
}
