package readwise

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListRecentWalksNumberedPages(t *testing.T) {
	since := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	fetches := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		require.Equal(t, "/v2/highlights/", r.URL.Path)
		assert.Equal(t, "2023-01-01T00:00:00Z", r.URL.Query().Get("highlighted_at__gt"))
		assert.Equal(t, "1000", r.URL.Query().Get("page_size"))

		resp := highlightListResponse{}
		switch r.URL.Query().Get("page") {
		case "1":
			resp.Next = "https://readwise.io/api/v2/highlights/?page=2"
			resp.Results = []highlightPayload{{Text: "one"}, {Text: "two"}}
		case "2":
			resp.Results = []highlightPayload{{Text: "three"}}
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	highlights, err := client.ListRecent(context.Background(), since)

	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
	require.Len(t, highlights, 3)
	assert.Equal(t, "one", highlights[0].Text)
	assert.Equal(t, "three", highlights[2].Text)
}

func TestListRecentStopsOnEmptyPage(t *testing.T) {
	fetches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		// next is set, but an empty result list still terminates the walk
		require.NoError(t, json.NewEncoder(w).Encode(highlightListResponse{
			Next: "https://readwise.io/api/v2/highlights/?page=2",
		}))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	highlights, err := client.ListRecent(context.Background(), time.Now())

	require.NoError(t, err)
	assert.Equal(t, 1, fetches)
	assert.Empty(t, highlights)
}

func TestListRecentSkipsMalformedHighlightedAt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(highlightListResponse{
			Results: []highlightPayload{
				{Text: "bad", HighlightedAt: "yesterday-ish"},
				{Text: "good", HighlightedAt: "2023-01-02T10:00:00Z"},
			},
		}))
	}))
	defer server.Close()

	client := newTestClient(t, server)

	highlights, err := client.ListRecent(context.Background(), time.Now())

	require.NoError(t, err)
	require.Len(t, highlights, 1)
	assert.Equal(t, "good", highlights[0].Text)
	require.NotNil(t, highlights[0].HighlightedAt)
}

func TestListRecentPropagatesFetchFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not you", http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.ListRecent(context.Background(), time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list recent highlights")
}
