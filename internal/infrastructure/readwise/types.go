package readwise

import "encoding/json"

// documentListResponse is one page of the Reader v3 list endpoint.
type documentListResponse struct {
	Count          int               `json:"count"`
	NextPageCursor string            `json:"nextPageCursor"`
	Results        []documentPayload `json:"results"`
}

// documentPayload is the wire shape of a single Reader document. Timestamps
// stay strings until normalization; published_date arrives as either an ISO
// string or an epoch-millis number depending on how the item was saved.
type documentPayload struct {
	Title         string                     `json:"title"`
	Author        string                     `json:"author"`
	Source        string                     `json:"source"`
	Category      string                     `json:"category"`
	Location      string                     `json:"location"`
	WordCount     int                        `json:"word_count"`
	SourceURL     string                     `json:"source_url"`
	SiteName      string                     `json:"site_name"`
	PublishedDate json.RawMessage            `json:"published_date"`
	Summary       string                     `json:"summary"`
	SavedAt       string                     `json:"saved_at"`
	LastMovedAt   string                     `json:"last_moved_at"`
	UpdatedAt     string                     `json:"updated_at"`
	Tags          map[string]json.RawMessage `json:"tags"`
}

// highlightListResponse is one page of the main v2 highlights endpoint.
type highlightListResponse struct {
	Count    int                `json:"count"`
	Next     string             `json:"next"`
	Previous string             `json:"previous"`
	Results  []highlightPayload `json:"results"`
}

// highlightPayload is the wire shape of a single highlight. Location is an
// offset number for most sources but a string for some, so it stays raw.
type highlightPayload struct {
	Text          string          `json:"text"`
	Note          string          `json:"note"`
	Location      json.RawMessage `json:"location"`
	HighlightedAt string          `json:"highlighted_at"`
	BookID        int64           `json:"book_id"`
	ReadwiseURL   string          `json:"readwise_url"`
}
