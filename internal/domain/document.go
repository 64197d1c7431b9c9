package domain

import "time"

// Document is a reading item as reported by the upstream listing endpoint,
// normalized once at the source boundary: string fields are trimmed,
// missing numeric fields are zero, and optional timestamps are nil.
type Document struct {
	Title         string
	Author        string
	Source        string
	Category      string
	Location      string
	WordCount     int
	SourceURL     string
	SiteName      string
	PublishedDate string
	Summary       string
	Tags          []string
	SavedAt       *time.Time
	LastMovedAt   *time.Time
	UpdatedAt     *time.Time
}

// Highlight is a single passage captured by the reader, as returned by the
// highlights endpoint.
type Highlight struct {
	Text          string
	Note          string
	Location      string
	HighlightedAt *time.Time
	BookID        int64
	ReadwiseURL   string
}
