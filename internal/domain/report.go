package domain

import "time"

// DateRange is the half-open window [Start, End) a report covers.
// Start is always strictly before End.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BreakdownEntry is one label with its occurrence count.
type BreakdownEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Breakdown is a count distribution over one categorical field, ordered by
// descending count with ties kept in first-encountered order.
type Breakdown []BreakdownEntry

// Total sums the counts across all entries.
func (b Breakdown) Total() int {
	total := 0
	for _, entry := range b {
		total += entry.Count
	}
	return total
}

// Count returns the count recorded for a label, or zero when absent.
func (b Breakdown) Count(label string) int {
	for _, entry := range b {
		if entry.Label == label {
			return entry.Count
		}
	}
	return 0
}

// ProcessedDocument carries the per-document fields the renderer consumes.
// TimeToArchiveHours is nil when the underlying timestamps were unavailable.
type ProcessedDocument struct {
	Title              string     `json:"title"`
	Author             string     `json:"author"`
	Source             string     `json:"source"`
	Category           string     `json:"category"`
	Location           string     `json:"location"`
	WordCount          int        `json:"word_count"`
	SourceURL          string     `json:"source_url"`
	SiteName           string     `json:"site_name"`
	PublishedDate      string     `json:"published_date"`
	Summary            string     `json:"summary"`
	Tags               []string   `json:"tags,omitempty"`
	LastMovedAt        *time.Time `json:"last_moved_at,omitempty"`
	UpdatedAt          *time.Time `json:"updated_at,omitempty"`
	TimeToArchiveHours *float64   `json:"time_to_archive_hours,omitempty"`
}

// ProcessedHighlight is a highlight after filtering, with a uniform source
// attribution (resolving the owning book would need extra lookups).
type ProcessedHighlight struct {
	Text          string     `json:"text"`
	Note          string     `json:"note"`
	Location      string     `json:"location"`
	HighlightedAt *time.Time `json:"highlighted_at,omitempty"`
	BookID        int64      `json:"book_id"`
	Source        string     `json:"source"`
	ReadwiseURL   string     `json:"readwise_url"`
}

// DocumentStats aggregates a window's archived documents.
type DocumentStats struct {
	TotalCount                int                 `json:"total_count"`
	TotalWordCount            int                 `json:"total_word_count"`
	AverageWordsPerArticle    int                 `json:"average_words_per_article"`
	AverageTimeToArchiveHours float64             `json:"average_time_to_archive_hours"`
	CategoryBreakdown         Breakdown           `json:"category_breakdown"`
	SourceBreakdown           Breakdown           `json:"source_breakdown"`
	LocationBreakdown         Breakdown           `json:"location_breakdown"`
	TagBreakdown              Breakdown           `json:"tag_breakdown"`
	Documents                 []ProcessedDocument `json:"documents"`
}

// HighlightStats aggregates a window's highlights in fetch order.
type HighlightStats struct {
	TotalCount      int                  `json:"total_count"`
	Highlights      []ProcessedHighlight `json:"highlights"`
	SourceBreakdown Breakdown            `json:"source_breakdown"`
}

// Report is the immutable aggregation result handed to the renderer.
type Report struct {
	DateRange   DateRange      `json:"date_range"`
	Documents   DocumentStats  `json:"documents"`
	Highlights  HighlightStats `json:"highlights"`
	GeneratedAt time.Time      `json:"generated_at"`
}
