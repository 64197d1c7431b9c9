package readwise

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ReadwiseDigest/internal/domain"
)

// toDomain converts a wire document into a fully-defaulted domain record.
// A present-but-unparseable timestamp makes the record undecidable for
// archive filtering, so it is reported as an error and skipped by callers.
func (p documentPayload) toDomain() (domain.Document, error) {
	savedAt, err := parseTimestamp(p.SavedAt)
	if err != nil {
		return domain.Document{}, fmt.Errorf("saved_at: %w", err)
	}
	lastMovedAt, err := parseTimestamp(p.LastMovedAt)
	if err != nil {
		return domain.Document{}, fmt.Errorf("last_moved_at: %w", err)
	}
	updatedAt, err := parseTimestamp(p.UpdatedAt)
	if err != nil {
		return domain.Document{}, fmt.Errorf("updated_at: %w", err)
	}

	title := strings.TrimSpace(p.Title)
	if title == "" {
		title = "Untitled"
	}

	return domain.Document{
		Title:         title,
		Author:        strings.TrimSpace(p.Author),
		Source:        strings.TrimSpace(p.Source),
		Category:      strings.TrimSpace(p.Category),
		Location:      strings.TrimSpace(p.Location),
		WordCount:     p.WordCount,
		SourceURL:     strings.TrimSpace(p.SourceURL),
		SiteName:      strings.TrimSpace(p.SiteName),
		PublishedDate: publishedDateString(p.PublishedDate),
		Summary:       flattenHTML(p.Summary),
		Tags:          tagNames(p.Tags),
		SavedAt:       savedAt,
		LastMovedAt:   lastMovedAt,
		UpdatedAt:     updatedAt,
	}, nil
}

// toDomain converts a wire highlight; an unparseable highlighted_at is an
// error so callers can skip the record.
func (p highlightPayload) toDomain() (domain.Highlight, error) {
	highlightedAt, err := parseTimestamp(p.HighlightedAt)
	if err != nil {
		return domain.Highlight{}, fmt.Errorf("highlighted_at: %w", err)
	}

	return domain.Highlight{
		Text:          p.Text,
		Note:          strings.TrimSpace(p.Note),
		Location:      rawString(p.Location),
		HighlightedAt: highlightedAt,
		BookID:        p.BookID,
		ReadwiseURL:   strings.TrimSpace(p.ReadwiseURL),
	}, nil
}

// parseTimestamp accepts the RFC3339 variants Readwise emits; empty means
// the field was absent.
func parseTimestamp(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			utc := ts.UTC()
			return &utc, nil
		}
	}
	return nil, fmt.Errorf("unparseable timestamp %q", raw)
}

// publishedDateString renders the flexible published_date field as a date
// string, or empty when absent or unreadable.
func publishedDateString(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if ts, err := parseTimestamp(text); err == nil && ts != nil {
			return ts.Format("2006-01-02")
		}
		return strings.TrimSpace(text)
	}

	var millis int64
	if err := json.Unmarshal(raw, &millis); err == nil {
		return time.UnixMilli(millis).UTC().Format("2006-01-02")
	}

	return ""
}

// tagNames extracts tag labels from the name-keyed object the Reader API
// returns, sorted so the result does not depend on map iteration order.
func tagNames(tags map[string]json.RawMessage) []string {
	if len(tags) == 0 {
		return nil
	}
	names := make([]string, 0, len(tags))
	for name := range tags {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	sort.Strings(names)
	return names
}

// flattenHTML reduces the HTML fragments Readwise embeds in summaries to
// single-line plain text.
func flattenHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// rawString renders a raw JSON scalar (string or number) as a string.
func rawString(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	var number json.Number
	if err := json.Unmarshal(raw, &number); err == nil {
		return number.String()
	}
	return ""
}
