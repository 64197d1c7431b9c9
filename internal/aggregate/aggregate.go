// Package aggregate turns raw weekly reading data into a report. It performs
// no I/O; missing fields never raise and are substituted with defaults.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"ReadwiseDigest/internal/domain"
)

const unknownLabel = "unknown"

// Build constructs a report from a window's documents and highlights.
// Calling it twice with identical inputs yields structurally equal reports
// aside from GeneratedAt.
func Build(docs []domain.Document, highlights []domain.Highlight, window domain.DateRange) domain.Report {
	return domain.Report{
		DateRange:   window,
		Documents:   buildDocumentStats(docs),
		Highlights:  buildHighlightStats(highlights),
		GeneratedAt: time.Now().UTC(),
	}
}

func buildDocumentStats(docs []domain.Document) domain.DocumentStats {
	stats := domain.DocumentStats{TotalCount: len(docs)}

	categories := newCounter()
	sources := newCounter()
	locations := newCounter()
	tags := newCounter()

	var archiveHours float64
	archiveSamples := 0

	processed := make([]domain.ProcessedDocument, 0, len(docs))
	for _, doc := range docs {
		stats.TotalWordCount += doc.WordCount

		categories.add(labelOrUnknown(doc.Category))
		sources.add(labelOrUnknown(doc.Source))
		locations.add(labelOrUnknown(doc.Location))
		for _, tag := range doc.Tags {
			tags.add(labelOrUnknown(tag))
		}

		entry := domain.ProcessedDocument{
			Title:         doc.Title,
			Author:        doc.Author,
			Source:        doc.Source,
			Category:      doc.Category,
			Location:      doc.Location,
			WordCount:     doc.WordCount,
			SourceURL:     doc.SourceURL,
			SiteName:      doc.SiteName,
			PublishedDate: doc.PublishedDate,
			Summary:       doc.Summary,
			Tags:          doc.Tags,
			LastMovedAt:   doc.LastMovedAt,
			UpdatedAt:     doc.UpdatedAt,
		}
		if hours := timeToArchive(doc); hours != nil {
			entry.TimeToArchiveHours = hours
			archiveHours += *hours
			archiveSamples++
		}
		processed = append(processed, entry)
	}

	if stats.TotalCount > 0 {
		stats.AverageWordsPerArticle = stats.TotalWordCount / stats.TotalCount
	}
	if archiveSamples > 0 {
		stats.AverageTimeToArchiveHours = archiveHours / float64(archiveSamples)
	}

	sortByLastMoved(processed)
	stats.Documents = processed
	stats.CategoryBreakdown = categories.ordered()
	stats.SourceBreakdown = sources.ordered()
	stats.LocationBreakdown = locations.ordered()
	stats.TagBreakdown = tags.ordered()
	return stats
}

func buildHighlightStats(highlights []domain.Highlight) domain.HighlightStats {
	stats := domain.HighlightStats{}
	sources := newCounter()

	for _, h := range highlights {
		text := strings.TrimSpace(h.Text)
		if text == "" {
			continue
		}

		// Source attribution would need per-book lookups the highlight
		// record does not carry, so every highlight lands in "unknown".
		stats.Highlights = append(stats.Highlights, domain.ProcessedHighlight{
			Text:          text,
			Note:          strings.TrimSpace(h.Note),
			Location:      h.Location,
			HighlightedAt: h.HighlightedAt,
			BookID:        h.BookID,
			Source:        unknownLabel,
			ReadwiseURL:   h.ReadwiseURL,
		})
		sources.add(unknownLabel)
	}

	stats.TotalCount = len(stats.Highlights)
	stats.SourceBreakdown = sources.ordered()
	return stats
}

// timeToArchive derives the elapsed hours between saving a document and
// moving it to the archive. The base timestamp is isolated here so it can
// change in one place; when either side is missing the value is omitted.
func timeToArchive(doc domain.Document) *float64 {
	if doc.SavedAt == nil || doc.LastMovedAt == nil {
		return nil
	}
	hours := doc.LastMovedAt.Sub(*doc.SavedAt).Hours()
	return &hours
}

// sortByLastMoved orders documents most-recently-archived first; documents
// without the timestamp sort as oldest.
func sortByLastMoved(docs []domain.ProcessedDocument) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i].LastMovedAt, docs[j].LastMovedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

func labelOrUnknown(value string) string {
	if strings.TrimSpace(value) == "" {
		return unknownLabel
	}
	return value
}

// counter accumulates label counts while remembering first-encounter order
// so breakdown ties stay stable.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}}
}

func (c *counter) add(label string) {
	if _, ok := c.counts[label]; !ok {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

// ordered returns the entries sorted by descending count, ties broken by
// first-encountered order.
func (c *counter) ordered() domain.Breakdown {
	if len(c.order) == 0 {
		return nil
	}
	entries := make(domain.Breakdown, 0, len(c.order))
	for _, label := range c.order {
		entries = append(entries, domain.BreakdownEntry{Label: label, Count: c.counts[label]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}
