// Package markdown renders an aggregated weekly report into a Hugo-ready
// markdown document.
package markdown

import (
	"fmt"
	"math"
	"strings"

	"ReadwiseDigest/internal/domain"
	"ReadwiseDigest/internal/ports"
)

// wordsPerMinute is the reading speed used for the time-spent estimate.
const wordsPerMinute = 225

// Renderer builds the digest document section by section.
type Renderer struct{}

var _ ports.Renderer = (*Renderer)(nil)

// NewRenderer returns a stateless renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the complete markdown digest for a report.
func (r *Renderer) Render(report domain.Report) (string, error) {
	start := report.DateRange.Start.Format("2006-01-02")
	end := report.DateRange.End.Format("2006-01-02")

	parts := []string{
		r.frontMatter(start, end, report),
		fmt.Sprintf("# Weekly Reading Digest - %s to %s", start, end),
		"",
		r.overview(report.Documents, report.Highlights),
	}

	if report.Documents.TotalCount > 0 {
		parts = append(parts, r.documentBreakdowns(report.Documents))
	}
	if report.Highlights.TotalCount > 0 {
		parts = append(parts, r.highlightsSection(report.Highlights))
	}

	parts = append(parts, r.footer(report))
	return strings.Join(parts, "\n"), nil
}

func (r *Renderer) frontMatter(start, end string, report domain.Report) string {
	title := fmt.Sprintf("Weekly Reading Digest - %s to %s", start, end)
	return fmt.Sprintf(`---
title: %q
date: %s
draft: false
tags: ["reading", "digest", "readwise"]
categories: ["Reading"]
---`, title, report.GeneratedAt.Format("2006-01-02T15:04:05Z"))
}

func (r *Renderer) overview(docs domain.DocumentStats, highlights domain.HighlightStats) string {
	lines := []string{
		"## Overview",
		"",
		fmt.Sprintf("- **Articles Archived**: %d", docs.TotalCount),
		fmt.Sprintf("- **Total Words Read**: %s", groupDigits(docs.TotalWordCount)),
		fmt.Sprintf("- **Time Spent Reading**: %s", readingTime(docs.TotalWordCount)),
		fmt.Sprintf("- **Highlights Created**: %d", highlights.TotalCount),
	}

	if docs.TotalCount > 0 {
		lines = append(lines, fmt.Sprintf("- **Average Words per Article**: %s", groupDigits(docs.AverageWordsPerArticle)))
	}
	if docs.AverageTimeToArchiveHours > 0 {
		lines = append(lines, fmt.Sprintf("- **Average Time to Archive**: %.1f hours", docs.AverageTimeToArchiveHours))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (r *Renderer) documentBreakdowns(docs domain.DocumentStats) string {
	lines := []string{"## Article Breakdowns", ""}

	lines = appendBreakdown(lines, "### By Category", docs.CategoryBreakdown, titleCase)
	lines = appendBreakdown(lines, "### By Source", docs.SourceBreakdown, formatSourceName)
	lines = appendBreakdown(lines, "### By Location", docs.LocationBreakdown, titleCase)
	lines = appendBreakdown(lines, "### By Tag", docs.TagBreakdown, func(s string) string { return s })

	if len(docs.Documents) > 0 {
		lines = append(lines, "### Archived Articles", "")
		for _, doc := range docs.Documents {
			lines = append(lines, articleLine(doc))
			if doc.Summary != "" {
				lines = append(lines, fmt.Sprintf("  - %s", doc.Summary))
			}
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

func appendBreakdown(lines []string, heading string, breakdown domain.Breakdown, display func(string) string) []string {
	if len(breakdown) == 0 {
		return lines
	}
	lines = append(lines, heading, "")
	for _, entry := range breakdown {
		lines = append(lines, fmt.Sprintf("- **%s**: %d", display(entry.Label), entry.Count))
	}
	return append(lines, "")
}

func articleLine(doc domain.ProcessedDocument) string {
	var line string
	if doc.SourceURL != "" {
		line = fmt.Sprintf("- **[%s](%s)**", doc.Title, doc.SourceURL)
	} else {
		line = fmt.Sprintf("- **%s**", doc.Title)
	}
	if doc.Author != "" {
		line += fmt.Sprintf(" by %s", doc.Author)
	}
	if doc.WordCount > 0 {
		line += fmt.Sprintf(" (%s words)", groupDigits(doc.WordCount))
	}
	return line
}

func (r *Renderer) highlightsSection(highlights domain.HighlightStats) string {
	lines := []string{"## Highlights from the Past Week", ""}

	for i, highlight := range highlights.Highlights {
		lines = append(lines, fmt.Sprintf("%d. %q", i+1, highlight.Text))
		if highlight.Note != "" {
			lines = append(lines, fmt.Sprintf("   - *Note: %s*", highlight.Note))
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

func (r *Renderer) footer(report domain.Report) string {
	return strings.Join([]string{
		"---",
		"",
		fmt.Sprintf("*Generated on %s using Readwise API*", report.GeneratedAt.Format("2006-01-02 at 15:04 UTC")),
	}, "\n")
}

// readingTime estimates time spent from the word total; under an hour it is
// reported in minutes, otherwise as hours and minutes.
func readingTime(totalWords int) string {
	minutes := int(math.Round(float64(totalWords) / wordsPerMinute))
	if minutes < 60 {
		return fmt.Sprintf("%d minutes", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// groupDigits formats an integer with thousands separators.
func groupDigits(n int) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return "-" + groupDigits(-n)
	}
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// sourceSpecialCases maps labels whose conventional capitalization is not
// plain title case.
var sourceSpecialCases = map[string]string{
	"ios":   "iOS",
	"macos": "macOS",
	"rss":   "RSS",
	"api":   "API",
	"url":   "URL",
	"pdf":   "PDF",
	"epub":  "EPUB",
	"html":  "HTML",
}

// formatSourceName renders a source label for display, handling compound
// names like "reader_ios" or "import-url".
func formatSourceName(source string) string {
	if special, ok := sourceSpecialCases[strings.ToLower(source)]; ok {
		return special
	}

	normalized := strings.NewReplacer("_", " ", "-", " ").Replace(source)
	parts := strings.Fields(normalized)
	for i, part := range parts {
		if special, ok := sourceSpecialCases[strings.ToLower(part)]; ok {
			parts[i] = special
		} else {
			parts[i] = titleCase(part)
		}
	}
	return strings.Join(parts, " ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
