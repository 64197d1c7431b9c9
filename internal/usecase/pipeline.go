package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ReadwiseDigest/internal/aggregate"
	"ReadwiseDigest/internal/domain"
	"ReadwiseDigest/internal/ports"
)

// lookback is the fixed window every digest covers.
const lookback = 7 * 24 * time.Hour

const (
	digestPathFormat    = "content/posts/%s-weekly-reading-digest.md"
	commitMessageFormat = "feat: Add weekly reading digest draft %s"
)

// PipelineDeps wires all driven adapters into the digest pipeline.
type PipelineDeps struct {
	Documents  ports.DocumentSource
	Highlights ports.HighlightSource
	Auth       ports.CredentialChecker
	Renderer   ports.Renderer
	Publisher  ports.Publisher
	Logger     *slog.Logger
}

// Pipeline implements the weekly digest workflow: fetch, aggregate, render,
// publish. Any fetch failure aborts the run; no partial digest is published.
type Pipeline struct {
	documents  ports.DocumentSource
	highlights ports.HighlightSource
	auth       ports.CredentialChecker
	renderer   ports.Renderer
	publisher  ports.Publisher
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		documents:  deps.Documents,
		highlights: deps.Highlights,
		auth:       deps.Auth,
		renderer:   deps.Renderer,
		publisher:  deps.Publisher,
		logger:     deps.Logger,
	}
}

// Run generates and publishes the digest for the week ending at now.
func (p *Pipeline) Run(ctx context.Context, now time.Time) error {
	if p.documents == nil || p.highlights == nil {
		return fmt.Errorf("pipeline sources are not configured")
	}

	end := now.UTC()
	window := domain.DateRange{Start: end.Add(-lookback), End: end}
	p.info("generating weekly digest",
		"start", window.Start.Format(time.RFC3339),
		"end", window.End.Format(time.RFC3339))

	if p.auth != nil {
		if err := p.auth.CheckAuth(ctx); err != nil {
			return fmt.Errorf("verify access token: %w", err)
		}
	}

	docs, err := p.documents.ListArchived(ctx, window.Start)
	if err != nil {
		return fmt.Errorf("fetch archived documents: %w", err)
	}

	highlights, err := p.highlights.ListRecent(ctx, window.Start)
	if err != nil {
		return fmt.Errorf("fetch highlights: %w", err)
	}

	p.info("fetched weekly data", "documents", len(docs), "highlights", len(highlights))

	report := aggregate.Build(docs, highlights, window)

	if p.renderer == nil || p.publisher == nil {
		p.info("no renderer or publisher configured, skipping publish")
		return nil
	}

	content, err := p.renderer.Render(report)
	if err != nil {
		return fmt.Errorf("render digest: %w", err)
	}

	day := window.Start.Format("2006-01-02")
	commit, err := p.publisher.CreateOrUpdate(ctx,
		fmt.Sprintf(digestPathFormat, day),
		content,
		fmt.Sprintf(commitMessageFormat, day))
	if err != nil {
		return fmt.Errorf("publish digest: %w", err)
	}

	p.info("digest published", "path", commit.Path, "commit", commit.SHA)
	return nil
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}
