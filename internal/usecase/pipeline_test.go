package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReadwiseDigest/internal/domain"
	"ReadwiseDigest/internal/ports"
)

type fakeDocumentSource struct {
	docs  []domain.Document
	since time.Time
	err   error
}

func (f *fakeDocumentSource) ListArchived(_ context.Context, since time.Time) ([]domain.Document, error) {
	f.since = since
	return f.docs, f.err
}

type fakeHighlightSource struct {
	highlights []domain.Highlight
	calls      int
	err        error
}

func (f *fakeHighlightSource) ListRecent(_ context.Context, _ time.Time) ([]domain.Highlight, error) {
	f.calls++
	return f.highlights, f.err
}

type fakeRenderer struct {
	report domain.Report
	out    string
}

func (f *fakeRenderer) Render(report domain.Report) (string, error) {
	f.report = report
	return f.out, nil
}

type fakePublisher struct {
	path    string
	content string
	message string
	calls   int
	err     error
}

func (f *fakePublisher) CreateOrUpdate(_ context.Context, path, content, message string) (ports.CommitInfo, error) {
	f.calls++
	f.path = path
	f.content = content
	f.message = message
	if f.err != nil {
		return ports.CommitInfo{}, f.err
	}
	return ports.CommitInfo{SHA: "sha", Path: path, Message: message}, nil
}

type fakeAuth struct {
	calls int
	err   error
}

func (f *fakeAuth) CheckAuth(context.Context) error {
	f.calls++
	return f.err
}

func TestRunFetchesAggregatesAndPublishes(t *testing.T) {
	now := time.Date(2023, time.January, 8, 12, 0, 0, 0, time.UTC)
	docs := &fakeDocumentSource{docs: []domain.Document{{Title: "a", WordCount: 100}}}
	highlights := &fakeHighlightSource{highlights: []domain.Highlight{{Text: "h"}}}
	renderer := &fakeRenderer{out: "# rendered"}
	publisher := &fakePublisher{}
	auth := &fakeAuth{}

	pipeline := NewPipeline(PipelineDeps{
		Documents:  docs,
		Highlights: highlights,
		Auth:       auth,
		Renderer:   renderer,
		Publisher:  publisher,
	})

	require.NoError(t, pipeline.Run(context.Background(), now))

	assert.Equal(t, 1, auth.calls)
	assert.Equal(t, now.Add(-7*24*time.Hour), docs.since, "window lower bound is 7 days back")
	assert.Equal(t, 1, highlights.calls)

	assert.Equal(t, 1, renderer.report.Documents.TotalCount)
	assert.Equal(t, 1, renderer.report.Highlights.TotalCount)
	assert.Equal(t, docs.since, renderer.report.DateRange.Start)
	assert.Equal(t, now, renderer.report.DateRange.End)

	assert.Equal(t, 1, publisher.calls)
	assert.Equal(t, "content/posts/2023-01-01-weekly-reading-digest.md", publisher.path)
	assert.Equal(t, "# rendered", publisher.content)
	assert.Equal(t, "feat: Add weekly reading digest draft 2023-01-01", publisher.message)
}

func TestRunAbortsWhenDocumentFetchFails(t *testing.T) {
	publisher := &fakePublisher{}
	pipeline := NewPipeline(PipelineDeps{
		Documents:  &fakeDocumentSource{err: errors.New("upstream down")},
		Highlights: &fakeHighlightSource{},
		Renderer:   &fakeRenderer{},
		Publisher:  publisher,
	})

	err := pipeline.Run(context.Background(), time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch archived documents")
	assert.Zero(t, publisher.calls, "no partial digest may be published")
}

func TestRunAbortsWhenHighlightFetchFails(t *testing.T) {
	publisher := &fakePublisher{}
	pipeline := NewPipeline(PipelineDeps{
		Documents:  &fakeDocumentSource{},
		Highlights: &fakeHighlightSource{err: errors.New("rate limit storm")},
		Renderer:   &fakeRenderer{},
		Publisher:  publisher,
	})

	err := pipeline.Run(context.Background(), time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch highlights")
	assert.Zero(t, publisher.calls)
}

func TestRunAbortsWhenAuthFails(t *testing.T) {
	docs := &fakeDocumentSource{}
	pipeline := NewPipeline(PipelineDeps{
		Documents:  docs,
		Highlights: &fakeHighlightSource{},
		Auth:       &fakeAuth{err: errors.New("bad token")},
	})

	err := pipeline.Run(context.Background(), time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "verify access token")
	assert.True(t, docs.since.IsZero(), "no paging after a failed auth check")
}

func TestRunSurfacesPublishFailures(t *testing.T) {
	pipeline := NewPipeline(PipelineDeps{
		Documents:  &fakeDocumentSource{},
		Highlights: &fakeHighlightSource{},
		Renderer:   &fakeRenderer{out: "content"},
		Publisher:  &fakePublisher{err: errors.New("conflict")},
	})

	err := pipeline.Run(context.Background(), time.Now())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish digest")
}

func TestRunWithoutSourcesFails(t *testing.T) {
	pipeline := NewPipeline(PipelineDeps{})

	require.Error(t, pipeline.Run(context.Background(), time.Now()))
}
