package ports

import (
	"context"
	"errors"
	"time"

	"ReadwiseDigest/internal/domain"
)

// ErrSourceUnavailable marks a fetch that exhausted its retry budget; the
// wrapped chain carries the last underlying cause.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrSourceRejected marks a terminal upstream response (non-2xx, non-429)
// that must not be retried.
var ErrSourceRejected = errors.New("source rejected request")

// DocumentSource lists documents moved into the archive since an instant.
type DocumentSource interface {
	ListArchived(ctx context.Context, since time.Time) ([]domain.Document, error)
}

// HighlightSource lists highlights created after an instant.
type HighlightSource interface {
	ListRecent(ctx context.Context, since time.Time) ([]domain.Highlight, error)
}

// CredentialChecker verifies an upstream access token before any paging starts.
type CredentialChecker interface {
	CheckAuth(ctx context.Context) error
}

// Renderer turns an aggregated report into a formatted document.
type Renderer interface {
	Render(report domain.Report) (string, error)
}

// CommitInfo describes the commit produced by a publish.
type CommitInfo struct {
	SHA     string
	URL     string
	Path    string
	Message string
}

// Publisher writes rendered content to the destination file store.
type Publisher interface {
	CreateOrUpdate(ctx context.Context, path, content, message string) (CommitInfo, error)
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
