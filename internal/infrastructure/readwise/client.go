package readwise

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"ReadwiseDigest/internal/config"
	"ReadwiseDigest/internal/ports"
)

const (
	maxAttempts    = 3
	baseRetryDelay = time.Second
)

// Client talks to the Readwise Reader (v3) and main (v2) APIs with bounded
// retry, exponential backoff, and rate-limit cooperation.
type Client struct {
	readerBaseURL string
	baseURL       string
	token         string
	httpClient    *http.Client
	retryDelay    time.Duration
	logger        *slog.Logger
}

var _ ports.DocumentSource = (*Client)(nil)
var _ ports.HighlightSource = (*Client)(nil)
var _ ports.CredentialChecker = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.ReadwiseConfig, logger *slog.Logger) *Client {
	return &Client{
		readerBaseURL: cfg.ReaderBaseURL,
		baseURL:       cfg.BaseURL,
		token:         cfg.AccessToken,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		retryDelay:    baseRetryDelay,
		logger:        logger,
	}
}

// CheckAuth verifies the access token against the v2 auth endpoint.
func (c *Client) CheckAuth(ctx context.Context) error {
	if err := c.getJSON(ctx, c.baseURL+"auth/", nil, nil); err != nil {
		return fmt.Errorf("check auth: %w", err)
	}
	return nil
}

// getJSON performs an authenticated GET and decodes the response into v.
// Transport failures and HTTP 429 are retried up to maxAttempts total
// attempts; 429 honors an integer Retry-After header, otherwise the delay
// follows retryDelay * 2^attempt. Any other non-2xx status is terminal.
func (c *Client) getJSON(ctx context.Context, rawURL string, query url.Values, v any) error {
	operation := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		if query != nil {
			req.URL.RawQuery = query.Encode()
		}
		req.Header.Set("Authorization", "Token "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", rawURL, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			if hint, ok := retryAfterHint(resp.Header); ok {
				return nil, fmt.Errorf("rate limited by %s: %w", rawURL, backoff.RetryAfter(hint))
			}
			return nil, fmt.Errorf("rate limited by %s", rawURL)
		}

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return nil, backoff.Permanent(fmt.Errorf("%w: %s returned %s: %s",
				ports.ErrSourceRejected, rawURL, resp.Status, strings.TrimSpace(string(detail))))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		return body, nil
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.retryPolicy()),
		backoff.WithMaxTries(maxAttempts),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.warn("request failed, retrying", "url", rawURL, "wait", wait, "error", err)
		}),
	)
	if err != nil {
		if errors.Is(err, ports.ErrSourceRejected) {
			return err
		}
		return fmt.Errorf("%w: %s after %d attempts: %w", ports.ErrSourceUnavailable, rawURL, maxAttempts, err)
	}

	if v == nil {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s response: %w", rawURL, err)
	}
	return nil
}

func (c *Client) retryPolicy() *backoff.ExponentialBackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.retryDelay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxInterval = 5 * time.Minute
	return policy
}

// retryAfterHint extracts an integer Retry-After value in seconds.
func retryAfterHint(header http.Header) (int, bool) {
	raw := strings.TrimSpace(header.Get("Retry-After"))
	if raw == "" {
		return 0, false
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return seconds, true
}

func (c *Client) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
