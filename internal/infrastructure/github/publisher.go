// Package github publishes rendered digests to a repository through the
// GitHub contents API.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ReadwiseDigest/internal/config"
	"ReadwiseDigest/internal/ports"
)

// Publisher creates or updates a single file per digest on a fixed branch.
type Publisher struct {
	apiBaseURL string
	token      string
	owner      string
	repo       string
	branch     string
	client     *http.Client
	logger     *slog.Logger
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher wires repository coordinates from configuration.
func NewPublisher(cfg config.GitHubConfig, logger *slog.Logger) *Publisher {
	branch := cfg.TargetBranch
	if branch == "" {
		branch = "main"
	}
	return &Publisher{
		apiBaseURL: strings.TrimSuffix(cfg.APIBaseURL, "/"),
		token:      cfg.Token,
		owner:      cfg.RepoOwner,
		repo:       cfg.RepoName,
		branch:     branch,
		client:     &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// CreateOrUpdate writes content to path on the target branch, updating in
// place when the file already exists.
func (p *Publisher) CreateOrUpdate(ctx context.Context, path, content, message string) (ports.CommitInfo, error) {
	if p.token == "" || p.owner == "" || p.repo == "" {
		return ports.CommitInfo{}, fmt.Errorf("github publisher misconfigured")
	}

	sha, exists, err := p.existingFileSHA(ctx, path)
	if err != nil {
		return ports.CommitInfo{}, fmt.Errorf("check %s: %w", path, err)
	}
	if exists {
		p.info("file exists, updating", "path", path)
	} else {
		p.info("file does not exist, creating", "path", path)
	}

	payload := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
		"branch":  p.branch,
	}
	if exists {
		payload["sha"] = sha
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ports.CommitInfo{}, fmt.Errorf("marshal contents payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, p.contentsURL(path), bytes.NewReader(body))
	if err != nil {
		return ports.CommitInfo{}, fmt.Errorf("new request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return ports.CommitInfo{}, fmt.Errorf("put %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return ports.CommitInfo{}, fmt.Errorf("github error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var result struct {
		Commit struct {
			SHA     string `json:"sha"`
			HTMLURL string `json:"html_url"`
		} `json:"commit"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ports.CommitInfo{}, fmt.Errorf("decode commit response: %w", err)
	}

	p.info("published", "path", path, "commit", result.Commit.SHA)
	return ports.CommitInfo{
		SHA:     result.Commit.SHA,
		URL:     result.Commit.HTMLURL,
		Path:    path,
		Message: message,
	}, nil
}

// existingFileSHA looks up the current blob sha for path; a 404 means the
// file will be created.
func (p *Publisher) existingFileSHA(ctx context.Context, path string) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.contentsURL(path)+"?ref="+p.branch, nil)
	if err != nil {
		return "", false, fmt.Errorf("new request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("get contents: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", false, nil
	case resp.StatusCode != http.StatusOK:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", false, fmt.Errorf("github error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var file struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return "", false, fmt.Errorf("decode contents response: %w", err)
	}
	return file.SHA, true, nil
}

func (p *Publisher) contentsURL(path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", p.apiBaseURL, p.owner, p.repo, path)
}

func (p *Publisher) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Accept", "application/vnd.github+json")
}

func (p *Publisher) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}
