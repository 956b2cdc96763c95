package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"switch-mod-downloader/config"
)

const (
	githubAPIURL = "https://api.github.com"
	rawBaseURL   = "https://raw.githubusercontent.com"
)

var (
	// ErrNetwork wraps transport failures (DNS, TLS, connection resets).
	ErrNetwork = errors.New("network error")
	// ErrParse is returned when a listing body cannot be decoded.
	ErrParse = errors.New("malformed response")
	// ErrNotFound is returned when the repository or branch does not exist.
	ErrNotFound = errors.New("not found")
)

// HTTPError carries a non-2xx response.
type HTTPError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// Is lets errors.Is(err, ErrNotFound) match a 404 response.
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client talks to the GitHub REST API and the raw content host.
type Client struct {
	BaseURL    string
	RawBaseURL string
	Token      string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient creates a GitHub client using the provided configuration.
func NewClient(cfg config.Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("USERAGENT is not configured")
	}

	return &Client{
		BaseURL:    githubAPIURL,
		RawBaseURL: rawBaseURL,
		Token:      cfg.GitHubToken,
		UserAgent:  cfg.UserAgent,
		HTTPClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
	}, nil
}

func (c *Client) makeRequest(ctx context.Context, fullURL, accept string, authenticated bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", accept)
	if authenticated && c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNetwork, fullURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			URL:        fullURL,
			Message:    strings.TrimSpace(string(bodyBytes)),
		}
	}

	return resp, nil
}

// FetchTree retrieves the recursive file tree of branch in repo ("owner/name").
// A truncated listing is returned as-is.
func (c *Client) FetchTree(ctx context.Context, repo, branch string) (*Tree, error) {
	fullURL := fmt.Sprintf("%s/repos/%s/git/trees/%s?recursive=1", c.BaseURL, repo, branch)

	resp, err := c.makeRequest(ctx, fullURL, "application/vnd.github+json", true)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("repository %s or branch %s: %w", repo, branch, err)
		}
		return nil, fmt.Errorf("failed to fetch tree for %s: %w", repo, err)
	}
	defer resp.Body.Close()

	var tree Tree
	if err := json.NewDecoder(resp.Body).Decode(&tree); err != nil {
		return nil, fmt.Errorf("%w: tree for %s: %w", ErrParse, repo, err)
	}
	return &tree, nil
}

// RawURL returns the raw-content URL of path on branch of repo.
func (c *Client) RawURL(repo, branch, path string) string {
	return fmt.Sprintf("%s/%s/refs/heads/%s/%s", c.RawBaseURL, repo, branch, path)
}

// Download streams the body at downloadURL into w and returns the number of bytes written.
func (c *Client) Download(ctx context.Context, downloadURL string, w io.Writer) (int64, error) {
	resp, err := c.makeRequest(ctx, downloadURL, "application/octet-stream", false)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	tw := &writeTracker{w: w}
	n, err := io.Copy(tw, resp.Body)
	if tw.err != nil {
		return n, tw.err
	}
	if err != nil {
		return n, fmt.Errorf("%w: reading %s: %w", ErrNetwork, downloadURL, err)
	}
	return n, nil
}

// writeTracker remembers whether a copy failed on the writing side.
type writeTracker struct {
	w   io.Writer
	err error
}

func (t *writeTracker) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil {
		t.err = err
	}
	return n, err
}
