// Package jira is the HTTP client for the remote issue tracker: issue
// search, paginated changelog retrieval and the current-count lookup.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"movers/internal/config"
	"movers/internal/errors"
	"movers/internal/logging"
)

const (
	// DefaultMaxIssues is the number of issues requested when the caller
	// does not ask for a specific cap
	DefaultMaxIssues = 150
	// MaxIssuesCeiling is the hard cap on issues requested per search
	MaxIssuesCeiling = 1000

	searchPath       = "/rest/api/3/search"
	legacySearchPath = "/rest/api/2/search"

	maxBodySize = 10 << 20 // 10 MB
	snippetSize = 512
)

// Client talks to a single Jira instance using basic auth.
type Client struct {
	baseURL string
	email   string
	token   string
	client  *http.Client
	logger  *logging.Logger
}

// NewClient creates a client from configuration. It fails if any of the
// connection settings are absent, before any request is attempted.
func NewClient(cfg *config.Config, logger *logging.Logger) (*Client, error) {
	if err := cfg.ValidateJira(); err != nil {
		return nil, err
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.Jira.BaseURL, "/"),
		email:   cfg.Jira.Email,
		token:   cfg.Jira.APIToken,
		client: &http.Client{
			Timeout: time.Duration(cfg.Jira.TimeoutSeconds) * time.Second,
		},
		logger: logger,
	}, nil
}

// get performs a GET request and returns the response body, mapping
// non-success statuses to upstream errors with a body snippet.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if query != nil {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.NewInternal(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.email, c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.NewUpstream(err, "request to %s failed", path)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, errors.NewUpstream(err, "failed to read response from %s", path)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewUpstream(nil, "HTTP %d from %s: %s", resp.StatusCode, path, snippet(data))
	}

	return data, nil
}

// SearchIssues runs a JQL search and returns the matching issue identities.
// A non-positive maxIssues falls back to DefaultMaxIssues, anything above
// MaxIssuesCeiling is clamped down; only id and key are requested to bound
// the response size.
func (c *Client) SearchIssues(ctx context.Context, jql string, maxIssues int) ([]Issue, error) {
	if maxIssues <= 0 {
		maxIssues = DefaultMaxIssues
	}
	if maxIssues > MaxIssuesCeiling {
		maxIssues = MaxIssuesCeiling
	}

	query := url.Values{}
	query.Set("jql", jql)
	query.Set("maxResults", strconv.Itoa(maxIssues))
	query.Set("fields", "id,key")

	body, err := c.get(ctx, searchPath, query)
	if err != nil {
		return nil, err
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, errors.NewUpstream(err, "unparseable search response")
	}

	if c.logger != nil {
		c.logger.Debug("Issue search complete", map[string]interface{}{
			"jql":   jql,
			"found": len(result.Issues),
			"total": result.Total,
		})
	}

	return result.Issues, nil
}

// FetchChangelogPage retrieves one page of an issue's change history.
// The caller drives pagination via startAt and pageSize.
func (c *Client) FetchChangelogPage(ctx context.Context, issueID string, startAt, pageSize int) (*ChangelogPage, error) {
	path := fmt.Sprintf("/rest/api/3/issue/%s/changelog", url.PathEscape(issueID))

	query := url.Values{}
	query.Set("startAt", strconv.Itoa(startAt))
	query.Set("maxResults", strconv.Itoa(pageSize))

	body, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	var page ChangelogPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, errors.NewUpstream(err, "unparseable changelog response for issue %s", issueID)
	}

	return &page, nil
}

// CountIssues returns the total number of issues matching jql without
// fetching any of them. On failure it makes exactly one fallback attempt
// against the older API version before surfacing the error.
func (c *Client) CountIssues(ctx context.Context, jql string) (int, error) {
	count, err := c.countAt(ctx, searchPath, jql)
	if err == nil {
		return count, nil
	}

	if c.logger != nil {
		c.logger.Warn("Count via v3 failed, retrying against v2", map[string]interface{}{
			"error": err.Error(),
		})
	}

	count, fallbackErr := c.countAt(ctx, legacySearchPath, jql)
	if fallbackErr != nil {
		return 0, err
	}
	return count, nil
}

func (c *Client) countAt(ctx context.Context, path, jql string) (int, error) {
	query := url.Values{}
	query.Set("jql", jql)
	query.Set("maxResults", "0")

	body, err := c.get(ctx, path, query)
	if err != nil {
		return 0, err
	}

	var result SearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, errors.NewUpstream(err, "unparseable count response")
	}

	return result.Total, nil
}

func snippet(data []byte) string {
	s := string(data)
	if len(s) > snippetSize {
		s = s[:snippetSize] + "..."
	}
	return strings.TrimSpace(s)
}
