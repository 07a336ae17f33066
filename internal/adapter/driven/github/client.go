// Package github implements the GitHubClient port using the go-github library.
package github

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/ericfisherdev/iconbot/internal/domain/model"
	"github.com/ericfisherdev/iconbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.GitHubClient = (*Client)(nil)

// diffMediaType asks the API for a unified diff when diffURL points at api.github.com.
const diffMediaType = "application/vnd.github.v3.diff"

// Client implements the driven.GitHubClient port using the go-github library.
type Client struct {
	gh *gh.Client
}

// NewClient creates a new GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
//
// timeout bounds every request made through the client, including raw file downloads.
func NewClient(token string, timeout time.Duration) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	rateLimitClient.Timeout = timeout

	client := gh.NewClient(rateLimitClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// FetchDiff downloads the unified diff for a pull request. diffURL is taken
// verbatim from the webhook payload and may live outside the API host.
func (c *Client) FetchDiff(ctx context.Context, diffURL string) (string, error) {
	req, err := c.gh.NewRequest(http.MethodGet, diffURL, nil)
	if err != nil {
		return "", fmt.Errorf("building diff request: %w", err)
	}
	req.Header.Set("Accept", diffMediaType)

	var buf bytes.Buffer
	resp, err := c.gh.Do(ctx, req, &buf)
	if err != nil {
		if isNotFound(resp) {
			return "", driven.ErrNotFound
		}
		return "", fmt.Errorf("fetching diff %s: %w", diffURL, err)
	}

	logRateLimit(resp, "diff", 0, 1)
	return buf.String(), nil
}

// FetchFile downloads the raw content of path at ref using the repository's
// web blob URL with the raw representation requested.
func (c *Client) FetchFile(ctx context.Context, repoHTMLURL, ref, path string) ([]byte, error) {
	blobURL := rawBlobURL(repoHTMLURL, ref, path)

	req, err := c.gh.NewRequest(http.MethodGet, blobURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building blob request: %w", err)
	}
	req.Header.Set("Accept", "application/octet-stream")

	var buf bytes.Buffer
	resp, err := c.gh.Do(ctx, req, &buf)
	if err != nil {
		if isNotFound(resp) {
			return nil, driven.ErrNotFound
		}
		return nil, fmt.Errorf("fetching %s@%s: %w", path, ref, err)
	}

	// nil means absent to callers; a present empty file stays non-nil.
	if buf.Len() == 0 {
		return []byte{}, nil
	}
	return buf.Bytes(), nil
}

// FetchPullRequest retrieves a single pull request and maps it onto the same
// shape the webhook delivers.
func (c *Client) FetchPullRequest(ctx context.Context, repoFullName string, number int) (*model.InboundEvent, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	pr, resp, err := c.gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		if isNotFound(resp) {
			return nil, driven.ErrNotFound
		}
		return nil, fmt.Errorf("fetching pull request %s#%d: %w", repoFullName, number, err)
	}

	logRateLimit(resp, repoFullName+"/pull", 0, 1)

	ev := MapPullRequest(pr, "")
	return &ev, nil
}

// MapPullRequest converts a go-github PullRequest to a domain InboundEvent.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func MapPullRequest(pr *gh.PullRequest, action string) model.InboundEvent {
	return model.InboundEvent{
		Action:   model.ParseAction(action),
		Number:   pr.GetNumber(),
		Author:   pr.GetUser().GetLogin(),
		IssueURL: pr.GetIssueURL(),
		DiffURL:  pr.GetDiffURL(),
		Base: model.RepoRef{
			HTMLURL:  pr.GetBase().GetRepo().GetHTMLURL(),
			Ref:      pr.GetBase().GetRef(),
			FullName: pr.GetBase().GetRepo().GetFullName(),
		},
		Head: model.RepoRef{
			HTMLURL: pr.GetHead().GetRepo().GetHTMLURL(),
			Ref:     pr.GetHead().GetRef(),
		},
	}
}

// rawBlobURL builds {repo}/blob/{ref}/{path}?raw=1 with each path segment escaped.
func rawBlobURL(repoHTMLURL, ref, path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return fmt.Sprintf("%s/blob/%s/%s?raw=1", strings.TrimRight(repoHTMLURL, "/"), ref, strings.Join(segments, "/"))
}

// isNotFound reports whether a failed call was answered with 404.
func isNotFound(resp *gh.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

// logRateLimit logs the GitHub API rate limit status after each call.
func logRateLimit(resp *gh.Response, endpoint string, page, count int) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second),
		)
	}
}

// splitRepo splits a "owner/repo" string into its two components.
func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}

// statusCode extracts the HTTP status from a go-github error, or 0.
func statusCode(err error) int {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	return 0
}
