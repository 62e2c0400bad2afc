package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v45/github"
	"github.com/hashicorp/go-cleanhttp"

	"github.com/andywolf/ghcomment/internal/credentials"
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com/"

// MaxPerPage is the largest page the list-repositories call requests.
const MaxPerPage = 100

// Client issues the three API calls. Each call returns exactly one result and
// is never retried.
type Client struct {
	gh      *gh.Client
	perPage int
}

type clientOptions struct {
	baseURL   string
	perPage   int
	timeout   time.Duration
	transport http.RoundTripper
	userAgent string
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

// WithBaseURL sets the API base URL (useful for testing and GitHub Enterprise).
func WithBaseURL(u string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = u
	}
}

// WithPerPage sets the page size of ListRepositories, capped at MaxPerPage.
func WithPerPage(n int) ClientOption {
	return func(o *clientOptions) {
		o.perPage = n
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithTransport sets the transport wrapped by the authenticator.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) {
		o.transport = rt
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(o *clientOptions) {
		o.userAgent = ua
	}
}

// NewClient creates a Client whose requests are signed from source.
func NewClient(source credentials.Source, opts ...ClientOption) (*Client, error) {
	if source == nil {
		return nil, fmt.Errorf("credential source cannot be nil")
	}

	o := clientOptions{
		baseURL:   DefaultBaseURL,
		perPage:   MaxPerPage,
		timeout:   30 * time.Second,
		transport: cleanhttp.DefaultPooledTransport(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.perPage <= 0 || o.perPage > MaxPerPage {
		o.perPage = MaxPerPage
	}

	baseURL, err := url.Parse(o.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", o.baseURL, err)
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}

	httpClient := &http.Client{
		Transport: &BasicAuthTransport{Source: source, Transport: o.transport},
		Timeout:   o.timeout,
	}

	client := gh.NewClient(httpClient)
	client.BaseURL = baseURL
	if o.userAgent != "" {
		client.UserAgent = o.userAgent
	}

	return &Client{gh: client, perPage: o.perPage}, nil
}

// ListRepositories returns the first page of the authenticated user's
// repositories. Every record goes through MapRepository; one malformed record
// fails the whole call.
func (c *Client) ListRepositories(ctx context.Context) ([]Repository, error) {
	const op = "list repositories"

	req, err := c.gh.NewRequest(http.MethodGet, fmt.Sprintf("user/repos?per_page=%d", c.perPage), nil)
	if err != nil {
		return nil, requestFailed(op, err)
	}

	var records []json.RawMessage
	if _, err := c.gh.Do(ctx, req, &records); err != nil {
		return nil, requestFailed(op, err)
	}

	repos := make([]Repository, 0, len(records))
	for i, raw := range records {
		repo, err := MapRepository(raw)
		if err != nil {
			return nil, requestFailed(op, fmt.Errorf("record %d: %w", i, err))
		}
		repos = append(repos, repo)
	}

	return repos, nil
}

// ListIssues returns the issues of owner/repo.
func (c *Client) ListIssues(ctx context.Context, owner, repo string) ([]Issue, error) {
	const op = "list issues"

	path := fmt.Sprintf("repos/%s/%s/issues", url.PathEscape(owner), url.PathEscape(repo))
	req, err := c.gh.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, requestFailed(op, err)
	}

	var issues []Issue
	if _, err := c.gh.Do(ctx, req, &issues); err != nil {
		return nil, requestFailed(op, err)
	}
	if issues == nil {
		issues = []Issue{}
	}

	return issues, nil
}

// PostComment posts issue, including its Comment, to commentsURL. The URL is
// used verbatim; it comes from the server-provided issue record. The response
// body is returned unparsed.
func (c *Client) PostComment(ctx context.Context, commentsURL string, issue Issue) ([]byte, error) {
	const op = "post comment"

	if commentsURL == "" {
		return nil, requestFailed(op, fmt.Errorf("comments URL cannot be empty"))
	}

	req, err := c.gh.NewRequest(http.MethodPost, commentsURL, issue)
	if err != nil {
		return nil, requestFailed(op, err)
	}

	var body bytes.Buffer
	if _, err := c.gh.Do(ctx, req, &body); err != nil {
		return nil, requestFailed(op, err)
	}

	return body.Bytes(), nil
}
