// Package github commits content files to a single repository branch through
// the GitHub Contents API.
package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v65/github"
	"golang.org/x/oauth2"
)

const (
	// UserAgent identifies the CMS to GitHub.
	UserAgent  = "architected-by-miguel-cms"
	apiVersion = "2022-11-28"
	mediaType  = "application/vnd.github+json"
)

var (
	// ErrFileNotFound is returned by Delete when the path has no file on the
	// configured branch.
	ErrFileNotFound = errors.New("file does not exist on branch")
	// ErrConflict marks an upstream rejection caused by a stale blob SHA.
	ErrConflict = errors.New("stale file sha")
)

// Client reads blob SHAs and writes or deletes files on one branch.
type Client struct {
	client *github.Client
	cfg    Config
}

// Option configures a Client.
type Option func(*options)

type options struct {
	baseURL    string
	httpClient *http.Client
}

// WithBaseURL points the client at a different API root, such as a GitHub
// Enterprise host or a test server.
func WithBaseURL(u string) Option {
	return func(o *options) {
		o.baseURL = u
	}
}

// WithHTTPClient sets the client used beneath the token transport.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

// NewClient constructs a client for cfg.
func NewClient(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	base := http.DefaultTransport
	if o.httpClient != nil && o.httpClient.Transport != nil {
		base = o.httpClient.Transport
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
		Transport: &headerTransport{base: base},
	})
	// Personal access tokens never expire from the client's point of view.
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	client := github.NewClient(oauth2.NewClient(ctx, src))
	client.UserAgent = UserAgent

	if o.baseURL != "" {
		u := o.baseURL
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		parsed, err := url.Parse(u)
		if err != nil {
			return nil, fmt.Errorf("parsing base url: %w", err)
		}
		client.BaseURL = parsed
	}
	return &Client{client: client, cfg: cfg}, nil
}

// GetSHA returns the blob SHA of path on the branch. found is false when
// the file does not exist.
func (c *Client) GetSHA(ctx context.Context, path string) (sha string, found bool, err error) {
	file, _, _, err := c.client.Repositories.GetContents(ctx, c.cfg.Owner, c.cfg.Repo, path,
		&github.RepositoryContentGetOptions{Ref: c.cfg.Branch})
	if err != nil {
		if isStatus(err, http.StatusNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("GitHub lookup failed: %s", upstreamMessage(err))
	}
	// A directory listing has no single blob SHA.
	if file == nil {
		return "", false, nil
	}
	return file.GetSHA(), true, nil
}

// Write creates or replaces path with content. created reports whether the
// file did not previously exist.
func (c *Client) Write(ctx context.Context, path string, content []byte, message string) (created bool, err error) {
	sha, found, err := c.GetSHA(ctx, path)
	if err != nil {
		return false, err
	}
	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		Branch:  github.String(c.cfg.Branch),
	}
	if found {
		opts.SHA = github.String(sha)
		_, _, err = c.client.Repositories.UpdateFile(ctx, c.cfg.Owner, c.cfg.Repo, path, opts)
	} else {
		_, _, err = c.client.Repositories.CreateFile(ctx, c.cfg.Owner, c.cfg.Repo, path, opts)
	}
	if err != nil {
		if isStatus(err, http.StatusConflict) {
			return false, fmt.Errorf("GitHub write failed: %s: %w", upstreamMessage(err), ErrConflict)
		}
		return false, fmt.Errorf("GitHub write failed: %s", upstreamMessage(err))
	}
	return !found, nil
}

// WriteBase64 is Write for content that is already base64 encoded.
func (c *Client) WriteBase64(ctx context.Context, path, contentBase64, message string) (created bool, err error) {
	content, err := base64.StdEncoding.DecodeString(contentBase64)
	if err != nil {
		return false, fmt.Errorf("decoding content: %w", err)
	}
	return c.Write(ctx, path, content, message)
}

// Delete removes path from the branch.
func (c *Client) Delete(ctx context.Context, path, message string) error {
	sha, found, err := c.GetSHA(ctx, path)
	if err != nil {
		return err
	}
	if !found {
		return ErrFileNotFound
	}
	_, _, err = c.client.Repositories.DeleteFile(ctx, c.cfg.Owner, c.cfg.Repo, path, &github.RepositoryContentFileOptions{
		Message: github.String(message),
		SHA:     github.String(sha),
		Branch:  github.String(c.cfg.Branch),
	})
	if err != nil {
		if isStatus(err, http.StatusConflict) {
			return fmt.Errorf("GitHub delete failed: %s: %w", upstreamMessage(err), ErrConflict)
		}
		return fmt.Errorf("GitHub delete failed: %s", upstreamMessage(err))
	}
	return nil
}

func isStatus(err error, code int) bool {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode == code
	}
	return false
}

// upstreamMessage prefers GitHub's own message over the client's formatting,
// which embeds the request URL. Validation details follow in parentheses.
func upstreamMessage(err error) string {
	var errResp *github.ErrorResponse
	if !errors.As(err, &errResp) || errResp.Message == "" {
		return err.Error()
	}
	details := make([]string, 0, len(errResp.Errors))
	for _, e := range errResp.Errors {
		switch {
		case e.Message != "":
			details = append(details, e.Message)
		case e.Field != "":
			details = append(details, fmt.Sprintf("%s.%s %s", e.Resource, e.Field, e.Code))
		case e.Code != "":
			details = append(details, e.Code)
		}
	}
	if len(details) == 0 {
		return errResp.Message
	}
	return errResp.Message + " (" + strings.Join(details, "; ") + ")"
}

// headerTransport pins the media type and API version on every request.
type headerTransport struct {
	base http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Accept", mediaType)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", UserAgent)
	return t.base.RoundTrip(req)
}
