// Package cmsclient talks to a running sitecms server the way the admin UI
// does: a cookie session, a cached CSRF token, and JSON calls to /api/cms.
package cmsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/architected-by-miguel/sitecms/api"
)

// csrfTTL matches the lifetime of the server's CSRF cookie.
const csrfTTL = 24 * time.Hour

// ErrCSRF is returned when the server does not hand out a CSRF token.
var ErrCSRF = errors.New("failed to initialize CMS security token")

// Error is a non-2xx response from the server.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Client is safe for concurrent use.
type Client struct {
	base   *url.URL
	origin string
	http   *http.Client
	now    func() time.Time

	mu       sync.Mutex
	csrf     string
	csrfTime time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. A cookie jar is attached
// when hc has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithClock overrides time.Now for CSRF token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a client for the site served at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing site URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("site URL %q must include scheme and host", baseURL)
	}
	c := &Client{
		base:   u,
		origin: u.Scheme + "://" + u.Host,
		http:   &http.Client{Timeout: 60 * time.Second},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		c.http.Jar = jar
	}
	return c, nil
}

// Login starts a session with the site password.
func (c *Client) Login(ctx context.Context, password string) error {
	return c.do(ctx, http.MethodPost, "/api/login", "", api.LoginRequest{Password: password}, nil, "Login failed")
}

// Logout ends the session and forgets the CSRF token.
func (c *Client) Logout(ctx context.Context) error {
	c.mu.Lock()
	c.csrf = ""
	c.mu.Unlock()
	return c.do(ctx, http.MethodPost, "/api/logout", "", nil, nil, "Logout failed")
}

// VerifySession reports whether the current session cookie is accepted.
func (c *Client) VerifySession(ctx context.Context) (bool, error) {
	var resp api.VerifySessionResponse
	err := c.do(ctx, http.MethodGet, "/api/verify-session", "", nil, &resp, "Session check failed")
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return resp.Authenticated, nil
}

// CSRFToken returns the cached token, fetching a new one once the cookie
// it was issued with has expired.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.csrf != "" && c.now().Sub(c.csrfTime) < csrfTTL {
		return c.csrf, nil
	}

	var resp api.CSRFResponse
	if err := c.do(ctx, http.MethodGet, "/api/cms/csrf", "", nil, &resp, "CSRF request failed"); err != nil {
		return "", fmt.Errorf("%w: %v", ErrCSRF, err)
	}
	if resp.CSRFToken == "" {
		return "", ErrCSRF
	}
	c.csrf = resp.CSRFToken
	c.csrfTime = c.now()
	return c.csrf, nil
}

// WriteFile commits content to path. An empty message lets the server
// derive one.
func (c *Client) WriteFile(ctx context.Context, path, content, message string) (*api.WriteFileResponse, error) {
	var resp api.WriteFileResponse
	req := api.WriteFileRequest{Path: path, Content: content, Message: message}
	if err := c.mutate(ctx, "/api/cms/write-file", req, &resp, "Write failed"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteFile removes a Markdown document.
func (c *Client) DeleteFile(ctx context.Context, path string) error {
	return c.mutate(ctx, "/api/cms/delete-file", api.DeleteFileRequest{Path: path}, nil, "Delete failed")
}

// UploadImage commits a base64-encoded image and returns where it landed.
func (c *Client) UploadImage(ctx context.Context, req api.UploadImageRequest) (*api.UploadImageResponse, error) {
	var resp api.UploadImageResponse
	if err := c.mutate(ctx, "/api/cms/upload-image", req, &resp, "Image upload failed."); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) mutate(ctx context.Context, path string, body, out any, fallback string) error {
	token, err := c.CSRFToken(ctx)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, token, body, out, fallback)
}

func (c *Client) do(ctx context.Context, method, path, csrf string, body, out any, fallback string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Origin", c.origin)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if csrf != "" {
		req.Header.Set(api.CSRFHeaderName, csrf)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e api.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&e) != nil || e.Error == "" {
			e.Error = fallback
		}
		return &Error{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
