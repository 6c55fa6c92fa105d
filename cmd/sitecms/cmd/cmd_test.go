package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/architected-by-miguel/sitecms/api"
	"github.com/architected-by-miguel/sitecms/github"
	"github.com/architected-by-miguel/sitecms/web"
)

const testPassword = "correct-horse-battery"

// fakeRepo keeps commits in memory.
type fakeRepo struct {
	mu    sync.Mutex
	files map[string]string
}

func (f *fakeRepo) Write(_ context.Context, path string, content []byte, _ string) (bool, error) {
	return f.put(path, string(content)), nil
}

func (f *fakeRepo) WriteBase64(_ context.Context, path, contentBase64, _ string) (bool, error) {
	return f.put(path, contentBase64), nil
}

func (f *fakeRepo) Delete(_ context.Context, path, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[path]; !ok {
		return github.ErrFileNotFound
	}
	delete(f.files, path)
	return nil
}

func (f *fakeRepo) put(path, content string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, exists := f.files[path]
	f.files[path] = content
	return !exists
}

func (f *fakeRepo) get(path string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.files[path]
	return s, ok
}

func (f *fakeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files)
}

func newTestAPI(repo *fakeRepo) *api.API {
	return api.New(
		api.WithLogger(slog.New(slog.NewJSONHandler(io.Discard, nil))),
		api.WithContentFactory(func(context.Context) (api.ContentRepository, error) { return repo, nil }),
	)
}

// startSite serves the full router over TLS, since session cookies are
// Secure, and points the cms commands at it.
func startSite(t *testing.T) (*httptest.Server, *fakeRepo) {
	t.Helper()
	t.Setenv("SITE_PASSWORD", testPassword)

	repo := &fakeRepo{files: map[string]string{}}
	handler, err := newRouter(newTestAPI(repo), web.Placeholder(), false)
	require.NoError(t, err)
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)

	client := srv.Client()
	client.Jar = nil
	cmsHTTPClient = client
	t.Cleanup(func() { cmsHTTPClient = nil })
	return srv, repo
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		pushMessage, uploadFolder, importFolder, noCommit = "", "", "imports", false
		checkJSONOutput = false
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
