package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckCSRF(t *testing.T) {
	const token = "abc123"
	tests := []struct {
		name   string
		host   string
		origin string
		cookie string
		header string
		ok     bool
	}{
		{"valid", "example.com", "https://example.com", token, token, true},
		{"origin on another host", "example.com", "https://evil.test", token, token, false},
		{"missing origin", "example.com", "", token, token, false},
		{"missing host", "", "https://example.com", token, token, false},
		{"missing cookie", "example.com", "https://example.com", "", token, false},
		{"missing header", "example.com", "https://example.com", token, "", false},
		{"mismatch", "example.com", "https://example.com", token, "abc124", false},
		{"origin contains host", "example.com", "https://example.com.evil.test", token, token, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/cms/write-file", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: csrfCookieName, Value: tt.cookie})
			}
			if tt.header != "" {
				r.Header.Set(CSRFHeaderName, tt.header)
			}
			_, ok := checkCSRF(r)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestCSRFTokenCookie(t *testing.T) {
	a := New()
	w := httptest.NewRecorder()
	a.CSRFToken(w, httptest.NewRequest(http.MethodGet, "/cms/csrf", nil))

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	if assert.Len(t, cookies, 1) {
		c := cookies[0]
		assert.Equal(t, csrfCookieName, c.Name)
		assert.Len(t, c.Value, 48)
		assert.False(t, c.HttpOnly, "the SPA must be able to read it")
		assert.True(t, c.Secure)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.Equal(t, 86400, c.MaxAge)
		assert.Equal(t, "/", c.Path)
	}
}

func TestSafeCompare(t *testing.T) {
	assert.True(t, safeCompare("secret", "secret"))
	assert.False(t, safeCompare("secret", "secreT"))
	assert.False(t, safeCompare("secret", "secret-longer"))
	assert.False(t, safeCompare("", "secret"))
}
