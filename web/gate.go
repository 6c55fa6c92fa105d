package web

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/architected-by-miguel/sitecms/session"
)

// PrivatePrefixes are the page sections that require a session.
var PrivatePrefixes = []string{"/case-studies", "/deep-dive", "/admin"}

// Gate redirects requests for private sections to /login when they carry
// no valid session. A missing site password locks the sections rather than
// opening them. The original path and query are passed as ?next=.
func Gate(password func() string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !private(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			if res := session.AuthorizeAt(r, password(), time.Now()); !res.OK() {
				http.Redirect(w, r, loginURL(r.URL), http.StatusTemporaryRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func private(p string) bool {
	for _, prefix := range PrivatePrefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}

func loginURL(u *url.URL) string {
	target := u.EscapedPath()
	if u.RawQuery != "" {
		target += "?" + u.RawQuery
	}
	return "/login?next=" + url.QueryEscape(target)
}
