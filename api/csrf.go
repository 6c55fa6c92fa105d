package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/architected-by-miguel/sitecms/internal/util"
)

// CSRFHeaderName carries the echoed double-submit token on CMS mutations.
const CSRFHeaderName = "x-cms-csrf"

const (
	csrfCookieName = "cms_csrf"
	csrfMaxAge     = 24 * 60 * 60
	csrfTokenBytes = 24
)

// CSRFToken mints a token, sets it as the double-submit cookie and returns
// it for the client to echo in the x-cms-csrf header.
func (a *API) CSRFToken(w http.ResponseWriter, r *http.Request) {
	token, err := util.RandomHex(csrfTokenBytes)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate CSRF token")
		return
	}
	writeCSRFCookie(w, token)
	writeJSON(w, http.StatusOK, CSRFResponse{CSRFToken: token})
}

// RequireCSRF enforces same-origin and double-submit cookie checks. The
// Origin header must contain the request host, and the x-cms-csrf header
// must equal the non-empty cms_csrf cookie.
func (a *API) RequireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason, ok := checkCSRF(r); !ok {
			a.events.failure(EventCSRFRejected, r, reason)
			writeError(w, http.StatusForbidden, "CSRF validation failed.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func checkCSRF(r *http.Request) (reason string, ok bool) {
	origin := r.Header.Get("Origin")
	if r.Host == "" || origin == "" || !strings.Contains(origin, r.Host) {
		return "origin mismatch", false
	}
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil || cookie.Value == "" {
		return "missing CSRF cookie", false
	}
	header := r.Header.Get(CSRFHeaderName)
	if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(header)) != 1 {
		return "CSRF token mismatch", false
	}
	return "", true
}

// writeCSRFCookie sets the CSRF double-submit cookie. It is NOT HttpOnly so
// that the browser-side SPA can read it.
func writeCSRFCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   csrfMaxAge,
	})
}

// clearCSRFCookie removes the CSRF cookie on logout.
func clearCSRFCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    "",
		Path:     "/",
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
