package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/architected-by-miguel/sitecms/session"
)

const loginFailedMessage = "Incorrect password. Try again."

// Login checks the submitted password and issues a session cookie. Every
// attempt, successful or not, counts against the login rate limit.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	expected := sitePassword()
	if expected == "" {
		a.events.failure(EventMisconfigured, r, "site password not configured")
		writeError(w, http.StatusInternalServerError, "Server misconfigured.")
		return
	}

	// A malformed body is treated as an empty password.
	var req LoginRequest
	_ = decodeJSON(w, r, maxBodyBytes, &req)

	if !safeCompare(req.Password, expected) {
		a.events.failure(EventLoginFailure, r, "incorrect password")
		a.metrics.logins.WithLabelValues("failure").Inc()
		writeError(w, http.StatusUnauthorized, loginFailedMessage)
		return
	}

	token, err := session.IssueAt(expected, a.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Server misconfigured.")
		return
	}
	http.SetCookie(w, session.NewCookie(token))
	a.events.info(EventLoginSuccess, r)
	a.metrics.logins.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// Logout clears the session and CSRF cookies. Tokens are stateless, so a
// copied token stays valid until it expires.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, session.ClearCookie())
	clearCSRFCookie(w)
	a.events.info(EventLogout, r)
	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

// VerifySession reports whether the request carries a valid session.
func (a *API) VerifySession(w http.ResponseWriter, r *http.Request) {
	res := session.AuthorizeAt(r, sitePassword(), a.now())
	if res.Status == session.Misconfigured {
		writeJSON(w, http.StatusInternalServerError, VerifySessionResponse{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, VerifySessionResponse{Authenticated: res.OK()})
}

// safeCompare compares in constant time once the lengths match.
func safeCompare(provided, expected string) bool {
	if len(provided) != len(expected) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}
