package session

import (
	"net/http"
	"time"
)

// Status is the outcome of an authorization check.
type Status int

const (
	Authorized Status = iota
	Unauthorized
	Misconfigured
)

func (s Status) String() string {
	switch s {
	case Authorized:
		return "authorized"
	case Unauthorized:
		return "unauthorized"
	case Misconfigured:
		return "misconfigured"
	default:
		return "unknown"
	}
}

// Result is the tagged result of Authorize. Reason is empty when authorized.
type Result struct {
	Status Status
	Reason string
}

// OK reports whether the request is authorized.
func (r Result) OK() bool { return r.Status == Authorized }

// Authorize checks the request's session cookie against secret.
func Authorize(r *http.Request, secret string) Result {
	return AuthorizeAt(r, secret, time.Now())
}

// AuthorizeAt is Authorize evaluated at now.
func AuthorizeAt(r *http.Request, secret string, now time.Time) Result {
	if secret == "" {
		return Result{Status: Misconfigured, Reason: "site password not configured"}
	}
	token, ok := TokenFromRequest(r)
	if !ok {
		return Result{Status: Unauthorized, Reason: "missing session cookie"}
	}
	if !VerifyAt(token, secret, now) {
		return Result{Status: Unauthorized, Reason: "invalid session token"}
	}
	return Result{Status: Authorized}
}
