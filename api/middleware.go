package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/architected-by-miguel/sitecms/ratelimit"
	"github.com/architected-by-miguel/sitecms/session"
)

// RateLimit counts every request against l and rejects those over the
// policy with 429 and msg. Store failures are logged and the request is
// allowed.
func (a *API) RateLimit(l *ratelimit.Limiter, msg string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limited, retryAfter, err := l.Check(r.Context(), ratelimit.ClientIP(r))
			if err != nil {
				a.events.error(EventStoreFailure, r, err, slog.String("policy", l.Policy().Name))
				next.ServeHTTP(w, r)
				return
			}
			if limited {
				a.events.failure(EventRateLimited, r, "over limit", slog.String("policy", l.Policy().Name))
				a.metrics.rateLimited.WithLabelValues(l.Policy().Name).Inc()
				writeRateLimited(w, retryAfter, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeRateLimited sends a 429 Too Many Requests response.
func writeRateLimited(w http.ResponseWriter, retryAfter time.Duration, msg string) {
	w.Header().Set("Retry-After", ratelimit.RetryAfterString(retryAfter))
	writeError(w, http.StatusTooManyRequests, msg)
}

// RequireSession rejects requests without a valid session cookie.
func (a *API) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := session.AuthorizeAt(r, sitePassword(), a.now())
		switch res.Status {
		case session.Authorized:
			next.ServeHTTP(w, r)
		case session.Misconfigured:
			a.events.failure(EventMisconfigured, r, res.Reason)
			writeError(w, http.StatusInternalServerError, "Server misconfigured.")
		default:
			a.events.failure(EventUnauthorized, r, res.Reason)
			writeError(w, http.StatusUnauthorized, "Unauthorized")
		}
	})
}
