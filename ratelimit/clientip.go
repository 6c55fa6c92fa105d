package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClient is the key shared by every request whose address cannot be
// determined.
const UnknownClient = "unknown"

// ClientIP returns the rate-limit key for r: the first entry of
// X-Forwarded-For, else the peer address, else UnknownClient.
//
// X-Forwarded-For is trusted as-is, so a client that controls the header
// controls its bucket.
func ClientIP(r *http.Request) string {
	if values := r.Header.Values("X-Forwarded-For"); len(values) > 0 {
		first, _, _ := strings.Cut(values[0], ",")
		return strings.TrimSpace(first)
	}
	if r.RemoteAddr == "" {
		return UnknownClient
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
