package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/architected-by-miguel/sitecms/ratelimit"
)

// Event identifies the type of security-relevant action being logged.
type Event string

const (
	EventLoginSuccess    Event = "login_success"
	EventLoginFailure    Event = "login_failure"
	EventLogout          Event = "logout"
	EventRateLimited     Event = "rate_limited"
	EventUnauthorized    Event = "unauthorized"
	EventMisconfigured   Event = "misconfigured"
	EventCSRFRejected    Event = "csrf_rejected"
	EventInvalidRequest  Event = "invalid_request"
	EventContentWritten  Event = "content_written"
	EventContentDeleted  Event = "content_deleted"
	EventImageUploaded   Event = "image_uploaded"
	EventGitHubFailure   Event = "github_failure"
	EventContactReceived Event = "contact_received"
	EventStoreFailure    Event = "ratelimit_store_failure"
)

// eventLogger wraps slog.Logger for structured security event logging.
// Events are log lines only; nothing is persisted.
type eventLogger struct {
	logger  *slog.Logger
	metrics *metricsCollector
}

func newEventLogger(logger *slog.Logger) *eventLogger {
	return &eventLogger{
		logger: logger.With("component", "api"),
	}
}

func (el *eventLogger) log(level slog.Level, event Event, r *http.Request, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("event", string(event)),
		slog.String("client_ip", ratelimit.ClientIP(r)),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	baseAttrs = append(baseAttrs, attrs...)
	el.logger.LogAttrs(r.Context(), level, string(event), baseAttrs...)
	el.metrics.recordEvent(event)
}

func (el *eventLogger) info(event Event, r *http.Request, attrs ...slog.Attr) {
	el.log(slog.LevelInfo, event, r, attrs...)
}

func (el *eventLogger) warn(event Event, r *http.Request, attrs ...slog.Attr) {
	el.log(slog.LevelWarn, event, r, attrs...)
}

// failure logs a rejected request with its reason.
func (el *eventLogger) failure(event Event, r *http.Request, reason string, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("reason", reason),
	}
	attrs = append(attrs, extra...)
	el.warn(event, r, attrs...)
}

func (el *eventLogger) error(event Event, r *http.Request, err error, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("error", err.Error()),
	}
	attrs = append(attrs, extra...)
	el.log(slog.LevelError, event, r, attrs...)
}
