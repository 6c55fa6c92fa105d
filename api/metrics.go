package api

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics are the Prometheus counters exported by the API.
type metrics struct {
	logins      *prometheus.CounterVec
	rateLimited *prometheus.CounterVec
	github      *prometheus.CounterVec
	contact     prometheus.Counter
}

// newMetrics builds the collectors and registers them with reg when it is
// non-nil.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitecms",
			Subsystem: "auth",
			Name:      "logins_total",
			Help:      "Login attempts by outcome",
		}, []string{"outcome"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitecms",
			Subsystem: "ratelimit",
			Name:      "rejections_total",
			Help:      "Requests rejected by rate limiting, by policy",
		}, []string{"policy"}),
		github: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitecms",
			Subsystem: "github",
			Name:      "operations_total",
			Help:      "Content operations against GitHub by operation and outcome",
		}, []string{"operation", "outcome"}),
		contact: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sitecms",
			Subsystem: "contact",
			Name:      "submissions_total",
			Help:      "Accepted contact form submissions",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.logins, m.rateLimited, m.github, m.contact)
	}
	return m
}

func (m *metrics) githubOp(op string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.github.WithLabelValues(op, outcome).Inc()
}

// AlertType identifies the kind of anomaly detected.
type AlertType string

const (
	AlertLoginFailureSpike AlertType = "login_failure_spike"
	AlertRateLimitSpike    AlertType = "rate_limit_spike"
)

// AlertEvent describes an anomaly that triggered an alert.
type AlertEvent struct {
	Type      AlertType `json:"type"`
	Message   string    `json:"message"`
	Count     int       `json:"count"`
	Threshold int       `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertFunc is the callback invoked when an anomaly is detected.
type AlertFunc func(AlertEvent)

// metricsCollector tracks sliding window counters for anomaly detection.
type metricsCollector struct {
	mu sync.Mutex

	loginFailures  []time.Time
	loginWindow    time.Duration
	loginThreshold int

	rejections         []time.Time
	rejectionWindow    time.Duration
	rejectionThreshold int

	alertFn AlertFunc
}

const (
	defaultLoginFailureWindow    = 1 * time.Minute
	defaultLoginFailureThreshold = 50
	defaultRejectionWindow       = 5 * time.Minute
	defaultRejectionThreshold    = 200
)

func newMetricsCollector(alertFn AlertFunc) *metricsCollector {
	return &metricsCollector{
		loginWindow:        defaultLoginFailureWindow,
		loginThreshold:     defaultLoginFailureThreshold,
		rejectionWindow:    defaultRejectionWindow,
		rejectionThreshold: defaultRejectionThreshold,
		alertFn:            alertFn,
	}
}

// recordEvent inspects an event and updates the relevant counters.
func (m *metricsCollector) recordEvent(event Event) {
	if m == nil || m.alertFn == nil {
		return
	}
	switch event {
	case EventLoginFailure:
		m.record(&m.loginFailures, m.loginWindow, m.loginThreshold,
			AlertLoginFailureSpike, "login failure rate exceeds threshold")
	case EventRateLimited:
		m.record(&m.rejections, m.rejectionWindow, m.rejectionThreshold,
			AlertRateLimitSpike, "rate-limit rejections exceed threshold")
	}
}

func (m *metricsCollector) record(times *[]time.Time, window time.Duration, threshold int, typ AlertType, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	*times = append(*times, now)
	*times = trimWindow(*times, now, window)

	if len(*times) >= threshold {
		m.alertFn(AlertEvent{
			Type:      typ,
			Message:   msg,
			Count:     len(*times),
			Threshold: threshold,
			Timestamp: now,
		})
		// Reset to avoid repeated alerts within the same spike.
		*times = (*times)[:0]
	}
}

// trimWindow removes entries older than (now - window) from the sorted slice.
func trimWindow(times []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	start := 0
	for start < len(times) && times[start].Before(cutoff) {
		start++
	}
	return times[start:]
}
