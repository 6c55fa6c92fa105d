package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectAlerts() (*[]AlertEvent, *sync.Mutex, AlertFunc) {
	var mu sync.Mutex
	var alerts []AlertEvent
	return &alerts, &mu, func(e AlertEvent) {
		mu.Lock()
		alerts = append(alerts, e)
		mu.Unlock()
	}
}

func TestLoginFailureSpikeAlert(t *testing.T) {
	alerts, mu, fn := collectAlerts()
	collector := newMetricsCollector(fn)
	collector.loginThreshold = 5

	for i := 0; i < 4; i++ {
		collector.recordEvent(EventLoginFailure)
	}
	mu.Lock()
	assert.Empty(t, *alerts, "no alert below threshold")
	mu.Unlock()

	collector.recordEvent(EventLoginFailure)
	mu.Lock()
	require.Len(t, *alerts, 1)
	assert.Equal(t, AlertLoginFailureSpike, (*alerts)[0].Type)
	assert.Equal(t, 5, (*alerts)[0].Count)
	mu.Unlock()
}

func TestRateLimitSpikeAlert(t *testing.T) {
	alerts, mu, fn := collectAlerts()
	collector := newMetricsCollector(fn)
	collector.rejectionThreshold = 3

	collector.recordEvent(EventRateLimited)
	collector.recordEvent(EventLoginSuccess)
	collector.recordEvent(EventRateLimited)
	mu.Lock()
	assert.Empty(t, *alerts)
	mu.Unlock()

	collector.recordEvent(EventRateLimited)
	mu.Lock()
	require.Len(t, *alerts, 1)
	assert.Equal(t, AlertRateLimitSpike, (*alerts)[0].Type)
	mu.Unlock()
}

func TestMetricsNilCollector(t *testing.T) {
	var collector *metricsCollector
	collector.recordEvent(EventLoginFailure)
	newMetricsCollector(nil).recordEvent(EventLoginFailure)
}

func TestMetricsSlidingWindowExpiry(t *testing.T) {
	alerts, mu, fn := collectAlerts()
	collector := newMetricsCollector(fn)
	collector.loginThreshold = 5
	collector.loginWindow = 100 * time.Millisecond

	for i := 0; i < 4; i++ {
		collector.recordEvent(EventLoginFailure)
	}
	time.Sleep(150 * time.Millisecond)

	collector.recordEvent(EventLoginFailure)
	mu.Lock()
	assert.Empty(t, *alerts, "old failures should not count after window expiry")
	mu.Unlock()
}

func TestMetricsResetAfterAlert(t *testing.T) {
	alerts, mu, fn := collectAlerts()
	collector := newMetricsCollector(fn)
	collector.loginThreshold = 3

	for i := 0; i < 5; i++ {
		collector.recordEvent(EventLoginFailure)
	}
	mu.Lock()
	assert.Len(t, *alerts, 1, "counter resets after an alert")
	mu.Unlock()

	collector.recordEvent(EventLoginFailure)
	mu.Lock()
	assert.Len(t, *alerts, 2)
	mu.Unlock()
}

func TestPrometheusCounters(t *testing.T) {
	t.Setenv("SITE_PASSWORD", "pw-for-metrics")
	reg := prometheus.NewRegistry()
	var logs bytes.Buffer
	alerts, mu, fn := collectAlerts()
	a := New(
		WithRegisterer(reg),
		WithAlertFunc(fn),
		WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))),
	)
	a.alerts.loginThreshold = 2
	h := a.Router()

	post := func(body string) int {
		r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		r.RemoteAddr = "192.0.2.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		return w.Code
	}
	assert.Equal(t, http.StatusUnauthorized, post(`{"password":"nope"}`))
	assert.Equal(t, http.StatusOK, post(`{"password":"pw-for-metrics"}`))
	assert.Equal(t, http.StatusUnauthorized, post(`{}`))

	assert.Equal(t, 2.0, testutil.ToFloat64(a.metrics.logins.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.metrics.logins.WithLabelValues("success")))
	mu.Lock()
	assert.Len(t, *alerts, 1, "two failures reach the lowered threshold")
	mu.Unlock()

	for i := 0; i < 6; i++ {
		post(`{}`)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(a.metrics.rateLimited.WithLabelValues("login")))

	assert.Contains(t, logs.String(), `"event":"login_failure"`)
	assert.Contains(t, logs.String(), `"component":"api"`)
	assert.Contains(t, logs.String(), `"client_ip":"192.0.2.1"`)
	assert.NotContains(t, logs.String(), "nope", "passwords are never logged")

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Positive(t, n)
}
