package api

import (
	"context"
	_ "embed"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-openapi/runtime/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/architected-by-miguel/sitecms/github"
	"github.com/architected-by-miguel/sitecms/ratelimit"
	"github.com/architected-by-miguel/sitecms/storage"
	"github.com/architected-by-miguel/sitecms/storage/memory"
)

// ContentRepository commits content files. *github.Client satisfies it.
type ContentRepository interface {
	Write(ctx context.Context, path string, content []byte, message string) (created bool, err error)
	WriteBase64(ctx context.Context, path, contentBase64, message string) (created bool, err error)
	Delete(ctx context.Context, path, message string) error
}

// ContentFactory returns the repository for a single request.
type ContentFactory func(ctx context.Context) (ContentRepository, error)

// API holds the dependencies needed by the REST handlers.
type API struct {
	store          storage.Repository
	loginLimiter   *ratelimit.Limiter
	cmsLimiter     *ratelimit.Limiter
	contactLimiter *ratelimit.Limiter
	content        ContentFactory
	events         *eventLogger
	metrics        *metrics
	alerts         *metricsCollector
	now            func() time.Time
}

//go:embed openapi.yaml
var openapiSpec []byte

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for security events.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.events = newEventLogger(logger)
	}
}

// WithStore sets the rate-limit store shared by all policies. Defaults to
// an in-process map.
func WithStore(store storage.Repository) Option {
	return func(a *API) {
		a.store = store
	}
}

// WithContentFactory overrides how the content repository is built. The
// default reads the GitHub environment on every request.
func WithContentFactory(f ContentFactory) Option {
	return func(a *API) {
		a.content = f
	}
}

// WithRegisterer registers the API's Prometheus collectors with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(a *API) {
		a.metrics = newMetrics(reg)
	}
}

// WithAlertFunc sets a callback invoked when login failures spike.
func WithAlertFunc(fn AlertFunc) Option {
	return func(a *API) {
		a.alerts = newMetricsCollector(fn)
	}
}

// WithClock overrides time.Now for rate limiting and upload paths.
func WithClock(now func() time.Time) Option {
	return func(a *API) {
		a.now = now
	}
}

// New creates a new API instance.
func New(opts ...Option) *API {
	a := &API{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	if a.events == nil {
		a.events = newEventLogger(slog.New(slog.NewJSONHandler(os.Stderr, nil)))
	}
	if a.store == nil {
		a.store = memory.NewRepository()
	}
	if a.content == nil {
		a.content = githubContent
	}
	if a.metrics == nil {
		a.metrics = newMetrics(nil)
	}
	a.events.metrics = a.alerts

	clock := ratelimit.WithClock(func() time.Time { return a.now() })
	a.loginLimiter = ratelimit.New(a.store, ratelimit.LoginPolicy, clock)
	a.cmsLimiter = ratelimit.New(a.store, ratelimit.CMSPolicy, clock)
	a.contactLimiter = ratelimit.New(a.store, ratelimit.ContactPolicy, clock)
	return a
}

// Router returns a chi.Router with all API routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})

	r.Handle("/docs*", middleware.SwaggerUI(middleware.SwaggerUIOpts{
		SpecURL: "/api/openapi.yaml",
		Path:    "api/docs",
	}, nil))

	r.With(a.RateLimit(a.loginLimiter, "Incorrect password. Try again.")).Post("/login", a.Login)
	r.Post("/logout", a.Logout)
	r.Get("/verify-session", a.VerifySession)
	r.With(a.RateLimit(a.contactLimiter, "Too many requests")).Post("/contact", a.Contact)

	r.Route("/cms", func(r chi.Router) {
		r.Get("/csrf", a.CSRFToken)

		// Mutations share one budget and run the checks in this order.
		r.Group(func(r chi.Router) {
			r.Use(a.RateLimit(a.cmsLimiter, "Too many requests"))
			r.Use(a.RequireSession)
			r.Use(a.RequireCSRF)
			r.Post("/write-file", a.WriteFile)
			r.Post("/delete-file", a.DeleteFile)
			r.Post("/upload-image", a.UploadImage)
		})
	})

	return r
}

// SweepRateLimits drops expired rate-limit entries from the store.
func (a *API) SweepRateLimits(ctx context.Context) (int, error) {
	return a.store.Sweep(ctx, a.now())
}

func githubContent(ctx context.Context) (ContentRepository, error) {
	cfg, err := github.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	client, err := github.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// sitePassword is read per request so a rotated password takes effect
// without a restart.
func sitePassword() string {
	return os.Getenv("SITE_PASSWORD")
}
