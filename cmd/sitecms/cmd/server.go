package cmd

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/architected-by-miguel/sitecms/api"
	"github.com/architected-by-miguel/sitecms/storage"
	bboltstorage "github.com/architected-by-miguel/sitecms/storage/bbolt"
	"github.com/architected-by-miguel/sitecms/storage/memory"
	pgstorage "github.com/architected-by-miguel/sitecms/storage/postgres"
	redisstorage "github.com/architected-by-miguel/sitecms/storage/redis"
	"github.com/architected-by-miguel/sitecms/web"
)

var (
	port          int
	staticDir     string
	storeBackend  string
	boltPath      string
	redisAddr     string
	redisPassword string
	postgresDSN   string
	sweepSchedule string
	serveMetrics  bool
	tlsCert       string
	tlsKey        string
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Serve the site and its API",
	Long: `Serves the built site from --static-dir with private sections behind the
site password, and the login, CMS and contact API under /api.

SITE_PASSWORD signs sessions. GITHUB_TOKEN, GITHUB_OWNER, GITHUB_REPO and
GITHUB_BRANCH are read on every CMS request.`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	serverCmd.Flags().StringVar(&staticDir, "static-dir", "", "Directory holding the built site (default: placeholder page)")
	serverCmd.Flags().StringVar(&storeBackend, "store", "memory", "Rate-limit store (memory, bolt, redis, postgres)")
	serverCmd.Flags().StringVar(&boltPath, "bolt-path", "./data/ratelimit.db", "Database file for --store=bolt")
	serverCmd.Flags().StringVar(&redisAddr, "redis-addr", "localhost:6379", "Address for --store=redis")
	serverCmd.Flags().StringVar(&redisPassword, "redis-password", "", "Password for --store=redis")
	serverCmd.Flags().StringVar(&postgresDSN, "postgres-dsn", "", "Connection string for --store=postgres")
	serverCmd.Flags().StringVar(&sweepSchedule, "sweep-schedule", "@every 10m", "Cron schedule for dropping expired rate-limit entries")
	serverCmd.Flags().BoolVar(&serveMetrics, "metrics", true, "Expose Prometheus metrics on /metrics")
	serverCmd.Flags().StringVar(&tlsCert, "tls-cert", "", "Path to TLS certificate file")
	serverCmd.Flags().StringVar(&tlsKey, "tls-key", "", "Path to TLS key file")
}

func runServer(cmd *cobra.Command, args []string) error {
	logger := slog.Default().With("component", "server")

	store, closeStore, err := openStore(cmd.Context(), storeBackend)
	if err != nil {
		return err
	}
	defer closeStore()

	a := api.New(
		api.WithLogger(slog.Default()),
		api.WithStore(store),
		api.WithRegisterer(prometheus.DefaultRegisterer),
		api.WithAlertFunc(func(e api.AlertEvent) {
			logger.Warn("security alert", "type", e.Type, "message", e.Message, "count", e.Count)
		}),
	)

	static := web.Placeholder()
	if staticDir != "" {
		static = os.DirFS(staticDir)
	}
	handler, err := newRouter(a, static, serveMetrics)
	if err != nil {
		return err
	}

	sweeper, err := startSweeper(a, sweepSchedule, logger)
	if err != nil {
		return err
	}
	defer sweeper.Stop()

	tlsConfig, err := loadTLS(tlsCert, tlsKey)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	done := make(chan error, 1)
	go func() {
		var err error
		if tlsConfig != nil {
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			done <- fmt.Errorf("server failed: %w", err)
			return
		}
		done <- nil
	}()

	printBanner()
	fmt.Printf("Starting server on port %d (store: %s, tls: %t)...\n", port, storeBackend, tlsConfig != nil)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		fmt.Printf("\nReceived %s, shutting down...\n", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-done:
		return err
	}
}

// newRouter mounts the API, health and metrics endpoints and the gated
// static site.
func newRouter(a *api.API, static fs.FS, metrics bool) (http.Handler, error) {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.SecurityHeaders)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	if metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Mount("/api", a.Router())

	webHandler, err := web.Handler(static)
	if err != nil {
		return nil, err
	}
	gate := web.Gate(func() string { return os.Getenv("SITE_PASSWORD") })
	r.Handle("/*", gate(webHandler))
	return r, nil
}

// openStore opens the rate-limit store named by backend. The returned
// close function is always safe to call.
func openStore(ctx context.Context, backend string) (storage.Repository, func() error, error) {
	noop := func() error { return nil }
	switch backend {
	case "memory":
		return memory.NewRepository(), noop, nil
	case "bolt":
		if err := os.MkdirAll(filepath.Dir(boltPath), 0o700); err != nil {
			return nil, noop, fmt.Errorf("failed to create data directory: %w", err)
		}
		store, err := bboltstorage.NewRepositoryFromFile(boltPath, nil)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open rate-limit storage: %w", err)
		}
		return store, store.Close, nil
	case "redis":
		store, err := redisstorage.Connect(ctx, redisAddr, redisPassword)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case "postgres":
		if postgresDSN == "" {
			return nil, noop, errors.New("--postgres-dsn is required for --store=postgres")
		}
		store, err := pgstorage.NewRepositoryFromDSN(ctx, postgresDSN)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open rate-limit storage: %w", err)
		}
		return store, store.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown store %q (want memory, bolt, redis or postgres)", backend)
}

// startSweeper runs the rate-limit sweep on schedule.
func startSweeper(a *api.API, schedule string, logger *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		n, err := a.SweepRateLimits(context.Background())
		if err != nil {
			logger.Error("rate-limit sweep failed", "error", err)
			return
		}
		logger.Debug("rate-limit sweep completed", "removed", n)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}

// loadTLS returns nil when neither file is given; the server then speaks
// plain HTTP behind a TLS-terminating proxy.
func loadTLS(certFile, keyFile string) (*tls.Config, error) {
	if certFile == "" && keyFile == "" {
		return nil, nil
	}
	if certFile == "" || keyFile == "" {
		return nil, errors.New("--tls-cert and --tls-key must be set together")
	}
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS key pair: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
