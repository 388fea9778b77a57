package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/uniroute/internal/config"
	"github.com/vango-dev/uniroute/pkg/bridge"
	"github.com/vango-dev/uniroute/pkg/host"
	"github.com/vango-dev/uniroute/pkg/memhost"
	"github.com/vango-dev/uniroute/pkg/middleware"
)

type serveOptions struct {
	configDir string
	addr      string
	memory    bool
	verbose   bool
	timeout   time.Duration
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the runtime bridge and control API",
		Long: `Serve the page runtime bridge described by uniroute.json.

A runtime connects to /ws and carries out navigations. The control API
under /control drives navigations through the same helpers an app uses,
and /metrics exposes Prometheus metrics.

With --memory no runtime is needed: pages are kept in process using the
manifest's navigation rules.

Examples:
  uniroute serve
  uniroute serve --config ./app --addr :9000
  uniroute serve --memory -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configDir, "config", "c", ".", "Directory containing uniroute.json")
	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "Listen address (default from uniroute.json)")
	cmd.Flags().BoolVar(&opts.memory, "memory", false, "Keep pages in process instead of waiting for a runtime")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log every navigation")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Per-navigation timeout for control requests")

	return cmd
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	cfg, err := config.Load(opts.configDir)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	handler, err := newServeHandler(cmd.Context(), cfg, opts, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "address", cfg.Server.Addr, "memory", opts.memory)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	success(cmd.OutOrStdout(), "Serving %d pages on %s", len(cfg.Pages), cfg.Server.Addr)
	info(cmd.OutOrStdout(), "config: %s", cfg.Path())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-sigCh:
	}

	logger.Info("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// newServeHandler assembles the host, its decorators and the HTTP routes.
func newServeHandler(ctx context.Context, cfg *config.Config, opts serveOptions, logger *slog.Logger) (http.Handler, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(
		middleware.WithRegistry(reg),
		middleware.WithNamespace(cfg.Metrics.Namespace),
	)

	var (
		h      host.Host
		router chi.Router
	)
	if opts.memory {
		mh := memhost.New(cfg, memhost.WithLogger(logger))
		if err := mh.Launch(ctx); err != nil {
			return nil, err
		}
		h = mh
		router = chi.NewRouter()
		router.Use(chimw.Recoverer)
		router.Get("/pages", bridge.PagesHandler(mh, logger))
		router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	} else {
		b := bridge.NewServer(bridge.Config{
			Logger:          logger,
			ReadBufferSize:  cfg.Server.ReadBufferSize,
			WriteBufferSize: cfg.Server.WriteBufferSize,
			CheckOrigin:     bridge.AllowOrigins(cfg.Server.AllowedOrigins),
			Metrics:         metrics,
			Gatherer:        reg,
		})
		h = b
		router = b.Routes()
	}

	decorated := middleware.WrapHost(h,
		middleware.OpenTelemetry(),
		metrics.Decorator(),
	)
	router.Mount("/control", newControl(decorated, logger, opts.timeout).Routes())
	return router, nil
}
