package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/vango-dev/routemount/internal/config"
	"github.com/vango-dev/routemount/internal/errors"
	"github.com/vango-dev/routemount/pkg/middleware"
	"github.com/vango-dev/routemount/pkg/router"
)

const shutdownTimeout = 5 * time.Second

func serveCmd(g *globalFlags) *cobra.Command {
	var (
		rf          routeFlags
		host        string
		port        int
		metricsPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the route tree over HTTP",
		Long: `Mount every route file on an HTTP server. Each route serves its
source file, and everything below a route falls through to it unless a
deeper route matches.

Request counts and latencies per route are exposed in Prometheus format
on the metrics path.

Examples:
  routemount serve
  routemount serve --port=8080 --base-path /static
  routemount serve --host=0.0.0.0 --metrics-path /internal/metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, baseDir, err := loadConfig(g.configPath)
			if err != nil {
				return err
			}
			rf.apply(cfg)
			if host != "" {
				cfg.Serve.Host = host
			}
			if port > 0 {
				cfg.Serve.Port = port
			}
			if metricsPath != "" {
				cfg.Serve.MetricsPath = metricsPath
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd, g, cfg, baseDir)
		},
	}

	rf.bind(cmd)
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVar(&metricsPath, "metrics-path", "", "Prometheus endpoint path (default /metrics)")

	return cmd
}

func runServe(cmd *cobra.Command, g *globalFlags, cfg *config.Config, baseDir string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cmd.ErrOrStderr(), g.verbose)

	handler, routes, err := buildHandler(ctx, cfg, baseDir, logger)
	if err != nil {
		return err
	}

	w := cmd.ErrOrStderr()
	success(w, "Mounted %d routes", len(routes))
	if g.verbose {
		for _, r := range routes {
			info(w, "%s", r)
		}
	}
	info(w, "Listening on http://%s", cfg.Address())
	info(w, "Metrics at %s", cfg.Serve.MetricsPath)

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return errors.New("E310").WithPath(cfg.Address()).Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	info(w, "Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildHandler mounts the route tree on a chi router, instrumented with
// per-route metrics and tracing, and adds the metrics endpoint. It returns
// the mounted route paths in registration order.
func buildHandler(ctx context.Context, cfg *config.Config, baseDir string, logger *slog.Logger) (http.Handler, []string, error) {
	src, err := openSource(ctx, cfg, baseDir)
	if err != nil {
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(middleware.WithRegistry(reg))

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	mux := router.NewChiRouter(r)
	var paths []string
	app := router.RouterFunc(func(path string, h http.Handler) {
		mux.Register(path, h)
		paths = append(paths, path)
	})

	opts := append([]router.Option{
		router.WithLogger(logger),
		router.WithObserver(metrics),
		router.WithDecorators(metrics.Instrument, middleware.Trace()),
	}, src.opts...)

	if err := router.Mount(ctx, app, router.NewFileServer(src.fsys), src.spec, opts...); err != nil {
		return nil, nil, classify(err, src, "E300")
	}

	// Registered last so a route file cannot shadow it.
	r.Handle(cfg.Serve.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return r, paths, nil
}
