package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/stwalsh4118/hunt/internal/config"
	"github.com/stwalsh4118/hunt/internal/handlers"
	"github.com/stwalsh4118/hunt/internal/importer"
	"github.com/stwalsh4118/hunt/internal/logger"
	"github.com/stwalsh4118/hunt/internal/middleware"
	"github.com/stwalsh4118/hunt/internal/services"
)

const (
	shutdownTimeout = 30 * time.Second
)

func newServeCmd() *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the accident pages and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return runServe(cmd.Context(), cfg, seed)
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false, "import $IMPORT_FILE before serving")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, seed bool) error {
	log := logger.New(cfg.Server.Env)
	log.Info("Starting hunt server", map[string]interface{}{
		"version":     Version,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
		"driver":      cfg.Database.Driver,
	})

	be, err := openBackend(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to open accident store: %w", err)
	}
	defer be.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if seed {
		imp := importer.New(be.repo, log, importer.NewMetrics(reg))
		if _, err := imp.Import(ctx, cfg.Import.File); err != nil {
			return err
		}
	}

	router, err := newRouter(cfg, log, be, reg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for SIGINT/SIGTERM (cancels ctx) or a listener failure
	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
		return err
	}

	log.Info("Server exited", nil)
	return nil
}

// newRouter builds the gin engine with the full middleware stack and every route.
func newRouter(cfg *config.Config, log *logger.Logger, be *backend, reg *prometheus.Registry) (*gin.Engine, error) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	tmpl, err := handlers.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// Add middleware in order: RequestID -> Logger -> Metrics -> Recovery -> CORS
	// Metrics wraps Recovery so recovered panics are counted as 500s.
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Metrics(middleware.NewHTTPMetrics(reg)))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	router.GET("/hi", handlers.Hi)
	router.GET("/hello/:name", handlers.Hello)

	healthHandler := handlers.NewHealthHandler(be.pinger, Version, cfg.Server.Env, cfg.Database.Driver)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	accidentService := services.NewAccidentService(be.repo, log)
	accidentHandler := handlers.NewAccidentHandler(accidentService)
	router.GET("/", accidentHandler.Index)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/info", healthHandler.Info)

		accidents := v1.Group("/accidents")
		{
			accidents.GET("", accidentHandler.List)
			accidents.GET("/:id", accidentHandler.Get)
		}
	}

	return router, nil
}
