package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-viewer/api/swagger"
	"github.com/noah-isme/course-viewer/internal/handler"
	internalmiddleware "github.com/noah-isme/course-viewer/internal/middleware"
	"github.com/noah-isme/course-viewer/internal/repository"
	"github.com/noah-isme/course-viewer/internal/service"
	"github.com/noah-isme/course-viewer/pkg/cache"
	"github.com/noah-isme/course-viewer/pkg/config"
	"github.com/noah-isme/course-viewer/pkg/export"
	"github.com/noah-isme/course-viewer/pkg/jobs"
	"github.com/noah-isme/course-viewer/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-viewer/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-viewer/pkg/middleware/requestid"
)

const (
	redisDialTimeout = 5 * time.Second
	shutdownTimeout  = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the course HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides PORT)")
	return cmd
}

// app holds the wired components of the API server.
type app struct {
	store   *repository.CourseStore
	courses *service.CourseService
	metrics *service.MetricsService
	router  *gin.Engine
}

func newApp(cfg *config.Config, logr *zap.Logger) *app {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	store := repository.NewCourseStore()
	metrics := service.NewMetricsService()
	courses := service.NewCourseService(store, validator.New(), metrics, logr,
		service.WithExporter("csv", export.NewCSVExporter()),
		service.WithExporter("pdf", export.NewPDFExporter()),
		service.WithExportTitle(cfg.Exports.Title),
	)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics,
		cfg.APIPrefix+handler.EventsPath,
		cfg.APIPrefix+handler.WebSocketPath,
	))

	handler.RegisterOpsRoutes(r, handler.NewMetricsHandler(metrics))
	streams := handler.NewStreamHandler(courses, metrics, logr, cfg.Stream.Heartbeat, cfg.CORS.AllowedOrigins)
	handler.RegisterCourseRoutes(r.Group(cfg.APIPrefix), handler.NewCourseHandler(courses, cfg.Exports.Enabled), streams,
		internalmiddleware.ConditionalGET(store.Version),
	)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return &app{store: store, courses: courses, metrics: metrics, router: r}
}

// startRelay connects to Redis and forwards snapshots until ctx ends. A
// missing Redis leaves the API running without fan-out.
func (a *app) startRelay(ctx context.Context, cfg *config.Config, logr *zap.Logger) *redis.Client {
	client, err := cache.NewRedis(ctx, cfg.Redis, redisDialTimeout)
	if err != nil {
		logr.Warn("course events disabled", zap.String("redis", cache.Addr(cfg.Redis)), zap.Error(err))
		return nil
	}

	publisher := repository.NewSnapshotPublisher(client, cfg.Events.Channel, logr)
	relay := service.NewSnapshotRelay(a.courses, publisher, a.metrics, jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.Events.BufferSize,
		MaxRetries: cfg.Events.WorkerRetries,
		RetryDelay: cfg.Events.RetryDelay,
		Logger:     logr,
	})
	go relay.Run(ctx)

	logr.Info("course events enabled", zap.String("channel", publisher.Channel()))
	return client
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	a := newApp(cfg, logr)
	if cfg.Events.Enabled {
		if client := a.startRelay(ctx, cfg, logr); client != nil {
			defer client.Close()
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
		// Streams end with the process context instead of holding up shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logr.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
