package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dockshield/web-dashboard/internal/config"
	"github.com/dockshield/web-dashboard/internal/database"
	"github.com/dockshield/web-dashboard/internal/report/handler"
	"github.com/dockshield/web-dashboard/internal/report/render"
	"github.com/dockshield/web-dashboard/internal/report/repository"
	"github.com/dockshield/web-dashboard/internal/report/service"
	"github.com/dockshield/web-dashboard/internal/revocation"
	"github.com/dockshield/web-dashboard/internal/tokens"
	"github.com/dockshield/web-dashboard/pkg/logger"
	"github.com/dockshield/web-dashboard/pkg/metrics"
	"github.com/dockshield/web-dashboard/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var startTime = time.Now()

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))
	if err := run(); err != nil {
		logger.Fatalf("%v", err)
	}
}

// run wires the dashboard and blocks until shutdown or a listener failure.
// The Mongo and Redis clients are closed before it returns.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Infof("config loaded: db=%s login=%s redis=%v page_size=%d", cfg.MongoDB.Database, cfg.Login.URL, cfg.Redis.Host != "", cfg.Reports.PageSize)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The dashboard still serves pages without MongoDB; lookups report the store as unavailable.
	var repo repository.Repository
	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 3, time.Second)
	if err != nil {
		logger.Warnf("MongoDB unavailable, running in degraded mode: %v", err)
	} else {
		defer func() { _ = client.Disconnect(context.Background()) }()
		repo = repository.NewMongoRepo(client.Database(cfg.MongoDB.Database))
		logger.Infof("connected to MongoDB database %q", cfg.MongoDB.Database)
	}
	loc := service.NewLocator(repo, cfg.Reports.PageSize)

	var rev middleware.RevocationChecker
	if cfg.Redis.Host != "" {
		rc := redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rc.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s), token revocation disabled: %v", cfg.Redis.Host, cfg.Redis.Port, err)
			_ = rc.Close()
		} else {
			defer rc.Close()
			rev = revocation.NewRedisList(rc)
			logger.Infof("token revocation list enabled (%s:%s)", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(logger.Middleware(), gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", func(c *gin.Context) {
		deps := gin.H{"mongodb": loc.Available(), "revocation": rev != nil}
		status := http.StatusOK
		state := "ready"
		if !loc.Available() {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	gate := middleware.AuthMiddleware(tokens.NewVerifier(cfg.Login.Secret, nil), cfg.Login.URL, rev)
	if err := handler.RegisterReportRoutes(r, gate, loc, render.New()); err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	logger.Infof("dashboard listening on %s", srv.Addr)
	return serve(ctx, srv)
}

// serve runs srv until ctx is done or the listener fails, then shuts it down.
func serve(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
