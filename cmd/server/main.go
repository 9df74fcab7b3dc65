package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/jengzang/cdr-indicators/internal/api"
	"github.com/jengzang/cdr-indicators/internal/config"
	"github.com/jengzang/cdr-indicators/internal/database"
	"github.com/jengzang/cdr-indicators/internal/engine"
	"github.com/jengzang/cdr-indicators/internal/logger"
	"github.com/jengzang/cdr-indicators/internal/middleware"
	"github.com/jengzang/cdr-indicators/internal/repository"
	"github.com/jengzang/cdr-indicators/internal/service"
)

func main() {
	logger.Init(logger.FromEnv())
	log := logger.Named("server")

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run() (err error) {
	log := logger.Named("server")

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// 初始化数据库
	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, db.Close())
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	svc, err := service.NewIndicatorService(repository.NewUserRepository(db), service.Options{
		UserCacheSize:  cfg.UserCacheSize,
		QueryCacheSize: cfg.QueryCacheSize,
		Metrics:        engine.NewMetrics(registry),
		Defaults:       cfg.Defaults,
	})
	if err != nil {
		return err
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit > 0 && cfg.RateWindow > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		defer limiter.Stop()
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.SetupRouter(cfg, api.Deps{Service: svc, Gatherer: registry, Limiter: limiter})

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return multierr.Combine(srv.Shutdown(shutdownCtx), <-serveErr)
}
