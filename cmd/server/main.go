package main // entry point of the hotel reservation API

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/config"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/database"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/logger"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/middleware"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/queue"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/router"
	"github.com/VeronicacortesIsaza/Sistema-Reserva-Hotel-Backend/internal/service"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	lg := logger.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.OpenFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it cache and rate limit pass through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		lg.Warn("redis.unavailable", slog.String("effect", "cache and rate limit disabled"))
	} else {
		defer rdb.Close()
	}

	qcfg := config.LoadQueueConfig()
	var events service.EventPublisher = service.NopPublisher{}
	if qcfg.Enabled {
		pub := queue.NewPublisher(qcfg.URL, qcfg.Queue)
		defer pub.Close()
		events = pub
	}
	if qcfg.ConsumerEnabled {
		consumer := &queue.AuditConsumer{URL: qcfg.URL, Queue: qcfg.Queue, LogPath: qcfg.AuditLogPath, Logger: lg}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				lg.Error("queue.consumer_stopped", slog.Any("error", err))
			}
		}()
	}

	deps := service.NewDeps(db, events, lg, cfg.BcryptCost)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORS())
	e.Use(echomw.BodyLimit("1M"))
	e.Use(middleware.RequestLog(lg))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, lg))

	router.Register(e, db, router.NewHandlers(cfg, deps), router.Options{
		JWTSecret: cfg.JWTSecret,
		Cache:     config.LoadCacheConfig(),
		Redis:     rdb,
		Log:       lg,
	})

	addr := ":" + cfg.Port
	go func() {
		lg.Info("server.listening", slog.String("addr", addr), slog.String("env", cfg.Env), slog.String("db", cfg.DBDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("server.failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		lg.Error("server.shutdown", slog.Any("error", err))
	}
	lg.Info("server.stopped")
}
