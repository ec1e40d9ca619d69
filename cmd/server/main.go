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

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/poolsim/internal/api"
	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/logger"
	"github.com/playmatatu/poolsim/internal/middleware"
	"github.com/playmatatu/poolsim/internal/redis"
	"github.com/playmatatu/poolsim/internal/table"
	"github.com/playmatatu/poolsim/internal/ws"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Initialize configuration (loads .env when present)
	cfg := config.Load()

	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sim, err := cfg.Simulation()
	if err != nil {
		return fmt.Errorf("simulation config: %w", err)
	}

	session := table.NewSession(sim, cfg.TickInterval(), log.Named("session"))
	hub := ws.NewHub(session, func(r *http.Request) bool {
		return middleware.WebSocketOriginAllowed(cfg, r.Header.Get("Origin"))
	}, log.Named("ws"))

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(log.Named("http")))
	api.SetupRoutes(router, session, hub, cfg, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.Environment == "development" {
		if token, err := middleware.IssueSyncToken(cfg.JWTSecret, "dev", 24*time.Hour); err == nil {
			log.Info("development sync token", zap.String("token", token))
		}
	}

	// Redis is optional: without it the table serves HTTP and websocket only.
	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb, err = redis.Connect(ctx, cfg.RedisURL, 5*time.Second)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
	} else {
		log.Info("REDIS_URL not set; frame publishing and remote sync disabled")
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return session.Run(ctx) })
	g.Go(func() error { return hub.Run(ctx) })

	if rdb != nil {
		publisher := ws.NewFramePublisher(rdb, cfg.FramesChannel, cfg.PublishEveryTick, log.Named("publisher"))
		g.Go(func() error { return publisher.Run(ctx, session) })
		g.Go(func() error {
			return ws.RunSyncSubscriber(ctx, rdb, cfg.SyncChannel, session, log.Named("sync"))
		})
	}

	g.Go(func() error {
		log.Info("starting pool table server", zap.String("addr", srv.Addr), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server shut down")
	return nil
}
