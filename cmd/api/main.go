package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/vaughan-dsouza/storefront/internal/cache"
	"github.com/vaughan-dsouza/storefront/internal/config"
	"github.com/vaughan-dsouza/storefront/internal/db"
	"github.com/vaughan-dsouza/storefront/internal/handlers"
	"github.com/vaughan-dsouza/storefront/internal/identity"
	"github.com/vaughan-dsouza/storefront/internal/logger"
	"github.com/vaughan-dsouza/storefront/internal/utils"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := logger.New("info", true)
		l.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	ttl, err := utils.ParseTTL(cfg.JWT.TTL)
	if err != nil {
		log.Fatal().Err(err).Str("ttl", cfg.JWT.TTL).Msg("invalid jwt.ttl")
	}

	ctx := context.Background()

	dbConn, err := db.Connect(ctx, db.Config{
		Driver:      cfg.DB.Driver,
		URL:         cfg.DB.URL,
		MaxOpen:     cfg.DB.MaxOpen,
		MaxIdle:     cfg.DB.MaxIdle,
		MaxLifetime: cfg.DB.MaxLifetime,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer dbConn.Close()

	catalogCache := newCache(ctx, cfg, log)
	if c, ok := catalogCache.(io.Closer); ok {
		defer c.Close()
	}

	if cfg.Auth.CallbackSecret == "" {
		log.Warn().Msg("auth.callback_secret unset, provider callback disabled")
	}

	h := handlers.NewHandler(dbConn, identity.NewService(dbConn, log), handlers.Options{
		JWTSecret:      cfg.JWT.Secret,
		TokenTTL:       ttl,
		CallbackSecret: cfg.Auth.CallbackSecret,
		Cache:          catalogCache,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           h.Routes(log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("driver", cfg.DB.Driver).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// newCache returns a Redis cache when redis.addr is set and reachable, and a
// no-op cache otherwise.
func newCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) cache.Cache {
	if cfg.Redis.Addr == "" {
		return cache.Nop{}
	}

	rc, err := cache.NewRedis(ctx, cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TTL:      cfg.Cache.TTL,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, catalog cache disabled")
		return cache.Nop{}
	}
	return rc
}
