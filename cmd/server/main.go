package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"

	"stationreports/internal/auth"
	"stationreports/internal/cache"
	"stationreports/internal/config"
	"stationreports/internal/db"
	httpapi "stationreports/internal/http"
	"stationreports/internal/logger"
	"stationreports/internal/repository"
	"stationreports/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logg, err := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer func() { _ = logg.Sync() }()

	if err := run(cfg, logg); err != nil {
		logg.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Database.URL, db.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, logg); err != nil {
		return err
	}

	settings, closeSettings := settingsCache(ctx, cfg, logg)
	defer closeSettings()

	svc := service.New(repository.New(pool), settings, logg)
	handler := httpapi.NewHandler(svc, logg, cfg.Location())
	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		Logger:          logg,
		Verifier:        auth.NewVerifier(cfg.Auth.SessionSecret),
		CookieName:      cfg.Auth.CookieName,
		RequestTimeout:  cfg.HTTP.RequestTimeout,
		CORSAllowOrigin: cfg.HTTP.CORSAllowOrigin,
	})

	server := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info("station reports listening",
			zap.String("addr", server.Addr),
			zap.String("env", cfg.App.Env),
			zap.String("timezone", cfg.App.Timezone),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logg.Error("force close failed", zap.Error(closeErr))
		}
	}
	logg.Info("server stopped")
	return nil
}

// settingsCache prefers Redis when enabled and reachable, falling back to an
// in-process cache.
func settingsCache(ctx context.Context, cfg *config.Config, logg *zap.Logger) (cache.Settings, func()) {
	if !cfg.Redis.Enabled {
		return cache.NewMemorySettings(cfg.Report.SettingsCacheTTL), func() {}
	}
	client, err := cache.NewRedisClient(ctx, cache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logg.Warn("redis unavailable, using in-memory settings cache", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		return cache.NewMemorySettings(cfg.Report.SettingsCacheTTL), func() {}
	}
	settings := cache.NewRedisSettings(client,
		cache.WithTTL(cfg.Report.SettingsCacheTTL),
		cache.WithLogger(logg),
	)
	return settings, func() { _ = client.Close() }
}
