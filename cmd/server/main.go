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

	"github.com/HammerMeetNail/slotswap/internal/config"
	"github.com/HammerMeetNail/slotswap/internal/database"
	"github.com/HammerMeetNail/slotswap/internal/handlers"
	"github.com/HammerMeetNail/slotswap/internal/logging"
	"github.com/HammerMeetNail/slotswap/internal/middleware"
	"github.com/HammerMeetNail/slotswap/internal/services"
	"github.com/HammerMeetNail/slotswap/migrations"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.Server.Environment)
	logger.SetLevel(logging.ParseLevel(cfg.Server.LogLevel))
	if cfg.Server.Debug {
		logger.SetLevel(logging.LevelDebug)
	}
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting slotswap server", map[string]interface{}{"env": cfg.Server.Environment})

	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	migrator, err := database.NewMigrator(cfg.Database.DSN(), migrations.FS)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()

	logger.Info("Connecting to Redis", map[string]interface{}{"addr": cfg.Redis.Addr()})
	redisDB, err := database.NewRedisDB(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()

	dbAdapter := services.NewPoolAdapter(db.Pool)
	redisAdapter := services.NewRedisAdapter(redisDB.Client)
	eventBus := services.NewRedisEventBus(redisDB.Client)

	userService := services.NewUserService(dbAdapter)
	authService := services.NewAuthService(dbAdapter, redisAdapter)
	authService.SetSessionDuration(cfg.Session.Duration)

	swapService := services.NewSwapService(
		services.NewPGTransactor(dbAdapter),
		services.NewSlotStore(dbAdapter),
		services.NewSwapRequestStore(dbAdapter),
	)
	swapService.SetEventPublisher(eventBus)
	swapService.SetLogger(logger)

	counter := middleware.NewRedisWindowCounter(redisDB.Client)
	a := &app{
		health:      handlers.NewHealthHandler(db, redisDB),
		auth:        handlers.NewAuthHandler(userService, authService, cfg.Server.IsProduction(), cfg.Session.Duration),
		slots:       handlers.NewSlotHandler(swapService),
		swaps:       handlers.NewSwapHandler(swapService),
		events:      handlers.NewEventsHandler(eventBus),
		authMW:      middleware.NewAuthMiddleware(authService),
		authLimit:   middleware.NewAuthRateLimiter(counter),
		swapLimit:   middleware.NewSwapRateLimiter(counter, cfg.RateLimit.SwapRequests, cfg.RateLimit.SwapWindow),
		security:    middleware.NewSecurityHeaders(cfg.Server.IsProduction()),
		requestLogs: middleware.NewRequestLogger(logger),
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Event streams hold the connection open, so no WriteTimeout.
		IdleTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	server.SetKeepAlivesEnabled(false)
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Could not gracefully shutdown the server", map[string]interface{}{"error": err.Error()})
	}
	logger.Info("Server stopped")
	return nil
}
