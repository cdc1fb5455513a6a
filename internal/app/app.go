package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"go-market-auth/internal/config"
	"go-market-auth/internal/database"
	"go-market-auth/internal/event"
	"go-market-auth/internal/handler"
	"go-market-auth/internal/identity"
	"go-market-auth/internal/middleware"
	"go-market-auth/internal/model"
	"go-market-auth/internal/ratelimit"
	"go-market-auth/internal/repository"
	"go-market-auth/internal/router"
	"go-market-auth/internal/service"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	tokenRepo := repository.NewRecoveryTokenRepository(pool)
	slog.Info("database ready")

	bus := event.NewBus()
	auditCtx, auditCancel := context.WithCancel(context.Background())
	event.StartAuditLogger(auditCtx, bus)

	// Artifacts minted before the account's last credential change are
	// revoked via the tokens_valid_after cutoff.
	revoked := func(ctx context.Context, subject string, issuedAt time.Time) error {
		user, findErr := userRepo.FindByID(ctx, subject)
		if findErr != nil {
			return findErr
		}
		if issuedAt.Before(user.TokensValidAfter) {
			return model.ErrUnauthenticated
		}
		return nil
	}

	provider := identity.NewJWTProvider(cfg.IdentitySecret, revoked)
	sessionService := service.NewSessionService(provider, userRepo, bus, cfg.SessionTTL, cfg.Production())
	recoveryService := service.NewRecoveryService(userRepo, tokenRepo, service.LogMailer{}, bus, cfg.ResetTokenTTL, cfg.VerifyTokenTTL)

	var sensitiveLimiter ratelimit.Limiter
	cleanupFuncs := []func(){auditCancel, db.Close}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if pingErr := redisClient.Ping(context.Background()).Err(); pingErr != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", pingErr)
		}
		sensitiveLimiter = ratelimit.NewRedisLimiter(redisClient, cfg.SensitiveRateMax, cfg.SensitiveRateWindow)
		cleanupFuncs = append(cleanupFuncs, func() { _ = redisClient.Close() })
		slog.Info("rate limiter backed by redis", "addr", cfg.RedisAddr)
	} else {
		sensitiveLimiter = ratelimit.NewFixedWindow(cfg.SensitiveRateMax, cfg.SensitiveRateWindow)
	}

	authMiddleware := middleware.NewAuthMiddleware(sessionService)

	appRouter := router.New(cfg, authMiddleware, sensitiveLimiter, bus, router.Handlers{
		Session:  handler.NewSessionHandler(sessionService, userRepo),
		Recovery: handler.NewRecoveryHandler(recoveryService),
		Admin:    handler.NewAdminHandler(userRepo, bus),
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      appRouter,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  cfg.ServerIdleTimeout,
	}

	return &App{
		server:       server,
		db:           db,
		cleanupFuncs: cleanupFuncs,
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
