package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/112Alex/authgate/internal/app"
	"github.com/112Alex/authgate/internal/auth"
	"github.com/112Alex/authgate/internal/catalog"
	"github.com/112Alex/authgate/internal/observability"
	"github.com/112Alex/authgate/internal/platform/cache"
	"github.com/112Alex/authgate/internal/platform/db"
	"github.com/112Alex/authgate/internal/rbac"
	"github.com/112Alex/authgate/internal/roles"
	"github.com/112Alex/authgate/internal/users"
	"github.com/112Alex/authgate/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens)
	throttle := auth.NewLoginThrottle(redisClient, cfg.LoginMaxAttempts, cfg.LoginAttemptWindow)
	authHandler := auth.NewHandler(logger, authService, throttle, jobsClient)
	authMiddleware := auth.Middleware{Service: authService}

	rbacService := rbac.NewService(rbac.NewRepository(pool))
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	usersRepo := users.NewRepository(pool, authRepo)
	usersService := users.NewService(usersRepo, logger)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	rolesHandler := roles.NewHandler(logger, roles.NewService(roles.NewRepository(pool)))
	catalogHandler := catalog.NewHandler(logger, catalog.NewService(catalog.NewRepository(pool)))

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		AuthHandler:    authHandler,
		AuthMiddleware: authMiddleware,
		UsersHandler:   usersHandler,
		RolesHandler:   rolesHandler,
		CatalogHandler: catalogHandler,
		RBACMiddleware: rbacMiddleware,
		Pool:           pool,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
