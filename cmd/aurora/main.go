package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/aurora-hris/aurora-hris/internal/app"
	"github.com/aurora-hris/aurora-hris/internal/auth"
	"github.com/aurora-hris/aurora-hris/internal/authz"
	"github.com/aurora-hris/aurora-hris/internal/departments"
	"github.com/aurora-hris/aurora-hris/internal/employees"
	"github.com/aurora-hris/aurora-hris/internal/nav"
	"github.com/aurora-hris/aurora-hris/internal/observability"
	"github.com/aurora-hris/aurora-hris/internal/platform/cache"
	"github.com/aurora-hris/aurora-hris/internal/platform/db"
	"github.com/aurora-hris/aurora-hris/internal/rbac"
	"github.com/aurora-hris/aurora-hris/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

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

	sessions := authz.NewSessions(redisClient, cfg.SessionTTL)
	metrics := observability.NewMetrics()
	gate := authz.Gate{Logger: logger, Recorder: metrics}

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

	rbacRepo := rbac.NewRepository(dbpool)
	rbacService := rbac.NewService(rbacRepo, jobsClient, logger)
	rbacHandler := rbac.NewHandler(logger, rbacService)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, rbacService, cfg.SessionTTL)
	authHandler := auth.NewHandler(logger, authService, sessions)

	navHandler := nav.NewHandler(logger, rbacService)

	employeesHandler := employees.NewHandler(logger, employees.NewService(employees.NewRepository(dbpool)))
	departmentsHandler := departments.NewHandler(logger, departments.NewService(departments.NewRepository(dbpool)))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Sessions:           sessions,
		Gate:               gate,
		AuthHandler:        authHandler,
		RBACHandler:        rbacHandler,
		NavHandler:         navHandler,
		EmployeesHandler:   employeesHandler,
		DepartmentsHandler: departmentsHandler,
		JobHandler:         jobHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
