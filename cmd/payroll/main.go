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
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-payroll/internal/app"
	"github.com/odyssey-erp/odyssey-payroll/internal/audit"
	"github.com/odyssey-erp/odyssey-payroll/internal/auth"
	"github.com/odyssey-erp/odyssey-payroll/internal/dashboard"
	"github.com/odyssey-erp/odyssey-payroll/internal/employees"
	"github.com/odyssey-erp/odyssey-payroll/internal/observability"
	"github.com/odyssey-erp/odyssey-payroll/internal/payroll"
	"github.com/odyssey-erp/odyssey-payroll/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-payroll/internal/platform/db"
	"github.com/odyssey-erp/odyssey-payroll/internal/rbac"
	"github.com/odyssey-erp/odyssey-payroll/internal/sin"
	"github.com/odyssey-erp/odyssey-payroll/internal/timesheets"
	"github.com/odyssey-erp/odyssey-payroll/jobs"
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

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, dbpool); err != nil {
			logger.Error("migrate database", slog.Any("error", err))
			os.Exit(1)
		}
	}

	var redisClient *redis.Client
	redisClient, err = cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, dashboard cache disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()

	employeeService := employees.NewService(employees.NewRepository(dbpool))
	rbacMiddleware := rbac.Middleware{Roles: employeeService, Logger: logger}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	authService := auth.NewService(auth.NewRepository(employeeService), tokens)

	vault, err := sin.NewVault(sin.NewRepository(dbpool), employeeService, cfg.SINEncryptionKey, cfg.SINHashSalt, logger)
	if err != nil {
		logger.Error("init sin vault", slog.Any("error", err))
		os.Exit(1)
	}
	vault.WithMetrics(metrics)

	timesheetService := timesheets.NewService(timesheets.NewRepository(dbpool), employeeService)

	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
	dashboardService := dashboard.NewService(dashboard.NewRepository(dbpool), dashboardCache, logger)
	if err := dashboardCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("dashboard invalidation listener", slog.Any("error", err))
	}

	payrollService := payroll.NewService(payroll.NewRepository(dbpool), logger).
		WithMetrics(metrics).
		WithInvalidator(dashboardCache)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		Tokens:            tokens,
		RBACMiddleware:    rbacMiddleware,
		AuthHandler:       auth.NewHandler(logger, authService),
		EmployeesHandler:  employees.NewHandler(logger, employeeService, rbacMiddleware),
		SINHandler:        sin.NewHandler(logger, vault, rbacMiddleware),
		TimesheetsHandler: timesheets.NewHandler(logger, timesheetService),
		PayrollHandler:    payroll.NewHandler(logger, payrollService, rbacMiddleware, jobClient),
		DashboardHandler:  dashboard.NewHandler(logger, dashboardService, rbacMiddleware),
		AuditHandler:      audit.NewHandler(logger, audit.NewService(audit.NewRepository(dbpool)), rbacMiddleware),
		JobHandler:        jobs.NewHandler(inspector, logger),
		Metrics:           metrics,
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
