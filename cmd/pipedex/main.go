package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/crmforge/pipedex/internal/config"
	"github.com/crmforge/pipedex/internal/db"
	dbRedis "github.com/crmforge/pipedex/internal/db/redis"
	logpkg "github.com/crmforge/pipedex/internal/logger"
	"github.com/crmforge/pipedex/internal/metrics"
	budgetrepo "github.com/crmforge/pipedex/internal/repository/budget"
	chiTransport "github.com/crmforge/pipedex/internal/transport/chi"
	mcpTransport "github.com/crmforge/pipedex/internal/transport/mcp"
	"github.com/crmforge/pipedex/internal/transport/pipedrive"
	healthuc "github.com/crmforge/pipedex/internal/usecase/health"
	recordsuc "github.com/crmforge/pipedex/internal/usecase/records"
	searchuc "github.com/crmforge/pipedex/internal/usecase/search"
	"github.com/crmforge/pipedex/internal/usecase/throttle"
	usageuc "github.com/crmforge/pipedex/internal/usecase/usage"
	"github.com/crmforge/pipedex/internal/version"
)

func main() {
	// .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting pipedex MCP server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("mcp_transport", cfg.MCP.Transport),
		zap.Int("ops_port", cfg.HTTP.Port),
	)

	metrics.Register()

	// Budget persistence store is optional: without it the counters live
	// in memory only and reset on restart.
	var store db.Store
	if len(cfg.Database.Addrs) > 0 {
		redisStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer redisStore.Close()

		ctx := context.Background()
		readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
		if err := redisStore.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database")
		store = redisStore
	}

	// Single BudgetTracker shared between the CRM client and the usage
	// service.
	var budget *usageuc.BudgetTracker
	budgetCfg := cfg.Pipedrive.Budget
	if budgetCfg.DailyCallLimit > 0 || budgetCfg.MonthlyCallLimit > 0 {
		action := usageuc.BudgetActionWarn
		if budgetCfg.Action == "reject" {
			action = usageuc.BudgetActionReject
		}
		budget = usageuc.NewBudgetTracker(
			budgetCfg.DailyCallLimit, budgetCfg.MonthlyCallLimit, action, logger,
		)
		if store != nil {
			// Connect persistence store — loads current counters from DB.
			budgetStore := budgetrepo.New(store, 48*time.Hour, 62*24*time.Hour)
			budget.WithStore(context.Background(), budgetStore)
		}
	}

	// Pass nil interface (not typed nil pointer!) if budget is not configured.
	// Go gotcha: (*BudgetTracker)(nil) wrapped in BudgetChecker != nil.
	var budgetChecker pipedrive.BudgetChecker
	if budget != nil {
		budgetChecker = budget
	}

	invoker := throttle.New(throttle.Config{
		MinInterval:   time.Duration(cfg.Throttle.MinIntervalMs) * time.Millisecond,
		MaxConcurrent: cfg.Throttle.MaxConcurrent,
		CallTimeout:   time.Duration(cfg.Throttle.CallTimeoutMs) * time.Millisecond,
	}, logger)

	client := pipedrive.NewClient(pipedrive.Config{
		BaseURL:  cfg.Pipedrive.BaseURL,
		APIToken: cfg.Pipedrive.APIToken,
		Logger:   logger,
	}, invoker, budgetChecker)

	recordsSvc := recordsuc.New(client, client, logger).
		WithPagination(cfg.Limits.DefaultPageSize, cfg.Limits.MaxPageSize)
	searchSvc := searchuc.New(client, logger)

	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetReader = budget
	}
	usageSvc := usageuc.New(budgetReader)

	var dbPinger healthuc.DBPinger
	if store != nil {
		dbPinger = store
	}
	healthSvc := healthuc.New(dbPinger, client)

	mcpServer := mcpTransport.NewServer(recordsSvc, searchSvc, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	// Operational HTTP server (health, usage, metrics) runs alongside
	// either MCP transport. Port 0 disables it.
	var opsSrv *http.Server
	if cfg.HTTP.Port > 0 {
		ops := chiTransport.NewServer(healthSvc, usageSvc, logger)
		opsSrv = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
			Handler:      ops.Router(cfg.Auth.APIKeys),
			ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
			WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
		}
		go func() {
			logger.Info("Starting ops HTTP server", zap.String("addr", opsSrv.Addr))
			if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal("Ops HTTP server error", zap.Error(err))
			}
		}()
	}

	switch cfg.MCP.Transport {
	case "http":
		streamable := server.NewStreamableHTTPServer(mcpServer)
		go func() {
			logger.Info("Starting MCP streamable HTTP server", zap.String("addr", cfg.MCP.Listen))
			if err := streamable.Start(cfg.MCP.Listen); err != nil && err != http.ErrServerClosed {
				logger.Fatal("MCP server error", zap.Error(err))
			}
		}()

		<-quit
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		if err := streamable.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during MCP shutdown", zap.Error(err))
		}
		shutdownOps(shutdownCtx, opsSrv, logger)

	default:
		// stdio: serve on the main goroutine until the client closes the
		// pipe or a signal arrives.
		done := make(chan error, 1)
		go func() { done <- server.ServeStdio(mcpServer) }()

		select {
		case err := <-done:
			if err != nil {
				logger.Error("MCP stdio server error", zap.Error(err))
			}
		case <-quit:
			logger.Info("Received shutdown signal")
		}

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		shutdownOps(shutdownCtx, opsSrv, logger)
	}

	logger.Info("Server stopped gracefully")
}

func shutdownOps(ctx context.Context, srv *http.Server, logger *zap.Logger) {
	if srv == nil {
		return
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Error during ops shutdown", zap.Error(err))
	}
}
