package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/securebank-labs/securebank/internal/audit"
	"github.com/securebank-labs/securebank/internal/config"
	"github.com/securebank-labs/securebank/internal/db"
	"github.com/securebank-labs/securebank/internal/handlers"
	"github.com/securebank-labs/securebank/internal/job"
	"github.com/securebank-labs/securebank/internal/lock"
	"github.com/securebank-labs/securebank/internal/mq"
	"github.com/securebank-labs/securebank/internal/notification"
	"github.com/securebank-labs/securebank/internal/repository"
	"github.com/securebank-labs/securebank/internal/scoring"
	"github.com/securebank-labs/securebank/internal/service"
	"github.com/securebank-labs/securebank/internal/token"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting securebank api",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	locks := lock.NewManager(redisClient)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, falling back to single-process locking", "error", err)
		locks = lock.NewNoopManager()
	}

	producer, err := mq.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		logger.Error("failed to create kafka producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	scorer := scoring.Contained(scoring.NewFraudScorer(scoring.ModelRuleBased))
	issuer := token.NewPermissionIssuer(cfg.Auth.PermissionSecret, cfg.Auth.PermissionTokenTTL)
	notifier := notification.NewNotifier(cfg.Kafka.Topic)
	auditor := audit.NewRecorder(repository.NewAuditRepository(database), logger)

	ledger := service.NewLedgerService(database, locks, scorer, notifier, auditor, cfg.Business.MaxDepositCents)
	access := service.NewAccessService(database, issuer, notifier, auditor, cfg.Auth.AccessRequestExpiry, cfg.Business.RecentTransactions)
	insights := service.NewInsightService(database, scorer)
	admin := service.NewAdminService(database, auditor)

	sender := job.NewOutboxSender(database, producer, logger, cfg.Jobs.OutboxInterval, cfg.Business.MaxOutboxRetries)
	go sender.Run(ctx)

	sweeper := job.NewRequestExpirySweeper(access, logger, cfg.Jobs.ExpirySweepInterval)
	go sweeper.Run(ctx)

	handler := handlers.New(ledger, access, insights, admin, logger)
	router := handlers.SetupRouter(handler, database, cfg, logger)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
}
