package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	revenuesplitservice "splitvault/contexts/treasury-core/revenue-split-service"
	"splitvault/contexts/treasury-core/revenue-split-service/adapters/memory"
	postgresadapter "splitvault/contexts/treasury-core/revenue-split-service/adapters/postgres"
	"splitvault/contexts/treasury-core/revenue-split-service/adapters/settlement"
	workerapp "splitvault/contexts/treasury-core/revenue-split-service/application/workers"
	"splitvault/internal/platform/config"
	"splitvault/internal/platform/db"
	"splitvault/internal/platform/httpserver"
	"splitvault/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  workerapp.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	var (
		module revenuesplitservice.Module
		pg     *db.Postgres
	)
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		// No DSN means local development wiring backed by memory.
		module = revenuesplitservice.NewInMemoryModule(cfg.TreasuryOwnerID, logger)
	} else {
		pg, err = db.Connect(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}

		repo := postgresadapter.NewRepository(pg.DB, logger)
		module = revenuesplitservice.NewModule(revenuesplitservice.Dependencies{
			Repository: repo,
			Gate:       memory.NewOwnerGate(cfg.TreasuryOwnerID),
			Transfer:   settlement.NewGateway(logger),
			Clock:      postgresadapter.SystemClock{},
			IDGen:      postgresadapter.UUIDGenerator{},
			Outbox:     repo,
			Logger:     logger,
		})
	}

	server := httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort), cfg.EnableInvestorReimbursement)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if !cfg.EnableOutboxRelay {
		return nil, errors.New("ENABLE_OUTBOX_RELAY is disabled; nothing to run")
	}
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     postgresadapter.SystemClock{},
			Topic:     "treasury.notifications",
			BatchSize: 100,
			Logger:    logger,
		},
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
