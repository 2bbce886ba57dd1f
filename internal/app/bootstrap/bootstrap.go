// Package bootstrap is the composition root. Construction and wiring live
// here so module code stays framework-agnostic.
package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	decisionboardengine "wayfarer/contexts/trip-coordination/decision-board-engine"
	postgresadapter "wayfarer/contexts/trip-coordination/decision-board-engine/adapters/postgres"
	boardworkers "wayfarer/contexts/trip-coordination/decision-board-engine/application/workers"
	"wayfarer/contexts/trip-coordination/decision-board-engine/realtime"
	"wayfarer/internal/platform/config"
	"wayfarer/internal/platform/db"
	"wayfarer/internal/platform/httpserver"
	"wayfarer/internal/platform/messaging"
	sharedevents "wayfarer/internal/shared/events"
)

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	fanout   *realtime.FanoutConsumer
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  boardworkers.OutboxRelay
	sweeper      boardworkers.DeadlineSweeper
	relayEnabled bool
	sweepEnabled bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus, err := messaging.NewBus(cfg.BusBrokers, logger)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := decisionboardengine.NewModule(decisionboardengine.Dependencies{
		Boards:        repo,
		Votes:         repo,
		Trips:         repo,
		Options:       repo,
		Outbox:        repo,
		Publisher:     bus,
		Clock:         postgresadapter.SystemClock{},
		IDGen:         postgresadapter.UUIDGenerator{},
		RealtimeTopic: sharedevents.TopicBoardRealtime,
		InstanceID:    cfg.InstanceID,
		Logger:        logger,
	})

	app := &APIApp{
		server:   httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort)),
		postgres: pg,
		logger:   logger,
	}
	if cfg.EnableRealtimeFanout {
		app.fanout = &realtime.FanoutConsumer{
			Subscriber:    bus,
			Dispatcher:    module.Dispatcher,
			Topic:         sharedevents.TopicBoardRealtime,
			ConsumerGroup: "decision-board-realtime-" + cfg.InstanceID,
			Logger:        logger,
		}
	}
	return app, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus, err := messaging.NewBus(cfg.BusBrokers, logger)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)
	module := decisionboardengine.NewModule(decisionboardengine.Dependencies{
		Boards:     repo,
		Votes:      repo,
		Trips:      repo,
		Options:    repo,
		Outbox:     repo,
		Clock:      postgresadapter.SystemClock{},
		IDGen:      postgresadapter.UUIDGenerator{},
		InstanceID: cfg.InstanceID,
		Logger:     logger,
	})

	return &WorkerApp{
		postgres: pg,
		outboxRelay: boardworkers.OutboxRelay{
			Outbox:    repo,
			Publisher: bus,
			Clock:     postgresadapter.SystemClock{},
			Topic:     sharedevents.TopicBoardLifecycle,
			BatchSize: 100,
			Logger:    logger,
		},
		sweeper: boardworkers.DeadlineSweeper{
			Boards:    repo,
			Lifecycle: module.Boards,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: 50,
			Logger:    logger,
		},
		relayEnabled: cfg.EnableOutboxRelay,
		sweepEnabled: cfg.EnableDeadlineSweeper,
		pollInterval: cfg.SweepInterval,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.fanout != nil {
		if err := a.fanout.Start(ctx); err != nil {
			return err
		}
	}
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
		if w.sweepEnabled {
			if err := w.sweeper.RunOnce(ctx); err != nil {
				return err
			}
		}
		if w.relayEnabled {
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
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
