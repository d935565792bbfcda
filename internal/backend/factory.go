// Package backend selects and assembles the storage backend and its
// optional collaborators from configuration.
package backend

import (
	"fmt"

	"github.com/leoperezgr/Leofy/internal/config"
	"github.com/leoperezgr/Leofy/internal/events"
	"github.com/leoperezgr/Leofy/internal/log"
	"github.com/leoperezgr/Leofy/internal/storage"
)

// Result bundles an assembled store with its teardown and the optional
// event publisher.
type Result struct {
	Store   storage.Store
	Events  *events.Client
	Cleanup func() error
}

// Build picks the configured backend and wires the optional AMQP client.
// A broker that cannot be reached downgrades to no event publishing rather
// than failing startup.
func Build(cfg config.Config, logger *log.Logger) (*Result, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	store, err := openStore(cfg, logger.WithComponent(log.ComponentStorage))
	if err != nil {
		return nil, err
	}

	var eventsClient *events.Client
	if cfg.AMQPURL != "" {
		eventsLog := logger.WithComponent(log.ComponentEvents)
		eventsClient, err = events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			eventsLog.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
			eventsClient = nil
		} else {
			eventsLog.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	cleanup := func() error {
		if eventsClient != nil {
			if err := eventsClient.Close(); err != nil {
				logger.Warn("Failed to close AMQP client", log.FieldError, err)
			}
		}
		return store.Close()
	}

	return &Result{Store: store, Events: eventsClient, Cleanup: cleanup}, nil
}

func openStore(cfg config.Config, logger *log.Logger) (storage.Store, error) {
	switch cfg.DataBackend {
	case "memory":
		logger.Info("Initialized in-memory backend")
		return storage.NewMemoryStore(), nil
	case "sqlite":
		repo, err := storage.OpenSQLite(cfg.SQLiteDBPath, cfg.QueryTimeout)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return repo, nil
	case "postgres":
		repo, err := storage.OpenPostgres(cfg.DatabaseURL, cfg.DatabaseCACert, cfg.QueryTimeout)
		if err != nil {
			return nil, fmt.Errorf("initialize postgres backend: %w", err)
		}
		logger.Info("Initialized Postgres backend")
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.DataBackend)
	}
}
