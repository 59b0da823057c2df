package surveymap

import (
	"context"
	"log/slog"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/config"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/engine"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/errors"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/kvstore"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/labelsource"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/metric"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/natsclient"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/pkg/retry"
)

// OpenStore opens the persistence backend selected by cfg. The returned
// close function releases backend resources and is safe to call once.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (kvstore.Store, func(), error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Storage.Backend {
	case config.StorageMemory:
		return kvstore.NewMemory(), func() {}, nil

	case config.StorageSQLite:
		store, err := kvstore.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close sqlite store", "error", err)
			}
		}, nil

	case config.StorageRedis:
		// Brief retry absorbs a backend still coming up alongside this process.
		store, err := retry.DoWithResult(ctx, retry.Quick(), func() (*kvstore.Redis, error) {
			return kvstore.OpenRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.KeyPrefix)
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			if err := store.Close(); err != nil {
				logger.Warn("Failed to close redis store", "error", err)
			}
		}, nil

	case config.StorageNATS:
		opts := natsclient.DefaultOptions()
		if cfg.NATS.URL != "" {
			opts.URL = cfg.NATS.URL
		}
		if cfg.NATS.MaxReconnects != 0 {
			opts.MaxReconnects = cfg.NATS.MaxReconnects
		}
		if cfg.NATS.ReconnectWait != 0 {
			opts.ReconnectWait = cfg.NATS.ReconnectWait
		}
		opts.Username = cfg.NATS.Username
		opts.Password = cfg.NATS.Password
		opts.Token = cfg.NATS.Token

		client, err := retry.DoWithResult(ctx, retry.Quick(), func() (*natsclient.Client, error) {
			return natsclient.Connect(opts, logger)
		})
		if err != nil {
			return nil, nil, err
		}
		store, err := kvstore.NewNATS(ctx, client, cfg.NATS.Bucket)
		if err != nil {
			client.Close()
			return nil, nil, err
		}
		return store, client.Close, nil

	default:
		return nil, nil, errors.WrapInvalid(errors.ErrInvalidConfig, "surveymap", "OpenStore",
			"storage backend "+cfg.Storage.Backend)
	}
}

// NewManager builds a fully wired engine manager from configuration: it
// opens the configured store, resolves per-kind overrides, and constructs
// one engine per entity kind. The returned close function releases the
// store.
func NewManager(
	ctx context.Context,
	cfg *config.Config,
	source labelsource.Source,
	logger *slog.Logger,
	metricsRegistry *metric.Registry,
) (*engine.Manager, func(), error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	store, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	overrides, err := cfg.KindConfigs()
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	mgr, err := engine.NewManager(overrides, store, source, logger, metricsRegistry)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return mgr, closeStore, nil
}
