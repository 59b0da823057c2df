package engine

import (
	"context"
	"log/slog"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/errors"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/kvstore"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/labelsource"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/mapping"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/metric"
)

// Manager owns one engine per entity kind over a shared store and label
// source. Kinds not configured explicitly get their defaults.
type Manager struct {
	engines map[mapping.Kind]*Engine
	logger  *slog.Logger
}

// NewManager builds engines for every entity kind. overrides replaces the
// default per-kind configuration for the kinds it names.
func NewManager(
	overrides map[mapping.Kind]mapping.KindConfig,
	store kvstore.Store,
	source labelsource.Source,
	logger *slog.Logger,
	metricsRegistry *metric.Registry,
) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Metric vectors register once and are shared; engines partition them by
	// the kind label.
	metrics, err := newEngineMetrics(metricsRegistry)
	if err != nil {
		logger.Error("Failed to initialize engine metrics", "error", err)
		metrics = nil
	}

	engines := make(map[mapping.Kind]*Engine, len(mapping.Kinds()))
	for _, kind := range mapping.Kinds() {
		cfg, ok := overrides[kind]
		if !ok {
			var err error
			cfg, err = mapping.DefaultKindConfig(kind)
			if err != nil {
				return nil, err
			}
		}
		eng, err := New(cfg, store, source, logger, nil)
		if err != nil {
			return nil, errors.Wrap(err, "Manager", "NewManager",
				"build engine for kind "+string(kind))
		}
		eng.metrics = metrics
		engines[kind] = eng
	}

	return &Manager{engines: engines, logger: logger}, nil
}

// Engine returns the engine for a kind, or an error for an unknown kind.
func (m *Manager) Engine(kind mapping.Kind) (*Engine, error) {
	eng, ok := m.engines[kind]
	if !ok {
		return nil, errors.WrapInvalid(errors.ErrUnknownKind, "Manager", "Engine", string(kind))
	}
	return eng, nil
}

// LoadAll loads persisted state for every kind. Individual failures are
// absorbed by each engine's fail-soft load.
func (m *Manager) LoadAll(ctx context.Context) {
	for _, kind := range mapping.Kinds() {
		m.engines[kind].LoadState(ctx)
	}
}

// RefreshAll refreshes the label snapshot for every kind. The first error is
// returned after all kinds have been attempted.
func (m *Manager) RefreshAll(ctx context.Context) error {
	var firstErr error
	for _, kind := range mapping.Kinds() {
		if err := m.engines[kind].Refresh(ctx); err != nil {
			m.logger.Warn("Failed to refresh label snapshot",
				"kind", kind, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
