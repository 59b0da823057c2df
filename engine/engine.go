package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/errors"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/kvstore"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/labelsource"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/mapping"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/metric"
)

// Engine is the mapping reconciliation engine for one entity kind. It owns
// the kind's mapping set, learned set, and selection, persists them through
// a key-value store, and derives the unmapped/mapped/learned views.
//
// The engine is driven by user intents on a single UI event loop and is not
// safe for concurrent use. One instance exists per entity kind; instances
// share nothing but the store.
//
// Mutating operations apply the change in memory first and then persist.
// A returned error classified transient (errors.IsTransient) means the
// in-memory change took effect but persistence failed; a validation error
// means the operation was aborted with state unchanged.
type Engine struct {
	cfg     mapping.KindConfig
	store   kvstore.Store
	source  labelsource.Source
	logger  *slog.Logger
	metrics *engineMetrics

	labels    []mapping.SourceLabel
	mappings  []*mapping.Mapping
	learned   mapping.LearnedSet
	selection map[string]struct{}

	onMappingChange  func([]*mapping.Mapping)
	onUnmappedChange func([]mapping.SourceLabel)
}

// New creates an engine for one entity kind. metricsRegistry may be nil to
// disable metrics.
func New(
	cfg mapping.KindConfig,
	store kvstore.Store,
	source labelsource.Source,
	logger *slog.Logger,
	metricsRegistry *metric.Registry,
) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "engine", "New", "nil store")
	}
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := newEngineMetrics(metricsRegistry)
	if err != nil {
		logger.Error("Failed to initialize engine metrics", "kind", cfg.Kind, "error", err)
		metrics = nil // Continue without metrics
	}

	return &Engine{
		cfg:       cfg,
		store:     store,
		source:    source,
		logger:    logger,
		metrics:   metrics,
		learned:   mapping.LearnedSet{},
		selection: make(map[string]struct{}),
	}, nil
}

// Kind returns the entity kind this engine serves.
func (e *Engine) Kind() mapping.Kind {
	return e.cfg.Kind
}

// SetOnMappingChange registers a callback fired with the full mapping list
// after every successful mutation.
func (e *Engine) SetOnMappingChange(fn func([]*mapping.Mapping)) {
	e.onMappingChange = fn
}

// SetOnUnmappedChange registers a callback fired with the recomputed
// unmapped list after every successful mutation.
func (e *Engine) SetOnUnmappedChange(fn func([]mapping.SourceLabel)) {
	e.onUnmappedChange = fn
}

// LoadState reads the persisted mapping and learned sets. Fails soft: on a
// read or parse error it logs and falls back to the kind's default seeds so
// the UI stays usable.
func (e *Engine) LoadState(ctx context.Context) {
	e.mappings = e.loadMappings(ctx)
	e.learned = e.loadLearned(ctx)

	if err := mapping.ValidateSet(e.mappings); err != nil {
		e.logger.Warn("Persisted mapping set violates claim invariant",
			"kind", e.cfg.Kind, "error", err)
	}
	e.updateViewGauges()
}

func (e *Engine) loadMappings(ctx context.Context) []*mapping.Mapping {
	data, err := e.store.Get(ctx, e.cfg.MappingsKey())
	if err != nil {
		if !errors.IsNotFound(err) {
			e.logger.Error("Failed to read mapping set, using defaults",
				"kind", e.cfg.Kind, "error", err)
		}
		return cloneSeeds(e.cfg.Seeds)
	}

	var mappings []*mapping.Mapping
	if err := json.Unmarshal(data, &mappings); err != nil {
		e.logger.Error("Failed to parse mapping set, using defaults",
			"kind", e.cfg.Kind, "error", err)
		return cloneSeeds(e.cfg.Seeds)
	}
	return mappings
}

func (e *Engine) loadLearned(ctx context.Context) mapping.LearnedSet {
	data, err := e.store.Get(ctx, e.cfg.LearnedKey())
	if err != nil {
		if !errors.IsNotFound(err) {
			e.logger.Error("Failed to read learned set, starting empty",
				"kind", e.cfg.Kind, "error", err)
		}
		return mapping.LearnedSet{}
	}

	var learned mapping.LearnedSet
	if err := json.Unmarshal(data, &learned); err != nil {
		e.logger.Error("Failed to parse learned set, starting empty",
			"kind", e.cfg.Kind, "error", err)
		return mapping.LearnedSet{}
	}
	if learned == nil {
		learned = mapping.LearnedSet{}
	}
	return learned
}

func cloneSeeds(seeds []*mapping.Mapping) []*mapping.Mapping {
	out := make([]*mapping.Mapping, len(seeds))
	for i, s := range seeds {
		out[i] = s.Clone()
	}
	return out
}

// Refresh replaces the label snapshot from the label source. On failure the
// previous snapshot is kept so already-loaded mapping state keeps rendering.
func (e *Engine) Refresh(ctx context.Context) error {
	if e.source == nil {
		return errors.WrapInvalid(errors.ErrMissingConfig, "engine", "Refresh", "no label source")
	}

	labels, err := e.source.CurrentLabels(ctx, e.cfg.Kind)
	if err != nil {
		return errors.WrapTransient(err, "engine", "Refresh", "fetch label snapshot")
	}

	e.labels = labels

	// Selection may reference labels gone from the new snapshot
	present := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		present[l.RawLabel] = struct{}{}
	}
	for raw := range e.selection {
		if _, ok := present[raw]; !ok {
			delete(e.selection, raw)
		}
	}

	e.updateViewGauges()
	e.notifyUnmapped()
	return nil
}

// persistMappings writes the mapping set. Errors are classified transient.
func (e *Engine) persistMappings(ctx context.Context, operation string) error {
	data, err := json.Marshal(e.mappings)
	if err != nil {
		return errors.WrapFatal(err, "engine", operation, "marshal mapping set")
	}
	if err := e.store.Set(ctx, e.cfg.MappingsKey(), data); err != nil {
		e.logger.Error("Failed to persist mapping set, in-memory state retained",
			"kind", e.cfg.Kind, "operation", operation, "error", err)
		return errors.WrapTransient(err, "engine", operation, "persist mapping set")
	}
	return nil
}

// persistLearned writes the learned set. Errors are classified transient.
func (e *Engine) persistLearned(ctx context.Context, operation string) error {
	data, err := json.Marshal(e.learned)
	if err != nil {
		return errors.WrapFatal(err, "engine", operation, "marshal learned set")
	}
	if err := e.store.Set(ctx, e.cfg.LearnedKey(), data); err != nil {
		e.logger.Error("Failed to persist learned set, in-memory state retained",
			"kind", e.cfg.Kind, "operation", operation, "error", err)
		return errors.WrapTransient(err, "engine", operation, "persist learned set")
	}
	return nil
}

// notifyChanged fires both change callbacks after a successful mutation.
func (e *Engine) notifyChanged() {
	e.updateViewGauges()
	if e.onMappingChange != nil {
		e.onMappingChange(e.Mapped())
	}
	e.notifyUnmapped()
}

func (e *Engine) notifyUnmapped() {
	if e.onUnmappedChange != nil {
		e.onUnmappedChange(e.Unmapped())
	}
}

func (e *Engine) updateViewGauges() {
	if e.metrics == nil {
		return
	}
	e.metrics.setViewSizes(e.cfg.Kind, len(e.Unmapped()), len(e.mappings), len(e.learned))
}

// findMapping returns the index of the mapping with the given id, or -1.
func (e *Engine) findMapping(id string) int {
	for i, m := range e.mappings {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// sortedMappings returns deep copies sorted by standardized name for
// deterministic rendering.
func (e *Engine) sortedMappings() []*mapping.Mapping {
	out := make([]*mapping.Mapping, len(e.mappings))
	for i, m := range e.mappings {
		out[i] = m.Clone()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StandardizedName != out[j].StandardizedName {
			return out[i].StandardizedName < out[j].StandardizedName
		}
		return out[i].ID < out[j].ID
	})
	return out
}
