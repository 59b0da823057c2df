package engine

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/errors"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/kvstore"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/labelsource"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/mapping"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/metric"
)

func newTestManager(t *testing.T) (*Manager, *labelsource.Static) {
	t.Helper()

	source := labelsource.NewStatic()
	m, err := NewManager(nil, kvstore.NewMemory(), source, slog.Default(), nil)
	require.NoError(t, err)
	return m, source
}

func TestNewManager_BuildsAllKinds(t *testing.T) {
	m, _ := newTestManager(t)

	for _, kind := range mapping.Kinds() {
		eng, err := m.Engine(kind)
		require.NoError(t, err)
		assert.Equal(t, kind, eng.Kind())
	}
}

func TestManager_UnknownKind(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Engine("department")
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestManager_Overrides(t *testing.T) {
	cfg, err := mapping.DefaultKindConfig(mapping.KindSpecialty)
	require.NoError(t, err)
	cfg.ClaimPolicy = mapping.ClaimReassign

	m, err := NewManager(
		map[mapping.Kind]mapping.KindConfig{mapping.KindSpecialty: cfg},
		kvstore.NewMemory(), labelsource.NewStatic(), slog.Default(), nil)
	require.NoError(t, err)

	eng, err := m.Engine(mapping.KindSpecialty)
	require.NoError(t, err)
	assert.Equal(t, mapping.ClaimReassign, eng.cfg.ClaimPolicy)
}

func TestManager_KindsAreIsolated(t *testing.T) {
	ctx := context.Background()
	m, source := newTestManager(t)

	source.Replace(mapping.KindSpecialty, []mapping.SourceLabel{
		{RawLabel: "Cardiology", Source: mapping.SourceMGMA, Frequency: 1},
	})
	source.Replace(mapping.KindRegion, []mapping.SourceLabel{
		{RawLabel: "Northeast", Source: mapping.SourceMGMA, Frequency: 1},
	})
	m.LoadAll(ctx)
	require.NoError(t, m.RefreshAll(ctx))

	spec, err := m.Engine(mapping.KindSpecialty)
	require.NoError(t, err)
	region, err := m.Engine(mapping.KindRegion)
	require.NoError(t, err)

	_, err = spec.CreateMapping(ctx, "Cardiology", []mapping.SourceEntry{
		{RawLabel: "Cardiology", Source: mapping.SourceMGMA, Frequency: 1},
	})
	require.NoError(t, err)

	assert.Len(t, spec.Mapped(), 1)
	assert.Empty(t, region.Mapped())
	assert.Len(t, region.Unmapped(), 1)
}

func TestManager_SharedMetricsRegistry(t *testing.T) {
	// One registry serves every per-kind engine; metric vectors register once
	// and are partitioned by the kind label.
	registry := metric.NewRegistry()

	m, err := NewManager(nil, kvstore.NewMemory(), labelsource.NewStatic(), slog.Default(), registry)
	require.NoError(t, err)
	_ = m

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
