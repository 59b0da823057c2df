// Package labelsource defines the upstream boundary that supplies the
// current universe of raw labels observed in uploaded survey data.
//
// A source always returns a full replacement snapshot, never a delta: the
// engine discards its previous label set on every refresh. Producing these
// snapshots (file ingestion, parsing) is outside this module.
package labelsource

import (
	"context"
	"sync"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/mapping"
)

// Source supplies the current raw-label snapshot for an entity kind.
type Source interface {
	CurrentLabels(ctx context.Context, kind mapping.Kind) ([]mapping.SourceLabel, error)
}

// Func adapts a function to the Source interface.
type Func func(ctx context.Context, kind mapping.Kind) ([]mapping.SourceLabel, error)

// CurrentLabels implements Source.
func (f Func) CurrentLabels(ctx context.Context, kind mapping.Kind) ([]mapping.SourceLabel, error) {
	return f(ctx, kind)
}

// Static holds in-memory snapshots per entity kind, replaced wholesale when
// upstream survey data changes. Used by tests and by shells that load survey
// files themselves.
type Static struct {
	mu     sync.RWMutex
	labels map[mapping.Kind][]mapping.SourceLabel
}

// NewStatic creates an empty static source.
func NewStatic() *Static {
	return &Static{labels: make(map[mapping.Kind][]mapping.SourceLabel)}
}

// Replace installs a new full snapshot for the kind.
func (s *Static) Replace(kind mapping.Kind, labels []mapping.SourceLabel) {
	snapshot := make([]mapping.SourceLabel, len(labels))
	copy(snapshot, labels)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.labels[kind] = snapshot
}

// CurrentLabels returns a copy of the current snapshot for the kind. An
// unknown kind yields an empty snapshot, not an error.
func (s *Static) CurrentLabels(_ context.Context, kind mapping.Kind) ([]mapping.SourceLabel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.labels[kind]
	out := make([]mapping.SourceLabel, len(snapshot))
	copy(out, snapshot)
	return out, nil
}
