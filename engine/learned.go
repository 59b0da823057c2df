package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/errors"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/mapping"
)

// RecordLearnedMapping upserts a provisional (rawLabel -> standardizedName)
// correction. A different existing target for the same raw label is
// overwritten, last write wins.
func (e *Engine) RecordLearnedMapping(ctx context.Context, rawLabel, standardizedName string) error {
	start := time.Now()

	err := e.recordLearnedMapping(ctx, rawLabel, standardizedName)
	e.record("record_learned", start, err)
	return err
}

func (e *Engine) recordLearnedMapping(ctx context.Context, rawLabel, standardizedName string) error {
	if isBlank(rawLabel) {
		return errors.WrapInvalid(
			fmt.Errorf("raw label cannot be empty"),
			"engine", "RecordLearnedMapping", "validation")
	}
	if isBlank(standardizedName) {
		return errors.WrapInvalid(errors.ErrEmptyName, "engine", "RecordLearnedMapping", "validation")
	}

	// A label is never mapped and learned at the same time.
	for _, m := range e.mappings {
		for _, entry := range m.SourceEntries {
			if entry.RawLabel == rawLabel {
				return errors.WrapInvalid(
					fmt.Errorf("%w: %q", errors.ErrLabelClaimed, rawLabel),
					"engine", "RecordLearnedMapping", "claim check")
			}
		}
	}

	e.learned.Record(rawLabel, standardizedName)

	err := e.persistLearned(ctx, "RecordLearnedMapping")
	e.notifyChanged()
	return err
}

// ApplyLearnedMapping promotes one learned entry into a real mapping.
// Applying an absent raw label is a no-op. Promotion is atomic with respect
// to persisted state: either both the mapping set and the learned set are
// persisted, or neither changes.
func (e *Engine) ApplyLearnedMapping(ctx context.Context, rawLabel string) error {
	start := time.Now()

	err := e.applyLearned(ctx, "ApplyLearnedMapping", func() []string {
		if !e.learned.Has(rawLabel) {
			return nil
		}
		return []string{rawLabel}
	})
	e.record("apply_learned", start, err)
	return err
}

// ApplyAllLearnedMappings promotes every learned entry, grouping raw labels
// by their standardized target so each target gains or extends exactly one
// mapping. Afterwards the learned set is empty.
func (e *Engine) ApplyAllLearnedMappings(ctx context.Context) error {
	start := time.Now()

	err := e.applyLearned(ctx, "ApplyAllLearnedMappings", func() []string {
		raws := make([]string, 0, len(e.learned))
		for _, group := range e.learned.Groups() {
			raws = append(raws, group.RawLabels...)
		}
		return raws
	})
	e.record("apply_all_learned", start, err)
	return err
}

// applyLearned runs a promotion over the raw labels chosen by pick. The
// previous state is snapshotted so a persistence failure rolls the whole
// promotion back.
func (e *Engine) applyLearned(ctx context.Context, operation string, pick func() []string) error {
	raws := pick()
	if len(raws) == 0 {
		return nil
	}

	prevMappings := cloneMappings(e.mappings)
	prevLearned := e.learned.Clone()

	for _, raw := range raws {
		e.promote(raw, e.learned[raw])
		e.learned.Remove(raw)
	}

	if err := e.persistPromotion(ctx, operation, prevMappings, prevLearned); err != nil {
		return err
	}

	e.notifyChanged()
	return nil
}

// promote merges one learned pair into the mapping set: append to the
// mapping already standardized to the target name, else create it. Entries
// come from the current label snapshot where possible; a label absent from
// the snapshot gets an inferred survey source with zero frequency. Pairs
// already claimed by another mapping are skipped, preserving the claim
// invariant.
func (e *Engine) promote(rawLabel, standardizedName string) {
	target := e.mappingByName(standardizedName)
	if target == nil {
		target = mapping.New(standardizedName, nil)
		e.mappings = append(e.mappings, target)
	}

	index := mapping.BuildClaimIndex(e.mappings)

	entries := e.snapshotEntries(rawLabel)
	if len(entries) == 0 {
		entries = []mapping.SourceEntry{{
			RawLabel: rawLabel,
			Source:   mapping.InferSurveySource(rawLabel),
		}}
	}

	for _, entry := range entries {
		if owner, claimed := index[entry.Key()]; claimed && owner != target.ID {
			continue
		}
		target.AddEntry(entry)
	}
}

// mappingByName returns the mapping with the given standardized name, if any.
func (e *Engine) mappingByName(standardizedName string) *mapping.Mapping {
	for _, m := range e.mappings {
		if m.StandardizedName == standardizedName {
			return m
		}
	}
	return nil
}

// snapshotEntries returns every occurrence of rawLabel in the current label
// snapshot as source entries.
func (e *Engine) snapshotEntries(rawLabel string) []mapping.SourceEntry {
	var entries []mapping.SourceEntry
	for _, l := range e.labels {
		if l.RawLabel == rawLabel {
			entries = append(entries, mapping.SourceEntry{
				RawLabel:  l.RawLabel,
				Source:    l.Source,
				Frequency: l.Frequency,
			})
		}
	}
	return entries
}

// persistPromotion writes both state documents. If the first write fails
// nothing was persisted; if the second fails the first is compensated with
// the previous document. In-memory state is rolled back either way.
func (e *Engine) persistPromotion(ctx context.Context, operation string,
	prevMappings []*mapping.Mapping, prevLearned mapping.LearnedSet) error {

	if err := e.persistMappings(ctx, operation); err != nil {
		e.mappings = prevMappings
		e.learned = prevLearned
		return err
	}

	if err := e.persistLearned(ctx, operation); err != nil {
		// Best-effort compensation to keep the persisted documents paired
		e.mappings = prevMappings
		e.learned = prevLearned
		if compErr := e.persistMappings(ctx, operation); compErr != nil {
			e.logger.Error("Failed to compensate mapping set after partial promotion",
				"kind", e.cfg.Kind, "error", compErr)
		}
		return err
	}
	return nil
}

// RemoveLearnedMapping deletes one learned entry without touching the
// mapping set. Removing an absent raw label is a no-op.
func (e *Engine) RemoveLearnedMapping(ctx context.Context, rawLabel string) error {
	start := time.Now()

	err := e.removeLearnedMapping(ctx, rawLabel)
	e.record("remove_learned", start, err)
	return err
}

func (e *Engine) removeLearnedMapping(ctx context.Context, rawLabel string) error {
	if !e.learned.Remove(rawLabel) {
		return nil
	}

	err := e.persistLearned(ctx, "RemoveLearnedMapping")
	e.notifyChanged()
	return err
}

// ClearAllLearnedMappings empties the learned set without touching the
// mapping set.
func (e *Engine) ClearAllLearnedMappings(ctx context.Context) error {
	start := time.Now()

	e.learned = mapping.LearnedSet{}
	err := e.persistLearned(ctx, "ClearAllLearnedMappings")
	e.notifyChanged()

	e.record("clear_learned", start, err)
	return err
}

func cloneMappings(mappings []*mapping.Mapping) []*mapping.Mapping {
	out := make([]*mapping.Mapping, len(mappings))
	for i, m := range mappings {
		out[i] = m.Clone()
	}
	return out
}
