package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/errors"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/mapping"
)

// CreateMapping groups all given labels under one standardized name as a
// single new mapping and returns its id. The selection is cleared on
// success.
func (e *Engine) CreateMapping(ctx context.Context, standardizedName string, selected []mapping.SourceEntry) (string, error) {
	start := time.Now()

	id, err := e.createMapping(ctx, standardizedName, selected)
	e.record("create_mapping", start, err)
	return id, err
}

func (e *Engine) createMapping(ctx context.Context, standardizedName string, selected []mapping.SourceEntry) (string, error) {
	if isBlank(standardizedName) {
		return "", errors.WrapInvalid(errors.ErrEmptyName, "engine", "CreateMapping", "validation")
	}
	if len(selected) == 0 {
		return "", errors.WrapInvalid(errors.ErrEmptySelection, "engine", "CreateMapping", "validation")
	}

	m := mapping.New(standardizedName, selected)
	if err := e.claimEntries(m.SourceEntries, "CreateMapping"); err != nil {
		return "", err
	}

	e.mappings = append(e.mappings, m)
	e.ClearSelection()

	err := e.persistMappings(ctx, "CreateMapping")
	e.notifyChanged()
	return m.ID, err
}

// CreateIndividualMappings creates one mapping per distinct raw label among
// the given labels, each standardized to its own raw label unless overrides
// supplies a different name (keyed by raw label). Returns the new mapping
// ids. The selection is cleared on success.
//
// This is a distinct user choice from CreateMapping: multi-select then "map
// individually" instead of grouping under one shared name.
func (e *Engine) CreateIndividualMappings(ctx context.Context, selected []mapping.SourceEntry, overrides map[string]string) ([]string, error) {
	start := time.Now()

	ids, err := e.createIndividualMappings(ctx, selected, overrides)
	e.record("create_individual", start, err)
	return ids, err
}

func (e *Engine) createIndividualMappings(ctx context.Context, selected []mapping.SourceEntry, overrides map[string]string) ([]string, error) {
	if len(selected) == 0 {
		return nil, errors.WrapInvalid(errors.ErrEmptySelection, "engine", "CreateIndividualMappings", "validation")
	}

	// One mapping per distinct raw label; the same raw label observed in
	// several surveys stays together under its own name.
	order := make([]string, 0, len(selected))
	byRaw := make(map[string][]mapping.SourceEntry)
	for _, entry := range selected {
		if entry.RawLabel == "" {
			return nil, errors.WrapInvalid(
				fmt.Errorf("selected label has empty raw value"),
				"engine", "CreateIndividualMappings", "validation")
		}
		if _, seen := byRaw[entry.RawLabel]; !seen {
			order = append(order, entry.RawLabel)
		}
		byRaw[entry.RawLabel] = append(byRaw[entry.RawLabel], entry)
	}

	created := make([]*mapping.Mapping, 0, len(order))
	for _, raw := range order {
		name := raw
		if override, ok := overrides[raw]; ok && !isBlank(override) {
			name = override
		}
		m := mapping.New(name, byRaw[raw])
		if err := e.claimEntries(m.SourceEntries, "CreateIndividualMappings"); err != nil {
			// Roll back claims taken by earlier labels in this call
			e.unclaim(created)
			return nil, err
		}
		e.mappings = append(e.mappings, m)
		created = append(created, m)
	}

	ids := make([]string, len(created))
	for i, m := range created {
		ids[i] = m.ID
	}
	e.ClearSelection()

	err := e.persistMappings(ctx, "CreateIndividualMappings")
	e.notifyChanged()
	return ids, err
}

// claimEntries enforces the cross-mapping claim invariant for entries being
// added to a new mapping, per the kind's claim policy. With ClaimReject an
// already-claimed pair fails the whole operation before any state changes;
// with ClaimReassign the pair is moved out of its old mapping, and mappings
// emptied by the move are dropped. Labels covered by a learned entry are
// rejected under either policy, a label is never mapped and learned at the
// same time.
func (e *Engine) claimEntries(entries []mapping.SourceEntry, operation string) error {
	for _, entry := range entries {
		if e.learned.Has(entry.RawLabel) {
			return errors.WrapInvalid(
				fmt.Errorf("%w: %q", errors.ErrLabelLearned, entry.RawLabel),
				"engine", operation, "claim check")
		}
	}

	index := mapping.BuildClaimIndex(e.mappings)

	conflicts := make(map[string][]mapping.SourceEntry) // mapping id -> entries to move
	for _, entry := range entries {
		owner, claimed := index[entry.Key()]
		if !claimed {
			continue
		}
		if e.cfg.ClaimPolicy == mapping.ClaimReject {
			return errors.WrapInvalid(
				fmt.Errorf("%w: %q from %s", errors.ErrLabelClaimed, entry.RawLabel, entry.Source),
				"engine", operation, "claim check")
		}
		conflicts[owner] = append(conflicts[owner], entry)
	}

	for owner, moved := range conflicts {
		i := e.findMapping(owner)
		if i < 0 {
			continue
		}
		m := e.mappings[i]
		for _, entry := range moved {
			m.RemoveEntry(entry.RawLabel, entry.Source)
		}
		if len(m.SourceEntries) == 0 {
			e.mappings = append(e.mappings[:i], e.mappings[i+1:]...)
		}
	}
	return nil
}

// unclaim removes mappings created earlier in a failed multi-label call.
func (e *Engine) unclaim(created []*mapping.Mapping) {
	for _, m := range created {
		if i := e.findMapping(m.ID); i >= 0 {
			e.mappings = append(e.mappings[:i], e.mappings[i+1:]...)
		}
	}
}

// DeleteMapping removes the mapping with the given id. Its raw labels revert
// to unmapped on the next recomputation. Deleting an absent id is a no-op.
func (e *Engine) DeleteMapping(ctx context.Context, id string) error {
	start := time.Now()

	err := e.deleteMapping(ctx, id)
	e.record("delete_mapping", start, err)
	return err
}

func (e *Engine) deleteMapping(ctx context.Context, id string) error {
	i := e.findMapping(id)
	if i < 0 {
		return nil // Idempotent delete
	}

	e.mappings = append(e.mappings[:i], e.mappings[i+1:]...)

	err := e.persistMappings(ctx, "DeleteMapping")
	e.notifyChanged()
	return err
}

// ClearAllMappings empties the mapping set. Irreversible; confirmation
// belongs to the host UI, not here.
func (e *Engine) ClearAllMappings(ctx context.Context) error {
	start := time.Now()

	e.mappings = nil
	err := e.persistMappings(ctx, "ClearAllMappings")
	e.notifyChanged()

	e.record("clear_mappings", start, err)
	return err
}

// RenameMapping changes a mapping's standardized name. Renaming an absent id
// is a no-op.
func (e *Engine) RenameMapping(ctx context.Context, id, standardizedName string) error {
	start := time.Now()

	err := e.renameMapping(ctx, id, standardizedName)
	e.record("rename_mapping", start, err)
	return err
}

func (e *Engine) renameMapping(ctx context.Context, id, standardizedName string) error {
	i := e.findMapping(id)
	if i < 0 {
		return nil
	}
	if err := e.mappings[i].Rename(standardizedName); err != nil {
		return err
	}

	err := e.persistMappings(ctx, "RenameMapping")
	e.notifyChanged()
	return err
}

// UpdateMappingAttributes replaces a mapping's entity-specific attributes.
// Updating an absent id is a no-op. The engine treats the attributes as
// opaque; per-kind validation belongs to the caller.
func (e *Engine) UpdateMappingAttributes(ctx context.Context, id string, attrs *mapping.Attributes) error {
	start := time.Now()

	err := e.updateMappingAttributes(ctx, id, attrs)
	e.record("update_attributes", start, err)
	return err
}

func (e *Engine) updateMappingAttributes(ctx context.Context, id string, attrs *mapping.Attributes) error {
	i := e.findMapping(id)
	if i < 0 {
		return nil
	}

	e.mappings[i].Attributes = attrs.Clone()
	e.mappings[i].UpdatedAt = time.Now()

	err := e.persistMappings(ctx, "UpdateMappingAttributes")
	e.notifyChanged()
	return err
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
