package mapping

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/errors"
)

// SurveySource identifies the originating dataset/vendor for a raw label.
type SurveySource string

// Known survey vendors plus the catch-all Custom source for
// user-entered or unattributed labels.
const (
	SourceMGMA           SurveySource = "MGMA"
	SourceSullivanCotter SurveySource = "SullivanCotter"
	SourceGallagher      SurveySource = "Gallagher"
	SourceECG            SurveySource = "ECG"
	SourceAMGA           SurveySource = "AMGA"
	SourceCustom         SurveySource = "Custom"
)

// SourceLabel is a raw string value observed in uploaded survey data,
// tagged with its originating survey source and observation frequency.
// Labels are supplied by a label source and are never owned or mutated
// by the engine.
type SourceLabel struct {
	RawLabel  string       `json:"raw_label"`
	Source    SurveySource `json:"survey_source"`
	Frequency int          `json:"frequency"`
}

// SourceEntry is one (rawLabel, surveySource, frequency) tuple claimed by a
// mapping. No two entries in the same mapping share (RawLabel, Source).
type SourceEntry struct {
	RawLabel  string       `json:"raw_label"`
	Source    SurveySource `json:"survey_source"`
	Frequency int          `json:"frequency"`
}

// Key returns the uniqueness key for this entry.
func (e SourceEntry) Key() EntryKey {
	return EntryKey{RawLabel: e.RawLabel, Source: e.Source}
}

// EntryKey is the (rawLabel, surveySource) pair that identifies a claim.
type EntryKey struct {
	RawLabel string
	Source   SurveySource
}

// Mapping is the persisted unit of truth: a grouping of one or more raw
// labels under one standardized name.
type Mapping struct {
	ID               string        `json:"id"`
	StandardizedName string        `json:"standardized_name"`
	SourceEntries    []SourceEntry `json:"source_entries"`

	// Entity-specific attributes; nil for kinds that carry none.
	Attributes *Attributes `json:"attributes,omitempty"`

	// Audit
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a mapping with a fresh id and deduplicated entries.
// Entries sharing a (rawLabel, surveySource) pair keep the first occurrence.
func New(standardizedName string, entries []SourceEntry) *Mapping {
	now := time.Now()
	m := &Mapping{
		ID:               uuid.NewString(),
		StandardizedName: standardizedName,
		SourceEntries:    dedupeEntries(entries),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return m
}

func dedupeEntries(entries []SourceEntry) []SourceEntry {
	seen := make(map[EntryKey]bool, len(entries))
	out := make([]SourceEntry, 0, len(entries))
	for _, e := range entries {
		if seen[e.Key()] {
			continue
		}
		seen[e.Key()] = true
		out = append(out, e)
	}
	return out
}

// HasEntry reports whether this mapping claims the (rawLabel, source) pair.
func (m *Mapping) HasEntry(rawLabel string, source SurveySource) bool {
	key := EntryKey{RawLabel: rawLabel, Source: source}
	for _, e := range m.SourceEntries {
		if e.Key() == key {
			return true
		}
	}
	return false
}

// AddEntry appends an entry, refreshing UpdatedAt. Returns false if the
// (rawLabel, source) pair is already claimed by this mapping.
func (m *Mapping) AddEntry(entry SourceEntry) bool {
	if m.HasEntry(entry.RawLabel, entry.Source) {
		return false
	}
	m.SourceEntries = append(m.SourceEntries, entry)
	m.UpdatedAt = time.Now()
	return true
}

// RemoveEntry removes the entry for the (rawLabel, source) pair, refreshing
// UpdatedAt. Returns false if no such entry exists.
func (m *Mapping) RemoveEntry(rawLabel string, source SurveySource) bool {
	key := EntryKey{RawLabel: rawLabel, Source: source}
	for i, e := range m.SourceEntries {
		if e.Key() == key {
			m.SourceEntries = append(m.SourceEntries[:i], m.SourceEntries[i+1:]...)
			m.UpdatedAt = time.Now()
			return true
		}
	}
	return false
}

// Rename changes the standardized name, refreshing UpdatedAt.
func (m *Mapping) Rename(standardizedName string) error {
	if isBlank(standardizedName) {
		return errors.WrapInvalid(errors.ErrEmptyName, "mapping", "Rename", "validation")
	}
	m.StandardizedName = standardizedName
	m.UpdatedAt = time.Now()
	return nil
}

// Validate checks structural invariants. Seed mappings may carry zero
// entries; non-empty selections are enforced at the engine boundary.
func (m *Mapping) Validate() error {
	if m.ID == "" {
		return errors.WrapInvalid(fmt.Errorf("mapping ID cannot be empty"), "mapping", "Validate", "validation")
	}
	if isBlank(m.StandardizedName) {
		return errors.WrapInvalid(errors.ErrEmptyName, "mapping", "Validate", "validation")
	}

	seen := make(map[EntryKey]bool, len(m.SourceEntries))
	for _, e := range m.SourceEntries {
		if e.RawLabel == "" {
			return errors.WrapInvalid(
				fmt.Errorf("mapping %q has entry with empty raw label", m.StandardizedName),
				"mapping", "Validate", "validation")
		}
		if seen[e.Key()] {
			return errors.WrapInvalid(
				fmt.Errorf("mapping %q claims %q/%s twice", m.StandardizedName, e.RawLabel, e.Source),
				"mapping", "Validate", "validation")
		}
		seen[e.Key()] = true
	}
	return nil
}

// Clone returns a deep copy of the mapping.
func (m *Mapping) Clone() *Mapping {
	if m == nil {
		return nil
	}
	clone := *m
	clone.SourceEntries = make([]SourceEntry, len(m.SourceEntries))
	copy(clone.SourceEntries, m.SourceEntries)
	clone.Attributes = m.Attributes.Clone()
	return &clone
}

// BuildClaimIndex builds a lookup from (rawLabel, surveySource) pairs to the
// id of the mapping claiming them. Built once per recomputation so derived
// views stay linear in the number of labels and entries.
func BuildClaimIndex(mappings []*Mapping) map[EntryKey]string {
	index := make(map[EntryKey]string)
	for _, m := range mappings {
		for _, e := range m.SourceEntries {
			if _, claimed := index[e.Key()]; !claimed {
				index[e.Key()] = m.ID
			}
		}
	}
	return index
}

// ValidateSet checks the cross-mapping invariant: a (rawLabel, surveySource)
// pair appears in at most one mapping's source entries.
func ValidateSet(mappings []*Mapping) error {
	claimed := make(map[EntryKey]string)
	for _, m := range mappings {
		if err := m.Validate(); err != nil {
			return err
		}
		for _, e := range m.SourceEntries {
			if other, ok := claimed[e.Key()]; ok && other != m.ID {
				return errors.WrapInvalid(
					fmt.Errorf("%q/%s claimed by mappings %s and %s", e.RawLabel, e.Source, other, m.ID),
					"mapping", "ValidateSet", "double claim")
			}
			claimed[e.Key()] = m.ID
		}
	}
	return nil
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
