package engine

import (
	"sort"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/mapping"
)

// Unmapped returns the labels from the current snapshot that no mapping
// claims and no learned entry covers, sorted by raw label then source. The
// view is recomputed on every call; labels revert here as soon as their
// mapping or learned entry goes away.
func (e *Engine) Unmapped() []mapping.SourceLabel {
	index := mapping.BuildClaimIndex(e.mappings)

	var out []mapping.SourceLabel
	for _, l := range e.labels {
		key := mapping.SourceEntry{RawLabel: l.RawLabel, Source: l.Source}.Key()
		if _, claimed := index[key]; claimed {
			continue
		}
		if e.learned.Has(l.RawLabel) {
			continue
		}
		out = append(out, l)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].RawLabel != out[j].RawLabel {
			return out[i].RawLabel < out[j].RawLabel
		}
		return out[i].Source < out[j].Source
	})
	return out
}

// Mapped returns deep copies of the mapping set sorted by standardized name.
func (e *Engine) Mapped() []*mapping.Mapping {
	return e.sortedMappings()
}

// Learned returns the learned set grouped by standardized target name,
// sorted for deterministic rendering.
func (e *Engine) Learned() []mapping.LearnedGroup {
	return e.learned.Groups()
}

// SelectLabel adds a raw label to the working selection. Selecting a label
// twice is a no-op.
func (e *Engine) SelectLabel(rawLabel string) {
	if isBlank(rawLabel) {
		return
	}
	e.selection[rawLabel] = struct{}{}
}

// DeselectLabel removes a raw label from the working selection.
func (e *Engine) DeselectLabel(rawLabel string) {
	delete(e.selection, rawLabel)
}

// SelectAll replaces the selection with every currently unmapped raw label.
func (e *Engine) SelectAll() {
	e.selection = make(map[string]struct{})
	for _, l := range e.Unmapped() {
		e.selection[l.RawLabel] = struct{}{}
	}
}

// SelectLabels replaces the selection with the given raw labels, typically
// the visible subset of a filtered unmapped view.
func (e *Engine) SelectLabels(rawLabels []string) {
	e.selection = make(map[string]struct{}, len(rawLabels))
	for _, raw := range rawLabels {
		if isBlank(raw) {
			continue
		}
		e.selection[raw] = struct{}{}
	}
}

// ClearSelection empties the working selection.
func (e *Engine) ClearSelection() {
	e.selection = make(map[string]struct{})
}

// Selection returns the selected raw labels, sorted.
func (e *Engine) Selection() []string {
	out := make([]string, 0, len(e.selection))
	for raw := range e.selection {
		out = append(out, raw)
	}
	sort.Strings(out)
	return out
}

// SelectedEntries resolves the selection against the current snapshot,
// returning one source entry per (raw label, survey source) occurrence of
// every selected label. This is the payload CreateMapping and
// CreateIndividualMappings expect.
func (e *Engine) SelectedEntries() []mapping.SourceEntry {
	var out []mapping.SourceEntry
	for _, l := range e.labels {
		if _, ok := e.selection[l.RawLabel]; !ok {
			continue
		}
		out = append(out, mapping.SourceEntry{
			RawLabel:  l.RawLabel,
			Source:    l.Source,
			Frequency: l.Frequency,
		})
	}
	return out
}
