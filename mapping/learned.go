package mapping

import "sort"

// LearnedSet holds provisional (rawLabel -> standardizedName) correction
// pairs, keyed by raw label. One raw label maps to exactly one learned
// target; recording a new target overwrites the old one (last-write-wins).
type LearnedSet map[string]string

// Record upserts a correction pair.
func (ls LearnedSet) Record(rawLabel, standardizedName string) {
	ls[rawLabel] = standardizedName
}

// Remove deletes one correction pair. Returns false if the raw label has no
// learned entry.
func (ls LearnedSet) Remove(rawLabel string) bool {
	if _, ok := ls[rawLabel]; !ok {
		return false
	}
	delete(ls, rawLabel)
	return true
}

// Has reports whether the raw label has a learned entry.
func (ls LearnedSet) Has(rawLabel string) bool {
	_, ok := ls[rawLabel]
	return ok
}

// Clone returns a copy of the set.
func (ls LearnedSet) Clone() LearnedSet {
	clone := make(LearnedSet, len(ls))
	for k, v := range ls {
		clone[k] = v
	}
	return clone
}

// LearnedGroup is the learned view's display unit: all raw labels currently
// learned toward one standardized name.
type LearnedGroup struct {
	StandardizedName string   `json:"standardized_name"`
	RawLabels        []string `json:"raw_labels"`
}

// Groups returns the set grouped by standardized name, with groups and the
// raw labels inside each group sorted for deterministic rendering.
func (ls LearnedSet) Groups() []LearnedGroup {
	byName := make(map[string][]string)
	for raw, name := range ls {
		byName[name] = append(byName[name], raw)
	}

	groups := make([]LearnedGroup, 0, len(byName))
	for name, raws := range byName {
		sort.Strings(raws)
		groups = append(groups, LearnedGroup{StandardizedName: name, RawLabels: raws})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].StandardizedName < groups[j].StandardizedName
	})
	return groups
}
