package engine

import (
	"strings"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/mapping"
)

// FilterLabels returns the labels whose raw value contains query,
// case-insensitively. An empty query returns the input unchanged. Filtering
// never mutates engine state.
func FilterLabels(labels []mapping.SourceLabel, query string) []mapping.SourceLabel {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return labels
	}

	var out []mapping.SourceLabel
	for _, l := range labels {
		if strings.Contains(strings.ToLower(l.RawLabel), query) {
			out = append(out, l)
		}
	}
	return out
}

// FilterMappings returns the mappings whose standardized name or any source
// entry's raw label contains query, case-insensitively.
func FilterMappings(mappings []*mapping.Mapping, query string) []*mapping.Mapping {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return mappings
	}

	var out []*mapping.Mapping
	for _, m := range mappings {
		if mappingMatches(m, query) {
			out = append(out, m)
		}
	}
	return out
}

func mappingMatches(m *mapping.Mapping, query string) bool {
	if strings.Contains(strings.ToLower(m.StandardizedName), query) {
		return true
	}
	for _, entry := range m.SourceEntries {
		if strings.Contains(strings.ToLower(entry.RawLabel), query) {
			return true
		}
	}
	return false
}

// FilterLearnedGroups returns the groups whose standardized name or any raw
// label contains query, case-insensitively.
func FilterLearnedGroups(groups []mapping.LearnedGroup, query string) []mapping.LearnedGroup {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return groups
	}

	var out []mapping.LearnedGroup
	for _, g := range groups {
		if groupMatches(g, query) {
			out = append(out, g)
		}
	}
	return out
}

func groupMatches(g mapping.LearnedGroup, query string) bool {
	if strings.Contains(strings.ToLower(g.StandardizedName), query) {
		return true
	}
	for _, raw := range g.RawLabels {
		if strings.Contains(strings.ToLower(raw), query) {
			return true
		}
	}
	return false
}
