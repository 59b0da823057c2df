package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/mapping"
)

func TestFilterLabels(t *testing.T) {
	labels := specialtyLabels()

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"empty query returns all", "", 4},
		{"whitespace query returns all", "   ", 4},
		{"case-insensitive substring", "cardio", 3},
		{"exact", "Family Medicine", 1},
		{"no match", "dermatology", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, FilterLabels(labels, tt.query), tt.want)
		})
	}

	// Filtering never mutates the input.
	FilterLabels(labels, "cardio")
	assert.Len(t, labels, 4)
}

func TestFilterMappings(t *testing.T) {
	mappings := []*mapping.Mapping{
		mapping.New("Cardiology", []mapping.SourceEntry{
			{RawLabel: "CV Disease", Source: mapping.SourceGallagher},
		}),
		mapping.New("Family Practice", []mapping.SourceEntry{
			{RawLabel: "Family Medicine", Source: mapping.SourceMGMA},
		}),
	}

	assert.Len(t, FilterMappings(mappings, ""), 2)
	assert.Len(t, FilterMappings(mappings, "cardio"), 1)
	// Matches on a source entry's raw label, not just the standardized name.
	assert.Len(t, FilterMappings(mappings, "cv disease"), 1)
	assert.Len(t, FilterMappings(mappings, "medicine"), 1)
	assert.Empty(t, FilterMappings(mappings, "urology"))
}

func TestFilterLearnedGroups(t *testing.T) {
	groups := []mapping.LearnedGroup{
		{StandardizedName: "Cardiology", RawLabels: []string{"CV Disease", "Cardio"}},
		{StandardizedName: "Family Practice", RawLabels: []string{"Family Medicine"}},
	}

	assert.Len(t, FilterLearnedGroups(groups, ""), 2)
	assert.Len(t, FilterLearnedGroups(groups, "CARDIO"), 1)
	assert.Len(t, FilterLearnedGroups(groups, "cv dis"), 1)
	assert.Empty(t, FilterLearnedGroups(groups, "urology"))
}
