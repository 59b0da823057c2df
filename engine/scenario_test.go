package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/mapping"
)

// Walks a full provider-type session: group two labels, learn and promote a
// third, delete, and clear, checking the views after every step.
func TestProviderTypeSession(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, mapping.KindProviderType, []mapping.SourceLabel{
		{RawLabel: "NP", Source: "SurveyA", Frequency: 4},
		{RawLabel: "Nurse Practitioner", Source: "SurveyB", Frequency: 9},
		{RawLabel: "PA", Source: "SurveyA", Frequency: 6},
	})

	// No persisted mappings: everything is unmapped.
	require.Len(t, eng.Unmapped(), 3)

	// Group NP and Nurse Practitioner under one standardized name.
	id, err := eng.CreateMapping(ctx, "Nurse Practitioner", []mapping.SourceEntry{
		{RawLabel: "NP", Source: "SurveyA", Frequency: 4},
		{RawLabel: "Nurse Practitioner", Source: "SurveyB", Frequency: 9},
	})
	require.NoError(t, err)

	mapped := eng.Mapped()
	require.Len(t, mapped, 1)
	assert.Len(t, mapped[0].SourceEntries, 2)
	unmapped := eng.Unmapped()
	require.Len(t, unmapped, 1)
	assert.Equal(t, "PA", unmapped[0].RawLabel)

	// Learn and promote PA.
	require.NoError(t, eng.RecordLearnedMapping(ctx, "PA", "Physician Assistant"))
	require.NoError(t, eng.ApplyLearnedMapping(ctx, "PA"))

	assert.Empty(t, eng.Learned())
	assert.Len(t, eng.Mapped(), 2)
	assert.Empty(t, eng.Unmapped())

	// Deleting the grouped mapping reverts its labels; PA stays mapped.
	require.NoError(t, eng.DeleteMapping(ctx, id))
	unmapped = eng.Unmapped()
	require.Len(t, unmapped, 2)
	assert.Equal(t, "NP", unmapped[0].RawLabel)
	assert.Equal(t, "Nurse Practitioner", unmapped[1].RawLabel)

	// Clearing everything reverts all labels.
	require.NoError(t, eng.ClearAllMappings(ctx))
	assert.Empty(t, eng.Mapped())
	assert.Len(t, eng.Unmapped(), 3)
}

func TestSelectLabels(t *testing.T) {
	eng, _, _ := newTestEngine(t, mapping.KindSpecialty, specialtyLabels())

	// Select only the subset visible under a filter.
	visible := FilterLabels(eng.Unmapped(), "cardio")
	raws := make([]string, 0, len(visible))
	for _, l := range visible {
		raws = append(raws, l.RawLabel)
	}
	eng.SelectLabels(raws)

	assert.Equal(t, []string{"Cardiology", "Cardiovascular Disease"}, eng.Selection())
}
