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
)

func cardiologyEntries() []mapping.SourceEntry {
	return []mapping.SourceEntry{
		{RawLabel: "Cardiology", Source: mapping.SourceMGMA, Frequency: 12},
		{RawLabel: "Cardiology", Source: mapping.SourceSullivanCotter, Frequency: 7},
		{RawLabel: "Cardiovascular Disease", Source: mapping.SourceGallagher, Frequency: 3},
	}
}

func TestCreateMapping(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, mapping.KindSpecialty, specialtyLabels())

	id, err := eng.CreateMapping(ctx, "Cardiology", cardiologyEntries())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	mapped := eng.Mapped()
	require.Len(t, mapped, 1)
	assert.Equal(t, "Cardiology", mapped[0].StandardizedName)
	assert.Len(t, mapped[0].SourceEntries, 3)

	// All three claimed labels left the unmapped view.
	unmapped := eng.Unmapped()
	require.Len(t, unmapped, 1)
	assert.Equal(t, "Family Medicine", unmapped[0].RawLabel)
}

func TestCreateMapping_Validation(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, mapping.KindSpecialty, specialtyLabels())

	tests := []struct {
		name     string
		stdName  string
		selected []mapping.SourceEntry
	}{
		{"empty name", "", cardiologyEntries()},
		{"whitespace name", "   ", cardiologyEntries()},
		{"empty selection", "Cardiology", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.CreateMapping(ctx, tt.stdName, tt.selected)
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
			assert.Empty(t, eng.Mapped(), "failed create must not change state")
		})
	}
}

func TestCreateMapping_DuplicatePairsInSelection(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, mapping.KindSpecialty, specialtyLabels())

	entries := []mapping.SourceEntry{
		{RawLabel: "Cardiology", Source: mapping.SourceMGMA, Frequency: 12},
		{RawLabel: "Cardiology", Source: mapping.SourceMGMA, Frequency: 12},
	}
	_, err := eng.CreateMapping(ctx, "Cardiology", entries)
	require.NoError(t, err)

	assert.Len(t, eng.Mapped()[0].SourceEntries, 1)
}

func TestCreateMapping_RejectsLearnedLabel(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, mapping.KindSpecialty, specialtyLabels())

	require.NoError(t, eng.RecordLearnedMapping(ctx, "Cardiology", "Heart Medicine"))

	// A label covered by a learned entry cannot be claimed by a new mapping.
	_, err := eng.CreateMapping(ctx, "Cardiology Group", []mapping.SourceEntry{
		{RawLabel: "Cardiology", Source: mapping.SourceMGMA, Frequency: 12},
	})
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.ErrorIs(t, err, errors.ErrLabelLearned)
	assert.Empty(t, eng.Mapped())
	require.Len(t, eng.Learned(), 1)

	// The learned entry still promotes into exactly one mapping.
	require.NoError(t, eng.ApplyLearnedMapping(ctx, "Cardiology"))
	mapped := eng.Mapped()
	require.Len(t, mapped, 1)
	assert.Equal(t, "Heart Medicine", mapped[0].StandardizedName)
	assert.Len(t, mapped[0].SourceEntries, 2)
}

func TestCreateIndividualMappings_RejectsLearnedLabel(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, mapping.KindSpecialty, specialtyLabels())

	require.NoError(t, eng.RecordLearnedMapping(ctx, "Cardiovascular Disease", "Cardiology"))

	_, err := eng.CreateIndividualMappings(ctx, cardiologyEntries(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.ErrorIs(t, err, errors.ErrLabelLearned)
	assert.Empty(t, eng.Mapped(), "rejected create must not leave partial mappings")
	require.Len(t, eng.Learned(), 1)
}

func TestCreateMapping_ClaimReject(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, mapping.KindSpecialty, specialtyLabels())

	_, err := eng.CreateMapping(ctx, "Cardiology", cardiologyEntries())
	require.NoError(t, err)

	_, err = eng.CreateMapping(ctx, "Heart Medicine", []mapping.SourceEntry{
		{RawLabel: "Cardiology", Source: mapping.SourceMGMA, Frequency: 12},
	})
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.ErrorIs(t, err, errors.ErrLabelClaimed)
	assert.Len(t, eng.Mapped(), 1)
}

func TestCreateMapping_ClaimReassign(t *testing.T) {
	ctx := context.Background()

	cfg := testKindConfig(t, mapping.KindSpecialty)
	cfg.ClaimPolicy = mapping.ClaimReassign

	source := labelsource.NewStatic()
	source.Replace(mapping.KindSpecialty, specialtyLabels())
	eng, err := New(cfg, kvstore.NewMemory(), source, slog.Default(), nil)
	require.NoError(t, err)
	eng.LoadState(ctx)
	require.NoError(t, eng.Refresh(ctx))

	_, err = eng.CreateMapping(ctx, "Cardiology", cardiologyEntries())
	require.NoError(t, err)

	// Reassigning one pair moves it; the old mapping keeps the other two.
	_, err = eng.CreateMapping(ctx, "Heart Medicine", []mapping.SourceEntry{
		{RawLabel: "Cardiology", Source: mapping.SourceMGMA, Frequency: 12},
	})
	require.NoError(t, err)

	mapped := eng.Mapped()
	require.Len(t, mapped, 2)
	assert.Len(t, mapped[0].SourceEntries, 2) // Cardiology
	assert.Len(t, mapped[1].SourceEntries, 1) // Heart Medicine
	require.NoError(t, mapping.ValidateSet(mapped))

	// Reassigning the last entries of a mapping drops the emptied mapping.
	_, err = eng.CreateMapping(ctx, "Cardiovascular", []mapping.SourceEntry{
		{RawLabel: "Cardiology", Source: mapping.SourceSullivanCotter, Frequency: 7},
		{RawLabel: "Cardiovascular Disease", Source: mapping.SourceGallagher, Frequency: 3},
	})
	require.NoError(t, err)

	mapped = eng.Mapped()
	require.Len(t, mapped, 2)
	assert.Equal(t, "Cardiovascular", mapped[0].StandardizedName)
	assert.Equal(t, "Heart Medicine", mapped[1].StandardizedName)
}

func TestCreateIndividualMappings(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, mapping.KindSpecialty, specialtyLabels())

	ids, err := eng.CreateIndividualMappings(ctx, cardiologyEntries(), nil)
	require.NoError(t, err)
	require.Len(t, ids, 2, "one mapping per distinct raw label")

	mapped := eng.Mapped()
	require.Len(t, mapped, 2)
	assert.Equal(t, "Cardiology", mapped[0].StandardizedName)
	assert.Len(t, mapped[0].SourceEntries, 2)
	assert.Equal(t, "Cardiovascular Disease", mapped[1].StandardizedName)
	assert.Len(t, mapped[1].SourceEntries, 1)
}

func TestCreateIndividualMappings_Overrides(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, mapping.KindSpecialty, specialtyLabels())

	_, err := eng.CreateIndividualMappings(ctx, cardiologyEntries(), map[string]string{
		"Cardiovascular Disease": "Cardiology (Gallagher)",
	})
	require.NoError(t, err)

	mapped := eng.Mapped()
	require.Len(t, mapped, 2)
	assert.Equal(t, "Cardiology", mapped[0].StandardizedName)
	assert.Equal(t, "Cardiology (Gallagher)", mapped[1].StandardizedName)
}

func TestCreateIndividualMappings_ConflictRollsBack(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, mapping.KindSpecialty, specialtyLabels())

	_, err := eng.CreateMapping(ctx, "CV Disease", []mapping.SourceEntry{
		{RawLabel: "Cardiovascular Disease", Source: mapping.SourceGallagher, Frequency: 3},
	})
	require.NoError(t, err)

	// Second label conflicts; the first label's mapping must be rolled back.
	_, err = eng.CreateIndividualMappings(ctx, cardiologyEntries(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	mapped := eng.Mapped()
	require.Len(t, mapped, 1)
	assert.Equal(t, "CV Disease", mapped[0].StandardizedName)
}

func TestDeleteMapping(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, mapping.KindSpecialty, specialtyLabels())

	id, err := eng.CreateMapping(ctx, "Cardiology", cardiologyEntries())
	require.NoError(t, err)
	require.Len(t, eng.Unmapped(), 1)

	require.NoError(t, eng.DeleteMapping(ctx, id))
	assert.Empty(t, eng.Mapped())
	assert.Len(t, eng.Unmapped(), 4, "deleted mapping's labels revert to unmapped")

	// Idempotent: deleting again is a no-op.
	require.NoError(t, eng.DeleteMapping(ctx, id))
	require.NoError(t, eng.DeleteMapping(ctx, "no-such-id"))
}

func TestClearAllMappings(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, mapping.KindSpecialty, specialtyLabels())

	_, err := eng.CreateMapping(ctx, "Cardiology", cardiologyEntries())
	require.NoError(t, err)
	_, err = eng.CreateMapping(ctx, "Family Medicine", []mapping.SourceEntry{
		{RawLabel: "Family Medicine", Source: mapping.SourceMGMA, Frequency: 20},
	})
	require.NoError(t, err)

	require.NoError(t, eng.ClearAllMappings(ctx))
	assert.Empty(t, eng.Mapped())
	assert.Len(t, eng.Unmapped(), 4)
}

func TestRenameMapping(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, mapping.KindSpecialty, specialtyLabels())

	id, err := eng.CreateMapping(ctx, "Cardiology", cardiologyEntries())
	require.NoError(t, err)

	require.NoError(t, eng.RenameMapping(ctx, id, "Cardiovascular Medicine"))
	assert.Equal(t, "Cardiovascular Medicine", eng.Mapped()[0].StandardizedName)

	err = eng.RenameMapping(ctx, id, "  ")
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	// Absent id is a no-op.
	require.NoError(t, eng.RenameMapping(ctx, "no-such-id", "Whatever"))
}

func TestUpdateMappingAttributes(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t, mapping.KindVariable, []mapping.SourceLabel{
		{RawLabel: "tcc_p50", Source: mapping.SourceMGMA, Frequency: 1},
	})

	id, err := eng.CreateMapping(ctx, "Total Cash Compensation (50th)", []mapping.SourceEntry{
		{RawLabel: "tcc_p50", Source: mapping.SourceMGMA, Frequency: 1},
	})
	require.NoError(t, err)

	attrs := &mapping.Attributes{
		Variable: &mapping.VariableAttributes{DataType: "currency", IsRequired: true},
	}
	require.NoError(t, eng.UpdateMappingAttributes(ctx, id, attrs))

	got := eng.Mapped()[0].Attributes
	require.NotNil(t, got)
	require.NotNil(t, got.Variable)
	assert.Equal(t, "currency", got.Variable.DataType)

	// The engine stores a copy, not the caller's pointer.
	attrs.Variable.DataType = "numeric"
	assert.Equal(t, "currency", eng.Mapped()[0].Attributes.Variable.DataType)

	require.NoError(t, eng.UpdateMappingAttributes(ctx, "no-such-id", attrs))
}
