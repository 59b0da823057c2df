package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/errors"
)

func TestNew_AssignsIDAndTimestamps(t *testing.T) {
	m := New("Nurse Practitioner", []SourceEntry{
		{RawLabel: "NP", Source: SourceMGMA, Frequency: 12},
	})

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "Nurse Practitioner", m.StandardizedName)
	assert.Len(t, m.SourceEntries, 1)
	assert.False(t, m.CreatedAt.IsZero())
	assert.Equal(t, m.CreatedAt, m.UpdatedAt)

	other := New("Nurse Practitioner", nil)
	assert.NotEqual(t, m.ID, other.ID, "ids must never be reused")
}

func TestNew_DeduplicatesEntries(t *testing.T) {
	m := New("Cardiology", []SourceEntry{
		{RawLabel: "Cardio", Source: SourceMGMA, Frequency: 3},
		{RawLabel: "Cardio", Source: SourceMGMA, Frequency: 9},
		{RawLabel: "Cardio", Source: SourceGallagher, Frequency: 1},
	})

	require.Len(t, m.SourceEntries, 2)
	// First occurrence wins
	assert.Equal(t, 3, m.SourceEntries[0].Frequency)
}

func TestMapping_AddEntry(t *testing.T) {
	m := New("Cardiology", nil)

	assert.True(t, m.AddEntry(SourceEntry{RawLabel: "Cardio", Source: SourceMGMA}))
	assert.False(t, m.AddEntry(SourceEntry{RawLabel: "Cardio", Source: SourceMGMA}),
		"same (rawLabel, source) pair must not be claimed twice")
	assert.True(t, m.AddEntry(SourceEntry{RawLabel: "Cardio", Source: SourceECG}),
		"same raw label from a different source is a distinct claim")
	assert.Len(t, m.SourceEntries, 2)
}

func TestMapping_RemoveEntry(t *testing.T) {
	m := New("Cardiology", []SourceEntry{
		{RawLabel: "Cardio", Source: SourceMGMA},
		{RawLabel: "Cardiology", Source: SourceECG},
	})

	assert.True(t, m.RemoveEntry("Cardio", SourceMGMA))
	assert.False(t, m.RemoveEntry("Cardio", SourceMGMA))
	assert.False(t, m.HasEntry("Cardio", SourceMGMA))
	assert.True(t, m.HasEntry("Cardiology", SourceECG))
}

func TestMapping_Rename(t *testing.T) {
	m := New("Cardio", nil)

	require.NoError(t, m.Rename("Cardiology"))
	assert.Equal(t, "Cardiology", m.StandardizedName)

	err := m.Rename("   ")
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestMapping_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Mapping)
		wantErr bool
	}{
		{"valid with entries", func(*Mapping) {}, false},
		{"valid seed without entries", func(m *Mapping) { m.SourceEntries = nil }, false},
		{"empty id", func(m *Mapping) { m.ID = "" }, true},
		{"blank name", func(m *Mapping) { m.StandardizedName = "  \t" }, true},
		{"entry with empty raw label", func(m *Mapping) {
			m.SourceEntries = append(m.SourceEntries, SourceEntry{Source: SourceMGMA})
		}, true},
		{"duplicate pair", func(m *Mapping) {
			m.SourceEntries = append(m.SourceEntries, m.SourceEntries[0])
		}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			m := New("Family Medicine", []SourceEntry{
				{RawLabel: "FM", Source: SourceMGMA, Frequency: 2},
			})
			test.mutate(m)

			err := m.Validate()
			if test.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalid(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSet_DetectsDoubleClaim(t *testing.T) {
	a := New("Nurse Practitioner", []SourceEntry{{RawLabel: "NP", Source: SourceMGMA}})
	b := New("Advanced Practice Provider", []SourceEntry{{RawLabel: "NP", Source: SourceMGMA}})

	require.NoError(t, ValidateSet([]*Mapping{a}))

	err := ValidateSet([]*Mapping{a, b})
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestValidateSet_AllowsSameLabelAcrossSources(t *testing.T) {
	a := New("Nurse Practitioner", []SourceEntry{{RawLabel: "NP", Source: SourceMGMA}})
	b := New("Neuro Psych", []SourceEntry{{RawLabel: "NP", Source: SourceECG}})

	assert.NoError(t, ValidateSet([]*Mapping{a, b}))
}

func TestMapping_Clone(t *testing.T) {
	m := New("Cardiology", []SourceEntry{{RawLabel: "Cardio", Source: SourceMGMA}})
	m.Attributes = &Attributes{ProviderType: &ProviderTypeAttributes{Certification: "Board"}}

	clone := m.Clone()
	clone.SourceEntries[0].RawLabel = "changed"
	clone.Attributes.ProviderType.Certification = "None"

	assert.Equal(t, "Cardio", m.SourceEntries[0].RawLabel)
	assert.Equal(t, "Board", m.Attributes.ProviderType.Certification)
}

func TestBuildClaimIndex(t *testing.T) {
	a := New("Nurse Practitioner", []SourceEntry{
		{RawLabel: "NP", Source: SourceMGMA},
		{RawLabel: "Nurse Practitioner", Source: SourceECG},
	})
	b := New("Physician Assistant", []SourceEntry{{RawLabel: "PA", Source: SourceMGMA}})

	index := BuildClaimIndex([]*Mapping{a, b})

	assert.Len(t, index, 3)
	assert.Equal(t, a.ID, index[EntryKey{RawLabel: "NP", Source: SourceMGMA}])
	assert.Equal(t, b.ID, index[EntryKey{RawLabel: "PA", Source: SourceMGMA}])
	_, ok := index[EntryKey{RawLabel: "NP", Source: SourceECG}]
	assert.False(t, ok)
}
