package mapping

// Attributes carries entity-specific mapping fields. It is a struct union
// tagged by the non-nil member; the engine core never inspects it, only the
// per-kind UI boundary does.
type Attributes struct {
	ProviderType *ProviderTypeAttributes `json:"provider_type,omitempty"`
	Variable     *VariableAttributes     `json:"variable,omitempty"`
}

// ProviderTypeAttributes are fields specific to provider-type mappings.
type ProviderTypeAttributes struct {
	Certification string `json:"certification,omitempty"`
}

// VariableAttributes are fields specific to variable/column mappings.
type VariableAttributes struct {
	DataType        string `json:"data_type,omitempty"`
	IsRequired      bool   `json:"is_required,omitempty"`
	CalculationType string `json:"calculation_type,omitempty"`
	Formula         string `json:"formula,omitempty"`
}

// Clone returns a deep copy of the attribute set.
func (a *Attributes) Clone() *Attributes {
	if a == nil {
		return nil
	}
	clone := &Attributes{}
	if a.ProviderType != nil {
		pt := *a.ProviderType
		clone.ProviderType = &pt
	}
	if a.Variable != nil {
		v := *a.Variable
		clone.Variable = &v
	}
	return clone
}
