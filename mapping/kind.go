package mapping

import (
	"fmt"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/errors"
)

// Kind identifies one of the entity kinds the reconciliation engine serves.
// Each kind owns its own mapping set, learned set, and storage keys.
type Kind string

// Supported entity kinds.
const (
	KindSpecialty        Kind = "specialty"
	KindProviderType     Kind = "provider-type"
	KindSupervisionLevel Kind = "supervision-level"
	KindRegion           Kind = "region"
	KindVariable         Kind = "variable"
)

// Kinds returns all supported entity kinds.
func Kinds() []Kind {
	return []Kind{
		KindSpecialty,
		KindProviderType,
		KindSupervisionLevel,
		KindRegion,
		KindVariable,
	}
}

// Valid reports whether k is a supported entity kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSpecialty, KindProviderType, KindSupervisionLevel, KindRegion, KindVariable:
		return true
	default:
		return false
	}
}

// ClaimPolicy decides what happens when a new mapping claims a
// (rawLabel, surveySource) pair already claimed by an existing mapping.
type ClaimPolicy string

const (
	// ClaimReject rejects the operation with a validation error.
	ClaimReject ClaimPolicy = "reject"
	// ClaimReassign silently moves the pair from its old mapping to the new
	// one. A mapping left with zero entries by a reassignment is removed.
	ClaimReassign ClaimPolicy = "reassign"
)

// Valid reports whether p is a known claim policy.
func (p ClaimPolicy) Valid() bool {
	return p == ClaimReject || p == ClaimReassign
}

// KindConfig is the per-entity-kind configuration the generic engine is
// parameterized by: storage key prefix, claim policy, and default seed
// mappings applied when no persisted state exists.
type KindConfig struct {
	Kind        Kind        `json:"kind"`
	KeyPrefix   string      `json:"key_prefix"`
	ClaimPolicy ClaimPolicy `json:"claim_policy"`
	Seeds       []*Mapping  `json:"-"`
}

// MappingsKey returns the key-value store key for the kind's mapping set.
func (kc KindConfig) MappingsKey() string {
	return kc.KeyPrefix + ".mappings"
}

// LearnedKey returns the key-value store key for the kind's learned set.
func (kc KindConfig) LearnedKey() string {
	return kc.KeyPrefix + ".learned"
}

// Validate checks the kind configuration.
func (kc KindConfig) Validate() error {
	if !kc.Kind.Valid() {
		return errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrUnknownKind, kc.Kind),
			"mapping", "KindConfig.Validate", "validation")
	}
	if kc.KeyPrefix == "" {
		return errors.WrapInvalid(
			fmt.Errorf("key prefix cannot be empty for kind %q", kc.Kind),
			"mapping", "KindConfig.Validate", "validation")
	}
	if !kc.ClaimPolicy.Valid() {
		return errors.WrapInvalid(
			fmt.Errorf("unknown claim policy %q for kind %q", kc.ClaimPolicy, kc.Kind),
			"mapping", "KindConfig.Validate", "validation")
	}
	return nil
}

// DefaultKindConfig returns the built-in configuration for an entity kind.
func DefaultKindConfig(k Kind) (KindConfig, error) {
	if !k.Valid() {
		return KindConfig{}, errors.WrapInvalid(
			fmt.Errorf("%w: %q", errors.ErrUnknownKind, k),
			"mapping", "DefaultKindConfig", "lookup")
	}
	return KindConfig{
		Kind:        k,
		KeyPrefix:   "surveymap." + string(k),
		ClaimPolicy: ClaimReject,
		Seeds:       DefaultSeeds(k),
	}, nil
}

// DefaultSeeds returns the fixed default mapping set for a kind, used when no
// persisted state exists. Seed mappings carry standardized names only; source
// entries accumulate as the user maps labels onto them.
func DefaultSeeds(k Kind) []*Mapping {
	if k != KindSupervisionLevel {
		return nil
	}
	seeds := make([]*Mapping, 0, 3)
	for _, name := range []string{"Independent", "Supervised", "Collaborative"} {
		seeds = append(seeds, New(name, nil))
	}
	return seeds
}
