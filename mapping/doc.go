// Package mapping defines the data model for survey label reconciliation:
// raw source labels, persisted mappings that group raw labels under one
// standardized name, provisional learned corrections, and the per-entity-kind
// configuration that parameterizes the generic engine.
//
// # Invariants
//
// Within one mapping, no two source entries share a (rawLabel, surveySource)
// pair. Across the full mapping set for one entity kind, a given pair is
// claimed by at most one mapping, so a raw label cannot belong to two
// standardized names at once. ValidateSet checks both.
//
// Learned corrections are keyed by raw label alone and are provisional: they
// become real mappings only through promotion, handled by the engine package.
//
// # Entity kinds
//
// The same model serves specialties, provider types, supervision levels,
// regions, and variables/columns. Kind-specific fields (certification for
// provider types; data type, required flag, calculation type and formula for
// variables) live in the Attributes struct union and are opaque to the
// engine core.
package mapping
