// Package errors provides standardized error handling patterns for the survey
// mapping engine.
//
// # Overview
//
// The errors package implements a four-class error classification system:
// Transient (temporary, retryable; persistence failures land here), Invalid
// (bad input to a mutating operation, non-retryable), NotFound (operations
// referencing an absent id or key, usually treated as a no-op), and Fatal
// (unrecoverable, e.g. corrupted persisted state).
//
// Nothing in this system is fatal to the caller: every error is returned as an
// explicit value rather than thrown across the UI boundary, so a host shell can
// decide whether to retry, warn, or silently ignore.
//
// # Quick Start
//
// Wrap errors with component context:
//
//	if err := store.Set(ctx, key, data); err != nil {
//	    return errors.WrapTransient(err, "engine", "CreateMapping", "persist mapping set")
//	}
//
// Check classification at the boundary:
//
//	if err := eng.CreateMapping(ctx, name, labels); err != nil {
//	    switch {
//	    case errors.IsInvalid(err):
//	        // show validation message, state unchanged
//	    case errors.IsTransient(err):
//	        // warn: in-memory change applied, persistence pending
//	    }
//	}
//
// The classification system integrates with Go's standard error handling,
// supporting errors.Is(), errors.As(), and error wrapping chains.
package errors
