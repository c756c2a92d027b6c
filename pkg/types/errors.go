package types

import "errors"

// Pipeline errors. Validity failures are never errors; these signal broken
// inputs or a broken model.
var (
	// ErrConfigMismatch means persisted data was produced under different
	// parameters than the active configuration.
	ErrConfigMismatch = errors.New("configuration mismatch")

	// ErrMissingOrigin means the origin state is absent from a space. The
	// origin is legal under every configuration, so this indicates a
	// modeling or resolution bug rather than an empty result.
	ErrMissingOrigin = errors.New("origin state missing from state space")

	// ErrMalformedRecord means a persisted line did not parse into five
	// numeric fields.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrNotGridAligned means a position or time is not a whole multiple of
	// the resolution, or lies outside the grid.
	ErrNotGridAligned = errors.New("value is not grid aligned")

	// ErrInvalidPlan means a plan violates a structural invariant.
	ErrInvalidPlan = errors.New("invalid plan")
)
