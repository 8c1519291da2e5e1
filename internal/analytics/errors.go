package analytics

import "errors"

// Caller errors surfaced as 400 at the HTTP boundary; everything else
// propagates opaque.
var (
	ErrInvalidGranularity = errors.New("invalid granularity")
	ErrInvalidPagesKind   = errors.New("invalid pages kind")
)
