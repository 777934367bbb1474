package model

import "errors"

// Error kinds surfaced by the pipeline. Callers classify with errors.Is;
// every stage wraps these with context rather than returning them bare.
var (
	ErrAuthentication     = errors.New("authentication failed")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrNotFound           = errors.New("not found")
	ErrDatasetNotFound    = errors.New("dataset not found")
	ErrSchemaMismatch     = errors.New("schema mismatch")
	ErrAmbiguousSelection = errors.New("ambiguous selection")
)
