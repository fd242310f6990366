package catalog

import "errors"

// Sentinel errors for catalog construction and queries.
var (
	// ErrDanglingReference indicates an enables edge names a feature id that
	// is not declared in the catalog source.
	ErrDanglingReference = errors.New("enables references unknown feature")
	// ErrUnknownFeature indicates a displayName was declared for a feature
	// that has no descriptor.
	ErrUnknownFeature = errors.New("display name for unknown feature")
	// ErrFeatureNotFound indicates a query named an id missing from the catalog.
	ErrFeatureNotFound = errors.New("feature not found")
	// ErrMalformedCatalog indicates the catalog source could not be decoded.
	ErrMalformedCatalog = errors.New("malformed catalog source")
)

// BuildError records a catalog construction failure with the entry that
// triggered it.
type BuildError struct {
	Pass    string // "description", "displayName" or "enables"
	Feature string // id of the entry being processed
	Ref     string // referenced id for enables edges
	Err     error
}

// Error returns a human-readable string including the failing pass and ids.
func (e *BuildError) Error() string {
	msg := e.Pass + ": feature " + e.Feature
	if e.Ref != "" {
		msg += " -> " + e.Ref
	}
	return msg + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *BuildError) Unwrap() error {
	return e.Err
}
