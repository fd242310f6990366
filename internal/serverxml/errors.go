package serverxml

import "errors"

// Sentinel errors for document edits.
var (
	// ErrMalformedDocument indicates the input could not be parsed as XML or
	// has no root element.
	ErrMalformedDocument = errors.New("malformed server document")
	// ErrMissingContainer indicates the document has no featureManager element.
	ErrMissingContainer = errors.New("featureManager element not found")
	// ErrMissingElement indicates a required element other than the feature
	// container (e.g. httpEndpoint) is absent.
	ErrMissingElement = errors.New("required element not found")
	// ErrFeatureNotFound indicates a remove named a feature that is not declared.
	ErrFeatureNotFound = errors.New("feature not declared")
)

// EditError records a failed edit with enough context for the caller to
// report it: the operation, its target and the document identity.
type EditError struct {
	Op       Kind
	Target   string // feature id or attribute value; missing elements are named in Err
	Document string // set by the document store; empty for raw byte edits
	Err      error
}

// Error returns a human-readable string including document and operation context.
func (e *EditError) Error() string {
	msg := string(e.Op)
	if e.Target != "" {
		msg += " " + e.Target
	}
	if e.Document != "" {
		msg = e.Document + ": " + msg
	}
	return msg + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *EditError) Unwrap() error {
	return e.Err
}
