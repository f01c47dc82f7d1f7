package errorutil

import "errors"

// ErrDataIntegrity is a base error type to use for failures that are due to
// unrecoverable data integrity issues.
var ErrDataIntegrity = errors.New("data integrity error")

// ErrMissingInstrumentation is returned when the frequency, a trace buffer or
// its length can't be read from the inspected target. It aborts a report.
var ErrMissingInstrumentation = errors.New("missing instrumentation")

// ErrMalformedSymbol is returned when no symbol name can be extracted for a
// function reference. Callers fall back to the raw text.
var ErrMalformedSymbol = errors.New("malformed symbol")
