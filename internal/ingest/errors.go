package ingest

import "fmt"

// ParseError reports an upload that cannot be read at all. It fails the
// whole request, unlike per-row problems which degrade to empty values.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse import: %s: %v", e.Reason, e.Err)
	}
	return "parse import: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(reason string, err error) *ParseError {
	return &ParseError{Reason: reason, Err: err}
}
