package openlibrary

import (
	"errors"
	"fmt"
)

// Sentinel errors for Open Library operations.
var (
	ErrRateLimited = errors.New("openlibrary: rate limited by server")
	ErrBadRequest  = errors.New("openlibrary: bad request")
	ErrServer      = errors.New("openlibrary: server error")
	ErrDecode      = errors.New("openlibrary: malformed response")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op    string // "lookupISBN" or "search"
	Query string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("openlibrary %s [%s]: %v", e.Op, e.Query, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op, query string, err error) error {
	return &Error{Op: op, Query: query, Err: err}
}
