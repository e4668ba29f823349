package schema

import "fmt"

// Error reports a structurally incompatible header row. It is fatal: the
// pipeline halts before any row processing and no partial dataset is
// produced.
type Error struct {
	Reason  string
	Headers []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("incompatible export schema: %s (headers: %v)", e.Reason, e.Headers)
}

func schemaErrorf(headers []string, format string, args ...any) *Error {
	return &Error{Reason: fmt.Sprintf(format, args...), Headers: headers}
}
