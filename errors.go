package pgassist

import (
	"errors"
	"fmt"
)

// Kind categorizes a failure surfaced by the assistant. Kinds are
// stable strings so remote callers can dispatch on them.
type Kind string

const (
	// KindConnection: the connection pool could not be created or the
	// database is unreachable. Fatal at startup.
	KindConnection Kind = "connection"

	// KindPoolExhausted: all connection slots were busy for longer than
	// the configured acquire timeout. Retryable.
	KindPoolExhausted Kind = "pool_exhausted"

	// KindStatementTimeout: statement execution exceeded its resolved
	// timeout. The connection is returned to the pool. Retryable.
	KindStatementTimeout Kind = "statement_timeout"

	// KindForbiddenStatement: the statement contains a blocked DDL
	// keyword. The caller must change the statement.
	KindForbiddenStatement Kind = "forbidden_statement"

	// KindIntentMismatch: the statement was sent to the wrong entry
	// point (a SELECT to RunSQL, or a non-SELECT to RunSelect).
	KindIntentMismatch Kind = "intent_mismatch"

	// KindDatabase: any other failure reported by the engine (syntax
	// error, constraint violation). The engine's message is passed
	// through verbatim.
	KindDatabase Kind = "database"

	// KindUnauthorized: the bearer token was missing or invalid.
	KindUnauthorized Kind = "unauthorized"
)

// Error is a kind-tagged error. The Kind is part of the rendered
// message so it survives serialization into tool results.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError creates a kind-tagged error with a formatted message.
func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// wrapError tags an underlying error with a kind and context message.
func wrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from an error chain. Returns "" if the
// chain contains no *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Retryable reports whether the caller may retry the same request
// unchanged. Only transient pool and timeout conditions qualify;
// policy rejections and engine errors require caller correction.
func Retryable(kind Kind) bool {
	return kind == KindPoolExhausted || kind == KindStatementTimeout
}
