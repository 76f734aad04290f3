package query

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why the rewriter rejected a query. Kinds are stable
// strings so they can double as metrics labels.
type ErrorKind string

const (
	ErrKindParse           ErrorKind = "parse_error"
	ErrKindEmpty           ErrorKind = "empty_query"
	ErrKindMultiStatement  ErrorKind = "multi_statement"
	ErrKindNotQuery        ErrorKind = "not_a_query"
	ErrKindLimitExpression ErrorKind = "unsupported_limit"
	ErrKindExplicitFormat  ErrorKind = "explicit_format"
)

// RewriteError is a classified rejection produced by the rewriter. The
// message is safe to surface verbatim as a chat reply.
type RewriteError struct {
	Kind    ErrorKind
	Message string
}

// Error implements the error interface.
func (e *RewriteError) Error() string {
	return e.Message
}

// Is matches two RewriteErrors by kind, so callers can use errors.Is with a
// bare &RewriteError{Kind: ...} target.
func (e *RewriteError) Is(target error) bool {
	var re *RewriteError
	if errors.As(target, &re) {
		return e.Kind == re.Kind
	}
	return false
}

func newError(kind ErrorKind, format string, args ...interface{}) *RewriteError {
	return &RewriteError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// KindOf extracts the rejection kind from an error, or "" if the error did
// not come from the rewriter.
func KindOf(err error) ErrorKind {
	var re *RewriteError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}
