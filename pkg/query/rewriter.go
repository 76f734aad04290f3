package query

import (
	"errors"
	"fmt"
	"strings"
)

// Policy bounds what a rewritten query may ask of the database. It is
// immutable and set once at startup; sharing it across concurrent rewrites
// needs no synchronization.
type Policy struct {
	// MaxRows is the hard ceiling on returned rows. User-specified limits
	// are clamped down to it, never raised.
	MaxRows int

	// Format is the output encoding forced onto every query, so the
	// renderer downstream can assume a single encoding.
	Format string
}

// Validate rejects policy values that must fail at startup rather than per
// request.
func (p Policy) Validate() error {
	if p.MaxRows <= 0 {
		return fmt.Errorf("max rows must be a positive integer, got %d", p.MaxRows)
	}
	if p.Format == "" {
		return errors.New("output format must not be empty")
	}
	return nil
}

// Rewriter turns untrusted SQL text into a bounded, machine-parseable query.
// A successful result is final: it contains exactly one SELECT statement,
// its row limit is at most Policy.MaxRows and its output format equals
// Policy.Format. Callers downstream trust it unconditionally.
type Rewriter struct {
	parser Parser
	policy Policy
}

// NewRewriter builds a Rewriter for the given parser and policy.
func NewRewriter(parser Parser, policy Policy) (*Rewriter, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Rewriter{parser: parser, policy: policy}, nil
}

// Policy returns the rewrite policy in effect.
func (r *Rewriter) Policy() Policy {
	return r.policy
}

// Rewrite validates raw and returns the finalized query text, or a
// RewriteError whose message is safe to surface to the user. Rewrite is pure
// computation and safe for concurrent use.
func (r *Rewriter) Rewrite(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", newError(ErrKindEmpty, "query is empty")
	}

	stmts, err := r.parser.Parse(raw)
	if err != nil {
		return "", newError(ErrKindParse, "cannot parse query: %v", err)
	}
	switch {
	case len(stmts) == 0:
		return "", newError(ErrKindEmpty, "query is empty")
	case len(stmts) > 1:
		return "", newError(ErrKindMultiStatement, "only one query is allowed")
	}
	stmt := stmts[0]

	// The forced output format only attaches to query-shaped statements,
	// and the renderer only understands tabular results anyway.
	if !stmt.IsQuery() {
		return "", newError(ErrKindNotQuery, "only plain SELECT queries are allowed")
	}

	limit, ok, err := stmt.Limit()
	switch {
	case err != nil:
		return "", newError(ErrKindLimitExpression, "LIMIT must be a plain number: %v", err)
	case !ok:
		stmt.SetLimit(int64(r.policy.MaxRows))
	case limit > int64(r.policy.MaxRows):
		// Clamp down only. A smaller user-specified limit stays untouched.
		stmt.SetLimit(int64(r.policy.MaxRows))
	}

	if format, ok := stmt.Format(); ok {
		if format != r.policy.Format {
			return "", newError(ErrKindExplicitFormat,
				"please don't specify a FORMAT, results always use %s", r.policy.Format)
		}
	} else {
		stmt.SetFormat(r.policy.Format)
	}

	return stmt.String(), nil
}
