// Package query implements parsing and rewriting of untrusted SQL before it
// is sent to the database. The grammar is an injected capability behind the
// Parser interface, so rewrite logic never depends on a concrete dialect.
package query

import (
	"fmt"
)

// Dialect identifies the SQL grammar variant accepted by the target
// database.
type Dialect string

const (
	// DialectClickHouse parses the ClickHouse SQL surface, including its
	// LIMIT and FORMAT clauses.
	DialectClickHouse Dialect = "clickhouse"

	// DialectGeneric parses a MySQL-flavoured SQL surface. The grammar has
	// no FORMAT clause, so the forced format is appended at serialization.
	DialectGeneric Dialect = "generic"
)

// ParseDialect converts a configuration string into a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch Dialect(s) {
	case DialectClickHouse:
		return DialectClickHouse, nil
	case DialectGeneric:
		return DialectGeneric, nil
	default:
		return "", fmt.Errorf("unknown dialect %q (supported: %s, %s)", s, DialectClickHouse, DialectGeneric)
	}
}

// Statement is one parsed SQL statement. It is owned exclusively by the
// rewriter during a rewrite and never retained afterwards.
type Statement interface {
	// IsQuery reports whether the statement is query-shaped (a SELECT).
	IsQuery() bool

	// Limit returns the numeric LIMIT row count if the statement carries
	// one. ok is true whenever a LIMIT clause is present; a non-nil error
	// means the clause exists but its row count is not a plain numeric
	// literal.
	Limit() (value int64, ok bool, err error)

	// SetLimit injects or overwrites the LIMIT row count. Any offset is
	// preserved. No-op on non-query statements.
	SetLimit(n int64)

	// Format returns the explicit output-format clause if present.
	Format() (string, bool)

	// SetFormat forces the output format. No-op on non-query statements.
	SetFormat(name string)

	// String re-serializes the statement to canonical SQL text.
	String() string
}

// Parser converts raw SQL text into parsed statements, or a parse failure
// carrying a human-readable reason.
type Parser interface {
	Parse(sql string) ([]Statement, error)
}

// NewParser returns the parser backing the given dialect.
func NewParser(d Dialect) (Parser, error) {
	switch d {
	case DialectClickHouse:
		return clickhouseParser{}, nil
	case DialectGeneric:
		return genericParser{}, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", d)
	}
}
