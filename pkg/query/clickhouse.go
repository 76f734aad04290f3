package query

import (
	"fmt"
	"strconv"

	chparser "github.com/AfterShip/clickhouse-sql-parser/parser"
)

// clickhouseParser wraps the AfterShip ClickHouse grammar.
type clickhouseParser struct{}

func (clickhouseParser) Parse(sql string) ([]Statement, error) {
	stmts, err := chparser.NewParser(sql).ParseStmts()
	if err != nil {
		return nil, err
	}
	out := make([]Statement, 0, len(stmts))
	for _, stmt := range stmts {
		out = append(out, &clickhouseStatement{stmt: stmt})
	}
	return out, nil
}

// clickhouseStatement adapts one ClickHouse AST node to the Statement
// interface. Limit and format live directly on the SELECT node.
type clickhouseStatement struct {
	stmt chparser.Expr
}

func (s *clickhouseStatement) selectQuery() (*chparser.SelectQuery, bool) {
	sel, ok := s.stmt.(*chparser.SelectQuery)
	if !ok {
		return nil, false
	}
	// In a UNION chain every branch carries its own LIMIT and FORMAT, and a
	// trailing clause binds to the last branch only. One clamp cannot bound
	// the combined result, so union statements are not accepted.
	if sel.UnionAll != nil || sel.UnionDistinct != nil {
		return nil, false
	}
	return sel, true
}

func (s *clickhouseStatement) IsQuery() bool {
	_, ok := s.selectQuery()
	return ok
}

func (s *clickhouseStatement) Limit() (int64, bool, error) {
	sel, ok := s.selectQuery()
	if !ok || sel.Limit == nil {
		return 0, false, nil
	}
	num, ok := sel.Limit.Limit.(*chparser.NumberLiteral)
	if !ok {
		return 0, true, fmt.Errorf("LIMIT value is not a numeric literal")
	}
	n, err := strconv.ParseInt(num.Literal, 10, 64)
	if err != nil {
		return 0, true, fmt.Errorf("LIMIT %s is not a plain integer", num.Literal)
	}
	return n, true, nil
}

func (s *clickhouseStatement) SetLimit(n int64) {
	sel, ok := s.selectQuery()
	if !ok {
		return
	}
	lit := &chparser.NumberLiteral{Literal: strconv.FormatInt(n, 10)}
	if sel.Limit != nil {
		sel.Limit.Limit = lit
		return
	}
	sel.Limit = &chparser.LimitClause{Limit: lit}
}

func (s *clickhouseStatement) Format() (string, bool) {
	sel, ok := s.selectQuery()
	if !ok || sel.Format == nil || sel.Format.Format == nil {
		return "", false
	}
	return sel.Format.Format.Name, true
}

func (s *clickhouseStatement) SetFormat(name string) {
	sel, ok := s.selectQuery()
	if !ok {
		return
	}
	sel.Format = &chparser.FormatClause{Format: &chparser.Ident{Name: name}}
}

func (s *clickhouseStatement) String() string {
	return s.stmt.String()
}
