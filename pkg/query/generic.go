package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blastrain/vitess-sqlparser/sqlparser"
)

// genericParser wraps the vitess MySQL-flavoured grammar. The grammar has no
// FORMAT clause, so the adapter carries the forced format alongside the AST
// and appends it during serialization.
type genericParser struct{}

func (genericParser) Parse(sql string) ([]Statement, error) {
	out := make([]Statement, 0, 1)
	for _, piece := range splitStatements(sql) {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		stmt, err := sqlparser.Parse(piece)
		if err != nil {
			return nil, err
		}
		out = append(out, &genericStatement{stmt: stmt})
	}
	return out, nil
}

// splitStatements splits sql on semicolons sitting outside string literals,
// quoted identifiers and comments. Pieces are parsed individually, so a split
// inside malformed input still ends in a parse rejection.
func splitStatements(sql string) []string {
	var pieces []string
	start := 0
	for i := 0; i < len(sql); i++ {
		switch sql[i] {
		case '\'', '"', '`':
			i = skipQuoted(sql, i)
		case '#':
			i = skipLineComment(sql, i+1)
		case '-':
			if i+1 < len(sql) && sql[i+1] == '-' {
				i = skipLineComment(sql, i+2)
			}
		case '/':
			if i+1 < len(sql) && sql[i+1] == '*' {
				i = skipBlockComment(sql, i+2)
			}
		case ';':
			pieces = append(pieces, sql[start:i])
			start = i + 1
		}
	}
	return append(pieces, sql[start:])
}

// skipQuoted returns the index of the quote closing sql[i]. Backslash escapes
// and doubled quotes stay inside the literal.
func skipQuoted(sql string, i int) int {
	quote := sql[i]
	for i++; i < len(sql); i++ {
		switch sql[i] {
		case '\\':
			i++
		case quote:
			if i+1 < len(sql) && sql[i+1] == quote {
				i++
				continue
			}
			return i
		}
	}
	return len(sql)
}

func skipLineComment(sql string, i int) int {
	for ; i < len(sql); i++ {
		if sql[i] == '\n' {
			return i
		}
	}
	return len(sql)
}

func skipBlockComment(sql string, i int) int {
	for ; i+1 < len(sql); i++ {
		if sql[i] == '*' && sql[i+1] == '/' {
			return i + 1
		}
	}
	return len(sql)
}

type genericStatement struct {
	stmt   sqlparser.Statement
	format string
}

func (s *genericStatement) sel() (*sqlparser.Select, bool) {
	sel, ok := s.stmt.(*sqlparser.Select)
	return sel, ok
}

func (s *genericStatement) IsQuery() bool {
	_, ok := s.sel()
	return ok
}

func (s *genericStatement) Limit() (int64, bool, error) {
	sel, ok := s.sel()
	if !ok || sel.Limit == nil {
		return 0, false, nil
	}
	val, ok := sel.Limit.Rowcount.(*sqlparser.SQLVal)
	if !ok || val.Type != sqlparser.IntVal {
		return 0, true, fmt.Errorf("LIMIT value is not a numeric literal")
	}
	n, err := strconv.ParseInt(string(val.Val), 10, 64)
	if err != nil {
		return 0, true, fmt.Errorf("LIMIT %s is not a plain integer", val.Val)
	}
	return n, true, nil
}

func (s *genericStatement) SetLimit(n int64) {
	sel, ok := s.sel()
	if !ok {
		return
	}
	rowcount := sqlparser.NewIntVal([]byte(strconv.FormatInt(n, 10)))
	if sel.Limit != nil {
		sel.Limit.Rowcount = rowcount
		return
	}
	sel.Limit = &sqlparser.Limit{Rowcount: rowcount}
}

func (s *genericStatement) Format() (string, bool) {
	if s.format == "" {
		return "", false
	}
	return s.format, true
}

func (s *genericStatement) SetFormat(name string) {
	s.format = name
}

func (s *genericStatement) String() string {
	text := sqlparser.String(s.stmt)
	if s.format != "" {
		text += " FORMAT " + s.format
	}
	return text
}
