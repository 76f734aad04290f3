// Package render turns CSVWithNames response bodies into monospace tables
// ready for a chat code block. The rewriter guarantees every response body
// arrives in that one encoding.
package render

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
)

const noRows = "```\n(no rows)\n```"

// Render parses body as CSV with a header row and returns a table wrapped in
// a Markdown code fence.
func Render(body string) (string, error) {
	records, err := csv.NewReader(strings.NewReader(body)).ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse CSV response: %w", err)
	}

	// A header with no data rows means the query matched nothing.
	if len(records) <= 1 {
		return noRows, nil
	}

	table, err := pterm.DefaultTable.
		WithHasHeader().
		WithData(pterm.TableData(records)).
		Srender()
	if err != nil {
		return "", fmt.Errorf("render table: %w", err)
	}

	return "```\n" + strings.TrimRight(table, "\n") + "\n```", nil
}
