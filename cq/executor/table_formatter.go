package executor

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/wbrown/janus-cq/cq/query"
)

// TableFormatter renders tuples as a markdown table
type TableFormatter struct {
	// MaxWidth is the maximum width of a cell
	MaxWidth int
	// TruncateString is appended to truncated cells
	TruncateString string
}

// NewTableFormatter creates a formatter with default settings
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		MaxWidth:       50,
		TruncateString: "...",
	}
}

// Format renders columns and tuples, followed by a row count line.
func (tf *TableFormatter) Format(columns []query.Variable, tuples []Tuple) string {
	if len(tuples) == 0 {
		return fmt.Sprintf("_Columns: [%s]_\n\n_No rows_\n", joinSymbols(columns))
	}

	sb := &strings.Builder{}

	alignment := make([]tw.Align, len(columns))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(sb,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = tf.truncate(string(col))
	}
	table.Header(headers)

	for _, t := range tuples {
		row := make([]string, len(t.Values))
		for j, v := range t.Values {
			row[j] = tf.truncate(v.String())
		}
		table.Append(row)
	}
	table.Render()

	fmt.Fprintf(sb, "\n_%d rows_\n", len(tuples))
	return sb.String()
}

func (tf *TableFormatter) truncate(s string) string {
	if tf.MaxWidth <= 0 || len(s) <= tf.MaxWidth {
		return s
	}
	cut := tf.MaxWidth - len(tf.TruncateString)
	if cut < 0 {
		cut = 0
	}
	return s[:cut] + tf.TruncateString
}
