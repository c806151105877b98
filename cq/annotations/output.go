package annotations

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// OutputFormatter renders events as single console lines.
type OutputFormatter struct {
	useColor bool
	writer   io.Writer
}

// NewOutputFormatter creates a formatter writing to w (stdout when nil).
// Color is used only when w is a terminal.
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stdout
	}
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) && !color.NoColor
	}
	return &OutputFormatter{useColor: useColor, writer: w}
}

// Handle prints the event. It is usable as a Handler.
func (f *OutputFormatter) Handle(event Event) {
	if out := f.Format(event); out != "" {
		fmt.Fprintln(f.writer, out)
	}
}

// Format converts an event to a human readable line.
func (f *OutputFormatter) Format(event Event) string {
	latency := f.formatLatency(event.Latency)

	switch event.Name {
	case QueryInvoked:
		return fmt.Sprintf("%s Query %s: %s", latency, event.Data["run.id"], truncateQuery(str(event.Data["query"])))

	case QueryRewritten:
		return fmt.Sprintf("%s Rewritten: %s", latency, truncateQuery(str(event.Data["query"])))

	case QueryPlanCreated:
		return fmt.Sprintf("\n%s", strings.TrimRight(str(event.Data["plan"]), "\n"))

	case OperatorStats:
		return fmt.Sprintf("%s %s %s",
			latency,
			f.colorize(str(event.Data["operator"]), color.FgBlue),
			f.colorizeCount("tuples", intValue(event.Data["tuples.count"])))

	case QueryComplete:
		if success, _ := event.Data["success"].(bool); !success {
			return fmt.Sprintf("%s %s Query failed: %v",
				latency,
				f.colorize("✗", color.FgRed),
				event.Data["error"])
		}
		return fmt.Sprintf("%s %s Query done with %s.",
			latency,
			f.colorize("===", color.FgGreen),
			f.colorizeCount("tuples", intValue(event.Data["tuples.count"])))

	case MinimizeComplete:
		return fmt.Sprintf("%s Minimized %d atoms to %d: %s",
			latency,
			intValue(event.Data["atoms.before"]),
			intValue(event.Data["atoms.after"]),
			truncateQuery(str(event.Data["query"])))

	case ErrorQueryParsing, ErrorQueryPlanning:
		return fmt.Sprintf("%s %s %v", latency, f.colorize(event.Name, color.FgRed), event.Data["error"])

	default:
		return fmt.Sprintf("%s %s %v", latency, event.Name, event.Data)
	}
}

// formatLatency renders a duration as [XXµs] or [X.Xms], colored by size.
func (f *OutputFormatter) formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		s := fmt.Sprintf("[%dµs]", d.Microseconds())
		if !f.useColor {
			return s
		}
		return color.GreenString(s)
	}

	ms := float64(d.Microseconds()) / 1000.0
	s := fmt.Sprintf("[%.1fms]", ms)
	if !f.useColor {
		return s
	}
	switch {
	case ms < 50:
		return color.GreenString(s)
	case ms < 200:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

func (f *OutputFormatter) colorizeCount(label string, count int) string {
	text := fmt.Sprintf("%d %s", count, label)
	if !f.useColor {
		return text
	}
	return color.MagentaString(text)
}

func (f *OutputFormatter) colorize(text string, attrs ...color.Attribute) string {
	if !f.useColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

// truncateQuery collapses whitespace and shortens long queries.
func truncateQuery(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	const maxLen = 100
	if len(query) <= maxLen {
		return query
	}
	return query[:maxLen-3] + "..."
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func intValue(v interface{}) int {
	n, _ := v.(int)
	return n
}

// ConsoleHandler returns a handler printing formatted events to w.
func ConsoleHandler(w io.Writer) Handler {
	return NewOutputFormatter(w).Handle
}
