// Package formatter renders comparison results for humans and tools.
package formatter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tordrt/schemadiff/internal/diff"
)

// Output format names
const (
	FormatJSON     = "json"
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

const noDifferences = "No differences"

// Formatter renders a comparison result
type Formatter interface {
	Format(r *diff.CompareResult) error
}

// New returns the formatter for the named format
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case FormatJSON, "":
		return NewJSONFormatter(w), nil
	case FormatText:
		return NewTextFormatter(w), nil
	case FormatMarkdown, "md":
		return NewMarkdownFormatter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (must be 'json', 'text', or 'markdown')", format)
	}
}

// JSONFormatter writes the result wire document
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// Format writes the result as indented JSON
func (f *JSONFormatter) Format(r *diff.CompareResult) error {
	return diff.Encode(f.writer, r)
}

// formatValue renders a property value. Absent values print as NULL.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		if val == "" {
			return `""`
		}
		return val
	case bool:
		return strconv.FormatBool(val)
	case []string:
		return "(" + strings.Join(val, ", ") + ")"
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = fmt.Sprint(p)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return fmt.Sprint(val)
	}
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// columnSpec renders type and constraints of an added or removed column
func columnSpec(c diff.ColumnInfo) string {
	parts := []string{c.DataType}
	if !c.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if c.ColumnDefault != nil {
		parts = append(parts, "DEFAULT "+*c.ColumnDefault)
	}
	return strings.Join(parts, " ")
}

func changeList(changes []diff.PropertyChange, arrow string) string {
	parts := make([]string, len(changes))
	for i, ch := range changes {
		parts[i] = fmt.Sprintf("%s %s %s %s", ch.Property, formatValue(ch.OldValue), arrow, formatValue(ch.NewValue))
	}
	return strings.Join(parts, "; ")
}

func versionLabel(v string) string {
	if v == "" {
		return "?"
	}
	return v
}
