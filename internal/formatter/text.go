package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemadiff/internal/diff"
)

// TextFormatter formats a result as compact text with +/-/~ markers
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(w io.Writer) *TextFormatter {
	return &TextFormatter{writer: w}
}

// Format writes the result in compact text format
func (f *TextFormatter) Format(r *diff.CompareResult) error {
	if r.Error != "" {
		_, _ = fmt.Fprintf(f.writer, "ERROR %s\n", r.Error)
		return nil
	}
	if r.IsEmpty() {
		_, _ = fmt.Fprintln(f.writer, noDifferences)
		return nil
	}

	_, _ = fmt.Fprintf(f.writer, "DIFF %s -> %s\n", versionLabel(r.FromVersion), versionLabel(r.ToVersion))

	for _, s := range r.AddedSchemas {
		f.formatSchemaInfo("+", s)
	}
	for _, s := range r.RemovedSchemas {
		f.formatSchemaInfo("-", s)
	}
	for _, sc := range r.ModifiedSchemas {
		f.FormatSchemaChanges(sc)
	}
	return nil
}

func (f *TextFormatter) formatSchemaInfo(marker string, s diff.SchemaInfo) {
	_, _ = fmt.Fprintf(f.writer, "%s SCHEMA %s (%d tables)\n", marker, s.SchemaName, len(s.Tables))
	for _, t := range s.Tables {
		_, _ = fmt.Fprintf(f.writer, "    %s %s\n", marker, t.TableName)
	}
}

// FormatSchemaChanges writes one modified schema
func (f *TextFormatter) FormatSchemaChanges(sc diff.SchemaChanges) {
	_, _ = fmt.Fprintf(f.writer, "~ SCHEMA %s\n", sc.SchemaName)

	for _, t := range sc.AddedTables {
		_, _ = fmt.Fprintf(f.writer, "  + TABLE %s\n", t.TableName)
	}
	for _, t := range sc.RemovedTables {
		_, _ = fmt.Fprintf(f.writer, "  - TABLE %s\n", t.TableName)
	}
	for _, mt := range sc.ModifiedTables {
		f.formatTable(mt)
	}
}

func (f *TextFormatter) formatTable(mt diff.ModifiedTable) {
	_, _ = fmt.Fprintf(f.writer, "  ~ TABLE %s\n", mt.TableName)

	if mt.CommentChanged {
		_, _ = fmt.Fprintf(f.writer, "    ~ comment %s -> %s\n", formatValue(optional(mt.OldComment)), formatValue(optional(mt.NewComment)))
	}
	for _, c := range mt.AddedColumns {
		_, _ = fmt.Fprintf(f.writer, "    + %s: %s\n", c.ColumnName, columnSpec(c))
	}
	for _, c := range mt.RemovedColumns {
		_, _ = fmt.Fprintf(f.writer, "    - %s: %s\n", c.ColumnName, columnSpec(c))
	}
	for _, c := range mt.ModifiedColumns {
		_, _ = fmt.Fprintf(f.writer, "    ~ %s: %s\n", c.ColumnName, changeList(c.Changes, "->"))
	}
	for _, idx := range mt.AddedIndexes {
		_, _ = fmt.Fprintf(f.writer, "    + INDEX %s\n", indexSpec(idx))
	}
	for _, idx := range mt.RemovedIndexes {
		_, _ = fmt.Fprintf(f.writer, "    - INDEX %s\n", indexSpec(idx))
	}
	for _, idx := range mt.ModifiedIndexes {
		_, _ = fmt.Fprintf(f.writer, "    ~ INDEX %s: %s\n", idx.IndexName, changeList(idx.Changes, "->"))
	}
}

func indexSpec(idx diff.IndexInfo) string {
	s := fmt.Sprintf("%s (%s)", idx.IndexName, strings.Join(idx.Columns, ", "))
	if idx.Primary {
		s += " PRIMARY"
	} else if idx.Unique {
		s += " UNIQUE"
	}
	if idx.IndexType != "" {
		s += " USING " + idx.IndexType
	}
	return s
}
