package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/tordrt/schemadiff/internal/diff"
)

const arrow = "→"

// MarkdownFormatter formats a result as markdown
type MarkdownFormatter struct {
	writer io.Writer
}

// NewMarkdownFormatter creates a new markdown formatter
func NewMarkdownFormatter(w io.Writer) *MarkdownFormatter {
	return &MarkdownFormatter{writer: w}
}

// Format writes the result in markdown format
func (f *MarkdownFormatter) Format(r *diff.CompareResult) error {
	_, _ = fmt.Fprintf(f.writer, "# Schema Diff: %s %s %s\n\n", versionLabel(r.FromVersion), arrow, versionLabel(r.ToVersion))

	if r.Error != "" {
		_, _ = fmt.Fprintf(f.writer, "**Error:** %s\n", r.Error)
		return nil
	}
	if r.IsEmpty() {
		_, _ = fmt.Fprintln(f.writer, noDifferences)
		return nil
	}

	for _, s := range r.AddedSchemas {
		f.FormatSchemaInfo("Added", s)
	}
	for _, s := range r.RemovedSchemas {
		f.FormatSchemaInfo("Removed", s)
	}
	for _, sc := range r.ModifiedSchemas {
		f.FormatSchemaChanges(sc)
	}
	return nil
}

// FormatSchemaInfo writes a schema present on one side only
func (f *MarkdownFormatter) FormatSchemaInfo(verb string, s diff.SchemaInfo) {
	_, _ = fmt.Fprintf(f.writer, "## %s schema `%s`\n\n", verb, s.SchemaName)
	if len(s.Tables) == 0 {
		_, _ = fmt.Fprintln(f.writer, "_No tables_")
		_, _ = fmt.Fprintln(f.writer)
		return
	}
	f.tableList(s.Tables)
}

// FormatSchemaChanges writes one modified schema (exported for use by multifile formatter)
func (f *MarkdownFormatter) FormatSchemaChanges(sc diff.SchemaChanges) {
	_, _ = fmt.Fprintf(f.writer, "## Schema `%s`\n\n", sc.SchemaName)

	if len(sc.AddedTables) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Added tables")
		_, _ = fmt.Fprintln(f.writer)
		f.tableList(sc.AddedTables)
	}
	if len(sc.RemovedTables) > 0 {
		_, _ = fmt.Fprintln(f.writer, "### Removed tables")
		_, _ = fmt.Fprintln(f.writer)
		f.tableList(sc.RemovedTables)
	}
	for _, mt := range sc.ModifiedTables {
		f.formatTable(mt)
	}
}

func (f *MarkdownFormatter) tableList(tables []diff.TableInfo) {
	for _, t := range tables {
		if t.TableComment != nil && *t.TableComment != "" {
			_, _ = fmt.Fprintf(f.writer, "- **%s**: %s\n", t.TableName, *t.TableComment)
		} else {
			_, _ = fmt.Fprintf(f.writer, "- **%s**\n", t.TableName)
		}
	}
	_, _ = fmt.Fprintln(f.writer)
}

func (f *MarkdownFormatter) formatTable(mt diff.ModifiedTable) {
	_, _ = fmt.Fprintf(f.writer, "### Table `%s`\n\n", mt.TableName)

	if mt.CommentChanged {
		_, _ = fmt.Fprintf(f.writer, "Comment: %s %s %s\n\n",
			formatValue(optional(mt.OldComment)), arrow, formatValue(optional(mt.NewComment)))
	}

	if len(mt.AddedColumns) > 0 {
		f.section("Added columns")
		for _, c := range mt.AddedColumns {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", c.ColumnName, markdownColumnSpec(c))
		}
		_, _ = fmt.Fprintln(f.writer)
	}
	if len(mt.RemovedColumns) > 0 {
		f.section("Removed columns")
		for _, c := range mt.RemovedColumns {
			_, _ = fmt.Fprintf(f.writer, "- **%s:** %s\n", c.ColumnName, markdownColumnSpec(c))
		}
		_, _ = fmt.Fprintln(f.writer)
	}
	if len(mt.ModifiedColumns) > 0 {
		f.section("Modified columns")
		for _, c := range mt.ModifiedColumns {
			f.changeItems(c.ColumnName, c.Changes)
		}
		_, _ = fmt.Fprintln(f.writer)
	}

	if len(mt.AddedIndexes) > 0 {
		f.section("Added indexes")
		for _, idx := range mt.AddedIndexes {
			_, _ = fmt.Fprintf(f.writer, "- %s\n", markdownIndexSpec(idx))
		}
		_, _ = fmt.Fprintln(f.writer)
	}
	if len(mt.RemovedIndexes) > 0 {
		f.section("Removed indexes")
		for _, idx := range mt.RemovedIndexes {
			_, _ = fmt.Fprintf(f.writer, "- %s\n", markdownIndexSpec(idx))
		}
		_, _ = fmt.Fprintln(f.writer)
	}
	if len(mt.ModifiedIndexes) > 0 {
		f.section("Modified indexes")
		for _, idx := range mt.ModifiedIndexes {
			f.changeItems(idx.IndexName, idx.Changes)
		}
		_, _ = fmt.Fprintln(f.writer)
	}
}

func (f *MarkdownFormatter) section(title string) {
	_, _ = fmt.Fprintf(f.writer, "#### %s\n\n", title)
}

func (f *MarkdownFormatter) changeItems(name string, changes []diff.PropertyChange) {
	_, _ = fmt.Fprintf(f.writer, "- **%s**\n", name)
	for _, ch := range changes {
		_, _ = fmt.Fprintf(f.writer, "  - %s: `%s` %s `%s`\n", ch.Property, formatValue(ch.OldValue), arrow, formatValue(ch.NewValue))
	}
}

func markdownColumnSpec(c diff.ColumnInfo) string {
	constraints := []string{c.DataType}
	if !c.Nullable {
		constraints = append(constraints, "NOT NULL")
	}
	if c.ColumnDefault != nil {
		constraints = append(constraints, fmt.Sprintf("DEFAULT %s", *c.ColumnDefault))
	}
	if c.ColumnComment != nil && *c.ColumnComment != "" {
		constraints = append(constraints, fmt.Sprintf("%q", *c.ColumnComment))
	}
	return strings.Join(constraints, ", ")
}

func markdownIndexSpec(idx diff.IndexInfo) string {
	s := fmt.Sprintf("%s on (%s)", idx.IndexName, strings.Join(idx.Columns, ", "))
	switch {
	case idx.Primary:
		s += ", primary"
	case idx.Unique:
		s += ", unique"
	}
	if idx.IndexType != "" {
		s += ", " + idx.IndexType
	}
	return s
}
