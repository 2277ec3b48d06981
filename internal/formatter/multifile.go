package formatter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tordrt/schemadiff/internal/diff"
)

const overviewName = "_overview"

// MultiFileFormatter writes a result to a directory: an overview plus one
// file per changed schema
type MultiFileFormatter struct {
	OutputDir    string
	OutputFormat string // "text" or "markdown"
}

// NewMultiFileFormatter creates a new multi-file formatter
func NewMultiFileFormatter(outputDir, format string) *MultiFileFormatter {
	return &MultiFileFormatter{
		OutputDir:    outputDir,
		OutputFormat: format,
	}
}

// Format writes the result to multiple files
func (f *MultiFileFormatter) Format(r *diff.CompareResult) error {
	if err := os.MkdirAll(f.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := f.writeFile(overviewName, func(w io.Writer) { f.writeOverview(w, r) }); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}

	for _, s := range r.AddedSchemas {
		if err := f.writeFile(schemaFileName(s.SchemaName), func(w io.Writer) { f.writeSchemaInfo(w, "Added", s) }); err != nil {
			return fmt.Errorf("failed to write schema file for %s: %w", s.SchemaName, err)
		}
	}
	for _, s := range r.RemovedSchemas {
		if err := f.writeFile(schemaFileName(s.SchemaName), func(w io.Writer) { f.writeSchemaInfo(w, "Removed", s) }); err != nil {
			return fmt.Errorf("failed to write schema file for %s: %w", s.SchemaName, err)
		}
	}
	for _, sc := range r.ModifiedSchemas {
		if err := f.writeFile(schemaFileName(sc.SchemaName), func(w io.Writer) { f.writeSchemaChanges(w, sc) }); err != nil {
			return fmt.Errorf("failed to write schema file for %s: %w", sc.SchemaName, err)
		}
	}

	return nil
}

// schemaFileName maps a schema name to a file name inside the output
// directory. Bytes outside [A-Za-z0-9._-], and a leading '.' or '_', are
// percent-escaped: the result has no separator, never starts with '_' like
// the overview, and differs for different schemas.
func schemaFileName(schema string) string {
	if schema == "" {
		return "%"
	}
	var b strings.Builder
	for i := 0; i < len(schema); i++ {
		c := schema[i]
		safe := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
			c == '-' || (i > 0 && (c == '.' || c == '_'))
		if safe {
			b.WriteByte(c)
		} else {
			_, _ = fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func (f *MultiFileFormatter) writeFile(name string, write func(io.Writer)) error {
	file, err := os.Create(filepath.Join(f.OutputDir, name+f.getFileExtension()))
	if err != nil {
		return err
	}
	write(file)
	return file.Close()
}

func (f *MultiFileFormatter) writeOverview(w io.Writer, r *diff.CompareResult) {
	ext := f.getFileExtension()
	md := f.OutputFormat == FormatMarkdown

	if md {
		_, _ = fmt.Fprintf(w, "# Schema Diff Overview: %s %s %s\n\n", versionLabel(r.FromVersion), arrow, versionLabel(r.ToVersion))
	} else {
		_, _ = fmt.Fprintf(w, "DIFF OVERVIEW %s -> %s\n", versionLabel(r.FromVersion), versionLabel(r.ToVersion))
	}

	if r.IsEmpty() {
		_, _ = fmt.Fprintln(w, noDifferences)
		return
	}

	if md {
		_, _ = fmt.Fprintf(w, "Each changed schema has a corresponding file: `<schema_name>%s`\n\n", ext)
		_, _ = fmt.Fprintf(w, "## Schemas\n\n")
	} else {
		_, _ = fmt.Fprintf(w, "Each changed schema has a file: <schema_name>%s\n\n", ext)
	}

	item := func(name, summary string) {
		if file := schemaFileName(name); file != name {
			summary += ", file " + file + ext
		}
		if md {
			_, _ = fmt.Fprintf(w, "- **%s** (%s)\n", name, summary)
		} else {
			_, _ = fmt.Fprintf(w, "%s (%s)\n", name, summary)
		}
	}
	for _, s := range r.AddedSchemas {
		item(s.SchemaName, fmt.Sprintf("added, %d tables", len(s.Tables)))
	}
	for _, s := range r.RemovedSchemas {
		item(s.SchemaName, fmt.Sprintf("removed, %d tables", len(s.Tables)))
	}
	for _, sc := range r.ModifiedSchemas {
		item(sc.SchemaName, fmt.Sprintf("modified: +%d -%d ~%d tables",
			len(sc.AddedTables), len(sc.RemovedTables), len(sc.ModifiedTables)))
	}
}

func (f *MultiFileFormatter) writeSchemaInfo(w io.Writer, verb string, s diff.SchemaInfo) {
	if f.OutputFormat == FormatMarkdown {
		NewMarkdownFormatter(w).FormatSchemaInfo(verb, s)
		return
	}
	marker := "+"
	if verb == "Removed" {
		marker = "-"
	}
	NewTextFormatter(w).formatSchemaInfo(marker, s)
}

func (f *MultiFileFormatter) writeSchemaChanges(w io.Writer, sc diff.SchemaChanges) {
	if f.OutputFormat == FormatMarkdown {
		NewMarkdownFormatter(w).FormatSchemaChanges(sc)
		return
	}
	NewTextFormatter(w).FormatSchemaChanges(sc)
}

func (f *MultiFileFormatter) getFileExtension() string {
	if f.OutputFormat == FormatMarkdown {
		return ".md"
	}
	return ".txt"
}
