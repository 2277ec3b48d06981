package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a snapshot document encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a user-supplied name to a Format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported snapshot format: %s (must be 'json' or 'yaml')", name)
	}
}

// FormatForPath picks the document format from a file extension.
// Unknown extensions are read as JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads a snapshot document. Syntax and type errors, and required
// lists that are absent or null (schemas, tables, columns, indexes), are
// reported as ErrIncompatibleSnapshot. The decoded snapshot is not otherwise
// validated; call Validate (or diff.Compare, which validates) before relying
// on invariants.
func Decode(r io.Reader, format Format) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var s Snapshot
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, yamlError(err)
		}
	case FormatJSON, "":
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, jsonError(err)
		}
	default:
		return nil, fmt.Errorf("unsupported snapshot format: %s", format)
	}

	if err := requireLists(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// requireLists rejects a decoded document whose required lists were absent
// or null. Empty lists are fine.
func requireLists(s *Snapshot) error {
	if s.Schemas == nil {
		return missing(LevelSnapshot, "schemas", "schemas")
	}
	for i, sch := range s.Schemas {
		path := fmt.Sprintf("schemas[%d]", i)
		if sch.Tables == nil {
			return missing(LevelSchema, path+".tables", "tables")
		}
		for j, t := range sch.Tables {
			tablePath := fmt.Sprintf("%s.tables[%d]", path, j)
			if t.Columns == nil {
				return missing(LevelTable, tablePath+".columns", "columns")
			}
			if t.Indexes == nil {
				return missing(LevelTable, tablePath+".indexes", "indexes")
			}
		}
	}
	return nil
}

// DecodeFile reads a snapshot document from disk, choosing the format from
// the file extension
func DecodeFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }()

	s, err := Decode(f, FormatForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Encode writes a snapshot document. Nil lists are written as empty lists so
// the output always decodes again.
func Encode(w io.Writer, s *Snapshot, format Format) error {
	s = withEmptyLists(s)
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("failed to encode snapshot: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported snapshot format: %s", format)
	}
}

// Marshal encodes a snapshot into a byte slice
func Marshal(s *Snapshot, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, s, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func jsonError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &Error{
			Kind:   ErrIncompatibleSnapshot,
			Level:  LevelSnapshot,
			Path:   typeErr.Field,
			Detail: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &Error{
			Kind:   ErrIncompatibleSnapshot,
			Level:  LevelSnapshot,
			Path:   fmt.Sprintf("offset %d", syntaxErr.Offset),
			Detail: syntaxErr.Error(),
		}
	}

	return &Error{Kind: ErrIncompatibleSnapshot, Level: LevelSnapshot, Detail: err.Error()}
}

func yamlError(err error) error {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return &Error{
			Kind:   ErrIncompatibleSnapshot,
			Level:  LevelSnapshot,
			Detail: strings.Join(typeErr.Errors, "; "),
		}
	}
	return &Error{Kind: ErrIncompatibleSnapshot, Level: LevelSnapshot, Detail: err.Error()}
}

// Clone returns a deep copy of the snapshot
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}

	cp := *s
	if s.CapturedAt != nil {
		t := *s.CapturedAt
		cp.CapturedAt = &t
	}
	if s.Schemas == nil {
		return &cp
	}
	cp.Schemas = make([]Schema, len(s.Schemas))
	for i, sch := range s.Schemas {
		cp.Schemas[i] = Schema{Name: sch.Name}
		if sch.Tables == nil {
			continue
		}
		cp.Schemas[i].Tables = make([]Table, len(sch.Tables))
		for j, t := range sch.Tables {
			cp.Schemas[i].Tables[j] = t.Clone()
		}
	}
	return &cp
}

// Clone returns a deep copy of the table
func (t Table) Clone() Table {
	cp := Table{
		Name:    t.Name,
		Comment: cloneString(t.Comment),
	}
	if t.Columns != nil {
		cp.Columns = make([]Column, len(t.Columns))
	}
	if t.Indexes != nil {
		cp.Indexes = make([]Index, len(t.Indexes))
	}
	for i, c := range t.Columns {
		cp.Columns[i] = Column{
			Name:         c.Name,
			DataType:     c.DataType,
			Nullable:     cloneBool(c.Nullable),
			DefaultValue: cloneString(c.DefaultValue),
			Position:     c.Position,
			Comment:      cloneString(c.Comment),
		}
	}
	for i, idx := range t.Indexes {
		cp.Indexes[i] = idx
		if idx.Columns != nil {
			cp.Indexes[i].Columns = append([]string{}, idx.Columns...)
		}
	}
	return cp
}

// withEmptyLists returns a copy of s with every nil list replaced by an
// empty one
func withEmptyLists(s *Snapshot) *Snapshot {
	cp := s.Clone()
	if cp == nil {
		return nil
	}
	if cp.Schemas == nil {
		cp.Schemas = []Schema{}
	}
	for i := range cp.Schemas {
		sch := &cp.Schemas[i]
		if sch.Tables == nil {
			sch.Tables = []Table{}
		}
		for j := range sch.Tables {
			t := &sch.Tables[j]
			if t.Columns == nil {
				t.Columns = []Column{}
			}
			if t.Indexes == nil {
				t.Indexes = []Index{}
			}
			for k := range t.Indexes {
				if t.Indexes[k].Columns == nil {
					t.Indexes[k].Columns = []string{}
				}
			}
		}
	}
	return cp
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	v := *b
	return &v
}
