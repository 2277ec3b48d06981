package snapshot

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSnapshot is returned when a snapshot violates a uniqueness invariant
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrIncompatibleSnapshot is returned when a snapshot cannot be read as the
	// snapshot model (unparseable document or missing required field)
	ErrIncompatibleSnapshot = errors.New("incompatible snapshot")
)

// Level names a nesting level of the snapshot tree
type Level string

const (
	LevelSnapshot Level = "snapshot"
	LevelSchema   Level = "schema"
	LevelTable    Level = "table"
	LevelColumn   Level = "column"
	LevelIndex    Level = "index"
)

// Error describes why a snapshot was rejected.
// Kind is ErrInvalidSnapshot or ErrIncompatibleSnapshot.
type Error struct {
	Kind   error
	Side   string // "from" or "to" when raised by a comparison, empty otherwise
	Level  Level
	Path   string
	Key    string // duplicated identity key
	Field  string // missing field
	Detail string
}

func (e *Error) Error() string {
	prefix := e.Kind.Error()
	if e.Side != "" {
		prefix = fmt.Sprintf("%s (%s)", prefix, e.Side)
	}

	switch {
	case e.Key != "":
		return fmt.Sprintf("%s: duplicate %s %q at %s", prefix, e.Level, e.Key, e.Path)
	case e.Field != "":
		return fmt.Sprintf("%s: missing %s at %s", prefix, e.Field, e.Path)
	case e.Path != "":
		return fmt.Sprintf("%s: %s at %s", prefix, e.Detail, e.Path)
	default:
		return fmt.Sprintf("%s: %s", prefix, e.Detail)
	}
}

// Unwrap lets callers match the error kind with errors.Is
func (e *Error) Unwrap() error {
	return e.Kind
}

// WithSide returns a copy of err labelled with the comparison side.
// Errors that are not *Error are returned unchanged.
func WithSide(err error, side string) error {
	var se *Error
	if !errors.As(err, &se) {
		return err
	}
	cp := *se
	cp.Side = side
	return &cp
}

func duplicate(level Level, path, key string) *Error {
	return &Error{Kind: ErrInvalidSnapshot, Level: level, Path: path, Key: key}
}

func missing(level Level, path, field string) *Error {
	return &Error{Kind: ErrIncompatibleSnapshot, Level: level, Path: path, Field: field}
}

// Validate checks the structural invariants of a snapshot and returns the
// first violation in document order. It never modifies s.
func Validate(s *Snapshot) error {
	if s == nil {
		return &Error{Kind: ErrIncompatibleSnapshot, Level: LevelSnapshot, Detail: "snapshot is nil"}
	}

	seen := make(map[string]struct{}, len(s.Schemas))
	for i, sch := range s.Schemas {
		path := fmt.Sprintf("schemas[%d]", i)
		if sch.Name == "" {
			return missing(LevelSchema, path, "schemaName")
		}
		if _, dup := seen[sch.Key()]; dup {
			return duplicate(LevelSchema, path, sch.Key())
		}
		seen[sch.Key()] = struct{}{}

		if err := validateSchema(sch, path); err != nil {
			return err
		}
	}

	return nil
}

func validateSchema(sch Schema, path string) error {
	seen := make(map[string]struct{}, len(sch.Tables))
	for i, table := range sch.Tables {
		tablePath := fmt.Sprintf("%s.tables[%d]", path, i)
		if table.Name == "" {
			return missing(LevelTable, tablePath, "tableName")
		}
		if _, dup := seen[table.Key()]; dup {
			return duplicate(LevelTable, tablePath, table.QualifiedKey(sch.Name))
		}
		seen[table.Key()] = struct{}{}

		if err := validateTable(table, tablePath); err != nil {
			return err
		}
	}
	return nil
}

func validateTable(table Table, path string) error {
	names := make(map[string]struct{}, len(table.Columns))
	positions := make(map[int]string, len(table.Columns))

	for i, col := range table.Columns {
		colPath := fmt.Sprintf("%s.columns[%d]", path, i)
		if col.Name == "" {
			return missing(LevelColumn, colPath, "columnName")
		}
		if col.DataType == "" {
			return missing(LevelColumn, colPath, "dataType")
		}
		if _, dup := names[col.Key()]; dup {
			return duplicate(LevelColumn, colPath, table.Name+"."+col.Key())
		}
		names[col.Key()] = struct{}{}

		if col.Position != 0 {
			if other, dup := positions[col.Position]; dup {
				return &Error{
					Kind:   ErrInvalidSnapshot,
					Level:  LevelColumn,
					Path:   colPath,
					Detail: fmt.Sprintf("ordinal position %d of %q already used by %q", col.Position, col.Name, other),
				}
			}
			positions[col.Position] = col.Name
		}
	}

	indexes := make(map[string]struct{}, len(table.Indexes))
	for i, idx := range table.Indexes {
		idxPath := fmt.Sprintf("%s.indexes[%d]", path, i)
		if idx.Name == "" {
			return missing(LevelIndex, idxPath, "indexName")
		}
		if len(idx.Columns) == 0 {
			return missing(LevelIndex, idxPath, "columns")
		}
		for j, c := range idx.Columns {
			if c == "" {
				return missing(LevelIndex, fmt.Sprintf("%s.columns[%d]", idxPath, j), "column name")
			}
		}
		if _, dup := indexes[idx.Key()]; dup {
			return duplicate(LevelIndex, idxPath, table.Name+"."+idx.Key())
		}
		indexes[idx.Key()] = struct{}{}
	}

	return nil
}
