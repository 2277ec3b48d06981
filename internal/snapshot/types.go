// Package snapshot holds the in-memory representation of a captured database
// schema: schemas, tables, columns and indexes, each with a deterministic
// identity key.
package snapshot

import "time"

// Snapshot represents a complete captured schema at one point in time
type Snapshot struct {
	ID             string     `json:"id,omitempty" yaml:"id,omitempty"`
	Version        string     `json:"version,omitempty" yaml:"version,omitempty"`
	DatasourceType string     `json:"datasourceType,omitempty" yaml:"datasourceType,omitempty"`
	DatabaseName   string     `json:"databaseName,omitempty" yaml:"databaseName,omitempty"`
	CapturedAt     *time.Time `json:"capturedAt,omitempty" yaml:"capturedAt,omitempty"`
	Schemas        []Schema   `json:"schemas" yaml:"schemas"`
}

// Schema represents a database schema (namespace)
type Schema struct {
	Name   string  `json:"schemaName" yaml:"schemaName"`
	Tables []Table `json:"tables" yaml:"tables"`
}

// Table represents a database table
type Table struct {
	Name    string   `json:"tableName" yaml:"tableName"`
	Comment *string  `json:"tableComment,omitempty" yaml:"tableComment,omitempty"`
	Columns []Column `json:"columns" yaml:"columns"`
	Indexes []Index  `json:"indexes" yaml:"indexes"`
}

// Column represents a table column
type Column struct {
	Name         string  `json:"columnName" yaml:"columnName"`
	DataType     string  `json:"dataType" yaml:"dataType"`
	Nullable     *bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	DefaultValue *string `json:"columnDefault,omitempty" yaml:"columnDefault,omitempty"`
	Position     int     `json:"ordinalPosition,omitempty" yaml:"ordinalPosition,omitempty"`
	Comment      *string `json:"columnComment,omitempty" yaml:"columnComment,omitempty"`
}

// Index represents a database index
type Index struct {
	Name     string   `json:"indexName" yaml:"indexName"`
	IsUnique bool     `json:"unique,omitempty" yaml:"unique,omitempty"`
	Primary  bool     `json:"primary,omitempty" yaml:"primary,omitempty"`
	Columns  []string `json:"columns" yaml:"columns"`
	Type     string   `json:"indexType,omitempty" yaml:"indexType,omitempty"`
}

// Key returns the schema identity key
func (s Schema) Key() string { return s.Name }

// Key returns the table identity key within its schema
func (t Table) Key() string { return t.Name }

// QualifiedKey returns the (schema, table) identity key
func (t Table) QualifiedKey(schemaName string) string {
	return schemaName + "." + t.Name
}

// Key returns the column identity key within its table
func (c Column) Key() string { return c.Name }

// Key returns the index identity key within its table
func (i Index) Key() string { return i.Name }

// IsNullable reports the column nullability. An absent value means nullable,
// which is the SQL default.
func (c Column) IsNullable() bool {
	return c.Nullable == nil || *c.Nullable
}

// CommentText returns the table comment, or "" when none was captured
func (t Table) CommentText() string {
	if t.Comment == nil {
		return ""
	}
	return *t.Comment
}

// CommentText returns the column comment, or "" when none was captured
func (c Column) CommentText() string {
	if c.Comment == nil {
		return ""
	}
	return *c.Comment
}

// FindSchema returns the schema with the given name, or nil
func (s *Snapshot) FindSchema(name string) *Schema {
	for i := range s.Schemas {
		if s.Schemas[i].Name == name {
			return &s.Schemas[i]
		}
	}
	return nil
}

// FindTable returns the table with the given name, or nil
func (s *Schema) FindTable(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// FindColumn returns the column with the given name, or nil
func (t *Table) FindColumn(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// FindIndex returns the index with the given name, or nil
func (t *Table) FindIndex(name string) *Index {
	for i := range t.Indexes {
		if t.Indexes[i].Name == name {
			return &t.Indexes[i]
		}
	}
	return nil
}

// TableCount returns the number of tables across all schemas
func (s *Snapshot) TableCount() int {
	n := 0
	for _, sch := range s.Schemas {
		n += len(sch.Tables)
	}
	return n
}

// Bool returns a pointer to b. Useful when building snapshots in code.
func Bool(b bool) *bool { return &b }

// String returns a pointer to s
func String(s string) *string { return &s }
