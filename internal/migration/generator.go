// Package migration turns a comparison result into a DDL script that moves a
// database from the "from" snapshot to the "to" snapshot.
package migration

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemadiff/internal/diff"
	"github.com/tordrt/schemadiff/internal/snapshot"
)

// Supported dialects
const (
	DialectMySQL      = "mysql"
	DialectPostgreSQL = "postgresql"
	DialectKingbase   = "kingbase"
)

// Generator renders DDL statements for one SQL dialect. Each returned
// statement is complete and terminated with a semicolon.
type Generator interface {
	Dialect() string
	QuoteIdent(name string) string
	CreateSchema(schemaName string) []string
	DropSchema(schemaName string) []string
	CreateTable(schemaName string, table snapshot.Table) []string
	DropTable(schemaName, tableName string) []string
	// AlterTable applies the changes of mt. target is the table as it
	// appears in the "to" snapshot and supplies full column and index
	// definitions for modified entries.
	AlterTable(schemaName string, mt diff.ModifiedTable, target *snapshot.Table) []string
}

// NewGenerator returns the generator for the named dialect
func NewGenerator(dialect string) (Generator, error) {
	switch strings.ToLower(dialect) {
	case DialectMySQL:
		return &mysqlGenerator{}, nil
	case DialectPostgreSQL, "postgres":
		return &postgresGenerator{dialect: DialectPostgreSQL}, nil
	case DialectKingbase:
		return &postgresGenerator{dialect: DialectKingbase}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect: %s (must be 'mysql', 'postgresql', or 'kingbase')", dialect)
	}
}

// columnDef is the full definition of a column, built from either side
type columnDef struct {
	name     string
	dataType string
	nullable bool
	def      *string
	comment  *string
}

func columnFromSnapshot(c snapshot.Column) columnDef {
	return columnDef{name: c.Name, dataType: c.DataType, nullable: c.IsNullable(), def: c.DefaultValue, comment: c.Comment}
}

func columnFromInfo(c diff.ColumnInfo) columnDef {
	return columnDef{name: c.ColumnName, dataType: c.DataType, nullable: c.Nullable, def: c.ColumnDefault, comment: c.ColumnComment}
}

// indexDef is the full definition of an index, built from either side
type indexDef struct {
	name    string
	unique  bool
	primary bool
	columns []string
	typ     string
}

func indexFromSnapshot(idx snapshot.Index) indexDef {
	return indexDef{name: idx.Name, unique: idx.IsUnique, primary: idx.Primary, columns: idx.Columns, typ: idx.Type}
}

func indexFromInfo(idx diff.IndexInfo) indexDef {
	return indexDef{name: idx.IndexName, unique: idx.Unique, primary: idx.Primary, columns: idx.Columns, typ: idx.IndexType}
}

// modifiedIndexDefs resolves the new definitions of modified indexes
func modifiedIndexDefs(mt diff.ModifiedTable, target *snapshot.Table) []indexDef {
	if target == nil {
		return nil
	}
	var defs []indexDef
	for _, change := range mt.ModifiedIndexes {
		if idx := target.FindIndex(change.IndexName); idx != nil {
			defs = append(defs, indexFromSnapshot(*idx))
		}
	}
	return defs
}

// primaryKey returns the primary index of a table, if any
func primaryKey(t snapshot.Table) *snapshot.Index {
	for i := range t.Indexes {
		if t.Indexes[i].Primary {
			return &t.Indexes[i]
		}
	}
	return nil
}

// quoteLiteral renders s as a single-quoted SQL string literal
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func joinIdents(g Generator, names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = g.QuoteIdent(n)
	}
	return strings.Join(quoted, ", ")
}

func hasText(s *string) bool {
	return s != nil && *s != ""
}
