package migration

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemadiff/internal/diff"
	"github.com/tordrt/schemadiff/internal/snapshot"
)

// postgresGenerator renders PostgreSQL DDL. Kingbase accepts the same syntax.
type postgresGenerator struct {
	dialect string
}

func (g *postgresGenerator) Dialect() string { return g.dialect }

func (g *postgresGenerator) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (g *postgresGenerator) qualified(schemaName, name string) string {
	return g.QuoteIdent(schemaName) + "." + g.QuoteIdent(name)
}

func (g *postgresGenerator) CreateSchema(schemaName string) []string {
	return []string{fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;", g.QuoteIdent(schemaName))}
}

func (g *postgresGenerator) DropSchema(schemaName string) []string {
	return []string{fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE;", g.QuoteIdent(schemaName))}
}

func (g *postgresGenerator) CreateTable(schemaName string, table snapshot.Table) []string {
	name := g.qualified(schemaName, table.Name)

	var defs []string
	for _, c := range table.Columns {
		defs = append(defs, "  "+g.columnDefinition(columnFromSnapshot(c)))
	}
	if pk := primaryKey(table); pk != nil {
		defs = append(defs, fmt.Sprintf("  CONSTRAINT %s PRIMARY KEY (%s)", g.QuoteIdent(pk.Name), joinIdents(g, pk.Columns)))
	}

	stmts := []string{fmt.Sprintf("CREATE TABLE %s (\n%s\n);", name, strings.Join(defs, ",\n"))}

	if hasText(table.Comment) {
		stmts = append(stmts, fmt.Sprintf("COMMENT ON TABLE %s IS %s;", name, quoteLiteral(*table.Comment)))
	}
	for _, c := range table.Columns {
		if hasText(c.Comment) {
			stmts = append(stmts, g.columnComment(schemaName, table.Name, c.Name, c.Comment))
		}
	}
	for _, idx := range table.Indexes {
		if !idx.Primary {
			stmts = append(stmts, g.createIndex(schemaName, table.Name, indexFromSnapshot(idx)))
		}
	}

	return stmts
}

func (g *postgresGenerator) DropTable(schemaName, tableName string) []string {
	return []string{fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE;", g.qualified(schemaName, tableName))}
}

func (g *postgresGenerator) AlterTable(schemaName string, mt diff.ModifiedTable, target *snapshot.Table) []string {
	table := g.qualified(schemaName, mt.TableName)
	var stmts []string

	if mt.CommentChanged {
		comment := "NULL"
		if hasText(mt.NewComment) {
			comment = quoteLiteral(*mt.NewComment)
		}
		stmts = append(stmts, fmt.Sprintf("COMMENT ON TABLE %s IS %s;", table, comment))
	}

	// indexes go first so dropped columns are no longer referenced
	for _, idx := range mt.RemovedIndexes {
		stmts = append(stmts, g.dropIndex(schemaName, mt.TableName, indexFromInfo(idx)))
	}
	modifiedIndexes := modifiedIndexDefs(mt, target)
	for _, idx := range modifiedIndexes {
		stmts = append(stmts, g.dropIndex(schemaName, mt.TableName, idx))
	}

	for _, c := range mt.AddedColumns {
		col := columnFromInfo(c)
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", table, g.columnDefinition(col)))
		if hasText(col.comment) {
			stmts = append(stmts, g.columnComment(schemaName, mt.TableName, col.name, col.comment))
		}
	}
	for _, c := range mt.RemovedColumns {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", table, g.QuoteIdent(c.ColumnName)))
	}
	for _, c := range mt.ModifiedColumns {
		stmts = append(stmts, g.alterColumn(schemaName, mt.TableName, c)...)
	}

	for _, idx := range mt.AddedIndexes {
		stmts = append(stmts, g.createIndex(schemaName, mt.TableName, indexFromInfo(idx)))
	}
	for _, idx := range modifiedIndexes {
		stmts = append(stmts, g.createIndex(schemaName, mt.TableName, idx))
	}

	return stmts
}

func (g *postgresGenerator) alterColumn(schemaName, tableName string, c diff.ColumnChange) []string {
	prefix := fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s", g.qualified(schemaName, tableName), g.QuoteIdent(c.ColumnName))

	var stmts []string
	for _, ch := range c.Changes {
		switch ch.Property {
		case diff.PropDataType:
			stmts = append(stmts, fmt.Sprintf("%s TYPE %v;", prefix, ch.NewValue))
		case diff.PropNullable:
			if nullable, _ := ch.NewValue.(bool); nullable {
				stmts = append(stmts, prefix+" DROP NOT NULL;")
			} else {
				stmts = append(stmts, prefix+" SET NOT NULL;")
			}
		case diff.PropColumnDefault:
			if def, ok := ch.NewValue.(string); ok {
				stmts = append(stmts, fmt.Sprintf("%s SET DEFAULT %s;", prefix, def))
			} else {
				stmts = append(stmts, prefix+" DROP DEFAULT;")
			}
		case diff.PropColumnComment:
			var comment *string
			if s, ok := ch.NewValue.(string); ok {
				comment = &s
			}
			stmts = append(stmts, g.columnComment(schemaName, tableName, c.ColumnName, comment))
		}
	}
	return stmts
}

func (g *postgresGenerator) columnDefinition(c columnDef) string {
	def := g.QuoteIdent(c.name) + " " + c.dataType
	if !c.nullable {
		def += " NOT NULL"
	}
	if c.def != nil {
		def += " DEFAULT " + *c.def
	}
	return def
}

func (g *postgresGenerator) columnComment(schemaName, tableName, column string, comment *string) string {
	value := "NULL"
	if hasText(comment) {
		value = quoteLiteral(*comment)
	}
	return fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s;", g.qualified(schemaName, tableName), g.QuoteIdent(column), value)
}

func (g *postgresGenerator) createIndex(schemaName, tableName string, idx indexDef) string {
	table := g.qualified(schemaName, tableName)
	if idx.primary {
		return fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s PRIMARY KEY (%s);", table, g.QuoteIdent(idx.name), joinIdents(g, idx.columns))
	}

	var b strings.Builder
	b.WriteString("CREATE ")
	if idx.unique {
		b.WriteString("UNIQUE ")
	}
	fmt.Fprintf(&b, "INDEX %s ON %s", g.QuoteIdent(idx.name), table)
	if idx.typ != "" {
		b.WriteString(" USING " + strings.ToLower(idx.typ))
	}
	fmt.Fprintf(&b, " (%s);", joinIdents(g, idx.columns))
	return b.String()
}

func (g *postgresGenerator) dropIndex(schemaName, tableName string, idx indexDef) string {
	if idx.primary {
		return fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT IF EXISTS %s;", g.qualified(schemaName, tableName), g.QuoteIdent(idx.name))
	}
	return fmt.Sprintf("DROP INDEX IF EXISTS %s;", g.qualified(schemaName, idx.name))
}
