package migration

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemadiff/internal/diff"
	"github.com/tordrt/schemadiff/internal/snapshot"
)

// mysqlGenerator renders MySQL DDL. A schema maps to a MySQL database.
type mysqlGenerator struct{}

func (g *mysqlGenerator) Dialect() string { return DialectMySQL }

func (g *mysqlGenerator) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (g *mysqlGenerator) qualified(schemaName, name string) string {
	return g.QuoteIdent(schemaName) + "." + g.QuoteIdent(name)
}

func (g *mysqlGenerator) CreateSchema(schemaName string) []string {
	return []string{fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s;", g.QuoteIdent(schemaName))}
}

func (g *mysqlGenerator) DropSchema(schemaName string) []string {
	return []string{fmt.Sprintf("DROP DATABASE IF EXISTS %s;", g.QuoteIdent(schemaName))}
}

func (g *mysqlGenerator) CreateTable(schemaName string, table snapshot.Table) []string {
	var defs []string
	for _, c := range table.Columns {
		defs = append(defs, "  "+g.columnDefinition(columnFromSnapshot(c)))
	}
	for _, idx := range table.Indexes {
		defs = append(defs, "  "+g.inlineIndex(indexFromSnapshot(idx)))
	}

	stmt := fmt.Sprintf("CREATE TABLE %s (\n%s\n)", g.qualified(schemaName, table.Name), strings.Join(defs, ",\n"))
	if hasText(table.Comment) {
		stmt += " COMMENT=" + quoteLiteral(*table.Comment)
	}
	return []string{stmt + ";"}
}

func (g *mysqlGenerator) DropTable(schemaName, tableName string) []string {
	return []string{fmt.Sprintf("DROP TABLE IF EXISTS %s;", g.qualified(schemaName, tableName))}
}

func (g *mysqlGenerator) AlterTable(schemaName string, mt diff.ModifiedTable, target *snapshot.Table) []string {
	table := g.qualified(schemaName, mt.TableName)
	var stmts []string

	if mt.CommentChanged {
		comment := ""
		if mt.NewComment != nil {
			comment = *mt.NewComment
		}
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s COMMENT = %s;", table, quoteLiteral(comment)))
	}

	for _, idx := range mt.RemovedIndexes {
		stmts = append(stmts, g.dropIndex(table, indexFromInfo(idx)))
	}
	modifiedIndexes := modifiedIndexDefs(mt, target)
	for _, idx := range modifiedIndexes {
		stmts = append(stmts, g.dropIndex(table, idx))
	}

	for _, c := range mt.AddedColumns {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", table, g.columnDefinition(columnFromInfo(c))))
	}
	for _, c := range mt.RemovedColumns {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", table, g.QuoteIdent(c.ColumnName)))
	}
	// MODIFY COLUMN restates the whole definition, taken from the target table
	for _, c := range mt.ModifiedColumns {
		if target == nil {
			continue
		}
		if col := target.FindColumn(c.ColumnName); col != nil {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s;", table, g.columnDefinition(columnFromSnapshot(*col))))
		}
	}

	for _, idx := range mt.AddedIndexes {
		stmts = append(stmts, g.createIndex(table, indexFromInfo(idx)))
	}
	for _, idx := range modifiedIndexes {
		stmts = append(stmts, g.createIndex(table, idx))
	}

	return stmts
}

func (g *mysqlGenerator) columnDefinition(c columnDef) string {
	def := g.QuoteIdent(c.name) + " " + c.dataType
	if c.nullable {
		def += " NULL"
	} else {
		def += " NOT NULL"
	}
	if c.def != nil {
		def += " DEFAULT " + *c.def
	}
	if hasText(c.comment) {
		def += " COMMENT " + quoteLiteral(*c.comment)
	}
	return def
}

// indexKind maps an access method to the CREATE keyword and USING clause
func indexKind(idx indexDef) (keyword, using string) {
	switch strings.ToUpper(idx.typ) {
	case "FULLTEXT":
		return "FULLTEXT ", ""
	case "SPATIAL":
		return "SPATIAL ", ""
	case "BTREE", "HASH":
		using = " USING " + strings.ToUpper(idx.typ)
	}
	if idx.unique {
		keyword = "UNIQUE "
	}
	return keyword, using
}

func (g *mysqlGenerator) inlineIndex(idx indexDef) string {
	if idx.primary {
		return fmt.Sprintf("PRIMARY KEY (%s)", joinIdents(g, idx.columns))
	}
	keyword, using := indexKind(idx)
	return fmt.Sprintf("%sKEY %s (%s)%s", keyword, g.QuoteIdent(idx.name), joinIdents(g, idx.columns), using)
}

func (g *mysqlGenerator) createIndex(table string, idx indexDef) string {
	if idx.primary {
		return fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s);", table, joinIdents(g, idx.columns))
	}
	keyword, using := indexKind(idx)
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)%s;", keyword, g.QuoteIdent(idx.name), table, joinIdents(g, idx.columns), using)
}

func (g *mysqlGenerator) dropIndex(table string, idx indexDef) string {
	if idx.primary {
		return fmt.Sprintf("ALTER TABLE %s DROP PRIMARY KEY;", table)
	}
	return fmt.Sprintf("DROP INDEX %s ON %s;", g.QuoteIdent(idx.name), table)
}
