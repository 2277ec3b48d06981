package migration

import (
	"fmt"
	"strings"

	"github.com/tordrt/schemadiff/internal/diff"
	"github.com/tordrt/schemadiff/internal/snapshot"
)

const noDifferences = "-- No differences found"

// Generate renders the migration script for result. Added entities are
// created from their definitions in to; from only contributes header
// metadata and may be nil. The script carries no timestamp, so the same
// inputs always produce the same text.
func Generate(result *diff.CompareResult, from, to *snapshot.Snapshot, dialect string) (string, error) {
	if result == nil {
		return "", fmt.Errorf("no comparison result")
	}
	if result.Error != "" {
		return "", fmt.Errorf("cannot generate migration from failed comparison: %s", result.Error)
	}

	g, err := NewGenerator(dialect)
	if err != nil {
		return "", err
	}

	s := &script{gen: g}
	s.header(result, from, to)

	if result.IsEmpty() {
		s.line(noDifferences)
		return s.String(), nil
	}

	for _, info := range result.AddedSchemas {
		if err := s.addedSchema(info, to); err != nil {
			return "", err
		}
	}
	for _, info := range result.RemovedSchemas {
		s.removedSchema(info)
	}
	for _, sc := range result.ModifiedSchemas {
		if err := s.modifiedSchema(sc, to); err != nil {
			return "", err
		}
	}

	return s.String(), nil
}

type script struct {
	gen Generator
	b   strings.Builder
}

func (s *script) String() string { return s.b.String() }

func (s *script) line(text string) {
	s.b.WriteString(text)
	s.b.WriteByte('\n')
}

func (s *script) statements(stmts []string) {
	for _, stmt := range stmts {
		s.line(stmt)
	}
}

func (s *script) header(result *diff.CompareResult, from, to *snapshot.Snapshot) {
	s.line(fmt.Sprintf("-- Schema migration: %s -> %s", label(result.FromVersion), label(result.ToVersion)))
	s.line("-- Dialect: " + s.gen.Dialect())
	if from != nil && from.DatabaseName != "" {
		s.line("-- Source database: " + from.DatabaseName)
	}
	if to != nil && to.DatabaseName != "" {
		s.line("-- Target database: " + to.DatabaseName)
	}
	s.line("")
}

func (s *script) addedSchema(info diff.SchemaInfo, to *snapshot.Snapshot) error {
	sch, err := findSchema(to, info.SchemaName)
	if err != nil {
		return err
	}

	s.line("-- Added schema: " + info.SchemaName)
	s.statements(s.gen.CreateSchema(info.SchemaName))
	for _, t := range info.Tables {
		table := sch.FindTable(t.TableName)
		if table == nil {
			return fmt.Errorf("table %s.%s not found in target snapshot", info.SchemaName, t.TableName)
		}
		s.statements(s.gen.CreateTable(info.SchemaName, *table))
	}
	s.line("")
	return nil
}

func (s *script) removedSchema(info diff.SchemaInfo) {
	s.line("-- Removed schema: " + info.SchemaName)
	for _, t := range info.Tables {
		s.statements(s.gen.DropTable(info.SchemaName, t.TableName))
	}
	s.statements(s.gen.DropSchema(info.SchemaName))
	s.line("")
}

func (s *script) modifiedSchema(sc diff.SchemaChanges, to *snapshot.Snapshot) error {
	sch, err := findSchema(to, sc.SchemaName)
	if err != nil {
		return err
	}

	s.line("-- Modified schema: " + sc.SchemaName)

	for _, t := range sc.AddedTables {
		table := sch.FindTable(t.TableName)
		if table == nil {
			return fmt.Errorf("table %s.%s not found in target snapshot", sc.SchemaName, t.TableName)
		}
		s.line("-- Create table " + t.TableName)
		s.statements(s.gen.CreateTable(sc.SchemaName, *table))
	}
	for _, t := range sc.RemovedTables {
		s.line("-- Drop table " + t.TableName)
		s.statements(s.gen.DropTable(sc.SchemaName, t.TableName))
	}
	for _, mt := range sc.ModifiedTables {
		s.line("-- Alter table " + mt.TableName)
		s.statements(s.gen.AlterTable(sc.SchemaName, mt, sch.FindTable(mt.TableName)))
	}

	s.line("")
	return nil
}

func findSchema(snap *snapshot.Snapshot, name string) (*snapshot.Schema, error) {
	if snap == nil {
		return nil, fmt.Errorf("target snapshot is required to create schema %s", name)
	}
	sch := snap.FindSchema(name)
	if sch == nil {
		return nil, fmt.Errorf("schema %s not found in target snapshot", name)
	}
	return sch, nil
}

func label(v string) string {
	if v == "" {
		return "?"
	}
	return v
}
