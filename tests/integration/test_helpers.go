//go:build integration
// +build integration

package integration

import (
	"testing"

	"github.com/tordrt/schemadiff"
	"github.com/tordrt/schemadiff/internal/snapshot"
)

// findSchema returns the named schema of a snapshot
func findSchema(t *testing.T, s *schemadiff.Snapshot, name string) *snapshot.Schema {
	t.Helper()

	sch := s.FindSchema(name)
	if sch == nil {
		t.Fatalf("Schema %s not found in snapshot", name)
	}
	return sch
}

// verifyTablesExist checks that all expected tables are present in the schema
func verifyTablesExist(t *testing.T, s *snapshot.Schema, expectedTables []string) {
	t.Helper()

	if len(s.Tables) != len(expectedTables) {
		t.Errorf("Expected %d tables, got %d", len(expectedTables), len(s.Tables))
	}

	for _, tableName := range expectedTables {
		if s.FindTable(tableName) == nil {
			t.Errorf("Expected table %s not found in schema %s", tableName, s.Name)
		}
	}
}

// verifyColumns checks that expected columns exist in a table
func verifyColumns(t *testing.T, table *snapshot.Table, expectedColumns []string) {
	t.Helper()

	for _, colName := range expectedColumns {
		if table.FindColumn(colName) == nil {
			t.Errorf("Expected column %s not found in %s table", colName, table.Name)
		}
	}
}

// verifyPrimaryKey checks that a table has a primary index on the expected columns
func verifyPrimaryKey(t *testing.T, table *snapshot.Table, expectedPK []string) {
	t.Helper()

	for _, idx := range table.Indexes {
		if idx.Primary {
			if !equalColumns(idx.Columns, expectedPK) {
				t.Errorf("Expected primary key %v, got %v", expectedPK, idx.Columns)
			}
			return
		}
	}

	t.Errorf("No primary key index found on table %s", table.Name)
}

// verifyIndex checks that an index exists with the expected columns
func verifyIndex(t *testing.T, table *snapshot.Table, indexName string, expectedColumns []string) {
	t.Helper()

	idx := table.FindIndex(indexName)
	if idx == nil {
		t.Errorf("Expected index %s on %s table not found", indexName, table.Name)
		return
	}
	if !equalColumns(idx.Columns, expectedColumns) {
		t.Errorf("Expected index %s on %v, got %v", indexName, expectedColumns, idx.Columns)
	}
}

// verifyNoDifferences compares a snapshot with a second capture of the same
// database and fails on any reported change
func verifyNoDifferences(t *testing.T, a, b *schemadiff.Snapshot) {
	t.Helper()

	result, err := schemadiff.Compare(a, b)
	if err != nil {
		t.Fatalf("Failed to compare snapshots: %v", err)
	}
	if !result.IsEmpty() {
		data, _ := schemadiff.MarshalResult(result)
		t.Errorf("Expected no differences between captures, got:\n%s", data)
	}
}

// verifyDetectsChanges drops a column and a table from a copy of s and checks
// that comparing the copy against s reports them as added
func verifyDetectsChanges(t *testing.T, s *schemadiff.Snapshot, schemaName, tableName, columnName, droppedTable string) {
	t.Helper()

	older := s.Clone()
	sch := older.FindSchema(schemaName)
	if sch == nil {
		t.Fatalf("Schema %s not found", schemaName)
	}

	kept := sch.Tables[:0]
	for _, table := range sch.Tables {
		if table.Name != droppedTable {
			kept = append(kept, table)
		}
	}
	sch.Tables = kept

	table := sch.FindTable(tableName)
	if table == nil {
		t.Fatalf("Table %s not found", tableName)
	}
	cols := table.Columns[:0]
	for _, col := range table.Columns {
		if col.Name != columnName {
			cols = append(cols, col)
		}
	}
	table.Columns = cols

	result, err := schemadiff.Compare(older, s)
	if err != nil {
		t.Fatalf("Failed to compare snapshots: %v", err)
	}

	if len(result.ModifiedSchemas) != 1 {
		t.Fatalf("Expected 1 modified schema, got %d", len(result.ModifiedSchemas))
	}
	sc := result.ModifiedSchemas[0]

	if len(sc.AddedTables) != 1 || sc.AddedTables[0].TableName != droppedTable {
		t.Errorf("Expected added table %s, got %v", droppedTable, sc.AddedTables)
	}
	if len(sc.ModifiedTables) != 1 || sc.ModifiedTables[0].TableName != tableName {
		t.Fatalf("Expected modified table %s, got %v", tableName, sc.ModifiedTables)
	}
	added := sc.ModifiedTables[0].AddedColumns
	if len(added) != 1 || added[0].ColumnName != columnName {
		t.Errorf("Expected added column %s, got %v", columnName, added)
	}
}

func equalColumns(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
