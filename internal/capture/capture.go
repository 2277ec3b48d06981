// Package capture reads the live catalog of a database into a snapshot.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/tordrt/schemadiff/internal/snapshot"
)

// Datasource type names recorded in captured snapshots
const (
	TypePostgreSQL = "postgresql"
	TypeKingbase   = "kingbase"
	TypeMySQL      = "mysql"
	TypeSQLite     = "sqlite"
)

// Options narrows what is captured
type Options struct {
	// Schemas to capture. Empty means every user schema.
	Schemas []string
	// Tables restricts capture to matching table names (path.Match patterns).
	Tables []string
	// ExcludeTables drops matching table names (path.Match patterns).
	ExcludeTables []string
	// Version is the label stored in the snapshot
	Version string
}

// Extractor captures a snapshot from one database
type Extractor interface {
	Capture(ctx context.Context, opts Options) (*snapshot.Snapshot, error)
}

// tableRef is a table name plus its catalog comment
type tableRef struct {
	name    string
	comment *string
}

// source is the catalog access a dialect provides
type source interface {
	databaseName(ctx context.Context) (string, error)
	listSchemas(ctx context.Context) ([]string, error)
	listTables(ctx context.Context, schemaName string) ([]tableRef, error)
	columns(ctx context.Context, schemaName, tableName string) ([]snapshot.Column, error)
	indexes(ctx context.Context, schemaName, tableName string) ([]snapshot.Index, error)
}

// run walks schemas and tables of src and assembles the snapshot
func run(ctx context.Context, src source, datasourceType string, opts Options) (*snapshot.Snapshot, error) {
	dbName, err := src.databaseName(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get database name: %w", err)
	}

	schemaNames := opts.Schemas
	if len(schemaNames) == 0 {
		schemaNames, err = src.listSchemas(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list schemas: %w", err)
		}
	}

	now := time.Now().UTC()
	snap := &snapshot.Snapshot{
		ID:             uuid.NewString(),
		Version:        opts.Version,
		DatasourceType: datasourceType,
		DatabaseName:   dbName,
		CapturedAt:     &now,
		Schemas:        make([]snapshot.Schema, 0, len(schemaNames)),
	}

	for _, schemaName := range schemaNames {
		sch, err := captureSchema(ctx, src, schemaName, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to capture schema %s: %w", schemaName, err)
		}
		snap.Schemas = append(snap.Schemas, *sch)
	}

	slog.Debug("captured snapshot",
		"datasource", datasourceType,
		"database", dbName,
		"schemas", len(snap.Schemas),
		"tables", snap.TableCount())

	return snap, nil
}

func captureSchema(ctx context.Context, src source, schemaName string, opts Options) (*snapshot.Schema, error) {
	refs, err := src.listTables(ctx, schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to get table names: %w", err)
	}

	sch := &snapshot.Schema{Name: schemaName, Tables: []snapshot.Table{}}
	for _, ref := range refs {
		if !opts.includes(ref.name) {
			continue
		}

		table := snapshot.Table{Name: ref.name, Comment: ref.comment}

		table.Columns, err = src.columns(ctx, schemaName, ref.name)
		if err != nil {
			return nil, fmt.Errorf("failed to extract columns of %s: %w", ref.name, err)
		}
		table.Indexes, err = src.indexes(ctx, schemaName, ref.name)
		if err != nil {
			return nil, fmt.Errorf("failed to extract indexes of %s: %w", ref.name, err)
		}
		if table.Columns == nil {
			table.Columns = []snapshot.Column{}
		}
		if table.Indexes == nil {
			table.Indexes = []snapshot.Index{}
		}

		sch.Tables = append(sch.Tables, table)
	}

	slog.Debug("captured schema", "schema", schemaName, "tables", len(sch.Tables))
	return sch, nil
}

// includes applies the Tables and ExcludeTables filters
func (o Options) includes(table string) bool {
	if len(o.Tables) > 0 && !matchAny(o.Tables, table) {
		return false
	}
	return !matchAny(o.ExcludeTables, table)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, err := path.Match(p, name); err == nil && ok {
			return true
		}
		if p == name {
			return true
		}
	}
	return false
}

// nonEmpty turns the empty comment catalogs report for "no comment" into nil
func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
