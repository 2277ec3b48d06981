package capture

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tordrt/schemadiff/internal/snapshot"
)

// SQLiteSchema is the only schema of a SQLite database
const SQLiteSchema = "main"

// SQLiteClient manages the connection to SQLite
type SQLiteClient struct {
	db   *sql.DB
	path string
}

// NewSQLiteClient creates a new SQLite client
func NewSQLiteClient(ctx context.Context, path string) (*SQLiteClient, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteClient{db: db, path: path}, nil
}

// Close closes the database connection
func (c *SQLiteClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *SQLiteClient) GetDB() *sql.DB {
	return c.db
}

// SQLiteExtractor captures snapshots from SQLite
type SQLiteExtractor struct {
	client *SQLiteClient
}

// NewSQLiteExtractor creates a new SQLite extractor
func NewSQLiteExtractor(client *SQLiteClient) *SQLiteExtractor {
	return &SQLiteExtractor{client: client}
}

// Capture reads the database into a single-schema snapshot
func (e *SQLiteExtractor) Capture(ctx context.Context, opts Options) (*snapshot.Snapshot, error) {
	opts.Schemas = []string{SQLiteSchema}
	return run(ctx, e, TypeSQLite, opts)
}

func (e *SQLiteExtractor) databaseName(context.Context) (string, error) {
	base := filepath.Base(e.client.path)
	return strings.TrimSuffix(base, filepath.Ext(base)), nil
}

func (e *SQLiteExtractor) listSchemas(context.Context) ([]string, error) {
	return []string{SQLiteSchema}, nil
}

func (e *SQLiteExtractor) listTables(ctx context.Context, _ string) ([]tableRef, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []tableRef
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, tableRef{name: name})
	}

	return tables, rows.Err()
}

func (e *SQLiteExtractor) columns(ctx context.Context, _, tableName string) ([]snapshot.Column, error) {
	rows, err := e.client.GetDB().QueryContext(ctx, "PRAGMA table_info("+quoteSQLite(tableName)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []snapshot.Column
	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultValue, &pk); err != nil {
			return nil, err
		}

		col := snapshot.Column{
			Name:     name,
			DataType: colType,
			Nullable: snapshot.Bool(notNull == 0),
			Position: cid + 1,
		}
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (e *SQLiteExtractor) indexes(ctx context.Context, _, tableName string) ([]snapshot.Index, error) {
	rows, err := e.client.GetDB().QueryContext(ctx, "PRAGMA index_list("+quoteSQLite(tableName)+")")
	if err != nil {
		return nil, err
	}

	type indexRef struct {
		name    string
		unique  bool
		primary bool
	}

	var refs []indexRef
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string

		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			_ = rows.Close()
			return nil, err
		}
		// auto-generated names for inline UNIQUE constraints are not stable
		if strings.HasPrefix(name, "sqlite_autoindex") && origin != "pk" {
			continue
		}
		refs = append(refs, indexRef{name: name, unique: unique == 1, primary: origin == "pk"})
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	var indexes []snapshot.Index
	for _, ref := range refs {
		columns, err := e.indexColumns(ctx, ref.name)
		if err != nil {
			return nil, fmt.Errorf("failed to read index %s: %w", ref.name, err)
		}
		if len(columns) == 0 {
			continue
		}
		indexes = append(indexes, snapshot.Index{
			Name:     ref.name,
			IsUnique: ref.unique,
			Primary:  ref.primary,
			Columns:  columns,
		})
	}

	// PRAGMA index_list returns most recent first
	slices.SortFunc(indexes, func(a, b snapshot.Index) int {
		return strings.Compare(a.Name, b.Name)
	})
	return indexes, nil
}

func (e *SQLiteExtractor) indexColumns(ctx context.Context, indexName string) ([]string, error) {
	rows, err := e.client.GetDB().QueryContext(ctx, "PRAGMA index_info("+quoteSQLite(indexName)+")")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var colName sql.NullString

		if err := rows.Scan(&seqno, &cid, &colName); err != nil {
			return nil, err
		}
		// expression key parts have no name
		if colName.Valid {
			columns = append(columns, colName.String)
		}
	}

	return columns, rows.Err()
}

func quoteSQLite(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
