package capture

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/tordrt/schemadiff/internal/snapshot"
)

// MySQLClient manages the connection to MySQL
type MySQLClient struct {
	db *sql.DB
}

// NewMySQLClient creates a new MySQL client
func NewMySQLClient(ctx context.Context, connString string) (*MySQLClient, error) {
	db, err := sql.Open("mysql", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &MySQLClient{db: db}, nil
}

// Close closes the database connection
func (c *MySQLClient) Close() error {
	return c.db.Close()
}

// GetDB returns the underlying database connection
func (c *MySQLClient) GetDB() *sql.DB {
	return c.db
}

// MySQLExtractor captures snapshots from MySQL. A MySQL database is a
// schema; without Options.Schemas the connected database is captured.
type MySQLExtractor struct {
	client *MySQLClient
}

// NewMySQLExtractor creates a new MySQL extractor
func NewMySQLExtractor(client *MySQLClient) *MySQLExtractor {
	return &MySQLExtractor{client: client}
}

// Capture reads the requested databases into a snapshot
func (e *MySQLExtractor) Capture(ctx context.Context, opts Options) (*snapshot.Snapshot, error) {
	return run(ctx, e, TypeMySQL, opts)
}

func (e *MySQLExtractor) databaseName(ctx context.Context) (string, error) {
	var name sql.NullString
	if err := e.client.GetDB().QueryRowContext(ctx, "SELECT DATABASE()").Scan(&name); err != nil {
		return "", err
	}
	return name.String, nil
}

func (e *MySQLExtractor) listSchemas(ctx context.Context) ([]string, error) {
	name, err := e.databaseName(ctx)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("no database selected in connection string")
	}
	return []string{name}, nil
}

func (e *MySQLExtractor) listTables(ctx context.Context, schemaName string) ([]tableRef, error) {
	query := `
		SELECT table_name, COALESCE(table_comment, '')
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []tableRef
	for rows.Next() {
		var name, comment string
		if err := rows.Scan(&name, &comment); err != nil {
			return nil, err
		}
		tables = append(tables, tableRef{name: name, comment: nonEmpty(comment)})
	}

	return tables, rows.Err()
}

func (e *MySQLExtractor) columns(ctx context.Context, schemaName, tableName string) ([]snapshot.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable,
			c.column_default,
			c.ordinal_position,
			COALESCE(c.column_comment, '')
		FROM information_schema.columns c
		WHERE c.table_schema = ? AND c.table_name = ?
		ORDER BY c.ordinal_position
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []snapshot.Column
	for rows.Next() {
		var col snapshot.Column
		var nullable, comment string
		var defaultVal sql.NullString

		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &defaultVal, &col.Position, &comment); err != nil {
			return nil, err
		}

		col.Nullable = snapshot.Bool(nullable == "YES")
		if defaultVal.Valid {
			col.DefaultValue = &defaultVal.String
		}
		col.Comment = nonEmpty(comment)
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (e *MySQLExtractor) indexes(ctx context.Context, schemaName, tableName string) ([]snapshot.Index, error) {
	query := `
		SELECT
			s.index_name,
			MIN(s.non_unique) = 0 AS is_unique,
			MAX(s.index_type),
			GROUP_CONCAT(s.column_name ORDER BY s.seq_in_index SEPARATOR ',') AS column_names
		FROM information_schema.statistics s
		WHERE s.table_schema = ? AND s.table_name = ?
		GROUP BY s.index_name
		ORDER BY s.index_name
	`

	rows, err := e.client.GetDB().QueryContext(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []snapshot.Index
	for rows.Next() {
		var idx snapshot.Index
		var isUnique int
		var columnNames sql.NullString

		if err := rows.Scan(&idx.Name, &isUnique, &idx.Type, &columnNames); err != nil {
			return nil, err
		}
		// functional key parts have no column name
		if !columnNames.Valid || columnNames.String == "" {
			continue
		}

		idx.IsUnique = isUnique == 1
		idx.Primary = idx.Name == "PRIMARY"
		idx.Columns = strings.Split(columnNames.String, ",")
		indexes = append(indexes, idx)
	}

	return indexes, rows.Err()
}
