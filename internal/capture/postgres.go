package capture

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/schemadiff/internal/snapshot"
)

const varcharType = "varchar"

// PostgresClient manages the connection to PostgreSQL (and Kingbase, which
// speaks the same protocol)
type PostgresClient struct {
	conn *pgx.Conn
}

// NewPostgresClient creates a new PostgreSQL client
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{conn: conn}, nil
}

// Close closes the database connection
func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// GetConnection returns the underlying connection
func (c *PostgresClient) GetConnection() *pgx.Conn {
	return c.conn
}

// PostgresExtractor captures snapshots from PostgreSQL catalogs
type PostgresExtractor struct {
	client         *PostgresClient
	datasourceType string
}

// NewPostgresExtractor creates a new PostgreSQL extractor. datasourceType is
// recorded in the snapshot (TypePostgreSQL or TypeKingbase).
func NewPostgresExtractor(client *PostgresClient, datasourceType string) *PostgresExtractor {
	if datasourceType == "" {
		datasourceType = TypePostgreSQL
	}
	return &PostgresExtractor{client: client, datasourceType: datasourceType}
}

// Capture reads the requested schemas into a snapshot
func (e *PostgresExtractor) Capture(ctx context.Context, opts Options) (*snapshot.Snapshot, error) {
	return run(ctx, e, e.datasourceType, opts)
}

func (e *PostgresExtractor) databaseName(ctx context.Context) (string, error) {
	var name string
	err := e.client.GetConnection().QueryRow(ctx, "SELECT current_database()").Scan(&name)
	return name, err
}

func (e *PostgresExtractor) listSchemas(ctx context.Context) ([]string, error) {
	query := `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT IN ('pg_catalog', 'information_schema')
			AND schema_name NOT LIKE 'pg_toast%'
			AND schema_name NOT LIKE 'pg_temp%'
		ORDER BY schema_name
	`

	rows, err := e.client.GetConnection().Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (e *PostgresExtractor) listTables(ctx context.Context, schemaName string) ([]tableRef, error) {
	query := `
		SELECT c.relname, obj_description(c.oid, 'pg_class')
		FROM pg_class c
		JOIN pg_namespace n ON n.oid = c.relnamespace
		WHERE n.nspname = $1 AND c.relkind IN ('r', 'p') AND NOT c.relispartition
		ORDER BY c.relname
	`

	rows, err := e.client.GetConnection().Query(ctx, query, schemaName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []tableRef
	for rows.Next() {
		var name string
		var comment *string
		if err := rows.Scan(&name, &comment); err != nil {
			return nil, err
		}
		tables = append(tables, tableRef{name: name, comment: comment})
	}

	return tables, rows.Err()
}

// normalizePostgresType maps verbose SQL type names to commonly-used PostgreSQL equivalents
func normalizePostgresType(dataType, udtName string, charMaxLength *int32) string {
	switch dataType {
	case "timestamp with time zone":
		return "timestamptz"
	case "timestamp without time zone":
		return "timestamp"
	case "time with time zone":
		return "timetz"
	case "time without time zone":
		return "time"
	case "character varying":
		if charMaxLength != nil {
			return fmt.Sprintf("varchar(%d)", *charMaxLength)
		}
		return varcharType
	case "character":
		if charMaxLength != nil {
			return fmt.Sprintf("char(%d)", *charMaxLength)
		}
		return "char"
	case "ARRAY":
		// array udt names carry an underscore prefix: _text, _int4
		if len(udtName) > 0 && udtName[0] == '_' {
			return normalizeUdtName(udtName[1:]) + "[]"
		}
		return "array"
	case "USER-DEFINED":
		return udtName
	default:
		return dataType
	}
}

// normalizeUdtName converts PostgreSQL internal type names to more readable forms
func normalizeUdtName(udtName string) string {
	switch udtName {
	case "int4":
		return "integer"
	case "int8":
		return "bigint"
	case "int2":
		return "smallint"
	case "float4":
		return "real"
	case "float8":
		return "double precision"
	case "bool":
		return "boolean"
	default:
		return udtName
	}
}

func (e *PostgresExtractor) columns(ctx context.Context, schemaName, tableName string) ([]snapshot.Column, error) {
	query := `
		SELECT
			c.column_name,
			c.data_type,
			c.udt_name,
			c.character_maximum_length::int4,
			c.is_nullable,
			c.column_default,
			c.ordinal_position::int4,
			col_description(format('%I.%I', c.table_schema, c.table_name)::regclass, c.ordinal_position::int4)
		FROM information_schema.columns c
		WHERE c.table_schema = $1 AND c.table_name = $2
		ORDER BY c.ordinal_position
	`

	rows, err := e.client.GetConnection().Query(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []snapshot.Column
	for rows.Next() {
		var col snapshot.Column
		var dataType, udtName, nullable string
		var charMaxLength *int32
		var position int32

		if err := rows.Scan(&col.Name, &dataType, &udtName, &charMaxLength, &nullable, &col.DefaultValue, &position, &col.Comment); err != nil {
			return nil, err
		}

		col.DataType = normalizePostgresType(dataType, udtName, charMaxLength)
		col.Nullable = snapshot.Bool(nullable == "YES")
		col.Position = int(position)
		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (e *PostgresExtractor) indexes(ctx context.Context, schemaName, tableName string) ([]snapshot.Index, error) {
	query := `
		SELECT
			i.relname,
			ix.indisunique,
			ix.indisprimary,
			am.amname,
			array_agg(a.attname::text ORDER BY k.ord)
		FROM pg_index ix
		JOIN pg_class t ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_am am ON am.oid = i.relam
		JOIN pg_namespace n ON n.oid = t.relnamespace
		CROSS JOIN LATERAL unnest(ix.indkey::int2[]) WITH ORDINALITY AS k(attnum, ord)
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE n.nspname = $1 AND t.relname = $2
		GROUP BY i.relname, ix.indisunique, ix.indisprimary, am.amname
		ORDER BY i.relname
	`

	rows, err := e.client.GetConnection().Query(ctx, query, schemaName, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []snapshot.Index
	for rows.Next() {
		var idx snapshot.Index
		if err := rows.Scan(&idx.Name, &idx.IsUnique, &idx.Primary, &idx.Type, &idx.Columns); err != nil {
			return nil, err
		}
		indexes = append(indexes, idx)
	}

	return indexes, rows.Err()
}
