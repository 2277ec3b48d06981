package capture

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemadiff/internal/snapshot"
)

type fakeSource struct {
	schemas []string
	tables  map[string][]tableRef
	failOn  string
}

func (f *fakeSource) databaseName(context.Context) (string, error) { return "app", nil }

func (f *fakeSource) listSchemas(context.Context) ([]string, error) { return f.schemas, nil }

func (f *fakeSource) listTables(_ context.Context, schemaName string) ([]tableRef, error) {
	return f.tables[schemaName], nil
}

func (f *fakeSource) columns(_ context.Context, _, tableName string) ([]snapshot.Column, error) {
	if tableName == f.failOn {
		return nil, errors.New("boom")
	}
	return []snapshot.Column{{Name: "id", DataType: "integer", Nullable: snapshot.Bool(false), Position: 1}}, nil
}

func (f *fakeSource) indexes(context.Context, string, string) ([]snapshot.Index, error) {
	return nil, nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		schemas: []string{"public", "audit"},
		tables: map[string][]tableRef{
			"public": {{name: "orders"}, {name: "users", comment: snapshot.String("accounts")}, {name: "tmp_import"}},
			"audit":  {{name: "events"}},
		},
	}
}

func TestRun(t *testing.T) {
	snap, err := run(context.Background(), newFakeSource(), TypePostgreSQL, Options{Version: "v7"})
	require.NoError(t, err)

	_, err = uuid.Parse(snap.ID)
	assert.NoError(t, err)
	require.NotNil(t, snap.CapturedAt)
	assert.Equal(t, "v7", snap.Version)
	assert.Equal(t, TypePostgreSQL, snap.DatasourceType)
	assert.Equal(t, "app", snap.DatabaseName)

	require.Len(t, snap.Schemas, 2)
	assert.Equal(t, "public", snap.Schemas[0].Name)
	assert.Equal(t, 4, snap.TableCount())

	users := snap.Schemas[0].FindTable("users")
	require.NotNil(t, users)
	assert.Equal(t, "accounts", users.CommentText())
	assert.NotNil(t, users.Indexes)

	assert.NoError(t, snapshot.Validate(snap))
}

func TestRunSchemaSelection(t *testing.T) {
	snap, err := run(context.Background(), newFakeSource(), TypePostgreSQL, Options{Schemas: []string{"audit"}})
	require.NoError(t, err)
	require.Len(t, snap.Schemas, 1)
	assert.Equal(t, "audit", snap.Schemas[0].Name)
}

func TestRunPropagatesErrors(t *testing.T) {
	src := newFakeSource()
	src.failOn = "users"

	_, err := run(context.Background(), src, TypePostgreSQL, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "public")
	assert.Contains(t, err.Error(), "users")
}

func TestOptionsIncludes(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		table string
		want  bool
	}{
		{name: "no filters", table: "users", want: true},
		{name: "listed table", opts: Options{Tables: []string{"users", "orders"}}, table: "orders", want: true},
		{name: "unlisted table", opts: Options{Tables: []string{"users"}}, table: "orders", want: false},
		{name: "pattern", opts: Options{Tables: []string{"user*"}}, table: "user_roles", want: true},
		{name: "excluded", opts: Options{ExcludeTables: []string{"tmp_*"}}, table: "tmp_import", want: false},
		{name: "exclude wins", opts: Options{Tables: []string{"*"}, ExcludeTables: []string{"users"}}, table: "users", want: false},
		{name: "malformed pattern matches literally", opts: Options{Tables: []string{"a[b"}}, table: "a[b", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.includes(tt.table))
		})
	}
}

func TestRunAppliesTableFilters(t *testing.T) {
	snap, err := run(context.Background(), newFakeSource(), TypePostgreSQL, Options{
		Schemas:       []string{"public"},
		ExcludeTables: []string{"tmp_*"},
	})
	require.NoError(t, err)

	var names []string
	for _, tbl := range snap.Schemas[0].Tables {
		names = append(names, tbl.Name)
	}
	assert.Equal(t, []string{"orders", "users"}, names)
}

func TestNormalizePostgresType(t *testing.T) {
	length := int32(255)

	tests := []struct {
		name          string
		dataType      string
		udtName       string
		charMaxLength *int32
		want          string
	}{
		{name: "timestamptz", dataType: "timestamp with time zone", udtName: "timestamptz", want: "timestamptz"},
		{name: "timestamp", dataType: "timestamp without time zone", udtName: "timestamp", want: "timestamp"},
		{name: "timetz", dataType: "time with time zone", want: "timetz"},
		{name: "time", dataType: "time without time zone", want: "time"},
		{name: "varchar with length", dataType: "character varying", charMaxLength: &length, want: "varchar(255)"},
		{name: "varchar without length", dataType: "character varying", want: "varchar"},
		{name: "char with length", dataType: "character", charMaxLength: &length, want: "char(255)"},
		{name: "char without length", dataType: "character", want: "char"},
		{name: "integer array", dataType: "ARRAY", udtName: "_int4", want: "integer[]"},
		{name: "text array", dataType: "ARRAY", udtName: "_text", want: "text[]"},
		{name: "bare array", dataType: "ARRAY", want: "array"},
		{name: "enum", dataType: "USER-DEFINED", udtName: "order_status", want: "order_status"},
		{name: "passthrough", dataType: "integer", udtName: "int4", want: "integer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePostgresType(tt.dataType, tt.udtName, tt.charMaxLength))
		})
	}
}

func TestNormalizeUdtName(t *testing.T) {
	for in, want := range map[string]string{
		"int2": "smallint", "int4": "integer", "int8": "bigint",
		"float4": "real", "float8": "double precision", "bool": "boolean",
		"uuid": "uuid",
	} {
		assert.Equal(t, want, normalizeUdtName(in), in)
	}
}

func TestNonEmpty(t *testing.T) {
	assert.Nil(t, nonEmpty(""))
	assert.Equal(t, "x", *nonEmpty("x"))
}
