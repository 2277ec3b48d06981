package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemadiff/internal/diff"
	"github.com/tordrt/schemadiff/internal/snapshot"
)

func usersTable() snapshot.Table {
	return snapshot.Table{
		Name: "users",
		Columns: []snapshot.Column{
			{Name: "id", DataType: "integer", Nullable: snapshot.Bool(false), Position: 1},
			{Name: "email", DataType: "text", Nullable: snapshot.Bool(true), Position: 2},
		},
		Indexes: []snapshot.Index{
			{Name: "users_pkey", IsUnique: true, Primary: true, Columns: []string{"id"}},
		},
	}
}

func ordersTable() snapshot.Table {
	return snapshot.Table{
		Name:    "orders",
		Comment: snapshot.String("customer's orders"),
		Columns: []snapshot.Column{
			{Name: "id", DataType: "bigint", Nullable: snapshot.Bool(false), Position: 1},
			{Name: "status", DataType: "varchar(20)", DefaultValue: snapshot.String("'new'"), Comment: snapshot.String("state"), Position: 2},
		},
		Indexes: []snapshot.Index{
			{Name: "orders_pkey", IsUnique: true, Primary: true, Columns: []string{"id"}},
			{Name: "idx_status", Columns: []string{"status"}, Type: "btree"},
		},
	}
}

func snap(version string, tables ...snapshot.Table) *snapshot.Snapshot {
	return &snapshot.Snapshot{Version: version, Schemas: []snapshot.Schema{{Name: "public", Tables: tables}}}
}

func generate(t *testing.T, from, to *snapshot.Snapshot, dialect string) string {
	t.Helper()
	result, err := diff.Compare(from, to)
	require.NoError(t, err)
	script, err := Generate(result, from, to, dialect)
	require.NoError(t, err)
	return script
}

func TestGenerateNoDifferences(t *testing.T) {
	for _, dialect := range []string{DialectMySQL, DialectPostgreSQL, DialectKingbase} {
		t.Run(dialect, func(t *testing.T) {
			script := generate(t, snap("v1", usersTable()), snap("v2", usersTable()), dialect)
			assert.Equal(t, "-- Schema migration: v1 -> v2\n-- Dialect: "+dialect+"\n\n-- No differences found\n", script)
		})
	}
}

func TestGenerateAddedTable(t *testing.T) {
	from := snap("v1", usersTable())
	to := snap("v2", usersTable(), ordersTable())

	t.Run("postgresql", func(t *testing.T) {
		script := generate(t, from, to, DialectPostgreSQL)
		assert.Contains(t, script, "-- Create table orders\n")
		assert.Contains(t, script, `CREATE TABLE "public"."orders" (
  "id" bigint NOT NULL,
  "status" varchar(20) DEFAULT 'new',
  CONSTRAINT "orders_pkey" PRIMARY KEY ("id")
);`)
		assert.Contains(t, script, `COMMENT ON TABLE "public"."orders" IS 'customer''s orders';`)
		assert.Contains(t, script, `COMMENT ON COLUMN "public"."orders"."status" IS 'state';`)
		assert.Contains(t, script, `CREATE INDEX "idx_status" ON "public"."orders" USING btree ("status");`)
		assert.NotContains(t, script, "users")
	})

	t.Run("mysql", func(t *testing.T) {
		script := generate(t, from, to, DialectMySQL)
		assert.Contains(t, script, "CREATE TABLE `public`.`orders` (\n"+
			"  `id` bigint NOT NULL,\n"+
			"  `status` varchar(20) NULL DEFAULT 'new' COMMENT 'state',\n"+
			"  PRIMARY KEY (`id`),\n"+
			"  KEY `idx_status` (`status`) USING BTREE\n"+
			") COMMENT='customer''s orders';")
	})
}

func TestGenerateNullabilityChange(t *testing.T) {
	to := usersTable()
	to.Columns[1].Nullable = snapshot.Bool(false)

	t.Run("postgresql", func(t *testing.T) {
		script := generate(t, snap("v1", usersTable()), snap("v2", to), DialectPostgreSQL)
		assert.Contains(t, script, `ALTER TABLE "public"."users" ALTER COLUMN "email" SET NOT NULL;`)
		assert.NotContains(t, script, " TYPE ")
	})

	t.Run("kingbase", func(t *testing.T) {
		script := generate(t, snap("v1", usersTable()), snap("v2", to), DialectKingbase)
		assert.Contains(t, script, "-- Dialect: kingbase\n")
		assert.Contains(t, script, `ALTER TABLE "public"."users" ALTER COLUMN "email" SET NOT NULL;`)
	})

	t.Run("mysql", func(t *testing.T) {
		script := generate(t, snap("v1", usersTable()), snap("v2", to), DialectMySQL)
		assert.Contains(t, script, "ALTER TABLE `public`.`users` MODIFY COLUMN `email` text NOT NULL;")
	})
}

func TestGenerateIndexColumnOrderChange(t *testing.T) {
	from := usersTable()
	from.Indexes = append(from.Indexes, snapshot.Index{Name: "idx_name", Columns: []string{"last_name", "first_name"}})
	to := usersTable()
	to.Indexes = append(to.Indexes, snapshot.Index{Name: "idx_name", Columns: []string{"first_name", "last_name"}})

	t.Run("postgresql", func(t *testing.T) {
		script := generate(t, snap("v1", from), snap("v2", to), DialectPostgreSQL)
		drop := strings.Index(script, `DROP INDEX IF EXISTS "public"."idx_name";`)
		create := strings.Index(script, `CREATE INDEX "idx_name" ON "public"."users" ("first_name", "last_name");`)
		require.NotEqual(t, -1, drop)
		require.NotEqual(t, -1, create)
		assert.Less(t, drop, create)
	})

	t.Run("mysql", func(t *testing.T) {
		script := generate(t, snap("v1", from), snap("v2", to), DialectMySQL)
		drop := strings.Index(script, "DROP INDEX `idx_name` ON `public`.`users`;")
		create := strings.Index(script, "CREATE INDEX `idx_name` ON `public`.`users` (`first_name`, `last_name`);")
		require.NotEqual(t, -1, drop)
		require.NotEqual(t, -1, create)
		assert.Less(t, drop, create)
	})
}

func TestGeneratePostgresColumnChanges(t *testing.T) {
	from := ordersTable()
	to := ordersTable()
	to.Comment = nil
	to.Columns[1] = snapshot.Column{Name: "status", DataType: "text", Nullable: snapshot.Bool(false), Position: 2}
	to.Columns = append(to.Columns, snapshot.Column{Name: "note", DataType: "text", Comment: snapshot.String("free text"), Position: 3})
	to.Indexes = to.Indexes[:1]
	from.Columns = append(from.Columns, snapshot.Column{Name: "legacy", DataType: "int", Position: 3})

	script := generate(t, snap("v1", from), snap("v2", to), DialectPostgreSQL)

	for _, stmt := range []string{
		`COMMENT ON TABLE "public"."orders" IS NULL;`,
		`DROP INDEX IF EXISTS "public"."idx_status";`,
		`ALTER TABLE "public"."orders" ADD COLUMN "note" text;`,
		`COMMENT ON COLUMN "public"."orders"."note" IS 'free text';`,
		`ALTER TABLE "public"."orders" DROP COLUMN "legacy";`,
		`ALTER TABLE "public"."orders" ALTER COLUMN "status" TYPE text;`,
		`ALTER TABLE "public"."orders" ALTER COLUMN "status" SET NOT NULL;`,
		`ALTER TABLE "public"."orders" ALTER COLUMN "status" DROP DEFAULT;`,
		`COMMENT ON COLUMN "public"."orders"."status" IS NULL;`,
	} {
		assert.Contains(t, script, stmt)
	}
}

func TestGenerateSchemaLevel(t *testing.T) {
	from := &snapshot.Snapshot{Version: "v1", Schemas: []snapshot.Schema{
		{Name: "public", Tables: []snapshot.Table{usersTable()}},
		{Name: "legacy", Tables: []snapshot.Table{ordersTable()}},
	}}
	to := &snapshot.Snapshot{Version: "v2", Schemas: []snapshot.Schema{
		{Name: "public", Tables: []snapshot.Table{usersTable()}},
		{Name: "billing", Tables: []snapshot.Table{ordersTable()}},
	}}

	script := generate(t, from, to, DialectPostgreSQL)

	added := strings.Index(script, `CREATE SCHEMA IF NOT EXISTS "billing";`)
	table := strings.Index(script, `CREATE TABLE "billing"."orders"`)
	dropTable := strings.Index(script, `DROP TABLE IF EXISTS "legacy"."orders" CASCADE;`)
	dropSchema := strings.Index(script, `DROP SCHEMA IF EXISTS "legacy" CASCADE;`)

	require.NotEqual(t, -1, added)
	require.NotEqual(t, -1, table)
	require.NotEqual(t, -1, dropTable)
	require.NotEqual(t, -1, dropSchema)
	assert.Less(t, added, table)
	assert.Less(t, dropTable, dropSchema)

	mysqlScript := generate(t, from, to, DialectMySQL)
	assert.Contains(t, mysqlScript, "CREATE DATABASE IF NOT EXISTS `billing`;")
	assert.Contains(t, mysqlScript, "DROP DATABASE IF EXISTS `legacy`;")
}

func TestGenerateIsDeterministic(t *testing.T) {
	from := snap("v1", usersTable())
	to := snap("v2", usersTable(), ordersTable())

	first := generate(t, from, to, DialectMySQL)
	second := generate(t, from, to, DialectMySQL)
	assert.Equal(t, first, second)
}

func TestGenerateErrors(t *testing.T) {
	result, err := diff.Compare(snap("v1"), snap("v2", ordersTable()))
	require.NoError(t, err)

	_, err = Generate(result, nil, nil, DialectPostgreSQL)
	assert.Error(t, err)

	_, err = Generate(result, nil, snap("v2", ordersTable()), "oracle")
	assert.ErrorContains(t, err, "unsupported dialect")

	_, err = Generate(diff.ErrorResult("v1", "v2", assert.AnError), nil, nil, DialectMySQL)
	assert.Error(t, err)

	_, err = Generate(nil, nil, nil, DialectMySQL)
	assert.Error(t, err)
}

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		dialect string
		want    string
		quoted  string
	}{
		{dialect: "mysql", want: DialectMySQL, quoted: "`we``ird`"},
		{dialect: "MySQL", want: DialectMySQL, quoted: "`we``ird`"},
		{dialect: "postgresql", want: DialectPostgreSQL, quoted: `"we` + "`" + `ird"`},
		{dialect: "postgres", want: DialectPostgreSQL, quoted: `"we` + "`" + `ird"`},
		{dialect: "kingbase", want: DialectKingbase, quoted: `"we` + "`" + `ird"`},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			g, err := NewGenerator(tt.dialect)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Dialect())
			assert.Equal(t, tt.quoted, g.QuoteIdent("we`ird"))
		})
	}

	pg, err := NewGenerator(DialectPostgreSQL)
	require.NoError(t, err)
	assert.Equal(t, `"a""b"`, pg.QuoteIdent(`a"b`))
}
