package diff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/schemadiff/internal/snapshot"
)

func TestUnmarshalRestoresEmptySections(t *testing.T) {
	r, err := Unmarshal([]byte(`{"addedSchemas": null, "removedSchemas": [{"schemaName": "old"}], "fromVersion": "v1"}`))
	require.NoError(t, err)

	assert.NotNil(t, r.AddedSchemas)
	assert.NotNil(t, r.ModifiedSchemas)
	require.Len(t, r.RemovedSchemas, 1)
	assert.NotNil(t, r.RemovedSchemas[0].Tables)
	assert.Equal(t, "v1", r.FromVersion)
}

func TestUnmarshalRejectsMalformed(t *testing.T) {
	_, err := Unmarshal([]byte(`{"addedSchemas": {`))
	assert.Error(t, err)
}

func TestMarshalUnmarshal(t *testing.T) {
	from := usersTable()
	to := usersTable()
	to.Columns[1].DataType = "text"
	to.Columns[1].Nullable = snapshot.Bool(false)

	result, err := Compare(snap("v1", schema("public", from)), snap("v2", schema("public", to), schema("audit", ordersTable())))
	require.NoError(t, err)

	data, err := Marshal(result)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"property": "dataType"`)
	assert.NotContains(t, string(data), `"addedColumns"`)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	if d := cmp.Diff(result, decoded); d != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", d)
	}
}

func TestUnmarshalIndexColumnsAreGeneric(t *testing.T) {
	from := usersTable()
	to := usersTable()
	to.Indexes[0].Columns = []string{"id", "name"}

	result, err := Compare(snap("v1", schema("public", from)), snap("v2", schema("public", to)))
	require.NoError(t, err)
	data, err := Marshal(result)
	require.NoError(t, err)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	change := decoded.ModifiedSchemas[0].ModifiedTables[0].ModifiedIndexes[0].Change(PropColumns)
	require.NotNil(t, change)
	assert.Equal(t, []any{"id"}, change.OldValue)
	assert.Equal(t, []any{"id", "name"}, change.NewValue)
}
