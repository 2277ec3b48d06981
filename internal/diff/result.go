package diff

// CompareResult is the delta between two snapshots. The three top-level
// sections are always encoded as arrays, never null.
type CompareResult struct {
	AddedSchemas    []SchemaInfo    `json:"addedSchemas"`
	RemovedSchemas  []SchemaInfo    `json:"removedSchemas"`
	ModifiedSchemas []SchemaChanges `json:"modifiedSchemas"`
	FromVersion     string          `json:"fromVersion,omitempty"`
	ToVersion       string          `json:"toVersion,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// SchemaInfo summarizes a schema that exists on only one side
type SchemaInfo struct {
	SchemaName string      `json:"schemaName"`
	Tables     []TableInfo `json:"tables"`
}

// TableInfo summarizes a table that exists on only one side
type TableInfo struct {
	TableName    string  `json:"tableName"`
	TableComment *string `json:"tableComment,omitempty"`
}

// SchemaChanges lists the table-level changes of a schema present on both sides
type SchemaChanges struct {
	SchemaName     string          `json:"schemaName"`
	AddedTables    []TableInfo     `json:"addedTables,omitempty"`
	RemovedTables  []TableInfo     `json:"removedTables,omitempty"`
	ModifiedTables []ModifiedTable `json:"modifiedTables,omitempty"`
}

// ModifiedTable lists the changes of a table present on both sides.
// TableComment is the comment on the "to" side.
type ModifiedTable struct {
	TableName       string         `json:"tableName"`
	TableComment    *string        `json:"tableComment,omitempty"`
	CommentChanged  bool           `json:"commentChanged,omitempty"`
	OldComment      *string        `json:"oldComment,omitempty"`
	NewComment      *string        `json:"newComment,omitempty"`
	AddedColumns    []ColumnInfo   `json:"addedColumns,omitempty"`
	RemovedColumns  []ColumnInfo   `json:"removedColumns,omitempty"`
	ModifiedColumns []ColumnChange `json:"modifiedColumns,omitempty"`
	AddedIndexes    []IndexInfo    `json:"addedIndexes,omitempty"`
	RemovedIndexes  []IndexInfo    `json:"removedIndexes,omitempty"`
	ModifiedIndexes []IndexChange  `json:"modifiedIndexes,omitempty"`
}

// ColumnInfo describes a column that was added or removed
type ColumnInfo struct {
	ColumnName      string  `json:"columnName"`
	DataType        string  `json:"dataType"`
	Nullable        bool    `json:"nullable"`
	ColumnDefault   *string `json:"columnDefault,omitempty"`
	ColumnComment   *string `json:"columnComment,omitempty"`
	OrdinalPosition int     `json:"ordinalPosition,omitempty"`
}

// ColumnChange lists the property changes of a column present on both sides
type ColumnChange struct {
	ColumnName string           `json:"columnName"`
	Changes    []PropertyChange `json:"changes"`
}

// IndexInfo describes an index that was added or removed
type IndexInfo struct {
	IndexName string   `json:"indexName"`
	Unique    bool     `json:"unique"`
	Primary   bool     `json:"primary,omitempty"`
	Columns   []string `json:"columns"`
	IndexType string   `json:"indexType,omitempty"`
}

// IndexChange lists the property changes of an index present on both sides
type IndexChange struct {
	IndexName string           `json:"indexName"`
	Changes   []PropertyChange `json:"changes"`
}

// PropertyChange is one changed attribute. Values are strings, booleans,
// string slices, or nil for an absent optional value.
type PropertyChange struct {
	Property string `json:"property"`
	OldValue any    `json:"oldValue"`
	NewValue any    `json:"newValue"`
}

// Property names reported in PropertyChange
const (
	PropDataType      = "dataType"
	PropNullable      = "nullable"
	PropColumnDefault = "columnDefault"
	PropColumnComment = "columnComment"
	PropUnique        = "unique"
	PropIndexType     = "indexType"
	PropColumns       = "columns"
)

// IsEmpty reports whether the result carries no change at all
func (r *CompareResult) IsEmpty() bool {
	return len(r.AddedSchemas) == 0 && len(r.RemovedSchemas) == 0 && len(r.ModifiedSchemas) == 0
}

// Change returns the change of the named property, or nil
func (c ColumnChange) Change(property string) *PropertyChange {
	return findChange(c.Changes, property)
}

// Change returns the change of the named property, or nil
func (c IndexChange) Change(property string) *PropertyChange {
	return findChange(c.Changes, property)
}

func findChange(changes []PropertyChange, property string) *PropertyChange {
	for i := range changes {
		if changes[i].Property == property {
			return &changes[i]
		}
	}
	return nil
}

func (t *ModifiedTable) hasChanges() bool {
	return t.CommentChanged ||
		len(t.AddedColumns) > 0 || len(t.RemovedColumns) > 0 || len(t.ModifiedColumns) > 0 ||
		len(t.AddedIndexes) > 0 || len(t.RemovedIndexes) > 0 || len(t.ModifiedIndexes) > 0
}

func (s *SchemaChanges) hasChanges() bool {
	return len(s.AddedTables) > 0 || len(s.RemovedTables) > 0 || len(s.ModifiedTables) > 0
}

// ErrorResult builds the document returned when a comparison could not be
// performed: empty sections plus the error message.
func ErrorResult(fromVersion, toVersion string, err error) *CompareResult {
	r := newResult(fromVersion, toVersion)
	if err != nil {
		r.Error = err.Error()
	}
	return r
}

func newResult(fromVersion, toVersion string) *CompareResult {
	return &CompareResult{
		AddedSchemas:    []SchemaInfo{},
		RemovedSchemas:  []SchemaInfo{},
		ModifiedSchemas: []SchemaChanges{},
		FromVersion:     fromVersion,
		ToVersion:       toVersion,
	}
}
