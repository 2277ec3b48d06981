package diff

import (
	"slices"

	"github.com/tordrt/schemadiff/internal/snapshot"
)

// diffTable compares a matched table pair. The returned table is empty
// (hasChanges() == false) when the pair is unchanged.
func diffTable(from, to snapshot.Table) ModifiedTable {
	mt := ModifiedTable{
		TableName:    to.Name,
		TableComment: cloneString(to.Comment),
	}

	// nil and "" both mean "no comment"
	if from.CommentText() != to.CommentText() {
		mt.CommentChanged = true
		mt.OldComment = cloneString(from.Comment)
		mt.NewComment = cloneString(to.Comment)
	}

	mt.AddedColumns, mt.RemovedColumns, mt.ModifiedColumns = diffColumns(from.Columns, to.Columns)
	mt.AddedIndexes, mt.RemovedIndexes, mt.ModifiedIndexes = diffIndexes(from.Indexes, to.Indexes)

	return mt
}

func diffColumns(from, to []snapshot.Column) (added, removed []ColumnInfo, modified []ColumnChange) {
	m := match(from, to, snapshot.Column.Key)

	for _, c := range m.onlyInTo {
		added = append(added, columnInfo(c))
	}
	for _, c := range m.onlyInFrom {
		removed = append(removed, columnInfo(c))
	}
	for _, p := range m.pairs {
		if changes := diffColumn(p.from, p.to); len(changes) > 0 {
			modified = append(modified, ColumnChange{ColumnName: p.to.Name, Changes: changes})
		}
	}

	return added, removed, modified
}

// diffColumn compares the semantic attributes of a column. Ordinal position
// is display metadata and never compared.
func diffColumn(from, to snapshot.Column) []PropertyChange {
	var changes []PropertyChange

	if from.DataType != to.DataType {
		changes = append(changes, PropertyChange{Property: PropDataType, OldValue: from.DataType, NewValue: to.DataType})
	}
	if from.IsNullable() != to.IsNullable() {
		changes = append(changes, PropertyChange{Property: PropNullable, OldValue: from.IsNullable(), NewValue: to.IsNullable()})
	}
	if !equalOptional(from.DefaultValue, to.DefaultValue) {
		changes = append(changes, PropertyChange{
			Property: PropColumnDefault,
			OldValue: optionalValue(from.DefaultValue),
			NewValue: optionalValue(to.DefaultValue),
		})
	}
	if from.CommentText() != to.CommentText() {
		changes = append(changes, PropertyChange{
			Property: PropColumnComment,
			OldValue: optionalValue(from.Comment),
			NewValue: optionalValue(to.Comment),
		})
	}

	return changes
}

func diffIndexes(from, to []snapshot.Index) (added, removed []IndexInfo, modified []IndexChange) {
	m := match(from, to, snapshot.Index.Key)

	for _, idx := range m.onlyInTo {
		added = append(added, indexInfo(idx))
	}
	for _, idx := range m.onlyInFrom {
		removed = append(removed, indexInfo(idx))
	}
	for _, p := range m.pairs {
		if changes := diffIndex(p.from, p.to); len(changes) > 0 {
			modified = append(modified, IndexChange{IndexName: p.to.Name, Changes: changes})
		}
	}

	return added, removed, modified
}

// diffIndex compares uniqueness, access method and the ordered column list.
// The same columns in a different order is a change.
func diffIndex(from, to snapshot.Index) []PropertyChange {
	var changes []PropertyChange

	if from.IsUnique != to.IsUnique {
		changes = append(changes, PropertyChange{Property: PropUnique, OldValue: from.IsUnique, NewValue: to.IsUnique})
	}
	if from.Type != to.Type {
		changes = append(changes, PropertyChange{Property: PropIndexType, OldValue: from.Type, NewValue: to.Type})
	}
	if !slices.Equal(from.Columns, to.Columns) {
		changes = append(changes, PropertyChange{
			Property: PropColumns,
			OldValue: slices.Clone(from.Columns),
			NewValue: slices.Clone(to.Columns),
		})
	}

	return changes
}

func columnInfo(c snapshot.Column) ColumnInfo {
	return ColumnInfo{
		ColumnName:      c.Name,
		DataType:        c.DataType,
		Nullable:        c.IsNullable(),
		ColumnDefault:   cloneString(c.DefaultValue),
		ColumnComment:   cloneString(c.Comment),
		OrdinalPosition: c.Position,
	}
}

func indexInfo(idx snapshot.Index) IndexInfo {
	return IndexInfo{
		IndexName: idx.Name,
		Unique:    idx.IsUnique,
		Primary:   idx.Primary,
		Columns:   slices.Clone(idx.Columns),
		IndexType: idx.Type,
	}
}

func tableInfo(t snapshot.Table) TableInfo {
	return TableInfo{TableName: t.Name, TableComment: cloneString(t.Comment)}
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func optionalValue(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
