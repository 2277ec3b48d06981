package diff

import "github.com/tordrt/schemadiff/internal/snapshot"

// assembler builds a CompareResult bottom-up, pruning empty branches
type assembler struct {
	result *CompareResult
}

func newAssembler(fromVersion, toVersion string) *assembler {
	return &assembler{result: newResult(fromVersion, toVersion)}
}

// addedSchema records a schema present only in "to" as a whole-subtree summary
func (a *assembler) addedSchema(sch snapshot.Schema) {
	a.result.AddedSchemas = append(a.result.AddedSchemas, schemaInfo(sch))
}

// removedSchema records a schema present only in "from"
func (a *assembler) removedSchema(sch snapshot.Schema) {
	a.result.RemovedSchemas = append(a.result.RemovedSchemas, schemaInfo(sch))
}

// modifiedSchema promotes a matched schema when at least one of its buckets
// is non-empty. Tables in modified are kept only if they changed.
func (a *assembler) modifiedSchema(name string, tables matchSet[snapshot.Table], modified []ModifiedTable) {
	sc := SchemaChanges{SchemaName: name}

	for _, t := range tables.onlyInTo {
		sc.AddedTables = append(sc.AddedTables, tableInfo(t))
	}
	for _, t := range tables.onlyInFrom {
		sc.RemovedTables = append(sc.RemovedTables, tableInfo(t))
	}
	for i := range modified {
		if modified[i].hasChanges() {
			sc.ModifiedTables = append(sc.ModifiedTables, modified[i])
		}
	}

	if sc.hasChanges() {
		a.result.ModifiedSchemas = append(a.result.ModifiedSchemas, sc)
	}
}

func schemaInfo(sch snapshot.Schema) SchemaInfo {
	info := SchemaInfo{SchemaName: sch.Name, Tables: make([]TableInfo, 0, len(sch.Tables))}
	for _, t := range sch.Tables {
		info.Tables = append(info.Tables, tableInfo(t))
	}
	return info
}
