// Package diff computes the hierarchical delta between two schema snapshots.
//
// Entities are paired by identity key at every level (schema, table, column,
// index). Unmatched entities become additions or removals; matched entities
// are compared attribute by attribute and reported only when something
// differs. Renames are reported as one removal plus one addition.
//
// Compare is a pure function: it performs no I/O, holds no state between
// calls, never mutates its inputs, and returns a result that shares no memory
// with them. Identical inputs always produce identical output.
package diff

import (
	"golang.org/x/sync/errgroup"

	"github.com/tordrt/schemadiff/internal/snapshot"
)

type options struct {
	workers int
}

// Option configures Compare
type Option func(*options)

// WithWorkers fans the diff of matched tables out over n goroutines.
// Output is identical to the sequential run; n <= 1 disables fan-out.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// tableJob is one matched table pair awaiting comparison
type tableJob struct {
	from, to snapshot.Table
}

// schemaPlan holds the table-level match of one matched schema and the slice
// of jobs belonging to it
type schemaPlan struct {
	name   string
	tables matchSet[snapshot.Table]
	first  int
	count  int
}

// Compare validates both snapshots and returns the delta from "from" to "to".
// Validation is atomic: either a complete result or an error wrapping
// snapshot.ErrInvalidSnapshot / snapshot.ErrIncompatibleSnapshot is returned.
func Compare(from, to *snapshot.Snapshot, opts ...Option) (*CompareResult, error) {
	if err := snapshot.Validate(from); err != nil {
		return nil, snapshot.WithSide(err, "from")
	}
	if err := snapshot.Validate(to); err != nil {
		return nil, snapshot.WithSide(err, "to")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	schemas := match(from.Schemas, to.Schemas, snapshot.Schema.Key)

	var plans []schemaPlan
	var jobs []tableJob
	for _, p := range schemas.pairs {
		tables := match(p.from.Tables, p.to.Tables, snapshot.Table.Key)
		plan := schemaPlan{name: p.to.Name, tables: tables, first: len(jobs), count: len(tables.pairs)}
		for _, tp := range tables.pairs {
			jobs = append(jobs, tableJob{from: tp.from, to: tp.to})
		}
		plans = append(plans, plan)
	}

	modified, err := diffTables(jobs, o.workers)
	if err != nil {
		return nil, err
	}

	a := newAssembler(from.Version, to.Version)
	for _, sch := range schemas.onlyInTo {
		a.addedSchema(sch)
	}
	for _, sch := range schemas.onlyInFrom {
		a.removedSchema(sch)
	}
	for _, plan := range plans {
		a.modifiedSchema(plan.name, plan.tables, modified[plan.first:plan.first+plan.count])
	}

	return a.result, nil
}

// diffTables compares every job, writing each result at its job index so the
// output order never depends on scheduling
func diffTables(jobs []tableJob, workers int) ([]ModifiedTable, error) {
	out := make([]ModifiedTable, len(jobs))

	if workers <= 1 || len(jobs) < 2 {
		for i, j := range jobs {
			out[i] = diffTable(j.from, j.to)
		}
		return out, nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range jobs {
		g.Go(func() error {
			out[i] = diffTable(jobs[i].from, jobs[i].to)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
