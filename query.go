package bbecs

import (
	"github.com/cockroachdb/errors"

	"github.com/DangerosoDavo/bbecs/component"
)

// QueryResult is a lease over the column slots matched by one query. Row i of
// every column belongs to Entities()[i]. The lease stays valid until the world
// spawns, attaches, applies commands or commits; reads and writes through a
// stale lease fail with ErrStaleQuery.
type QueryResult struct {
	world    *World
	epoch    uint64
	entities []EntityID
	columns  map[string][]Ref
}

func newQueryResult(w *World, indices []int, raw map[string][]*component.Value) *QueryResult {
	q := &QueryResult{
		world:    w,
		epoch:    w.epoch,
		entities: make([]EntityID, len(indices)),
		columns:  make(map[string][]Ref, len(raw)),
	}
	for i, index := range indices {
		q.entities[i] = EntityID(index)
	}
	for name, slots := range raw {
		refs := make([]Ref, len(slots))
		for i, slot := range slots {
			refs[i] = Ref{query: q, entity: q.entities[i], name: name, slot: slot}
		}
		q.columns[name] = refs
	}
	return q
}

// Len returns the number of matched entities.
func (q *QueryResult) Len() int {
	return len(q.entities)
}

// Entities returns the matched ids in ascending order.
func (q *QueryResult) Entities() []EntityID {
	return q.entities
}

// Column returns the aligned handles for name, or nil if name was not queried.
func (q *QueryResult) Column(name string) []Ref {
	return q.columns[name]
}

// Columns returns every queried column keyed by name.
func (q *QueryResult) Columns() map[string][]Ref {
	return q.columns
}

// Valid reports whether the lease can still be used.
func (q *QueryResult) Valid() bool {
	return q.epoch == q.world.epoch
}

func (q *QueryResult) check() error {
	if !q.Valid() {
		return errors.WithHint(errors.WithStack(ErrStaleQuery), "run the query again after mutating the world")
	}
	return nil
}

// Ref is a handle on one entity's slot in one column.
type Ref struct {
	query  *QueryResult
	entity EntityID
	name   string
	slot   *component.Value
}

// Entity returns the entity owning the slot.
func (r Ref) Entity() EntityID {
	return r.entity
}

// Name returns the component name of the column.
func (r Ref) Name() string {
	return r.name
}

// Get reads the slot.
func (r Ref) Get() (component.Value, error) {
	if err := r.query.check(); err != nil {
		return nil, err
	}
	return *r.slot, nil
}

// Set writes the slot in place. The new value must keep the slot's kind.
func (r Ref) Set(value component.Value) error {
	if err := r.query.check(); err != nil {
		return err
	}
	if err := component.Require(value, component.KindOf(*r.slot)); err != nil {
		return errors.Wrapf(err, "set %q on %v", r.name, r.entity)
	}
	*r.slot = value
	return nil
}

// RefAs reads the slot behind r narrowed to T.
func RefAs[T component.Value](r Ref) (T, error) {
	v, err := r.Get()
	if err != nil {
		var zero T
		return zero, err
	}
	return component.As[T](v)
}
