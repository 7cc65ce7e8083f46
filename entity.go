package bbecs

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

// EntityID identifies an entity slot. Ids are recycled after a commit, so an id
// only names an entity while that entity is live or pending deletion.
type EntityID uint32

// Index returns the slot index backing the entity.
func (id EntityID) Index() int {
	return int(id)
}

// String renders the entity identifier for debugging purposes.
func (id EntityID) String() string {
	return "EntityID(" + strconv.FormatUint(uint64(id), 10) + ")"
}

// EntityState is the lifecycle position of an id.
type EntityState uint8

const (
	EntityUnused EntityState = iota
	EntityLive
	EntityPendingDeletion
)

func (s EntityState) String() string {
	switch s {
	case EntityLive:
		return "live"
	case EntityPendingDeletion:
		return "pending-deletion"
	default:
		return "unused"
	}
}

// NewEntityRegistry constructs an empty registry.
func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{}
}

// EntityRegistry coordinates entity allocation and recycling.
//
// Released ids wait in a FIFO queue and are handed out again before any new id
// is allocated.
type EntityRegistry struct {
	states  []EntityState
	free    []EntityID
	next    EntityID
	alive   int
	pending int
}

// Create issues an id, recycling released ones first.
func (r *EntityRegistry) Create() EntityID {
	var id EntityID
	if len(r.free) > 0 {
		id = r.free[0]
		r.free = r.free[1:]
	} else {
		id = r.next
		r.next++
		r.states = append(r.states, EntityUnused)
	}

	r.states[id] = EntityLive
	r.alive++
	return id
}

// State reports the lifecycle state of id.
func (r *EntityRegistry) State(id EntityID) EntityState {
	if int(id) >= len(r.states) {
		return EntityUnused
	}
	return r.states[id]
}

// IsAlive reports whether id is live or pending deletion.
func (r *EntityRegistry) IsAlive(id EntityID) bool {
	return r.State(id) != EntityUnused
}

// MarkPending moves a live id to pending deletion. It reports whether the state
// changed; an id that is already pending is left as is.
func (r *EntityRegistry) MarkPending(id EntityID) (bool, error) {
	switch r.State(id) {
	case EntityLive:
		r.states[id] = EntityPendingDeletion
		r.pending++
		return true, nil
	case EntityPendingDeletion:
		return false, nil
	default:
		return false, errors.Wrapf(ErrEntityNotFound, "delete %v", id)
	}
}

// Release returns pending ids to the reuse queue in the order given.
func (r *EntityRegistry) Release(ids []EntityID) error {
	for _, id := range ids {
		if r.State(id) != EntityPendingDeletion {
			return errors.AssertionFailedf("release %v in state %s", id, r.State(id))
		}
	}
	for _, id := range ids {
		r.states[id] = EntityUnused
		r.free = append(r.free, id)
	}
	r.alive -= len(ids)
	r.pending -= len(ids)
	return nil
}

// Count returns the number of live and pending ids.
func (r *EntityRegistry) Count() int {
	return r.alive
}

// Pending returns the number of ids awaiting commit.
func (r *EntityRegistry) Pending() int {
	return r.pending
}

// Free returns the number of ids waiting for reuse.
func (r *EntityRegistry) Free() int {
	return len(r.free)
}
