// Package bitmap tracks which component types are attached to each entity slot.
//
// Each registered component name owns one bit of a uint64 mask and every slot
// carries one mask word. Queries OR the requested bits together and return the
// slots whose mask contains all of them, in ascending slot order.
package bitmap

import "github.com/cockroachdb/errors"

// MaxComponentTypes is the number of distinct names a single index can hold.
const MaxComponentTypes = 64

var (
	// ErrTooManyComponentTypes is returned once every mask bit is assigned.
	ErrTooManyComponentTypes = errors.New("bitmap: too many component types")
	// ErrInsertBeforeRegister is returned when setting a bit for an unknown name.
	ErrInsertBeforeRegister = errors.New("bitmap: insert before register")
	// ErrQueryBeforeRegister is returned when a query names an unknown component.
	ErrQueryBeforeRegister = errors.New("bitmap: query before register")
)

// Index is the membership mask table.
type Index struct {
	lookup map[string]uint64
	order  []string
	masks  []uint64
}

// New returns an empty index.
func New() *Index {
	return &Index{lookup: make(map[string]uint64)}
}

// Register assigns the next free bit to name. Registering a known name returns
// its existing bit.
func (x *Index) Register(name string) (uint64, error) {
	if bit, ok := x.lookup[name]; ok {
		return bit, nil
	}
	if len(x.lookup) >= MaxComponentTypes {
		return 0, errors.Wrapf(ErrTooManyComponentTypes, "register %q", name)
	}
	bit := uint64(1) << uint(len(x.lookup))
	x.lookup[name] = bit
	x.order = append(x.order, name)
	return bit, nil
}

// Bit returns the mask bit owned by name.
func (x *Index) Bit(name string) (uint64, bool) {
	bit, ok := x.lookup[name]
	return bit, ok
}

// Registered reports how many bits are assigned.
func (x *Index) Registered() int {
	return len(x.lookup)
}

// Names returns registered names in bit order.
func (x *Index) Names() []string {
	return append([]string(nil), x.order...)
}

// Len is the number of slots ever touched.
func (x *Index) Len() int {
	return len(x.masks)
}

// EnsureSlot makes sure a mask word exists for index.
func (x *Index) EnsureSlot(index int) {
	for len(x.masks) <= index {
		x.masks = append(x.masks, 0)
	}
}

// Set ORs the bit for name into the mask at index.
func (x *Index) Set(index int, name string) error {
	bit, ok := x.lookup[name]
	if !ok {
		return errors.Wrapf(ErrInsertBeforeRegister, "set %q", name)
	}
	x.masks[index] |= bit
	return nil
}

// SetMany applies the bit for name to every index. Nothing changes on error.
func (x *Index) SetMany(indices []int, name string) error {
	bit, ok := x.lookup[name]
	if !ok {
		return errors.Wrapf(ErrInsertBeforeRegister, "set %q", name)
	}
	for _, index := range indices {
		x.masks[index] |= bit
	}
	return nil
}

// Has reports whether the slot at index carries name.
func (x *Index) Has(index int, name string) bool {
	bit, ok := x.lookup[name]
	if !ok || index < 0 || index >= len(x.masks) {
		return false
	}
	return x.masks[index]&bit == bit
}

// Mask returns the raw mask word at index.
func (x *Index) Mask(index int) uint64 {
	if index < 0 || index >= len(x.masks) {
		return 0
	}
	return x.masks[index]
}

// Query returns, ascending, every slot whose mask holds all of names.
func (x *Index) Query(names []string) ([]int, error) {
	var match uint64
	for _, name := range names {
		bit, ok := x.lookup[name]
		if !ok {
			return nil, errors.Wrapf(ErrQueryBeforeRegister, "query %q", name)
		}
		match |= bit
	}

	out := make([]int, 0)
	for i, mask := range x.masks {
		if mask&match == match {
			out = append(out, i)
		}
	}
	return out, nil
}

// Clear zeroes the masks of the given slots.
func (x *Index) Clear(indices []int) {
	for _, index := range indices {
		x.masks[index] = 0
	}
}
