// Package storage holds one dense column of component values per registered
// type, addressed by entity slot.
//
// All columns share one capacity. When a slot index reaches it, every column
// grows by a whole block of Empty sentinels, so column lengths never diverge.
package storage

import (
	"github.com/cockroachdb/errors"

	"github.com/DangerosoDavo/bbecs/component"
)

// DefaultBlockSize is the growth step used when none is configured.
const DefaultBlockSize = 1024

var (
	// ErrAlreadyRegistered indicates a column with the same name exists.
	ErrAlreadyRegistered = errors.New("storage: component already registered")
	// ErrNeedToRegister signals a write against an unknown column.
	ErrNeedToRegister = errors.New("storage: component must be registered before insert")
	// ErrComponentNotFound signals a read against an unknown column.
	ErrComponentNotFound = errors.New("storage: component not found")
)

// Store is the set of columns.
type Store struct {
	blockSize int
	capacity  int
	columns   map[string][]component.Value
}

// New constructs an empty store growing in blocks of blockSize slots.
func New(blockSize int) *Store {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &Store{
		blockSize: blockSize,
		columns:   make(map[string][]component.Value),
	}
}

// BlockSize returns the growth step.
func (s *Store) BlockSize() int {
	return s.blockSize
}

// Capacity returns the length shared by every column.
func (s *Store) Capacity() int {
	return s.capacity
}

// Has reports whether a column exists for name.
func (s *Store) Has(name string) bool {
	_, ok := s.columns[name]
	return ok
}

// Register creates a column of the current capacity filled with Empty.
func (s *Store) Register(name string) error {
	if _, exists := s.columns[name]; exists {
		return errors.Wrapf(ErrAlreadyRegistered, "register %q", name)
	}
	s.columns[name] = newBlock(s.capacity)
	return nil
}

// GrowIfNeeded extends every column until index fits, reporting whether it grew.
func (s *Store) GrowIfNeeded(index int) bool {
	if index < s.capacity {
		return false
	}
	for index >= s.capacity {
		s.capacity += s.blockSize
		for name, col := range s.columns {
			s.columns[name] = append(col, newBlock(s.blockSize)...)
		}
	}
	return true
}

// Set overwrites the slot at index in column name, growing first when needed.
func (s *Store) Set(name string, index int, value component.Value) error {
	if _, ok := s.columns[name]; !ok {
		return errors.Wrapf(ErrNeedToRegister, "set %q", name)
	}
	s.GrowIfNeeded(index)
	s.columns[name][index] = value
	return nil
}

// Get returns the value stored at index in column name.
func (s *Store) Get(name string, index int) (component.Value, error) {
	col, ok := s.columns[name]
	if !ok {
		return nil, errors.Wrapf(ErrComponentNotFound, "get %q", name)
	}
	if index < 0 || index >= len(col) {
		return component.Empty{}, nil
	}
	return col[index], nil
}

// Query returns, for each name, pointers to the slots listed in indices in the
// order given. The i-th pointer of every column belongs to indices[i].
//
// Pointers stay valid until the next growth.
func (s *Store) Query(names []string, indices []int) (map[string][]*component.Value, error) {
	out := make(map[string][]*component.Value, len(names))
	for _, name := range names {
		col, ok := s.columns[name]
		if !ok {
			return nil, errors.Wrapf(ErrComponentNotFound, "query %q", name)
		}
		if _, done := out[name]; done {
			continue
		}
		refs := make([]*component.Value, len(indices))
		for i, index := range indices {
			refs[i] = &col[index]
		}
		out[name] = refs
	}
	return out, nil
}

// Reset restores Empty at each index across every column. Capacity is kept.
func (s *Store) Reset(indices []int) {
	for _, col := range s.columns {
		for _, index := range indices {
			if index < len(col) {
				col[index] = component.Empty{}
			}
		}
	}
}

func newBlock(n int) []component.Value {
	block := make([]component.Value, n)
	for i := range block {
		block[i] = component.Empty{}
	}
	return block
}
