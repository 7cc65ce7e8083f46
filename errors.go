package bbecs

import (
	"github.com/cockroachdb/errors"

	"github.com/DangerosoDavo/bbecs/component"
	"github.com/DangerosoDavo/bbecs/internal/bitmap"
	"github.com/DangerosoDavo/bbecs/internal/storage"
)

// Errors raised by the storage layers. Callers match them with errors.Is.
var (
	// ErrTooManyComponentTypes indicates every membership bit is taken.
	ErrTooManyComponentTypes = bitmap.ErrTooManyComponentTypes
	// ErrInsertBeforeRegister indicates a membership bit was set for an unknown name.
	ErrInsertBeforeRegister = bitmap.ErrInsertBeforeRegister
	// ErrAlreadyRegistered indicates a duplicate or reserved component name.
	ErrAlreadyRegistered = storage.ErrAlreadyRegistered
	// ErrNeedToRegister indicates a write against an unregistered component name.
	ErrNeedToRegister = storage.ErrNeedToRegister
	// ErrComponentNotFound indicates a read against an unregistered component name.
	ErrComponentNotFound = storage.ErrComponentNotFound
	// ErrKindMismatch indicates a value read back or written as the wrong payload kind.
	ErrKindMismatch = component.ErrKindMismatch
)

var (
	// ErrResourceNotFound signals lookup on an unknown resource.
	ErrResourceNotFound = errors.New("bbecs: resource not found")
	// ErrEntityNotFound signals an operation on an id that is not live or pending deletion.
	ErrEntityNotFound = errors.New("bbecs: entity not found")
	// ErrReservedComponent indicates a caller tried to write a reserved component directly.
	ErrReservedComponent = errors.New("bbecs: reserved component")
	// ErrEmptyValue indicates an attempt to attach the empty sentinel.
	ErrEmptyValue = errors.New("bbecs: cannot attach empty value")
	// ErrEmptyQuery indicates a query without component names.
	ErrEmptyQuery = errors.New("bbecs: query needs at least one component name")
	// ErrStaleQuery indicates a query result used after the store was mutated.
	ErrStaleQuery = errors.New("bbecs: query result used after store mutation")
	// ErrNoSpawnedEntity indicates AttachComponent was called before any Spawn.
	ErrNoSpawnedEntity = errors.New("bbecs: no entity spawned yet")
)
