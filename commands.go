package bbecs

import (
	"github.com/cockroachdb/errors"

	"github.com/DangerosoDavo/bbecs/component"
)

// NewSpawnCommand enqueues an entity spawn with the given components. If target is
// non-nil it receives the allocated ID.
func NewSpawnCommand(target *EntityID, components ...ComponentValue) Command {
	return spawnCommand{target: target, components: components}
}

// NewAttachCommand enqueues a component attachment.
func NewAttachCommand(id EntityID, name string, value component.Value) Command {
	return attachCommand{entity: id, name: name, value: value}
}

// NewDeleteCommand enqueues an entity deletion.
func NewDeleteCommand(id EntityID) Command {
	return deleteCommand{entity: id}
}

type spawnCommand struct {
	target     *EntityID
	components []ComponentValue
}

type attachCommand struct {
	entity EntityID
	name   string
	value  component.Value
}

type deleteCommand struct {
	entity EntityID
}

// Apply checks every component before spawning so a rejected command leaves no entity behind.
func (c spawnCommand) Apply(world *World) error {
	for _, cv := range c.components {
		if cv.Name == IdentityComponent || cv.Name == DeletionComponent {
			return errors.Wrapf(ErrReservedComponent, "spawn with %q", cv.Name)
		}
		if component.IsEmpty(cv.Value) {
			return errors.Wrapf(ErrEmptyValue, "spawn with %q", cv.Name)
		}
		if !world.store.Has(cv.Name) {
			return errors.Wrapf(ErrNeedToRegister, "spawn with %q", cv.Name)
		}
	}

	b := world.Spawn()
	for _, cv := range c.components {
		b.With(cv.Name, cv.Value)
	}
	if c.target != nil {
		*c.target = b.ID()
	}
	return b.Err()
}

func (c attachCommand) Apply(world *World) error {
	return world.Attach(c.entity, c.name, c.value)
}

func (c deleteCommand) Apply(world *World) error {
	return world.DeleteByID(c.entity)
}

var (
	_ Command = spawnCommand{}
	_ Command = attachCommand{}
	_ Command = deleteCommand{}
)
