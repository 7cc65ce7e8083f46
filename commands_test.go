package bbecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DangerosoDavo/bbecs"
	"github.com/DangerosoDavo/bbecs/component"
)

func TestSpawnCommand(t *testing.T) {
	w := newWorld(t, "hp")
	var id bbecs.EntityID
	cmd := bbecs.NewSpawnCommand(&id, bbecs.ComponentValue{Name: "hp", Value: component.U32(3)})
	require.NoError(t, cmd.Apply(w))

	assert.Equal(t, bbecs.EntityLive, w.State(id))
	v, err := w.Component(id, "hp")
	require.NoError(t, err)
	assert.Equal(t, component.U32(3), v)
}

func TestSpawnCommandValidatesBeforeSpawning(t *testing.T) {
	w := newWorld(t, "hp")
	tests := []struct {
		name   string
		cv     bbecs.ComponentValue
		target error
	}{
		{name: "unregistered", cv: bbecs.ComponentValue{Name: "mana", Value: component.U32(1)}, target: bbecs.ErrNeedToRegister},
		{name: "empty", cv: bbecs.ComponentValue{Name: "hp"}, target: bbecs.ErrEmptyValue},
		{name: "reserved", cv: bbecs.ComponentValue{Name: bbecs.IdentityComponent, Value: component.Usize(1)}, target: bbecs.ErrReservedComponent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bbecs.NewSpawnCommand(nil, tt.cv).Apply(w)
			require.ErrorIs(t, err, tt.target)
			assert.Zero(t, w.Len())
		})
	}
}

func TestAttachAndDeleteCommands(t *testing.T) {
	w := newWorld(t, "hp")
	id := w.Spawn().ID()

	require.NoError(t, w.Apply([]bbecs.Command{
		bbecs.NewAttachCommand(id, "hp", component.U32(8)),
		bbecs.NewDeleteCommand(id),
	}))
	assert.True(t, w.Has(id, "hp"))
	assert.Equal(t, bbecs.EntityPendingDeletion, w.State(id))

	require.NoError(t, w.Commit())
	assert.Equal(t, bbecs.EntityUnused, w.State(id))
}

func TestApplyStopsAtFirstError(t *testing.T) {
	w := newWorld(t, "hp")
	var id bbecs.EntityID
	err := w.Apply([]bbecs.Command{
		bbecs.NewDeleteCommand(12),
		bbecs.NewSpawnCommand(&id),
	})
	require.ErrorIs(t, err, bbecs.ErrEntityNotFound)
	assert.Zero(t, w.Len())
}
