package bbecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DangerosoDavo/bbecs"
	"github.com/DangerosoDavo/bbecs/component"
)

func TestRefSetWritesThroughToStorage(t *testing.T) {
	w := newWorld(t, "location", "velocity")
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Spawn().
			With("location", component.NewPoint(float64(i), 0)).
			With("velocity", component.NewPoint(1, 2)).Err())
	}

	q, err := w.Query("location", "velocity")
	require.NoError(t, err)
	for k := range q.Entities() {
		loc, err := bbecs.RefAs[component.Point](q.Column("location")[k])
		require.NoError(t, err)
		vel, err := bbecs.RefAs[component.Point](q.Column("velocity")[k])
		require.NoError(t, err)
		require.NoError(t, q.Column("location")[k].Set(loc.Add(vel)))
	}

	v, err := w.Component(2, "location")
	require.NoError(t, err)
	assert.Equal(t, component.NewPoint(3, 2), v)
}

func TestRefSetKeepsKind(t *testing.T) {
	w := newWorld(t, "hp")
	w.Spawn().With("hp", component.U32(5))

	q, err := w.Query("hp")
	require.NoError(t, err)
	ref := q.Column("hp")[0]

	require.ErrorIs(t, ref.Set(component.F32(5)), bbecs.ErrKindMismatch)
	_, err = bbecs.RefAs[component.F32](ref)
	require.ErrorIs(t, err, bbecs.ErrKindMismatch)

	got, err := ref.Get()
	require.NoError(t, err)
	assert.Equal(t, component.U32(5), got)
	assert.Equal(t, "hp", ref.Name())
}

func TestQueryLeaseInvalidatedByMutation(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(t *testing.T, w *bbecs.World)
	}{
		{name: "spawn", mutate: func(t *testing.T, w *bbecs.World) { w.Spawn() }},
		{name: "attach", mutate: func(t *testing.T, w *bbecs.World) {
			require.NoError(t, w.Attach(0, "hp", component.U32(1)))
		}},
		{name: "commit", mutate: func(t *testing.T, w *bbecs.World) { require.NoError(t, w.Commit()) }},
		{name: "apply", mutate: func(t *testing.T, w *bbecs.World) {
			require.NoError(t, w.Apply([]bbecs.Command{bbecs.NewSpawnCommand(nil)}))
		}},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t, "hp")
			w.Spawn().With("hp", component.U32(9))

			q, err := w.Query("hp")
			require.NoError(t, err)
			require.True(t, q.Valid())

			tt.mutate(t, w)

			assert.False(t, q.Valid())
			_, err = q.Column("hp")[0].Get()
			require.ErrorIs(t, err, bbecs.ErrStaleQuery)
			require.ErrorIs(t, q.Column("hp")[0].Set(component.U32(1)), bbecs.ErrStaleQuery)
		})
	}
}

func TestQueryLeaseSurvivesDelete(t *testing.T) {
	w := newWorld(t, "hp")
	w.Spawn().With("hp", component.U32(9))

	q, err := w.Query("hp")
	require.NoError(t, err)
	require.NoError(t, w.DeleteByID(0))

	v, err := bbecs.RefAs[component.U32](q.Column("hp")[0])
	require.NoError(t, err)
	assert.Equal(t, component.U32(9), v)
}

func TestQueryDuplicateNames(t *testing.T) {
	w := newWorld(t, "hp")
	w.Spawn().With("hp", component.U32(1))

	q, err := w.Query("hp", "hp")
	require.NoError(t, err)
	assert.Equal(t, 1, q.Len())
	assert.Len(t, q.Columns(), 1)
}
