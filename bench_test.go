package bbecs_test

import (
	"testing"

	"github.com/DangerosoDavo/bbecs"
	"github.com/DangerosoDavo/bbecs/component"
)

func populate(b *testing.B, n int) *bbecs.World {
	b.Helper()
	w := bbecs.NewWorld()
	for _, name := range []string{"location", "size"} {
		if err := w.RegisterComponentType(name); err != nil {
			b.Fatal(err)
		}
	}
	for i := 0; i < n; i++ {
		builder := w.Spawn().With("location", component.NewPoint(float64(i), float64(i)))
		if i%3 == 0 {
			builder.With("size", component.F32(i))
		}
		if err := builder.Err(); err != nil {
			b.Fatal(err)
		}
	}
	return w
}

func BenchmarkQueryLocationSize(b *testing.B) {
	w := populate(b, 10_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q, err := w.Query("location", "size")
		if err != nil {
			b.Fatal(err)
		}
		for _, ref := range q.Column("size") {
			if _, err := bbecs.RefAs[component.F32](ref); err != nil {
				b.Fatal(err)
			}
		}
	}
}

func BenchmarkSpawnDeleteCommit(b *testing.B) {
	w := populate(b, 1_000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		id := w.Spawn().With("location", component.NewPoint(0, 0)).ID()
		if err := w.DeleteByID(id); err != nil {
			b.Fatal(err)
		}
		if err := w.Commit(); err != nil {
			b.Fatal(err)
		}
	}
}
