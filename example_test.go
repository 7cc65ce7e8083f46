package bbecs_test

import (
	"fmt"

	"github.com/DangerosoDavo/bbecs"
	"github.com/DangerosoDavo/bbecs/component"
)

func Example() {
	w := bbecs.NewWorld()
	_ = w.RegisterComponentType("location")
	_ = w.RegisterComponentType("velocity")

	w.Spawn().With("location", component.NewPoint(0, 0)).With("velocity", component.NewPoint(1, 0))
	w.Spawn().With("location", component.NewPoint(5, 5))
	w.Spawn().With("location", component.NewPoint(2, 2)).With("velocity", component.NewPoint(0, 1))

	q, _ := w.Query("location", "velocity")
	for k, id := range q.Entities() {
		loc, _ := bbecs.RefAs[component.Point](q.Column("location")[k])
		vel, _ := bbecs.RefAs[component.Point](q.Column("velocity")[k])
		next := loc.Add(vel)
		_ = q.Column("location")[k].Set(next)
		fmt.Printf("%v -> (%g, %g)\n", id, next.X, next.Y)
	}

	_ = w.DeleteByID(0)
	_ = w.Commit()
	fmt.Println("reused:", w.Spawn().ID())

	// Output:
	// EntityID(0) -> (1, 0)
	// EntityID(2) -> (2, 3)
	// reused: EntityID(0)
}

func ExampleCommandBuffer() {
	w := bbecs.NewWorld()
	_ = w.RegisterComponentType("hp")
	for i := 0; i < 3; i++ {
		w.Spawn().With("hp", component.U32(i))
	}

	buf := bbecs.NewCommandBuffer()
	q, _ := w.Query("hp")
	for k, ref := range q.Column("hp") {
		if hp, _ := bbecs.RefAs[component.U32](ref); hp == 0 {
			buf.Push(bbecs.NewDeleteCommand(q.Entities()[k]))
		}
	}
	_ = buf.Flush(w)
	_ = w.Commit()

	fmt.Println("live:", w.Len())
	// Output: live: 2
}
