/*
Package warehouse provides an Entity-Component-System (ECS) core for games
and simulations.

Warehouse is built on archetype-based storage: entities sharing the same
component set live together in one columnar archetype for cache-friendly
iteration. Composable query specs borrow-check their column access at
construction and again, dynamically, on every concurrent Query.

Core Concepts:

  - Entity: a generational handle identifying a row in some archetype.
  - Component: a plain data type stored in its own typed column.
  - Archetype: a set of entities sharing exactly the same component types.
  - Spec: a composable query term (Ref, Mut, Opt, With, Without, Or, And2…)
    describing what a query fetches and what access it needs.

Basic Usage:

	type Position struct{ X, Y float64 }
	type Velocity struct{ X, Y float64 }

	w := warehouse.Factory.NewWorld()

	ent, _ := w.Spawn(warehouse.NewBundle2(
		Position{X: 0, Y: 0},
		Velocity{X: 1, Y: 0},
	))

	spec := warehouse.And2(warehouse.Mut[Position](), warehouse.Ref[Velocity]())
	it, _ := warehouse.Query(w, spec)
	defer it.Close()
	for it.Next() {
		pair := it.Item()
		pair.First.X += pair.Second.X
		pair.First.Y += pair.Second.Y
	}

Warehouse also supports deferred mutation via CommandBuffer, bulk spawning
via EntityBuilder/ColumnBatch, and per-entity access via EntityRef — see
each type's doc comment.
*/
package warehouse
