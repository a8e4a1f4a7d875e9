package warehouse

import "testing"

func TestArchetypesGenerationBumpsOnNewSignature(t *testing.T) {
	w := NewWorld()
	gen0 := w.ArchetypesGeneration()

	if _, err := w.Spawn(NewBundle1(Position{})); err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	gen1 := w.ArchetypesGeneration()
	if gen1 <= gen0 {
		t.Errorf("ArchetypesGeneration() did not advance after a new archetype: %d -> %d", gen0, gen1)
	}

	if _, err := w.Spawn(NewBundle1(Position{})); err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	gen2 := w.ArchetypesGeneration()
	if gen2 != gen1 {
		t.Errorf("ArchetypesGeneration() advanced on a repeat signature: %d -> %d", gen1, gen2)
	}
}

func TestArchetypesIntrospection(t *testing.T) {
	w := NewWorld()
	if _, err := w.Spawn(NewBundle1(Position{})); err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if _, err := w.Spawn(NewBundle2(Position{}, Velocity{})); err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	// views[0] is the always-present empty archetype, followed by the two
	// spawned signatures in creation order.
	views := w.Archetypes()
	if len(views) != 3 {
		t.Fatalf("Archetypes() returned %d views, want 3", len(views))
	}
	if views[0].Len() != 0 || len(views[0].ComponentIDs()) != 0 {
		t.Errorf("first archetype should be the empty one, got %d entities and %d component ids", views[0].Len(), len(views[0].ComponentIDs()))
	}
	if views[1].Len() != 1 || views[2].Len() != 1 {
		t.Errorf("expected one entity in each spawned archetype, got %d and %d", views[1].Len(), views[2].Len())
	}
	if len(views[2].ComponentIDs()) != 2 {
		t.Errorf("third archetype should have 2 component ids, got %d", len(views[2].ComponentIDs()))
	}
}

func TestColumnBatchCommitsAllRows(t *testing.T) {
	w := NewWorld()
	posID := NewComponentType[Position]().ID()
	velID := NewComponentType[Velocity]().ID()

	b := w.NewColumnBatch([]ComponentID{posID, velID}, 3)
	WriteColumn(b, []Position{{X: 0}, {X: 1}, {X: 2}})
	WriteColumn(b, []Velocity{{X: 9}, {X: 9}, {X: 9}})

	if err := b.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	ents := b.Entities()
	if len(ents) != 3 {
		t.Fatalf("Entities() = %d, want 3", len(ents))
	}
	for i, ent := range ents {
		pos, err := Get[Position](w.Ref(ent))
		if err != nil {
			t.Fatalf("Get(Position) error = %v", err)
		}
		if pos.X != float64(i) {
			t.Errorf("entity %d Position.X = %v, want %v", i, pos.X, i)
		}
	}
}

func TestColumnBatchIncompleteRollsBack(t *testing.T) {
	w := NewWorld()
	posID := NewComponentType[Position]().ID()
	velID := NewComponentType[Velocity]().ID()

	b := w.NewColumnBatch([]ComponentID{posID, velID}, 3)
	WriteColumn(b, []Position{{X: 0}, {X: 1}, {X: 2}})
	// Velocity never written: batch should be incomplete.

	err := b.Close()
	if err == nil {
		t.Fatalf("Close() should fail when a declared column was never fully written")
	}
	if _, ok := err.(BatchIncomplete); !ok {
		t.Errorf("Close() error = %T, want BatchIncomplete", err)
	}
	if w.Len() != 0 {
		t.Errorf("World.Len() = %d after rollback, want 0", w.Len())
	}
}

func TestEntityBuilderSpawnsTypedFields(t *testing.T) {
	w := NewWorld()
	b := NewEntityBuilder()
	Set(b, Position{X: 3, Y: 4})
	Set(b, Health{Current: 5, Max: 5})

	ent, err := w.Spawn(b.Build())
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	pos, err := Get[Position](w.Ref(ent))
	if err != nil || pos.X != 3 || pos.Y != 4 {
		t.Errorf("Get(Position) = (%v, %v), want ({3 4}, nil)", pos, err)
	}
	hp, err := Get[Health](w.Ref(ent))
	if err != nil || hp.Current != 5 {
		t.Errorf("Get(Health) = (%v, %v), want ({5 5}, nil)", hp, err)
	}
}

func TestTakeMovesEntityOutAndRebuildsElsewhere(t *testing.T) {
	src := NewWorld()
	ent, err := src.Spawn(NewBundle2(Position{X: 1, Y: 2}, Health{Current: 7, Max: 10}))
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	builder, err := src.Take(ent)
	if err != nil {
		t.Fatalf("Take() error = %v", err)
	}
	if src.Contains(ent) {
		t.Errorf("World still contains entity after Take()")
	}

	dst := NewWorld()
	newEnt, err := dst.Spawn(builder.Build())
	if err != nil {
		t.Fatalf("Spawn() in destination world error = %v", err)
	}
	pos, err := Get[Position](dst.Ref(newEnt))
	if err != nil || pos.X != 1 || pos.Y != 2 {
		t.Errorf("Get(Position) after Take/Spawn = (%v, %v), want ({1 2}, nil)", pos, err)
	}
}

func TestCommandBufferReplaysDeferredSpawnAndInsert(t *testing.T) {
	w := NewWorld()
	cb := NewCommandBuffer()

	deferredEnt := cb.Spawn(NewBundle1(Position{X: 1}))
	cb.Insert(deferredEnt, NewBundle1(Velocity{X: 2}))

	if errs := cb.RunOn(w); len(errs) != 0 {
		t.Fatalf("RunOn() errors = %v", errs)
	}

	if w.Len() != 1 {
		t.Fatalf("World.Len() = %d, want 1", w.Len())
	}

	it, err := Query(w, Ref[Velocity]())
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	defer it.Close()
	if !it.Next() {
		t.Fatalf("expected the deferred spawn+insert to produce a Velocity-bearing entity")
	}
}

func TestSpawnAtOverwritingLiveOccupantFreesOldRow(t *testing.T) {
	w := NewWorld()
	old, err := w.Spawn(NewBundle1(Position{X: 1, Y: 2}))
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	forced := EntityFromBits(uint64(old.generation+1)<<32 | uint64(old.id))
	if err := w.SpawnAt(forced, NewBundle1(Velocity{X: 9})); err != nil {
		t.Fatalf("SpawnAt() error = %v", err)
	}

	if w.Contains(old) {
		t.Errorf("World still contains the overwritten generation after SpawnAt")
	}

	total := 0
	for _, view := range w.Archetypes() {
		total += view.Len()
	}
	if total != 1 {
		t.Errorf("archetype row count across Archetypes() = %d, want 1 (old occupant's row should have been reclaimed)", total)
	}

	it, err := Query(w, Ref[Position]())
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	defer it.Close()
	if it.Next() {
		t.Errorf("Position-bearing row from the overwritten entity is still reachable by iteration")
	}
}

func TestCommandBufferDespawnOnRealEntity(t *testing.T) {
	w := NewWorld()
	ent, err := w.Spawn(NewBundle1(Position{}))
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	cb := NewCommandBuffer()
	cb.Despawn(ent)
	if errs := cb.RunOn(w); len(errs) != 0 {
		t.Fatalf("RunOn() errors = %v", errs)
	}
	if w.Contains(ent) {
		t.Errorf("World still contains entity after replayed Despawn")
	}
}
