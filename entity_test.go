package warehouse

import "testing"

// Position, Velocity and Health are the component types shared by every
// test file in this package.
type Position struct {
	X, Y float64
}

type Velocity struct {
	X, Y float64
}

type Health struct {
	Current, Max int
}

func TestSpawnAssignsLiveEntities(t *testing.T) {
	w := NewWorld()

	tests := []struct {
		name   string
		bundle Bundle
	}{
		{"single component", NewBundle1(Position{X: 1, Y: 2})},
		{"two components", NewBundle2(Position{}, Velocity{X: 1})},
		{"three components", NewBundle3(Position{}, Velocity{}, Health{Current: 10, Max: 10})},
	}

	var spawned []Entity
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ent, err := w.Spawn(tt.bundle)
			if err != nil {
				t.Fatalf("Spawn() error = %v", err)
			}
			if ent.IsDangling() {
				t.Errorf("Spawn() returned a dangling entity")
			}
			if !w.Contains(ent) {
				t.Errorf("World does not contain just-spawned entity %v", ent)
			}
			spawned = append(spawned, ent)
		})
	}

	if w.Len() != len(spawned) {
		t.Errorf("World.Len() = %d, want %d", w.Len(), len(spawned))
	}
}

func TestDespawnFreesSlotForReuse(t *testing.T) {
	w := NewWorld()

	ent, err := w.Spawn(NewBundle1(Position{X: 1, Y: 1}))
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if err := w.Despawn(ent); err != nil {
		t.Fatalf("Despawn() error = %v", err)
	}
	if w.Contains(ent) {
		t.Errorf("World still contains despawned entity %v", ent)
	}

	next, err := w.Spawn(NewBundle1(Position{X: 2, Y: 2}))
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	if next.ID() != ent.ID() {
		t.Errorf("expected the freed id slot to be reused, got a fresh id %d instead of %d", next.ID(), ent.ID())
	}
	if next.Generation() == ent.Generation() {
		t.Errorf("reused id slot did not bump generation: both are %d", next.Generation())
	}

	if err := w.Despawn(ent); err == nil {
		t.Errorf("Despawn() on a stale generation handle should fail, got nil error")
	}
}

func TestInsertRemoveMovesArchetype(t *testing.T) {
	w := NewWorld()
	ent, err := w.Spawn(NewBundle1(Position{X: 1, Y: 1}))
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	if err := w.Insert(ent, NewBundle1(Velocity{X: 5, Y: 5})); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if !Has[Velocity](w.Ref(ent)) {
		t.Errorf("entity should carry Velocity after Insert")
	}

	velID := NewComponentType[Velocity]().ID()
	if err := w.Remove(ent, velID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if Has[Velocity](w.Ref(ent)) {
		t.Errorf("entity should not carry Velocity after Remove")
	}
	if !Has[Position](w.Ref(ent)) {
		t.Errorf("Remove() should not disturb Position")
	}
}

func TestFindEntityFromID(t *testing.T) {
	w := NewWorld()
	ent, err := w.Spawn(NewBundle1(Position{}))
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	found, ok := w.FindEntityFromID(ent.ID())
	if !ok || found != ent {
		t.Errorf("FindEntityFromID(%d) = (%v, %v), want (%v, true)", ent.ID(), found, ok, ent)
	}

	if err := w.Despawn(ent); err != nil {
		t.Fatalf("Despawn() error = %v", err)
	}
	if _, ok := w.FindEntityFromID(ent.ID()); ok {
		t.Errorf("FindEntityFromID should fail to find a despawned id's stale generation")
	}
}

func TestClearRemovesAllEntities(t *testing.T) {
	w := NewWorld()
	for i := 0; i < 10; i++ {
		if _, err := w.Spawn(NewBundle1(Position{X: float64(i)})); err != nil {
			t.Fatalf("Spawn() error = %v", err)
		}
	}
	w.Clear()
	if w.Len() != 0 {
		t.Errorf("World.Len() = %d after Clear(), want 0", w.Len())
	}
}
