package warehouse

import "testing"

func TestViewGetReadsRowsByIndex(t *testing.T) {
	w := NewWorld()
	var ents []Entity
	for i := 0; i < 3; i++ {
		ent, err := w.Spawn(NewBundle1(Position{X: float64(i)}))
		if err != nil {
			t.Fatalf("Spawn() error = %v", err)
		}
		ents = append(ents, ent)
	}

	loc, err := w.entities.resolve(ents[0])
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}

	v, ok := NewView[Position](w, loc.archetype)
	if !ok {
		t.Fatalf("NewView() ok = false, want true")
	}
	if v.Len() != 3 {
		t.Errorf("Len() = %d, want 3", v.Len())
	}
	for i := 0; i < 3; i++ {
		if got := v.Get(i).X; got != float64(i) {
			t.Errorf("Get(%d).X = %v, want %v", i, got, float64(i))
		}
	}
}

func TestViewMissingComponentReturnsFalse(t *testing.T) {
	w := NewWorld()
	ent, err := w.Spawn(NewBundle1(Position{}))
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	loc, err := w.entities.resolve(ent)
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if _, ok := NewView[Velocity](w, loc.archetype); ok {
		t.Errorf("NewView() ok = true for absent component, want false")
	}
}

func TestViewGetMutNRejectsOverlappingRows(t *testing.T) {
	w := NewWorld()
	for i := 0; i < 2; i++ {
		if _, err := w.Spawn(NewBundle1(Position{X: float64(i)})); err != nil {
			t.Fatalf("Spawn() error = %v", err)
		}
	}
	loc, err := w.entities.resolve(Entity{id: 0, generation: 1})
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	v, ok := NewView[Position](w, loc.archetype)
	if !ok {
		t.Fatalf("NewView() ok = false, want true")
	}

	defer func() {
		if recover() == nil {
			t.Errorf("GetMutN() with duplicate rows did not panic")
		}
	}()
	v.GetMutN(0, 0)
}

func TestViewGetMutNSwapsDistinctRows(t *testing.T) {
	w := NewWorld()
	for i := 0; i < 2; i++ {
		if _, err := w.Spawn(NewBundle1(Position{X: float64(i)})); err != nil {
			t.Fatalf("Spawn() error = %v", err)
		}
	}
	loc, err := w.entities.resolve(Entity{id: 0, generation: 1})
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	v, ok := NewView[Position](w, loc.archetype)
	if !ok {
		t.Fatalf("NewView() ok = false, want true")
	}

	ptrs := v.GetMutN(0, 1)
	ptrs[0].X, ptrs[1].X = ptrs[1].X, ptrs[0].X
	if v.Get(0).X != 1 || v.Get(1).X != 0 {
		t.Errorf("GetMutN() swap produced (%v, %v), want (1, 0)", v.Get(0).X, v.Get(1).X)
	}
}
