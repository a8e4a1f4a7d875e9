package warehouse

import "testing"

func TestBorrowStateSharedAllowsMultipleReaders(t *testing.T) {
	var b borrowState
	if !b.tryAcquireShared() {
		t.Fatalf("first tryAcquireShared() = false, want true")
	}
	if !b.tryAcquireShared() {
		t.Fatalf("second tryAcquireShared() = false, want true")
	}
	if b.tryAcquireUnique() {
		t.Errorf("tryAcquireUnique() succeeded while shared borrows are live")
	}
	b.releaseShared()
	b.releaseShared()
	if !b.tryAcquireUnique() {
		t.Errorf("tryAcquireUnique() failed after all shared borrows released")
	}
}

func TestBorrowStateUniqueExcludesEverything(t *testing.T) {
	var b borrowState
	if !b.tryAcquireUnique() {
		t.Fatalf("tryAcquireUnique() = false, want true")
	}
	if b.tryAcquireShared() {
		t.Errorf("tryAcquireShared() succeeded while a unique borrow is live")
	}
	if b.tryAcquireUnique() {
		t.Errorf("second tryAcquireUnique() succeeded while a unique borrow is live")
	}
	b.releaseUnique()
	if !b.tryAcquireShared() {
		t.Errorf("tryAcquireShared() failed after unique borrow released")
	}
}

func TestQueryRejectsConcurrentConflictingBorrow(t *testing.T) {
	w := NewWorld()
	if _, err := w.Spawn(NewBundle2(Position{}, Velocity{})); err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	it, err := Query(w, Mut[Position]())
	if err != nil {
		t.Fatalf("first Query() error = %v", err)
	}
	defer it.Close()

	if _, err := Query(w, Ref[Position]()); err == nil {
		t.Errorf("second Query() for a conflicting borrow succeeded, want ComponentBorrowConflict")
	} else if _, ok := err.(ComponentBorrowConflict); !ok {
		t.Errorf("second Query() error = %T, want ComponentBorrowConflict", err)
	}

	// A query over a disjoint component is unaffected by Position's unique borrow.
	it2, err := Query(w, Ref[Velocity]())
	if err != nil {
		t.Errorf("disjoint Query() error = %v", err)
	} else {
		it2.Close()
	}
}
