package warehouse

// Bundle is a compile-time (Bundle1..Bundle4) or type-erased (BuiltEntity,
// ColumnBatch row) heterogeneous set of components treated as a unit for
// insertion (spec.md §4.E). componentIDs is called once, before any column
// is touched, so a duplicate can be rejected atomically with
// DuplicateBundleType; put then streams each field into the already-sized
// target archetype row.
type Bundle interface {
	componentIDs() ([]ComponentID, error)
	put(a *archetype, row int)
}

func dedupeIDs(ids []ComponentID) error {
	seen := make(map[ComponentID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return DuplicateBundleType{Component: id}
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Bundle1 is a single-component Bundle.
type Bundle1[A any] struct{ A A }

// NewBundle1 builds a one-component Bundle.
func NewBundle1[A any](a A) Bundle1[A] { return Bundle1[A]{A: a} }

func (b Bundle1[A]) componentIDs() ([]ComponentID, error) {
	return []ComponentID{typeInfoFor[A]().id}, nil
}

func (b Bundle1[A]) put(a *archetype, row int) {
	putField[A](a, row, b.A)
}

// Bundle2 is a two-component Bundle.
type Bundle2[A, B any] struct {
	A A
	B B
}

// NewBundle2 builds a two-component Bundle.
func NewBundle2[A, B any](a A, b B) Bundle2[A, B] { return Bundle2[A, B]{A: a, B: b} }

func (b Bundle2[A, B]) componentIDs() ([]ComponentID, error) {
	ids := []ComponentID{typeInfoFor[A]().id, typeInfoFor[B]().id}
	if err := dedupeIDs(ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (b Bundle2[A, B]) put(a *archetype, row int) {
	putField[A](a, row, b.A)
	putField[B](a, row, b.B)
}

// Bundle3 is a three-component Bundle.
type Bundle3[A, B, C any] struct {
	A A
	B B
	C C
}

// NewBundle3 builds a three-component Bundle.
func NewBundle3[A, B, C any](a A, b B, c C) Bundle3[A, B, C] {
	return Bundle3[A, B, C]{A: a, B: b, C: c}
}

func (b Bundle3[A, B, C]) componentIDs() ([]ComponentID, error) {
	ids := []ComponentID{typeInfoFor[A]().id, typeInfoFor[B]().id, typeInfoFor[C]().id}
	if err := dedupeIDs(ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (b Bundle3[A, B, C]) put(a *archetype, row int) {
	putField[A](a, row, b.A)
	putField[B](a, row, b.B)
	putField[C](a, row, b.C)
}

// Bundle4 is a four-component Bundle.
type Bundle4[A, B, C, D any] struct {
	A A
	B B
	C C
	D D
}

// NewBundle4 builds a four-component Bundle.
func NewBundle4[A, B, C, D any](a A, b B, c C, d D) Bundle4[A, B, C, D] {
	return Bundle4[A, B, C, D]{A: a, B: b, C: c, D: d}
}

func (b Bundle4[A, B, C, D]) componentIDs() ([]ComponentID, error) {
	ids := []ComponentID{typeInfoFor[A]().id, typeInfoFor[B]().id, typeInfoFor[C]().id, typeInfoFor[D]().id}
	if err := dedupeIDs(ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (b Bundle4[A, B, C, D]) put(a *archetype, row int) {
	putField[A](a, row, b.A)
	putField[B](a, row, b.B)
	putField[C](a, row, b.C)
	putField[D](a, row, b.D)
}

// putField writes v into archetype a's column for T at row, panicking via
// the package's invariant mechanism if a has no such column — callers
// always allocate the row in the exact target archetype first, so a
// well-formed Bundle never hits this.
func putField[T any](a *archetype, row int, v T) {
	info := typeInfoFor[T]()
	idx, ok := a.columnIndexOf(info.id)
	if !ok {
		panicInvariant("Bundle.put: target archetype missing a declared component")
	}
	a.columns[idx].(*typedColumn[T]).data[row] = v
}
