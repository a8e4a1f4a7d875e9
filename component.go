package warehouse

// ComponentType[T] is a typed descriptor for a registered component type,
// obtained once via NewComponentType and reused across spawns, queries and
// direct entity access. It plays the role the teacher's
// AccessibleComponent[T] + FactoryNewComponent[T] pair played, but no
// longer requires the component to implement any marker interface — any
// movable Go type is a valid component (spec.md §3, "TypeInfo").
type ComponentType[T any] struct {
	info *typeInfo
}

// NewComponentType interns T's TypeInfo (on first use for this process) and
// returns a descriptor for it. Safe to call repeatedly; later calls return
// a descriptor for the same interned ComponentID.
func NewComponentType[T any]() ComponentType[T] {
	return ComponentType[T]{info: typeInfoFor[T]()}
}

// ID returns the interned ComponentID for T.
func (c ComponentType[T]) ID() ComponentID { return c.info.id }

func (c ComponentType[T]) String() string { return c.info.Name }

// typedColumnOf locates T's column within archetype a, if present.
func (c ComponentType[T]) typedColumnOf(a *archetype) (*typedColumn[T], bool) {
	idx, ok := a.columnIndexOf(c.info.id)
	if !ok {
		return nil, false
	}
	tc, ok := a.columns[idx].(*typedColumn[T])
	if !ok {
		panicInvariant("column type mismatch for registered component")
	}
	return tc, ok
}

// Get returns a pointer to T on ent, or MissingComponent if ent exists but
// lacks the component, or NoSuchEntity if the handle is stale.
func (c ComponentType[T]) Get(w *World, ent Entity) (*T, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	loc, err := w.entities.resolve(ent)
	if err != nil {
		return nil, err
	}
	a := w.archetypes.byIndex(loc.archetype)
	col, ok := c.typedColumnOf(a)
	if !ok {
		return nil, MissingComponent{Entity: ent, Component: c.info.id}
	}
	return &col.data[loc.row], nil
}

// Has reports whether ent currently carries a component of type T.
func (c ComponentType[T]) Has(w *World, ent Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	loc, err := w.entities.resolve(ent)
	if err != nil {
		return false
	}
	_, ok := c.typedColumnOf(w.archetypes.byIndex(loc.archetype))
	return ok
}
