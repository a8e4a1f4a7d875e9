package warehouse

// Query runs spec with dynamic, counter-based borrow checking: multiple
// Query iterators may coexist across goroutines as long as every archetype
// they both visit grants their accesses compatibly (spec.md §4.F,
// "query()"). Returns ComponentBorrowConflict immediately, before any
// archetype is touched, if that is not the case.
func Query[Item any](w *World, spec Spec[Item]) (*QueryIter[Item], error) {
	return newQueryIter(w, spec, matchArchetypes(w, spec), true)
}

// QueryMut runs spec assuming the caller already holds (or is about to
// take) exclusive world access; it skips the per-column atomic borrow
// bookkeeping entirely; aliasing within the spec itself is still rejected
// at construction by Spec's own access-set merge (spec.md §4.F,
// "query_mut()").
func QueryMut[Item any](w *World, spec Spec[Item]) *QueryIter[Item] {
	it, err := newQueryIter(w, spec, matchArchetypes(w, spec), false)
	if err != nil {
		panicInvariant("QueryMut: unexpected borrow error in exclusive mode")
	}
	return it
}

// QueryOne resolves ent once and evaluates spec against its archetype
// directly, without building an iterator (spec.md §6, "query_one<Q>(Entity)").
func QueryOne[Item any](w *World, spec Spec[Item], ent Entity) (Item, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var zero Item
	loc, err := w.entities.resolve(ent)
	if err != nil {
		return zero, err
	}
	a := w.archetypes.byIndex(loc.archetype)
	if !spec.matches(a.signature) {
		return zero, QueryOneError{Entity: ent}
	}
	fetch := spec.prepare(a)
	return fetch(int(loc.row)), nil
}

// Satisfied reports whether ent's archetype matches spec, without fetching
// anything (spec.md §6, "satisfies<Q>(Entity)").
func Satisfied[Item any](w *World, spec Spec[Item], ent Entity) (bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	loc, err := w.entities.resolve(ent)
	if err != nil {
		return false, err
	}
	return spec.matches(w.archetypes.byIndex(loc.archetype).signature), nil
}

func matchArchetypes[Item any](w *World, spec Spec[Item]) []*archetype {
	snap := w.archetypes.snapshot()
	matched := make([]*archetype, 0, len(snap))
	for _, a := range snap {
		if spec.matches(a.signature) {
			matched = append(matched, a)
		}
	}
	return matched
}
