package warehouse

// PreparedQuery caches the set of archetypes a Spec matches, keyed by the
// world's archetype generation (spec.md §4.F, "PreparedQuery"). Rebuilt
// lazily whenever ArchetypeSet.generationNow() has advanced since the last
// build, so repeated iteration over a stable world pays the archetype scan
// only once.
type PreparedQuery[Item any] struct {
	spec       Spec[Item]
	generation uint64
	matched    []*archetype
}

// Prepare wraps spec in a PreparedQuery. The first Iter/IterMut call
// performs the initial archetype scan.
func Prepare[Item any](spec Spec[Item]) *PreparedQuery[Item] {
	return &PreparedQuery[Item]{spec: spec, generation: ^uint64(0)}
}

func (p *PreparedQuery[Item]) refresh(w *World) {
	gen := w.archetypes.generationNow()
	if gen == p.generation && p.matched != nil {
		return
	}
	p.matched = p.matched[:0]
	for _, a := range w.archetypes.snapshot() {
		if p.spec.matches(a.signature) {
			p.matched = append(p.matched, a)
		}
	}
	p.generation = gen
}

// Iter runs the prepared spec with dynamic (counter-based) borrow checking,
// refreshing the cached archetype list first if the world has grown new
// archetypes since the last run (spec.md §4.F, "query()").
func (p *PreparedQuery[Item]) Iter(w *World) (*QueryIter[Item], error) {
	p.refresh(w)
	return newQueryIter(w, p.spec, p.matched, true)
}

// IterMut runs the prepared spec assuming the caller already holds
// exclusive world access, skipping per-column borrow bookkeeping (spec.md
// §4.F, "query_mut()").
func (p *PreparedQuery[Item]) IterMut(w *World) *QueryIter[Item] {
	p.refresh(w)
	it, err := newQueryIter(w, p.spec, p.matched, false)
	if err != nil {
		// newQueryIter only returns an error from borrow acquisition, which
		// is skipped entirely in the non-dynamic (query_mut) mode.
		panicInvariant("IterMut: unexpected borrow error in exclusive mode")
	}
	return it
}
