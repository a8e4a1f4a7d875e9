package warehouse

import "sync"

// location records where an entity's components currently live.
type location struct {
	archetype uint32
	row       uint32
}

// entityMeta is the per-id slot owned by the allocator (spec.md §3,
// "EntityMeta"). Generation is bumped on every free() so stale handles are
// rejected; loc is meaningless (and never read) while the slot is free.
type entityMeta struct {
	generation uint32
	loc        location
	live       bool
}

// entities is the generational handle allocator (spec.md §4.A). It hands
// out dense ids, recycling freed ones with a bumped generation, and keeps
// the id -> location table that World mutations and queries resolve
// against. Grounded on original_source/src/entities.rs, simplified from its
// lock-free reservation scheme to a single mutex since this library's
// concurrency model (spec.md §5) only requires queries, not spawns, to run
// from multiple goroutines at once.
type entities struct {
	mu       sync.Mutex
	meta     []entityMeta
	freelist []uint32
	liveLen  uint32
}

// NoSuchEntity is returned whenever a caller presents a stale or
// never-allocated Entity handle (spec.md §7).
type NoSuchEntity struct {
	Entity Entity
}

func (e NoSuchEntity) Error() string {
	return "warehouse: no such entity: " + e.Entity.String()
}

func newEntities() *entities {
	return &entities{}
}

// allocate pops an id off the freelist (reusing the generation free()
// already bumped) or grows the meta table. O(1). The returned entity has no location yet; the
// caller must record one immediately.
func (e *entities) allocate() Entity {
	e.mu.Lock()
	defer e.mu.Unlock()

	if n := len(e.freelist); n > 0 {
		id := e.freelist[n-1]
		e.freelist = e.freelist[:n-1]
		m := &e.meta[id]
		m.live = true
		e.liveLen++
		return Entity{id: id, generation: m.generation}
	}

	id := uint32(len(e.meta))
	e.meta = append(e.meta, entityMeta{generation: 1, live: true})
	e.liveLen++
	return Entity{id: id, generation: 1}
}

// free validates e's generation, marks its slot free (bumping the
// generation so the id can be reused safely), and returns the location it
// previously occupied so the caller can finish removing its row from the
// archetype.
func (e *entities) free(ent Entity) (location, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if int(ent.id) >= len(e.meta) {
		return location{}, NoSuchEntity{Entity: ent}
	}
	m := &e.meta[ent.id]
	if !m.live || m.generation != ent.generation {
		return location{}, NoSuchEntity{Entity: ent}
	}

	loc := m.loc
	m.live = false
	m.generation++
	if m.generation == 0 {
		// Wrapped past the dangling sentinel; skip it so a live entity can
		// never again compare equal to Dangling.
		m.generation = 1
	}
	m.loc = location{}
	e.freelist = append(e.freelist, ent.id)
	e.liveLen--
	return loc, nil
}

// resolve validates e's generation and returns its current location.
func (e *entities) resolve(ent Entity) (location, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resolveLocked(ent)
}

func (e *entities) resolveLocked(ent Entity) (location, error) {
	if ent.IsDangling() || int(ent.id) >= len(e.meta) {
		return location{}, NoSuchEntity{Entity: ent}
	}
	m := e.meta[ent.id]
	if !m.live || m.generation != ent.generation {
		return location{}, NoSuchEntity{Entity: ent}
	}
	return m.loc, nil
}

// setLocation overwrites the location recorded for a live entity. Callers
// must already hold a valid (id, generation) pair, typically just returned
// by allocate() or read from a prior resolve().
func (e *entities) setLocation(ent Entity, loc location) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meta[ent.id].loc = loc
}

// setLocationByID updates the location of whichever generation currently
// occupies slot id. Used after a swap-remove, when the entity that moved
// into the vacated row is known only by id/generation pulled from the
// archetype's own entities column.
func (e *entities) setLocationByID(id uint32, loc location) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.meta[id].loc = loc
}

// contains reports whether ent refers to a currently live entity.
func (e *entities) contains(ent Entity) bool {
	_, err := e.resolve(ent)
	return err == nil
}

// reserve grows the meta slice's capacity ahead of a known batch size,
// vector-style doubling when the existing capacity falls short.
func (e *entities) reserve(n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	need := len(e.meta) + n
	if cap(e.meta) >= need {
		return
	}
	grown := make([]entityMeta, len(e.meta), max(need, 2*cap(e.meta)))
	copy(grown, e.meta)
	e.meta = grown
}

// findByID reconstructs the current generation for a raw id, used by
// deserialization collaborators (spec.md §4.A). Returns false if the id has
// never been allocated or currently sits on the freelist.
func (e *entities) findByID(id uint32) (Entity, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if int(id) >= len(e.meta) {
		return Entity{}, false
	}
	m := e.meta[id]
	if !m.live {
		return Entity{}, false
	}
	return Entity{id: id, generation: m.generation}, true
}

// spawnAt force-allocates a specific (id, generation), growing the meta
// table and freelist as needed. It fails with an error if the slot is
// already occupied by a strictly newer generation, mirroring hecs's
// alloc_at (original_source/src/entities.rs) used for deserialization.
//
// alloc_at's own contract is explicit that the returned location of any
// entity the id previously belonged to "should be written immediately" —
// i.e. the caller owns freeing that old row right away. spawnAt mirrors
// that by returning the old occupant's location (and whether one existed)
// instead of silently discarding it the way free()'s callers never would.
func (e *entities) spawnAt(ent Entity) (location, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if ent.IsDangling() {
		return location{}, false, errors_newInvariant("spawnAt: refusing to allocate the dangling entity")
	}

	if int(ent.id) >= len(e.meta) {
		for id := uint32(len(e.meta)); id < ent.id; id++ {
			e.meta = append(e.meta, entityMeta{generation: 1})
			e.freelist = append(e.freelist, id)
		}
		e.meta = append(e.meta, entityMeta{generation: ent.generation, live: true})
		e.liveLen++
		return location{}, false, nil
	}

	m := &e.meta[ent.id]
	var oldLoc location
	var hadOld bool
	if m.live {
		if m.generation > ent.generation {
			return location{}, false, NoSuchEntity{Entity: ent}
		}
		oldLoc = m.loc
		hadOld = true
	} else {
		for i, id := range e.freelist {
			if id == ent.id {
				e.freelist = append(e.freelist[:i], e.freelist[i+1:]...)
				break
			}
		}
		e.liveLen++
	}
	m.generation = ent.generation
	m.live = true
	m.loc = location{}
	return oldLoc, hadOld, nil
}

func (e *entities) len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return int(e.liveLen)
}
