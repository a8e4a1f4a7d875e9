package warehouse

import (
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// World owns every entity, archetype and component in one ECS instance
// (spec.md §6, "World operations"). Structural mutation (spawn, despawn,
// insert, remove, exchange, clear) requires exclusive access; mu enforces
// that against concurrently running query() iterators, which otherwise
// coordinate at the finer, per-column granularity of BorrowState (spec.md
// §5).
type World struct {
	mu         sync.RWMutex
	entities   *entities
	archetypes *archetypeSet
	logger     *zap.Logger
	metrics    *metricsSink
}

// NewWorld returns an empty World, picking up whatever logger/metrics are
// currently installed on the package-level Config.
func NewWorld() *World {
	logger := Config.loggerOrNop()
	metrics := newMetricsSink(Config.metrics)
	return &World{
		entities:   newEntities(),
		archetypes: newArchetypeSet(logger, metrics),
		logger:     logger,
		metrics:    metrics,
	}
}

// Spawn inserts bundle into a fresh entity in the empty archetype's target
// (spec.md §6, "spawn(bundle) → Entity").
func (w *World) Spawn(bundle Bundle) (Entity, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids, err := bundle.componentIDs()
	if err != nil {
		return Dangling, err
	}
	dst := w.archetypes.archetypeFor(ids)
	ent := w.entities.allocate()
	row := dst.allocRow(ent)
	bundle.put(dst, row)
	w.entities.setLocation(ent, location{archetype: dst.index, row: uint32(row)})
	w.metrics.entitiesAlive(w.entities.len())
	return ent, nil
}

// SpawnAt force-allocates ent (see Entities.spawnAt) and inserts bundle
// there, used by deserialization collaborators restoring a known id/
// generation pair (spec.md §6, "spawn_at(Entity, bundle)"). If ent's id was
// already occupied by a live, older-generation entity, that entity's row is
// freed from its archetype first, the same way Despawn/Take do.
func (w *World) SpawnAt(ent Entity, bundle Bundle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	ids, err := bundle.componentIDs()
	if err != nil {
		return err
	}
	oldLoc, hadOld, err := w.entities.spawnAt(ent)
	if err != nil {
		return err
	}
	if hadOld {
		old := w.archetypes.byIndex(oldLoc.archetype)
		moved := old.removeRow(int(oldLoc.row))
		if moved != Dangling {
			w.entities.setLocationByID(moved.ID(), location{archetype: old.index, row: oldLoc.row})
		}
	}
	dst := w.archetypes.archetypeFor(ids)
	row := dst.allocRow(ent)
	bundle.put(dst, row)
	w.entities.setLocation(ent, location{archetype: dst.index, row: uint32(row)})
	w.metrics.entitiesAlive(w.entities.len())
	return nil
}

// SpawnBatch spawns one entity per bundle, reserving allocator capacity
// up front (spec.md §6, "spawn_batch(iter)"; §4.A, "reserve(n): ... spawn_batch
// uses vector-style doubling"). Stops and returns what it spawned so far on
// the first bundle error (e.g. DuplicateBundleType).
func (w *World) SpawnBatch(bundles []Bundle) ([]Entity, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entities.reserve(len(bundles))
	out := make([]Entity, 0, len(bundles))
	for _, b := range bundles {
		ids, err := b.componentIDs()
		if err != nil {
			return out, err
		}
		dst := w.archetypes.archetypeFor(ids)
		ent := w.entities.allocate()
		row := dst.allocRow(ent)
		b.put(dst, row)
		w.entities.setLocation(ent, location{archetype: dst.index, row: uint32(row)})
		out = append(out, ent)
	}
	w.metrics.entitiesAlive(w.entities.len())
	return out, nil
}

// Despawn frees ent's id slot and removes its row from its archetype
// (spec.md §6, "despawn(Entity)").
func (w *World) Despawn(ent Entity) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	loc, err := w.entities.free(ent)
	if err != nil {
		return err
	}
	a := w.archetypes.byIndex(loc.archetype)
	moved := a.removeRow(int(loc.row))
	if moved != Dangling {
		w.entities.setLocationByID(moved.ID(), location{archetype: a.index, row: loc.row})
	}
	w.metrics.entitiesAlive(w.entities.len())
	return nil
}

// moveEntityTo implements the insert/remove/exchange algorithm shared by
// Insert, Remove and Exchange (spec.md §4.D): shared columns move by value
// from src to dst, bundle (if non-nil) fills whatever dst also needs, and
// the vacated src row is swap-removed.
func (w *World) moveEntityTo(ent Entity, loc location, dst *archetype, bundle Bundle) {
	src := w.archetypes.byIndex(loc.archetype)
	newRow := dst.allocRow(ent)
	for _, id := range src.ids {
		dstIdx, ok := dst.columnIndexOf(id)
		if !ok {
			continue
		}
		srcIdx, _ := src.columnIndexOf(id)
		src.columns[srcIdx].moveTo(int(loc.row), dst.columns[dstIdx], newRow)
	}
	if bundle != nil {
		bundle.put(dst, newRow)
	}
	moved := src.removeRow(int(loc.row))
	if moved != Dangling {
		w.entities.setLocationByID(moved.ID(), location{archetype: src.index, row: loc.row})
	}
	w.entities.setLocation(ent, location{archetype: dst.index, row: uint32(newRow)})
}

// Insert adds bundle's components to ent, moving it to the archetype for
// its current signature plus bundle's (spec.md §6, "insert(Entity, bundle)").
// A single-component bundle takes the edge-cache fast path (spec.md §4.D).
func (w *World) Insert(ent Entity, bundle Bundle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	loc, err := w.entities.resolve(ent)
	if err != nil {
		return err
	}
	insertIDs, err := bundle.componentIDs()
	if err != nil {
		return err
	}
	src := w.archetypes.byIndex(loc.archetype)
	var dst *archetype
	if len(insertIDs) == 1 {
		dst = w.archetypes.archetypeAfterInsert(src, insertIDs[0])
	} else {
		target := sortedUnique(append(append([]ComponentID(nil), src.ids...), insertIDs...))
		dst = w.archetypes.archetypeFor(target)
	}
	w.moveEntityTo(ent, loc, dst, bundle)
	return nil
}

// Remove drops ids from ent, moving it to the archetype for its current
// signature minus ids (spec.md §6, "remove<T…>(Entity) → T…"). This Go API
// returns only an error; callers that need the removed values should read
// them via Get before calling Remove.
func (w *World) Remove(ent Entity, ids ...ComponentID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	loc, err := w.entities.resolve(ent)
	if err != nil {
		return err
	}
	src := w.archetypes.byIndex(loc.archetype)
	var dst *archetype
	if len(ids) == 1 {
		dst = w.archetypes.archetypeAfterRemove(src, ids[0])
	} else {
		removeSet := make(map[ComponentID]bool, len(ids))
		for _, id := range ids {
			removeSet[id] = true
		}
		remaining := make([]ComponentID, 0, len(src.ids))
		for _, id := range src.ids {
			if !removeSet[id] {
				remaining = append(remaining, id)
			}
		}
		dst = w.archetypes.archetypeFor(remaining)
	}
	w.moveEntityTo(ent, loc, dst, nil)
	return nil
}

// Exchange performs remove+insert as one archetype transition (spec.md §6,
// "exchange(Entity, remove, insert)"; §4.D: "avoiding an intermediate
// archetype").
func (w *World) Exchange(ent Entity, removeIDs []ComponentID, insertBundle Bundle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	loc, err := w.entities.resolve(ent)
	if err != nil {
		return err
	}
	insertIDs, err := insertBundle.componentIDs()
	if err != nil {
		return err
	}
	src := w.archetypes.byIndex(loc.archetype)
	removeSet := make(map[ComponentID]bool, len(removeIDs))
	for _, id := range removeIDs {
		removeSet[id] = true
	}
	kept := make([]ComponentID, 0, len(src.ids))
	for _, id := range src.ids {
		if !removeSet[id] {
			kept = append(kept, id)
		}
	}
	target := sortedUnique(append(kept, insertIDs...))
	dst := w.archetypes.archetypeFor(target)
	w.moveEntityTo(ent, loc, dst, insertBundle)
	return nil
}

// Clear despawns every entity without shrinking archetype capacity
// (spec.md §6, "clear").
func (w *World) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, a := range w.archetypes.snapshot() {
		for _, ent := range a.entities {
			w.entities.free(ent)
		}
		a.clear()
	}
	w.metrics.entitiesAlive(0)
}

// Len returns the number of currently live entities (spec.md §6, "len").
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.entities.len()
}

// Contains reports whether ent is currently live (spec.md §6, "contains").
func (w *World) Contains(ent Entity) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.entities.contains(ent)
}

// FindEntityFromID reconstructs the live generation for a raw id (spec.md
// §6, "find_entity_from_id(u32)").
func (w *World) FindEntityFromID(id uint32) (Entity, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.entities.findByID(id)
}

// ArchetypesGeneration returns the monotonically increasing counter bumped
// whenever a new archetype is created (spec.md §6, "archetypes_generation()
// → u64"; §8, testable property 8).
func (w *World) ArchetypesGeneration() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.archetypes.generationNow()
}

// ArchetypeView exposes read-only introspection of one archetype for
// collaborators like serialization (spec.md §6, "Archetype introspection").
type ArchetypeView struct {
	a *archetype
}

// ID is the archetype's stable index.
func (v ArchetypeView) ID() uint32 { return v.a.index }

// Len is the number of entities (rows) currently stored.
func (v ArchetypeView) Len() int { return v.a.Len() }

// ComponentIDs returns the archetype's sorted component ids.
func (v ArchetypeView) ComponentIDs() []ComponentID { return v.a.ComponentIDs() }

// Entities returns the entities occupying each row, in row order.
func (v ArchetypeView) Entities() []Entity { return append([]Entity(nil), v.a.entities...) }

// Archetypes returns a snapshot of every archetype ever created in this
// World, in creation order (spec.md §6, "archetypes() → iterator").
func (w *World) Archetypes() []ArchetypeView {
	w.mu.RLock()
	defer w.mu.RUnlock()
	snap := w.archetypes.snapshot()
	out := make([]ArchetypeView, len(snap))
	for i, a := range snap {
		out[i] = ArchetypeView{a: a}
	}
	return out
}

// Take moves ent out of the world entirely, returning an EntityBuilder
// primed with its current component values so it can be spawned into
// another World (spec.md §6, "take(Entity) → EntityBuilder"). Per spec.md
// §9's open question, take() requires exclusive world access, same as any
// other mutation; there is no iteration-safe variant.
func (w *World) Take(ent Entity) (*EntityBuilder, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	loc, err := w.entities.resolve(ent)
	if err != nil {
		return nil, err
	}
	a := w.archetypes.byIndex(loc.archetype)
	b := NewEntityBuilder()
	for i, id := range a.ids {
		info := lookupTypeInfo(id)
		v := info.getErased(a.columns[i], int(loc.row))
		b.fields = append(b.fields, builderField{info: info, value: reflect.ValueOf(v)})
	}

	freed, err := w.entities.free(ent)
	if err != nil {
		return nil, err
	}
	moved := a.removeRow(int(freed.row))
	if moved != Dangling {
		w.entities.setLocationByID(moved.ID(), location{archetype: a.index, row: freed.row})
	}
	return b, nil
}
