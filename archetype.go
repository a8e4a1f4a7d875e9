package warehouse

import (
	"github.com/kamstrup/intmap"

	"github.com/archetype-io/warehouse/internal/bitset"
)

// minCapacity is the smallest capacity an archetype grows to on its first
// push, and the unit of geometric growth thereafter (spec.md §4.C: "grows
// if len==capacity using geometric growth, e.g. x2 with minimum 64").
const minCapacity = 64

// archEdge caches the destination archetype index for adding or removing a
// single component id from one archetype, avoiding a signature hash+lookup
// on the hot single-component World.Insert/World.Remove path (spec.md
// §4.D: "source archetype stores a small map from inserted/removed
// ComponentId to target archetype index").
type archEdge struct {
	add    map[ComponentID]uint32
	remove map[ComponentID]uint32
}

// archetype is one columnar store for a unique multiset of component types
// (spec.md §3, "Archetype"). Every column, plus the parallel entities
// slice, always has equal length and capacity (spec.md testable property
// 4, "Column parity").
type archetype struct {
	index     uint32
	signature bitset.Set
	ids       []ComponentID // sorted, parallel to columns/borrows
	columns   []column
	borrows   []borrowState
	entities  []Entity
	colIndex  *intmap.Map[uint32, int]
	edges     archEdge
}

// newArchetype builds a fresh archetype for the given sorted, deduplicated
// component ids.
func newArchetype(index uint32, ids []ComponentID) *archetype {
	a := &archetype{
		index:    index,
		ids:      ids,
		columns:  make([]column, len(ids)),
		borrows:  make([]borrowState, len(ids)),
		colIndex: intmap.New[uint32, int](len(ids)),
		edges: archEdge{
			add:    make(map[ComponentID]uint32),
			remove: make(map[ComponentID]uint32),
		},
	}
	for i, id := range ids {
		info := lookupTypeInfo(id)
		a.columns[i] = info.newCol(0)
		a.colIndex.Put(uint32(id), i)
		a.signature.Mark(uint32(id))
	}
	return a
}

// ID is the archetype's stable index within its World, assigned once on
// creation and never reused (spec.md §3: "never destroyed, keeps indices
// stable").
func (a *archetype) ID() uint32 { return a.index }

// Signature returns the archetype's canonical component-id bitset.
func (a *archetype) Signature() bitset.Set { return a.signature }

// ComponentIDs returns the archetype's sorted component ids.
func (a *archetype) ComponentIDs() []ComponentID { return a.ids }

// Len is the number of entities (and rows) currently stored.
func (a *archetype) Len() int { return len(a.entities) }

// IsEmpty reports whether this is the world's empty (no-component)
// archetype, which never participates in dynamic borrow checking (spec.md
// §4.F: "Empty archetypes never contribute to borrow state").
func (a *archetype) IsEmpty() bool { return len(a.ids) == 0 }

func (a *archetype) columnIndexOf(id ComponentID) (int, bool) {
	return a.colIndex.Get(uint32(id))
}

func (a *archetype) matchesAll(req bitset.Set) bool {
	return a.signature.ContainsAll(req)
}

// grow ensures every column (and the entities slice) can hold at least n
// more rows without reallocating, doubling from minCapacity as needed.
func (a *archetype) grow(n int) {
	need := len(a.entities) + n
	newCap := cap(a.entities)
	if newCap == 0 {
		newCap = minCapacity
	}
	for newCap < need {
		newCap *= 2
	}
	if newCap > cap(a.entities) {
		grown := make([]Entity, len(a.entities), newCap)
		copy(grown, a.entities)
		a.entities = grown
		for _, col := range a.columns {
			col.grow(newCap)
		}
	}
}

// allocRow appends a new, zero-valued row for ent and returns its index.
// Callers must immediately fill every column via the column's typed
// accessor or a Bundle.Put.
func (a *archetype) allocRow(ent Entity) int {
	a.grow(1)
	a.entities = append(a.entities, ent)
	row := len(a.entities) - 1
	for _, col := range a.columns {
		col.pushZeroErased()
	}
	return row
}

// removeRow swap-removes row i from every column and the entities slice.
// It returns the entity that was moved into row i to fill the gap (the
// entity previously occupying the last row), or Dangling if row i was
// already last (spec.md §4.C, Archetype.remove).
func (a *archetype) removeRow(i int) Entity {
	last := len(a.entities) - 1
	moved := Dangling
	if i != last {
		moved = a.entities[last]
	}
	a.entities[last] = Entity{}
	a.entities = a.entities[:last]
	for _, col := range a.columns {
		col.swapRemove(i)
	}
	return moved
}

// clear drops every row in the archetype without releasing capacity.
func (a *archetype) clear() {
	a.entities = a.entities[:0]
	for _, col := range a.columns {
		col.truncate()
	}
}
