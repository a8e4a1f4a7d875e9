package warehouse

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/archetype-io/warehouse/internal/bitset"
)

// emptyArchetypeIndex is the fixed slot of the always-present, no-component
// archetype (spec.md §3: "The empty archetype always exists at a fixed
// index").
const emptyArchetypeIndex uint32 = 0

// archetypeSet owns every archetype ever created in a World and the
// registry mapping a canonical signature to its archetype index (spec.md
// §3, "ArchetypeSet"). Its generation counter increments on every new
// archetype so PreparedQuery caches know when to rebuild (spec.md §4.F).
type archetypeSet struct {
	mu         sync.RWMutex
	list       []*archetype
	bySig      map[bitset.Set]uint32
	generation uint64

	logger  *zap.Logger
	metrics *metricsSink
}

func newArchetypeSet(logger *zap.Logger, metrics *metricsSink) *archetypeSet {
	s := &archetypeSet{
		bySig:   make(map[bitset.Set]uint32),
		logger:  logger,
		metrics: metrics,
	}
	empty := newArchetype(emptyArchetypeIndex, nil)
	s.list = append(s.list, empty)
	s.bySig[empty.signature] = emptyArchetypeIndex
	return s
}

func (s *archetypeSet) byIndex(i uint32) *archetype {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list[i]
}

func (s *archetypeSet) empty() *archetype {
	return s.byIndex(emptyArchetypeIndex)
}

func (s *archetypeSet) generationNow() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// snapshot returns the current archetype list for iteration. Safe to hold
// across archetype creation: indices are never reused or reordered.
func (s *archetypeSet) snapshot() []*archetype {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*archetype, len(s.list))
	copy(out, s.list)
	return out
}

// getOrCreate returns the archetype for the canonical (sorted, deduplicated)
// set of component ids, creating it if this exact signature has never been
// seen before.
func (s *archetypeSet) getOrCreate(ids []ComponentID) *archetype {
	sig := signatureOf(ids)

	s.mu.RLock()
	if idx, ok := s.bySig[sig]; ok {
		a := s.list[idx]
		s.mu.RUnlock()
		return a
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.bySig[sig]; ok {
		return s.list[idx]
	}

	idx := uint32(len(s.list))
	a := newArchetype(idx, ids)
	s.list = append(s.list, a)
	s.bySig[sig] = idx
	s.generation++
	if s.logger != nil {
		s.logger.Debug("archetype created",
			zap.Uint32("index", idx),
			zap.Int("components", len(ids)),
			zap.Uint64("generation", s.generation),
		)
	}
	if s.metrics != nil {
		s.metrics.archetypeCreated()
	}
	return a
}

// signatureOf marks ids into a signature bitset. A bitset ignores order and
// duplicates, so every permutation of the same ids yields the same key. The
// canonical (ascending) order of an archetype's own ids slice comes from
// callers passing ids through sortedUnique first.
func signatureOf(ids []ComponentID) bitset.Set {
	var sig bitset.Set
	for _, id := range ids {
		sig.Mark(uint32(id))
	}
	return sig
}

// sortedUnique returns ids sorted ascending with duplicates removed,
// leaving the input slice untouched.
func sortedUnique(ids []ComponentID) []ComponentID {
	out := append([]ComponentID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	n := 0
	for i, id := range out {
		if i == 0 || id != out[i-1] {
			out[n] = id
			n++
		}
	}
	return out[:n]
}

// archetypeAfterInsert returns the archetype reached from src by adding a
// single component id, using and populating src's edge cache (spec.md
// §4.D).
func (s *archetypeSet) archetypeAfterInsert(src *archetype, id ComponentID) *archetype {
	if dst, ok := src.edges.add[id]; ok {
		return s.byIndex(dst)
	}
	ids := sortedUnique(append(append([]ComponentID(nil), src.ids...), id))
	dst := s.getOrCreate(ids)
	src.edges.add[id] = dst.index
	dst.edges.remove[id] = src.index
	return dst
}

// archetypeAfterRemove returns the archetype reached from src by removing a
// single component id, using and populating src's edge cache.
func (s *archetypeSet) archetypeAfterRemove(src *archetype, id ComponentID) *archetype {
	if dst, ok := src.edges.remove[id]; ok {
		return s.byIndex(dst)
	}
	ids := make([]ComponentID, 0, len(src.ids))
	for _, existing := range src.ids {
		if existing != id {
			ids = append(ids, existing)
		}
	}
	dst := s.getOrCreate(ids)
	src.edges.remove[id] = dst.index
	dst.edges.add[id] = src.index
	return dst
}

// archetypeFor computes (or looks up) the archetype for an arbitrary set of
// ids, used by the general multi-component insert/remove/exchange path
// where the single-id edge cache does not apply.
func (s *archetypeSet) archetypeFor(ids []ComponentID) *archetype {
	return s.getOrCreate(sortedUnique(ids))
}
