package warehouse

import (
	"iter"

	"go.uber.org/zap"
)

// acquiredBorrow records one successfully acquired column borrow so it can
// be released, in the teacher cursor.go style of explicit Reset() cleanup
// on every iterator exit path rather than relying on a finalizer.
type acquiredBorrow struct {
	arch   *archetype
	col    int
	unique bool
}

// QueryIter is the per-archetype dense iterator a Spec produces (spec.md
// §4.F, "Iteration"). It walks its snapshot of matching archetypes in their
// creation order and, within each, rows in storage order — both stable for
// a fixed world state.
type QueryIter[Item any] struct {
	world      *World
	spec       Spec[Item]
	archetypes []*archetype
	acquired   []acquiredBorrow
	dynamic    bool
	closed     bool

	archIdx int
	row     int
	fetchFn func(int) Item
}

// newQueryIter takes the World's structural lock — shared (RLock) for a
// dynamic query() whose borrow counters allow compatible concurrent
// iterators, exclusive (Lock) for query_mut() — and, for the dynamic case,
// acquires a borrow on every column the spec declares across matched.
// Empty archetypes are skipped for borrow purposes (spec.md §4.F: "Empty
// archetypes never contribute to borrow state").
func newQueryIter[Item any](w *World, spec Spec[Item], matched []*archetype, dynamic bool) (*QueryIter[Item], error) {
	acc := newAccessSet()
	spec.access(acc) // validates self-aliasing before taking any lock, even in exclusive (QueryMut) mode

	if dynamic {
		w.mu.RLock()
	} else {
		w.mu.Lock()
	}
	qi := &QueryIter[Item]{world: w, spec: spec, archetypes: matched, archIdx: -1, dynamic: dynamic}
	if dynamic {
		acquired, err := acquireAll(matched, acc, w.metrics)
		if err != nil {
			w.mu.RUnlock()
			w.logger.Warn("query borrow conflict", zap.Error(err))
			return nil, err
		}
		qi.acquired = acquired
	}
	return qi, nil
}

func acquireAll(archetypes []*archetype, acc *accessSet, metrics *metricsSink) ([]acquiredBorrow, error) {
	var acquired []acquiredBorrow
	for _, a := range archetypes {
		if a.IsEmpty() {
			continue
		}
		for id, kind := range acc.kind {
			idx, ok := a.columnIndexOf(id)
			if !ok {
				continue
			}
			bs := &a.borrows[idx]
			var ok2 bool
			if kind == accessUnique {
				ok2 = bs.tryAcquireUnique()
			} else {
				ok2 = bs.tryAcquireShared()
			}
			if !ok2 {
				releaseAcquired(acquired)
				metrics.borrowConflict()
				return nil, ComponentBorrowConflict{Archetype: a.index, Component: id}
			}
			acquired = append(acquired, acquiredBorrow{arch: a, col: idx, unique: kind == accessUnique})
		}
	}
	return acquired, nil
}

func releaseAcquired(acquired []acquiredBorrow) {
	for _, ab := range acquired {
		bs := &ab.arch.borrows[ab.col]
		if ab.unique {
			bs.releaseUnique()
		} else {
			bs.releaseShared()
		}
	}
}

// Close releases every borrow this iterator acquired. Safe to call more
// than once and safe to skip after the iterator has been fully drained by
// Seq, which closes itself on every exit path.
func (qi *QueryIter[Item]) Close() {
	if qi.closed {
		return
	}
	releaseAcquired(qi.acquired)
	if qi.dynamic {
		qi.world.mu.RUnlock()
	} else {
		qi.world.mu.Unlock()
	}
	qi.closed = true
}

// Next advances to the next matching row, returning false when exhausted
// (and releasing borrows automatically on that final false).
func (qi *QueryIter[Item]) Next() bool {
	for {
		if qi.archIdx >= 0 && qi.archIdx < len(qi.archetypes) {
			a := qi.archetypes[qi.archIdx]
			if qi.row+1 < a.Len() {
				qi.row++
				return true
			}
		}
		qi.archIdx++
		if qi.archIdx >= len(qi.archetypes) {
			qi.Close()
			return false
		}
		a := qi.archetypes[qi.archIdx]
		if a.Len() == 0 {
			continue
		}
		qi.fetchFn = qi.spec.prepare(a)
		qi.row = 0
		return true
	}
}

// Entity returns the entity at the iterator's current row.
func (qi *QueryIter[Item]) Entity() Entity {
	return qi.archetypes[qi.archIdx].entities[qi.row]
}

// Item returns the fetched value at the iterator's current row.
func (qi *QueryIter[Item]) Item() Item {
	return qi.fetchFn(qi.row)
}

// Seq exposes the iterator as a Go range-over-func sequence of (Entity,
// Item) pairs, releasing borrows whether the range runs to completion or
// breaks early (mirrors the teacher cursor.go's Entities()/Reset() pairing).
func (qi *QueryIter[Item]) Seq() iter.Seq2[Entity, Item] {
	return func(yield func(Entity, Item) bool) {
		for qi.Next() {
			if !yield(qi.Entity(), qi.Item()) {
				qi.Close()
				return
			}
		}
	}
}
