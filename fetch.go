package warehouse

import (
	"fmt"

	"github.com/archetype-io/warehouse/internal/bitset"
)

// accessKind classifies how a Spec touches a component's column.
type accessKind int

const (
	accessNone accessKind = iota
	accessShared
	accessUnique
)

// accessSet accumulates every component a composed Spec touches, and the
// strongest access mode requested for each. Building it is how tuple/Or
// composition detects "aliasing between elements" at fetch construction
// (spec.md §4.F) instead of at iteration time.
type accessSet struct {
	kind map[ComponentID]accessKind
}

func newAccessSet() *accessSet {
	return &accessSet{kind: make(map[ComponentID]accessKind)}
}

func (s *accessSet) addShared(id ComponentID) { s.merge(id, accessShared) }
func (s *accessSet) addUnique(id ComponentID) { s.merge(id, accessUnique) }

func (s *accessSet) merge(id ComponentID, k accessKind) {
	existing, ok := s.kind[id]
	if !ok || existing == accessNone {
		s.kind[id] = k
		return
	}
	if existing == accessUnique || k == accessUnique {
		panicInvariant(fmt.Sprintf("conflicting access to component %v within a single query", id))
	}
}

// Spec is a compile-time composable fetch descriptor (spec.md §4.F,
// "Query engine"): an archetype filter (matches), a declared access set
// (access), and a per-archetype preparation step (prepare) producing a
// closure that reads one row at a time. Item is whatever a single matched
// row yields: *T for Ref/Mut, bool for Satisfies, a struct for tuples/Or.
//
// Spec is a plain struct of closures rather than an interface so that
// generic composers like With/Without/Or can infer Item directly from their
// argument's type instantiation.
type Spec[Item any] struct {
	matches func(sig bitset.Set) bool
	access  func(acc *accessSet)
	prepare func(a *archetype) func(row int) Item
}

// Ref requires T and yields a shared view (*T) of it (spec.md §4.F, "&T").
// Go has no const-reference type; the distinction from Mut is purely in the
// declared access kind used for borrow checking.
func Ref[T any]() Spec[*T] {
	info := typeInfoFor[T]()
	return Spec[*T]{
		matches: func(sig bitset.Set) bool { return sig.Has(uint32(info.id)) },
		access:  func(acc *accessSet) { acc.addShared(info.id) },
		prepare: func(a *archetype) func(int) *T {
			idx, ok := a.columnIndexOf(info.id)
			if !ok {
				panicInvariant("Ref: prepared against an archetype missing the required component")
			}
			col := a.columns[idx].(*typedColumn[T])
			return func(row int) *T { return col.at(row) }
		},
	}
}

// Mut requires T and yields a unique view of it (spec.md §4.F, "&mut T").
func Mut[T any]() Spec[*T] {
	s := Ref[T]()
	info := typeInfoFor[T]()
	s.access = func(acc *accessSet) { acc.addUnique(info.id) }
	return s
}

// Opt matches every archetype; the item is nil when T is absent (spec.md
// §4.F, "Option<&T>").
func Opt[T any]() Spec[*T] {
	info := typeInfoFor[T]()
	return Spec[*T]{
		matches: func(bitset.Set) bool { return true },
		access:  func(acc *accessSet) { acc.addShared(info.id) },
		prepare: func(a *archetype) func(int) *T {
			idx, ok := a.columnIndexOf(info.id)
			if !ok {
				return func(int) *T { return nil }
			}
			col := a.columns[idx].(*typedColumn[T])
			return func(row int) *T { return col.at(row) }
		},
	}
}

// OptMut is Opt with unique access (spec.md §4.F, "Option<&mut T>").
func OptMut[T any]() Spec[*T] {
	s := Opt[T]()
	info := typeInfoFor[T]()
	s.access = func(acc *accessSet) { acc.addUnique(info.id) }
	return s
}

// With requires F's component to be present without borrowing it, yielding
// whatever the wrapped Spec yields (spec.md §4.F, "With<Q, F>").
func With[F any, Item any](inner Spec[Item]) Spec[Item] {
	info := typeInfoFor[F]()
	return Spec[Item]{
		matches: func(sig bitset.Set) bool { return sig.Has(uint32(info.id)) && inner.matches(sig) },
		access:  inner.access,
		prepare: inner.prepare,
	}
}

// Without requires F's component to be absent, yielding whatever the
// wrapped Spec yields (spec.md §4.F, "Without<Q, F>").
func Without[F any, Item any](inner Spec[Item]) Spec[Item] {
	info := typeInfoFor[F]()
	return Spec[Item]{
		matches: func(sig bitset.Set) bool { return !sig.Has(uint32(info.id)) && inner.matches(sig) },
		access:  inner.access,
		prepare: inner.prepare,
	}
}

// Satisfies never borrows and yields whether F is present on the entity
// (spec.md §4.F, "Satisfies<Q>").
func Satisfies[F any]() Spec[bool] {
	info := typeInfoFor[F]()
	return Spec[bool]{
		matches: func(bitset.Set) bool { return true },
		access:  func(*accessSet) {},
		prepare: func(a *archetype) func(int) bool {
			has := a.signature.Has(uint32(info.id))
			return func(int) bool { return has }
		},
	}
}

// OrResult tags which side(s) of an Or matched the current archetype
// (spec.md §4.F, "Or<A, B>"): the tie order when both sides match is left
// unspecified by design (see DESIGN.md, Open Questions).
type OrResult[A, B any] struct {
	A    A
	B    B
	HasA bool
	HasB bool
}

// Or matches archetypes matching either side and reports which matched
// (spec.md §4.F, "Or<A, B>").
func Or[A, B any](a Spec[A], b Spec[B]) Spec[OrResult[A, B]] {
	return Spec[OrResult[A, B]]{
		matches: func(sig bitset.Set) bool { return a.matches(sig) || b.matches(sig) },
		access: func(acc *accessSet) {
			a.access(acc)
			b.access(acc)
		},
		prepare: func(arch *archetype) func(int) OrResult[A, B] {
			hasA := a.matches(arch.signature)
			hasB := b.matches(arch.signature)
			var fa func(int) A
			var fb func(int) B
			if hasA {
				fa = a.prepare(arch)
			}
			if hasB {
				fb = b.prepare(arch)
			}
			return func(row int) OrResult[A, B] {
				var r OrResult[A, B]
				if hasA {
					r.A = fa(row)
					r.HasA = true
				}
				if hasB {
					r.B = fb(row)
					r.HasB = true
				}
				return r
			}
		},
	}
}

// Pair is the item yielded by And2: an intersection of two Specs, rejecting
// archetypes unless both match (spec.md §4.F, tuples).
type Pair[A, B any] struct {
	First  A
	Second B
}

// And2 intersects two Specs into one yielding both items per row.
func And2[A, B any](a Spec[A], b Spec[B]) Spec[Pair[A, B]] {
	return Spec[Pair[A, B]]{
		matches: func(sig bitset.Set) bool { return a.matches(sig) && b.matches(sig) },
		access: func(acc *accessSet) {
			a.access(acc)
			b.access(acc)
		},
		prepare: func(arch *archetype) func(int) Pair[A, B] {
			fa := a.prepare(arch)
			fb := b.prepare(arch)
			return func(row int) Pair[A, B] {
				return Pair[A, B]{First: fa(row), Second: fb(row)}
			}
		},
	}
}

// Triple is the item yielded by And3.
type Triple[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// And3 intersects three Specs into one yielding all three items per row.
func And3[A, B, C any](a Spec[A], b Spec[B], c Spec[C]) Spec[Triple[A, B, C]] {
	return Spec[Triple[A, B, C]]{
		matches: func(sig bitset.Set) bool { return a.matches(sig) && b.matches(sig) && c.matches(sig) },
		access: func(acc *accessSet) {
			a.access(acc)
			b.access(acc)
			c.access(acc)
		},
		prepare: func(arch *archetype) func(int) Triple[A, B, C] {
			fa := a.prepare(arch)
			fb := b.prepare(arch)
			fc := c.prepare(arch)
			return func(row int) Triple[A, B, C] {
				return Triple[A, B, C]{First: fa(row), Second: fb(row), Third: fc(row)}
			}
		},
	}
}

// Quad is the item yielded by And4.
type Quad[A, B, C, D any] struct {
	First  A
	Second B
	Third  C
	Fourth D
}

// And4 intersects four Specs into one yielding all four items per row.
func And4[A, B, C, D any](a Spec[A], b Spec[B], c Spec[C], d Spec[D]) Spec[Quad[A, B, C, D]] {
	return Spec[Quad[A, B, C, D]]{
		matches: func(sig bitset.Set) bool {
			return a.matches(sig) && b.matches(sig) && c.matches(sig) && d.matches(sig)
		},
		access: func(acc *accessSet) {
			a.access(acc)
			b.access(acc)
			c.access(acc)
			d.access(acc)
		},
		prepare: func(arch *archetype) func(int) Quad[A, B, C, D] {
			fa := a.prepare(arch)
			fb := b.prepare(arch)
			fc := c.prepare(arch)
			fd := d.prepare(arch)
			return func(row int) Quad[A, B, C, D] {
				return Quad[A, B, C, D]{First: fa(row), Second: fb(row), Third: fc(row), Fourth: fd(row)}
			}
		},
	}
}
