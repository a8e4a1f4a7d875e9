package warehouse

import (
	"fmt"

	"github.com/pkg/errors"
)

// MissingComponent is returned when an entity exists but lacks the
// requested component type (spec.md §7).
type MissingComponent struct {
	Entity    Entity
	Component ComponentID
}

func (e MissingComponent) Error() string {
	return fmt.Sprintf("warehouse: entity %v has no component %v", e.Entity, e.Component)
}

// QueryOneError is returned by World.QueryOne when an entity exists but its
// archetype does not satisfy the query's filters.
type QueryOneError struct {
	Entity Entity
}

func (e QueryOneError) Error() string {
	return fmt.Sprintf("warehouse: entity %v does not satisfy query", e.Entity)
}

// ComponentBorrowConflict is the runtime aliasing error a dynamic query()
// iterator raises when two live borrows on the same archetype column would
// otherwise overlap illegally (spec.md §7, testable property 6).
type ComponentBorrowConflict struct {
	Archetype uint32
	Component ComponentID
}

func (e ComponentBorrowConflict) Error() string {
	return fmt.Sprintf("warehouse: borrow conflict on component %v in archetype %d", e.Component, e.Archetype)
}

// DuplicateBundleType is returned when a Bundle or DynamicBundle lists the
// same component id twice; insertion is refused atomically, before any
// column is touched (spec.md §4.E).
type DuplicateBundleType struct {
	Component ComponentID
}

func (e DuplicateBundleType) Error() string {
	return fmt.Sprintf("warehouse: duplicate component %v in bundle", e.Component)
}

// BatchIncomplete is returned when a ColumnBatch is closed with fewer rows
// written to some column than the batch declared (spec.md §4.I).
type BatchIncomplete struct {
	Column   ComponentID
	Written  int
	Declared int
}

func (e BatchIncomplete) Error() string {
	return fmt.Sprintf("warehouse: column batch incomplete: component %v has %d/%d rows", e.Column, e.Written, e.Declared)
}

// errors_newInvariant wraps a programming-error condition with a stack
// trace via github.com/pkg/errors, so a crash log points straight at the
// offending call site. panicInvariant aborts with it; a few caller-mistake
// paths return it instead (EntityBuilder.BuildClone on an unregistered
// type, SpawnAt of the dangling entity, CommandBuffer replay of an
// unresolved local handle).
func errors_newInvariant(msg string) error {
	return errors.New("warehouse: invariant violated: " + msg)
}

func panicInvariant(msg string) {
	panic(errors_newInvariant(msg))
}
