package warehouse

import "reflect"

// builderField is one component accumulated into an EntityBuilder's arena.
// Go's garbage-collected heap already gives every field a correctly
// aligned, independently addressable home, so there is no explicit cursor
// or padding bookkeeping here the way a raw-byte arena would need — the
// analogous past bug (an unaligned cursor write) can't arise the way it
// does for manual arena layout. See DESIGN.md.
type builderField struct {
	info  *typeInfo
	value reflect.Value
}

// EntityBuilder is a staging area that accumulates components of arbitrary
// types before producing a BuiltEntity implementing Bundle (spec.md §4.H).
type EntityBuilder struct {
	fields []builderField
}

// NewEntityBuilder returns an empty builder.
func NewEntityBuilder() *EntityBuilder {
	return &EntityBuilder{}
}

// Set adds (or overwrites, if called twice for the same type) T's value in
// the builder, returning b for chaining.
func Set[T any](b *EntityBuilder, v T) *EntityBuilder {
	info := typeInfoFor[T]()
	for i := range b.fields {
		if b.fields[i].info.id == info.id {
			b.fields[i].value = reflect.ValueOf(v)
			return b
		}
	}
	b.fields = append(b.fields, builderField{info: info, value: reflect.ValueOf(v)})
	return b
}

// Build finalizes the builder into a BuiltEntity. Unlike a hand-written
// Bundle, EntityBuilder de-duplicates types as they're added (Set
// overwrites), so Build never fails with DuplicateBundleType; it exists for
// symmetry with the other Bundle constructors and to leave room for future
// validation.
func (b *EntityBuilder) Build() *BuiltEntity {
	return &BuiltEntity{fields: append([]builderField(nil), b.fields...)}
}

// BuildClone finalizes the builder into a BuiltEntity usable as a template:
// every accumulated type must have called RegisterCloneable, and Spawn may
// be called on the result repeatedly, each time producing an independent
// copy via the registered clone function rather than sharing the builder's
// storage. Reports an error naming the first unregistered type instead of
// panicking, since "forgot to register a type for cloning" is a caller
// mistake discoverable well before any archetype is touched.
func (b *EntityBuilder) BuildClone() (*BuiltEntity, error) {
	for _, f := range b.fields {
		if !f.info.hasClone {
			return nil, errors_newInvariant("BuildClone: component " + f.info.Name + " never called RegisterCloneable")
		}
	}
	return b.Build(), nil
}

// BuiltEntity is the type-erased DynamicBundle produced by EntityBuilder
// (spec.md §4.E, §4.H). A BuiltEntity may be spawned more than once: Go's
// by-value struct assignment already makes each spawn an independent copy
// for plain fields, and RegisterCloneable-backed clone functions handle
// components that need a deeper copy than assignment provides.
type BuiltEntity struct {
	fields []builderField
}

func (be *BuiltEntity) componentIDs() ([]ComponentID, error) {
	ids := make([]ComponentID, len(be.fields))
	for i, f := range be.fields {
		ids[i] = f.info.id
	}
	if err := dedupeIDs(ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (be *BuiltEntity) put(a *archetype, row int) {
	for _, f := range be.fields {
		idx, ok := a.columnIndexOf(f.info.id)
		if !ok {
			panicInvariant("BuiltEntity.put: target archetype missing a declared component")
		}
		f.info.setErased(a.columns[idx], row, f.cloneOrValue())
	}
}

// cloneOrValue returns the value to write for one put(): for a component
// registered via RegisterCloneable, it runs the registered clone function so
// repeated spawns of the same BuiltEntity never alias reference fields
// (slices, maps, pointers) through the builder's own storage; otherwise it
// returns the accumulated value as-is, since a plain value type is already
// independently copied by Go's own assignment.
func (f builderField) cloneOrValue() any {
	if !f.info.hasClone {
		return f.value.Interface()
	}
	return f.info.cloneFn(f.value.Interface())
}
