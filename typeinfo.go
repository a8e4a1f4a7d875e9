package warehouse

import (
	"reflect"
	"sync"

	"github.com/archetype-io/warehouse/internal/bitset"
)

// ComponentID is a stable, per-run ordering key for a registered component
// type (spec.md §3, "TypeInfo"). Two runs of the same program may assign
// different numeric values to the same Go type, but within one run the
// ordering is total and stable for the world's lifetime; canonical
// signatures are always sorted by ComponentID.
type ComponentID uint32

func (c ComponentID) String() string {
	typeRegistryMu.RLock()
	defer typeRegistryMu.RUnlock()
	if int(c) >= len(typeRegistry) {
		return "ComponentID(?)"
	}
	return typeRegistry[c].Name
}

// typeInfo is the runtime descriptor for a registered component type
// (spec.md §3, "TypeInfo"): a stable id, the reflect.Type it was derived
// from, and a factory for a fresh, empty column of that type. Move and drop
// are implemented implicitly by Go's own slice semantics and garbage
// collector (see column.go); clone is opt-in via RegisterCloneable.
type typeInfo struct {
	id       ComponentID
	rtype    reflect.Type
	Name     string
	newCol   func(capacity int) column
	// setErased writes an erased value of T into column col at row, used by
	// EntityBuilder/ColumnBatch which only hold component values as any.
	setErased func(col column, row int, v any)
	// getErased reads column col's row back out as an any, used by
	// World.Take to rebuild an EntityBuilder from an existing entity.
	getErased func(col column, row int) any
	cloneFn  func(v any) any
	hasClone bool
}

var (
	typeRegistryMu sync.RWMutex
	typeRegistry   []*typeInfo
	typeIndex      = map[reflect.Type]*typeInfo{}
)

// typeInfoFor interns the TypeInfo for T, registering it on first use. The
// first registration assigns the next ComponentID in creation order,
// mirroring the teacher's FactoryNewElementType/FactoryNewAccessor pattern
// of interning component identity once per type via a generic constructor.
func typeInfoFor[T any]() *typeInfo {
	rt := reflect.TypeOf((*T)(nil)).Elem()

	typeRegistryMu.RLock()
	if info, ok := typeIndex[rt]; ok {
		typeRegistryMu.RUnlock()
		return info
	}
	typeRegistryMu.RUnlock()

	typeRegistryMu.Lock()
	defer typeRegistryMu.Unlock()
	if info, ok := typeIndex[rt]; ok {
		return info
	}

	if len(typeRegistry) >= bitset.Capacity {
		panicInvariant("component type registry exhausted: too many distinct component types for this world")
	}

	info := &typeInfo{
		id:    ComponentID(len(typeRegistry)),
		rtype: rt,
		Name:  rt.String(),
		newCol: func(capacity int) column {
			return newTypedColumn[T](capacity)
		},
		setErased: func(col column, row int, v any) {
			col.(*typedColumn[T]).data[row] = v.(T)
		},
		getErased: func(col column, row int) any {
			return col.(*typedColumn[T]).data[row]
		},
	}
	typeRegistry = append(typeRegistry, info)
	typeIndex[rt] = info
	return info
}

// RegisterCloneable marks T's component type as cloneable, recording clone
// as the function BuiltEntity.put runs on every spawn of a template built
// via EntityBuilder.BuildClone (spec.md §4.C, "clone-if-present"). Grounded
// on hecs's Cloner (original_source/src/cloning.rs), which likewise requires
// each component type to be registered with its own copy or clone function
// rather than assuming Rust's derived Clone is always available — Go has no
// analogous built-in, so the caller supplies clone directly, typically
// `func(v T) T { return v }` for plain value types or one that deep-copies
// any slice/map/pointer fields. Types that never call this cannot be used
// with BuildClone.
func RegisterCloneable[T any](clone func(T) T) {
	info := typeInfoFor[T]()
	typeRegistryMu.Lock()
	defer typeRegistryMu.Unlock()
	info.hasClone = true
	info.cloneFn = func(v any) any {
		return clone(v.(T))
	}
}

func lookupTypeInfo(id ComponentID) *typeInfo {
	typeRegistryMu.RLock()
	defer typeRegistryMu.RUnlock()
	if int(id) >= len(typeRegistry) {
		return nil
	}
	return typeRegistry[id]
}
