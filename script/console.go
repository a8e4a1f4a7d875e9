package script

import (
	"github.com/archetype-io/warehouse"
	lua "github.com/yuin/gopher-lua"
)

// Console is a Lua scripting surface over one World and one Templates
// registry: the type-erased half of the bundle API (EntityBuilder-built
// bundles from Templates) plus ComponentID-based membership checks, driven
// from a language with no generics (SPEC_FULL.md domain stack item 8). It
// runs no queries.
type Console struct {
	world     *warehouse.World
	templates *Templates
	registry  *Registry
	state     *lua.LState
}

// NewConsole builds a Console bound to world and templates, registering
// spawn/despawn/has/count as Lua globals.
func NewConsole(world *warehouse.World, templates *Templates, registry *Registry) *Console {
	c := &Console{world: world, templates: templates, registry: registry, state: lua.NewState()}
	c.state.SetGlobal("spawn", c.state.NewFunction(c.luaSpawn))
	c.state.SetGlobal("despawn", c.state.NewFunction(c.luaDespawn))
	c.state.SetGlobal("has", c.state.NewFunction(c.luaHas))
	c.state.SetGlobal("count", c.state.NewFunction(c.luaCount))
	return c
}

// Run executes a Lua script against this Console's bound World.
func (c *Console) Run(script string) error {
	return c.state.DoString(script)
}

// Close releases the underlying Lua state.
func (c *Console) Close() {
	c.state.Close()
}

// luaSpawn implements Lua `spawn(templateName) -> id`.
func (c *Console) luaSpawn(L *lua.LState) int {
	name := L.CheckString(1)
	bundle, err := c.templates.Build(name)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	ent, err := c.world.Spawn(bundle)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}
	L.Push(lua.LNumber(ent.ID()))
	return 1
}

// luaDespawn implements Lua `despawn(id)`.
func (c *Console) luaDespawn(L *lua.LState) int {
	id := uint32(L.CheckInt(1))
	ent, ok := c.world.FindEntityFromID(id)
	if !ok {
		L.RaiseError("script: no live entity with id %d", id)
		return 0
	}
	if err := c.world.Despawn(ent); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

// luaHas implements Lua `has(id, componentName) -> bool`. It answers false
// for an id with no live entity and for a component name the Registry does
// not know.
func (c *Console) luaHas(L *lua.LState) int {
	id := uint32(L.CheckInt(1))
	compName := L.CheckString(2)

	compID, ok := c.registry.ComponentID(compName)
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	ent, ok := c.world.FindEntityFromID(id)
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	ids, err := c.world.Ref(ent).ComponentIDs()
	if err != nil {
		L.Push(lua.LFalse)
		return 1
	}
	for _, got := range ids {
		if got == compID {
			L.Push(lua.LTrue)
			return 1
		}
	}
	L.Push(lua.LFalse)
	return 1
}

// luaCount implements Lua `count() -> number`.
func (c *Console) luaCount(L *lua.LState) int {
	L.Push(lua.LNumber(c.world.Len()))
	return 1
}
