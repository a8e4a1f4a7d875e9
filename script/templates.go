package script

import (
	"fmt"

	"github.com/archetype-io/warehouse"
	"gopkg.in/yaml.v3"
)

// ComponentFactory decodes one component's YAML node and sets it on b via
// warehouse.Set, the way game code binds a type name to a concrete Go
// component type.
type ComponentFactory func(b *warehouse.EntityBuilder, raw yaml.Node) error

// Registry binds component names, as they appear in a templates.yaml file,
// to the Go code that knows how to decode and set them, and to the
// ComponentID spawned components can be queried by from Lua.
type Registry struct {
	factories map[string]ComponentFactory
	ids       map[string]warehouse.ComponentID
}

// NewRegistry returns an empty component-name registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]ComponentFactory),
		ids:       make(map[string]warehouse.ComponentID),
	}
}

// Register binds name to id and factory, overwriting any previous binding
// for name.
func (r *Registry) Register(name string, id warehouse.ComponentID, factory ComponentFactory) {
	r.factories[name] = factory
	r.ids[name] = id
}

// ComponentID looks up the ComponentID bound to name, if any.
func (r *Registry) ComponentID(name string) (warehouse.ComponentID, bool) {
	id, ok := r.ids[name]
	return id, ok
}

type templateFile struct {
	Templates []struct {
		Name       string              `yaml:"name"`
		Components map[string]yaml.Node `yaml:"components"`
	} `yaml:"templates"`
}

type templateDef struct {
	name       string
	components map[string]yaml.Node
}

// Templates is a named bundle-template registry loaded from YAML and
// resolved to DynamicBundles (warehouse.BuiltEntity) on demand, used by the
// Lua Console (spawn("npc")) — SPEC_FULL.md domain stack item 9.
type Templates struct {
	registry *Registry
	cache    *SimpleCache[templateDef]
}

// NewTemplates returns a Templates registry backed by registry, holding up
// to capacity distinct template names.
func NewTemplates(registry *Registry, capacity int) *Templates {
	return &Templates{registry: registry, cache: NewSimpleCache[templateDef](capacity)}
}

// Load parses a templates.yaml document and registers every template it
// declares. Component names referenced there are resolved against registry
// lazily, at Build time, so templates may be loaded before their component
// factories are registered.
func (t *Templates) Load(data []byte) error {
	var doc templateFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("script: parsing templates: %w", err)
	}
	for _, tpl := range doc.Templates {
		def := templateDef{name: tpl.Name, components: tpl.Components}
		if _, err := t.cache.Register(tpl.Name, def); err != nil {
			return err
		}
	}
	return nil
}

// Build resolves the named template to a fresh DynamicBundle, running each
// declared component's factory against its YAML node in turn.
func (t *Templates) Build(name string) (warehouse.Bundle, error) {
	idx, ok := t.cache.GetIndex(name)
	if !ok {
		return nil, fmt.Errorf("script: no such template %q", name)
	}
	def := t.cache.GetItem(idx)
	b := warehouse.NewEntityBuilder()
	for compName, node := range def.components {
		factory, ok := t.registry.factories[compName]
		if !ok {
			return nil, fmt.Errorf("script: template %q references unregistered component %q", name, compName)
		}
		if err := factory(b, node); err != nil {
			return nil, fmt.Errorf("script: template %q component %q: %w", name, compName, err)
		}
	}
	return b.Build(), nil
}
