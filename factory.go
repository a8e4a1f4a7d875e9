package warehouse

// factory is a package-level namespace for convenience constructors,
// mirroring the teacher's own Factory singleton (its FactoryNewComponent /
// FactoryNewCache pair) but pointed at World/CommandBuffer/EntityBuilder
// instead of table.Schema-backed storage.
type factory struct{}

// Factory is the package's constructor namespace: Factory.NewWorld(),
// Factory.NewCommandBuffer(), Factory.NewEntityBuilder().
var Factory factory

func (f factory) NewWorld() *World                { return NewWorld() }
func (f factory) NewCommandBuffer() *CommandBuffer { return NewCommandBuffer() }
func (f factory) NewEntityBuilder() *EntityBuilder { return NewEntityBuilder() }

// FactoryNewComponentType interns T's TypeInfo and returns a reusable
// descriptor for it, the generic-function equivalent of the teacher's
// FactoryNewComponent[T].
func FactoryNewComponentType[T any]() ComponentType[T] {
	return NewComponentType[T]()
}
