package warehouse

// ColumnBatch spawns N entities sharing a known signature with a single
// archetype transition: the caller writes each column in bulk via
// WriteColumn, and Close either commits all N rows or rolls every one of
// them back, returning BatchIncomplete (spec.md §4.I).
type ColumnBatch struct {
	world    *World
	arch     *archetype
	n        int
	startRow int
	entities []Entity
	declared []ComponentID
	written  map[ComponentID]int
	closed   bool
}

// NewColumnBatch reserves n rows in the archetype for ids and pre-allocates
// n live, zero-valued entities there. Callers must call WriteColumn for
// every id in ids before Close, or Close reports BatchIncomplete and undoes
// the reservation. NewColumnBatch takes the World's exclusive structural
// lock; Close releases it, so no query() can observe the batch's rows
// half-written.
func (w *World) NewColumnBatch(ids []ComponentID, n int) *ColumnBatch {
	w.mu.Lock()
	declared := sortedUnique(ids)
	a := w.archetypes.archetypeFor(declared)
	w.entities.reserve(n)

	startRow := a.Len()
	entities := make([]Entity, n)
	for i := 0; i < n; i++ {
		ent := w.entities.allocate()
		row := a.allocRow(ent)
		w.entities.setLocation(ent, location{archetype: a.index, row: uint32(row)})
		entities[i] = ent
	}

	return &ColumnBatch{
		world:    w,
		arch:     a,
		n:        n,
		startRow: startRow,
		entities: entities,
		declared: declared,
		written:  make(map[ComponentID]int, len(declared)),
	}
}

// WriteColumn bulk-writes values into this batch's column for T, which must
// be one of the component ids the batch was opened with. len(values) may be
// less than the batch size; Close then reports BatchIncomplete naming this
// column.
func WriteColumn[T any](b *ColumnBatch, values []T) {
	info := typeInfoFor[T]()
	idx, ok := b.arch.columnIndexOf(info.id)
	if !ok {
		panicInvariant("WriteColumn: component is not part of this batch's declared signature")
	}
	if len(values) > b.n {
		panicInvariant("WriteColumn: more values supplied than rows reserved by the batch")
	}
	col := b.arch.columns[idx].(*typedColumn[T])
	for i, v := range values {
		col.data[b.startRow+i] = v
	}
	b.written[info.id] = len(values)
}

// Entities returns the batch's reserved entity handles, valid once Close
// has returned without error.
func (b *ColumnBatch) Entities() []Entity {
	return b.entities
}

// Close commits the batch if every declared column received exactly n
// values, otherwise rolls back every reserved row and entity and returns
// BatchIncomplete for the first column found short.
func (b *ColumnBatch) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	defer b.world.mu.Unlock()
	for _, id := range b.declared {
		if b.written[id] != b.n {
			b.rollback()
			return BatchIncomplete{Column: id, Written: b.written[id], Declared: b.n}
		}
	}
	if b.world.metrics != nil {
		b.world.metrics.entitiesAlive(b.world.entities.len())
	}
	return nil
}

func (b *ColumnBatch) rollback() {
	for i := 0; i < b.n; i++ {
		b.arch.removeRow(b.arch.Len() - 1)
	}
	for _, ent := range b.entities {
		b.world.entities.free(ent)
	}
}
