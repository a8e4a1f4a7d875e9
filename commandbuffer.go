package warehouse

import "go.uber.org/zap"

// entityTarget identifies the entity a deferred command applies to, either
// a real Entity or a DeferredEntity produced by an earlier Spawn in the
// same buffer (spec.md §4.G: "freshly spawned entities may be referred to
// within the same buffer via a local handle that resolves to a real Entity
// on replay").
type entityTarget interface {
	resolve(spawned []Entity) (Entity, bool)
}

func (e Entity) resolve(_ []Entity) (Entity, bool) { return e, true }

// DeferredEntity is a local handle into a CommandBuffer standing in for the
// entity a not-yet-replayed Spawn will produce.
type DeferredEntity struct {
	idx int
}

func (d DeferredEntity) resolve(spawned []Entity) (Entity, bool) {
	if d.idx < 0 || d.idx >= len(spawned) {
		return Dangling, false
	}
	return spawned[d.idx], true
}

type cbOpKind int

const (
	cbSpawn cbOpKind = iota
	cbInsert
	cbRemove
	cbDespawn
	cbExchange
)

type cbOp struct {
	kind      cbOpKind
	target    entityTarget
	bundle    Bundle
	removeIDs []ComponentID
}

// CommandBuffer records world mutations against no world, to be replayed
// later in one RunOn/RunOnStrict call (spec.md §4.G). Typical use:
// accumulate commands while iterating a query() (which forbids direct
// mutation), then RunOn the world once iteration ends. Replay is not
// atomic: each command takes the World's lock on its own, so other
// goroutines can observe the world between two commands, and a failing
// command does not undo the commands replayed before it.
type CommandBuffer struct {
	ops        []cbOp
	spawnCount int
}

// NewCommandBuffer returns an empty CommandBuffer.
func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{}
}

// Spawn records a deferred spawn and returns a local handle other commands
// in the same buffer can target before the entity exists for real.
func (cb *CommandBuffer) Spawn(bundle Bundle) DeferredEntity {
	cb.ops = append(cb.ops, cbOp{kind: cbSpawn, bundle: bundle})
	d := DeferredEntity{idx: cb.spawnCount}
	cb.spawnCount++
	return d
}

// Insert records a deferred component insertion onto target.
func (cb *CommandBuffer) Insert(target entityTarget, bundle Bundle) {
	cb.ops = append(cb.ops, cbOp{kind: cbInsert, target: target, bundle: bundle})
}

// Remove records a deferred component removal from target.
func (cb *CommandBuffer) Remove(target entityTarget, ids ...ComponentID) {
	cb.ops = append(cb.ops, cbOp{kind: cbRemove, target: target, removeIDs: ids})
}

// Despawn records a deferred despawn of target.
func (cb *CommandBuffer) Despawn(target entityTarget) {
	cb.ops = append(cb.ops, cbOp{kind: cbDespawn, target: target})
}

// Exchange records a deferred single-transition remove+insert on target.
func (cb *CommandBuffer) Exchange(target entityTarget, removeIDs []ComponentID, insertBundle Bundle) {
	cb.ops = append(cb.ops, cbOp{kind: cbExchange, target: target, removeIDs: removeIDs, bundle: insertBundle})
}

// RunOn replays every recorded command against world in insertion order.
// A failing command (e.g. its target no longer exists) is reported but
// does not stop the remaining commands from replaying; the returned slice
// is empty when every command succeeded.
func (cb *CommandBuffer) RunOn(world *World) []error {
	return cb.replay(world, false)
}

// RunOnStrict replays like RunOn but stops at, and returns, the first
// error.
func (cb *CommandBuffer) RunOnStrict(world *World) error {
	errs := cb.replay(world, true)
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func (cb *CommandBuffer) replay(world *World, strict bool) []error {
	var errs []error
	spawned := make([]Entity, 0, cb.spawnCount)

	fail := func(err error) bool {
		errs = append(errs, err)
		return strict
	}

	for _, op := range cb.ops {
		switch op.kind {
		case cbSpawn:
			ent, err := world.Spawn(op.bundle)
			spawned = append(spawned, ent)
			if err != nil && fail(err) {
				return errs
			}
		case cbInsert:
			ent, ok := op.target.resolve(spawned)
			if !ok {
				if fail(errors_newInvariant("command buffer: unresolved local entity handle")) {
					return errs
				}
				continue
			}
			if err := world.Insert(ent, op.bundle); err != nil && fail(err) {
				return errs
			}
		case cbRemove:
			ent, ok := op.target.resolve(spawned)
			if !ok {
				if fail(errors_newInvariant("command buffer: unresolved local entity handle")) {
					return errs
				}
				continue
			}
			if err := world.Remove(ent, op.removeIDs...); err != nil && fail(err) {
				return errs
			}
		case cbDespawn:
			ent, ok := op.target.resolve(spawned)
			if !ok {
				if fail(errors_newInvariant("command buffer: unresolved local entity handle")) {
					return errs
				}
				continue
			}
			if err := world.Despawn(ent); err != nil && fail(err) {
				return errs
			}
		case cbExchange:
			ent, ok := op.target.resolve(spawned)
			if !ok {
				if fail(errors_newInvariant("command buffer: unresolved local entity handle")) {
					return errs
				}
				continue
			}
			if err := world.Exchange(ent, op.removeIDs, op.bundle); err != nil && fail(err) {
				return errs
			}
		}
	}

	if len(errs) > 0 && !strict {
		world.logger.Warn("command buffer replay errors", zap.Int("errors", len(errs)))
	}
	if len(errs) > 0 && world.metrics != nil {
		world.metrics.commandReplayError()
	}
	return errs
}
