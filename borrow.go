package warehouse

import "sync/atomic"

// uniqueBit marks a borrow counter as held uniquely. Any shared acquisition
// attempted while it is set fails; any further unique acquisition attempt
// also fails, since the bit alone (not the counter) denotes "held
// uniquely". Grounded on original_source/src/borrow.rs's AtomicBorrow,
// which uses the same high-bit encoding over an atomic word.
const uniqueBit = int32(-1) << 31

// borrowState is a single atomic counter guarding shared-XOR-unique access
// to one archetype column (spec.md §3, "BorrowState"). 0 means free;
// positive N means N live shared borrowers; uniqueBit set means one unique
// borrower.
type borrowState struct {
	v atomic.Int32
}

// tryAcquireShared attempts to add one shared borrower. Fails (returns
// false) if a unique borrow is currently held.
func (b *borrowState) tryAcquireShared() bool {
	v := b.v.Add(1)
	if v&uniqueBit != 0 {
		b.v.Add(-1)
		return false
	}
	return true
}

// tryAcquireUnique attempts to take the sole unique borrow. Fails if any
// borrow (shared or unique) is currently held.
func (b *borrowState) tryAcquireUnique() bool {
	return b.v.CompareAndSwap(0, uniqueBit)
}

func (b *borrowState) releaseShared() {
	b.v.Add(-1)
}

func (b *borrowState) releaseUnique() {
	b.v.Store(0)
}
