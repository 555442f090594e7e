package providers

import "context"

// SlotLocker provides mutual exclusion per key. The Conflict Guard holds the
// lock of a slot key across its availability re-check and the ledger write.
type SlotLocker interface {
	// Acquire blocks until key is held or ctx is done. The returned release
	// function must be called exactly once.
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// Lock key helpers
const (
	LockPrefixSlot     = "slot:"
	LockPrefixBooking  = "booking:"
	LockPrefixProvider = "provider:"
)
