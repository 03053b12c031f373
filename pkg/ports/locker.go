package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock.
type UnlockFunc func(ctx context.Context) error

// ChainLocker guarantees that a chain ID is advanced by a single process at a
// time, so two runs never resume and overwrite the same checkpoint.
type ChainLocker interface {
	// Lock blocks until the lock for key is held or ctx is done. The lock
	// expires after ttl unless released earlier through the UnlockFunc.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
