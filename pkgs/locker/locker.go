package locker

import (
	"context"
	"errors"
)

// ErrNotObtained is returned when a lock could not be acquired before the
// context ended.
var ErrNotObtained = errors.New("locker: not obtained")

// Lock is a held lock.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker hands out mutually exclusive locks by key. Obtain blocks until the
// lock is free or ctx is done.
type Locker interface {
	Obtain(ctx context.Context, key string) (Lock, error)
}
