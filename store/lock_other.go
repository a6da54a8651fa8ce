//go:build !unix

package store

// On platforms without flock semantics, locking is a no-op: single-process
// use is still safe because Store serializes its own callers with a mutex.
func lockExclusive(fd int) error { return nil }
func lockShared(fd int) error    { return nil }
func unlock(fd int) error        { return nil }
