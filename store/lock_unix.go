//go:build unix

package store

import "golang.org/x/sys/unix"

// lockExclusive and lockShared are advisory, per-process-independent file
// locks taken over the whole store file. Grounded on
// hupe1980-vecgo/persistence/safety.go's architecture-gated init() pattern:
// this file only compiles on platforms unix.Flock actually supports, and
// lock_other.go supplies the fallback everywhere else.
func lockExclusive(fd int) error {
	return unix.Flock(fd, unix.LOCK_EX)
}

func lockShared(fd int) error {
	return unix.Flock(fd, unix.LOCK_SH)
}

func unlock(fd int) error {
	return unix.Flock(fd, unix.LOCK_UN)
}
