// Package store implements the append-only packed record file (spec §4.3):
// Append, Len, Iter and Partitions over a fixed-width record.Layout, with
// crash-safe open-time recovery of a trailing partial write and advisory
// locking so a concurrent reader never observes a torn append.
//
// Grounded on hupe1980-vecgo/persistence/mmap.go for the mmap-backed read
// path and persistence/safety.go for the architecture-gated locking
// pattern (see lock_unix.go / lock_other.go). Unlike the teacher's
// persistence package, the record file itself carries no header, footer,
// or checksum — that invariant is spec.md §3, non-negotiable — so store
// keeps its own layout bookkeeping in a separate sidecar (manifest.go).
package store

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/exp/mmap"

	"github.com/rahulunair/vekta/logging"
	"github.com/rahulunair/vekta/metrics"
	"github.com/rahulunair/vekta/record"
)

// ErrCorruptLength is returned by Open when the layout's record size is
// not positive, so the file length cannot be checked against it. A file
// whose length is not a multiple of the record size is not reported with
// this error: its trailing partial record is truncated at open time.
var ErrCorruptLength = errors.New("store: file length is not a multiple of the record size")

// mmapThreshold is the file size, in bytes, above which reads are served
// from an mmap.ReaderAt instead of plain os.File.ReadAt.
const mmapThreshold = 8 << 20 // 8 MiB

// Store is a single append-only packed record file.
type Store struct {
	path      string
	layout    record.Layout
	logger    *logging.Logger
	collector metrics.Collector

	mu     sync.RWMutex
	file   *os.File
	count  int
	reader io.ReaderAt // mmap.ReaderAt above mmapThreshold, else file
	ra     *mmap.ReaderAt
}

// Open opens or creates the store file at path under layout. If the file
// already exists under a different layout (recorded in its sidecar
// manifest), Open fails with ErrConfigMismatch and neither file is
// modified. If the file exists and its tail holds a partial record, it is
// truncated back to the last full record and a warning is logged.
func Open(path string, layout record.Layout, logger *logging.Logger, collector metrics.Collector) (*Store, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	if collector == nil {
		collector = metrics.Nop{}
	}
	if err := checkOrCreateManifest(path, layout); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("store: opening %s: %w", path, err)
	}

	s := &Store{path: path, layout: layout, logger: logger, collector: collector, file: f}
	if err := s.recoverAndValidate(); err != nil {
		f.Close()
		return nil, err
	}
	if err := s.openReader(); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) recoverAndValidate() error {
	if err := lockExclusive(int(s.file.Fd())); err != nil {
		return fmt.Errorf("store: locking %s: %w", s.path, err)
	}
	defer unlock(int(s.file.Fd()))

	info, err := s.file.Stat()
	if err != nil {
		return fmt.Errorf("store: stat %s: %w", s.path, err)
	}
	size := info.Size()
	rs := int64(s.layout.Size())
	if rs <= 0 {
		return fmt.Errorf("%w: record size is %d", ErrCorruptLength, rs)
	}

	remainder := size % rs
	if remainder != 0 {
		truncated := size - remainder
		if err := s.file.Truncate(truncated); err != nil {
			return fmt.Errorf("store: truncating partial write: %w", err)
		}
		s.logger.PartialWriteTruncated(s.path, size, truncated)
		size = truncated
	}

	s.count = int(size / rs)
	return nil
}

func (s *Store) openReader() error {
	info, err := s.file.Stat()
	if err != nil {
		return err
	}
	if info.Size() < mmapThreshold {
		s.reader = s.file
		return nil
	}
	ra, err := mmap.Open(s.path)
	if err != nil {
		// mmap is a read-path optimization only; fall back to the file.
		s.logger.Warn("mmap unavailable, falling back to ReadAt", "path", s.path, "error", err)
		s.reader = s.file
		return nil
	}
	s.ra = ra
	s.reader = ra
	return nil
}

// Close releases the store's file handles.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ra != nil {
		s.ra.Close()
	}
	return s.file.Close()
}

// Len returns the number of complete records currently in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Layout returns the store's fixed record geometry.
func (s *Store) Layout() record.Layout {
	return s.layout
}

// Append encodes r under the store's layout and appends it, holding an
// exclusive lock for the duration of the write so a concurrent reader
// never observes a torn record.
func (s *Store) Append(r record.Record) error {
	buf, err := record.Encode(s.layout, r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := lockExclusive(int(s.file.Fd())); err != nil {
		return fmt.Errorf("store: locking %s: %w", s.path, err)
	}
	defer unlock(int(s.file.Fd()))

	if _, err := s.file.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	if _, err := s.file.Write(buf); err != nil {
		return err
	}
	if err := s.file.Sync(); err != nil {
		return err
	}
	s.count++
	s.collector.RecordAppended()

	// An existing mmap reader would not see this write, so it is re-opened
	// here before returning. A store that opened below mmapThreshold keeps
	// reading through the file handle, even after it grows past it.
	if s.reader == s.file {
		return nil
	}
	return s.refreshReaderLocked()
}

func (s *Store) refreshReaderLocked() error {
	if s.ra != nil {
		s.ra.Close()
		s.ra = nil
	}
	ra, err := mmap.Open(s.path)
	if err != nil {
		s.reader = s.file
		return nil
	}
	s.ra = ra
	s.reader = ra
	return nil
}

// AcquireShared takes a shared advisory lock over the store file for the
// duration of a read operation (list/search), per spec §5: a shared lock
// blocks new Append calls until it is released. Callers must invoke the
// returned release function exactly once, and lockShared/unlock are the
// same platform-gated pair Append uses for its exclusive lock.
func (s *Store) AcquireShared() (release func(), err error) {
	fd := int(s.file.Fd())
	if err := lockShared(fd); err != nil {
		return nil, fmt.Errorf("store: locking %s: %w", s.path, err)
	}
	return func() { unlock(fd) }, nil
}

// At decodes and returns the record at index i (0-based).
func (s *Store) At(i int) (record.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= s.count {
		return record.Record{}, fmt.Errorf("store: index %d out of range [0,%d)", i, s.count)
	}
	rs := s.layout.Size()
	buf := make([]byte, rs)
	if _, err := s.reader.ReadAt(buf, int64(i*rs)); err != nil && err != io.EOF {
		return record.Record{}, fmt.Errorf("store: reading record %d: %w", i, err)
	}
	return record.Decode(s.layout, buf)
}

// Iter calls fn for every record in order, stopping at the first error fn
// returns.
func (s *Store) Iter(fn func(index int, r record.Record) error) error {
	n := s.Len()
	for i := 0; i < n; i++ {
		r, err := s.At(i)
		if err != nil {
			return err
		}
		if err := fn(i, r); err != nil {
			return err
		}
	}
	return nil
}

// Range is a contiguous, half-open [Start,End) slice of record indices.
type Range struct {
	Start, End int
}

// Len returns the number of indices in r.
func (r Range) Len() int { return r.End - r.Start }

// Partitions splits [0,Len()) into up to w contiguous, near-equal ranges
// for a partitioned parallel scan. It never returns more ranges than
// there are records, and always returns at least one range (possibly
// empty) when the store itself is empty.
func (s *Store) Partitions(w int) []Range {
	n := s.Len()
	if w < 1 {
		w = 1
	}
	if n == 0 {
		return []Range{{Start: 0, End: 0}}
	}
	if w > n {
		w = n
	}

	base := n / w
	extra := n % w
	ranges := make([]Range, 0, w)
	start := 0
	for i := 0; i < w; i++ {
		size := base
		if i < extra {
			size++
		}
		ranges = append(ranges, Range{Start: start, End: start + size})
		start += size
	}
	return ranges
}
