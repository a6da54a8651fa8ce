package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rahulunair/vekta/logging"
	"github.com/rahulunair/vekta/metrics"
	"github.com/rahulunair/vekta/record"
)

func tempLayout() record.Layout {
	return record.Layout{LabelSize: 8, Dimensions: 4}
}

func TestAppendAndLen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.vekta")
	l := tempLayout()

	s, err := Open(path, l, logging.Nop(), metrics.Nop{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}

	for i := 0; i < 5; i++ {
		r := record.Record{Label: "x", Vector: []float32{1, 2, 3, float32(i)}}
		if err := s.Append(r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if s.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", s.Len())
	}

	got, err := s.At(4)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if got.Vector[3] != 4 {
		t.Fatalf("At(4).Vector[3] = %v, want 4", got.Vector[3])
	}
}

func TestPartialWriteRecovered(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.vekta")
	l := tempLayout()

	s, err := Open(path, l, logging.Nop(), metrics.Nop{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Append(record.Record{Label: "a", Vector: []float32{1, 2, 3, 4}}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	s.Close()

	// Simulate a crash mid-append: append 3 stray bytes past the last
	// complete record.
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	info, _ := f.Stat()
	if _, err := f.WriteAt([]byte{1, 2, 3}, info.Size()); err != nil {
		t.Fatal(err)
	}
	f.Close()

	s2, err := Open(path, l, logging.Nop(), metrics.Nop{})
	if err != nil {
		t.Fatalf("reopen after partial write: %v", err)
	}
	defer s2.Close()

	if s2.Len() != 1 {
		t.Fatalf("Len() after recovery = %d, want 1", s2.Len())
	}
	if err := s2.Append(record.Record{Label: "b", Vector: []float32{5, 6, 7, 8}}); err != nil {
		t.Fatalf("Append after recovery: %v", err)
	}
	if s2.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s2.Len())
	}
}

func TestConfigMismatchRejectedWithoutModifyingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.vekta")
	l := tempLayout()

	s, err := Open(path, l, logging.Nop(), metrics.Nop{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Append(record.Record{Label: "a", Vector: []float32{1, 2, 3, 4}}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	s.Close()

	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	other := record.Layout{LabelSize: 8, Dimensions: 16}
	_, err = Open(path, other, logging.Nop(), metrics.Nop{})
	if !errors.Is(err, ErrConfigMismatch) {
		t.Fatalf("expected ErrConfigMismatch, got %v", err)
	}

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Fatal("store file was modified despite config mismatch")
	}
}

func TestPartitionsCoverAllIndicesExactlyOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.vekta")
	l := tempLayout()

	s, err := Open(path, l, logging.Nop(), metrics.Nop{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	const n = 13
	for i := 0; i < n; i++ {
		if err := s.Append(record.Record{Label: "x", Vector: []float32{1, 2, 3, float32(i)}}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	for _, w := range []int{1, 2, 3, 4, 8, 16} {
		seen := make(map[int]bool)
		for _, rg := range s.Partitions(w) {
			for i := rg.Start; i < rg.End; i++ {
				if seen[i] {
					t.Fatalf("w=%d: index %d covered twice", w, i)
				}
				seen[i] = true
			}
		}
		if len(seen) != n {
			t.Fatalf("w=%d: covered %d indices, want %d", w, len(seen), n)
		}
	}
}

func TestPartitionsOnEmptyStore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.vekta")
	s, err := Open(path, tempLayout(), logging.Nop(), metrics.Nop{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	ranges := s.Partitions(4)
	if len(ranges) != 1 || ranges[0].Len() != 0 {
		t.Fatalf("Partitions on empty store = %+v, want one empty range", ranges)
	}
}
