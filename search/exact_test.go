package search

import (
	"context"
	"testing"

	"github.com/rahulunair/vekta/record"
	"github.com/rahulunair/vekta/store"
)

// fakeRecords is an in-memory Records implementation for exercising Exact
// without touching the filesystem.
type fakeRecords struct {
	recs []record.Record
}

func (f *fakeRecords) Len() int { return len(f.recs) }

func (f *fakeRecords) At(i int) (record.Record, error) { return f.recs[i], nil }

func (f *fakeRecords) Partitions(w int) []store.Range {
	n := len(f.recs)
	if w < 1 {
		w = 1
	}
	if n == 0 {
		return []store.Range{{Start: 0, End: 0}}
	}
	if w > n {
		w = n
	}
	base := n / w
	extra := n % w
	ranges := make([]store.Range, 0, w)
	start := 0
	for i := 0; i < w; i++ {
		size := base
		if i < extra {
			size++
		}
		ranges = append(ranges, store.Range{Start: start, End: start + size})
		start += size
	}
	return ranges
}

func buildFake(n, d int) *fakeRecords {
	recs := make([]record.Record, n)
	for i := 0; i < n; i++ {
		v := make([]float32, d)
		v[i%d] = 1
		recs[i] = record.Record{Label: "r", Vector: v}
	}
	return &fakeRecords{recs: recs}
}

func TestExactOrderingAndTieBreak(t *testing.T) {
	f := buildFake(6, 4)
	query := []float32{1, 0, 0, 0}
	hits, err := Exact(context.Background(), f, query, 6, 0, nil)
	if err != nil {
		t.Fatalf("Exact: %v", err)
	}
	if len(hits) != 6 {
		t.Fatalf("len(hits) = %d, want 6", len(hits))
	}
	for i := 1; i < len(hits); i++ {
		if hits[i-1].Similarity < hits[i].Similarity {
			t.Fatalf("hits not sorted descending: %+v", hits)
		}
		if hits[i-1].Similarity == hits[i].Similarity && hits[i-1].Index > hits[i].Index {
			t.Fatalf("tie not broken by ascending index: %+v", hits)
		}
	}
	if hits[0].Index != 0 || hits[0].Similarity != 1 {
		t.Fatalf("best hit = %+v, want index 0 sim 1", hits[0])
	}
}

func TestExactPartitionCountIndependence(t *testing.T) {
	f := buildFake(37, 8)
	query := []float32{0, 1, 0, 0, 0, 0, 0, 0}

	var reference []Hit
	for i, w := range []int{1, 2, 4, 8, 16} {
		hits, err := Exact(context.Background(), f, query, 5, w, nil)
		if err != nil {
			t.Fatalf("Exact(workers=%d): %v", w, err)
		}
		if i == 0 {
			reference = hits
			continue
		}
		if len(hits) != len(reference) {
			t.Fatalf("workers=%d: result length %d, want %d (from workers=1)", w, len(hits), len(reference))
		}
		for j := range hits {
			if hits[j] != reference[j] {
				t.Fatalf("workers=%d: result %d = %+v, want %+v (from workers=1)", w, j, hits[j], reference[j])
			}
		}
	}
}

func TestExactKLargerThanStore(t *testing.T) {
	f := buildFake(3, 4)
	hits, err := Exact(context.Background(), f, []float32{1, 0, 0, 0}, 10, 0, nil)
	if err != nil {
		t.Fatalf("Exact: %v", err)
	}
	if len(hits) != 3 {
		t.Fatalf("len(hits) = %d, want 3", len(hits))
	}
}

func TestExactEmptyStore(t *testing.T) {
	f := buildFake(0, 4)
	hits, err := Exact(context.Background(), f, []float32{1, 0, 0, 0}, 5, 0, nil)
	if err != nil {
		t.Fatalf("Exact: %v", err)
	}
	if len(hits) != 0 {
		t.Fatalf("len(hits) = %d, want 0", len(hits))
	}
}
