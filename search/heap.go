// Package search implements the exact nearest-neighbor scan: partitioning
// the record range across a worker pool, maintaining a bounded per-worker
// top-K heap, and merging worker heaps into a single ranked result.
package search

import "sort"

// Hit is a single scored candidate: the record's sequential index in the
// store and its similarity to the query.
type Hit struct {
	Index      int
	Similarity float32
}

// better reports whether a is a stronger candidate than b: higher
// similarity wins; ties are broken by ascending index, per spec.
func better(a, b Hit) bool {
	if a.Similarity != b.Similarity {
		return a.Similarity > b.Similarity
	}
	return a.Index < b.Index
}

// topKHeap is a bounded max-heap over "badness" — the worst retained
// candidate sits at the root so it can be evicted in O(log K) when a
// stronger candidate arrives. Adapted from the teacher's
// searcher.PriorityQueue (PushItemBounded), specialized to a single
// heap keyed on (similarity, index) instead of a generic Distance field.
type topKHeap struct {
	k     int
	items []Hit
}

// newTopKHeap creates a heap that retains at most k candidates.
func newTopKHeap(k int) *topKHeap {
	if k < 0 {
		k = 0
	}
	return &topKHeap{k: k, items: make([]Hit, 0, k)}
}

// push offers a candidate to the heap. It is retained if there is room, or
// if it is a stronger candidate than the current worst retained one.
func (h *topKHeap) push(hit Hit) {
	if h.k == 0 {
		return
	}
	if len(h.items) < h.k {
		h.items = append(h.items, hit)
		h.siftUp(len(h.items) - 1)
		return
	}
	if better(hit, h.items[0]) {
		h.items[0] = hit
		h.siftDown(0)
	}
}

// worse reports whether items[i] is a weaker candidate than items[j].
func (h *topKHeap) worse(i, j int) bool {
	// i is "worse" (should float toward the root) than j when j is the
	// stronger candidate.
	return better(h.items[j], h.items[i])
}

func (h *topKHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		// Root holds the worst item: parent must be worse than child to
		// satisfy the max-heap-on-badness invariant.
		if !h.worse(i, parent) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *topKHeap) siftDown(i int) {
	n := len(h.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && h.worse(right, left) {
			child = right
		}
		if !h.worse(child, i) {
			break
		}
		h.items[i], h.items[child] = h.items[child], h.items[i]
		i = child
	}
}

// sorted returns a copy of the heap's items ordered by descending
// similarity, ties broken by ascending index; the heap is left unchanged.
func (h *topKHeap) sorted() []Hit {
	out := make([]Hit, len(h.items))
	copy(out, h.items)
	sort.Slice(out, func(i, j int) bool { return better(out[i], out[j]) })
	return out
}

// mergeHeaps merges the per-worker heaps into a single top-K ranked result.
// It does not merge pairwise in a tree: it is one deterministic sort over
// the union of all worker results, truncated to k —
// correct regardless of how many workers produced it or in what order they
// finish, which is what the "partition independence" property requires.
func mergeHeaps(heaps []*topKHeap, k int) []Hit {
	total := 0
	for _, h := range heaps {
		total += len(h.items)
	}
	all := make([]Hit, 0, total)
	for _, h := range heaps {
		all = append(all, h.items...)
	}
	sort.Slice(all, func(i, j int) bool { return better(all[i], all[j]) })
	if len(all) > k {
		all = all[:k]
	}
	return all
}
