// Package lsh implements approximate nearest-neighbor search over
// random-hyperplane sign projections (spec §4.5): a query is scored only
// against records sharing a nearby P-bit signature, expanding the search
// by ascending Hamming radius until enough candidates are gathered.
//
// Grounded on the sign-projection hashing approach used across the
// retrieval pack's other_examples/ LSH snippets (haivivi's plane
// generation, gasparian's bucket-radius expansion), adapted to spec.md's
// single-table design: no multi-table amplification, no single-bit-flip
// shortcut, deterministic per-(D,P) hyperplane seeding via math/rand/v2's
// PCG source so two databases built from the same config always hash
// identically without persisting the hyperplanes.
package lsh

import (
	"context"
	"math/bits"
	"math/rand/v2"
	"sort"

	"github.com/rahulunair/vekta/kernel"
	"github.com/rahulunair/vekta/metrics"
	"github.com/rahulunair/vekta/record"
	"github.com/rahulunair/vekta/search"
)

// Index holds P deterministic random hyperplanes for a fixed dimension D
// and buckets records by their resulting P-bit signature.
type Index struct {
	dimensions int
	planes     int
	hyperplane [][]float32

	buckets map[uint64][]int
	recs    Records
}

// Build constructs an Index over every record in recs. planes is P, the
// signature width; if planes is 0, callers should skip LSH entirely and
// fall back to an exact scan (spec §4.5's explicit P==0 fallback) — Build
// still succeeds with an empty index in that case for callers that build
// unconditionally.
func Build(recs Records, dimensions, planes int) (*Index, error) {
	idx := &Index{
		dimensions: dimensions,
		planes:     planes,
		hyperplane: makeHyperplanes(dimensions, planes),
		buckets:    make(map[uint64][]int),
		recs:       recs,
	}
	if planes == 0 {
		return idx, nil
	}

	n := recs.Len()
	for i := 0; i < n; i++ {
		r, err := recs.At(i)
		if err != nil {
			return nil, err
		}
		sig := idx.signature(r.Vector)
		idx.buckets[sig] = append(idx.buckets[sig], i)
	}
	return idx, nil
}

// Records is the read surface Build needs from a store.
type Records interface {
	Len() int
	At(i int) (record.Record, error)
}

// makeHyperplanes deterministically derives P normal vectors of dimension
// D from a PCG source seeded on (D,P), so any two indexes built for the
// same (D,P) hash identically without ever persisting the planes.
func makeHyperplanes(dimensions, planes int) [][]float32 {
	if planes == 0 {
		return nil
	}
	seed1 := uint64(dimensions)<<32 | uint64(planes)
	seed2 := uint64(planes)<<32 | uint64(dimensions) ^ 0x9E3779B97F4A7C15
	src := rand.NewPCG(seed1, seed2)
	rng := rand.New(src)

	hp := make([][]float32, planes)
	for p := 0; p < planes; p++ {
		v := make([]float32, dimensions)
		for d := 0; d < dimensions; d++ {
			v[d] = float32(rng.NormFloat64())
		}
		hp[p] = v
	}
	return hp
}

// signature computes the P-bit sign projection of v against the index's
// hyperplanes. dot == 0 is treated as bit 1, per spec §4.5.
func (idx *Index) signature(v []float32) uint64 {
	var sig uint64
	for p, plane := range idx.hyperplane {
		var dot float32
		for d, pv := range plane {
			dot += pv * v[d]
		}
		if dot >= 0 {
			sig |= 1 << uint(p)
		}
	}
	return sig
}

// Query returns up to k approximate nearest neighbors of query, expanding
// the Hamming radius around query's own signature until the candidate
// pool reaches max(k, 4*k) records or the radius exhausts all P bits, then
// scoring exactly within that pool.
func (idx *Index) Query(ctx context.Context, query []float32, k int, collector metrics.Collector) ([]search.Hit, error) {
	if collector == nil {
		collector = metrics.Nop{}
	}
	if k <= 0 {
		return nil, nil
	}
	if idx.planes == 0 {
		return nil, nil
	}

	want := 4 * k
	if want < k {
		want = k
	}
	qsig := idx.signature(query)
	candidates := idx.expand(qsig, want)
	if len(candidates) == 0 {
		return nil, nil
	}

	hits := make([]search.Hit, 0, len(candidates))
	for _, i := range candidates {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		r, err := idx.recs.At(i)
		if err != nil {
			return nil, err
		}
		hits = append(hits, search.Hit{Index: i, Similarity: kernel.Similarity(query, r.Vector)})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Index < hits[j].Index
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	collector.SearchCompleted("ann", len(candidates))
	return hits, nil
}

// expand walks Hamming radius 0,1,2,... around qsig, collecting bucketed
// record indices in ascending-signature order at each radius, until the
// pool reaches want records or every radius up to P bits has been tried.
func (idx *Index) expand(qsig uint64, want int) []int {
	seen := make(map[uint64]bool)
	var out []int

	for radius := 0; radius <= idx.planes; radius++ {
		sigs := signaturesAtRadius(qsig, idx.planes, radius)
		sort.Slice(sigs, func(i, j int) bool { return sigs[i] < sigs[j] })
		for _, s := range sigs {
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, idx.buckets[s]...)
		}
		if len(out) >= want {
			break
		}
	}
	return out
}

// signaturesAtRadius returns every signature exactly `radius` bit flips
// away from center, restricted to the low `bitsUsed` bits.
func signaturesAtRadius(center uint64, bitsUsed, radius int) []uint64 {
	if radius == 0 {
		return []uint64{center}
	}
	var out []uint64
	var combos func(start int, chosen []int)
	combos = func(start int, chosen []int) {
		if len(chosen) == radius {
			flipped := center
			for _, b := range chosen {
				flipped ^= 1 << uint(b)
			}
			out = append(out, flipped)
			return
		}
		for b := start; b < bitsUsed; b++ {
			combos(b+1, append(chosen, b))
		}
	}
	combos(0, nil)
	return out
}

// popcountRadius reports the Hamming distance between two P-bit
// signatures, exposed for tests.
func popcountRadius(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
