package search

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/rahulunair/vekta/kernel"
	"github.com/rahulunair/vekta/metrics"
	"github.com/rahulunair/vekta/record"
	"github.com/rahulunair/vekta/store"
)

// Records is the minimal read surface exact search needs from a store,
// letting tests substitute an in-memory fake instead of a real store.Store.
type Records interface {
	Len() int
	At(i int) (record.Record, error)
	Partitions(w int) []store.Range
}

// Exact runs a brute-force cosine-similarity scan of every record in recs
// against query, partitioned across a worker pool, and returns the top k
// hits ordered by descending similarity (ties by ascending index). workers
// sets the partition count directly; workers <= 0 defaults to
// runtime.GOMAXPROCS(0), per SPEC_FULL §4.4. The result ordering is
// independent of workers: every worker scans a disjoint index range and
// the per-partition heaps are merged deterministically, so W=1 and W=16
// return identical hit lists for the same query.
//
// Grounded on hupe1980-vecgo/engine/worker_pool.go for the partitioned
// fan-out shape, replacing the teacher's hand-rolled WorkerPool with
// golang.org/x/sync/errgroup, and on searcher/queue.go for the bounded
// top-K accumulation now in heap.go.
func Exact(ctx context.Context, recs Records, query []float32, k, workers int, collector metrics.Collector) ([]Hit, error) {
	if collector == nil {
		collector = metrics.Nop{}
	}
	if k <= 0 {
		return nil, nil
	}
	n := recs.Len()
	if n == 0 {
		return nil, nil
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}
	partitions := recs.Partitions(workers)

	heaps := make([]*topKHeap, len(partitions))
	g, ctx := errgroup.WithContext(ctx)
	for pi, rg := range partitions {
		pi, rg := pi, rg
		heaps[pi] = newTopKHeap(k)
		g.Go(func() error {
			h := heaps[pi]
			for i := rg.Start; i < rg.End; i++ {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				r, err := recs.At(i)
				if err != nil {
					return err
				}
				sim := kernel.Similarity(query, r.Vector)
				h.push(Hit{Index: i, Similarity: sim})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	collector.SearchCompleted("exact", n)
	return mergeHeaps(heaps, k), nil
}
