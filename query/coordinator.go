// Package query assembles a single search request into a scored result
// set: it picks exact or approximate search per configuration, checks
// dimension compatibility, and reports the result in the shape the wire
// package serializes.
//
// Grounded on hupe1980-vecgo/errors.go's translateError pattern (mapping
// internal errors to a small stable taxonomy) and engine/coordinator.go's
// naming for the type that owns a search request end to end.
package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/rahulunair/vekta/lsh"
	"github.com/rahulunair/vekta/metrics"
	"github.com/rahulunair/vekta/search"
	"github.com/rahulunair/vekta/store"
)

// ErrDimensionMismatch is returned when a query vector's length does not
// match the store's configured dimensions.
var ErrDimensionMismatch = errors.New("query: dimension mismatch")

// Method selects between exact and approximate search.
type Method string

const (
	MethodExact Method = "exact"
	MethodANN   Method = "ann"
)

// Result is one scored hit, resolved back to its stored label.
type Result struct {
	Label      string
	Similarity float32
}

// Coordinator answers search requests against one open store, optionally
// backed by an LSH index for approximate queries.
type Coordinator struct {
	st        *store.Store
	method    Method
	index     *lsh.Index
	workers   int
	collector metrics.Collector
}

// New builds a Coordinator for st. If method is MethodANN and
// numProjections is nonzero, an LSH index is built eagerly (spec.md
// leaves the ANN index unpersisted; it is rebuilt once per invocation).
// If numProjections is 0, approximate requests silently fall back to
// exact search and onFallback (if non-nil) is invoked to let the caller
// log it. collector receives search and fallback counts; a nil collector
// is replaced with metrics.Nop{}. workers sets the exact-search partition
// count (see search.Exact); workers <= 0 defers to runtime.GOMAXPROCS(0).
func New(st *store.Store, method Method, numProjections, workers int, onFallback func(reason string), collector metrics.Collector) (*Coordinator, error) {
	if collector == nil {
		collector = metrics.Nop{}
	}
	c := &Coordinator{st: st, method: method, workers: workers, collector: collector}
	if method != MethodANN {
		return c, nil
	}
	if numProjections == 0 {
		if onFallback != nil {
			onFallback("num_projections is 0")
		}
		collector.LSHFallback()
		c.method = MethodExact
		return c, nil
	}
	idx, err := lsh.Build(st, st.Layout().Dimensions, numProjections)
	if err != nil {
		return nil, fmt.Errorf("query: building lsh index: %w", err)
	}
	c.index = idx
	return c, nil
}

// Search returns the top k results for query, ordered by descending
// similarity.
func (c *Coordinator) Search(ctx context.Context, query []float32, k int) ([]Result, error) {
	if len(query) != c.st.Layout().Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, store has %d", ErrDimensionMismatch, len(query), c.st.Layout().Dimensions)
	}

	var hits []search.Hit
	var err error
	if c.method == MethodANN && c.index != nil {
		hits, err = c.index.Query(ctx, query, k, c.collector)
	} else {
		hits, err = search.Exact(ctx, c.st, query, k, c.workers, c.collector)
	}
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		r, err := c.st.At(h.Index)
		if err != nil {
			return nil, err
		}
		results[i] = Result{Label: r.Label, Similarity: h.Similarity}
	}
	return results, nil
}

