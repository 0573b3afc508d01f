package rag

import (
	"context"
	"math"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"research-chatbot/internal/contextutil"
)

const (
	// unfilteredK is the per-query result count without a filter.
	unfilteredK = 1
	// filteredK is the per-query result count when a filter is active.
	filteredK = 10
	// recencyDecay is the per-year decay rate of the recency weight.
	recencyDecay = 0.01
)

// Aggregator runs every expanded query against the evidence store and merges the results.
type Aggregator struct {
	store    EvidenceStore
	parallel bool
	now      func() time.Time
}

// NewAggregator creates an aggregator. When parallel is true, queries are issued concurrently.
func NewAggregator(store EvidenceStore, parallel bool) *Aggregator {
	return &Aggregator{store: store, parallel: parallel, now: time.Now}
}

// Aggregate returns the unique union of all query results in query order. When the filter
// carries alpha, the union is re-ordered by the similarity/recency blend.
func (a *Aggregator) Aggregate(ctx context.Context, queries []string, filter FilterSpec) ([]Candidate, error) {
	logger := contextutil.LoggerFromContext(ctx)
	now := a.now()

	k := unfilteredK
	years := filter.Resolve(now)
	if filter.Active() {
		k = filteredK
	}

	batches := make([][]Candidate, len(queries))
	if a.parallel && len(queries) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for i, q := range queries {
			g.Go(func() error {
				found, err := a.store.Search(gctx, q, k, years)
				if err != nil {
					return err
				}
				batches[i] = found
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, stageError(StageRetrieve, err)
		}
	} else {
		for i, q := range queries {
			found, err := a.store.Search(ctx, q, k, years)
			if err != nil {
				return nil, stageError(StageRetrieve, err)
			}
			batches[i] = found
		}
	}

	candidates := UniqueUnion(batches)
	if filter.Alpha != nil {
		candidates = RerankByRecency(candidates, *filter.Alpha, now.Year())
	}

	logger.InfoContext(ctx, "evidence aggregated",
		"queries", len(queries),
		"k", k,
		"filter", filter.String(),
		"candidates", len(candidates),
	)
	return candidates, nil
}

// UniqueUnion flattens batches in order, keeping the first candidate for each distinct content.
func UniqueUnion(batches [][]Candidate) []Candidate {
	seen := make(map[string]bool)
	var out []Candidate
	for _, batch := range batches {
		for _, c := range batch {
			if seen[c.Content] {
				continue
			}
			seen[c.Content] = true
			out = append(out, c)
		}
	}
	return out
}

// RecencyScore blends similarity with an exponential recency weight:
// alpha*similarity + (1-alpha)*exp(-0.01*age). A missing year counts as the current year and
// a missing similarity counts as 1.
func RecencyScore(c Candidate, alpha float64, currentYear int) float64 {
	similarity := 1.0
	if c.Score != nil {
		similarity = *c.Score
	}
	year := currentYear
	if c.Year != nil {
		year = *c.Year
	}
	age := float64(currentYear - year)
	return alpha*similarity + (1-alpha)*math.Exp(-recencyDecay*age)
}

// RerankByRecency returns a copy of candidates stably sorted by RecencyScore, highest first.
func RerankByRecency(candidates []Candidate, alpha float64, currentYear int) []Candidate {
	type scored struct {
		c     Candidate
		score float64
	}
	ranked := make([]scored, len(candidates))
	for i, c := range candidates {
		ranked[i] = scored{c: c, score: RecencyScore(c, alpha, currentYear)}
	}
	slices.SortStableFunc(ranked, func(x, y scored) int {
		switch {
		case x.score > y.score:
			return -1
		case x.score < y.score:
			return 1
		default:
			return 0
		}
	})

	out := make([]Candidate, len(ranked))
	for i, r := range ranked {
		out[i] = r.c
	}
	return out
}
