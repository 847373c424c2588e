package evidence

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/ppiankov/veritube/internal/model"
	"github.com/ppiankov/veritube/internal/search"
)

// Retriever executes queries against the search service and collects
// deduplicated evidence. Per-query failures are tolerated; only a fully
// unreachable service is fatal.
type Retriever struct {
	searcher    search.Searcher
	perQuery    int // Top-K cap per query
	concurrency int
	warnf       func(format string, args ...any)
}

// NewRetriever creates an evidence retriever
func NewRetriever(searcher search.Searcher, perQuery, concurrency int) *Retriever {
	if perQuery <= 0 {
		perQuery = 5
	}
	if concurrency <= 0 {
		concurrency = 3
	}
	return &Retriever{
		searcher:    searcher,
		perQuery:    perQuery,
		concurrency: concurrency,
		warnf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
		},
	}
}

// SetWarnFunc overrides the warning sink (used in tests)
func (r *Retriever) SetWarnFunc(warnf func(format string, args ...any)) {
	r.warnf = warnf
}

// Retrieve issues each query independently, in parallel under a bounded
// semaphore, and returns the evidence deduplicated by source URL in query
// order. It fails with model.ErrRetrievalFailure only when every query
// errored; partial failures are logged and skipped.
func (r *Retriever) Retrieve(ctx context.Context, queries []string) ([]model.EvidenceItem, error) {
	if len(queries) == 0 {
		return []model.EvidenceItem{}, nil
	}

	perQuery := make([][]model.EvidenceItem, len(queries))
	errs := make([]error, len(queries))
	var wg sync.WaitGroup

	semaphore := make(chan struct{}, r.concurrency)

	for i, q := range queries {
		wg.Add(1)
		go func(idx int, query string) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				errs[idx] = ctx.Err()
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			items, err := r.searcher.Search(ctx, query, r.perQuery)
			if err != nil {
				errs[idx] = err
				r.warnf("search %q failed: %v", query, err)
				return
			}
			perQuery[idx] = items
		}(i, q)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failures := 0
	var all []model.EvidenceItem
	for i := range queries {
		if errs[i] != nil {
			failures++
			continue
		}
		all = append(all, perQuery[i]...)
	}

	if failures == len(queries) {
		return nil, fmt.Errorf("all %d queries failed, last: %v: %w", len(queries), errs[len(errs)-1], model.ErrRetrievalFailure)
	}

	return model.DedupeEvidence(all), nil
}
