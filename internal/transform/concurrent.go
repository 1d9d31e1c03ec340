package transform

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/rosterimport/internal/match"
	"github.com/JonMunkholm/rosterimport/internal/schema"
)

// minChunk keeps small files on a single goroutine.
const minChunk = 256

// ValidateAllRowsConcurrent produces the same Result as ValidateAllRows but
// spreads rows over at most workers goroutines. Each result slot is written
// by exactly one goroutine, so row order and row numbers are unchanged.
// workers <= 0 uses GOMAXPROCS. Cancelling ctx stops the run and returns
// the context error.
func ValidateAllRowsConcurrent(
	ctx context.Context,
	rows [][]string,
	headers []string,
	mappings []match.ColumnMapping,
	catalog schema.Catalog,
	workers int,
) (Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := newPlan(headers, mappings, catalog)
	results := make([]ValidatedRow, len(rows))

	chunk := (len(rows) + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < len(rows); start += chunk {
		end := min(start+chunk, len(rows))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				results[i] = p.validate(rows[i], i+1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return collect(results), nil
}
