package crosstab

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Tyorden/svustats/internal/model"
)

// cancelCheckInterval is how many records a worker counts between
// context checks.
const cancelCheckInterval = 1024

func normalizeWorkers(workers int) int {
	if workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return workers
}

// CrossTabulateParallel splits records into one chunk per worker, counts
// each chunk into a partial matrix and merges the partials by summation.
// The table is identical to the one CrossTabulate returns.
// A workers value of zero or less uses GOMAXPROCS.
func CrossTabulateParallel[R model.Record](ctx context.Context, records []R, x, y model.Field, opt Options, workers int) (*Table, error) {
	if err := checkFields(x, y); err != nil {
		return nil, err
	}
	workers = normalizeWorkers(workers)
	if workers > len(records) {
		workers = len(records)
	}
	if workers <= 1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return build(count(records, x, y), x, y, opt), nil
	}

	chunk := (len(records) + workers - 1) / workers
	partials := make([]matrix, workers)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		start := i * chunk
		end := min(start+chunk, len(records))
		if start >= end {
			continue
		}
		g.Go(func() error {
			m := make(matrix)
			for j, r := range records[start:end] {
				if j%cancelCheckInterval == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				m.add(r.Value(x), r.Value(y), 1)
			}
			partials[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := make(matrix)
	for _, p := range partials {
		total.merge(p)
	}
	return build(total, x, y, opt), nil
}

// Permutations cross-tabulates every ordered pair of distinct fields.
// Tables are returned in pair order: for fields [a b c] that is
// (a,b) (a,c) (b,a) (b,c) (c,a) (c,b). At most workers tables are
// computed at once.
func Permutations[R model.Record](ctx context.Context, records []R, fields []model.Field, opt Options, workers int) ([]*Table, error) {
	type pair struct{ x, y model.Field }
	var pairs []pair
	for _, x := range fields {
		for _, y := range fields {
			if x == y {
				continue
			}
			if err := checkFields(x, y); err != nil {
				return nil, err
			}
			pairs = append(pairs, pair{x, y})
		}
	}

	tables := make([]*Table, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(normalizeWorkers(workers))
	for i, p := range pairs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			table, err := CrossTabulate(records, p.x, p.y, opt)
			if err != nil {
				return fmt.Errorf("%s x %s: %w", p.x, p.y, err)
			}
			tables[i] = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}
