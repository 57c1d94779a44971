package cryptotax

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Cascade computes the years from through to, chaining the carryover of each
// year into the next, starting with initial.
//
// Years are computed concurrently from a single snapshot of the source. Each
// computation owns its lot ledger; only the carryover chain is sequential.
func (e *Engine) Cascade(ctx context.Context, from, to int, initial Carryover) ([]*Report, error) {
	if to < from {
		return nil, fmt.Errorf("invalid year range %d-%d", from, to)
	}
	txs, err := e.src.Transactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load transactions: %w", err)
	}

	reports := make([]*Report, to-from+1)
	g, gctx := errgroup.WithContext(ctx)
	for i := range reports {
		g.Go(func() error {
			r, err := e.compute(gctx, txs, from+i)
			if err != nil {
				return fmt.Errorf("year %d: %w", from+i, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	book := NewCarryoverLedger(e.cfg.DeductionLimit)
	book.Set(from, initial)
	for _, r := range reports {
		r.Carryover = book.Apply(r.Year, r.Summary)
	}
	return reports, nil
}
