package rowstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Guarded bounds every call to the wrapped store with a timeout and a
// request budget, and classifies failures as ErrUnavailable.
type Guarded struct {
	store   Store
	timeout time.Duration
	limiter *rate.Limiter
}

// Guard wraps store. A zero timeout disables the deadline and a nil limiter
// disables rate limiting.
func Guard(store Store, timeout time.Duration, limiter *rate.Limiter) *Guarded {
	return &Guarded{store: store, timeout: timeout, limiter: limiter}
}

// PerMinute builds a limiter allowing n requests per minute with a burst of n/4.
func PerMinute(n int) *rate.Limiter {
	if n <= 0 {
		return nil
	}
	burst := n / 4
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), burst)
}

func (g *Guarded) begin(ctx context.Context) (context.Context, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if g.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			cancel()
			return nil, nil, err
		}
	}
	return ctx, cancel, nil
}

func classify(op, target string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrSheetNotFound) || errors.Is(err, ErrSheetExists) || errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, op, target, err)
}

func (g *Guarded) ReadRange(ctx context.Context, rng Range) ([][]string, error) {
	ctx, cancel, err := g.begin(ctx)
	if err != nil {
		return nil, classify("read", rng.A1(), err)
	}
	defer cancel()
	rows, err := g.store.ReadRange(ctx, rng)
	return rows, classify("read", rng.A1(), err)
}

func (g *Guarded) AppendRow(ctx context.Context, rng Range, row []string) (int, error) {
	ctx, cancel, err := g.begin(ctx)
	if err != nil {
		return 0, classify("append", rng.A1(), err)
	}
	defer cancel()
	n, err := g.store.AppendRow(ctx, rng, row)
	return n, classify("append", rng.A1(), err)
}

func (g *Guarded) UpdateCells(ctx context.Context, rng Range, values [][]string) error {
	ctx, cancel, err := g.begin(ctx)
	if err != nil {
		return classify("update", rng.A1(), err)
	}
	defer cancel()
	return classify("update", rng.A1(), g.store.UpdateCells(ctx, rng, values))
}

func (g *Guarded) SheetExists(ctx context.Context, sheet string) (bool, error) {
	ctx, cancel, err := g.begin(ctx)
	if err != nil {
		return false, classify("lookup", sheet, err)
	}
	defer cancel()
	ok, err := g.store.SheetExists(ctx, sheet)
	return ok, classify("lookup", sheet, err)
}

func (g *Guarded) AddSheet(ctx context.Context, sheet string, header []string) error {
	ctx, cancel, err := g.begin(ctx)
	if err != nil {
		return classify("add sheet", sheet, err)
	}
	defer cancel()
	return classify("add sheet", sheet, g.store.AddSheet(ctx, sheet, header))
}

func (g *Guarded) RenameSheet(ctx context.Context, from, to string) error {
	ctx, cancel, err := g.begin(ctx)
	if err != nil {
		return classify("rename sheet", from, err)
	}
	defer cancel()
	return classify("rename sheet", from, g.store.RenameSheet(ctx, from, to))
}
