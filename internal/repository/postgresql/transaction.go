package postgresql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/rowstore"
	"github.com/jackc/pgx/v5"
)

// inTx runs fn inside a transaction. An error or panic from fn rolls it back.
func (s *rowStore) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				slog.Error("Rollback failed during panic recovery", "error", rbErr)
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// writeSheet runs fn while holding the lock on rng's sheet row, so writers of
// one sheet take turns the way a single spreadsheet serializes its edits.
func (s *rowStore) writeSheet(ctx context.Context, rng rowstore.Range, fn func(tx pgx.Tx) error) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockSheet(ctx, tx, rng); err != nil {
			return err
		}
		return fn(tx)
	})
}

// lockSheet checks that the sheet exists and locks it until the transaction ends.
func lockSheet(ctx context.Context, tx pgx.Tx, rng rowstore.Range) error {
	var title string
	err := tx.QueryRow(ctx, `SELECT title FROM sheets WHERE title = $1 FOR UPDATE`, rng.Sheet).Scan(&title)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("write %s: %w", rng.A1(), rowstore.ErrSheetNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to lock sheet %q: %w", rng.Sheet, err)
	}
	return nil
}
