package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/rowstore"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// rowStore keeps the workbook in two tables so the service can run against
// Postgres where no spreadsheet is available. Rows keep their sheet row
// numbers; cells are stored from column A.
type rowStore struct {
	db *database.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS sheets (
	title      TEXT PRIMARY KEY,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS sheet_rows (
	sheet      TEXT NOT NULL REFERENCES sheets(title) ON UPDATE CASCADE ON DELETE CASCADE,
	row_number INT  NOT NULL,
	cells      TEXT[] NOT NULL DEFAULT '{}',
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (sheet, row_number)
);
`

// NewRowStore returns a rowstore.Store backed by db, creating its tables if needed.
func NewRowStore(ctx context.Context, db *database.DB) (rowstore.Store, error) {
	if _, err := db.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("ensure row store schema: %w", err)
	}
	return &rowStore{db: db}, nil
}

func (s *rowStore) sheetExists(ctx context.Context, q database.Querier, sheet string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sheets WHERE title = $1)`, sheet).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up sheet %q: %w", sheet, err)
	}
	return exists, nil
}

// ReadRange implements rowstore.Store.
func (s *rowStore) ReadRange(ctx context.Context, rng rowstore.Range) ([][]string, error) {
	exists, err := s.sheetExists(ctx, s.db, rng.Sheet)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("read %s: %w", rng.A1(), rowstore.ErrSheetNotFound)
	}

	first := rng.FromRow
	if first < 1 {
		first = 1
	}

	rows, err := s.db.Query(ctx, `
		SELECT row_number, cells
		FROM sheet_rows
		WHERE sheet = $1
		  AND row_number >= $2
		  AND ($3 = 0 OR row_number <= $3)
		ORDER BY row_number
	`, rng.Sheet, first, rng.ToRow)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rng.A1(), err)
	}
	defer rows.Close()

	var out [][]string
	next := first
	for rows.Next() {
		var (
			number int
			cells  []string
		)
		if err := rows.Scan(&number, &cells); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", rng.A1(), err)
		}
		for ; next < number; next++ {
			out = append(out, []string{})
		}
		out = append(out, columns(cells, rng.FromCol, rng.ToCol))
		next = number + 1
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", rng.A1(), err)
	}
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

// AppendRow implements rowstore.Store.
func (s *rowStore) AppendRow(ctx context.Context, rng rowstore.Range, row []string) (int, error) {
	var written int
	err := s.writeSheet(ctx, rng, func(tx pgx.Tx) error {
		existing, err := tx.Query(ctx, `
			SELECT row_number, cells FROM sheet_rows WHERE sheet = $1 ORDER BY row_number DESC
		`, rng.Sheet)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", rng.A1(), err)
		}
		last := 0
		for existing.Next() {
			var (
				number int
				cells  []string
			)
			if err := existing.Scan(&number, &cells); err != nil {
				existing.Close()
				return err
			}
			if len(columns(cells, rng.FromCol, rng.ToCol)) > 0 {
				last = number
				break
			}
		}
		existing.Close()
		if err := existing.Err(); err != nil {
			return err
		}

		written = last + 1
		cells := make([]string, rng.FromCol, rng.FromCol+len(row))
		cells = append(cells, row...)
		_, err = tx.Exec(ctx, `
			INSERT INTO sheet_rows (sheet, row_number, cells)
			VALUES ($1, $2, $3)
			ON CONFLICT (sheet, row_number) DO UPDATE SET cells = EXCLUDED.cells, updated_at = NOW()
		`, rng.Sheet, written, cells)
		if err != nil {
			return fmt.Errorf("failed to append to %s: %w", rng.A1(), err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// UpdateCells implements rowstore.Store.
func (s *rowStore) UpdateCells(ctx context.Context, rng rowstore.Range, values [][]string) error {
	start := rng.FromRow
	if start < 1 {
		start = 1
	}
	return s.writeSheet(ctx, rng, func(tx pgx.Tx) error {
		for i, update := range values {
			number := start + i
			var cells []string
			err := tx.QueryRow(ctx, `
				SELECT cells FROM sheet_rows WHERE sheet = $1 AND row_number = $2 FOR UPDATE
			`, rng.Sheet, number).Scan(&cells)
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("failed to load row %d of %s: %w", number, rng.Sheet, err)
			}
			for len(cells) < rng.FromCol+len(update) {
				cells = append(cells, "")
			}
			for j, c := range update {
				if c == "" {
					continue
				}
				cells[rng.FromCol+j] = c
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO sheet_rows (sheet, row_number, cells)
				VALUES ($1, $2, $3)
				ON CONFLICT (sheet, row_number) DO UPDATE SET cells = EXCLUDED.cells, updated_at = NOW()
			`, rng.Sheet, number, cells)
			if err != nil {
				return fmt.Errorf("failed to update row %d of %s: %w", number, rng.Sheet, err)
			}
		}
		return nil
	})
}

// SheetExists implements rowstore.Store.
func (s *rowStore) SheetExists(ctx context.Context, sheet string) (bool, error) {
	return s.sheetExists(ctx, s.db, sheet)
}

// AddSheet implements rowstore.Store.
func (s *rowStore) AddSheet(ctx context.Context, sheet string, header []string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `INSERT INTO sheets (title) VALUES ($1)`, sheet); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("add %q: %w", sheet, rowstore.ErrSheetExists)
			}
			return fmt.Errorf("failed to add sheet %q: %w", sheet, err)
		}
		if len(header) == 0 {
			return nil
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO sheet_rows (sheet, row_number, cells) VALUES ($1, 1, $2)
		`, sheet, header)
		if err != nil {
			return fmt.Errorf("failed to write header of %q: %w", sheet, err)
		}
		return nil
	})
}

// RenameSheet implements rowstore.Store.
func (s *rowStore) RenameSheet(ctx context.Context, from, to string) error {
	tag, err := s.db.Exec(ctx, `UPDATE sheets SET title = $2 WHERE title = $1`, from, to)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("rename %q to %q: %w", from, to, rowstore.ErrSheetExists)
		}
		return fmt.Errorf("failed to rename sheet %q: %w", from, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("rename %q: %w", from, rowstore.ErrSheetNotFound)
	}
	return nil
}

func columns(cells []string, from, to int) []string {
	if from >= len(cells) {
		return []string{}
	}
	end := to + 1
	if end > len(cells) {
		end = len(cells)
	}
	out := append([]string{}, cells[from:end]...)
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
