// Package rowstore is the gateway to the tabular document that acts as the
// system of record. Backends speak in sheets, rows and A1 ranges and know
// nothing about shifts or staff.
package rowstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnavailable marks any failure talking to the store: network, auth,
	// quota or timeout. The backend error stays in the chain.
	ErrUnavailable = errors.New("row store unavailable")

	// ErrSheetNotFound is returned when a range names a sheet that does not exist.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrSheetExists is returned by AddSheet and RenameSheet when the target title is taken.
	ErrSheetExists = errors.New("sheet already exists")
)

// Store is the set of primitives the time clock needs from the document.
// None of the operations are transactional with respect to each other.
type Store interface {
	// ReadRange returns the rows of rng in order. Rows may be shorter than
	// the range is wide; trailing empty rows are omitted.
	ReadRange(ctx context.Context, rng Range) ([][]string, error)

	// AppendRow writes row below the last non-empty row of rng's sheet,
	// starting at rng's first column, and returns the 1-based row written.
	AppendRow(ctx context.Context, rng Range, row []string) (int, error)

	// UpdateCells overwrites the rectangle anchored at rng's top-left cell.
	// Empty strings leave the target cell untouched.
	UpdateCells(ctx context.Context, rng Range, values [][]string) error

	SheetExists(ctx context.Context, sheet string) (bool, error)

	// AddSheet creates sheet and writes header as its first row.
	AddSheet(ctx context.Context, sheet string, header []string) error

	RenameSheet(ctx context.Context, from, to string) error
}

// Range addresses a rectangle of a sheet. Columns are 0-based (A = 0) and
// rows are 1-based as in the document. FromRow 0 means whole columns and
// ToRow 0 means the range is open-ended downward.
type Range struct {
	Sheet   string
	FromCol int
	ToCol   int
	FromRow int
	ToRow   int
}

// Rows addresses columns fromCol..toCol from row fromRow to the end of the sheet.
func Rows(sheet string, fromCol, toCol, fromRow int) Range {
	return Range{Sheet: sheet, FromCol: fromCol, ToCol: toCol, FromRow: fromRow}
}

// Row addresses columns fromCol..toCol of a single row.
func Row(sheet string, fromCol, toCol, row int) Range {
	return Range{Sheet: sheet, FromCol: fromCol, ToCol: toCol, FromRow: row, ToRow: row}
}

// Cell addresses one cell.
func Cell(sheet string, col, row int) Range {
	return Range{Sheet: sheet, FromCol: col, ToCol: col, FromRow: row, ToRow: row}
}

// Columns addresses whole columns fromCol..toCol, the form used for appends.
func Columns(sheet string, fromCol, toCol int) Range {
	return Range{Sheet: sheet, FromCol: fromCol, ToCol: toCol}
}

// A1 renders the range in the document's notation, e.g. 'Staff Roster'!A2:E.
func (r Range) A1() string {
	var b strings.Builder
	b.WriteString(QuoteSheet(r.Sheet))
	b.WriteByte('!')
	b.WriteString(ColumnName(r.FromCol))
	if r.FromRow > 0 {
		b.WriteString(strconv.Itoa(r.FromRow))
	}
	if r.FromRow > 0 && r.ToRow == r.FromRow && r.ToCol == r.FromCol {
		return b.String()
	}
	b.WriteByte(':')
	b.WriteString(ColumnName(r.ToCol))
	if r.ToRow > 0 {
		b.WriteString(strconv.Itoa(r.ToRow))
	}
	return b.String()
}

func (r Range) String() string { return r.A1() }

// QuoteSheet wraps a sheet title in single quotes, doubling embedded quotes.
func QuoteSheet(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

// ColumnName converts a 0-based column index to letters: 0 -> A, 26 -> AA.
func ColumnName(index int) string {
	if index < 0 {
		return ""
	}
	var letters []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		letters = append([]byte{byte('A' + (n-1)%26)}, letters...)
	}
	return string(letters)
}

// ParseRowNumber extracts the first row number from an A1 reference such
// as 'Dashboard'!A15:K15.
func ParseRowNumber(a1 string) (int, error) {
	ref := a1
	if i := strings.LastIndex(ref, "!"); i >= 0 {
		ref = ref[i+1:]
	}
	if i := strings.Index(ref, ":"); i >= 0 {
		ref = ref[:i]
	}
	digits := strings.TrimLeftFunc(ref, func(r rune) bool {
		return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || r == '$'
	})
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("no row number in %q", a1)
	}
	return n, nil
}

// CellAt returns row[i] or "" when the row is too short.
func CellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
