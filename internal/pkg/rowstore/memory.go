package rowstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore keeps sheets in process. It mirrors the document's behaviour
// closely enough for tests and for running the service without credentials.
type MemoryStore struct {
	mu     sync.RWMutex
	sheets map[string][][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sheets: make(map[string][][]string)}
}

func (m *MemoryStore) ReadRange(ctx context.Context, rng Range) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.sheets[rng.Sheet]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", rng.A1(), ErrSheetNotFound)
	}

	first := rng.FromRow
	if first < 1 {
		first = 1
	}
	last := len(data)
	if rng.ToRow > 0 && rng.ToRow < last {
		last = rng.ToRow
	}

	var out [][]string
	for r := first; r <= last; r++ {
		out = append(out, sliceColumns(data[r-1], rng.FromCol, rng.ToCol))
	}
	// trailing empty rows are not reported
	for len(out) > 0 && len(out[len(out)-1]) == 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *MemoryStore) AppendRow(ctx context.Context, rng Range, row []string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.sheets[rng.Sheet]
	if !ok {
		return 0, fmt.Errorf("append %s: %w", rng.A1(), ErrSheetNotFound)
	}

	last := 0
	for i := len(data) - 1; i >= 0; i-- {
		if len(sliceColumns(data[i], rng.FromCol, rng.ToCol)) > 0 {
			last = i + 1
			break
		}
	}
	target := last + 1
	data = writeRow(data, target, rng.FromCol, row, false)
	m.sheets[rng.Sheet] = data
	return target, nil
}

func (m *MemoryStore) UpdateCells(ctx context.Context, rng Range, values [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.sheets[rng.Sheet]
	if !ok {
		return fmt.Errorf("update %s: %w", rng.A1(), ErrSheetNotFound)
	}
	start := rng.FromRow
	if start < 1 {
		start = 1
	}
	for i, row := range values {
		data = writeRow(data, start+i, rng.FromCol, row, true)
	}
	m.sheets[rng.Sheet] = data
	return nil
}

func (m *MemoryStore) SheetExists(ctx context.Context, sheet string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sheets[sheet]
	return ok, nil
}

func (m *MemoryStore) AddSheet(ctx context.Context, sheet string, header []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sheets[sheet]; ok {
		return fmt.Errorf("add %q: %w", sheet, ErrSheetExists)
	}
	var data [][]string
	if len(header) > 0 {
		data = append(data, append([]string(nil), header...))
	}
	m.sheets[sheet] = data
	return nil
}

func (m *MemoryStore) RenameSheet(ctx context.Context, from, to string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.sheets[from]
	if !ok {
		return fmt.Errorf("rename %q: %w", from, ErrSheetNotFound)
	}
	if _, taken := m.sheets[to]; taken {
		return fmt.Errorf("rename %q to %q: %w", from, to, ErrSheetExists)
	}
	delete(m.sheets, from)
	m.sheets[to] = data
	return nil
}

// Titles lists the sheets in alphabetical order.
func (m *MemoryStore) Titles() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	titles := make([]string, 0, len(m.sheets))
	for t := range m.sheets {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles
}

// Dump returns a copy of every row of sheet, header included.
func (m *MemoryStore) Dump(sheet string) [][]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out [][]string
	for _, row := range m.sheets[sheet] {
		out = append(out, append([]string(nil), row...))
	}
	return out
}

// sliceColumns cuts [from, to] out of row and drops trailing empty cells.
func sliceColumns(row []string, from, to int) []string {
	if from >= len(row) {
		return []string{}
	}
	end := to + 1
	if end > len(row) {
		end = len(row)
	}
	out := append([]string{}, row[from:end]...)
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

// writeRow stores cells at (rowNum, fromCol...) growing the sheet as needed.
// With skipEmpty, empty strings leave existing cells as they are.
func writeRow(data [][]string, rowNum, fromCol int, cells []string, skipEmpty bool) [][]string {
	for len(data) < rowNum {
		data = append(data, nil)
	}
	row := data[rowNum-1]
	need := fromCol + len(cells)
	for len(row) < need {
		row = append(row, "")
	}
	for i, c := range cells {
		if skipEmpty && c == "" {
			continue
		}
		row[fromCol+i] = c
	}
	data[rowNum-1] = row
	return data
}
