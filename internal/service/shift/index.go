package shift

import (
	"strconv"
	"sync"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/clock"
	"github.com/patrickmn/go-cache"
)

// Entries outlive the day they describe so a shift open across midnight can
// still be found until the next rebuild.
const indexTTL = 36 * time.Hour

// indexEntry points at the rows of one staff member's shift on one day.
type indexEntry struct {
	ShiftRow    int
	ShiftStatus string
	BreakRow    int // open break, 0 when none
	// BreakMinutes sums the closed breaks of the day.
	BreakMinutes int
}

// openIndex maps (day, staff name) to dashboard and break log rows so
// transitions do not rescan the logs.
type openIndex struct {
	mu       sync.RWMutex
	entries  *cache.Cache
	builtFor clock.Date
}

func newOpenIndex() *openIndex {
	return &openIndex{entries: cache.New(indexTTL, time.Hour)}
}

func indexKey(day clock.Date, name string) string {
	return day.String() + "|" + name
}

// complete reports whether the index was built from a full scan for day.
// A miss on a complete index means the person has no rows that day.
func (i *openIndex) complete(day clock.Date) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return !i.builtFor.IsZero() && i.builtFor == day
}

func (i *openIndex) get(day clock.Date, name string) (indexEntry, bool) {
	v, ok := i.entries.Get(indexKey(day, name))
	if !ok {
		return indexEntry{}, false
	}
	return v.(indexEntry), true
}

func (i *openIndex) put(day clock.Date, name string, e indexEntry) {
	i.entries.SetDefault(indexKey(day, name), e)
}

func (i *openIndex) drop(day clock.Date, name string) {
	i.entries.Delete(indexKey(day, name))
}

// load replaces the whole index with entries for day.
func (i *openIndex) load(day clock.Date, entries map[string]indexEntry) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries.Flush()
	for name, e := range entries {
		i.entries.SetDefault(indexKey(day, name), e)
	}
	i.builtFor = day
}

func (i *openIndex) invalidate() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.builtFor = clock.Date{}
}

func (i *openIndex) size() int {
	return i.entries.ItemCount()
}

// buildEntries folds the logs into index entries for day. Rows are visited
// in sheet order so the newest row of each name wins, matching the resolver.
func buildEntries(events []shift.ShiftEvent, breaks []shift.BreakEvent, day clock.Date) map[string]indexEntry {
	entries := make(map[string]indexEntry)
	for _, e := range events {
		if e.StaffName == "" || e.Day != day {
			continue
		}
		entry := entries[e.StaffName]
		entry.ShiftRow = e.Row
		entry.ShiftStatus = e.Status
		entries[e.StaffName] = entry
	}
	for _, b := range breaks {
		if b.StaffName == "" || b.Day != day {
			continue
		}
		entry := entries[b.StaffName]
		if b.IsOpen() {
			entry.BreakRow = b.Row
		} else if m, err := strconv.Atoi(b.DurationMinutes); err == nil && m > 0 {
			entry.BreakMinutes += m
		}
		entries[b.StaffName] = entry
	}
	return entries
}
