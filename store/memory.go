package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"
)

// Memory is an in-process Store used by tests and by -store=memory dev runs.
// Records are deep-copied on the way in and out.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]map[string]Record
}

func NewMemory() *Memory {
	return &Memory{tables: map[string]map[string]Record{}}
}

func (m *Memory) table(name string) map[string]Record {
	t, ok := m.tables[name]
	if !ok {
		t = map[string]Record{}
		m.tables[name] = t
	}
	return t
}

func (m *Memory) Get(_ context.Context, table string, f Filters) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := []Record{}
	for _, rec := range m.tables[table] {
		if f.Match(rec) {
			matched = append(matched, copyRecord(rec))
		}
	}

	sortRecords(matched, f)

	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			return []Record{}, nil
		}
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[:f.Limit]
	}
	return matched, nil
}

func (m *Memory) Post(_ context.Context, table string, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := copyRecord(rec)
	id, _ := stored["id"].(string)
	if id == "" {
		id = uuid.Must(uuid.NewV4()).String()
		stored["id"] = id
	}
	if _, ok := stored["created_at"]; !ok {
		stored["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}

	m.table(table)[id] = stored
	return copyRecord(stored), nil
}

func (m *Memory) Patch(_ context.Context, table string, f Filters, partial Record) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated := []Record{}
	for id, rec := range m.table(table) {
		if !f.Match(rec) {
			continue
		}
		merged := copyRecord(rec)
		for k, v := range copyRecord(partial) {
			merged[k] = v
		}
		m.table(table)[id] = merged
		updated = append(updated, copyRecord(merged))
	}
	return updated, nil
}

func (m *Memory) Delete(_ context.Context, table string, f Filters) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, rec := range m.table(table) {
		if f.Match(rec) {
			delete(m.table(table), id)
		}
	}
	return nil
}

func sortRecords(recs []Record, f Filters) {
	column, desc, ok := f.OrderColumn()
	if !ok {
		// stable default so pagination over unordered queries behaves
		column = "id"
	}
	sort.SliceStable(recs, func(i, j int) bool {
		less := compareValues(recs[i][column], recs[j][column]) < 0
		if desc {
			return !less
		}
		return less
	})
}

func compareValues(a, b any) int {
	af, aNum := numeric(a)
	bf, bNum := numeric(b)
	if aNum && bNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}
	return strings.Compare(canonical(a), canonical(b))
}

// numeric widens stored number shapes (raw ints from Post, float64 from a
// JSON round trip) so ordering never falls back to string comparison.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func copyRecord(rec Record) Record {
	out := Record{}
	for k, v := range rec {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case Record:
		return copyRecord(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = copyValue(item)
		}
		return out
	}
	return v
}
