// Package table implements the domain table: the keyed child mapping a
// domain record owns, and the registration protocol that signs on write.
package table

import (
	"context"
	"sort"
	"sync"

	"xdao.co/nametree/record"
)

// Table is the external get/set collaborator for one domain's children.
//
// Keys are path-prefix strings within that domain (registration writes single
// segments; resolution may probe multi-segment prefixes). Get reports absence
// through its second return, not an error.
type Table interface {
	Get(ctx context.Context, key string) (record.Record, bool, error)
	Set(ctx context.Context, key string, rec record.Record) error
	Keys(ctx context.Context) ([]string, error)
}

// Provider yields the table backing a given domain record.
type Provider interface {
	TableFor(d *record.Domain) (Table, error)
}

// MemTables is an in-process Provider keyed by domain record identity.
// Useful for tests and ephemeral setups; nothing is persisted.
type MemTables struct {
	mu     sync.Mutex
	tables map[*record.Domain]*MemTable
}

func NewMemTables() *MemTables {
	return &MemTables{tables: make(map[*record.Domain]*MemTable)}
}

func (m *MemTables) TableFor(d *record.Domain) (Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[d]
	if !ok {
		t = NewMemTable()
		m.tables[d] = t
	}
	return t, nil
}

// MemTable is a mutex-guarded in-memory Table.
type MemTable struct {
	mu      sync.RWMutex
	entries map[string]record.Record
}

var _ Table = (*MemTable)(nil)

func NewMemTable() *MemTable {
	return &MemTable{entries: make(map[string]record.Record)}
}

func (t *MemTable) Get(ctx context.Context, key string) (record.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.entries[key]
	return rec, ok, nil
}

func (t *MemTable) Set(ctx context.Context, key string, rec record.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[key] = rec
	return nil
}

func (t *MemTable) Keys(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.entries))
	for k := range t.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}
