// Package store provides TableStore implementations: Postgres for
// operation and an in-memory store for tests and dry runs.
package store

import (
	"context"
	"sync"

	"github.com/brightpath/assessflow/internal/contracts"
)

// Memory is an in-process TableStore. Tables are deep-copied on the way in
// and out so callers can never alias stored state.
type Memory struct {
	mu     sync.RWMutex
	tables map[string]*contracts.Table
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{tables: make(map[string]*contracts.Table)}
}

// Get returns a copy of the named table.
func (m *Memory) Get(_ context.Context, name string) (*contracts.Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tables[name]
	if !ok {
		return nil, contracts.ErrTableNotFound
	}
	return copyTable(t), nil
}

// Replace swaps the named table wholesale.
func (m *Memory) Replace(_ context.Context, table *contracts.Table) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tables[table.Name] = copyTable(table)
	return nil
}

// Names returns the stored table names; test helper.
func (m *Memory) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.tables))
	for n := range m.tables {
		names = append(names, n)
	}
	return names
}

func copyTable(t *contracts.Table) *contracts.Table {
	out := &contracts.Table{
		Name:    t.Name,
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}
