// Package memory provides an in-memory table provider, used by tests and
// ephemeral runs. Rows are deep-copied on the way in and out so callers can
// never alias the stored state.
package memory

import (
	"sync"

	"github.com/inhlab/pointage/pkg/tables"
)

// Provider is an in-memory implementation of tables.Provider.
type Provider struct {
	mu   sync.RWMutex
	data map[string][]tables.Row
}

// New creates an empty in-memory provider.
func New() *Provider {
	return &Provider{data: make(map[string][]tables.Row)}
}

// ReadTable returns a copy of the named table's rows. Missing tables read as
// empty.
func (p *Provider) ReadTable(name string) ([]tables.Row, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	stored, ok := p.data[name]
	if !ok {
		return nil, nil
	}
	return copyRows(stored), nil
}

// WriteTable replaces the named table's contents.
func (p *Provider) WriteTable(name string, rows []tables.Row) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.data[name] = copyRows(rows)
	return nil
}

// AppendRow adds a single row to the named table.
func (p *Provider) AppendRow(name string, row tables.Row) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.data[name] = append(p.data[name], row.Clone())
	return nil
}

func copyRows(rows []tables.Row) []tables.Row {
	out := make([]tables.Row, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
