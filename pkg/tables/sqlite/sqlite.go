// Package sqlite provides an embedded SQL table provider using the pure-Go
// modernc.org/sqlite driver. It implements the same weakly-typed contract as
// the workbook backend: every column is TEXT and a table write replaces the
// whole table inside one transaction, so a failure leaves the prior state
// intact.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/inhlab/pointage/pkg/errors"
	"github.com/inhlab/pointage/pkg/tables"
)

// Provider is a SQLite-backed implementation of tables.Provider.
type Provider struct {
	db      *sql.DB
	mapping tables.Mapping
	mu      sync.Mutex
}

// Option configures a Provider.
type Option func(*Provider)

// WithMapping overrides the default column mapping.
func WithMapping(m tables.Mapping) Option {
	return func(p *Provider) { p.mapping = m }
}

// Open opens (or creates) the database file at path.
func Open(path string, opts ...Option) (*Provider, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapPersistence("open", path, err)
	}
	p := &Provider{
		db:      db,
		mapping: tables.DefaultMapping(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Close closes the underlying database.
func (p *Provider) Close() error {
	return p.db.Close()
}

// ReadTable returns all rows of the named table. A missing table reads as
// empty; it is created with the mapped header on first write.
func (p *Provider) ReadTable(name string) ([]tables.Row, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	exists, err := p.tableExists(name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	cols := p.mapping.Columns(name)
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid", columnList(cols), quote(name)) //nolint:gosec // identifiers come from the declared mapping
	rows, err := p.db.Query(query)
	if err != nil {
		return nil, errors.WrapPersistence("read", name, err)
	}
	defer func() { _ = rows.Close() }()

	var out []tables.Row
	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		scan := make([]interface{}, len(cols))
		for i := range values {
			scan[i] = &values[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, errors.WrapPersistence("read", name, err)
		}
		row := make(tables.Row, len(cols))
		for i, col := range cols {
			row[col] = values[i].String
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapPersistence("read", name, err)
	}
	return out, nil
}

// WriteTable replaces the named table's contents in one transaction.
func (p *Provider) WriteTable(name string, rows []tables.Row) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cols := p.mapping.Columns(name)
	if cols == nil {
		return errors.NewValidationError("table", name, "unknown table")
	}

	tx, err := p.db.Begin()
	if err != nil {
		return errors.WrapPersistence("write", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := ensureTable(tx, name, cols); err != nil {
		return err
	}
	if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s", quote(name))); err != nil { //nolint:gosec
		return errors.WrapPersistence("write", name, err)
	}

	insert := insertStatement(name, cols)
	for _, row := range rows {
		args := make([]interface{}, len(cols))
		for i, col := range cols {
			args[i] = row[col]
		}
		if _, err := tx.Exec(insert, args...); err != nil {
			return errors.WrapPersistence("write", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapPersistence("write", name, err)
	}
	return nil
}

// AppendRow inserts a single row, creating the table if needed.
func (p *Provider) AppendRow(name string, row tables.Row) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	cols := p.mapping.Columns(name)
	if cols == nil {
		return errors.NewValidationError("table", name, "unknown table")
	}

	tx, err := p.db.Begin()
	if err != nil {
		return errors.WrapPersistence("append", name, err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := ensureTable(tx, name, cols); err != nil {
		return err
	}

	args := make([]interface{}, len(cols))
	for i, col := range cols {
		args[i] = row[col]
	}
	if _, err := tx.Exec(insertStatement(name, cols), args...); err != nil {
		return errors.WrapPersistence("append", name, err)
	}
	return errors.WrapPersistence("append", name, tx.Commit())
}

// tableExists reports whether the named table is present.
func (p *Provider) tableExists(name string) (bool, error) {
	var count int
	err := p.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&count)
	if err != nil {
		return false, errors.WrapPersistence("read", name, err)
	}
	return count > 0, nil
}

// ensureTable creates the table with TEXT columns if it does not exist.
func ensureTable(tx *sql.Tx, name string, cols []string) error {
	defs := make([]string, len(cols))
	for i, col := range cols {
		defs[i] = quote(col) + " TEXT"
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quote(name), strings.Join(defs, ", ")) //nolint:gosec
	if _, err := tx.Exec(stmt); err != nil {
		return errors.WrapPersistence("write", name, err)
	}
	return nil
}

// insertStatement builds the parameterized INSERT for a table.
func insertStatement(name string, cols []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quote(name), columnList(cols), placeholders) //nolint:gosec
}

// columnList joins quoted column identifiers.
func columnList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quote(col)
	}
	return strings.Join(quoted, ", ")
}

// quote escapes an identifier. Headers carry spaces and accents, so every
// identifier is double-quoted.
func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
