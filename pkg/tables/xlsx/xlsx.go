// Package xlsx provides a workbook-backed table provider using excelize.
// Each table maps to one sheet of a single .xlsx workbook, with the first
// row as the header. This is the primary backend: the production data has
// always lived in a workbook that administrators also open by hand.
//
// Every write optionally mirrors the table to a JSON file next to the
// workbook, matching the snapshot backup the legacy tooling produced. A
// mirror failure is logged and never fails the write.
package xlsx

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/inhlab/pointage/pkg/constants"
	"github.com/inhlab/pointage/pkg/errors"
	"github.com/inhlab/pointage/pkg/logging"
	"github.com/inhlab/pointage/pkg/tables"
)

// scratchSheet keeps the workbook's sheet count above one while a target
// sheet is dropped and rebuilt; DeleteSheet refuses to remove the last sheet.
const scratchSheet = "_scratch"

// Provider is a workbook-backed implementation of tables.Provider.
type Provider struct {
	path    string
	mapping tables.Mapping
	mirror  bool
	mu      sync.Mutex
}

// Option configures a Provider.
type Option func(*Provider)

// WithMapping overrides the default column mapping.
func WithMapping(m tables.Mapping) Option {
	return func(p *Provider) { p.mapping = m }
}

// WithJSONMirror toggles the JSON snapshot written next to the workbook on
// every table write.
func WithJSONMirror(enabled bool) Option {
	return func(p *Provider) { p.mirror = enabled }
}

// New creates a workbook provider for the given .xlsx path. The workbook is
// created lazily on first write.
func New(path string, opts ...Option) *Provider {
	p := &Provider{
		path:    path,
		mapping: tables.DefaultMapping(),
		mirror:  true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ReadTable returns all rows of the named sheet. A missing workbook or sheet
// reads as empty.
func (p *Provider) ReadTable(name string) ([]tables.Row, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := os.Stat(p.path); os.IsNotExist(err) {
		return nil, nil
	}

	f, err := excelize.OpenFile(p.path)
	if err != nil {
		return nil, errors.WrapPersistence("open", name, err)
	}
	defer func() { _ = f.Close() }()

	idx, err := f.GetSheetIndex(name)
	if err != nil || idx == -1 {
		return nil, nil
	}

	raw, err := f.GetRows(name)
	if err != nil {
		return nil, errors.WrapPersistence("read", name, err)
	}
	if len(raw) < 2 {
		return nil, nil // header only, or empty sheet
	}

	header := raw[0]
	rows := make([]tables.Row, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		row := make(tables.Row, len(header))
		for j, col := range header {
			if j < len(cells) {
				row[col] = cells[j]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// WriteTable replaces the named sheet's contents. The workbook is written to
// a temporary file and renamed into place so a failed save leaves the prior
// state intact.
func (p *Provider) WriteTable(name string, rows []tables.Row) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, created, err := p.openOrCreate()
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	// The target sheet is dropped and recreated rather than overwritten:
	// writing into the existing sheet would leave stale trailing rows after
	// a shrinking write. The scratch sheet is needed because DeleteSheet is
	// a no-op when the target is the workbook's only sheet.
	if idx, err := f.GetSheetIndex(name); err == nil && idx != -1 {
		if _, err := f.NewSheet(scratchSheet); err != nil {
			return errors.WrapPersistence("write", name, err)
		}
		if err := f.DeleteSheet(name); err != nil {
			return errors.WrapPersistence("write", name, err)
		}
	}
	if _, err := f.NewSheet(name); err != nil {
		return errors.WrapPersistence("write", name, err)
	}
	_ = f.DeleteSheet(scratchSheet)

	header := p.mapping.Columns(name)
	if err := p.writeSheet(f, name, header, rows); err != nil {
		return err
	}

	// A fresh workbook carries a default sheet that is not one of ours.
	if created {
		_ = f.DeleteSheet("Sheet1")
	}

	if err := p.saveAtomic(f, name); err != nil {
		return err
	}

	if p.mirror {
		p.mirrorJSON(name, rows)
	}
	return nil
}

// AppendRow adds a single row. Workbooks have no cheap append, so this is
// read+write.
func (p *Provider) AppendRow(name string, row tables.Row) error {
	rows, err := p.ReadTable(name)
	if err != nil {
		return err
	}
	return p.WriteTable(name, append(rows, row))
}

// openOrCreate opens the workbook, creating an in-memory one when the file
// does not exist yet. The second return reports creation.
func (p *Provider) openOrCreate() (*excelize.File, bool, error) {
	if _, err := os.Stat(p.path); os.IsNotExist(err) {
		return excelize.NewFile(), true, nil
	}
	f, err := excelize.OpenFile(p.path)
	if err != nil {
		return nil, false, errors.WrapPersistence("open", p.path, err)
	}
	return f, false, nil
}

// writeSheet writes the header and rows to the named sheet.
func (p *Provider) writeSheet(f *excelize.File, name string, header []string, rows []tables.Row) error {
	hdr := make([]interface{}, len(header))
	for i, col := range header {
		hdr[i] = col
	}
	if err := f.SetSheetRow(name, "A1", &hdr); err != nil {
		return errors.WrapPersistence("write", name, err)
	}

	for i, row := range rows {
		values := make([]interface{}, len(header))
		for j, col := range header {
			values[j] = row[col]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.WrapPersistence("write", name, err)
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return errors.WrapPersistence("write", name, err)
		}
	}
	return nil
}

// saveAtomic saves the workbook through a temp file and rename.
func (p *Provider) saveAtomic(f *excelize.File, table string) error {
	if err := os.MkdirAll(filepath.Dir(p.path), constants.DirPermissions); err != nil {
		return errors.WrapPersistence("write", table, err)
	}
	// SaveAs infers the workbook format from the extension, so the temp
	// name must keep .xlsx.
	tmp := p.path + ".tmp.xlsx"
	if err := f.SaveAs(tmp); err != nil {
		return errors.WrapPersistence("write", table, err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		_ = os.Remove(tmp)
		return errors.WrapPersistence("write", table, err)
	}
	return nil
}

// mirrorJSON writes the table rows as a JSON snapshot next to the workbook.
func (p *Provider) mirrorJSON(name string, rows []tables.Row) {
	base := strings.TrimSuffix(p.path, filepath.Ext(p.path))
	mirrorPath := base + "_" + name + ".json"

	data, err := json.MarshalIndent(rows, "", "    ")
	if err == nil {
		err = os.WriteFile(mirrorPath, data, constants.FilePermissions)
	}
	if err != nil {
		logging.Warn().
			Err(err).
			Str("table", name).
			Str("path", mirrorPath).
			Msg("Could not save JSON backup")
	}
}
