// Package tables defines the persistence contract shared by all stores: a
// table is a named sequence of string-keyed rows, read whole and written
// whole. Backends (workbook, embedded SQL, in-memory) are interchangeable
// behind the Provider interface.
//
// Column names are declared once at construction through a Mapping instead
// of being discovered by substring heuristics at runtime. The defaults match
// the historical French headers of the production workbook.
package tables

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/inhlab/pointage/pkg/errors"
)

// Row is a single table row keyed by column name. Values are strings; typing
// is the stores' concern.
type Row map[string]string

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Provider is the persistence collaborator consumed by the stores.
//
// Every method is synchronous and all-or-nothing from the caller's
// perspective: WriteTable either fully replaces the backing collection or
// leaves the prior state intact. There is no locking across processes;
// concurrent writers race with last-writer-wins semantics.
type Provider interface {
	// ReadTable returns all rows of the named table. A missing table is not
	// an error: it returns an empty sequence. The schema is created with the
	// mapped header on first write.
	ReadTable(name string) ([]Row, error)

	// WriteTable replaces the named table's contents with rows.
	WriteTable(name string, rows []Row) error

	// AppendRow adds a single row to the named table. Backends without a
	// cheap append implement it as read+write.
	AppendRow(name string, row Row) error
}

// Table names used by the stores.
const (
	// TableMovements is the attendance ledger.
	TableMovements = "Mouvements"
	// TablePersonnel is the employee roster.
	TablePersonnel = "Personnel"
	// TableServices is the service reference list.
	TableServices = "Services"
)

// MovementColumns declares the ledger column names.
type MovementColumns struct {
	OrderID   string `yaml:"order_id"`
	Date      string `yaml:"date"`
	Name      string `yaml:"name"`
	Sex       string `yaml:"sex"`
	Service   string `yaml:"service"`
	Arrival   string `yaml:"arrival"`
	Departure string `yaml:"departure"`
}

// PersonnelColumns declares the roster column names.
type PersonnelColumns struct {
	OrderID string `yaml:"order_id"`
	Name    string `yaml:"name"`
	Sex     string `yaml:"sex"`
	Service string `yaml:"service"`
}

// ServiceColumns declares the reference list column names.
type ServiceColumns struct {
	Name string `yaml:"name"`
}

// Mapping is the declared column-name mapping supplied once at store
// construction, replacing runtime column sniffing.
type Mapping struct {
	Movements MovementColumns  `yaml:"movements"`
	Personnel PersonnelColumns `yaml:"personnel"`
	Services  ServiceColumns   `yaml:"services"`
}

// DefaultMapping returns the historical workbook headers. Note the ledger
// spells "Nom et Prenoms" without the accent while the roster carries it;
// both spellings are load-bearing in existing data files.
func DefaultMapping() Mapping {
	return Mapping{
		Movements: MovementColumns{
			OrderID:   "N° ordre",
			Date:      "Date",
			Name:      "Nom et Prenoms",
			Sex:       "Sexe",
			Service:   "Service",
			Arrival:   "Heure d'arrivée",
			Departure: "Heure de départ",
		},
		Personnel: PersonnelColumns{
			OrderID: "N° ordre",
			Name:    "Nom et Prénoms",
			Sex:     "Sexe",
			Service: "Service",
		},
		Services: ServiceColumns{
			Name: "Service",
		},
	}
}

// LoadMapping reads a column-mapping override from a YAML file. A missing
// file yields the default mapping; any declared field left empty falls back
// to its default.
func LoadMapping(path string) (Mapping, error) {
	m := DefaultMapping()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return m, errors.WrapPersistence("read", path, err)
	}

	var override Mapping
	if err := yaml.Unmarshal(data, &override); err != nil {
		return m, errors.NewValidationError("mapping", path, err.Error())
	}
	merge(&m, override)
	return m, nil
}

// merge overlays non-empty override fields onto the base mapping.
func merge(base *Mapping, o Mapping) {
	overlay := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	overlay(&base.Movements.OrderID, o.Movements.OrderID)
	overlay(&base.Movements.Date, o.Movements.Date)
	overlay(&base.Movements.Name, o.Movements.Name)
	overlay(&base.Movements.Sex, o.Movements.Sex)
	overlay(&base.Movements.Service, o.Movements.Service)
	overlay(&base.Movements.Arrival, o.Movements.Arrival)
	overlay(&base.Movements.Departure, o.Movements.Departure)
	overlay(&base.Personnel.OrderID, o.Personnel.OrderID)
	overlay(&base.Personnel.Name, o.Personnel.Name)
	overlay(&base.Personnel.Sex, o.Personnel.Sex)
	overlay(&base.Personnel.Service, o.Personnel.Service)
	overlay(&base.Services.Name, o.Services.Name)
}

// Columns returns the ordered header for a table under this mapping.
func (m Mapping) Columns(table string) []string {
	switch table {
	case TableMovements:
		return []string{
			m.Movements.OrderID,
			m.Movements.Date,
			m.Movements.Name,
			m.Movements.Sex,
			m.Movements.Service,
			m.Movements.Arrival,
			m.Movements.Departure,
		}
	case TablePersonnel:
		return []string{
			m.Personnel.OrderID,
			m.Personnel.Name,
			m.Personnel.Sex,
			m.Personnel.Service,
		}
	case TableServices:
		return []string{m.Services.Name}
	default:
		return nil
	}
}

// RequireColumns validates that loaded rows carry the required columns.
// Empty input passes (a missing table reads as empty). A violation is a
// SchemaError so stores fail fast instead of returning partial data.
func RequireColumns(table string, rows []Row, required ...string) error {
	if len(rows) == 0 {
		return nil
	}
	var missing []string
	for _, col := range required {
		if _, ok := rows[0][col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return errors.NewSchemaError(table, missing)
	}
	return nil
}
