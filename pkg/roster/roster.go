// Package roster manages the personnel roster and the service reference
// list. It owns the Employee and Service lifecycles: every mutation follows
// read-full, compute, write-full and persists before returning, so the next
// load observes the write. There is no cross-process locking; two concurrent
// writers race with last-writer-wins semantics.
package roster

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/inhlab/pointage/pkg/errors"
	"github.com/inhlab/pointage/pkg/identity"
	"github.com/inhlab/pointage/pkg/logging"
	"github.com/inhlab/pointage/pkg/tables"
)

// Sex is the declared sex of an employee.
type Sex string

// Sex values as stored.
const (
	Male   Sex = "M"
	Female Sex = "F"
)

// Employee is one roster entry. FullName is the identity key, compared
// exactly as stored.
type Employee struct {
	OrderID  int
	FullName string
	Sex      Sex
	Service  string
}

// Outcome is the user-facing result of a mutation. Message is display text
// for the caller; the typed error alongside it carries the taxonomy.
type Outcome struct {
	OK      bool
	Message string

	// RenamedFrom is set when an update changed the employee's name; the
	// caller is expected to run rename propagation over the ledger as a
	// separate, best-effort step.
	RenamedFrom string
}

// DefaultServices is the seeded reference list used when the Services table
// is empty, so the caller always has choices to offer.
var DefaultServices = []string{
	"Prélèvements",
	"Parc Auto",
	"Comptabilité Matière",
	"Hygiène Assainissement",
	"Biologie Moléculaire",
	"Administration",
}

// Store manages the Personnel and Services tables.
type Store struct {
	provider tables.Provider
	mapping  tables.Mapping
	log      zerolog.Logger
	mu       sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithMapping overrides the default column mapping.
func WithMapping(m tables.Mapping) Option {
	return func(s *Store) { s.mapping = m }
}

// WithLogger overrides the default logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New creates a roster store over the given provider.
func New(provider tables.Provider, opts ...Option) *Store {
	s := &Store{
		provider: provider,
		mapping:  tables.DefaultMapping(),
		log:      *logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadRoster reads the full roster. A missing source yields an empty roster,
// never an error; a present table missing required columns is a SchemaError.
func (s *Store) LoadRoster() ([]Employee, error) {
	rows, err := s.provider.ReadTable(tables.TablePersonnel)
	if err != nil {
		return nil, err
	}
	cols := s.mapping.Personnel
	if err := tables.RequireColumns(tables.TablePersonnel, rows, cols.Name, cols.Sex, cols.Service); err != nil {
		return nil, err
	}

	employees := make([]Employee, 0, len(rows))
	for _, row := range rows {
		id, _ := strconv.Atoi(strings.TrimSpace(row[cols.OrderID]))
		employees = append(employees, Employee{
			OrderID:  id,
			FullName: row[cols.Name],
			Sex:      Sex(row[cols.Sex]),
			Service:  row[cols.Service],
		})
	}
	return employees, nil
}

// LoadServices reads the distinct service names. An empty result seeds and
// persists the default list so the reference table is durable.
func (s *Store) LoadServices() ([]string, error) {
	services, err := s.readServices()
	if err != nil {
		return nil, err
	}
	if len(services) > 0 {
		return services, nil
	}

	seeded := make([]string, len(DefaultServices))
	copy(seeded, DefaultServices)
	if err := s.writeServices(seeded); err != nil {
		// Seeding is best-effort: the caller still gets choices.
		s.log.Warn().Err(err).Msg("Could not persist seeded service list")
	}
	return seeded, nil
}

// ServicesInUse returns services referenced by roster rows but absent from
// the reference list, so callers can surface and consolidate the drift.
func (s *Store) ServicesInUse() ([]string, error) {
	employees, err := s.LoadRoster()
	if err != nil {
		return nil, err
	}
	known, err := s.readServices()
	if err != nil {
		return nil, err
	}

	knownSet := make(map[string]struct{}, len(known))
	for _, svc := range known {
		knownSet[svc] = struct{}{}
	}

	seen := make(map[string]struct{})
	var extra []string
	for _, e := range employees {
		svc := strings.TrimSpace(e.Service)
		if svc == "" {
			continue
		}
		if _, ok := knownSet[svc]; ok {
			continue
		}
		if _, ok := seen[svc]; ok {
			continue
		}
		seen[svc] = struct{}{}
		extra = append(extra, svc)
	}
	sort.Strings(extra)
	return extra, nil
}

// AddOrUpdateEmployee inserts or updates a roster entry.
//
// With originalName set this is the rename path: the employee is located by
// originalName at the exact tier only, and all fields including the name are
// overwritten. Otherwise the employee is located by fullName: found means an
// idempotent field update, not found means an append with the next OrderID.
// The write is persisted before returning.
func (s *Store) AddOrUpdateEmployee(fullName string, sex Sex, service, originalName string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return Outcome{Message: "Le nom est obligatoire."},
			errors.NewValidationError("fullName", fullName, "name is required")
	}
	if sex != Male && sex != Female {
		return Outcome{Message: "Sexe invalide."},
			errors.NewValidationError("sex", string(sex), "must be M or F")
	}

	employees, err := s.LoadRoster()
	if err != nil {
		return Outcome{Message: "Erreur de lecture du personnel."}, err
	}

	if originalName != "" {
		return s.renameLocked(employees, originalName, fullName, sex, service)
	}

	names := fullNames(employees)
	if m, ok := identity.Resolve(fullName, names, identity.Exact); ok {
		for i := range employees {
			if employees[i].FullName == m.Candidate {
				employees[i].Sex = sex
				employees[i].Service = service
			}
		}
		if err := s.writeRoster(employees); err != nil {
			return Outcome{Message: "Erreur lors de l'enregistrement."}, err
		}
		return Outcome{OK: true, Message: "Mise à jour effectuée."}, nil
	}

	employees = append(employees, Employee{
		OrderID:  nextOrderID(employees),
		FullName: fullName,
		Sex:      sex,
		Service:  service,
	})
	if err := s.writeRoster(employees); err != nil {
		return Outcome{Message: "Erreur lors de l'enregistrement."}, err
	}
	return Outcome{OK: true, Message: "Employé ajouté avec succès."}, nil
}

// renameLocked overwrites all fields of the employee identified by
// originalName. Exact tier only: a rename must never latch onto a
// near-duplicate identity.
func (s *Store) renameLocked(employees []Employee, originalName, fullName string, sex Sex, service string) (Outcome, error) {
	m, ok := identity.Resolve(originalName, fullNames(employees), identity.Exact)
	if !ok {
		return Outcome{Message: "Employé non trouvé."},
			errors.NewNotFoundError("employee", originalName)
	}

	for i := range employees {
		if employees[i].FullName == m.Candidate {
			employees[i].FullName = fullName
			employees[i].Sex = sex
			employees[i].Service = service
		}
	}
	if err := s.writeRoster(employees); err != nil {
		return Outcome{Message: "Erreur lors de l'enregistrement."}, err
	}

	out := Outcome{OK: true, Message: "Mise à jour effectuée."}
	if originalName != fullName {
		out.RenamedFrom = originalName
		s.log.Info().
			Str("old_name", originalName).
			Str("new_name", fullName).
			Msg("Employee renamed; ledger propagation pending")
	}
	return out, nil
}

// DeleteEmployee removes the exactly-named employee. Ledger history is left
// untouched: history is immutable once the person leaves the active roster.
func (s *Store) DeleteEmployee(fullName string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	employees, err := s.LoadRoster()
	if err != nil {
		return Outcome{Message: "Erreur de lecture du personnel."}, err
	}

	kept := employees[:0:0]
	for _, e := range employees {
		if e.FullName != fullName {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(employees) {
		return Outcome{Message: "Employé non trouvé."},
			errors.NewNotFoundError("employee", fullName)
	}

	if err := s.writeRoster(kept); err != nil {
		return Outcome{Message: "Erreur lors de la suppression."}, err
	}
	return Outcome{OK: true, Message: "Employé supprimé avec succès."}, nil
}

// AddService appends a service name to the reference list. Duplicate check
// is case-sensitive equality.
func (s *Store) AddService(name string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return Outcome{Message: "Nom du service requis."},
			errors.NewValidationError("service", name, "name is required")
	}

	services, err := s.readServices()
	if err != nil {
		return Outcome{Message: "Erreur de lecture des services."}, err
	}
	for _, svc := range services {
		if svc == name {
			return Outcome{Message: "Ce service existe déjà."},
				errors.NewAlreadyExistsError("service", name)
		}
	}

	if err := s.provider.AppendRow(tables.TableServices, tables.Row{s.mapping.Services.Name: name}); err != nil {
		return Outcome{Message: "Erreur lors de l'enregistrement."}, err
	}
	return Outcome{OK: true, Message: "Service ajouté avec succès."}, nil
}

// readServices reads the reference list without seeding, deduplicated and
// stripped of blanks.
func (s *Store) readServices() ([]string, error) {
	rows, err := s.provider.ReadTable(tables.TableServices)
	if err != nil {
		return nil, err
	}

	col := s.mapping.Services.Name
	seen := make(map[string]struct{})
	var services []string
	for _, row := range rows {
		name := strings.TrimSpace(row[col])
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		services = append(services, name)
	}
	return services, nil
}

// writeServices replaces the reference list.
func (s *Store) writeServices(services []string) error {
	col := s.mapping.Services.Name
	rows := make([]tables.Row, len(services))
	for i, svc := range services {
		rows[i] = tables.Row{col: svc}
	}
	return s.provider.WriteTable(tables.TableServices, rows)
}

// writeRoster replaces the Personnel table.
func (s *Store) writeRoster(employees []Employee) error {
	cols := s.mapping.Personnel
	rows := make([]tables.Row, len(employees))
	for i, e := range employees {
		rows[i] = tables.Row{
			cols.OrderID: strconv.Itoa(e.OrderID),
			cols.Name:    e.FullName,
			cols.Sex:     string(e.Sex),
			cols.Service: e.Service,
		}
	}
	return s.provider.WriteTable(tables.TablePersonnel, rows)
}

// fullNames extracts the identity keys of a roster snapshot.
func fullNames(employees []Employee) []string {
	names := make([]string, len(employees))
	for i, e := range employees {
		names[i] = e.FullName
	}
	return names
}

// nextOrderID returns max(existing)+1, or 1 for an empty roster.
func nextOrderID(employees []Employee) int {
	max := 0
	for _, e := range employees {
		if e.OrderID > max {
			max = e.OrderID
		}
	}
	return max + 1
}
