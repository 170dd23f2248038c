// Package ledger manages the movements ledger: daily attendance entries
// keyed by (person name, date). It owns the MovementEntry lifecycle.
//
// The identity key for writes uses the exact and trimmed matching tiers
// only. Case-folded matching is deliberately excluded here, unlike roster
// lookups: folding two differently-cased ledger names together on a write
// would merge distinct identities in history.
package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/inhlab/pointage/pkg/errors"
	"github.com/inhlab/pointage/pkg/identity"
	"github.com/inhlab/pointage/pkg/logging"
	"github.com/inhlab/pointage/pkg/tables"
)

// MovementEntry is one attendance row. Date is stored as DD/MM/YYYY and
// compared as a raw string. Sex and Service are denormalized copies of the
// roster attributes at entry time; they are not kept in sync except through
// explicit rename propagation. An empty DepartureTime means the person has
// not departed yet.
type MovementEntry struct {
	OrderID       int
	Date          string
	PersonName    string
	Sex           string
	Service       string
	ArrivalTime   string
	DepartureTime string
}

// UpsertRequest carries the desired state of one attendance entry.
type UpsertRequest struct {
	Date          string
	PersonName    string
	Sex           string
	Service       string
	ArrivalTime   string
	DepartureTime string
}

// UpsertResult reports what an upsert did.
type UpsertResult struct {
	OrderID int
	Updated bool
	Message string
}

// Store manages the Mouvements table.
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

// New creates a ledger store over the given provider.
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

// LoadLedger reads all movement entries. A missing table yields an empty
// ledger; a present table missing required columns is a SchemaError.
func (s *Store) LoadLedger() ([]MovementEntry, error) {
	rows, err := s.provider.ReadTable(tables.TableMovements)
	if err != nil {
		return nil, err
	}
	cols := s.mapping.Movements
	if err := tables.RequireColumns(tables.TableMovements, rows,
		cols.Date, cols.Name, cols.Arrival); err != nil {
		return nil, err
	}

	entries := make([]MovementEntry, 0, len(rows))
	for _, row := range rows {
		id, _ := strconv.Atoi(strings.TrimSpace(row[cols.OrderID]))
		entries = append(entries, MovementEntry{
			OrderID:       id,
			Date:          row[cols.Date],
			PersonName:    row[cols.Name],
			Sex:           row[cols.Sex],
			Service:       row[cols.Service],
			ArrivalTime:   row[cols.Arrival],
			DepartureTime: row[cols.Departure],
		})
	}
	return entries, nil
}

// FindEntry locates the entry for (personName, date). Names match at the
// exact or trimmed tier; dates match as raw strings.
func (s *Store) FindEntry(personName, date string) (*MovementEntry, bool, error) {
	entries, err := s.LoadLedger()
	if err != nil {
		return nil, false, err
	}
	if i := findIndex(entries, personName, date); i >= 0 {
		entry := entries[i]
		return &entry, true, nil
	}
	return nil, false, nil
}

// GetEntryForDate is the read used by callers to decide insert-vs-update
// mode before a submission. Same contract as FindEntry.
func (s *Store) GetEntryForDate(personName, date string) (*MovementEntry, bool, error) {
	return s.FindEntry(personName, date)
}

// Upsert inserts or updates the entry for (req.PersonName, req.Date).
//
// Update overwrites sex, service and arrival unconditionally; departure is
// overwritten only when the supplied value is non-empty, so an empty
// departure never erases a recorded one. Insert assigns the next sequential
// OrderID (non-numeric stored IDs are ignored) and prepends the row so the
// storage order stays most-recent-first.
func (s *Store) Upsert(req UpsertRequest) (UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(req.PersonName) == "" {
		return UpsertResult{}, errors.NewValidationError("personName", req.PersonName, "name is required")
	}
	if strings.TrimSpace(req.Date) == "" {
		return UpsertResult{}, errors.NewValidationError("date", req.Date, "date is required")
	}

	arrival := NormalizeClockTime(req.ArrivalTime)
	if err := ValidateClockTime(arrival); err != nil {
		return UpsertResult{}, err
	}
	departure := NormalizeClockTime(req.DepartureTime)
	if departure != "" {
		if err := ValidateClockTime(departure); err != nil {
			return UpsertResult{}, err
		}
	}

	entries, err := s.LoadLedger()
	if err != nil {
		return UpsertResult{}, err
	}

	if i := findIndex(entries, req.PersonName, req.Date); i >= 0 {
		entries[i].Sex = req.Sex
		entries[i].Service = req.Service
		entries[i].ArrivalTime = arrival
		if departure != "" {
			entries[i].DepartureTime = departure
		}
		if err := s.writeLocked(entries); err != nil {
			return UpsertResult{}, err
		}
		return UpsertResult{
			OrderID: entries[i].OrderID,
			Updated: true,
			Message: fmt.Sprintf("Mise à jour effectuée pour %s (Date: %s)", req.PersonName, req.Date),
		}, nil
	}

	entry := MovementEntry{
		OrderID:       nextOrderID(entries),
		Date:          req.Date,
		PersonName:    req.PersonName,
		Sex:           req.Sex,
		Service:       req.Service,
		ArrivalTime:   arrival,
		DepartureTime: departure,
	}
	entries = append([]MovementEntry{entry}, entries...)
	if err := s.writeLocked(entries); err != nil {
		return UpsertResult{}, err
	}
	return UpsertResult{
		OrderID: entry.OrderID,
		Message: fmt.Sprintf("Entrée ajoutée avec succès ! (ID: %d)", entry.OrderID),
	}, nil
}

// Rewrite replaces the full ledger. Used by the consistency coordinator for
// rename propagation; the backing write is all-or-nothing.
func (s *Store) Rewrite(entries []MovementEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(entries)
}

// writeLocked serializes entries and replaces the Mouvements table. The
// caller holds s.mu.
func (s *Store) writeLocked(entries []MovementEntry) error {
	cols := s.mapping.Movements
	rows := make([]tables.Row, len(entries))
	for i, e := range entries {
		rows[i] = tables.Row{
			cols.OrderID:   strconv.Itoa(e.OrderID),
			cols.Date:      e.Date,
			cols.Name:      e.PersonName,
			cols.Sex:       e.Sex,
			cols.Service:   e.Service,
			cols.Arrival:   e.ArrivalTime,
			cols.Departure: e.DepartureTime,
		}
	}
	return s.provider.WriteTable(tables.TableMovements, rows)
}

// findIndex returns the index of the entry matching (personName, date), or
// -1. Exact tier first over the whole ledger, then trimmed.
func findIndex(entries []MovementEntry, personName, date string) int {
	for _, tier := range []identity.Tier{identity.Exact, identity.Trimmed} {
		for i, e := range entries {
			if e.Date != date {
				continue
			}
			if identity.Equal(e.PersonName, personName, tier) {
				return i
			}
		}
	}
	return -1
}

// nextOrderID returns max(numeric OrderIDs)+1, or 1 for an empty ledger.
// Entries whose stored ID failed to parse load as zero and are ignored.
func nextOrderID(entries []MovementEntry) int {
	max := 0
	for _, e := range entries {
		if e.OrderID > max {
			max = e.OrderID
		}
	}
	return max + 1
}
