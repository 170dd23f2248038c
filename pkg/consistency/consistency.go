// Package consistency propagates roster-level changes into ledger history.
//
// Rename-then-propagate is not atomic: the roster rename commits first and
// this coordinator rewrites history afterwards as a best-effort batch. A
// propagation failure is logged and reported in the status but never fails
// or rolls back the rename that triggered it, leaving an accepted window
// where history references the stale name.
//
// There is deliberately no delete propagation: deleting an employee leaves
// historical entries untouched.
package consistency

import (
	"github.com/rs/zerolog"

	"github.com/inhlab/pointage/pkg/errors"
	"github.com/inhlab/pointage/pkg/ledger"
	"github.com/inhlab/pointage/pkg/logging"
)

// PropagationStatus reports the outcome of one propagation batch. Err is the
// logged-only failure; callers may display it but must not treat it as the
// triggering operation's failure.
type PropagationStatus struct {
	Renamed int
	Err     error
}

// Coordinator reads from the roster side of a rename and writes into the
// ledger. It owns neither store.
type Coordinator struct {
	ledger *ledger.Store
	log    zerolog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger overrides the default logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

// New creates a coordinator writing into the given ledger store.
func New(ledgerStore *ledger.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		ledger: ledgerStore,
		log:    *logging.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnEmployeeRenamed rewrites every ledger entry whose person name equals
// oldName (exact match only) to newName. Entries for other names are
// untouched. Nothing is written when no entry matches.
func (c *Coordinator) OnEmployeeRenamed(oldName, newName string) PropagationStatus {
	entries, err := c.ledger.LoadLedger()
	if err != nil {
		return c.failed(oldName, newName, err)
	}

	renamed := 0
	for i := range entries {
		if entries[i].PersonName == oldName {
			entries[i].PersonName = newName
			renamed++
		}
	}
	if renamed == 0 {
		return PropagationStatus{}
	}

	if err := c.ledger.Rewrite(entries); err != nil {
		return c.failed(oldName, newName, err)
	}

	c.log.Info().
		Str("old_name", oldName).
		Str("new_name", newName).
		Int("entries", renamed).
		Msg("Propagated rename into ledger history")
	return PropagationStatus{Renamed: renamed}
}

// failed logs the propagation failure and wraps it for the status.
func (c *Coordinator) failed(oldName, newName string, err error) PropagationStatus {
	perr := errors.NewPropagationError(oldName, newName, err)
	c.log.Warn().
		Err(err).
		Str("old_name", oldName).
		Str("new_name", newName).
		Msg("Rename propagation failed; ledger history keeps the old name")
	return PropagationStatus{Err: perr}
}
