package consistency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inhlab/pointage/pkg/errors"
	"github.com/inhlab/pointage/pkg/ledger"
	"github.com/inhlab/pointage/pkg/logging"
	"github.com/inhlab/pointage/pkg/tables"
	"github.com/inhlab/pointage/pkg/tables/memory"
)

func seedLedger(t *testing.T, provider tables.Provider) *ledger.Store {
	t.Helper()
	s := ledger.New(provider, ledger.WithLogger(logging.Nop))
	for _, e := range []struct{ date, name string }{
		{"01/03/2024", "DUPONT Jean"},
		{"02/03/2024", "DUPONT Jean"},
		{"02/03/2024", "KOUASSI Awa"},
		{"03/03/2024", " DUPONT Jean "}, // padded variant: must NOT be propagated
	} {
		_, err := s.Upsert(ledger.UpsertRequest{
			Date:        e.date,
			PersonName:  e.name,
			Sex:         "M",
			Service:     "Administration",
			ArrivalTime: "08:00",
		})
		require.NoError(t, err)
	}
	return s
}

func TestOnEmployeeRenamedPropagatesExactMatchesOnly(t *testing.T) {
	ledgerStore := seedLedger(t, memory.New())
	c := New(ledgerStore, WithLogger(logging.Nop))

	status := c.OnEmployeeRenamed("DUPONT Jean", "DUPONT Jean-Paul")
	require.NoError(t, status.Err)
	assert.Equal(t, 2, status.Renamed)

	entries, err := ledgerStore.LoadLedger()
	require.NoError(t, err)

	var renamed, stale, other int
	for _, e := range entries {
		switch e.PersonName {
		case "DUPONT Jean-Paul":
			renamed++
		case " DUPONT Jean ":
			stale++
		case "KOUASSI Awa":
			other++
		}
	}
	assert.Equal(t, 2, renamed)
	assert.Equal(t, 1, stale, "propagation is exact-match only; padded spellings stay")
	assert.Equal(t, 1, other, "entries for other names are untouched")
}

func TestOnEmployeeRenamedNoMatchesWritesNothing(t *testing.T) {
	provider := memory.New()
	ledgerStore := seedLedger(t, provider)
	c := New(ledgerStore, WithLogger(logging.Nop))

	before, err := provider.ReadTable(tables.TableMovements)
	require.NoError(t, err)

	status := c.OnEmployeeRenamed("ABSENT Personne", "AUTRE Nom")
	require.NoError(t, status.Err)
	assert.Zero(t, status.Renamed)

	after, err := provider.ReadTable(tables.TableMovements)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// failingProvider delegates reads and fails all writes.
type failingProvider struct {
	tables.Provider
}

func (f *failingProvider) WriteTable(string, []tables.Row) error {
	return errors.NewPersistenceError("write", tables.TableMovements, errors.New("disk full"))
}

func TestOnEmployeeRenamedFailureIsReportedNotThrown(t *testing.T) {
	inner := memory.New()
	seedLedger(t, inner)
	failing := &failingProvider{Provider: inner}
	ledgerStore := ledger.New(failing, ledger.WithLogger(logging.Nop))
	c := New(ledgerStore, WithLogger(logging.Nop))

	status := c.OnEmployeeRenamed("DUPONT Jean", "DUPONT Jean-Paul")
	require.Error(t, status.Err)
	assert.Zero(t, status.Renamed)
	assert.ErrorIs(t, status.Err, errors.ErrPersistence, "the persistence cause stays reachable")

	// History keeps the old name.
	entries, err := ledger.New(inner, ledger.WithLogger(logging.Nop)).LoadLedger()
	require.NoError(t, err)
	var old int
	for _, e := range entries {
		if e.PersonName == "DUPONT Jean" {
			old++
		}
	}
	assert.Equal(t, 2, old)
}
