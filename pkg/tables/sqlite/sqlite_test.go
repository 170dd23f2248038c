package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inhlab/pointage/pkg/errors"
	"github.com/inhlab/pointage/pkg/tables"
)

func openTest(t *testing.T) *Provider {
	t.Helper()
	p, err := Open(filepath.Join(t.TempDir(), "pointage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestReadMissingTableIsEmpty(t *testing.T) {
	p := openTest(t)

	rows, err := p.ReadTable(tables.TableMovements)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteThenReadRoundtrip(t *testing.T) {
	p := openTest(t)

	in := []tables.Row{
		{
			"N° ordre": "1", "Date": "01/03/2024", "Nom et Prenoms": "DUPONT Jean",
			"Sexe": "M", "Service": "Administration",
			"Heure d'arrivée": "08:00", "Heure de départ": "17:00",
		},
		{
			"N° ordre": "2", "Date": "02/03/2024", "Nom et Prenoms": "KOUASSI Awa",
			"Sexe": "F", "Service": "Prélèvements",
			"Heure d'arrivée": "08:30", "Heure de départ": "",
		},
	}
	require.NoError(t, p.WriteTable(tables.TableMovements, in))

	rows, err := p.ReadTable(tables.TableMovements)
	require.NoError(t, err)
	assert.Equal(t, in, rows, "rows come back in insertion order")
}

func TestWriteReplacesWholeTable(t *testing.T) {
	p := openTest(t)

	require.NoError(t, p.WriteTable(tables.TableServices, []tables.Row{
		{"Service": "Administration"},
		{"Service": "Parc Auto"},
	}))
	require.NoError(t, p.WriteTable(tables.TableServices, []tables.Row{
		{"Service": "Prélèvements"},
	}))

	rows, err := p.ReadTable(tables.TableServices)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Prélèvements", rows[0]["Service"])
}

func TestAppendRowCreatesTable(t *testing.T) {
	p := openTest(t)

	require.NoError(t, p.AppendRow(tables.TableServices, tables.Row{"Service": "Administration"}))
	require.NoError(t, p.AppendRow(tables.TableServices, tables.Row{"Service": "Parc Auto"}))

	rows, err := p.ReadTable(tables.TableServices)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Parc Auto", rows[1]["Service"])
}

func TestUnknownTableRejected(t *testing.T) {
	p := openTest(t)

	err := p.WriteTable("Inconnu", nil)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))

	err = p.AppendRow("Inconnu", tables.Row{})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestMissingColumnsStoreAsEmptyStrings(t *testing.T) {
	p := openTest(t)

	require.NoError(t, p.WriteTable(tables.TablePersonnel, []tables.Row{
		{"Nom et Prénoms": "DUPONT Jean"},
	}))

	rows, err := p.ReadTable(tables.TablePersonnel)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "DUPONT Jean", rows[0]["Nom et Prénoms"])
	assert.Equal(t, "", rows[0]["Sexe"])
}

func TestCustomMapping(t *testing.T) {
	m := tables.DefaultMapping()
	m.Services.Name = "Department"
	p, err := Open(filepath.Join(t.TempDir(), "pointage.db"), WithMapping(m))
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	require.NoError(t, p.WriteTable(tables.TableServices, []tables.Row{{"Department": "Administration"}}))

	rows, err := p.ReadTable(tables.TableServices)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Administration", rows[0]["Department"])
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pointage.db")

	p, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, p.WriteTable(tables.TableServices, []tables.Row{{"Service": "Administration"}}))
	require.NoError(t, p.Close())

	p2, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p2.Close() })

	rows, err := p2.ReadTable(tables.TableServices)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Administration", rows[0]["Service"])
}
