package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inhlab/pointage/pkg/tables"
)

func TestReadMissingTableIsEmpty(t *testing.T) {
	p := New()

	rows, err := p.ReadTable(tables.TableMovements)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWriteThenRead(t *testing.T) {
	p := New()

	in := []tables.Row{
		{"Service": "Administration"},
		{"Service": "Prélèvements"},
	}
	require.NoError(t, p.WriteTable(tables.TableServices, in))

	rows, err := p.ReadTable(tables.TableServices)
	require.NoError(t, err)
	assert.Equal(t, in, rows)
}

func TestWriteReplacesWhole(t *testing.T) {
	p := New()

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

func TestAppendRow(t *testing.T) {
	p := New()

	require.NoError(t, p.AppendRow(tables.TableServices, tables.Row{"Service": "Administration"}))
	require.NoError(t, p.AppendRow(tables.TableServices, tables.Row{"Service": "Parc Auto"}))

	rows, err := p.ReadTable(tables.TableServices)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Parc Auto", rows[1]["Service"])
}

func TestStoredRowsDoNotAliasCallerState(t *testing.T) {
	p := New()

	in := tables.Row{"Service": "Administration"}
	require.NoError(t, p.AppendRow(tables.TableServices, in))
	in["Service"] = "modifié"

	rows, err := p.ReadTable(tables.TableServices)
	require.NoError(t, err)
	assert.Equal(t, "Administration", rows[0]["Service"])

	// Mutating read results must not leak back either.
	rows[0]["Service"] = "encore modifié"
	again, err := p.ReadTable(tables.TableServices)
	require.NoError(t, err)
	assert.Equal(t, "Administration", again[0]["Service"])
}
