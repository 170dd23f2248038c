package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inhlab/pointage/pkg/ledger"
	"github.com/inhlab/pointage/pkg/roster"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func fixedClock(s string) func() time.Time {
	return func() time.Time {
		t, _ := time.Parse("02/01/2006", s)
		return t
	}
}

func testEntries() []ledger.MovementEntry {
	return []ledger.MovementEntry{
		{OrderID: 1, Date: "01/03/2024", PersonName: "DUPONT Jean", Sex: "M", Service: "Administration", ArrivalTime: "08:00", DepartureTime: "17:00"},
		{OrderID: 2, Date: "15/03/2024", PersonName: "DUPONT Jean", Sex: "M", Service: "Administration", ArrivalTime: "08:30", DepartureTime: ""},
		{OrderID: 3, Date: "02/04/2024", PersonName: "KOUASSI Awa", Sex: "F", Service: "Prélèvements", ArrivalTime: "07:45", DepartureTime: "16:30"},
		{OrderID: 4, Date: "pas une date", PersonName: "KOUASSI Awa", Sex: "F", Service: "Prélèvements", ArrivalTime: "08:10", DepartureTime: ""},
	}
}

func testRoster() []roster.Employee {
	return []roster.Employee{
		{OrderID: 1, FullName: "DUPONT Jean", Sex: roster.Male, Service: "Administration"},
		{OrderID: 2, FullName: "KOUASSI Awa", Sex: roster.Female, Service: "Prélèvements"},
		{OrderID: 3, FullName: "N'GUESSAN Marc", Sex: roster.Male, Service: "Parc Auto"},
	}
}

func marchRange(t *testing.T) Range {
	return Range{Start: date(t, "01/03/2024"), End: date(t, "31/03/2024")}
}

func TestSummaryDateRangeFilter(t *testing.T) {
	e := New(testEntries(), testRoster(), WithClock(fixedClock("02/04/2024")))

	s := e.Summary(marchRange(t))
	assert.Equal(t, 3, s.RosterTotal, "roster total ignores the filter")
	assert.Equal(t, 2, s.Movements, "April entry and unparsable date are excluded")
	assert.Equal(t, 1, s.ActiveServices)
	assert.Equal(t, 1, s.Today, "today count ignores the filter and uses raw string equality")
}

func TestSummaryUnparsableDatesExcludedFromFilteredCounts(t *testing.T) {
	e := New(testEntries(), testRoster(), WithClock(fixedClock("01/01/2020")))

	s := e.Summary(Range{})
	assert.Equal(t, 3, s.Movements, "open range still requires a parsable date")
	assert.Zero(t, s.Today)
}

func TestServiceRollups(t *testing.T) {
	entries := append(testEntries(), ledger.MovementEntry{
		OrderID: 5, Date: "20/03/2024", PersonName: "N'GUESSAN Marc", Sex: "M", Service: "Administration", ArrivalTime: "09:00",
	})
	e := New(entries, testRoster())

	rollups := e.ServiceRollups(marchRange(t))
	require.Len(t, rollups, 1)
	assert.Equal(t, "Administration", rollups[0].Service)
	assert.Equal(t, 3, rollups[0].Movements)
	assert.Equal(t, 2, rollups[0].People, "distinct person count")
}

func TestDailyCounts(t *testing.T) {
	entries := append(testEntries(), ledger.MovementEntry{
		OrderID: 5, Date: "01/03/2024", PersonName: "KOUASSI Awa", Sex: "F", Service: "Prélèvements", ArrivalTime: "07:50",
	})
	e := New(entries, testRoster())

	series := e.DailyCounts(marchRange(t))
	require.Len(t, series, 2)
	assert.Equal(t, date(t, "01/03/2024"), series[0].Date)
	assert.Equal(t, 2, series[0].Count)
	assert.Equal(t, date(t, "15/03/2024"), series[1].Date)
	assert.Equal(t, 1, series[1].Count)
}

func TestEmployeeHistoryFoldedMatchAndOrdering(t *testing.T) {
	e := New(testEntries(), testRoster())

	// Folded-tier match: query differs by case from the stored spelling.
	h := e.EmployeeHistory("dupont jean", marchRange(t))
	require.Equal(t, 2, h.Total)
	assert.True(t, h.NameDrift, "case drift between query and stored spelling must be surfaced")
	assert.Equal(t, "15/03/2024", h.LastDate, "rows sort by parsed date descending")
	assert.Equal(t, "08:30", h.LastArrival)
	assert.Equal(t, "01/03/2024", h.Rows[1].Date)
}

func TestEmployeeHistoryNoDriftOnExactSpelling(t *testing.T) {
	e := New(testEntries(), testRoster())

	h := e.EmployeeHistory("DUPONT Jean", marchRange(t))
	assert.Equal(t, 2, h.Total)
	assert.False(t, h.NameDrift)
}

func TestEmployeeHistoryTrendDropsUnparsableTimes(t *testing.T) {
	entries := []ledger.MovementEntry{
		{OrderID: 1, Date: "01/03/2024", PersonName: "DUPONT Jean", ArrivalTime: "08h05", DepartureTime: "17:00"},
		{OrderID: 2, Date: "02/03/2024", PersonName: "DUPONT Jean", ArrivalTime: "bientôt", DepartureTime: ""},
	}
	e := New(entries, nil)

	h := e.EmployeeHistory("DUPONT Jean", Range{})
	require.Equal(t, 2, h.Total, "rows with unparsable times stay in the tabular history")

	// Trend keeps only parsable values: one arrival and one departure from
	// the first row, nothing from the second.
	require.Len(t, h.Trend, 2)
	assert.Equal(t, TrendArrival, h.Trend[0].Kind)
	assert.Equal(t, 8*60+5, h.Trend[0].Minutes, "legacy 'h' separator still parses")
	assert.Equal(t, TrendDeparture, h.Trend[1].Kind)
	assert.Equal(t, 17*60, h.Trend[1].Minutes)
}

func TestEmployeeHistoryTrendAscendsByDate(t *testing.T) {
	entries := []ledger.MovementEntry{
		{OrderID: 1, Date: "15/03/2024", PersonName: "DUPONT Jean", ArrivalTime: "09:00"},
		{OrderID: 2, Date: "01/03/2024", PersonName: "DUPONT Jean", ArrivalTime: "08:00"},
	}
	e := New(entries, nil)

	h := e.EmployeeHistory("DUPONT Jean", Range{})
	require.Len(t, h.Trend, 2)
	assert.True(t, h.Trend[0].Date.Before(h.Trend[1].Date))
	assert.Equal(t, 8*60, h.Trend[0].Minutes)
}

func TestRangeContains(t *testing.T) {
	r := marchRange(t)
	assert.True(t, r.Contains(date(t, "01/03/2024")), "range is inclusive of its start")
	assert.True(t, r.Contains(date(t, "31/03/2024")), "range is inclusive of its end")
	assert.False(t, r.Contains(date(t, "02/04/2024")))

	open := Range{}
	assert.True(t, open.Contains(date(t, "01/01/1990")))
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"08:30", 510, false},
		{"8:30", 510, false},
		{"17h45", 1065, false},
		{"00:00", 0, false},
		{"", 0, true},
		{"25:00", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
