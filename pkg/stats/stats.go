// Package stats computes the read-side aggregates consumed by the
// dashboard: headline counts, per-service rollups, daily series and
// per-employee history. All computations are pure functions over ledger and
// roster snapshots already loaded by the caller; nothing here writes.
//
// Dates are parsed from their stored DD/MM/YYYY form. Rows whose date fails
// to parse are excluded from every date-filtered aggregate but still count
// toward unfiltered totals.
package stats

import (
	"sort"
	"time"

	"github.com/inhlab/pointage/pkg/constants"
	"github.com/inhlab/pointage/pkg/identity"
	"github.com/inhlab/pointage/pkg/ledger"
	"github.com/inhlab/pointage/pkg/roster"
)

// Range is an inclusive [Start, End] date filter. A zero bound is open.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// ParseDate parses a stored DD/MM/YYYY date string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(constants.DateLayout, s)
}

// ParseClock parses a stored clock string into minutes since midnight.
// Legacy 'h' separators are tolerated.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(constants.ClockLayout, ledger.NormalizeClockTime(s))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Summary is the dashboard KPI header.
type Summary struct {
	// RosterTotal is the active roster size, independent of any filter.
	RosterTotal int
	// Movements is the number of ledger rows inside the filter.
	Movements int
	// Today is the number of rows whose raw date string equals today,
	// independent of the filter.
	Today int
	// ActiveServices is the distinct service count inside the filter.
	ActiveServices int
}

// ServiceRollup aggregates one service inside the filter.
type ServiceRollup struct {
	Service   string
	Movements int
	// People is the distinct person count, by raw stored name.
	People int
}

// DailyCount is one point of the entries-per-day series.
type DailyCount struct {
	Date  time.Time
	Count int
}

// TrendKind distinguishes the two time-of-day series of an employee trend.
type TrendKind string

// Trend series kinds.
const (
	TrendArrival   TrendKind = "arrival"
	TrendDeparture TrendKind = "departure"
)

// TrendPoint is one plotted time-of-day value, at minute resolution.
type TrendPoint struct {
	Date    time.Time
	Kind    TrendKind
	Minutes int
}

// EmployeeHistory is the per-employee detail view.
type EmployeeHistory struct {
	// Rows inside the filter matched at the folded tier, sorted by parsed
	// date descending. Rows with unparsable times stay here even when they
	// are dropped from Trend.
	Rows []ledger.MovementEntry
	// Total is len(Rows).
	Total int
	// LastDate and LastArrival are the headline stats from the most recent
	// row, raw as stored.
	LastDate    string
	LastArrival string
	// Trend holds the parsed time-of-day series, date ascending.
	Trend []TrendPoint
	// NameDrift reports that at least one matched row's stored spelling
	// differs from the queried name beyond whitespace. The looser folded
	// match is display-only robustness; the drift itself is a data-quality
	// signal the caller should surface.
	NameDrift bool
}

// Engine computes aggregates over one ledger + roster snapshot.
type Engine struct {
	entries   []ledger.MovementEntry
	employees []roster.Employee
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for the "today" metric.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine over the given snapshots.
func New(entries []ledger.MovementEntry, employees []roster.Employee, opts ...Option) *Engine {
	e := &Engine{
		entries:   entries,
		employees: employees,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Summary computes the KPI header for the given filter.
func (e *Engine) Summary(filter Range) Summary {
	today := e.now().Format(constants.DateLayout)

	s := Summary{RosterTotal: len(e.employees)}
	services := make(map[string]struct{})
	for _, entry := range e.entries {
		if entry.Date == today {
			s.Today++
		}
		t, err := ParseDate(entry.Date)
		if err != nil || !filter.Contains(t) {
			continue
		}
		s.Movements++
		if entry.Service != "" {
			services[entry.Service] = struct{}{}
		}
	}
	s.ActiveServices = len(services)
	return s
}

// ServiceRollups computes per-service movement and distinct-person counts
// inside the filter, ordered by movement count descending then name.
func (e *Engine) ServiceRollups(filter Range) []ServiceRollup {
	counts := make(map[string]int)
	people := make(map[string]map[string]struct{})
	for _, entry := range e.filtered(filter) {
		counts[entry.Service]++
		if people[entry.Service] == nil {
			people[entry.Service] = make(map[string]struct{})
		}
		people[entry.Service][entry.PersonName] = struct{}{}
	}

	rollups := make([]ServiceRollup, 0, len(counts))
	for svc, n := range counts {
		rollups = append(rollups, ServiceRollup{
			Service:   svc,
			Movements: n,
			People:    len(people[svc]),
		})
	}
	sort.Slice(rollups, func(i, j int) bool {
		if rollups[i].Movements != rollups[j].Movements {
			return rollups[i].Movements > rollups[j].Movements
		}
		return rollups[i].Service < rollups[j].Service
	})
	return rollups
}

// DailyCounts computes the entries-per-day series inside the filter, date
// ascending.
func (e *Engine) DailyCounts(filter Range) []DailyCount {
	byDay := make(map[time.Time]int)
	for _, entry := range e.filtered(filter) {
		t, _ := ParseDate(entry.Date)
		byDay[t]++
	}

	series := make([]DailyCount, 0, len(byDay))
	for day, n := range byDay {
		series = append(series, DailyCount{Date: day, Count: n})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series
}

// EmployeeHistory computes the per-employee view for the given filter.
// Matching uses the folded tier, the loosest in the system, accepted here
// because this path never writes.
func (e *Engine) EmployeeHistory(name string, filter Range) EmployeeHistory {
	type dated struct {
		entry ledger.MovementEntry
		date  time.Time
	}

	var h EmployeeHistory
	var rows []dated
	for _, entry := range e.filtered(filter) {
		if !identity.Equal(entry.PersonName, name, identity.Folded) {
			continue
		}
		if !identity.Equal(entry.PersonName, name, identity.Trimmed) {
			h.NameDrift = true
		}
		t, _ := ParseDate(entry.Date)
		rows = append(rows, dated{entry: entry, date: t})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].date.After(rows[j].date) })

	h.Rows = make([]ledger.MovementEntry, len(rows))
	for i, r := range rows {
		h.Rows[i] = r.entry
	}
	h.Total = len(rows)
	if len(rows) > 0 {
		h.LastDate = rows[0].entry.Date
		h.LastArrival = rows[0].entry.ArrivalTime
	}

	// Trend runs date ascending; unparsable clock strings are dropped from
	// the series but stay in Rows.
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		if m, err := ParseClock(r.entry.ArrivalTime); err == nil {
			h.Trend = append(h.Trend, TrendPoint{Date: r.date, Kind: TrendArrival, Minutes: m})
		}
		if r.entry.DepartureTime == "" {
			continue
		}
		if m, err := ParseClock(r.entry.DepartureTime); err == nil {
			h.Trend = append(h.Trend, TrendPoint{Date: r.date, Kind: TrendDeparture, Minutes: m})
		}
	}
	return h
}

// filtered returns the entries whose date parses and falls in the filter.
func (e *Engine) filtered(filter Range) []ledger.MovementEntry {
	var out []ledger.MovementEntry
	for _, entry := range e.entries {
		t, err := ParseDate(entry.Date)
		if err != nil {
			continue
		}
		if filter.Contains(t) {
			out = append(out, entry)
		}
	}
	return out
}
