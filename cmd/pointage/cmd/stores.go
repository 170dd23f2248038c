package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/inhlab/pointage/internal/config"
	"github.com/inhlab/pointage/pkg/constants"
	"github.com/inhlab/pointage/pkg/errors"
	"github.com/inhlab/pointage/pkg/stats"
	"github.com/inhlab/pointage/pkg/tables"
	"github.com/inhlab/pointage/pkg/tables/sqlite"
	"github.com/inhlab/pointage/pkg/tables/xlsx"
)

// openProvider builds the configured table provider. The returned closer is a
// no-op for backends without open resources.
func openProvider() (tables.Provider, func() error, error) {
	mapping, err := tables.LoadMapping(config.MappingPath())
	if err != nil {
		return nil, nil, err
	}

	switch config.Backend() {
	case config.BackendSQLite:
		p, err := sqlite.Open(config.DatabasePath(), sqlite.WithMapping(mapping))
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case config.BackendXLSX:
		p := xlsx.New(config.WorkbookPath(), xlsx.WithMapping(mapping))
		return p, func() error { return nil }, nil
	default:
		return nil, nil, errors.NewValidationError("backend", config.Backend(), "must be xlsx or sqlite")
	}
}

// loadedMapping returns the effective column mapping, for commands that write
// workbooks themselves.
func loadedMapping() (tables.Mapping, error) {
	return tables.LoadMapping(config.MappingPath())
}

// addRangeFlags registers the shared --from/--to date filter flags.
func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "start date (DD/MM/YYYY, inclusive)")
	cmd.Flags().String("to", "", "end date (DD/MM/YYYY, inclusive)")
}

// rangeFromFlags parses --from/--to into a stats.Range.
func rangeFromFlags(cmd *cobra.Command) (stats.Range, error) {
	var r stats.Range

	from, _ := cmd.Flags().GetString("from")
	if from != "" {
		t, err := time.Parse(constants.DateLayout, from)
		if err != nil {
			return r, errors.NewValidationError("from", from, "expected DD/MM/YYYY")
		}
		r.Start = t
	}

	to, _ := cmd.Flags().GetString("to")
	if to != "" {
		t, err := time.Parse(constants.DateLayout, to)
		if err != nil {
			return r, errors.NewValidationError("to", to, "expected DD/MM/YYYY")
		}
		r.End = t
	}
	return r, nil
}
