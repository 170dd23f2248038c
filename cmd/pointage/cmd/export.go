package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"

	"github.com/inhlab/pointage/pkg/errors"
	"github.com/inhlab/pointage/pkg/ledger"
	"github.com/inhlab/pointage/pkg/stats"
	"github.com/inhlab/pointage/pkg/tables"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the filtered ledger to a workbook",
	Long: `Write the movement entries matching the date filter to a standalone
.xlsx workbook, for sharing outside the application.`,
	RunE: runExport,
}

func init() {
	addRangeFlags(exportCmd)
	exportCmd.Flags().StringP("output", "o", "export.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	filter, err := rangeFromFlags(cmd)
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")

	provider, closeProvider, err := openProvider()
	if err != nil {
		return err
	}
	defer func() { _ = closeProvider() }()

	entries, err := ledger.New(provider).LoadLedger()
	if err != nil {
		return err
	}

	var kept []ledger.MovementEntry
	for _, e := range entries {
		t, err := stats.ParseDate(e.Date)
		if err != nil || !filter.Contains(t) {
			continue
		}
		kept = append(kept, e)
	}

	mapping, err := loadedMapping()
	if err != nil {
		return err
	}
	if err := writeExport(output, mapping, kept); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d entrée(s) exportée(s) vers %s\n", len(kept), output)
	return nil
}

// writeExport writes the entries to a fresh workbook with the ledger headers.
func writeExport(path string, mapping tables.Mapping, entries []ledger.MovementEntry) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = tables.TableMovements
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.WrapPersistence("write", sheet, err)
	}
	_ = f.DeleteSheet("Sheet1")

	header := mapping.Columns(sheet)
	hdr := make([]interface{}, len(header))
	for i, col := range header {
		hdr[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return errors.WrapPersistence("write", sheet, err)
	}

	cols := mapping.Movements
	for i, e := range entries {
		row := tables.Row{
			cols.OrderID:   fmt.Sprintf("%d", e.OrderID),
			cols.Date:      e.Date,
			cols.Name:      e.PersonName,
			cols.Sex:       e.Sex,
			cols.Service:   e.Service,
			cols.Arrival:   e.ArrivalTime,
			cols.Departure: e.DepartureTime,
		}
		values := make([]interface{}, len(header))
		for j, col := range header {
			values[j] = row[col]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.WrapPersistence("write", sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return errors.WrapPersistence("write", sheet, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.WrapPersistence("write", sheet, err)
	}
	return nil
}
