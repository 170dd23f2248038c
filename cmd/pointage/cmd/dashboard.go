package cmd

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/inhlab/pointage/pkg/constants"
	"github.com/inhlab/pointage/pkg/ledger"
	"github.com/inhlab/pointage/pkg/roster"
	"github.com/inhlab/pointage/pkg/stats"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show attendance statistics",
	Long: `Print the dashboard aggregates: headline counts, per-service
rollups and the entries-per-day series, optionally filtered by a date range.
With --employee, print that person's history and arrival trend instead.`,
	RunE: runDashboard,
}

func init() {
	addRangeFlags(dashboardCmd)
	dashboardCmd.Flags().String("employee", "", "show one employee's history")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	filter, err := rangeFromFlags(cmd)
	if err != nil {
		return err
	}

	provider, closeProvider, err := openProvider()
	if err != nil {
		return err
	}
	defer func() { _ = closeProvider() }()

	entries, err := ledger.New(provider).LoadLedger()
	if err != nil {
		return err
	}
	employees, err := roster.New(provider).LoadRoster()
	if err != nil {
		return err
	}
	engine := stats.New(entries, employees)

	if name, _ := cmd.Flags().GetString("employee"); name != "" {
		return printHistory(cmd, engine.EmployeeHistory(name, filter), name)
	}
	return printDashboard(cmd, engine, filter)
}

func printDashboard(cmd *cobra.Command, engine *stats.Engine, filter stats.Range) error {
	out := cmd.OutOrStdout()

	s := engine.Summary(filter)
	fmt.Fprintf(out, "Personnel actif : %d\n", s.RosterTotal)
	fmt.Fprintf(out, "Mouvements : %d\n", s.Movements)
	fmt.Fprintf(out, "Aujourd'hui : %d\n", s.Today)
	fmt.Fprintf(out, "Services actifs : %d\n", s.ActiveServices)

	rollups := engine.ServiceRollups(filter)
	if len(rollups) > 0 {
		fmt.Fprintln(out)
		table := tablewriter.NewTable(out)
		table.Header("Service", "Mouvements", "Personnes")
		for _, r := range rollups {
			if err := table.Append(r.Service, r.Movements, r.People); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	series := engine.DailyCounts(filter)
	if len(series) > 0 {
		fmt.Fprintln(out)
		table := tablewriter.NewTable(out)
		table.Header("Date", "Entrées")
		for _, d := range series {
			if err := table.Append(d.Date.Format(constants.DateLayout), d.Count); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	return nil
}

func printHistory(cmd *cobra.Command, h stats.EmployeeHistory, name string) error {
	out := cmd.OutOrStdout()

	if h.Total == 0 {
		fmt.Fprintf(out, "Aucune entrée pour %s.\n", name)
		return nil
	}

	fmt.Fprintf(out, "Entrées : %d\n", h.Total)
	fmt.Fprintf(out, "Dernière date : %s\n", h.LastDate)
	fmt.Fprintf(out, "Dernière arrivée : %s\n", h.LastArrival)
	if h.NameDrift {
		fmt.Fprintln(out, "Attention : l'orthographe du nom varie dans l'historique.")
	}

	fmt.Fprintln(out)
	table := tablewriter.NewTable(out)
	table.Header("Date", "Arrivée", "Départ", "Service")
	for _, e := range h.Rows {
		if err := table.Append(e.Date, e.ArrivalTime, e.DepartureTime, e.Service); err != nil {
			return err
		}
	}
	return table.Render()
}
