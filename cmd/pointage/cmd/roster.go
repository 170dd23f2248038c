package cmd

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/inhlab/pointage/pkg/consistency"
	"github.com/inhlab/pointage/pkg/ledger"
	"github.com/inhlab/pointage/pkg/roster"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage the personnel roster",
}

var rosterAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an employee (or update an existing one by name)",
	RunE:  runRosterAdd,
}

var rosterUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update an employee, optionally renaming them",
	Long: `Update an employee's attributes. With --original-name the employee
is located by that exact name and renamed to --name; the rename is then
propagated through the movements history so past entries follow the person.`,
	RunE: runRosterUpdate,
}

var rosterDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove an employee from the active roster",
	Long: `Remove an employee. Movement history is kept: entries recorded
before the deletion stay in the ledger under the person's name.`,
	RunE: runRosterDelete,
}

var rosterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the roster",
	RunE:  runRosterList,
}

func init() {
	for _, c := range []*cobra.Command{rosterAddCmd, rosterUpdateCmd} {
		c.Flags().String("name", "", "full name (required)")
		c.Flags().String("sex", "", "M or F (required)")
		c.Flags().String("service", "", "service")
		_ = c.MarkFlagRequired("name")
		_ = c.MarkFlagRequired("sex")
	}
	rosterUpdateCmd.Flags().String("original-name", "", "current name, when renaming")

	rosterDeleteCmd.Flags().String("name", "", "full name (required)")
	_ = rosterDeleteCmd.MarkFlagRequired("name")

	rosterCmd.AddCommand(rosterAddCmd, rosterUpdateCmd, rosterDeleteCmd, rosterListCmd)
	rootCmd.AddCommand(rosterCmd)
}

func sexFlag(cmd *cobra.Command) roster.Sex {
	s, _ := cmd.Flags().GetString("sex")
	return roster.Sex(strings.ToUpper(strings.TrimSpace(s)))
}

func runRosterAdd(cmd *cobra.Command, _ []string) error {
	provider, closeProvider, err := openProvider()
	if err != nil {
		return err
	}
	defer func() { _ = closeProvider() }()

	name, _ := cmd.Flags().GetString("name")
	service, _ := cmd.Flags().GetString("service")

	out, err := roster.New(provider).AddOrUpdateEmployee(name, sexFlag(cmd), service, "")
	fmt.Fprintln(cmd.OutOrStdout(), out.Message)
	return err
}

func runRosterUpdate(cmd *cobra.Command, _ []string) error {
	provider, closeProvider, err := openProvider()
	if err != nil {
		return err
	}
	defer func() { _ = closeProvider() }()

	name, _ := cmd.Flags().GetString("name")
	service, _ := cmd.Flags().GetString("service")
	originalName, _ := cmd.Flags().GetString("original-name")

	out, err := roster.New(provider).AddOrUpdateEmployee(name, sexFlag(cmd), service, originalName)
	fmt.Fprintln(cmd.OutOrStdout(), out.Message)
	if err != nil {
		return err
	}

	// A rename commits first; history follows as a best-effort second step.
	if out.RenamedFrom != "" {
		coordinator := consistency.New(ledger.New(provider))
		status := coordinator.OnEmployeeRenamed(out.RenamedFrom, name)
		switch {
		case status.Err != nil:
			fmt.Fprintf(cmd.OutOrStdout(),
				"Attention : l'historique n'a pas pu être mis à jour (%v).\n", status.Err)
		case status.Renamed > 0:
			fmt.Fprintf(cmd.OutOrStdout(),
				"Historique mis à jour : %d entrée(s) renommée(s).\n", status.Renamed)
		}
	}
	return nil
}

func runRosterDelete(cmd *cobra.Command, _ []string) error {
	provider, closeProvider, err := openProvider()
	if err != nil {
		return err
	}
	defer func() { _ = closeProvider() }()

	name, _ := cmd.Flags().GetString("name")
	out, err := roster.New(provider).DeleteEmployee(name)
	fmt.Fprintln(cmd.OutOrStdout(), out.Message)
	return err
}

func runRosterList(cmd *cobra.Command, _ []string) error {
	provider, closeProvider, err := openProvider()
	if err != nil {
		return err
	}
	defer func() { _ = closeProvider() }()

	store := roster.New(provider)
	employees, err := store.LoadRoster()
	if err != nil {
		return err
	}

	table := tablewriter.NewTable(cmd.OutOrStdout())
	table.Header("N°", "Nom et Prénoms", "Sexe", "Service")
	for _, e := range employees {
		if err := table.Append(e.OrderID, e.FullName, string(e.Sex), e.Service); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	// Surface services referenced by employees but missing from the
	// reference list so they can be consolidated.
	extra, err := store.ServicesInUse()
	if err != nil {
		return err
	}
	if len(extra) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(),
			"\nServices utilisés mais absents de la liste de référence : %s\n",
			strings.Join(extra, ", "))
	}
	return nil
}
