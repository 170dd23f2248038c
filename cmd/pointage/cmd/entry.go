package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/inhlab/pointage/pkg/constants"
	"github.com/inhlab/pointage/pkg/identity"
	"github.com/inhlab/pointage/pkg/ledger"
	"github.com/inhlab/pointage/pkg/roster"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Record an arrival or departure",
	Long: `Record a movement for one person on one day. If an entry already
exists for that person and day it is updated in place: arrival is overwritten
and departure only when given, so recording a departure later in the day
never erases the morning's arrival.

Sex and service default to the person's roster attributes when not given.`,
	RunE: runEntry,
}

func init() {
	entryCmd.Flags().String("name", "", "person's full name (required)")
	entryCmd.Flags().String("date", "", "date DD/MM/YYYY (default today)")
	entryCmd.Flags().String("arrival", "", "arrival time HH:MM (required)")
	entryCmd.Flags().String("departure", "", "departure time HH:MM")
	entryCmd.Flags().String("sex", "", "sex M or F (default from roster)")
	entryCmd.Flags().String("service", "", "service (default from roster)")
	_ = entryCmd.MarkFlagRequired("name")
	_ = entryCmd.MarkFlagRequired("arrival")

	rootCmd.AddCommand(entryCmd)
}

func runEntry(cmd *cobra.Command, _ []string) error {
	provider, closeProvider, err := openProvider()
	if err != nil {
		return err
	}
	defer func() { _ = closeProvider() }()

	name, _ := cmd.Flags().GetString("name")
	date, _ := cmd.Flags().GetString("date")
	arrival, _ := cmd.Flags().GetString("arrival")
	departure, _ := cmd.Flags().GetString("departure")
	sex, _ := cmd.Flags().GetString("sex")
	service, _ := cmd.Flags().GetString("service")

	if date == "" {
		date = time.Now().Format(constants.DateLayout)
	}

	// Fill sex/service from the roster when not given, matching leniently
	// since this is a read.
	if sex == "" || service == "" {
		rosterStore := roster.New(provider)
		employees, err := rosterStore.LoadRoster()
		if err != nil {
			return err
		}
		for _, e := range employees {
			if identity.Equal(e.FullName, name, identity.Folded) {
				if sex == "" {
					sex = string(e.Sex)
				}
				if service == "" {
					service = e.Service
				}
				break
			}
		}
	}

	ledgerStore := ledger.New(provider)
	res, err := ledgerStore.Upsert(ledger.UpsertRequest{
		Date:          date,
		PersonName:    name,
		Sex:           strings.ToUpper(strings.TrimSpace(sex)),
		Service:       service,
		ArrivalTime:   arrival,
		DepartureTime: departure,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	return nil
}
