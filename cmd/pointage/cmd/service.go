package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/inhlab/pointage/pkg/roster"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "Manage the services reference list",
}

var serviceAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a service to the reference list",
	Args:  cobra.ExactArgs(1),
	RunE:  runServiceAdd,
}

var serviceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known services",
	RunE:  runServiceList,
}

func init() {
	serviceCmd.AddCommand(serviceAddCmd, serviceListCmd)
	rootCmd.AddCommand(serviceCmd)
}

func runServiceAdd(cmd *cobra.Command, args []string) error {
	provider, closeProvider, err := openProvider()
	if err != nil {
		return err
	}
	defer func() { _ = closeProvider() }()

	out, err := roster.New(provider).AddService(args[0])
	fmt.Fprintln(cmd.OutOrStdout(), out.Message)
	return err
}

func runServiceList(cmd *cobra.Command, _ []string) error {
	provider, closeProvider, err := openProvider()
	if err != nil {
		return err
	}
	defer func() { _ = closeProvider() }()

	services, err := roster.New(provider).LoadServices()
	if err != nil {
		return err
	}
	for _, svc := range services {
		fmt.Fprintln(cmd.OutOrStdout(), svc)
	}
	return nil
}
