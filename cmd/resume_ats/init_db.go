package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create the resumes table",
	Args:  cobra.NoArgs,
	RunE:  runInitDB,
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}

func runInitDB(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	database, err := a.database(ctx)
	if err != nil {
		return err
	}
	if err := database.InitSchema(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Database schema initialized")
	return nil
}
