package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-ats/internal/db"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List processed resumes",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored resume as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var (
	historyLimit int
	showFileOut  string
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", db.DefaultListLimit, "Maximum number of resumes to list")
	showCmd.Flags().StringVar(&showFileOut, "file", "", "Also save the original upload to this path")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
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
	rows, err := database.List(ctx, historyLimit)
	if err != nil {
		return err
	}
	a.printer.PrintHistory(rows)
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid resume id: %w", err)
	}

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
	stored, err := database.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := writeJSON(a.out, "", stored); err != nil {
		return err
	}

	if showFileOut != "" {
		data, err := database.GetFile(ctx, id)
		if err != nil {
			return err
		}
		if err := writeFile(showFileOut, data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Original upload saved to %s\n", showFileOut)
	}
	return nil
}
