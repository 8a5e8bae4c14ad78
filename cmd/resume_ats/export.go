package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-ats/internal/db"
	"github.com/jonathan/resume-ats/internal/export"
	"github.com/jonathan/resume-ats/internal/types"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored ATS reports to an Excel workbook",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var (
	exportOutputFile string
	exportLimit      int
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutputFile, "out", "o", "ats_reports.xlsx", "Path of the workbook")
	exportCmd.Flags().IntVarP(&exportLimit, "limit", "n", db.DefaultListLimit, "Maximum number of resumes to export, newest first")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
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
	summaries, err := database.List(ctx, exportLimit)
	if err != nil {
		return err
	}

	rows := make([]types.StoredResume, 0, len(summaries))
	for _, s := range summaries {
		stored, err := database.Get(ctx, s.ID)
		if err != nil {
			return err
		}
		rows = append(rows, *stored)
	}

	path, err := export.Save(exportOutputFile, rows, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %d resume(s) to %s\n", len(rows), path)
	return nil
}
