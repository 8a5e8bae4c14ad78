package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-ats/internal/analysis"
	"github.com/jonathan/resume-ats/internal/types"
	"github.com/jonathan/resume-ats/internal/workflow"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume]",
	Short: "Score a resume for ATS compatibility",
	Long: "Analyzes a resume and reports its ATS score, keyword coverage, formatting issues, missing sections and suggestions.\n" +
		"Pass a resume file, or --input with the JSON written by 'extract'.",
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeInputFile  string
	analyzeOutputFile string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInputFile, "input", "i", "", "Path to an extraction JSON file")
	analyzeCmd.Flags().StringVarP(&analyzeOutputFile, "out", "o", "", "Path to write the ATS report JSON")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if (analyzeInputFile == "") == (len(args) == 0) {
		return fmt.Errorf("provide either a resume file or --input")
	}

	ctx := cmd.Context()
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	client, err := a.oracle(ctx)
	if err != nil {
		return err
	}

	var report *types.ATSReport
	if analyzeInputFile != "" {
		extracted, err := readJSON[types.Extraction](analyzeInputFile)
		if err != nil {
			return err
		}
		if report, err = analysis.Run(ctx, client, extracted.Record, a.pipelineOptions()); err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
	} else {
		res, err := workflow.ProcessFile(ctx, client, args[0], workflow.Options{
			Pipeline: a.pipelineOptions(),
			Logger:   a.log,
		})
		if err != nil {
			return err
		}
		report = res.Report
	}

	a.printer.PrintATSReport(report)
	if analyzeOutputFile != "" {
		if err := writeJSON(a.out, analyzeOutputFile, report); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Report written to %s\n", analyzeOutputFile)
	}
	return nil
}
