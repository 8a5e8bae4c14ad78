package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-ats/internal/workflow"
)

var processCmd = &cobra.Command{
	Use:   "process <resume>",
	Short: "Run the full pipeline on a resume",
	Long: "Classifies, extracts, analyzes and enhances a resume, renders the enhanced PDF and, when configured, " +
		"stores the results in PostgreSQL and archives the upload.",
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

var (
	processOutputFile   string
	processNoEnhance    bool
	processNoPDF        bool
	processNoStore      bool
	processSkipClassify bool
	processConcurrent   bool
	processReportFile   string
)

func init() {
	processCmd.Flags().StringVarP(&processOutputFile, "out", "o", "", "Path of the enhanced PDF (default: <Name>_Enhanced_<timestamp>.pdf in output_dir)")
	processCmd.Flags().BoolVar(&processNoEnhance, "no-enhance", false, "Stop after the ATS analysis")
	processCmd.Flags().BoolVar(&processNoPDF, "no-pdf", false, "Do not render the enhanced PDF")
	processCmd.Flags().BoolVar(&processNoStore, "no-store", false, "Do not store results even when a database is configured")
	processCmd.Flags().BoolVar(&processSkipClassify, "skip-classify", false, "Do not ask the LLM whether the document is a resume")
	processCmd.Flags().BoolVar(&processConcurrent, "concurrent", false, "Run the four section rewrites concurrently")
	processCmd.Flags().StringVar(&processReportFile, "report", "", "Path to write the ATS report JSON")

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
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

	opts := workflow.Options{
		Pipeline:              a.pipelineOptions(),
		SkipClassification:    processSkipClassify,
		Enhance:               !processNoEnhance,
		ConcurrentEnhancement: processConcurrent || a.cfg.ConcurrentEnhancement,
		RenderPDF:             !processNoEnhance && !processNoPDF,
		OutputPath:            processOutputFile,
		OutputDir:             a.cfg.OutputDir,
		Logger:                a.log,
	}
	if !processNoStore && a.cfg.DatabaseURL != "" {
		database, err := a.database(ctx)
		if err != nil {
			return err
		}
		opts.Store = database
	}
	store, err := a.archive(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		opts.Archive = store
	}

	res, err := workflow.ProcessFile(ctx, client, args[0], opts)
	if err != nil {
		return err
	}

	a.printer.PrintExtraction(res.Extraction)
	a.printer.PrintATSReport(res.Report)
	a.printer.PrintEnhancedPreview(res.Enhanced)
	a.printer.PrintRunSummary(res.ResumeID, res.Report, res.Enhanced, res.PDFPath)

	if processReportFile != "" {
		if err := writeJSON(a.out, processReportFile, res.Report); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Report written to %s\n", processReportFile)
	}
	return nil
}
