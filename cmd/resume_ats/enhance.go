package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-ats/internal/enhancement"
	"github.com/jonathan/resume-ats/internal/types"
	"github.com/jonathan/resume-ats/internal/workflow"
)

var enhanceCmd = &cobra.Command{
	Use:   "enhance [resume]",
	Short: "Rewrite a resume for ATS compatibility",
	Long: "Rewrites the summary, experience, skills and education of a resume using its ATS report.\n" +
		"Pass a resume file, or --input and --report with the JSON written by 'extract' and 'analyze'.",
	Args: cobra.MaximumNArgs(1),
	RunE: runEnhance,
}

var (
	enhanceInputFile  string
	enhanceReportFile string
	enhanceOutputFile string
	enhanceConcurrent bool
)

func init() {
	enhanceCmd.Flags().StringVarP(&enhanceInputFile, "input", "i", "", "Path to an extraction JSON file")
	enhanceCmd.Flags().StringVarP(&enhanceReportFile, "report", "r", "", "Path to an ATS report JSON file")
	enhanceCmd.Flags().StringVarP(&enhanceOutputFile, "out", "o", "", "Path to write the enhanced resume JSON")
	enhanceCmd.Flags().BoolVar(&enhanceConcurrent, "concurrent", false, "Run the four section rewrites concurrently")

	rootCmd.AddCommand(enhanceCmd)
}

func runEnhance(cmd *cobra.Command, args []string) error {
	fromFiles := enhanceInputFile != "" || enhanceReportFile != ""
	switch {
	case fromFiles && len(args) > 0:
		return fmt.Errorf("cannot combine a resume file with --input/--report")
	case fromFiles && (enhanceInputFile == "" || enhanceReportFile == ""):
		return fmt.Errorf("--input and --report must be used together")
	case !fromFiles && len(args) == 0:
		return fmt.Errorf("provide either a resume file or --input and --report")
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
	concurrent := enhanceConcurrent || a.cfg.ConcurrentEnhancement

	var enhanced *types.EnhancedResume
	if fromFiles {
		extracted, err := readJSON[types.Extraction](enhanceInputFile)
		if err != nil {
			return err
		}
		report, err := readJSON[types.ATSReport](enhanceReportFile)
		if err != nil {
			return err
		}
		opts := a.pipelineOptions()
		opts.Concurrent = concurrent
		if enhanced, err = enhancement.Run(ctx, client, extracted.Record, *report, opts); err != nil {
			return fmt.Errorf("enhancement failed: %w", err)
		}
	} else {
		res, err := workflow.ProcessFile(ctx, client, args[0], workflow.Options{
			Pipeline:              a.pipelineOptions(),
			Enhance:               true,
			ConcurrentEnhancement: concurrent,
			Logger:                a.log,
		})
		if err != nil {
			return err
		}
		enhanced = res.Enhanced
	}

	if enhanceOutputFile == "" {
		return writeJSON(a.out, "", enhanced)
	}
	a.printer.PrintEnhancedPreview(enhanced)
	if err := writeJSON(a.out, enhanceOutputFile, enhanced); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Enhanced resume written to %s\n", enhanceOutputFile)
	return nil
}
