package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-ats/internal/extraction"
	"github.com/jonathan/resume-ats/internal/ingestion"
	"github.com/jonathan/resume-ats/internal/workflow"
)

var extractCmd = &cobra.Command{
	Use:   "extract <resume>",
	Short: "Extract structured data from a resume",
	Long:  "Reads a PDF, DOCX or text resume, checks that it is a resume and extracts its name, contact details, education, skills and experience.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var (
	extractOutputFile   string
	extractSkipClassify bool
)

func init() {
	extractCmd.Flags().StringVarP(&extractOutputFile, "out", "o", "", "Path to write the extraction JSON")
	extractCmd.Flags().BoolVar(&extractSkipClassify, "skip-classify", false, "Do not ask the LLM whether the document is a resume")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	doc, err := ingestion.Ingest(args[0])
	if err != nil {
		return err
	}
	client, err := a.oracle(ctx)
	if err != nil {
		return err
	}
	opts := a.pipelineOptions()

	if !extractSkipClassify {
		ok, err := extraction.Classify(ctx, client, doc.Text, opts)
		if err != nil {
			return fmt.Errorf("classification failed: %w", err)
		}
		if !ok {
			return fmt.Errorf("%s: %w", doc.Filename, workflow.ErrNotResume)
		}
	}

	extracted, err := extraction.Run(ctx, client, doc.Text, opts)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if extractOutputFile == "" {
		return writeJSON(a.out, "", extracted)
	}
	a.printer.PrintExtraction(extracted)
	if err := writeJSON(a.out, extractOutputFile, extracted); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Extraction written to %s\n", extractOutputFile)
	return nil
}
