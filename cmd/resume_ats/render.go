package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-ats/internal/rendering"
	"github.com/jonathan/resume-ats/internal/types"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render an enhanced resume as PDF or LaTeX",
	Long:  "Lays out the JSON written by 'enhance' as a Letter-sized PDF, or as LaTeX source through a template.",
	Args:  cobra.NoArgs,
	RunE:  runRender,
}

var (
	renderInputFile    string
	renderFormat       string
	renderOutputFile   string
	renderTemplateFile string
)

func init() {
	renderCmd.Flags().StringVarP(&renderInputFile, "input", "i", "", "Path to an enhanced resume JSON file (required)")
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "pdf", "Output format: pdf or latex")
	renderCmd.Flags().StringVarP(&renderOutputFile, "out", "o", "", "Output path (default: <Name>_Enhanced_<timestamp>.pdf in output_dir, LaTeX to stdout)")
	renderCmd.Flags().StringVarP(&renderTemplateFile, "template", "t", "", "Path to a LaTeX template (default: built-in)")
	_ = renderCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(renderFormat)
	if format != rendering.FormatPDF && format != rendering.FormatLaTeX {
		return fmt.Errorf("unsupported format %q (want pdf or latex)", renderFormat)
	}

	a, err := setup(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	resume, err := readJSON[types.EnhancedResume](renderInputFile)
	if err != nil {
		return err
	}

	if format == rendering.FormatLaTeX {
		templatePath := renderTemplateFile
		if templatePath == "" {
			templatePath = a.cfg.Template
		}
		latex, err := rendering.RenderLaTeX(resume, templatePath)
		if err != nil {
			return fmt.Errorf("failed to render LaTeX: %w", err)
		}
		if renderOutputFile == "" {
			_, err = fmt.Fprint(a.out, latex)
			return err
		}
		if err := writeFile(renderOutputFile, []byte(latex)); err != nil {
			return err
		}
		fmt.Fprintf(a.out, "LaTeX written to %s\n", renderOutputFile)
		return nil
	}

	now := time.Now()
	data, err := rendering.RenderPDF(resume, rendering.PDFOptions{GeneratedAt: now, Compress: true})
	if err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	path := renderOutputFile
	if path == "" {
		path = filepath.Join(a.cfg.OutputDir, rendering.DefaultFilename(resume.Name, now))
	}
	if err := writeFile(path, data); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "PDF written to %s\n", path)
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
