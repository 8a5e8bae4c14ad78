// Package observability provides formatted console output for humans reading a run.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume-ats/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// maxIssuesToShow caps the formatting issues printed in a report
	maxIssuesToShow = 3
	// maxPositionsToShow caps the experience entries printed in a preview
	maxPositionsToShow = 2
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip truncates s to width runes, marking the cut with an ellipsis
func clip(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// head returns at most n items joined with ", "
func head(items []string, n int) string {
	return strings.Join(items[:min(len(items), n)], ", ")
}

// PrintExtraction outputs the structured record and its validation verdict.
func (p *Printer) PrintExtraction(ex *types.Extraction) {
	if ex == nil {
		return
	}
	r := ex.Record

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:       %s\n", orNA(r.Name)))
	sb.WriteString(fmt.Sprintf("Email:      %s\n", orNA(r.Email)))
	sb.WriteString(fmt.Sprintf("Phone:      %s\n", orNA(r.Phone)))
	sb.WriteString(fmt.Sprintf("Experience: %d position(s)\n", len(r.Experience)))
	sb.WriteString(fmt.Sprintf("Education:  %d entr(y/ies)\n", len(r.Education)))
	if len(r.Skills) > 0 {
		sb.WriteString(fmt.Sprintf("Skills:     %s", head(r.Skills, maxItemsToShow)))
		if len(r.Skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf(" (+%d)", len(r.Skills)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}
	if r.RawOutput != "" {
		sb.WriteString("⚠ Structuring failed; raw reply kept\n")
	}
	sb.WriteString("\n")
	mark := "✓"
	if ex.Validation.Status != types.ValidationValid {
		mark = "✗"
	}
	sb.WriteString(fmt.Sprintf("%s Validation: %s", mark, ex.Validation.Status))
	if ex.Validation.Reason != "" {
		sb.WriteString(fmt.Sprintf("\n  %s", ex.Validation.Reason))
	}

	p.printBox("EXTRACTED RESUME", sb.String())
}

// PrintATSReport outputs the score, keyword analysis and suggestions of a report.
func (p *Printer) PrintATSReport(report *types.ATSReport) {
	if report == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score: %d/100 - %s\n\n", report.ATSScore, report.ScoreCategory))
	for _, line := range wrap(report.Summary, boxWidth-4) {
		sb.WriteString(line + "\n")
	}

	kw := report.KeywordAnalysis
	if len(kw.TechnicalKeywords)+len(kw.SoftSkills)+len(kw.MissingImportantKeywords) > 0 {
		sb.WriteString("\nKeyword Analysis:\n")
		if len(kw.TechnicalKeywords) > 0 {
			sb.WriteString(fmt.Sprintf("  ✓ Technical: %s\n", head(kw.TechnicalKeywords, maxItemsToShow)))
		}
		if len(kw.SoftSkills) > 0 {
			sb.WriteString(fmt.Sprintf("  ✓ Soft Skills: %s\n", head(kw.SoftSkills, maxItemsToShow)))
		}
		if len(kw.MissingImportantKeywords) > 0 {
			sb.WriteString(fmt.Sprintf("  ✗ Missing: %s\n", head(kw.MissingImportantKeywords, maxItemsToShow)))
		}
	}

	if len(report.FormattingIssues) > 0 {
		sb.WriteString(fmt.Sprintf("\nFormatting Issues (%d):\n", len(report.FormattingIssues)))
		for i, issue := range report.FormattingIssues[:min(len(report.FormattingIssues), maxIssuesToShow)] {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, issue))
		}
	}

	if len(report.MissingSections) > 0 {
		sb.WriteString(fmt.Sprintf("\nMissing Sections (%d):\n", len(report.MissingSections)))
		for i, section := range report.MissingSections {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, section))
		}
	}

	if len(report.Suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		count := min(len(report.Suggestions), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", report.Suggestions[i]))
		}
		if len(report.Suggestions) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(report.Suggestions)-maxItemsToShow))
		}
	}

	p.printBox("ATS COMPATIBILITY REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEnhancedPreview outputs the first part of an enhanced resume.
func (p *Printer) PrintEnhancedPreview(resume *types.EnhancedResume) {
	if resume == nil {
		return
	}

	var sb strings.Builder
	if resume.ProfessionalSummary != "" {
		sb.WriteString("Professional Summary:\n")
		for _, line := range wrap(resume.ProfessionalSummary, boxWidth-6) {
			sb.WriteString("  " + line + "\n")
		}
		sb.WriteString("\n")
	}

	s := resume.Skills
	if !s.IsEmpty() {
		sb.WriteString("Skills:\n")
		if len(s.TechnicalSkills) > 0 {
			sb.WriteString(fmt.Sprintf("  Technical: %s\n", head(s.TechnicalSkills, 8)))
		}
		if len(s.SoftSkills) > 0 {
			sb.WriteString(fmt.Sprintf("  Soft Skills: %s\n", head(s.SoftSkills, maxItemsToShow)))
		}
		if len(s.ToolsTechnologies) > 0 {
			sb.WriteString(fmt.Sprintf("  Tools: %s\n", head(s.ToolsTechnologies, 8)))
		}
		sb.WriteString("\n")
	}

	if len(resume.Experience) > 0 {
		sb.WriteString(fmt.Sprintf("Experience (%d positions):\n", len(resume.Experience)))
		for i, e := range resume.Experience[:min(len(resume.Experience), maxPositionsToShow)] {
			sb.WriteString(fmt.Sprintf("  %d. %s at %s\n", i+1, orNA(e.Title), orNA(e.Company)))
			sb.WriteString(fmt.Sprintf("     Duration: %s\n", orNA(e.Duration)))
			for _, r := range e.Responsibilities[:min(len(e.Responsibilities), 2)] {
				sb.WriteString(fmt.Sprintf("     • %s\n", r))
			}
		}
		sb.WriteString("\n")
	}

	if applied := resume.EnhancementMetadata.ImprovementsApplied; len(applied) > 0 {
		sb.WriteString("Improvements Applied:\n")
		for _, imp := range applied {
			sb.WriteString(fmt.Sprintf("  ✓ %s\n", imp))
		}
	}

	p.printBox("ENHANCED RESUME PREVIEW", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRunSummary outputs the closing summary of a processing run.
// id is uuid.Nil when nothing was persisted.
func (p *Printer) PrintRunSummary(id uuid.UUID, report *types.ATSReport, enhanced *types.EnhancedResume, outputPath string) {
	var sb strings.Builder
	if id != uuid.Nil {
		sb.WriteString(fmt.Sprintf("Resume ID: %s\n", id))
	}
	if report != nil {
		sb.WriteString(fmt.Sprintf("Original ATS Score: %d/100\n", report.ATSScore))
	}
	if enhanced != nil {
		sb.WriteString("Resume Enhanced: ✓\n")
		sb.WriteString(fmt.Sprintf("Improvements: %d\n", len(enhanced.EnhancementMetadata.ImprovementsApplied)))
	} else {
		sb.WriteString("Resume Enhanced: ✗\n")
	}
	if outputPath != "" {
		sb.WriteString(fmt.Sprintf("PDF: %s\n", outputPath))
	}

	p.printBox("SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHistory outputs a listing of stored resumes.
func (p *Printer) PrintHistory(rows []types.StoredResumeSummary) {
	if len(rows) == 0 {
		p.printBox("HISTORY", "No stored resumes")
		return
	}

	var sb strings.Builder
	for i, r := range rows {
		mark := " "
		if r.Enhanced {
			mark = "✓"
		}
		sb.WriteString(fmt.Sprintf("%s %3d  %s  %s\n", mark, r.ATSScore, r.CreatedAt.Format(time.DateOnly), orNA(r.Name)))
		sb.WriteString(fmt.Sprintf("         %s  %s", r.ID.String()[:8], r.Filename))
		if i < len(rows)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("HISTORY (%d)", len(rows)), sb.String())
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// wrap splits text into lines of at most width runes at word boundaries
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len([]rune(line))+1+len([]rune(w)) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return append(lines, line)
}
