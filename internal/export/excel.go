// Package export writes stored ATS reports to an Excel workbook.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/resume-ats/internal/analysis"
	"github.com/jonathan/resume-ats/internal/types"
)

// Sheet names
const (
	SheetSummary     = "Summary"
	SheetReports     = "Reports"
	SheetSuggestions = "Suggestions"
)

var reportHeaders = []any{
	"ID", "File", "Name", "ATS Score", "Category", "Validation",
	"Missing Keywords", "Formatting Issues", "Missing Sections", "Enhanced", "Created",
}

// Workbook builds the report workbook. Callers must Close the returned file.
func Workbook(rows []types.StoredResume, generatedAt time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetReports, SheetSuggestions} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := writeSummary(f, rows, generatedAt); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeReports(f, rows); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create reports sheet: %w", err)
	}
	if err := writeSuggestions(f, rows); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create suggestions sheet: %w", err)
	}
	return f, nil
}

// Write streams the workbook to w
func Write(w io.Writer, rows []types.StoredResume, generatedAt time.Time) error {
	f, err := Workbook(rows, generatedAt)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Save writes the workbook to path, adding the .xlsx extension when missing, and returns the final path
func Save(path string, rows []types.StoredResume, generatedAt time.Time) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f, err := Workbook(rows, generatedAt)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save Excel file %s: %w", path, err)
	}
	return path, nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
}

// categoryFill colours score cells by band
var categoryFill = map[string]string{
	analysis.CategoryExcellent: "C6EFCE",
	analysis.CategoryGood:      "DDEBF7",
	analysis.CategoryFair:      "FFEB9C",
	analysis.CategoryPoor:      "FFC7CE",
}

func writeSummary(f *excelize.File, rows []types.StoredResume, generatedAt time.Time) error {
	sheet := SheetSummary
	if err := f.SetColWidth(sheet, "A", "A", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 24); err != nil {
		return err
	}
	header, err := headerStyle(f)
	if err != nil {
		return err
	}

	counts := map[string]int{}
	total := 0
	enhanced := 0
	for _, r := range rows {
		counts[analysis.ScoreCategory(r.Report.ATSScore)]++
		total += r.Report.ATSScore
		if r.Enhanced != nil {
			enhanced++
		}
	}
	average := 0.0
	if len(rows) > 0 {
		average = float64(total) / float64(len(rows))
	}

	lines := [][]any{
		{"ATS Report Export", ""},
		{"Generated:", generatedAt.Format(time.DateTime)},
		{"Resumes:", len(rows)},
		{"Enhanced:", enhanced},
		{"Average Score:", fmt.Sprintf("%.1f", average)},
		{},
		{"Score Distribution", ""},
		{analysis.CategoryExcellent, counts[analysis.CategoryExcellent]},
		{analysis.CategoryGood, counts[analysis.CategoryGood]},
		{analysis.CategoryFair, counts[analysis.CategoryFair]},
		{analysis.CategoryPoor, counts[analysis.CategoryPoor]},
	}
	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &line); err != nil {
			return err
		}
	}
	for _, row := range []int{1, 7} {
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), header); err != nil {
			return err
		}
	}
	return nil
}

func writeReports(f *excelize.File, rows []types.StoredResume) error {
	sheet := SheetReports
	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &reportHeaders); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(reportHeaders), 1)
	if err := f.SetCellStyle(sheet, "A1", last, header); err != nil {
		return err
	}
	for col, width := range map[string]float64{"A": 38, "B": 24, "C": 22, "E": 36, "G": 40, "K": 20} {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}

	fills := map[string]int{}
	for category, color := range categoryFill {
		style, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		})
		if err != nil {
			return err
		}
		fills[category] = style
	}

	for i, r := range rows {
		row := i + 2
		category := r.Report.ScoreCategory
		if category == "" {
			category = analysis.ScoreCategory(r.Report.ATSScore)
		}
		values := []any{
			r.ID.String(),
			r.Filename,
			r.Extracted.Name,
			r.Report.ATSScore,
			category,
			string(r.Validation.Status),
			strings.Join(r.Report.KeywordAnalysis.MissingImportantKeywords, ", "),
			len(r.Report.FormattingIssues),
			strings.Join(r.Report.MissingSections, ", "),
			yesNo(r.Enhanced != nil),
			r.CreatedAt.Format(time.DateTime),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		if style, ok := fills[category]; ok {
			if err := f.SetCellStyle(sheet, fmt.Sprintf("D%d", row), fmt.Sprintf("E%d", row), style); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeSuggestions(f *excelize.File, rows []types.StoredResume) error {
	sheet := SheetSuggestions
	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	headers := []any{"ID", "Name", "#", "Suggestion"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", header); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", "A", 38); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "D", "D", 80); err != nil {
		return err
	}

	row := 2
	for _, r := range rows {
		for i, s := range r.Report.Suggestions {
			values := []any{r.ID.String(), r.Extracted.Name, i + 1, s}
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
