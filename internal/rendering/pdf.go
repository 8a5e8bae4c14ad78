package rendering

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/jonathan/resume-ats/internal/types"
)

// Section titles as they appear in the rendered document
const (
	SectionSummary    = "PROFESSIONAL SUMMARY"
	SectionSkills     = "SKILLS"
	SectionExperience = "PROFESSIONAL EXPERIENCE"
	SectionEducation  = "EDUCATION"
)

// DefaultName is printed when the resume carries no name
const DefaultName = "Your Name"

const (
	pageMargin  = 19.05 // 0.75in
	footerDate  = "January 02, 2006"
	bulletGlyph = "•"
)

// PDFOptions controls details of the rendered PDF that are not part of the resume itself
type PDFOptions struct {
	// GeneratedAt is printed in the footer and stamped as the creation date.
	// The footer is omitted when zero.
	GeneratedAt time.Time
	// Compress enables stream compression. Disabled output is easier to inspect.
	Compress bool
}

// RenderPDF lays out an enhanced resume as a Letter-sized PDF.
// Sections with no content are left out entirely.
func RenderPDF(resume *types.EnhancedResume, opts PDFOptions) ([]byte, error) {
	if resume == nil {
		return nil, &RenderError{Format: FormatPDF, Cause: ErrNoResume}
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetCompression(opts.Compress)
	pdf.SetCatalogSort(true)
	if !opts.GeneratedAt.IsZero() {
		pdf.SetCreationDate(opts.GeneratedAt)
		pdf.SetModificationDate(opts.GeneratedAt)
	}

	w := &pdfWriter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	pdf.SetTitle(w.tr(displayName(resume.Name)), false)
	pdf.AddPage()

	w.header(resume)
	w.summary(resume.ProfessionalSummary)
	w.skills(resume.Skills)
	w.experience(resume.Experience)
	w.education(resume.Education)
	if !opts.GeneratedAt.IsZero() {
		w.footer(opts.GeneratedAt)
	}

	if err := pdf.Error(); err != nil {
		return nil, &RenderError{Format: FormatPDF, Cause: fmt.Errorf("layout: %w", err)}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Format: FormatPDF, Cause: fmt.Errorf("output: %w", err)}
	}
	return buf.Bytes(), nil
}

// DefaultFilename returns "<Name>_Enhanced_<YYYYMMDD_HHMMSS>.pdf"
func DefaultFilename(name string, at time.Time) string {
	base := strings.Join(strings.Fields(name), "_")
	if base == "" {
		base = "Resume"
	}
	return fmt.Sprintf("%s_Enhanced_%s.pdf", base, at.Format("20060102_150405"))
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return DefaultName
	}
	return name
}

type pdfWriter struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (w *pdfWriter) header(r *types.EnhancedResume) {
	w.pdf.SetFont("Helvetica", "B", 24)
	w.pdf.SetTextColor(26, 26, 26)
	w.pdf.CellFormat(0, 11, w.tr(displayName(r.Name)), "", 1, "C", false, 0, "")

	var contact []string
	for _, part := range []string{r.Email, r.Phone} {
		if s := strings.TrimSpace(part); s != "" {
			contact = append(contact, s)
		}
	}
	if len(contact) > 0 {
		w.pdf.SetFont("Helvetica", "", 10)
		w.pdf.SetTextColor(85, 85, 85)
		w.pdf.CellFormat(0, 6, w.tr(strings.Join(contact, " "+bulletGlyph+" ")), "", 1, "C", false, 0, "")
	}
	w.pdf.Ln(4)
}

func (w *pdfWriter) section(title string) {
	w.pdf.Ln(2)
	w.pdf.SetFont("Helvetica", "B", 14)
	w.pdf.SetTextColor(44, 62, 80)
	w.pdf.SetFillColor(236, 240, 241)
	w.pdf.SetDrawColor(52, 152, 219)
	w.pdf.CellFormat(0, 8, title, "1", 1, "L", true, 0, "")
	w.pdf.Ln(2)
}

func (w *pdfWriter) body(size, height float64, text string) {
	w.pdf.SetFont("Helvetica", "", size)
	w.pdf.SetTextColor(52, 73, 94)
	w.pdf.MultiCell(0, height, w.tr(text), "", "L", false)
}

func (w *pdfWriter) summary(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	w.section(SectionSummary)
	w.body(10, 5, text)
	w.pdf.Ln(3)
}

func (w *pdfWriter) skills(s types.CategorizedSkills) {
	if s.IsEmpty() {
		return
	}
	w.section(SectionSkills)
	w.labeled("Technical:", s.TechnicalSkills)
	w.labeled("Soft Skills:", s.SoftSkills)
	w.labeled("Tools & Technologies:", s.ToolsTechnologies)
	w.pdf.Ln(3)
}

func (w *pdfWriter) labeled(label string, items []string) {
	if len(items) == 0 {
		return
	}
	w.pdf.SetFont("Helvetica", "B", 9)
	w.pdf.SetTextColor(52, 73, 94)
	w.pdf.CellFormat(w.pdf.GetStringWidth(label)+2, 4.5, label, "", 0, "L", false, 0, "")
	w.body(9, 4.5, strings.Join(items, ", "))
}

func (w *pdfWriter) experience(entries []types.ExperienceEntry) {
	if len(entries) == 0 {
		return
	}
	w.section(SectionExperience)
	for _, e := range entries {
		title := e.Title
		if strings.TrimSpace(title) == "" {
			title = "Position"
		}
		w.pdf.SetFont("Helvetica", "B", 11)
		w.pdf.SetTextColor(44, 62, 80)
		if e.Duration != "" {
			titleText := w.tr(title) + " "
			w.pdf.CellFormat(w.pdf.GetStringWidth(titleText), 5.5, titleText, "", 0, "L", false, 0, "")
			w.pdf.SetFont("Helvetica", "", 10)
			w.pdf.SetTextColor(127, 140, 141)
			w.pdf.CellFormat(0, 5.5, w.tr("("+e.Duration+")"), "", 1, "L", false, 0, "")
		} else {
			w.pdf.CellFormat(0, 5.5, w.tr(title), "", 1, "L", false, 0, "")
		}
		if e.Company != "" {
			w.pdf.SetFont("Helvetica", "I", 10)
			w.pdf.SetTextColor(127, 140, 141)
			w.pdf.CellFormat(0, 5, w.tr(e.Company), "", 1, "L", false, 0, "")
		}
		for _, resp := range e.Responsibilities {
			w.bullet(bulletGlyph + " " + resp)
		}
		w.pdf.Ln(2.5)
	}
}

func (w *pdfWriter) bullet(text string) {
	w.pdf.SetX(pageMargin + 5)
	w.body(9, 4.5, text)
	w.pdf.Ln(1)
}

func (w *pdfWriter) education(entries []types.EducationEntry) {
	if len(entries) == 0 {
		return
	}
	w.section(SectionEducation)
	for _, e := range entries {
		w.pdf.SetFont("Helvetica", "B", 11)
		w.pdf.SetTextColor(44, 62, 80)
		line := e.Degree
		if e.Year != "" {
			line += " (" + e.Year + ")"
		}
		w.pdf.CellFormat(0, 5.5, w.tr(line), "", 1, "L", false, 0, "")
		if e.Institution != "" {
			w.pdf.SetFont("Helvetica", "I", 10)
			w.pdf.SetTextColor(127, 140, 141)
			w.pdf.CellFormat(0, 5, w.tr(e.Institution), "", 1, "L", false, 0, "")
		}
		if e.Details != "" {
			w.bullet(e.Details)
		}
		w.pdf.Ln(2.5)
	}
}

func (w *pdfWriter) footer(at time.Time) {
	w.pdf.Ln(5)
	w.pdf.SetFont("Helvetica", "I", 10)
	w.pdf.SetTextColor(85, 85, 85)
	w.pdf.CellFormat(0, 6, "Generated on "+at.Format(footerDate), "", 1, "C", false, 0, "")
}
