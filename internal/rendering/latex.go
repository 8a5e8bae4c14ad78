// Package rendering turns an enhanced resume into a document: a PDF laid out directly, or LaTeX source from a template.
package rendering

import (
	"embed"
	"os"
	"strings"
	"text/template"

	"github.com/jonathan/resume-ats/internal/types"
)

//go:embed templates/resume.tex
var templateFS embed.FS

const defaultTemplate = "templates/resume.tex"

// TemplateData represents the data structure passed to the LaTeX template.
// Every string is already escaped.
type TemplateData struct {
	Name      string
	Contact   string
	Summary   string
	Skills    []SkillLine
	Companies []CompanySection
	Education []EducationLine
}

// SkillLine is one labelled category of the skills section
type SkillLine struct {
	Label string
	Items string
}

// CompanySection represents a company with one or more roles
type CompanySection struct {
	Company string
	Roles   []RoleSection
}

// RoleSection represents a role within a company with its merged durations
type RoleSection struct {
	Role      string
	Durations string // e.g., "2019-2020, 2022-Present"
	Bullets   []string
}

// EducationLine is one entry of the education section
type EducationLine struct {
	Degree      string
	Institution string
	Year        string
	Details     string
}

// RenderLaTeX renders an enhanced resume through a LaTeX template.
// An empty templatePath selects the built-in template.
func RenderLaTeX(resume *types.EnhancedResume, templatePath string) (string, error) {
	if resume == nil {
		return "", &RenderError{Format: FormatLaTeX, Cause: ErrNoResume}
	}

	tmpl, err := parseTemplate(templatePath)
	if err != nil {
		return "", err
	}

	data := buildTemplateData(resume)

	var result strings.Builder
	if err := tmpl.Execute(&result, data); err != nil {
		return "", &TemplateError{
			Path:    templatePath,
			Message: "failed to execute template",
			Cause:   err,
		}
	}

	return result.String(), nil
}

// parseTemplate reads and parses a LaTeX template file
func parseTemplate(templatePath string) (*template.Template, error) {
	var (
		content []byte
		err     error
	)
	if templatePath == "" {
		content, err = templateFS.ReadFile(defaultTemplate)
	} else {
		content, err = os.ReadFile(templatePath)
	}
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TemplateError{
				Path:    templatePath,
				Message: "template file not found",
				Cause:   err,
			}
		}
		return nil, &TemplateError{
			Path:    templatePath,
			Message: "failed to read template file",
			Cause:   err,
		}
	}

	tmpl, err := template.New("resume").Funcs(template.FuncMap{
		"escape": EscapeLaTeX,
	}).Parse(string(content))
	if err != nil {
		return nil, &TemplateError{
			Path:    templatePath,
			Message: "failed to parse template",
			Cause:   err,
		}
	}

	return tmpl, nil
}

// buildTemplateData escapes the resume into template form
func buildTemplateData(r *types.EnhancedResume) *TemplateData {
	data := &TemplateData{
		Name:      EscapeLaTeX(displayName(r.Name)),
		Summary:   EscapeLaTeX(strings.TrimSpace(r.ProfessionalSummary)),
		Companies: groupByCompany(r.Experience),
	}

	var contact []string
	for _, part := range []string{r.Email, r.Phone} {
		if s := strings.TrimSpace(part); s != "" {
			contact = append(contact, EscapeLaTeX(s))
		}
	}
	data.Contact = strings.Join(contact, ` $\cdot$ `)

	for _, cat := range []struct {
		label string
		items []string
	}{
		{"Technical", r.Skills.TechnicalSkills},
		{"Soft Skills", r.Skills.SoftSkills},
		{"Tools & Technologies", r.Skills.ToolsTechnologies},
	} {
		if len(cat.items) == 0 {
			continue
		}
		data.Skills = append(data.Skills, SkillLine{
			Label: EscapeLaTeX(cat.label),
			Items: EscapeLaTeX(strings.Join(cat.items, ", ")),
		})
	}

	for _, e := range r.Education {
		data.Education = append(data.Education, EducationLine{
			Degree:      EscapeLaTeX(e.Degree),
			Institution: EscapeLaTeX(e.Institution),
			Year:        EscapeLaTeX(e.Year),
			Details:     EscapeLaTeX(e.Details),
		})
	}

	return data
}

// roleKey is used for grouping entries by company and role
type roleKey struct {
	Company string
	Role    string
}

// groupByCompany groups entries by Company, then by Title, keeping first-seen order.
// Repeated roles at the same company share one section with merged durations.
func groupByCompany(entries []types.ExperienceEntry) []CompanySection {
	if len(entries) == 0 {
		return nil
	}

	companyOrder := []string{}
	companyRoleOrder := make(map[string][]string)
	durations := make(map[roleKey][]string)
	bullets := make(map[roleKey][]string)
	seenRoles := make(map[roleKey]bool)

	for _, e := range entries {
		key := roleKey{Company: e.Company, Role: e.Title}
		if _, ok := companyRoleOrder[e.Company]; !ok {
			companyOrder = append(companyOrder, e.Company)
		}
		if !seenRoles[key] {
			seenRoles[key] = true
			companyRoleOrder[e.Company] = append(companyRoleOrder[e.Company], e.Title)
		}
		durations[key] = append(durations[key], e.Duration)
		for _, b := range e.Responsibilities {
			bullets[key] = append(bullets[key], EscapeLaTeX(b))
		}
	}

	companies := make([]CompanySection, 0, len(companyOrder))
	for _, company := range companyOrder {
		section := CompanySection{Company: EscapeLaTeX(company)}
		for _, role := range companyRoleOrder[company] {
			key := roleKey{Company: company, Role: role}
			section.Roles = append(section.Roles, RoleSection{
				Role:      EscapeLaTeX(role),
				Durations: mergeDurations(durations[key]),
				Bullets:   bullets[key],
			})
		}
		companies = append(companies, section)
	}
	return companies
}

// mergeDurations drops blanks and duplicates and joins the rest in input order
func mergeDurations(durations []string) string {
	seen := make(map[string]bool)
	parts := []string{}
	for _, d := range durations {
		d = strings.TrimSpace(d)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		parts = append(parts, EscapeLaTeX(d))
	}
	return strings.Join(parts, ", ")
}
