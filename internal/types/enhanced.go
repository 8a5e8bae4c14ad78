package types

// CategorizedSkills is the skills section after enhancement
type CategorizedSkills struct {
	TechnicalSkills   []string `json:"technical_skills"`
	SoftSkills        []string `json:"soft_skills"`
	ToolsTechnologies []string `json:"tools_technologies"`
}

// IsEmpty reports whether no category has any entry
func (s CategorizedSkills) IsEmpty() bool {
	return len(s.TechnicalSkills) == 0 && len(s.SoftSkills) == 0 && len(s.ToolsTechnologies) == 0
}

// Normalize replaces nil slices with empty ones
func (s *CategorizedSkills) Normalize() {
	s.TechnicalSkills = StringsOrEmpty(s.TechnicalSkills)
	s.SoftSkills = StringsOrEmpty(s.SoftSkills)
	s.ToolsTechnologies = StringsOrEmpty(s.ToolsTechnologies)
}

// EnhancementMetadata records where an enhanced resume came from
type EnhancementMetadata struct {
	OriginalATSScore    int      `json:"original_ats_score"`
	ImprovementsApplied []string `json:"improvements_applied"`
}

// EnhancedResume is the rewritten resume produced by the enhancement pipeline
type EnhancedResume struct {
	Name                string              `json:"name"`
	Email               string              `json:"email"`
	Phone               string              `json:"phone"`
	ProfessionalSummary string              `json:"professional_summary"`
	Experience          []ExperienceEntry   `json:"experience"`
	Skills              CategorizedSkills   `json:"skills"`
	Education           []EducationEntry    `json:"education"`
	EnhancementMetadata EnhancementMetadata `json:"enhancement_metadata"`
}
