// Package schemas embeds the JSON Schema contracts that generator replies are checked against.
package schemas

import "embed"

// Files holds every *.schema.json file in this directory.
//
//go:embed *.schema.json
var Files embed.FS

// Contract schema file names
const (
	ResumeRecord      = "resume_record.schema.json"
	ATSAnalysis       = "ats_analysis.schema.json"
	ExperienceList    = "experience_list.schema.json"
	EducationList     = "education_list.schema.json"
	CategorizedSkills = "categorized_skills.schema.json"
)

// All lists every contract schema shipped with the module.
var All = []string{
	ResumeRecord,
	ATSAnalysis,
	ExperienceList,
	EducationList,
	CategorizedSkills,
}
