// Package enhancement rewrites a resume using its ATS report.
//
// Four generation stages each read only the original record and the report, so they form a
// group that may run concurrently. A final local stage composes the EnhancedResume.
package enhancement

import (
	"context"
	"strings"

	"github.com/jonathan/resume-ats/internal/contract"
	"github.com/jonathan/resume-ats/internal/llm"
	"github.com/jonathan/resume-ats/internal/pipeline"
	"github.com/jonathan/resume-ats/internal/prompts"
	"github.com/jonathan/resume-ats/internal/types"
	contracts "github.com/jonathan/resume-ats/schemas"
)

// PipelineName identifies the enhancement pipeline in events
const PipelineName = "enhancement"

// Stage names
const (
	GroupGenerate          = "generate"
	StageEnhanceSummary    = "enhance_summary"
	StageEnhanceExperience = "enhance_experience"
	StageEnhanceSkills     = "enhance_skills"
	StageEnhanceEducation  = "enhance_education"
	StageCompile           = "compile"
)

// State fields
const (
	FieldOriginal   = "original"
	FieldReport     = "report"
	FieldSummary    = "summary"
	FieldExperience = "experience"
	FieldSkills     = "skills"
	FieldEducation  = "education"
	FieldEnhanced   = "enhanced"
)

// ImprovementsApplied is recorded in the metadata of every enhanced resume
var ImprovementsApplied = []string{
	"Added professional summary",
	"Enhanced experience with metrics",
	"Optimized skills with keywords",
	"Improved education formatting",
}

// Default model settings per stage
var (
	SummaryOptions    = llm.GenerateOptions{Tier: llm.TierAdvanced, Temperature: 0.7}
	ExperienceOptions = llm.GenerateOptions{Tier: llm.TierAdvanced, Temperature: 0.6}
	SkillsOptions     = llm.GenerateOptions{Tier: llm.TierStandard, Temperature: 0.5}
	EducationOptions  = llm.GenerateOptions{Tier: llm.TierStandard, Temperature: 0.4}
)

// State is the pipeline context of one enhancement run
type State struct {
	Original   types.ResumeRecord
	Report     types.ATSReport
	Summary    string
	Experience []types.ExperienceEntry
	Skills     types.CategorizedSkills
	Education  []types.EducationEntry
	Enhanced   types.EnhancedResume
}

var defaultPipeline = MustBuild(nil)

// Build assembles the enhancement pipeline with optional per-stage overrides
func Build(tuning pipeline.Tuning) (*pipeline.Pipeline[State], error) {
	inputs := []string{FieldOriginal, FieldReport}

	summary := &pipeline.OracleStage[State, string]{
		Name:   StageEnhanceSummary,
		Reads:  inputs,
		Writes: []string{FieldSummary},
		Prompt: func(s *State) (string, error) {
			record, err := prompts.JSON(s.Original)
			if err != nil {
				return "", err
			}
			feedback, err := prompts.JSON(types.StringsOrEmpty(s.Report.Suggestions))
			if err != nil {
				return "", err
			}
			return prompts.RenderFile(prompts.EnhancementFile, "enhance-summary", map[string]string{
				"Record":   record,
				"Feedback": feedback,
			})
		},
		Options:  tuning.Resolve(StageEnhanceSummary, SummaryOptions),
		Contract: contract.Text(),
		Apply:    func(s *State, text string) { s.Summary = text },
		Fallback: func(s *State, _ *contract.Failure) { s.Summary = "" },
	}

	experience := &pipeline.OracleStage[State, []types.ExperienceEntry]{
		Name:   StageEnhanceExperience,
		Reads:  inputs,
		Writes: []string{FieldExperience},
		Prompt: func(s *State) (string, error) {
			data, err := prompts.JSON(types.NormalizeExperience(s.Original.Clone().Experience))
			if err != nil {
				return "", err
			}
			return prompts.RenderFile(prompts.EnhancementFile, "enhance-experience", map[string]string{
				"Experience":      data,
				"MissingKeywords": missingKeywords(s.Report),
			})
		},
		Options:  tuning.Resolve(StageEnhanceExperience, ExperienceOptions),
		Contract: contract.JSON[[]types.ExperienceEntry]("experience_list", contract.Array, contracts.ExperienceList),
		Apply: func(s *State, entries []types.ExperienceEntry) {
			s.Experience = types.NormalizeExperience(entries)
		},
		Fallback: func(s *State, _ *contract.Failure) {
			s.Experience = s.Original.Clone().Experience
		},
	}

	skills := &pipeline.OracleStage[State, types.CategorizedSkills]{
		Name:   StageEnhanceSkills,
		Reads:  inputs,
		Writes: []string{FieldSkills},
		Prompt: func(s *State) (string, error) {
			data, err := prompts.JSON(types.StringsOrEmpty(s.Original.Skills))
			if err != nil {
				return "", err
			}
			return prompts.RenderFile(prompts.EnhancementFile, "enhance-skills", map[string]string{
				"Skills":          data,
				"MissingKeywords": missingKeywords(s.Report),
			})
		},
		Options:  tuning.Resolve(StageEnhanceSkills, SkillsOptions),
		Contract: contract.JSON[types.CategorizedSkills]("categorized_skills", contract.Object, contracts.CategorizedSkills),
		Apply: func(s *State, skills types.CategorizedSkills) {
			skills.Normalize()
			s.Skills = skills
		},
		Fallback: func(s *State, _ *contract.Failure) {
			s.Skills = types.CategorizedSkills{
				TechnicalSkills:   s.Original.Clone().Skills,
				SoftSkills:        []string{},
				ToolsTechnologies: []string{},
			}
		},
	}

	education := &pipeline.OracleStage[State, []types.EducationEntry]{
		Name:   StageEnhanceEducation,
		Reads:  inputs,
		Writes: []string{FieldEducation},
		Prompt: func(s *State) (string, error) {
			data, err := prompts.JSON(s.Original.Clone().Education)
			if err != nil {
				return "", err
			}
			return prompts.RenderFile(prompts.EnhancementFile, "enhance-education", map[string]string{"Education": data})
		},
		Options:  tuning.Resolve(StageEnhanceEducation, EducationOptions),
		Contract: contract.JSON[[]types.EducationEntry]("education_list", contract.Array, contracts.EducationList),
		Apply: func(s *State, entries []types.EducationEntry) {
			if entries == nil {
				entries = []types.EducationEntry{}
			}
			s.Education = entries
		},
		Fallback: func(s *State, _ *contract.Failure) {
			s.Education = s.Original.Clone().Education
		},
	}

	compile := &pipeline.DerivedStage[State]{
		Name:    StageCompile,
		Reads:   []string{FieldOriginal, FieldReport, FieldSummary, FieldExperience, FieldSkills, FieldEducation},
		Writes:  []string{FieldEnhanced},
		Compute: func(s *State) { s.Enhanced = Compile(s) },
	}

	generate := &pipeline.Group[State]{
		Name:   GroupGenerate,
		Stages: []pipeline.Stage[State]{summary, experience, skills, education},
	}

	return pipeline.New[State](PipelineName, inputs, generate, compile)
}

// MustBuild is like Build but panics on error
func MustBuild(tuning pipeline.Tuning) *pipeline.Pipeline[State] {
	p, err := Build(tuning)
	if err != nil {
		panic(err)
	}
	return p
}

// Run rewrites record using report. With opts.Concurrent the four generation stages run
// concurrently; the result is the same as a sequential run given the same replies.
// An error means the LLM was unavailable and nothing is returned.
func Run(ctx context.Context, client llm.Client, record types.ResumeRecord, report types.ATSReport, opts pipeline.Options) (*types.EnhancedResume, error) {
	p := defaultPipeline
	if len(opts.Tuning) > 0 {
		var err error
		if p, err = Build(opts.Tuning); err != nil {
			return nil, err
		}
	}

	state := &State{Original: record.Clone(), Report: report}
	if err := p.Run(ctx, client, state, opts.RunOptions); err != nil {
		return nil, err
	}

	enhanced := state.Enhanced
	return &enhanced, nil
}

// Compile assembles the enhanced resume from the generation outputs. Contact fields always
// come from the original record.
func Compile(s *State) types.EnhancedResume {
	return types.EnhancedResume{
		Name:                s.Original.Name,
		Email:               s.Original.Email,
		Phone:               s.Original.Phone,
		ProfessionalSummary: s.Summary,
		Experience:          s.Experience,
		Skills:              s.Skills,
		Education:           s.Education,
		EnhancementMetadata: types.EnhancementMetadata{
			OriginalATSScore:    s.Report.ATSScore,
			ImprovementsApplied: append([]string(nil), ImprovementsApplied...),
		},
	}
}

func missingKeywords(report types.ATSReport) string {
	return strings.Join(report.KeywordAnalysis.MissingImportantKeywords, ", ")
}
