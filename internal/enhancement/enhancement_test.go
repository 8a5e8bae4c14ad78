package enhancement

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-ats/internal/llm/llmtest"
	"github.com/jonathan/resume-ats/internal/pipeline"
	"github.com/jonathan/resume-ats/internal/types"
)

const (
	summaryMarker    = "specializes in professional summaries"
	experienceMarker = "specializes in achievement-focused experience"
	skillsMarker     = "specializes in skills sections"
	educationMarker  = "specializes in education sections"
)

func sampleRecord() types.ResumeRecord {
	return types.ResumeRecord{
		Name:  "John Doe",
		Email: "john.doe@email.com",
		Phone: "+1234567890",
		Education: []types.EducationEntry{
			{Degree: "Bachelor of Computer Science", Institution: "University XYZ", Year: "2020"},
		},
		Skills: []string{"Python", "JavaScript", "React"},
		Experience: []types.ExperienceEntry{
			{Title: "Software Engineer", Company: "Tech Corp", Duration: "2020-2023", Responsibilities: []string{"Developed web applications"}},
		},
	}
}

func sampleReport() types.ATSReport {
	return types.ATSReport{
		ATSScore:      62,
		ScoreCategory: "Good - Moderate ATS Compatibility",
		KeywordAnalysis: types.KeywordAnalysis{
			MissingImportantKeywords: []string{"Docker", "Cloud", "CI/CD"},
		},
		Suggestions: []string{"Add a professional summary"},
	}
}

func scriptedSuccess() *llmtest.Scripted {
	return llmtest.New().
		On(summaryMarker, "Results-driven engineer with 3 years building web applications.").
		On(experienceMarker, "```json\n"+`[{"title": "Software Engineer", "company": "Tech Corp", "duration": "2020-2023", "responsibilities": ["Shipped 12 web applications on Docker"]}]`+"\n```").
		On(skillsMarker, `{"technical_skills": ["Python", "JavaScript"], "soft_skills": ["Leadership"], "tools_technologies": ["Docker"]}`).
		On(educationMarker, `[{"degree": "B.Sc. Computer Science", "institution": "University XYZ", "year": "2020", "details": "Honors"}]`)
}

func TestRun_Success(t *testing.T) {
	client := scriptedSuccess()

	got, err := Run(context.Background(), client, sampleRecord(), sampleReport(), pipeline.Options{})
	require.NoError(t, err)

	assert.Equal(t, "John Doe", got.Name)
	assert.Equal(t, "john.doe@email.com", got.Email)
	assert.Equal(t, "+1234567890", got.Phone)
	assert.Equal(t, "Results-driven engineer with 3 years building web applications.", got.ProfessionalSummary)
	assert.Equal(t, []string{"Shipped 12 web applications on Docker"}, got.Experience[0].Responsibilities)
	assert.Equal(t, []string{"Docker"}, got.Skills.ToolsTechnologies)
	assert.Equal(t, "Honors", got.Education[0].Details)
	assert.Equal(t, ImprovementsApplied, got.EnhancementMetadata.ImprovementsApplied)

	calls := client.Calls()
	require.Len(t, calls, 4)
	assert.Contains(t, calls[0].Prompt, "Add a professional summary")
	assert.Equal(t, SummaryOptions, calls[0].Options)
	assert.Equal(t, ExperienceOptions, calls[1].Options)
	assert.Equal(t, SkillsOptions, calls[2].Options)
	assert.Equal(t, EducationOptions, calls[3].Options)
}

func TestRun_MetadataCarriesOriginalScore(t *testing.T) {
	report := sampleReport()
	client := scriptedSuccess()

	got, err := Run(context.Background(), client, sampleRecord(), report, pipeline.Options{})
	require.NoError(t, err)
	assert.Equal(t, report.ATSScore, got.EnhancementMetadata.OriginalATSScore)

	// Missing keywords reach the experience and skills prompts
	for _, c := range client.Calls() {
		if strings.Contains(c.Prompt, experienceMarker) || strings.Contains(c.Prompt, skillsMarker) {
			assert.Contains(t, c.Prompt, "Docker, Cloud, CI/CD")
		}
	}
}

func TestRun_Fallbacks(t *testing.T) {
	client := llmtest.New().
		On(summaryMarker, "   ").
		On(experienceMarker, "Here are some ideas for your experience section.").
		On(skillsMarker, `{"soft_skills": ["Teamwork"]}`).
		On(educationMarker, `{"degree": "not a list"}`)

	record := sampleRecord()
	rec := &pipeline.Recorder{}
	got, err := Run(context.Background(), client, record, sampleReport(), pipeline.Options{
		RunOptions: pipeline.RunOptions{Observer: rec.Observe},
	})
	require.NoError(t, err)

	assert.Empty(t, got.ProfessionalSummary)
	assert.Equal(t, record.Experience, got.Experience)
	assert.Equal(t, types.CategorizedSkills{
		TechnicalSkills:   []string{"Python", "JavaScript", "React"},
		SoftSkills:        []string{},
		ToolsTechnologies: []string{},
	}, got.Skills)
	assert.Equal(t, record.Education, got.Education)
	assert.Equal(t, 62, got.EnhancementMetadata.OriginalATSScore)

	assert.ElementsMatch(t, []string{
		StageEnhanceSummary, StageEnhanceExperience, StageEnhanceSkills, StageEnhanceEducation,
	}, rec.Fallbacks())
	assert.Equal(t, pipeline.OutcomeDerived, rec.Outcomes()[StageCompile])
}

func TestRun_FallbackDoesNotAliasInput(t *testing.T) {
	client := llmtest.New().On("", "not json")
	record := sampleRecord()

	got, err := Run(context.Background(), client, record, sampleReport(), pipeline.Options{})
	require.NoError(t, err)

	got.Experience[0].Responsibilities[0] = "changed"
	got.Skills.TechnicalSkills[0] = "changed"
	assert.Equal(t, "Developed web applications", record.Experience[0].Responsibilities[0])
	assert.Equal(t, "Python", record.Skills[0])
}

func TestRun_ConcurrentMatchesSequential(t *testing.T) {
	sequential, err := Run(context.Background(), scriptedSuccess(), sampleRecord(), sampleReport(), pipeline.Options{})
	require.NoError(t, err)

	concurrent, err := Run(context.Background(), scriptedSuccess(), sampleRecord(), sampleReport(), pipeline.Options{
		RunOptions: pipeline.RunOptions{Concurrent: true},
	})
	require.NoError(t, err)

	assert.Equal(t, sequential, concurrent)
}

func TestRun_OracleUnavailable(t *testing.T) {
	failing := llmtest.New().
		Fail(skillsMarker, errors.New("overloaded")).
		On(summaryMarker, "ok").
		On(experienceMarker, "[]").
		On(educationMarker, "[]")

	for _, concurrent := range []bool{false, true} {
		got, err := Run(context.Background(), failing, sampleRecord(), sampleReport(), pipeline.Options{
			RunOptions: pipeline.RunOptions{Concurrent: concurrent},
		})
		require.Error(t, err)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, pipeline.ErrOracleUnavailable)
	}
}

func TestBuild_GroupIsIndependent(t *testing.T) {
	p, err := Build(nil)
	require.NoError(t, err)

	defs := p.Stages()
	require.Len(t, defs, 2)
	assert.Equal(t, GroupGenerate, defs[0].Name)
	assert.ElementsMatch(t, []string{FieldOriginal, FieldReport}, defs[0].Reads)
	assert.ElementsMatch(t, []string{FieldSummary, FieldExperience, FieldSkills, FieldEducation}, defs[0].Writes)
	assert.Equal(t, StageCompile, defs[1].Name)
}
