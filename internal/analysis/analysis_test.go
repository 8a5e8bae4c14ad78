package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-ats/internal/llm/llmtest"
	"github.com/jonathan/resume-ats/internal/pipeline"
	"github.com/jonathan/resume-ats/internal/types"
)

const (
	analyzeMarker = "ATS (Applicant Tracking System) compatibility expert"
	scoreMarker   = "calculate a final ATS score"
)

const analysisReplyJSON = `{
  "ats_score": 85,
  "keyword_analysis": {
    "technical_keywords": ["Python", "JavaScript"],
    "soft_skills": ["Leadership"],
    "missing_important_keywords": ["Docker", "Cloud"]
  },
  "formatting_issues": ["Inconsistent date formatting"],
  "missing_sections": ["Professional Summary", "Certifications"],
  "suggestions": ["Add a professional summary"]
}`

func sampleRecord() types.ResumeRecord {
	return types.ResumeRecord{
		Name:   "John Doe",
		Email:  "john.doe@email.com",
		Skills: []string{"Python", "JavaScript"},
		Experience: []types.ExperienceEntry{
			{Title: "Software Engineer", Company: "Tech Corp", Duration: "2020-2023", Responsibilities: []string{"Built web apps"}},
		},
	}
}

func TestRun_Success(t *testing.T) {
	client := llmtest.New().
		On(analyzeMarker, analysisReplyJSON).
		On(scoreMarker, "Final score: 78")

	report, err := Run(context.Background(), client, sampleRecord(), pipeline.Options{})
	require.NoError(t, err)

	assert.Equal(t, 78, report.ATSScore)
	assert.Equal(t, CategoryGood, report.ScoreCategory)
	assert.Equal(t, []string{"Docker", "Cloud"}, report.KeywordAnalysis.MissingImportantKeywords)
	assert.Equal(t, []string{"Professional Summary", "Certifications"}, report.MissingSections)
	assert.Equal(t,
		"Your resume scored 78/100 for ATS compatibility. Your resume has good ATS compatibility with room for improvement. Found 1 formatting issue(s). Missing 2 recommended section(s).",
		report.Summary)

	calls := client.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0].Prompt, "Tech Corp")
	assert.Equal(t, AnalyzeOptions, calls[0].Options)
	assert.Contains(t, calls[1].Prompt, "Inconsistent date formatting")
	assert.NotContains(t, calls[1].Prompt, "Add a professional summary")
	assert.Equal(t, ScoreOptions, calls[1].Options)
}

func TestRun_ScoreStageClamps(t *testing.T) {
	tests := []struct {
		reply string
		want  int
	}{
		{reply: "150", want: 100},
		{reply: "-5", want: 0},
		{reply: "100", want: 100},
		{reply: "0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			client := llmtest.New().On(analyzeMarker, analysisReplyJSON).On(scoreMarker, tt.reply)
			report, err := Run(context.Background(), client, sampleRecord(), pipeline.Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, report.ATSScore)
			assert.Equal(t, ScoreCategory(tt.want), report.ScoreCategory)
		})
	}
}

func TestRun_ScoreStageFallbackKeepsDraftScore(t *testing.T) {
	client := llmtest.New().
		On(analyzeMarker, analysisReplyJSON).
		On(scoreMarker, "I am unable to provide a score.")

	rec := &pipeline.Recorder{}
	report, err := Run(context.Background(), client, sampleRecord(), pipeline.Options{
		RunOptions: pipeline.RunOptions{Observer: rec.Observe},
	})
	require.NoError(t, err)
	assert.Equal(t, 85, report.ATSScore)
	assert.Equal(t, CategoryExcellent, report.ScoreCategory)
	assert.Equal(t, []string{StageCalculateScore}, rec.Fallbacks())
}

func TestRun_DraftScoreClamped(t *testing.T) {
	client := llmtest.New().
		On(analyzeMarker, `{"ats_score": 240.5}`).
		On(scoreMarker, "no score")

	report, err := Run(context.Background(), client, sampleRecord(), pipeline.Options{})
	require.NoError(t, err)
	assert.Equal(t, 100, report.ATSScore)
	assert.Equal(t, []string{}, report.FormattingIssues)
	assert.Equal(t, []string{}, report.KeywordAnalysis.TechnicalKeywords)
}

// A reply without ats_score keeps its findings; the draft score defaults to 0.
func TestRun_AnalysisWithoutScore(t *testing.T) {
	reply := `{"keyword_analysis": {"technical_keywords": ["Go"]}, "missing_sections": ["Summary"], "suggestions": ["Add a summary"]}`

	tests := []struct {
		name       string
		scoreReply string
		want       int
	}{
		{name: "score stage rescores", scoreReply: "64", want: 64},
		{name: "score stage unparseable", scoreReply: "cannot tell", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := llmtest.New().
				On(analyzeMarker, reply).
				On(scoreMarker, tt.scoreReply)

			rec := &pipeline.Recorder{}
			report, err := Run(context.Background(), client, sampleRecord(), pipeline.Options{
				RunOptions: pipeline.RunOptions{Observer: rec.Observe},
			})
			require.NoError(t, err)

			assert.Equal(t, tt.want, report.ATSScore)
			assert.Equal(t, []string{"Go"}, report.KeywordAnalysis.TechnicalKeywords)
			assert.Equal(t, []string{}, report.KeywordAnalysis.SoftSkills)
			assert.Equal(t, []string{"Summary"}, report.MissingSections)
			assert.Equal(t, []string{"Add a summary"}, report.Suggestions)
			assert.Equal(t, []string{}, report.FormattingIssues)
			assert.Equal(t, pipeline.OutcomeSuccess, rec.Outcomes()[StageAnalyze])
		})
	}
}

// Every stage receives unparseable text: the documented fallback literals come through unchanged.
func TestRun_AnalysisFallbackLiterals(t *testing.T) {
	client := llmtest.New().On("", "<<< this is not json >>>")

	rec := &pipeline.Recorder{}
	report, err := Run(context.Background(), client, sampleRecord(), pipeline.Options{
		RunOptions: pipeline.RunOptions{Observer: rec.Observe},
	})
	require.NoError(t, err)

	assert.Equal(t, &types.ATSReport{
		ATSScore:      50,
		ScoreCategory: CategoryFair,
		KeywordAnalysis: types.KeywordAnalysis{
			TechnicalKeywords:        []string{},
			SoftSkills:               []string{},
			MissingImportantKeywords: []string{},
		},
		FormattingIssues: []string{"Unable to analyze formatting"},
		MissingSections:  []string{},
		Suggestions:      []string{"Review resume structure manually"},
		Summary:          "Your resume scored 50/100 for ATS compatibility. Your resume needs some improvements for reliable ATS parsing. Found 1 formatting issue(s).",
	}, report)

	assert.Equal(t, map[string]pipeline.Outcome{
		StageAnalyze:        pipeline.OutcomeFallback,
		StageCalculateScore: pipeline.OutcomeFallback,
		StageReport:         pipeline.OutcomeDerived,
	}, rec.Outcomes())
}

// A record with nothing in it yields a poor report.
func TestRun_EmptyRecordScoresPoor(t *testing.T) {
	client := llmtest.New().
		On(analyzeMarker, `{"ats_score": 12, "missing_sections": ["Experience", "Education", "Skills", "Contact"]}`).
		On(scoreMarker, "15")

	empty := types.ResumeRecord{}
	empty.Normalize()
	report, err := Run(context.Background(), client, empty, pipeline.Options{})
	require.NoError(t, err)
	assert.Less(t, report.ATSScore, 40)
	assert.Equal(t, CategoryPoor, report.ScoreCategory)
}

func TestRun_OracleUnavailable(t *testing.T) {
	client := llmtest.New().On(analyzeMarker, analysisReplyJSON).Fail(scoreMarker, errors.New("quota"))

	report, err := Run(context.Background(), client, sampleRecord(), pipeline.Options{})
	require.Error(t, err)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, pipeline.ErrOracleUnavailable)

	var oracleErr *pipeline.OracleUnavailableError
	require.ErrorAs(t, err, &oracleErr)
	assert.Equal(t, PipelineName, oracleErr.Pipeline)
	assert.Equal(t, StageCalculateScore, oracleErr.Stage)
}

func TestScoreCategory_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, CategoryExcellent},
		{80, CategoryExcellent},
		{79, CategoryGood},
		{60, CategoryGood},
		{59, CategoryFair},
		{40, CategoryFair},
		{39, CategoryPoor},
		{0, CategoryPoor},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreCategory(tt.score), "score %d", tt.score)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		score   int
		issues  int
		missing int
		want    string
	}{
		{
			name:  "excellent no issues",
			score: 92,
			want:  "Your resume scored 92/100 for ATS compatibility. Your resume is well-optimized for ATS systems!",
		},
		{
			name:    "poor with issues",
			score:   20,
			issues:  3,
			missing: 1,
			want:    "Your resume scored 20/100 for ATS compatibility. Your resume needs significant improvements for better ATS compatibility. Found 3 formatting issue(s). Missing 1 recommended section(s).",
		},
		{
			name:    "missing only",
			score:   65,
			missing: 2,
			want:    "Your resume scored 65/100 for ATS compatibility. Your resume has good ATS compatibility with room for improvement. Missing 2 recommended section(s).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.score, tt.issues, tt.missing))
		})
	}
}

func TestBuildReport_ClampsScore(t *testing.T) {
	report := BuildReport(130, FallbackDraft())
	assert.Equal(t, 100, report.ATSScore)
	assert.Equal(t, CategoryExcellent, report.ScoreCategory)
}

func TestClampFloatScore(t *testing.T) {
	assert.Equal(t, 0, clampFloatScore(-3))
	assert.Equal(t, 73, clampFloatScore(72.6))
	assert.Equal(t, 100, clampFloatScore(1e300))
}
