// Package analysis scores a ResumeRecord for ATS compatibility and produces an ATSReport.
package analysis

import (
	"context"
	"math"

	"github.com/jonathan/resume-ats/internal/contract"
	"github.com/jonathan/resume-ats/internal/llm"
	"github.com/jonathan/resume-ats/internal/pipeline"
	"github.com/jonathan/resume-ats/internal/prompts"
	"github.com/jonathan/resume-ats/internal/types"
	contracts "github.com/jonathan/resume-ats/schemas"
)

// PipelineName identifies the analysis pipeline in events
const PipelineName = "analysis"

// Stage names
const (
	StageAnalyze        = "analyze"
	StageCalculateScore = "calculate_score"
	StageReport         = "report"
)

// State fields
const (
	FieldRecord   = "record"
	FieldDraft    = "draft"
	FieldATSScore = "ats_score"
	FieldReport   = "report"
)

// Fallback literals used when the analysis reply cannot be decoded
const (
	FallbackScore          = 50
	FallbackFormattingNote = "Unable to analyze formatting"
	FallbackSuggestion     = "Review resume structure manually"
)

// Draft holds the findings of the analyze stage
type Draft struct {
	KeywordAnalysis  types.KeywordAnalysis
	FormattingIssues []string
	MissingSections  []string
	Suggestions      []string
}

// State is the pipeline context of one analysis run
type State struct {
	Record   types.ResumeRecord
	Draft    Draft
	ATSScore int
	Report   types.ATSReport
}

// Default model settings per stage
var (
	AnalyzeOptions = llm.GenerateOptions{Tier: llm.TierStandard, Temperature: 0.3}
	ScoreOptions   = llm.GenerateOptions{Tier: llm.TierLite, Temperature: 0.1}
)

// analysisReply is the decoded reply of the analyze stage. A missing ats_score decodes as 0.
type analysisReply struct {
	ATSScore         float64               `json:"ats_score"`
	KeywordAnalysis  types.KeywordAnalysis `json:"keyword_analysis"`
	FormattingIssues []string              `json:"formatting_issues"`
	MissingSections  []string              `json:"missing_sections"`
	Suggestions      []string              `json:"suggestions"`
}

// scoreBasis is what the calculate_score stage shows the LLM
type scoreBasis struct {
	KeywordAnalysis  types.KeywordAnalysis `json:"keyword_analysis"`
	FormattingIssues []string              `json:"formatting_issues"`
	MissingSections  []string              `json:"missing_sections"`
}

var defaultPipeline = MustBuild(nil)

// Build assembles the analysis pipeline with optional per-stage overrides
func Build(tuning pipeline.Tuning) (*pipeline.Pipeline[State], error) {
	analyze := &pipeline.OracleStage[State, analysisReply]{
		Name:   StageAnalyze,
		Reads:  []string{FieldRecord},
		Writes: []string{FieldDraft, FieldATSScore},
		Prompt: func(s *State) (string, error) {
			data, err := prompts.JSON(s.Record)
			if err != nil {
				return "", err
			}
			return prompts.RenderFile(prompts.AnalysisFile, "analyze-ats", map[string]string{"Record": data})
		},
		Options:  tuning.Resolve(StageAnalyze, AnalyzeOptions),
		Contract: contract.JSON[analysisReply]("ats_analysis", contract.Object, contracts.ATSAnalysis),
		Apply: func(s *State, reply analysisReply) {
			s.ATSScore = clampFloatScore(reply.ATSScore)
			reply.KeywordAnalysis.Normalize()
			s.Draft = Draft{
				KeywordAnalysis:  reply.KeywordAnalysis,
				FormattingIssues: types.StringsOrEmpty(reply.FormattingIssues),
				MissingSections:  types.StringsOrEmpty(reply.MissingSections),
				Suggestions:      types.StringsOrEmpty(reply.Suggestions),
			}
		},
		Fallback: func(s *State, _ *contract.Failure) {
			s.ATSScore = FallbackScore
			s.Draft = FallbackDraft()
		},
	}

	calculate := &pipeline.OracleStage[State, int]{
		Name:   StageCalculateScore,
		Reads:  []string{FieldDraft, FieldATSScore},
		Writes: []string{FieldATSScore},
		Prompt: func(s *State) (string, error) {
			data, err := prompts.JSON(scoreBasis{
				KeywordAnalysis:  s.Draft.KeywordAnalysis,
				FormattingIssues: s.Draft.FormattingIssues,
				MissingSections:  s.Draft.MissingSections,
			})
			if err != nil {
				return "", err
			}
			return prompts.RenderFile(prompts.AnalysisFile, "calculate-score", map[string]string{"Analysis": data})
		},
		Options:  tuning.Resolve(StageCalculateScore, ScoreOptions),
		Contract: contract.Score(),
		Apply: func(s *State, score int) {
			s.ATSScore = score
		},
		// Keep the draft score
		Fallback: func(*State, *contract.Failure) {},
	}

	report := &pipeline.DerivedStage[State]{
		Name:   StageReport,
		Reads:  []string{FieldDraft, FieldATSScore},
		Writes: []string{FieldReport},
		Compute: func(s *State) {
			s.Report = BuildReport(s.ATSScore, s.Draft)
		},
	}

	return pipeline.New[State](PipelineName, []string{FieldRecord}, analyze, calculate, report)
}

// MustBuild is like Build but panics on error
func MustBuild(tuning pipeline.Tuning) *pipeline.Pipeline[State] {
	p, err := Build(tuning)
	if err != nil {
		panic(err)
	}
	return p
}

// Run analyzes a record. An error means the LLM was unavailable and no report exists.
func Run(ctx context.Context, client llm.Client, record types.ResumeRecord, opts pipeline.Options) (*types.ATSReport, error) {
	p := defaultPipeline
	if len(opts.Tuning) > 0 {
		var err error
		if p, err = Build(opts.Tuning); err != nil {
			return nil, err
		}
	}

	state := &State{Record: record}
	if err := p.Run(ctx, client, state, opts.RunOptions); err != nil {
		return nil, err
	}

	report := state.Report
	return &report, nil
}

// FallbackDraft is the draft used when the analysis reply cannot be decoded
func FallbackDraft() Draft {
	keywords := types.KeywordAnalysis{}
	keywords.Normalize()
	return Draft{
		KeywordAnalysis:  keywords,
		FormattingIssues: []string{FallbackFormattingNote},
		MissingSections:  []string{},
		Suggestions:      []string{FallbackSuggestion},
	}
}

// BuildReport assembles the final report. Category and summary are derived from the score and draft.
func BuildReport(score int, draft Draft) types.ATSReport {
	score = types.ClampScore(score)
	return types.ATSReport{
		ATSScore:         score,
		ScoreCategory:    ScoreCategory(score),
		KeywordAnalysis:  draft.KeywordAnalysis,
		FormattingIssues: draft.FormattingIssues,
		MissingSections:  draft.MissingSections,
		Suggestions:      draft.Suggestions,
		Summary:          Summarize(score, len(draft.FormattingIssues), len(draft.MissingSections)),
	}
}

func clampFloatScore(f float64) int {
	if math.IsNaN(f) {
		return types.MinScore
	}
	if f <= types.MinScore {
		return types.MinScore
	}
	if f >= types.MaxScore {
		return types.MaxScore
	}
	return int(math.Round(f))
}
