package extraction

import (
	"context"

	"github.com/jonathan/resume-ats/internal/contract"
	"github.com/jonathan/resume-ats/internal/llm"
	"github.com/jonathan/resume-ats/internal/pipeline"
	"github.com/jonathan/resume-ats/internal/prompts"
)

// ClassifierName identifies the classification pipeline in events
const ClassifierName = "classification"

// StageClassify is the single classification stage
const StageClassify = "classify"

// ClassifyLimit is how many characters of the document the classifier sees
const ClassifyLimit = 2000

// Classification state fields
const (
	FieldDocumentText = "document_text"
	FieldIsResume     = "is_resume"
)

// ClassifyOptions are the default model settings of the classifier
var ClassifyOptions = llm.GenerateOptions{Tier: llm.TierLite, Temperature: 0}

// ClassifyState is the pipeline context of one classification run
type ClassifyState struct {
	Text     string
	IsResume bool
}

var defaultClassifier = MustBuildClassifier(nil)

// BuildClassifier assembles the single-stage classification pipeline
func BuildClassifier(tuning pipeline.Tuning) (*pipeline.Pipeline[ClassifyState], error) {
	classify := &pipeline.OracleStage[ClassifyState, contract.Labeled]{
		Name:   StageClassify,
		Reads:  []string{FieldDocumentText},
		Writes: []string{FieldIsResume},
		Prompt: func(s *ClassifyState) (string, error) {
			return prompts.RenderFile(prompts.ExtractionFile, "classify-resume", map[string]string{
				"Text": Head(s.Text, ClassifyLimit),
			})
		},
		Options:  tuning.Resolve(StageClassify, ClassifyOptions),
		Contract: contract.Label("YES", "NO"),
		Apply: func(s *ClassifyState, labeled contract.Labeled) {
			s.IsResume = labeled.Label == "YES"
		},
		// An unclear answer must not block a real resume
		Fallback: func(s *ClassifyState, _ *contract.Failure) {
			s.IsResume = true
		},
	}

	return pipeline.New[ClassifyState](ClassifierName, []string{FieldDocumentText}, classify)
}

// MustBuildClassifier is like BuildClassifier but panics on error
func MustBuildClassifier(tuning pipeline.Tuning) *pipeline.Pipeline[ClassifyState] {
	p, err := BuildClassifier(tuning)
	if err != nil {
		panic(err)
	}
	return p
}

// Classify reports whether text looks like a resume, judging only its first ClassifyLimit characters.
func Classify(ctx context.Context, client llm.Client, text string, opts pipeline.Options) (bool, error) {
	p := defaultClassifier
	if len(opts.Tuning) > 0 {
		var err error
		if p, err = BuildClassifier(opts.Tuning); err != nil {
			return false, err
		}
	}

	state := &ClassifyState{Text: text}
	if err := p.Run(ctx, client, state, opts.RunOptions); err != nil {
		return false, err
	}
	return state.IsResume, nil
}

// Head returns the first n characters (runes) of s
func Head(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
