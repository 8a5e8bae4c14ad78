// Package extraction turns raw resume text into a structured ResumeRecord with an advisory
// validation label.
package extraction

import (
	"context"

	"github.com/jonathan/resume-ats/internal/contract"
	"github.com/jonathan/resume-ats/internal/llm"
	"github.com/jonathan/resume-ats/internal/pipeline"
	"github.com/jonathan/resume-ats/internal/prompts"
	"github.com/jonathan/resume-ats/internal/types"
	contracts "github.com/jonathan/resume-ats/schemas"
)

// PipelineName identifies the extraction pipeline in events
const PipelineName = "extraction"

// Stage names
const (
	StageStructure = "structure"
	StageValidate  = "validate"
)

// State fields
const (
	FieldResumeText = "resume_text"
	FieldRecord     = "record"
	FieldValidation = "validation"
)

// State is the pipeline context of one extraction run
type State struct {
	ResumeText string
	Record     types.ResumeRecord
	Validation types.Validation
}

// Default model settings per stage
var (
	StructureOptions = llm.GenerateOptions{Tier: llm.TierStandard, Temperature: 0.1}
	ValidateOptions  = llm.GenerateOptions{Tier: llm.TierLite, Temperature: 0.1}
)

var defaultPipeline = MustBuild(nil)

// Build assembles the extraction pipeline with optional per-stage overrides
func Build(tuning pipeline.Tuning) (*pipeline.Pipeline[State], error) {
	structure := &pipeline.OracleStage[State, types.ResumeRecord]{
		Name:   StageStructure,
		Reads:  []string{FieldResumeText},
		Writes: []string{FieldRecord},
		Prompt: func(s *State) (string, error) {
			return prompts.RenderFile(prompts.ExtractionFile, "structure-resume", map[string]string{
				"ResumeText": s.ResumeText,
			})
		},
		Options:  tuning.Resolve(StageStructure, StructureOptions),
		Contract: contract.JSON[types.ResumeRecord]("resume_record", contract.Object, contracts.ResumeRecord),
		Apply: func(s *State, record types.ResumeRecord) {
			record.RawOutput = ""
			record.Normalize()
			s.Record = record
		},
		Fallback: func(s *State, failure *contract.Failure) {
			record := types.ResumeRecord{RawOutput: failure.Raw}
			record.Normalize()
			s.Record = record
		},
	}

	validate := &pipeline.OracleStage[State, contract.Labeled]{
		Name:   StageValidate,
		Reads:  []string{FieldRecord},
		Writes: []string{FieldValidation},
		Prompt: func(s *State) (string, error) {
			data, err := prompts.JSON(s.Record)
			if err != nil {
				return "", err
			}
			return prompts.RenderFile(prompts.ExtractionFile, "validate-resume", map[string]string{"Record": data})
		},
		Options:  tuning.Resolve(StageValidate, ValidateOptions),
		Contract: contract.Label(string(types.ValidationValid), string(types.ValidationInvalid)),
		Apply: func(s *State, labeled contract.Labeled) {
			s.Validation = types.Validation{
				Status: types.ValidationStatus(labeled.Label),
				Reason: labeled.Detail,
			}
		},
		Fallback: func(s *State, failure *contract.Failure) {
			s.Validation = types.Validation{
				Status: types.ValidationInvalid,
				Reason: "validator gave no VALID/INVALID verdict: " + failure.Reason,
			}
		},
	}

	return pipeline.New[State](PipelineName, []string{FieldResumeText}, structure, validate)
}

// MustBuild is like Build but panics on error
func MustBuild(tuning pipeline.Tuning) *pipeline.Pipeline[State] {
	p, err := Build(tuning)
	if err != nil {
		panic(err)
	}
	return p
}

// Run extracts a ResumeRecord from resume text. The validation label is advisory and never
// blocks the caller. An error means the LLM was unavailable and nothing is returned.
func Run(ctx context.Context, client llm.Client, text string, opts pipeline.Options) (*types.Extraction, error) {
	p := defaultPipeline
	if len(opts.Tuning) > 0 {
		var err error
		if p, err = Build(opts.Tuning); err != nil {
			return nil, err
		}
	}

	state := &State{ResumeText: text}
	if err := p.Run(ctx, client, state, opts.RunOptions); err != nil {
		return nil, err
	}

	return &types.Extraction{
		Record:     state.Record,
		Validation: state.Validation,
	}, nil
}
