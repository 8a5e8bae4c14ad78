package pipeline

import "github.com/jonathan/resume-ats/internal/llm"

// Override replaces parts of a stage's default generation options.
// Zero fields keep the default.
type Override struct {
	Tier        llm.ModelTier
	Temperature *float32
}

// Tuning overrides the model tier and temperature of stages by stage name
type Tuning map[string]Override

// Resolve returns def with the override for stage applied
func (t Tuning) Resolve(stage string, def llm.GenerateOptions) llm.GenerateOptions {
	o, ok := t[stage]
	if !ok {
		return def
	}
	if o.Tier != "" {
		def.Tier = o.Tier
	}
	if o.Temperature != nil {
		def.Temperature = *o.Temperature
	}
	return def
}

// Temperature returns a pointer for use in an Override
func Temperature(v float32) *float32 {
	return &v
}

// Options configures one invocation of a concrete pipeline
type Options struct {
	RunOptions
	// Tuning rebuilds the pipeline with per-stage model overrides when non-empty
	Tuning Tuning
}
