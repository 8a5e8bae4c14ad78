package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-ats/internal/llm"
)

// RunOptions holds configuration for a single run
type RunOptions struct {
	// RunID correlates events; a random UUID is used when empty
	RunID string
	// Observer receives stage events
	Observer Observer
	// Concurrent lets groups run their members concurrently
	Concurrent bool
	// OracleTimeout bounds each LLM call; a timed out call aborts the run like any other oracle failure
	OracleTimeout time.Duration
}

// Pipeline is a validated, ordered list of stages over state S
type Pipeline[S any] struct {
	name   string
	stages []Stage[S]
	total  int
}

// New validates the stage list and builds a pipeline.
// inputs names the state fields populated before the run starts. Every field a stage reads
// must be an input or be written by an earlier stage.
func New[S any](name string, inputs []string, stages ...Stage[S]) (*Pipeline[S], error) {
	if len(stages) == 0 {
		return nil, &DefinitionError{Pipeline: name, Message: "no stages"}
	}

	available := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		available[in] = true
	}
	names := make(map[string]bool)
	total := 0

	checkName := func(stage string) error {
		if stage == "" {
			return &DefinitionError{Pipeline: name, Message: "stage without a name"}
		}
		if names[stage] {
			return &DefinitionError{Pipeline: name, Stage: stage, Message: "duplicate stage name"}
		}
		names[stage] = true
		return nil
	}

	for _, st := range stages {
		def := st.Definition()
		if err := checkName(def.Name); err != nil {
			return nil, err
		}

		group, isGroup := st.(*Group[S])
		if !isGroup {
			if missing := missingReads(def.Reads, available); len(missing) > 0 {
				return nil, &DefinitionError{Pipeline: name, Stage: def.Name, Message: "reads fields not yet written", Fields: missing}
			}
			for _, w := range def.Writes {
				available[w] = true
			}
			total++
			continue
		}

		if len(group.Stages) == 0 {
			return nil, &DefinitionError{Pipeline: name, Stage: def.Name, Message: "empty group"}
		}

		writers := make(map[string]string)
		for _, member := range group.Stages {
			md := member.Definition()
			if _, nested := member.(*Group[S]); nested {
				return nil, &DefinitionError{Pipeline: name, Stage: md.Name, Message: "nested groups are not supported"}
			}
			if err := checkName(md.Name); err != nil {
				return nil, err
			}
			for _, w := range md.Writes {
				if other, dup := writers[w]; dup {
					return nil, &DefinitionError{Pipeline: name, Stage: md.Name, Message: "writes a field also written by group member " + other, Fields: []string{w}}
				}
				writers[w] = md.Name
			}
		}

		for _, member := range group.Stages {
			md := member.Definition()
			for _, r := range md.Reads {
				if writer, ok := writers[r]; ok && writer != md.Name {
					return nil, &DefinitionError{Pipeline: name, Stage: md.Name, Message: "reads a field written by group member " + writer, Fields: []string{r}}
				}
			}
			if missing := missingReads(md.Reads, available); len(missing) > 0 {
				return nil, &DefinitionError{Pipeline: name, Stage: md.Name, Message: "reads fields not yet written", Fields: missing}
			}
		}

		for w := range writers {
			available[w] = true
		}
		total += len(group.Stages)
	}

	return &Pipeline[S]{name: name, stages: stages, total: total}, nil
}

// MustNew is like New but panics on an invalid definition. Use it for package-level pipelines.
func MustNew[S any](name string, inputs []string, stages ...Stage[S]) *Pipeline[S] {
	p, err := New(name, inputs, stages...)
	if err != nil {
		panic(err)
	}
	return p
}

// Name returns the pipeline name
func (p *Pipeline[S]) Name() string {
	return p.name
}

// Stages returns the definitions of the top-level stages in order
func (p *Pipeline[S]) Stages() []Definition {
	defs := make([]Definition, len(p.stages))
	for i, st := range p.stages {
		defs[i] = st.Definition()
	}
	return defs
}

// Run executes every stage in order against state. Contract failures are absorbed by stage
// fallbacks; an oracle failure aborts the run with an *OracleUnavailableError, after which
// state must be discarded.
func (p *Pipeline[S]) Run(ctx context.Context, client llm.Client, state *S, opts RunOptions) error {
	r := &run[S]{
		pipeline: p,
		client:   client,
		opts:     opts,
	}
	if r.opts.RunID == "" {
		r.opts.RunID = uuid.NewString()
	}

	index := 0
	for _, st := range p.stages {
		if group, ok := st.(*Group[S]); ok {
			if err := r.runGroup(ctx, group, state, index); err != nil {
				return err
			}
			index += len(group.Stages)
			continue
		}

		index++
		if err := r.runStage(ctx, st, state, index); err != nil {
			return err
		}
	}
	return nil
}

type run[S any] struct {
	pipeline *Pipeline[S]
	client   llm.Client
	opts     RunOptions
}

func (r *run[S]) runGroup(ctx context.Context, group *Group[S], state *S, offset int) error {
	if !r.opts.Concurrent {
		for i, member := range group.Stages {
			if err := r.runStage(ctx, member, state, offset+i+1); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, member := range group.Stages {
		g.Go(func() error {
			return r.runStage(gctx, member, state, offset+i+1)
		})
	}
	return g.Wait()
}

func (r *run[S]) runStage(ctx context.Context, st Stage[S], state *S, index int) error {
	def := st.Definition()
	event := Event{
		RunID:    r.opts.RunID,
		Pipeline: r.pipeline.name,
		Stage:    def.Name,
		Category: def.Category,
		Index:    index,
		Total:    r.pipeline.total,
	}
	r.emit(event, PhaseStarted)

	stageCtx := ctx
	if r.opts.OracleTimeout > 0 && def.Category == CategoryOracle {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, r.opts.OracleTimeout)
		defer cancel()
	}

	start := time.Now()
	report, err := st.Execute(stageCtx, r.client, state)
	event.Duration = time.Since(start)

	if err != nil {
		var oracleErr *OracleUnavailableError
		if errors.As(err, &oracleErr) && oracleErr.Pipeline == "" {
			oracleErr.Pipeline = r.pipeline.name
		}
		event.Outcome = OutcomeFailed
		event.Reason = err.Error()
		r.emit(event, PhaseFinished)
		if oracleErr != nil {
			return err
		}
		return fmt.Errorf("pipeline %s: %w", r.pipeline.name, err)
	}

	event.Outcome = report.Outcome
	event.Reason = report.Reason
	r.emit(event, PhaseFinished)
	return nil
}

func (r *run[S]) emit(event Event, phase Phase) {
	if r.opts.Observer == nil {
		return
	}
	event.Phase = phase
	r.opts.Observer(event)
}

func missingReads(reads []string, available map[string]bool) []string {
	var missing []string
	for _, r := range reads {
		if !available[r] {
			missing = append(missing, r)
		}
	}
	return missing
}
