package pipeline

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-ats/internal/logger"
)

// maxReasonLength bounds the failure reason attached to log entries
const maxReasonLength = 300

// Phase marks the start or end of a stage
type Phase string

// Phases
const (
	PhaseStarted  Phase = "started"
	PhaseFinished Phase = "finished"
)

// Event is emitted at every stage boundary
type Event struct {
	RunID    string        `json:"run_id"`
	Pipeline string        `json:"pipeline"`
	Stage    string        `json:"stage"`
	Category string        `json:"category"`
	Phase    Phase         `json:"phase"`
	Outcome  Outcome       `json:"outcome,omitempty"`
	Reason   string        `json:"reason,omitempty"`
	Duration time.Duration `json:"duration_ns,omitempty"`
	Index    int           `json:"index"`
	Total    int           `json:"total"`
}

// Observer receives stage events. Calls may be concurrent when a group runs concurrently.
type Observer func(event Event)

// Observers fans an event out to every non-nil observer in order
func Observers(observers ...Observer) Observer {
	return func(event Event) {
		for _, o := range observers {
			if o != nil {
				o(event)
			}
		}
	}
}

// LogObserver logs finished stages: info on success, warn on fallback with the contract failure
// reason and error on failure. Stage starts are logged at debug level.
func LogObserver(log *zap.Logger) Observer {
	return func(event Event) {
		fields := []zap.Field{
			zap.String("run_id", event.RunID),
			zap.String("pipeline", event.Pipeline),
			zap.String("stage", event.Stage),
			zap.Int("index", event.Index),
			zap.Int("total", event.Total),
		}

		if event.Phase == PhaseStarted {
			log.Debug("stage started", fields...)
			return
		}

		fields = append(fields,
			zap.String("outcome", string(event.Outcome)),
			zap.Duration("duration", event.Duration),
		)
		switch event.Outcome {
		case OutcomeFallback:
			log.Warn("stage fell back", append(fields, zap.String("reason", logger.Truncate(event.Reason, maxReasonLength)))...)
		case OutcomeFailed:
			log.Error("stage failed", append(fields, zap.String("reason", logger.Truncate(event.Reason, maxReasonLength)))...)
		default:
			log.Info("stage finished", fields...)
		}
	}
}

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// ProgressObserver adapts a ProgressCallback to finished-stage events
func ProgressObserver(cb ProgressCallback) Observer {
	return func(event Event) {
		if cb == nil || event.Phase != PhaseFinished {
			return
		}
		message := event.Pipeline + ": " + event.Stage + " " + string(event.Outcome)
		if event.Reason != "" {
			message += " (" + event.Reason + ")"
		}
		cb(ProgressEvent{
			Step:     event.Stage,
			Category: event.Category,
			Message:  message,
			RunID:    event.RunID,
		})
	}
}

// Recorder collects events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Observe records an event. Pass r.Observe as an Observer.
func (r *Recorder) Observe(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Outcomes maps stage name to outcome for every finished stage
func (r *Recorder) Outcomes() map[string]Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Outcome)
	for _, e := range r.events {
		if e.Phase == PhaseFinished {
			out[e.Stage] = e.Outcome
		}
	}
	return out
}

// Fallbacks returns the names of stages that fell back, in completion order
func (r *Recorder) Fallbacks() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		if e.Phase == PhaseFinished && e.Outcome == OutcomeFallback {
			out = append(out, e.Stage)
		}
	}
	return out
}
