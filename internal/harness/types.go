package harness

import "github.com/roach88/aspectswrl/internal/memstore"

// Trace event outcomes.
const (
	OutcomeTrue  = "true"
	OutcomeFalse = "false"
)

// TraceEvent records one built-in invocation against one binding frame.
type TraceEvent struct {
	Seq int64 `json:"seq"`

	// Step is the 0-based index of the flow step.
	Step int `json:"step"`

	// Rule is the rule name; empty for invoke steps.
	Rule string `json:"rule,omitempty"`

	BuiltIn string   `json:"builtin"`
	Args    []string `json:"args"`

	// Outcome is "true", "false" or "error:<CODE>".
	Outcome string `json:"outcome"`

	// Bindings are the frame's single-valued bindings after the call.
	// Only recorded for invoke steps.
	Bindings map[string]string `json:"bindings,omitempty"`

	// Multi are the multi-valued bindings the call produced.
	Multi map[string][]string `json:"multi,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions hold.
	Pass bool `json:"pass"`

	// Trace contains every built-in invocation in order.
	Trace []TraceEvent `json:"trace"`

	// Frames are the surviving binding frames after the last step.
	Frames []map[string]string `json:"frames"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	store *memstore.Store
	base  string
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Frames: []map[string]string{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends an event to the trace.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
