package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/aspectswrl/internal/builtin"
	"github.com/roach88/aspectswrl/internal/compiler"
	"github.com/roach88/aspectswrl/internal/engine"
	"github.com/roach88/aspectswrl/internal/ir"
	"github.com/roach88/aspectswrl/internal/memstore"
	"github.com/roach88/aspectswrl/internal/testutil"
)

// Harness is the scenario execution engine.
// It runs scenarios against a fresh in-memory ontology with deterministic
// entity names and a deterministic trace clock.
type Harness struct {
	store  *memstore.Store
	lib    *builtin.Library
	eval   *engine.Evaluator
	clock  *engine.Clock
	ids    *testutil.SequenceGenerator
	logger *slog.Logger
	base   string
	result *Result

	// current step, read by the evaluator observer
	step  int
	rule  string
	atoms []AtomSpec
}

// Option configures a scenario run.
type Option func(*runConfig)

type runConfig struct {
	logger    *slog.Logger
	maxFrames int
}

// WithLogger sets the logger for the built-ins and the evaluator.
// Default: a logger that discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMaxFrames sets the evaluator's frame quota for rule steps.
func WithMaxFrames(n int) Option {
	return func(c *runConfig) {
		c.maxFrames = n
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory ontology for isolation.
//
// Execution flow:
//  1. Compile the fixture and load it
//  2. Parse the initial bindings
//  3. Run each flow step against every binding frame, checking expect clauses
//  4. Evaluate assertions against the final trace and ontology
//
// Returns an error only when the scenario cannot be set up. Failed
// expectations and assertions are reported in Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return RunContext(context.Background(), scenario, opts...)
}

// RunContext is Run with a caller-supplied context.
func RunContext(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxFrames: engine.DefaultMaxFrames,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ont, err := compiler.CompileFile(scenario.Fixture)
	if err != nil {
		return nil, fmt.Errorf("compile fixture: %w", err)
	}

	h := newHarness(ont, scenario.IDs, cfg)
	if err := ont.Load(ctx, h.store, h.store); err != nil {
		return nil, err
	}

	initial, err := h.parseBindings(scenario.Bindings)
	if err != nil {
		return nil, fmt.Errorf("initial bindings: %w", err)
	}

	frames := h.executeFlow(ctx, scenario.Flow, initial.Branches())

	result := h.result
	result.store = h.store
	result.base = h.base
	for _, f := range frames {
		result.Frames = append(result.Frames, f.Map(h.base))
	}

	actx := &AssertionContext{Ctx: ctx, Store: h.store, Base: h.base, Frames: frames}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"pass", result.Pass,
		"invocations", len(result.Trace),
		"axioms", h.store.Len(),
	)
	return result, nil
}

func newHarness(ont *compiler.Ontology, ids []string, cfg runConfig) *Harness {
	h := &Harness{
		store:  memstore.New(ont.IRI),
		clock:  engine.NewClock(),
		ids:    testutil.NewSequenceGenerator("id", ids...),
		logger: cfg.logger,
		base:   ont.IRI,
		result: NewResult(),
	}
	h.lib = builtin.New(h.store, h.store,
		builtin.WithIDGenerator(h.ids),
		builtin.WithLogger(cfg.logger),
	)
	h.eval = engine.NewEvaluator(h.lib,
		engine.WithLogger(cfg.logger),
		engine.WithMaxFrames(cfg.maxFrames),
		engine.WithObserver(h.observe),
	)

	return h
}

func (h *Harness) parseBindings(in map[string]string) (*engine.Bindings, error) {
	b := engine.NewBindings()
	for _, name := range slices.Sorted(maps.Keys(in)) {
		arg, err := builtin.ParseArgument(in[name], h.base)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		v, ok := arg.(builtin.Value)
		if !ok {
			return nil, fmt.Errorf("%s: %q is not a value", name, in[name])
		}
		b.Bind(name, v.Entity)
	}
	return b, nil
}

// executeFlow runs the flow steps in order and returns the surviving frames.
// An unexpected error aborts the rest of the flow.
func (h *Harness) executeFlow(ctx context.Context, flow []FlowStep, frames []*engine.Bindings) []*engine.Bindings {
	for i, step := range flow {
		h.step = i

		var (
			next []*engine.Bindings
			ok   bool
			err  error
		)
		if step.Invoke != "" {
			next, ok, err = h.invoke(ctx, step, frames)
		} else {
			next, ok, err = h.evalRule(ctx, step, frames)
		}

		if err != nil {
			if !h.expectError(i, step.Expect, err) {
				return frames
			}
			// Built-ins bind into copies of the frames, so the frames carry
			// over as they were. Store commits made before the error remain.
			continue
		}
		h.checkExpect(i, step.Expect, ok, next)
		frames = next
	}
	return frames
}

// invoke calls a single built-in once per frame. It returns the frames in
// which the call succeeded, expanded over any multi-valued bindings.
func (h *Harness) invoke(ctx context.Context, step FlowStep, frames []*engine.Bindings) ([]*engine.Bindings, bool, error) {
	args, err := builtin.ParseArguments(step.Args, h.base)
	if err != nil {
		return nil, false, fmt.Errorf("flow[%d]: %w", h.step, err)
	}

	var (
		next    []*engine.Bindings
		matched bool
	)
	for _, in := range frames {
		frame := in.Clone()
		ok, err := h.lib.Invoke(ctx, step.Invoke, builtin.Call{
			Rule:     fmt.Sprintf("step%d", h.step),
			Args:     args,
			Bindings: frame,
		})

		ev := TraceEvent{
			Seq:     h.clock.Next(),
			Step:    h.step,
			BuiltIn: step.Invoke,
			Args:    slices.Clone(step.Args),
		}
		switch {
		case err != nil:
			ev.Outcome = "error:" + errorCode(err)
		case ok:
			ev.Outcome = OutcomeTrue
		default:
			ev.Outcome = OutcomeFalse
		}
		if err == nil {
			ev.Bindings = frame.Map(h.base)
			ev.Multi = h.multi(frame)
		}
		h.result.AddTrace(ev)

		if err != nil {
			return nil, false, err
		}
		if !ok {
			continue
		}
		matched = true
		next = append(next, frame.Branches()...)
	}
	return next, matched, nil
}

// evalRule evaluates a rule body once per frame with the engine evaluator.
func (h *Harness) evalRule(ctx context.Context, step FlowStep, frames []*engine.Bindings) ([]*engine.Bindings, bool, error) {
	rule := engine.Rule{Name: step.Rule}
	for j, a := range step.Body {
		args, err := builtin.ParseArguments(a.Args, h.base)
		if err != nil {
			return nil, false, fmt.Errorf("flow[%d].body[%d]: %w", h.step, j, err)
		}
		rule.Atoms = append(rule.Atoms, engine.Atom{BuiltIn: a.BuiltIn, Args: args})
	}

	h.rule = step.Rule
	h.atoms = step.Body
	defer func() {
		h.rule = ""
		h.atoms = nil
	}()

	var next []*engine.Bindings
	for _, frame := range frames {
		out, err := h.eval.Eval(ctx, rule, frame)
		if err != nil {
			return nil, false, err
		}
		next = append(next, out...)
	}
	return next, len(next) > 0, nil
}

// observe records evaluator steps in the trace.
func (h *Harness) observe(s engine.Step) {
	ev := TraceEvent{
		Seq:     h.clock.Next(),
		Step:    h.step,
		Rule:    h.rule,
		BuiltIn: s.BuiltIn,
		Args:    []string{},
	}
	if s.Atom >= 1 && s.Atom <= len(h.atoms) {
		ev.Args = slices.Clone(h.atoms[s.Atom-1].Args)
	}
	switch {
	case s.Err != nil:
		ev.Outcome = "error:" + errorCode(s.Err)
	case s.Result:
		ev.Outcome = OutcomeTrue
	default:
		ev.Outcome = OutcomeFalse
	}
	h.result.AddTrace(ev)
}

func (h *Harness) multi(frame *engine.Bindings) map[string][]string {
	names := frame.MultiNames()
	if len(names) == 0 {
		return nil
	}
	out := make(map[string][]string, len(names))
	for _, name := range names {
		vs, _ := frame.Multi(name)
		rendered := make([]string, len(vs))
		for i, v := range vs {
			rendered[i] = builtin.FormatEntity(v, h.base)
		}
		out[name] = rendered
	}
	return out
}

// expectError reports whether err was expected by the step, recording a
// failure when it was not.
func (h *Harness) expectError(i int, expect *ExpectClause, err error) bool {
	code := errorCode(err)
	if expect == nil || expect.Error == "" {
		h.result.AddError(fmt.Sprintf("flow[%d]: unexpected error: %v", i, err))
		return false
	}
	if expect.Error != code {
		h.result.AddError(fmt.Sprintf("flow[%d]: expected error %s, got %s: %v", i, expect.Error, code, err))
	}
	return true
}

func (h *Harness) checkExpect(i int, expect *ExpectClause, ok bool, frames []*engine.Bindings) {
	if expect == nil {
		return
	}
	if expect.Error != "" {
		h.result.AddError(fmt.Sprintf("flow[%d]: expected error %s, step succeeded", i, expect.Error))
		return
	}
	if expect.Result != nil && *expect.Result != ok {
		h.result.AddError(fmt.Sprintf("flow[%d]: expected result %t, got %t", i, *expect.Result, ok))
	}
	if expect.Frames != nil && *expect.Frames != len(frames) {
		h.result.AddError(fmt.Sprintf("flow[%d]: expected %d frames, got %d", i, *expect.Frames, len(frames)))
	}
	if len(expect.Bindings) == 0 {
		return
	}
	if len(frames) != 1 {
		h.result.AddError(fmt.Sprintf("flow[%d]: bindings expectation needs exactly one frame, got %d", i, len(frames)))
		return
	}
	got := frames[0].Map(h.base)
	for _, name := range slices.Sorted(maps.Keys(expect.Bindings)) {
		want := expect.Bindings[name]
		v, bound := got[name]
		switch {
		case !bound:
			h.result.AddError(fmt.Sprintf("flow[%d]: expected %s = %s, unbound", i, name, want))
		case v != want:
			h.result.AddError(fmt.Sprintf("flow[%d]: expected %s = %s, got %s", i, name, want, v))
		}
	}
}

// errorCode classifies err for traces and expect clauses.
func errorCode(err error) string {
	if code := builtin.CodeOf(err); code != "" {
		return string(code)
	}
	var re *engine.RuntimeError
	if errors.As(err, &re) {
		return string(re.Code)
	}
	return "ERROR"
}

// Axioms returns the final ontology's axioms in functional syntax, in
// insertion order.
func (r *Result) Axioms() ([]string, error) {
	if r.store == nil {
		return nil, nil
	}
	axioms, err := r.store.Axioms()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(axioms))
	for i, ax := range axioms {
		out[i] = ir.FunctionalSyntax(ax, r.base)
	}
	return out, nil
}
