package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/aspectswrl/internal/builtin"
)

// Invoker runs a named built-in. *builtin.Library implements it.
type Invoker interface {
	Invoke(ctx context.Context, name string, call builtin.Call) (bool, error)
}

// Atom is one built-in atom of a rule body.
type Atom struct {
	BuiltIn string
	Args    []builtin.Argument
}

// Rule is a named conjunction of built-in atoms.
type Rule struct {
	Name  string
	Atoms []Atom
}

// Step records one built-in invocation for tracing.
type Step struct {
	Seq     int64
	Atom    int // 1-based
	BuiltIn string
	Result  bool
	Err     error
}

// Evaluator evaluates rule bodies against an Invoker.
type Evaluator struct {
	lib       Invoker
	logger    *slog.Logger
	clock     *Clock
	maxFrames int
	observer  func(Step)
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// WithMaxFrames sets the frame quota per rule.
//
// Default: 10000 frames (DefaultMaxFrames)
func WithMaxFrames(n int) EvaluatorOption {
	return func(e *Evaluator) {
		e.maxFrames = n
	}
}

// WithObserver registers fn to be called after every built-in invocation.
func WithObserver(fn func(Step)) EvaluatorOption {
	return func(e *Evaluator) {
		e.observer = fn
	}
}

// NewEvaluator creates an Evaluator over lib.
func NewEvaluator(lib Invoker, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		lib:       lib,
		logger:    slog.Default(),
		clock:     NewClock(),
		maxFrames: DefaultMaxFrames,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Eval evaluates rule starting from initial (nil means no bindings) and
// returns the surviving frames in order. initial is not modified.
//
// Returns zero frames when some atom fails for every frame; that is not an
// error.
func (e *Evaluator) Eval(ctx context.Context, rule Rule, initial *Bindings) ([]*Bindings, error) {
	start := NewBindings()
	if initial != nil {
		start = initial.Clone()
	}
	frames := start.Branches()
	quota := NewQuotaEnforcer(e.maxFrames)

	for i, atom := range rule.Atoms {
		pos := i + 1
		var next []*Bindings
		for _, frame := range frames {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			ok, err := e.lib.Invoke(ctx, atom.BuiltIn, builtin.Call{
				Rule:     rule.Name,
				Args:     atom.Args,
				Bindings: frame,
			})
			e.notify(Step{Seq: e.clock.Next(), Atom: pos, BuiltIn: atom.BuiltIn, Result: ok, Err: err})
			if err != nil {
				e.logger.Debug("rule aborted", "rule", rule.Name, "atom", pos, "builtin", atom.BuiltIn, "error", err)
				return nil, newBuiltInError(rule.Name, pos, atom.BuiltIn, err)
			}
			if !ok {
				continue
			}
			next = append(next, frame.Branches()...)
		}
		if err := quota.Check(rule.Name, pos, len(next)); err != nil {
			return nil, err
		}
		frames = next
		if len(frames) == 0 {
			break
		}
	}

	e.logger.Debug("rule evaluated", "rule", rule.Name, "frames", len(frames), "peak", quota.Peak())
	return frames, nil
}

func (e *Evaluator) notify(s Step) {
	if e.observer != nil {
		e.observer(s)
	}
}
