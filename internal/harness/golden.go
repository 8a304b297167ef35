package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/aspectswrl/internal/ir"
)

// Snapshot captures the observable outcome of a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	Trace        []TraceEvent
	Frames       []map[string]string

	// Axioms are the final ontology's axioms in functional syntax.
	Axioms []string

	// Aspects maps each axiom (functional syntax) that holds in some aspect
	// to its aspects, in assertion order.
	Aspects map[string][]string
}

// NewSnapshot builds the snapshot of a scenario result.
func NewSnapshot(name string, result *Result) (*Snapshot, error) {
	s := &Snapshot{
		ScenarioName: name,
		Trace:        result.Trace,
		Frames:       result.Frames,
		Aspects:      map[string][]string{},
	}
	if result.store == nil {
		return s, nil
	}

	axioms, err := result.store.Axioms()
	if err != nil {
		return nil, err
	}
	for _, ax := range axioms {
		fs := ir.FunctionalSyntax(ax, result.base)
		s.Axioms = append(s.Axioms, fs)

		aspects, err := result.store.AssertedAspects(context.Background(), ax)
		if err != nil {
			return nil, err
		}
		for _, a := range aspects {
			s.Aspects[fs] = append(s.Aspects[fs], ir.ExpressionSyntax(a.Expression, result.base))
		}
	}
	return s, nil
}

// toIRObject converts a Snapshot for canonical JSON serialization.
// ir.MarshalCanonical only handles IR types and primitives.
func (s *Snapshot) toIRObject() ir.IRObject {
	trace := make(ir.IRArray, len(s.Trace))
	for i, ev := range s.Trace {
		obj := ir.IRObject{
			"seq":     ir.IRInt(ev.Seq),
			"step":    ir.IRInt(ev.Step),
			"builtin": ir.IRString(ev.BuiltIn),
			"args":    stringArray(ev.Args),
			"outcome": ir.IRString(ev.Outcome),
		}
		if ev.Rule != "" {
			obj["rule"] = ir.IRString(ev.Rule)
		}
		if len(ev.Bindings) > 0 {
			obj["bindings"] = stringObject(ev.Bindings)
		}
		if len(ev.Multi) > 0 {
			multi := ir.IRObject{}
			for k, vs := range ev.Multi {
				multi[k] = stringArray(vs)
			}
			obj["multi"] = multi
		}
		trace[i] = obj
	}

	frames := make(ir.IRArray, len(s.Frames))
	for i, f := range s.Frames {
		frames[i] = stringObject(f)
	}

	aspects := ir.IRObject{}
	for k, vs := range s.Aspects {
		aspects[k] = stringArray(vs)
	}

	return ir.IRObject{
		"scenario_name": ir.IRString(s.ScenarioName),
		"trace":         trace,
		"frames":        frames,
		"axioms":        stringArray(s.Axioms),
		"aspects":       aspects,
	}
}

// Marshal returns the snapshot as canonical JSON.
func (s *Snapshot) Marshal() ([]byte, error) {
	return ir.MarshalCanonical(s.toIRObject())
}

func stringArray(ss []string) ir.IRArray {
	out := make(ir.IRArray, len(ss))
	for i, s := range ss {
		out[i] = ir.IRString(s)
	}
	return out
}

func stringObject(m map[string]string) ir.IRObject {
	out := make(ir.IRObject, len(m))
	for k, v := range m {
		out[k] = ir.IRString(v)
	}
	return out
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's snapshot against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot, err := NewSnapshot(scenarioName, result)
	if err != nil {
		return err
	}
	data, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
