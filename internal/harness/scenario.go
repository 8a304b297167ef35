package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance scenario.
// A scenario loads a CUE fixture, runs a flow of built-in invocations and
// rule bodies against it, and asserts on the resulting trace and ontology.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed by it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixture is the path of the CUE ontology fixture.
	// Relative paths are resolved against the scenario file's directory.
	Fixture string `yaml:"fixture"`

	// IDs are handed out, in order, to entities the built-ins synthesize.
	// Once exhausted, ids continue as "id-1", "id-2", ...
	IDs []string `yaml:"ids,omitempty"`

	// Bindings are the initial variable bindings, in argument syntax
	// (e.g. {X: "ind:alice"}).
	Bindings map[string]string `yaml:"bindings,omitempty"`

	// Flow contains the steps to run, in order. Bindings carry over from one
	// step to the next.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace and ontology.
	// Supported types: fact, in_aspect, aspect_count, equivalent, declared,
	// axiom_count, trace_count, trace_order
	Assertions []Assertion `yaml:"assertions"`
}

// FlowStep is either a single built-in invocation (Invoke) or a rule body
// (Rule plus Body).
type FlowStep struct {
	// Invoke is the built-in name, local or namespace-qualified.
	Invoke string `yaml:"invoke,omitempty"`

	// Args are the invocation arguments in argument syntax:
	// "?X", "prop:knows", "ind:alice", "class:Trust", "lit:true^^xsd:boolean".
	Args []string `yaml:"args,omitempty"`

	// Rule names a rule body to evaluate.
	Rule string `yaml:"rule,omitempty"`

	// Body lists the rule's built-in atoms.
	Body []AtomSpec `yaml:"body,omitempty"`

	// Expect validates the step's outcome. If nil, the step must not error.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// AtomSpec is one built-in atom of a rule body.
type AtomSpec struct {
	BuiltIn string   `yaml:"builtin"`
	Args    []string `yaml:"args"`
}

// ExpectClause specifies expected step behavior.
type ExpectClause struct {
	// Result is the expected boolean outcome. For an invoke step it is true
	// when the built-in succeeded for at least one frame; for a rule step it
	// is true when at least one frame survived.
	Result *bool `yaml:"result,omitempty"`

	// Error is the expected error code, e.g. ARITY_MISMATCH.
	Error string `yaml:"error,omitempty"`

	// Frames is the expected number of binding frames after the step.
	Frames *int `yaml:"frames,omitempty"`

	// Bindings are expected variable values in argument syntax. The step must
	// leave exactly one frame. Subset match.
	Bindings map[string]string `yaml:"bindings,omitempty"`
}

// Assertion validates the final trace or ontology.
//
// Names are resolved against the fixture IRI. Wherever an entity name is
// expected, "?X" refers to the value of X in the single surviving frame.
type Assertion struct {
	// Type specifies the assertion type:
	// - "fact": an object property assertion is (or with absent, is not) present
	// - "in_aspect": a fact holds in Aspect
	// - "aspect_count": a fact holds in exactly Count aspects
	// - "equivalent": Class is equivalent to Expression (functional syntax)
	// - "declared": Entity is declared with Kind
	// - "axiom_count": the ontology holds exactly Count axioms
	// - "trace_count": BuiltIn was invoked exactly Count times
	// - "trace_order": BuiltIns were invoked in this relative order
	Type string `yaml:"type"`

	Property string `yaml:"property,omitempty"`
	Subject  string `yaml:"subject,omitempty"`
	Object   string `yaml:"object,omitempty"`

	// Negative selects the negative assertion of the triple.
	Negative bool `yaml:"negative,omitempty"`

	// Absent inverts a fact assertion.
	Absent bool `yaml:"absent,omitempty"`

	Aspect string `yaml:"aspect,omitempty"`

	Class      string `yaml:"class,omitempty"`
	Expression string `yaml:"expression,omitempty"`

	Entity string `yaml:"entity,omitempty"`
	// Kind is one of class, individual, property.
	Kind string `yaml:"kind,omitempty"`

	Count int `yaml:"count,omitempty"`

	BuiltIn  string   `yaml:"builtin,omitempty"`
	BuiltIns []string `yaml:"builtins,omitempty"`
}

// Assertion type constants.
const (
	AssertFact        = "fact"
	AssertInAspect    = "in_aspect"
	AssertAspectCount = "aspect_count"
	AssertEquivalent  = "equivalent"
	AssertDeclared    = "declared"
	AssertAxiomCount  = "axiom_count"
	AssertTraceCount  = "trace_count"
	AssertTraceOrder  = "trace_order"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// The fixture path is resolved against the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the fixture path relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.Fixture != "" && !filepath.IsAbs(scenario.Fixture) && basePath != "" {
		scenario.Fixture = filepath.Join(basePath, scenario.Fixture)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	if _, err := os.Stat(scenario.Fixture); os.IsNotExist(err) {
		return nil, fmt.Errorf("invalid scenario: fixture file not found: %s", scenario.Fixture)
	}
	return scenario, nil
}

// ParseScenario decodes scenario YAML without touching the filesystem.
// The fixture path is left as written.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Fixture == "" {
		return fmt.Errorf("fixture is required")
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, step *FlowStep) error {
	switch {
	case step.Invoke != "" && (step.Rule != "" || len(step.Body) > 0):
		return fmt.Errorf("flow[%d]: invoke and rule are mutually exclusive", index)
	case step.Invoke == "" && step.Rule == "":
		return fmt.Errorf("flow[%d]: invoke or rule is required", index)
	case step.Rule != "" && len(step.Body) == 0:
		return fmt.Errorf("flow[%d]: body is required for rule %q", index, step.Rule)
	}

	for j, atom := range step.Body {
		if atom.BuiltIn == "" {
			return fmt.Errorf("flow[%d].body[%d]: builtin is required", index, j)
		}
	}

	if e := step.Expect; e != nil {
		if e.Frames != nil && *e.Frames < 0 {
			return fmt.Errorf("flow[%d].expect: frames must be non-negative", index)
		}
		if e.Error != "" && (e.Result != nil || e.Frames != nil || len(e.Bindings) > 0) {
			return fmt.Errorf("flow[%d].expect: error excludes result, frames and bindings", index)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	triple := func() error {
		if a.Property == "" || a.Subject == "" || a.Object == "" {
			return fmt.Errorf("assertions[%d]: property, subject and object are required for %s", index, a.Type)
		}
		return nil
	}

	switch a.Type {
	case AssertFact:
		return triple()
	case AssertInAspect:
		if a.Aspect == "" {
			return fmt.Errorf("assertions[%d]: aspect is required for in_aspect", index)
		}
		return triple()
	case AssertAspectCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for aspect_count", index)
		}
		return triple()
	case AssertEquivalent:
		if a.Class == "" || a.Expression == "" {
			return fmt.Errorf("assertions[%d]: class and expression are required for equivalent", index)
		}
	case AssertDeclared:
		if a.Entity == "" {
			return fmt.Errorf("assertions[%d]: entity is required for declared", index)
		}
		switch a.Kind {
		case "class", "individual", "property":
		default:
			return fmt.Errorf("assertions[%d]: kind must be class, individual or property, got %q", index, a.Kind)
		}
	case AssertAxiomCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for axiom_count", index)
		}
	case AssertTraceCount:
		if a.BuiltIn == "" {
			return fmt.Errorf("assertions[%d]: builtin is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertTraceOrder:
		if len(a.BuiltIns) == 0 {
			return fmt.Errorf("assertions[%d]: builtins list is required for trace_order", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
