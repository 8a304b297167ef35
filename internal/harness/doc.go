// Package harness provides conformance testing for the aspectswrl built-ins.
//
// The harness compiles a CUE ontology fixture, runs a flow of built-in
// invocations and rule bodies against it, and validates the resulting trace
// and ontology.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	fixture: family.cue
//	ids: [WorkTime]
//	bindings:
//	  X: ind:alice
//	flow:
//	  - invoke: createOPA
//	    args: ["?A", "prop:knows", "?X", "ind:carol"]
//	    expect:
//	      result: true
//	      bindings: { A: "class:WorkTime" }
//	  - rule: trusted
//	    body:
//	      - builtin: opa
//	        args: ["class:Trust", "prop:knows", "?X", "?Y"]
//	    expect:
//	      frames: 0
//	assertions:
//	  - type: in_aspect
//	    property: knows
//	    subject: alice
//	    object: carol
//	    aspect: "?A"
//
// Arguments use the syntax of builtin.ParseArgument. Bindings carry over
// between steps; a built-in that binds a variable to several values splits
// the flow into one frame per value.
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - fact: an object property assertion is present (or absent)
//   - in_aspect: a fact holds in a named aspect
//   - aspect_count: a fact holds in exactly N aspects
//   - equivalent: a class is equivalent to an expression in functional syntax
//   - declared: an entity is declared
//   - axiom_count: the ontology holds exactly N axioms
//   - trace_count: a built-in was invoked exactly N times
//   - trace_order: built-ins were first invoked in the given order
//
// # Deterministic Testing
//
// Synthesized entities are named from the scenario's ids list, then "id-1",
// "id-2", and so on; trace sequence numbers come from a fresh logical clock.
// Each scenario runs against its own in-memory ontology, so traces and
// snapshots are identical across runs.
package harness
