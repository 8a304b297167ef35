// Package engine is the caller side of the built-in protocol.
//
// It owns the variable binding table and a small evaluator that runs a rule
// body, a conjunction of built-in atoms, over binding frames. Rule firing
// order, unification over ontology facts and truth maintenance belong to
// the host reasoner and are not modeled here.
//
// Evaluation model:
//
//  1. A rule starts from a single frame (the caller's initial bindings).
//  2. Each atom is invoked once per frame, left to right.
//  3. A false result drops the frame.
//  4. A true result keeps the frame; a multi-valued output expands it into
//     one frame per value (see Bindings.Branches).
//  5. An error aborts the rule with a RuntimeError.
//
// Evaluation is single-threaded and deterministic: frames are processed in
// order and multi-valued outputs expand in value order.
package engine
