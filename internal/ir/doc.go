// Package ir provides the ontology value model shared by every aspectswrl package.
//
// This package contains type definitions and their canonical encoding only.
// All other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Entity, ClassExpression and Axiom are sealed: only types in this
//     package implement them, so every switch over them can be exhaustive.
//   - Axioms have content-addressed identity (AxiomID). Two axioms with the
//     same structure are the same axiom, wherever they were built.
//   - NO float types in the canonical encoding - literals keep their
//     lexical form.
package ir
