// Package builtin implements the aspectswrl built-in library: custom rule
// predicates that query and materialize aspect-scoped object property
// assertions.
//
// # Invocation protocol
//
// The inference loop that owns the rules calls a built-in once per candidate
// binding tuple with a Call: the invoking rule's name, a fixed-arity list of
// positional Arguments, and the caller's Bindings. Each Argument is either a
// concrete Value or a Variable that may be bound or unbound at call time.
//
// A built-in returns (true, nil) when satisfied, (false, nil) when not, and a
// non-nil *Error when the invocation itself is malformed. false is a
// legitimate query answer and is never used to signal a malformed call.
//
// Output is communicated only through Bindings:
//   - Bind for a single synthesized value (createOPA, createNegativeOPA, temporal)
//   - BindMulti for an enumerated set (opa with an unbound aspect variable)
//
// # Mutation protocol
//
// Mutating built-ins stage every change in a ChangeSet and commit it to the
// Ontology as a single batch. Identifiers are synthesized only after every
// argument that must already be bound has been validated, so a failing
// invocation never leaves an orphan declaration behind.
//
// # Built-ins
//
//	opa(?a, r, i1, i2)              r(i1, i2) holds in aspect ?a (enumerates when ?a is unbound)
//	createOPA(r, i1, i2, ?a)        ensure r(i1, i2), make it hold in ?a (fresh when unbound)
//	createNegativeOPA(r, i1, i2, ?a) same for the negative assertion
//	temporal(?a, r, ?t, b)          define ?a ≡ r value ?t, or (r value ?t) ⊔ {?t} when b
//	deontic(...), nest(...)         reserved; always false
package builtin
