package builtin

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/roach88/aspectswrl/internal/ir"
)

const (
	// Prefix is the conventional namespace prefix of the library.
	Prefix = "aspectswrl"

	// Namespace is the IRI namespace of the library's built-ins.
	Namespace = "https://ontology.aspectowl.xyz/built-ins/5.2.0/AspectSWRLBuiltinsLibrary.owl#"
)

// Built-in local names.
const (
	NameOPA               = "opa"
	NameCreateOPA         = "createOPA"
	NameCreateNegativeOPA = "createNegativeOPA"
	NameTemporal          = "temporal"
	NameDeontic           = "deontic"
	NameNest              = "nest"
)

type builtinFunc func(l *Library, ctx context.Context, inv *invocation) (bool, error)

var builtins = map[string]builtinFunc{
	NameOPA:               (*Library).opa,
	NameCreateOPA:         (*Library).createOPA,
	NameCreateNegativeOPA: (*Library).createNegativeOPA,
	NameTemporal:          (*Library).temporal,
	NameDeontic:           (*Library).deontic,
	NameNest:              (*Library).nest,
}

// Library is the aspectswrl built-in library.
//
// A Library holds no per-invocation state: the only state that outlives a
// call is in the Ontology, the AspectManager and the caller's Bindings.
// Invocations are expected to be sequential; the library does no locking of
// its own.
type Library struct {
	ontology Ontology
	aspects  AspectManager
	ids      IDGenerator
	logger   *slog.Logger
	metrics  *Metrics
}

// Option configures a Library.
type Option func(*Library)

// WithIDGenerator sets the generator used to name synthesized entities.
// Default: UUIDGenerator.
func WithIDGenerator(g IDGenerator) Option {
	return func(l *Library) {
		l.ids = g
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Library) {
		l.logger = logger
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(l *Library) {
		l.metrics = m
	}
}

// New creates a Library over the given ontology and aspect manager.
func New(ont Ontology, aspects AspectManager, opts ...Option) *Library {
	l := &Library{
		ontology: ont,
		aspects:  aspects,
		ids:      UUIDGenerator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Names returns the local names of all built-ins, sorted.
func (l *Library) Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Has reports whether name (local, prefixed or full IRI) is a built-in of this library.
func (l *Library) Has(name string) bool {
	_, ok := builtins[localName(name)]
	return ok
}

// localName strips the namespace IRI or the "aspectswrl:" prefix.
func localName(name string) string {
	if local, ok := strings.CutPrefix(name, Namespace); ok {
		return local
	}
	if local, ok := strings.CutPrefix(name, Prefix+":"); ok {
		return local
	}
	return name
}

// Invoke dispatches call to the named built-in. name may be the local name,
// "aspectswrl:name", or the full built-in IRI.
func (l *Library) Invoke(ctx context.Context, name string, call Call) (bool, error) {
	local := localName(name)
	fn, ok := builtins[local]
	if !ok {
		err := &Error{
			Code:    ErrCodeUnknownBuiltIn,
			BuiltIn: Namespace + local,
			Rule:    call.Rule,
			Message: "No such built-in in library " + Prefix + ".",
		}
		return false, err
	}

	inv := newInvocation(local, call)
	start := time.Now()
	result, err := fn(l, ctx, inv)
	l.metrics.observe(local, result, err, time.Since(start))

	if err != nil {
		l.logger.Debug("built-in failed", "builtin", local, "rule", call.Rule, "error", err)
		return false, err
	}
	l.logger.Debug("built-in evaluated", "builtin", local, "rule", call.Rule, "result", result)
	return result, nil
}

// Reset clears per-run library state. The library keeps none, so this is a
// no-op; it exists so hosts can reset every registered library uniformly.
func (l *Library) Reset() error {
	return nil
}

// Opa invokes opa. See opa.go.
func (l *Library) Opa(ctx context.Context, call Call) (bool, error) {
	return l.Invoke(ctx, NameOPA, call)
}

// CreateOPA invokes createOPA.
func (l *Library) CreateOPA(ctx context.Context, call Call) (bool, error) {
	return l.Invoke(ctx, NameCreateOPA, call)
}

// CreateNegativeOPA invokes createNegativeOPA.
func (l *Library) CreateNegativeOPA(ctx context.Context, call Call) (bool, error) {
	return l.Invoke(ctx, NameCreateNegativeOPA, call)
}

// Temporal invokes temporal.
func (l *Library) Temporal(ctx context.Context, call Call) (bool, error) {
	return l.Invoke(ctx, NameTemporal, call)
}

// Deontic invokes deontic.
func (l *Library) Deontic(ctx context.Context, call Call) (bool, error) {
	return l.Invoke(ctx, NameDeontic, call)
}

// Nest invokes nest.
func (l *Library) Nest(ctx context.Context, call Call) (bool, error) {
	return l.Invoke(ctx, NameNest, call)
}

// freshIRI names a new entity under the ontology IRI.
func (l *Library) freshIRI() string {
	return ir.ExpandIRI(l.ontology.IRI(), l.ids.Generate())
}

func (l *Library) freshClass(inv *invocation) ir.Class {
	c := ir.Class{IRI: l.freshIRI()}
	l.metrics.entitySynthesized("class")
	l.logger.Info("synthesized aspect class", "builtin", inv.name, "rule", inv.rule, "iri", c.IRI)
	return c
}

func (l *Library) freshIndividual(inv *invocation) ir.NamedIndividual {
	i := ir.NamedIndividual{IRI: l.freshIRI()}
	l.metrics.entitySynthesized("individual")
	l.logger.Info("synthesized individual", "builtin", inv.name, "rule", inv.rule, "iri", i.IRI)
	return i
}
