package engine

import (
	"maps"
	"slices"

	"github.com/roach88/aspectswrl/internal/builtin"
	"github.com/roach88/aspectswrl/internal/ir"
)

// Bindings is a map-backed binding table for one evaluation frame.
//
// Single-valued bindings are visible to Lookup immediately. Multi-valued
// bindings are pending until Branches expands them.
type Bindings struct {
	values map[string]ir.Entity
	multi  map[string][]ir.Entity
}

var _ builtin.Bindings = (*Bindings)(nil)

// NewBindings returns an empty binding table.
func NewBindings() *Bindings {
	return &Bindings{
		values: make(map[string]ir.Entity),
		multi:  make(map[string][]ir.Entity),
	}
}

// Lookup returns the single value bound to name.
func (b *Bindings) Lookup(name string) (ir.Entity, bool) {
	v, ok := b.values[name]
	return v, ok
}

// Bind binds name to v, replacing any previous value.
func (b *Bindings) Bind(name string, v ir.Entity) {
	delete(b.multi, name)
	b.values[name] = v
}

// BindMulti records alternative values for name. It always reports success;
// an empty set yields no branches.
func (b *Bindings) BindMulti(name string, vs []ir.Entity) bool {
	delete(b.values, name)
	b.multi[name] = slices.Clone(vs)
	return true
}

// Multi returns the pending alternatives for name.
func (b *Bindings) Multi(name string) ([]ir.Entity, bool) {
	vs, ok := b.multi[name]
	return vs, ok
}

// MultiNames returns the names with pending alternatives, sorted.
func (b *Bindings) MultiNames() []string {
	return slices.Sorted(maps.Keys(b.multi))
}

// Names returns the names of all single-valued bindings, sorted.
func (b *Bindings) Names() []string {
	return slices.Sorted(maps.Keys(b.values))
}

// Len returns the number of single-valued bindings.
func (b *Bindings) Len() int {
	return len(b.values)
}

// Clone returns a deep copy.
func (b *Bindings) Clone() *Bindings {
	c := NewBindings()
	maps.Copy(c.values, b.values)
	for k, vs := range b.multi {
		c.multi[k] = slices.Clone(vs)
	}
	return c
}

// Branches expands pending multi-valued bindings into one frame per
// combination of values (cartesian product, names in sorted order). A frame
// with no pending multi-values yields itself. A name bound to an empty set
// yields no frames.
func (b *Bindings) Branches() []*Bindings {
	if len(b.multi) == 0 {
		return []*Bindings{b}
	}

	base := b.Clone()
	clear(base.multi)
	frames := []*Bindings{base}

	for _, name := range slices.Sorted(maps.Keys(b.multi)) {
		vs := b.multi[name]
		next := make([]*Bindings, 0, len(frames)*len(vs))
		for _, f := range frames {
			for _, v := range vs {
				nf := f.Clone()
				nf.values[name] = v
				next = append(next, nf)
			}
		}
		frames = next
	}
	return frames
}

// Map returns the single-valued bindings rendered with builtin.FormatEntity.
func (b *Bindings) Map(base string) map[string]string {
	out := make(map[string]string, len(b.values))
	for k, v := range b.values {
		out[k] = builtin.FormatEntity(v, base)
	}
	return out
}
