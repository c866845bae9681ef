package syntax

import "sort"

// Binding order inside a formation is not observable.  Canonical
// rebuilds a term with every formation's bindings sorted by the total
// attribute order: distinguished names first (φ, ρ, σ, ν), then labels
// lexicographically, then α-indices numerically.  Δ and λ carry no
// attribute and sort after all named bindings, Δ first.  Meta bindings
// keep their source order at the very end; they are not expected in
// terms given to Equal.

type bindingKey struct {
	class int
	label string
	index int
}

func keyOf(b Binding) bindingKey {
	switch v := b.(type) {
	case *AlphaBinding:
		return attrKey(v.Attr)
	case *EmptyBinding:
		return attrKey(v.Attr)
	case *DeltaBinding:
		return bindingKey{class: 4}
	case *LambdaBinding:
		return bindingKey{class: 5}
	case *MetaBindings:
		return bindingKey{class: 6}
	}
	return bindingKey{class: 7}
}

func attrKey(a Attribute) bindingKey {
	switch a.Kind {
	case AttrPhi, AttrRho, AttrSigma, AttrVertex:
		return bindingKey{class: 0, index: int(a.Kind)}
	case AttrLabel:
		return bindingKey{class: 1, label: a.Label}
	case AttrAlpha:
		return bindingKey{class: 2, index: a.Index}
	case AttrMeta:
		return bindingKey{class: 6, label: a.Label}
	}
	return bindingKey{class: 7}
}

func (k bindingKey) less(o bindingKey) bool {
	if k.class != o.class {
		return k.class < o.class
	}
	if k.label != o.label {
		return k.label < o.label
	}
	return k.index < o.index
}

// Canonical returns a copy of the term with every formation's bindings
// in canonical order.  The input is not modified.
func Canonical(obj Object) Object {
	switch v := obj.(type) {
	case *Formation:
		bs := canonicalBindings(v.Bindings)
		return &Formation{Bindings: bs}
	case *Application:
		args := make([]Binding, len(v.Args))
		for i, b := range v.Args {
			args[i] = canonicalBinding(b)
		}
		return &Application{Obj: Canonical(v.Obj), Args: args}
	case *Dispatch:
		return &Dispatch{Obj: Canonical(v.Obj), Attr: v.Attr}
	case *MetaFunction:
		return &MetaFunction{Name: v.Name, Arg: Canonical(v.Arg)}
	default:
		return obj
	}
}

func canonicalBindings(bs []Binding) []Binding {
	acc := make([]Binding, len(bs))
	for i, b := range bs {
		acc[i] = canonicalBinding(b)
	}
	sort.SliceStable(acc, func(i, j int) bool {
		return keyOf(acc[i]).less(keyOf(acc[j]))
	})
	return acc
}

func canonicalBinding(b Binding) Binding {
	if a, is := b.(*AlphaBinding); is {
		return &AlphaBinding{Attr: a.Attr, Obj: Canonical(a.Obj)}
	}
	return b
}

// Equal reports structural equality up to binding order.
func Equal(a, b Object) bool {
	return equalObjects(Canonical(a), Canonical(b))
}

// Key returns the canonical printed form, usable as a map key for term
// identity.
func Key(obj Object) string {
	return Canonical(obj).String()
}

func equalObjects(a, b Object) bool {
	switch x := a.(type) {
	case *Formation:
		y, is := b.(*Formation)
		return is && equalBindings(x.Bindings, y.Bindings)
	case *Application:
		y, is := b.(*Application)
		return is && equalObjects(x.Obj, y.Obj) && equalBindings(x.Args, y.Args)
	case *Dispatch:
		y, is := b.(*Dispatch)
		return is && x.Attr == y.Attr && equalObjects(x.Obj, y.Obj)
	case *Global:
		_, is := b.(*Global)
		return is
	case *This:
		_, is := b.(*This)
		return is
	case *Termination:
		_, is := b.(*Termination)
		return is
	case *MetaObject:
		y, is := b.(*MetaObject)
		return is && x.Name == y.Name
	case *MetaFunction:
		y, is := b.(*MetaFunction)
		return is && x.Name == y.Name && equalObjects(x.Arg, y.Arg)
	}
	return false
}

func equalBindings(a, b []Binding) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalBinding(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalBinding(a, b Binding) bool {
	switch x := a.(type) {
	case *AlphaBinding:
		y, is := b.(*AlphaBinding)
		return is && x.Attr == y.Attr && equalObjects(x.Obj, y.Obj)
	case *EmptyBinding:
		y, is := b.(*EmptyBinding)
		return is && x.Attr == y.Attr
	case *DeltaBinding:
		y, is := b.(*DeltaBinding)
		return is && x.Bytes.Equal(y.Bytes)
	case *LambdaBinding:
		y, is := b.(*LambdaBinding)
		return is && x.Fn == y.Fn
	case *MetaBindings:
		y, is := b.(*MetaBindings)
		return is && x.Name == y.Name
	}
	return false
}

// Size counts AST nodes: one per object plus one per binding.  It has
// no semantic role; the rewrite driver and the confluence shrinker use
// it to bound searches.
func Size(obj Object) int {
	switch v := obj.(type) {
	case *Formation:
		return 1 + sizeBindings(v.Bindings)
	case *Application:
		return 1 + Size(v.Obj) + sizeBindings(v.Args)
	case *Dispatch:
		return 1 + Size(v.Obj)
	case *MetaFunction:
		return 1 + Size(v.Arg)
	default:
		return 1
	}
}

func sizeBindings(bs []Binding) int {
	n := 0
	for _, b := range bs {
		n++
		if a, is := b.(*AlphaBinding); is {
			n += Size(a.Obj)
		}
	}
	return n
}

// HasMeta reports whether the term mentions any meta variant.  Terms
// under evaluation must not.
func HasMeta(obj Object) bool {
	switch v := obj.(type) {
	case *MetaObject, *MetaFunction:
		return true
	case *Formation:
		return hasMetaBindings(v.Bindings)
	case *Application:
		return HasMeta(v.Obj) || hasMetaBindings(v.Args)
	case *Dispatch:
		return v.Attr.Kind == AttrMeta || HasMeta(v.Obj)
	}
	return false
}

func hasMetaBindings(bs []Binding) bool {
	for _, b := range bs {
		switch v := b.(type) {
		case *MetaBindings:
			return true
		case *AlphaBinding:
			if v.Attr.Kind == AttrMeta || HasMeta(v.Obj) {
				return true
			}
		case *EmptyBinding:
			if v.Attr.Kind == AttrMeta {
				return true
			}
		}
	}
	return false
}
