/* Copyright 2024 The Phin Authors
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package match implements the MetaPHI pattern matcher.
//
// Matching a pattern against a term returns an ordered sequence of
// Bindings.  A single pattern can match the same term several ways:
// a bindings meta-variable (!B) splits a bindings-sequence into
// prefix, captured middle, and suffix, and every split is enumerated.
package match

import (
	"github.com/phicalculus/phin/syntax"
)

// Bindings maps meta-variable names (without the leading '!') to what
// they matched: a syntax.Object, a syntax.Attribute, or a
// []syntax.Binding.
type Bindings map[string]interface{}

func NewBindings() Bindings {
	return make(Bindings, 8)
}

// Copy makes a shallow copy of the Bindings.  Bound values are terms,
// which are immutable, so sharing them is fine.
func (bs Bindings) Copy() Bindings {
	acc := make(Bindings, len(bs))
	for k, v := range bs {
		acc[k] = v
	}
	return acc
}

// Extend adds the binding; modifies and returns the Bindings.
func (bs Bindings) Extend(name string, v interface{}) Bindings {
	bs[name] = v
	return bs
}

// Object returns the term bound to the given meta-variable.
func (bs Bindings) Object(name string) (syntax.Object, bool) {
	x, have := bs[name]
	if !have {
		return nil, false
	}
	obj, is := x.(syntax.Object)
	return obj, is
}

// Attr returns the attribute bound to the given meta-variable.
func (bs Bindings) Attr(name string) (syntax.Attribute, bool) {
	x, have := bs[name]
	if !have {
		return syntax.Attribute{}, false
	}
	a, is := x.(syntax.Attribute)
	return a, is
}

// BindingList returns the bindings-sequence bound to the given
// meta-variable.
func (bs Bindings) BindingList(name string) ([]syntax.Binding, bool) {
	x, have := bs[name]
	if !have {
		return nil, false
	}
	l, is := x.([]syntax.Binding)
	return l, is
}

// Match attempts to match the term against the pattern, extending the
// given initial bindings.  The result is the ordered sequence of ways
// the match succeeds; nil means no match.
//
// Meta-variables are non-linear: a meta-variable that occurs twice
// must match α-equal subterms.  The initial bindings are not modified.
func Match(pattern, term syntax.Object, bs Bindings) []Bindings {
	if bs == nil {
		bs = NewBindings()
	}
	return matchObjects(pattern, term, bs)
}

func matchObjects(pattern, term syntax.Object, bs Bindings) []Bindings {
	switch p := pattern.(type) {
	case *syntax.MetaObject:
		if bound, have := bs.Object(p.Name); have {
			if syntax.Equal(bound, term) {
				return []Bindings{bs}
			}
			return nil
		}
		return []Bindings{bs.Copy().Extend(p.Name, term)}

	case *syntax.Global:
		if _, is := term.(*syntax.Global); is {
			return []Bindings{bs}
		}
		return nil

	case *syntax.This:
		if _, is := term.(*syntax.This); is {
			return []Bindings{bs}
		}
		return nil

	case *syntax.Termination:
		if _, is := term.(*syntax.Termination); is {
			return []Bindings{bs}
		}
		return nil

	case *syntax.Formation:
		f, is := term.(*syntax.Formation)
		if !is {
			return nil
		}
		return matchBindingLists(p.Bindings, f.Bindings, bs)

	case *syntax.Application:
		a, is := term.(*syntax.Application)
		if !is {
			return nil
		}
		var acc []Bindings
		for _, bs1 := range matchObjects(p.Obj, a.Obj, bs) {
			acc = append(acc, matchBindingLists(p.Args, a.Args, bs1)...)
		}
		return acc

	case *syntax.Dispatch:
		d, is := term.(*syntax.Dispatch)
		if !is {
			return nil
		}
		bs1, ok := matchAttr(p.Attr, d.Attr, bs)
		if !ok {
			return nil
		}
		return matchObjects(p.Obj, d.Obj, bs1)
	}

	// A MetaFunction has no meaning in a pattern.  Rule compilation
	// rejects it; reaching here means the caller skipped that.
	return nil
}

// matchBindingLists matches a pattern bindings-sequence against a term
// bindings-sequence.  Concrete pattern bindings consume the term's
// head; a !B consumes any prefix, and every split is tried in order of
// increasing prefix length.
func matchBindingLists(pbs, tbs []syntax.Binding, bs Bindings) []Bindings {
	if len(pbs) == 0 {
		if len(tbs) == 0 {
			return []Bindings{bs}
		}
		return nil
	}

	if mb, is := pbs[0].(*syntax.MetaBindings); is {
		if bound, have := bs.BindingList(mb.Name); have {
			if len(bound) > len(tbs) || !EqualBindingLists(bound, tbs[:len(bound)]) {
				return nil
			}
			return matchBindingLists(pbs[1:], tbs[len(bound):], bs)
		}
		var acc []Bindings
		for i := 0; i <= len(tbs); i++ {
			captured := make([]syntax.Binding, i)
			copy(captured, tbs[:i])
			bs1 := bs.Copy().Extend(mb.Name, captured)
			acc = append(acc, matchBindingLists(pbs[1:], tbs[i:], bs1)...)
		}
		return acc
	}

	if len(tbs) == 0 {
		return nil
	}
	var acc []Bindings
	for _, bs1 := range matchBinding(pbs[0], tbs[0], bs) {
		acc = append(acc, matchBindingLists(pbs[1:], tbs[1:], bs1)...)
	}
	return acc
}

func matchBinding(pb, tb syntax.Binding, bs Bindings) []Bindings {
	switch p := pb.(type) {
	case *syntax.AlphaBinding:
		t, is := tb.(*syntax.AlphaBinding)
		if !is {
			return nil
		}
		bs1, ok := matchAttr(p.Attr, t.Attr, bs)
		if !ok {
			return nil
		}
		return matchObjects(p.Obj, t.Obj, bs1)
	case *syntax.EmptyBinding:
		t, is := tb.(*syntax.EmptyBinding)
		if !is {
			return nil
		}
		bs1, ok := matchAttr(p.Attr, t.Attr, bs)
		if !ok {
			return nil
		}
		return []Bindings{bs1}
	case *syntax.DeltaBinding:
		t, is := tb.(*syntax.DeltaBinding)
		if !is || !p.Bytes.Equal(t.Bytes) {
			return nil
		}
		return []Bindings{bs}
	case *syntax.LambdaBinding:
		t, is := tb.(*syntax.LambdaBinding)
		if !is || p.Fn != t.Fn {
			return nil
		}
		return []Bindings{bs}
	}
	return nil
}

func matchAttr(pa, ta syntax.Attribute, bs Bindings) (Bindings, bool) {
	if pa.Kind != syntax.AttrMeta {
		return bs, pa == ta
	}
	if ta.Kind == syntax.AttrMeta {
		// Terms under match must be concrete.
		return nil, false
	}
	if bound, have := bs.Attr(pa.Label); have {
		return bs, bound == ta
	}
	return bs.Copy().Extend(pa.Label, ta), true
}

// EqualBindingLists compares two bindings-sequences element-wise, with
// payloads compared up to binding order.
func EqualBindingLists(a, b []syntax.Binding) bool {
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

func equalBinding(a, b syntax.Binding) bool {
	switch x := a.(type) {
	case *syntax.AlphaBinding:
		y, is := b.(*syntax.AlphaBinding)
		return is && x.Attr == y.Attr && syntax.Equal(x.Obj, y.Obj)
	case *syntax.EmptyBinding:
		y, is := b.(*syntax.EmptyBinding)
		return is && x.Attr == y.Attr
	case *syntax.DeltaBinding:
		y, is := b.(*syntax.DeltaBinding)
		return is && x.Bytes.Equal(y.Bytes)
	case *syntax.LambdaBinding:
		y, is := b.(*syntax.LambdaBinding)
		return is && x.Fn == y.Fn
	case *syntax.MetaBindings:
		y, is := b.(*syntax.MetaBindings)
		return is && x.Name == y.Name
	}
	return false
}
