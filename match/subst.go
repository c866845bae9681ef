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

package match

import (
	"errors"

	"github.com/phicalculus/phin/syntax"
)

// MetaFn is a meta-level transformation applied during substitution.
// The argument has already been substituted, so it is concrete.
type MetaFn func(arg syntax.Object, bs Bindings) (syntax.Object, error)

// Registry holds the meta-functions available to rule replacements.
// The standard functions are always present; rulesets can add more.
type Registry struct {
	fns map[string]MetaFn
}

// NewRegistry returns a Registry with the standard meta-functions.
func NewRegistry() *Registry {
	r := &Registry{fns: make(map[string]MetaFn, 8)}
	r.Register("phi-of", attrPayload(syntax.Phi))
	r.Register("rho-of", attrPayload(syntax.Rho))
	return r
}

// Register adds (or replaces) a meta-function.
func (r *Registry) Register(name string, fn MetaFn) {
	r.fns[name] = fn
}

// Has reports whether the named meta-function exists.  Rule
// compilation uses this to reject unknown names early.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	_, have := r.fns[name]
	return have
}

func (r *Registry) call(name string, arg syntax.Object, bs Bindings) (syntax.Object, error) {
	if r != nil {
		if fn, have := r.fns[name]; have {
			return fn(arg, bs)
		}
	}
	return nil, &UnknownMetaFunction{Name: name}
}

// attrPayload fetches the payload of the named binding of a formation.
func attrPayload(attr syntax.Attribute) MetaFn {
	return func(arg syntax.Object, _ Bindings) (syntax.Object, error) {
		f, is := arg.(*syntax.Formation)
		if !is {
			return nil, errors.New("argument is not a formation")
		}
		for _, b := range f.Bindings {
			if a, is := b.(*syntax.AlphaBinding); is && a.Attr == attr {
				return a.Obj, nil
			}
		}
		return nil, errors.New("formation has no " + attr.String() + " binding")
	}
}

// UnknownMetaFunction occurs when a replacement names a meta-function
// that is not in the registry.  It fails the substitution.
type UnknownMetaFunction struct {
	Name string
}

func (e *UnknownMetaFunction) Error() string {
	return `unknown meta-function "@` + e.Name + `"`
}

// UnboundMeta occurs when substitution reaches a meta-variable with no
// binding.  Rule compilation prevents this for compiled rules.
type UnboundMeta struct {
	Name string
}

func (e *UnboundMeta) Error() string {
	return `meta-variable "!` + e.Name + `" is not bound`
}

// Substitute replaces meta-variables in the replacement term by their
// bound values and executes meta-functions.  The result shares
// substructure with the bound terms.
func Substitute(obj syntax.Object, bs Bindings, reg *Registry) (syntax.Object, error) {
	switch v := obj.(type) {
	case *syntax.MetaObject:
		bound, have := bs.Object(v.Name)
		if !have {
			return nil, &UnboundMeta{Name: v.Name}
		}
		return bound, nil

	case *syntax.MetaFunction:
		arg, err := Substitute(v.Arg, bs, reg)
		if err != nil {
			return nil, err
		}
		return reg.call(v.Name, arg, bs)

	case *syntax.Formation:
		nbs, err := substituteBindings(v.Bindings, bs, reg)
		if err != nil {
			return nil, err
		}
		return &syntax.Formation{Bindings: nbs}, nil

	case *syntax.Application:
		fn, err := Substitute(v.Obj, bs, reg)
		if err != nil {
			return nil, err
		}
		args, err := substituteBindings(v.Args, bs, reg)
		if err != nil {
			return nil, err
		}
		return &syntax.Application{Obj: fn, Args: args}, nil

	case *syntax.Dispatch:
		recv, err := Substitute(v.Obj, bs, reg)
		if err != nil {
			return nil, err
		}
		attr, err := resolveAttr(v.Attr, bs)
		if err != nil {
			return nil, err
		}
		return &syntax.Dispatch{Obj: recv, Attr: attr}, nil
	}

	return obj, nil
}

func substituteBindings(in []syntax.Binding, bs Bindings, reg *Registry) ([]syntax.Binding, error) {
	acc := make([]syntax.Binding, 0, len(in))
	for _, b := range in {
		switch v := b.(type) {
		case *syntax.MetaBindings:
			bound, have := bs.BindingList(v.Name)
			if !have {
				return nil, &UnboundMeta{Name: v.Name}
			}
			acc = append(acc, bound...)
		case *syntax.AlphaBinding:
			attr, err := resolveAttr(v.Attr, bs)
			if err != nil {
				return nil, err
			}
			payload, err := Substitute(v.Obj, bs, reg)
			if err != nil {
				return nil, err
			}
			acc = append(acc, &syntax.AlphaBinding{Attr: attr, Obj: payload})
		case *syntax.EmptyBinding:
			attr, err := resolveAttr(v.Attr, bs)
			if err != nil {
				return nil, err
			}
			acc = append(acc, &syntax.EmptyBinding{Attr: attr})
		default:
			acc = append(acc, b)
		}
	}
	return acc, nil
}

func resolveAttr(a syntax.Attribute, bs Bindings) (syntax.Attribute, error) {
	if a.Kind != syntax.AttrMeta {
		return a, nil
	}
	bound, have := bs.Attr(a.Label)
	if !have {
		return syntax.Attribute{}, &UnboundMeta{Name: a.Label}
	}
	return bound, nil
}
