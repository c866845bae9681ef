// Package rules defines rewrite rules and compiles them from their
// declarative YAML source.
//
// A rule pairs a MetaPHI pattern with a replacement, optional side
// conditions, and an optional context declaration that names the
// meta-variables standing for the global object and the current
// object.  Compilation parses the MetaPHI strings and verifies that
// every meta-variable a rule consumes is bound by its pattern.
package rules

import (
	"context"

	"github.com/phicalculus/phin/match"
	"github.com/phicalculus/phin/syntax"
)

// Rule is a compiled rewrite rule.
type Rule struct {
	// Name is the unique rule name from the ruleset.
	Name string

	// Doc is the rule's description.
	Doc string

	// Pattern is matched against subterms; Result replaces them.
	Pattern syntax.Object
	Result  syntax.Object

	// Context, if non-nil, names the meta-variables that the
	// driver seeds with the global object and the innermost
	// enclosing formation before matching.
	Context *Context

	// When lists side conditions that every match must satisfy.
	When []Condition

	// Tests carries the rule's own examples from the YAML source.
	Tests []RuleTest
}

// Context declares the contextual meta-variable names of a rule.
type Context struct {
	GlobalID  string
	CurrentID string
}

// RuleTest is a declarative example attached to a rule.
type RuleTest struct {
	Name    string
	Input   syntax.Object
	Output  syntax.Object
	Matches bool
}

// Ruleset is an ordered collection of compiled rules sharing one
// meta-function registry.
type Ruleset struct {
	Title    string
	Rules    []*Rule
	Registry *match.Registry
}

// Interpreter can compile and execute meta-function sources declared
// in a ruleset.  The argument term has been substituted already.
type Interpreter interface {
	Compile(ctx context.Context, code string) (interface{}, error)
	Exec(ctx context.Context, code string, compiled interface{}, arg syntax.Object, bs match.Bindings) (syntax.Object, error)
}

// InterpretersMap maps interpreter names to implementations.
type InterpretersMap map[string]Interpreter

// MalformedRule is a compile-time rule error: a meta-variable used
// but not bound, an unknown meta-function, or an ill-typed side
// condition.
type MalformedRule struct {
	Rule string
	Msg  string
}

func (e *MalformedRule) Error() string {
	return `malformed rule "` + e.Rule + `": ` + e.Msg
}

// metas is the set of meta-variables a pattern binds, split by kind.
type metas struct {
	objects  map[string]bool
	bindings map[string]bool
	attrs    map[string]bool
}

func newMetas() *metas {
	return &metas{
		objects:  map[string]bool{},
		bindings: map[string]bool{},
		attrs:    map[string]bool{},
	}
}

func collectMetas(obj syntax.Object, acc *metas) {
	switch v := obj.(type) {
	case *syntax.MetaObject:
		acc.objects[v.Name] = true
	case *syntax.MetaFunction:
		collectMetas(v.Arg, acc)
	case *syntax.Formation:
		collectBindingMetas(v.Bindings, acc)
	case *syntax.Application:
		collectMetas(v.Obj, acc)
		collectBindingMetas(v.Args, acc)
	case *syntax.Dispatch:
		if v.Attr.Kind == syntax.AttrMeta {
			acc.attrs[v.Attr.Label] = true
		}
		collectMetas(v.Obj, acc)
	}
}

func collectBindingMetas(bs []syntax.Binding, acc *metas) {
	for _, b := range bs {
		switch v := b.(type) {
		case *syntax.MetaBindings:
			acc.bindings[v.Name] = true
		case *syntax.AlphaBinding:
			if v.Attr.Kind == syntax.AttrMeta {
				acc.attrs[v.Attr.Label] = true
			}
			collectMetas(v.Obj, acc)
		case *syntax.EmptyBinding:
			if v.Attr.Kind == syntax.AttrMeta {
				acc.attrs[v.Attr.Label] = true
			}
		}
	}
}

func collectMetaFns(obj syntax.Object, acc map[string]bool) {
	switch v := obj.(type) {
	case *syntax.MetaFunction:
		acc[v.Name] = true
		collectMetaFns(v.Arg, acc)
	case *syntax.Formation:
		for _, b := range v.Bindings {
			if a, is := b.(*syntax.AlphaBinding); is {
				collectMetaFns(a.Obj, acc)
			}
		}
	case *syntax.Application:
		collectMetaFns(v.Obj, acc)
		for _, b := range v.Args {
			if a, is := b.(*syntax.AlphaBinding); is {
				collectMetaFns(a.Obj, acc)
			}
		}
	case *syntax.Dispatch:
		collectMetaFns(v.Obj, acc)
	}
}

// validate checks a compiled rule against the meta-variables its
// pattern (and context declaration) binds.
func (r *Rule) validate(reg *match.Registry) error {
	bound := newMetas()
	collectMetas(r.Pattern, bound)

	patternFns := map[string]bool{}
	collectMetaFns(r.Pattern, patternFns)
	if len(patternFns) > 0 {
		return &MalformedRule{Rule: r.Name, Msg: "pattern contains a meta-function"}
	}
	if r.Context != nil {
		if r.Context.GlobalID != "" {
			bound.objects[r.Context.GlobalID] = true
		}
		if r.Context.CurrentID != "" {
			bound.objects[r.Context.CurrentID] = true
		}
	}

	used := newMetas()
	collectMetas(r.Result, used)
	for name := range used.objects {
		if !bound.objects[name] {
			return &MalformedRule{Rule: r.Name, Msg: `result uses unbound "!` + name + `"`}
		}
	}
	for name := range used.bindings {
		if !bound.bindings[name] {
			return &MalformedRule{Rule: r.Name, Msg: `result uses unbound "!` + name + `"`}
		}
	}
	for name := range used.attrs {
		if !bound.attrs[name] {
			return &MalformedRule{Rule: r.Name, Msg: `result uses unbound attribute "!` + name + `"`}
		}
	}

	fns := map[string]bool{}
	collectMetaFns(r.Result, fns)
	for name := range fns {
		if !reg.Has(name) {
			return &MalformedRule{Rule: r.Name, Msg: `unknown meta-function "@` + name + `"`}
		}
	}

	for _, c := range r.When {
		if err := c.validate(r.Name, bound); err != nil {
			return err
		}
	}
	return nil
}
