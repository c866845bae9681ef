// Package rewrite drives rule application: the one-step relation over
// φ-terms, normal-form detection, and bounded enumeration of
// reduction chains.
//
// The driver never chooses a successor; Step returns all of them, in
// a deterministic order, and the chain enumerators layer policies
// (leftmost-first, full tree) on top.  Termination is not guaranteed
// by the calculus, so every search takes a Control whose bounds prune
// branches; a pruned branch is a normal outcome, not an error.
package rewrite

import (
	"github.com/phicalculus/phin/match"
	"github.com/phicalculus/phin/rules"
	"github.com/phicalculus/phin/syntax"
)

// Control bounds a search.
type Control struct {
	// MaxSteps is the maximum number of Step calls Chains may
	// spend.  Single and Descendants do not consult it.
	MaxSteps int

	// MaxDepth is the maximum chain length.
	MaxDepth int

	// MaxTermSize prunes any branch whose term grows beyond this
	// many nodes.
	MaxTermSize int
}

// DefaultControl is used when a nil Control is given.
var DefaultControl = &Control{
	MaxSteps:    10000,
	MaxDepth:    24,
	MaxTermSize: 10000,
}

// Copy makes a copy of the Control.
func (c *Control) Copy() *Control {
	cp := *c
	return &cp
}

// Context carries what a rule application can see besides the term:
// the compiled ruleset, the global object, the path of enclosing
// terms (root first), and the attribute under which the innermost
// enclosing formation was entered.
//
// Contexts are values; descending into a subterm makes a new Context
// and never mutates the old one.  DataizePackage belongs to the
// dataization interpreter, which clears it when it enters the head of
// an application or dispatch; it rides along here so that scoped
// mutation and restoration fall out of the copying.
type Context struct {
	Ruleset        *rules.Ruleset
	Global         syntax.Object
	Path           []syntax.Object
	Attr           syntax.Attribute
	DataizePackage bool
}

// NewContext makes a root context for the given global object.
func NewContext(rs *rules.Ruleset, global syntax.Object) *Context {
	return &Context{
		Ruleset: rs,
		Global:  global,
	}
}

// Inside returns the context for a subterm of enclosing, entered
// under attr.
func (ctx *Context) Inside(enclosing syntax.Object, attr syntax.Attribute) *Context {
	path := make([]syntax.Object, len(ctx.Path), len(ctx.Path)+1)
	copy(path, ctx.Path)
	return &Context{
		Ruleset:        ctx.Ruleset,
		Global:         ctx.Global,
		Path:           append(path, enclosing),
		Attr:           attr,
		DataizePackage: ctx.DataizePackage,
	}
}

// WithDataizePackage returns a copy with the flag set as given.
func (ctx *Context) WithDataizePackage(on bool) *Context {
	cp := *ctx
	cp.DataizePackage = on
	return &cp
}

// Current returns the innermost enclosing formation, or the global
// object at the root.
func (ctx *Context) Current() syntax.Object {
	for i := len(ctx.Path) - 1; i >= 0; i-- {
		if f, is := ctx.Path[i].(*syntax.Formation); is {
			return f
		}
	}
	return ctx.Global
}

// Equal reports whether two contexts would drive rules identically.
func (ctx *Context) Equal(o *Context) bool {
	if ctx.DataizePackage != o.DataizePackage || ctx.Attr != o.Attr {
		return false
	}
	if len(ctx.Path) != len(o.Path) {
		return false
	}
	for i := range ctx.Path {
		if !syntax.Equal(ctx.Path[i], o.Path[i]) {
			return false
		}
	}
	return syntax.Equal(ctx.Global, o.Global)
}

// Step returns every term obtained by applying one rule at one
// position of t, outer positions first, rules in ruleset order, with
// successors deduplicated under Equal.
func Step(t syntax.Object, ctx *Context) []syntax.Object {
	return dedupe(step(t, ctx))
}

// InNormalForm reports whether t has no one-step successor.
func InNormalForm(t syntax.Object, ctx *Context) bool {
	return len(step(t, ctx)) == 0
}

func step(t syntax.Object, ctx *Context) []syntax.Object {
	acc := applyRules(t, ctx)

	switch v := t.(type) {
	case *syntax.Application:
		for _, s := range step(v.Obj, ctx) {
			acc = append(acc, &syntax.Application{Obj: s, Args: v.Args})
		}
		for i, b := range v.Args {
			a, is := b.(*syntax.AlphaBinding)
			if !is {
				continue
			}
			for _, s := range step(a.Obj, ctx) {
				acc = append(acc, &syntax.Application{
					Obj:  v.Obj,
					Args: patched(v.Args, i, &syntax.AlphaBinding{Attr: a.Attr, Obj: s}),
				})
			}
		}

	case *syntax.Dispatch:
		for _, s := range step(v.Obj, ctx) {
			acc = append(acc, &syntax.Dispatch{Obj: s, Attr: v.Attr})
		}

	case *syntax.Formation:
		for i, b := range v.Bindings {
			a, is := b.(*syntax.AlphaBinding)
			if !is {
				continue
			}
			inner := ctx.Inside(v, a.Attr)
			for _, s := range step(a.Obj, inner) {
				acc = append(acc, &syntax.Formation{
					Bindings: patched(v.Bindings, i, &syntax.AlphaBinding{Attr: a.Attr, Obj: s}),
				})
			}
		}
	}

	return acc
}

func patched(bs []syntax.Binding, i int, b syntax.Binding) []syntax.Binding {
	acc := make([]syntax.Binding, len(bs))
	copy(acc, bs)
	acc[i] = b
	return acc
}

// applyRules yields the successors from rule applications at the root
// of t only.
func applyRules(t syntax.Object, ctx *Context) []syntax.Object {
	var acc []syntax.Object
	for _, rule := range ctx.Ruleset.Rules {
		acc = append(acc, ApplyRule(rule, t, ctx)...)
	}
	return acc
}

// ApplyRule applies a single rule at the root of t, returning one
// successor per match whose side conditions hold.
func ApplyRule(rule *rules.Rule, t syntax.Object, ctx *Context) []syntax.Object {
	seed := match.NewBindings()
	if rule.Context != nil {
		if rule.Context.GlobalID != "" {
			seed.Extend(rule.Context.GlobalID, ctx.Global)
		}
		if rule.Context.CurrentID != "" {
			seed.Extend(rule.Context.CurrentID, ctx.Current())
		}
	}

	nf := func(obj syntax.Object) bool {
		return InNormalForm(obj, ctx)
	}

	var acc []syntax.Object
BSS:
	for _, bs := range match.Match(rule.Pattern, t, seed) {
		for _, cond := range rule.When {
			if !cond.Holds(bs, nf) {
				continue BSS
			}
		}
		res, err := match.Substitute(rule.Result, bs, ctx.Ruleset.Registry)
		if err != nil {
			// A failing meta-function fails this
			// substitution, not the whole step.
			continue
		}
		acc = append(acc, res)
	}
	return acc
}

func dedupe(ts []syntax.Object) []syntax.Object {
	if len(ts) < 2 {
		return ts
	}
	seen := make(map[string]bool, len(ts))
	acc := ts[:0]
	for _, t := range ts {
		k := syntax.Key(t)
		if seen[k] {
			continue
		}
		seen[k] = true
		acc = append(acc, t)
	}
	return acc
}
