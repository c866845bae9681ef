// Package dataize implements the dataization interpreter: recursive
// reduction of a normalized term to a byte literal.
//
// The interpreter leans on the rewrite driver to reach a normal form,
// then looks for something it knows how to reduce: a Δ binding (the
// answer), a λ binding (a built-in to run), or a φ binding (a
// decoratee to descend into).  Anything else is residual.  Residual
// is an ordinary result, never an error; so is a pruned search.
package dataize

import (
	"github.com/phicalculus/phin/rewrite"
	"github.com/phicalculus/phin/rules"
	"github.com/phicalculus/phin/syntax"
)

// Result is what dataization produces: bytes, or the residual term it
// could not reduce further.
type Result struct {
	Bytes syntax.Bytes
	Term  syntax.Object
}

// IsBytes reports whether dataization reached a byte literal.
func (r Result) IsBytes() bool {
	return r.Bytes != nil
}

func bytesResult(bs syntax.Bytes) Result {
	if bs == nil {
		bs = syntax.Bytes{}
	}
	return Result{Bytes: bs}
}

func residual(t syntax.Object) Result {
	return Result{Term: t}
}

// Builtin evaluates a λ-carrying formation.  The returned term
// replaces the formation and the interpreter iterates; returning an
// error means "not reducible here" and leaves the term residual.
type Builtin func(in *Interp, ctx *rewrite.Context, f *syntax.Formation) (syntax.Object, error)

// Interp is the dataization interpreter for one ruleset.
type Interp struct {
	rs       *rules.Ruleset
	control  *rewrite.Control
	builtins map[string]Builtin
}

// New makes an interpreter with the standard built-ins registered.
func New(rs *rules.Ruleset, c *rewrite.Control) *Interp {
	if c == nil {
		c = rewrite.DefaultControl
	}
	in := &Interp{
		rs:       rs,
		control:  c,
		builtins: make(map[string]Builtin, 8),
	}
	registerStandard(in)
	return in
}

// Register adds (or replaces) a built-in.
func (in *Interp) Register(name string, b Builtin) {
	in.builtins[name] = b
}

// Dataize reduces the term as far as it can.  The term becomes the
// global object of the evaluation, and package handling starts
// enabled.
func (in *Interp) Dataize(t syntax.Object) Result {
	ctx := rewrite.NewContext(in.rs, t).WithDataizePackage(true)
	return in.dataize(t, ctx)
}

func (in *Interp) dataize(t syntax.Object, ctx *rewrite.Context) Result {
	for {
		chain, _ := rewrite.Single(t, ctx, in.control)
		t = chain[len(chain)-1]
		t0 := t

		switch v := t.(type) {
		case *syntax.Formation:
			if hasEmpty(v) {
				return residual(t)
			}
			if d := deltaOf(v); d != nil {
				return bytesResult(d.Bytes)
			}
			if l := lambdaOf(v); l != nil {
				b, have := in.builtins[l.Fn]
				if !have {
					// Unknown built-ins are not
					// reducible, not fatal.
					return residual(t)
				}
				nt, err := b(in, ctx, v)
				if err != nil {
					return residual(t)
				}
				t = nt
			} else if inner := payloadOf(v, syntax.Phi); inner != nil {
				return in.dataize(inner, ctx.Inside(v, syntax.Phi))
			} else {
				return residual(t)
			}

		case *syntax.Application:
			head := in.headTerm(v.Obj, ctx)
			if syntax.Equal(head, v.Obj) {
				return residual(t)
			}
			t = &syntax.Application{Obj: head, Args: v.Args}

		case *syntax.Dispatch:
			head := in.headTerm(v.Obj, ctx)
			if syntax.Equal(head, v.Obj) {
				return residual(t)
			}
			t = &syntax.Dispatch{Obj: head, Attr: v.Attr}

		default:
			// Global, This, Termination: nothing to do.
			return residual(t)
		}

		if syntax.Equal(t, t0) {
			return residual(t)
		}
	}
}

// headTerm dataizes the head of an application or dispatch.  Package
// handling is off inside the head; the copied context restores it on
// every exit path.
func (in *Interp) headTerm(head syntax.Object, ctx *rewrite.Context) syntax.Object {
	r := in.dataize(head, ctx.WithDataizePackage(false))
	if r.IsBytes() {
		return &syntax.Formation{Bindings: []syntax.Binding{
			&syntax.DeltaBinding{Bytes: r.Bytes},
		}}
	}
	return r.Term
}

func hasEmpty(f *syntax.Formation) bool {
	for _, b := range f.Bindings {
		if _, is := b.(*syntax.EmptyBinding); is {
			return true
		}
	}
	return false
}

func deltaOf(f *syntax.Formation) *syntax.DeltaBinding {
	for _, b := range f.Bindings {
		if d, is := b.(*syntax.DeltaBinding); is {
			return d
		}
	}
	return nil
}

func lambdaOf(f *syntax.Formation) *syntax.LambdaBinding {
	for _, b := range f.Bindings {
		if l, is := b.(*syntax.LambdaBinding); is {
			return l
		}
	}
	return nil
}

func payloadOf(f *syntax.Formation, attr syntax.Attribute) syntax.Object {
	for _, b := range f.Bindings {
		if a, is := b.(*syntax.AlphaBinding); is && a.Attr == attr {
			return a.Obj
		}
	}
	return nil
}
