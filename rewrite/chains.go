package rewrite

import (
	"github.com/phicalculus/phin/syntax"
)

// StopReason reports why an enumeration stopped.
type StopReason int

const (
	Done    StopReason = iota // every branch reached a normal form
	Limited                   // at least one branch was pruned by a bound
)

func (r StopReason) String() string {
	if r == Limited {
		return "limited"
	}
	return "done"
}

// Walked is the result of enumerating reduction chains.
type Walked struct {
	// Chains holds every maximal reduction sequence found.  Each
	// chain starts with the input term; a term in normal form
	// yields one chain of length one.
	Chains [][]syntax.Object

	// StoppedBecause is Limited if any branch was pruned.
	StoppedBecause StopReason

	// Pruned counts the branches cut by the Control's bounds.
	Pruned int
}

// Results returns the distinct final terms of the chains, in
// first-found order.
func (w *Walked) Results() []syntax.Object {
	var acc []syntax.Object
	seen := map[string]bool{}
	for _, chain := range w.Chains {
		last := chain[len(chain)-1]
		k := syntax.Key(last)
		if seen[k] {
			continue
		}
		seen[k] = true
		acc = append(acc, last)
	}
	return acc
}

// Chains enumerates every maximal reduction sequence from t,
// leftmost branches first.  Branches exceeding the Control's depth,
// size, or step bounds are pruned and counted.
func Chains(t syntax.Object, ctx *Context, c *Control) *Walked {
	if c == nil {
		c = DefaultControl
	}

	w := &Walked{}
	stack := [][]syntax.Object{{t}}
	steps := 0

	for len(stack) > 0 {
		path := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cur := path[len(path)-1]

		if c.MaxTermSize > 0 && syntax.Size(cur) > c.MaxTermSize {
			w.prune()
			continue
		}
		if c.MaxSteps > 0 && steps >= c.MaxSteps {
			w.prune()
			continue
		}
		steps++

		succs := Step(cur, ctx)
		if len(succs) == 0 {
			w.Chains = append(w.Chains, path)
			continue
		}
		if c.MaxDepth > 0 && len(path)-1 >= c.MaxDepth {
			w.prune()
			continue
		}

		// Push in reverse so the leftmost successor pops first.
		for i := len(succs) - 1; i >= 0; i-- {
			next := make([]syntax.Object, len(path), len(path)+1)
			copy(next, path)
			stack = append(stack, append(next, succs[i]))
		}
	}

	return w
}

func (w *Walked) prune() {
	w.Pruned++
	w.StoppedBecause = Limited
}

// Single follows the leftmost chain from t and returns it along with
// the reason it stopped.  The last element is the chosen result.
func Single(t syntax.Object, ctx *Context, c *Control) ([]syntax.Object, StopReason) {
	if c == nil {
		c = DefaultControl
	}

	chain := []syntax.Object{t}
	for {
		cur := chain[len(chain)-1]
		if c.MaxTermSize > 0 && syntax.Size(cur) > c.MaxTermSize {
			return chain, Limited
		}
		succs := Step(cur, ctx)
		if len(succs) == 0 {
			return chain, Done
		}
		if c.MaxDepth > 0 && len(chain)-1 >= c.MaxDepth {
			return chain, Limited
		}
		chain = append(chain, succs[0])
	}
}

// Descendants enumerates the one-step descendants of a term level by
// level: level 0 is the term itself, level n+1 holds the successors
// of level n.  Terms over the Control's size bound are dropped, and a
// term never reappears once seen.
//
// The confluence search depends on this breadth-layered order.
type Descendants struct {
	ctx   *Context
	c     *Control
	level []syntax.Object
	seen  map[string]bool
}

// NewDescendants starts an iterator at t.
func NewDescendants(t syntax.Object, ctx *Context, c *Control) *Descendants {
	if c == nil {
		c = DefaultControl
	}
	return &Descendants{
		ctx:   ctx,
		c:     c,
		level: []syntax.Object{t},
		seen:  map[string]bool{syntax.Key(t): true},
	}
}

// Next returns the next level, starting with level 0.  A nil result
// means the enumeration is exhausted.
func (d *Descendants) Next() []syntax.Object {
	if d.level == nil {
		return nil
	}
	out := d.level

	var next []syntax.Object
	for _, t := range out {
		for _, s := range Step(t, d.ctx) {
			if d.c.MaxTermSize > 0 && syntax.Size(s) > d.c.MaxTermSize {
				continue
			}
			k := syntax.Key(s)
			if d.seen[k] {
				continue
			}
			d.seen[k] = true
			next = append(next, s)
		}
	}
	d.level = next

	return out
}
