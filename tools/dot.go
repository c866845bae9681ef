package tools

// dot -Tpng chains.dot > chains.png

import (
	"fmt"
	"io"
	"strings"

	"github.com/phicalculus/phin/rewrite"
	"github.com/phicalculus/phin/syntax"
)

// ChainsDot writes a Graphviz dot file of the reduction tree: one
// node per distinct term, one edge per step taken by some chain.
func ChainsDot(w *rewrite.Walked, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f("digraph G {")
	f(`  graph [ordering=out,rankdir=TB,nodesep=0.3,ranksep=0.6]`)
	f(`  node [shape="record" style="rounded,filled" fillcolor="lightyellow"]`)

	ids := map[string]int{}
	id := func(t syntax.Object) int {
		k := syntax.Key(t)
		n, have := ids[k]
		if !have {
			n = len(ids)
			ids[k] = n
			f(`  n%d [label="%s"]`, n, dotEscape(t.String()))
		}
		return n
	}

	edges := map[[2]int]bool{}
	for _, chain := range w.Chains {
		for i := 0; i+1 < len(chain); i++ {
			e := [2]int{id(chain[i]), id(chain[i+1])}
			if edges[e] {
				continue
			}
			edges[e] = true
			f("  n%d -> n%d", e[0], e[1])
		}
	}

	f("}")
	return nil
}

func dotEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "{", `\{`)
	s = strings.ReplaceAll(s, "}", `\}`)
	return s
}
