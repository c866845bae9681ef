package confluence

import (
	"math/rand"

	"github.com/phicalculus/phin/syntax"
)

// The generator builds small random formations.  Attribute names come
// from a fixed pool and never repeat within one formation, and a Δ
// binding is only added when no binding is empty, so the generated
// terms respect the well-formedness invariants.

var labelPool = []string{"a", "b", "c", "d", "e", "f"}

func attrPool(r *rand.Rand) []syntax.Attribute {
	pool := make([]syntax.Attribute, 0, len(labelPool)+4)
	for _, l := range labelPool {
		pool = append(pool, syntax.Label(l))
	}
	pool = append(pool, syntax.Phi, syntax.Rho, syntax.Alpha(0), syntax.Alpha(1))
	r.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool
}

func randomFormation(r *rand.Rand, depth, maxBindings int) *syntax.Formation {
	n := r.Intn(maxBindings + 1)
	pool := attrPool(r)

	var bs []syntax.Binding
	hasEmpty := false
	for i := 0; i < n; i++ {
		attr := pool[i]
		if r.Intn(5) == 0 {
			bs = append(bs, &syntax.EmptyBinding{Attr: attr})
			hasEmpty = true
			continue
		}
		bs = append(bs, &syntax.AlphaBinding{
			Attr: attr,
			Obj:  randomObject(r, depth-1, maxBindings),
		})
	}

	if !hasEmpty && r.Intn(4) == 0 {
		bs = append(bs, &syntax.DeltaBinding{Bytes: syntax.Bytes{byte(r.Intn(256))}})
	}

	return &syntax.Formation{Bindings: bs}
}

func randomObject(r *rand.Rand, depth, maxBindings int) syntax.Object {
	if depth <= 0 {
		return randomAtom(r)
	}
	switch r.Intn(4) {
	case 0:
		return randomAtom(r)
	case 1:
		return &syntax.Dispatch{
			Obj:  randomAtom(r),
			Attr: syntax.Label(labelPool[r.Intn(len(labelPool))]),
		}
	default:
		return randomFormation(r, depth, maxBindings)
	}
}

func randomAtom(r *rand.Rand) syntax.Object {
	switch r.Intn(3) {
	case 0:
		return &syntax.Global{}
	case 1:
		return &syntax.Termination{}
	default:
		return &syntax.This{}
	}
}
