package dataize

import (
	"encoding/binary"
	"errors"

	"github.com/phicalculus/phin/rewrite"
	"github.com/phicalculus/phin/syntax"
)

// The standard built-ins mirror the λ names found in translated
// programs.  A binary arithmetic built-in dataizes ρ and α0,
// interprets both as 8-byte big-endian two's-complement integers,
// and wraps the encoded result in a fresh Δ-carrying formation.
// Predicates answer with a single byte.  Impossible operand shapes
// produce Termination, which then propagates as a value.

// IntWidth is the byte width of the integer encoding.
const IntWidth = 8

// EncodeInt encodes an integer as big-endian two's complement.
func EncodeInt(n int64) syntax.Bytes {
	bs := make(syntax.Bytes, IntWidth)
	binary.BigEndian.PutUint64(bs, uint64(n))
	return bs
}

// DecodeInt decodes an 8-byte big-endian two's-complement integer.
func DecodeInt(bs syntax.Bytes) (int64, bool) {
	if len(bs) != IntWidth {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(bs)), true
}

func registerStandard(in *Interp) {
	in.Register("Lorg_eolang_int_plus", intBinary(func(a, b int64) syntax.Object {
		return deltaFormation(EncodeInt(a + b))
	}))
	in.Register("Lorg_eolang_int_times", intBinary(func(a, b int64) syntax.Object {
		return deltaFormation(EncodeInt(a * b))
	}))
	in.Register("Lorg_eolang_int_div", intBinary(func(a, b int64) syntax.Object {
		if b == 0 {
			return &syntax.Termination{}
		}
		return deltaFormation(EncodeInt(a / b))
	}))
	in.Register("Lorg_eolang_int_gt", intBinary(func(a, b int64) syntax.Object {
		if a > b {
			return deltaFormation(syntax.Bytes{0x01})
		}
		return deltaFormation(syntax.Bytes{0x00})
	}))
	in.Register("Package", dataizePackage)
}

func deltaFormation(bs syntax.Bytes) *syntax.Formation {
	return &syntax.Formation{Bindings: []syntax.Binding{
		&syntax.DeltaBinding{Bytes: bs},
	}}
}

var errOpaque = errors.New("not reducible here")

func intBinary(op func(a, b int64) syntax.Object) Builtin {
	return func(in *Interp, ctx *rewrite.Context, f *syntax.Formation) (syntax.Object, error) {
		left := payloadOf(f, syntax.Rho)
		right := payloadOf(f, syntax.Alpha(0))
		if left == nil || right == nil {
			return nil, errOpaque
		}

		// Termination wins before any numeric work happens.
		if isTermination(left) || isTermination(right) {
			return &syntax.Termination{}, nil
		}

		a, err := in.intOperand(left, f, syntax.Rho, ctx)
		if err != nil {
			return operandFailure(err)
		}
		b, err := in.intOperand(right, f, syntax.Alpha(0), ctx)
		if err != nil {
			return operandFailure(err)
		}

		return op(a, b), nil
	}
}

// errBadShape marks an operand that reduced to something no integer
// lives in: wrong byte width, or the reserved Termination value.
var errBadShape = errors.New("impossible operand shape")

func operandFailure(err error) (syntax.Object, error) {
	if err == errBadShape {
		return &syntax.Termination{}, nil
	}
	return nil, err
}

func (in *Interp) intOperand(obj syntax.Object, f *syntax.Formation, attr syntax.Attribute, ctx *rewrite.Context) (int64, error) {
	r := in.dataize(obj, ctx.Inside(f, attr))
	if !r.IsBytes() {
		if isTermination(r.Term) {
			return 0, errBadShape
		}
		return 0, errOpaque
	}
	n, ok := DecodeInt(r.Bytes)
	if !ok {
		return 0, errBadShape
	}
	return n, nil
}

func isTermination(obj syntax.Object) bool {
	_, is := obj.(*syntax.Termination)
	return is
}

// dataizePackage reduces every α sibling of a λ ⤍ Package binding in
// place, replacing each by a formation carrying just the reduced Δ.
// Bindings that fail to dataize stay unchanged, and the λ binding
// itself is untouched.  Without the ambient dataize-package flag the
// formation is opaque.
func dataizePackage(in *Interp, ctx *rewrite.Context, f *syntax.Formation) (syntax.Object, error) {
	if !ctx.DataizePackage {
		return nil, errOpaque
	}

	bindings := make([]syntax.Binding, len(f.Bindings))
	for i, b := range f.Bindings {
		a, is := b.(*syntax.AlphaBinding)
		if !is {
			bindings[i] = b
			continue
		}
		r := in.dataize(a.Obj, ctx.Inside(f, a.Attr))
		if r.IsBytes() {
			bindings[i] = &syntax.AlphaBinding{Attr: a.Attr, Obj: deltaFormation(r.Bytes)}
		} else {
			bindings[i] = b
		}
	}

	return &syntax.Formation{Bindings: bindings}, nil
}
