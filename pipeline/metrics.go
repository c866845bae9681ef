package pipeline

import (
	"errors"

	"github.com/phicalculus/phin/syntax"
)

// Metrics counts the term shapes normalization is supposed to reduce.
// Dataless counts formations that carry neither Δ nor λ nor a φ
// decoration, so they cannot be dataized as they stand.
type Metrics struct {
	Formations   int `json:"formations" yaml:"formations"`
	Applications int `json:"applications" yaml:"applications"`
	Dispatches   int `json:"dispatches" yaml:"dispatches"`
	Dataless     int `json:"dataless" yaml:"dataless"`
}

// Add accumulates.
func (m *Metrics) Add(o Metrics) {
	m.Formations += o.Formations
	m.Applications += o.Applications
	m.Dispatches += o.Dispatches
	m.Dataless += o.Dataless
}

// Total is the sum over all metrics; the improvement test compares
// totals.
func (m Metrics) Total() int {
	return m.Formations + m.Applications + m.Dispatches + m.Dataless
}

// ByName returns a metric by its report name.
func (m Metrics) ByName(name string) (int, bool) {
	switch name {
	case "formations":
		return m.Formations, true
	case "applications":
		return m.Applications, true
	case "dispatches":
		return m.Dispatches, true
	case "dataless":
		return m.Dataless, true
	}
	return 0, false
}

// Collect walks the term and counts.  Bindings of the root formation
// whose label is in skip are not visited.
func Collect(obj syntax.Object, skip func(label string) bool) Metrics {
	var m Metrics
	collect(obj, skip, &m)
	return m
}

func collect(obj syntax.Object, skipTop func(string) bool, m *Metrics) {
	switch v := obj.(type) {
	case *syntax.Formation:
		m.Formations++
		if dataless(v) {
			m.Dataless++
		}
		for _, b := range v.Bindings {
			a, is := b.(*syntax.AlphaBinding)
			if !is {
				continue
			}
			if skipTop != nil && a.Attr.Kind == syntax.AttrLabel && skipTop(a.Attr.Label) {
				continue
			}
			collect(a.Obj, nil, m)
		}
	case *syntax.Application:
		m.Applications++
		collect(v.Obj, nil, m)
		for _, b := range v.Args {
			if a, is := b.(*syntax.AlphaBinding); is {
				collect(a.Obj, nil, m)
			}
		}
	case *syntax.Dispatch:
		m.Dispatches++
		collect(v.Obj, nil, m)
	}
}

func dataless(f *syntax.Formation) bool {
	for _, b := range f.Bindings {
		switch v := b.(type) {
		case *syntax.DeltaBinding, *syntax.LambdaBinding:
			return false
		case *syntax.AlphaBinding:
			if v.Attr == syntax.Phi {
				return false
			}
		}
	}
	return true
}

// FindByPath descends a dotted label path through formations.
func FindByPath(obj syntax.Object, path string) (syntax.Object, error) {
	for _, part := range PathParts(path) {
		f, is := obj.(*syntax.Formation)
		if !is {
			return nil, errors.New("bindings path " + path + " leaves formations at " + part)
		}
		var next syntax.Object
		for _, b := range f.Bindings {
			a, is := b.(*syntax.AlphaBinding)
			if is && a.Attr.Kind == syntax.AttrLabel && a.Attr.Label == part {
				next = a.Obj
				break
			}
		}
		if next == nil {
			return nil, errors.New("bindings path " + path + " has no " + part)
		}
		obj = next
	}
	return obj, nil
}
