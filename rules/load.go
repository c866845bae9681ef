package rules

import (
	"context"
	"errors"
	"io/ioutil"
	"strings"

	"github.com/jsccast/yaml"

	"github.com/phicalculus/phin/match"
	"github.com/phicalculus/phin/syntax"
)

// InterpreterNotFound occurs when a ruleset declares a meta-function
// whose interpreter isn't in the given map.
var InterpreterNotFound = errors.New("interpreter not found")

// RulesetSource is the YAML shape of a ruleset.
type RulesetSource struct {
	Title     string            `yaml:"title"`
	Rules     []*RuleSource     `yaml:"rules"`
	Functions []*FunctionSource `yaml:"functions,omitempty"`
}

// RuleSource is the YAML shape of one rule.
type RuleSource struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Context     *ContextSource `yaml:"context,omitempty"`
	Pattern     string         `yaml:"pattern"`
	Result      string         `yaml:"result"`
	When        []*WhenSource  `yaml:"when,omitempty"`
	Tests       []*TestSource  `yaml:"tests,omitempty"`
}

// ContextSource declares the contextual meta-variables.
type ContextSource struct {
	GlobalObject  string `yaml:"global-object,omitempty"`
	CurrentObject string `yaml:"current-object,omitempty"`
}

// WhenSource is one member of a rule's when list.  Exactly one of the
// fields should be set.
type WhenSource struct {
	NF           []string     `yaml:"nf,omitempty"`
	PresentAttrs *AttrsSource `yaml:"present_attrs,omitempty"`
	AbsentAttrs  *AttrsSource `yaml:"absent_attrs,omitempty"`
}

// AttrsSource names attributes and the bindings-sequence to test them
// against.
type AttrsSource struct {
	Attrs    []string `yaml:"attrs"`
	Bindings string   `yaml:"bindings"`
}

// TestSource is a declarative rule example.
type TestSource struct {
	Name    string `yaml:"name"`
	Input   string `yaml:"input"`
	Output  string `yaml:"output,omitempty"`
	Matches bool   `yaml:"matches"`
}

// FunctionSource is a meta-function definition carried by a ruleset.
type FunctionSource struct {
	Name        string `yaml:"name"`
	Interpreter string `yaml:"interpreter,omitempty"`
	Source      string `yaml:"source"`
}

// ParseRuleset reads a ruleset's YAML source.
func ParseRuleset(bs []byte) (*RulesetSource, error) {
	var src RulesetSource
	if err := yaml.Unmarshal(bs, &src); err != nil {
		return nil, err
	}
	return &src, nil
}

// LoadFile reads a ruleset source from a file.
func LoadFile(filename string) (*RulesetSource, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseRuleset(bs)
}

// CompileFile loads and compiles a ruleset in one step.
func CompileFile(ctx context.Context, filename string, interpreters InterpretersMap) (*Ruleset, error) {
	src, err := LoadFile(filename)
	if err != nil {
		return nil, err
	}
	return src.Compile(ctx, interpreters)
}

// metaID strips the leading '!' of a meta-variable reference.
func metaID(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "!")
}

// Compile parses every rule's MetaPHI strings, compiles declared
// meta-functions, and validates the result.  Validation failures are
// MalformedRule errors.
func (src *RulesetSource) Compile(ctx context.Context, interpreters InterpretersMap) (*Ruleset, error) {
	reg := match.NewRegistry()

	for _, f := range src.Functions {
		name := f.Interpreter
		if name == "" {
			name = "goja"
		}
		interp, have := interpreters[name]
		if !have {
			return nil, InterpreterNotFound
		}
		compiled, err := interp.Compile(ctx, f.Source)
		if err != nil {
			return nil, &MalformedRule{Rule: f.Name, Msg: "meta-function failed to compile: " + err.Error()}
		}
		code, in := f.Source, interp
		reg.Register(f.Name, func(arg syntax.Object, bs match.Bindings) (syntax.Object, error) {
			return in.Exec(ctx, code, compiled, arg, bs)
		})
	}

	rs := &Ruleset{
		Title:    src.Title,
		Rules:    make([]*Rule, 0, len(src.Rules)),
		Registry: reg,
	}

	seen := map[string]bool{}
	for _, r := range src.Rules {
		if seen[r.Name] {
			return nil, &MalformedRule{Rule: r.Name, Msg: "duplicate rule name"}
		}
		seen[r.Name] = true

		rule, err := r.compile()
		if err != nil {
			return nil, err
		}
		if err := rule.validate(reg); err != nil {
			return nil, err
		}
		rs.Rules = append(rs.Rules, rule)
	}

	return rs, nil
}

func (r *RuleSource) compile() (*Rule, error) {
	pattern, err := syntax.ParseObject(r.Pattern)
	if err != nil {
		return nil, &MalformedRule{Rule: r.Name, Msg: "bad pattern: " + err.Error()}
	}
	result, err := syntax.ParseObject(r.Result)
	if err != nil {
		return nil, &MalformedRule{Rule: r.Name, Msg: "bad result: " + err.Error()}
	}

	rule := &Rule{
		Name:    r.Name,
		Doc:     r.Description,
		Pattern: pattern,
		Result:  result,
	}

	if r.Context != nil {
		rule.Context = &Context{
			GlobalID:  metaID(r.Context.GlobalObject),
			CurrentID: metaID(r.Context.CurrentObject),
		}
	}

	for _, w := range r.When {
		c, err := w.compile(r.Name)
		if err != nil {
			return nil, err
		}
		rule.When = append(rule.When, c)
	}

	for _, ts := range r.Tests {
		test, err := ts.compile(r.Name)
		if err != nil {
			return nil, err
		}
		rule.Tests = append(rule.Tests, test)
	}

	return rule, nil
}

func (w *WhenSource) compile(rule string) (Condition, error) {
	set := 0
	if len(w.NF) > 0 {
		set++
	}
	if w.PresentAttrs != nil {
		set++
	}
	if w.AbsentAttrs != nil {
		set++
	}
	if set != 1 {
		return nil, &MalformedRule{Rule: rule, Msg: "a when member must set exactly one of nf, present_attrs, absent_attrs"}
	}

	if len(w.NF) > 0 {
		ids := make([]string, len(w.NF))
		for i, s := range w.NF {
			ids[i] = metaID(s)
		}
		return &NormalFormCond{Metas: ids}, nil
	}

	src, absent := w.PresentAttrs, false
	if w.AbsentAttrs != nil {
		src, absent = w.AbsentAttrs, true
	}
	attrs := make([]syntax.Attribute, len(src.Attrs))
	for i, s := range src.Attrs {
		a, err := syntax.ParseAttribute(s)
		if err != nil {
			return nil, &MalformedRule{Rule: rule, Msg: "bad attribute " + s + ": " + err.Error()}
		}
		attrs[i] = a
	}
	id := metaID(src.Bindings)
	if absent {
		return &AbsentCond{Attrs: attrs, BindingsID: id}, nil
	}
	return &PresentCond{Attrs: attrs, BindingsID: id}, nil
}

func (ts *TestSource) compile(rule string) (RuleTest, error) {
	test := RuleTest{Name: ts.Name, Matches: ts.Matches}

	input, err := syntax.ParseObject(ts.Input)
	if err != nil {
		return test, &MalformedRule{Rule: rule, Msg: "bad test input: " + err.Error()}
	}
	test.Input = input

	if ts.Output != "" {
		output, err := syntax.ParseObject(ts.Output)
		if err != nil {
			return test, &MalformedRule{Rule: rule, Msg: "bad test output: " + err.Error()}
		}
		test.Output = output
	}
	return test, nil
}
