package rewrite

import (
	"github.com/phicalculus/phin/rules"
	"github.com/phicalculus/phin/syntax"
)

// RuleTestFailure reports one failing declarative rule test.
type RuleTestFailure struct {
	Rule string
	Test string
	Msg  string
}

func (e *RuleTestFailure) Error() string {
	return `rule "` + e.Rule + `" test "` + e.Test + `": ` + e.Msg
}

// SelfTest runs every rule's declarative tests from the ruleset
// source: for each test, the rule alone is applied at the root of the
// input.  A test with matches true must produce the expected output
// (when one is given); a test with matches false must produce
// nothing.
func SelfTest(rs *rules.Ruleset) error {
	for _, rule := range rs.Rules {
		for _, test := range rule.Tests {
			ctx := NewContext(rs, test.Input)
			got := ApplyRule(rule, test.Input, ctx)

			if !test.Matches {
				if len(got) != 0 {
					return &RuleTestFailure{
						Rule: rule.Name,
						Test: test.Name,
						Msg:  "unexpectedly matched, producing " + got[0].String(),
					}
				}
				continue
			}

			if len(got) == 0 {
				return &RuleTestFailure{
					Rule: rule.Name,
					Test: test.Name,
					Msg:  "did not match " + test.Input.String(),
				}
			}
			if test.Output != nil && !syntax.Equal(got[0], test.Output) {
				return &RuleTestFailure{
					Rule: rule.Name,
					Test: test.Name,
					Msg:  "produced " + got[0].String() + ", wanted " + test.Output.String(),
				}
			}
		}
	}
	return nil
}
