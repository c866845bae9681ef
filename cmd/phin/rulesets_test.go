/* Copyright 2024 The Phin Authors
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"testing"

	"github.com/phicalculus/phin/interpreters"
	"github.com/phicalculus/phin/rewrite"
	"github.com/phicalculus/phin/rules"
	"github.com/phicalculus/phin/syntax"
)

// The shipped ruleset must compile and pass its own examples.
func TestYegorRuleset(t *testing.T) {
	rs, err := rules.CompileFile(context.Background(), "../../rulesets/yegor.yaml", interpreters.Standard())
	if err != nil {
		t.Fatal(err)
	}
	if rs.Title != "yegor" {
		t.Errorf("title %q", rs.Title)
	}
	if err := rewrite.SelfTest(rs); err != nil {
		t.Fatal(err)
	}
}

func TestYegorResolvesAttribute(t *testing.T) {
	rs, err := rules.CompileFile(context.Background(), "../../rulesets/yegor.yaml", interpreters.Standard())
	if err != nil {
		t.Fatal(err)
	}

	// Copy into the hole, then resolve the dispatch.
	program, err := syntax.ParseProgram("{ ⟦ c ↦ ∅ ⟧(c ↦ ⟦ ⟧).c }")
	if err != nil {
		t.Fatal(err)
	}
	ctx := rewrite.NewContext(rs, program.Obj)
	chain, stopped := rewrite.Single(program.Obj, ctx, nil)
	if stopped != rewrite.Done {
		t.Fatalf("stopped: %s", stopped)
	}
	last := chain[len(chain)-1]
	if got, want := last.String(), "⟦ ⟧(ρ ↦ ⟦ c ↦ ⟦ ⟧ ⟧)"; got != want {
		t.Errorf("got %q, wanted %q", got, want)
	}
}
