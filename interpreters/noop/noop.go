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

// Package noop provides a rules.Interpreter that returns its argument
// unchanged.  Useful for tests and for rulesets that declare
// functions they never call.
package noop

import (
	"context"
	"log"

	"github.com/phicalculus/phin/match"
	"github.com/phicalculus/phin/syntax"
)

// Interpreter is a rules.Interpreter which just returns the argument
// term without modification.
type Interpreter struct {
	// Silent, if true, will suppress warning log messages.
	Silent bool
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

func (i *Interpreter) Compile(ctx context.Context, code string) (interface{}, error) {
	if !i.Silent {
		log.Printf("warning: using noop interpreter for compilation")
	}
	return nil, nil
}

func (i *Interpreter) Exec(ctx context.Context, code string, compiled interface{}, arg syntax.Object, bs match.Bindings) (syntax.Object, error) {
	if !i.Silent {
		log.Printf("warning: using noop interpreter for execution")
	}
	return arg, nil
}
