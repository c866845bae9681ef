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

// Package goja provides a rules.Interpreter backed by Goja, a Go
// implementation of ECMAScript 5.1+.
//
// A meta-function source is an expression (or script) that sees two
// globals: "arg", the printed φ-term the function was applied to, and
// "bindings", a map from meta-variable names to printed values.  The
// script's value must be a string in φ-syntax; it is parsed back into
// a term.
//
// See https://github.com/dop251/goja.
package goja

import (
	"context"
	"errors"
	"strings"

	"github.com/dop251/goja"

	"github.com/phicalculus/phin/match"
	"github.com/phicalculus/phin/syntax"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: interrupted"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)
)

// Interpreter implements rules.Interpreter using Goja.
type Interpreter struct{}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// Compile parses the source.  The result can be handed back to Exec
// to avoid recompilation.
func (i *Interpreter) Compile(ctx context.Context, code string) (interface{}, error) {
	return goja.Compile("", code, true)
}

// Exec runs the meta-function body.
func (i *Interpreter) Exec(ctx context.Context, code string, compiled interface{}, arg syntax.Object, bs match.Bindings) (syntax.Object, error) {
	p, have := compiled.(*goja.Program)
	if !have {
		var err error
		if p, err = goja.Compile("", code, true); err != nil {
			return nil, err
		}
	}

	vm := goja.New()

	if err := vm.Set("arg", arg.String()); err != nil {
		return nil, err
	}

	env := make(map[string]string, len(bs))
	for name, v := range bs {
		env[name] = printBound(v)
	}
	if err := vm.Set("bindings", env); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt(InterruptedMessage)
		case <-done:
		}
	}()

	v, err := vm.RunProgram(p)
	if err != nil {
		if strings.Contains(err.Error(), InterruptedMessage) {
			return nil, Interrupted
		}
		return nil, err
	}

	s, is := v.Export().(string)
	if !is {
		return nil, errors.New("meta-function must return a φ string")
	}
	return syntax.ParseObject(s)
}

func printBound(v interface{}) string {
	switch x := v.(type) {
	case syntax.Object:
		return x.String()
	case syntax.Attribute:
		return x.String()
	case []syntax.Binding:
		parts := make([]string, len(x))
		for i, b := range x {
			parts[i] = b.String()
		}
		return strings.Join(parts, ", ")
	}
	return ""
}
