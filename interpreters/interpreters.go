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

// Package interpreters assembles the standard interpreters available
// for ruleset-defined meta-functions.
package interpreters

import (
	"github.com/phicalculus/phin/interpreters/goja"
	"github.com/phicalculus/phin/interpreters/noop"
	"github.com/phicalculus/phin/rules"
)

// Standard returns the standard map of interpreters.
func Standard() rules.InterpretersMap {
	is := make(rules.InterpretersMap, 4)

	g := goja.NewInterpreter()
	is["goja"] = g
	is["ecmascript"] = g
	is["ecmascript-5.1"] = g

	is["noop"] = noop.NewInterpreter()

	return is
}
