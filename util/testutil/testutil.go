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

package testutil

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/phicalculus/phin/syntax"
)

// Verbose gates Logf.
var Verbose = false

// Logf logs when Verbose.
func Logf(format string, args ...interface{}) {
	if Verbose {
		log.Printf(format, args...)
	}
}

// JS renders its argument as JSON or as a string indicating an error.
func JS(x interface{}) string {
	bs, err := json.Marshal(&x)
	if err != nil {
		log.Printf("warning: testutil.JS error %s for %#v", err, x)
		return fmt.Sprintf("%#v", x)
	}
	return string(bs)
}

// Dwimphi parses φ-syntax and panics on failure.  Handy in tests
// where the input is a literal.
//
// See https://en.wikipedia.org/wiki/DWIM.
func Dwimphi(src string) syntax.Object {
	obj, err := syntax.ParseObject(src)
	if err != nil {
		panic(err)
	}
	return obj
}
