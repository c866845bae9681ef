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

// phin normalizes and dataizes φ-calculus programs under a YAML
// ruleset.
//
// Usage:
//
//	phin transform --rules FILE [--input-file FILE | PROGRAM] [--chain] [--single] [--json] [--dot] [--output-file FILE]
//	phin dataize --rules FILE [--input-file FILE | PROGRAM] [--output-file FILE]
//	phin confluence --rules FILE [--samples N] [--seed N]
//	phin report --config FILE --rules FILE [--cache FILE]
//	phin serve --rules FILE [--addr :8080]
//
// Exit codes: 0 on success, 1 on ruleset or program parse failure, 2
// on I/O failure.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
)

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.LUTC)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "transform":
		err = transform(os.Args[2:])
	case "dataize":
		err = dataizeCmd(os.Args[2:])
	case "confluence":
		err = confluenceCmd(os.Args[2:])
	case "report":
		err = reportCmd(os.Args[2:])
	case "serve":
		err = serve(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage:
  phin transform --rules FILE [--input-file FILE | PROGRAM] [--chain] [--single] [--json] [--dot] [--output-file FILE]
  phin dataize --rules FILE [--input-file FILE | PROGRAM] [--output-file FILE]
  phin confluence --rules FILE [--samples N] [--seed N]
  phin report --config FILE --rules FILE [--cache FILE]
  phin serve --rules FILE [--addr :8080]
`)
}

// notConfluent marks a failed confluence check.
var notConfluent = errors.New("ruleset is not confluent")

func exitCode(err error) int {
	var perr *fs.PathError
	if errors.As(err, &perr) {
		return 2
	}
	return 1
}
