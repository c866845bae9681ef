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
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/phicalculus/phin/dataize"
	"github.com/phicalculus/phin/interpreters"
	"github.com/phicalculus/phin/rewrite"
	"github.com/phicalculus/phin/rules"
	"github.com/phicalculus/phin/syntax"
	"github.com/phicalculus/phin/tools"
)

// commonFlags covers what transform and dataize share.
type commonFlags struct {
	rulesFile  string
	inputFile  string
	outputFile string
	maxDepth   int
	maxSize    int
}

func (c *commonFlags) install(fs *flag.FlagSet) {
	fs.StringVar(&c.rulesFile, "rules", "", "ruleset YAML file (required)")
	fs.StringVar(&c.inputFile, "input-file", "", "program file; a positional PROGRAM or stdin otherwise")
	fs.StringVar(&c.outputFile, "output-file", "", "write here instead of stdout")
	fs.IntVar(&c.maxDepth, "max-depth", rewrite.DefaultControl.MaxDepth, "maximum chain length")
	fs.IntVar(&c.maxSize, "max-size", rewrite.DefaultControl.MaxTermSize, "maximum term size")
}

func (c *commonFlags) control() *rewrite.Control {
	ctl := rewrite.DefaultControl.Copy()
	ctl.MaxDepth = c.maxDepth
	ctl.MaxTermSize = c.maxSize
	return ctl
}

func (c *commonFlags) ruleset() (*rules.Ruleset, error) {
	if c.rulesFile == "" {
		return nil, errors.New("--rules is required")
	}
	return rules.CompileFile(context.Background(), c.rulesFile, interpreters.Standard())
}

func (c *commonFlags) program(fs *flag.FlagSet) (*syntax.Program, error) {
	var src []byte
	var err error
	switch {
	case c.inputFile != "":
		if src, err = ioutil.ReadFile(c.inputFile); err != nil {
			return nil, err
		}
	case fs.NArg() > 0:
		src = []byte(fs.Arg(0))
	default:
		if src, err = ioutil.ReadAll(os.Stdin); err != nil {
			return nil, err
		}
	}
	return syntax.ParseProgram(string(src))
}

func (c *commonFlags) output() (io.WriteCloser, error) {
	if c.outputFile == "" {
		return os.Stdout, nil
	}
	return os.Create(c.outputFile)
}

func transform(args []string) error {
	fs := flag.NewFlagSet("transform", flag.ExitOnError)
	var c commonFlags
	c.install(fs)
	chain := fs.Bool("chain", false, "print every reduction chain")
	single := fs.Bool("single", false, "print one chosen result")
	jsonOut := fs.Bool("json", false, "machine-readable output")
	dot := fs.Bool("dot", false, "emit the reduction tree as Graphviz dot")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rs, err := c.ruleset()
	if err != nil {
		return err
	}
	program, err := c.program(fs)
	if err != nil {
		return err
	}

	out, err := c.output()
	if err != nil {
		return err
	}
	if c.outputFile != "" {
		defer out.Close()
	}

	ctx := rewrite.NewContext(rs, program.Obj)
	ctl := c.control()

	if *single {
		path, stopped := rewrite.Single(program.Obj, ctx, ctl)
		return writeSingle(out, path, stopped, *chain, *jsonOut)
	}

	w := rewrite.Chains(program.Obj, ctx, ctl)
	if *dot {
		return tools.ChainsDot(w, out)
	}
	return writeWalked(out, w, *chain, *jsonOut)
}

type transformOutput struct {
	Results []string   `json:"results"`
	Chains  [][]string `json:"chains,omitempty"`
	Stopped string     `json:"stopped"`
	Pruned  int        `json:"pruned,omitempty"`
}

func writeWalked(out io.Writer, w *rewrite.Walked, chains, jsonOut bool) error {
	if jsonOut {
		o := transformOutput{
			Stopped: w.StoppedBecause.String(),
			Pruned:  w.Pruned,
		}
		for _, t := range w.Results() {
			o.Results = append(o.Results, wrap(t))
		}
		if chains {
			for _, chain := range w.Chains {
				o.Chains = append(o.Chains, printedChain(chain))
			}
		}
		return writeJSON(out, o)
	}

	if chains {
		for i, chain := range w.Chains {
			fmt.Fprintf(out, "# chain %d\n", i+1)
			for _, t := range chain {
				fmt.Fprintf(out, "%s\n", wrap(t))
			}
			fmt.Fprintln(out)
		}
	}
	for _, t := range w.Results() {
		fmt.Fprintf(out, "%s\n", wrap(t))
	}
	if w.StoppedBecause == rewrite.Limited {
		fmt.Fprintf(out, "# %d branch(es) pruned\n", w.Pruned)
	}
	return nil
}

func writeSingle(out io.Writer, path []syntax.Object, stopped rewrite.StopReason, chains, jsonOut bool) error {
	last := path[len(path)-1]
	if jsonOut {
		o := transformOutput{
			Results: []string{wrap(last)},
			Stopped: stopped.String(),
		}
		if chains {
			o.Chains = [][]string{printedChain(path)}
		}
		return writeJSON(out, o)
	}
	if chains {
		for _, t := range path {
			fmt.Fprintf(out, "%s\n", wrap(t))
		}
		return nil
	}
	_, err := fmt.Fprintf(out, "%s\n", wrap(last))
	return err
}

func dataizeCmd(args []string) error {
	fs := flag.NewFlagSet("dataize", flag.ExitOnError)
	var c commonFlags
	c.install(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	rs, err := c.ruleset()
	if err != nil {
		return err
	}
	program, err := c.program(fs)
	if err != nil {
		return err
	}

	out, err := c.output()
	if err != nil {
		return err
	}
	if c.outputFile != "" {
		defer out.Close()
	}

	in := dataize.New(rs, c.control())
	r := in.Dataize(program.Obj)
	if r.IsBytes() {
		_, err = fmt.Fprintf(out, "%s\n", r.Bytes)
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", wrap(r.Term))
	return err
}

func wrap(t syntax.Object) string {
	return (&syntax.Program{Obj: t}).String()
}

func printedChain(chain []syntax.Object) []string {
	acc := make([]string, len(chain))
	for i, t := range chain {
		acc[i] = wrap(t)
	}
	return acc
}

func writeJSON(out io.Writer, x interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(&x)
}
