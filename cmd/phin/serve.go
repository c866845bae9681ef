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
	"errors"
	"flag"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	. "github.com/phicalculus/phin/util/testutil"

	"github.com/phicalculus/phin/dataize"
	"github.com/phicalculus/phin/interpreters"
	"github.com/phicalculus/phin/rewrite"
	"github.com/phicalculus/phin/rules"
	"github.com/phicalculus/phin/syntax"
)

// transformRequest is one WebSocket message from a client.
type transformRequest struct {
	Id      string `json:"id,omitempty"`
	Program string `json:"program"`
	Single  bool   `json:"single,omitempty"`
	Chain   bool   `json:"chain,omitempty"`
	Dataize bool   `json:"dataize,omitempty"`
}

// transformResponse answers one request.
type transformResponse struct {
	Id      string     `json:"id,omitempty"`
	Results []string   `json:"results,omitempty"`
	Chains  [][]string `json:"chains,omitempty"`
	Bytes   string     `json:"bytes,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// serve answers transform requests over WebSockets.  The ruleset is
// fixed at startup; each message carries a program.
func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	rulesFile := fs.String("rules", "", "ruleset YAML file (required)")
	addr := fs.String("addr", ":8080", "listen address")
	fs.BoolVar(&Verbose, "v", false, "log requests")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *rulesFile == "" {
		return errors.New("--rules is required")
	}

	rs, err := rules.CompileFile(context.Background(), *rulesFile, interpreters.Standard())
	if err != nil {
		return err
	}

	var upgrader = websocket.Upgrader{} // use default options

	api := func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error", err)
			return
		}
		defer c.Close()

		for {
			var req transformRequest
			if err := c.ReadJSON(&req); err != nil {
				log.Println("read error", err)
				return
			}
			Logf("request %s", JS(req))
			resp := answer(rs, &req)
			if err := c.WriteJSON(&resp); err != nil {
				log.Println("write error", err)
				return
			}
		}
	}

	http.HandleFunc("/transform", api)
	log.Printf("listening on %s", *addr)
	return http.ListenAndServe(*addr, nil)
}

func answer(rs *rules.Ruleset, req *transformRequest) *transformResponse {
	resp := &transformResponse{Id: req.Id}

	program, err := syntax.ParseProgram(req.Program)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}

	if req.Dataize {
		in := dataize.New(rs, nil)
		r := in.Dataize(program.Obj)
		if r.IsBytes() {
			resp.Bytes = r.Bytes.String()
		} else {
			resp.Results = []string{wrap(r.Term)}
		}
		return resp
	}

	ctx := rewrite.NewContext(rs, program.Obj)

	if req.Single {
		path, _ := rewrite.Single(program.Obj, ctx, nil)
		resp.Results = []string{wrap(path[len(path)-1])}
		if req.Chain {
			resp.Chains = [][]string{printedChain(path)}
		}
		return resp
	}

	w := rewrite.Chains(program.Obj, ctx, nil)
	for _, t := range w.Results() {
		resp.Results = append(resp.Results, wrap(t))
	}
	if req.Chain {
		for _, chain := range w.Chains {
			resp.Chains = append(resp.Chains, printedChain(chain))
		}
	}
	return resp
}
