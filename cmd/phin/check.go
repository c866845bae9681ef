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
	"fmt"
	"log"
	"os"

	"github.com/phicalculus/phin/confluence"
	"github.com/phicalculus/phin/interpreters"
	"github.com/phicalculus/phin/pipeline"
	"github.com/phicalculus/phin/rules"
)

func confluenceCmd(args []string) error {
	fs := flag.NewFlagSet("confluence", flag.ExitOnError)
	rulesFile := fs.String("rules", "", "ruleset YAML file (required)")
	samples := fs.Int("samples", confluence.DefaultConfig.Samples, "random formations to try")
	seed := fs.Int64("seed", confluence.DefaultConfig.Seed, "random seed")
	depth := fs.Int("depth", confluence.DefaultConfig.MaxJoinDepth, "joinability search depth")
	size := fs.Int("size", confluence.DefaultConfig.MaxTermSize, "descendant size bound")
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

	cfg := confluence.DefaultConfig
	cfg.Samples = *samples
	cfg.Seed = *seed
	cfg.MaxJoinDepth = *depth
	cfg.MaxTermSize = *size

	if fail := confluence.Check(rs, cfg); fail != nil {
		fmt.Fprintf(os.Stderr, "%s\n", fail)
		return notConfluent
	}
	fmt.Printf("ok: %d samples, no divergent critical pair\n", cfg.Samples)
	return nil
}

func reportCmd(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	configFile := fs.String("config", "", "pipeline YAML file (required)")
	rulesFile := fs.String("rules", "", "ruleset YAML file (required)")
	cacheFile := fs.String("cache", "", "optional bbolt cache file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *configFile == "" || *rulesFile == "" {
		return errors.New("--config and --rules are required")
	}

	ctx := context.Background()

	rs, err := rules.CompileFile(ctx, *rulesFile, interpreters.Standard())
	if err != nil {
		return err
	}
	cfg, err := pipeline.LoadConfig(*configFile)
	if err != nil {
		return err
	}

	var store *pipeline.Store
	if *cacheFile != "" {
		store = pipeline.NewStore(*cacheFile)
		if err := store.Open(ctx); err != nil {
			return err
		}
		defer store.Close(ctx)
	}

	report, err := pipeline.Run(ctx, cfg, rs, store, nil)
	if err != nil {
		return err
	}
	if err := report.WriteFiles(&cfg.Report); err != nil {
		return err
	}

	log.Printf("report: %d programs, %.1f%% improved", len(report.Results), report.ImprovedPct)
	if cfg.Report.Output.Markdown == "" {
		os.Stdout.Write(report.Markdown(&cfg.Report))
	}
	return nil
}
