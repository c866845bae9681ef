package pipeline

import (
	"context"
	"io/ioutil"
	"log"

	"github.com/phicalculus/phin/rewrite"
	"github.com/phicalculus/phin/rules"
	"github.com/phicalculus/phin/syntax"
)

// Result is the outcome for one test set.
type Result struct {
	Eo       string  `json:"eo"`
	Before   Metrics `json:"before"`
	After    Metrics `json:"after"`
	Improved bool    `json:"improved"`
	Cached   bool    `json:"cached"`
}

// Report is the outcome of a pipeline run.
type Report struct {
	Title       string    `json:"title"`
	Results     []*Result `json:"results"`
	ImprovedPct float64   `json:"improved-percentage"`
}

// Run normalizes every enabled test set and collects metrics.  The
// store may be nil to disable caching.
func Run(ctx context.Context, cfg *Config, rs *rules.Ruleset, store *Store, c *rewrite.Control) (*Report, error) {
	report := &Report{Title: rs.Title}

	improved := 0
	for _, ts := range cfg.TestSets {
		if !ts.Enabled() {
			log.Printf("skipping disabled test set %s", ts.Eo)
			continue
		}

		res, err := runOne(ctx, ts, rs, store, c)
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, res)
		if res.Improved {
			improved++
		}
	}

	if n := len(report.Results); n > 0 {
		report.ImprovedPct = 100 * float64(improved) / float64(n)
	}
	return report, nil
}

func runOne(ctx context.Context, ts *TestSet, rs *rules.Ruleset, store *Store, c *rewrite.Control) (*Result, error) {
	src, err := ioutil.ReadFile(ts.Phi)
	if err != nil {
		return nil, err
	}
	program, err := syntax.ParseProgram(string(src))
	if err != nil {
		return nil, err
	}

	normalized, cached, err := normalize(program.Obj, string(src), rs, store, c)
	if err != nil {
		return nil, err
	}

	if ts.PhiNormalized != "" {
		out := (&syntax.Program{Obj: normalized}).String() + "\n"
		if err := ioutil.WriteFile(ts.PhiNormalized, []byte(out), 0644); err != nil {
			return nil, err
		}
	}

	before, err := scopedMetrics(program.Obj, ts.BindingsPathBefore, ts)
	if err != nil {
		return nil, err
	}
	after, err := scopedMetrics(normalized, ts.BindingsPathAfter, ts)
	if err != nil {
		return nil, err
	}

	return &Result{
		Eo:       ts.Eo,
		Before:   before,
		After:    after,
		Improved: after.Total() < before.Total(),
		Cached:   cached,
	}, nil
}

func normalize(obj syntax.Object, src string, rs *rules.Ruleset, store *Store, c *rewrite.Control) (syntax.Object, bool, error) {
	var key []byte
	if store != nil {
		key = CacheKey(src, rs)
		if hit, have, err := store.Normalized(key); err != nil {
			return nil, false, err
		} else if have {
			return hit, true, nil
		}
	}

	ctx := rewrite.NewContext(rs, obj)
	chain, _ := rewrite.Single(obj, ctx, c)
	normalized := chain[len(chain)-1]

	if store != nil {
		if err := store.SaveNormalized(key, normalized); err != nil {
			return nil, false, err
		}
	}
	return normalized, false, nil
}

func scopedMetrics(obj syntax.Object, path string, ts *TestSet) (Metrics, error) {
	scoped, err := FindByPath(obj, path)
	if err != nil {
		return Metrics{}, err
	}
	return Collect(scoped, ts.Excluded), nil
}
