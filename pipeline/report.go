package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/phicalculus/phin/tools"
)

// Markdown renders the report body.
func (r *Report) Markdown(cfg *ReportConfig) []byte {
	buf := &bytes.Buffer{}
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(buf, format+"\n", args...)
	}

	f("# Normalization report: %s", r.Title)
	f("")
	f("| program | formations | applications | dispatches | dataless | improved |")
	f("|---|---|---|---|---|---|")
	for _, res := range r.Results {
		f("| %s | %s | %s | %s | %s | %v |",
			res.Eo,
			delta(res.Before.Formations, res.After.Formations),
			delta(res.Before.Applications, res.After.Applications),
			delta(res.Before.Dispatches, res.After.Dispatches),
			delta(res.Before.Dataless, res.After.Dataless),
			res.Improved,
		)
	}
	f("")
	f("Improved programs: %.1f%%", r.ImprovedPct)

	if cfg != nil {
		if cfg.ExpectedImprovedPercentage > 0 {
			met := r.ImprovedPct >= cfg.ExpectedImprovedPercentage
			f("")
			f("Expected at least %.1f%% improved: met = %v", cfg.ExpectedImprovedPercentage, met)
		}
		for name, want := range cfg.ExpectedMetricsChange {
			got := 0
			for _, res := range r.Results {
				b, _ := res.Before.ByName(name)
				a, _ := res.After.ByName(name)
				got += b - a
			}
			f("")
			f("Expected %s to drop by at least %d: dropped %d, met = %v", name, want, got, got >= want)
		}
	}

	return buf.Bytes()
}

func delta(before, after int) string {
	return fmt.Sprintf("%d → %d", before, after)
}

// WriteFiles writes the configured report outputs.
func (r *Report) WriteFiles(cfg *ReportConfig) error {
	body := r.Markdown(cfg)

	if cfg.Output.Markdown != "" {
		if err := ioutil.WriteFile(cfg.Output.Markdown, body, 0644); err != nil {
			return err
		}
	}
	if cfg.Output.JSON != "" {
		js, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		if err := ioutil.WriteFile(cfg.Output.JSON, js, 0644); err != nil {
			return err
		}
	}
	if cfg.Output.HTML != "" {
		out, err := os.Create(cfg.Output.HTML)
		if err != nil {
			return err
		}
		if err := tools.RenderReportHTML(r.Title, body, out); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	}
	return nil
}
