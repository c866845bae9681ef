// Package pipeline batches normalization over test sets and reports
// metric changes.
//
// The pipeline consumes φ artifacts: each test set names the source
// .eo file for reference, but the driver reads the translated φ file,
// normalizes it under the ruleset, and compares metrics of a scoped
// subtree before and after.  Results are cached in a bbolt store
// keyed by a digest of the program and the ruleset, so unchanged
// entries cost nothing on re-runs.
package pipeline

import (
	"io/ioutil"
	"strings"

	"gopkg.in/yaml.v2"
)

// Config is the YAML pipeline configuration.
type Config struct {
	Report   ReportConfig `yaml:"report"`
	TestSets []*TestSet   `yaml:"test-sets"`
}

// ReportConfig describes outputs and expectations.
type ReportConfig struct {
	Output ReportOutput `yaml:"output"`

	// ExpectedMetricsChange maps metric names to the least
	// improvement (before minus after) the report should flag as
	// met.
	ExpectedMetricsChange map[string]int `yaml:"expected-metrics-change,omitempty"`

	// ExpectedImprovedPercentage is the share of programs that
	// should improve.
	ExpectedImprovedPercentage float64 `yaml:"expected-improved-percentage,omitempty"`
}

// ReportOutput names the files to write.  Empty fields are skipped.
type ReportOutput struct {
	Markdown string `yaml:"markdown,omitempty"`
	JSON     string `yaml:"json,omitempty"`
	HTML     string `yaml:"html,omitempty"`
}

// TestSet pairs a source program with its artifacts and scoping.
type TestSet struct {
	Eo            string `yaml:"eo"`
	Phi           string `yaml:"phi"`
	PhiNormalized string `yaml:"phi-normalized,omitempty"`

	// BindingsPathBefore/After are dotted attribute paths that
	// scope metrics to a subtree of the (un)normalized program.
	BindingsPathBefore string `yaml:"bindings-path-before,omitempty"`
	BindingsPathAfter  string `yaml:"bindings-path-after,omitempty"`

	Enable  *bool    `yaml:"enable,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// Enabled defaults to true.
func (ts *TestSet) Enabled() bool {
	return ts.Enable == nil || *ts.Enable
}

// Excluded reports whether a test object label is excluded.
func (ts *TestSet) Excluded(label string) bool {
	for _, x := range ts.Exclude {
		if x == label {
			return true
		}
	}
	return false
}

// PathParts splits a dotted bindings path.
func PathParts(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// ParseConfig reads the YAML configuration.
func ParseConfig(bs []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(bs, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig reads a configuration file.
func LoadConfig(filename string) (*Config, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParseConfig(bs)
}
