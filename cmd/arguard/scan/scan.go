// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package scan implements the front-end of the detectors: it loads the program dumps, runs the selected detectors
// and prints the findings.
package scan

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/awslabs/ar-guard/analysis"
	"github.com/awslabs/ar-guard/analysis/config"
	"github.com/awslabs/ar-guard/analysis/detectors"
	"github.com/awslabs/ar-guard/analysis/taint"
	"github.com/awslabs/ar-guard/cmd/arguard/tools"
	"github.com/awslabs/ar-guard/internal/formatutil"
	"github.com/awslabs/ar-guard/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

const usage = ` Run the detectors on the functions of a program.
Usage:
  arguard scan [options] <IR file path(s)>
Examples:
  % arguard scan -config config.yaml contract.yaml
  % arguard scan -detectors 'set-code-hash|unprotected-self-destruct' contract.txtar
  % arguard scan -rules my-rules.yaml -metrics contract.yaml
`

// Flags represents the parsed flags of the scan command.
type Flags struct {
	tools.CommonFlags

	// Detectors overrides the detector filter of the config
	Detectors string

	// Functions overrides the function filter of the config
	Functions string

	// RulesPath is the path of a rule file declaring detectors that are run in addition to the catalog
	RulesPath string

	// Metrics prints the analysis counters after the findings
	Metrics bool

	// FailOnFindings makes the command exit with status 1 when there are findings
	FailOnFindings bool
}

// NewFlags returns the parsed flags for the scan command with args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("scan")
	detectorFilter := flags.FlagSet.String("detectors", "", "regex of the names of the detectors to run (overrides config)")
	functionFilter := flags.FlagSet.String("functions", "", "regex of the functions to analyze (overrides config)")
	rulesPath := flags.FlagSet.String("rules", "", "rule file declaring additional detectors")
	printMetrics := flags.FlagSet.Bool("metrics", false, "print the analysis counters")
	fail := flags.FlagSet.Bool("fail", false, "exit with status 1 if there are findings")
	tools.SetUsage(flags.FlagSet, usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{
		CommonFlags:    common,
		Detectors:      *detectorFilter,
		Functions:      *functionFilter,
		RulesPath:      *rulesPath,
		Metrics:        *printMetrics,
		FailOnFindings: *fail,
	}, nil
}

// Run runs the scan with flags. It returns true if there are findings.
func Run(flags Flags) (bool, error) {
	cfg, err := tools.LoadConfig(flags.ConfigPath)
	if err != nil {
		return false, err
	}
	// Override config parameters with command-line parameters
	if flags.Verbose {
		cfg.LogLevel = int(config.DebugLevel)
	}
	if flags.Detectors != "" {
		cfg.SetDetectorFilter(flags.Detectors)
	}
	if flags.Functions != "" {
		cfg.SetFunctionFilter(flags.Functions)
	}
	logger := config.NewLogGroup(cfg)
	logger.Infof(formatutil.Faint("Arguard scan - " + analysis.Version))

	dets := detectors.All()
	if flags.RulesPath != "" {
		custom, err := loadRules(flags.RulesPath)
		if err != nil {
			return false, err
		}
		dets = append(dets, custom...)
	}

	logger.Infof(formatutil.Faint("Reading program dumps"))
	prog, err := tools.LoadProgram(flags.FlagSet.Args())
	if err != nil {
		return false, err
	}
	logger.Infof("Loaded %d functions", prog.Len())

	var m *metrics.Metrics
	registry := prometheus.NewRegistry()
	if flags.Metrics {
		m = metrics.New(registry)
	}

	start := time.Now()
	res, err := detectors.Run(cfg, logger, prog, dets, m)
	duration := time.Since(start)
	if err != nil {
		// analysis errors are reported, the findings of the other functions are still printed
		for _, e := range strings.Split(err.Error(), "\n") {
			logger.Errorf("%s", e)
		}
	}

	logger.Infof("")
	logger.Infof(strings.Repeat("*", 80))
	logger.Infof("Analyzed %d function(s) in %3.4f s (%d fast negative(s))",
		res.Analyzed, duration.Seconds(), res.FastNegatives)
	Report(os.Stdout, res)
	if res.ReportFile != "" {
		logger.Infof("Findings written in %s", res.ReportFile)
	}
	if flags.Metrics {
		if err := printSummary(os.Stdout, registry); err != nil {
			return false, err
		}
	}
	if err != nil {
		return len(res.Findings) > 0, fmt.Errorf("some analyses failed")
	}
	return len(res.Findings) > 0, nil
}

func loadRules(path string) ([]*detectors.Detector, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read rule file: %w", err)
	}
	rf, err := config.LoadRuleFile(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return detectors.FromRuleFile(rf)
}

// Report prints the findings of res to w
func Report(w io.Writer, res detectors.RunResult) {
	if len(res.Findings) == 0 {
		fmt.Fprintf(w, "RESULT:\n\t\t%s\n", formatutil.Green("No findings ✓"))
		return
	}
	fmt.Fprintf(w, "RESULT:\n\t\t%s\n", formatutil.Red(fmt.Sprintf("%d finding(s)", len(res.Findings))))
	for _, f := range res.Findings {
		printFinding(w, f)
	}
	if res.Truncated > 0 {
		fmt.Fprintf(w, "%s\n", formatutil.Yellow(fmt.Sprintf("%d finding(s) omitted (max-alarms)", res.Truncated)))
	}
}

func printFinding(w io.Writer, f taint.Finding) {
	fmt.Fprintf(w, "%s %s: %s\n", formatutil.Red("["+f.Detector+"]"), formatutil.Bold(f.Span.String()),
		formatutil.Sanitize(f.Message))
	fmt.Fprintf(w, "\tin %s", formatutil.Sanitize(string(f.Function)))
	if f.Location != f.Function {
		fmt.Fprintf(w, " (through %s)", formatutil.Sanitize(string(f.Location)))
	}
	fmt.Fprintf(w, ", %s\n", f.SinkRole)
	if f.HelpText != "" {
		fmt.Fprintf(w, "%s\n", formatutil.Indent(formatutil.Faint("help: "+f.HelpText), "\t"))
	}
}

func printSummary(w io.Writer, registry *prometheus.Registry) error {
	summary, err := metrics.Summary(registry)
	if err != nil {
		return fmt.Errorf("could not gather metrics: %w", err)
	}
	keys := make([]string, 0, len(summary))
	for k := range summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintf(w, "METRICS:\n")
	for _, k := range keys {
		fmt.Fprintf(w, "\t%s %v\n", k, summary[k])
	}
	return nil
}
