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

package detectors

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/awslabs/ar-guard/analysis/config"
	"github.com/awslabs/ar-guard/analysis/ir"
	"github.com/awslabs/ar-guard/analysis/taint"
	"github.com/awslabs/ar-guard/internal/funcutil"
	"github.com/awslabs/ar-guard/internal/metrics"
	"gopkg.in/yaml.v3"
)

// RunResult is the result of running detectors on a program
type RunResult struct {
	// Findings are the findings of all the detectors, deduplicated and sorted by position
	Findings []taint.Finding

	// Truncated is the number of findings dropped because of the max-alarms option
	Truncated int

	// Analyzed is the number of (detector, function) pairs analyzed
	Analyzed int

	// FastNegatives is the number of analyses that returned without traversing the function
	FastNegatives int

	// ReportFile is the file the findings were written to, if the report-findings option is set
	ReportFile string
}

// job is the analysis of one function by one detector
type job struct {
	analyzer *taint.Analyzer
	function ir.FuncID
}

type jobResult struct {
	result   taint.Result
	err      error
	duration time.Duration
}

// Run analyzes every function of prog matching the function filter with every detector matching the detector filter.
// m may be nil. The errors of individual analyses do not stop the others; they are returned joined.
func Run(cfg *config.Config, logger *config.LogGroup, prog *ir.Program, detectors []*Detector,
	m *metrics.Metrics) (RunResult, error) {
	var res RunResult
	start := time.Now()

	var jobs []job
	for _, d := range funcutil.Filter(detectors, func(d *Detector) bool { return cfg.MatchDetectorFilter(d.Name()) }) {
		analyzer, err := taint.NewAnalyzer(cfg, logger, d.Classifier(), prog)
		if err != nil {
			return res, fmt.Errorf("detector %s: %w", d.Name(), err)
		}
		for _, fn := range prog.Functions() {
			if cfg.MatchFunctionFilter(string(fn)) {
				jobs = append(jobs, job{analyzer: analyzer, function: fn})
			}
		}
	}

	numWorkers := cfg.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	logger.Infof("Running %d analyses on %d functions with %d workers ...", len(jobs), prog.Len(), numWorkers)
	results := funcutil.MapParallel(jobs, runJob, numWorkers)

	var errs []error
	var findings []taint.Finding
	for _, r := range results {
		res.Analyzed++
		if r.result.FastNegative {
			res.FastNegatives++
		}
		m.ObserveAnalysis(r.result.Detector, r.duration, r.result.FastNegative, r.result.Findings.Len(), r.err)
		if r.err != nil {
			logger.Errorf("%s failed on %s: %v", r.result.Detector, r.result.Function, r.err)
			errs = append(errs, fmt.Errorf("%s on %s: %w", r.result.Detector, r.result.Function, r.err))
			continue
		}
		findings = append(findings, r.result.Findings.Items()...)
	}

	findings = taint.Dedup(findings)
	taint.Sort(findings)
	if cfg.MaxAlarms > 0 && len(findings) > cfg.MaxAlarms {
		logger.Warnf("%d findings, only the first %d are reported (max-alarms)", len(findings), cfg.MaxAlarms)
		res.Truncated = len(findings) - cfg.MaxAlarms
		findings = findings[:cfg.MaxAlarms]
	}
	res.Findings = findings

	if cfg.ReportFindings {
		file, err := writeReport(cfg.ReportsDir, findings)
		if err != nil {
			errs = append(errs, err)
		} else {
			logger.Infof("Findings written in %s", file)
			res.ReportFile = file
		}
	}

	logger.Infof("Analyses done (%.2f s): %d findings, %d fast negatives, %d errors.",
		time.Since(start).Seconds(), len(findings), res.FastNegatives, len(errs))
	return res, errors.Join(errs...)
}

func runJob(j job) jobResult {
	start := time.Now()
	r, err := j.analyzer.Analyze(j.function)
	return jobResult{result: r, err: err, duration: time.Since(start)}
}

// writeReport writes the findings in a new findings-*.yaml file of dir, and returns the name of the file
func writeReport(dir string, findings []taint.Finding) (string, error) {
	tmp, err := os.CreateTemp(dir, "findings-*.yaml")
	if err != nil {
		return "", fmt.Errorf("could not create report file: %w", err)
	}
	defer tmp.Close()
	enc := yaml.NewEncoder(tmp)
	enc.SetIndent(2)
	if err := enc.Encode(findingsReport{Findings: findings}); err != nil {
		return "", fmt.Errorf("could not write report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("could not write report: %w", err)
	}
	return tmp.Name(), nil
}

type findingsReport struct {
	Findings []taint.Finding `yaml:"findings"`
}

// ReadReport reads a report written by Run
func ReadReport(b []byte) ([]taint.Finding, error) {
	var report findingsReport
	if err := yaml.Unmarshal(b, &report); err != nil {
		return nil, fmt.Errorf("could not read report: %w", err)
	}
	return report.Findings, nil
}
