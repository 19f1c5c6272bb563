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

// Package metrics defines the Prometheus instrumentation of detector runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the counters and histograms updated by detector runs. A nil *Metrics is valid and records nothing.
type Metrics struct {
	FunctionsAnalyzed *prometheus.CounterVec
	FastNegatives     *prometheus.CounterVec
	Findings          *prometheus.CounterVec
	AnalysisErrors    *prometheus.CounterVec
	AnalysisDuration  prometheus.Histogram
}

// New creates the metrics and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FunctionsAnalyzed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arguard_functions_analyzed_total",
			Help: "Total number of function bodies analyzed, per detector",
		}, []string{"detector"}),
		FastNegatives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arguard_fast_negatives_total",
			Help: "Total number of analyses that returned without traversal because no sink or source was found",
		}, []string{"detector"}),
		Findings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arguard_findings_total",
			Help: "Total number of findings reported, per detector",
		}, []string{"detector"}),
		AnalysisErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "arguard_analysis_errors_total",
			Help: "Total number of analyses aborted on malformed input, per detector",
		}, []string{"detector"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arguard_analysis_duration_seconds",
			Help:    "Duration of the analysis of one function by one detector",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	reg.MustRegister(m.FunctionsAnalyzed, m.FastNegatives, m.Findings, m.AnalysisErrors, m.AnalysisDuration)
	return m
}

// ObserveAnalysis records one analysis of a function by the detector
func (m *Metrics) ObserveAnalysis(detector string, d time.Duration, fastNegative bool, findings int, err error) {
	if m == nil {
		return
	}
	m.FunctionsAnalyzed.WithLabelValues(detector).Inc()
	m.AnalysisDuration.Observe(d.Seconds())
	if fastNegative {
		m.FastNegatives.WithLabelValues(detector).Inc()
	}
	if findings > 0 {
		m.Findings.WithLabelValues(detector).Add(float64(findings))
	}
	if err != nil {
		m.AnalysisErrors.WithLabelValues(detector).Inc()
	}
}

// Summary returns the value of every counter of the registry gatherer, keyed by metric name and label values,
// e.g. "arguard_findings_total{reentrancy}".
func Summary(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}
	res := map[string]float64{}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			key := mf.GetName()
			if labels := m.GetLabel(); len(labels) > 0 {
				key += "{"
				for i, l := range labels {
					if i > 0 {
						key += ","
					}
					key += l.GetValue()
				}
				key += "}"
			}
			res[key] = m.GetCounter().GetValue()
		}
	}
	return res, nil
}
