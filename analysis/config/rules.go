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

package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// RuleFile is the content of a detector rule file, compiled into Go source by the rulegen tool.
type RuleFile struct {
	// Package is the Go package of the generated file
	Package string     `yaml:"package"`
	Rules   []RuleSpec `yaml:"rules"`
}

// RuleSpec describes one detector: the call targets playing each role and the options of the taint analysis.
type RuleSpec struct {
	// Name is the detector name, e.g. "unprotected-self-destruct"
	Name string `yaml:"name"`
	// Var is the name of the generated Go variable. Derived from Name when empty.
	Var     string `yaml:"var"`
	Message string `yaml:"message"`
	Help    string `yaml:"help"`

	Sources      []CodeIdentifier `yaml:"sources"`
	Sinks        []CodeIdentifier `yaml:"sinks"`
	Guards       []CodeIdentifier `yaml:"guards"`
	PassThroughs []CodeIdentifier `yaml:"pass-throughs"`

	// SinkArg is an argument index, "any" or "unconditional". Defaults to "any".
	SinkArg string `yaml:"sink-arg"`
	// SinkOps are binary operators acting as sinks when one of their operands is tainted
	SinkOps []string `yaml:"sink-ops"`
	// TaintOps are binary operators whose result is always tainted
	TaintOps []string `yaml:"taint-ops"`

	TaintParams      bool   `yaml:"taint-params"`
	FollowLocalCalls bool   `yaml:"follow-local-calls"`
	ConsumeOnSink    bool   `yaml:"consume-on-sink"`
	GuardPolicy      string `yaml:"guard-policy"`
}

// LoadRuleFile reads a rule file
func LoadRuleFile(b []byte) (*RuleFile, error) {
	rf := &RuleFile{}
	if err := yaml.Unmarshal(b, rf); err != nil {
		return nil, fmt.Errorf("could not unmarshal rule file: %w", err)
	}
	seen := map[string]bool{}
	for _, r := range rf.Rules {
		if r.Name == "" {
			return nil, fmt.Errorf("rule without name")
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("duplicate rule %q", r.Name)
		}
		seen[r.Name] = true
		if len(r.Sinks) == 0 && len(r.SinkOps) == 0 {
			return nil, fmt.Errorf("rule %q has no sink", r.Name)
		}
		switch r.GuardPolicy {
		case "", GuardPolicySticky, GuardPolicyFallback, GuardPolicyNone:
		default:
			return nil, fmt.Errorf("rule %q: invalid guard-policy %q", r.Name, r.GuardPolicy)
		}
	}
	return rf, nil
}
