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
	"fmt"

	"github.com/awslabs/ar-guard/analysis/config"
	"github.com/awslabs/ar-guard/analysis/taint"
	"golang.org/x/exp/slices"
)

// A Detector is a named set of rules with its compiled classifier
type Detector struct {
	Rules      taint.Rules
	classifier *taint.Classifier
}

// New returns the detector of the rules
func New(rules taint.Rules) *Detector {
	return &Detector{Rules: rules, classifier: taint.NewClassifier(rules)}
}

// Name returns the name of the detector
func (d *Detector) Name() string {
	return d.Rules.Name
}

// Classifier returns the classifier of the detector
func (d *Detector) Classifier() *taint.Classifier {
	return d.classifier
}

var catalog = newCatalog(
	divideBeforeMultiply,
	dosUnexpectedRevertWithVector,
	setCodeHash,
	unprotectedMappingOperation,
	unprotectedSelfDestruct,
	unrestrictedTransferFrom,
	reentrancy,
)

func newCatalog(rules ...taint.Rules) []*Detector {
	ds := make([]*Detector, len(rules))
	for i, r := range rules {
		ds[i] = New(r)
	}
	slices.SortFunc(ds, func(a, b *Detector) bool { return a.Name() < b.Name() })
	return ds
}

// All returns the detectors of the catalog, sorted by name
func All() []*Detector {
	return slices.Clone(catalog)
}

// Get returns the detector of the catalog with the given name
func Get(name string) (*Detector, bool) {
	for _, d := range catalog {
		if d.Name() == name {
			return d, true
		}
	}
	return nil, false
}

// FromRuleFile returns the detectors described by a rule file
func FromRuleFile(rf *config.RuleFile) ([]*Detector, error) {
	var ds []*Detector
	for _, spec := range rf.Rules {
		rules, err := taint.RulesFromSpec(spec)
		if err != nil {
			return nil, err
		}
		if _, exists := Get(rules.Name); exists {
			return nil, fmt.Errorf("rule %s redefines a detector of the catalog", rules.Name)
		}
		ds = append(ds, New(rules))
	}
	return ds, nil
}
