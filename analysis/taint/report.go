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

package taint

import (
	"fmt"

	"github.com/awslabs/ar-guard/analysis/ir"
	"golang.org/x/exp/slices"
)

// A Finding is a sink reached with tainted data, or reached unconditionally, on an unguarded path
type Finding struct {
	// Detector is the name of the detector that reported the finding
	Detector string `yaml:"detector"`
	// Function is the analyzed function
	Function ir.FuncID `yaml:"function"`
	// Location is the function containing the sink. It differs from Function when the sink is in a callee.
	Location ir.FuncID `yaml:"location"`
	// Span is the position of the sink call or operation
	Span ir.Span `yaml:"span"`
	// SinkRole identifies the sink: the call target or the operator
	SinkRole string   `yaml:"sink"`
	Message  string   `yaml:"message"`
	HelpSpan *ir.Span `yaml:"help-span,omitempty"`
	HelpText string   `yaml:"help,omitempty"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: [%s] %s (%s in %s)", f.Span, f.Detector, f.Message, f.SinkRole, f.Location)
}

// key identifies the findings reported at the same place by the same detector
func (f Finding) key() string {
	return f.Detector + "|" + string(f.Location) + "|" + f.Span.String() + "|" + f.SinkRole
}

// Findings is an append-only sequence of findings
type Findings struct {
	items []Finding
}

// Add appends a finding
func (fs *Findings) Add(f Finding) {
	fs.items = append(fs.items, f)
}

// Append appends all the findings of other
func (fs *Findings) Append(other *Findings) {
	if other == nil {
		return
	}
	fs.items = append(fs.items, other.items...)
}

// Items returns the findings in the order they were added
func (fs *Findings) Items() []Finding {
	if fs == nil {
		return nil
	}
	return fs.items
}

// Len returns the number of findings
func (fs *Findings) Len() int {
	if fs == nil {
		return 0
	}
	return len(fs.items)
}

// Dedup returns the findings without duplicates: two findings are duplicates when they are reported by the same
// detector for the same sink at the same position. The first occurrence is kept.
func Dedup(items []Finding) []Finding {
	seen := map[string]bool{}
	var res []Finding
	for _, f := range items {
		k := f.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		res = append(res, f)
	}
	return res
}

// Sort sorts the findings by file, position, detector and function
func Sort(items []Finding) {
	slices.SortStableFunc(items, func(a, b Finding) bool {
		if a.Span.File != b.Span.File {
			return a.Span.File < b.Span.File
		}
		if a.Span.Line != b.Span.Line {
			return a.Span.Line < b.Span.Line
		}
		if a.Span.Col != b.Span.Col {
			return a.Span.Col < b.Span.Col
		}
		if a.Detector != b.Detector {
			return a.Detector < b.Detector
		}
		if a.Location != b.Location {
			return a.Location < b.Location
		}
		return a.Function < b.Function
	})
}
