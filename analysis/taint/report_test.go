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
	"testing"

	"github.com/awslabs/ar-guard/analysis/ir"
	"gopkg.in/yaml.v3"
)

func TestDedupAndSort(t *testing.T) {
	mk := func(detector string, file string, line int) Finding {
		return Finding{Detector: detector, Location: "c::f", Span: ir.Span{File: file, Line: line, Col: 1}, SinkRole: "s"}
	}
	fs := &Findings{}
	fs.Add(mk("b", "lib.rs", 10))
	fs.Add(mk("a", "lib.rs", 10))
	fs.Add(mk("b", "lib.rs", 10))
	other := &Findings{}
	other.Add(mk("a", "a.rs", 20))
	fs.Append(other)
	fs.Append(nil)
	if fs.Len() != 4 {
		t.Fatalf("expected 4 findings, got %d", fs.Len())
	}
	items := Dedup(fs.Items())
	if len(items) != 3 {
		t.Fatalf("expected 3 findings after dedup, got %d", len(items))
	}
	Sort(items)
	if items[0].Span.File != "a.rs" || items[1].Detector != "a" || items[2].Detector != "b" {
		t.Errorf("unexpected order %v", items)
	}
	var nilFindings *Findings
	if nilFindings.Len() != 0 || nilFindings.Items() != nil {
		t.Errorf("nil findings should be empty")
	}
}

func TestFindingYaml(t *testing.T) {
	help := ir.Span{File: "lib.rs", Line: 1, Col: 1}
	f := Finding{
		Detector: "set-code-hash",
		Function: "c::C::upgrade",
		Location: "c::C::upgrade",
		Span:     ir.Span{File: "lib.rs", Line: 5, Col: 9},
		SinkRole: "ink::env::set_code_hash",
		Message:  "unprotected set_code_hash",
		HelpSpan: &help,
	}
	b, err := yaml.Marshal([]Finding{f})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var back []Finding
	if err := yaml.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal failed: %v\n%s", err, b)
	}
	if len(back) != 1 || back[0].Span != f.Span || back[0].HelpSpan == nil || *back[0].HelpSpan != help {
		t.Errorf("finding did not survive yaml encoding: %+v", back)
	}
}
