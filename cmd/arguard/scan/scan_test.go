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

package scan

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awslabs/ar-guard/analysis/detectors"
	"github.com/awslabs/ar-guard/analysis/ir"
	"github.com/awslabs/ar-guard/analysis/taint"
)

const contract = `
functions:
  - id: contract::Contract::upgrade
    params: [_1, _2]
    span: lib.rs:10:5
    blocks:
      - terminator: {kind: call, func: ink::env::set_code_hash, args: [copy _2], dest: _3, target: 1, span: lib.rs:11:9}
      - terminator: {kind: return}
  - id: contract::Contract::get
    params: [_1]
    return: _0
    span: lib.rs:20:5
    blocks:
      - statements:
          - {dest: _0, rvalue: "copy _1.value", span: lib.rs:21:9}
        terminator: {kind: return}
`

func writeContract(t *testing.T) string {
	file := filepath.Join(t.TempDir(), "contract.yaml")
	if err := os.WriteFile(file, []byte(contract), 0600); err != nil {
		t.Fatal(err)
	}
	return file
}

func TestRun(t *testing.T) {
	file := writeContract(t)
	flags, err := NewFlags([]string{"-detectors", "set-code-hash", "-metrics", file})
	if err != nil {
		t.Fatal(err)
	}
	if flags.Detectors != "set-code-hash" || !flags.Metrics || flags.FailOnFindings {
		t.Errorf("unexpected flags %+v", flags)
	}
	found, err := Run(flags)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !found {
		t.Errorf("expected a finding in contract::Contract::upgrade")
	}
}

func TestRunNoFindings(t *testing.T) {
	file := writeContract(t)
	flags, err := NewFlags([]string{"-functions", "contract::Contract::get", file})
	if err != nil {
		t.Fatal(err)
	}
	found, err := Run(flags)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if found {
		t.Errorf("contract::Contract::get should not have findings")
	}
}

func TestRunMissingInput(t *testing.T) {
	flags, err := NewFlags([]string{filepath.Join(t.TempDir(), "missing.yaml")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Run(flags); err == nil || !strings.Contains(err.Error(), "could not load program") {
		t.Errorf("expected a load error, got %v", err)
	}
}

func TestReport(t *testing.T) {
	var buf bytes.Buffer
	Report(&buf, detectors.RunResult{})
	if !strings.Contains(buf.String(), "No findings") {
		t.Errorf("unexpected report %q", buf.String())
	}

	buf.Reset()
	res := detectors.RunResult{
		Findings: []taint.Finding{{
			Detector: "set-code-hash",
			Function: "c::upgrade",
			Location: "c::do_upgrade",
			Span:     ir.Span{File: "lib.rs", Line: 31, Col: 9},
			SinkRole: "call to ink::env::set_code_hash",
			Message:  "code hash set without authorization",
			HelpText: "check the caller first",
		}},
		Truncated: 2,
	}
	Report(&buf, res)
	out := buf.String()
	for _, s := range []string{"1 finding(s)", "lib.rs:31:9", "through c::do_upgrade", "help: check the caller",
		"2 finding(s) omitted"} {
		if !strings.Contains(out, s) {
			t.Errorf("report %q should contain %q", out, s)
		}
	}
}
