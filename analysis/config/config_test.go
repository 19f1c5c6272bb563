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
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

//go:embed testdata
var testfsys embed.FS

func checkMatch(t *testing.T, target string, cid CodeIdentifier, expected bool) {
	crate, path, method := splitTarget(target)
	if got := CompileRegexes(cid).MatchComponents(crate, path, method); got != expected {
		t.Errorf("%s matching %q: expected %v, got %v", cid, target, expected, got)
	}
}

func splitTarget(target string) (string, string, string) {
	segs := strings.Split(target, "::")
	switch len(segs) {
	case 1:
		return "", "", segs[0]
	case 2:
		return segs[0], "", segs[1]
	default:
		return segs[0], strings.Join(segs[1:len(segs)-1], "::"), segs[len(segs)-1]
	}
}

func TestCodeIdentifier_emptyMatchesAny(t *testing.T) {
	checkMatch(t, "ink::env::Env::caller", CodeIdentifier{}, true)
	checkMatch(t, "caller", CodeIdentifier{}, true)
}

func TestCodeIdentifier_fields(t *testing.T) {
	checkMatch(t, "ink::env::Env::caller", CodeIdentifier{Method: "caller"}, true)
	checkMatch(t, "ink::env::Env::caller", CodeIdentifier{Crate: "ink", Method: "caller"}, true)
	checkMatch(t, "ink::env::Env::caller", CodeIdentifier{Crate: "soroban_sdk", Method: "caller"}, false)
	checkMatch(t, "ink::env::Env::caller", CodeIdentifier{Path: "env::Env"}, true)
	checkMatch(t, "ink::env::Env::caller", CodeIdentifier{Path: "Env"}, false)
}

func TestCodeIdentifier_regexesAreAnchored(t *testing.T) {
	checkMatch(t, "ink::env::Env::caller_is_origin", CodeIdentifier{Method: "caller"}, false)
	checkMatch(t, "ink::storage::Mapping::insert", CodeIdentifier{Path: ".*Mapping", Method: "insert|remove"}, true)
	checkMatch(t, "ink::storage::Mapping::remove", CodeIdentifier{Path: ".*Mapping", Method: "insert|remove"}, true)
	checkMatch(t, "ink::storage::Mapping::get", CodeIdentifier{Path: ".*Mapping", Method: "insert|remove"}, false)
	checkMatch(t, "ink_env::api::caller", CodeIdentifier{Crate: "ink(_env)?", Method: "caller"}, true)
}

func TestCodeIdentifier_invalidRegexIsLiteral(t *testing.T) {
	cid := CompileRegexes(CodeIdentifier{Method: "f(("})
	if cid.computedRegexs != nil {
		t.Fatalf("invalid regex should not be compiled")
	}
	if !cid.MatchComponents("", "", "f((") || cid.MatchComponents("", "", "f") {
		t.Errorf("uncompiled identifiers should be compared as strings")
	}
}

func TestNewDefault(t *testing.T) {
	c := NewDefault()
	if c.MaxDepth != DefaultMaxCallDepth || c.MaxBlockVisits != DefaultMaxBlockVisits {
		t.Errorf("unexpected default bounds %d %d", c.MaxDepth, c.MaxBlockVisits)
	}
	if c.PlaceGranularity != GranularityField {
		t.Errorf("default granularity should be field-sensitive")
	}
	if !c.MatchDetectorFilter("anything") || !c.MatchFunctionFilter("anything") {
		t.Errorf("default filters should match everything")
	}
	if c.ExceedsMaxDepth(DefaultMaxCallDepth) || !c.ExceedsMaxDepth(DefaultMaxCallDepth+1) {
		t.Errorf("ExceedsMaxDepth is wrong")
	}
}

func loadFromTestDir(filename string) (string, *Config, error) {
	filename = filepath.Join("testdata", filename)
	b, err := testfsys.ReadFile(filename)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file %v: %v", filename, err)
	}
	config, err := Load(filename, b)
	if err != nil {
		return filename, nil, fmt.Errorf("failed to load file %v: %v", filename, err)
	}
	return filename, config, err
}

func TestLoad(t *testing.T) {
	name, c, err := loadFromTestDir("config.yaml")
	if err != nil {
		t.Fatalf("could not load %s: %v", name, err)
	}
	if c.LogLevel != int(DebugLevel) || !c.Verbose() {
		t.Errorf("expected debug log level, got %d", c.LogLevel)
	}
	if c.MaxDepth != 4 || c.MaxAlarms != 10 || c.NumWorkers != 2 {
		t.Errorf("unexpected options %+v", c.Options)
	}
	if c.MaxBlockVisits != DefaultMaxBlockVisits {
		t.Errorf("unspecified max-block-visits should default to %d", DefaultMaxBlockVisits)
	}
	if c.GuardPolicy != GuardPolicyFallback || c.PlaceGranularity != GranularityLocal {
		t.Errorf("unexpected policies %q %q", c.GuardPolicy, c.PlaceGranularity)
	}
	if !c.MatchDetectorFilter("unprotected-self-destruct") || c.MatchDetectorFilter("reentrancy") {
		t.Errorf("detector filter not applied")
	}
	if !c.MatchFunctionFilter("contract::Contract::f") || c.MatchFunctionFilter("lib::g") {
		t.Errorf("function filter not applied")
	}
	c.SetDetectorFilter("reentrancy")
	if !c.MatchDetectorFilter("reentrancy") || c.MatchDetectorFilter("unprotected-self-destruct") {
		t.Errorf("SetDetectorFilter not applied")
	}
	if c.RelPath("x.yaml") != filepath.Join("testdata", "x.yaml") {
		t.Errorf("RelPath should be relative to the config file, got %s", c.RelPath("x.yaml"))
	}
}

func TestLoadBadFormatFileReturnsError(t *testing.T) {
	_, config, err := loadFromTestDir("bad_format.yaml")
	if config != nil || err == nil {
		t.Errorf("Expected error and nil value when trying to load a badly formatted file.")
	}
}

func TestLoadBadGranularityReturnsError(t *testing.T) {
	_, config, err := loadFromTestDir("bad_granularity.yaml")
	if config != nil || err == nil {
		t.Errorf("Expected error and nil value when loading an invalid place granularity.")
	}
}

func TestLoadWithNoSpecifiedReportsDir(t *testing.T) {
	fileName, config, err := loadFromTestDir("config_with_reports.yaml")
	if config == nil || err != nil {
		t.Fatalf("Could not load %q: %v", fileName, err)
	}
	if config.ReportsDir == "" {
		t.Errorf("Expected reports-dir to be non-empty after loading config %q", fileName)
	}
	os.Remove(config.ReportsDir)
}

func TestLoadRuleFile(t *testing.T) {
	b, err := testfsys.ReadFile(filepath.Join("testdata", "rules.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	rf, err := LoadRuleFile(b)
	if err != nil {
		t.Fatalf("could not load rule file: %v", err)
	}
	if rf.Package != "custom" || len(rf.Rules) != 1 {
		t.Fatalf("unexpected rule file %+v", rf)
	}
	r := rf.Rules[0]
	if r.Name != "unprotected-upgrade" || r.SinkArg != "unconditional" || !r.FollowLocalCalls {
		t.Errorf("unexpected rule %+v", r)
	}
	if len(r.Sources) != 1 || r.Sources[0].Crate != "ink" || r.Sources[0].Method != "caller" {
		t.Errorf("unexpected sources %v", r.Sources)
	}

	if _, err := LoadRuleFile([]byte("rules: [{name: a, sources: [{method: b}]}]")); err == nil {
		t.Errorf("a rule without sink should be rejected")
	}
	if _, err := LoadRuleFile([]byte("rules: [{name: a, sink-ops: [mul]}, {name: a, sink-ops: [mul]}]")); err == nil {
		t.Errorf("duplicate rules should be rejected")
	}
}
