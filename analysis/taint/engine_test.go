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
	_ "embed"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/awslabs/ar-guard/analysis/config"
	"github.com/awslabs/ar-guard/analysis/ir"
)

//go:embed testdata/scenarios.txtar
var scenarios []byte

var testRules = Rules{
	Name:             "test",
	Message:          "tainted data reaches a sink",
	Help:             "check the caller first",
	Sources:          []config.CodeIdentifier{{Method: "source"}},
	Sinks:            []config.CodeIdentifier{{Method: "sink"}},
	Guards:           []config.CodeIdentifier{{Method: "require_auth"}},
	SinkArg:          AnyArg,
	FollowLocalCalls: true,
}

func quietConfig() *config.Config {
	cfg := config.NewDefault()
	cfg.LogLevel = int(config.ErrLevel)
	return cfg
}

func decode(t *testing.T, src string) *ir.Program {
	t.Helper()
	prog, err := ir.Decode([]byte(src))
	if err != nil {
		t.Fatalf("could not decode program: %v", err)
	}
	return prog
}

func analyze(t *testing.T, cfg *config.Config, rules Rules, prog *ir.Program, fn ir.FuncID) Result {
	t.Helper()
	res, err := Analyze(cfg, NewClassifier(rules), prog, fn)
	if err != nil {
		t.Fatalf("analysis of %s failed: %v", fn, err)
	}
	return res
}

func spans(res Result) []string {
	var s []string
	for _, f := range res.Findings.Items() {
		s = append(s, f.Span.String())
	}
	return s
}

func expectSpans(t *testing.T, res Result, expected ...string) {
	t.Helper()
	got := spans(res)
	if len(got) == 0 && len(expected) == 0 {
		return
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("%s: expected findings at %v, got %v", res.Function, expected, got)
	}
}

func TestScenarios(t *testing.T) {
	prog, err := ir.LoadArchive(scenarios)
	if err != nil {
		t.Fatalf("could not load scenarios: %v", err)
	}
	cfg := quietConfig()

	t.Run("A", func(t *testing.T) {
		res := analyze(t, cfg, testRules, prog, "scenario::a")
		expectSpans(t, res, "a.rs:3:5")
		f := res.Findings.Items()[0]
		if f.Detector != "test" || f.SinkRole != "ext::sink" || f.Message != testRules.Message {
			t.Errorf("unexpected finding %+v", f)
		}
		if f.HelpSpan == nil || f.HelpSpan.Line != 1 || f.HelpText != testRules.Help {
			t.Errorf("unexpected help in finding %+v", f)
		}
	})
	t.Run("B", func(t *testing.T) {
		expectSpans(t, analyze(t, cfg, testRules, prog, "scenario::b"))
	})
	t.Run("C", func(t *testing.T) {
		res := analyze(t, cfg, testRules, prog, "scenario::c")
		expectSpans(t, res, "c.rs:11:5")
		f := res.Findings.Items()[0]
		if f.Function != "scenario::c" || f.Location != "scenario::c_helper" {
			t.Errorf("finding should be in the helper, reported for the caller: %+v", f)
		}
	})
	t.Run("D", func(t *testing.T) {
		res := analyze(t, cfg, testRules, prog, "scenario::d")
		expectSpans(t, res)
		if !res.FastNegative {
			t.Errorf("a function without sink should be a fast negative")
		}
	})
}

const guardProgram = `
functions:
  - id: c::switch_fallback
    blocks:
      - terminator: {kind: call, func: ext::source, dest: _1, target: 1}
      - terminator: {kind: switch_int, discr: copy _1, targets: [3, 2]}
      - terminator: {kind: call, func: ext::sink, args: [copy _1], dest: _2, target: 3, span: g.rs:4:9}
      - terminator: {kind: return}
  - id: c::switch_untainted
    params: [_5]
    blocks:
      - terminator: {kind: call, func: ext::source, dest: _1, target: 1}
      - terminator: {kind: switch_int, discr: copy _5, targets: [2, 3]}
      - terminator: {kind: call, func: ext::sink, args: [copy _1], dest: _2, target: 3, span: g.rs:14:9}
      - terminator: {kind: return}
  - id: c::guard_call
    blocks:
      - terminator: {kind: call, func: ext::source, dest: _1, target: 1}
      - terminator: {kind: call, func: soroban_sdk::Address::require_auth, args: [copy _6], dest: _7, target: 2}
      - terminator: {kind: call, func: ext::sink, args: [copy _1], dest: _2, target: 3, span: g.rs:24:9}
      - terminator: {kind: return}
  - id: c::guard_in_callee
    blocks:
      - terminator: {kind: call, func: ext::source, dest: _1, target: 1}
      - terminator: {kind: call, func: c::check, args: [copy _1], dest: _3, target: 2}
      - terminator: {kind: call, func: ext::sink, args: [copy _1], dest: _2, target: 3, span: g.rs:34:9}
      - terminator: {kind: return}
  - id: c::check
    params: [_1]
    blocks:
      - terminator: {kind: switch_int, discr: copy _1, targets: [1, 2]}
      - terminator: {kind: call, func: ext::sink, args: [copy _1], dest: _2, target: 2, span: g.rs:41:9}
      - terminator: {kind: return}
`

func TestGuardPolicies(t *testing.T) {
	prog := decode(t, guardProgram)
	cfg := quietConfig()

	expectSpans(t, analyze(t, cfg, testRules, prog, "c::switch_fallback"))
	expectSpans(t, analyze(t, cfg, testRules, prog, "c::switch_untainted"), "g.rs:14:9")
	expectSpans(t, analyze(t, cfg, testRules, prog, "c::guard_call"))
	// the guard in the callee does not protect the caller
	expectSpans(t, analyze(t, cfg, testRules, prog, "c::guard_in_callee"), "g.rs:34:9")

	fallback := testRules
	fallback.GuardPolicy = GuardFallback
	expectSpans(t, analyze(t, cfg, fallback, prog, "c::switch_fallback"), "g.rs:4:9")

	none := testRules
	none.GuardPolicy = GuardNone
	expectSpans(t, analyze(t, cfg, none, prog, "c::switch_fallback"), "g.rs:4:9")
	expectSpans(t, analyze(t, cfg, none, prog, "c::guard_call"))
	expectSpans(t, analyze(t, cfg, none, prog, "c::guard_in_callee"), "g.rs:41:9", "g.rs:34:9")

	// the configuration overrides the policy of the rules
	override := quietConfig()
	override.GuardPolicy = config.GuardPolicyFallback
	expectSpans(t, analyze(t, override, testRules, prog, "c::switch_fallback"), "g.rs:4:9")

	bad := quietConfig()
	bad.GuardPolicy = "sometimes"
	if _, err := Analyze(bad, NewClassifier(testRules), prog, "c::guard_call"); err == nil {
		t.Errorf("an invalid guard policy should be rejected")
	}
}

const branchProgram = `
functions:
  - id: c::branches
    params: [_9]
    blocks:
      - terminator: {kind: call, func: ext::source, dest: _1, target: 1}
      - terminator: {kind: switch_int, discr: copy _9, targets: [2, 3]}
      - statements:
          - {dest: _2, rvalue: copy _1}
        terminator: {kind: goto, target: 4}
      - terminator: {kind: call, func: ext::sink, args: [copy _2], dest: _3, target: 4, span: br.rs:5:5}
      - terminator: {kind: return}
`

func TestBranchTaintIsCloned(t *testing.T) {
	prog := decode(t, branchProgram)
	expectSpans(t, analyze(t, quietConfig(), testRules, prog, "c::branches"))

	cfg := quietConfig()
	cfg.UnsafeShareBranchTaint = true
	expectSpans(t, analyze(t, cfg, testRules, prog, "c::branches"), "br.rs:5:5")
}

const loopProgram = `
functions:
  - id: c::loop
    blocks:
      - terminator: {kind: call, func: ext::source, dest: _1, target: 1}
      - terminator: {kind: false_unwind, real: 2}
      - statements:
          - {dest: _3, rvalue: copy _2}
          - {dest: _2, rvalue: copy _1}
        terminator: {kind: switch_int, discr: const 0, targets: [3, 4]}
      - terminator: {kind: call, func: ext::sink, args: [copy _3], dest: _4, target: 1, span: l.rs:6:9}
      - terminator: {kind: return}
  - id: c::ping
    params: [_1]
    blocks:
      - terminator: {kind: call, func: c::pong, args: [copy _1], dest: _2, target: 1}
      - terminator: {kind: call, func: ext::sink, args: [copy _2], dest: _3, target: 2, span: l.rs:20:5}
      - terminator: {kind: return}
  - id: c::pong
    params: [_1]
    return: _0
    blocks:
      - statements:
          - {dest: _0, rvalue: copy _1}
        terminator: {kind: call, func: c::ping, args: [copy _1], dest: _2, target: 1}
      - terminator: {kind: return}
  - id: c::self
    params: [_1]
    blocks:
      - terminator: {kind: call, func: c::self, args: [copy _1], dest: _2, target: 1}
      - terminator: {kind: call, func: ext::sink, args: [copy _1], dest: _3, target: 2, span: l.rs:30:5}
      - terminator: {kind: return}
`

func TestTermination(t *testing.T) {
	prog := decode(t, loopProgram)
	cfg := quietConfig()
	// _3 is only tainted on the second iteration of the loop
	res := analyze(t, cfg, testRules, prog, "c::loop")
	expectSpans(t, res, "l.rs:6:9")
	if res.BlockVisits > len(prog.Functions())*cfg.MaxBlockVisits*5 {
		t.Errorf("too many block visits: %d", res.BlockVisits)
	}

	params := testRules
	params.TaintParams = true
	expectSpans(t, analyze(t, cfg, params, prog, "c::ping"), "l.rs:20:5")
	expectSpans(t, analyze(t, cfg, params, prog, "c::self"), "l.rs:30:5")
}

const callProgram = `
functions:
  - id: c::returns_param
    blocks:
      - terminator: {kind: call, func: ext::source, dest: _1, target: 1}
      - terminator: {kind: call, func: c::id, args: [move _1], dest: _2, target: 2}
      - terminator: {kind: call, func: ext::sink, args: [copy _2], dest: _3, target: 3, span: r.rs:3:5}
      - terminator: {kind: return}
  - id: c::returns_const
    blocks:
      - terminator: {kind: call, func: ext::source, dest: _1, target: 1}
      - terminator: {kind: call, func: c::zero, args: [move _1], dest: _2, target: 2}
      - terminator: {kind: call, func: ext::sink, args: [copy _2], dest: _3, target: 3, span: r.rs:13:5}
      - terminator: {kind: return}
  - id: c::external
    blocks:
      - terminator: {kind: call, func: ext::source, dest: _1, target: 1}
      - terminator: {kind: call, func: ext::convert, args: [move _1], dest: _2, target: 2}
      - terminator: {kind: call, func: ext::sink, args: [copy _2], dest: _3, target: 3, span: r.rs:23:5}
      - terminator: {kind: return}
  - id: c::id
    params: [_1]
    return: _0
    blocks:
      - statements:
          - {dest: _0, rvalue: copy _1}
        terminator: {kind: return}
  - id: c::zero
    params: [_1]
    return: _0
    blocks:
      - statements:
          - {dest: _0, rvalue: const 0}
        terminator: {kind: return}
  - id: c::deep
    blocks:
      - terminator: {kind: call, func: ext::source, dest: _1, target: 1}
      - terminator: {kind: call, func: c::deep1, args: [copy _1], dest: _2, target: 2}
      - terminator: {kind: return}
  - id: c::deep1
    params: [_1]
    blocks:
      - terminator: {kind: call, func: c::deep2, args: [copy _1], dest: _2, target: 1}
      - terminator: {kind: return}
  - id: c::deep2
    params: [_1]
    blocks:
      - terminator: {kind: call, func: ext::sink, args: [copy _1], dest: _2, target: 1, span: r.rs:50:5}
      - terminator: {kind: return}
`

func TestInterprocedural(t *testing.T) {
	prog := decode(t, callProgram)
	cfg := quietConfig()
	expectSpans(t, analyze(t, cfg, testRules, prog, "c::returns_param"), "r.rs:3:5")
	expectSpans(t, analyze(t, cfg, testRules, prog, "c::returns_const"))
	expectSpans(t, analyze(t, cfg, testRules, prog, "c::external"), "r.rs:23:5")
	expectSpans(t, analyze(t, cfg, testRules, prog, "c::deep"), "r.rs:50:5")

	shallow := quietConfig()
	shallow.MaxDepth = 1
	expectSpans(t, analyze(t, shallow, testRules, prog, "c::deep"))

	// without following local calls, the callee is an ordinary call
	noFollow := testRules
	noFollow.FollowLocalCalls = false
	expectSpans(t, analyze(t, cfg, noFollow, prog, "c::returns_const"), "r.rs:13:5")
	res := analyze(t, cfg, noFollow, prog, "c::deep")
	if !res.FastNegative {
		t.Errorf("the sink of deep2 is unreachable without following calls")
	}

	// an explicit pass-through entry has the same effect as following local calls
	explicit := noFollow
	explicit.PassThroughs = []config.CodeIdentifier{{Crate: "c", Method: "deep[0-9]?"}}
	expectSpans(t, analyze(t, cfg, explicit, prog, "c::deep"), "r.rs:50:5")
}

// chainProgram returns a program where c::entry passes a source to c::f0, each c::f<i> with i < n branches into four
// arms that all call c::f<i+1>, and c::f<n> calls the sink
func chainProgram(n int) string {
	var b strings.Builder
	b.WriteString(`
functions:
  - id: c::entry
    blocks:
      - terminator: {kind: call, func: ext::source, dest: _1, target: 1}
      - terminator: {kind: call, func: c::f0, args: [copy _1], dest: _2, target: 2}
      - terminator: {kind: return}
`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "  - id: c::f%d\n    params: [_1]\n    blocks:\n", i)
		b.WriteString("      - terminator: {kind: switch_int, discr: copy _2, targets: [1, 2, 3, 4]}\n")
		for arm := 0; arm < 4; arm++ {
			fmt.Fprintf(&b, "      - terminator: {kind: call, func: c::f%d, args: [copy _1], dest: _3, target: 5}\n", i+1)
		}
		b.WriteString("      - terminator: {kind: return}\n")
	}
	fmt.Fprintf(&b, "  - id: c::f%d\n    params: [_1]\n    blocks:\n", n)
	b.WriteString("      - terminator: {kind: call, func: ext::sink, args: [copy _1], dest: _2, target: 1, span: s.rs:1:1}\n")
	b.WriteString("      - terminator: {kind: return}\n")
	return b.String()
}

func TestCalleeSummaries(t *testing.T) {
	const depth = 10
	prog := decode(t, chainProgram(depth))
	res := analyze(t, quietConfig(), testRules, prog, "c::entry")
	expectSpans(t, res, "s.rs:1:1")
	// every function is traversed once: the three blocks of the entry, the six blocks of each link of the chain
	// and the two blocks of the last function
	if expected := 3 + depth*6 + 2; res.BlockVisits != expected {
		t.Errorf("expected %d block visits, got %d", expected, res.BlockVisits)
	}

	// the callee is first reached guarded, then unguarded on the fallback arm
	prog = decode(t, `
functions:
  - id: c::twice
    blocks:
      - terminator: {kind: call, func: ext::source, dest: _1, target: 1}
      - terminator: {kind: switch_int, discr: copy _1, targets: [2, 3]}
      - terminator: {kind: call, func: c::sinker, args: [copy _1], dest: _2, target: 4}
      - terminator: {kind: call, func: c::sinker, args: [copy _1], dest: _3, target: 4}
      - terminator: {kind: return}
  - id: c::sinker
    params: [_1]
    blocks:
      - terminator: {kind: call, func: ext::sink, args: [copy _1], dest: _2, target: 1, span: t.rs:11:5}
      - terminator: {kind: return}
`)
	fallback := testRules
	fallback.GuardPolicy = GuardFallback
	expectSpans(t, analyze(t, quietConfig(), fallback, prog, "c::twice"), "t.rs:11:5")
	expectSpans(t, analyze(t, quietConfig(), testRules, prog, "c::twice"))
}

const orderProgram = `
functions:
  - id: c::sink_first
    blocks:
      - terminator: {kind: call, func: ext::sink, args: [copy _1], dest: _2, target: 1, span: o.rs:2:5}
      - terminator: {kind: call, func: ext::source, dest: _1, target: 2}
      - terminator: {kind: return}
  - id: c::sink_first_in_loop
    blocks:
      - terminator: {kind: call, func: ext::sink, args: [copy _1], dest: _2, target: 1, span: o.rs:12:5}
      - terminator: {kind: call, func: ext::source, dest: _1, target: 2}
      - terminator: {kind: switch_int, discr: copy _3, targets: [0, 3]}
      - terminator: {kind: return}
`

func TestSinkBeforeSource(t *testing.T) {
	prog := decode(t, orderProgram)
	cfg := quietConfig()
	res := analyze(t, cfg, testRules, prog, "c::sink_first")
	if !res.FastNegative || res.BlockVisits != 0 {
		t.Errorf("no sink is reachable from the source, the function should not be traversed")
	}
	res = analyze(t, cfg, testRules, prog, "c::sink_first_in_loop")
	expectSpans(t, res, "o.rs:12:5")
	if res.FastNegative {
		t.Errorf("the loop reaches the sink after the source")
	}
}

const destinationProgram = `
functions:
  - id: c::ignores_source
    blocks:
      - terminator: {kind: call, func: c::helper, dest: _1, target: 1}
      - terminator: {kind: call, func: ext::sink, args: [copy _1], dest: _2, target: 2, span: p.rs:5:5}
      - terminator: {kind: return}
  - id: c::helper
    blocks:
      - terminator: {kind: call, func: ext::source, target: 1}
      - terminator: {kind: return}
  - id: c::calls_undeclared
    blocks:
      - terminator: {kind: call, func: c::undeclared, dest: _1, target: 1}
      - terminator: {kind: call, func: ext::sink, args: [copy _1], dest: _2, target: 2, span: p.rs:15:5}
      - terminator: {kind: return}
  - id: c::undeclared
    blocks:
      - terminator: {kind: call, func: ext::source, dest: _0, target: 1}
      - terminator: {kind: return}
  - id: c::calls_declared
    blocks:
      - terminator: {kind: call, func: c::declared, dest: _1, target: 1}
      - terminator: {kind: call, func: ext::sink, args: [copy _1], dest: _2, target: 2, span: p.rs:25:5}
      - terminator: {kind: return}
  - id: c::declared
    return: _0
    blocks:
      - terminator: {kind: call, func: ext::source, dest: _0, target: 1}
      - terminator: {kind: return}
`

func TestCallDestinations(t *testing.T) {
	prog := decode(t, destinationProgram)
	cfg := quietConfig()
	// the result of the source is dropped, nothing flows out of the helper
	expectSpans(t, analyze(t, cfg, testRules, prog, "c::ignores_source"))
	// only a declared return local carries taint back to the caller
	expectSpans(t, analyze(t, cfg, testRules, prog, "c::calls_undeclared"))
	expectSpans(t, analyze(t, cfg, testRules, prog, "c::calls_declared"), "p.rs:25:5")
}

const placeProgram = `
functions:
  - id: c::fields
    blocks:
      - terminator: {kind: call, func: ext::source, dest: _1, target: 1}
      - statements:
          - {dest: _2.a, rvalue: copy _1}
          - {dest: _3, rvalue: "&_2"}
        terminator: {kind: call, func: ext::sink, args: [copy _2.b], dest: _4, target: 2, span: p.rs:3:5}
      - terminator: {kind: call, func: ext::sink, args: [copy _3], dest: _5, target: 3, span: p.rs:4:5}
      - terminator: {kind: return}
`

func TestPlaceGranularity(t *testing.T) {
	prog := decode(t, placeProgram)
	expectSpans(t, analyze(t, quietConfig(), testRules, prog, "c::fields"), "p.rs:4:5")

	cfg := quietConfig()
	cfg.PlaceGranularity = config.GranularityLocal
	expectSpans(t, analyze(t, cfg, testRules, prog, "c::fields"), "p.rs:3:5", "p.rs:4:5")
}

const mappingProgram = `
functions:
  - id: c::Contract::set
    params: [_1, _2]
    blocks:
      - statements:
          - {dest: _4, rvalue: const 0}
        terminator: {kind: call, func: ink::storage::Mapping::insert, args: [move _4, copy _2], dest: _5, target: 1, span: m.rs:3:9}
      - terminator: {kind: call, func: ink::storage::Mapping::insert, args: [copy _2, move _4], dest: _6, target: 2, span: m.rs:4:9}
      - terminator: {kind: call, func: ink::storage::Mapping::insert, args: [move _4, copy _2], dest: _7, target: 3, span: m.rs:5:9}
      - terminator: {kind: return}
`

func TestSinkArgument(t *testing.T) {
	prog := decode(t, mappingProgram)
	rules := Rules{
		Name:        "mapping",
		Sinks:       []config.CodeIdentifier{{Path: ".*Mapping", Method: "insert"}},
		SinkArg:     1,
		TaintParams: true,
	}
	cfg := quietConfig()
	expectSpans(t, analyze(t, cfg, rules, prog, "c::Contract::set"), "m.rs:3:9", "m.rs:5:9")

	rules.ConsumeOnSink = true
	expectSpans(t, analyze(t, cfg, rules, prog, "c::Contract::set"), "m.rs:3:9")

	rules.TaintParams = false
	res := analyze(t, cfg, rules, prog, "c::Contract::set")
	if !res.FastNegative || res.Findings.Len() != 0 {
		t.Errorf("without taint, the analysis should be a fast negative")
	}
}

const unconditionalProgram = `
functions:
  - id: c::kill
    blocks:
      - terminator: {kind: call, func: ink::env::terminate_contract, args: [copy _1], dest: _2, span: u.rs:2:5}
  - id: c::kill_checked
    blocks:
      - terminator: {kind: call, func: ink::env::caller, dest: _1, target: 1}
      - statements:
          - {dest: _3, rvalue: "Eq(copy _1, copy _4)"}
        terminator: {kind: switch_int, discr: move _3, targets: [2, 3]}
      - terminator: {kind: call, func: ink::env::terminate_contract, args: [copy _5], dest: _2, span: u.rs:12:9}
      - terminator: {kind: return}
`

func TestUnconditionalSink(t *testing.T) {
	prog := decode(t, unconditionalProgram)
	rules := Rules{
		Name:    "self-destruct",
		Sources: []config.CodeIdentifier{{Method: "caller"}},
		Sinks:   []config.CodeIdentifier{{Method: "terminate_contract"}},
		SinkArg: Unconditional,
	}
	cfg := quietConfig()
	expectSpans(t, analyze(t, cfg, rules, prog, "c::kill"), "u.rs:2:5")
	expectSpans(t, analyze(t, cfg, rules, prog, "c::kill_checked"))
}

const arithmeticProgram = `
functions:
  - id: c::div_then_mul
    params: [_1, _2]
    blocks:
      - statements:
          - {dest: _3, rvalue: "Div(copy _1, copy _2)", span: d.rs:2:9}
          - {dest: _4, rvalue: "Mul(copy _3, const 100)", span: d.rs:3:9}
          - {dest: _5, rvalue: "Mul(copy _1, copy _2)", span: d.rs:4:9}
        terminator: {kind: return}
  - id: c::mul_then_div
    params: [_1, _2]
    blocks:
      - statements:
          - {dest: _3, rvalue: "Mul(copy _1, const 100)"}
          - {dest: _4, rvalue: "Div(copy _3, copy _2)"}
        terminator: {kind: return}
`

func TestSinkOps(t *testing.T) {
	prog := decode(t, arithmeticProgram)
	rules := Rules{
		Name:        "divide-before-multiply",
		SinkOps:     []ir.BinOp{ir.Mul},
		BinaryOp:    TaintResultOf(ir.Div),
		SinkArg:     AnyArg,
		GuardPolicy: GuardNone,
	}
	cfg := quietConfig()
	res := analyze(t, cfg, rules, prog, "c::div_then_mul")
	expectSpans(t, res, "d.rs:3:9")
	if res.Findings.Items()[0].SinkRole != "Mul" {
		t.Errorf("unexpected sink %q", res.Findings.Items()[0].SinkRole)
	}
	res = analyze(t, cfg, rules, prog, "c::mul_then_div")
	expectSpans(t, res)
	if res.FastNegative {
		t.Errorf("a division creates taint, the function should be traversed")
	}
}

func TestInvariantViolations(t *testing.T) {
	prog := decode(t, `
functions:
  - id: c::bad_target
    blocks:
      - terminator: {kind: goto, target: 4}
  - id: c::bad_callee
    blocks:
      - terminator: {kind: call, func: c::no_terminator, dest: _1, target: 1}
      - terminator: {kind: return}
  - id: c::no_terminator
    blocks:
      - statements:
          - {dest: _0, rvalue: const 1}
`)
	for _, fn := range []ir.FuncID{"c::bad_target", "c::bad_callee"} {
		_, err := Analyze(quietConfig(), NewClassifier(testRules), prog, fn)
		var invariantErr *ir.InvariantError
		if !errors.As(err, &invariantErr) {
			t.Errorf("%s: expected an invariant error, got %v", fn, err)
		}
	}
	if _, err := Analyze(quietConfig(), NewClassifier(testRules), prog, "c::missing"); err == nil {
		t.Errorf("analyzing a function without body should fail")
	}
}

func TestDeterminism(t *testing.T) {
	prog := decode(t, guardProgram)
	none := testRules
	none.GuardPolicy = GuardNone
	a, err := NewAnalyzer(quietConfig(), nil, NewClassifier(none), prog)
	if err != nil {
		t.Fatal(err)
	}
	first, err := a.Analyze("c::guard_in_callee")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := a.Analyze("c::guard_in_callee")
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first.Findings.Items(), again.Findings.Items()) {
			t.Fatalf("analysis is not deterministic: %v != %v", first.Findings.Items(), again.Findings.Items())
		}
	}
}
