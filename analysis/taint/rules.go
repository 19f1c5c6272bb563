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
	"strconv"
	"strings"

	"github.com/awslabs/ar-guard/analysis/config"
	"github.com/awslabs/ar-guard/analysis/ir"
	"github.com/awslabs/ar-guard/internal/funcutil"
)

// Role is the role a call target plays for a detector
type Role int

const (
	// Unrelated calls only propagate taint from their arguments to their result
	Unrelated Role = iota
	// Source calls return tainted data
	Source
	// Sink calls are the dangerous operations
	Sink
	// Guard calls are access-control checks. The code following a guard call is guarded.
	Guard
	// PassThrough calls to local functions are analyzed interprocedurally
	PassThrough
)

func (r Role) String() string {
	switch r {
	case Source:
		return "source"
	case Sink:
		return "sink"
	case Guard:
		return "guard"
	case PassThrough:
		return "pass-through"
	default:
		return "unrelated"
	}
}

const (
	// AnyArg is the sink argument selector for sinks that fire when any argument is tainted
	AnyArg = -1
	// Unconditional is the sink argument selector for sinks that fire whenever they are reached unguarded
	Unconditional = -2
)

// GuardPolicy determines which targets of a switch on a tainted value are guarded
type GuardPolicy int

const (
	// GuardSticky guards every target of the switch
	GuardSticky GuardPolicy = iota
	// GuardFallback guards every target except the fallback (last) target, which inherits the incoming flag
	GuardFallback
	// GuardNone never guards on a switch; only guard calls set the flag
	GuardNone
)

func (g GuardPolicy) String() string {
	switch g {
	case GuardFallback:
		return config.GuardPolicyFallback
	case GuardNone:
		return config.GuardPolicyNone
	default:
		return config.GuardPolicySticky
	}
}

// ParseGuardPolicy parses the configuration name of a guard policy. The empty string is the sticky policy.
func ParseGuardPolicy(s string) (GuardPolicy, error) {
	switch s {
	case "", config.GuardPolicySticky:
		return GuardSticky, nil
	case config.GuardPolicyFallback:
		return GuardFallback, nil
	case config.GuardPolicyNone:
		return GuardNone, nil
	default:
		return GuardSticky, fmt.Errorf("unknown guard policy %q", s)
	}
}

// A BinaryOpRule decides whether the result of a binary operation is tainted, given the taint of its operands
type BinaryOpRule func(op ir.BinOp, lhs bool, rhs bool) bool

// DefaultBinaryOp taints the result when either operand is tainted
func DefaultBinaryOp(_ ir.BinOp, lhs bool, rhs bool) bool {
	return lhs || rhs
}

// TaintResultOf returns a rule where the results of the operations ops are always tainted, and the results of other
// operations follow DefaultBinaryOp.
func TaintResultOf(ops ...ir.BinOp) BinaryOpRule {
	return func(op ir.BinOp, lhs bool, rhs bool) bool {
		return funcutil.Contains(ops, op) || lhs || rhs
	}
}

// Rules describe one detector
type Rules struct {
	// Name is the name of the detector, e.g. "unprotected-self-destruct"
	Name string
	// Message is the message of the findings
	Message string
	// Help is the help text attached to the findings
	Help string

	Sources      []config.CodeIdentifier
	Sinks        []config.CodeIdentifier
	Guards       []config.CodeIdentifier
	PassThroughs []config.CodeIdentifier

	// SinkArg is the index of the sink argument that must be tainted, or AnyArg, or Unconditional
	SinkArg int

	// SinkOps are the binary operations that are sinks when one of their operands is tainted
	SinkOps []ir.BinOp

	// BinaryOp is the taint rule of binary operations. Nil means DefaultBinaryOp.
	BinaryOp BinaryOpRule

	// TaintParams taints the parameters of the analyzed function on entry
	TaintParams bool

	// FollowLocalCalls classifies the local functions matching no rule as pass-through
	FollowLocalCalls bool

	// ConsumeOnSink removes the taint of the sink arguments after a sink call
	ConsumeOnSink bool

	GuardPolicy GuardPolicy
}

// RulesFromSpec returns the rules described by a rule file entry
func RulesFromSpec(spec config.RuleSpec) (Rules, error) {
	r := Rules{
		Name:             spec.Name,
		Message:          spec.Message,
		Help:             spec.Help,
		Sources:          spec.Sources,
		Sinks:            spec.Sinks,
		Guards:           spec.Guards,
		PassThroughs:     spec.PassThroughs,
		TaintParams:      spec.TaintParams,
		FollowLocalCalls: spec.FollowLocalCalls,
		ConsumeOnSink:    spec.ConsumeOnSink,
	}
	arg, err := ParseSinkArg(spec.SinkArg)
	if err != nil {
		return r, fmt.Errorf("rule %s: %w", spec.Name, err)
	}
	r.SinkArg = arg
	for _, s := range spec.SinkOps {
		op, err := ir.ParseBinOp(s)
		if err != nil {
			return r, fmt.Errorf("rule %s: sink-ops: %w", spec.Name, err)
		}
		r.SinkOps = append(r.SinkOps, op)
	}
	var taintOps []ir.BinOp
	for _, s := range spec.TaintOps {
		op, err := ir.ParseBinOp(s)
		if err != nil {
			return r, fmt.Errorf("rule %s: taint-ops: %w", spec.Name, err)
		}
		taintOps = append(taintOps, op)
	}
	if len(taintOps) > 0 {
		r.BinaryOp = TaintResultOf(taintOps...)
	}
	r.GuardPolicy, err = ParseGuardPolicy(spec.GuardPolicy)
	if err != nil {
		return r, fmt.Errorf("rule %s: %w", spec.Name, err)
	}
	return r, nil
}

// ParseSinkArg parses a sink argument selector: "any" (or empty), "unconditional" or a non-negative index
func ParseSinkArg(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return AnyArg, nil
	case "unconditional":
		return Unconditional, nil
	}
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid sink argument %q", s)
	}
	return i, nil
}

// SinkArgString is the inverse of ParseSinkArg
func SinkArgString(arg int) string {
	switch arg {
	case AnyArg:
		return "any"
	case Unconditional:
		return "unconditional"
	default:
		return strconv.Itoa(arg)
	}
}

// A Classifier maps call targets to roles according to the rules of a detector. It is not modified after its
// construction.
type Classifier struct {
	rules        Rules
	sources      []config.CodeIdentifier
	sinks        []config.CodeIdentifier
	guards       []config.CodeIdentifier
	passThroughs []config.CodeIdentifier
	binaryOp     BinaryOpRule
}

// NewClassifier compiles the rules
func NewClassifier(rules Rules) *Classifier {
	c := &Classifier{
		rules:        rules,
		sources:      funcutil.Map(rules.Sources, config.CompileRegexes),
		sinks:        funcutil.Map(rules.Sinks, config.CompileRegexes),
		guards:       funcutil.Map(rules.Guards, config.CompileRegexes),
		passThroughs: funcutil.Map(rules.PassThroughs, config.CompileRegexes),
		binaryOp:     rules.BinaryOp,
	}
	if c.binaryOp == nil {
		c.binaryOp = DefaultBinaryOp
	}
	return c
}

// Rules returns the rules the classifier was built from
func (c *Classifier) Rules() Rules {
	return c.rules
}

// Classify returns the role of the call target. When several entries match, a sink takes precedence over a guard,
// a guard over a source and a source over a pass-through. prog may be nil, in which case no function is local.
func (c *Classifier) Classify(prog *ir.Program, target ir.FuncID) Role {
	crate, path, method := target.Components()
	match := func(cid config.CodeIdentifier) bool { return cid.MatchComponents(crate, path, method) }
	switch {
	case config.ExistsCid(c.sinks, match):
		return Sink
	case config.ExistsCid(c.guards, match):
		return Guard
	case config.ExistsCid(c.sources, match):
		return Source
	case config.ExistsCid(c.passThroughs, match):
		return PassThrough
	case c.rules.FollowLocalCalls && prog != nil && prog.IsLocal(target):
		return PassThrough
	default:
		return Unrelated
	}
}

// IsSinkOp returns true if the binary operation op is a sink
func (c *Classifier) IsSinkOp(op ir.BinOp) bool {
	return funcutil.Contains(c.rules.SinkOps, op)
}

// BinaryOp applies the binary operation taint rule
func (c *Classifier) BinaryOp(op ir.BinOp, lhs bool, rhs bool) bool {
	return c.binaryOp(op, lhs, rhs)
}

// createsTaint returns true if the operation taints its result even when no operand is tainted
func (c *Classifier) createsTaint(op ir.BinOp) bool {
	return c.binaryOp(op, false, false)
}
