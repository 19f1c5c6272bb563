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

	"github.com/awslabs/ar-guard/analysis/config"
	"github.com/awslabs/ar-guard/analysis/ir"
	"github.com/awslabs/ar-guard/internal/funcutil"
)

// Result is the result of the analysis of one function by one detector
type Result struct {
	// Function is the analyzed function
	Function ir.FuncID

	// Detector is the name of the rules used
	Detector string

	// Findings contains the findings, in the order they were discovered
	Findings *Findings

	// FastNegative is true when the function was not traversed because no sink could be reached, or because no
	// taint could reach a sink
	FastNegative bool

	// BlockVisits is the number of times a block was entered, over all the function frames
	BlockVisits int
}

// An Analyzer analyzes the functions of a program with the rules of one classifier. It is not modified by the
// analyses and can be used by several goroutines.
type Analyzer struct {
	Config     *config.Config
	Logger     *config.LogGroup
	Classifier *Classifier
	Program    *ir.Program

	policy      GuardPolicy
	granularity Granularity
	maxVisits   int
}

// NewAnalyzer returns an analyzer for the program. The guard policy of the configuration, when set, overrides the
// guard policy of the rules.
func NewAnalyzer(cfg *config.Config, logger *config.LogGroup, c *Classifier, prog *ir.Program) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.NewDefault()
	}
	if logger == nil {
		logger = config.NewLogGroup(cfg)
	}
	a := &Analyzer{
		Config:      cfg,
		Logger:      logger,
		Classifier:  c,
		Program:     prog,
		policy:      c.rules.GuardPolicy,
		granularity: ParseGranularity(cfg.PlaceGranularity),
		maxVisits:   cfg.MaxBlockVisits,
	}
	if cfg.GuardPolicy != "" {
		policy, err := ParseGuardPolicy(cfg.GuardPolicy)
		if err != nil {
			return nil, err
		}
		a.policy = policy
	}
	if a.maxVisits <= 0 {
		a.maxVisits = config.DefaultMaxBlockVisits
	}
	return a, nil
}

// Analyze runs the analysis of the function fn of prog with the rules of the classifier c. The error is non-nil
// when fn has no body in prog, or when fn or a callee that is followed is malformed, in which case it is an
// *ir.InvariantError.
func Analyze(cfg *config.Config, c *Classifier, prog *ir.Program, fn ir.FuncID) (Result, error) {
	a, err := NewAnalyzer(cfg, nil, c, prog)
	if err != nil {
		return Result{Function: fn, Detector: c.rules.Name, Findings: &Findings{}}, err
	}
	return a.Analyze(fn)
}

// Analyze runs the analysis of the function fn
func (a *Analyzer) Analyze(fn ir.FuncID) (Result, error) {
	res := Result{Function: fn, Detector: a.Classifier.rules.Name, Findings: &Findings{}}
	body, ok := a.Program.Body(fn)
	if !ok {
		return res, fmt.Errorf("function %s has no body", fn)
	}
	r := &run{
		Analyzer:  a,
		root:      fn,
		result:    &res,
		onStack:   map[ir.FuncID]bool{},
		validated: map[ir.FuncID]error{},
		summaries: map[summaryKey]bool{},
		fired:     map[sinkSite]bool{},
	}
	if err := r.validate(body); err != nil {
		return res, err
	}
	negative, err := r.fastNegative(body)
	if err != nil {
		return res, err
	}
	if negative {
		a.Logger.Tracef("%s: no reachable sink or source in %s", res.Detector, fn)
		res.FastNegative = true
		return res, nil
	}

	entry := NewSet(a.granularity)
	if a.Classifier.rules.TaintParams {
		for _, p := range body.Params {
			entry.Add(ir.LocalPlace(p))
		}
	}
	r.onStack[fn] = true
	if err := r.visit(newFrame(body, 0), 0, branch{taint: entry}); err != nil {
		return res, err
	}
	a.Logger.Debugf("%s: analyzed %s (%d block visits, %d findings)",
		res.Detector, fn, res.BlockVisits, res.Findings.Len())
	return res, nil
}

// run is the state of one call to Analyze
type run struct {
	*Analyzer
	root   ir.FuncID
	result *Result

	// onStack is the set of functions on the current call chain
	onStack map[ir.FuncID]bool

	validated map[ir.FuncID]error

	// summaries maps the entry states of the callees already analyzed to whether they return tainted data
	summaries map[summaryKey]bool

	// fired is the set of sinks already reported. A sink is reported at most once per analysis.
	fired map[sinkSite]bool
}

// branch is the abstract state threaded along one traversal branch
type branch struct {
	taint   *Set
	guarded bool
}

// frame is the state of the traversal of one function body on the call chain
type frame struct {
	body  *ir.Body
	depth int

	seen   map[stateKey]bool
	visits map[ir.BlockID]int

	// returnTainted is set when a return is reached with the return place tainted
	returnTainted bool
}

type stateKey struct {
	block   ir.BlockID
	guarded bool
	taint   string
}

// summaryKey is the entry state of a callee
type summaryKey struct {
	callee  ir.FuncID
	guarded bool
	taint   string
}

// sinkSite is the position of a sink in a body: stmt is -1 for the block terminator
type sinkSite struct {
	fn    ir.FuncID
	block ir.BlockID
	stmt  int
}

func newFrame(body *ir.Body, depth int) *frame {
	return &frame{
		body:   body,
		depth:  depth,
		seen:   map[stateKey]bool{},
		visits: map[ir.BlockID]int{},
	}
}

func (r *run) validate(body *ir.Body) error {
	if err, ok := r.validated[body.ID]; ok {
		return err
	}
	err := ir.Validate(body)
	r.validated[body.ID] = err
	return err
}

// visit analyzes the block id of the frame and continues with its successors
func (r *run) visit(f *frame, id ir.BlockID, br branch) error {
	key := stateKey{block: id, guarded: br.guarded, taint: br.taint.Fingerprint()}
	if f.seen[key] {
		return nil
	}
	if f.visits[id] >= r.maxVisits {
		r.Logger.Tracef("%s: visit limit reached at %s:%s", r.result.Detector, f.body.ID, id)
		return nil
	}
	f.seen[key] = true
	f.visits[id]++
	r.result.BlockVisits++
	if r.Logger.LogsTrace() {
		r.Logger.Tracef("%s: %s:%s guarded=%t taint=%s", r.result.Detector, f.body.ID, id, br.guarded, br.taint)
	}

	block := f.body.Blocks[id]
	for i, stmt := range block.Statements {
		r.transfer(f, sinkSite{block: id, stmt: i}, stmt, br)
	}

	switch t := block.Terminator.(type) {
	case ir.Goto:
		return r.visit(f, t.Target, br)
	case ir.Drop:
		return r.visit(f, t.Target, br)
	case ir.Assert:
		return r.visit(f, t.Target, br)
	case ir.FalseUnwind:
		return r.visit(f, t.Real, br)
	case ir.FalseEdge:
		return r.fork(f, br, t.Successors(), nil)
	case ir.Yield:
		return r.fork(f, br, t.Successors(), nil)
	case ir.InlineAsm:
		if t.Dest == nil {
			return nil
		}
		return r.visit(f, *t.Dest, br)
	case ir.SwitchInt:
		return r.fork(f, br, t.Targets, r.switchGuards(t, br))
	case ir.Call:
		return r.call(f, id, t, br)
	case ir.Return:
		if f.body.Return != nil && br.taint.Has(ir.LocalPlace(*f.body.Return)) {
			f.returnTainted = true
		}
		return nil
	default:
		// Unreachable, GeneratorDrop, Resume, Terminate
		return nil
	}
}

// fork visits each target with its own copy of the taint set, unless the configuration shares the set between
// siblings. guards[i] is the guard flag of the i-th target; a nil guards keeps the incoming flag.
func (r *run) fork(f *frame, br branch, targets []ir.BlockID, guards []bool) error {
	for i, target := range targets {
		next := branch{taint: br.taint, guarded: br.guarded}
		if guards != nil {
			next.guarded = guards[i]
		}
		if !r.Config.UnsafeShareBranchTaint && i < len(targets)-1 {
			next.taint = br.taint.Clone()
		}
		if err := r.visit(f, target, next); err != nil {
			return err
		}
	}
	return nil
}

// switchGuards returns the guard flag of each target of the switch
func (r *run) switchGuards(t ir.SwitchInt, br branch) []bool {
	guards := make([]bool, len(t.Targets))
	tainted := br.taint.HasOperand(t.Discr)
	for i := range t.Targets {
		guards[i] = br.guarded
		if !tainted {
			continue
		}
		switch r.policy {
		case GuardSticky:
			guards[i] = true
		case GuardFallback:
			if i < len(t.Targets)-1 {
				guards[i] = true
			}
		case GuardNone:
		}
	}
	return guards
}

// transfer applies the taint propagation rule of the statement, and reports a finding if the statement is a sink
// operation with a tainted operand
func (r *run) transfer(f *frame, site sinkSite, stmt ir.Statement, br branch) {
	a, ok := stmt.(ir.Assign)
	if !ok {
		return
	}
	switch rv := a.Rvalue.(type) {
	case ir.Use:
		if br.taint.HasOperand(rv.Operand) {
			br.taint.Add(a.Dest)
		}
	case ir.Ref:
		r.propagate(br, rv.Place, a.Dest)
	case ir.AddressOf:
		r.propagate(br, rv.Place, a.Dest)
	case ir.Len:
		r.propagate(br, rv.Place, a.Dest)
	case ir.CopyForDeref:
		r.propagate(br, rv.Place, a.Dest)
	case ir.BinaryOp:
		lhs := br.taint.HasOperand(rv.Lhs)
		rhs := br.taint.HasOperand(rv.Rhs)
		if (lhs || rhs) && !br.guarded && r.Classifier.IsSinkOp(rv.Op) {
			r.report(f, site, a.Span, rv.Op.String())
		}
		if r.Classifier.BinaryOp(rv.Op, lhs, rhs) {
			br.taint.Add(a.Dest)
		}
	}
}

func (r *run) propagate(br branch, from ir.Place, to ir.Place) {
	if br.taint.Has(from) {
		br.taint.Add(to)
	}
}

// call handles a call terminator and continues with its target
func (r *run) call(f *frame, id ir.BlockID, call ir.Call, br branch) error {
	rules := &r.Classifier.rules
	role := r.Classifier.Classify(r.Program, call.Func)
	if role == Sink && !br.guarded && r.sinkArgTainted(call, br.taint) {
		r.report(f, sinkSite{block: id, stmt: -1}, call.Span, string(call.Func))
	}

	argTainted := funcutil.Exists(call.Args, br.taint.HasOperand)
	switch role {
	case Source:
		br.taintDest(call)
	case PassThrough:
		tainted, followed, err := r.callLocal(f, call, br)
		if err != nil {
			return err
		}
		if tainted || (!followed && argTainted) {
			br.taintDest(call)
		}
	default:
		if argTainted {
			br.taintDest(call)
		}
	}

	if role == Sink && rules.ConsumeOnSink {
		r.consume(call, br.taint)
	}
	if role == Guard {
		br.guarded = true
	}
	if call.Target == nil {
		return nil
	}
	return r.visit(f, *call.Target, br)
}

// taintDest adds the destination of the call, if any, to the taint set
func (br branch) taintDest(call ir.Call) {
	if call.Dest != nil {
		br.taint.Add(*call.Dest)
	}
}

func (r *run) sinkArgTainted(call ir.Call, taint *Set) bool {
	switch arg := r.Classifier.rules.SinkArg; {
	case arg == Unconditional:
		return true
	case arg == AnyArg:
		return funcutil.Exists(call.Args, taint.HasOperand)
	case arg >= 0 && arg < len(call.Args):
		return taint.HasOperand(call.Args[arg])
	default:
		return false
	}
}

// consume removes the taint of the sink arguments of the call
func (r *run) consume(call ir.Call, taint *Set) {
	for i, arg := range call.Args {
		sinkArg := r.Classifier.rules.SinkArg
		if sinkArg != AnyArg && sinkArg != i {
			continue
		}
		if p, ok := ir.OperandPlace(arg); ok {
			taint.Remove(p)
		}
	}
}

// report adds a finding for the sink at site of the frame's body, unless a finding has already been reported for
// that sink
func (r *run) report(f *frame, site sinkSite, span ir.Span, sink string) {
	site.fn = f.body.ID
	if r.fired[site] {
		return
	}
	r.fired[site] = true
	rules := &r.Classifier.rules
	finding := Finding{
		Detector: rules.Name,
		Function: r.root,
		Location: f.body.ID,
		Span:     span,
		SinkRole: sink,
		Message:  rules.Message,
		HelpText: rules.Help,
	}
	if f.body.Span.IsValid() {
		helpSpan := f.body.Span
		finding.HelpSpan = &helpSpan
	}
	r.Logger.Debugf("%s: sink %s reached in %s at %s", rules.Name, sink, f.body.ID, span)
	r.result.Findings.Add(finding)
}
