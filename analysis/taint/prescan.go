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
	"github.com/awslabs/ar-guard/analysis/ir"
	"github.com/awslabs/ar-guard/internal/funcutil"
	"github.com/awslabs/ar-guard/internal/graphutil"
)

// prescan summarizes the roles found in the blocks reachable from the entry of a function and of the callees the
// traversal may follow
type prescan struct {
	sink              bool
	unconditionalSink bool
	source            bool

	// followed is set when a callee was scanned
	followed bool

	// sourceBlocks and sinkBlocks are the blocks of the analyzed function creating taint and holding sinks
	sourceBlocks []ir.BlockID
	sinkBlocks   []ir.BlockID
}

// fastNegative returns true when the traversal of body cannot report a finding: either no sink is reachable, or all
// the reachable sinks need taint and nothing can create it, or no sink of the function can be reached after the
// taint is created.
func (r *run) fastNegative(body *ir.Body) (bool, error) {
	s := &prescan{}
	if err := r.scan(body, map[ir.FuncID]bool{}, s); err != nil {
		return false, err
	}
	switch {
	case !s.sink:
		return true, nil
	case s.unconditionalSink:
		return false, nil
	case r.Classifier.rules.TaintParams && len(body.Params) > 0:
		return false, nil
	case !s.source:
		return true, nil
	case s.followed:
		return false, nil
	}
	g := graphutil.NewBlockGraph(body)
	for _, src := range s.sourceBlocks {
		if funcutil.Exists(s.sinkBlocks, func(sink ir.BlockID) bool { return g.PathExists(src, sink) }) {
			return false, nil
		}
	}
	return true, nil
}

func (r *run) scan(body *ir.Body, seen map[ir.FuncID]bool, s *prescan) error {
	seen[body.ID] = true
	root := body.ID == r.root
	reachable := graphutil.NewBlockGraph(body).Reachable(0)
	for _, id := range funcutil.SetToOrderedSlice(reachable) {
		block := body.Blocks[id]
		for _, stmt := range block.Statements {
			a, ok := stmt.(ir.Assign)
			if !ok {
				continue
			}
			op, ok := a.Rvalue.(ir.BinaryOp)
			if !ok {
				continue
			}
			if r.Classifier.IsSinkOp(op.Op) {
				s.sink = true
				s.addBlock(root, &s.sinkBlocks, id)
			}
			if r.Classifier.createsTaint(op.Op) {
				s.source = true
				s.addBlock(root, &s.sourceBlocks, id)
			}
		}
		call, ok := block.Terminator.(ir.Call)
		if !ok {
			continue
		}
		switch r.Classifier.Classify(r.Program, call.Func) {
		case Sink:
			s.sink = true
			s.addBlock(root, &s.sinkBlocks, id)
			if r.Classifier.rules.SinkArg == Unconditional {
				s.unconditionalSink = true
			}
		case Source:
			s.source = true
			s.addBlock(root, &s.sourceBlocks, id)
		case PassThrough:
			callee, ok := r.Program.Body(call.Func)
			if !ok || seen[call.Func] {
				continue
			}
			s.followed = true
			if err := r.validate(callee); err != nil {
				return err
			}
			if err := r.scan(callee, seen, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *prescan) addBlock(root bool, blocks *[]ir.BlockID, id ir.BlockID) {
	if root {
		*blocks = append(*blocks, id)
	}
}
