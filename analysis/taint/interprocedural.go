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
)

// callLocal analyzes the body of a local callee with the taint of the call arguments mapped to its parameters.
// Argument i maps to the i-th declared parameter, and the callee frame inherits the guard flag of the caller.
// tainted is true when the callee can return tainted data. The result is computed once per callee and entry state.
// followed is false when the callee was not analyzed
// because it has no body or because the call chain is too deep, in which case the caller falls back to the generic
// propagation from arguments to result.
func (r *run) callLocal(caller *frame, call ir.Call, br branch) (tainted bool, followed bool, err error) {
	callee, ok := r.Program.Body(call.Func)
	if !ok {
		return false, false, nil
	}
	if r.onStack[call.Func] {
		r.Logger.Tracef("%s: recursive call to %s in %s", r.result.Detector, call.Func, caller.body.ID)
		return false, true, nil
	}
	if r.Config.ExceedsMaxDepth(caller.depth + 1) {
		r.Logger.Debugf("%s: max depth reached at call to %s in %s", r.result.Detector, call.Func, caller.body.ID)
		return false, false, nil
	}
	if err := r.validate(callee); err != nil {
		return false, true, err
	}

	entry := NewSet(r.granularity)
	for i, arg := range call.Args {
		if i >= len(callee.Params) {
			break
		}
		if br.taint.HasOperand(arg) {
			entry.Add(ir.LocalPlace(callee.Params[i]))
		}
	}

	key := summaryKey{callee: call.Func, guarded: br.guarded, taint: entry.Fingerprint()}
	if tainted, ok := r.summaries[key]; ok {
		return tainted, true, nil
	}

	r.onStack[call.Func] = true
	defer delete(r.onStack, call.Func)

	f := newFrame(callee, caller.depth+1)
	if err := r.visit(f, 0, branch{taint: entry, guarded: br.guarded}); err != nil {
		return false, true, err
	}
	r.summaries[key] = f.returnTainted
	return f.returnTainted, true, nil
}
