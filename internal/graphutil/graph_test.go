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

package graphutil

import (
	"testing"

	"github.com/awslabs/ar-guard/analysis/ir"
)

const program = `
functions:
  - id: a
    blocks:
      - terminator: {kind: switch_int, discr: copy _1, targets: [1, 2]}
      - terminator: {kind: goto, target: 1}
      - terminator: {kind: call, func: b, dest: _2, target: 3}
      - terminator: {kind: return}
      - terminator: {kind: return}
  - id: b
    blocks:
      - terminator: {kind: call, func: c, dest: _0, target: 1}
      - terminator: {kind: return}
  - id: c
    blocks:
      - terminator: {kind: call, func: b, dest: _0, target: 1}
      - terminator: {kind: call, func: ext::f, dest: _1, target: 2}
      - terminator: {kind: return}
  - id: d
    blocks:
      - terminator: {kind: call, func: d, dest: _0}
`

func loadProgram(t *testing.T) *ir.Program {
	prog, err := ir.Decode([]byte(program))
	if err != nil {
		t.Fatalf("could not decode program: %v", err)
	}
	return prog
}

func TestBlockGraphReachable(t *testing.T) {
	prog := loadProgram(t)
	a, _ := prog.Body("a")
	g := NewBlockGraph(a)
	reached := g.Reachable(0)
	for _, b := range []ir.BlockID{0, 1, 2, 3} {
		if !reached[b] {
			t.Errorf("%s should be reachable", b)
		}
	}
	if reached[4] {
		t.Errorf("bb4 should not be reachable")
	}
	if !g.PathExists(0, 3) || g.PathExists(1, 3) || g.PathExists(3, 0) {
		t.Errorf("PathExists is wrong")
	}
	if len(g.Reachable(10)) != 0 {
		t.Errorf("a block outside the body reaches nothing")
	}
}

func TestRecursiveGroups(t *testing.T) {
	cg := NewCallGraph(loadProgram(t))
	groups := cg.RecursiveGroups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 recursive groups, got %v", groups)
	}
	if len(groups[0]) != 2 || groups[0][0] != "b" || groups[0][1] != "c" {
		t.Errorf("expected {b, c}, got %v", groups[0])
	}
	if len(groups[1]) != 1 || groups[1][0] != "d" {
		t.Errorf("expected {d}, got %v", groups[1])
	}
	if _, ok := cg.Index("ext::f"); ok {
		t.Errorf("external functions are not in the local call graph")
	}
}

func TestComputeCFGStats(t *testing.T) {
	a, _ := loadProgram(t).Body("a")
	stats := ComputeCFGStats(a)
	if stats.Blocks != 5 || stats.Calls != 1 {
		t.Errorf("unexpected counts %+v", stats)
	}
	if stats.Edges != 4 || stats.SelfLoops != 1 {
		t.Errorf("expected 4 edges with one self-loop, got %+v", stats)
	}
	if stats.Acyclic {
		t.Errorf("a body with a self-loop is not acyclic")
	}
}
