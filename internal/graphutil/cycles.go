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
	"github.com/awslabs/ar-guard/analysis/ir"
	"github.com/yourbasic/graph"
	"golang.org/x/exp/slices"
)

// CallGraph is the call graph of the local functions of a program, as a yourbasic graph. Vertex i is the function
// IDs[i].
type CallGraph struct {
	G     *graph.Mutable
	IDs   []ir.FuncID
	index map[ir.FuncID]int
}

// NewCallGraph builds the local call graph of prog: there is an edge f -> g when the body of f calls g and g has a
// body in prog.
func NewCallGraph(prog *ir.Program) *CallGraph {
	ids := prog.Functions()
	cg := &CallGraph{G: graph.New(len(ids)), IDs: ids, index: make(map[ir.FuncID]int, len(ids))}
	for i, id := range ids {
		cg.index[id] = i
	}
	for i, id := range ids {
		for _, callee := range prog.Callees(id) {
			cg.G.Add(i, cg.index[callee])
		}
	}
	return cg
}

// Index returns the vertex of the function id
func (cg *CallGraph) Index(id ir.FuncID) (int, bool) {
	i, ok := cg.index[id]
	return i, ok
}

// RecursiveGroups returns the groups of mutually recursive functions: the strongly connected components with more
// than one function, and the functions calling themselves. Each group is sorted, and groups are sorted by their
// first function.
func (cg *CallGraph) RecursiveGroups() [][]ir.FuncID {
	var groups [][]ir.FuncID
	for _, comp := range graph.StrongComponents(cg.G) {
		if len(comp) == 1 && !cg.G.Edge(comp[0], comp[0]) {
			continue
		}
		group := make([]ir.FuncID, len(comp))
		for i, v := range comp {
			group[i] = cg.IDs[v]
		}
		slices.Sort(group)
		groups = append(groups, group)
	}
	slices.SortFunc(groups, func(a, b []ir.FuncID) bool { return a[0] < b[0] })
	return groups
}

// CFGStats holds statistics about the control-flow graph of a body. Exits counts the blocks without successor.
type CFGStats struct {
	Blocks     int
	Edges      int
	SelfLoops  int
	Exits      int
	Acyclic    bool
	Statements int
	Calls      int
}

// ComputeCFGStats returns statistics of the body's control-flow graph
func ComputeCFGStats(body *ir.Body) CFGStats {
	g := graph.New(len(body.Blocks))
	stats := CFGStats{Blocks: len(body.Blocks)}
	for i, block := range body.Blocks {
		if block == nil {
			continue
		}
		stats.Statements += len(block.Statements)
		if block.Terminator == nil {
			continue
		}
		if _, isCall := block.Terminator.(ir.Call); isCall {
			stats.Calls++
		}
		for _, succ := range block.Terminator.Successors() {
			if succ >= 0 && int(succ) < len(body.Blocks) {
				g.Add(i, int(succ))
			}
		}
	}
	s := graph.Check(g)
	stats.Edges = s.Size
	stats.SelfLoops = s.Loops
	stats.Exits = s.Isolated
	stats.Acyclic = graph.Acyclic(g)
	return stats
}
