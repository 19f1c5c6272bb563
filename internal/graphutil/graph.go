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

// Package graphutil provides graph views over control-flow graphs and call graphs, to work with existing graph
// libraries.
package graphutil

import (
	"github.com/awslabs/ar-guard/analysis/ir"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

// BlockGraph is a gonum directed graph over the blocks of a body. Node ids are block indices. Self-loops are not
// represented: they do not change reachability.
type BlockGraph struct {
	*simple.DirectedGraph

	// Body is the function the graph was constructed from
	Body *ir.Body
}

// NewBlockGraph returns the control-flow graph of body. Targets outside the body are ignored; use ir.Validate to
// detect them.
func NewBlockGraph(body *ir.Body) *BlockGraph {
	g := simple.NewDirectedGraph()
	for i := range body.Blocks {
		g.AddNode(simple.Node(int64(i)))
	}
	for i, block := range body.Blocks {
		if block == nil || block.Terminator == nil {
			continue
		}
		for _, succ := range block.Terminator.Successors() {
			if succ < 0 || int(succ) >= len(body.Blocks) || int(succ) == i {
				continue
			}
			if !g.HasEdgeFromTo(int64(i), int64(succ)) {
				g.SetEdge(g.NewEdge(simple.Node(int64(i)), simple.Node(int64(succ))))
			}
		}
	}
	return &BlockGraph{DirectedGraph: g, Body: body}
}

// Reachable returns the set of blocks reachable from the block from, including from itself
func (g *BlockGraph) Reachable(from ir.BlockID) map[ir.BlockID]bool {
	reached := map[ir.BlockID]bool{}
	if g.Node(int64(from)) == nil {
		return reached
	}
	dfs := traverse.DepthFirst{
		Visit: func(n graph.Node) { reached[ir.BlockID(n.ID())] = true },
	}
	dfs.Walk(g.DirectedGraph, simple.Node(int64(from)), nil)
	return reached
}

// PathExists returns true if there is a control-flow path from the block from to the block to
func (g *BlockGraph) PathExists(from ir.BlockID, to ir.BlockID) bool {
	if g.Node(int64(from)) == nil || g.Node(int64(to)) == nil {
		return false
	}
	return topo.PathExistsIn(g.DirectedGraph, simple.Node(int64(from)), simple.Node(int64(to)))
}
