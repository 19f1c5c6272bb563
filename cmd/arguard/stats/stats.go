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

// Package stats implements the stats command, which prints statistics about the control-flow graphs of the functions
// of a program and the recursion in its call graph.
package stats

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awslabs/ar-guard/analysis/ir"
	"github.com/awslabs/ar-guard/cmd/arguard/tools"
	"github.com/awslabs/ar-guard/internal/formatutil"
	"github.com/awslabs/ar-guard/internal/graphutil"
	"gonum.org/v1/gonum/stat"
)

// Usage is the usage message of the stats command
const Usage = ` Print statistics about the functions of a program.
Usage:
  arguard stats [options] <IR file path(s)>
Examples:
  % arguard stats contract.yaml
  % arguard stats -verbose contract.txtar
`

// Run loads the program and prints its statistics
func Run(flags tools.CommonFlags) error {
	cfg, err := tools.LoadConfig(flags.ConfigPath)
	if err != nil {
		return err
	}
	prog, err := tools.LoadProgram(flags.FlagSet.Args())
	if err != nil {
		return err
	}
	Report(os.Stdout, prog, cfg.MatchFunctionFilter, flags.Verbose)
	return nil
}

// ProgramStats summarizes the statistics of the functions of a program
type ProgramStats struct {
	Functions map[ir.FuncID]graphutil.CFGStats

	// Order lists the functions in Functions in program order
	Order []ir.FuncID

	// MeanBlocks and StdDevBlocks are the mean and standard deviation of the number of blocks per function
	MeanBlocks   float64
	StdDevBlocks float64

	// Cyclic is the number of functions with a loop in their control-flow graph
	Cyclic int

	// Recursive are the groups of mutually recursive functions
	Recursive [][]ir.FuncID
}

// Compute returns the statistics of the functions of prog that satisfy filter
func Compute(prog *ir.Program, filter func(string) bool) ProgramStats {
	ps := ProgramStats{Functions: map[ir.FuncID]graphutil.CFGStats{}}
	var blocks []float64
	for _, id := range prog.Functions() {
		if !filter(string(id)) {
			continue
		}
		body, _ := prog.Body(id)
		s := graphutil.ComputeCFGStats(body)
		ps.Functions[id] = s
		ps.Order = append(ps.Order, id)
		blocks = append(blocks, float64(s.Blocks))
		if !s.Acyclic {
			ps.Cyclic++
		}
	}
	if len(blocks) > 0 {
		ps.MeanBlocks = stat.Mean(blocks, nil)
	}
	if len(blocks) > 1 {
		ps.StdDevBlocks = stat.StdDev(blocks, nil)
	}
	ps.Recursive = graphutil.NewCallGraph(prog).RecursiveGroups()
	return ps
}

// Report prints the statistics of prog to w. The statistics of each function are printed when verbose is set.
func Report(w io.Writer, prog *ir.Program, filter func(string) bool, verbose bool) {
	ps := Compute(prog, filter)
	fmt.Fprintf(w, "%s\n", formatutil.Bold("Program"))
	fmt.Fprintf(w, "\tfunctions: %d\n", len(ps.Order))
	fmt.Fprintf(w, "\tblocks per function: %.2f (stddev %.2f)\n", ps.MeanBlocks, ps.StdDevBlocks)
	fmt.Fprintf(w, "\tfunctions with loops: %d\n", ps.Cyclic)
	fmt.Fprintf(w, "\trecursive groups: %d\n", len(ps.Recursive))
	for _, group := range ps.Recursive {
		names := make([]string, len(group))
		for i, id := range group {
			names[i] = formatutil.Sanitize(string(id))
		}
		fmt.Fprintf(w, "\t\t%s\n", strings.Join(names, ", "))
	}
	if !verbose {
		return
	}
	for _, id := range ps.Order {
		s := ps.Functions[id]
		fmt.Fprintf(w, "%s\n", formatutil.Bold(formatutil.Sanitize(string(id))))
		fmt.Fprintf(w, "\tblocks: %d, edges: %d, exits: %d, self-loops: %d, acyclic: %t\n",
			s.Blocks, s.Edges, s.Exits, s.SelfLoops, s.Acyclic)
		fmt.Fprintf(w, "\tstatements: %d, calls: %d\n", s.Statements, s.Calls)
	}
}
