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

package ir

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// FuncID is the stable, fully-qualified identifier of a function definition, e.g.
// "ink::env::Env::caller" or "mycontract::Contract::withdraw".
type FuncID string

// Components splits the identifier into its crate, its path and its last segment (the method or function name).
// "a::b::C::m" yields ("a", "b::C", "m"); an identifier without "::" is only a method name.
func (f FuncID) Components() (crate string, path string, method string) {
	parts := strings.Split(string(f), "::")
	switch len(parts) {
	case 1:
		return "", "", parts[0]
	case 2:
		return parts[0], "", parts[1]
	default:
		return parts[0], strings.Join(parts[1:len(parts)-1], "::"), parts[len(parts)-1]
	}
}

// A BasicBlock is a straight-line sequence of statements ending with exactly one terminator.
type BasicBlock struct {
	Statements []Statement
	Terminator Terminator
}

// A Body is the control-flow graph of one function. Blocks[0] is the entry block.
type Body struct {
	ID FuncID
	// Params are the locals holding the declared parameters, in declaration order
	Params []Local
	// Return is the local holding the return value, nil when the dump does not declare one
	Return *Local
	Blocks []*BasicBlock
	Span   Span
}

// Block returns the block with index b, or nil if there is no such block
func (b *Body) Block(id BlockID) *BasicBlock {
	if id < 0 || int(id) >= len(b.Blocks) {
		return nil
	}
	return b.Blocks[id]
}

// Calls iterates over all the call terminators of the body, in block order
func (b *Body) Calls(f func(BlockID, Call)) {
	for i, block := range b.Blocks {
		if block == nil {
			continue
		}
		if c, ok := block.Terminator.(Call); ok {
			f(BlockID(i), c)
		}
	}
}

// A Program is a set of function bodies defined in the same crate. Calls to functions with a body in the
// program are "local" calls.
type Program struct {
	bodies map[FuncID]*Body
}

// NewProgram returns a program containing the bodies. It returns an error if two bodies have the same identifier.
func NewProgram(bodies ...*Body) (*Program, error) {
	p := &Program{bodies: make(map[FuncID]*Body, len(bodies))}
	for _, b := range bodies {
		if err := p.Add(b); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Add adds a body to the program
func (p *Program) Add(b *Body) error {
	if b == nil {
		return fmt.Errorf("nil body")
	}
	if p.bodies == nil {
		p.bodies = map[FuncID]*Body{}
	}
	if _, ok := p.bodies[b.ID]; ok {
		return fmt.Errorf("duplicate function %q", b.ID)
	}
	p.bodies[b.ID] = b
	return nil
}

// Merge adds all the bodies of other to p
func (p *Program) Merge(other *Program) error {
	for _, id := range other.Functions() {
		if err := p.Add(other.bodies[id]); err != nil {
			return err
		}
	}
	return nil
}

// Body returns the body of the function id, if it is defined in the program
func (p *Program) Body(id FuncID) (*Body, bool) {
	b, ok := p.bodies[id]
	return b, ok
}

// IsLocal returns true if the function has a body in the program
func (p *Program) IsLocal(id FuncID) bool {
	_, ok := p.bodies[id]
	return ok
}

// Functions returns the identifiers of all the functions of the program, sorted
func (p *Program) Functions() []FuncID {
	ids := maps.Keys(p.bodies)
	slices.Sort(ids)
	return ids
}

// Len returns the number of function bodies in the program
func (p *Program) Len() int {
	return len(p.bodies)
}

// Callees returns the sorted set of local functions called by the body of id
func (p *Program) Callees(id FuncID) []FuncID {
	b, ok := p.bodies[id]
	if !ok {
		return nil
	}
	set := map[FuncID]bool{}
	b.Calls(func(_ BlockID, c Call) {
		if p.IsLocal(c.Func) {
			set[c.Func] = true
		}
	})
	callees := maps.Keys(set)
	slices.Sort(callees)
	return callees
}
