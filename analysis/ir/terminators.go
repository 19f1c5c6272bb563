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
	"strconv"
	"strings"
)

// BlockID is the index of a basic block in its body. Block 0 is the entry block.
type BlockID int

func (b BlockID) String() string {
	return "bb" + strconv.Itoa(int(b))
}

// Next returns a pointer to b, for the optional targets of terminators
func Next(b BlockID) *BlockID {
	return &b
}

// A Terminator ends a basic block and transfers control.
type Terminator interface {
	fmt.Stringer
	// Successors returns the blocks control may transfer to, in the order the terminator lists them
	Successors() []BlockID
	Pos() Span
}

// Goto jumps to Target
type Goto struct {
	Target BlockID
	Span   Span
}

// SwitchInt branches on the value of Discr. The last target is the fallback ("otherwise") target.
type SwitchInt struct {
	Discr   Operand
	Targets []BlockID
	Span    Span
}

// Call calls Func with Args, stores the result in Dest if present and continues at Target if the call returns.
type Call struct {
	Func   FuncID
	Args   []Operand
	Dest   *Place
	Target *BlockID
	Span   Span
}

// Return returns from the function
type Return struct{ Span Span }

// Drop drops a value and continues at Target
type Drop struct {
	Target BlockID
	Span   Span
}

// Assert checks a condition and continues at Target
type Assert struct {
	Cond   Operand
	Target BlockID
	Span   Span
}

// Yield suspends a generator
type Yield struct {
	Resume BlockID
	Drop   *BlockID
	Span   Span
}

// FalseEdge is a pseudo-branch inserted for match guards: only Real is taken at runtime
type FalseEdge struct {
	Real      BlockID
	Imaginary BlockID
	Span      Span
}

// FalseUnwind is a pseudo-branch inserted for loops
type FalseUnwind struct {
	Real BlockID
	Span Span
}

// InlineAsm executes inline assembly, then continues at Dest if present
type InlineAsm struct {
	Dest *BlockID
	Span Span
}

// Unreachable marks a block that can never be executed
type Unreachable struct{ Span Span }

// GeneratorDrop drops a generator
type GeneratorDrop struct{ Span Span }

// Resume continues unwinding
type Resume struct{ Span Span }

// Terminate aborts unwinding
type Terminate struct{ Span Span }

func optional(b *BlockID) []BlockID {
	if b == nil {
		return nil
	}
	return []BlockID{*b}
}

func (t Goto) Successors() []BlockID          { return []BlockID{t.Target} }
func (t SwitchInt) Successors() []BlockID     { return t.Targets }
func (t Call) Successors() []BlockID          { return optional(t.Target) }
func (t Return) Successors() []BlockID        { return nil }
func (t Drop) Successors() []BlockID          { return []BlockID{t.Target} }
func (t Assert) Successors() []BlockID        { return []BlockID{t.Target} }
func (t Yield) Successors() []BlockID         { return append([]BlockID{t.Resume}, optional(t.Drop)...) }
func (t FalseEdge) Successors() []BlockID     { return []BlockID{t.Real, t.Imaginary} }
func (t FalseUnwind) Successors() []BlockID   { return []BlockID{t.Real} }
func (t InlineAsm) Successors() []BlockID     { return optional(t.Dest) }
func (t Unreachable) Successors() []BlockID   { return nil }
func (t GeneratorDrop) Successors() []BlockID { return nil }
func (t Resume) Successors() []BlockID        { return nil }
func (t Terminate) Successors() []BlockID     { return nil }

func (t Goto) Pos() Span          { return t.Span }
func (t SwitchInt) Pos() Span     { return t.Span }
func (t Call) Pos() Span          { return t.Span }
func (t Return) Pos() Span        { return t.Span }
func (t Drop) Pos() Span          { return t.Span }
func (t Assert) Pos() Span        { return t.Span }
func (t Yield) Pos() Span         { return t.Span }
func (t FalseEdge) Pos() Span     { return t.Span }
func (t FalseUnwind) Pos() Span   { return t.Span }
func (t InlineAsm) Pos() Span     { return t.Span }
func (t Unreachable) Pos() Span   { return t.Span }
func (t GeneratorDrop) Pos() Span { return t.Span }
func (t Resume) Pos() Span        { return t.Span }
func (t Terminate) Pos() Span     { return t.Span }

func (t Goto) String() string { return "goto -> " + t.Target.String() }
func (t SwitchInt) String() string {
	return fmt.Sprintf("switchInt(%s) -> [%s]", t.Discr, blockList(t.Targets))
}
func (t Call) String() string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	s := fmt.Sprintf("%s(%s)", t.Func, strings.Join(args, ", "))
	if t.Dest != nil {
		s = t.Dest.String() + " = " + s
	}
	if t.Target != nil {
		s += " -> " + t.Target.String()
	}
	return s
}
func (t Return) String() string { return "return" }
func (t Drop) String() string   { return "drop -> " + t.Target.String() }
func (t Assert) String() string {
	return fmt.Sprintf("assert(%s) -> %s", t.Cond, t.Target)
}
func (t Yield) String() string {
	return "yield -> [" + blockList(t.Successors()) + "]"
}
func (t FalseEdge) String() string {
	return fmt.Sprintf("falseEdge -> [real: %s, imaginary: %s]", t.Real, t.Imaginary)
}
func (t FalseUnwind) String() string   { return "falseUnwind -> " + t.Real.String() }
func (t InlineAsm) String() string     { return "asm -> [" + blockList(t.Successors()) + "]" }
func (t Unreachable) String() string   { return "unreachable" }
func (t GeneratorDrop) String() string { return "generator_drop" }
func (t Resume) String() string        { return "resume" }
func (t Terminate) String() string     { return "terminate" }

func blockList(bs []BlockID) string {
	s := make([]string, len(bs))
	for i, b := range bs {
		s[i] = b.String()
	}
	return strings.Join(s, ", ")
}
