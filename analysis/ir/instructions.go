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
)

// BinOp is the operator of a BinaryOp rvalue
type BinOp int

// Binary operators
const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Rem
	BitAnd
	BitOr
	BitXor
	Shl
	Shr
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	Offset
)

var binOpNames = [...]string{
	Add: "Add", Sub: "Sub", Mul: "Mul", Div: "Div", Rem: "Rem",
	BitAnd: "BitAnd", BitOr: "BitOr", BitXor: "BitXor", Shl: "Shl", Shr: "Shr",
	Eq: "Eq", Ne: "Ne", Lt: "Lt", Le: "Le", Gt: "Gt", Ge: "Ge", Offset: "Offset",
}

func (op BinOp) String() string {
	if op >= 0 && int(op) < len(binOpNames) {
		return binOpNames[op]
	}
	return fmt.Sprintf("BinOp(%d)", int(op))
}

// ParseBinOp returns the operator named s (case-insensitive)
func ParseBinOp(s string) (BinOp, error) {
	for i, name := range binOpNames {
		if strings.EqualFold(name, s) {
			return BinOp(i), nil
		}
	}
	return 0, fmt.Errorf("unknown binary operator %q", s)
}

// An Rvalue is the right-hand side of an assignment
type Rvalue interface {
	fmt.Stringer
	isRvalue()
}

// Use reads an operand
type Use struct{ Operand Operand }

// Ref borrows a place
type Ref struct{ Place Place }

// AddressOf takes the raw address of a place
type AddressOf struct{ Place Place }

// Len is the length of an array or slice place
type Len struct{ Place Place }

// CopyForDeref copies a place so that it can be dereferenced
type CopyForDeref struct{ Place Place }

// BinaryOp applies Op to Lhs and Rhs
type BinaryOp struct {
	Op  BinOp
	Lhs Operand
	Rhs Operand
}

// Other is any rvalue the analyses do not propagate through (aggregates, casts, discriminants...)
type Other struct{ Desc string }

func (Use) isRvalue()          {}
func (Ref) isRvalue()          {}
func (AddressOf) isRvalue()    {}
func (Len) isRvalue()          {}
func (CopyForDeref) isRvalue() {}
func (BinaryOp) isRvalue()     {}
func (Other) isRvalue()        {}

func (r Use) String() string          { return r.Operand.String() }
func (r Ref) String() string          { return "&" + r.Place.String() }
func (r AddressOf) String() string    { return "&raw " + r.Place.String() }
func (r Len) String() string          { return "len " + r.Place.String() }
func (r CopyForDeref) String() string { return "deref_copy " + r.Place.String() }
func (r BinaryOp) String() string {
	return fmt.Sprintf("%s(%s, %s)", r.Op, r.Lhs, r.Rhs)
}
func (r Other) String() string {
	if r.Desc == "" {
		return "other"
	}
	return "other " + r.Desc
}

// ParseRvalue parses the textual form of an rvalue:
//
//	copy _1 | move _1.f | const 3 | use copy _1
//	&_1 | &mut _1 | &raw _1 | len _1 | deref_copy _1
//	Div(copy _1, const 2)
//	other [description]
func ParseRvalue(s string) (Rvalue, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "other" || strings.HasPrefix(s, "other "):
		return Other{Desc: strings.TrimSpace(strings.TrimPrefix(s, "other"))}, nil
	case strings.HasPrefix(s, "use "):
		op, err := ParseOperand(strings.TrimPrefix(s, "use "))
		if err != nil {
			return nil, err
		}
		return Use{Operand: op}, nil
	case strings.HasPrefix(s, "&raw "):
		p, err := ParsePlace(strings.TrimPrefix(s, "&raw "))
		return AddressOf{Place: p}, err
	case strings.HasPrefix(s, "&mut "):
		p, err := ParsePlace(strings.TrimPrefix(s, "&mut "))
		return Ref{Place: p}, err
	case strings.HasPrefix(s, "&"):
		p, err := ParsePlace(strings.TrimPrefix(s, "&"))
		return Ref{Place: p}, err
	case strings.HasPrefix(s, "len "):
		p, err := ParsePlace(strings.TrimPrefix(s, "len "))
		return Len{Place: p}, err
	case strings.HasPrefix(s, "deref_copy "):
		p, err := ParsePlace(strings.TrimPrefix(s, "deref_copy "))
		return CopyForDeref{Place: p}, err
	case strings.HasSuffix(s, ")") && strings.Contains(s, "("):
		name, args, _ := strings.Cut(strings.TrimSuffix(s, ")"), "(")
		op, err := ParseBinOp(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		lhsStr, rhsStr, ok := strings.Cut(args, ",")
		if !ok {
			return nil, fmt.Errorf("binary operation %q needs two operands", s)
		}
		lhs, err := ParseOperand(lhsStr)
		if err != nil {
			return nil, err
		}
		rhs, err := ParseOperand(rhsStr)
		if err != nil {
			return nil, err
		}
		return BinaryOp{Op: op, Lhs: lhs, Rhs: rhs}, nil
	default:
		op, err := ParseOperand(s)
		if err != nil {
			return nil, fmt.Errorf("invalid rvalue %q: %w", s, err)
		}
		return Use{Operand: op}, nil
	}
}

// A Statement is a non-control-flow instruction of a basic block. Only assignments exist.
type Statement interface {
	fmt.Stringer
	Pos() Span
}

// Assign stores the value of Rvalue into Dest
type Assign struct {
	Dest   Place
	Rvalue Rvalue
	Span   Span
}

// Pos returns the source span of the assignment
func (a Assign) Pos() Span { return a.Span }

func (a Assign) String() string {
	return a.Dest.String() + " = " + a.Rvalue.String()
}
