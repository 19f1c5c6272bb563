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

// Local is a local variable slot of a function body. By convention, _0 holds the return value.
type Local int

func (l Local) String() string {
	return "_" + strconv.Itoa(int(l))
}

// ProjectionKind is the kind of a place projection
type ProjectionKind int

const (
	// Field selects a named (or positional) field of an aggregate
	Field ProjectionKind = iota
	// Deref dereferences a pointer or reference
	Deref
	// Index selects an element of an array or slice, the index being a local
	Index
	// Downcast selects an enum variant
	Downcast
)

// A Projection is one step of a place path, e.g. the ".owner" in "_1.owner"
type Projection struct {
	Kind ProjectionKind
	Name string
}

func (p Projection) String() string {
	switch p.Kind {
	case Deref:
		return "*"
	case Index:
		return "[" + p.Name + "]"
	case Downcast:
		return "@" + p.Name
	default:
		return p.Name
	}
}

// Place is an abstract storage location: a local slot with an optional projection path.
type Place struct {
	Local      Local
	Projection []Projection
}

// LocalPlace returns the place of the local l without projections
func LocalPlace(l Local) Place {
	return Place{Local: l}
}

// String returns the textual form of the place, which is also its identity key, e.g. "_3.owner.*"
func (p Place) String() string {
	if len(p.Projection) == 0 {
		return p.Local.String()
	}
	var b strings.Builder
	b.WriteString(p.Local.String())
	for _, proj := range p.Projection {
		b.WriteByte('.')
		b.WriteString(proj.String())
	}
	return b.String()
}

// Equal returns true when p and q denote the same place, projections included
func (p Place) Equal(q Place) bool {
	if p.Local != q.Local || len(p.Projection) != len(q.Projection) {
		return false
	}
	for i := range p.Projection {
		if p.Projection[i] != q.Projection[i] {
			return false
		}
	}
	return true
}

// IsPrefixOf returns true when q is p or a projection of p. For example _1.a is a prefix of _1.a.b and
// of itself, but not of _1.b.
func (p Place) IsPrefixOf(q Place) bool {
	if p.Local != q.Local || len(p.Projection) > len(q.Projection) {
		return false
	}
	for i := range p.Projection {
		if p.Projection[i] != q.Projection[i] {
			return false
		}
	}
	return true
}

// Base returns the place without its projections
func (p Place) Base() Place {
	return Place{Local: p.Local}
}

// Project returns a new place extending p with proj. p is not modified.
func (p Place) Project(proj Projection) Place {
	projs := make([]Projection, len(p.Projection), len(p.Projection)+1)
	copy(projs, p.Projection)
	return Place{Local: p.Local, Projection: append(projs, proj)}
}

// ParsePlace parses the textual form produced by Place.String.
func ParsePlace(s string) (Place, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ".")
	l, err := parseLocal(parts[0])
	if err != nil {
		return Place{}, err
	}
	p := Place{Local: l}
	for _, part := range parts[1:] {
		switch {
		case part == "":
			return Place{}, fmt.Errorf("empty projection in place %q", s)
		case part == "*":
			p.Projection = append(p.Projection, Projection{Kind: Deref})
		case strings.HasPrefix(part, "[") && strings.HasSuffix(part, "]"):
			p.Projection = append(p.Projection, Projection{Kind: Index, Name: part[1 : len(part)-1]})
		case strings.HasPrefix(part, "@"):
			p.Projection = append(p.Projection, Projection{Kind: Downcast, Name: part[1:]})
		default:
			p.Projection = append(p.Projection, Projection{Kind: Field, Name: part})
		}
	}
	return p, nil
}

func parseLocal(s string) (Local, error) {
	if !strings.HasPrefix(s, "_") {
		return 0, fmt.Errorf("invalid local %q: expected _N", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid local %q: expected _N", s)
	}
	return Local(n), nil
}

// An Operand is the argument of an rvalue or a call: Copy, Move or Constant
type Operand interface {
	fmt.Stringer
	isOperand()
}

// Copy reads a place without invalidating it
type Copy struct{ Place Place }

// Move reads a place and invalidates it
type Move struct{ Place Place }

// Constant is a literal value
type Constant struct{ Value string }

func (Copy) isOperand()     {}
func (Move) isOperand()     {}
func (Constant) isOperand() {}

func (o Copy) String() string     { return "copy " + o.Place.String() }
func (o Move) String() string     { return "move " + o.Place.String() }
func (o Constant) String() string { return "const " + o.Value }

// OperandPlace returns the place read by the operand, if any. Constants read no place.
func OperandPlace(o Operand) (Place, bool) {
	switch x := o.(type) {
	case Copy:
		return x.Place, true
	case Move:
		return x.Place, true
	default:
		return Place{}, false
	}
}

// ParseOperand parses "copy P", "move P" or "const V"
func ParseOperand(s string) (Operand, error) {
	s = strings.TrimSpace(s)
	kind, rest, ok := strings.Cut(s, " ")
	if !ok {
		return nil, fmt.Errorf("invalid operand %q", s)
	}
	switch kind {
	case "copy":
		p, err := ParsePlace(rest)
		if err != nil {
			return nil, err
		}
		return Copy{Place: p}, nil
	case "move":
		p, err := ParsePlace(rest)
		if err != nil {
			return nil, err
		}
		return Move{Place: p}, nil
	case "const":
		return Constant{Value: strings.TrimSpace(rest)}, nil
	default:
		return nil, fmt.Errorf("invalid operand %q: unknown kind %q", s, kind)
	}
}
