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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/tools/txtar"
	"gopkg.in/yaml.v3"
)

// The yaml representation of a program dump. A dump looks like:
//
//	functions:
//	  - id: contract::Contract::withdraw
//	    params: [_1, _2]
//	    span: lib.rs:40:5
//	    blocks:
//	      - statements:
//	          - {dest: _3, rvalue: copy _2, span: lib.rs:41:9}
//	        terminator: {kind: call, func: ink::env::Env::caller, dest: _4, target: 1}
//	      - terminator: {kind: return}
type programFile struct {
	Functions []functionEntry `yaml:"functions"`
}

type functionEntry struct {
	ID     string       `yaml:"id"`
	Params []string     `yaml:"params"`
	Return string       `yaml:"return"`
	Span   Span         `yaml:"span"`
	Blocks []blockEntry `yaml:"blocks"`
}

type blockEntry struct {
	Statements []statementEntry `yaml:"statements"`
	Terminator *terminatorEntry `yaml:"terminator"`
}

type statementEntry struct {
	Dest   string `yaml:"dest"`
	Rvalue string `yaml:"rvalue"`
	Span   Span   `yaml:"span"`
}

type terminatorEntry struct {
	Kind      string   `yaml:"kind"`
	Target    *int     `yaml:"target"`
	Targets   []int    `yaml:"targets"`
	Discr     string   `yaml:"discr"`
	Func      string   `yaml:"func"`
	Args      []string `yaml:"args"`
	Dest      string   `yaml:"dest"`
	Real      *int     `yaml:"real"`
	Imaginary *int     `yaml:"imaginary"`
	Drop      *int     `yaml:"drop"`
	Span      Span     `yaml:"span"`
}

// Decode reads a yaml program dump
func Decode(data []byte) (*Program, error) {
	var file programFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not decode program: %w", err)
	}
	prog := &Program{bodies: make(map[FuncID]*Body, len(file.Functions))}
	for _, fe := range file.Functions {
		body, err := fe.toBody()
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fe.ID, err)
		}
		if err := prog.Add(body); err != nil {
			return nil, err
		}
	}
	return prog, nil
}

// LoadArchive reads all the yaml files (.yaml or .yml) of a txtar archive into one program. Other files are ignored.
func LoadArchive(data []byte) (*Program, error) {
	ar := txtar.Parse(data)
	prog := &Program{bodies: map[FuncID]*Body{}}
	for _, f := range ar.Files {
		if !isYaml(f.Name) {
			continue
		}
		p, err := Decode(f.Data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		if err := prog.Merge(p); err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
	}
	return prog, nil
}

// LoadFiles reads programs from yaml dumps and txtar archives (.txtar) and merges them in one program.
func LoadFiles(filenames ...string) (*Program, error) {
	prog := &Program{bodies: map[FuncID]*Body{}}
	for _, filename := range filenames {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("could not read %s: %w", filename, err)
		}
		var p *Program
		switch {
		case filepath.Ext(filename) == ".txtar":
			p, err = LoadArchive(data)
		case isYaml(filename):
			p, err = Decode(data)
		default:
			return nil, fmt.Errorf("%s: unsupported file type (expected .yaml, .yml or .txtar)", filename)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		if err := prog.Merge(p); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
	}
	return prog, nil
}

func isYaml(name string) bool {
	ext := filepath.Ext(name)
	return ext == ".yaml" || ext == ".yml"
}

func (fe functionEntry) toBody() (*Body, error) {
	if fe.ID == "" {
		return nil, fmt.Errorf("missing function id")
	}
	body := &Body{ID: FuncID(fe.ID), Span: fe.Span, Blocks: make([]*BasicBlock, len(fe.Blocks))}
	for _, p := range fe.Params {
		l, err := parseLocal(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		body.Params = append(body.Params, l)
	}
	if fe.Return != "" {
		l, err := parseLocal(strings.TrimSpace(fe.Return))
		if err != nil {
			return nil, err
		}
		body.Return = &l
	}
	for i, be := range fe.Blocks {
		block := &BasicBlock{}
		for _, se := range be.Statements {
			dest, err := ParsePlace(se.Dest)
			if err != nil {
				return nil, fmt.Errorf("bb%d: %w", i, err)
			}
			rv, err := ParseRvalue(se.Rvalue)
			if err != nil {
				return nil, fmt.Errorf("bb%d: %w", i, err)
			}
			block.Statements = append(block.Statements, Assign{Dest: dest, Rvalue: rv, Span: se.Span})
		}
		// a missing terminator is kept as nil: Validate reports it if the block is reachable
		if be.Terminator != nil {
			t, err := be.Terminator.toTerminator()
			if err != nil {
				return nil, fmt.Errorf("bb%d: %w", i, err)
			}
			block.Terminator = t
		}
		body.Blocks[i] = block
	}
	return body, nil
}

func (te *terminatorEntry) target() (BlockID, error) {
	if te.Target == nil {
		return 0, fmt.Errorf("%s terminator needs a target", te.Kind)
	}
	return BlockID(*te.Target), nil
}

func optionalBlock(b *int) *BlockID {
	if b == nil {
		return nil
	}
	return Next(BlockID(*b))
}

//gocyclo:ignore
func (te *terminatorEntry) toTerminator() (Terminator, error) {
	switch te.Kind {
	case "goto":
		t, err := te.target()
		return Goto{Target: t, Span: te.Span}, err
	case "drop":
		t, err := te.target()
		return Drop{Target: t, Span: te.Span}, err
	case "false_unwind":
		t, err := te.target()
		return FalseUnwind{Real: t, Span: te.Span}, err
	case "assert":
		t, err := te.target()
		if err != nil {
			return nil, err
		}
		var cond Operand = Constant{Value: "true"}
		if te.Discr != "" {
			if cond, err = ParseOperand(te.Discr); err != nil {
				return nil, err
			}
		}
		return Assert{Cond: cond, Target: t, Span: te.Span}, nil
	case "switch_int":
		discr, err := ParseOperand(te.Discr)
		if err != nil {
			return nil, fmt.Errorf("switch_int discriminant: %w", err)
		}
		if len(te.Targets) == 0 {
			return nil, fmt.Errorf("switch_int needs targets")
		}
		targets := make([]BlockID, len(te.Targets))
		for i, t := range te.Targets {
			targets[i] = BlockID(t)
		}
		return SwitchInt{Discr: discr, Targets: targets, Span: te.Span}, nil
	case "call":
		if te.Func == "" {
			return nil, fmt.Errorf("call needs a func")
		}
		c := Call{Func: FuncID(te.Func), Target: optionalBlock(te.Target), Span: te.Span}
		for _, a := range te.Args {
			op, err := ParseOperand(a)
			if err != nil {
				return nil, fmt.Errorf("call argument: %w", err)
			}
			c.Args = append(c.Args, op)
		}
		if te.Dest != "" {
			dest, err := ParsePlace(te.Dest)
			if err != nil {
				return nil, err
			}
			c.Dest = &dest
		}
		return c, nil
	case "yield":
		t, err := te.target()
		return Yield{Resume: t, Drop: optionalBlock(te.Drop), Span: te.Span}, err
	case "false_edge":
		if te.Real == nil || te.Imaginary == nil {
			return nil, fmt.Errorf("false_edge needs real and imaginary targets")
		}
		return FalseEdge{Real: BlockID(*te.Real), Imaginary: BlockID(*te.Imaginary), Span: te.Span}, nil
	case "inline_asm":
		return InlineAsm{Dest: optionalBlock(te.Target), Span: te.Span}, nil
	case "return":
		return Return{Span: te.Span}, nil
	case "unreachable":
		return Unreachable{Span: te.Span}, nil
	case "generator_drop":
		return GeneratorDrop{Span: te.Span}, nil
	case "resume":
		return Resume{Span: te.Span}, nil
	case "terminate":
		return Terminate{Span: te.Span}, nil
	default:
		return nil, fmt.Errorf("unknown terminator kind %q", te.Kind)
	}
}
