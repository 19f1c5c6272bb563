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

// Package rulegen compiles rule files into Go source files declaring the corresponding taint.Rules values, so that
// detectors can be written in YAML and compiled into the tool.
package rulegen

import (
	"fmt"
	"go/token"
	"io"
	"strings"
	"unicode"

	"github.com/awslabs/ar-guard/analysis/config"
	"github.com/awslabs/ar-guard/analysis/ir"
	"github.com/awslabs/ar-guard/analysis/taint"
	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
)

// Header is the first line of generated files
const Header = "// Code generated by arguard rulegen. DO NOT EDIT."

const (
	modulePath  = "github.com/awslabs/ar-guard"
	configPath  = modulePath + "/analysis/config"
	irPath      = modulePath + "/analysis/ir"
	taintPath   = modulePath + "/analysis/taint"
	defaultPkg  = "rules"
	taintPkg    = "taint"
	configPkg   = "config"
	irPkg       = "ir"
	cidTypeName = "CodeIdentifier"
)

// Generate writes the Go source declaring the rules of the file to w
func Generate(rf *config.RuleFile, w io.Writer) error {
	f, err := NewFile(rf)
	if err != nil {
		return err
	}
	return decorator.Fprint(w, f)
}

// NewFile returns the syntax tree of the Go file declaring one taint.Rules variable per rule of the file
func NewFile(rf *config.RuleFile) (*dst.File, error) {
	pkg := rf.Package
	if pkg == "" {
		pkg = defaultPkg
	}
	if !token.IsIdentifier(pkg) {
		return nil, fmt.Errorf("invalid package name %q", pkg)
	}

	g := &generator{}
	var decls []dst.Decl
	names := map[string]bool{}
	for _, spec := range rf.Rules {
		name := spec.Var
		if name == "" {
			name = VarName(spec.Name)
		}
		if !token.IsIdentifier(name) || token.IsKeyword(name) {
			return nil, fmt.Errorf("rule %s: invalid variable name %q", spec.Name, name)
		}
		if names[name] {
			return nil, fmt.Errorf("rule %s: variable %s is declared twice", spec.Name, name)
		}
		names[name] = true
		decl, err := g.ruleDecl(name, spec)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}

	imports := []string{configPath}
	if g.usesIR {
		imports = append(imports, irPath)
	}
	imports = append(imports, taintPath)
	if !g.usesConfig {
		imports = imports[1:]
	}
	if len(decls) > 0 {
		decls = append([]dst.Decl{NewImportDecl(imports...)}, decls...)
	}

	f := &dst.File{Name: dst.NewIdent(pkg), Decls: decls}
	f.Decs.Start.Append(Header, "\n")
	return f, nil
}

// VarName returns the exported Go identifier for a rule name, e.g. "set-code-hash" gives "SetCodeHash"
func VarName(ruleName string) string {
	var b strings.Builder
	upper := true
	for _, r := range ruleName {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	s := b.String()
	if s != "" && unicode.IsDigit(rune(s[0])) {
		s = "Rule" + s
	}
	return s
}

// generator records which packages the generated declarations use
type generator struct {
	usesIR     bool
	usesConfig bool
}

func (g *generator) ruleDecl(name string, spec config.RuleSpec) (*dst.GenDecl, error) {
	// the rule is converted first so that invalid rules are rejected with the same errors as at run time
	rules, err := taint.RulesFromSpec(spec)
	if err != nil {
		return nil, err
	}
	lit := &dst.CompositeLit{Type: NewSelector(taintPkg, "Rules")}
	add := func(key string, value dst.Expr) {
		lit.Elts = append(lit.Elts, NewKeyValue(key, value, true))
	}

	add("Name", NewString(rules.Name))
	if rules.Message != "" {
		add("Message", NewString(rules.Message))
	}
	if rules.Help != "" {
		add("Help", NewString(rules.Help))
	}
	for _, table := range []struct {
		key  string
		cids []config.CodeIdentifier
	}{
		{"Sources", rules.Sources},
		{"Sinks", rules.Sinks},
		{"Guards", rules.Guards},
		{"PassThroughs", rules.PassThroughs},
	} {
		if len(table.cids) > 0 {
			add(table.key, g.codeIdentifiers(table.cids))
		}
	}
	add("SinkArg", sinkArgExpr(rules.SinkArg))
	if len(rules.SinkOps) > 0 {
		add("SinkOps", NewSliceLit(NewSelector(irPkg, "BinOp"), g.binOps(spec.SinkOps)...))
	}
	if len(spec.TaintOps) > 0 {
		add("BinaryOp", NewCall(NewSelector(taintPkg, "TaintResultOf"), g.binOps(spec.TaintOps)...))
	}
	for _, flag := range []struct {
		key   string
		value bool
	}{
		{"TaintParams", rules.TaintParams},
		{"FollowLocalCalls", rules.FollowLocalCalls},
		{"ConsumeOnSink", rules.ConsumeOnSink},
	} {
		if flag.value {
			add(flag.key, NewTrue())
		}
	}
	if spec.GuardPolicy != "" {
		add("GuardPolicy", guardPolicyExpr(rules.GuardPolicy))
	}

	decl := &dst.GenDecl{
		Tok:   token.VAR,
		Specs: []dst.Spec{&dst.ValueSpec{Names: []*dst.Ident{dst.NewIdent(name)}, Values: []dst.Expr{lit}}},
	}
	decl.Decs.Before = dst.EmptyLine
	decl.Decs.Start.Append(fmt.Sprintf("// %s are the rules of the %s detector", name, rules.Name))
	return decl, nil
}

func (g *generator) codeIdentifiers(cids []config.CodeIdentifier) dst.Expr {
	g.usesConfig = true
	var elts []dst.Expr
	for _, cid := range cids {
		e := &dst.CompositeLit{}
		for _, field := range []struct{ key, value string }{
			{"Crate", cid.Crate}, {"Path", cid.Path}, {"Method", cid.Method},
		} {
			if field.value != "" {
				e.Elts = append(e.Elts, NewKeyValue(field.key, NewString(field.value), false))
			}
		}
		elts = append(elts, e)
	}
	return NewSliceLit(NewSelector(configPkg, cidTypeName), elts...)
}

// binOps returns the ir constants of the operators. The names have been validated by taint.RulesFromSpec.
func (g *generator) binOps(names []string) []dst.Expr {
	g.usesIR = true
	var ops []dst.Expr
	for _, name := range names {
		op, _ := ir.ParseBinOp(name)
		ops = append(ops, NewSelector(irPkg, op.String()))
	}
	return ops
}

func sinkArgExpr(arg int) dst.Expr {
	switch arg {
	case taint.AnyArg:
		return NewSelector(taintPkg, "AnyArg")
	case taint.Unconditional:
		return NewSelector(taintPkg, "Unconditional")
	default:
		return NewInt(arg)
	}
}

func guardPolicyExpr(g taint.GuardPolicy) dst.Expr {
	switch g {
	case taint.GuardFallback:
		return NewSelector(taintPkg, "GuardFallback")
	case taint.GuardNone:
		return NewSelector(taintPkg, "GuardNone")
	default:
		return NewSelector(taintPkg, "GuardSticky")
	}
}
