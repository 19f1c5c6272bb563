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

package rulegen

import (
	"go/token"
	"strconv"

	"github.com/dave/dst"
)

// NewString returns a new AST structure that represents the string value
func NewString(value string) *dst.BasicLit {
	return &dst.BasicLit{Value: strconv.Quote(value), Kind: token.STRING}
}

// NewInt returns a new AST structure that represents the integer value
func NewInt(value int) *dst.BasicLit {
	return &dst.BasicLit{Value: strconv.Itoa(value), Kind: token.INT}
}

// NewTrue returns a new AST structure that represents the boolean true
func NewTrue() *dst.Ident {
	return dst.NewIdent("true")
}

// NewSelector returns the qualified identifier pkg.name
func NewSelector(pkg string, name string) *dst.SelectorExpr {
	return &dst.SelectorExpr{X: dst.NewIdent(pkg), Sel: dst.NewIdent(name)}
}

// NewKeyValue returns the key: value element of a composite literal. When onOwnLine is set, the element is printed
// on its own line.
func NewKeyValue(key string, value dst.Expr, onOwnLine bool) *dst.KeyValueExpr {
	kv := &dst.KeyValueExpr{Key: dst.NewIdent(key), Value: value}
	if onOwnLine {
		kv.Decs.Before = dst.NewLine
		kv.Decs.After = dst.NewLine
	}
	return kv
}

// NewSliceLit returns the composite literal []elt{elts...}
func NewSliceLit(elt dst.Expr, elts ...dst.Expr) *dst.CompositeLit {
	return &dst.CompositeLit{Type: &dst.ArrayType{Elt: elt}, Elts: elts}
}

// NewCall returns a new call expression that calls fun over the arguments args
func NewCall(fun dst.Expr, args ...dst.Expr) *dst.CallExpr {
	return &dst.CallExpr{Fun: fun, Args: args}
}

// NewImportDecl returns the import declaration of paths, in order
func NewImportDecl(paths ...string) *dst.GenDecl {
	decl := &dst.GenDecl{Tok: token.IMPORT, Lparen: true}
	for _, p := range paths {
		decl.Specs = append(decl.Specs, &dst.ImportSpec{Path: NewString(p)})
	}
	return decl
}
