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

// Package rulegen implements the rulegen command, which compiles a rule file into a Go file declaring the rules.
package rulegen

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/awslabs/ar-guard/analysis/config"
	"github.com/awslabs/ar-guard/cmd/arguard/tools"
	gen "github.com/awslabs/ar-guard/internal/rulegen"
)

const usage = ` Compile a rule file into a Go file declaring the rules.
Usage:
  arguard rulegen [options] <rule file>
Examples:
  % arguard rulegen -o rules/rules.go -package rules my-rules.yaml
`

// Flags represents the parsed flags of the rulegen command.
type Flags struct {
	tools.CommonFlags

	// Package overrides the package of the rule file
	Package string

	// Output is the output file. The generated code is printed on standard output when empty.
	Output string
}

// NewFlags returns the parsed flags for the rulegen command with args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("rulegen")
	pkg := flags.FlagSet.String("package", "", "package of the generated file (overrides the rule file)")
	output := flags.FlagSet.String("o", "", "output file")
	tools.SetUsage(flags.FlagSet, usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, Package: *pkg, Output: *output}, nil
}

// Run compiles the rule file given as argument
func Run(flags Flags) error {
	if flags.FlagSet.NArg() != 1 {
		return fmt.Errorf("rulegen expects exactly one rule file, got %d", flags.FlagSet.NArg())
	}
	b, err := os.ReadFile(flags.FlagSet.Arg(0))
	if err != nil {
		return fmt.Errorf("could not read rule file: %w", err)
	}
	var buf bytes.Buffer
	if err := Compile(b, flags.Package, &buf); err != nil {
		return fmt.Errorf("%s: %w", flags.FlagSet.Arg(0), err)
	}
	if flags.Output == "" {
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(flags.Output, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("could not write %s: %w", flags.Output, err)
	}
	if flags.Verbose {
		fmt.Fprintf(os.Stderr, "wrote %s\n", flags.Output)
	}
	return nil
}

// Compile writes the Go source declaring the rules of the rule file content b to w. pkg overrides the package of the
// rule file when not empty.
func Compile(b []byte, pkg string, w io.Writer) error {
	rf, err := config.LoadRuleFile(b)
	if err != nil {
		return err
	}
	if pkg != "" {
		rf.Package = pkg
	}
	return gen.Generate(rf, w)
}
