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

// Package catalog implements the detectors command, which lists the detectors compiled in the tool and the
// detectors of rule files.
package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awslabs/ar-guard/analysis/config"
	"github.com/awslabs/ar-guard/analysis/detectors"
	"github.com/awslabs/ar-guard/analysis/ir"
	"github.com/awslabs/ar-guard/analysis/taint"
	"github.com/awslabs/ar-guard/cmd/arguard/tools"
	"github.com/awslabs/ar-guard/internal/formatutil"
	"github.com/awslabs/ar-guard/internal/funcutil"
)

const usage = ` List the detectors.
Usage:
  arguard detectors [options]
Examples:
  % arguard detectors -verbose
  % arguard detectors -rules my-rules.yaml
`

// Flags represents the parsed flags of the detectors command.
type Flags struct {
	tools.CommonFlags
	RulesPath string
}

// NewFlags returns the parsed flags for the detectors command with args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("detectors")
	rulesPath := flags.FlagSet.String("rules", "", "rule file declaring additional detectors")
	tools.SetUsage(flags.FlagSet, usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, RulesPath: *rulesPath}, nil
}

// Run prints the detectors on standard output
func Run(flags Flags) error {
	dets := detectors.All()
	if flags.RulesPath != "" {
		b, err := os.ReadFile(flags.RulesPath)
		if err != nil {
			return fmt.Errorf("could not read rule file: %w", err)
		}
		rf, err := config.LoadRuleFile(b)
		if err != nil {
			return fmt.Errorf("%s: %w", flags.RulesPath, err)
		}
		custom, err := detectors.FromRuleFile(rf)
		if err != nil {
			return err
		}
		dets = append(dets, custom...)
	}
	List(os.Stdout, dets, flags.Verbose)
	return nil
}

// List prints one line per detector in w. When verbose is set, the call targets of each role are listed too.
func List(w io.Writer, dets []*detectors.Detector, verbose bool) {
	for _, d := range dets {
		r := d.Rules
		fmt.Fprintf(w, "%s: %s\n", formatutil.Bold(r.Name), r.Message)
		if !verbose {
			continue
		}
		fmt.Fprintf(w, "\tsink-arg: %s, guard-policy: %s\n", taint.SinkArgString(r.SinkArg), r.GuardPolicy)
		printIdentifiers(w, "sources", r.Sources)
		printIdentifiers(w, "sinks", r.Sinks)
		printIdentifiers(w, "guards", r.Guards)
		printIdentifiers(w, "pass-throughs", r.PassThroughs)
		if len(r.SinkOps) > 0 {
			ops := funcutil.Map(r.SinkOps, func(op ir.BinOp) string { return op.String() })
			fmt.Fprintf(w, "\tsink-ops: %s\n", strings.Join(ops, ", "))
		}
		if r.Help != "" {
			fmt.Fprintf(w, "%s\n", formatutil.Indent(formatutil.Faint("help: "+r.Help), "\t"))
		}
	}
}

func printIdentifiers(w io.Writer, role string, cids []config.CodeIdentifier) {
	if len(cids) == 0 {
		return
	}
	strs := funcutil.Map(cids, func(c config.CodeIdentifier) string { return c.String() })
	fmt.Fprintf(w, "\t%s: %s\n", role, strings.Join(strs, ", "))
}
