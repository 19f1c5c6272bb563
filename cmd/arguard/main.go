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

package main

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-guard/analysis"
	"github.com/awslabs/ar-guard/cmd/arguard/catalog"
	"github.com/awslabs/ar-guard/cmd/arguard/rulegen"
	"github.com/awslabs/ar-guard/cmd/arguard/scan"
	"github.com/awslabs/ar-guard/cmd/arguard/stats"
	"github.com/awslabs/ar-guard/cmd/arguard/tools"
)

const usage = `Arguard: taint-guarded-sink detectors for smart contracts
Usage:
  arguard [tool] [options] <IR file path(s)>
Tools:
  - scan: runs the detectors on the functions of the programs
  - detectors: lists the detectors
  - rulegen: compiles a rule file into a Go file declaring the rules
  - stats: prints statistics about the control-flow graphs and the call graph of the programs
Inputs are yaml program dumps (.yaml, .yml) or txtar archives of program dumps (.txtar).
Examples:
  Run all the detectors: arguard scan -config config.yaml contract.yaml
  Run one detector: arguard scan -detectors set-code-hash contract.txtar`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(analysis.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "scan":
		flags, err := scan.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		found, err := scan.Run(flags)
		if err != nil {
			errExit(err)
		}
		if found && flags.FailOnFindings {
			os.Exit(1)
		}
	case "detectors":
		flags, err := catalog.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := catalog.Run(flags); err != nil {
			errExit(err)
		}
	case "rulegen":
		flags, err := rulegen.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := rulegen.Run(flags); err != nil {
			errExit(err)
		}
	case "stats":
		flags, err := tools.NewCommonFlags("stats", args, stats.Usage)
		if err != nil {
			errExit(err)
		}
		if err := stats.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if hint := tools.HintForErrorMessage(err.Error()); hint != "" {
		fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
	}
	os.Exit(2)
}
