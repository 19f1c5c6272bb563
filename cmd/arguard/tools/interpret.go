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

package tools

import "regexp"

// Captures errors happening before any analysis starts (program could not load)
var regexCouldNotLoad = regexp.MustCompile("could not load program")

// Captures the kind of error that happens when a flag is put after the input files
var flagAfterFiles = regexp.MustCompile("could not load program: .*open -\\w+")

// Captures the errors of malformed IR dumps
var malformedBody = regexp.MustCompile("malformed body of")

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	if regexCouldNotLoad.MatchString(errMsg) {
		if flagAfterFiles.MatchString(errMsg) {
			return "all command line flags should be before the paths to the IR files to analyze"
		}
		return "inputs must be yaml program dumps (.yaml, .yml) or txtar archives of program dumps (.txtar)"
	}
	if malformedBody.MatchString(errMsg) {
		return "the program dump contains an invalid control-flow graph; check the tool that produced it"
	}
	return ""
}
