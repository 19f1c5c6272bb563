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

package config

import (
	"fmt"
	"regexp"
	"strings"
)

// A CodeIdentifier identifies a call target that is a source, sink, guard, etc..
// A call target "crate::path::Type::method" is identified from its crate, its path (the segments between the crate
// and the method) and its method, or any combination of those. Empty fields match anything.
type CodeIdentifier struct {
	Crate  string `yaml:"crate,omitempty"`
	Path   string `yaml:"path,omitempty"`
	Method string `yaml:"method,omitempty"`
	// This will not be part of the yaml config
	computedRegexs *codeIdentifierRegex
}

type codeIdentifierRegex struct {
	crateRegex  *regexp.Regexp
	pathRegex   *regexp.Regexp
	methodRegex *regexp.Regexp
}

// CompileRegexes compiles the strings in the code identifier into anchored regexes. It compiles all identifiers
// into regexes or none, in which case the fields are compared as strings.
func CompileRegexes(cid CodeIdentifier) CodeIdentifier {
	crateRegex, err := regexp.Compile(anchor(cid.Crate))
	if err != nil {
		return cid
	}
	pathRegex, err := regexp.Compile(anchor(cid.Path))
	if err != nil {
		return cid
	}
	methodRegex, err := regexp.Compile(anchor(cid.Method))
	if err != nil {
		return cid
	}
	cid.computedRegexs = &codeIdentifierRegex{crateRegex, pathRegex, methodRegex}
	return cid
}

func anchor(s string) string {
	return "^(?:" + s + ")$"
}

// MatchComponents returns true if each of the identifier's non-empty fields matches the corresponding component of
// a call target
func (cid CodeIdentifier) MatchComponents(crate, path, method string) bool {
	if cid.computedRegexs != nil {
		return (cid.Crate == "" || cid.computedRegexs.crateRegex.MatchString(crate)) &&
			(cid.Path == "" || cid.computedRegexs.pathRegex.MatchString(path)) &&
			(cid.Method == "" || cid.computedRegexs.methodRegex.MatchString(method))
	}
	return (cid.Crate == "" || cid.Crate == crate) &&
		(cid.Path == "" || cid.Path == path) &&
		(cid.Method == "" || cid.Method == method)
}

// IsEmpty returns true when the identifier has no field set, i.e. matches every target
func (cid CodeIdentifier) IsEmpty() bool {
	return cid.Crate == "" && cid.Path == "" && cid.Method == ""
}

func (cid CodeIdentifier) String() string {
	var parts []string
	for _, p := range []struct{ name, val string }{{"crate", cid.Crate}, {"path", cid.Path}, {"method", cid.Method}} {
		if p.val != "" {
			parts = append(parts, fmt.Sprintf("%s=%q", p.name, p.val))
		}
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// ExistsCid is true if there is some x in a such that f(x) is true.
func ExistsCid(a []CodeIdentifier, f func(identifier CodeIdentifier) bool) bool {
	for _, x := range a {
		if f(x) {
			return true
		}
	}
	return false
}
