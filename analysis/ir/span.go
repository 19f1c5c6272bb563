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

	"gopkg.in/yaml.v3"
)

// Span is a source location range. The zero Span means "unknown location".
type Span struct {
	File    string
	Line    int
	Col     int
	EndLine int
	EndCol  int
}

// IsValid returns true if the span has a file and a line
func (s Span) IsValid() bool {
	return s.File != "" && s.Line > 0
}

// String returns file:line:col, followed by -endline:endcol when the end is known
func (s Span) String() string {
	if !s.IsValid() {
		return "-"
	}
	str := fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Col)
	if s.EndLine > 0 {
		str += fmt.Sprintf("-%d:%d", s.EndLine, s.EndCol)
	}
	return str
}

// ParseSpan parses the output of Span.String. The column and end are optional.
func ParseSpan(s string) (Span, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return Span{}, nil
	}
	start, end, hasEnd := s, "", false
	if i := strings.LastIndex(s, "-"); i >= 0 && isRangeEnd(s[i+1:]) {
		start, end, hasEnd = s[:i], s[i+1:], true
	}
	var span Span
	// the file name may itself contain colons, so split from the right
	parts := strings.Split(start, ":")
	nums := 0
	for i := len(parts) - 1; i > 0 && nums < 2; i-- {
		if _, err := strconv.Atoi(parts[i]); err != nil {
			break
		}
		nums++
	}
	if nums == 0 {
		return Span{}, fmt.Errorf("invalid span %q: missing line number", s)
	}
	span.File = strings.Join(parts[:len(parts)-nums], ":")
	span.Line, _ = strconv.Atoi(parts[len(parts)-nums])
	if nums == 2 {
		span.Col, _ = strconv.Atoi(parts[len(parts)-1])
	}
	if hasEnd {
		l, c, _ := strings.Cut(end, ":")
		var err error
		if span.EndLine, err = strconv.Atoi(l); err != nil {
			return Span{}, fmt.Errorf("invalid span end in %q", s)
		}
		if c != "" {
			if span.EndCol, err = strconv.Atoi(c); err != nil {
				return Span{}, fmt.Errorf("invalid span end in %q", s)
			}
		}
	}
	return span, nil
}

func isRangeEnd(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && c != ':' {
			return false
		}
	}
	return true
}

// MarshalYAML writes the span in its string form
func (s Span) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML reads the string form of a span
func (s *Span) UnmarshalYAML(value *yaml.Node) error {
	var str string
	if err := value.Decode(&str); err != nil {
		return err
	}
	span, err := ParseSpan(str)
	if err != nil {
		return err
	}
	*s = span
	return nil
}
