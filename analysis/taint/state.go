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

package taint

import (
	"strings"

	"github.com/awslabs/ar-guard/analysis/config"
	"github.com/awslabs/ar-guard/analysis/ir"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Granularity determines how places are compared when querying a Set
type Granularity int

const (
	// FieldSensitive sets hold places with their projections. A place is tainted when the set holds a prefix of it
	// or an extension of it.
	FieldSensitive Granularity = iota
	// LocalOnly sets ignore projections: a place is tainted when any place with the same local is.
	LocalOnly
)

// ParseGranularity parses the place-granularity option
func ParseGranularity(s string) Granularity {
	if s == config.GranularityLocal {
		return LocalOnly
	}
	return FieldSensitive
}

// A Set is the set of tainted places of one traversal branch
type Set struct {
	granularity Granularity
	places      map[string]ir.Place
}

// NewSet returns an empty set
func NewSet(g Granularity) *Set {
	return &Set{granularity: g, places: map[string]ir.Place{}}
}

// Add adds p to the set
func (s *Set) Add(p ir.Place) {
	if s.granularity == LocalOnly {
		p = p.Base()
	}
	s.places[p.String()] = p
}

// Remove removes p and all the places p is a prefix of. Taint held by a prefix of p is kept.
func (s *Set) Remove(p ir.Place) {
	for key, q := range s.places {
		if (s.granularity == LocalOnly && q.Local == p.Local) || p.IsPrefixOf(q) {
			delete(s.places, key)
		}
	}
}

// Has returns true if p is tainted
func (s *Set) Has(p ir.Place) bool {
	if _, ok := s.places[p.String()]; ok {
		return true
	}
	for _, q := range s.places {
		if q.Local != p.Local {
			continue
		}
		if s.granularity == LocalOnly || q.IsPrefixOf(p) || p.IsPrefixOf(q) {
			return true
		}
	}
	return false
}

// HasOperand returns true if the operand reads a tainted place. Constants are never tainted.
func (s *Set) HasOperand(o ir.Operand) bool {
	p, ok := ir.OperandPlace(o)
	return ok && s.Has(p)
}

// Clone returns a copy of the set that can be modified independently
func (s *Set) Clone() *Set {
	return &Set{granularity: s.granularity, places: maps.Clone(s.places)}
}

// Len returns the number of places in the set
func (s *Set) Len() int {
	return len(s.places)
}

// Places returns the places in the set, sorted by their textual form
func (s *Set) Places() []ir.Place {
	keys := s.keys()
	res := make([]ir.Place, len(keys))
	for i, k := range keys {
		res[i] = s.places[k]
	}
	return res
}

// Fingerprint returns a string identifying the content of the set
func (s *Set) Fingerprint() string {
	return strings.Join(s.keys(), ",")
}

func (s *Set) String() string {
	return "{" + s.Fingerprint() + "}"
}

func (s *Set) keys() []string {
	keys := maps.Keys(s.places)
	slices.Sort(keys)
	return keys
}
