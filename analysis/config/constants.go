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

const (
	// DefaultMaxCallDepth is the default number of nested local calls followed by the interprocedural analysis
	DefaultMaxCallDepth = 16
	// DefaultMaxBlockVisits is the default number of distinct abstract states a block is explored with per frame
	DefaultMaxBlockVisits = 8
	// GranularityField is the field-sensitive place granularity
	GranularityField = "field"
	// GranularityLocal matches places by their local slot only
	GranularityLocal = "local"
	// GuardPolicySticky never resets the guard once a tainted value has been branched on
	GuardPolicySticky = "sticky"
	// GuardPolicyFallback does not guard the fallback target of a switch on a tainted value
	GuardPolicyFallback = "fallback"
	// GuardPolicyNone disables guards
	GuardPolicyNone = "none"
)
