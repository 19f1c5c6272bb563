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

/*
Package ir defines the control-flow graph representation of contract functions consumed by the analyses.

A function [Body] is a slice of [BasicBlock], block 0 being the entry. Each block is a sequence of [Statement]
(assignments of an [Rvalue] to a [Place]) ended by exactly one [Terminator]. The representation is produced by a
compiler front end, already lowered past loops and pattern matching; the analyses only read it.

Bodies can be loaded from yaml dumps with [Decode] and [LoadFiles], or from txtar archives bundling several dumps
with [LoadArchive]. [Validate] checks the structural invariants a body must satisfy before being analyzed.
*/
package ir
