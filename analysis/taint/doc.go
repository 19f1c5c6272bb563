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
Package taint implements the taint-guarded-sink analysis shared by the detectors.

A detector is described by a [Rules] value: the call targets acting as sources, sinks, guards and pass-throughs,
the argument of the sink that must carry taint, and how binary operations propagate taint. [NewClassifier] compiles
the rules once; the classifier is immutable and can be shared by all the analyses of a detector.

The main entry point is [Analyze], which walks the control-flow graph of one function body depth-first from its entry
block. The walk propagates taint through assignments, forks the taint state at every branch, sets the guard flag on
branches that follow a test of a tainted value (or a call to a guard), follows calls to local pass-through functions,
and reports a [Finding] for every sink reached with tainted data while the guard flag is unset.

Each call to [Analyze] owns all of its state. Termination is guaranteed by bounding the number of times a block is
entered in each function frame and by never re-entering a function that is already on the call chain.
*/
package taint
