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
Package detectors contains the catalog of detectors and the runner that applies them to a program.

Each detector is a [taint.Rules] literal: which calls produce attacker-influenced data, which calls or operations are
dangerous, and which checks protect them. The runner analyzes every function of a program with every enabled
detector, in parallel, and collects the findings.
*/
package detectors
