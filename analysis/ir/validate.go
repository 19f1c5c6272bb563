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

import "fmt"

// An InvariantError reports a malformed body: a missing terminator or a terminator targeting a block that does not
// exist. It indicates a bug in the producer of the IR, not in the analyzed code.
type InvariantError struct {
	Func   FuncID
	Block  BlockID
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("malformed body of %s at %s: %s", e.Func, e.Block, e.Reason)
}

// Validate checks that every block reachable from the entry has a terminator and that all terminator targets are
// valid block indices.
func Validate(b *Body) error {
	if b == nil {
		return &InvariantError{Reason: "nil body"}
	}
	if len(b.Blocks) == 0 {
		return &InvariantError{Func: b.ID, Reason: "body has no entry block"}
	}
	seen := make([]bool, len(b.Blocks))
	queue := []BlockID{0}
	seen[0] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		block := b.Blocks[cur]
		if block == nil {
			return &InvariantError{Func: b.ID, Block: cur, Reason: "missing block"}
		}
		if block.Terminator == nil {
			return &InvariantError{Func: b.ID, Block: cur, Reason: "missing terminator"}
		}
		for _, succ := range block.Terminator.Successors() {
			if succ < 0 || int(succ) >= len(b.Blocks) {
				return &InvariantError{Func: b.ID, Block: cur,
					Reason: fmt.Sprintf("terminator targets %s, body has %d blocks", succ, len(b.Blocks))}
			}
			if !seen[succ] {
				seen[succ] = true
				queue = append(queue, succ)
			}
		}
	}
	return nil
}
