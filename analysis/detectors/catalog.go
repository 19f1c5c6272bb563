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

package detectors

import (
	"github.com/awslabs/ar-guard/analysis/config"
	"github.com/awslabs/ar-guard/analysis/ir"
	"github.com/awslabs/ar-guard/analysis/taint"
)

// Identifiers shared by the detectors
var (
	callerID = config.CodeIdentifier{Crate: "ink(_env)?", Method: "caller"}

	// access-control primitives of Soroban contracts
	requireAuthID = config.CodeIdentifier{Crate: "soroban_sdk", Method: "require_auth(_for_args)?"}
)

var divideBeforeMultiply = taint.Rules{
	Name:    "divide-before-multiply",
	Message: "Division before multiplication might result in a loss of precision",
	Help:    "Consider reversing the order of the operations to reduce the loss of precision",
	Sources: []config.CodeIdentifier{
		{Method: "(checked|saturating|wrapping)_div"},
	},
	Sinks: []config.CodeIdentifier{
		{Method: "(checked|saturating|wrapping)_mul"},
	},
	SinkArg:     taint.AnyArg,
	SinkOps:     []ir.BinOp{ir.Mul},
	BinaryOp:    taint.TaintResultOf(ir.Div),
	GuardPolicy: taint.GuardNone,
}

var dosUnexpectedRevertWithVector = taint.Rules{
	Name:    "dos-unexpected-revert-with-vector",
	Message: "This vector operation is called without access control",
	Help:    "Check the caller before pushing to a vector that anyone can grow, or use a mapping instead",
	Sources: []config.CodeIdentifier{callerID},
	Sinks: []config.CodeIdentifier{
		{Crate: "alloc", Path: "vec::Vec", Method: "push"},
	},
	Guards:           []config.CodeIdentifier{requireAuthID},
	SinkArg:          1,
	FollowLocalCalls: true,
}

var setCodeHash = taint.Rules{
	Name:    "set-code-hash",
	Message: "This set_code_hash is called without access control",
	Help:    "Check that the caller is authorized to upgrade the contract before calling set_code_hash",
	Sources: []config.CodeIdentifier{callerID},
	Sinks: []config.CodeIdentifier{
		{Crate: "ink(_env)?", Method: "set_code_hash"},
	},
	Guards:           []config.CodeIdentifier{requireAuthID},
	SinkArg:          taint.Unconditional,
	FollowLocalCalls: true,
}

var unprotectedMappingOperation = taint.Rules{
	Name:    "unprotected-mapping-operation",
	Message: "This mapping operation is called without access control on a different key than the caller's address",
	Help:    "Derive the key from the caller, or check the caller before modifying the mapping",
	Sinks: []config.CodeIdentifier{
		{Path: ".*Mapping", Method: "insert|remove|take"},
	},
	Guards:           []config.CodeIdentifier{requireAuthID},
	SinkArg:          1,
	TaintParams:      true,
	FollowLocalCalls: true,
	ConsumeOnSink:    true,
}

var unprotectedSelfDestruct = taint.Rules{
	Name:    "unprotected-self-destruct",
	Message: "This terminate_contract is called without access control",
	Help:    "Check that the caller is authorized to terminate the contract",
	Sources: []config.CodeIdentifier{callerID},
	Sinks: []config.CodeIdentifier{
		{Crate: "ink(_env)?", Method: "terminate_contract"},
	},
	Guards:           []config.CodeIdentifier{requireAuthID},
	SinkArg:          taint.Unconditional,
	FollowLocalCalls: true,
}

var unrestrictedTransferFrom = taint.Rules{
	Name:    "unrestricted-transfer-from",
	Message: "This transfer_from uses a user-defined from address",
	Help:    "Use the caller, or a checked address, as the from argument of transfer_from",
	Sinks: []config.CodeIdentifier{
		{Method: "transfer_from"},
	},
	Guards:           []config.CodeIdentifier{requireAuthID},
	SinkArg:          1,
	TaintParams:      true,
	FollowLocalCalls: true,
}

var reentrancy = taint.Rules{
	Name:    "reentrancy",
	Message: "This cross-contract call allows reentrancy",
	Help:    "Update the contract state before the call, or do not allow reentry",
	Sources: []config.CodeIdentifier{
		{Crate: "ink(_env)?", Method: "set_allow_reentry"},
	},
	Sinks: []config.CodeIdentifier{
		{Path: ".*CallBuilder", Method: "(try_)?invoke"},
	},
	SinkArg:          taint.AnyArg,
	FollowLocalCalls: true,
	GuardPolicy:      taint.GuardNone,
}
