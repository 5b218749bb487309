// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package status

// 📊 Code classifies the outcome of one step phase. The values follow an
// HTTP-like taxonomy so orchestrators can route on ranges they already know.
type Code int

const (
	OK                 Code = 200 // work performed, or approved by check
	NoChange           Code = 304 // desired end state already present
	BadRequest         Code = 400 // malformed request, caller bug
	PreconditionFailed Code = 412 // environment cannot satisfy the step
	ExecFailed         Code = 500 // delegated tool exited non-zero
)

// String returns a short name for the code.
func (c Code) String() string {
	switch c {
	case OK:
		return "ok"
	case NoChange:
		return "no-op"
	case BadRequest:
		return "bad request"
	case PreconditionFailed:
		return "precondition failed"
	case ExecFailed:
		return "execution failed"
	default:
		return "unknown"
	}
}

// Success reports whether an orchestrator should treat the outcome as
// success. A no-op counts: the desired end state is already in place.
func (c Code) Success() bool {
	return c == OK || c == NoChange
}

// Retryable reports whether replaying the step may succeed. Only execution
// failures qualify; bad input stays bad and a missing source needs a human.
func (c Code) Retryable() bool {
	return c == ExecFailed
}
