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

import (
	"fmt"

	"github.com/walteh/copytx/pkg/undo"
)

// 📦 Result is the record a step returns for one phase invocation.
type Result struct {
	Code    Code          // outcome classification
	Message string        // human-readable description
	Undo    []undo.Action // reversal actions declared by a successful check
}

// WithUndo returns a copy of the result carrying the declared undo actions.
func (r Result) WithUndo(actions ...undo.Action) Result {
	r.Undo = actions
	return r
}

// String renders like "200 ok: copying /a to /b".
func (r Result) String() string {
	return fmt.Sprintf("%d %s: %s", int(r.Code), r.Code, r.Message)
}

// OKf builds a 200 result.
func OKf(format string, args ...interface{}) Result {
	return Result{Code: OK, Message: fmt.Sprintf(format, args...)}
}

// NoChangef builds a 304 result.
func NoChangef(format string, args ...interface{}) Result {
	return Result{Code: NoChange, Message: fmt.Sprintf(format, args...)}
}

// BadRequestf builds a 400 result.
func BadRequestf(format string, args ...interface{}) Result {
	return Result{Code: BadRequest, Message: fmt.Sprintf(format, args...)}
}

// PreconditionFailedf builds a 412 result.
func PreconditionFailedf(format string, args ...interface{}) Result {
	return Result{Code: PreconditionFailed, Message: fmt.Sprintf(format, args...)}
}

// ExecFailedf builds a 500 result. The message should carry the failing
// tool's own diagnostic output.
func ExecFailedf(format string, args ...interface{}) Result {
	return Result{Code: ExecFailed, Message: fmt.Sprintf(format, args...)}
}
