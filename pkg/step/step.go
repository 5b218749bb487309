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

package step

import (
	"context"
	"os"

	"github.com/walteh/copytx/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🎭 Phase selects which half of the protocol runs.
type Phase string

const (
	PhaseCheck Phase = "check" // decide applicability, declare undo
	PhaseFix   Phase = "fix"   // perform the copy and optional chown
)

// 📦 Request carries everything one phase invocation needs. The orchestrator
// constructs one per call; no state survives between check and fix.
type Request struct {
	Source string // required, must pre-exist at check time
	Target string // required, full destination path

	Owner string // optional identity for post-copy ownership change
	Group string // optional identity for post-copy ownership change

	SyncOptions []string // mirror tool options; empty means DefaultSyncOptions

	Phase    Phase
	Recovery bool // re-run after an interruption, tolerate a partial target
	Rollback bool // re-run during rollback, tolerate a partial target
	DryRun   bool // check logs the pending action and declares nothing
}

// DefaultSyncOptions is the option set used when a request carries none:
// archive mode, preserving permissions, times, links, and ownership.
func DefaultSyncOptions() []string {
	return []string{"-a"}
}

// syncOptions returns the request's options, falling back to the default.
func (r Request) syncOptions() []string {
	if len(r.SyncOptions) == 0 {
		return DefaultSyncOptions()
	}
	return r.SyncOptions
}

// missingField names the first required field the request leaves empty.
func (r Request) missingField() string {
	if r.Source == "" {
		return "source"
	}
	if r.Target == "" {
		return "target"
	}
	return ""
}

// Step is a unit of work driven through the two-phase protocol by an
// external transaction manager.
type Step interface {
	Run(ctx context.Context, req Request) status.Result
}

// FS answers the existence queries the check phase needs.
type FS interface {
	// Exists reports whether path names anything at all, regardless of type.
	Exists(ctx context.Context, path string) (bool, error)
}

// 📁 OSFS answers existence queries against the real filesystem.
type OSFS struct{}

var _ FS = OSFS{}

func (OSFS) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Errorf("checking %q: %w", path, err)
}
