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

	"github.com/rs/zerolog"
	"github.com/walteh/copytx/pkg/status"
	"github.com/walteh/copytx/pkg/tool"
	"github.com/walteh/copytx/pkg/undo"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options contains the collaborators a CopyStep delegates to.
type Options struct {
	// Mirror performs the actual data movement
	Mirror tool.Mirror
	// Chown performs the optional post-copy ownership change
	Chown tool.Chown
	// FS answers existence queries; defaults to the real filesystem
	FS FS
	// Privileged reports whether ownership changes are permitted;
	// defaults to an effective-uid probe
	Privileged func() bool
}

// 🏭 NewCopy creates a copy step with the given collaborators.
func NewCopy(opts Options) (*CopyStep, error) {
	if opts.Mirror == nil {
		return nil, errors.Errorf("mirror is required")
	}
	if opts.Chown == nil {
		return nil, errors.Errorf("chown is required")
	}
	if opts.FS == nil {
		opts.FS = OSFS{}
	}
	if opts.Privileged == nil {
		opts.Privileged = defaultPrivileged
	}
	return &CopyStep{
		fs:         opts.FS,
		mirror:     opts.Mirror,
		chown:      opts.Chown,
		privileged: opts.Privileged,
	}, nil
}

// defaultPrivileged reports whether the process runs as the superuser.
func defaultPrivileged() bool {
	return os.Geteuid() == 0
}

// 🎮 CopyStep copies a source tree to a target path as one reversible unit of
// a larger transaction. Check decides applicability and declares the undo
// action; Fix delegates the transfer to the mirror tool and the optional
// ownership change to the chown tool. Nothing is remembered between phases:
// the orchestrator re-passes everything on each call.
type CopyStep struct {
	fs         FS
	mirror     tool.Mirror
	chown      tool.Chown
	privileged func() bool
}

var _ Step = (*CopyStep)(nil)

// Run executes one phase of the protocol and reports the outcome as a
// structured result. It never panics and never retries; replay policy belongs
// to the orchestrator.
func (s *CopyStep) Run(ctx context.Context, req Request) status.Result {
	switch req.Phase {
	case PhaseCheck:
		return s.check(ctx, req)
	case PhaseFix:
		return s.fix(ctx, req)
	default:
		return status.BadRequestf("invalid action %q", req.Phase)
	}
}

// check inspects filesystem state and decides whether the copy is applicable,
// already done, or impossible. On approval it declares the one undo action
// that reverses the step: trash the target.
func (s *CopyStep) check(ctx context.Context, req Request) status.Result {
	logger := zerolog.Ctx(ctx)

	if field := req.missingField(); field != "" {
		return status.BadRequestf("missing %s", field)
	}

	sourceExists, err := s.fs.Exists(ctx, req.Source)
	if err != nil {
		return status.ExecFailedf("probing source: %s", err)
	}
	if !sourceExists {
		// Nothing this step can do will make the source appear.
		return status.PreconditionFailedf("source %q does not exist", req.Source)
	}

	targetExists, err := s.fs.Exists(ctx, req.Target)
	if err != nil {
		return status.ExecFailedf("probing target: %s", err)
	}
	if targetExists && !req.Recovery && !req.Rollback {
		return status.NoChangef("target %q already exists", req.Target)
	}

	// A pre-existing target under recovery or rollback is a partial prior
	// fix: treat it as needing a sync, and let the resumable mirror finish
	// the transfer.
	verb := "copying"
	if targetExists {
		verb = "syncing"
	}

	logger.Debug().
		Str("source", req.Source).
		Str("target", req.Target).
		Bool("target_exists", targetExists).
		Bool("dry_run", req.DryRun).
		Msg("check approved copy step")

	if req.DryRun {
		logger.Info().
			Str("source", req.Source).
			Str("target", req.Target).
			Msgf("dry run: would start %s", verb)
		return status.OKf("%s %q to %q (dry run)", verb, req.Source, req.Target)
	}

	return status.OKf("%s %q to %q", verb, req.Source, req.Target).
		WithUndo(undo.TrashTarget(req.Target))
}

// fix performs the mutation check approved: mirror the source into the
// target, then apply the optional ownership change. Existence is not
// re-validated; check already decided applicability.
func (s *CopyStep) fix(ctx context.Context, req Request) status.Result {
	logger := zerolog.Ctx(ctx)

	if field := req.missingField(); field != "" {
		return status.BadRequestf("missing %s", field)
	}

	if err := s.mirror.Sync(ctx, req.Source, req.Target, req.syncOptions()); err != nil {
		return status.ExecFailedf("syncing %q to %q: %s", req.Source, req.Target, err)
	}

	if req.Owner != "" || req.Group != "" {
		if !s.privileged() {
			// Ownership is an optional enhancement: without privileges the
			// copy still counts, so log and move on.
			logger.Info().
				Str("target", req.Target).
				Str("owner", req.Owner).
				Str("group", req.Group).
				Msg("skipping ownership change: process is not privileged")
		} else if err := s.chown.Apply(ctx, req.Target, req.Owner, req.Group); err != nil {
			return status.ExecFailedf("changing ownership of %q: %s", req.Target, err)
		}
	}

	return status.OKf("OK")
}
