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

package runner

import (
	"context"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/copytx/pkg/config"
	"github.com/walteh/copytx/pkg/status"
	"github.com/walteh/copytx/pkg/step"
	"github.com/walteh/copytx/pkg/undo"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// 🔧 Options contains configuration for the transaction
type Options struct {
	// Plan is the ordered list of steps plus the trash location
	Plan *config.Plan
	// Step executes the two-phase protocol for each configured step
	Step step.Step
	// Invoker dispatches declared undo actions during rollback
	Invoker *undo.Invoker
	// FS answers existence queries for manual rollback; defaults to the
	// real filesystem
	FS step.FS
	// User receives human-facing progress; nil means silent
	User *UserLogger
}

// 🏭 New creates a transaction from the given options
func New(opts Options) (*Transaction, error) {
	if opts.Plan == nil {
		return nil, errors.Errorf("plan is required")
	}
	if opts.Step == nil {
		return nil, errors.Errorf("step is required")
	}
	if opts.Invoker == nil {
		return nil, errors.Errorf("invoker is required")
	}
	if opts.FS == nil {
		opts.FS = step.OSFS{}
	}
	return &Transaction{
		plan:    opts.Plan,
		step:    opts.Step,
		invoker: opts.Invoker,
		fs:      opts.FS,
		user:    opts.User,
	}, nil
}

// 🎮 Transaction drives a plan through the two-phase protocol: check
// everything, then fix in order, rolling back through declared undo actions
// when a fix fails. It keeps no journal; every run re-derives state from the
// filesystem, which is exactly what the protocol's replay flags are for.
type Transaction struct {
	plan    *config.Plan
	step    step.Step
	invoker *undo.Invoker
	fs      step.FS
	user    *UserLogger
}

// 🔧 RunOptions controls one Run invocation
type RunOptions struct {
	// DryRun stops after the check pass and mutates nothing
	DryRun bool
	// Recovery marks every request as a replay after an interruption
	Recovery bool
	// Parallel runs the check pass concurrently (checks only read)
	Parallel bool
	// Only filters steps by name with doublestar patterns
	Only []string
}

// 📄 StepOutcome records one phase result for one step
type StepOutcome struct {
	Name    string        // step name from the plan
	Phase   string        // check / fix / rollback
	Result  status.Result // what the phase reported
	Skipped bool          // check found nothing to do, fix never ran
}

// 📦 Summary reports everything a Run or Rollback did
type Summary struct {
	Outcomes   []StepOutcome
	RolledBack bool // declared undo actions were invoked
}

// Run executes the plan: a check pass over every selected step, then a
// sequential fix pass. The first fix failure rolls back every undo action
// declared so far, in reverse declaration order. The returned summary is
// valid even when the error is non-nil.
func (t *Transaction) Run(ctx context.Context, opts RunOptions) (*Summary, error) {
	logger := zerolog.Ctx(ctx)

	selected, err := t.selectSteps(opts.Only)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, errors.Errorf("no steps selected by %v", opts.Only)
	}

	logger.Debug().
		Int("steps", len(selected)).
		Bool("dry_run", opts.DryRun).
		Bool("recovery", opts.Recovery).
		Bool("parallel", opts.Parallel).
		Msg("starting transaction")

	summary := &Summary{}

	// Check pass: decide the whole transaction before mutating anything.
	checks := make([]status.Result, len(selected))
	if opts.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, sc := range selected {
			i, sc := i, sc
			g.Go(func() error {
				checks[i] = t.step.Run(gctx, t.request(sc, step.PhaseCheck, opts))
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return nil, errors.Errorf("check pass interrupted: %w", err)
		}
	} else {
		for i, sc := range selected {
			checks[i] = t.step.Run(ctx, t.request(sc, step.PhaseCheck, opts))
		}
	}

	var failed *StepOutcome
	for i, sc := range selected {
		outcome := StepOutcome{
			Name:    sc.Name,
			Phase:   string(step.PhaseCheck),
			Result:  checks[i],
			Skipped: checks[i].Code == status.NoChange,
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
		t.user.LogStepReport(StepReport{Name: sc.Name, Phase: outcome.Phase, Result: checks[i]})
		if !checks[i].Code.Success() && failed == nil {
			failed = &summary.Outcomes[i]
		}
	}
	if failed != nil {
		return summary, errors.Errorf("check failed for step %q: %s", failed.Name, failed.Result)
	}

	if opts.DryRun {
		logger.Info().Int("steps", len(selected)).Msg("dry run complete, nothing applied")
		return summary, nil
	}

	// Fix pass: strictly sequential, plan order. Each step's declared undo
	// actions join the rollback queue before its fix runs, so a fix that
	// dies halfway still gets its partial target reversed.
	var queued []undo.Action
	for i, sc := range selected {
		if checks[i].Code == status.NoChange {
			continue
		}
		queued = append(queued, checks[i].Undo...)

		res := t.step.Run(ctx, t.request(sc, step.PhaseFix, opts))
		summary.Outcomes = append(summary.Outcomes, StepOutcome{
			Name:   sc.Name,
			Phase:  string(step.PhaseFix),
			Result: res,
		})
		t.user.LogStepReport(StepReport{Name: sc.Name, Phase: string(step.PhaseFix), Result: res})

		if !res.Code.Success() {
			t.user.LogRollback(len(queued))
			if rerr := t.invoker.InvokeReverse(ctx, queued); rerr != nil {
				return summary, errors.Errorf("rolling back after step %q: %w", sc.Name, rerr)
			}
			summary.RolledBack = true
			return summary, errors.Errorf("step %q failed: %s", sc.Name, res)
		}
	}

	logger.Info().Int("steps", len(selected)).Msg("transaction applied")
	return summary, nil
}

// Rollback reverses a previously applied plan: every step whose target still
// exists has it trashed, in reverse plan order.
func (t *Transaction) Rollback(ctx context.Context) (*Summary, error) {
	logger := zerolog.Ctx(ctx)
	summary := &Summary{}

	for i := len(t.plan.Steps) - 1; i >= 0; i-- {
		sc := t.plan.Steps[i]

		exists, err := t.fs.Exists(ctx, sc.Target)
		if err != nil {
			return summary, errors.Errorf("probing %q: %w", sc.Target, err)
		}

		var res status.Result
		if !exists {
			res = status.NoChangef("target %q already absent", sc.Target)
		} else if err := t.invoker.Invoke(ctx, undo.TrashTarget(sc.Target)); err != nil {
			res = status.ExecFailedf("trashing %q: %s", sc.Target, err)
			summary.Outcomes = append(summary.Outcomes, StepOutcome{
				Name: sc.Name, Phase: "rollback", Result: res,
			})
			t.user.LogStepReport(StepReport{Name: sc.Name, Phase: "rollback", Result: res})
			return summary, errors.Errorf("rolling back step %q: %w", sc.Name, err)
		} else {
			res = status.OKf("trashed %q", sc.Target)
			summary.RolledBack = true
		}

		summary.Outcomes = append(summary.Outcomes, StepOutcome{
			Name:    sc.Name,
			Phase:   "rollback",
			Result:  res,
			Skipped: !exists,
		})
		t.user.LogStepReport(StepReport{Name: sc.Name, Phase: "rollback", Result: res})
	}

	logger.Info().Int("steps", len(t.plan.Steps)).Msg("rollback complete")
	return summary, nil
}

// selectSteps filters the plan's steps by the Only patterns, keeping plan
// order. No patterns means every step.
func (t *Transaction) selectSteps(only []string) ([]config.StepConfig, error) {
	if len(only) == 0 {
		return t.plan.Steps, nil
	}

	var out []config.StepConfig
	for _, sc := range t.plan.Steps {
		for _, pattern := range only {
			matched, err := doublestar.Match(pattern, sc.Name)
			if err != nil {
				return nil, errors.Errorf("invalid step filter %q: %w", pattern, err)
			}
			if matched {
				out = append(out, sc)
				break
			}
		}
	}
	return out, nil
}

// request materializes one phase request for a configured step.
func (t *Transaction) request(sc config.StepConfig, phase step.Phase, opts RunOptions) step.Request {
	req := sc.Request()
	req.Phase = phase
	req.Recovery = opts.Recovery
	req.DryRun = opts.DryRun
	return req
}
