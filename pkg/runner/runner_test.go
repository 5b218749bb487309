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

package runner_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/copytx/pkg/config"
	"github.com/walteh/copytx/pkg/runner"
	"github.com/walteh/copytx/pkg/status"
	"github.com/walteh/copytx/pkg/step"
	"github.com/walteh/copytx/pkg/tool"
	"github.com/walteh/copytx/pkg/undo"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

// 🧪 treeMirror stands in for rsync: it walks the source and overwrites every
// file under the target, so replaying it over a partial target converges.
type treeMirror struct{}

func (treeMirror) Sync(ctx context.Context, source, target string, options []string) error {
	return filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(target, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0o644)
	})
}

// 🧪 failingMirror copies like treeMirror until it reaches failOn, then leaves
// a half-written target behind and reports an rsync-style failure.
type failingMirror struct {
	failOn string
}

func (m failingMirror) Sync(ctx context.Context, source, target string, options []string) error {
	if target == m.failOn {
		_ = os.MkdirAll(target, 0o755)
		_ = os.WriteFile(filepath.Join(target, "partial"), []byte("par"), 0o644)
		return errors.New("rsync: write failed: exit status 11")
	}
	return treeMirror{}.Sync(ctx, source, target, options)
}

// 🧪 noopChown satisfies tool.Chown for plans that carry no identities.
type noopChown struct{}

func (noopChown) Apply(ctx context.Context, path, owner, group string) error {
	return nil
}

// 🧪 fixture lays one source directory per step under a temp root and builds
// the plan, trash, and invoker a transaction needs.
type fixture struct {
	tmp     string
	plan    *config.Plan
	trash   *undo.Trash
	invoker *undo.Invoker
	targets []string
}

func newFixture(t *testing.T, names ...string) *fixture {
	t.Helper()
	tmp := t.TempDir()

	f := &fixture{tmp: tmp}
	f.plan = &config.Plan{Trash: config.TrashConfig{Dir: filepath.Join(tmp, "trash")}}
	for _, name := range names {
		source := filepath.Join(tmp, "src-"+name)
		target := filepath.Join(tmp, "dst-"+name)
		require.NoError(t, os.MkdirAll(source, 0o755), "creating source for %s", name)
		require.NoError(t,
			os.WriteFile(filepath.Join(source, "payload"), []byte("content of "+name), 0o644),
			"seeding source for %s", name)
		f.plan.Steps = append(f.plan.Steps, config.StepConfig{
			Name: name, Source: source, Target: target,
		})
		f.targets = append(f.targets, target)
	}

	trash, err := undo.NewTrash(undo.TrashOptions{Dir: f.plan.Trash.Dir})
	require.NoError(t, err, "creating trash")
	f.trash = trash

	f.invoker = undo.NewInvoker()
	f.invoker.Register(undo.OpTrash, undo.TrashHandler(trash))
	return f
}

func (f *fixture) transaction(t *testing.T, mirror tool.Mirror) *runner.Transaction {
	t.Helper()

	copyStep, err := step.NewCopy(step.Options{
		Mirror:     mirror,
		Chown:      noopChown{},
		Privileged: func() bool { return false },
	})
	require.NoError(t, err, "NewCopy should succeed")

	tx, err := runner.New(runner.Options{
		Plan:    f.plan,
		Step:    copyStep,
		Invoker: f.invoker,
	})
	require.NoError(t, err, "New should succeed")
	return tx
}

func TestNew_Validation(t *testing.T) {
	plan := &config.Plan{Steps: []config.StepConfig{{Name: "s", Source: "/a", Target: "/b"}}}
	copyStep, err := step.NewCopy(step.Options{Mirror: treeMirror{}, Chown: noopChown{}})
	require.NoError(t, err, "NewCopy should succeed")
	invoker := undo.NewInvoker()

	tests := []struct {
		name        string
		opts        runner.Options
		errContains string
	}{
		{
			name:        "missing_plan",
			opts:        runner.Options{Step: copyStep, Invoker: invoker},
			errContains: "plan is required",
		},
		{
			name:        "missing_step",
			opts:        runner.Options{Plan: plan, Invoker: invoker},
			errContains: "step is required",
		},
		{
			name:        "missing_invoker",
			opts:        runner.Options{Plan: plan, Step: copyStep},
			errContains: "invoker is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.New(tt.opts)
			require.Error(t, err, "New should fail")
			assert.Contains(t, err.Error(), tt.errContains, "error should name the missing option")
		})
	}

	t.Run("defaults_are_filled", func(t *testing.T) {
		tx, err := runner.New(runner.Options{Plan: plan, Step: copyStep, Invoker: invoker})
		require.NoError(t, err, "New should succeed without FS or User")
		assert.NotNil(t, tx, "transaction should be constructed")
	})
}

func TestTransaction_Run_AppliesPlan(t *testing.T) {
	f := newFixture(t, "www", "api")
	tx := f.transaction(t, treeMirror{})

	summary, err := tx.Run(testContext(t), runner.RunOptions{})
	require.NoError(t, err, "run should succeed")
	assert.False(t, summary.RolledBack, "nothing should have been rolled back")

	// Two check outcomes in plan order, then two fix outcomes in plan order.
	require.Len(t, summary.Outcomes, 4, "every step should report both phases")
	for i, want := range []struct{ name, phase string }{
		{"www", "check"}, {"api", "check"}, {"www", "fix"}, {"api", "fix"},
	} {
		assert.Equal(t, want.name, summary.Outcomes[i].Name, "outcome %d step", i)
		assert.Equal(t, want.phase, summary.Outcomes[i].Phase, "outcome %d phase", i)
		assert.Equal(t, status.OK, summary.Outcomes[i].Result.Code, "outcome %d code", i)
	}

	for i, sc := range f.plan.Steps {
		got, err := os.ReadFile(filepath.Join(f.targets[i], "payload"))
		require.NoError(t, err, "target for %s should exist", sc.Name)
		assert.Equal(t, "content of "+sc.Name, string(got), "target content for %s", sc.Name)
	}
}

func TestTransaction_Run_RollsBackOnFailedFix(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, "www", "api")
	tx := f.transaction(t, failingMirror{failOn: f.targets[1]})

	summary, err := tx.Run(ctx, runner.RunOptions{})
	require.Error(t, err, "run should fail")
	assert.Contains(t, err.Error(), `step "api" failed`, "error should name the failed step")
	assert.True(t, summary.RolledBack, "the failure should trigger a rollback")

	for _, target := range f.targets {
		_, statErr := os.Stat(target)
		assert.True(t, os.IsNotExist(statErr), "target %s should have been trashed", target)
	}

	// Undo actions run newest-first: the half-written api target goes into
	// the trash before the fully copied www target.
	entries, err := f.trash.List(ctx)
	require.NoError(t, err, "listing trash")
	require.Len(t, entries, 2, "both targets should be recoverable")
	assert.Equal(t, f.targets[1], entries[0].Original, "failed step's target trashed first")
	assert.Equal(t, f.targets[0], entries[1].Original, "earlier step's target trashed second")
}

func TestTransaction_Run_AbortsOnFailedCheck(t *testing.T) {
	f := newFixture(t, "www", "api")
	require.NoError(t, os.RemoveAll(f.plan.Steps[1].Source), "removing api source")
	tx := f.transaction(t, treeMirror{})

	summary, err := tx.Run(testContext(t), runner.RunOptions{})
	require.Error(t, err, "run should fail")
	assert.Contains(t, err.Error(), `check failed for step "api"`, "error should name the failed check")
	assert.False(t, summary.RolledBack, "no fix ran, so nothing rolls back")

	require.Len(t, summary.Outcomes, 2, "every check should still be reported")
	assert.Equal(t, status.OK, summary.Outcomes[0].Result.Code, "www check should have passed")
	assert.Equal(t, status.PreconditionFailed, summary.Outcomes[1].Result.Code,
		"api check should have failed on the missing source")

	_, statErr := os.Stat(f.targets[0])
	assert.True(t, os.IsNotExist(statErr), "a failed check must abort before any mutation")
}

func TestTransaction_Run_DryRun(t *testing.T) {
	f := newFixture(t, "www")
	tx := f.transaction(t, treeMirror{})

	summary, err := tx.Run(testContext(t), runner.RunOptions{DryRun: true})
	require.NoError(t, err, "dry run should succeed")

	require.Len(t, summary.Outcomes, 1, "dry run stops after the check pass")
	assert.Equal(t, "check", summary.Outcomes[0].Phase, "only checks should have run")
	assert.Contains(t, summary.Outcomes[0].Result.Message, "dry run", "message should say so")
	assert.Empty(t, summary.Outcomes[0].Result.Undo, "dry-run checks declare nothing")

	_, statErr := os.Stat(f.targets[0])
	assert.True(t, os.IsNotExist(statErr), "dry run must not create the target")
}

func TestTransaction_Run_SkipsExistingTargets(t *testing.T) {
	f := newFixture(t, "www", "api")
	require.NoError(t, os.MkdirAll(f.targets[0], 0o755), "pre-creating www target")
	require.NoError(t,
		os.WriteFile(filepath.Join(f.targets[0], "payload"), []byte("stale"), 0o644),
		"seeding www target")
	tx := f.transaction(t, treeMirror{})

	summary, err := tx.Run(testContext(t), runner.RunOptions{})
	require.NoError(t, err, "run should succeed")

	// www: 304 check only. api: check plus fix.
	require.Len(t, summary.Outcomes, 3, "skipped steps get no fix outcome")
	assert.Equal(t, status.NoChange, summary.Outcomes[0].Result.Code, "www should be a no-op")
	assert.True(t, summary.Outcomes[0].Skipped, "www should be marked skipped")
	assert.Equal(t, "api", summary.Outcomes[2].Name, "only api should have been fixed")
	assert.Equal(t, "fix", summary.Outcomes[2].Phase, "api outcome should be the fix")

	got, err := os.ReadFile(filepath.Join(f.targets[0], "payload"))
	require.NoError(t, err, "www target should still exist")
	assert.Equal(t, "stale", string(got), "a skipped step must not touch its target")
}

func TestTransaction_Run_RecoveryResyncs(t *testing.T) {
	f := newFixture(t, "www")
	require.NoError(t, os.MkdirAll(f.targets[0], 0o755), "pre-creating target")
	require.NoError(t,
		os.WriteFile(filepath.Join(f.targets[0], "payload"), []byte("par"), 0o644),
		"seeding partial target")
	tx := f.transaction(t, treeMirror{})

	summary, err := tx.Run(testContext(t), runner.RunOptions{Recovery: true})
	require.NoError(t, err, "recovery run should succeed")
	assert.Contains(t, summary.Outcomes[0].Result.Message, "syncing",
		"recovery over an existing target is a sync")

	got, err := os.ReadFile(filepath.Join(f.targets[0], "payload"))
	require.NoError(t, err, "target should exist after recovery")
	assert.Equal(t, "content of www", string(got), "recovery should converge on source content")
}

func TestTransaction_Run_OnlyFilter(t *testing.T) {
	f := newFixture(t, "publish-www", "publish-api", "cleanup")
	tx := f.transaction(t, treeMirror{})

	summary, err := tx.Run(testContext(t), runner.RunOptions{Only: []string{"publish-*"}})
	require.NoError(t, err, "filtered run should succeed")
	require.Len(t, summary.Outcomes, 4, "two steps, two phases each")

	_, statErr := os.Stat(f.targets[2])
	assert.True(t, os.IsNotExist(statErr), "a filtered-out step must not run")

	t.Run("no_match", func(t *testing.T) {
		_, err := tx.Run(testContext(t), runner.RunOptions{Only: []string{"deploy-*"}})
		require.Error(t, err, "an empty selection should be refused")
		assert.Contains(t, err.Error(), "no steps selected", "error should say nothing matched")
	})

	t.Run("invalid_pattern", func(t *testing.T) {
		_, err := tx.Run(testContext(t), runner.RunOptions{Only: []string{"publish-["}})
		require.Error(t, err, "a malformed pattern should be refused")
		assert.Contains(t, err.Error(), "invalid step filter", "error should name the pattern")
	})
}

func TestTransaction_Run_ParallelChecks(t *testing.T) {
	f := newFixture(t, "a", "b", "c")
	tx := f.transaction(t, treeMirror{})

	summary, err := tx.Run(testContext(t), runner.RunOptions{Parallel: true})
	require.NoError(t, err, "parallel run should succeed")

	require.Len(t, summary.Outcomes, 6, "three steps, two phases each")
	for i, name := range []string{"a", "b", "c"} {
		assert.Equal(t, name, summary.Outcomes[i].Name, "check outcomes keep plan order")
	}

	for _, target := range f.targets {
		_, err := os.Stat(filepath.Join(target, "payload"))
		assert.NoError(t, err, "target %s should have been copied", target)
	}
}

func TestTransaction_Rollback(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, "www", "api")
	tx := f.transaction(t, treeMirror{})

	_, err := tx.Run(ctx, runner.RunOptions{})
	require.NoError(t, err, "apply should succeed")

	summary, err := tx.Rollback(ctx)
	require.NoError(t, err, "rollback should succeed")
	assert.True(t, summary.RolledBack, "targets should have been trashed")

	// Reverse plan order: api first, then www.
	require.Len(t, summary.Outcomes, 2, "every step should report its rollback")
	assert.Equal(t, "api", summary.Outcomes[0].Name, "last step rolls back first")
	assert.Equal(t, "rollback", summary.Outcomes[0].Phase, "phase should be rollback")
	assert.Equal(t, "www", summary.Outcomes[1].Name, "first step rolls back last")

	for _, target := range f.targets {
		_, statErr := os.Stat(target)
		assert.True(t, os.IsNotExist(statErr), "target %s should be gone", target)
	}

	entries, err := f.trash.List(ctx)
	require.NoError(t, err, "listing trash")
	assert.Len(t, entries, 2, "both targets should be recoverable")

	t.Run("rollback_is_idempotent", func(t *testing.T) {
		again, err := tx.Rollback(ctx)
		require.NoError(t, err, "second rollback should succeed")
		assert.False(t, again.RolledBack, "nothing was left to trash")
		for _, oc := range again.Outcomes {
			assert.Equal(t, status.NoChange, oc.Result.Code, "step %s should be a no-op", oc.Name)
			assert.True(t, oc.Skipped, "step %s should be marked skipped", oc.Name)
		}
	})
}

func TestTransaction_Rollback_RefusesProtected(t *testing.T) {
	ctx := testContext(t)
	f := newFixture(t, "www")

	// Rebuild the trash with a protect pattern covering the target.
	protected, err := undo.NewTrash(undo.TrashOptions{
		Dir:     filepath.Join(f.tmp, "trash-protected"),
		Protect: []string{f.targets[0]},
	})
	require.NoError(t, err, "creating protected trash")
	f.invoker = undo.NewInvoker()
	f.invoker.Register(undo.OpTrash, undo.TrashHandler(protected))
	tx := f.transaction(t, treeMirror{})

	_, err = tx.Run(ctx, runner.RunOptions{})
	require.NoError(t, err, "apply should succeed")

	summary, err := tx.Rollback(ctx)
	require.Error(t, err, "rollback should refuse the protected target")
	assert.Contains(t, err.Error(), "protected", "error should name the protection")
	require.Len(t, summary.Outcomes, 1, "the refusal should be reported")
	assert.Equal(t, status.ExecFailed, summary.Outcomes[0].Result.Code, "refusal is an execution failure")

	_, statErr := os.Stat(f.targets[0])
	assert.NoError(t, statErr, "the protected target must remain in place")
}

func TestUserLogger_NilReceiver(t *testing.T) {
	var l *runner.UserLogger
	assert.NotPanics(t, func() {
		l.LogStepReport(runner.StepReport{Name: "x", Phase: "check", Result: status.OKf("ok")})
		l.LogRollback(2)
		l.LogValidation(true, "config parsed", nil)
		l.LogTransaction("running plan")
	}, "a nil user logger should be silent, not fatal")
}
