package commands

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/copytx/cmd/copytx/opts"
	"github.com/walteh/copytx/pkg/config"
	"github.com/walteh/copytx/pkg/log"
	"github.com/walteh/copytx/pkg/runner"
	"github.com/walteh/copytx/pkg/step"
	"github.com/walteh/copytx/pkg/tool"
	"github.com/walteh/copytx/pkg/undo"
	"gitlab.com/tozd/go/errors"
)

// newConsole builds the console logger for plan reports. The zerolog mirror
// inside it stays quiet unless --debug is set.
func newConsole(o *opts.RootOpts) *log.Logger {
	level := zerolog.WarnLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}
	return log.New(os.Stdout, level)
}

// loadPlan reads and validates the configured plan file.
func loadPlan(ctx context.Context, o *opts.RootOpts) (*config.Plan, error) {
	plan, err := config.Load(ctx, o.ConfigFile)
	if err != nil {
		return nil, errors.Errorf("loading plan %q: %w", o.ConfigFile, err)
	}
	return plan, nil
}

// openTrash opens the plan's trash area.
func openTrash(plan *config.Plan) (*undo.Trash, error) {
	trash, err := undo.NewTrash(undo.TrashOptions{
		Dir:     plan.Trash.Dir,
		Protect: plan.Trash.Protect,
	})
	if err != nil {
		return nil, errors.Errorf("opening trash: %w", err)
	}
	return trash, nil
}

// newTransaction wires the real collaborators for the plan: the rsync
// mirror, the system chown, and the trash-backed undo invoker.
func newTransaction(plan *config.Plan, user *runner.UserLogger) (*runner.Transaction, error) {
	mirror, err := tool.NewMirror("rsync")
	if err != nil {
		return nil, errors.Errorf("creating mirror: %w", err)
	}

	chown, err := tool.NewSystemChown()
	if err != nil {
		return nil, errors.Errorf("creating chown: %w", err)
	}

	copyStep, err := step.NewCopy(step.Options{
		Mirror: mirror,
		Chown:  chown,
	})
	if err != nil {
		return nil, errors.Errorf("creating copy step: %w", err)
	}

	trash, err := openTrash(plan)
	if err != nil {
		return nil, err
	}

	invoker := undo.NewInvoker()
	invoker.Register(undo.OpTrash, undo.TrashHandler(trash))

	tx, err := runner.New(runner.Options{
		Plan:    plan,
		Step:    copyStep,
		Invoker: invoker,
		User:    user,
	})
	if err != nil {
		return nil, errors.Errorf("creating transaction: %w", err)
	}
	return tx, nil
}

// appliedSteps counts fix outcomes in a run summary.
func appliedSteps(summary *runner.Summary) int {
	n := 0
	for _, oc := range summary.Outcomes {
		if oc.Phase == string(step.PhaseFix) {
			n++
		}
	}
	return n
}
