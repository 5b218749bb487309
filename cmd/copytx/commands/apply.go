package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walteh/copytx/cmd/copytx/opts"
	"github.com/walteh/copytx/pkg/runner"
	"gitlab.com/tozd/go/errors"
)

// NewApplyCmd creates a new apply command
func NewApplyCmd(o *opts.RootOpts) *cobra.Command {
	var (
		only     []string
		parallel bool
		recovery bool
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the plan as one transaction",
		Long: `Apply checks every step first, then fixes them in plan order. The first
failed fix rolls the transaction back: every target copied so far moves
into the trash area, newest first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			user := runner.NewUserLogger(ctx)

			plan, err := loadPlan(ctx, o)
			if err != nil {
				return err
			}

			tx, err := newTransaction(plan, user)
			if err != nil {
				return err
			}

			user.LogTransaction(fmt.Sprintf("Applying %s (%d steps)", o.ConfigFile, len(plan.Steps)))

			summary, err := tx.Run(ctx, runner.RunOptions{
				DryRun:   dryRun,
				Recovery: recovery,
				Parallel: parallel,
				Only:     only,
			})
			if err != nil {
				if summary != nil && summary.RolledBack {
					user.LogValidation(false, "Transaction rolled back", err)
				}
				return errors.Errorf("applying plan: %w", err)
			}

			if dryRun {
				user.LogTransaction("Dry run complete, nothing applied")
				return nil
			}

			user.LogValidation(true, fmt.Sprintf("Applied %d step(s)", appliedSteps(summary)), nil)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "run only steps matching these patterns")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "run checks concurrently")
	cmd.Flags().BoolVar(&recovery, "recovery", false, "re-sync targets left by an interrupted run")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "stop after the check pass")
	return cmd
}
