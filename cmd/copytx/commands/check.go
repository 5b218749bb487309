package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/copytx/cmd/copytx/opts"
	"github.com/walteh/copytx/pkg/log"
	"github.com/walteh/copytx/pkg/runner"
	"github.com/walteh/copytx/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// NewCheckCmd creates a new check command
func NewCheckCmd(o *opts.RootOpts) *cobra.Command {
	var (
		only     []string
		parallel bool
		recovery bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the plan without changing anything",
		Long: `Check runs the read-only half of the protocol over every step: sources
must exist and targets must be absent (or tolerated, in recovery mode).
Nothing on disk changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			console := newConsole(o)

			plan, err := loadPlan(ctx, o)
			if err != nil {
				return err
			}

			tx, err := newTransaction(plan, nil)
			if err != nil {
				return err
			}

			console.Header("checking plan")
			console.StartPlan(ctx, o.ConfigFile, len(plan.Steps))

			summary, err := tx.Run(ctx, runner.RunOptions{
				DryRun:   true,
				Recovery: recovery,
				Parallel: parallel,
				Only:     only,
			})
			if summary != nil {
				for _, oc := range summary.Outcomes {
					console.LogStepOperation(ctx, log.StepOperation{
						Name:    oc.Name,
						Phase:   oc.Phase,
						Code:    oc.Result.Code,
						Message: oc.Result.Message,
					})
				}
				console.LogNewline()
			}
			if err != nil {
				return errors.Errorf("checking plan: %w", err)
			}

			ready, skipped := 0, 0
			for _, oc := range summary.Outcomes {
				if oc.Result.Code == status.NoChange {
					skipped++
				} else {
					ready++
				}
			}
			console.Successf("plan ok • %d step(s) ready, %d already in place", ready, skipped)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&only, "only", nil, "run only steps matching these patterns")
	cmd.Flags().BoolVar(&parallel, "parallel", false, "run checks concurrently")
	cmd.Flags().BoolVar(&recovery, "recovery", false, "tolerate targets left by an interrupted run")
	return cmd
}
