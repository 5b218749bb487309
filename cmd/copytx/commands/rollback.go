package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walteh/copytx/cmd/copytx/opts"
	"github.com/walteh/copytx/pkg/runner"
	"gitlab.com/tozd/go/errors"
)

// NewRollbackCmd creates a new rollback command
func NewRollbackCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Reverse an applied plan",
		Long: `Rollback walks the plan in reverse order and moves every target that
still exists into the trash area. Entries can be inspected and restored
with the trash subcommands.`,
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

			user.LogTransaction(fmt.Sprintf("Rolling back %s (%d steps)", o.ConfigFile, len(plan.Steps)))

			summary, err := tx.Rollback(ctx)
			if err != nil {
				return errors.Errorf("rolling back plan: %w", err)
			}

			if !summary.RolledBack {
				user.LogTransaction("Nothing to roll back")
				return nil
			}

			user.LogValidation(true, "Rollback complete", nil)
			return nil
		},
	}

	return cmd
}
