package commands

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/copytx/cmd/copytx/opts"
	"gitlab.com/tozd/go/errors"
)

// NewTrashCmd creates the trash command group
func NewTrashCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Inspect and restore trashed targets",
		Long: `Rolled-back targets are not deleted, they move into the plan's trash
area. These subcommands list what is held there and move entries back
to their original paths.`,
	}

	cmd.AddCommand(
		newTrashListCmd(o),
		newTrashRestoreCmd(o),
	)
	return cmd
}

// newTrashListCmd creates the trash list command
func newTrashListCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List trash entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			plan, err := loadPlan(ctx, o)
			if err != nil {
				return err
			}

			trash, err := openTrash(plan)
			if err != nil {
				return err
			}

			entries, err := trash.List(ctx)
			if err != nil {
				return errors.Errorf("listing trash: %w", err)
			}

			if len(entries) == 0 {
				pterm.Info.Println("Trash is empty")
				return nil
			}

			rows := pterm.TableData{{"NAME", "ORIGINAL", "TRASHED AT"}}
			for _, e := range entries {
				rows = append(rows, []string{
					e.Name,
					e.Original,
					e.TrashedAt.Format(time.RFC3339),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}
}

// newTrashRestoreCmd creates the trash restore command
func newTrashRestoreCmd(o *opts.RootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <entry>",
		Short: "Restore a trash entry to its original path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			plan, err := loadPlan(ctx, o)
			if err != nil {
				return err
			}

			trash, err := openTrash(plan)
			if err != nil {
				return err
			}

			if err := trash.Restore(ctx, args[0]); err != nil {
				return errors.Errorf("restoring %q: %w", args[0], err)
			}

			pterm.Success.Printf("Restored %s\n", args[0])
			return nil
		},
	}
}
