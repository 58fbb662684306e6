package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// TasksCmd groups task service commands.
func TasksCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Drive the outreach task service",
	}
	cmd.AddCommand(tasksRecalculateCmd(open))
	return cmd
}

func tasksRecalculateCmd(open Opener) *cobra.Command {
	var users []string

	cmd := &cobra.Command{
		Use:   "recalculate",
		Short: "Schedule a daily task recalculation for the given users",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(users) == 0 {
				return fmt.Errorf("at least one --user is required")
			}
			ids := make([]uuid.UUID, 0, len(users))
			for _, raw := range users {
				id, err := uuid.Parse(raw)
				if err != nil {
					return fmt.Errorf("invalid --user %q: %w", raw, err)
				}
				ids = append(ids, id)
			}

			return withDeps(cmd.Context(), open, func(d *Deps) error {
				if err := d.Jobs.EnqueueRecalculation(cmd.Context(), ids); err != nil {
					return fmt.Errorf("schedule recalculation: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "recalculation scheduled for %d user(s)\n", len(ids))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&users, "user", nil, "User id (repeatable)")

	return cmd
}
