package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd assembles cadencectl.
func NewRootCmd(open Opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cadencectl",
		Short: "Operate the CRM lead-cadence sync engine",
		Long: `cadencectl inspects and repairs the state the CRM sync endpoints maintain:
lead-cadence order queues, daily task recalculation, field maps and archived
batch reports.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(OrdersCmd(open))
	rootCmd.AddCommand(TasksCmd(open))
	rootCmd.AddCommand(ReportsCmd(open))
	rootCmd.AddCommand(FieldMapCmd(open))
	rootCmd.AddCommand(MigrateCmd(open))

	return rootCmd
}

// MigrateCmd applies pending schema migrations.
func MigrateCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), open, func(d *Deps) error {
				if err := d.Migrate(cmd.Context()); err != nil {
					return err
				}
				cmd.Println("migrations applied")
				return nil
			})
		},
	}
}
