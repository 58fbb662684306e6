package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// ReportsCmd groups archived batch report commands.
func ReportsCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Browse archived batch reports with rejected records",
	}
	cmd.AddCommand(reportsListCmd(open))
	return cmd
}

func reportsListCmd(open Opener) *cobra.Command {
	var (
		company   string
		operation string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a company's archived reports, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID, err := parseCompany(company)
			if err != nil {
				return err
			}
			if companyID == nil {
				return fmt.Errorf("--company is required")
			}

			return withDeps(cmd.Context(), open, func(d *Deps) error {
				if d.Reports == nil {
					return fmt.Errorf("report archive is not configured (MINIO_ENDPOINT)")
				}
				entries, err := d.Reports.List(cmd.Context(), *companyID, operation)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "KEY\tSIZE")
				for _, e := range entries {
					fmt.Fprintf(w, "%s\t%d\n", e.Key, e.Size)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "Company id")
	cmd.Flags().StringVar(&operation, "operation", "", "enroll, update, link_status or delete")

	return cmd
}
