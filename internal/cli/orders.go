package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// OrdersCmd groups lead-cadence order commands.
func OrdersCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Inspect lead-cadence order queues",
	}
	cmd.AddCommand(ordersAuditCmd(open))
	return cmd
}

func ordersAuditCmd(open Opener) *cobra.Command {
	var (
		company string
		warnAt  int
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List queues close to the order ceiling",
		Long: `Reports every (cadence, user) queue whose highest order is at or above
--warn-at (default: 90% of the ceiling).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID, err := parseCompany(company)
			if err != nil {
				return err
			}

			return withDeps(cmd.Context(), open, func(d *Deps) error {
				threshold := warnAt
				if threshold <= 0 {
					threshold = d.OrderLimit - d.OrderLimit/10
				}

				rows, err := d.Audit.OrderAudit(cmd.Context(), companyID, threshold)
				if err != nil {
					return fmt.Errorf("order audit failed: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(rows) == 0 {
					fmt.Fprintln(out, color.New(color.FgGreen).Sprint("no anomalies"))
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "COMPANY\tCADENCE\tUSER\tLINKS\tMAX ORDER\tLEFT")
				for _, r := range rows {
					left := fmt.Sprint(d.OrderLimit - 1 - r.MaxOrder)
					if r.MaxOrder >= d.OrderLimit-1 {
						left = color.New(color.FgRed).Sprint(left)
					}
					maxOrder := color.New(color.FgYellow).Sprint(r.MaxOrder)
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", r.CompanyID, r.CadenceID, r.UserID, r.Links, maxOrder, left)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "Restrict the audit to one company id")
	cmd.Flags().IntVar(&warnAt, "warn-at", 0, "Report queues whose highest order reaches this value")

	return cmd
}
