package cli

import (
	"fmt"

	"cadence_sync_backend/internal/enrollment/domain"

	"github.com/spf13/cobra"
)

// FieldMapCmd groups field map commands.
func FieldMapCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fieldmap",
		Short: "Inspect the CRM status markers of a company",
	}
	cmd.AddCommand(fieldMapShowCmd(open))
	cmd.AddCommand(fieldMapFlushCmd(open))
	return cmd
}

type fieldMapFlags struct {
	company     string
	integration string
}

func (f *fieldMapFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.company, "company", "", "Company id")
	cmd.Flags().StringVar(&f.integration, "integration", "", "Integration type, e.g. salesforce_lead")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("integration")
}

func (f *fieldMapFlags) parse() (domain.IntegrationType, error) {
	it, ok := domain.ParseIntegrationType(f.integration)
	if !ok {
		return "", fmt.Errorf("unknown integration type %q", f.integration)
	}
	return it, nil
}

func fieldMapShowCmd(open Opener) *cobra.Command {
	var flags fieldMapFlags

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the markers used to classify integration_status",
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID, err := parseCompany(flags.company)
			if err != nil {
				return err
			}
			it, err := flags.parse()
			if err != nil {
				return err
			}

			return withDeps(cmd.Context(), open, func(d *Deps) error {
				fm, err := d.FieldMaps.GetFieldMap(cmd.Context(), *companyID, it)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "field:        %s\n", orNone(fm.StatusField))
				fmt.Fprintf(out, "disqualified: %s\n", orNone(fm.DisqualifiedValue))
				fmt.Fprintf(out, "converted:    %s\n", orNone(fm.ConvertedValue))
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func fieldMapFlushCmd(open Opener) *cobra.Command {
	var flags fieldMapFlags

	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Drop the cached field map so the next sync reloads it",
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID, err := parseCompany(flags.company)
			if err != nil {
				return err
			}
			it, err := flags.parse()
			if err != nil {
				return err
			}

			return withDeps(cmd.Context(), open, func(d *Deps) error {
				if err := d.FieldMaps.Invalidate(cmd.Context(), *companyID, it); err != nil {
					return err
				}
				cmd.Println("field map cache flushed")
				return nil
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func orNone(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}
