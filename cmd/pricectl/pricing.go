package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var previewOnly bool

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Work with pricing rules",
}

var rulesApplyCmd = &cobra.Command{
	Use:     "apply <rule-id>",
	Short:   "Apply an active pricing rule to every matching product",
	Example: "  pricectl rules apply 6f1c... --actor ops@example.com\n  pricectl rules apply 6f1c... --preview",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := newServices()
		ctx := cmd.Context()

		if previewOnly {
			preview, err := svc.rules.Preview(ctx, operator(), args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRODUCT\tCURRENT\tNEW\tCHANGE")
			for _, p := range preview.Products {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.CurrentPrice.StringFixed(2), p.NewPrice.StringFixed(2), p.Change.StringFixed(2))
			}
			fmt.Fprintf(w, "\naffected: %d\ttotal now: %s\ttotal after: %s\n",
				preview.AffectedProducts, preview.TotalCurrentValue.StringFixed(2), preview.TotalNewValue.StringFixed(2))
			return w.Flush()
		}

		result, err := svc.rules.Apply(ctx, operator(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rule applied to %d products, %d skipped\n", result.UpdatedCount, len(result.Skipped))
		return nil
	},
}

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Work with bulk price updates",
}

var bulkRevertCmd = &cobra.Command{
	Use:   "revert <bulk-update-id>",
	Short: "Restore the prices changed by a bulk update",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := newServices().bulk.Revert(cmd.Context(), operator(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reverted %d products of bulk update %s\n", result.RevertedCount, result.BulkUpdateID)
		return nil
	},
}

var salesCmd = &cobra.Command{
	Use:   "sales",
	Short: "Work with sales",
}

var salesSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Apply started sales and release ended ones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := newServices().sales.Reconcile(cmd.Context())
		if result != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "applied: %v\nremoved: %v\n", result.Applied, result.Removed)
		}
		return err
	},
}

func init() {
	rulesApplyCmd.Flags().BoolVar(&previewOnly, "preview", false, "show the effect without writing prices")
	rulesCmd.AddCommand(rulesApplyCmd)
	bulkCmd.AddCommand(bulkRevertCmd)
	salesCmd.AddCommand(salesSyncCmd)
	rootCmd.AddCommand(rulesCmd, bulkCmd, salesCmd)
}
