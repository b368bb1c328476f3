package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUsageCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show account usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			summary, err := apiClient.UsageSummary(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), summary)
			}
			out := cmd.OutOrStdout()
			if !summary.PeriodStart.IsZero() {
				fmt.Fprintf(out, "Period:   %s - %s\n",
					formatTime(summary.PeriodStart), formatTime(summary.PeriodEnd))
			}
			fmt.Fprintf(out, "Requests: %d\n", summary.TotalRequests)
			fmt.Fprintf(out, "Tokens:   %d\n", summary.TotalTokens)
			fmt.Fprintf(out, "Cost:     $%.2f\n", summary.TotalCostUSD)
			return nil
		},
	}
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output JSON")

	daily := &cobra.Command{
		Use:   "daily",
		Short: "Show per-day usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			rows, err := apiClient.UsageDaily(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			tableRows := make([][]string, 0, len(rows))
			for _, row := range rows {
				tableRows = append(tableRows, []string{
					row.Date,
					fmt.Sprintf("%d", row.Requests),
					fmt.Sprintf("%d", row.Tokens),
					fmt.Sprintf("$%.2f", row.CostUSD),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Date", "Requests", "Tokens", "Cost"},
				tableRows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	models := &cobra.Command{
		Use:   "models",
		Short: "Show per-model usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			rows, err := apiClient.UsageModels(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), rows)
			}
			tableRows := make([][]string, 0, len(rows))
			for _, row := range rows {
				tableRows = append(tableRows, []string{
					row.Model,
					fmt.Sprintf("%d", row.Requests),
					fmt.Sprintf("%d", row.Tokens),
					fmt.Sprintf("$%.2f", row.CostUSD),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Model", "Requests", "Tokens", "Cost"},
				tableRows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.AddCommand(daily, models)
	return cmd
}
