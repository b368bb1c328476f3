package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kai/internal/api"
)

func newBriefingCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	var weekly bool

	cmd := &cobra.Command{
		Use:   "briefing",
		Short: "Show the generated daily or weekly briefing",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}

			var briefing *api.Briefing
			if weekly {
				briefing, err = apiClient.WeeklyBriefing(cmd.Context())
			} else {
				briefing, err = apiClient.DailyBriefing(cmd.Context())
			}
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), briefing)
			}

			out := cmd.OutOrStdout()
			if briefing.Headline != "" {
				fmt.Fprintf(out, "%s\n\n", briefing.Headline)
			}
			fmt.Fprintln(out, briefing.Body)
			if len(briefing.Events) > 0 {
				fmt.Fprintln(out, "\nUpcoming:")
				for _, event := range briefing.Events {
					fmt.Fprintf(out, "  %s  %s\n", formatTime(event.Start), event.Title)
				}
			}
			if len(briefing.Highlights) > 0 {
				fmt.Fprintln(out, "\nHighlights:")
				for _, highlight := range briefing.Highlights {
					fmt.Fprintf(out, "  - %s\n", highlight)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&weekly, "weekly", false, "Show the weekly briefing instead of daily")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}
