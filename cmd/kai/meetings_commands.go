package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"kai/internal/api"
)

func newMeetingsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "meetings",
		Short: "Manage meeting recordings",
	}
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output JSON")

	list := &cobra.Command{
		Use:   "list",
		Short: "List meetings",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			meetings, err := apiClient.Meetings(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), meetings)
			}
			rows := make([][]string, 0, len(meetings))
			for _, meeting := range meetings {
				rows = append(rows, []string{
					meeting.ID,
					meeting.Title,
					meeting.Status,
					formatTime(meeting.Start),
					formatDuration(meeting.DurationS),
					yesNo(meeting.HasSummary),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Status", "Start", "Duration", "Summary"},
				rows, nil))
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			meeting, err := apiClient.Meeting(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), meeting)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title:    %s\n", meeting.Title)
			fmt.Fprintf(out, "Status:   %s\n", meeting.Status)
			fmt.Fprintf(out, "Start:    %s\n", formatTime(meeting.Start))
			fmt.Fprintf(out, "Duration: %s\n", formatDuration(meeting.DurationS))
			fmt.Fprintf(out, "Summary:  %s\n", yesNo(meeting.HasSummary))
			return nil
		},
	}

	summary := &cobra.Command{
		Use:   "summary <id>",
		Short: "Show a meeting's generated summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			summary, err := apiClient.MeetingSummary(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), summary)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, summary.Summary)
			if len(summary.ActionItems) > 0 {
				fmt.Fprintln(out, "\nAction items:")
				for _, item := range summary.ActionItems {
					fmt.Fprintf(out, "  - %s\n", item)
				}
			}
			if len(summary.Decisions) > 0 {
				fmt.Fprintln(out, "\nDecisions:")
				for _, decision := range summary.Decisions {
					fmt.Fprintf(out, "  - %s\n", decision)
				}
			}
			return nil
		},
	}

	transcribe := &cobra.Command{
		Use:   "transcribe <id> <audio-file>",
		Short: "Attach an audio recording to an existing meeting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			resp, err := apiClient.TranscribeMeeting(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transcription %s (meeting %s)\n", resp.Status, resp.MeetingID)
			return nil
		},
	}

	var uploadTitle, uploadStart, uploadEnd, uploadMeetingID string
	upload := &cobra.Command{
		Use:   "upload <audio-file>",
		Short: "Upload a recording (queued when offline)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureManager()
			if err != nil {
				return err
			}

			audioPath, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve audio path: %w", err)
			}
			meta := api.UploadMetadata{
				Title:     uploadTitle,
				MeetingID: uploadMeetingID,
			}
			if meta.EventStart, err = parseTimeFlag(uploadStart, "--event-start"); err != nil {
				return err
			}
			if meta.EventEnd, err = parseTimeFlag(uploadEnd, "--event-end"); err != nil {
				return err
			}

			result, err := manager.UploadMeeting(cmd.Context(), audioPath, meta)
			if err != nil {
				return err
			}
			if result.Queued {
				fmt.Fprintf(cmd.OutOrStdout(), "Offline - upload queued (%s)\n", result.EntryID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Upload %s (meeting %s)\n",
				result.Response.Status, result.Response.MeetingID)
			return nil
		},
	}
	upload.Flags().StringVar(&uploadTitle, "title", "", "Meeting title")
	upload.Flags().StringVar(&uploadStart, "event-start", "", "Matching calendar event start")
	upload.Flags().StringVar(&uploadEnd, "event-end", "", "Matching calendar event end")
	upload.Flags().StringVar(&uploadMeetingID, "meeting", "", "Attach to an existing meeting")

	cmd.AddCommand(list, show, summary, transcribe, upload)
	return cmd
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
}
