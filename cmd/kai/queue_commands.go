package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kai/internal/outbox"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the offline queue",
	}
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output JSON")

	list := &cobra.Command{
		Use:   "list",
		Short: "List queued entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			reqCtx := cmd.Context()

			messages, err := store.Messages(reqCtx)
			if err != nil {
				return err
			}
			uploads, err := store.Uploads(reqCtx)
			if err != nil {
				return err
			}
			actions, err := store.Actions(reqCtx)
			if err != nil {
				return err
			}

			if jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"messages": messages,
					"uploads":  uploads,
					"actions":  actions,
				})
			}

			rows := make([][]string, 0, len(messages)+len(uploads)+len(actions))
			for _, msg := range messages {
				rows = append(rows, []string{
					msg.ID, "message", truncate(msg.Payload, 50), "", formatTime(msg.CreatedAt),
				})
			}
			for _, act := range actions {
				rows = append(rows, []string{
					act.ID, "action", string(act.Kind), "", formatTime(act.CreatedAt),
				})
			}
			for _, up := range uploads {
				detail := fmt.Sprintf("%s (retries %d/%d)",
					up.Status, up.RetryCount, store.MaxUploadRetries())
				rows = append(rows, []string{
					up.ID, "upload", truncate(up.FilePath, 50), detail, formatTime(up.CreatedAt),
				})
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Kind", "Detail", "Status", "Queued"},
				rows, nil))
			return nil
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Drop all queued entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Queue cleared")
			return nil
		},
	}

	drain := &cobra.Command{
		Use:   "drain",
		Short: "Replay queued entries now",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureManager()
			if err != nil {
				return err
			}
			result, err := manager.Drain(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Drained: %d sent, %d failed, %d skipped\n",
				result.Sent, result.Failed, result.Skipped)
			return nil
		},
	}

	retry := &cobra.Command{
		Use:   "retry <upload-id>",
		Short: "Re-queue a failed upload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			if err := store.ResetUpload(cmd.Context(), args[0]); err != nil {
				return err
			}
			manager, err := ctx.ensureManager()
			if err != nil {
				return err
			}
			result, err := manager.Drain(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Retry queued; drain sent %d, failed %d\n",
				result.Sent, result.Failed)
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show queue depth",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.ensureStore()
			if err != nil {
				return err
			}
			counts, err := store.Counts(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), counts)
			}
			printQueueCounts(cmd, counts, store.Capacity())
			return nil
		},
	}

	cmd.AddCommand(list, status, clear, drain, retry)
	return cmd
}

func printQueueCounts(cmd *cobra.Command, counts outbox.Counts, capacity int) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Messages: %d/%d\n", counts.Messages, capacity)
	fmt.Fprintf(out, "Uploads:  %d/%d\n", counts.Uploads, capacity)
	fmt.Fprintf(out, "Actions:  %d/%d\n", counts.Actions, capacity)
}
