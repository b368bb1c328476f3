package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newChatCommand(ctx *commandContext) *cobra.Command {
	var conversationID string

	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send a message to the assistant",
		Long: "Send a message to the assistant. When the backend is unreachable the " +
			"message is queued locally and replayed by the next drain.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return errors.New("message is empty")
			}

			manager, err := ctx.ensureManager()
			if err != nil {
				return err
			}

			result, err := manager.SendMessage(cmd.Context(), text, conversationID)
			if err != nil {
				return err
			}
			if result.Queued {
				fmt.Fprintf(cmd.OutOrStdout(), "Offline - message queued (%s)\n", result.EntryID)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Response.Reply)
			return nil
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "Continue an existing conversation")
	return cmd
}

func newConversationsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "conversations",
		Short: "List chat conversations",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			conversations, err := apiClient.Conversations(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), conversations)
			}

			rows := make([][]string, 0, len(conversations))
			for _, conv := range conversations {
				rows = append(rows, []string{
					conv.ID,
					conv.Title,
					fmt.Sprintf("%d", conv.MessageCount),
					formatTime(conv.UpdatedAt),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Messages", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a conversation transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			detail, err := apiClient.Conversation(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), detail)
			}
			for _, msg := range detail.Messages {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", formatTime(msg.CreatedAt), msg.Role, msg.Content)
			}
			return nil
		},
	}

	cmd.AddCommand(showCmd)
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}
