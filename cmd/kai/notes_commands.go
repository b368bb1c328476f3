package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kai/internal/api"
	"kai/internal/outbox"
	"kai/internal/replay"
)

func newNotesCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage notes",
	}
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output JSON")

	list := &cobra.Command{
		Use:   "list",
		Short: "List notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			notes, err := apiClient.Notes(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), notes)
			}
			rows := make([][]string, 0, len(notes))
			for _, note := range notes {
				rows = append(rows, []string{
					note.ID,
					note.Title,
					strings.Join(note.Tags, ","),
					yesNo(note.Pinned),
					formatTime(note.UpdatedAt),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Tags", "Pinned", "Updated"},
				rows, nil))
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			note, err := apiClient.Note(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), note)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n%s\n", note.Title, note.Content)
			return nil
		},
	}

	var addTags []string
	var addPinned bool
	add := &cobra.Command{
		Use:   "add <title> <content>",
		Short: "Create a note (queued when offline)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureManager()
			if err != nil {
				return err
			}
			payload := replay.NotePayload{NoteWrite: api.NoteWrite{
				Title:   args[0],
				Content: args[1],
				Tags:    addTags,
				Pinned:  addPinned,
			}}
			result, err := manager.RunAction(cmd.Context(), outbox.ActionCreateNote, payload)
			if err != nil {
				return err
			}
			reportAction(cmd, result, "Note created")
			return nil
		},
	}
	add.Flags().StringSliceVar(&addTags, "tag", nil, "Tags to attach (repeatable)")
	add.Flags().BoolVar(&addPinned, "pinned", false, "Pin the note")

	var editTitle, editContent string
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a note (queued when offline)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			manager, err := ctx.ensureManager()
			if err != nil {
				return err
			}

			// Start from the current note so unchanged fields survive the
			// full replace.
			current, err := apiClient.Note(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			write := api.NoteWrite{
				Title:   current.Title,
				Content: current.Content,
				Tags:    current.Tags,
				Pinned:  current.Pinned,
			}
			if cmd.Flags().Changed("title") {
				write.Title = editTitle
			}
			if cmd.Flags().Changed("content") {
				write.Content = editContent
			}

			result, err := manager.RunAction(cmd.Context(), outbox.ActionUpdateNote,
				replay.NotePayload{ID: args[0], NoteWrite: write})
			if err != nil {
				return err
			}
			reportAction(cmd, result, "Note updated")
			return nil
		},
	}
	edit.Flags().StringVar(&editTitle, "title", "", "New title")
	edit.Flags().StringVar(&editContent, "content", "", "New content")

	remove := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a note (queued when offline)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureManager()
			if err != nil {
				return err
			}
			result, err := manager.RunAction(cmd.Context(), outbox.ActionDeleteNote,
				replay.NotePayload{ID: args[0]})
			if err != nil {
				return err
			}
			reportAction(cmd, result, "Note deleted")
			return nil
		},
	}

	search := &cobra.Command{
		Use:   "search <query>",
		Short: "Search notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			results, err := apiClient.SearchNotes(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), results)
			}
			rows := make([][]string, 0, len(results))
			for _, hit := range results {
				rows = append(rows, []string{
					hit.ID,
					hit.Title,
					truncate(hit.Snippet, 60),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Snippet"}, rows, nil))
			return nil
		},
	}

	cmd.AddCommand(list, show, add, edit, remove, search)
	return cmd
}

func reportAction(cmd *cobra.Command, result *replay.ActionResult, applied string) {
	if result.Queued {
		fmt.Fprintf(cmd.OutOrStdout(), "Offline - change queued (%s)\n", result.EntryID)
		return
	}
	fmt.Fprintln(cmd.OutOrStdout(), applied)
}
