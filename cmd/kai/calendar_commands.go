package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"kai/internal/api"
	"kai/internal/outbox"
	"kai/internal/replay"
)

func newCalendarCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Manage calendar events",
	}
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output JSON")

	var fromFlag, toFlag string
	list := &cobra.Command{
		Use:   "list",
		Short: "List calendar events",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}

			var opts api.EventListOptions
			if opts.From, err = parseTimeFlag(fromFlag, "--from"); err != nil {
				return err
			}
			if opts.To, err = parseTimeFlag(toFlag, "--to"); err != nil {
				return err
			}

			events, err := apiClient.Events(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), events)
			}
			rows := make([][]string, 0, len(events))
			for _, event := range events {
				rows = append(rows, []string{
					event.ID,
					event.Title,
					formatTime(event.Start),
					formatTime(event.End),
					event.Location,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Title", "Start", "End", "Location"},
				rows, nil))
			return nil
		},
	}
	list.Flags().StringVar(&fromFlag, "from", "", "Window start (RFC3339 or YYYY-MM-DD)")
	list.Flags().StringVar(&toFlag, "to", "", "Window end (RFC3339 or YYYY-MM-DD)")

	var addFlags eventFlags
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Create an event (queued when offline)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureManager()
			if err != nil {
				return err
			}
			write, err := addFlags.write(cmd, api.EventWrite{Title: args[0]})
			if err != nil {
				return err
			}
			if write.Start.IsZero() {
				return errors.New("--start is required")
			}
			if write.End.IsZero() {
				write.End = write.Start.Add(time.Hour)
			}
			result, err := manager.RunAction(cmd.Context(), outbox.ActionCreateEvent,
				replay.EventPayload{EventWrite: write})
			if err != nil {
				return err
			}
			reportAction(cmd, result, "Event created")
			return nil
		},
	}
	addFlags.register(add)

	var editFlags eventFlags
	var editTitle string
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update an event (queued when offline)",
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

			// Update is a full replace, so fetch the current event and
			// overlay only the changed flags.
			events, err := apiClient.Events(cmd.Context(), api.EventListOptions{})
			if err != nil {
				return err
			}
			var current *api.Event
			for i := range events {
				if events[i].ID == args[0] {
					current = &events[i]
					break
				}
			}
			if current == nil {
				return fmt.Errorf("event %s not found", args[0])
			}

			base := api.EventWrite{
				Title:       current.Title,
				Description: current.Description,
				Location:    current.Location,
				Start:       current.Start,
				End:         current.End,
				AllDay:      current.AllDay,
			}
			if cmd.Flags().Changed("title") {
				base.Title = editTitle
			}
			write, err := editFlags.write(cmd, base)
			if err != nil {
				return err
			}

			result, err := manager.RunAction(cmd.Context(), outbox.ActionUpdateEvent,
				replay.EventPayload{ID: args[0], EventWrite: write})
			if err != nil {
				return err
			}
			reportAction(cmd, result, "Event updated")
			return nil
		},
	}
	edit.Flags().StringVar(&editTitle, "title", "", "New title")
	editFlags.register(edit)

	remove := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an event (queued when offline)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := ctx.ensureManager()
			if err != nil {
				return err
			}
			result, err := manager.RunAction(cmd.Context(), outbox.ActionDeleteEvent,
				replay.EventPayload{ID: args[0]})
			if err != nil {
				return err
			}
			reportAction(cmd, result, "Event deleted")
			return nil
		},
	}

	cmd.AddCommand(list, add, edit, remove)
	return cmd
}

// eventFlags holds the shared create/edit flag set for calendar events.
type eventFlags struct {
	start       string
	end         string
	description string
	location    string
	allDay      bool
}

func (f *eventFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "Start time (RFC3339 or YYYY-MM-DD HH:MM)")
	cmd.Flags().StringVar(&f.end, "end", "", "End time (RFC3339 or YYYY-MM-DD HH:MM)")
	cmd.Flags().StringVar(&f.description, "description", "", "Event description")
	cmd.Flags().StringVar(&f.location, "location", "", "Event location")
	cmd.Flags().BoolVar(&f.allDay, "all-day", false, "All-day event")
}

func (f *eventFlags) write(cmd *cobra.Command, base api.EventWrite) (api.EventWrite, error) {
	if cmd.Flags().Changed("start") {
		start, err := parseTimeFlag(f.start, "--start")
		if err != nil {
			return base, err
		}
		base.Start = start
	}
	if cmd.Flags().Changed("end") {
		end, err := parseTimeFlag(f.end, "--end")
		if err != nil {
			return base, err
		}
		base.End = end
	}
	if cmd.Flags().Changed("description") {
		base.Description = f.description
	}
	if cmd.Flags().Changed("location") {
		base.Location = f.location
	}
	if cmd.Flags().Changed("all-day") {
		base.AllDay = f.allDay
	}
	return base, nil
}
