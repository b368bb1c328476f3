package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kai/internal/api"
	"kai/internal/client"
)

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage tracked projects",
	}
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output JSON")

	list := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			projects, err := apiClient.Projects(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), projects)
			}
			rows := make([][]string, 0, len(projects))
			for _, project := range projects {
				rows = append(rows, []string{
					project.ID,
					project.Name,
					project.Status,
					project.DueDate,
					formatTime(project.UpdatedAt),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Status", "Due", "Updated"},
				rows, nil))
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			project, err := apiClient.Project(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), project)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:   %s\n", project.Name)
			fmt.Fprintf(out, "Status: %s\n", project.Status)
			if project.DueDate != "" {
				fmt.Fprintf(out, "Due:    %s\n", project.DueDate)
			}
			if project.Description != "" {
				fmt.Fprintf(out, "\n%s\n", project.Description)
			}
			return nil
		},
	}

	var addDescription, addDue string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project in draft status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			project, err := apiClient.CreateProject(cmd.Context(), api.ProjectWrite{
				Name:        args[0],
				Description: addDescription,
				DueDate:     addDue,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s)\n", project.Name, project.ID)
			return nil
		},
	}
	add.Flags().StringVar(&addDescription, "description", "", "Project description")
	add.Flags().StringVar(&addDue, "due", "", "Due date (YYYY-MM-DD)")

	var editName, editDescription, editDue string
	edit := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			current, err := apiClient.Project(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			write := api.ProjectWrite{
				Name:        current.Name,
				Description: current.Description,
				DueDate:     current.DueDate,
			}
			if cmd.Flags().Changed("name") {
				write.Name = editName
			}
			if cmd.Flags().Changed("description") {
				write.Description = editDescription
			}
			if cmd.Flags().Changed("due") {
				write.DueDate = editDue
			}
			project, err := apiClient.UpdateProject(cmd.Context(), args[0], write)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated project %s\n", project.Name)
			return nil
		},
	}
	edit.Flags().StringVar(&editName, "name", "", "New name")
	edit.Flags().StringVar(&editDescription, "description", "", "New description")
	edit.Flags().StringVar(&editDue, "due", "", "New due date (YYYY-MM-DD)")

	remove := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			if err := apiClient.DeleteProject(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Project deleted")
			return nil
		},
	}

	transition := func(use, short, done string,
		call func(*client.Client, *cobra.Command, string) (*api.Project, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				apiClient, err := ctx.ensureClient()
				if err != nil {
					return err
				}
				project, err := call(apiClient, cmd, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (now %s)\n", done, project.Name, project.Status)
				return nil
			},
		}
	}

	activate := transition("activate", "Transition a project to active", "Activated",
		func(c *client.Client, cmd *cobra.Command, id string) (*api.Project, error) {
			return c.ActivateProject(cmd.Context(), id)
		})
	complete := transition("complete", "Transition a project to complete", "Completed",
		func(c *client.Client, cmd *cobra.Command, id string) (*api.Project, error) {
			return c.CompleteProject(cmd.Context(), id)
		})
	archive := transition("archive", "Transition a project to archived", "Archived",
		func(c *client.Client, cmd *cobra.Command, id string) (*api.Project, error) {
			return c.ArchiveProject(cmd.Context(), id)
		})

	cmd.AddCommand(list, show, add, edit, remove, activate, complete, archive)
	return cmd
}
