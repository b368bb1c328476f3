package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"kai/internal/api"
)

func newPreferencesCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "preferences",
		Short: "Manage account preferences",
	}
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output JSON")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show account preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			prefs, err := apiClient.Preferences(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), prefs)
			}
			keys := make([]string, 0, len(prefs))
			for key := range prefs {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				rows = append(rows, []string{key, prefs[key].GoString()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Key", "Value"}, rows, nil))
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a preference key",
		Long: "Set a preference key. The value is parsed as JSON when possible " +
			"(true, 3.5, [\"a\"]); anything else is stored as a string.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}

			// Read-modify-write: PUT replaces the whole document.
			prefs, err := apiClient.Preferences(cmd.Context())
			if err != nil {
				return err
			}
			if prefs == nil {
				prefs = api.Preferences{}
			}
			prefs[args[0]] = parsePreferenceValue(args[1])

			if _, err := apiClient.UpdatePreferences(cmd.Context(), prefs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])
			return nil
		},
	}

	unset := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a preference key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			prefs, err := apiClient.Preferences(cmd.Context())
			if err != nil {
				return err
			}
			if _, ok := prefs[args[0]]; !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Key %s not set\n", args[0])
				return nil
			}
			delete(prefs, args[0])
			if _, err := apiClient.UpdatePreferences(cmd.Context(), prefs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(show, set, unset)
	return cmd
}

func parsePreferenceValue(raw string) api.Value {
	var value api.Value
	if err := json.Unmarshal([]byte(raw), &value); err == nil {
		return value
	}
	return api.String(raw)
}

func newRoutingCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "routing",
		Short: "Manage backend model routing",
	}
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output JSON")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the routing configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			routing, err := apiClient.RoutingConfig(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), routing)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Default model: %s\n", routing.DefaultModel)
			if len(routing.Rules) > 0 {
				rows := make([][]string, 0, len(routing.Rules))
				for _, rule := range routing.Rules {
					rows = append(rows, []string{rule.Task, rule.Model})
				}
				fmt.Fprintln(out, renderTable([]string{"Task", "Model"}, rows, nil))
			}
			return nil
		},
	}

	var defaultModel string
	var ruleFlags []string
	set := &cobra.Command{
		Use:   "set",
		Short: "Update the routing configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}

			current, err := apiClient.RoutingConfig(cmd.Context())
			if err != nil {
				return err
			}
			routing := *current
			if cmd.Flags().Changed("default-model") {
				routing.DefaultModel = defaultModel
			}
			if cmd.Flags().Changed("rule") {
				rules := make([]api.RoutingRule, 0, len(ruleFlags))
				for _, raw := range ruleFlags {
					task, model, ok := strings.Cut(raw, "=")
					if !ok || task == "" || model == "" {
						return fmt.Errorf("invalid rule %q (want task=model)", raw)
					}
					rules = append(rules, api.RoutingRule{Task: task, Model: model})
				}
				routing.Rules = rules
			}

			updated, err := apiClient.UpdateRoutingConfig(cmd.Context(), routing)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Routing updated (default %s, %d rules)\n",
				updated.DefaultModel, len(updated.Rules))
			return nil
		},
	}
	set.Flags().StringVar(&defaultModel, "default-model", "", "Default model for unmatched tasks")
	set.Flags().StringSliceVar(&ruleFlags, "rule", nil, "Routing rule task=model (repeatable, replaces all rules)")

	cmd.AddCommand(show, set)
	return cmd
}
