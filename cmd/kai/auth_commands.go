package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kai/internal/api"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var email string
	var register bool
	var name string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the Kai backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}

			reader := bufio.NewReader(cmd.InOrStdin())
			if strings.TrimSpace(email) == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Email: ")
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("read email: %w", err)
				}
				email = strings.TrimSpace(line)
			}
			if email == "" {
				return errors.New("email is required")
			}

			fmt.Fprint(cmd.OutOrStdout(), "Password: ")
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				return errors.New("password is required")
			}

			if register {
				_, err = apiClient.Register(cmd.Context(), api.RegisterRequest{
					Email:    email,
					Password: password,
					Name:     strings.TrimSpace(name),
				})
			} else {
				_, err = apiClient.Login(cmd.Context(), email, password)
			}
			if err != nil {
				return err
			}

			user, err := apiClient.Me(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().BoolVar(&register, "register", false, "Create a new account instead of signing in")
	cmd.Flags().StringVar(&name, "name", "", "Display name for --register")
	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			if err := apiClient.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient, err := ctx.ensureClient()
			if err != nil {
				return err
			}
			user, err := apiClient.Me(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(cmd.OutOrStdout(), user)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s", user.Email)
			if user.Name != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (%s)", user.Name)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}
