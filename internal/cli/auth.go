package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"filevault/internal/auth"
)

func newRegisterCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "register <email>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.open(cmd.Context()); err != nil {
				return err
			}

			password, err := getPassword(cmd.OutOrStdout(), "Enter password: ")
			if err != nil {
				return err
			}
			repeat, err := getPassword(cmd.OutOrStdout(), "Repeat password: ")
			if err != nil {
				return err
			}
			if password != repeat {
				return fmt.Errorf("passwords do not match")
			}

			user, err := app.users.Register(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\n", user.Email)
			return nil
		},
	}
}

func newLoginCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Log in and store a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.open(cmd.Context()); err != nil {
				return err
			}

			password, err := getPassword(cmd.OutOrStdout(), "Enter password: ")
			if err != nil {
				return err
			}

			token, err := app.users.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}

			if err := auth.SaveSession(app.cfg.SessionFile, token); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Logged in")
			return nil
		},
	}
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the active session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.ClearSession(app.cfg.SessionFile); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active session's identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			identity, err := app.identity()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", identity.Email, identity.UserID)
			return nil
		},
	}
}
