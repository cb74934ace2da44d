package cmd

import (
	"fmt"

	"inkwell/app/auth"
	"inkwell/service"

	"github.com/spf13/cobra"
)

var (
	setupUsername string
	passwdReset   bool
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the admin account",
	Long:  `Prompts for the admin username and password. Passwords need at least 8 characters with letters and digits.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *service.App) error {
			ctx := cmd.Context()
			configured, err := app.Gate.IsConfigured(ctx)
			if err != nil {
				return err
			}
			if configured {
				return fmt.Errorf("%w; use passwd to change the password", auth.ErrAlreadyConfigured)
			}

			username := setupUsername
			if username == "" {
				if username, err = ask("Admin username", "admin"); err != nil {
					return err
				}
			}
			password, err := askPassword("Password", auth.ValidatePassword)
			if err != nil {
				return err
			}
			confirm, err := askPassword("Confirm password", nil)
			if err != nil {
				return err
			}
			if err := app.Gate.Setup(ctx, username, password, confirm); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin account %q created\n", username)
			return nil
		})
	},
}

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the admin password",
	Long: `Prompts for the current password and a new one. With --reset the account
is removed after confirmation so setup can run again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(app *service.App) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			if passwdReset {
				ok, err := confirmer().Confirm(ctx, "Remove the admin account?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, "Operation cancelled")
					return nil
				}
				if err := app.Gate.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out, "Admin account removed; run setup to create a new one")
				return nil
			}

			current, err := askPassword("Current password", nil)
			if err != nil {
				return err
			}
			password, err := askPassword("New password", auth.ValidatePassword)
			if err != nil {
				return err
			}
			confirm, err := askPassword("Confirm new password", nil)
			if err != nil {
				return err
			}
			if err := app.Gate.ChangePassword(ctx, current, password, confirm); err != nil {
				return err
			}
			fmt.Fprintln(out, "Password changed")
			return nil
		})
	},
}

func init() {
	setupCmd.Flags().StringVar(&setupUsername, "username", "", "admin username (prompted when empty)")
	passwdCmd.Flags().BoolVar(&passwdReset, "reset", false, "remove the account instead")
	rootCmd.AddCommand(setupCmd, passwdCmd)
}
