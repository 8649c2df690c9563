package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the portal",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := saveSession(app.cfg.SessionFile, app.sess.Token(), p); err != nil {
				return err
			}
			fmt.Fprintf(app.out, "Logged in as %s (%s)\n", p.Name, p.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.auth.Logout()
			clearSession(app.cfg.SessionFile)
			fmt.Fprintln(app.out, "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current principal",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.requirePrincipal()
			if err != nil {
				return err
			}
			fmt.Fprintf(app.out, "%s <%s> role=%s department=%s\n", p.Name, p.Email, p.Role, p.Department)
			return nil
		},
	}
}
