package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yosuakev/learnful/internal/cli/formatter"
)

func newLoginCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login <user-id>",
		Short: "Sign in so reads and writes go to the remote store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.Session.RemoteConfigured() {
				return fmt.Errorf("no remote store is configured; set LEARNFUL_REMOTE_DSN")
			}
			sess, err := app.Session.Login(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s until %s\n",
				formatter.Bold(sess.UserID), sess.ExpiresAt.In(app.now().Location()).Format("Jan 2, 2006"))
			return nil
		},
	}
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and work from the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Session.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out. Data is now read from and written to this device.")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user and which store is in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			sess := app.Session.CurrentSession(cmd.Context())
			if sess == nil {
				fmt.Fprintln(out, formatter.ModeBadge("local"))
				if app.Session.RemoteConfigured() {
					fmt.Fprintln(out, formatter.Dim("Not signed in. Run 'learnful login <user-id>' to sync."))
				}
				return nil
			}
			fmt.Fprintln(out, formatter.ModeBadge("remote"))
			fmt.Fprintf(out, "%s %s\n", formatter.Dim("User"), formatter.Bold(sess.UserID))
			return nil
		},
	}
}
