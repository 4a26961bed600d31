package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Print an access token for TASKHUB_TOKEN",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(email) == "" || password == "" {
				return errors.New("--email and --password are required")
			}
			token, err := app.API.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}
