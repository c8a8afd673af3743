package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/humidorapp/humidor-server/internal/auth"
	"github.com/humidorapp/humidor-server/internal/domain"
)

func newTokenCmd(flags *storeFlags) *cobra.Command {
	var userID, email string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token signed with the server key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if userID == "" {
				return errors.New("--user is required")
			}
			return withContainer(cmd, flags, func(i do.Injector) error {
				tokens, err := do.Invoke[*auth.TokenService](i)
				if err != nil {
					return err
				}

				token, expires, err := tokens.Issue(domain.Identity{ID: userID, Email: email})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, token)
				fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expires.Format(time.RFC3339))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (required)")
	cmd.Flags().StringVarP(&email, "email", "e", "", "User email")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
