package main

import (
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/humidorapp/humidor-server/internal/service"
)

func newStatsCmd(flags *storeFlags) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the dashboard overview for a user as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd, flags, func(i do.Injector) error {
				svc, err := do.Invoke[*service.StatsService](i)
				if err != nil {
					return err
				}

				overview, err := svc.Overview(cmd.Context(), userID)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), overview)
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
