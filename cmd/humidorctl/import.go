package main

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/humidorapp/humidor-server/internal/service"
)

func newImportCmd(flags *storeFlags) *cobra.Command {
	var userID, file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a browser localStorage export for a user",
		Long: `Load a browser localStorage export for a user.

The file is a JSON object with "cigars", "tastingSessions" and
"currentTastingSessions" arrays. Records get fresh IDs; invalid records are
skipped and listed in the output. The user must not hold any data yet, and
nothing is written unless the whole import succeeds.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open export: %w", err)
			}
			defer f.Close()

			exp, err := service.DecodeBrowserExport(f)
			if err != nil {
				return err
			}

			return withContainer(cmd, flags, func(i do.Injector) error {
				svc, err := do.Invoke[*service.ImportService](i)
				if err != nil {
					return err
				}

				res, err := svc.Import(cmd.Context(), userID, exp)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (required)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Export file (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
