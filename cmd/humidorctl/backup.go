package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/humidorapp/humidor-server/internal/backup"
)

func newBackupCmd(flags *storeFlags) *cobra.Command {
	var userID, out string

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a user's inventory and tastings to a zip archive",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withContainer(cmd, flags, func(i do.Injector) error {
				svc, err := do.Invoke[*backup.Service](i)
				if err != nil {
					return err
				}

				f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
				if err != nil {
					return fmt.Errorf("create backup file: %w", err)
				}

				m, err := svc.Export(cmd.Context(), userID, f)
				if closeErr := f.Close(); err == nil {
					err = closeErr
				}
				if err != nil {
					_ = os.Remove(out)
					return err
				}
				return printJSON(cmd.OutOrStdout(), m)
			})
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "User ID (required)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file; must not exist (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newRestoreCmd(flags *storeFlags) *cobra.Command {
	var opts backup.RestoreOptions
	var file string

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Load a backup archive into the configured store",
		Long: `Load a backup archive into the configured store.

The target user must have no cigars and no tastings. Use --user to restore
under a different owner than the one recorded in the archive.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open backup: %w", err)
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return err
			}

			return withContainer(cmd, flags, func(i do.Injector) error {
				svc, err := do.Invoke[*backup.Service](i)
				if err != nil {
					return err
				}

				m, err := svc.Restore(cmd.Context(), f, info.Size(), opts)
				if errors.Is(err, backup.ErrTargetNotEmpty) {
					return fmt.Errorf("%w; restore into an empty store or pass --user", err)
				}
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), m)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Backup archive (required)")
	cmd.Flags().StringVarP(&opts.UserID, "user", "u", "", "Restore under this user instead of the archived one")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Validate the archive without writing")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
