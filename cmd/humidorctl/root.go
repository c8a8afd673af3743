package main

import (
	"encoding/json"
	"io"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/humidorapp/humidor-server/internal/config"
	"github.com/humidorapp/humidor-server/internal/di"
	"github.com/humidorapp/humidor-server/internal/logger"
)

// storeFlags mirror the server's flags so both read the same data.
type storeFlags struct {
	driver      string
	dataPath    string
	postgresDSN string
	keyPath     string
	envFile     string
	logLevel    string
}

// args renders the set flags for config.Load, leaving the rest to the
// environment and defaults.
func (f *storeFlags) args() []string {
	var args []string
	add := func(name, v string) {
		if v != "" {
			args = append(args, "--"+name, v)
		}
	}
	add("store", f.driver)
	add("data-path", f.dataPath)
	add("postgres-dsn", f.postgresDSN)
	add("auth-key-path", f.keyPath)
	add("env-file", f.envFile)
	add("log-level", f.logLevel)
	return args
}

func newRootCmd() *cobra.Command {
	flags := &storeFlags{}

	root := &cobra.Command{
		Use:           "humidorctl",
		Short:         "Maintenance tool for a humidor data store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.driver, "store", "", "Store driver: badger, sqlite or postgres")
	pf.StringVar(&flags.dataPath, "data-path", "", "Directory for local data")
	pf.StringVar(&flags.postgresDSN, "postgres-dsn", "", "Postgres connection string")
	pf.StringVar(&flags.keyPath, "auth-key-path", "", "Path to the token key file")
	pf.StringVar(&flags.envFile, "env-file", "", "Path to .env file")
	pf.StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newTokenCmd(flags),
		newStatsCmd(flags),
		newImportCmd(flags),
		newBackupCmd(flags),
		newRestoreCmd(flags),
	)
	return root
}

// withContainer loads configuration, builds the tool container and hands it
// to fn. The container is shut down afterwards, closing the store.
func withContainer(cmd *cobra.Command, flags *storeFlags, fn func(do.Injector) error) (err error) {
	cfg, err := config.Load(flags.args())
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Writer:      cmd.ErrOrStderr(),
		Format:      logger.FormatConsole,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	injector := di.NewToolContainer(cfg, log)
	defer func() {
		if shutdownErr := injector.Shutdown(); shutdownErr != nil && err == nil {
			err = shutdownErr
		}
	}()

	return fn(injector)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
