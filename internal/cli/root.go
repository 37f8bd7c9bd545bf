// Package cli is the kiranamitra command line: the local API server plus
// maintenance commands (backup, sync, seed, reports) that run directly
// against the shop database.
package cli

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/app"
	"github.com/hardikkanajariya-in/kiranamitra-sub001/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json"
	DBPath  string

	// loadConfig is replaced in tests.
	loadConfig func() (*config.Config, error)
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	return newRootCommand(config.Load)
}

func newRootCommand(load func() (*config.Config, error)) *cobra.Command {
	opts := &RootOptions{loadConfig: load}

	cmd := &cobra.Command{
		Use:   "kiranamitra",
		Short: "KiranaMitra - offline billing and credit book for a kirana shop",
		Long: `KiranaMitra keeps products, bills and customer credit in a local SQLite
database and serves them to the shop's devices over a local API.
Backups are JSON files; cloud sync uploads the same snapshot to Google Drive.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			setupLogging(opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "path to the shop database (overrides DB_PATH)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewBackupCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewPinCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))

	return cmd
}

func setupLogging(verbose bool) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}

func (o *RootOptions) config() (*config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if o.DBPath != "" {
		cfg.DBPath = o.DBPath
	}
	return cfg, nil
}

// open builds the app for one command; the caller closes it.
func (o *RootOptions) open(opts app.Options) (*app.App, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg, opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}
	return a, nil
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		log.Error().Err(err).Msg("close database")
	}
}
