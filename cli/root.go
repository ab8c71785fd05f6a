package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"storekeep/config"
	"storekeep/db"
	"storekeep/menu"
)

// Execute loads the configuration, runs the root command and returns the
// process exit code.
func Execute() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := newRootCmd(&cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// newRootCmd binds flags onto cfg, so values already read from the
// environment become the flag defaults.
func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storekeep",
		Short: "Keep customers and their orders in a local SQLite file",
		Long: `storekeep is an interactive, menu-driven record keeper for customers and
orders. Everything lives in one SQLite file that is created on first run.

Orders name a customer by id. With --reference-check=validate (the default)
an order for an unknown customer is rejected. With trust the id is stored
unchecked, so integrity rests on SQLite alone (see --foreign-keys) and orders
may point at customers that do not exist.

Settings may also come from the environment or a .env file:
  STOREKEEP_DB, STOREKEEP_FOREIGN_KEYS, STOREKEEP_REFERENCE_CHECK, STOREKEEP_LOG_LEVEL`,
		Version:       "0.1.0",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, *cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite database file")
	cmd.Flags().BoolVar(&cfg.ForeignKeys, "foreign-keys", cfg.ForeignKeys, "Let SQLite enforce orders.customer_id")
	cmd.Flags().StringVar(&cfg.ReferenceCheck, "reference-check", cfg.ReferenceCheck, "validate rejects orders for unknown customers; trust stores customer ids unchecked")
	cmd.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	return cmd
}

func run(cmd *cobra.Command, cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	lvl, _ := cfg.Level()
	refCheck, _ := cfg.RefCheck()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen}).
		Level(lvl).
		With().
		Timestamp().
		Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(ctx, cfg.DBPath,
		db.WithForeignKeys(cfg.ForeignKeys),
		db.WithReferenceCheck(refCheck),
		db.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close store")
		}
	}()

	loop := menu.New(store, cmd.InOrStdin(), cmd.OutOrStdout(), menu.WithLogger(logger))

	// Run returns on a signal only once the current store call has finished,
	// so the store is closed after the last write.
	err = loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(cmd.OutOrStdout(), "\nInterrupted. Bye!")
		return nil
	}
	return err
}
