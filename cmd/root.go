// Package cmd is the pgjobq command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/theleeeo/pgjobq/config"
)

// cli carries what every subcommand needs once the configuration is loaded.
type cli struct {
	v   *viper.Viper
	cfg config.Config
	log *slog.Logger
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&cli{v: viper.New()})
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "pgjobq",
		Short:         "A durable job queue backed by PostgreSQL",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindConfigFlags(c.v, cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(c.v)
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.log = cfg.NewLogger(cmd.ErrOrStderr())
			slog.SetDefault(c.log)
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "path to a config file (yaml, json or toml)")
	flags.String("database-url", "", "postgres connection string (env PGJOBQ_DATABASE_URL)")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-format", "", "json or text")
	configFlags(flags, map[string]string{
		"config":       "config",
		"database_url": "database-url",
		"log_level":    "log-level",
		"log_format":   "log-format",
	})

	root.AddCommand(
		migrateCmd(c),
		workerCmd(c),
		workCmd(c),
		enqueueCmd(c),
		getCmd(c),
		listCmd(c),
		deadCmd(c),
		statsCmd(c),
		requeueCmd(c),
		pruneCmd(c),
	)
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

const configKeyAnnotation = "pgjobq_config_key"

// configFlags marks flags as overrides for config keys. Several commands may
// override the same key; only the flags of the running command are bound.
func configFlags(fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := fs.SetAnnotation(name, configKeyAnnotation, []string{key}); err != nil {
			panic(fmt.Sprintf("annotate flag %q: %v", name, err))
		}
	}
}

func bindConfigFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		if keys := f.Annotations[configKeyAnnotation]; len(keys) == 1 {
			errs = append(errs, v.BindPFlag(keys[0], f))
		}
	})
	return errors.Join(errs...)
}

// newPool connects to Postgres, retrying while the database comes up.
func newPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	var (
		pool    *pgxpool.Pool
		connErr error
	)
	for attempt := 1; attempt <= 10; attempt++ {
		pool, connErr = pgxpool.NewWithConfig(ctx, poolCfg)
		if connErr == nil {
			if connErr = pool.Ping(ctx); connErr == nil {
				return pool, nil
			}
			pool.Close()
		}

		slog.Warn("database not ready, retrying", "attempt", attempt, "error", connErr)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
	return nil, fmt.Errorf("connect to database: %w", connErr)
}
