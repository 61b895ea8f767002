package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aura-answers/backend/config"
	"github.com/aura-answers/backend/pkg/database"
	"github.com/aura-answers/backend/pkg/redis"
)

// env carries what every subcommand needs once flags are parsed.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	verbose bool
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "answersctl",
		Short:         "Operate the answers backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			e.cfg = cfg
			if e.verbose {
				e.logger, err = zap.NewDevelopment()
				if err != nil {
					return err
				}
			} else {
				e.logger = zap.NewNop()
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "Verbose output")

	root.AddCommand(newMigrateCmd(e), newPromoteCmd(e), newQueueCmd(e))
	return root
}

func (e *env) pool(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := database.NewPostgresPool(ctx, e.cfg.Database.DSN(), database.PoolOptions{MaxConns: 2}, e.logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return pool, nil
}

func (e *env) redis(ctx context.Context) (*redis.Client, error) {
	rdb, err := redis.NewClient(ctx, e.cfg.Redis.Addr, e.cfg.Redis.Password, e.cfg.Redis.DB, e.logger)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return rdb, nil
}
