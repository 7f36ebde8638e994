// Package cmd implements ledgerctl, an operator CLI that drives the same
// posting services as the HTTP API directly against the database.
package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/shop-ledger/internal/cache"
	"github.com/josh-kwaku/shop-ledger/internal/config"
	"github.com/josh-kwaku/shop-ledger/internal/logging"
	"github.com/josh-kwaku/shop-ledger/internal/repository"
	"github.com/josh-kwaku/shop-ledger/internal/service"
	"github.com/josh-kwaku/shop-ledger/internal/service/posting"
)

type rootOptions struct {
	envFile string
	debug   bool
}

// app holds what subcommands need once the database is open.
type app struct {
	db          *sql.DB
	poster      *posting.Service
	wallets     *service.WalletService
	idempotency *repository.IdempotencyRepository
	logger      *slog.Logger
}

func (a *app) Close() error { return a.db.Close() }

func Execute() error {
	return NewRootCmd().ExecuteContext(context.Background())
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "ledgerctl",
		Short:        "Operate the shop ledger from the command line",
		SilenceUsage: true,
		Long: `ledgerctl posts transactions and inspects wallets without going
through the HTTP API.

Example:
  ledgerctl post --wallet 3 --type 4 --amount 40.00 --description "invoice 118"
  ledgerctl balance --wallet 3
  ledgerctl history --wallet 3 --limit 10`,
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load before the environment")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newPostCmd(opts),
		newBalanceCmd(opts),
		newHistoryCmd(opts),
		newSweepCmd(opts),
	)
	return root
}

// openApp loads config and opens the database. Logs go to stderr so stdout
// stays clean for command output.
func openApp(ctx context.Context, opts *rootOptions, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if opts.debug {
		level = "debug"
	}
	logger := logging.New(stderr, "ledgerctl", level, "development")
	slog.SetDefault(logger)

	db, err := repository.OpenPostgres(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("openApp: %w", err)
	}

	wallets := repository.NewWalletRepository(db)
	types := cache.NewTransactionTypes(repository.NewTransactionTypeRepository(db), nil, 0)

	return &app{
		db: db,
		poster: posting.NewService(
			wallets,
			types,
			repository.NewTransactionRepository(db),
			repository.NewAccountingEntryRepository(db),
			db,
		),
		wallets:     service.NewWalletService(wallets),
		idempotency: repository.NewIdempotencyRepository(db),
		logger:      logger,
	}, nil
}
