// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package accounts implements the "fitmatectl accounts" command group.
package accounts

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/urfave/cli/v2"

	"github.com/taibuivan/fitmate/internal/platform/database"
	"github.com/taibuivan/fitmate/internal/platform/migration"
	pgstore "github.com/taibuivan/fitmate/internal/platform/postgres"
	"github.com/taibuivan/fitmate/internal/platform/sec"
	sqlitestore "github.com/taibuivan/fitmate/internal/platform/sqlite"
	"github.com/taibuivan/fitmate/internal/users/account"
)

// storeConfig is the slice of the server environment the command needs.
type storeConfig struct {
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite://data.sqlite"`
}

// Cmd returns the accounts command group.
func Cmd(log *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "accounts",
		Usage: "Inspect local accounts",
		Subcommands: []*cli.Command{
			listCmd(log),
		},
	}
}

func listCmd(log *slog.Logger) *cli.Command {
	var limit int
	return &cli.Command{
		Name:  "list",
		Usage: "Print the most recently created accounts",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "limit",
				Aliases:     []string{"n"},
				Usage:       "Maximum number of rows",
				Value:       20,
				Destination: &limit,
			},
		},
		Action: func(ctx *cli.Context) error {
			var cfg storeConfig
			if err := env.Parse(&cfg); err != nil {
				return fmt.Errorf("accounts: %w", err)
			}

			service, closeStore, err := openService(ctx.Context, cfg.DatabaseURL, log)
			if err != nil {
				return err
			}
			defer closeStore()

			rows, err := service.ListRecent(ctx.Context, limit)
			if err != nil {
				return err
			}
			return WriteTable(ctx.App.Writer, rows)
		},
	}
}

// openService opens the configured store and returns an account service over it.
func openService(ctx context.Context, databaseURL string, log *slog.Logger) (*account.Service, func(), error) {
	location, err := database.Parse(databaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := migration.RunUp(location, log); err != nil {
		return nil, nil, err
	}

	if location.Kind == database.KindPostgres {
		pool, err := pgstore.NewPool(ctx, location.DriverDSN(), log)
		if err != nil {
			return nil, nil, err
		}
		return account.NewService(account.NewPostgresRepository(pool), sec.DefaultHasher(), log), pool.Close, nil
	}

	db, err := sqlitestore.Open(ctx, location, log)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Error("sqlite_close_failed", slog.Any("error", err))
		}
	}
	return account.NewService(account.NewSQLiteRepository(db), sec.DefaultHasher(), log), closeDB, nil
}

// WriteTable prints one "id | email | name | created" line per account.
func WriteTable(writer io.Writer, rows []*account.Account) error {
	if _, err := fmt.Fprintln(writer, "id | email | name | created"); err != nil {
		return err
	}
	for _, row := range rows {
		_, err := fmt.Fprintf(writer, "%d | %s | %s | %s\n",
			row.ID, row.Email, row.DisplayName, row.CreatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return err
		}
	}
	return nil
}
