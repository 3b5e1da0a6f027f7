// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command fitmatectl is the operator CLI: it inspects local accounts and
// drives the external identity provider from a terminal.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/taibuivan/fitmate/cmd/fitmatectl/accounts"
	"github.com/taibuivan/fitmate/cmd/fitmatectl/identitycmd"
	"github.com/taibuivan/fitmate/internal/platform/constants"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})).With(slog.String("app", "fitmatectl"))
	slog.SetDefault(log)

	app := &cli.App{
		Name:    "fitmatectl",
		Usage:   "Operate a Fitmate deployment",
		Version: constants.AppVersion,
		Commands: []*cli.Command{
			accounts.Cmd(log),
			identitycmd.Cmd(log),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Error("command_failed", slog.Any("error", err))
		os.Exit(1)
	}
}
