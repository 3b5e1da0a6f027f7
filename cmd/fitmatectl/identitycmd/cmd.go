// Copyright (c) 2026 Fitmate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package identitycmd implements the "fitmatectl identity" command group.
package identitycmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/urfave/cli/v2"

	"github.com/taibuivan/fitmate/internal/identity"
)

// providerConfig is read on its own so the command works without the server's secrets.
type providerConfig struct {
	APIKey      string `env:"FIREBASE_API_KEY,required,notEmpty"`
	BaseURL     string `env:"IDENTITY_BASE_URL" envDefault:"https://identitytoolkit.googleapis.com/v1"`
	CustomToken string `env:"FIREBASE_CUSTOM_TOKEN"`
}

// Cmd returns the identity command group.
//
// The process-wide identity client is initialized in Before and torn down in After.
func Cmd(log *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "identity",
		Usage: "Talk to the external identity provider (password read from stdin)",
		Before: func(ctx *cli.Context) error {
			var cfg providerConfig
			if err := env.Parse(&cfg); err != nil {
				return fmt.Errorf("identity: %w", err)
			}
			return identity.Init(ctx.Context, identity.Config{
				APIKey:             cfg.APIKey,
				BaseURL:            cfg.BaseURL,
				InitialCustomToken: cfg.CustomToken,
				Logger:             log,
			})
		},
		After: func(*cli.Context) error {
			identity.Teardown()
			return nil
		},
		Subcommands: []*cli.Command{
			signUpCmd(),
			signInCmd(),
			whoAmICmd(),
		},
	}
}

func emailFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "email",
		Aliases:     []string{"e"},
		Usage:       "Account email",
		Destination: dst,
		Required:    true,
	}
}

func signUpCmd() *cli.Command {
	var email, name string
	return &cli.Command{
		Name:  "signup",
		Usage: "Create a provider user and set its display name",
		Flags: []cli.Flag{
			emailFlag(&email),
			&cli.StringFlag{
				Name:        "name",
				Usage:       "Display name",
				Destination: &name,
			},
		},
		Action: func(ctx *cli.Context) error {
			password, err := readPassword(os.Stdin)
			if err != nil {
				return err
			}
			client, err := identity.Get()
			if err != nil {
				return err
			}
			user, err := client.SignUp(ctx.Context, email, password, name)
			if err != nil {
				return err
			}
			return printIdentity(ctx.App.Writer, user)
		},
	}
}

func signInCmd() *cli.Command {
	var email string
	return &cli.Command{
		Name:  "signin",
		Usage: "Sign a provider user in",
		Flags: []cli.Flag{emailFlag(&email)},
		Action: func(ctx *cli.Context) error {
			password, err := readPassword(os.Stdin)
			if err != nil {
				return err
			}
			client, err := identity.Get()
			if err != nil {
				return err
			}
			user, err := client.SignIn(ctx.Context, email, password)
			if err != nil {
				return err
			}
			return printIdentity(ctx.App.Writer, user)
		},
	}
}

func whoAmICmd() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the identity restored from FIREBASE_CUSTOM_TOKEN, if any",
		Action: func(ctx *cli.Context) error {
			client, err := identity.Get()
			if err != nil {
				return err
			}
			user := client.CurrentUser()
			if user == nil {
				_, err := fmt.Fprintln(ctx.App.Writer, "signed out")
				return err
			}
			return printIdentity(ctx.App.Writer, user)
		},
	}
}

// readPassword takes the first line of reader.
func readPassword(reader io.Reader) (string, error) {
	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", errors.New("missing password from stdin")
	}
	password := strings.TrimRight(scanner.Text(), "\r\n")
	if password == "" {
		return "", errors.New("missing password from stdin")
	}
	return password, nil
}

func printIdentity(writer io.Writer, user *identity.Identity) error {
	_, err := fmt.Fprintf(writer, "uid=%s email=%s name=%q\n", user.UID, user.Email, user.DisplayName)
	return err
}
