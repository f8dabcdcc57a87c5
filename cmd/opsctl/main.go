package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/opshub/opshub/internal/i18n"
	"github.com/opshub/opshub/internal/infra"
	"github.com/opshub/opshub/internal/kaiterra"
	"github.com/opshub/opshub/internal/logging"
)

var flagDatabaseURL = &cli.StringFlag{
	Name:    "database-url",
	EnvVars: []string{"DATABASE_URL"},
	Usage:   "PostgreSQL connection string",
}

var flagUsername = &cli.StringFlag{
	Name:    "username",
	EnvVars: []string{"KAITERRA_USERNAME"},
	Usage:   "Kaiterra account username",
}

var flagPassword = &cli.StringFlag{
	Name:    "password",
	EnvVars: []string{"KAITERRA_PASSWORD"},
	Usage:   "Kaiterra account password",
}

var flagUDID = &cli.StringFlag{
	Name:  "udid",
	Usage: "device UDID to register",
}

var flagBaseURL = &cli.StringFlag{
	Name:    "base-url",
	EnvVars: []string{"KAITERRA_BASE_URL"},
	Value:   kaiterra.DefaultBaseURL,
	Usage:   "Kaiterra API root",
}

var flagLocale = &cli.StringFlag{
	Name:    "locale",
	EnvVars: []string{"LOCALE"},
	Value:   "en",
	Usage:   "language of error messages",
}

var flagTimeout = &cli.DurationFlag{
	Name:    "timeout",
	EnvVars: []string{"KAITERRA_TIMEOUT"},
	Value:   30 * time.Second,
	Usage:   "timeout of each Kaiterra request",
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "opsctl",
		Usage:     "operator tooling for OpsHub",
		Writer:    out,
		ErrWriter: out,
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply the database schema",
				Flags: []cli.Flag{flagDatabaseURL},
				Action: func(cCtx *cli.Context) error {
					ctx, cancel := context.WithTimeout(cCtx.Context, time.Minute)
					defer cancel()

					pool, err := infra.NewPostgresPool(ctx, cCtx.String(flagDatabaseURL.Name))
					if err != nil {
						return err
					}
					defer pool.Close()

					if err := infra.Migrate(ctx, pool); err != nil {
						return err
					}
					fmt.Fprintln(cCtx.App.Writer, "schema up to date")
					return nil
				},
			},
			{
				Name:  "kaiterra",
				Usage: "Kaiterra integration",
				Subcommands: []*cli.Command{
					{
						Name:  "add-udid",
						Usage: "register a device UDID on a Kaiterra account",
						Flags: []cli.Flag{flagUsername, flagPassword, flagUDID, flagBaseURL, flagLocale, flagTimeout},
						Action: func(cCtx *cli.Context) error {
							messages, err := i18n.Load(cCtx.String(flagLocale.Name))
							if err != nil {
								return err
							}
							registrar := kaiterra.New(kaiterra.Options{
								BaseURL:    cCtx.String(flagBaseURL.Name),
								HTTPClient: &http.Client{Timeout: cCtx.Duration(flagTimeout.Name)},
								Messages:   messages,
								Logger:     logging.Discard(),
							})

							res, err := registrar.Register(cCtx.Context, kaiterra.Request{
								Username: cCtx.String(flagUsername.Name),
								Password: cCtx.String(flagPassword.Name),
								UDID:     cCtx.String(flagUDID.Name),
							})
							if err != nil {
								return fmt.Errorf("%s (%s)", err.Error(), kaiterra.KindOf(err))
							}
							fmt.Fprintln(cCtx.App.Writer, string(res.Payload))
							return nil
						},
					},
				},
			},
		},
	}
}

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
