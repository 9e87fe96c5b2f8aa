package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "headlines",
		Usage: "Track title changes in syndication feeds",
		Description: `Headlines polls a set of RSS/Atom feeds on a fixed interval,
		detects when a published item's title has changed since it was last
		seen, and keeps an append-only history of every title revision.

		The crawl command runs the poll loop, the serve command exposes the
		recorded changes and per-feed statistics over an HTTP API. Both can
		run at the same time against the same database.

		Flags can generally be set via environment variables, e.g.:

		--db-host => HEADLINES_DB_HOST=localhost
		--port => HEADLINES_PORT=3000
		`,
		Commands: []*cli.Command{
			serveCmd(),
			crawlCmd(),
			migrateCmd(),
			rollbackCmd(),
			feedsCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// Database flags shared by every command that touches Postgres
func dbFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db-host",
			Usage:   "PostgreSQL host",
			EnvVars: []string{"HEADLINES_DB_HOST"},
			Value:   "localhost",
		},
		&cli.IntFlag{
			Name:    "db-port",
			Usage:   "PostgreSQL port",
			EnvVars: []string{"HEADLINES_DB_PORT"},
			Value:   5432,
		},
		&cli.StringFlag{
			Name:    "db-user",
			Usage:   "PostgreSQL user",
			EnvVars: []string{"HEADLINES_DB_USER"},
			Value:   "headlines",
		},
		&cli.StringFlag{
			Name:    "db-password",
			Usage:   "PostgreSQL password",
			EnvVars: []string{"HEADLINES_DB_PASSWORD"},
			Value:   "headlines",
		},
		&cli.StringFlag{
			Name:    "db-name",
			Usage:   "PostgreSQL database name",
			EnvVars: []string{"HEADLINES_DB_NAME"},
			Value:   "headlines",
		},
	}
}
