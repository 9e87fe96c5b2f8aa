package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"headlines/server"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the headlines read API",
		Description: `Starts the headlines HTTP server.

Exposes the most recently changed headlines and per-feed change counts from
the database. The server only reads; run the crawl command (in the same or a
separate process) to keep the data moving.`,
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Port to listen on",
				EnvVars: []string{"HEADLINES_PORT"},
				Value:   3000,
			},
		}, dbFlags()...),
		Action: func(ctx *cli.Context) error {
			database, err := connectDB(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			app := server.Server(&server.ServerConfig{
				Reader: database,
			})

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

			go func() {
				<-c
				log.Info("Gracefully shutting down...")
				if err := app.ShutdownWithTimeout(60 * time.Second); err != nil {
					log.Error("Error shutting down server", err)
				}
			}()

			log.WithFields(log.Fields{"port": ctx.Int("port")}).Info("Starting server")
			if err := app.Listen(fmt.Sprintf(":%d", ctx.Int("port"))); err != nil {
				return err
			}

			log.Info("Done!")
			return nil
		},
	}
}
