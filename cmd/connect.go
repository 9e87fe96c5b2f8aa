package cmd

import (
	"context"
	"fmt"
	"time"

	"headlines/db"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// connectDB opens the database and pings it with bounded exponential backoff.
// If the database stays unreachable the process fails at startup instead of
// limping along without a store.
func connectDB(ctx *cli.Context) (*db.DB, error) {
	database, err := db.NewDB(
		ctx.String("db-host"),
		ctx.Int("db-port"),
		ctx.String("db-user"),
		ctx.String("db-password"),
		ctx.String("db-name"),
	)
	if err != nil {
		return nil, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 5 * time.Second
	bo.MaxElapsedTime = 30 * time.Second

	ping := func() error {
		pingCtx, cancel := context.WithTimeout(ctx.Context, 5*time.Second)
		defer cancel()

		if err := database.Ping(pingCtx); err != nil {
			log.WithFields(log.Fields{"error": err}).Warn("Database not reachable, retrying...")
			return err
		}
		return nil
	}

	if err := backoff.Retry(ping, backoff.WithContext(bo, ctx.Context)); err != nil {
		database.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return database, nil
}
