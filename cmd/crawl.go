package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"headlines/config"
	"headlines/crawler"
	"headlines/fetch"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func crawlCmd() *cli.Command {
	return &cli.Command{
		Name:  "crawl",
		Usage: "Poll the configured feeds and record title changes",
		Description: `Starts the headline crawler.

Every interval the crawler fetches all feeds from the feed configuration,
classifies each item as new, changed or unchanged against the stored state,
appends a title revision for every change and records per-feed change counts.

A failing feed is logged and skipped; the cycle always finishes and the feed
is retried on the next interval. Run a single crawler per database.`,
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "feeds",
				Usage:   "Path to the feeds configuration file",
				EnvVars: []string{"HEADLINES_FEEDS"},
				Value:   "feeds.toml",
			},
			&cli.IntFlag{
				Name:    "interval",
				Usage:   "Minutes between poll cycles",
				EnvVars: []string{"HEADLINES_INTERVAL"},
				Value:   5,
			},
			&cli.IntFlag{
				Name:    "fetch-timeout",
				Usage:   "Seconds before a single feed fetch is aborted",
				EnvVars: []string{"HEADLINES_FETCH_TIMEOUT"},
				Value:   30,
			},
		}, dbFlags()...),
		Action: func(ctx *cli.Context) error {
			cfg, err := config.LoadConfig(ctx.String("feeds"))
			if err != nil {
				return err
			}

			log.WithFields(log.Fields{
				"feeds":    len(cfg.Feeds),
				"interval": ctx.Int("interval"),
			}).Info("Starting crawler")

			database, err := connectDB(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			fetchTimeout := time.Duration(ctx.Int("fetch-timeout")) * time.Second

			scheduler := crawler.NewScheduler(
				cfg.Feeds,
				fetch.NewFetcher(fetchTimeout),
				database,
				time.Now,
				crawler.SchedulerConfig{
					Interval:     time.Duration(ctx.Int("interval")) * time.Minute,
					FetchTimeout: fetchTimeout,
				},
			)

			runCtx, stop := signal.NotifyContext(ctx.Context, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := scheduler.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			log.Info("Done!")
			return nil
		},
	}
}
