package cmd

import (
	"fmt"

	"headlines/config"

	"github.com/cqroot/prompt"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
)

func feedsCmd() *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "feeds",
		Usage:   "Path to the feeds configuration file",
		EnvVars: []string{"HEADLINES_FEEDS"},
		Value:   "feeds.toml",
	}

	return &cli.Command{
		Name:  "feeds",
		Usage: "Manage the configured feeds",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a feed to the configuration",
				Flags: []cli.Flag{configFlag},
				Action: func(ctx *cli.Context) error {
					cfg, err := config.LoadConfig(ctx.String("feeds"))
					if err != nil {
						return err
					}

					id, err := prompt.New().Ask("Feed id:").Input("spiegel")
					if err != nil {
						return err
					}

					if _, exists := lo.Find(cfg.Feeds, func(f config.Feed) bool { return f.ID == id }); exists {
						return fmt.Errorf("feed %q already configured", id)
					}

					rss, err := prompt.New().Ask("RSS url:").Input("https://example.com/index.rss")
					if err != nil {
						return err
					}

					locale, err := prompt.New().Ask("Locale:").Input("de")
					if err != nil {
						return err
					}

					cfg.Feeds = append(cfg.Feeds, config.Feed{ID: id, RSS: rss, Locale: locale})

					if err := config.SaveConfig(ctx.String("feeds"), cfg); err != nil {
						return err
					}

					fmt.Printf("Added feed %s (%s)\n", id, locale)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List the configured feeds",
				Flags: []cli.Flag{configFlag},
				Action: func(ctx *cli.Context) error {
					cfg, err := config.LoadConfig(ctx.String("feeds"))
					if err != nil {
						return err
					}

					for _, feed := range cfg.Feeds {
						fmt.Printf("%s\t%s\t%s\n", feed.ID, feed.Locale, feed.RSS)
					}
					return nil
				},
			},
		},
	}
}
