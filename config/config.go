package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Feed is one configured syndication feed. Feeds are owned by configuration
// and read-only for the crawler.
type Feed struct {
	ID     string `toml:"id"`
	RSS    string `toml:"rss"`
	Locale string `toml:"locale"`
}

// Config represents the top-level feeds configuration
type Config struct {
	Feeds []Feed `toml:"feeds"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SaveConfig writes the configuration back to disk. Used by the feeds
// management commands.
func SaveConfig(path string, config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(config); err != nil {
		return fmt.Errorf("error encoding config file: %w", err)
	}

	return nil
}

// Validate checks that every feed has an id, an RSS URL and a locale, and
// that feed ids are unique.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Feeds))

	for i, feed := range c.Feeds {
		if feed.ID == "" {
			return fmt.Errorf("feed %d: missing id", i)
		}
		// The feed id is joined with the item guid by "@" to derive the
		// stable headline id, so it must not contain the separator itself
		if strings.Contains(feed.ID, "@") {
			return fmt.Errorf("feed %q: id must not contain '@'", feed.ID)
		}
		if feed.RSS == "" {
			return fmt.Errorf("feed %q: missing rss url", feed.ID)
		}
		if feed.Locale == "" {
			return fmt.Errorf("feed %q: missing locale", feed.ID)
		}
		if seen[feed.ID] {
			return fmt.Errorf("feed %q: duplicate id", feed.ID)
		}
		seen[feed.ID] = true
	}

	return nil
}
