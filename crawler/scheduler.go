package crawler

import (
	"context"
	"time"

	"headlines/config"
	"headlines/models"

	log "github.com/sirupsen/logrus"
)

// Fetcher retrieves and parses one feed document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]models.FeedItem, error)
}

// SchedulerConfig holds the knobs for the poll loop.
type SchedulerConfig struct {
	// Interval between poll cycles
	Interval time.Duration

	// FetchTimeout bounds a single feed fetch so one unresponsive feed
	// cannot stall the whole cycle
	FetchTimeout time.Duration
}

// Scheduler drives the poll loop: every interval it walks all configured
// feeds, runs change detection and records statistics. Feeds are processed
// sequentially; a failing feed is logged and the loop moves on.
//
// One scheduler instance per store: the engine's read-compare-append sequence
// assumes no other writer touches the same headline ids concurrently.
type Scheduler struct {
	feeds      []config.Feed
	fetcher    Fetcher
	engine     *Engine
	aggregator *Aggregator
	config     SchedulerConfig
}

func NewScheduler(feeds []config.Feed, fetcher Fetcher, store Store, clock Clock, cfg SchedulerConfig) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}

	return &Scheduler{
		feeds:      feeds,
		fetcher:    fetcher,
		engine:     NewEngine(store, clock),
		aggregator: NewAggregator(store, clock),
		config:     cfg,
	}
}

// Run executes one cycle immediately, then one per interval until the
// context is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping crawler")
			return ctx.Err()
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle polls every configured feed once. Per-feed failures never abort
// the cycle; whatever could not be processed is retried unconditionally on
// the next interval.
func (s *Scheduler) RunCycle(ctx context.Context) {
	start := time.Now()

	log.WithFields(log.Fields{"feeds": len(s.feeds)}).Info("Starting poll cycle")

	for _, feed := range s.feeds {
		if ctx.Err() != nil {
			return
		}

		if err := s.pollFeed(ctx, feed); err != nil {
			log.WithFields(log.Fields{
				"feed":  feed.ID,
				"error": err,
			}).Error("Feed cycle failed")
		}
	}

	log.WithFields(log.Fields{
		"feeds":   len(s.feeds),
		"elapsed": time.Since(start),
	}).Info("Poll cycle finished")
}

func (s *Scheduler) pollFeed(ctx context.Context, feed config.Feed) error {
	fetchCtx, cancel := context.WithTimeout(ctx, s.config.FetchTimeout)
	defer cancel()

	items, err := s.fetcher.Fetch(fetchCtx, feed.RSS)
	if err != nil {
		return err
	}

	result, err := s.engine.ProcessFeed(ctx, feed, items)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"feed":      feed.ID,
		"items":     len(items),
		"created":   result.Created,
		"changed":   result.Changed,
		"unchanged": result.Unchanged,
		"skipped":   result.Skipped,
		"defects":   result.Defects,
	}).Info("Feed processed")

	return s.aggregator.Record(ctx, feed, result.Changed)
}
