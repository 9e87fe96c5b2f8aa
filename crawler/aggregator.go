package crawler

import (
	"context"
	"fmt"
	"time"

	"headlines/config"

	log "github.com/sirupsen/logrus"
)

// Aggregator persists the per-cycle change counts produced by the engine.
type Aggregator struct {
	store Store
	clock Clock
}

func NewAggregator(store Store, clock Clock) *Aggregator {
	if clock == nil {
		clock = time.Now
	}
	return &Aggregator{store: store, clock: clock}
}

// Record writes one statistic for a feed's finished cycle. Cycles without
// changes leave no trace.
func (a *Aggregator) Record(ctx context.Context, feed config.Feed, changed int) error {
	if changed == 0 {
		return nil
	}

	if err := a.store.RecordUpdateStat(ctx, feed.ID, feed.Locale, a.clock(), changed); err != nil {
		return fmt.Errorf("record update stat for feed %s: %w", feed.ID, err)
	}

	log.WithFields(log.Fields{
		"feed":    feed.ID,
		"locale":  feed.Locale,
		"updated": changed,
	}).Info("Recorded update statistic")

	return nil
}
