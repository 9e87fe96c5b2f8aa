package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"headlines/config"
	"headlines/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// Clock supplies the current time. Injected so tests can run against a fixed
// timestamp.
type Clock func() time.Time

// Store is the narrow persistence interface the crawler writes through.
type Store interface {
	// GetHeadlinesByIDs returns snapshots for exactly the subset of ids that
	// exist. Missing ids are simply absent from the map.
	GetHeadlinesByIDs(ctx context.Context, ids []string) (map[string]models.HeadlineSnapshot, error)

	// CreateHeadline inserts a new headline with its first title revision.
	// Returns models.ErrConflict if the id already exists.
	CreateHeadline(ctx context.Context, headline models.Headline) error

	// AppendTitleRevision atomically records a new title for an existing
	// headline. Returns models.ErrNotFound if the id is unknown.
	AppendTitleRevision(ctx context.Context, id string, title string, changed time.Time) error

	// RecordUpdateStat appends one per-cycle change-count statistic.
	RecordUpdateStat(ctx context.Context, feed string, locale string, recordedAt time.Time, updated int) error
}

// CycleResult summarizes one feed's batch after classification.
type CycleResult struct {
	Created   int
	Changed   int
	Unchanged int
	Skipped   int
	Defects   int
}

// Engine classifies fetched feed items against stored headline state and
// applies the resulting mutations.
type Engine struct {
	store Store
	clock Clock
}

func NewEngine(store Store, clock Clock) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{store: store, clock: clock}
}

// validItem reports whether an item carries everything classification needs.
// Items failing this are a filtering contract, not an error: they are omitted
// from both change detection and counts.
func validItem(item models.FeedItem) bool {
	return item.GUID != "" && item.Title != "" && item.Link != ""
}

// ProcessFeed runs change detection for one feed's fetched batch.
//
// The store is consulted once, for exactly the ids present in the batch.
// After that all classification runs against rolling in-memory state, so a
// guid that appears twice in one document sees the first occurrence's effect
// instead of double-inserting against the stale lookup.
//
// Integrity defects (conflicting create, append against an unknown id) are
// logged and skipped without aborting the rest of the batch. Any other store
// error aborts this feed's cycle.
func (e *Engine) ProcessFeed(ctx context.Context, feed config.Feed, items []models.FeedItem) (CycleResult, error) {
	result := CycleResult{}

	valid := lo.Filter(items, func(item models.FeedItem, _ int) bool {
		return validItem(item)
	})
	result.Skipped = len(items) - len(valid)

	ids := lo.Uniq(lo.Map(valid, func(item models.FeedItem, _ int) string {
		return ItemID(feed.ID, item.GUID)
	}))

	known, err := e.store.GetHeadlinesByIDs(ctx, ids)
	if err != nil {
		return result, fmt.Errorf("lookup for feed %s: %w", feed.ID, err)
	}

	for _, item := range valid {
		id := ItemID(feed.ID, item.GUID)
		hash := TitleHash(item.Title)
		now := e.clock()

		snapshot, exists := known[id]

		switch {
		case !exists:
			headline := models.Headline{
				ID:              id,
				Feed:            feed.ID,
				Locale:          feed.Locale,
				Link:            item.Link,
				LatestTitleHash: hash,
				TitleChanged:    false,
				Created:         now,
				Changed:         now,
				Titles: []models.TitleRevision{
					{Title: item.Title, Changed: now},
				},
			}

			if err := e.store.CreateHeadline(ctx, headline); err != nil {
				if errors.Is(err, models.ErrConflict) {
					log.WithFields(log.Fields{
						"feed": feed.ID,
						"id":   id,
					}).Error("Headline already exists, skipping item")
					result.Defects++
					continue
				}
				return result, fmt.Errorf("create headline %s: %w", id, err)
			}

			log.WithFields(log.Fields{"feed": feed.ID, "id": id}).Debug("+ headline created")
			known[id] = models.HeadlineSnapshot{ID: id, LatestTitleHash: hash}
			result.Created++

		case snapshot.LatestTitleHash != hash:
			if err := e.store.AppendTitleRevision(ctx, id, item.Title, now); err != nil {
				if errors.Is(err, models.ErrNotFound) {
					log.WithFields(log.Fields{
						"feed": feed.ID,
						"id":   id,
					}).Error("Headline vanished between lookup and append, skipping item")
					result.Defects++
					continue
				}
				return result, fmt.Errorf("append revision %s: %w", id, err)
			}

			log.WithFields(log.Fields{"feed": feed.ID, "id": id}).Debug("~ title changed")
			known[id] = models.HeadlineSnapshot{ID: id, LatestTitleHash: hash}
			result.Changed++

		default:
			result.Unchanged++
		}
	}

	return result, nil
}
