package crawler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"headlines/config"
	"headlines/crawler"
	"headlines/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFeed = config.Feed{ID: "spiegel", RSS: "https://example.com/index.rss", Locale: "de"}

func fixedClock(t time.Time) crawler.Clock {
	return func() time.Time { return t }
}

func TestProcessFeedNewItems(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := crawler.NewEngine(store, fixedClock(now))

	items := []models.FeedItem{
		{GUID: "a", Title: "Foo", Link: "http://x/a"},
		{GUID: "b", Title: "Bar", Link: "http://x/b"},
	}

	result, err := engine.ProcessFeed(context.Background(), testFeed, items)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Changed)
	assert.Equal(t, 0, result.Unchanged)
	assert.Len(t, store.headlines, 2)

	headline := store.headlines[crawler.ItemID("spiegel", "a")]
	require.NotNil(t, headline)
	assert.Equal(t, "spiegel", headline.Feed)
	assert.Equal(t, "de", headline.Locale)
	assert.Equal(t, "http://x/a", headline.Link)
	assert.False(t, headline.TitleChanged)
	assert.Equal(t, now, headline.Created)
	assert.Equal(t, now, headline.Changed)
	require.Len(t, headline.Titles, 1)
	assert.Equal(t, "Foo", headline.Titles[0].Title)
	assert.Equal(t, crawler.TitleHash("Foo"), headline.LatestTitleHash)
}

func TestProcessFeedChangedAndUnchanged(t *testing.T) {
	store := newFakeStore()
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	engine := crawler.NewEngine(store, fixedClock(created))

	items := []models.FeedItem{
		{GUID: "a", Title: "Foo", Link: "http://x/a"},
		{GUID: "b", Title: "Bar", Link: "http://x/b"},
	}
	_, err := engine.ProcessFeed(context.Background(), testFeed, items)
	require.NoError(t, err)

	// Second cycle: a's title changed, b's did not
	later := created.Add(10 * time.Minute)
	engine = crawler.NewEngine(store, fixedClock(later))

	items = []models.FeedItem{
		{GUID: "a", Title: "Foo2", Link: "http://x/a"},
		{GUID: "b", Title: "Bar", Link: "http://x/b"},
	}
	result, err := engine.ProcessFeed(context.Background(), testFeed, items)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Changed)
	assert.Equal(t, 1, result.Unchanged)

	headline := store.headlines[crawler.ItemID("spiegel", "a")]
	require.Len(t, headline.Titles, 2)
	assert.Equal(t, "Foo", headline.Titles[0].Title)
	assert.Equal(t, "Foo2", headline.Titles[1].Title)
	assert.True(t, headline.TitleChanged)
	assert.Equal(t, later, headline.Changed)
	assert.Equal(t, created, headline.Created)
	assert.Equal(t, crawler.TitleHash("Foo2"), headline.LatestTitleHash)

	unchanged := store.headlines[crawler.ItemID("spiegel", "b")]
	assert.Len(t, unchanged.Titles, 1)
	assert.False(t, unchanged.TitleChanged)
}

func TestProcessFeedIdempotent(t *testing.T) {
	store := newFakeStore()
	engine := crawler.NewEngine(store, fixedClock(time.Now()))

	items := []models.FeedItem{
		{GUID: "a", Title: "Foo", Link: "http://x/a"},
		{GUID: "b", Title: "Bar", Link: "http://x/b"},
	}

	_, err := engine.ProcessFeed(context.Background(), testFeed, items)
	require.NoError(t, err)

	// Same batch again: nothing moves
	result, err := engine.ProcessFeed(context.Background(), testFeed, items)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, result.Changed)
	assert.Equal(t, 2, result.Unchanged)

	for _, headline := range store.headlines {
		assert.Len(t, headline.Titles, 1)
		assert.False(t, headline.TitleChanged)
	}
}

func TestProcessFeedSkipsInvalidItems(t *testing.T) {
	tests := []struct {
		name string
		item models.FeedItem
	}{
		{name: "missing title", item: models.FeedItem{GUID: "a", Link: "http://x/a"}},
		{name: "missing guid", item: models.FeedItem{Title: "Foo", Link: "http://x/a"}},
		{name: "missing link", item: models.FeedItem{GUID: "a", Title: "Foo"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			engine := crawler.NewEngine(store, fixedClock(time.Now()))

			result, err := engine.ProcessFeed(context.Background(), testFeed, []models.FeedItem{tt.item})
			require.NoError(t, err)

			assert.Equal(t, 1, result.Skipped)
			assert.Equal(t, 0, result.Created)
			assert.Empty(t, store.headlines)
		})
	}
}

func TestProcessFeedDuplicateGuidInBatch(t *testing.T) {
	store := newFakeStore()
	engine := crawler.NewEngine(store, fixedClock(time.Now()))

	// Same guid twice in one document: the second occurrence must see the
	// first one's insert, not the stale lookup
	items := []models.FeedItem{
		{GUID: "c", Title: "X", Link: "http://x/c"},
		{GUID: "c", Title: "Y", Link: "http://x/c"},
	}

	result, err := engine.ProcessFeed(context.Background(), testFeed, items)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Changed)
	assert.Len(t, store.headlines, 1)

	headline := store.headlines[crawler.ItemID("spiegel", "c")]
	require.Len(t, headline.Titles, 2)
	assert.Equal(t, "X", headline.Titles[0].Title)
	assert.Equal(t, "Y", headline.Titles[1].Title)
	assert.Equal(t, crawler.TitleHash("Y"), headline.LatestTitleHash)
}

func TestProcessFeedLooksUpOnlyBatchIds(t *testing.T) {
	store := newFakeStore()
	engine := crawler.NewEngine(store, fixedClock(time.Now()))

	items := []models.FeedItem{
		{GUID: "a", Title: "Foo", Link: "http://x/a"},
		{GUID: "a", Title: "Foo", Link: "http://x/a"},
		{GUID: "b", Title: "Bar", Link: "http://x/b"},
		{GUID: "", Title: "Nope", Link: "http://x/nope"},
	}

	_, err := engine.ProcessFeed(context.Background(), testFeed, items)
	require.NoError(t, err)

	require.Len(t, store.lookups, 1)
	assert.ElementsMatch(t, []string{
		crawler.ItemID("spiegel", "a"),
		crawler.ItemID("spiegel", "b"),
	}, store.lookups[0])
}

func TestProcessFeedIntegrityDefectsDoNotAbortBatch(t *testing.T) {
	store := newFakeStore()
	engine := crawler.NewEngine(store, fixedClock(time.Now()))

	store.createErr = models.ErrConflict

	items := []models.FeedItem{
		{GUID: "a", Title: "Foo", Link: "http://x/a"},
		{GUID: "b", Title: "Bar", Link: "http://x/b"},
	}

	result, err := engine.ProcessFeed(context.Background(), testFeed, items)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Defects)
	assert.Equal(t, 0, result.Created)
}

func TestProcessFeedStoreFailureAbortsFeedCycle(t *testing.T) {
	store := newFakeStore()
	engine := crawler.NewEngine(store, fixedClock(time.Now()))

	store.createErr = errors.New("connection refused")

	_, err := engine.ProcessFeed(context.Background(), testFeed, []models.FeedItem{
		{GUID: "a", Title: "Foo", Link: "http://x/a"},
	})
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection refused")
}
