package crawler_test

import (
	"context"
	"time"

	"headlines/crawler"
	"headlines/models"
)

// fakeStore is an in-memory Store with the same conflict and not-found
// semantics as the real database.
type fakeStore struct {
	headlines map[string]*models.Headline
	stats     []models.UpdateStat
	lookups   [][]string

	createErr error
	appendErr error
	statErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		headlines: make(map[string]*models.Headline),
	}
}

func (s *fakeStore) GetHeadlinesByIDs(_ context.Context, ids []string) (map[string]models.HeadlineSnapshot, error) {
	s.lookups = append(s.lookups, ids)

	snapshots := make(map[string]models.HeadlineSnapshot)
	for _, id := range ids {
		if headline, ok := s.headlines[id]; ok {
			snapshots[id] = models.HeadlineSnapshot{
				ID:              headline.ID,
				LatestTitleHash: headline.LatestTitleHash,
			}
		}
	}
	return snapshots, nil
}

func (s *fakeStore) CreateHeadline(_ context.Context, headline models.Headline) error {
	if s.createErr != nil {
		return s.createErr
	}
	if _, exists := s.headlines[headline.ID]; exists {
		return models.ErrConflict
	}
	s.headlines[headline.ID] = &headline
	return nil
}

func (s *fakeStore) AppendTitleRevision(_ context.Context, id string, title string, changed time.Time) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	headline, exists := s.headlines[id]
	if !exists {
		return models.ErrNotFound
	}

	headline.Titles = append(headline.Titles, models.TitleRevision{Title: title, Changed: changed})
	headline.LatestTitleHash = crawler.TitleHash(title)
	headline.TitleChanged = true
	headline.Changed = changed
	return nil
}

func (s *fakeStore) RecordUpdateStat(_ context.Context, feed string, locale string, recordedAt time.Time, updated int) error {
	if s.statErr != nil {
		return s.statErr
	}
	s.stats = append(s.stats, models.UpdateStat{
		Feed:       feed,
		Locale:     locale,
		RecordedAt: recordedAt,
		Updated:    updated,
	})
	return nil
}
