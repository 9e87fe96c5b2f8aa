package models

import (
	"errors"
	"time"
)

// Store sentinel errors. The snapshot store maps driver-level failures to
// these so the crawler can tell integrity defects from transient failures.
var (
	// ErrConflict is returned when creating a headline whose id already exists
	ErrConflict = errors.New("headline already exists")

	// ErrNotFound is returned when appending a revision to an unknown headline
	ErrNotFound = errors.New("headline not found")
)

// FeedItem is one entry of a fetched feed document. It only lives for the
// duration of a single poll cycle and is never persisted directly.
type FeedItem struct {
	GUID  string
	Title string
	Link  string
}

// TitleRevision is one historical title value. Revisions are appended in
// chronological order and never edited.
type TitleRevision struct {
	Title   string    `json:"title"`
	Changed time.Time `json:"changed"`
}

// Headline is the durable record for one feed item, keyed by the stable id
// derived from (feed id, guid).
type Headline struct {
	ID              string          `json:"id"`
	Feed            string          `json:"feed"`
	Locale          string          `json:"locale"`
	Link            string          `json:"link"`
	LatestTitleHash string          `json:"latestTitleHash"`
	TitleChanged    bool            `json:"titleChanged"`
	Created         time.Time       `json:"created"`
	Changed         time.Time       `json:"changed"`
	Titles          []TitleRevision `json:"titles"`
}

// HeadlineSnapshot is the subset of a headline the change-detection engine
// needs to classify an incoming item.
type HeadlineSnapshot struct {
	ID              string
	LatestTitleHash string
}

// UpdateStat records how many headlines of one feed changed during one poll
// cycle. Append-only, consumed as a group-by-feed sum on the read side.
type UpdateStat struct {
	Feed       string    `json:"feed"`
	Locale     string    `json:"locale"`
	RecordedAt time.Time `json:"recordedAt"`
	Updated    int       `json:"updated"`
}

// HeadlineChange is the read API shape for one revised headline. Timestamps
// are unix seconds.
type HeadlineChange struct {
	ChangedTitle  string `json:"changedTitle"`
	OriginalTitle string `json:"originalTitle"`
	Link          string `json:"link"`
	Changed       int64  `json:"changed"`
	Created       int64  `json:"created"`
}

// FeedUpdateCount is the read API shape for per-feed change totals.
type FeedUpdateCount struct {
	Feed    string `json:"feed"`
	Updates int64  `json:"updates"`
}
