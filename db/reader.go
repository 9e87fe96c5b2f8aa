package db

import (
	"context"
	"fmt"
	"time"

	"headlines/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// MaxChanges caps the changes query. The read side never scans the whole
// history, it serves the most recent revisions only.
const MaxChanges = 100

// GetChanges returns the most recently revised headlines for a locale,
// newest first, together with their original and current titles.
func (db *DB) GetChanges(ctx context.Context, locale string, limit int) ([]models.HeadlineChange, error) {
	if limit <= 0 || limit > MaxChanges {
		limit = MaxChanges
	}

	log.WithFields(log.Fields{
		"locale": locale,
		"limit":  limit,
	}).Debug("Getting headline changes")

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "link", "created", "changed").From("headlines")
	sb.Where(sb.Equal("locale", locale))
	sb.Where("title_changed")
	sb.OrderBy("changed").Desc()
	sb.Limit(limit)

	query, args := sb.Build()

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	type headlineRow struct {
		id      string
		link    string
		created time.Time
		changed time.Time
	}

	var headlines []headlineRow
	var ids []string

	for rows.Next() {
		var row headlineRow
		if err := rows.Scan(&row.id, &row.link, &row.created, &row.changed); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		headlines = append(headlines, row)
		ids = append(ids, row.id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	changes := make([]models.HeadlineChange, 0, len(headlines))
	if len(headlines) == 0 {
		return changes, nil
	}

	// One revision query for the whole page; insertion order is
	// chronological order, so first row = original title, last = current.
	tb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	tb.Select("headline_id", "title").From("headline_titles")
	tb.Where(fmt.Sprintf("headline_id = ANY(%s)", tb.Args.Add(pq.Array(ids))))
	tb.OrderBy("headline_id", "changed", "id").Asc()

	query, args = tb.Build()

	titleRows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer titleRows.Close()

	original := make(map[string]string, len(ids))
	current := make(map[string]string, len(ids))

	for titleRows.Next() {
		var id, title string
		if err := titleRows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		if _, ok := original[id]; !ok {
			original[id] = title
		}
		current[id] = title
	}
	if err := titleRows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for _, row := range headlines {
		changes = append(changes, models.HeadlineChange{
			ChangedTitle:  current[row.id],
			OriginalTitle: original[row.id],
			Link:          row.link,
			Changed:       row.changed.Unix(),
			Created:       row.created.Unix(),
		})
	}

	return changes, nil
}

// GetUpdateStats sums the recorded change counts per feed within a locale,
// largest first.
func (db *DB) GetUpdateStats(ctx context.Context, locale string) ([]models.FeedUpdateCount, error) {
	log.WithFields(log.Fields{"locale": locale}).Debug("Getting update stats")

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("feed", "SUM(updated) AS updates").From("headline_update_stats")
	sb.Where(sb.Equal("locale", locale))
	sb.GroupBy("feed")
	sb.OrderBy("updates").Desc()

	query, args := sb.Build()

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	counts := make([]models.FeedUpdateCount, 0)
	for rows.Next() {
		var count models.FeedUpdateCount
		if err := rows.Scan(&count.Feed, &count.Updates); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		counts = append(counts, count)
	}

	return counts, rows.Err()
}
