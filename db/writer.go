package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"headlines/crawler"
	"headlines/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// uniqueViolation is the Postgres error code for duplicate primary keys
const uniqueViolation = "23505"

// GetHeadlinesByIDs returns snapshots for exactly the ids that exist.
func (db *DB) GetHeadlinesByIDs(ctx context.Context, ids []string) (map[string]models.HeadlineSnapshot, error) {
	snapshots := make(map[string]models.HeadlineSnapshot, len(ids))
	if len(ids) == 0 {
		return snapshots, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "latest_title_hash").From("headlines")
	sb.Where(fmt.Sprintf("id = ANY(%s)", sb.Args.Add(pq.Array(ids))))

	query, args := sb.Build()

	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var snapshot models.HeadlineSnapshot
		if err := rows.Scan(&snapshot.ID, &snapshot.LatestTitleHash); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		snapshots[snapshot.ID] = snapshot
	}

	return snapshots, rows.Err()
}

// CreateHeadline inserts a new headline together with its first title
// revision. Returns models.ErrConflict if the id already exists.
func (db *DB) CreateHeadline(ctx context.Context, headline models.Headline) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	log.WithFields(log.Fields{
		"id":   headline.ID,
		"feed": headline.Feed,
	}).Debug("Creating headline")

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin error: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO headlines (id, feed, locale, link, latest_title_hash, title_changed, created, changed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		headline.ID,
		headline.Feed,
		headline.Locale,
		headline.Link,
		headline.LatestTitleHash,
		headline.TitleChanged,
		headline.Created,
		headline.Changed,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.ErrConflict
		}
		return fmt.Errorf("insert error: %w", err)
	}

	for _, revision := range headline.Titles {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO headline_titles (headline_id, title, changed)
			VALUES ($1, $2, $3)`,
			headline.ID,
			revision.Title,
			revision.Changed,
		)
		if err != nil {
			return fmt.Errorf("insert revision error: %w", err)
		}
	}

	return tx.Commit()
}

// AppendTitleRevision records a new title for an existing headline. The
// fingerprint update and the revision insert commit together or not at all.
// Returns models.ErrNotFound if the id is unknown.
func (db *DB) AppendTitleRevision(ctx context.Context, id string, title string, changed time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	log.WithFields(log.Fields{"id": id}).Debug("Appending title revision")

	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin error: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE headlines
		SET latest_title_hash = $1, title_changed = TRUE, changed = $2
		WHERE id = $3`,
		crawler.TitleHash(title),
		changed,
		id,
	)
	if err != nil {
		return fmt.Errorf("update error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if affected == 0 {
		return models.ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO headline_titles (headline_id, title, changed)
		VALUES ($1, $2, $3)`,
		id,
		title,
		changed,
	)
	if err != nil {
		return fmt.Errorf("insert revision error: %w", err)
	}

	return tx.Commit()
}

// RecordUpdateStat appends one per-cycle change-count statistic.
func (db *DB) RecordUpdateStat(ctx context.Context, feed string, locale string, recordedAt time.Time, updated int) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto("headline_update_stats")
	ib.Cols("feed", "locale", "recorded_at", "updated")
	ib.Values(feed, locale, recordedAt, updated)

	query, args := ib.Build()

	if _, err := db.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert error: %w", err)
	}

	return nil
}
