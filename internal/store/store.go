// Package store keeps a health log of feed fetches in SQLite. Only per-feed
// outcomes are stored, never item content.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ppiankov/feedbrief/internal/feed"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// FeedStats aggregates the recorded runs of one feed URL.
type FeedStats struct {
	URL         string
	Runs        int
	Failures    int
	AvgItems    float64
	AvgDuration time.Duration
	LastError   string
	LastSuccess time.Time // zero if the feed never succeeded in the window
	LastRun     time.Time
}

// FailureRate is the share of runs that failed, 0 when there are no runs.
func (fs FeedStats) FailureRate() float64 {
	if fs.Runs == 0 {
		return 0
	}
	return float64(fs.Failures) / float64(fs.Runs)
}

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("path is required")
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Concurrent bot handlers share the file; one writer at a time.
	db.SetMaxOpenConns(1)

	if err := migrate(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun stores one row per feed result, all stamped with at and a
// fresh collection id.
func (s *Store) RecordRun(ctx context.Context, at time.Time, results []feed.FeedResult) error {
	if s == nil || s.db == nil {
		return errors.New("store is not initialized")
	}
	if at.IsZero() {
		return errors.New("run time is required")
	}
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO feed_runs (run_id, url, items, error, duration_ms, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	runID := uuid.NewString()
	fetchedAt := formatTime(at)
	for _, r := range results {
		if strings.TrimSpace(r.URL) == "" {
			_ = tx.Rollback()
			return errors.New("feed url is required")
		}
		var errVal sql.NullString
		if r.Err != nil {
			errVal = sql.NullString{String: r.Err.Error(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, runID, r.URL, r.Items, errVal, r.Duration.Milliseconds(), fetchedAt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert feed run: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit feed runs: %w", err)
	}
	slog.Debug("feed run recorded", "run", runID, "feeds", len(results))
	return nil
}

// Collections counts the distinct collections recorded at or after since.
func (s *Store) Collections(ctx context.Context, since time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("store is not initialized")
	}

	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT run_id) FROM feed_runs WHERE fetched_at >= ?", formatTime(since),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count collections: %w", err)
	}
	return n, nil
}

// FeedStats returns per-URL aggregates for runs at or after since, ordered by URL.
func (s *Store) FeedStats(ctx context.Context, since time.Time) ([]FeedStats, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store is not initialized")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.url,
			COUNT(*) AS runs,
			SUM(CASE WHEN r.error IS NOT NULL THEN 1 ELSE 0 END) AS failures,
			AVG(r.items) AS avg_items,
			AVG(r.duration_ms) AS avg_ms,
			MAX(CASE WHEN r.error IS NULL THEN r.fetched_at END) AS last_success,
			MAX(r.fetched_at) AS last_run,
			(SELECT e.error FROM feed_runs e
				WHERE e.url = r.url AND e.fetched_at >= ? AND e.error IS NOT NULL
				ORDER BY e.fetched_at DESC, e.id DESC LIMIT 1) AS last_error
		FROM feed_runs r
		WHERE r.fetched_at >= ?
		GROUP BY r.url
		ORDER BY r.url
	`, formatTime(since), formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("get feed stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []FeedStats
	for rows.Next() {
		var (
			fs                   FeedStats
			avgMs                float64
			lastSuccess, lastErr sql.NullString
			lastRun              string
		)
		if err := rows.Scan(&fs.URL, &fs.Runs, &fs.Failures, &fs.AvgItems, &avgMs, &lastSuccess, &lastRun, &lastErr); err != nil {
			return nil, fmt.Errorf("scan feed stats: %w", err)
		}
		fs.AvgDuration = time.Duration(avgMs * float64(time.Millisecond))
		if lastSuccess.Valid {
			if fs.LastSuccess, err = parseTime(lastSuccess.String); err != nil {
				return nil, fmt.Errorf("parse last_success: %w", err)
			}
		}
		if fs.LastRun, err = parseTime(lastRun); err != nil {
			return nil, fmt.Errorf("parse last_run: %w", err)
		}
		if lastErr.Valid {
			fs.LastError = lastErr.String
		}
		stats = append(stats, fs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feed stats: %w", err)
	}

	return stats, nil
}

// PruneOld deletes runs older than retainDays. Returns the number of rows removed.
func (s *Store) PruneOld(ctx context.Context, retainDays int) (int64, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("store is not initialized")
	}
	if retainDays <= 0 {
		return 0, nil
	}

	cutoff := formatTime(s.now().AddDate(0, 0, -retainDays))
	res, err := s.db.ExecContext(ctx, "DELETE FROM feed_runs WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune old runs: %w", err)
	}

	n, _ := res.RowsAffected()
	return n, nil
}

// formatTime uses a fixed-width layout so stored timestamps sort as text.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}
