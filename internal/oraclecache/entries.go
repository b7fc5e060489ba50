package oraclecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// Entry is one cached oracle response.
type Entry struct {
	Args      string
	Value     float64
	RangeMiss bool
	CreatedAt time.Time
}

// Stats summarizes cache contents.
type Stats struct {
	Entries     int
	RangeMisses int
	Oldest      time.Time
	Newest      time.Time
	SizeBytes   int64
}

// Get returns the entry stored for args.
func (s *Store) Get(ctx context.Context, args string) (Entry, bool, error) {
	var (
		entry   Entry
		miss    int
		created string
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"SELECT args, value, range_miss, created_at FROM oracle_responses WHERE args = ?", args,
		).Scan(&entry.Args, &entry.Value, &miss, &created)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get cached response: %w", err)
	}
	entry.RangeMiss = miss != 0
	entry.CreatedAt = parseTime(created)
	return entry, true, nil
}

// Put stores or replaces the entry for entry.Args.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	miss := 0
	if entry.RangeMiss {
		miss = 1
	}
	err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO oracle_responses (args, value, range_miss, created_at) VALUES (?, ?, ?, ?)
			 ON CONFLICT(args) DO UPDATE SET value = excluded.value, range_miss = excluded.range_miss, created_at = excluded.created_at`,
			entry.Args, entry.Value, miss, entry.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("put cached response: %w", err)
	}
	return nil
}

// Stats reports entry counts, the age range, and the on-disk size including
// the write-ahead log.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var (
		stats          Stats
		misses         sql.NullInt64
		oldest, newest sql.NullString
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			"SELECT COUNT(1), SUM(range_miss), MIN(created_at), MAX(created_at) FROM oracle_responses",
		).Scan(&stats.Entries, &misses, &oldest, &newest)
	})
	if err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	stats.RangeMisses = int(misses.Int64)
	if oldest.Valid {
		stats.Oldest = parseTime(oldest.String)
	}
	if newest.Valid {
		stats.Newest = parseTime(newest.String)
	}
	for _, file := range []string{s.path, s.path + "-wal"} {
		if info, err := os.Stat(file); err == nil {
			stats.SizeBytes += info.Size()
		}
	}
	return stats, nil
}

// Clear removes every entry and returns how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(ctx, "DELETE FROM oracle_responses")
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return n, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
