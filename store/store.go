// Package store persists completed combats to SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nathoo/rosebot/engine/events"
	"github.com/nathoo/rosebot/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS combats (
	id           TEXT PRIMARY KEY,
	monster      TEXT NOT NULL,
	damage_dealt INTEGER NOT NULL,
	damage_taken INTEGER NOT NULL,
	started_at   INTEGER NOT NULL,
	ended_at     INTEGER NOT NULL,
	duration_ms  INTEGER NOT NULL,
	status       TEXT NOT NULL,
	experience   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS combats_ended_at ON combats (ended_at);
`

// Store provides SQLite-backed combat history.
type Store struct {
	sqlDB *sql.DB
	log   *zap.Logger
}

// Open opens the store at path and creates the schema. ":memory:" opens a
// private in-memory database. log may be nil.
func Open(path string, log *zap.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps an in-memory database shared across calls.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, log: log.Named("store")}, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save persists one completed combat. Saving the same ID twice replaces it.
func (s *Store) Save(ctx context.Context, e types.CombatEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("entry id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT OR REPLACE INTO combats (
	id,
	monster,
	damage_dealt,
	damage_taken,
	started_at,
	ended_at,
	duration_ms,
	status,
	experience
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		e.ID,
		e.Monster,
		e.DamageDealt,
		e.DamageTaken,
		e.Started.UTC().UnixMilli(),
		e.Ended.UTC().UnixMilli(),
		e.Duration.Milliseconds(),
		string(e.Status),
		e.Experience,
	)
	if err != nil {
		return fmt.Errorf("save combat %s: %w", e.ID, err)
	}
	return nil
}

// Recent lists up to limit entries, oldest first, ending with the most
// recently finished.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.CombatEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than zero")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	id,
	monster,
	damage_dealt,
	damage_taken,
	started_at,
	ended_at,
	duration_ms,
	status,
	experience
FROM combats
ORDER BY ended_at DESC, rowid DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list combats: %w", err)
	}
	defer rows.Close()

	entries := make([]types.CombatEntry, 0, limit)
	for rows.Next() {
		var (
			e                        types.CombatEntry
			started, ended, duration int64
			status                   string
		)
		if err := rows.Scan(
			&e.ID,
			&e.Monster,
			&e.DamageDealt,
			&e.DamageTaken,
			&started,
			&ended,
			&duration,
			&status,
			&e.Experience,
		); err != nil {
			return nil, fmt.Errorf("scan combat: %w", err)
		}
		e.Started = time.UnixMilli(started).UTC()
		e.Ended = time.UnixMilli(ended).UTC()
		e.Duration = time.Duration(duration) * time.Millisecond
		e.Status = types.CombatStatus(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate combats: %w", err)
	}

	// Newest-first from the query; callers read history oldest-first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM combats`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count combats: %w", err)
	}
	return n, nil
}

// Attach persists every CombatCompleted notification on bus. Failures are
// logged and never reach the tracker.
func (s *Store) Attach(bus *events.Bus) {
	bus.Subscribe(events.CombatCompleted, func(n events.Notification) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Save(ctx, n.Entry); err != nil {
			s.log.Warn("persist combat failed",
				zap.String("monster", n.Entry.Monster),
				zap.Error(err))
		}
	})
}
