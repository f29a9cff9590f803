// Package store handles SQLite persistence.
//
// Progress and Settings live as namespaced JSON blobs in a key/value table;
// completed sessions go to a history table capped at the most recent
// historyCap entries. Malformed blobs never corrupt in-memory state: records
// are decoded over pre-filled defaults and fall back wholesale on error.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avolkv/headsup/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const (
	keyPrefix   = "headsup."
	keyProgress = keyPrefix + "progress"
	keySettings = keyPrefix + "settings"

	historyCap = 50
)

// Store wraps SQLite access for trainer data.
type Store struct {
	db   *sql.DB
	logf func(format string, args ...any)
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			closeQuietly(db)
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	store := &Store{
		db: db,
		logf: func(format string, args ...any) {
			if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
				// Best-effort logging to stderr.
				_ = err
			}
		},
	}
	if err := store.migrate(); err != nil {
		closeQuietly(db)
		return nil, err
	}
	return store, nil
}

func closeQuietly(db *sql.DB) {
	if cerr := db.Close(); cerr != nil {
		// Best-effort close on setup failure.
		_ = cerr
	}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS history (
			id INTEGER PRIMARY KEY,
			ended_at TEXT NOT NULL,
			wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			penalties INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			xp INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS history_char_stats (
			history_id INTEGER NOT NULL,
			char TEXT NOT NULL,
			correct INTEGER NOT NULL,
			incorrect INTEGER NOT NULL,
			latency_sum_ms INTEGER NOT NULL,
			latency_count INTEGER NOT NULL,
			PRIMARY KEY (history_id, char)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_history_ended_at ON history(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveValue stores a JSON-encoded blob under a namespaced key.
func (s *Store) SaveValue(ctx context.Context, key string, value any) error {
	enc, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, string(enc),
	)
	return err
}

// LoadValue decodes the blob at key into dst, which must already hold
// defaults. Missing fields keep their defaults; a malformed blob leaves dst
// untouched and is logged, never propagated.
func (s *Store) LoadValue(ctx context.Context, key string, dst any) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if err != nil {
		if err != sql.ErrNoRows {
			s.logf("store: load %q: %v\n", key, err)
		}
		return
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logf("store: malformed record %q, using defaults: %v\n", key, err)
	}
}

// SaveProgress persists the progress record.
func (s *Store) SaveProgress(ctx context.Context, p model.Progress) error {
	return s.SaveValue(ctx, keyProgress, p)
}

// LoadProgress returns the stored progress, with defaults for missing or
// unreadable fields.
func (s *Store) LoadProgress(ctx context.Context) model.Progress {
	p := model.DefaultProgress()
	s.LoadValue(ctx, keyProgress, &p)
	if p.Level < 1 {
		p.Level = 1
	}
	return p
}

// SaveSettings persists the settings record.
func (s *Store) SaveSettings(ctx context.Context, settings model.Settings) error {
	return s.SaveValue(ctx, keySettings, settings)
}

// LoadSettings returns the stored settings, with defaults for missing or
// unreadable fields.
func (s *Store) LoadSettings(ctx context.Context) model.Settings {
	settings := model.DefaultSettings()
	s.LoadValue(ctx, keySettings, &settings)
	return settings
}

// AppendHistory stores a completed session and its per-character stats, then
// prunes the table back to the historyCap most recent entries.
func (s *Store) AppendHistory(ctx context.Context, entry model.HistoryEntry, chars []model.CharStats) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO history (ended_at, wpm, accuracy, errors, penalties, duration_ms, xp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.EndedAt.Format(time.RFC3339Nano),
		entry.WPM,
		entry.Accuracy,
		entry.Errors,
		entry.Penalties,
		entry.DurationMs,
		entry.XP,
	)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(chars) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO history_char_stats (history_id, char, correct, incorrect, latency_sum_ms, latency_count)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return 0, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for _, cs := range chars {
			if _, err = stmt.ExecContext(ctx, id, cs.Char, cs.Correct, cs.Incorrect, cs.LatencySumMs, cs.LatencyCount); err != nil {
				return 0, err
			}
		}
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM history_char_stats WHERE history_id IN (
			SELECT id FROM history ORDER BY ended_at DESC, id DESC LIMIT -1 OFFSET ?
		)`, historyCap); err != nil {
		return 0, err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE FROM history WHERE id IN (
			SELECT id FROM history ORDER BY ended_at DESC, id DESC LIMIT -1 OFFSET ?
		)`, historyCap); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// ListHistory returns history entries most-recent-first. A non-positive
// limit returns everything retained.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]model.HistoryEntry, error) {
	if limit <= 0 || limit > historyCap {
		limit = historyCap
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT ended_at, wpm, accuracy, errors, penalties, duration_ms, xp
		 FROM history ORDER BY ended_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var entries []model.HistoryEntry
	for rows.Next() {
		var entry model.HistoryEntry
		var endedAt string
		if err := rows.Scan(&endedAt, &entry.WPM, &entry.Accuracy, &entry.Errors, &entry.Penalties, &entry.DurationMs, &entry.XP); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		entry.EndedAt = parsed
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// CharAggregates sums per-character stats over the retained history.
func (s *Store) CharAggregates(ctx context.Context) ([]model.CharStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT char, SUM(correct), SUM(incorrect), SUM(latency_sum_ms), SUM(latency_count)
		 FROM history_char_stats GROUP BY char`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.CharStats
	for rows.Next() {
		var cs model.CharStats
		if err := rows.Scan(&cs.Char, &cs.Correct, &cs.Incorrect, &cs.LatencySumMs, &cs.LatencyCount); err != nil {
			return nil, err
		}
		result = append(result, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
