// Package session persists finished listening-test sessions to SQLite so
// results survive restarts and can be compared across runs.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sonicmatch/soundcheck/internal/profile"
)

// Mode distinguishes how the preference vector was gathered.
type Mode string

const (
	ModeSlider Mode = "slider"
	ModeAB     Mode = "ab"
)

// Record is one completed session.
type Record struct {
	ID          string
	Mode        Mode
	CreatedAt   time.Time
	Headphone   string // "Brand Model", empty when none was selected
	Analysis    profile.Analysis
	Comparisons []profile.ABComparison // empty for slider mode
}

// Store wraps the SQLite database holding session results.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the session database at path. Use
// ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func createTables(db *sql.DB) error {
	const sessions = `
	CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		mode       TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		headphone  TEXT NOT NULL DEFAULT '',
		bass       REAL NOT NULL,
		mids       REAL NOT NULL,
		treble     REAL NOT NULL,
		soundstage REAL NOT NULL,
		detail     REAL NOT NULL,
		signature  TEXT NOT NULL,
		confidence REAL NOT NULL
	);
	`
	const comparisons = `
	CREATE TABLE IF NOT EXISTS comparisons (
		session_id         TEXT NOT NULL,
		attribute          TEXT NOT NULL,
		plays_a            INTEGER NOT NULL,
		plays_b            INTEGER NOT NULL,
		listen_a_ms        INTEGER NOT NULL,
		listen_b_ms        INTEGER NOT NULL,
		balanced_is_track_a INTEGER NOT NULL,
		choice             TEXT NOT NULL,
		strength           TEXT NOT NULL,
		PRIMARY KEY (session_id, attribute)
	);
	`
	if _, err := db.Exec(sessions); err != nil {
		return fmt.Errorf("creating sessions table: %w", err)
	}
	if _, err := db.Exec(comparisons); err != nil {
		return fmt.Errorf("creating comparisons table: %w", err)
	}
	return nil
}

// Save writes a finished session. Saving the same session ID again replaces
// the earlier result.
func (s *Store) Save(ctx context.Context, rec Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	p := rec.Analysis.Preferences
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions
			(id, mode, created_at, headphone, bass, mids, treble, soundstage, detail, signature, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Mode), rec.CreatedAt.Unix(), rec.Headphone,
		p.Bass, p.Mids, p.Treble, p.Soundstage, p.Detail,
		string(rec.Analysis.Signature), rec.Analysis.Confidence)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("saving session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM comparisons WHERE session_id = ?", rec.ID); err != nil {
		tx.Rollback()
		return fmt.Errorf("clearing comparisons: %w", err)
	}
	for i := range rec.Comparisons {
		c := &rec.Comparisons[i]
		_, err := tx.ExecContext(ctx, `
			INSERT INTO comparisons
				(session_id, attribute, plays_a, plays_b, listen_a_ms, listen_b_ms, balanced_is_track_a, choice, strength)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, string(c.Attribute), c.PlaysA, c.PlaysB,
			c.ListenA.Milliseconds(), c.ListenB.Milliseconds(),
			c.BalancedIsTrackA, string(c.Choice), string(c.Strength))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("saving comparison %s: %w", c.Attribute, err)
		}
	}

	return tx.Commit()
}

// Load returns a stored session by ID. The second return is false when no
// such session exists.
func (s *Store) Load(ctx context.Context, id string) (Record, bool, error) {
	var (
		rec       Record
		mode      string
		createdAt int64
		conf      float64
		p         profile.Preferences
	)
	// The stored signature column is informational; classification always
	// reruns from the stored vector so old records pick up threshold fixes.
	err := s.db.QueryRowContext(ctx, `
		SELECT id, mode, created_at, headphone, bass, mids, treble, soundstage, detail, confidence
		FROM sessions WHERE id = ?`, id).
		Scan(&rec.ID, &mode, &createdAt, &rec.Headphone,
			&p.Bass, &p.Mids, &p.Treble, &p.Soundstage, &p.Detail, &conf)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("loading session: %w", err)
	}

	rec.Mode = Mode(mode)
	rec.CreatedAt = time.Unix(createdAt, 0)
	rec.Analysis = profile.Analyze(p, conf)

	comps, err := s.loadComparisons(ctx, id)
	if err != nil {
		return Record{}, false, err
	}
	rec.Comparisons = comps
	return rec, true, nil
}

func (s *Store) loadComparisons(ctx context.Context, id string) ([]profile.ABComparison, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT attribute, plays_a, plays_b, listen_a_ms, listen_b_ms, balanced_is_track_a, choice, strength
		FROM comparisons WHERE session_id = ? ORDER BY attribute`, id)
	if err != nil {
		return nil, fmt.Errorf("loading comparisons: %w", err)
	}
	defer rows.Close()

	var comps []profile.ABComparison
	for rows.Next() {
		var (
			c                 profile.ABComparison
			attr, choice, str string
			listenA, listenB  int64
		)
		if err := rows.Scan(&attr, &c.PlaysA, &c.PlaysB, &listenA, &listenB, &c.BalancedIsTrackA, &choice, &str); err != nil {
			return nil, fmt.Errorf("scanning comparison: %w", err)
		}
		c.Attribute = profile.Attribute(attr)
		c.ListenA = time.Duration(listenA) * time.Millisecond
		c.ListenB = time.Duration(listenB) * time.Millisecond
		c.Choice = profile.Choice(choice)
		c.Strength = profile.Strength(str)
		comps = append(comps, c)
	}
	return comps, rows.Err()
}

// Recent lists the newest sessions, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM sessions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning session id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	recs := make([]Record, 0, len(ids))
	for _, id := range ids {
		rec, ok, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}
