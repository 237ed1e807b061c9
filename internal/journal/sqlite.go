package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/rosterd/internal/roster"
)

// SQLiteJournal implements Journal using SQLite.
type SQLiteJournal struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteJournal creates a new SQLite-based journal.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteJournal(dbPath string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	j := &SQLiteJournal{db: db}
	if err := j.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return j, nil
}

func (j *SQLiteJournal) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS roster_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		participant INTEGER,
		status TEXT,
		threshold INTEGER NOT NULL DEFAULT 0,
		playing INTEGER NOT NULL DEFAULT 0,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_participant ON roster_events(participant);
	CREATE INDEX IF NOT EXISTS idx_timestamp ON roster_events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_event_type ON roster_events(event_type);
	`
	_, err := j.db.Exec(schema)
	return err
}

// StatusChanged records a participant's status change.
func (j *SQLiteJournal) StatusChanged(ctx context.Context, p roster.Participant, s roster.Status) error {
	return j.append(ctx, EventStatusChanged, int64(p.ID), string(s), 0, 0)
}

// MilestoneFired records a capacity milestone notification.
func (j *SQLiteJournal) MilestoneFired(ctx context.Context, threshold, playing int) error {
	return j.append(ctx, EventMilestoneFired, 0, "", threshold, playing)
}

// RosterReset records an explicit roster reset.
func (j *SQLiteJournal) RosterReset(ctx context.Context) error {
	return j.append(ctx, EventRosterReset, 0, "", 0, 0)
}

func (j *SQLiteJournal) append(ctx context.Context, et EventType, participant int64, status string, threshold, playing int) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx,
		"INSERT INTO roster_events (event_type, participant, status, threshold, playing, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
		string(et), participant, status, threshold, playing, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByParticipant retrieves all events for one participant.
func (j *SQLiteJournal) GetByParticipant(ctx context.Context, id roster.ParticipantID) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	rows, err := j.db.QueryContext(ctx,
		"SELECT id, event_type, participant, status, threshold, playing, timestamp FROM roster_events WHERE participant = ? ORDER BY id",
		int64(id),
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return j.scanEntries(rows)
}

// GetRange retrieves events within a time range.
func (j *SQLiteJournal) GetRange(ctx context.Context, start, end time.Time) ([]Entry, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	rows, err := j.db.QueryContext(ctx,
		"SELECT id, event_type, participant, status, threshold, playing, timestamp FROM roster_events WHERE timestamp >= ? AND timestamp <= ? ORDER BY id",
		start.Unix(), end.Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return j.scanEntries(rows)
}

func (j *SQLiteJournal) scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var et string
		var participant int64
		var status string
		var timestampUnix int64

		if err := rows.Scan(&e.ID, &et, &participant, &status, &e.Threshold, &e.Playing, &timestampUnix); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		e.Type = EventType(et)
		e.Participant = roster.ParticipantID(participant)
		e.Status = roster.Status(status)
		e.Timestamp = time.Unix(timestampUnix, 0)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}

// Close closes the database connection.
func (j *SQLiteJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.db.Close()
}
