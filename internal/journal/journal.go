// Package journal records completed turns to SQLite: one session per server
// run, one compressed report per turn, and the game's event log. The journal
// is append-only; nothing is restored from it.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/eos/internal/engine"
)

// ErrNotFound is returned when a requested turn was never recorded.
var ErrNotFound = errors.New("journal: not found")

// Session describes the game a journal session belongs to.
type Session struct {
	ID         string    `db:"id" json:"id"`
	SystemID   string    `db:"system_id" json:"system_id"`
	SystemName string    `db:"system_name" json:"system_name"`
	Seed       int64     `db:"seed" json:"seed"`
	StartedAt  time.Time `db:"started_at" json:"started_at"`
}

// TurnRecord is the stored summary of one turn. The report itself is kept
// compressed and loaded with Report.
type TurnRecord struct {
	Session    string    `db:"session_id" json:"session_id"`
	Turn       uint64    `db:"turn" json:"turn"`
	Digest     string    `db:"digest" json:"digest"`
	RawSize    int       `db:"raw_size" json:"raw_size"`
	StoredSize int       `db:"stored_size" json:"stored_size"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

// Journal wraps a SQLite connection.
type Journal struct {
	conn *sqlx.DB

	mu      sync.Mutex
	session string
	lastSeq uint64 // Highest event sequence recorded this session
}

// Open opens or creates a journal database at the given path.
func Open(path string) (*Journal, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	conn.SetMaxOpenConns(1)

	j := &Journal{conn: conn}
	if err := j.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.conn.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		system_id TEXT NOT NULL,
		system_name TEXT NOT NULL,
		seed INTEGER NOT NULL,
		started_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS turns (
		session_id TEXT NOT NULL REFERENCES sessions(id),
		turn INTEGER NOT NULL,
		digest TEXT NOT NULL,
		raw_size INTEGER NOT NULL,
		stored_size INTEGER NOT NULL,
		payload BLOB NOT NULL,
		recorded_at TIMESTAMP NOT NULL,
		PRIMARY KEY (session_id, turn)
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		seq INTEGER NOT NULL,
		turn INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, seq);
	`
	_, err := j.conn.Exec(schema)
	return err
}

// StartSession opens a new session. Later records belong to it.
func (j *Journal) StartSession(ctx context.Context, systemID, systemName string, seed int64) (Session, error) {
	s := Session{
		ID:         uuid.NewString(),
		SystemID:   systemID,
		SystemName: systemName,
		Seed:       seed,
		StartedAt:  time.Now().UTC(),
	}
	_, err := j.conn.NamedExecContext(ctx, `INSERT INTO sessions
		(id, system_id, system_name, seed, started_at)
		VALUES (:id, :system_id, :system_name, :seed, :started_at)`, s)
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}

	j.mu.Lock()
	j.session, j.lastSeq = s.ID, 0
	j.mu.Unlock()

	slog.Info("journal session started", "session", s.ID, "system", systemName, "seed", seed)
	return s, nil
}

// Sessions lists every session, newest first.
func (j *Journal) Sessions(ctx context.Context) ([]Session, error) {
	var out []Session
	err := j.conn.SelectContext(ctx, &out,
		"SELECT id, system_id, system_name, seed, started_at FROM sessions ORDER BY started_at DESC")
	return out, err
}

// RecordTurn stores a turn report and the events raised since the last
// recorded turn, in one transaction.
func (j *Journal) RecordTurn(ctx context.Context, report engine.TurnReport, events []engine.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.session == "" {
		return errors.New("journal: no session started")
	}

	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	payload, err := compress(raw)
	if err != nil {
		return err
	}

	tx, err := j.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO turns
		(session_id, turn, digest, raw_size, stored_size, payload, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.session, report.Turn, report.Digest, len(raw), len(payload), payload, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert turn %d: %w", report.Turn, err)
	}

	lastSeq := j.lastSeq
	for _, e := range events {
		if e.Seq <= lastSeq {
			continue
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO events (session_id, seq, turn, description, category) VALUES (?, ?, ?, ?, ?)",
			j.session, e.Seq, e.Turn, e.Description, e.Category,
		)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", e.Seq, err)
		}
		lastSeq = e.Seq
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	j.lastSeq = lastSeq

	slog.Debug("turn journaled",
		"turn", report.Turn,
		"events", len(events),
		"size", humanize.Bytes(uint64(len(raw))),
		"stored", humanize.Bytes(uint64(len(payload))),
	)
	return nil
}

// LastSeq returns the highest event sequence recorded this session.
func (j *Journal) LastSeq() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastSeq
}

// Observer returns a turn callback that journals every report along with the
// game's new events. Failures are logged, never returned to the game.
func (j *Journal) Observer(g *engine.Game) func(engine.TurnReport) {
	return func(report engine.TurnReport) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := j.RecordTurn(ctx, report, g.EventsSince(j.LastSeq())); err != nil {
			slog.Error("journal turn failed", "turn", report.Turn, "error", err)
		}
	}
}

// Turns returns up to limit of the current session's turns, newest first.
func (j *Journal) Turns(ctx context.Context, limit int) ([]TurnRecord, error) {
	var out []TurnRecord
	err := j.conn.SelectContext(ctx, &out, `SELECT session_id, turn, digest, raw_size, stored_size, recorded_at
		FROM turns WHERE session_id = ? ORDER BY turn DESC LIMIT ?`,
		j.currentSession(), limit,
	)
	return out, err
}

// Report loads and decodes one turn report from the current session.
func (j *Journal) Report(ctx context.Context, turn uint64) (engine.TurnReport, error) {
	var payload []byte
	err := j.conn.GetContext(ctx, &payload,
		"SELECT payload FROM turns WHERE session_id = ? AND turn = ?",
		j.currentSession(), turn,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.TurnReport{}, fmt.Errorf("turn %d: %w", turn, ErrNotFound)
	}
	if err != nil {
		return engine.TurnReport{}, err
	}

	raw, err := decompress(payload)
	if err != nil {
		return engine.TurnReport{}, err
	}
	var report engine.TurnReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return engine.TurnReport{}, fmt.Errorf("decode turn %d: %w", turn, err)
	}
	return report, nil
}

// RecentEvents returns the current session's most recent events, newest
// first.
func (j *Journal) RecentEvents(ctx context.Context, limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := j.conn.SelectContext(ctx, &events,
		"SELECT seq, turn, description, category FROM events WHERE session_id = ? ORDER BY seq DESC LIMIT ?",
		j.currentSession(), limit,
	)
	return events, err
}

func (j *Journal) currentSession() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.session
}
