// Package journal persists transition and evidence provenance for diagnostics
// and replay-fixture export. The engine itself keeps no durable history; the
// journal is an opt-in collaborator attached via engine.AttachRecorder and
// read back by the inspect and fixture-export tools.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aurawell/coherence/go-engine/internal/classify"
	"github.com/aurawell/coherence/go-engine/internal/engine"
	"github.com/aurawell/coherence/go-engine/internal/ensemble"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id   TEXT PRIMARY KEY,
	started_at   TEXT NOT NULL,
	config_json  TEXT
);

CREATE TABLE IF NOT EXISTS transitions (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id       TEXT NOT NULL,
	from_state       TEXT NOT NULL,
	to_state         TEXT NOT NULL,
	r                REAL NOT NULL,
	momentum         REAL NOT NULL,
	thresholds_json  TEXT,
	created_at       TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);

CREATE TABLE IF NOT EXISTS evidence (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT NOT NULL,
	updates_json  TEXT NOT NULL,
	dropped_json  TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);
`

// #endregion schema

// #region store

// Store manages the provenance journal in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region sessions

// SessionInfo is one journaled session row.
type SessionInfo struct {
	SessionID  string
	StartedAt  time.Time
	ConfigJSON string
}

// BeginSession records the session row before any transitions arrive.
func (s *Store) BeginSession(sessionID string, startedAt time.Time, configJSON string) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO sessions (session_id, started_at, config_json) VALUES (?, ?, ?)`,
		sessionID, startedAt.UTC().Format(time.RFC3339Nano), configJSON,
	)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}
	return nil
}

// Sessions lists all journaled sessions, newest first.
func (s *Store) Sessions() ([]SessionInfo, error) {
	rows, err := s.db.Query(`SELECT session_id, started_at, COALESCE(config_json, '') FROM sessions ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var startedAt string
		if err := rows.Scan(&info.SessionID, &startedAt, &info.ConfigJSON); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		info.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		out = append(out, info)
	}
	return out, rows.Err()
}

// #endregion sessions

// #region recorder

// RecordTransition implements engine.Recorder.
func (s *Store) RecordTransition(rec engine.TransitionRecord) error {
	thresholdsJSON, err := json.Marshal(rec.Thresholds)
	if err != nil {
		return fmt.Errorf("marshal thresholds: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO transitions (session_id, from_state, to_state, r, momentum, thresholds_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, string(rec.FromState), string(rec.ToState),
		rec.R, rec.Momentum, string(thresholdsJSON),
		rec.At.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record transition: %w", err)
	}
	return nil
}

// RecordEvidence implements engine.Recorder.
func (s *Store) RecordEvidence(rec engine.EvidenceRecord) error {
	updatesJSON, err := json.Marshal(rec.Updates)
	if err != nil {
		return fmt.Errorf("marshal updates: %w", err)
	}
	droppedJSON, err := json.Marshal(rec.Dropped)
	if err != nil {
		return fmt.Errorf("marshal dropped: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO evidence (session_id, updates_json, dropped_json, created_at)
		 VALUES (?, ?, ?, ?)`,
		rec.SessionID, string(updatesJSON), string(droppedJSON),
		rec.At.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record evidence: %w", err)
	}
	return nil
}

// #endregion recorder

// #region readers

// Transitions returns all transitions for a session in arrival order.
func (s *Store) Transitions(sessionID string) ([]engine.TransitionRecord, error) {
	rows, err := s.db.Query(
		`SELECT from_state, to_state, r, momentum, COALESCE(thresholds_json, ''), created_at
		 FROM transitions WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var out []engine.TransitionRecord
	for rows.Next() {
		var rec engine.TransitionRecord
		var from, to, thresholdsJSON, createdAt string
		if err := rows.Scan(&from, &to, &rec.R, &rec.Momentum, &thresholdsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		rec.SessionID = sessionID
		rec.FromState = classify.StateID(from)
		rec.ToState = classify.StateID(to)
		if thresholdsJSON != "" {
			if err := json.Unmarshal([]byte(thresholdsJSON), &rec.Thresholds); err != nil {
				return nil, fmt.Errorf("unmarshal thresholds: %w", err)
			}
		}
		rec.At, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Evidence returns all evidence batches for a session in arrival order.
func (s *Store) Evidence(sessionID string) ([]engine.EvidenceRecord, error) {
	rows, err := s.db.Query(
		`SELECT updates_json, COALESCE(dropped_json, ''), created_at
		 FROM evidence WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query evidence: %w", err)
	}
	defer rows.Close()

	var out []engine.EvidenceRecord
	for rows.Next() {
		var rec engine.EvidenceRecord
		var updatesJSON, droppedJSON, createdAt string
		if err := rows.Scan(&updatesJSON, &droppedJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		rec.SessionID = sessionID
		rec.Updates = map[string]ensemble.Evidence{}
		if err := json.Unmarshal([]byte(updatesJSON), &rec.Updates); err != nil {
			return nil, fmt.Errorf("unmarshal updates: %w", err)
		}
		if droppedJSON != "" {
			if err := json.Unmarshal([]byte(droppedJSON), &rec.Dropped); err != nil {
				return nil, fmt.Errorf("unmarshal dropped: %w", err)
			}
		}
		rec.At, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// #endregion readers
