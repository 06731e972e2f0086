// Package store persists trained policy artifacts and a prediction
// provenance log in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/dialogue-memo/internal/policy"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS policy_versions (
	version_id   TEXT PRIMARY KEY,
	artifact     TEXT NOT NULL,
	priority     INTEGER NOT NULL,
	max_history  INTEGER NOT NULL,
	num_entries  INTEGER NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS memo_entries (
	version_id   TEXT NOT NULL,
	feature_key  TEXT NOT NULL,
	action       TEXT NOT NULL,
	PRIMARY KEY (version_id, feature_key),
	FOREIGN KEY (version_id) REFERENCES policy_versions(version_id)
);

CREATE TABLE IF NOT EXISTS active_policy (
	id           INTEGER PRIMARY KEY CHECK (id = 1),
	version_id   TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES policy_versions(version_id)
);

CREATE TABLE IF NOT EXISTS prediction_log (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id      TEXT NOT NULL,
	conversation_id TEXT NOT NULL,
	action          TEXT,
	score           REAL NOT NULL,
	recall_mode     TEXT NOT NULL,
	created_at      TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES policy_versions(version_id)
);
`

// #endregion schema

// #region types

// ErrNoActivePolicy is returned when no policy version has been activated.
var ErrNoActivePolicy = errors.New("no active policy version")

// VersionRecord describes one persisted policy version.
type VersionRecord struct {
	VersionID  string
	Priority   int
	MaxHistory int
	NumEntries int
	CreatedAt  time.Time
}

// #endregion types

// #region store-struct
// Store manages persisted policy versions in SQLite.
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

// DB exposes the connection for collaborators that log to the same file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store-struct

// #region save

// SaveVersion persists an artifact as a new policy version and returns
// its record. The version is written in one transaction; it is not
// activated until Activate is called.
func (s *Store) SaveVersion(a policy.Artifact) (VersionRecord, error) {
	rec := VersionRecord{
		VersionID:  uuid.NewString(),
		Priority:   a.Priority,
		MaxHistory: a.MaxHistory,
		NumEntries: len(a.Lookup),
		CreatedAt:  time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return VersionRecord{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO policy_versions (version_id, artifact, priority, max_history, num_entries, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.VersionID,
		policy.ArtifactName,
		rec.Priority,
		rec.MaxHistory,
		rec.NumEntries,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return VersionRecord{}, fmt.Errorf("insert version: %w", err)
	}

	ins, err := tx.Prepare(`INSERT INTO memo_entries (version_id, feature_key, action) VALUES (?, ?, ?)`)
	if err != nil {
		return VersionRecord{}, fmt.Errorf("prepare entries: %w", err)
	}
	defer ins.Close()
	for key, action := range a.Lookup {
		if _, err := ins.Exec(rec.VersionID, key, action); err != nil {
			return VersionRecord{}, fmt.Errorf("insert entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return VersionRecord{}, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// Activate marks a version as the one predictions should load.
func (s *Store) Activate(versionID string) error {
	_, err := s.db.Exec(
		`INSERT INTO active_policy (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`,
		versionID,
	)
	if err != nil {
		return fmt.Errorf("activate %s: %w", versionID, err)
	}
	return nil
}

// #endregion save

// #region load

// ActiveVersion returns the record of the activated policy version.
func (s *Store) ActiveVersion() (VersionRecord, error) {
	var versionID string
	err := s.db.QueryRow(`SELECT version_id FROM active_policy WHERE id = 1`).Scan(&versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return VersionRecord{}, ErrNoActivePolicy
	}
	if err != nil {
		return VersionRecord{}, fmt.Errorf("query active: %w", err)
	}
	return s.GetVersion(versionID)
}

// GetVersion returns the record of one policy version.
func (s *Store) GetVersion(versionID string) (VersionRecord, error) {
	var rec VersionRecord
	var createdAt string
	err := s.db.QueryRow(
		`SELECT version_id, priority, max_history, num_entries, created_at
		 FROM policy_versions WHERE version_id = ?`, versionID,
	).Scan(&rec.VersionID, &rec.Priority, &rec.MaxHistory, &rec.NumEntries, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return VersionRecord{}, fmt.Errorf("version %s not found", versionID)
	}
	if err != nil {
		return VersionRecord{}, fmt.Errorf("query version: %w", err)
	}
	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return VersionRecord{}, fmt.Errorf("parse created_at: %w", err)
	}
	return rec, nil
}

// LoadArtifact reconstructs the persisted artifact of a version.
func (s *Store) LoadArtifact(versionID string) (policy.Artifact, error) {
	rec, err := s.GetVersion(versionID)
	if err != nil {
		return policy.Artifact{}, err
	}

	rows, err := s.db.Query(
		`SELECT feature_key, action FROM memo_entries WHERE version_id = ?`, versionID)
	if err != nil {
		return policy.Artifact{}, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	lookup := make(map[string]string, rec.NumEntries)
	for rows.Next() {
		var key, action string
		if err := rows.Scan(&key, &action); err != nil {
			return policy.Artifact{}, fmt.Errorf("scan entry: %w", err)
		}
		lookup[key] = action
	}
	if err := rows.Err(); err != nil {
		return policy.Artifact{}, fmt.Errorf("iterate entries: %w", err)
	}

	return policy.Artifact{
		Priority:   rec.Priority,
		MaxHistory: rec.MaxHistory,
		Lookup:     lookup,
	}, nil
}

// ActionCounts returns, per action, how many memorized entries of a
// version predict it. Feature keys are opaque; the action histogram is
// what a human can actually read.
func (s *Store) ActionCounts(versionID string) (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT action, COUNT(*) FROM memo_entries WHERE version_id = ? GROUP BY action`, versionID)
	if err != nil {
		return nil, fmt.Errorf("query action counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, fmt.Errorf("scan action count: %w", err)
		}
		counts[action] = n
	}
	return counts, rows.Err()
}

// ListVersions returns up to limit versions, most recent first.
func (s *Store) ListVersions(limit int) ([]VersionRecord, error) {
	rows, err := s.db.Query(
		`SELECT version_id, priority, max_history, num_entries, created_at
		 FROM policy_versions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	var out []VersionRecord
	for rows.Next() {
		var rec VersionRecord
		var createdAt string
		if err := rows.Scan(&rec.VersionID, &rec.Priority, &rec.MaxHistory, &rec.NumEntries, &createdAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// #endregion load
