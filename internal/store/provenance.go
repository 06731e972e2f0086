package store

import (
	"fmt"
	"time"
)

// #region types

// PredictionEntry is one provenance row: which policy version predicted
// what for which conversation. Action is empty on a miss.
type PredictionEntry struct {
	VersionID      string
	ConversationID string
	Action         string
	Score          float64
	RecallMode     string
	CreatedAt      time.Time
}

// #endregion types

// #region log-prediction
// LogPrediction writes a provenance entry to the prediction_log table.
func (s *Store) LogPrediction(entry PredictionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO prediction_log (version_id, conversation_id, action, score, recall_mode, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.VersionID,
		entry.ConversationID,
		nullIfEmpty(entry.Action),
		entry.Score,
		entry.RecallMode,
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log prediction: %w", err)
	}
	return nil
}
// #endregion log-prediction

// #region recent-predictions

// RecentPredictions returns up to limit provenance rows, newest first.
func (s *Store) RecentPredictions(limit int) ([]PredictionEntry, error) {
	rows, err := s.db.Query(
		`SELECT version_id, conversation_id, COALESCE(action, ''), score, recall_mode, created_at
		 FROM prediction_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []PredictionEntry
	for rows.Next() {
		var e PredictionEntry
		var createdAt string
		if err := rows.Scan(&e.VersionID, &e.ConversationID, &e.Action, &e.Score, &e.RecallMode, &createdAt); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion recent-predictions

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
