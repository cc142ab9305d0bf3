package store

import (
	"database/sql"
	"time"

	"github.com/ayusman/tactipad/internal/gesture"
)

// Sample is a published aggregate with the label it was classified as.
type Sample struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         float64   `json:"z"`
	Label     string    `json:"label"`
	At        time.Time `json:"at"`
}

// SampleRepository stores published samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Record inserts one sample.
func (r *SampleRepository) Record(sessionID string, s gesture.Sample, label gesture.Label) error {
	_, err := r.db.Exec(
		`INSERT INTO samples (session_id, x, y, z, label, at_ms) VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, s.X, s.Y, s.Z, label.String(), s.At.UnixMilli(),
	)
	return err
}

// ListBySession retrieves a session's samples, oldest first. A limit <= 0
// returns all.
func (r *SampleRepository) ListBySession(sessionID string, limit int) ([]Sample, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT id, session_id, x, y, z, label, at_ms
		 FROM samples
		 WHERE session_id = ?
		 ORDER BY id
		 LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var s Sample
		var atMS int64
		if err := rows.Scan(&s.ID, &s.SessionID, &s.X, &s.Y, &s.Z, &s.Label, &atMS); err != nil {
			return nil, err
		}
		s.At = time.UnixMilli(atMS)
		samples = append(samples, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}

// DeleteBySession removes all samples for a session.
func (r *SampleRepository) DeleteBySession(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM samples WHERE session_id = ?`, sessionID)
	return err
}
