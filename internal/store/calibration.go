package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/tactipad/internal/gesture"
)

// Calibration is the origin reference captured for a session.
type Calibration struct {
	SessionID  string                 `json:"session_id"`
	Points     []gesture.ContactPoint `json:"points"`
	CapturedAt time.Time              `json:"captured_at"`
}

// CalibrationRepository stores origin references.
type CalibrationRepository struct {
	db *sql.DB
}

// Calibrations returns the calibration repository for this store.
func (s *Store) Calibrations() *CalibrationRepository {
	return &CalibrationRepository{db: s.db}
}

// Save stores the reference for a session, replacing any earlier one.
func (r *CalibrationRepository) Save(sessionID string, points []gesture.ContactPoint, at time.Time) error {
	data, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("failed to encode points: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO calibrations (session_id, points, captured_ms) VALUES (?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET points = excluded.points, captured_ms = excluded.captured_ms`,
		sessionID, string(data), at.UnixMilli(),
	)
	return err
}

// Get retrieves the reference for a session.
func (r *CalibrationRepository) Get(sessionID string) (*Calibration, error) {
	var data string
	var capturedMS int64

	err := r.db.QueryRow(
		`SELECT points, captured_ms FROM calibrations WHERE session_id = ?`, sessionID,
	).Scan(&data, &capturedMS)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	c := &Calibration{SessionID: sessionID, CapturedAt: time.UnixMilli(capturedMS)}
	if err := json.Unmarshal([]byte(data), &c.Points); err != nil {
		return nil, fmt.Errorf("failed to decode points: %w", err)
	}
	return c, nil
}
