package store

import (
	"database/sql"
	"time"

	"github.com/ayusman/tactipad/internal/action"
	"github.com/ayusman/tactipad/internal/gesture"
)

// Event is a recorded press or release.
type Event struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Label     string    `json:"label"`
	Key       string    `json:"key,omitempty"`
	Button    string    `json:"button,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	At        time.Time `json:"at"`
}

// EventRepository stores injector events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record inserts events for a session in a single transaction.
func (r *EventRepository) Record(sessionID string, events []action.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO events (session_id, kind, label, key, button, reason, at_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(sessionID, e.Kind, e.Label.String(), e.Key, e.Button, e.Reason, e.At.UnixMilli()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListBySession retrieves a session's events in the order they happened.
func (r *EventRepository) ListBySession(sessionID string) ([]Event, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, kind, label, key, button, reason, at_ms
		 FROM events
		 WHERE session_id = ?
		 ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var atMS int64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Kind, &e.Label, &e.Key, &e.Button, &e.Reason, &atMS); err != nil {
			return nil, err
		}
		e.At = time.UnixMilli(atMS)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Action converts a recorded event back to the machine's form.
func (e Event) Action() (action.Event, error) {
	label, err := gesture.ParseLabel(e.Label)
	if err != nil {
		return action.Event{}, err
	}
	return action.Event{
		Kind:   e.Kind,
		Key:    e.Key,
		Button: e.Button,
		Label:  label,
		Reason: e.Reason,
		At:     e.At,
	}, nil
}
