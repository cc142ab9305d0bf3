package store

import (
	"fmt"
	"time"

	"github.com/ayusman/tactipad/internal/action"
	"github.com/ayusman/tactipad/internal/gesture"
)

// SessionRecorder writes one pipeline run into the store.
type SessionRecorder struct {
	store         *Store
	session       *Session
	recordSamples bool
}

// StartSession creates the session row and returns a recorder for it.
func (s *Store) StartSession(sess *Session, recordSamples bool) (*SessionRecorder, error) {
	if err := s.Sessions().Create(sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &SessionRecorder{store: s, session: sess, recordSamples: recordSamples}, nil
}

// SessionID returns the recorded session's ID.
func (r *SessionRecorder) SessionID() string {
	return r.session.ID
}

// RecordCalibration stores the origin reference.
func (r *SessionRecorder) RecordCalibration(reference []gesture.ContactPoint, at time.Time) error {
	return r.store.Calibrations().Save(r.session.ID, reference, at)
}

// RecordCycle stores the cycle's events, and its sample when enabled.
func (r *SessionRecorder) RecordCycle(sample gesture.Sample, label gesture.Label, events []action.Event) error {
	if r.recordSamples {
		if err := r.store.Samples().Record(r.session.ID, sample, label); err != nil {
			return err
		}
	}
	return r.store.Events().Record(r.session.ID, events)
}

// End closes the session with reason.
func (r *SessionRecorder) End(reason string) error {
	return r.store.Sessions().End(r.session.ID, reason, time.Now())
}
