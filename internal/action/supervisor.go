package action

import "time"

// Default timeouts.
const (
	DefaultMaxHold     = 5 * time.Second
	DefaultIdleTimeout = 10 * time.Second
)

// Release reasons.
const (
	ReasonMaxHold  = "max_hold"
	ReasonIdle     = "idle"
	ReasonShutdown = "shutdown"
	ReasonDisabled = "disabled"
)

// Supervisor holds the two timeouts that force held input to be released.
// A zero duration disables that timeout.
type Supervisor struct {
	MaxHold time.Duration
	Idle    time.Duration
}

// DefaultSupervisor returns the standard timeouts.
func DefaultSupervisor() Supervisor {
	return Supervisor{MaxHold: DefaultMaxHold, Idle: DefaultIdleTimeout}
}

// check returns the reason held input must be released at now, or "".
func (s Supervisor) check(st State, now time.Time) string {
	if !st.Held() {
		return ""
	}
	if s.MaxHold > 0 && now.Sub(st.ActionStart) > s.MaxHold {
		return ReasonMaxHold
	}
	if s.Idle > 0 && !st.LastActionable.IsZero() && now.Sub(st.LastActionable) > s.Idle {
		return ReasonIdle
	}
	return ""
}
