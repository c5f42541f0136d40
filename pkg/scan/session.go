package scan

// State is the scan session state.
type State int

// Session states. There is no error state: frames without a code keep the
// session scanning.
const (
	StateIdle State = iota
	StateScanning
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	default:
		return "unknown"
	}
}

// Session is the Idle/Scanning state machine of the live camera view.
// Every Start opens a new generation so late matches from an earlier
// session can be told apart from matches of the current one.
type Session struct {
	state      State
	generation uint64
}

// State returns the current state.
func (s *Session) State() State { return s.state }

// Scanning reports whether the live view is mounted.
func (s *Session) Scanning() bool { return s.state == StateScanning }

// Generation returns the generation of the current or last session.
func (s *Session) Generation() uint64 { return s.generation }

// Start moves Idle to Scanning and returns the new generation.
// Starting while already scanning keeps the running generation.
func (s *Session) Start() (generation uint64, started bool) {
	if s.state == StateScanning {
		return s.generation, false
	}
	s.generation++
	s.state = StateScanning
	return s.generation, true
}

// Stop moves Scanning to Idle. It reports whether a session was running.
func (s *Session) Stop() bool {
	if s.state != StateScanning {
		return false
	}
	s.state = StateIdle
	return true
}
